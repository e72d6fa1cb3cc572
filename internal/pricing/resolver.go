package pricing

import (
	"github.com/shopspring/decimal"
	"github.com/threadkart/threadkart-backend/pkg/enums"
	pkgerrors "github.com/threadkart/threadkart-backend/pkg/errors"
)

var hundred = decimal.NewFromInt(100)

// Resolve computes the buyer-facing unit price for a catalog line. The result
// is what gets snapshotted into the order item at checkout; it is never
// recomputed from live catalog state afterwards.
func Resolve(base decimal.Decimal, discountType enums.DiscountType, discountValue *decimal.Decimal) (decimal.Decimal, error) {
	if base.IsNegative() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "base price must not be negative")
	}

	switch discountType {
	case enums.DiscountTypeNone, "":
		return base.Round(2), nil

	case enums.DiscountTypePercent:
		if discountValue == nil {
			return base.Round(2), nil
		}
		v := *discountValue
		if !v.IsPositive() || v.GreaterThan(hundred) {
			return decimal.Zero, pkgerrors.Newf(pkgerrors.CodeValidation, "percent discount %s out of range (0,100]", v)
		}
		final := base.Sub(base.Mul(v).Div(hundred))
		return clamp(final).Round(2), nil

	case enums.DiscountTypeFlat:
		if discountValue == nil {
			return base.Round(2), nil
		}
		v := *discountValue
		if !v.IsPositive() || v.GreaterThanOrEqual(base) {
			return decimal.Zero, pkgerrors.Newf(pkgerrors.CodeValidation, "flat discount %s out of range (0,%s)", v, base)
		}
		return clamp(base.Sub(v)).Round(2), nil

	default:
		return decimal.Zero, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown discount type %q", discountType)
	}
}

func clamp(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}
