package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/threadkart/threadkart-backend/pkg/db/models"
	pkgerrors "github.com/threadkart/threadkart-backend/pkg/errors"
	"gorm.io/gorm"
)

// StockRef names the single counter governing one order line: the size
// variant's stock when SizeVariantID is set, else the product's own stock.
type StockRef struct {
	ProductID     uuid.UUID
	SizeVariantID *uuid.UUID
	Label         string
}

// Decrement atomically subtracts qty from the governing counter, but only if
// the current stock covers it. The guard runs inside the UPDATE itself, so a
// read-then-write race between concurrent checkouts cannot oversell. A zero
// rows-affected result means the precondition failed and surfaces as OutOfStock.
func Decrement(ctx context.Context, tx *gorm.DB, ref StockRef, qty int) error {
	if err := validate(tx, ref, qty); err != nil {
		return err
	}

	var res *gorm.DB
	if ref.SizeVariantID != nil {
		res = tx.WithContext(ctx).Model(&models.SizeVariant{}).
			Where("id = ? AND stock >= ?", *ref.SizeVariantID, qty).
			Update("stock", gorm.Expr("stock - ?", qty))
	} else {
		res = tx.WithContext(ctx).Model(&models.Product{}).
			Where("id = ? AND stock >= ?", ref.ProductID, qty).
			Update("stock", gorm.Expr("stock - ?", qty))
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return outOfStock(ref)
	}
	return nil
}

// Increment adds qty back to the governing counter. Used by cancellation to
// reverse a committed decrement; never conditional.
func Increment(ctx context.Context, tx *gorm.DB, ref StockRef, qty int) error {
	if err := validate(tx, ref, qty); err != nil {
		return err
	}

	var res *gorm.DB
	if ref.SizeVariantID != nil {
		res = tx.WithContext(ctx).Model(&models.SizeVariant{}).
			Where("id = ?", *ref.SizeVariantID).
			Update("stock", gorm.Expr("stock + ?", qty))
	} else {
		res = tx.WithContext(ctx).Model(&models.Product{}).
			Where("id = ?", ref.ProductID).
			Update("stock", gorm.Expr("stock + ?", qty))
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.Newf(pkgerrors.CodeNotFound, "stock counter for %s not found", ref.name())
	}
	return nil
}

// Available returns the current value of the governing counter.
func Available(ctx context.Context, tx *gorm.DB, ref StockRef) (int, error) {
	if tx == nil {
		return 0, pkgerrors.New(pkgerrors.CodeInternal, "db handle required")
	}

	var stock int
	var err error
	if ref.SizeVariantID != nil {
		err = tx.WithContext(ctx).Model(&models.SizeVariant{}).
			Where("id = ?", *ref.SizeVariantID).
			Pluck("stock", &stock).Error
	} else {
		err = tx.WithContext(ctx).Model(&models.Product{}).
			Where("id = ?", ref.ProductID).
			Pluck("stock", &stock).Error
	}
	if err != nil {
		return 0, err
	}
	return stock, nil
}

func validate(tx *gorm.DB, ref StockRef, qty int) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "db handle required")
	}
	if qty <= 0 {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "quantity must be positive, got %d", qty)
	}
	if ref.ProductID == uuid.Nil && ref.SizeVariantID == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock ref is empty")
	}
	return nil
}

func outOfStock(ref StockRef) error {
	details := map[string]any{"product_id": ref.ProductID}
	if ref.SizeVariantID != nil {
		details["size_variant_id"] = *ref.SizeVariantID
	}
	return pkgerrors.Newf(pkgerrors.CodeOutOfStock, "insufficient stock for %s", ref.name()).
		WithDetails(details)
}

func (r StockRef) name() string {
	if r.Label != "" {
		return r.Label
	}
	if r.SizeVariantID != nil {
		return "variant " + r.SizeVariantID.String()
	}
	return "product " + r.ProductID.String()
}
