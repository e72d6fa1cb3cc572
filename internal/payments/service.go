package payments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/threadkart/threadkart-backend/internal/orders"
	"github.com/threadkart/threadkart-backend/pkg/enums"
	pkgerrors "github.com/threadkart/threadkart-backend/pkg/errors"
	"github.com/threadkart/threadkart-backend/pkg/logger"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the payment gate: it settles a pending order once the external
// processor reports an outcome. Confirm is the only path from PENDING to
// CONFIRMED that records a payment reference.
type Service interface {
	Confirm(ctx context.Context, buyerID, orderID uuid.UUID, paymentRef string) error
	Fail(ctx context.Context, buyerID, orderID uuid.UUID, reason string) error
}

type service struct {
	tx   txRunner
	repo orders.Repository
	log  *logger.Logger
}

// NewService builds the payments service.
func NewService(tx txRunner, repo orders.Repository, log *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{tx: tx, repo: repo, log: log}, nil
}

// Confirm records a successful payment against a pending order owned by the
// buyer: the order becomes CONFIRMED with the processor reference and paid-at
// timestamp. Re-confirming or confirming a settled order is rejected.
func (s *service) Confirm(ctx context.Context, buyerID, orderID uuid.UUID, paymentRef string) error {
	paymentRef = strings.TrimSpace(paymentRef)
	if buyerID == uuid.Nil || orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "buyer id and order id required")
	}
	if paymentRef == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment reference required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByIDForBuyer(ctx, orderID, buyerID)
		if err != nil {
			return err
		}
		if order.Status != enums.OrderStatusPending {
			return pkgerrors.Newf(pkgerrors.CodeIllegalState, "order is %s, only pending orders accept payment", order.Status).
				WithDetails(map[string]any{"status": order.Status})
		}

		return repo.UpdatePayment(ctx, order.ID, map[string]any{
			"status":            enums.OrderStatusConfirmed,
			"payment_reference": paymentRef,
			"paid_at":           time.Now().UTC(),
		})
	})
}

// Fail acknowledges a failed payment attempt on a pending order. The order
// stays PENDING so the buyer can retry or cancel; the attempt is only logged.
func (s *service) Fail(ctx context.Context, buyerID, orderID uuid.UUID, reason string) error {
	if buyerID == uuid.Nil || orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "buyer id and order id required")
	}

	order, err := s.repo.FindByIDForBuyer(ctx, orderID, buyerID)
	if err != nil {
		return err
	}
	if order.Status != enums.OrderStatusPending {
		return pkgerrors.Newf(pkgerrors.CodeIllegalState, "order is %s, only pending orders accept payment outcomes", order.Status).
			WithDetails(map[string]any{"status": order.Status})
	}

	ctx = s.log.WithOrderID(ctx, order.ID.String())
	ctx = s.log.WithField(ctx, "reason", reason)
	s.log.Warn(ctx, "payment attempt failed")
	return nil
}
