package fulfillment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/threadkart/threadkart-backend/pkg/db/models"
	"github.com/threadkart/threadkart-backend/pkg/enums"
	pkgerrors "github.com/threadkart/threadkart-backend/pkg/errors"
	"github.com/threadkart/threadkart-backend/pkg/events"
	"github.com/threadkart/threadkart-backend/pkg/metrics"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service applies seller fulfillment transitions and keeps the derived seller
// order and order statuses in step.
type Service interface {
	UpdateItemStatus(ctx context.Context, sellerID, itemID uuid.UUID, next enums.OrderItemStatus) (*models.OrderItem, error)
}

type service struct {
	tx        txRunner
	repo      Repository
	publisher events.Publisher
	metrics   *metrics.OrderMetrics
}

// NewService builds the fulfillment service.
func NewService(tx txRunner, repo Repository, publisher events.Publisher, m *metrics.OrderMetrics) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("repository required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("event publisher required")
	}
	return &service{tx: tx, repo: repo, publisher: publisher, metrics: m}, nil
}

// UpdateItemStatus moves one order item through the state machine, then
// recomputes the owning seller order's status from the current sibling set and
// the order's status from all of its seller orders — all inside one
// transaction, so no observer ever sees a stale aggregate. The event announces
// the change only after commit.
func (s *service) UpdateItemStatus(ctx context.Context, sellerID, itemID uuid.UUID, next enums.OrderItemStatus) (*models.OrderItem, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}

	var (
		item              *models.OrderItem
		previous          enums.OrderItemStatus
		sellerOrderStatus enums.SellerOrderStatus
		orderStatus       enums.OrderStatus
	)

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		found, err := repo.FindItemForSeller(ctx, itemID, sellerID)
		if err != nil {
			return err
		}
		previous = found.Status

		if err := CheckTransition(previous, next); err != nil {
			return err
		}

		if err := repo.UpdateItemStatus(ctx, found.ID, next); err != nil {
			return err
		}
		found.Status = next

		siblings, err := repo.FindSiblingStatuses(ctx, found.SellerOrderID)
		if err != nil {
			return err
		}
		sellerOrderStatus = DeriveSellerOrderStatus(siblings)
		if err := repo.UpdateSellerOrderStatus(ctx, found.SellerOrderID, sellerOrderStatus); err != nil {
			return err
		}

		sellerOrders, err := repo.FindSellerOrderStatuses(ctx, found.OrderID)
		if err != nil {
			return err
		}
		orderStatus = DeriveOrderStatus(sellerOrders)
		if err := repo.UpdateOrderStatus(ctx, found.OrderID, orderStatus); err != nil {
			return err
		}

		item = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncItemTransition(previous.String(), next.String())
	s.publisher.ItemStatusUpdated(ctx, events.ItemStatusUpdated{
		OrderID:           item.OrderID,
		SellerOrderID:     item.SellerOrderID,
		OrderItemID:       item.ID,
		SellerID:          item.SellerID,
		PreviousStatus:    previous,
		NewStatus:         next,
		SellerOrderStatus: sellerOrderStatus,
		OrderStatus:       orderStatus,
	})

	return item, nil
}
