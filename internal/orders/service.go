package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/threadkart/threadkart-backend/internal/cart"
	"github.com/threadkart/threadkart-backend/internal/inventory"
	"github.com/threadkart/threadkart-backend/pkg/db/models"
	"github.com/threadkart/threadkart-backend/pkg/enums"
	pkgerrors "github.com/threadkart/threadkart-backend/pkg/errors"
	"github.com/threadkart/threadkart-backend/pkg/pagination"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service serves order reads plus the two compensating operations: cancel
// (reverse a pending checkout) and reorder (replay one into the cart).
type Service interface {
	GetOrder(ctx context.Context, buyerID, orderID uuid.UUID) (*models.Order, error)
	ListBuyerOrders(ctx context.Context, buyerID uuid.UUID, params pagination.Params) ([]models.Order, error)
	ListSellerOrders(ctx context.Context, sellerID uuid.UUID, params pagination.Params) ([]models.SellerOrder, error)
	GetSellerOrder(ctx context.Context, sellerID, sellerOrderID uuid.UUID) (*models.SellerOrder, error)
	Cancel(ctx context.Context, buyerID, orderID uuid.UUID) error
	Reorder(ctx context.Context, buyerID, orderID uuid.UUID) error
}

type service struct {
	tx       txRunner
	repo     Repository
	cartRepo cart.Repository
}

// NewService builds the orders service.
func NewService(tx txRunner, repo Repository, cartRepo cart.Repository) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	return &service{tx: tx, repo: repo, cartRepo: cartRepo}, nil
}

func (s *service) GetOrder(ctx context.Context, buyerID, orderID uuid.UUID) (*models.Order, error) {
	return s.repo.FindByIDForBuyer(ctx, orderID, buyerID)
}

func (s *service) ListBuyerOrders(ctx context.Context, buyerID uuid.UUID, params pagination.Params) ([]models.Order, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id required")
	}
	return s.repo.FindByBuyer(ctx, buyerID, params)
}

func (s *service) ListSellerOrders(ctx context.Context, sellerID uuid.UUID, params pagination.Params) ([]models.SellerOrder, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	return s.repo.FindSellerOrdersBySeller(ctx, sellerID, params)
}

func (s *service) GetSellerOrder(ctx context.Context, sellerID, sellerOrderID uuid.UUID) (*models.SellerOrder, error) {
	return s.repo.FindSellerOrderForSeller(ctx, sellerOrderID, sellerID)
}

// Cancel reverses a pending checkout: every order item's governing stock
// counter gets its original decrement back and the order becomes CANCELLED.
// This is a direct terminal override, only legal before any seller has acted;
// it does not walk items through the per-item state machine.
func (s *service) Cancel(ctx context.Context, buyerID, orderID uuid.UUID) error {
	if buyerID == uuid.Nil || orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "buyer id and order id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByIDForBuyer(ctx, orderID, buyerID)
		if err != nil {
			return err
		}
		if order.Status != enums.OrderStatusPending {
			return pkgerrors.Newf(pkgerrors.CodeIllegalState, "order is %s, only pending orders can be cancelled", order.Status).
				WithDetails(map[string]any{"status": order.Status})
		}

		for _, sellerOrder := range order.SellerOrders {
			for _, item := range sellerOrder.Items {
				ref := inventory.StockRef{
					ProductID:     item.ProductID,
					SizeVariantID: item.SizeVariantID,
					Label:         item.ProductTitle,
				}
				if err := inventory.Increment(ctx, tx, ref, item.Quantity); err != nil {
					return err
				}
			}
		}

		return repo.UpdateOrderStatus(ctx, order.ID, enums.OrderStatusCancelled)
	})
}

// Reorder replaces the buyer's cart with lines mirroring the original order.
// Every line is validated against current stock before any cart mutation, so
// a failure leaves the existing cart untouched. Stock itself is not moved;
// the subsequent checkout decrements as usual.
func (s *service) Reorder(ctx context.Context, buyerID, orderID uuid.UUID) error {
	if buyerID == uuid.Nil || orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "buyer id and order id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cartRepo := s.cartRepo.WithTx(tx)

		order, err := repo.FindByIDForBuyer(ctx, orderID, buyerID)
		if err != nil {
			return err
		}

		lines := make([]models.CartLine, 0)
		for _, sellerOrder := range order.SellerOrders {
			for _, item := range sellerOrder.Items {
				ref := inventory.StockRef{
					ProductID:     item.ProductID,
					SizeVariantID: item.SizeVariantID,
					Label:         item.ProductTitle,
				}
				available, err := inventory.Available(ctx, tx, ref)
				if err != nil {
					return err
				}
				if available < item.Quantity {
					return pkgerrors.Newf(pkgerrors.CodeOutOfStock, "insufficient stock for %s", item.ProductTitle).
						WithDetails(map[string]any{
							"product_id": item.ProductID,
							"requested":  item.Quantity,
							"available":  available,
						})
				}
				lines = append(lines, models.CartLine{
					BuyerID:       buyerID,
					ProductID:     item.ProductID,
					SizeVariantID: item.SizeVariantID,
					Quantity:      item.Quantity,
				})
			}
		}
		if len(lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeIllegalState, "order has no items to reorder")
		}

		return cartRepo.ReplaceLines(ctx, buyerID, lines)
	})
}
