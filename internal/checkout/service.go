package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/threadkart/threadkart-backend/internal/cart"
	"github.com/threadkart/threadkart-backend/internal/inventory"
	"github.com/threadkart/threadkart-backend/internal/orders"
	"github.com/threadkart/threadkart-backend/internal/pricing"
	"github.com/threadkart/threadkart-backend/pkg/db/models"
	"github.com/threadkart/threadkart-backend/pkg/enums"
	pkgerrors "github.com/threadkart/threadkart-backend/pkg/errors"
	"github.com/threadkart/threadkart-backend/pkg/events"
	"github.com/threadkart/threadkart-backend/pkg/metrics"
	"github.com/threadkart/threadkart-backend/pkg/types"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service executes the checkout transaction: one cart in, one multi-seller
// order out, with oversell-safe stock decrements.
type Service interface {
	PlaceOrder(ctx context.Context, buyerID uuid.UUID, address types.Address) (*models.Order, error)
}

type service struct {
	tx         txRunner
	cartRepo   cart.Repository
	ordersRepo orders.Repository
	publisher  events.Publisher
	metrics    *metrics.OrderMetrics
}

// NewService builds the checkout service.
func NewService(
	tx txRunner,
	cartRepo cart.Repository,
	ordersRepo orders.Repository,
	publisher events.Publisher,
	m *metrics.OrderMetrics,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("event publisher required")
	}
	return &service{
		tx:         tx,
		cartRepo:   cartRepo,
		ordersRepo: ordersRepo,
		publisher:  publisher,
		metrics:    m,
	}, nil
}

// PlaceOrder converts the buyer's cart into an order. All rows, stock
// decrements, and the cart clear commit together or not at all; the
// order-created event goes out only after the commit and its failure never
// reaches the caller.
func (s *service) PlaceOrder(ctx context.Context, buyerID uuid.UUID, address types.Address) (*models.Order, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id required")
	}
	address.Normalize()

	started := time.Now()
	var result *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		ordersRepo := s.ordersRepo.WithTx(tx)

		lines, err := cartRepo.FindLinesByBuyer(ctx, buyerID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeEmptyCart, "cart contains no lines")
		}

		partitions, sellerIDs, err := partitionBySeller(lines)
		if err != nil {
			return err
		}

		order := &models.Order{
			BuyerID:         buyerID,
			Status:          enums.OrderStatusPending,
			ShippingAddress: address,
			TotalAmount:     decimal.Zero,
		}
		if err := ordersRepo.CreateOrder(ctx, order); err != nil {
			return err
		}

		total := decimal.Zero
		for _, sellerID := range sellerIDs {
			group := partitions[sellerID]

			subtotal := decimal.Zero
			priced := make([]pricedLine, 0, len(group))
			for _, line := range group {
				unitPrice, err := pricing.Resolve(line.Product.Price, line.Product.DiscountType, line.Product.DiscountValue)
				if err != nil {
					return err
				}
				priced = append(priced, pricedLine{line: line, unitPrice: unitPrice})
				subtotal = subtotal.Add(unitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
			}

			sellerOrder := &models.SellerOrder{
				OrderID:     order.ID,
				SellerID:    sellerID,
				Status:      enums.SellerOrderStatusPending,
				TotalAmount: subtotal,
			}
			if err := ordersRepo.CreateSellerOrder(ctx, sellerOrder); err != nil {
				return err
			}

			items := make([]models.OrderItem, 0, len(priced))
			for _, pl := range priced {
				items = append(items, buildOrderItem(order.ID, sellerOrder.ID, sellerID, pl))
			}
			if err := ordersRepo.CreateOrderItems(ctx, items); err != nil {
				return err
			}

			for _, pl := range priced {
				ref := inventory.StockRef{
					ProductID:     pl.line.ProductID,
					SizeVariantID: pl.line.SizeVariantID,
					Label:         stockLabel(pl.line),
				}
				if err := inventory.Decrement(ctx, tx, ref, pl.line.Quantity); err != nil {
					return err
				}
			}

			sellerOrder.Items = items
			order.SellerOrders = append(order.SellerOrders, *sellerOrder)
			total = total.Add(subtotal)
		}

		if err := ordersRepo.UpdateOrderTotal(ctx, order.ID, total); err != nil {
			return err
		}
		order.TotalAmount = total

		if err := cartRepo.Clear(ctx, buyerID); err != nil {
			return err
		}

		result = order
		return nil
	})
	if err != nil {
		s.recordFailure(err, time.Since(started))
		return nil, err
	}

	s.metrics.ObserveCheckout("success", time.Since(started))
	s.metrics.IncOrderCreated()
	s.publisher.OrderCreated(ctx, orderCreatedPayload(result))

	return result, nil
}

type pricedLine struct {
	line      models.CartLine
	unitPrice decimal.Decimal
}

// partitionBySeller groups cart lines by their product's seller, preserving
// the cart's insertion order for sellers so totals and rows are deterministic.
func partitionBySeller(lines []models.CartLine) (map[uuid.UUID][]models.CartLine, []uuid.UUID, error) {
	partitions := make(map[uuid.UUID][]models.CartLine)
	order := make([]uuid.UUID, 0)
	for _, line := range lines {
		if line.Product == nil {
			return nil, nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "product %s no longer exists", line.ProductID)
		}
		if line.Product.SellerID == nil {
			return nil, nil, pkgerrors.Newf(pkgerrors.CodeMissingSeller, "product %q has no assigned seller", line.Product.Title).
				WithDetails(map[string]any{"product_id": line.ProductID})
		}
		sellerID := *line.Product.SellerID
		if _, seen := partitions[sellerID]; !seen {
			order = append(order, sellerID)
		}
		partitions[sellerID] = append(partitions[sellerID], line)
	}
	return partitions, order, nil
}

func buildOrderItem(orderID, sellerOrderID, sellerID uuid.UUID, pl pricedLine) models.OrderItem {
	product := pl.line.Product
	var discountValue *decimal.Decimal
	if product.DiscountValue != nil {
		v := product.DiscountValue.Copy()
		discountValue = &v
	}
	return models.OrderItem{
		OrderID:           orderID,
		SellerOrderID:     sellerOrderID,
		SellerID:          sellerID,
		ProductID:         pl.line.ProductID,
		SizeVariantID:     pl.line.SizeVariantID,
		ProductTitle:      product.Title,
		Quantity:          pl.line.Quantity,
		UnitPrice:         pl.unitPrice,
		OriginalUnitPrice: product.Price,
		DiscountType:      product.DiscountType,
		DiscountValue:     discountValue,
		Status:            enums.OrderItemStatusPending,
	}
}

func stockLabel(line models.CartLine) string {
	if line.Product == nil {
		return ""
	}
	if line.SizeVariantID != nil {
		for _, v := range line.Product.SizeVariants {
			if v.ID == *line.SizeVariantID {
				return fmt.Sprintf("%s (%s)", line.Product.Title, v.Label)
			}
		}
	}
	return line.Product.Title
}

func orderCreatedPayload(order *models.Order) events.OrderCreated {
	summaries := make([]events.SellerOrderSummary, 0, len(order.SellerOrders))
	for _, so := range order.SellerOrders {
		summaries = append(summaries, events.SellerOrderSummary{
			SellerOrderID: so.ID,
			SellerID:      so.SellerID,
			TotalAmount:   so.TotalAmount,
			ItemCount:     len(so.Items),
		})
	}
	return events.OrderCreated{
		OrderID:      order.ID,
		BuyerID:      order.BuyerID,
		TotalAmount:  order.TotalAmount,
		SellerOrders: summaries,
	}
}

func (s *service) recordFailure(err error, elapsed time.Duration) {
	s.metrics.ObserveCheckout("failure", elapsed)
	typed := pkgerrors.As(err)
	if typed == nil {
		s.metrics.IncCheckoutFailure("internal")
		return
	}
	switch typed.Code() {
	case pkgerrors.CodeOutOfStock:
		s.metrics.IncStockConflict()
		s.metrics.IncCheckoutFailure("out_of_stock")
	case pkgerrors.CodeEmptyCart:
		s.metrics.IncCheckoutFailure("empty_cart")
	case pkgerrors.CodeMissingSeller:
		s.metrics.IncCheckoutFailure("missing_seller")
	default:
		s.metrics.IncCheckoutFailure("other")
	}
}
