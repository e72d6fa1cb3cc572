package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/threadkart/threadkart-backend/internal/cart"
	"github.com/threadkart/threadkart-backend/pkg/db"
	"github.com/threadkart/threadkart-backend/pkg/db/models"
	"github.com/threadkart/threadkart-backend/pkg/enums"
	pkgerrors "github.com/threadkart/threadkart-backend/pkg/errors"
	"github.com/threadkart/threadkart-backend/pkg/pagination"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestCancelRestoresStock(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newService(t, conn)
	ctx := context.Background()

	buyer := uuid.New()
	product := seedProduct(t, conn, 3)
	order := seedOrder(t, conn, buyer, enums.OrderStatusPending, orderLine{product: product, quantity: 2})

	if err := svc.Cancel(ctx, buyer, order.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	var got models.Product
	if err := conn.First(&got, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if got.Stock != 5 {
		t.Fatalf("expected stock 5 after restore, got %d", got.Stock)
	}

	var gotOrder models.Order
	if err := conn.First(&gotOrder, "id = ?", order.ID).Error; err != nil {
		t.Fatalf("load order: %v", err)
	}
	if gotOrder.Status != enums.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", gotOrder.Status)
	}
}

func TestCancelRejectsNonPendingOrder(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newService(t, conn)
	ctx := context.Background()

	buyer := uuid.New()
	product := seedProduct(t, conn, 3)
	order := seedOrder(t, conn, buyer, enums.OrderStatusConfirmed, orderLine{product: product, quantity: 2})

	err := svc.Cancel(ctx, buyer, order.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeIllegalState {
		t.Fatalf("expected illegal state, got %v", err)
	}

	// Stock must not move when the gate rejects.
	var got models.Product
	if err := conn.First(&got, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if got.Stock != 3 {
		t.Fatalf("expected stock 3, got %d", got.Stock)
	}
}

func TestCancelForeignBuyer(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newService(t, conn)

	buyer := uuid.New()
	product := seedProduct(t, conn, 3)
	order := seedOrder(t, conn, buyer, enums.OrderStatusPending, orderLine{product: product, quantity: 1})

	err := svc.Cancel(context.Background(), uuid.New(), order.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestReorderReplacesCart(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newService(t, conn)
	ctx := context.Background()

	buyer := uuid.New()
	product := seedProduct(t, conn, 5)
	order := seedOrder(t, conn, buyer, enums.OrderStatusDelivered, orderLine{product: product, quantity: 2})

	// A stale cart line gets replaced wholesale.
	stale := seedProduct(t, conn, 5)
	line := models.CartLine{BuyerID: buyer, ProductID: stale.ID, Quantity: 1}
	if err := conn.Create(&line).Error; err != nil {
		t.Fatalf("seed cart line: %v", err)
	}

	if err := svc.Reorder(ctx, buyer, order.ID); err != nil {
		t.Fatalf("reorder: %v", err)
	}

	var lines []models.CartLine
	if err := conn.Where("buyer_id = ?", buyer).Find(&lines).Error; err != nil {
		t.Fatalf("load cart: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d", len(lines))
	}
	if lines[0].ProductID != product.ID || lines[0].Quantity != 2 {
		t.Fatalf("unexpected line: %+v", lines[0])
	}

	// Reorder never touches stock; only the next checkout does.
	var got models.Product
	if err := conn.First(&got, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if got.Stock != 5 {
		t.Fatalf("expected stock 5, got %d", got.Stock)
	}
}

func TestReorderInsufficientStockLeavesCartUntouched(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newService(t, conn)
	ctx := context.Background()

	buyer := uuid.New()
	inStock := seedProduct(t, conn, 5)
	soldOut := seedProduct(t, conn, 0)
	order := seedOrder(t, conn, buyer, enums.OrderStatusDelivered,
		orderLine{product: inStock, quantity: 1},
		orderLine{product: soldOut, quantity: 1},
	)

	existing := models.CartLine{BuyerID: buyer, ProductID: inStock.ID, Quantity: 3}
	if err := conn.Create(&existing).Error; err != nil {
		t.Fatalf("seed cart line: %v", err)
	}

	err := svc.Reorder(ctx, buyer, order.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeOutOfStock {
		t.Fatalf("expected out of stock, got %v", err)
	}

	var lines []models.CartLine
	if err := conn.Where("buyer_id = ?", buyer).Find(&lines).Error; err != nil {
		t.Fatalf("load cart: %v", err)
	}
	if len(lines) != 1 || lines[0].ID != existing.ID || lines[0].Quantity != 3 {
		t.Fatalf("cart must be untouched, got %+v", lines)
	}
}

func TestListBuyerOrdersPaginates(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newService(t, conn)
	ctx := context.Background()

	buyer := uuid.New()
	for i := 0; i < 3; i++ {
		order := models.Order{BuyerID: buyer, Status: enums.OrderStatusPending, TotalAmount: decimal.Zero}
		if err := conn.Create(&order).Error; err != nil {
			t.Fatalf("seed order: %v", err)
		}
	}

	rows, err := svc.ListBuyerOrders(ctx, buyer, pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) < 3 {
		t.Fatalf("expected buffered page to include all 3 rows, got %d", len(rows))
	}
}

type orderLine struct {
	product  models.Product
	quantity int
}

// seedOrder writes an order with one seller order per line's seller, leaving
// every item pending. Stock is assumed to have already been decremented by the
// checkout being simulated.
func seedOrder(t *testing.T, conn *gorm.DB, buyerID uuid.UUID, status enums.OrderStatus, lines ...orderLine) models.Order {
	t.Helper()

	order := models.Order{BuyerID: buyerID, Status: status, TotalAmount: decimal.Zero}
	if err := conn.Omit("SellerOrders").Create(&order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}

	total := decimal.Zero
	for _, ol := range lines {
		subtotal := ol.product.Price.Mul(decimal.NewFromInt(int64(ol.quantity)))
		sellerOrder := models.SellerOrder{
			OrderID:     order.ID,
			SellerID:    *ol.product.SellerID,
			Status:      enums.SellerOrderStatusPending,
			TotalAmount: subtotal,
		}
		if err := conn.Omit("Items").Create(&sellerOrder).Error; err != nil {
			t.Fatalf("seed seller order: %v", err)
		}
		item := models.OrderItem{
			OrderID:           order.ID,
			SellerOrderID:     sellerOrder.ID,
			SellerID:          sellerOrder.SellerID,
			ProductID:         ol.product.ID,
			ProductTitle:      ol.product.Title,
			Quantity:          ol.quantity,
			UnitPrice:         ol.product.Price,
			OriginalUnitPrice: ol.product.Price,
			Status:            enums.OrderItemStatusPending,
		}
		if err := conn.Create(&item).Error; err != nil {
			t.Fatalf("seed order item: %v", err)
		}
		total = total.Add(subtotal)
	}

	if err := conn.Model(&models.Order{}).Where("id = ?", order.ID).Update("total_amount", total).Error; err != nil {
		t.Fatalf("update total: %v", err)
	}
	return order
}

func newService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(db.NewWithConn(conn), NewRepository(conn), cart.NewRepository(conn))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = conn.AutoMigrate(
		&models.Product{},
		&models.SizeVariant{},
		&models.CartLine{},
		&models.Order{},
		&models.SellerOrder{},
		&models.OrderItem{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func seedProduct(t *testing.T, conn *gorm.DB, stock int) models.Product {
	t.Helper()
	seller := uuid.New()
	product := models.Product{
		SellerID: &seller,
		Title:    "tee-" + uuid.NewString()[:8],
		Price:    decimal.NewFromInt(25),
		Stock:    stock,
		Active:   true,
	}
	if err := conn.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}
