package payments

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/threadkart/threadkart-backend/internal/orders"
	"github.com/threadkart/threadkart-backend/pkg/db"
	"github.com/threadkart/threadkart-backend/pkg/db/models"
	"github.com/threadkart/threadkart-backend/pkg/enums"
	pkgerrors "github.com/threadkart/threadkart-backend/pkg/errors"
	"github.com/threadkart/threadkart-backend/pkg/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestConfirmSettlesPendingOrder(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newService(t, conn)
	ctx := context.Background()

	buyer := uuid.New()
	order := seedOrder(t, conn, buyer, enums.OrderStatusPending)

	if err := svc.Confirm(ctx, buyer, order.ID, "pay_7f3a"); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	var got models.Order
	if err := conn.First(&got, "id = ?", order.ID).Error; err != nil {
		t.Fatalf("load order: %v", err)
	}
	if got.Status != enums.OrderStatusConfirmed {
		t.Fatalf("expected confirmed, got %s", got.Status)
	}
	if got.PaymentReference == nil || *got.PaymentReference != "pay_7f3a" {
		t.Fatalf("payment reference not recorded: %+v", got.PaymentReference)
	}
	if got.PaidAt == nil {
		t.Fatal("paid_at not recorded")
	}
}

func TestConfirmRejectsSettledOrder(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newService(t, conn)
	ctx := context.Background()

	buyer := uuid.New()
	order := seedOrder(t, conn, buyer, enums.OrderStatusPending)

	if err := svc.Confirm(ctx, buyer, order.ID, "pay_first"); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	err := svc.Confirm(ctx, buyer, order.ID, "pay_second")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeIllegalState {
		t.Fatalf("expected illegal state, got %v", err)
	}

	// The first reference survives.
	var got models.Order
	if err := conn.First(&got, "id = ?", order.ID).Error; err != nil {
		t.Fatalf("load order: %v", err)
	}
	if got.PaymentReference == nil || *got.PaymentReference != "pay_first" {
		t.Fatalf("reference overwritten: %+v", got.PaymentReference)
	}
}

func TestConfirmValidation(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newService(t, conn)
	ctx := context.Background()

	buyer := uuid.New()
	order := seedOrder(t, conn, buyer, enums.OrderStatusPending)

	err := svc.Confirm(ctx, buyer, order.ID, "   ")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	err = svc.Confirm(ctx, uuid.New(), order.ID, "pay_x")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for foreign buyer, got %v", err)
	}
}

func TestFailLeavesOrderPending(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newService(t, conn)
	ctx := context.Background()

	buyer := uuid.New()
	order := seedOrder(t, conn, buyer, enums.OrderStatusPending)

	if err := svc.Fail(ctx, buyer, order.ID, "card_declined"); err != nil {
		t.Fatalf("fail: %v", err)
	}

	var got models.Order
	if err := conn.First(&got, "id = ?", order.ID).Error; err != nil {
		t.Fatalf("load order: %v", err)
	}
	if got.Status != enums.OrderStatusPending {
		t.Fatalf("order must stay pending, got %s", got.Status)
	}
	if got.PaymentReference != nil {
		t.Fatalf("failure must not record a reference: %+v", got.PaymentReference)
	}
}

func TestFailRejectsNonPendingOrder(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newService(t, conn)

	buyer := uuid.New()
	order := seedOrder(t, conn, buyer, enums.OrderStatusShipped)

	err := svc.Fail(context.Background(), buyer, order.ID, "card_declined")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeIllegalState {
		t.Fatalf("expected illegal state, got %v", err)
	}
}

func newService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	log := logger.New(logger.Options{
		ServiceName: "payments-test",
		Level:       zerolog.ErrorLevel,
		Output:      &bytes.Buffer{},
	})
	svc, err := NewService(db.NewWithConn(conn), orders.NewRepository(conn), log)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:payments_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Order{}, &models.SellerOrder{}, &models.OrderItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func seedOrder(t *testing.T, conn *gorm.DB, buyerID uuid.UUID, status enums.OrderStatus) models.Order {
	t.Helper()
	order := models.Order{BuyerID: buyerID, Status: status, TotalAmount: decimal.NewFromInt(100)}
	if err := conn.Omit("SellerOrders").Create(&order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return order
}
