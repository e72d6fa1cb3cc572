package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/threadkart/threadkart-backend/internal/products"
	"github.com/threadkart/threadkart-backend/pkg/db/models"
	pkgerrors "github.com/threadkart/threadkart-backend/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestAddLineMergesDuplicates(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newService(t, conn)
	ctx := context.Background()
	buyer := uuid.New()
	product := seedProduct(t, conn, 10)

	first, err := svc.AddLine(ctx, buyer, AddLineInput{ProductID: product.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("first add: %v", err)
	}
	second, err := svc.AddLine(ctx, buyer, AddLineInput{ProductID: product.ID, Quantity: 3})
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected merged line, got new line %s", second.ID)
	}
	if second.Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", second.Quantity)
	}

	lines, err := svc.List(ctx, buyer)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d", len(lines))
	}
}

func TestAddLineVariantRules(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newService(t, conn)
	ctx := context.Background()
	buyer := uuid.New()

	plain := seedProduct(t, conn, 10)
	sized := seedProduct(t, conn, 0)
	variant := models.SizeVariant{ProductID: sized.ID, Label: "L", Stock: 4}
	if err := conn.Create(&variant).Error; err != nil {
		t.Fatalf("seed variant: %v", err)
	}

	// Variant products require a variant choice.
	_, err := svc.AddLine(ctx, buyer, AddLineInput{ProductID: sized.ID, Quantity: 1})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	// A variant from another product is rejected.
	foreign := uuid.New()
	_, err = svc.AddLine(ctx, buyer, AddLineInput{ProductID: sized.ID, SizeVariantID: &foreign, Quantity: 1})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	// Plain products reject a variant id.
	_, err = svc.AddLine(ctx, buyer, AddLineInput{ProductID: plain.ID, SizeVariantID: &variant.ID, Quantity: 1})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	line, err := svc.AddLine(ctx, buyer, AddLineInput{ProductID: sized.ID, SizeVariantID: &variant.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("add variant line: %v", err)
	}
	if line.SizeVariantID == nil || *line.SizeVariantID != variant.ID {
		t.Fatalf("variant not recorded on line")
	}
}

func TestAddLineRejectsInactiveProduct(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newService(t, conn)
	product := seedProduct(t, conn, 10)
	if err := conn.Model(&models.Product{}).Where("id = ?", product.ID).Update("active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	_, err := svc.AddLine(context.Background(), uuid.New(), AddLineInput{ProductID: product.ID, Quantity: 1})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestUpdateAndRemoveLine(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newService(t, conn)
	ctx := context.Background()
	buyer := uuid.New()
	product := seedProduct(t, conn, 10)

	line, err := svc.AddLine(ctx, buyer, AddLineInput{ProductID: product.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := svc.UpdateLine(ctx, buyer, line.ID, 4); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := svc.UpdateLine(ctx, buyer, line.ID, 0); err == nil {
		t.Fatal("zero quantity should be rejected")
	}

	// Another buyer cannot touch the line.
	if err := svc.RemoveLine(ctx, uuid.New(), line.ID); err == nil {
		t.Fatal("foreign buyer should not remove line")
	}

	if err := svc.RemoveLine(ctx, buyer, line.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	lines, err := svc.List(ctx, buyer)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(lines))
	}
}

func newService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(conn), products.NewRepository(conn))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:cart_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Product{}, &models.SizeVariant{}, &models.CartLine{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func seedProduct(t *testing.T, conn *gorm.DB, stock int) models.Product {
	t.Helper()
	seller := uuid.New()
	product := models.Product{
		SellerID: &seller,
		Title:    "hoodie",
		Price:    decimal.NewFromInt(80),
		Stock:    stock,
		Active:   true,
	}
	if err := conn.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}
