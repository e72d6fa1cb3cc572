package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/threadkart/threadkart-backend/pkg/db/models"
	pkgerrors "github.com/threadkart/threadkart-backend/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestDecrementGuardsAgainstOversell(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	product := seedProduct(t, db, 5)
	ref := StockRef{ProductID: product.ID, Label: product.Title}

	if err := Decrement(ctx, db, ref, 3); err != nil {
		t.Fatalf("first decrement: %v", err)
	}

	err := Decrement(ctx, db, ref, 4)
	if err == nil {
		t.Fatal("expected out of stock")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeOutOfStock {
		t.Fatalf("unexpected error: %v", err)
	}

	var got models.Product
	if err := db.First(&got, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if got.Stock != 2 {
		t.Fatalf("expected stock 2 after failed decrement, got %d", got.Stock)
	}
}

func TestDecrementVariantCounter(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	product := seedProduct(t, db, 0)
	variant := models.SizeVariant{ProductID: product.ID, Label: "M", Stock: 2}
	if err := db.Create(&variant).Error; err != nil {
		t.Fatalf("seed variant: %v", err)
	}

	ref := StockRef{ProductID: product.ID, SizeVariantID: &variant.ID, Label: "M"}
	if err := Decrement(ctx, db, ref, 2); err != nil {
		t.Fatalf("decrement variant: %v", err)
	}

	// The product's own counter must be untouched when a variant governs the line.
	var gotProduct models.Product
	if err := db.First(&gotProduct, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if gotProduct.Stock != 0 {
		t.Fatalf("product stock should stay 0, got %d", gotProduct.Stock)
	}

	var gotVariant models.SizeVariant
	if err := db.First(&gotVariant, "id = ?", variant.ID).Error; err != nil {
		t.Fatalf("load variant: %v", err)
	}
	if gotVariant.Stock != 0 {
		t.Fatalf("variant stock should be 0, got %d", gotVariant.Stock)
	}

	if err := Decrement(ctx, db, ref, 1); err == nil {
		t.Fatal("expected out of stock on drained variant")
	}
}

func TestIncrementRestoresCounter(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	product := seedProduct(t, db, 1)
	ref := StockRef{ProductID: product.ID}

	if err := Increment(ctx, db, ref, 4); err != nil {
		t.Fatalf("increment: %v", err)
	}

	stock, err := Available(ctx, db, ref)
	if err != nil {
		t.Fatalf("available: %v", err)
	}
	if stock != 5 {
		t.Fatalf("expected stock 5, got %d", stock)
	}

	missing := StockRef{ProductID: uuid.New()}
	if err := Increment(ctx, db, missing, 1); err == nil {
		t.Fatal("expected not found for unknown product")
	}
}

func TestDecrementRejectsInvalidQty(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	product := seedProduct(t, db, 5)

	err := Decrement(context.Background(), db, StockRef{ProductID: product.ID}, 0)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:inventory_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.SizeVariant{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, stock int) models.Product {
	t.Helper()
	seller := uuid.New()
	product := models.Product{
		SellerID: &seller,
		Title:    "tee",
		Price:    decimal.NewFromInt(100),
		Stock:    stock,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}
