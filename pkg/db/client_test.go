package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/threadkart/threadkart-backend/pkg/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestNewRequiresDSN(t *testing.T) {
	_, err := New(context.Background(), config.DBConfig{}, nil)
	if err == nil {
		t.Fatal("expected error when DSN is missing")
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:dbclient?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	type row struct {
		ID   uint `gorm:"primaryKey"`
		Name string
	}
	if err := conn.AutoMigrate(&row{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	client := NewWithConn(conn)
	boom := errors.New("boom")
	err = client.WithTx(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Create(&row{Name: "orphan"}).Error; err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	var count int64
	if err := conn.Model(&row{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected rollback to remove row, found %d", count)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil error is not a violation")
	}
	err := errors.New(`ERROR: duplicate key value violates unique constraint "ux_cart_lines_buyer_product_variant"`)
	if !IsUniqueViolation(err, "") {
		t.Fatal("expected generic match")
	}
	if !IsUniqueViolation(err, "ux_cart_lines_buyer_product_variant") {
		t.Fatal("expected named constraint match")
	}
	if IsUniqueViolation(err, "ux_other") {
		t.Fatal("unexpected match for different constraint")
	}

	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "ux_cart_lines_buyer_product_variant"}
	if !IsUniqueViolation(pgErr, "ux_cart_lines_buyer_product_variant") {
		t.Fatal("expected pgx constraint match")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}, "") {
		t.Fatal("foreign key violation is not a unique violation")
	}
}
