package fulfillment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/threadkart/threadkart-backend/pkg/db/models"
	"github.com/threadkart/threadkart-backend/pkg/enums"
	pkgerrors "github.com/threadkart/threadkart-backend/pkg/errors"
	"gorm.io/gorm"
)

// Repository is the persistence surface the fulfillment service needs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindItemForSeller(ctx context.Context, itemID, sellerID uuid.UUID) (*models.OrderItem, error)
	UpdateItemStatus(ctx context.Context, itemID uuid.UUID, status enums.OrderItemStatus) error
	FindSiblingStatuses(ctx context.Context, sellerOrderID uuid.UUID) ([]enums.OrderItemStatus, error)
	UpdateSellerOrderStatus(ctx context.Context, sellerOrderID uuid.UUID, status enums.SellerOrderStatus) error
	FindSellerOrderStatuses(ctx context.Context, orderID uuid.UUID) ([]enums.SellerOrderStatus, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a fulfillment repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindItemForSeller(ctx context.Context, itemID, sellerID uuid.UUID) (*models.OrderItem, error) {
	var item models.OrderItem
	err := r.db.WithContext(ctx).
		Where("id = ? AND seller_id = ?", itemID, sellerID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
		}
		return nil, err
	}
	return &item, nil
}

func (r *repository) UpdateItemStatus(ctx context.Context, itemID uuid.UUID, status enums.OrderItemStatus) error {
	return r.db.WithContext(ctx).Model(&models.OrderItem{}).
		Where("id = ?", itemID).
		Update("status", status).Error
}

func (r *repository) FindSiblingStatuses(ctx context.Context, sellerOrderID uuid.UUID) ([]enums.OrderItemStatus, error) {
	var statuses []enums.OrderItemStatus
	err := r.db.WithContext(ctx).Model(&models.OrderItem{}).
		Where("seller_order_id = ?", sellerOrderID).
		Pluck("status", &statuses).Error
	if err != nil {
		return nil, err
	}
	return statuses, nil
}

func (r *repository) UpdateSellerOrderStatus(ctx context.Context, sellerOrderID uuid.UUID, status enums.SellerOrderStatus) error {
	return r.db.WithContext(ctx).Model(&models.SellerOrder{}).
		Where("id = ?", sellerOrderID).
		Update("status", status).Error
}

func (r *repository) FindSellerOrderStatuses(ctx context.Context, orderID uuid.UUID) ([]enums.SellerOrderStatus, error) {
	var statuses []enums.SellerOrderStatus
	err := r.db.WithContext(ctx).Model(&models.SellerOrder{}).
		Where("order_id = ?", orderID).
		Pluck("status", &statuses).Error
	if err != nil {
		return nil, err
	}
	return statuses, nil
}

func (r *repository) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("status", status).Error
}
