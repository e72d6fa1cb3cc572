package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/threadkart/threadkart-backend/pkg/db/models"
	"github.com/threadkart/threadkart-backend/pkg/enums"
	pkgerrors "github.com/threadkart/threadkart-backend/pkg/errors"
	"github.com/threadkart/threadkart-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository owns Order/SellerOrder/OrderItem persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateSellerOrder(ctx context.Context, sellerOrder *models.SellerOrder) error
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error
	UpdateOrderTotal(ctx context.Context, orderID uuid.UUID, total decimal.Decimal) error
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error
	UpdatePayment(ctx context.Context, orderID uuid.UUID, fields map[string]any) error
	FindByIDForBuyer(ctx context.Context, orderID, buyerID uuid.UUID) (*models.Order, error)
	FindByBuyer(ctx context.Context, buyerID uuid.UUID, params pagination.Params) ([]models.Order, error)
	FindSellerOrdersBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) ([]models.SellerOrder, error)
	FindSellerOrderForSeller(ctx context.Context, sellerOrderID, sellerID uuid.UUID) (*models.SellerOrder, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit("SellerOrders").Create(order).Error
}

func (r *repository) CreateSellerOrder(ctx context.Context, sellerOrder *models.SellerOrder) error {
	return r.db.WithContext(ctx).Omit("Items").Create(sellerOrder).Error
}

func (r *repository) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) UpdateOrderTotal(ctx context.Context, orderID uuid.UUID, total decimal.Decimal) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("total_amount", total).Error
}

func (r *repository) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("status", status).Error
}

func (r *repository) UpdatePayment(ctx context.Context, orderID uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(fields).Error
}

func (r *repository) FindByIDForBuyer(ctx context.Context, orderID, buyerID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("SellerOrders", func(db *gorm.DB) *gorm.DB {
			return db.Order("seller_orders.created_at ASC")
		}).
		Preload("SellerOrders.Items").
		Where("id = ? AND buyer_id = ?", orderID, buyerID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByBuyer(ctx context.Context, buyerID uuid.UUID, params pagination.Params) ([]models.Order, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	query := r.db.WithContext(ctx).
		Preload("SellerOrders").
		Where("buyer_id = ?", buyerID)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Order
	err = query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindSellerOrdersBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) ([]models.SellerOrder, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	query := r.db.WithContext(ctx).
		Preload("Items").
		Where("seller_id = ?", sellerID)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.SellerOrder
	err = query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindSellerOrderForSeller(ctx context.Context, sellerOrderID, sellerID uuid.UUID) (*models.SellerOrder, error) {
	var sellerOrder models.SellerOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND seller_id = ?", sellerOrderID, sellerID).
		First(&sellerOrder).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "seller order not found")
		}
		return nil, err
	}
	return &sellerOrder, nil
}
