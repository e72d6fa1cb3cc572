package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/threadkart/threadkart-backend/pkg/enums"
	"gorm.io/gorm"
)

// OrderItem is a single purchased line. Unit prices are snapshotted at
// checkout so later catalog edits never change what the buyer owes.
type OrderItem struct {
	ID                uuid.UUID             `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	OrderID           uuid.UUID             `gorm:"column:order_id;type:uuid;not null;index" json:"order_id"`
	SellerOrderID     uuid.UUID             `gorm:"column:seller_order_id;type:uuid;not null;index" json:"seller_order_id"`
	SellerID          uuid.UUID             `gorm:"column:seller_id;type:uuid;not null;index" json:"seller_id"`
	ProductID         uuid.UUID             `gorm:"column:product_id;type:uuid;not null" json:"product_id"`
	SizeVariantID     *uuid.UUID            `gorm:"column:size_variant_id;type:uuid" json:"size_variant_id,omitempty"`
	ProductTitle      string                `gorm:"column:product_title;not null" json:"product_title"`
	Quantity          int                   `gorm:"column:quantity;not null" json:"quantity"`
	UnitPrice         decimal.Decimal       `gorm:"column:unit_price;type:numeric(10,2);not null" json:"unit_price"`
	OriginalUnitPrice decimal.Decimal       `gorm:"column:original_unit_price;type:numeric(10,2);not null" json:"original_unit_price"`
	DiscountType      enums.DiscountType    `gorm:"column:discount_type;type:varchar(16);default:none" json:"discount_type"`
	DiscountValue     *decimal.Decimal      `gorm:"column:discount_value;type:numeric(10,2)" json:"discount_value,omitempty"`
	Status            enums.OrderItemStatus `gorm:"column:status;type:varchar(16);not null;default:pending" json:"status"`
	CreatedAt         time.Time             `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time             `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (OrderItem) TableName() string { return "order_items" }

func (i *OrderItem) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// LineTotal is the snapshotted unit price multiplied by quantity.
func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
