package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/threadkart/threadkart-backend/pkg/enums"
	"github.com/threadkart/threadkart-backend/pkg/types"
	"gorm.io/gorm"
)

// Order is the buyer-facing record of a single checkout. Its status is never
// written directly by handlers; it is derived from the seller orders beneath it.
type Order struct {
	ID               uuid.UUID         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	BuyerID          uuid.UUID         `gorm:"column:buyer_id;type:uuid;not null;index" json:"buyer_id"`
	Status           enums.OrderStatus `gorm:"column:status;type:varchar(16);not null;default:pending" json:"status"`
	ShippingAddress  types.Address     `gorm:"column:shipping_address;type:jsonb;serializer:json" json:"shipping_address"`
	TotalAmount      decimal.Decimal   `gorm:"column:total_amount;type:numeric(10,2);not null" json:"total_amount"`
	PaymentReference *string           `gorm:"column:payment_reference" json:"payment_reference,omitempty"`
	PaidAt           *time.Time        `gorm:"column:paid_at" json:"paid_at,omitempty"`
	SellerOrders     []SellerOrder     `gorm:"foreignKey:OrderID" json:"seller_orders,omitempty"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Order) TableName() string { return "orders" }

func (o *Order) BeforeCreate(_ *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
