package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/threadkart/threadkart-backend/pkg/enums"
	"gorm.io/gorm"
)

// SellerOrder groups the items of one order that belong to one seller. Its
// status is derived from item statuses, never set directly.
type SellerOrder struct {
	ID          uuid.UUID               `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	OrderID     uuid.UUID               `gorm:"column:order_id;type:uuid;not null;index" json:"order_id"`
	SellerID    uuid.UUID               `gorm:"column:seller_id;type:uuid;not null;index" json:"seller_id"`
	Status      enums.SellerOrderStatus `gorm:"column:status;type:varchar(16);not null;default:pending" json:"status"`
	TotalAmount decimal.Decimal         `gorm:"column:total_amount;type:numeric(10,2);not null" json:"total_amount"`
	Items       []OrderItem             `gorm:"foreignKey:SellerOrderID" json:"items,omitempty"`
	CreatedAt   time.Time               `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time               `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (SellerOrder) TableName() string { return "seller_orders" }

func (s *SellerOrder) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
