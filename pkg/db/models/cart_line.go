package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartLine is a buyer's pending purchase of a product (optionally a size).
// One line per (buyer, product, variant) tuple; repeated adds bump quantity.
type CartLine struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	BuyerID       uuid.UUID  `gorm:"column:buyer_id;type:uuid;not null;uniqueIndex:ux_cart_lines_buyer_product_variant" json:"buyer_id"`
	ProductID     uuid.UUID  `gorm:"column:product_id;type:uuid;not null;uniqueIndex:ux_cart_lines_buyer_product_variant" json:"product_id"`
	SizeVariantID *uuid.UUID `gorm:"column:size_variant_id;type:uuid;uniqueIndex:ux_cart_lines_buyer_product_variant" json:"size_variant_id,omitempty"`
	Quantity      int        `gorm:"column:quantity;not null" json:"quantity"`
	Product       *Product   `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (CartLine) TableName() string { return "cart_lines" }

func (l *CartLine) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
