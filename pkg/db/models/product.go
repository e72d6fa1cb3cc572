package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/threadkart/threadkart-backend/pkg/enums"
	"gorm.io/gorm"
)

// Product is a seller-owned catalog entry. Stock lives either on the product
// itself or on its size variants, never both.
type Product struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SellerID      *uuid.UUID          `gorm:"column:seller_id;type:uuid;index" json:"seller_id"`
	Title         string              `gorm:"column:title;not null" json:"title"`
	Description   string              `gorm:"column:description" json:"description,omitempty"`
	Tags          pq.StringArray      `gorm:"column:tags;type:text[]" json:"tags,omitempty"`
	Price         decimal.Decimal     `gorm:"column:price;type:numeric(10,2);not null" json:"price"`
	DiscountType  enums.DiscountType  `gorm:"column:discount_type;type:varchar(16);default:none" json:"discount_type"`
	DiscountValue *decimal.Decimal    `gorm:"column:discount_value;type:numeric(10,2)" json:"discount_value,omitempty"`
	Stock         int                 `gorm:"column:stock;not null;default:0" json:"stock"`
	Active        bool                `gorm:"column:active;not null;default:true" json:"active"`
	SizeVariants  []SizeVariant       `gorm:"foreignKey:ProductID" json:"size_variants,omitempty"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// HasVariants reports whether stock is tracked per size variant.
func (p *Product) HasVariants() bool {
	return len(p.SizeVariants) > 0
}
