package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SizeVariant tracks stock for a single size of a product.
type SizeVariant struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index" json:"product_id"`
	Label     string    `gorm:"column:label;not null" json:"label"`
	Stock     int       `gorm:"column:stock;not null;default:0" json:"stock"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (SizeVariant) TableName() string { return "size_variants" }

func (v *SizeVariant) BeforeCreate(_ *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
