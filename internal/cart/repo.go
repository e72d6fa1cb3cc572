package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/threadkart/threadkart-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository is the cart persistence surface. The checkout service consumes it
// through WithTx so cart reads and the final clear share the checkout
// transaction.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindLinesByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.CartLine, error)
	FindLine(ctx context.Context, buyerID, productID uuid.UUID, sizeVariantID *uuid.UUID) (*models.CartLine, error)
	CreateLine(ctx context.Context, line *models.CartLine) error
	UpdateQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error
	DeleteLine(ctx context.Context, buyerID, lineID uuid.UUID) (int64, error)
	Clear(ctx context.Context, buyerID uuid.UUID) error
	ReplaceLines(ctx context.Context, buyerID uuid.UUID, lines []models.CartLine) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindLinesByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Product.SizeVariants").
		Where("buyer_id = ?", buyerID).
		Order("created_at ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repository) FindLine(ctx context.Context, buyerID, productID uuid.UUID, sizeVariantID *uuid.UUID) (*models.CartLine, error) {
	query := r.db.WithContext(ctx).
		Where("buyer_id = ? AND product_id = ?", buyerID, productID)
	if sizeVariantID != nil {
		query = query.Where("size_variant_id = ?", *sizeVariantID)
	} else {
		query = query.Where("size_variant_id IS NULL")
	}

	var line models.CartLine
	if err := query.First(&line).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &line, nil
}

func (r *repository) CreateLine(ctx context.Context, line *models.CartLine) error {
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *repository) UpdateQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).Model(&models.CartLine{}).
		Where("id = ?", lineID).
		Update("quantity", quantity).Error
}

func (r *repository) DeleteLine(ctx context.Context, buyerID, lineID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND buyer_id = ?", lineID, buyerID).
		Delete(&models.CartLine{})
	return res.RowsAffected, res.Error
}

func (r *repository) Clear(ctx context.Context, buyerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Delete(&models.CartLine{}).Error
}

func (r *repository) ReplaceLines(ctx context.Context, buyerID uuid.UUID, lines []models.CartLine) error {
	if err := r.Clear(ctx, buyerID); err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&lines).Error
}
