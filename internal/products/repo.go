package products

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/threadkart/threadkart-backend/pkg/db/models"
	pkgerrors "github.com/threadkart/threadkart-backend/pkg/errors"
	"gorm.io/gorm"
)

// Repository reads catalog rows for the cart and checkout flows. Catalog CRUD
// itself lives with the catalog service; the fulfillment engine only needs
// lookups.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a product repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("SizeVariants").
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]*models.Product{}, nil
	}

	var rows []models.Product
	err := r.db.WithContext(ctx).
		Preload("SizeVariants").
		Where("id IN ?", ids).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*models.Product, len(rows))
	for i := range rows {
		byID[rows[i].ID] = &rows[i]
	}
	return byID, nil
}
