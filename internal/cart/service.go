package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/threadkart/threadkart-backend/pkg/db/models"
	pkgerrors "github.com/threadkart/threadkart-backend/pkg/errors"
)

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service manages the buyer's pending cart lines.
type Service interface {
	List(ctx context.Context, buyerID uuid.UUID) ([]models.CartLine, error)
	AddLine(ctx context.Context, buyerID uuid.UUID, input AddLineInput) (*models.CartLine, error)
	UpdateLine(ctx context.Context, buyerID, lineID uuid.UUID, quantity int) error
	RemoveLine(ctx context.Context, buyerID, lineID uuid.UUID) error
	Clear(ctx context.Context, buyerID uuid.UUID) error
}

// AddLineInput captures one add-to-cart request.
type AddLineInput struct {
	ProductID     uuid.UUID
	SizeVariantID *uuid.UUID
	Quantity      int
}

type service struct {
	repo     Repository
	products productLoader
}

// NewService builds the cart service.
func NewService(repo Repository, products productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{repo: repo, products: products}, nil
}

func (s *service) List(ctx context.Context, buyerID uuid.UUID) ([]models.CartLine, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id required")
	}
	return s.repo.FindLinesByBuyer(ctx, buyerID)
}

// AddLine merges repeated adds of the same (product, variant) into a single
// line by bumping its quantity. The governing stock counter is fixed here: a
// line created with a size variant keeps it for life.
func (s *service) AddLine(ctx context.Context, buyerID uuid.UUID, input AddLineInput) (*models.CartLine, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "quantity must be positive, got %d", input.Quantity)
	}

	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "product is not available")
	}

	if product.HasVariants() {
		if input.SizeVariantID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "size variant required for this product")
		}
		if !variantBelongs(product, *input.SizeVariantID) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "size variant does not belong to product")
		}
	} else if input.SizeVariantID != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product has no size variants")
	}

	existing, err := s.repo.FindLine(ctx, buyerID, input.ProductID, input.SizeVariantID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		existing.Quantity += input.Quantity
		if err := s.repo.UpdateQuantity(ctx, existing.ID, existing.Quantity); err != nil {
			return nil, err
		}
		return existing, nil
	}

	line := &models.CartLine{
		BuyerID:       buyerID,
		ProductID:     input.ProductID,
		SizeVariantID: input.SizeVariantID,
		Quantity:      input.Quantity,
	}
	if err := s.repo.CreateLine(ctx, line); err != nil {
		return nil, err
	}
	return line, nil
}

func (s *service) UpdateLine(ctx context.Context, buyerID, lineID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "quantity must be positive, got %d", quantity)
	}

	line, err := s.findOwnedLine(ctx, buyerID, lineID)
	if err != nil {
		return err
	}
	return s.repo.UpdateQuantity(ctx, line.ID, quantity)
}

func (s *service) RemoveLine(ctx context.Context, buyerID, lineID uuid.UUID) error {
	affected, err := s.repo.DeleteLine(ctx, buyerID, lineID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	return nil
}

func (s *service) Clear(ctx context.Context, buyerID uuid.UUID) error {
	if buyerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "buyer id required")
	}
	return s.repo.Clear(ctx, buyerID)
}

func (s *service) findOwnedLine(ctx context.Context, buyerID, lineID uuid.UUID) (*models.CartLine, error) {
	lines, err := s.repo.FindLinesByBuyer(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	for i := range lines {
		if lines[i].ID == lineID {
			return &lines[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
}

func variantBelongs(product *models.Product, variantID uuid.UUID) bool {
	for _, v := range product.SizeVariants {
		if v.ID == variantID {
			return true
		}
	}
	return false
}
