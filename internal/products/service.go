package products

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hmartinez-dev/tiendita-backend/internal/store"
	"github.com/hmartinez-dev/tiendita-backend/pkg/enums"
	pkgerrors "github.com/hmartinez-dev/tiendita-backend/pkg/errors"
	"github.com/hmartinez-dev/tiendita-backend/pkg/models"
)

// Service exposes product catalog and stock management operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Product, error)
	Update(ctx context.Context, productID uuid.UUID, input UpdateInput) (*models.Product, error)
	Delete(ctx context.Context, productID uuid.UUID) error
	Get(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	List(ctx context.Context) []models.Product
}

// CreateInput holds the validated payload to create a product.
type CreateInput struct {
	Name           string
	Type           enums.ProductType
	WholesalePrice decimal.Decimal
	RetailPrice    decimal.Decimal
	Quantity       decimal.Decimal
}

// UpdateInput holds optional mutation values for a product.
type UpdateInput struct {
	Name           *string
	Type           *enums.ProductType
	WholesalePrice *decimal.Decimal
	RetailPrice    *decimal.Decimal
	Quantity       *decimal.Decimal
}

type service struct {
	products *store.Store[models.Product]
	now      func() time.Time
}

// NewService wires product dependencies.
func NewService(products *store.Store[models.Product]) (Service, error) {
	if products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "product store required")
	}
	return &service{products: products, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Product, error) {
	candidate := models.Product{
		Name:           input.Name,
		Type:           input.Type,
		WholesalePrice: input.WholesalePrice,
		RetailPrice:    input.RetailPrice,
		Quantity:       input.Quantity,
	}
	if err := Validate(candidate); err != nil {
		return nil, err
	}

	stored := s.products.Add(ctx, candidate)
	return &stored, nil
}

func (s *service) Update(ctx context.Context, productID uuid.UUID, input UpdateInput) (*models.Product, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	current, ok := s.products.Get(ctx, productID)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	candidate := applyPatch(current, input)
	if err := Validate(candidate); err != nil {
		return nil, err
	}

	updated, ok := s.products.Edit(ctx, productID, func(p models.Product) models.Product {
		next := applyPatch(p, input)
		next.UpdatedAt = s.now()
		return next
	})
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return &updated, nil
}

func (s *service) Delete(ctx context.Context, productID uuid.UUID) error {
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	// Historical sales keep their snapshots; nothing cascades.
	if !s.products.Remove(ctx, productID) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

func (s *service) Get(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, ok := s.products.Get(ctx, productID)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return &product, nil
}

func (s *service) List(ctx context.Context) []models.Product {
	return s.products.List(ctx)
}

func applyPatch(p models.Product, input UpdateInput) models.Product {
	if input.Name != nil {
		p.Name = *input.Name
	}
	if input.Type != nil {
		p.Type = *input.Type
	}
	if input.WholesalePrice != nil {
		p.WholesalePrice = *input.WholesalePrice
	}
	if input.RetailPrice != nil {
		p.RetailPrice = *input.RetailPrice
	}
	if input.Quantity != nil {
		p.Quantity = *input.Quantity
	}
	return p
}
