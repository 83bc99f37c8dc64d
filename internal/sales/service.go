package sales

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hmartinez-dev/tiendita-backend/internal/store"
	pkgerrors "github.com/hmartinez-dev/tiendita-backend/pkg/errors"
	"github.com/hmartinez-dev/tiendita-backend/pkg/models"
)

// Service records sales and keeps product stock reconciled with the sale
// lifecycle. Every operation is all-or-nothing: validation across the
// whole transaction completes before any state is touched.
type Service interface {
	Record(ctx context.Context, input RecordInput) (*models.Sale, error)
	Edit(ctx context.Context, saleID uuid.UUID, input EditInput) (*models.Sale, error)
	Delete(ctx context.Context, saleID uuid.UUID) error
	Get(ctx context.Context, saleID uuid.UUID) (*models.Sale, error)
	List(ctx context.Context) []models.Sale
}

// RecordInput is a whole transaction to record at once.
type RecordInput struct {
	SoldAt time.Time
	Items  []RecordItemInput
}

// RecordItemInput references a live product; name, type and prices are
// snapshotted from it at record time.
type RecordItemInput struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
}

// EditInput mutates an existing sale. Only line quantities and the sale
// timestamp are editable; snapshot prices stay frozen and totals are
// recomputed.
type EditInput struct {
	SoldAt *time.Time
	Items  []EditItemInput
}

// EditItemInput sets a new quantity for one existing sale line.
type EditItemInput struct {
	ItemID   uuid.UUID
	Quantity decimal.Decimal
}

type service struct {
	sales    *store.Store[models.Sale]
	products *store.Store[models.Product]
	now      func() time.Time

	// mu makes the check-then-apply of each operation atomic across the
	// sale and product collections.
	mu sync.Mutex
}

// NewService wires sales dependencies.
func NewService(sales *store.Store[models.Sale], products *store.Store[models.Product]) (Service, error) {
	if sales == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "sales store required")
	}
	if products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "product store required")
	}
	return &service{sales: sales, products: products, now: time.Now}, nil
}

func (s *service) Record(ctx context.Context, input RecordInput) (*models.Sale, error) {
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a sale needs at least one item")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate every line and the summed demand per product before
	// touching anything.
	requested := map[uuid.UUID]decimal.Decimal{}
	for _, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required on every item")
		}
		if !item.Quantity.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		product, ok := s.products.Get(ctx, item.ProductID)
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"productId": item.ProductID.String()})
		}
		if !product.Type.Fractional() && !item.Quantity.IsInteger() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit products sell in whole quantities").
				WithDetails(map[string]any{"productId": item.ProductID.String()})
		}
		requested[item.ProductID] = requested[item.ProductID].Add(item.Quantity)
	}
	for productID, total := range requested {
		product, _ := s.products.Get(ctx, productID)
		if err := ValidateRecordQuantities(productID, product.Quantity, total); err != nil {
			return nil, err
		}
	}

	now := s.now()
	sale := models.Sale{
		ID:        uuid.New(),
		SoldAt:    input.SoldAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if sale.SoldAt.IsZero() {
		sale.SoldAt = now
	}
	for _, item := range input.Items {
		product, _ := s.products.Get(ctx, item.ProductID)
		sale.Items = append(sale.Items, models.SaleItem{
			ID:             uuid.New(),
			SaleID:         sale.ID,
			ProductID:      product.ID,
			ProductName:    product.Name,
			ProductType:    product.Type,
			Quantity:       item.Quantity,
			WholesalePrice: product.WholesalePrice,
			RetailPrice:    product.RetailPrice,
		})
	}
	sale.RecomputeTotals()

	stored := s.sales.Add(ctx, sale)
	for productID, total := range requested {
		s.adjustStock(ctx, productID, total.Neg(), now)
	}
	return &stored, nil
}

func (s *service) Edit(ctx context.Context, saleID uuid.UUID, input EditInput) (*models.Sale, error) {
	if saleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale id required")
	}
	if input.SoldAt == nil && len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to edit")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sale, ok := s.sales.Get(ctx, saleID)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
	}

	// Resolve each requested change against its line, then validate the
	// net per-product delta before applying anything.
	type change struct {
		index     int
		productID uuid.UUID
		old       decimal.Decimal
		new       decimal.Decimal
	}
	changes := make([]change, 0, len(input.Items))
	seen := map[uuid.UUID]bool{}
	for _, edit := range input.Items {
		if seen[edit.ItemID] {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate item in edit").
				WithDetails(map[string]any{"itemId": edit.ItemID.String()})
		}
		seen[edit.ItemID] = true
		if !edit.Quantity.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		idx := -1
		for i, item := range sale.Items {
			if item.ID == edit.ItemID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale item not found").
				WithDetails(map[string]any{"itemId": edit.ItemID.String()})
		}
		item := sale.Items[idx]
		if !item.ProductType.Fractional() && !edit.Quantity.IsInteger() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit products sell in whole quantities").
				WithDetails(map[string]any{"itemId": edit.ItemID.String()})
		}
		changes = append(changes, change{index: idx, productID: item.ProductID, old: item.Quantity, new: edit.Quantity})
	}

	// A sale may hold several lines for the same product; validate the
	// summed quantities per product, like Record does, so the combined
	// delta can never overdraw stock.
	oldByProduct := map[uuid.UUID]decimal.Decimal{}
	newByProduct := map[uuid.UUID]decimal.Decimal{}
	for _, c := range changes {
		oldByProduct[c.productID] = oldByProduct[c.productID].Add(c.old)
		newByProduct[c.productID] = newByProduct[c.productID].Add(c.new)
	}
	for productID, requested := range newByProduct {
		product, ok := s.products.Get(ctx, productID)
		if !ok {
			// Weak reference to a deleted product: the edit applies to
			// the sale, stock reconciliation is a no-op.
			continue
		}
		if err := ValidateQuantityChange(productID, product.Quantity, oldByProduct[productID], requested); err != nil {
			return nil, err
		}
	}

	now := s.now()
	updated, _ := s.sales.Edit(ctx, saleID, func(current models.Sale) models.Sale {
		// Copy-on-write: never write through the shared items slice.
		items := make([]models.SaleItem, len(current.Items))
		copy(items, current.Items)
		for _, c := range changes {
			items[c.index].Quantity = c.new
		}
		current.Items = items
		if input.SoldAt != nil {
			current.SoldAt = *input.SoldAt
		}
		current.UpdatedAt = now
		current.RecomputeTotals()
		return current
	})

	for _, c := range changes {
		// delta = old - new: positive gives stock back, negative takes more.
		s.adjustStock(ctx, c.productID, c.old.Sub(c.new), now)
	}
	return &updated, nil
}

func (s *service) Delete(ctx context.Context, saleID uuid.UUID) error {
	if saleID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "sale id required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sale, ok := s.sales.Get(ctx, saleID)
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
	}
	if !s.sales.Remove(ctx, saleID) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
	}

	// Full reversal regardless of current stock level.
	now := s.now()
	for _, item := range sale.Items {
		s.adjustStock(ctx, item.ProductID, item.Quantity, now)
	}
	return nil
}

func (s *service) Get(ctx context.Context, saleID uuid.UUID) (*models.Sale, error) {
	sale, ok := s.sales.Get(ctx, saleID)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
	}
	return &sale, nil
}

func (s *service) List(ctx context.Context) []models.Sale {
	return s.sales.List(ctx)
}

// adjustStock applies a signed stock delta. A missing product is a weak
// reference and the adjustment is silently skipped.
func (s *service) adjustStock(ctx context.Context, productID uuid.UUID, delta decimal.Decimal, now time.Time) {
	if delta.IsZero() {
		return
	}
	s.products.Edit(ctx, productID, func(p models.Product) models.Product {
		p.Quantity = p.Quantity.Add(delta)
		p.UpdatedAt = now
		return p
	})
}
