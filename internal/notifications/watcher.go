package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hmartinez-dev/tiendita-backend/internal/store"
	"github.com/hmartinez-dev/tiendita-backend/pkg/enums"
	pkgerrors "github.com/hmartinez-dev/tiendita-backend/pkg/errors"
	"github.com/hmartinez-dev/tiendita-backend/pkg/logger"
	"github.com/hmartinez-dev/tiendita-backend/pkg/models"
)

const inventoryRoute = "/inventory"

// LowStockWatcher consumes product snapshots and raises a low-stock
// notification whenever a product's quantity crosses down to the
// threshold. The first snapshot only seeds the baseline; repeats per
// product are suppressed by the service's unread de-duplication.
type LowStockWatcher struct {
	products  *store.Store[models.Product]
	svc       Service
	threshold decimal.Decimal
	logg      *logger.Logger
}

// NewLowStockWatcher wires the watcher.
func NewLowStockWatcher(products *store.Store[models.Product], svc Service, threshold decimal.Decimal, logg *logger.Logger) (*LowStockWatcher, error) {
	if products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "product store required")
	}
	if svc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications service required")
	}
	return &LowStockWatcher{products: products, svc: svc, threshold: threshold, logg: logg}, nil
}

// Run blocks until ctx is done, watching the product snapshot stream.
func (w *LowStockWatcher) Run(ctx context.Context) {
	snapshots, cancel := w.products.Subscribe()
	defer cancel()

	baseline := map[uuid.UUID]decimal.Decimal{}
	for id, qty := range quantities(w.products.List(ctx)) {
		baseline[id] = qty
	}

	for {
		select {
		case <-ctx.Done():
			return
		case snapshot, ok := <-snapshots:
			if !ok {
				return
			}
			w.observe(ctx, snapshot, baseline)
		}
	}
}

func (w *LowStockWatcher) observe(ctx context.Context, snapshot []models.Product, baseline map[uuid.UUID]decimal.Decimal) {
	seen := map[uuid.UUID]bool{}
	for _, product := range snapshot {
		seen[product.ID] = true
		previous, known := baseline[product.ID]
		baseline[product.ID] = product.Quantity

		if product.Quantity.GreaterThan(w.threshold) {
			continue
		}
		// Only a downward crossing alerts; a product sitting low stays quiet.
		if known && previous.LessThanOrEqual(w.threshold) {
			continue
		}
		if !known {
			continue
		}

		productID := product.ID
		route := inventoryRoute
		_, err := w.svc.Add(ctx, AddInput{
			Category:   enums.NotificationCategoryLowStock,
			Message:    fmt.Sprintf("%s is running low: %s left", product.Name, product.Quantity.String()),
			ProductID:  &productID,
			NavigateTo: &route,
		})
		if err != nil && w.logg != nil {
			w.logg.Error(w.logg.WithProductID(ctx, product.ID.String()), "low stock notification failed", err)
		}
	}
	for id := range baseline {
		if !seen[id] {
			delete(baseline, id)
		}
	}
}

func quantities(products []models.Product) map[uuid.UUID]decimal.Decimal {
	out := make(map[uuid.UUID]decimal.Decimal, len(products))
	for _, p := range products {
		out[p.ID] = p.Quantity
	}
	return out
}
