package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hmartinez-dev/tiendita-backend/internal/store"
	"github.com/hmartinez-dev/tiendita-backend/pkg/enums"
	pkgerrors "github.com/hmartinez-dev/tiendita-backend/pkg/errors"
	"github.com/hmartinez-dev/tiendita-backend/pkg/models"
)

// TopProductLimit caps the ranking output.
const TopProductLimit = 10

// Service is the pure read path over recorded sales: time-bucketed
// revenue series and ranked product performance for a timeframe.
type Service interface {
	Revenue(ctx context.Context, tf Timeframe) ([]Bucket, error)
	TopProducts(ctx context.Context, tf Timeframe) ([]ProductPerformance, error)
}

// Bucket is one point of a revenue series. Buckets with no sales carry a
// zero total so charts get a dense, continuous axis.
type Bucket struct {
	Label string          `json:"label"`
	Start time.Time       `json:"start"`
	End   time.Time       `json:"end"`
	Total decimal.Decimal `json:"total"`
}

// ProductPerformance aggregates one product over the whole timeframe
// interval.
type ProductPerformance struct {
	ProductID    uuid.UUID         `json:"productId"`
	Name         string            `json:"name"`
	Type         enums.ProductType `json:"type"`
	QuantitySold decimal.Decimal   `json:"quantitySold"`
	Profit       decimal.Decimal   `json:"profit"`
}

type service struct {
	sales    *store.Store[models.Sale]
	products *store.Store[models.Product]
	now      func() time.Time
}

// NewService wires analytics dependencies.
func NewService(sales *store.Store[models.Sale], products *store.Store[models.Product]) (Service, error) {
	if sales == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "sales store required")
	}
	if products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "product store required")
	}
	return &service{sales: sales, products: products, now: time.Now}, nil
}

func (s *service) Revenue(ctx context.Context, tf Timeframe) ([]Bucket, error) {
	if !tf.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown timeframe")
	}

	spans := Spans(s.now(), tf)
	sales := s.sales.List(ctx)

	buckets := make([]Bucket, len(spans))
	for i, span := range spans {
		total := decimal.Zero
		for _, sale := range sales {
			if inInterval(sale.SoldAt, span.Start, span.End) {
				total = total.Add(sale.Total)
			}
		}
		buckets[i] = Bucket{Label: span.Label, Start: span.Start, End: span.End, Total: total}
	}
	return buckets, nil
}

func (s *service) TopProducts(ctx context.Context, tf Timeframe) ([]ProductPerformance, error) {
	if !tf.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown timeframe")
	}

	start, end := Interval(s.now(), tf)
	sales := s.sales.List(ctx)

	// Accumulate per product in first-seen order so the stable sort below
	// breaks profit ties deterministically.
	byProduct := map[uuid.UUID]int{}
	var ranking []ProductPerformance
	for _, sale := range sales {
		if !inInterval(sale.SoldAt, start, end) {
			continue
		}
		for _, item := range sale.Items {
			idx, ok := byProduct[item.ProductID]
			if !ok {
				idx = len(ranking)
				byProduct[item.ProductID] = idx
				ranking = append(ranking, ProductPerformance{
					ProductID: item.ProductID,
					Name:      item.ProductName,
					Type:      item.ProductType,
				})
			}
			entry := &ranking[idx]
			entry.QuantitySold = entry.QuantitySold.Add(item.Quantity)
			entry.Profit = entry.Profit.Add(item.RetailPrice.Sub(item.WholesalePrice).Mul(item.Quantity))
			if entry.Name == "" {
				entry.Name = item.ProductName
			}
		}
	}

	// The snapshot names the product; fall back to the live record only
	// when a snapshot is missing its name.
	for i := range ranking {
		if ranking[i].Name != "" {
			continue
		}
		if product, ok := s.products.Get(ctx, ranking[i].ProductID); ok {
			ranking[i].Name = product.Name
			if ranking[i].Type == "" {
				ranking[i].Type = product.Type
			}
		}
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Profit.GreaterThan(ranking[j].Profit)
	})
	if len(ranking) > TopProductLimit {
		ranking = ranking[:TopProductLimit]
	}
	return ranking, nil
}

func inInterval(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}
