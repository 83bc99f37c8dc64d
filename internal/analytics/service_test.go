package analytics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hmartinez-dev/tiendita-backend/internal/store"
	"github.com/hmartinez-dev/tiendita-backend/pkg/enums"
	pkgerrors "github.com/hmartinez-dev/tiendita-backend/pkg/errors"
	"github.com/hmartinez-dev/tiendita-backend/pkg/kv"
	"github.com/hmartinez-dev/tiendita-backend/pkg/metrics"
	"github.com/hmartinez-dev/tiendita-backend/pkg/models"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func newTestService(t *testing.T) (*service, *store.Stores) {
	t.Helper()
	stores := store.NewStores(kv.NewMemoryStore(), nil, metrics.NewStoreMetrics(nil))
	svc, err := NewService(stores.Sales, stores.Products)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	impl := svc.(*service)
	impl.now = func() time.Time { return testNow }
	return impl, stores
}

func seedSale(stores *store.Stores, soldAt time.Time, items ...models.SaleItem) models.Sale {
	sale := models.Sale{ID: uuid.New(), SoldAt: soldAt, Items: items}
	for i := range sale.Items {
		sale.Items[i].SaleID = sale.ID
		if sale.Items[i].ID == uuid.Nil {
			sale.Items[i].ID = uuid.New()
		}
	}
	sale.RecomputeTotals()
	return stores.Sales.Add(context.Background(), sale)
}

func item(productID uuid.UUID, name, qty, wholesale, retail string) models.SaleItem {
	return models.SaleItem{
		ProductID:      productID,
		ProductName:    name,
		ProductType:    enums.ProductTypeUnit,
		Quantity:       dec(qty),
		WholesalePrice: dec(wholesale),
		RetailPrice:    dec(retail),
	}
}

func TestDailyRevenueWithNoSalesIsDenseZeroSeries(t *testing.T) {
	svc, _ := newTestService(t)

	buckets, err := svc.Revenue(context.Background(), TimeframeDaily)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(buckets) != 24 {
		t.Fatalf("expected 24 buckets, got %d", len(buckets))
	}
	for _, b := range buckets {
		if !b.Total.IsZero() {
			t.Fatalf("bucket %s expected zero total, got %s", b.Label, b.Total)
		}
	}
}

func TestDailyRevenueBucketsByHour(t *testing.T) {
	svc, stores := newTestService(t)
	productID := uuid.New()

	morning := time.Date(2024, 6, 15, 9, 15, 0, 0, time.Local)
	seedSale(stores, morning, item(productID, "Cafe", "2", "5", "8"))           // 16
	seedSale(stores, morning.Add(20*time.Minute), item(productID, "Cafe", "1", "5", "8")) // 8
	evening := time.Date(2024, 6, 15, 20, 0, 0, 0, time.Local)
	seedSale(stores, evening, item(productID, "Cafe", "3", "5", "8")) // 24
	// A sale outside today never lands in a daily bucket.
	seedSale(stores, morning.AddDate(0, 0, -1), item(productID, "Cafe", "10", "5", "8"))

	buckets, err := svc.Revenue(context.Background(), TimeframeDaily)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !buckets[9].Total.Equal(dec("24")) {
		t.Fatalf("expected 24 in the 09:00 bucket, got %s", buckets[9].Total)
	}
	if !buckets[20].Total.Equal(dec("24")) {
		t.Fatalf("expected 24 in the 20:00 bucket, got %s", buckets[20].Total)
	}

	sum := decimal.Zero
	for _, b := range buckets {
		sum = sum.Add(b.Total)
	}
	if !sum.Equal(dec("48")) {
		t.Fatalf("bucket sums must equal in-window revenue, got %s", sum)
	}
}

func TestRevenueBoundariesAreInclusive(t *testing.T) {
	svc, stores := newTestService(t)
	productID := uuid.New()

	midnight := time.Date(2024, 6, 15, 0, 0, 0, 0, time.Local)
	lastInstant := time.Date(2024, 6, 15, 9, 59, 59, int(time.Second-time.Nanosecond), time.Local)
	seedSale(stores, midnight, item(productID, "A", "1", "0", "5"))
	seedSale(stores, lastInstant, item(productID, "A", "1", "0", "7"))

	buckets, err := svc.Revenue(context.Background(), TimeframeDaily)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !buckets[0].Total.Equal(dec("5")) {
		t.Fatalf("bucket start is inclusive, got %s", buckets[0].Total)
	}
	if !buckets[9].Total.Equal(dec("7")) {
		t.Fatalf("bucket end is inclusive, got %s", buckets[9].Total)
	}
}

func TestWeeklyRevenueConservesTotal(t *testing.T) {
	svc, stores := newTestService(t)
	productID := uuid.New()

	inWindow := decimal.Zero
	for d := 0; d < 7; d++ {
		soldAt := time.Date(2024, 6, 9+d, 12, 0, 0, 0, time.Local)
		sale := seedSale(stores, soldAt, item(productID, "Pan", "1", "1", "3"))
		inWindow = inWindow.Add(sale.Total)
	}
	// Outside the 7-day window.
	seedSale(stores, time.Date(2024, 6, 8, 12, 0, 0, 0, time.Local), item(productID, "Pan", "5", "1", "3"))

	buckets, err := svc.Revenue(context.Background(), TimeframeWeekly)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sum := decimal.Zero
	for _, b := range buckets {
		sum = sum.Add(b.Total)
	}
	if !sum.Equal(inWindow) {
		t.Fatalf("expected conserved total %s, got %s", inWindow, sum)
	}
}

func TestRevenueUnknownTimeframe(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Revenue(context.Background(), Timeframe("decade"))
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTopProductsRankedByProfit(t *testing.T) {
	svc, stores := newTestService(t)
	soldAt := time.Date(2024, 6, 14, 12, 0, 0, 0, time.Local)

	low := uuid.New()
	high := uuid.New()
	unsold := uuid.New()
	stores.Products.Add(context.Background(), models.Product{ID: unsold, Name: "Nunca", Type: enums.ProductTypeUnit})

	seedSale(stores, soldAt,
		item(low, "Chicle", "10", "1", "1.50"), // profit 5
		item(high, "Cafe", "4", "5", "9"),      // profit 16
	)
	seedSale(stores, soldAt.Add(time.Hour), item(high, "Cafe", "1", "5", "9")) // +4

	ranking, err := svc.TopProducts(context.Background(), TimeframeWeekly)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranking) != 2 {
		t.Fatalf("expected 2 products, got %d", len(ranking))
	}
	if ranking[0].ProductID != high || !ranking[0].Profit.Equal(dec("20")) {
		t.Fatalf("expected Cafe first with profit 20, got %+v", ranking[0])
	}
	if !ranking[0].QuantitySold.Equal(dec("5")) {
		t.Fatalf("expected quantity 5, got %s", ranking[0].QuantitySold)
	}
	if ranking[1].ProductID != low || !ranking[1].Profit.Equal(dec("5")) {
		t.Fatalf("expected Chicle second with profit 5, got %+v", ranking[1])
	}
	for _, entry := range ranking {
		if entry.ProductID == unsold {
			t.Fatal("a product with no sales in the window must not rank")
		}
	}
}

func TestTopProductsCapAndTieOrder(t *testing.T) {
	svc, stores := newTestService(t)
	soldAt := time.Date(2024, 6, 14, 12, 0, 0, 0, time.Local)

	var items []models.SaleItem
	ids := make([]uuid.UUID, 12)
	for i := range ids {
		ids[i] = uuid.New()
		// Identical profit everywhere: the tie breaks by first-seen order.
		items = append(items, item(ids[i], fmt.Sprintf("P%02d", i), "1", "1", "2"))
	}
	seedSale(stores, soldAt, items...)

	ranking, err := svc.TopProducts(context.Background(), TimeframeWeekly)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranking) != TopProductLimit {
		t.Fatalf("expected cap of %d, got %d", TopProductLimit, len(ranking))
	}
	for i, entry := range ranking {
		if entry.ProductID != ids[i] {
			t.Fatalf("tie order must follow first-seen order; position %d got %s", i, entry.Name)
		}
	}
}

func TestTopProductsUseSnapshotsForDeletedProducts(t *testing.T) {
	svc, stores := newTestService(t)
	soldAt := time.Date(2024, 6, 14, 12, 0, 0, 0, time.Local)

	// The product was deleted after the sale; only the snapshot names it.
	ghost := uuid.New()
	seedSale(stores, soldAt, item(ghost, "Descontinuado", "2", "1", "4"))

	ranking, err := svc.TopProducts(context.Background(), TimeframeWeekly)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranking) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(ranking))
	}
	if ranking[0].Name != "Descontinuado" {
		t.Fatalf("expected snapshot name, got %q", ranking[0].Name)
	}
	if !ranking[0].Profit.Equal(dec("6")) {
		t.Fatalf("expected profit 6, got %s", ranking[0].Profit)
	}
}

func TestTopProductsFallBackToLiveProductWhenSnapshotNameMissing(t *testing.T) {
	svc, stores := newTestService(t)
	soldAt := time.Date(2024, 6, 14, 12, 0, 0, 0, time.Local)

	productID := uuid.New()
	stores.Products.Add(context.Background(), models.Product{
		ID: productID, Name: "Vivo", Type: enums.ProductTypeUnit,
	})
	legacy := item(productID, "", "1", "1", "2")
	seedSale(stores, soldAt, legacy)

	ranking, err := svc.TopProducts(context.Background(), TimeframeWeekly)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranking) != 1 || ranking[0].Name != "Vivo" {
		t.Fatalf("expected live-product fallback, got %+v", ranking)
	}
}
