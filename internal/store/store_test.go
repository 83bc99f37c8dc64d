package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hmartinez-dev/tiendita-backend/pkg/enums"
	"github.com/hmartinez-dev/tiendita-backend/pkg/kv"
	"github.com/hmartinez-dev/tiendita-backend/pkg/metrics"
	"github.com/hmartinez-dev/tiendita-backend/pkg/models"
)

func newTestStores(backend kv.Store) *Stores {
	return NewStores(backend, nil, metrics.NewStoreMetrics(nil))
}

func testProduct(name string, qty int64) models.Product {
	return models.Product{
		Name:           name,
		Type:           enums.ProductTypeUnit,
		WholesalePrice: decimal.NewFromInt(5),
		RetailPrice:    decimal.NewFromInt(8),
		Quantity:       decimal.NewFromInt(qty),
	}
}

func TestAddAssignsIdentity(t *testing.T) {
	backend := kv.NewMemoryStore()
	stores := newTestStores(backend)
	ctx := context.Background()

	stored := stores.Products.Add(ctx, testProduct("Rice", 10))
	if stored.ID == uuid.Nil {
		t.Fatal("expected assigned id")
	}
	if stored.CreatedAt.IsZero() || stored.UpdatedAt.IsZero() {
		t.Fatal("expected assigned timestamps")
	}

	data, err := backend.Get(ctx, KeyProducts)
	if err != nil {
		t.Fatalf("expected persisted snapshot: %v", err)
	}
	var persisted []models.Product
	if err := json.Unmarshal(data, &persisted); err != nil {
		t.Fatalf("persisted payload not json: %v", err)
	}
	if len(persisted) != 1 || persisted[0].ID != stored.ID {
		t.Fatalf("unexpected persisted state: %+v", persisted)
	}
}

func TestAddKeepsProvidedIdentity(t *testing.T) {
	stores := newTestStores(kv.NewMemoryStore())
	ctx := context.Background()

	id := uuid.New()
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local)
	p := testProduct("Beans", 3)
	p.ID = id
	p.CreatedAt = created
	p.UpdatedAt = created

	stored := stores.Products.Add(ctx, p)
	if stored.ID != id {
		t.Fatalf("expected provided id kept, got %s", stored.ID)
	}
	if !stored.CreatedAt.Equal(created) {
		t.Fatalf("expected provided timestamp kept, got %s", stored.CreatedAt)
	}
}

func TestLoadIsIdempotent(t *testing.T) {
	backend := kv.NewMemoryStore()
	ctx := context.Background()

	first := newTestStores(backend)
	first.Products.Add(ctx, testProduct("Oil", 4))

	stores := newTestStores(backend)
	if got := len(stores.Products.List(ctx)); got != 1 {
		t.Fatalf("expected 1 hydrated product, got %d", got)
	}

	// A write landing behind the store's back must not be re-read.
	if err := backend.Set(ctx, KeyProducts, []byte("[]")); err != nil {
		t.Fatalf("backend write failed: %v", err)
	}
	stores.Products.Load(ctx)
	if got := len(stores.Products.List(ctx)); got != 1 {
		t.Fatalf("load must hydrate once; got %d products", got)
	}
}

func TestLoadCorruptPayloadFallsBackToEmpty(t *testing.T) {
	backend := kv.NewMemoryStore()
	ctx := context.Background()
	if err := backend.Set(ctx, KeyProducts, []byte("{not json")); err != nil {
		t.Fatalf("backend write failed: %v", err)
	}

	stores := newTestStores(backend)
	if got := len(stores.Products.List(ctx)); got != 0 {
		t.Fatalf("expected empty collection on corrupt payload, got %d", got)
	}
	// The store keeps working afterwards.
	stores.Products.Add(ctx, testProduct("Sugar", 2))
	if got := len(stores.Products.List(ctx)); got != 1 {
		t.Fatalf("expected store usable after corrupt load, got %d", got)
	}
}

func TestEditUnknownIDReportsNotFound(t *testing.T) {
	stores := newTestStores(kv.NewMemoryStore())
	ctx := context.Background()
	stores.Products.Add(ctx, testProduct("Salt", 9))

	_, ok := stores.Products.Edit(ctx, uuid.New(), func(p models.Product) models.Product { return p })
	if ok {
		t.Fatal("expected edit of unknown id to report false")
	}
}

func TestEditDoesNotAlterUnrelatedFields(t *testing.T) {
	stores := newTestStores(kv.NewMemoryStore())
	ctx := context.Background()
	stored := stores.Products.Add(ctx, testProduct("Salt", 9))

	updated, ok := stores.Products.Edit(ctx, stored.ID, func(p models.Product) models.Product {
		p.Name = "Sea Salt"
		return p
	})
	if !ok {
		t.Fatal("expected edit to succeed")
	}
	if updated.Name != "Sea Salt" {
		t.Fatalf("expected renamed product, got %q", updated.Name)
	}
	if !updated.Quantity.Equal(stored.Quantity) || updated.ID != stored.ID {
		t.Fatal("edit must not touch unrelated fields")
	}
}

func TestRemoveAbsentIDIsNoop(t *testing.T) {
	stores := newTestStores(kv.NewMemoryStore())
	ctx := context.Background()
	stores.Products.Add(ctx, testProduct("Flour", 1))

	if stores.Products.Remove(ctx, uuid.New()) {
		t.Fatal("expected remove of absent id to report false")
	}
	if got := len(stores.Products.List(ctx)); got != 1 {
		t.Fatalf("collection must be untouched, got %d", got)
	}
}

func TestClearRemovesDurableKey(t *testing.T) {
	backend := kv.NewMemoryStore()
	stores := newTestStores(backend)
	ctx := context.Background()

	stores.Products.Add(ctx, testProduct("Corn", 7))
	stores.Products.Clear(ctx)

	if got := len(stores.Products.List(ctx)); got != 0 {
		t.Fatalf("expected empty collection, got %d", got)
	}
	if _, err := backend.Get(ctx, KeyProducts); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("clear must delete the durable key, got %v", err)
	}
}

func TestSalesOrderedNewestFirst(t *testing.T) {
	stores := newTestStores(kv.NewMemoryStore())
	ctx := context.Background()

	older := models.Sale{SoldAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local)}
	newer := models.Sale{SoldAt: time.Date(2024, 5, 2, 10, 0, 0, 0, time.Local)}
	stores.Sales.Add(ctx, older)
	stores.Sales.Add(ctx, newer)

	list := stores.Sales.List(ctx)
	if len(list) != 2 {
		t.Fatalf("expected 2 sales, got %d", len(list))
	}
	if !list[0].SoldAt.After(list[1].SoldAt) {
		t.Fatal("expected newest-first ordering")
	}
}

func TestSnapshotsAreCopyOnWrite(t *testing.T) {
	stores := newTestStores(kv.NewMemoryStore())
	ctx := context.Background()
	stored := stores.Products.Add(ctx, testProduct("Milk", 6))

	before := stores.Products.List(ctx)
	stores.Products.Edit(ctx, stored.ID, func(p models.Product) models.Product {
		p.Name = "Whole Milk"
		return p
	})

	if before[0].Name != "Milk" {
		t.Fatal("snapshot captured before the edit must not change")
	}
}

func TestSubscribeDeliversLatestSnapshot(t *testing.T) {
	stores := newTestStores(kv.NewMemoryStore())
	ctx := context.Background()

	ch, cancel := stores.Products.Subscribe()
	defer cancel()

	stores.Products.Add(ctx, testProduct("A", 1))
	stores.Products.Add(ctx, testProduct("B", 2))

	var latest []models.Product
	deadline := time.After(time.Second)
	for {
		select {
		case snap := <-ch:
			latest = snap
			if len(latest) == 2 {
				return
			}
		case <-deadline:
			t.Fatalf("never observed the latest snapshot; last had %d items", len(latest))
		}
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	stores := newTestStores(kv.NewMemoryStore())
	ch, cancel := stores.Products.Subscribe()
	cancel()
	cancel() // idempotent

	if _, open := <-ch; open {
		t.Fatal("expected closed channel after unsubscribe")
	}
}

type failingKV struct {
	setErr error
}

func (f *failingKV) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, kv.ErrNotFound
}

func (f *failingKV) Set(ctx context.Context, key string, value []byte) error {
	return f.setErr
}

func (f *failingKV) Delete(ctx context.Context, key string) error {
	return f.setErr
}

func (f *failingKV) Close() error { return nil }

func TestPersistFailureKeepsMemoryAuthoritative(t *testing.T) {
	stores := newTestStores(&failingKV{setErr: errors.New("quota exceeded")})
	ctx := context.Background()

	stored := stores.Products.Add(ctx, testProduct("Eggs", 12))
	got, ok := stores.Products.Get(ctx, stored.ID)
	if !ok {
		t.Fatal("expected entity in memory despite persist failure")
	}
	if got.Name != "Eggs" {
		t.Fatalf("unexpected entity %+v", got)
	}
}
