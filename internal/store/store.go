package store

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hmartinez-dev/tiendita-backend/pkg/kv"
	"github.com/hmartinez-dev/tiendita-backend/pkg/logger"
	"github.com/hmartinez-dev/tiendita-backend/pkg/metrics"
)

// Descriptor tells a Store how to handle one entity type.
type Descriptor[T any] struct {
	// Entity names the collection in logs and metrics.
	Entity string
	// Key is the fixed durable-storage key the collection lives under.
	Key string
	// ID extracts the entity identifier.
	ID func(T) uuid.UUID
	// Prepare assigns identity and creation timestamps when absent.
	// Called once on Add before the entity is stored.
	Prepare func(entity *T, now time.Time)
	// Newer orders the collection newest-first after every mutation.
	// Nil keeps insertion order (products have no inherent sort).
	Newer func(a, b T) bool
}

// Store is an in-process state container for one entity collection,
// persisted as a JSON array under a fixed key and fanned out to
// subscribers after every mutation.
//
// Snapshots are copy-on-write: a mutation builds a new slice and new
// element values, so a snapshot handed to a subscriber is never mutated
// afterward. Mutators that replace an element must also replace any
// reference fields (slices) inside it rather than writing through them.
//
// Persistence failures never surface to callers: the in-memory snapshot
// stays authoritative for the rest of the process lifetime, the failure
// is logged and counted.
type Store[T any] struct {
	desc Descriptor[T]
	kv   kv.Store
	logg *logger.Logger
	m    *metrics.StoreMetrics

	mu      sync.Mutex
	loaded  bool
	items   []T
	subs    map[int]chan []T
	nextSub int

	now func() time.Time
}

// New builds a store for one entity collection. There must be exactly one
// Store per durable key in a process; the caller wires the singleton.
func New[T any](desc Descriptor[T], backend kv.Store, logg *logger.Logger, m *metrics.StoreMetrics) *Store[T] {
	return &Store[T]{
		desc: desc,
		kv:   backend,
		logg: logg,
		m:    m,
		subs: map[int]chan []T{},
		now:  time.Now,
	}
}

// WithClock overrides the time source. Test hook.
func (s *Store[T]) WithClock(now func() time.Time) *Store[T] {
	s.now = now
	return s
}

// Load hydrates the collection from durable storage. It runs at most once
// per process; later calls are no-ops. A missing key or corrupt payload
// falls back to an empty collection and is logged, never returned.
func (s *Store[T]) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)
}

func (s *Store[T]) ensureLoaded(ctx context.Context) {
	if s.loaded {
		return
	}
	s.loaded = true

	data, err := s.kv.Get(ctx, s.desc.Key)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) && s.logg != nil {
			s.logg.Error(s.logg.WithEntity(ctx, s.desc.Entity), "store.load failed, starting empty", err)
		}
		return
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		if s.logg != nil {
			s.logg.Error(s.logg.WithEntity(ctx, s.desc.Entity), "store.load corrupt payload, starting empty", err)
		}
		return
	}
	s.items = items
	s.resort()
}

// List returns the current snapshot. The returned slice is the caller's to
// iterate but not to mutate through.
func (s *Store[T]) List(ctx context.Context) []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)
	return s.items
}

// Get returns the entity with the given id, if present.
func (s *Store[T]) Get(ctx context.Context, id uuid.UUID) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	for _, item := range s.items {
		if s.desc.ID(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Add stores a new entity, assigning identity and creation timestamp when
// absent, and returns the stored value.
func (s *Store[T]) Add(ctx context.Context, entity T) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	if s.desc.Prepare != nil {
		s.desc.Prepare(&entity, s.now())
	}

	next := make([]T, 0, len(s.items)+1)
	next = append(next, s.items...)
	next = append(next, entity)
	s.items = next
	s.resort()

	s.commit(ctx, "add")
	return entity
}

// Edit replaces the entity with the given id by apply's return value.
// Absent ids leave the collection untouched and report false.
func (s *Store[T]) Edit(ctx context.Context, id uuid.UUID, apply func(T) T) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	for i, item := range s.items {
		if s.desc.ID(item) != id {
			continue
		}
		updated := apply(item)
		next := make([]T, len(s.items))
		copy(next, s.items)
		next[i] = updated
		s.items = next
		s.resort()

		s.commit(ctx, "edit")
		return updated, true
	}
	var zero T
	return zero, false
}

// Remove deletes the entity with the given id. Absent ids are a no-op
// reporting false.
func (s *Store[T]) Remove(ctx context.Context, id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	for i, item := range s.items {
		if s.desc.ID(item) != id {
			continue
		}
		next := make([]T, 0, len(s.items)-1)
		next = append(next, s.items[:i]...)
		next = append(next, s.items[i+1:]...)
		s.items = next

		s.commit(ctx, "remove")
		return true
	}
	return false
}

// Replace overwrites the whole collection. Used by restore and by
// maintenance passes that rewrite state wholesale.
func (s *Store[T]) Replace(ctx context.Context, items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = true

	next := make([]T, len(items))
	copy(next, items)
	s.items = next
	s.resort()

	s.commit(ctx, "replace")
}

// Clear empties the collection and removes the durable key entirely,
// unlike persisting an empty array. Used by full application reset.
func (s *Store[T]) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = true
	s.items = nil

	if err := s.kv.Delete(ctx, s.desc.Key); err != nil {
		if s.logg != nil {
			s.logg.Error(s.logg.WithEntity(ctx, s.desc.Entity), "store.clear durable delete failed", err)
		}
		s.m.IncPersistFailure(s.desc.Entity)
	}
	s.m.IncMutation(s.desc.Entity, "clear")
	s.notify()
}

// Subscribe registers a snapshot listener. The channel has capacity one
// and coalesces: a subscriber that lags observes the latest state, never a
// half-applied intermediate. The returned function unsubscribes and
// closes the channel.
func (s *Store[T]) Subscribe() (<-chan []T, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan []T, 1)
	s.subs[id] = ch
	s.m.SetSubscribers(s.desc.Entity, len(s.subs))

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if existing, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(existing)
			s.m.SetSubscribers(s.desc.Entity, len(s.subs))
		}
	}
}

func (s *Store[T]) resort() {
	if s.desc.Newer == nil {
		return
	}
	sort.SliceStable(s.items, func(i, j int) bool {
		return s.desc.Newer(s.items[i], s.items[j])
	})
}

// commit persists the current snapshot and fans it out. Callers hold the
// mutex.
func (s *Store[T]) commit(ctx context.Context, op string) {
	s.m.IncMutation(s.desc.Entity, op)
	s.persist(ctx)
	s.notify()
}

func (s *Store[T]) persist(ctx context.Context) {
	items := s.items
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err == nil {
		err = s.kv.Set(ctx, s.desc.Key, data)
	}
	if err != nil {
		if s.logg != nil {
			s.logg.Error(s.logg.WithEntity(ctx, s.desc.Entity), "store.persist failed, memory remains source of truth", err)
		}
		s.m.IncPersistFailure(s.desc.Entity)
	}
}

func (s *Store[T]) notify() {
	snapshot := s.items
	for _, ch := range s.subs {
		select {
		case ch <- snapshot:
		default:
			// Drop the stale pending snapshot so the latest wins.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}
