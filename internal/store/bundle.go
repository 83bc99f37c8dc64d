package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/hmartinez-dev/tiendita-backend/pkg/kv"
	"github.com/hmartinez-dev/tiendita-backend/pkg/logger"
	"github.com/hmartinez-dev/tiendita-backend/pkg/metrics"
	"github.com/hmartinez-dev/tiendita-backend/pkg/models"
)

// Durable-storage keys, one JSON array per entity type. These are part of
// the on-disk contract and must not change between releases.
const (
	KeyProducts      = "products"
	KeySales         = "sales"
	KeyNotifications = "notifications"
	KeyBackupLog     = "backup_log"
)

// Stores bundles the four entity singletons. It is constructed once in
// main and injected everywhere a collection is needed; no package-level
// shared state exists.
type Stores struct {
	Products      *Store[models.Product]
	Sales         *Store[models.Sale]
	Notifications *Store[models.Notification]
	BackupLog     *Store[models.BackupLogEntry]
}

// NewStores wires the entity stores onto one durable backend.
func NewStores(backend kv.Store, logg *logger.Logger, m *metrics.StoreMetrics) *Stores {
	return &Stores{
		Products: New(Descriptor[models.Product]{
			Entity: "products",
			Key:    KeyProducts,
			ID:     func(p models.Product) uuid.UUID { return p.ID },
			Prepare: func(p *models.Product, now time.Time) {
				if p.ID == uuid.Nil {
					p.ID = uuid.New()
				}
				if p.CreatedAt.IsZero() {
					p.CreatedAt = now
				}
				if p.UpdatedAt.IsZero() {
					p.UpdatedAt = p.CreatedAt
				}
			},
			// Products have no inherent ordering.
			Newer: nil,
		}, backend, logg, m),

		Sales: New(Descriptor[models.Sale]{
			Entity: "sales",
			Key:    KeySales,
			ID:     func(s models.Sale) uuid.UUID { return s.ID },
			Prepare: func(s *models.Sale, now time.Time) {
				if s.ID == uuid.Nil {
					s.ID = uuid.New()
				}
				if s.SoldAt.IsZero() {
					s.SoldAt = now
				}
				if s.CreatedAt.IsZero() {
					s.CreatedAt = now
				}
				if s.UpdatedAt.IsZero() {
					s.UpdatedAt = s.CreatedAt
				}
			},
			Newer: func(a, b models.Sale) bool { return a.SoldAt.After(b.SoldAt) },
		}, backend, logg, m),

		Notifications: New(Descriptor[models.Notification]{
			Entity: "notifications",
			Key:    KeyNotifications,
			ID:     func(n models.Notification) uuid.UUID { return n.ID },
			Prepare: func(n *models.Notification, now time.Time) {
				if n.ID == uuid.Nil {
					n.ID = uuid.New()
				}
				if n.CreatedAt.IsZero() {
					n.CreatedAt = now
				}
			},
			Newer: func(a, b models.Notification) bool { return a.CreatedAt.After(b.CreatedAt) },
		}, backend, logg, m),

		BackupLog: New(Descriptor[models.BackupLogEntry]{
			Entity: "backup_log",
			Key:    KeyBackupLog,
			ID:     func(e models.BackupLogEntry) uuid.UUID { return e.ID },
			Prepare: func(e *models.BackupLogEntry, now time.Time) {
				if e.ID == uuid.Nil {
					e.ID = uuid.New()
				}
				if e.CreatedAt.IsZero() {
					e.CreatedAt = now
				}
			},
			Newer: func(a, b models.BackupLogEntry) bool { return a.CreatedAt.After(b.CreatedAt) },
		}, backend, logg, m),
	}
}
