package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hmartinez-dev/tiendita-backend/internal/analytics"
	"github.com/hmartinez-dev/tiendita-backend/internal/store"
	pkgerrors "github.com/hmartinez-dev/tiendita-backend/pkg/errors"
	"github.com/hmartinez-dev/tiendita-backend/pkg/models"
)

// Document is the user-facing backup payload. Field names round-trip
// exactly; external tooling depends on this shape. The backup log itself
// is excluded so restored backups never nest their own history.
type Document struct {
	Metadata      Metadata              `json:"metadata"`
	Products      []models.Product      `json:"products"`
	Sales         []models.Sale         `json:"sales"`
	Notifications []models.Notification `json:"notifications"`
}

// Metadata describes one export.
type Metadata struct {
	ExportedAt  time.Time `json:"exportedAt"`
	PeriodStart time.Time `json:"periodStart"`
	PeriodEnd   time.Time `json:"periodEnd"`
	FileName    string    `json:"fileName"`
}

// ConfirmFunc is the confirmation contract the presentation layer
// implements. Restore calls it before overwriting non-empty state; a
// false return aborts with no mutation.
type ConfirmFunc func(ctx context.Context) (bool, error)

// Service is the export/import codec plus the backup log.
type Service interface {
	Export(ctx context.Context) (*Document, error)
	Import(ctx context.Context, payload []byte, confirm ConfirmFunc) error
	Log(ctx context.Context) []models.BackupLogEntry
	Reset(ctx context.Context)
}

type service struct {
	stores *store.Stores
	now    func() time.Time
}

// NewService wires backup dependencies.
func NewService(stores *store.Stores) (Service, error) {
	if stores == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "entity stores required")
	}
	return &service{stores: stores, now: time.Now}, nil
}

func (s *service) Export(ctx context.Context) (*Document, error) {
	now := s.now()
	periodStart := analytics.StartOfWeek(now)
	periodEnd := periodStart.AddDate(0, 0, 7).Add(-time.Nanosecond)

	doc := &Document{
		Metadata: Metadata{
			ExportedAt:  now,
			PeriodStart: periodStart,
			PeriodEnd:   periodEnd,
			FileName:    FileName(periodStart, periodEnd),
		},
		Products:      orEmpty(s.stores.Products.List(ctx)),
		Sales:         orEmpty(s.stores.Sales.List(ctx)),
		Notifications: orEmpty(s.stores.Notifications.List(ctx)),
	}

	s.stores.BackupLog.Add(ctx, models.BackupLogEntry{
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		FileName:    doc.Metadata.FileName,
	})
	return doc, nil
}

// FileName is deterministic given the period boundaries.
func FileName(periodStart, periodEnd time.Time) string {
	return fmt.Sprintf("tiendita-backup_%s_%s.json",
		periodStart.Format("2006-01-02"), periodEnd.Format("2006-01-02"))
}

func (s *service) Import(ctx context.Context, payload []byte, confirm ConfirmFunc) error {
	doc, err := decode(payload)
	if err != nil {
		return err
	}

	if s.hasData(ctx) {
		if confirm == nil {
			return pkgerrors.New(pkgerrors.CodeConfirmRequired, "restore would overwrite existing data")
		}
		confirmed, err := confirm(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore confirmation")
		}
		if !confirmed {
			return pkgerrors.New(pkgerrors.CodeConfirmRequired, "restore was not confirmed")
		}
	}

	// Full overwrite, never a merge.
	s.stores.Products.Replace(ctx, doc.Products)
	s.stores.Sales.Replace(ctx, doc.Sales)
	s.stores.Notifications.Replace(ctx, doc.Notifications)
	return nil
}

func (s *service) Log(ctx context.Context) []models.BackupLogEntry {
	return s.stores.BackupLog.List(ctx)
}

// Reset tears every collection down, the backup log included. The durable
// keys are deleted outright.
func (s *service) Reset(ctx context.Context) {
	s.stores.Products.Clear(ctx)
	s.stores.Sales.Clear(ctx)
	s.stores.Notifications.Clear(ctx)
	s.stores.BackupLog.Clear(ctx)
}

func (s *service) hasData(ctx context.Context) bool {
	return len(s.stores.Products.List(ctx)) > 0 ||
		len(s.stores.Sales.List(ctx)) > 0 ||
		len(s.stores.Notifications.List(ctx)) > 0
}

// decode validates shape before anything else: the three collections must
// be present and list-shaped, or the restore aborts with zero mutation.
func decode(payload []byte) (*Document, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "backup payload is not a JSON object")
	}
	for _, field := range []string{"products", "sales", "notifications"} {
		value, ok := raw[field]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "backup payload is missing a collection").
				WithDetails(map[string]any{"field": field})
		}
		if !listShaped(value) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "backup collection is not a list").
				WithDetails(map[string]any{"field": field})
		}
	}

	var doc Document
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "backup payload does not match the export shape")
	}
	return &doc, nil
}

func listShaped(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
