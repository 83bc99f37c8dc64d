package models

import (
	"time"

	"github.com/google/uuid"
)

// BackupLogEntry records one successful export. Entries are append-only
// and survive everything except a full application reset.
type BackupLogEntry struct {
	ID          uuid.UUID `json:"id"`
	PeriodStart time.Time `json:"periodStart"`
	PeriodEnd   time.Time `json:"periodEnd"`
	FileName    string    `json:"fileName"`
	CreatedAt   time.Time `json:"createdAt"`
}
