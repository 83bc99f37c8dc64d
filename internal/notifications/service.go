package notifications

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hmartinez-dev/tiendita-backend/internal/store"
	"github.com/hmartinez-dev/tiendita-backend/pkg/enums"
	pkgerrors "github.com/hmartinez-dev/tiendita-backend/pkg/errors"
	"github.com/hmartinez-dev/tiendita-backend/pkg/models"
)

// Service defines notification add/list/read operations.
type Service interface {
	Add(ctx context.Context, input AddInput) (*models.Notification, error)
	List(ctx context.Context) []models.Notification
	MarkRead(ctx context.Context, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context) (int, error)
}

// AddInput carries a new notification.
type AddInput struct {
	Category   enums.NotificationCategory
	Message    string
	ProductID  *uuid.UUID
	NavigateTo *string
}

// Params configures retention.
type Params struct {
	// MaxRetained caps the collection to the N newest entries.
	MaxRetained int
	// ReadRetention drops read notifications older than this on every
	// load/add cycle.
	ReadRetention time.Duration
}

type service struct {
	notifications *store.Store[models.Notification]
	params        Params
	now           func() time.Time

	// mu serializes the de-duplication check against concurrent adds.
	mu sync.Mutex
}

// NewService wires notification dependencies.
func NewService(notifications *store.Store[models.Notification], params Params) (Service, error) {
	if notifications == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications store required")
	}
	if params.MaxRetained <= 0 {
		params.MaxRetained = 50
	}
	if params.ReadRetention <= 0 {
		params.ReadRetention = 7 * 24 * time.Hour
	}
	return &service{notifications: notifications, params: params, now: time.Now}, nil
}

func (s *service) Add(ctx context.Context, input AddInput) (*models.Notification, error) {
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown notification category")
	}
	if input.Message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "notification message required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.prune(ctx)

	// A low-stock alert per product is suppressed while an unread one for
	// the same product exists.
	if input.Category == enums.NotificationCategoryLowStock && input.ProductID != nil {
		for _, existing := range s.notifications.List(ctx) {
			if existing.Category != enums.NotificationCategoryLowStock || existing.Read {
				continue
			}
			if existing.ProductID != nil && *existing.ProductID == *input.ProductID {
				return &existing, nil
			}
		}
	}

	stored := s.notifications.Add(ctx, models.Notification{
		Category:   input.Category,
		Message:    input.Message,
		ProductID:  input.ProductID,
		NavigateTo: input.NavigateTo,
	})
	s.prune(ctx)
	return &stored, nil
}

func (s *service) List(ctx context.Context) []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune(ctx)
	return s.notifications.List(ctx)
}

func (s *service) MarkRead(ctx context.Context, notificationID uuid.UUID) error {
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}
	_, ok := s.notifications.Edit(ctx, notificationID, func(n models.Notification) models.Notification {
		n.Read = true
		return n
	})
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.notifications.List(ctx)
	updated := 0
	next := make([]models.Notification, len(current))
	for i, n := range current {
		if !n.Read {
			n.Read = true
			updated++
		}
		next[i] = n
	}
	if updated > 0 {
		s.notifications.Replace(ctx, next)
	}
	return updated, nil
}

// prune applies the retention policy: read entries older than the read
// retention window go away, then the collection is capped to the newest
// MaxRetained. The store keeps entries newest-first, so capping is a cut.
func (s *service) prune(ctx context.Context) {
	current := s.notifications.List(ctx)
	cutoff := s.now().Add(-s.params.ReadRetention)

	kept := make([]models.Notification, 0, len(current))
	for _, n := range current {
		if n.Read && n.CreatedAt.Before(cutoff) {
			continue
		}
		kept = append(kept, n)
	}
	if len(kept) > s.params.MaxRetained {
		kept = kept[:s.params.MaxRetained]
	}
	if len(kept) != len(current) {
		s.notifications.Replace(ctx, kept)
	}
}
