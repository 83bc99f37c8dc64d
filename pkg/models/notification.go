package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hmartinez-dev/tiendita-backend/pkg/enums"
)

// Notification is an in-app alert shown to the shop owner.
type Notification struct {
	ID         uuid.UUID                  `json:"id"`
	Category   enums.NotificationCategory `json:"category"`
	Message    string                     `json:"message"`
	ProductID  *uuid.UUID                 `json:"productId,omitempty"`
	NavigateTo *string                    `json:"navigateTo,omitempty"`
	Read       bool                       `json:"read"`
	CreatedAt  time.Time                  `json:"createdAt"`
}
