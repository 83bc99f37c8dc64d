package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hmartinez-dev/tiendita-backend/pkg/enums"
)

// Product is a stocked item the shop sells. Quantity is decimal so powder
// and liquid products can carry fractional stock; unit products stay whole.
type Product struct {
	ID             uuid.UUID         `json:"id"`
	Name           string            `json:"name"`
	Type           enums.ProductType `json:"type"`
	WholesalePrice decimal.Decimal   `json:"wholesalePrice"`
	RetailPrice    decimal.Decimal   `json:"retailPrice"`
	Quantity       decimal.Decimal   `json:"quantity"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}
