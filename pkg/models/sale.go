package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hmartinez-dev/tiendita-backend/pkg/enums"
)

// Sale is a recorded transaction. SoldAt is the business timestamp of the
// sale and may differ from CreatedAt, which records when the entry was
// written.
type Sale struct {
	ID        uuid.UUID       `json:"id"`
	SoldAt    time.Time       `json:"soldAt"`
	Items     []SaleItem      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// SaleItem is one line of a sale. ProductID is a weak reference: the
// product may have been deleted since. Name, type and the per-unit prices
// are snapshots taken when the sale was recorded and never track later
// edits to the product.
type SaleItem struct {
	ID             uuid.UUID         `json:"id"`
	SaleID         uuid.UUID         `json:"saleId"`
	ProductID      uuid.UUID         `json:"productId"`
	ProductName    string            `json:"productName"`
	ProductType    enums.ProductType `json:"productType"`
	Quantity       decimal.Decimal   `json:"quantity"`
	WholesalePrice decimal.Decimal   `json:"wholesalePrice"`
	RetailPrice    decimal.Decimal   `json:"retailPrice"`
	Total          decimal.Decimal   `json:"total"`
}

// RecomputeTotals derives every item total from its snapshot price and
// quantity, then the sale total from the items. Totals are never edited
// directly.
func (s *Sale) RecomputeTotals() {
	total := decimal.Zero
	for i := range s.Items {
		s.Items[i].Total = s.Items[i].RetailPrice.Mul(s.Items[i].Quantity)
		total = total.Add(s.Items[i].Total)
	}
	s.Total = total
}
