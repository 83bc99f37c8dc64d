package sales

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/hmartinez-dev/tiendita-backend/pkg/errors"
)

// ValidateRecordQuantities checks that the quantities requested for one
// product, summed across every line of the same transaction, fit the
// product's current stock. Pure function; the caller locks.
func ValidateRecordQuantities(productID uuid.UUID, currentStock, requestedTotal decimal.Decimal) error {
	if requestedTotal.GreaterThan(currentStock) {
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "requested quantity exceeds available stock").
			WithDetails(map[string]any{
				"productId": productID.String(),
				"available": currentStock.String(),
				"requested": requestedTotal.String(),
			})
	}
	return nil
}

// ValidateQuantityChange checks an edited line quantity against the stock
// that would be available once the line's original quantity is given back:
// requested <= currentStock + original. Pure function taking current stock
// and the original quantity explicitly, so the rule is testable without
// any shared validator state.
func ValidateQuantityChange(productID uuid.UUID, currentStock, original, requested decimal.Decimal) error {
	if requested.GreaterThan(currentStock.Add(original)) {
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "edited quantity exceeds available stock").
			WithDetails(map[string]any{
				"productId": productID.String(),
				"available": currentStock.String(),
				"original":  original.String(),
				"requested": requested.String(),
			})
	}
	return nil
}
