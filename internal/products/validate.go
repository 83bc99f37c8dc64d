package products

import (
	"errors"
	"strings"

	"go.uber.org/multierr"

	pkgerrors "github.com/hmartinez-dev/tiendita-backend/pkg/errors"
	"github.com/hmartinez-dev/tiendita-backend/pkg/models"
)

// Validate checks the domain invariants of a product. It runs on the full
// candidate value, so a partial update is validated against the state it
// would produce, not against the patch alone. Every violation is reported,
// not just the first.
func Validate(p models.Product) error {
	var errs []error
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, errors.New("product name required"))
	}
	if !p.Type.IsValid() {
		errs = append(errs, errors.New("unknown product type"))
	}
	if p.WholesalePrice.IsNegative() {
		errs = append(errs, errors.New("wholesale price must not be negative"))
	}
	if p.RetailPrice.IsNegative() {
		errs = append(errs, errors.New("retail price must not be negative"))
	}
	if !p.RetailPrice.IsNegative() && !p.WholesalePrice.IsNegative() && p.RetailPrice.LessThan(p.WholesalePrice) {
		errs = append(errs, errors.New("retail price must be at least the wholesale price"))
	}
	if p.Quantity.IsNegative() {
		errs = append(errs, errors.New("quantity must not be negative"))
	}
	if p.Type.IsValid() && !p.Type.Fractional() && !p.Quantity.IsInteger() {
		errs = append(errs, errors.New("unit products carry whole quantities"))
	}

	combined := multierr.Combine(errs...)
	if combined == nil {
		return nil
	}
	details := make([]string, 0, len(errs))
	for _, err := range multierr.Errors(combined) {
		details = append(details, err.Error())
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, combined, "invalid product").
		WithDetails(map[string]any{"violations": details})
}
