package enums

import "fmt"

// ProductType classifies how a product's quantity is measured.
// Powder and liquid products carry fractional quantities, unit
// products carry whole counts.
type ProductType string

const (
	ProductTypePowder ProductType = "powder"
	ProductTypeLiquid ProductType = "liquid"
	ProductTypeUnit   ProductType = "unit"
)

var validProductTypes = []ProductType{
	ProductTypePowder,
	ProductTypeLiquid,
	ProductTypeUnit,
}

// String implements fmt.Stringer.
func (p ProductType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProductType.
func (p ProductType) IsValid() bool {
	for _, candidate := range validProductTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// Fractional reports whether quantities of this type may carry decimals.
func (p ProductType) Fractional() bool {
	return p == ProductTypePowder || p == ProductTypeLiquid
}

// ParseProductType converts raw input into a ProductType.
func ParseProductType(value string) (ProductType, error) {
	for _, candidate := range validProductTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product type %q", value)
}
