package model

import "strings"

// Category classifies a debit. The accepted values form a closed set.
type Category string

// Accepted debit categories.
const (
	CategoryHardware    Category = "Hardware"
	CategoryFuel        Category = "Fuel"
	CategoryMerchandise Category = "Merchandise"
	CategoryServices    Category = "Services"
	CategoryFees        Category = "Fees"

	// NoCategory is the result of normalizing empty input.
	NoCategory Category = ""
)

var categories = []Category{
	CategoryHardware,
	CategoryFuel,
	CategoryMerchandise,
	CategoryServices,
	CategoryFees,
}

// Categories returns the accepted debit categories in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// NormalizeCategory maps free text onto the canonical spelling of a known
// category, ignoring case and surrounding whitespace. Unknown input comes back
// trimmed with its casing preserved; blank input yields NoCategory.
func NormalizeCategory(raw string) Category {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return NoCategory
	}
	for _, c := range categories {
		if strings.EqualFold(trimmed, string(c)) {
			return c
		}
	}
	return Category(trimmed)
}

// IsKnown reports whether c is one of the accepted categories.
func (c Category) IsKnown() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer.
func (c Category) String() string {
	return string(c)
}
