package domain

import "strings"

// Category is one entry of the fixed expense taxonomy.
type Category string

const (
	CategoryFood          Category = "Food"
	CategoryTransport     Category = "Transport"
	CategoryEntertainment Category = "Entertainment"
	CategoryShopping      Category = "Shopping"
	CategoryBills         Category = "Bills"
	CategoryHealth        Category = "Health"
	CategoryEducation     Category = "Education"
	CategoryOther         Category = "Other"
)

var taxonomy = []Category{
	CategoryFood,
	CategoryTransport,
	CategoryEntertainment,
	CategoryShopping,
	CategoryBills,
	CategoryHealth,
	CategoryEducation,
	CategoryOther,
}

// Taxonomy returns the closed category set in its canonical order.
// The returned slice is a copy.
func Taxonomy() []Category {
	out := make([]Category, len(taxonomy))
	copy(out, taxonomy)
	return out
}

// TaxonomyNames returns the taxonomy as plain strings, in canonical order.
func TaxonomyNames() []string {
	names := make([]string, len(taxonomy))
	for i, c := range taxonomy {
		names[i] = string(c)
	}
	return names
}

// ParseCategory matches s against the taxonomy, ignoring case and surrounding space.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range taxonomy {
		if strings.EqualFold(s, string(c)) {
			return c, true
		}
	}
	return CategoryOther, false
}
