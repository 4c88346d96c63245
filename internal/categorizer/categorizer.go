// Package categorizer assigns an expense category from Indonesian and English
// keywords found in free text.
package categorizer

import (
	"strings"

	"github.com/dvloznov/expense-tracker/internal/domain"
)

// Rule maps a category to the substrings that select it.
type Rule struct {
	Category domain.Category
	Keywords []string
}

// rules are evaluated in order; the first rule with a matching keyword wins,
// so text mentioning both food and transport is Food.
var rules = []Rule{
	{
		Category: domain.CategoryFood,
		Keywords: []string{
			"makan", "minum", "kopi", "teh", "nasi", "ayam", "soto", "bakso",
			"mie", "gado", "rendang", "sate", "gudeg", "warteg", "padang", "jawa",
			"sunda", "es", "jus", "air", "minuman", "makanan", "sarapan", "lunch",
			"dinner", "snack", "cemilan", "gorengan", "bakar", "rebus", "goreng", "tumis",
		},
	},
	{
		Category: domain.CategoryTransport,
		Keywords: []string{
			"ojek", "gojek", "grab", "taxi", "bus", "busway", "transjakarta", "kereta",
			"krl", "mrt", "bensin", "solar", "pertamax", "parkir", "tol", "motor",
			"mobil", "angkot", "mikrolet", "bajaj", "becak",
		},
	},
	{
		Category: domain.CategoryShopping,
		Keywords: []string{
			"beli", "belanja", "shopping", "mall", "toko", "warung", "minimarket",
			"supermarket", "pasar", "baju", "celana", "sepatu", "tas", "dompet",
			"hp", "handphone", "laptop", "elektronik", "kosmetik", "skincare",
		},
	},
	{
		Category: domain.CategoryBills,
		Keywords: []string{
			"listrik", "air", "pdam", "internet", "wifi", "pulsa", "token", "pln",
			"indihome", "telkom", "xl", "telkomsel", "indosat", "three", "smartfren",
			"tagihan", "bayar", "pembayaran", "cicilan", "kredit", "pinjaman",
		},
	},
	{
		Category: domain.CategoryEntertainment,
		Keywords: []string{
			"nonton", "bioskop", "cinema", "film", "movie", "game", "gaming", "karaoke",
			"ktv", "billiard", "bowling", "gym", "fitness", "spa", "massage", "pijat",
			"wisata", "liburan", "vacation", "hotel", "penginapan", "tiket",
		},
	},
}

// Rules returns a copy of the keyword tables in evaluation order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		out[i] = Rule{Category: r.Category, Keywords: append([]string(nil), r.Keywords...)}
	}
	return out
}

// Categorize returns the first category whose keywords occur as a substring
// of text, or Other. Matching is case-insensitive.
func Categorize(text string) domain.Category {
	if text == "" {
		return domain.CategoryOther
	}
	lower := strings.ToLower(text)
	for _, r := range rules {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				return r.Category
			}
		}
	}
	return domain.CategoryOther
}
