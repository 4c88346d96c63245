// Package locale handles Indonesian/English money notation: shorthand
// amounts like "15rb" or "2.5k", Rupiah formatting and a small glossary.
package locale

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	currencyMarkerRe = regexp.MustCompile(`rp\.?`)
	whitespaceRe     = regexp.MustCompile(`\s+`)
	thousandsWordRe  = regexp.MustCompile(`rb|ribu`)
	nonNumericRe     = regexp.MustCompile(`[^\d.,]`)
	floatPrefixRe    = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)`)
)

// ParseAmount converts a money fragment into a number.
//
// Rules are tried in order and the first applicable one decides:
//   - "rb"/"ribu" suffix: numeric prefix times 1000 ("15rb" -> 15000)
//   - "k" suffix: numeric prefix times 1000 ("2.5k" -> 2500)
//   - one "." followed by exactly three digits and no ",": thousands
//     separator ("15.000" -> 15000)
//   - otherwise digits and separators only, "," read as the decimal point
//
// ok is false when no number can be read. That is "amount absent", not an error.
func ParseAmount(text string) (float64, bool) {
	if strings.TrimSpace(text) == "" {
		return 0, false
	}

	clean := strings.ToLower(text)
	clean = currencyMarkerRe.ReplaceAllString(clean, "")
	clean = strings.ReplaceAll(clean, "rupiah", "")
	clean = whitespaceRe.ReplaceAllString(clean, "")

	if strings.Contains(clean, "rb") || strings.Contains(clean, "ribu") {
		n, ok := parseFloatPrefix(thousandsWordRe.ReplaceAllString(clean, ""))
		if !ok {
			return 0, false
		}
		return n * 1000, true
	}

	if strings.Contains(clean, "k") {
		n, ok := parseFloatPrefix(strings.ReplaceAll(clean, "k", ""))
		if !ok {
			return 0, false
		}
		return n * 1000, true
	}

	if strings.Contains(clean, ".") && !strings.Contains(clean, ",") {
		parts := strings.Split(clean, ".")
		if len(parts) == 2 && len(parts[1]) == 3 && allDigits(parts[1]) {
			if n, ok := parseFloatPrefix(parts[0] + parts[1]); ok {
				return n, true
			}
			return 0, false
		}
	}

	plain := nonNumericRe.ReplaceAllString(clean, "")
	plain = strings.Replace(plain, ",", ".", 1)
	return parseFloatPrefix(plain)
}

// parseFloatPrefix reads the longest leading decimal number of s and ignores
// whatever follows it, so "15.000.000" reads as 15.
func parseFloatPrefix(s string) (float64, bool) {
	m := floatPrefixRe.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimSuffix(m, "."), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
