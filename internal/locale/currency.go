package locale

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var idPrinter = message.NewPrinter(language.Indonesian)

// FormatRupiah renders an amount the way Indonesian receipts do: "Rp 15.000".
// Zero and NaN render as "Rp 0".
func FormatRupiah(amount float64) string {
	if amount == 0 || math.IsNaN(amount) {
		return "Rp 0"
	}
	return "Rp " + idPrinter.Sprint(number.Decimal(amount, number.MaxFractionDigits(2)))
}
