package locale

import (
	"fmt"
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input  string
		want   float64
		wantOK bool
	}{
		{"15rb", 15000, true},
		{"15 ribu", 15000, true},
		{"25ribu", 25000, true},
		{"2.5k", 2500, true},
		{"10K", 10000, true},
		{"Rp 15.000", 15000, true},
		{"Rp. 15.000", 15000, true},
		{"15000 rupiah", 15000, true},
		{"15.000", 15000, true},
		{"15.5", 15.5, true},
		{"12,50", 12.5, true},
		{"25000", 25000, true},
		{"15.000.000", 15, true},
		{"Rp 50.000,00", 50, true},
		{"1.5jt", 1.5, true},
		{"hello", 0, false},
		{"", 0, false},
		{"rb", 0, false},
		{"Rp", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseAmount(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseAmount(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ParseAmount(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseAmountShorthandScaling(t *testing.T) {
	for _, n := range []float64{1, 2.5, 15, 99.75, 250} {
		for _, suffix := range []string{"rb", "ribu", "k"} {
			input := fmt.Sprintf("%v%s", n, suffix)
			t.Run(input, func(t *testing.T) {
				got, ok := ParseAmount(input)
				if !ok || got != n*1000 {
					t.Errorf("ParseAmount(%q) = %v, %v; want %v", input, got, ok, n*1000)
				}
			})
		}
	}
}

func TestFormatRupiah(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "Rp 0"},
		{15000, "Rp 15.000"},
		{1234567, "Rp 1.234.567"},
		{500, "Rp 500"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatRupiah(tt.amount); got != tt.want {
				t.Errorf("FormatRupiah(%v) = %q, want %q", tt.amount, got, tt.want)
			}
		})
	}
}

func TestTranslateToEnglish(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Kopi 15rb", "coffee 15rb"},
		{"makan nasi ayam", "meal rice chicken"},
		{"Gojek ke kantor", "gojek ride ke kantor"},
		{"bayar listrik", "bayar electricity"},
		{"kopikopi", "kopikopi"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := TranslateToEnglish(tt.input); got != tt.want {
				t.Errorf("TranslateToEnglish(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
