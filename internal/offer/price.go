package offer

import (
	"strconv"
	"strings"
)

// PriceStatus classifies the outcome of parsing a price string.
type PriceStatus int

const (
	// PriceOK means the string parsed to a positive amount
	PriceOK PriceStatus = iota
	// PriceAbsent means no price text was present
	PriceAbsent
	// PriceMalformed means the text was present but not a parseable amount
	PriceMalformed
	// PriceUnitPrice means the text is a per-unit price (e.g. "3,50€/kg")
	// and must not be used as a comparison anchor
	PriceUnitPrice
)

// PriceResult is the typed outcome of ParsePrice. Failures are values,
// never errors.
type PriceResult struct {
	Status PriceStatus
	Value  float64
}

// OK reports whether the price parsed to a usable amount
func (r PriceResult) OK() bool {
	return r.Status == PriceOK
}

// Per-unit price markers as they appear on amazon.it strike-through prices.
// A price carrying one of these is a misleading anchor, not a list price.
var unitPriceTokens = []string{"/l", "/kg", "/ml", "/100", "al kg", "per kg", "litro", "confezione"}

// stripper removes the currency symbol and every whitespace variant,
// including non-breaking and narrow non-breaking spaces.
var stripper = strings.NewReplacer(
	"€", "",
	"EUR", "",
	" ", "",
	" ", "",
	" ", "",
	"\t", "",
)

// ParsePrice converts a locale-formatted price string ("1.234,50 €") into
// a numeric amount. The comma is the decimal separator and dots before it
// are thousands separators.
func ParsePrice(raw string) PriceResult {
	s := strings.TrimSpace(raw)
	if s == "" {
		return PriceResult{Status: PriceAbsent}
	}

	lower := strings.ToLower(s)
	for _, token := range unitPriceTokens {
		if strings.Contains(lower, token) {
			return PriceResult{Status: PriceUnitPrice}
		}
	}

	s = stripper.Replace(s)
	if s == "" {
		return PriceResult{Status: PriceAbsent}
	}
	if strings.Count(s, ",") > 1 {
		return PriceResult{Status: PriceMalformed}
	}

	// "1.234,50" -> "1234,50" -> "1234.50"
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")

	value, err := strconv.ParseFloat(s, 64)
	if err != nil || value <= 0 {
		return PriceResult{Status: PriceMalformed}
	}

	return PriceResult{Status: PriceOK, Value: value}
}
