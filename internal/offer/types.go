package offer

// RawListing is a single product entry as presented in a search results
// view, before detail enrichment. Any field except ASIN may be empty, and
// the same ASIN may appear in more than one listing batch.
type RawListing struct {
	ASIN      string
	Title     string
	PriceNow  string // locale-formatted, e.g. "19,99 €"
	PriceList string // strike-through price text, empty when absent
	ImageURL  string
	DetailURL string
}

// Detail holds the richer fields extracted from a product detail page,
// used to fill gaps in a summary listing.
type Detail struct {
	Title     string
	PriceNow  string
	PriceList string
	ImageURL  string
}

// Offer is a normalized, validated, discount-bearing listing ready for
// ranking and publication. An Offer exists only if both prices parsed and
// the list price is strictly greater than the current price.
type Offer struct {
	ASIN           string  `json:"asin"`
	Title          string  `json:"title"`
	PriceNow       string  `json:"price_now"`
	PriceList      string  `json:"price_list"`
	PriceNowValue  float64 `json:"-"`
	PriceListValue float64 `json:"-"`
	Discount       int     `json:"discount"`
	ImageURL       string  `json:"image,omitempty"`
	URL            string  `json:"url"`
}
