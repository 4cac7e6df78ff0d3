package source

import "github.com/faziolifabrizio-jpg/risparmioevoluto/internal/offer"

// ListingSource retrieves raw listings from a search/deal results page
// and can fetch richer detail fields for a single product. Partial or
// empty results are not an error condition.
type ListingSource interface {
	// FetchListings retrieves the raw listings from a results page
	FetchListings(pageURL string) ([]offer.RawListing, error)

	// FetchDetail retrieves the detail-page fields for one product,
	// used as fallback enrichment when the summary is incomplete
	FetchDetail(asin string) (offer.Detail, error)

	// Name returns the source's name for logging and identification
	Name() string
}
