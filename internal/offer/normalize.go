package offer

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// titleMinLength is the minimum rune count for an auto-extracted title to
// be trusted without a detail fetch.
const titleMinLength = 20

// Quantity and packaging tokens that mark a card title as truncated or
// variant-specific rather than a product name.
var suspectTitle = regexp.MustCompile(`(?i)\b(kg|ml|pz|pezzi|pack|confezione|variante)\b`)

// TrustedTitle reports whether an auto-extracted title is usable as-is.
// Short titles and titles carrying quantity tokens trigger the detail
// fetch fallback instead.
func TrustedTitle(title string) bool {
	title = strings.TrimSpace(title)
	if utf8.RuneCountInString(title) < titleMinLength {
		return false
	}
	return !suspectTitle.MatchString(title)
}

// NeedsDetail reports whether the summary listing is missing a field that
// only a detail page fetch could fill: a trustworthy title, parseable
// prices, or a valid discount.
func NeedsDetail(raw RawListing) bool {
	if !TrustedTitle(raw.Title) {
		return true
	}
	now := ParsePrice(raw.PriceNow)
	list := ParsePrice(raw.PriceList)
	if !now.OK() || !list.OK() {
		return true
	}
	_, ok := Discount(now.Value, list.Value)
	return !ok
}

// Merge fills the gaps in a summary listing from a detail fetch, field by
// field. Summary fields win whenever they are usable on their own.
func Merge(raw RawListing, detail Detail) RawListing {
	merged := raw

	if !TrustedTitle(merged.Title) && strings.TrimSpace(detail.Title) != "" {
		merged.Title = strings.TrimSpace(detail.Title)
	}
	if !ParsePrice(merged.PriceNow).OK() && detail.PriceNow != "" {
		merged.PriceNow = detail.PriceNow
	}
	if detail.PriceList != "" && !usableListPrice(merged) {
		merged.PriceList = detail.PriceList
	}
	if merged.ImageURL == "" && detail.ImageURL != "" {
		merged.ImageURL = detail.ImageURL
	}

	return merged
}

// usableListPrice reports whether the listing's own prices already yield
// a valid discount.
func usableListPrice(raw RawListing) bool {
	now := ParsePrice(raw.PriceNow)
	list := ParsePrice(raw.PriceList)
	if !now.OK() || !list.OK() {
		return false
	}
	_, ok := Discount(now.Value, list.Value)
	return ok
}

// Normalize builds at most one Offer from a (possibly merged) listing.
// The listing yields no Offer when either price is missing or the
// computed discount is invalid; that is a normal drop, not an error.
func Normalize(raw RawListing, affiliateTag string) (Offer, bool) {
	now := ParsePrice(raw.PriceNow)
	list := ParsePrice(raw.PriceList)
	if !now.OK() || !list.OK() {
		return Offer{}, false
	}

	discount, ok := Discount(now.Value, list.Value)
	if !ok {
		return Offer{}, false
	}

	title := strings.TrimSpace(raw.Title)
	if title == "" {
		title = "Prodotto " + raw.ASIN
	}

	return Offer{
		ASIN:           raw.ASIN,
		Title:          title,
		PriceNow:       strings.TrimSpace(raw.PriceNow),
		PriceList:      strings.TrimSpace(raw.PriceList),
		PriceNowValue:  now.Value,
		PriceListValue: list.Value,
		Discount:       discount,
		ImageURL:       raw.ImageURL,
		URL:            OutboundURL(raw.ASIN, affiliateTag),
	}, true
}

// OutboundURL builds the canonical product URL with the affiliate tag
// appended as an opaque query parameter.
func OutboundURL(asin, affiliateTag string) string {
	u := "https://www.amazon.it/dp/" + asin
	if affiliateTag != "" {
		u += "?tag=" + url.QueryEscape(affiliateTag)
	}
	return u
}
