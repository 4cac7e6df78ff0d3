package source

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/faziolifabrizio-jpg/risparmioevoluto/helpers"
	"github.com/faziolifabrizio-jpg/risparmioevoluto/internal/offer"
	"github.com/faziolifabrizio-jpg/risparmioevoluto/logger"
	"github.com/faziolifabrizio-jpg/risparmioevoluto/pkg/errors"
	"github.com/faziolifabrizio-jpg/risparmioevoluto/services/cache"
)

// Selectors contains CSS selectors for the listing cards and the product
// detail page
type Selectors struct {
	DealList  string
	Title     string
	PriceNow  string
	PriceList string
	Image     string

	DetailTitle     string
	DetailImage     string
	DetailPriceNow  string
	DetailPriceList string
}

// DefaultSelectors returns the selectors for amazon.it search results and
// product pages
func DefaultSelectors() Selectors {
	return Selectors{
		DealList:  "div[data-asin]",
		Title:     "h2 span",
		PriceNow:  "span.a-price > span.a-offscreen",
		PriceList: "span.a-text-price > span.a-offscreen",
		Image:     "img.s-image",

		DetailTitle:     "span#productTitle",
		DetailImage:     "#imgTagWrapperId img",
		DetailPriceNow:  "span.a-price span.a-offscreen",
		DetailPriceList: "span.a-price.a-text-price > span.a-offscreen, span.a-text-strike",
	}
}

// AmazonSource is a goquery-based ListingSource for amazon.it search
// pages. Fetches go through randomized browser headers; when the site
// rate-limits, a block key with TTL is set in the cache and further
// fetches are skipped until it expires.
type AmazonSource struct {
	baseURL   string
	maxCards  int
	selectors Selectors
	cacheSvc  cache.CacheService
	cacheKey  string
	blockTime time.Duration
	fetchFunc func(url string) (io.Reader, error)
	log       *logger.Logger
}

var _ ListingSource = (*AmazonSource)(nil)

// NewAmazonSource creates a new amazon.it listing source
func NewAmazonSource(cacheSvc cache.CacheService, maxCards int, blockTime time.Duration) *AmazonSource {
	return &AmazonSource{
		baseURL:   "https://www.amazon.it",
		maxCards:  maxCards,
		selectors: DefaultSelectors(),
		cacheSvc:  cacheSvc,
		cacheKey:  "amazon_rate_limited",
		blockTime: blockTime,
		fetchFunc: helpers.FetchWithRandomHeaders,
		log:       logger.ForSource("amazon.it"),
	}
}

// Name returns the source name
func (s *AmazonSource) Name() string {
	return "amazon.it"
}

// FetchListings retrieves the listing cards from a search results page.
// Cards whose ASIN cannot be determined are skipped; the result is capped
// to maxCards per page.
func (s *AmazonSource) FetchListings(pageURL string) ([]offer.RawListing, error) {
	body, err := s.fetchWithCache(pageURL)
	if err != nil {
		return nil, errors.NewCollection(pageURL, "failed to fetch listing page", err)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, errors.NewCollection(pageURL, "failed to parse listing page", err)
	}

	var listings []offer.RawListing
	doc.Find(s.selectors.DealList).EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if s.maxCards > 0 && len(listings) >= s.maxCards {
			return false
		}

		asin := strings.TrimSpace(card.AttrOr("data-asin", ""))
		if asin == "" {
			// Deal blocks (goldbox) carry no data-asin attribute; fall
			// back to the product link
			asin = asinFromLink(card.Find("a").First().AttrOr("href", ""))
		}
		if asin == "" {
			return true
		}

		listings = append(listings, offer.RawListing{
			ASIN:      asin,
			Title:     strings.TrimSpace(card.Find(s.selectors.Title).First().Text()),
			PriceNow:  strings.TrimSpace(card.Find(s.selectors.PriceNow).First().Text()),
			PriceList: strings.TrimSpace(card.Find(s.selectors.PriceList).First().Text()),
			ImageURL:  card.Find(s.selectors.Image).First().AttrOr("src", ""),
			DetailURL: s.baseURL + "/dp/" + asin,
		})
		return true
	})

	s.log.Debug().Str("url", pageURL).Int("cards", len(listings)).Msg("Parsed listing cards")
	return listings, nil
}

// FetchDetail retrieves the product detail page for an ASIN and extracts
// the fields used for fallback enrichment
func (s *AmazonSource) FetchDetail(asin string) (offer.Detail, error) {
	pageURL := s.baseURL + "/dp/" + asin

	body, err := s.fetchWithCache(pageURL)
	if err != nil {
		return offer.Detail{}, errors.NewCollection(pageURL, "failed to fetch detail page", err)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return offer.Detail{}, errors.NewCollection(pageURL, "failed to parse detail page", err)
	}

	detail := offer.Detail{
		Title:    strings.TrimSpace(doc.Find(s.selectors.DetailTitle).First().Text()),
		ImageURL: doc.Find(s.selectors.DetailImage).First().AttrOr("src", ""),
		PriceNow: strings.TrimSpace(doc.Find(s.selectors.DetailPriceNow).First().Text()),
	}
	detail.PriceList = s.pickListPrice(doc, detail.PriceNow)

	return detail, nil
}

// pickListPrice selects the list price among the strike-through price
// candidates on a detail page: per-unit prices are skipped, and the first
// candidate strictly greater than the current price wins.
func (s *AmazonSource) pickListPrice(doc *goquery.Document, priceNow string) string {
	current := offer.ParsePrice(priceNow)

	var picked string
	doc.Find(s.selectors.DetailPriceList).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		raw := strings.TrimSpace(sel.Text())
		parsed := offer.ParsePrice(raw)
		if !parsed.OK() {
			return true
		}
		if current.OK() && parsed.Value <= current.Value {
			return true
		}
		picked = raw
		return false
	})

	return picked
}

// asinFromLink extracts the 10-character ASIN from a /dp/ product link
func asinFromLink(href string) string {
	if href == "" || !strings.Contains(href, "/dp/") {
		return ""
	}

	baseLink := strings.Split(href, "?")[0]
	part, err := helpers.GetSplitPart(baseLink, "/dp/", 1)
	if err != nil {
		return ""
	}

	part = strings.Trim(part, "/")
	if slash := strings.Index(part, "/"); slash >= 0 {
		part = part[:slash]
	}
	if len(part) < 10 {
		return ""
	}
	return part[:10]
}

// fetchWithCache fetches a URL unless a rate-limit block is active. When
// the site answers with a rate-limit status, the block key is set so the
// next runs skip this source until it expires.
func (s *AmazonSource) fetchWithCache(url string) (io.Reader, error) {
	if s.cacheSvc != nil && s.cacheKey != "" {
		if _, err := s.cacheSvc.Get(s.cacheKey); err == nil {
			s.log.Warn().Str("key", s.cacheKey).Msg("Rate limit block active, skipping fetch")
			return nil, fmt.Errorf("%s: blocked for %d more seconds at most", s.cacheKey, int(s.blockTime/time.Second))
		}
	}

	body, err := s.fetchFunc(url)
	if err != nil {
		if s.cacheSvc != nil && s.cacheKey != "" && strings.HasPrefix(err.Error(), "rate limited") {
			s.log.Warn().Str("url", url).Dur("block", s.blockTime).Msg("Rate limited, pausing fetches")
			s.cacheSvc.Set(s.cacheKey, []byte(fmt.Sprintf("%d", int(s.blockTime/time.Second))), s.blockTime)
		}
		return nil, err
	}

	return body, nil
}
