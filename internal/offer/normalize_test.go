package offer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const testTag = "tag-di-prova-21"

func TestNormalize(t *testing.T) {
	raw := RawListing{
		ASIN:      "B0C1234567",
		Title:     "Robot aspirapolvere con stazione di svuotamento",
		PriceNow:  "149,99€",
		PriceList: "199,99€",
		ImageURL:  "https://img.example.com/robot.jpg",
	}

	o, ok := Normalize(raw, testTag)
	assert.True(t, ok)
	assert.Equal(t, "B0C1234567", o.ASIN)
	assert.Equal(t, "Robot aspirapolvere con stazione di svuotamento", o.Title)
	assert.Equal(t, "149,99€", o.PriceNow)
	assert.Equal(t, "199,99€", o.PriceList)
	assert.InDelta(t, 149.99, o.PriceNowValue, 0.0001)
	assert.InDelta(t, 199.99, o.PriceListValue, 0.0001)
	assert.Equal(t, 25, o.Discount)
	assert.Equal(t, "https://img.example.com/robot.jpg", o.ImageURL)
	assert.Equal(t, "https://www.amazon.it/dp/B0C1234567?tag=tag-di-prova-21", o.URL)
}

func TestNormalizeTitleFallsBackToPlaceholder(t *testing.T) {
	raw := RawListing{
		ASIN:      "B0C1234567",
		PriceNow:  "10,00€",
		PriceList: "20,00€",
	}

	o, ok := Normalize(raw, testTag)
	assert.True(t, ok)
	assert.Equal(t, "Prodotto B0C1234567", o.Title)
}

func TestNormalizeDropsInvalidListings(t *testing.T) {
	tests := []struct {
		name string
		raw  RawListing
	}{
		{"no current price", RawListing{ASIN: "A", PriceList: "20,00€"}},
		{"no list price", RawListing{ASIN: "A", PriceNow: "10,00€"}},
		{"list not greater", RawListing{ASIN: "A", PriceNow: "20,00€", PriceList: "15,00€"}},
		{"unit list price", RawListing{ASIN: "A", PriceNow: "10,00€", PriceList: "3,50€/kg"}},
		{"malformed current", RawListing{ASIN: "A", PriceNow: "boh", PriceList: "20,00€"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Normalize(tt.raw, testTag)
			assert.False(t, ok)
		})
	}
}

func TestTrustedTitle(t *testing.T) {
	assert.True(t, TrustedTitle("Cuffie wireless con cancellazione del rumore"))

	// Too short
	assert.False(t, TrustedTitle("Cuffie"))
	assert.False(t, TrustedTitle(""))

	// Quantity and packaging tokens
	assert.False(t, TrustedTitle("Acqua naturale confezione da 6 bottiglie"))
	assert.False(t, TrustedTitle("Pasta di semola 1 kg formato famiglia"))
	assert.False(t, TrustedTitle("Detersivo liquido 1500 ml profumo lavanda"))
	assert.False(t, TrustedTitle("Set asciugamani 4 pezzi in cotone bio"))
}

func TestNeedsDetail(t *testing.T) {
	complete := RawListing{
		ASIN:      "B0C1234567",
		Title:     "Cuffie wireless con cancellazione del rumore",
		PriceNow:  "59,99€",
		PriceList: "99,99€",
	}
	assert.False(t, NeedsDetail(complete))

	missingList := complete
	missingList.PriceList = ""
	assert.True(t, NeedsDetail(missingList))

	shortTitle := complete
	shortTitle.Title = "Cuffie"
	assert.True(t, NeedsDetail(shortTitle))

	noDiscount := complete
	noDiscount.PriceList = "59,99€"
	assert.True(t, NeedsDetail(noDiscount))
}

func TestMergeFillsFieldsIndependently(t *testing.T) {
	raw := RawListing{
		ASIN:     "B0C1234567",
		Title:    "Cuffie", // untrusted, needs detail
		PriceNow: "59,99€",
		// list price missing
	}
	detail := Detail{
		Title:     "Cuffie wireless con cancellazione del rumore",
		PriceNow:  "61,99€", // must NOT override the summary price
		PriceList: "99,99€",
		ImageURL:  "https://img.example.com/cuffie.jpg",
	}

	merged := Merge(raw, detail)
	assert.Equal(t, "Cuffie wireless con cancellazione del rumore", merged.Title)
	assert.Equal(t, "59,99€", merged.PriceNow)
	assert.Equal(t, "99,99€", merged.PriceList)
	assert.Equal(t, "https://img.example.com/cuffie.jpg", merged.ImageURL)
}

func TestMergeKeepsUsableSummaryFields(t *testing.T) {
	raw := RawListing{
		ASIN:      "B0C1234567",
		Title:     "Robot aspirapolvere con stazione di svuotamento",
		PriceNow:  "149,99€",
		PriceList: "199,99€",
		ImageURL:  "https://img.example.com/robot.jpg",
	}
	detail := Detail{
		Title:     "Titolo diverso dalla pagina prodotto completa",
		PriceNow:  "159,99€",
		PriceList: "249,99€",
		ImageURL:  "https://img.example.com/altro.jpg",
	}

	// Nothing is missing, so nothing changes
	assert.Equal(t, raw, Merge(raw, detail))
}

func TestMergeReplacesUnitListPrice(t *testing.T) {
	raw := RawListing{
		ASIN:      "B0C1234567",
		Title:     "Olio extravergine di oliva pugliese fruttato",
		PriceNow:  "8,99€",
		PriceList: "12,00€/l", // misleading anchor, treated as absent
	}
	detail := Detail{PriceList: "11,50€"}

	merged := Merge(raw, detail)
	assert.Equal(t, "11,50€", merged.PriceList)

	o, ok := Normalize(merged, testTag)
	assert.True(t, ok)
	assert.Equal(t, 22, o.Discount)
}

func TestOutboundURL(t *testing.T) {
	assert.Equal(t, "https://www.amazon.it/dp/B0C1234567?tag=mio-tag-21",
		OutboundURL("B0C1234567", "mio-tag-21"))
	assert.Equal(t, "https://www.amazon.it/dp/B0C1234567",
		OutboundURL("B0C1234567", ""))
}
