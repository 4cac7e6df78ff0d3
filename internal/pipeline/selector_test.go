package pipeline

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faziolifabrizio-jpg/risparmioevoluto/internal/history"
	"github.com/faziolifabrizio-jpg/risparmioevoluto/internal/offer"
)

func emptyHistory(t *testing.T) *history.Store {
	t.Helper()
	s := history.NewStore(filepath.Join(t.TempDir(), "published.json"), 24*time.Hour)
	require.NoError(t, s.Load(time.Now()))
	return s
}

func candidate(asin string, discount int) offer.Offer {
	return offer.Offer{ASIN: asin, Title: "Prodotto " + asin, Discount: discount}
}

func TestSelectThresholdAndCap(t *testing.T) {
	hist := emptyHistory(t)
	candidates := []offer.Offer{
		candidate("A", 5),
		candidate("B", 30),
		candidate("C", 15),
	}

	selected := Select(candidates, hist, 10, 2, time.Now())
	require.Len(t, selected, 2)
	assert.Equal(t, "B", selected[0].ASIN)
	assert.Equal(t, 30, selected[0].Discount)
	assert.Equal(t, "C", selected[1].ASIN)
	assert.Equal(t, 15, selected[1].Discount)
}

func TestSelectThresholdBoundaryIsKept(t *testing.T) {
	hist := emptyHistory(t)
	selected := Select([]offer.Offer{candidate("A", 10)}, hist, 10, 10, time.Now())
	assert.Len(t, selected, 1)

	hist2 := emptyHistory(t)
	selected = Select([]offer.Offer{candidate("A", 9)}, hist2, 10, 10, time.Now())
	assert.Empty(t, selected)
}

func TestSelectDropsRecentlyPublished(t *testing.T) {
	hist := emptyHistory(t)
	hist.Record("A", time.Now())

	selected := Select([]offer.Offer{candidate("A", 50), candidate("B", 20)}, hist, 10, 10, time.Now())
	require.Len(t, selected, 1)
	assert.Equal(t, "B", selected[0].ASIN)
}

func TestSelectFirstSeenWinsWithinBatch(t *testing.T) {
	hist := emptyHistory(t)
	candidates := []offer.Offer{
		candidate("A", 20),
		candidate("A", 18),
		candidate("B", 40),
	}

	selected := Select(candidates, hist, 10, 10, time.Now())
	require.Len(t, selected, 2)
	assert.Equal(t, "B", selected[0].ASIN)
	assert.Equal(t, "A", selected[1].ASIN)
	assert.Equal(t, 20, selected[1].Discount)
}

func TestSelectTiesKeepDiscoveryOrder(t *testing.T) {
	hist := emptyHistory(t)
	candidates := []offer.Offer{
		candidate("A", 25),
		candidate("B", 25),
		candidate("C", 25),
	}

	selected := Select(candidates, hist, 10, 10, time.Now())
	require.Len(t, selected, 3)
	assert.Equal(t, "A", selected[0].ASIN)
	assert.Equal(t, "B", selected[1].ASIN)
	assert.Equal(t, "C", selected[2].ASIN)
}

func TestSelectRecordsIntoHistory(t *testing.T) {
	hist := emptyHistory(t)
	now := time.Now()

	Select([]offer.Offer{candidate("A", 30), candidate("B", 5)}, hist, 10, 10, now)
	assert.True(t, hist.Contains("A"))
	assert.False(t, hist.Contains("B"))

	// A second pass over the same batch selects nothing new
	selected := Select([]offer.Offer{candidate("A", 30)}, hist, 10, 10, now)
	assert.Empty(t, selected)
}

func TestSelectEmptyOutcomeIsNormal(t *testing.T) {
	hist := emptyHistory(t)
	selected := Select(nil, hist, 10, 10, time.Now())
	assert.Empty(t, selected)
}

func TestRankIsIdempotent(t *testing.T) {
	hist := emptyHistory(t)
	candidates := []offer.Offer{
		candidate("A", 20),
		candidate("B", 40),
		candidate("C", 15),
	}

	first := Rank(candidates, hist, 10, 10)
	second := Rank(candidates, hist, 10, 10)
	assert.Equal(t, first, second)
}
