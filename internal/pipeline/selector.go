package pipeline

import (
	"sort"
	"time"

	"github.com/faziolifabrizio-jpg/risparmioevoluto/internal/history"
	"github.com/faziolifabrizio-jpg/risparmioevoluto/internal/offer"
)

// Rank filters and orders candidate offers without touching any state:
// offers below the minimum discount are dropped (the boundary value is
// kept), offers already in the recent history are dropped, duplicate
// ASINs within the batch keep their first occurrence (the first matching
// source is presumed more complete), and the remainder is stable-sorted
// by discount descending so ties keep discovery order.
func Rank(candidates []offer.Offer, hist *history.Store, minDiscount, maxSend int) []offer.Offer {
	seen := make(map[string]bool, len(candidates))
	eligible := make([]offer.Offer, 0, len(candidates))

	for _, o := range candidates {
		if o.Discount < minDiscount {
			continue
		}
		if hist.Contains(o.ASIN) {
			continue
		}
		if seen[o.ASIN] {
			continue
		}
		seen[o.ASIN] = true
		eligible = append(eligible, o)
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Discount > eligible[j].Discount
	})

	if maxSend > 0 && len(eligible) > maxSend {
		eligible = eligible[:maxSend]
	}

	return eligible
}

// Select ranks the candidates and records each selected ASIN into the
// history store. Recording happens here rather than at notification time,
// so a downstream delivery failure cannot cause re-selection on the next
// run (at-most-once publication). An empty result is a normal outcome.
func Select(candidates []offer.Offer, hist *history.Store, minDiscount, maxSend int, now time.Time) []offer.Offer {
	selected := Rank(candidates, hist, minDiscount, maxSend)
	for _, o := range selected {
		hist.Record(o.ASIN, now)
	}
	return selected
}
