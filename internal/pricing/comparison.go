// Package pricing holds the rules for turning raw price observations into current
// quotes, price history windows, alert decisions and recommendations. Everything here
// is pure: callers load observations from storage and pass them in.
package pricing

import (
	"bytes"
	"sort"

	"pricecompare/internal/model"
)

// Quote is the current price of one retailer for a product: its most recent observation.
type Quote struct {
	model.PriceObservation
	Best bool `json:"best"`
}

// Compare reduces observations to one quote per retailer, sorted ascending by price with
// ties broken by retailer name. The first quote is flagged as the best price. The result
// is never nil.
func Compare(observations []model.PriceObservation) []Quote {
	latest := make(map[string]model.PriceObservation, len(observations))
	for _, o := range observations {
		cur, ok := latest[o.Retailer]
		if !ok || newer(o, cur) {
			latest[o.Retailer] = o
		}
	}

	quotes := make([]Quote, 0, len(latest))
	for _, o := range latest {
		quotes = append(quotes, Quote{PriceObservation: o})
	}
	sort.Slice(quotes, func(i, j int) bool {
		if quotes[i].Price != quotes[j].Price {
			return quotes[i].Price < quotes[j].Price
		}
		return quotes[i].Retailer < quotes[j].Retailer
	})
	if len(quotes) > 0 {
		quotes[0].Best = true
	}
	return quotes
}

// newer orders observations of the same retailer; same timestamps fall back to
// insertion order, which ObjectIDs encode.
func newer(a, b model.PriceObservation) bool {
	if !a.ObservedAt.Equal(b.ObservedAt) {
		return a.ObservedAt.After(b.ObservedAt)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) > 0
}

// Lowest returns the best quote of a Compare result.
func Lowest(quotes []Quote) (Quote, bool) {
	if len(quotes) == 0 {
		return Quote{}, false
	}
	lowest := quotes[0]
	for _, q := range quotes[1:] {
		if q.Price < lowest.Price || (q.Price == lowest.Price && q.Retailer < lowest.Retailer) {
			lowest = q
		}
	}
	return lowest, true
}

// BestDeal returns the quote with the greatest discount, ties going to the lower
// price and then the retailer name.
func BestDeal(quotes []Quote) (Quote, bool) {
	if len(quotes) == 0 {
		return Quote{}, false
	}
	best := quotes[0]
	for _, q := range quotes[1:] {
		switch {
		case q.DiscountPercent > best.DiscountPercent:
			best = q
		case q.DiscountPercent < best.DiscountPercent:
		case q.Price < best.Price:
			best = q
		case q.Price == best.Price && q.Retailer < best.Retailer:
			best = q
		}
	}
	return best, true
}

// QuoteFor finds the quote of a single retailer.
func QuoteFor(quotes []Quote, retailer string) (Quote, bool) {
	for _, q := range quotes {
		if q.Retailer == retailer {
			return q, true
		}
	}
	return Quote{}, false
}

// AveragePrice is the mean current price across retailers.
func AveragePrice(quotes []Quote) (float64, bool) {
	if len(quotes) == 0 {
		return 0, false
	}
	var sum float64
	for _, q := range quotes {
		sum += q.Price
	}
	return sum / float64(len(quotes)), true
}
