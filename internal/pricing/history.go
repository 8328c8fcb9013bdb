package pricing

import (
	"sort"
	"time"

	"github.com/pkg/errors"

	"pricecompare/internal/model"
)

const (
	DefaultHistoryDays = 30
	MaxHistoryDays     = 3650
)

type Series struct {
	Retailer string                   `json:"retailer"`
	Points   []model.PriceObservation `json:"points"`
}

func ValidateDays(days int) error {
	if days < 1 || days > MaxHistoryDays {
		return errors.Wrapf(model.ErrValidation, "days must be between 1 and %d, got: %d", MaxHistoryDays, days)
	}
	return nil
}

// WindowStart is the inclusive lower bound of a history window ending at now.
func WindowStart(now time.Time, days int) time.Time {
	return now.Add(-time.Duration(days) * 24 * time.Hour)
}

// History keeps the observations inside [now-days, now], ordered by retailer and then
// chronologically. Nothing is truncated.
func History(observations []model.PriceObservation, now time.Time, days int) []model.PriceObservation {
	start := WindowStart(now, days)
	out := make([]model.PriceObservation, 0, len(observations))
	for _, o := range observations {
		if o.ObservedAt.Before(start) || o.ObservedAt.After(now) {
			continue
		}
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Retailer != out[j].Retailer {
			return out[i].Retailer < out[j].Retailer
		}
		return out[i].ObservedAt.Before(out[j].ObservedAt)
	})
	return out
}

// GroupByRetailer splits a History result into one series per retailer.
func GroupByRetailer(history []model.PriceObservation) []Series {
	series := []Series{}
	for _, o := range history {
		if n := len(series); n > 0 && series[n-1].Retailer == o.Retailer {
			series[n-1].Points = append(series[n-1].Points, o)
			continue
		}
		series = append(series, Series{Retailer: o.Retailer, Points: []model.PriceObservation{o}})
	}
	return series
}
