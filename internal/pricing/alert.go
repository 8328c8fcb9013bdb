package pricing

import "pricecompare/internal/model"

type Outcome int

const (
	OutcomeInactive Outcome = iota
	OutcomeNoData
	OutcomeAboveThreshold
	OutcomeTriggered
	OutcomeAlreadyTriggered
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInactive:
		return "inactive"
	case OutcomeNoData:
		return "no_data"
	case OutcomeAboveThreshold:
		return "above_threshold"
	case OutcomeTriggered:
		return "triggered"
	case OutcomeAlreadyTriggered:
		return "already_triggered"
	}
	return "unknown"
}

type Decision struct {
	Outcome Outcome
	// Quote is the price the alert was compared against, unset for inactive and no-data outcomes.
	Quote Quote
}

// ShouldTrigger reports whether the alert has to transition to triggered.
func (d Decision) ShouldTrigger() bool {
	return d.Outcome == OutcomeTriggered
}

// EvaluateAlert decides what a single evaluation pass does with an alert given the
// product's current quotes. Triggering is one-way: an alert that was triggered stays
// triggered when the price rises again.
func EvaluateAlert(a model.PriceAlert, quotes []Quote) Decision {
	if !a.IsActive {
		return Decision{Outcome: OutcomeInactive}
	}

	var (
		q  Quote
		ok bool
	)
	switch a.Scope.Kind {
	case model.ScopeGlobal:
		q, ok = Lowest(quotes)
	case model.ScopeRetailer:
		q, ok = QuoteFor(quotes, a.Scope.Retailer)
	}
	if !ok {
		return Decision{Outcome: OutcomeNoData}
	}

	if q.Price > a.PriceThreshold {
		return Decision{Outcome: OutcomeAboveThreshold, Quote: q}
	}
	if a.Triggered {
		return Decision{Outcome: OutcomeAlreadyTriggered, Quote: q}
	}
	return Decision{Outcome: OutcomeTriggered, Quote: q}
}
