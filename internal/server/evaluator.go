package server

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
	"pricecompare/internal/database"
	"pricecompare/internal/model"
	"pricecompare/internal/pricing"
)

const defaultEvaluationWorkers = 4

type TriggeredAlert struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	Threshold   float64   `json:"threshold"`
	Price       float64   `json:"price"`
	Retailer    string    `json:"retailer"`
	URL         string    `json:"url,omitempty"`
	TriggeredAt time.Time `json:"triggered_at"`
}

// EvaluationSummary reports one pass over the active alerts. Evaluated counts every
// alert in the snapshot, Skipped the ones that could not be compared to a price.
type EvaluationSummary struct {
	Evaluated int              `json:"evaluated_count"`
	Triggered []TriggeredAlert `json:"alerts"`
	Skipped   int              `json:"skipped_count"`
	Warnings  []string         `json:"warnings"`
}

type productEvaluation struct {
	evaluated int
	skipped   int
	triggered []TriggeredAlert
	warnings  []string
}

// EvaluateAlerts runs the alert evaluator over a snapshot of the active alerts. Alerts
// are grouped by product so each product's quotes are read once, and products are
// evaluated in parallel. A failing product group only adds a warning.
func (s Server) EvaluateAlerts(ctx context.Context) (EvaluationSummary, error) {
	summary := EvaluationSummary{Triggered: []TriggeredAlert{}, Warnings: []string{}}

	alerts, err := s.DB.AlertsFind(ctx, database.AlertFilter{ActiveOnly: true})
	if err != nil {
		return summary, errors.WithMessage(err, "error getting active alerts")
	}

	var order []primitive.ObjectID
	groups := map[primitive.ObjectID][]model.PriceAlert{}
	for _, a := range alerts {
		if _, ok := groups[a.ProductID]; !ok {
			order = append(order, a.ProductID)
		}
		groups[a.ProductID] = append(groups[a.ProductID], a)
	}

	workers := s.Workers
	if workers <= 0 {
		workers = defaultEvaluationWorkers
	}
	results := make([]productEvaluation, len(order))
	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i, productID := range order {
		g.Go(func() error {
			results[i] = s.evaluateProduct(ctx, productID, groups[productID])
			return nil
		})
	}
	_ = g.Wait()

	for _, res := range results {
		summary.Evaluated += res.evaluated
		summary.Skipped += res.skipped
		summary.Triggered = append(summary.Triggered, res.triggered...)
		summary.Warnings = append(summary.Warnings, res.warnings...)
	}
	s.Logger.Infof("EvaluateAlerts: Evaluated %d alert(s) over %d product(s), triggered: %d, skipped: %d, warnings: %d",
		summary.Evaluated, len(order), len(summary.Triggered), summary.Skipped, len(summary.Warnings))
	return summary, nil
}

func (s Server) evaluateProduct(ctx context.Context, productID primitive.ObjectID, alerts []model.PriceAlert) productEvaluation {
	res := productEvaluation{evaluated: len(alerts)}

	p, err := s.DB.ProductFindOne(ctx, productID.Hex())
	if err != nil {
		res.skipped = len(alerts)
		reason := "error reading product " + productID.Hex()
		if errors.Is(err, model.ErrNotFound) {
			err = errors.Wrapf(model.ErrIntegrity, "alerts reference missing product %s", productID.Hex())
			reason = err.Error()
		}
		for _, a := range alerts {
			res.warnings = append(res.warnings, fmt.Sprintf("alert %s not evaluated: %s", a.ID.Hex(), reason))
		}
		s.Logger.Warnf("evaluateProduct: Error finding Product for %d alert(s), ProductID: %s, err: %v",
			len(alerts), productID.Hex(), err)
		return res
	}

	quotes, err := s.quotes(ctx, productID)
	if err != nil {
		res.skipped = len(alerts)
		res.warnings = append(res.warnings, fmt.Sprintf("%d alert(s) on product %s not evaluated, error reading prices",
			len(alerts), productID.Hex()))
		s.Logger.Warnf("evaluateProduct: Error getting quotes, ProductID: %s, err: %v", productID.Hex(), err)
		return res
	}

	for _, a := range alerts {
		d := pricing.EvaluateAlert(a, quotes)
		s.Logger.Tracef("evaluateProduct: AlertID: %s, outcome: %s", a.ID.Hex(), d.Outcome)
		switch d.Outcome {
		case pricing.OutcomeNoData, pricing.OutcomeInactive:
			res.skipped++
			continue
		case pricing.OutcomeAboveThreshold, pricing.OutcomeAlreadyTriggered:
			continue
		}

		at := s.now()
		ok, err := s.DB.AlertMarkTriggered(ctx, a.ID, at)
		if err != nil {
			res.skipped++
			res.warnings = append(res.warnings, fmt.Sprintf("alert %s not triggered, storage error", a.ID.Hex()))
			s.Logger.Warnf("evaluateProduct: Error marking alert triggered, AlertID: %s, err: %v", a.ID.Hex(), err)
			continue
		}
		if !ok {
			// deactivated or triggered by a concurrent pass since the snapshot
			s.Logger.Debugf("evaluateProduct: Alert changed since snapshot, AlertID: %s", a.ID.Hex())
			continue
		}
		res.triggered = append(res.triggered, TriggeredAlert{
			ID:          a.ID.Hex(),
			ProductID:   productID.Hex(),
			ProductName: p.Name,
			Threshold:   a.PriceThreshold,
			Price:       d.Quote.Price,
			Retailer:    d.Quote.Retailer,
			URL:         d.Quote.URL,
			TriggeredAt: at,
		})
	}
	return res
}
