package server

import (
	"context"
	"time"
)

// EvaluateAlertsInInterval runs an alert evaluation pass on every tick until ctx is done.
func (s Server) EvaluateAlertsInInterval(ctx context.Context, ticker *time.Ticker) {
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.Logger.Info("EvaluateAlertsInInterval: Stopping scheduled alert evaluation")
			return
		case <-ticker.C:
			s.Logger.Info("EvaluateAlertsInInterval: Starting scheduled alert evaluation")
			if _, err := s.CheckAlerts(ctx); err != nil {
				s.Logger.Errorf("EvaluateAlertsInInterval: Error evaluating alerts, err: %v", err)
				continue
			}
			s.Logger.Info("EvaluateAlertsInInterval: Finished scheduled alert evaluation")
		}
	}
}

// CheckAlerts runs one evaluation pass and notifies the alerts it triggered.
func (s Server) CheckAlerts(ctx context.Context) (EvaluationSummary, error) {
	summary, err := s.EvaluateAlerts(ctx)
	if err != nil {
		return summary, err
	}
	for _, w := range summary.Warnings {
		s.Logger.Warnf("CheckAlerts: %s", w)
	}
	s.notifyTriggered(ctx, summary.Triggered)
	return summary, nil
}
