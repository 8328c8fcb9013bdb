package server

import (
	"context"
	"pricecompare/internal/client"
	"pricecompare/internal/misc"
)

// notifyTriggered posts each newly triggered alert to the alert webhook. Delivery
// failures are logged and never undo the trigger.
func (s Server) notifyTriggered(ctx context.Context, triggered []TriggeredAlert) {
	if len(triggered) == 0 || !s.Client.WebhookEnabled() {
		return
	}
	var sent int
	for _, t := range triggered {
		productName := misc.StringLimit(t.ProductName, 45)
		whReq := client.AlertWebhookRequest{
			Event:       client.EventAlertTriggered,
			AlertID:     t.ID,
			ProductID:   t.ProductID,
			ProductName: t.ProductName,
			Threshold:   t.Threshold,
			Price:       t.Price,
			Retailer:    t.Retailer,
			URL:         t.URL,
			TriggeredAt: t.TriggeredAt,
		}
		s.Logger.Debugf("notifyTriggered: Sending webhook for Product: %s, AlertID: %s, req: %+v", productName, t.ID, whReq)
		if err := s.Client.SendAlertWebhook(ctx, whReq); err != nil {
			s.Logger.Errorf("notifyTriggered: Error sending webhook for Product: %s, AlertID: %s, err: %v",
				productName, t.ID, err)
			continue
		}
		sent++
	}
	s.Logger.Infof("notifyTriggered: Sent %d of %d alert notification(s)", sent, len(triggered))
}
