package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"pricecompare/internal/misc"
	"time"

	"github.com/pkg/errors"
)

var ErrWebhook = errors.Wrap(ErrUpstream, "alert webhook error")

const EventAlertTriggered = "price_alert.triggered"

type AlertWebhookRequest struct {
	Event       string    `json:"event"`
	AlertID     string    `json:"alert_id"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	Threshold   float64   `json:"price_threshold"`
	Price       float64   `json:"price"`
	Retailer    string    `json:"retailer"`
	URL         string    `json:"url,omitempty"`
	TriggeredAt time.Time `json:"triggered_at"`
}

func (c Client) WebhookEnabled() bool {
	return c.Config.WebhookURL != ""
}

// SendAlertWebhook posts a triggered alert to the configured webhook. Any 2xx status is
// a delivery.
func (c Client) SendAlertWebhook(ctx context.Context, whReq AlertWebhookRequest) error {
	if !c.WebhookEnabled() {
		return errors.Wrap(ErrWebhook, "webhook url not configured")
	}
	reqBody, err := json.Marshal(whReq)
	if err != nil {
		return errors.Wrapf(err, "SendAlertWebhook: AlertWebhookRequest JSON marshalling error, req: %+v", whReq)
	}

	req, err := newRequest(ctx, http.MethodPost, c.Config.WebhookURL, bytes.NewReader(reqBody))
	if err != nil {
		return errors.Wrapf(err, "SendAlertWebhook: error creating HTTP request from body: %s", reqBody)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return errors.Wrapf(ErrWebhook, "error doing request, AlertID: %s, err: %v", whReq.AlertID, err)
	}
	defer c.closeBody("SendAlertWebhook", resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(http.MaxBytesReader(nil, resp.Body, 16<<10))
		return errors.Wrapf(ErrWebhook, "AlertID: %s, status: %s, body: %s",
			whReq.AlertID, resp.Status, misc.BytesLimit(respBody, 200))
	}
	return nil
}
