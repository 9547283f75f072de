package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/quotewatch/quote-watch/internal/service/detector"
	"github.com/quotewatch/quote-watch/internal/service/settings"
)

// WebhookNotifier pushes event starts to an HTTP endpoint. Event ends
// are not interesting to push subscribers and are skipped.
type WebhookNotifier struct {
	client      *http.Client
	endpoint    string
	webURL      string
	ownBrokerId int64
	settings    settings.Service
}

func NewWebhookNotifier(endpoint, webURL string, ownBrokerId int64, settingsSvc settings.Service) *WebhookNotifier {
	return &WebhookNotifier{
		client:      &http.Client{Timeout: 10 * time.Second},
		endpoint:    endpoint,
		webURL:      webURL,
		ownBrokerId: ownBrokerId,
		settings:    settingsSvc,
	}
}

func (n *WebhookNotifier) Notify(ctx context.Context, event detector.Event) error {
	if !event.Open() {
		return nil
	}

	payload := FormatPush(event, n.settings.Snapshot(), n.ownBrokerId, n.webURL)
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("push endpoint returned %s", resp.Status)
	}
	return nil
}

// LogNotifier is the fallback when no push endpoint is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, event detector.Event) error {
	slog.Info("event notification",
		"type", event.Type.String(),
		"brokerId", event.BrokerId,
		"instrumentId", event.InstrumentId,
		"open", event.Open())
	return nil
}
