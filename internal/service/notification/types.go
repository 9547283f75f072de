package notification

import (
	"context"

	"github.com/quotewatch/quote-watch/internal/service/detector"
)

// Notifier delivers a human-facing alert for an emitted event.
type Notifier interface {
	Notify(ctx context.Context, event detector.Event) error
}

// PushPayload is the browser push message for an event start.
type PushPayload struct {
	Heading string `json:"heading"`
	Content string `json:"content"`
	URL     string `json:"url"`
	// Topic collapses notifications so only one per event type shows at a time.
	Topic int64 `json:"topic"`
}
