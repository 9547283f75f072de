package engine

import (
	"context"

	"github.com/quotewatch/quote-watch/internal/service/detector"
	"github.com/shopspring/decimal"
)

// TickMessage 行情推送消息
// TickTime and ReceiptTime are unix ms; TickTime is broker-local and
// gets shifted by the broker's GMT offset during ingestion.
type TickMessage struct {
	Server      string          `json:"server"`
	Account     int64           `json:"account"`
	Symbol      string          `json:"symbol"`
	Bid         decimal.Decimal `json:"bid"`
	Ask         decimal.Decimal `json:"ask"`
	TickTime    int64           `json:"tickTime"`
	ReceiptTime int64           `json:"receiptTime"`
}

// EventSink receives finished event records. Enqueue must not block:
// detection state is already updated when it is called, a slow
// downstream must never stall the next pass.
type EventSink interface {
	Enqueue(events []detector.Event)
}

// EventPublisher broadcasts finished event records on the bus,
// fire and forget.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event detector.Event) error
}
