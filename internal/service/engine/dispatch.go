package engine

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/quotewatch/quote-watch/internal/entity"
	"github.com/quotewatch/quote-watch/internal/metrics"
	"github.com/quotewatch/quote-watch/internal/repo"
	"github.com/quotewatch/quote-watch/internal/service/detector"
	"github.com/quotewatch/quote-watch/internal/service/notification"
)

// Dispatcher moves emitted events out of the detector passes: persist,
// publish, notify. It consumes from a bounded queue so a slow database
// or broker connection never stalls detection.
type Dispatcher struct {
	queue     chan detector.Event
	events    repo.EventRepo
	publisher EventPublisher
	notifier  notification.Notifier
	metrics   *metrics.Metrics
}

func NewDispatcher(queueSize int, events repo.EventRepo, publisher EventPublisher,
	notifier notification.Notifier, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		queue:     make(chan detector.Event, queueSize),
		events:    events,
		publisher: publisher,
		notifier:  notifier,
		metrics:   m,
	}
}

// Enqueue hands events to the dispatch loop without blocking. Events
// that do not fit are dropped and counted.
func (d *Dispatcher) Enqueue(events []detector.Event) {
	for _, ev := range events {
		select {
		case d.queue <- ev:
		default:
			slog.Error("dispatch queue full, dropping event",
				"type", ev.Type.String(), "brokerId", ev.BrokerId, "instrumentId", ev.InstrumentId)
			d.metrics.DroppedMessages.WithLabelValues("dispatch_queue_full").Inc()
		}
	}
}

func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-d.queue:
			d.handle(ctx, ev)
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, ev detector.Event) {
	record := entity.Event{
		BrokerId:     ev.BrokerId,
		InstrumentId: ev.InstrumentId,
		TypeId:       int64(ev.Type),
		RaiseTime:    ev.StartTime,
		Data:         marshalData(ev.Data),
	}

	if ev.Open() {
		id, err := d.events.Create(ctx, record, priceRows(ev))
		if err != nil {
			slog.Error("failed to persist event", "type", ev.Type.String(), "error", err)
		} else {
			ev.DBId = id
		}
	} else {
		id, err := d.events.Close(ctx, record, *ev.EndTime)
		if err != nil {
			slog.Error("failed to close event", "type", ev.Type.String(), "error", err)
		} else {
			ev.DBId = id
		}
	}

	if err := d.publisher.PublishEvent(ctx, ev); err != nil {
		slog.Error("failed to publish event", "type", ev.Type.String(), "error", err)
	}
	if err := d.notifier.Notify(ctx, ev); err != nil {
		slog.Error("failed to notify event", "type", ev.Type.String(), "error", err)
	}

	d.metrics.EventsEmitted.WithLabelValues(ev.Type.String()).Inc()
}

func priceRows(ev detector.Event) []entity.EventPrice {
	rows := make([]entity.EventPrice, 0, len(ev.Prices))
	for _, p := range ev.Prices {
		rows = append(rows, entity.EventPrice{
			BrokerId:       p.BrokerId,
			InstrumentId:   p.InstrumentId,
			Bid:            p.Bid.String(),
			Ask:            p.Ask.String(),
			Used:           p.Used,
			BrokerDatetime: p.TickTime,
			SystemDatetime: p.SystemTime,
		})
	}
	return rows
}

func marshalData(data any) string {
	if data == nil {
		return ""
	}
	raw, err := json.Marshal(data)
	if err != nil {
		slog.Error("failed to marshal event data", "error", err)
		return ""
	}
	return string(raw)
}
