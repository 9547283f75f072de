// Package metrics exposes the engine's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	PricesProcessed   prometheus.Counter
	SessionsProcessed prometheus.Counter
	EventsEmitted     *prometheus.CounterVec
	CommandsProcessed prometheus.Counter
	DroppedMessages   *prometheus.CounterVec
	OpenEvents        prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PricesProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "quotewatch_prices_processed_total",
			Help: "Total number of price ticks processed",
		}),
		SessionsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "quotewatch_sessions_processed_total",
			Help: "Total number of session window messages processed",
		}),
		EventsEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quotewatch_events_emitted_total",
			Help: "Total number of event records handed downstream",
		}, []string{"type"}),
		CommandsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "quotewatch_commands_processed_total",
			Help: "Total number of control commands processed",
		}),
		DroppedMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quotewatch_dropped_messages_total",
			Help: "Total number of dropped inbound or outbound messages by reason",
		}, []string{"reason"}),
		OpenEvents: factory.NewGauge(prometheus.GaugeOpts{
			Name: "quotewatch_open_events",
			Help: "Number of currently open anomaly events",
		}),
	}
}
