package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/quotewatch/quote-watch/internal/service/detector"
	"github.com/quotewatch/quote-watch/internal/service/engine"
	"github.com/quotewatch/quote-watch/internal/service/session"
)

const wireVersion = 1

// WireEvent is the published form of an event. EndTime is zero while
// the event is still open.
type WireEvent struct {
	Version      int                  `json:"version"`
	DBId         int64                `json:"dbId"`
	BrokerId     int64                `json:"brokerId"`
	InstrumentId int64                `json:"instrumentId"`
	TypeId       int64                `json:"typeId"`
	StartTime    int64                `json:"startTime"`
	EndTime      int64                `json:"endTime"`
	Prices       []detector.PriceTick `json:"prices"`
	Data         any                  `json:"data"`
}

type Config struct {
	EventChannel   string `mapstructure:"event_channel"`
	TickChannel    string `mapstructure:"tick_channel"`
	SessionChannel string `mapstructure:"session_channel"`
	CommandChannel string `mapstructure:"command_channel"`
}

// Bus carries the service's inbound feeds and outbound events over
// redis pub/sub channels.
type Bus struct {
	rdb *redis.Client
	cfg Config
}

func New(rdb *redis.Client, cfg Config) *Bus {
	return &Bus{
		rdb: rdb,
		cfg: cfg,
	}
}

func (b *Bus) PublishEvent(ctx context.Context, event detector.Event) error {
	wire := WireEvent{
		Version:      wireVersion,
		DBId:         event.DBId,
		BrokerId:     event.BrokerId,
		InstrumentId: event.InstrumentId,
		TypeId:       int64(event.Type),
		StartTime:    event.StartTime.UnixMilli(),
		Prices:       event.Prices,
		Data:         event.Data,
	}
	if event.EndTime != nil {
		wire.EndTime = event.EndTime.UnixMilli()
	}

	raw, err := json.Marshal(wire)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err = b.rdb.Publish(ctx, b.cfg.EventChannel, raw).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Ticks subscribes to the inbound price feed. The returned channel is
// closed when ctx is done. Malformed payloads are dropped with a log.
func (b *Bus) Ticks(ctx context.Context) <-chan engine.TickMessage {
	return subscribe[engine.TickMessage](ctx, b.rdb, b.cfg.TickChannel)
}

// Sessions subscribes to the inbound session-window feed.
func (b *Bus) Sessions(ctx context.Context) <-chan session.Message {
	return subscribe[session.Message](ctx, b.rdb, b.cfg.SessionChannel)
}

// Commands subscribes to the control channel. Payloads are plain
// command words, not json.
func (b *Bus) Commands(ctx context.Context) <-chan string {
	out := make(chan string, 16)
	sub := b.rdb.Subscribe(ctx, b.cfg.CommandChannel)
	go func() {
		defer close(out)
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				out <- msg.Payload
			}
		}
	}()
	return out
}

func subscribe[T any](ctx context.Context, rdb *redis.Client, channel string) <-chan T {
	out := make(chan T, 256)
	sub := rdb.Subscribe(ctx, channel)
	go func() {
		defer close(out)
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				var decoded T
				if err := json.Unmarshal([]byte(msg.Payload), &decoded); err != nil {
					slog.Warn("dropping malformed message", "channel", channel, "error", err)
					continue
				}
				out <- decoded
			}
		}
	}()
	return out
}
