package settings

import (
	"context"
	"time"

	"github.com/quotewatch/quote-watch/internal/entity"
	"github.com/shopspring/decimal"
)

type Broker struct {
	Id             int64
	Name           string
	GmtOffset      time.Duration
	Running        int64 // bitmask of tracked detector type ids
	StoppedMaxTime time.Duration
}

// Instrument per-instrument detector thresholds.
// A zero threshold disables the corresponding detector.
type Instrument struct {
	Id                int64
	Name              string
	DelayPercent      decimal.Decimal
	FrozenTime        time.Duration
	SpreadMultiplier  decimal.Decimal
	StoppedMaxTime    time.Duration
	StoppedMaxTimeOwn time.Duration
}

type BrokerInstrument struct {
	InstrumentId int64
	Coeff        float64
}

// Snapshot is one immutable view of the configuration. Detector passes
// read a single snapshot for their whole run; reload builds a fresh one
// and swaps it atomically.
type Snapshot struct {
	Brokers map[int64]Broker
	// Servers maps server name to broker id.
	Servers map[string]int64
	// BrokerInstruments maps broker id and broker-local symbol
	// to the instrument mapping.
	BrokerInstruments map[int64]map[string]BrokerInstrument
	Instruments       map[int64]Instrument
	EventTypes        map[int64]string
	// SessionRows carries the persisted session windows for seeding
	// the engine's session table at startup.
	SessionRows []entity.Session
}

// Resolve maps an inbound (server, symbol) pair to the configured
// broker and instrument. ok is false when any step of the mapping
// is missing.
func (s *Snapshot) Resolve(server, symbol string) (broker Broker, instrumentId int64, ok bool) {
	brokerId, found := s.Servers[server]
	if !found {
		return Broker{}, 0, false
	}
	broker, found = s.Brokers[brokerId]
	if !found {
		return Broker{}, 0, false
	}
	symbols, found := s.BrokerInstruments[brokerId]
	if !found {
		return Broker{}, 0, false
	}
	mapping, found := symbols[symbol]
	if !found {
		return Broker{}, 0, false
	}
	return broker, mapping.InstrumentId, true
}

// Tracks reports whether the broker still carries the given symbol.
func (s *Snapshot) Tracks(brokerId int64, symbol string) bool {
	symbols, ok := s.BrokerInstruments[brokerId]
	if !ok {
		return false
	}
	_, ok = symbols[symbol]
	return ok
}

type Service interface {
	// Load rebuilds the snapshot from storage; the previous snapshot
	// stays active when any table fails to load.
	Load(ctx context.Context) error
	Snapshot() *Snapshot
}
