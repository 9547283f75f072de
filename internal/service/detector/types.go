package detector

import (
	"time"

	"github.com/shopspring/decimal"
)

// Type identifies a detector. Values are single bits so a broker's
// running mask can select which detectors consider its prices.
type Type int64

const (
	TypeFrozen               Type = 1
	TypeDelayed              Type = 2
	TypeSpread               Type = 4
	TypeStoppedInstrument    Type = 8
	TypeStoppedBroker        Type = 16
	TypeStoppedInstrumentOwn Type = 32
)

func (t Type) String() string {
	switch t {
	case TypeFrozen:
		return "frozen"
	case TypeDelayed:
		return "delayed"
	case TypeSpread:
		return "spread"
	case TypeStoppedInstrument:
		return "stoppedInstrument"
	case TypeStoppedBroker:
		return "stoppedBroker"
	case TypeStoppedInstrumentOwn:
		return "stoppedInstrumentOwn"
	}
	return "unknown"
}

// Method is the closed set of evaluation methods.
type Method int

const (
	MethodTick Method = iota
	MethodInstrumentTimer
	MethodBrokerTimer
	MethodDerived
)

func (t Type) Method() Method {
	switch t {
	case TypeDelayed, TypeSpread:
		return MethodTick
	case TypeStoppedInstrument, TypeStoppedInstrumentOwn:
		return MethodInstrumentTimer
	case TypeStoppedBroker:
		return MethodBrokerTimer
	default:
		return MethodDerived
	}
}

// TickTypes are evaluated on the coalesced tick pass,
// InstrumentTimerTypes on the periodic timer pass.
var (
	TickTypes            = []Type{TypeDelayed, TypeSpread}
	InstrumentTimerTypes = []Type{TypeStoppedInstrument, TypeStoppedInstrumentOwn}
	AllTypes             = []Type{TypeFrozen, TypeDelayed, TypeSpread,
		TypeStoppedInstrument, TypeStoppedBroker, TypeStoppedInstrumentOwn}
)

// PriceTick is the latest quote of one broker for one instrument.
// Immutable once constructed, superseded by the next tick.
type PriceTick struct {
	BrokerId     int64           `json:"brokerId"`
	InstrumentId int64           `json:"instrumentId"`
	Symbol       string          `json:"symbol"`
	Bid          decimal.Decimal `json:"bid"`
	Ask          decimal.Decimal `json:"ask"`
	TickTime     time.Time       `json:"tickTime"`
	SystemTime   time.Time       `json:"systemTime"`
	// Used marks whether this price fed the check that produced
	// the event it is attached to.
	Used bool `json:"used"`
}

func (p PriceTick) Spread() decimal.Decimal {
	return p.Ask.Sub(p.Bid)
}

// Result of one detector evaluation. Detectors additionally report
// "not applicable" (second return false) when the feature is disabled
// for the key or there is not enough data to decide.
type Result struct {
	Active bool
	Data   any
}
