package engine

import (
	"github.com/quotewatch/quote-watch/internal/service/detector"
)

// PriceIndex holds the latest tick per (instrument, broker) in two
// groupings: by instrument for the cross-broker tick detectors and by
// broker for the broker-centric timer detectors. Both views always
// agree on membership.
type PriceIndex struct {
	// byInstrument[instrumentId][brokerId]
	byInstrument map[int64]map[int64]*detector.PriceTick
	// byBroker[brokerId][instrumentId]
	byBroker map[int64]map[int64]*detector.PriceTick
}

func NewPriceIndex() *PriceIndex {
	return &PriceIndex{
		byInstrument: make(map[int64]map[int64]*detector.PriceTick),
		byBroker:     make(map[int64]map[int64]*detector.PriceTick),
	}
}

// Put stores the tick as the latest for its (instrument, broker) pair,
// superseding any previous one.
func (x *PriceIndex) Put(tick *detector.PriceTick) {
	if _, ok := x.byInstrument[tick.InstrumentId]; !ok {
		x.byInstrument[tick.InstrumentId] = make(map[int64]*detector.PriceTick)
	}
	if _, ok := x.byBroker[tick.BrokerId]; !ok {
		x.byBroker[tick.BrokerId] = make(map[int64]*detector.PriceTick)
	}
	x.byInstrument[tick.InstrumentId][tick.BrokerId] = tick
	x.byBroker[tick.BrokerId][tick.InstrumentId] = tick
}

// Delete removes the pair from both views, dropping empty inner maps.
func (x *PriceIndex) Delete(instrumentId, brokerId int64) {
	if brokers, ok := x.byInstrument[instrumentId]; ok {
		delete(brokers, brokerId)
		if len(brokers) == 0 {
			delete(x.byInstrument, instrumentId)
		}
	}
	if instruments, ok := x.byBroker[brokerId]; ok {
		delete(instruments, instrumentId)
		if len(instruments) == 0 {
			delete(x.byBroker, brokerId)
		}
	}
}

// Instrument returns the latest tick per broker for one instrument.
func (x *PriceIndex) Instrument(instrumentId int64) map[int64]*detector.PriceTick {
	return x.byInstrument[instrumentId]
}

// Brokers returns the broker-centric view.
func (x *PriceIndex) Brokers() map[int64]map[int64]*detector.PriceTick {
	return x.byBroker
}

// Range calls fn for every tracked (instrument, broker) pair.
func (x *PriceIndex) Range(fn func(instrumentId, brokerId int64, tick *detector.PriceTick)) {
	for instrumentId, brokers := range x.byInstrument {
		for brokerId, tick := range brokers {
			fn(instrumentId, brokerId, tick)
		}
	}
}
