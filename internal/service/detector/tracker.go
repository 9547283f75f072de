package detector

import (
	"time"
)

// Key addresses one active-event slot. Depending on the detector's
// granularity it is an instrument id, a (broker, instrument) pair or
// a broker id; the unused field stays zero.
type Key struct {
	BrokerId     int64
	InstrumentId int64
}

func InstrumentKey(instrumentId int64) Key {
	return Key{InstrumentId: instrumentId}
}

func BrokerInstrumentKey(brokerId, instrumentId int64) Key {
	return Key{BrokerId: brokerId, InstrumentId: instrumentId}
}

func BrokerKey(brokerId int64) Key {
	return Key{BrokerId: brokerId}
}

// Event is one start/end-bounded anomaly record.
type Event struct {
	// DBId is assigned by the persistence collaborator once the open
	// record has been stored.
	DBId         int64
	Type         Type
	BrokerId     int64
	InstrumentId int64 // 0 for broker-level events
	StartTime    time.Time
	EndTime      *time.Time // nil while open
	Data         any
	Prices       []PriceTick
}

func (e *Event) Open() bool {
	return e.EndTime == nil
}

// Transition is one detector verdict routed through the tracker.
type Transition struct {
	Type         Type
	Key          Key
	BrokerId     int64
	InstrumentId int64
	Active       bool
	Time         time.Time
	Data         any
	Prices       []PriceTick
}

// Tracker keeps one active-event index per detector type and converts
// verdicts into event boundaries. Invariant: at most one open event
// per (type, key) at any time. Not safe for concurrent use, the
// engine serializes access.
type Tracker struct {
	open map[Type]map[Key]*Event
}

func NewTracker() *Tracker {
	open := make(map[Type]map[Key]*Event, len(AllTypes))
	for _, typ := range AllTypes {
		open[typ] = make(map[Key]*Event)
	}
	return &Tracker{
		open: open,
	}
}

// OpenEvents exposes the live index of one detector type. Callers
// must not add or remove entries; the frozen pass reads the delayed
// index through this.
func (t *Tracker) OpenEvents(typ Type) map[Key]*Event {
	return t.open[typ]
}

func (t *Tracker) OpenCount() int {
	count := 0
	for _, index := range t.open {
		count += len(index)
	}
	return count
}

// Apply folds one verdict into the index and returns the finished
// records to hand off: the opened or closed event, plus a force-closed
// frozen event when a delayed closure drags one along.
func (t *Tracker) Apply(tr Transition) []*Event {
	index := t.open[tr.Type]
	existing, exists := index[tr.Key]

	if tr.Active {
		if exists {
			// event already started
			return nil
		}
		opened := &Event{
			Type:         tr.Type,
			BrokerId:     tr.BrokerId,
			InstrumentId: tr.InstrumentId,
			StartTime:    tr.Time,
			Data:         tr.Data,
			Prices:       tr.Prices,
		}
		index[tr.Key] = opened
		return []*Event{opened}
	}

	if !exists {
		return nil
	}

	// event was happening and just ended
	end := tr.Time
	existing.EndTime = &end
	existing.Data = tr.Data
	existing.Prices = tr.Prices
	delete(index, tr.Key)

	events := []*Event{existing}

	// a delayed event ending takes any frozen event for the same
	// instrument down with it
	if tr.Type == TypeDelayed {
		frozenKey := InstrumentKey(tr.InstrumentId)
		if frozen, ok := t.open[TypeFrozen][frozenKey]; ok {
			frozenEnd := tr.Time
			frozen.EndTime = &frozenEnd
			frozen.Prices = tr.Prices
			delete(t.open[TypeFrozen], frozenKey)
			events = append(events, frozen)
		}
	}

	return events
}
