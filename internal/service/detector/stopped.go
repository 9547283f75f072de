package detector

import (
	"time"

	"github.com/quotewatch/quote-watch/internal/service/settings"
)

type StoppedData struct {
	NowTs  int64 `json:"nowTs"`
	TickTs int64 `json:"tickTs"`
	Delta  int64 `json:"delta"`
}

func checkStale(tickTime, now time.Time, maxAge time.Duration) (Result, bool) {
	if maxAge == 0 {
		return Result{}, false
	}
	delta := now.Sub(tickTime)
	return Result{
		Active: delta > maxAge,
		Data: StoppedData{
			NowTs:  now.UnixMilli(),
			TickTs: tickTime.UnixMilli(),
			Delta:  delta.Milliseconds(),
		},
	}, true
}

// CheckStoppedInstrument reports a single broker's instrument whose
// latest tick is older than the instrument's stopped threshold.
func CheckStoppedInstrument(tick PriceTick, now time.Time, inst settings.Instrument) (Result, bool) {
	return checkStale(tick.TickTime, now, inst.StoppedMaxTime)
}

// CheckStoppedInstrumentOwn is CheckStoppedInstrument with the
// own-broker-specific threshold. Restricting evaluation to the own
// broker is the caller's concern.
func CheckStoppedInstrumentOwn(tick PriceTick, now time.Time, inst settings.Instrument) (Result, bool) {
	return checkStale(tick.TickTime, now, inst.StoppedMaxTimeOwn)
}

// CheckStoppedBroker reports a broker whose most recent tick across
// all instruments is older than the broker's stopped threshold.
// Not applicable while the broker has no tracked instruments.
func CheckStoppedBroker(ticks []PriceTick, now time.Time, broker settings.Broker) (Result, bool) {
	if len(ticks) == 0 {
		// no prices for broker
		return Result{}, false
	}

	latest := ticks[0].TickTime
	for _, t := range ticks[1:] {
		if t.TickTime.After(latest) {
			latest = t.TickTime
		}
	}
	return checkStale(latest, now, broker.StoppedMaxTime)
}
