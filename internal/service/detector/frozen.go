package detector

import (
	"time"

	"github.com/quotewatch/quote-watch/internal/service/settings"
)

type FrozenData struct {
	NowTs   int64 `json:"nowTs"`
	StartTs int64 `json:"startTs"`
	Delta   int64 `json:"delta"`
}

// CheckFrozen derives from an open delayed event: the quote counts as
// frozen once the delayed event has stayed open longer than the
// instrument's frozen threshold.
func CheckFrozen(delayed *Event, now time.Time, inst settings.Instrument) (Result, bool) {
	if inst.FrozenTime == 0 {
		// not tracking frozen price
		return Result{}, false
	}

	delta := now.Sub(delayed.StartTime)
	return Result{
		Active: delta > inst.FrozenTime,
		Data: FrozenData{
			NowTs:   now.UnixMilli(),
			StartTs: delayed.StartTime.UnixMilli(),
			Delta:   delta.Milliseconds(),
		},
	}, true
}
