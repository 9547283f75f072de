package detector

import (
	"testing"
	"time"

	"github.com/quotewatch/quote-watch/internal/service/settings"
	"github.com/stretchr/testify/assert"
)

var baseTime = time.Date(2024, 3, 11, 12, 0, 0, 0, time.UTC)

func agedTick(brokerId int64, age time.Duration) PriceTick {
	return PriceTick{
		BrokerId: brokerId,
		TickTime: baseTime.Add(-age),
	}
}

func TestCheckStoppedInstrument(t *testing.T) {
	inst := settings.Instrument{
		StoppedMaxTime: time.Minute,
	}

	testCases := []struct {
		name       string
		age        time.Duration
		inst       settings.Instrument
		applicable bool
		active     bool
	}{
		{
			name:       "zero threshold disables the check",
			age:        time.Hour,
			inst:       settings.Instrument{},
			applicable: false,
		},
		{
			// exactly at the threshold, strictly greater is required
			name:       "exactly at the threshold",
			age:        time.Minute,
			inst:       inst,
			applicable: true,
			active:     false,
		},
		{
			name:       "one ms past the threshold",
			age:        time.Minute + time.Millisecond,
			inst:       inst,
			applicable: true,
			active:     true,
		},
		{
			name:       "fresh tick",
			age:        time.Second,
			inst:       inst,
			applicable: true,
			active:     false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, applicable := CheckStoppedInstrument(agedTick(1, tc.age), baseTime, tc.inst)
			assert.Equal(t, tc.applicable, applicable)
			if !applicable {
				return
			}
			assert.Equal(t, tc.active, res.Active)

			data, ok := res.Data.(StoppedData)
			assert.True(t, ok)
			assert.Equal(t, tc.age.Milliseconds(), data.Delta)
		})
	}
}

func TestCheckStoppedInstrumentOwn(t *testing.T) {
	inst := settings.Instrument{
		StoppedMaxTime:    time.Hour,
		StoppedMaxTimeOwn: time.Minute,
	}

	// the own variant reads its own threshold, not the shared one
	res, applicable := CheckStoppedInstrumentOwn(agedTick(1, 2*time.Minute), baseTime, inst)
	assert.True(t, applicable)
	assert.True(t, res.Active)

	res, applicable = CheckStoppedInstrumentOwn(agedTick(1, 30*time.Second), baseTime, inst)
	assert.True(t, applicable)
	assert.False(t, res.Active)
}

func TestCheckStoppedBroker(t *testing.T) {
	broker := settings.Broker{
		StoppedMaxTime: time.Minute,
	}

	t.Run("no prices for broker", func(t *testing.T) {
		_, applicable := CheckStoppedBroker(nil, baseTime, broker)
		assert.False(t, applicable)
	})

	t.Run("one fresh instrument keeps the broker alive", func(t *testing.T) {
		ticks := []PriceTick{
			agedTick(1, time.Hour),
			agedTick(1, time.Second),
		}
		res, applicable := CheckStoppedBroker(ticks, baseTime, broker)
		assert.True(t, applicable)
		assert.False(t, res.Active)
	})

	t.Run("all instruments stale", func(t *testing.T) {
		ticks := []PriceTick{
			agedTick(1, time.Hour),
			agedTick(1, 2*time.Minute),
		}
		res, applicable := CheckStoppedBroker(ticks, baseTime, broker)
		assert.True(t, applicable)
		assert.True(t, res.Active)
	})
}
