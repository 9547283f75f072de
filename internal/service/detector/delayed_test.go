package detector

import (
	"testing"

	"github.com/quotewatch/quote-watch/internal/service/settings"
	"github.com/quotewatch/quote-watch/pkg/decimalx"
	"github.com/stretchr/testify/assert"
)

func tick(brokerId int64, bid, ask string) PriceTick {
	return PriceTick{
		BrokerId: brokerId,
		Bid:      decimalx.MustFromString(bid),
		Ask:      decimalx.MustFromString(ask),
	}
}

func TestCheckDelayed(t *testing.T) {
	inst := settings.Instrument{
		DelayPercent: decimalx.MustFromString("5"),
	}

	testCases := []struct {
		name       string
		own        PriceTick
		others     []PriceTick
		inst       settings.Instrument
		applicable bool
		active     bool
	}{
		{
			name:       "zero percent disables the check",
			own:        tick(1, "1.1000", "1.1002"),
			others:     []PriceTick{tick(2, "1.1050", "1.1052")},
			inst:       settings.Instrument{},
			applicable: false,
		},
		{
			name:       "no peers",
			own:        tick(1, "1.1000", "1.1002"),
			others:     nil,
			inst:       inst,
			applicable: false,
		},
		{
			name: "close to peer average",
			own:  tick(1, "1.1000", "1.1002"),
			others: []PriceTick{
				tick(2, "1.1049", "1.1051"),
				tick(3, "1.1051", "1.1053"),
			},
			inst:       inst,
			applicable: true,
			active:     false,
		},
		{
			name: "own quote lags below the peer bid average",
			own:  tick(1, "1.0000", "1.0002"),
			others: []PriceTick{
				tick(2, "1.1049", "1.1051"),
				tick(3, "1.1051", "1.1053"),
			},
			inst:       inst,
			applicable: true,
			active:     true,
		},
		{
			name: "own quote runs above the peer ask average",
			own:  tick(1, "1.2000", "1.2002"),
			others: []PriceTick{
				tick(2, "1.1049", "1.1051"),
				tick(3, "1.1051", "1.1053"),
			},
			inst:       inst,
			applicable: true,
			active:     true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, applicable := CheckDelayed(tc.own, tc.others, tc.inst)
			assert.Equal(t, tc.applicable, applicable)
			if !applicable {
				return
			}
			assert.Equal(t, tc.active, res.Active)
		})
	}
}

func TestCheckDelayedData(t *testing.T) {
	inst := settings.Instrument{
		DelayPercent: decimalx.MustFromString("5"),
	}
	own := tick(1, "1.0000", "1.0002")
	others := []PriceTick{
		tick(2, "1.1049", "1.1051"),
		tick(3, "1.1051", "1.1053"),
	}

	res, applicable := CheckDelayed(own, others, inst)
	assert.True(t, applicable)

	data, ok := res.Data.(DelayedData)
	assert.True(t, ok)
	assert.True(t, data.AvgBidOthers.Equal(decimalx.MustFromString("1.1050")), "got %s", data.AvgBidOthers)
	assert.True(t, data.AvgAskOthers.Equal(decimalx.MustFromString("1.1052")), "got %s", data.AvgAskOthers)
	// 1.1050 - 1.0000 * 5 / 100
	assert.True(t, data.Expr1.Equal(decimalx.MustFromString("1.0550")), "got %s", data.Expr1)
	assert.True(t, data.Active1)
	assert.False(t, data.Active2)
}
