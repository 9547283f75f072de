package detector

import (
	"github.com/quotewatch/quote-watch/internal/service/settings"
	"github.com/quotewatch/quote-watch/pkg/decimalx"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type SpreadData struct {
	Spreads      map[int64]decimal.Decimal `json:"spreads"`
	OurSpread    decimal.Decimal           `json:"ourSpread"`
	OthersSpread decimal.Decimal           `json:"othersSpread"`
}

// CheckSpread reports the own broker's ask-bid spread exceeding the
// peer average spread by more than the configured multiplier.
func CheckSpread(own PriceTick, others []PriceTick, inst settings.Instrument) (Result, bool) {
	if inst.SpreadMultiplier.IsZero() {
		// not tracking spread
		return Result{}, false
	}
	if len(others) == 0 {
		return Result{}, false
	}

	spreads := make(map[int64]decimal.Decimal, len(others)+1)
	spreads[own.BrokerId] = own.Spread()
	for _, p := range others {
		spreads[p.BrokerId] = p.Spread()
	}

	ourSpread := own.Spread()
	othersSpread := decimalx.Avg(lo.Map(others, func(p PriceTick, _ int) decimal.Decimal {
		return p.Spread()
	}))

	return Result{
		Active: ourSpread.GreaterThan(othersSpread.Mul(inst.SpreadMultiplier)),
		Data: SpreadData{
			Spreads:      spreads,
			OurSpread:    ourSpread,
			OthersSpread: othersSpread,
		},
	}, true
}
