package detector

import (
	"github.com/quotewatch/quote-watch/internal/service/settings"
	"github.com/quotewatch/quote-watch/pkg/decimalx"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type DelayedData struct {
	AvgBidOthers decimal.Decimal `json:"avgBidOthers"`
	AvgAskOthers decimal.Decimal `json:"avgAskOthers"`
	Expr1        decimal.Decimal `json:"expr1"`
	Expr2        decimal.Decimal `json:"expr2"`
	Active1      bool            `json:"active1"`
	Active2      bool            `json:"active2"`
}

// CheckDelayed compares the own broker's quote against the peer
// average. The quote counts as delayed when the own ask has fallen
// below the peer bid average or the own bid has risen above the peer
// ask average, each shifted by the configured percentage.
func CheckDelayed(own PriceTick, others []PriceTick, inst settings.Instrument) (Result, bool) {
	if inst.DelayPercent.IsZero() {
		// not tracking delayed
		return Result{}, false
	}
	if len(others) == 0 {
		return Result{}, false
	}

	avgBidOthers := decimalx.Avg(lo.Map(others, func(p PriceTick, _ int) decimal.Decimal {
		return p.Bid
	}))
	avgAskOthers := decimalx.Avg(lo.Map(others, func(p PriceTick, _ int) decimal.Decimal {
		return p.Ask
	}))

	expr1 := avgBidOthers.Sub(own.Bid.Mul(inst.DelayPercent).Div(hundred))
	expr2 := avgAskOthers.Add(own.Ask.Mul(inst.DelayPercent).Div(hundred))

	active1 := own.Ask.LessThan(expr1)
	active2 := own.Bid.GreaterThan(expr2)

	return Result{
		Active: active1 || active2,
		Data: DelayedData{
			AvgBidOthers: avgBidOthers,
			AvgAskOthers: avgAskOthers,
			Expr1:        expr1,
			Expr2:        expr2,
			Active1:      active1,
			Active2:      active2,
		},
	}, true
}
