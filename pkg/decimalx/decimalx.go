package decimalx

import "github.com/shopspring/decimal"

func MustFromString(s string) decimal.Decimal {
	f, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return f
}

func Avg(ds []decimal.Decimal) decimal.Decimal {
	if len(ds) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, d := range ds {
		sum = sum.Add(d)
	}
	return sum.Div(decimal.NewFromInt(int64(len(ds))))
}
