package position

import (
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/gridbot/market"
)

// TargetNotional is the quote exposure that puts the position ratio at pct.
func TargetNotional(equity, pct, leverage float64) float64 {
	return equity * pct * leverage
}

// TargetContracts converts TargetNotional at price into contracts, floored to
// the instrument's amount precision.
func TargetContracts(equity, pct, leverage, price float64, inst market.Instrument) float64 {
	if price <= 0 {
		return 0
	}
	return inst.FloorAmount(TargetNotional(equity, pct, leverage) / price)
}

// delta returns a-b without binary float residue.
func delta(a, b float64) float64 {
	d, _ := decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Float64()
	return d
}
