package risk

import "github.com/rustyeddy/gridbot/market"

// Equity is the quote-denominated account value backing a futures position:
// free plus used margin plus unrealized PnL.
func Equity(acct market.AccountSnapshot, quote string, unrealizedPnL float64) float64 {
	return acct.FreeOf(quote) + acct.UsedOf(quote) + unrealizedPnL
}

// PositionRatio is |notional| / (equity * leverage). It is 0 when equity or
// leverage is not positive.
func PositionRatio(notional, equity, leverage float64) float64 {
	if equity <= 0 || leverage <= 0 {
		return 0
	}
	if notional < 0 {
		notional = -notional
	}
	return notional / (equity * leverage)
}
