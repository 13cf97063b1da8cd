package position

import (
	"fmt"
	"time"

	"github.com/rustyeddy/gridbot/indicators"
	"github.com/rustyeddy/gridbot/market"
)

// PriceBand is the S1 channel over the most recent completed candles.
type PriceBand struct {
	High      float64
	Low       float64
	UpdatedAt time.Time
}

// ComputeBand takes the lookback candles before the newest one, which may
// still be forming, and returns their highest high and lowest low. It needs
// at least lookback+1 candles, oldest first.
func ComputeBand(candles []market.Candle, lookback int) (PriceBand, error) {
	if lookback < 1 {
		return PriceBand{}, fmt.Errorf("lookback must be >= 1, got %d", lookback)
	}
	if len(candles) < lookback+1 {
		return PriceBand{}, fmt.Errorf("%w: have %d candles, need %d",
			market.ErrDataUnavailable, len(candles), lookback+1)
	}

	ch := indicators.NewChannel(lookback)
	for _, k := range candles[len(candles)-lookback-1 : len(candles)-1] {
		ch.Update(k)
	}
	return PriceBand{High: ch.High(), Low: ch.Low()}, nil
}
