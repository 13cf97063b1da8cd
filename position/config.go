package position

import (
	"fmt"
	"time"

	"github.com/rustyeddy/gridbot/market"
)

// StrategyTag marks ledger records written by this engine.
const StrategyTag = "S1"

type Config struct {
	Symbol     string
	QuoteAsset string

	Timeframe       string        // candle timeframe for the band, "1d"
	Lookback        int           // completed candles in the band, 52
	RefreshInterval time.Duration // band staleness, 23.9h

	SellTargetPct float64 // exposure to reduce to on an upper breach, 0.5
	BuyTargetPct  float64 // exposure to add up to on a lower breach, 0.7
	Leverage      float64

	Instrument market.Instrument
}

func DefaultConfig(symbol string) Config {
	return Config{
		Symbol:          symbol,
		QuoteAsset:      "USDT",
		Timeframe:       market.Timeframe1d,
		Lookback:        52,
		RefreshInterval: 23*time.Hour + 54*time.Minute,
		SellTargetPct:   0.5,
		BuyTargetPct:    0.7,
		Leverage:        10,
		Instrument:      market.NewInstrument(symbol),
	}
}

func (c Config) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("s1: symbol is required")
	}
	if c.QuoteAsset == "" {
		return fmt.Errorf("s1: quote asset is required")
	}
	if c.Lookback < 1 {
		return fmt.Errorf("s1: lookback must be >= 1, got %d", c.Lookback)
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("s1: refresh interval must be > 0")
	}
	if c.SellTargetPct <= 0 || c.SellTargetPct > 1 {
		return fmt.Errorf("s1: sell target must be in (0,1], got %v", c.SellTargetPct)
	}
	if c.BuyTargetPct <= 0 || c.BuyTargetPct > 1 {
		return fmt.Errorf("s1: buy target must be in (0,1], got %v", c.BuyTargetPct)
	}
	if c.Leverage < 1 {
		return fmt.Errorf("s1: leverage must be >= 1, got %v", c.Leverage)
	}
	return nil
}
