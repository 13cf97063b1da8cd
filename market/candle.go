package market

import "time"

// Candle is one OHLCV bar. Sequences of candles are always ordered oldest
// first, matching what exchanges return for an OHLCV request.
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Timeframes understood by the adapters in this module.
const (
	Timeframe1h = "1h"
	Timeframe4h = "4h"
	Timeframe1d = "1d"
)
