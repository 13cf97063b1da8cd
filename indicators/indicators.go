// Package indicators provides streaming technical indicators fed one closed
// candle at a time.
package indicators

import "github.com/rustyeddy/gridbot/market"

// Indicator computes a value from a stream of closed candles.
type Indicator interface {
	// Name returns a stable identifier like "CHANNEL(52)".
	Name() string

	// Warmup returns how many updates are needed before Ready() is true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next *closed* candle.
	Update(c market.Candle)

	// Ready reports whether the indicator's values are meaningful.
	Ready() bool
}
