package indicators

import (
	"fmt"
	"math"

	"github.com/rustyeddy/gridbot/market"
)

// Channel tracks the highest high and lowest low over the last period
// closed candles (a Donchian channel).
type Channel struct {
	period  int
	candles []market.Candle
}

// NewChannel returns a channel over period candles. period must be >= 1.
func NewChannel(period int) *Channel {
	if period < 1 {
		period = 1
	}
	return &Channel{
		period:  period,
		candles: make([]market.Candle, 0, period),
	}
}

func (c *Channel) Name() string {
	return fmt.Sprintf("CHANNEL(%d)", c.period)
}

func (c *Channel) Warmup() int { return c.period }

func (c *Channel) Reset() {
	c.candles = c.candles[:0]
}

func (c *Channel) Update(k market.Candle) {
	c.candles = append(c.candles, k)
	if len(c.candles) > c.period {
		c.candles = c.candles[1:]
	}
}

func (c *Channel) Ready() bool {
	return len(c.candles) >= c.period
}

// High returns the highest high in the window, or 0 before warmup.
func (c *Channel) High() float64 {
	if !c.Ready() {
		return 0
	}
	hi := math.Inf(-1)
	for _, k := range c.candles {
		hi = math.Max(hi, k.High)
	}
	return hi
}

// Low returns the lowest low in the window, or 0 before warmup.
func (c *Channel) Low() float64 {
	if !c.Ready() {
		return 0
	}
	lo := math.Inf(1)
	for _, k := range c.candles {
		lo = math.Min(lo, k.Low)
	}
	return lo
}
