package risk

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rustyeddy/gridbot/market"
)

// Sentiment bounds on a 0..100 fear and greed scale.
const (
	ExtremeFear  = 20
	ExtremeGreed = 80

	BaseRiskFactor = 1.0
	fearFactor     = 0.5
	greedFactor    = 1.2
)

// SentimentSource returns the current fear and greed index (0..100).
type SentimentSource interface {
	FearGreed(ctx context.Context) (int, error)
}

// SentimentFactor maps an index reading onto a risk factor relative to
// BaseRiskFactor. Readings do not compound.
func SentimentFactor(index int) float64 {
	switch {
	case index < ExtremeFear:
		return BaseRiskFactor * fearFactor
	case index > ExtremeGreed:
		return BaseRiskFactor * greedFactor
	default:
		return BaseRiskFactor
	}
}

// RiskFactor is the factor from the most recent sentiment reading.
func (c *Classifier) RiskFactor() float64 { return c.factor }

// CheckMarketSentiment refreshes RiskFactor from the attached source. On
// error, or without a source, the factor is left as is. The factor is
// advisory and never moves the ratio thresholds.
func (c *Classifier) CheckMarketSentiment(ctx context.Context, symbol string) (factor float64) {
	if c.sentiment == nil {
		return c.factor
	}
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("market sentiment check failed",
				zap.String("symbol", symbol),
				zap.Error(fmt.Errorf("%w: panic: %v", market.ErrAdapter, r)))
			factor = c.factor
		}
	}()

	index, err := c.sentiment.FearGreed(ctx)
	if err != nil {
		c.log.Error("market sentiment check failed",
			zap.String("symbol", symbol),
			zap.Error(err))
		return c.factor
	}

	next := SentimentFactor(index)
	if next != c.factor {
		c.log.Info("risk factor changed",
			zap.String("symbol", symbol),
			zap.Int("fear_greed", index),
			zap.Float64("from", c.factor),
			zap.Float64("to", next))
	}
	c.factor = next
	c.metrics.RiskFactor(symbol, next)
	return next
}
