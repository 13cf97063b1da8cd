package risk

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/rustyeddy/gridbot/market"
	"github.com/rustyeddy/gridbot/metrics"
	"github.com/rustyeddy/gridbot/pkg/logging"
)

// statusDelta is the ratio change that triggers a status line.
const statusDelta = 0.001

// SnapshotSource is the part of the exchange adapter the classifier reads.
type SnapshotSource interface {
	FetchBalance(ctx context.Context) (market.AccountSnapshot, error)
	FetchPositions(ctx context.Context, symbols []string) ([]market.PositionSnapshot, error)
}

// Classifier maps a position ratio onto a State. It keeps breach latches and
// the last logged ratio, so an instance belongs to a single trading loop and
// is not safe for concurrent use.
type Classifier struct {
	cfg     Thresholds
	log     *zap.Logger
	metrics *metrics.Recorder

	sentiment SentimentSource
	factor    float64

	lastRatio float64
	seen      bool
	upper     breachLatch
	lower     breachLatch
}

type Option func(*Classifier)

func WithLogger(l *zap.Logger) Option {
	return func(c *Classifier) { c.log = logging.OrNop(l).Named("risk") }
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(c *Classifier) { c.metrics = m }
}

// WithSentiment attaches a market sentiment source read by
// CheckMarketSentiment.
func WithSentiment(src SentimentSource) Option {
	return func(c *Classifier) { c.sentiment = src }
}

func New(cfg Thresholds, opts ...Option) *Classifier {
	if cfg.FailurePolicy == "" {
		cfg.FailurePolicy = FailOpen
	}
	c := &Classifier{
		cfg:    cfg,
		log:    zap.NewNop(),
		factor: BaseRiskFactor,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Classifier) Thresholds() Thresholds { return c.cfg }

// CheckPositionLimits classifies one account/position observation.
func (c *Classifier) CheckPositionLimits(acct market.AccountSnapshot, pos market.PositionSnapshot) State {
	equity := Equity(acct, c.cfg.QuoteAsset, pos.UnrealizedPnL)
	ratio := PositionRatio(pos.Notional, equity, c.cfg.Leverage)
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return c.fail(pos.Symbol, fmt.Errorf("%w: position ratio %v (notional %v, equity %v)",
			market.ErrInvalidAccountState, ratio, pos.Notional, equity))
	}

	c.log.Debug("position ratio",
		zap.String("symbol", pos.Symbol),
		zap.Float64("notional", pos.Notional),
		zap.Float64("equity", equity),
		zap.Float64("leverage", c.cfg.Leverage),
		zap.Float64("ratio", ratio))

	return c.classify(pos.Symbol, ratio)
}

// Check reads fresh balance and position snapshots for symbol and classifies
// them. A failed read returns the configured failure state; it never panics.
func (c *Classifier) Check(ctx context.Context, src SnapshotSource, symbol string) (state State) {
	defer func() {
		if r := recover(); r != nil {
			state = c.fail(symbol, fmt.Errorf("%w: panic: %v", market.ErrAdapter, r))
		}
	}()

	acct, err := src.FetchBalance(ctx)
	if err != nil {
		return c.fail(symbol, fmt.Errorf("%w: fetch balance: %w", market.ErrAdapter, err))
	}
	positions, err := src.FetchPositions(ctx, []string{symbol})
	if err != nil {
		return c.fail(symbol, fmt.Errorf("%w: fetch positions: %w", market.ErrAdapter, err))
	}
	return c.CheckPositionLimits(acct, market.FindPosition(positions, symbol))
}

// Restricted reports whether any direction is currently blocked.
func (c *Classifier) Restricted(ctx context.Context, src SnapshotSource, symbol string) bool {
	return c.Check(ctx, src, symbol) != AllowAll
}

func (c *Classifier) classify(symbol string, ratio float64) State {
	if !c.seen {
		c.lastRatio = ratio
		c.seen = true
	}
	if math.Abs(ratio-c.lastRatio) > statusDelta {
		c.log.Info("risk check",
			zap.String("symbol", symbol),
			zap.Float64("ratio", ratio),
			zap.Float64("max_ratio", c.cfg.MaxPositionRatio),
			zap.Float64("min_ratio", c.cfg.MinPositionRatio))
		c.lastRatio = ratio
	}

	var state State
	switch {
	case ratio > c.cfg.MaxPositionRatio:
		if c.upper.enter() {
			c.log.Warn("position above max ratio, buys paused",
				zap.String("symbol", symbol),
				zap.Float64("ratio", ratio),
				zap.Float64("max_ratio", c.cfg.MaxPositionRatio))
		}
		c.lower.clear()
		state = AllowSellOnly

	case ratio < c.cfg.MinPositionRatio:
		if c.lower.enter() {
			c.log.Warn("position below min ratio, sells paused",
				zap.String("symbol", symbol),
				zap.Float64("ratio", ratio),
				zap.Float64("min_ratio", c.cfg.MinPositionRatio))
		}
		c.upper.clear()
		state = AllowBuyOnly

	default:
		wasUpper := c.upper.clear()
		wasLower := c.lower.clear()
		if wasUpper || wasLower {
			c.log.Info("position ratio back within limits",
				zap.String("symbol", symbol),
				zap.Float64("ratio", ratio))
		}
		state = AllowAll
	}

	c.metrics.PositionRatio(symbol, ratio)
	c.metrics.RiskState(symbol, int(state))
	return state
}

func (c *Classifier) fail(symbol string, err error) State {
	c.upper.clear()
	c.lower.clear()
	state := c.cfg.FailurePolicy.state()
	c.log.Error("risk check failed",
		zap.String("symbol", symbol),
		zap.Stringer("fallback", state),
		zap.Error(err))
	c.metrics.RiskState(symbol, int(state))
	return state
}
