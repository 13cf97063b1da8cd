// Package position implements the S1 rebalancing engine: a long-horizon
// price band and the position adjustments made when price leaves it.
package position

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/gridbot/broker"
	"github.com/rustyeddy/gridbot/journal"
	"github.com/rustyeddy/gridbot/market"
	"github.com/rustyeddy/gridbot/metrics"
	"github.com/rustyeddy/gridbot/pkg/logging"
	"github.com/rustyeddy/gridbot/risk"
)

// Controller owns one symbol's band. It is driven by a single trading loop
// and is not safe for concurrent use.
type Controller struct {
	cfg     Config
	adapter broker.Adapter
	prices  broker.PriceSource
	ledger  journal.Ledger
	log     *zap.Logger
	metrics *metrics.Recorder
	now     func() time.Time

	band    PriceBand
	hasBand bool
}

type Option func(*Controller)

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		c.log = logging.OrNop(l).Named("s1").With(zap.String("symbol", c.cfg.Symbol))
	}
}

// WithLedger records executed adjustments. The default discards them.
func WithLedger(l journal.Ledger) Option {
	return func(c *Controller) {
		if l != nil {
			c.ledger = l
		}
	}
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(c *Controller) { c.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

func New(cfg Config, adapter broker.Adapter, prices broker.PriceSource, opts ...Option) *Controller {
	if cfg.Instrument.Symbol == "" {
		cfg.Instrument.Symbol = cfg.Symbol
	}
	cfg.Instrument = cfg.Instrument.WithDefaults()

	c := &Controller{
		cfg:     cfg,
		adapter: adapter,
		prices:  prices,
		ledger:  journal.Nop{},
		log:     zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.log.Info("S1 controller ready",
		zap.Int("lookback", cfg.Lookback),
		zap.Float64("sell_target_pct", cfg.SellTargetPct),
		zap.Float64("buy_target_pct", cfg.BuyTargetPct),
		zap.Float64("leverage", cfg.Leverage))
	return c
}

func (c *Controller) Config() Config { return c.cfg }

// Band returns the current band; ok is false until the first refresh succeeds.
func (c *Controller) Band() (PriceBand, bool) {
	return c.band, c.hasBand
}

// UpdateDailyLevels refreshes the band once RefreshInterval has passed since
// the last successful refresh. A failed refresh keeps the previous band and
// is retried on the next call. It reports whether the band changed.
func (c *Controller) UpdateDailyLevels(ctx context.Context) (updated bool) {
	now := c.now()
	if c.hasBand && now.Sub(c.band.UpdatedAt) < c.cfg.RefreshInterval {
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			c.log.Error("S1 band refresh failed", zap.Any("panic", r))
			c.metrics.AdapterError(c.cfg.Symbol, "fetch_ohlcv")
			updated = false
		}
	}()

	c.log.Info("refreshing S1 band")
	candles, err := c.adapter.FetchOHLCV(ctx, c.cfg.Symbol, c.cfg.Timeframe, c.cfg.Lookback+2)
	if err != nil {
		c.log.Error("S1 band refresh failed", zap.Error(fmt.Errorf("%w: fetch ohlcv: %w", market.ErrAdapter, err)))
		c.metrics.AdapterError(c.cfg.Symbol, "fetch_ohlcv")
		return false
	}

	band, err := ComputeBand(candles, c.cfg.Lookback)
	if err != nil {
		c.log.Warn("not enough daily candles, band unchanged",
			zap.Int("candles", len(candles)),
			zap.Error(err))
		return false
	}

	band.UpdatedAt = now
	c.band = band
	c.hasBand = true

	c.log.Info("S1 band updated",
		zap.Float64("high", band.High),
		zap.Float64("low", band.Low))
	c.metrics.Band(c.cfg.Symbol, band.High, band.Low)
	return true
}

type observation struct {
	price  float64
	equity float64
	ratio  float64
	pos    market.PositionSnapshot
}

// Evaluate makes at most one adjustment. Every failure is logged and
// reported in the Decision; Evaluate never panics.
func (c *Controller) Evaluate(ctx context.Context, state risk.State) (d Decision) {
	defer func() {
		if r := recover(); r != nil {
			d = c.skip(fmt.Errorf("%w: panic: %v", market.ErrAdapter, r))
		}
	}()

	band, ok := c.Band()
	if !ok {
		c.log.Debug("S1 band not available yet")
		return Decision{Action: ActionSkipped, Err: market.ErrDataUnavailable}
	}

	obs, err := c.observe(ctx)
	if err != nil {
		return c.skip(err)
	}

	c.log.Debug("S1 position",
		zap.Float64("price", obs.price),
		zap.Float64("contracts", obs.pos.Contracts),
		zap.String("side", string(obs.pos.Side)),
		zap.Float64("ratio", obs.ratio))

	d = Decision{Price: obs.price, Ratio: obs.ratio}
	intent, target := c.intent(band, obs)
	d.Target = target
	if intent == nil {
		d.Action = ActionNone
		return d
	}
	d.Intent = intent

	c.log.Info("S1 breach",
		zap.String("reason", intent.Reason),
		zap.String("side", string(intent.Side)),
		zap.Float64("amount", intent.Amount),
		zap.Float64("target_contracts", target),
		zap.Float64("price", obs.price),
		zap.Float64("band_high", band.High),
		zap.Float64("band_low", band.Low))

	if !permits(state, intent.Side) {
		c.log.Info("S1 signal blocked by risk state",
			zap.String("side", string(intent.Side)),
			zap.Stringer("state", state))
		c.metrics.Intent(c.cfg.Symbol, string(intent.Side), metrics.OutcomeBlocked)
		d.Action = ActionBlocked
		return d
	}

	if err := c.cfg.Instrument.CheckOrder(intent.Amount, obs.price); err != nil {
		c.log.Warn("S1 order below exchange minimum",
			zap.String("side", string(intent.Side)),
			zap.Float64("amount", intent.Amount),
			zap.Float64("notional", intent.Amount*obs.price),
			zap.Error(err))
		c.metrics.Intent(c.cfg.Symbol, string(intent.Side), metrics.OutcomeRejected)
		d.Action = ActionRejected
		d.Err = err
		return d
	}

	order, err := c.execute(ctx, *intent, obs.price)
	if err != nil {
		c.log.Error("S1 adjustment failed",
			zap.String("side", string(intent.Side)),
			zap.Float64("amount", intent.Amount),
			zap.Error(err))
		c.metrics.Intent(c.cfg.Symbol, string(intent.Side), metrics.OutcomeFailed)
		d.Action = ActionFailed
		d.Err = err
		return d
	}

	c.metrics.Intent(c.cfg.Symbol, string(intent.Side), metrics.OutcomeExecuted)
	d.Action = ActionExecuted
	d.Order = &order
	return d
}

func (c *Controller) observe(ctx context.Context) (observation, error) {
	var o observation

	price, err := c.prices.MarkPrice(ctx, c.cfg.Symbol)
	if err != nil {
		c.metrics.AdapterError(c.cfg.Symbol, "mark_price")
		return o, fmt.Errorf("%w: mark price: %w", market.ErrAdapter, err)
	}
	if !(price > 0) || math.IsInf(price, 0) {
		return o, fmt.Errorf("%w: price %v", market.ErrInvalidAccountState, price)
	}

	positions, err := c.adapter.FetchPositions(ctx, []string{c.cfg.Symbol})
	if err != nil {
		c.metrics.AdapterError(c.cfg.Symbol, "fetch_positions")
		return o, fmt.Errorf("%w: fetch positions: %w", market.ErrAdapter, err)
	}
	pos := market.FindPosition(positions, c.cfg.Symbol)

	acct, err := c.adapter.FetchBalance(ctx)
	if err != nil {
		c.metrics.AdapterError(c.cfg.Symbol, "fetch_balance")
		return o, fmt.Errorf("%w: fetch balance: %w", market.ErrAdapter, err)
	}
	equity := acct.TotalOf(c.cfg.QuoteAsset)
	if !(equity > 0) || math.IsInf(equity, 0) {
		return o, fmt.Errorf("%w: equity %v %s", market.ErrInvalidAccountState, equity, c.cfg.QuoteAsset)
	}

	o.price = price
	o.equity = equity
	o.pos = pos
	o.ratio = risk.PositionRatio(pos.Contracts*price, equity, c.cfg.Leverage)
	return o, nil
}

// intent applies the breach rules. The upper breach takes priority, so a
// single call yields at most one intent.
func (c *Controller) intent(b PriceBand, o observation) (*Intent, float64) {
	switch {
	case o.price > b.High && o.ratio > c.cfg.SellTargetPct:
		target := TargetContracts(o.equity, c.cfg.SellTargetPct, c.cfg.Leverage, o.price, c.cfg.Instrument)
		if o.pos.Side == market.PositionLong && o.pos.Contracts > target {
			return &Intent{
				Side:   market.SideSell,
				Amount: delta(o.pos.Contracts, target),
				Reason: ReasonUpperBreach,
			}, target
		}
		return nil, target

	case o.price < b.Low && o.ratio < c.cfg.BuyTargetPct:
		target := TargetContracts(o.equity, c.cfg.BuyTargetPct, c.cfg.Leverage, o.price, c.cfg.Instrument)
		if o.pos.Side != market.PositionShort && o.pos.Contracts < target {
			return &Intent{
				Side:   market.SideBuy,
				Amount: delta(target, o.pos.Contracts),
				Reason: ReasonLowerBreach,
			}, target
		}
		return nil, target
	}
	return nil, 0
}

func permits(state risk.State, side market.Side) bool {
	if side == market.SideBuy {
		return state.AllowsBuy()
	}
	return state.AllowsSell()
}

func (c *Controller) execute(ctx context.Context, in Intent, price float64) (market.Order, error) {
	c.log.Info("S1 submitting adjustment",
		zap.String("side", string(in.Side)),
		zap.Float64("amount", in.Amount),
		zap.Float64("price", price))

	order, err := c.adapter.CreateFuturesOrder(ctx, c.cfg.Symbol, in.Side, in.Amount, market.OrderTypeMarket)
	if err != nil {
		c.metrics.AdapterError(c.cfg.Symbol, "create_order")
		return market.Order{}, fmt.Errorf("%w: create order: %w", market.ErrAdapter, err)
	}
	c.log.Info("S1 adjustment filled", zap.String("order_id", order.ID))

	rec := journal.Record{
		Timestamp: c.now(),
		Symbol:    c.cfg.Symbol,
		Strategy:  StrategyTag,
		Side:      in.Side,
		Price:     order.FillPrice(price),
		Amount:    order.FilledAmount(in.Amount),
		OrderID:   order.ID,
	}
	// the order is live; record it even when the tick is being cancelled
	if err := c.ledger.AddTrade(context.WithoutCancel(ctx), rec); err != nil {
		c.log.Error("S1 ledger write failed", zap.String("order_id", order.ID), zap.Error(err))
		c.metrics.AdapterError(c.cfg.Symbol, "add_trade")
	}
	return order, nil
}

func (c *Controller) skip(err error) Decision {
	switch {
	case errors.Is(err, market.ErrInvalidAccountState):
		c.log.Warn("S1 evaluation skipped", zap.Error(err))
	default:
		c.log.Error("S1 evaluation failed", zap.Error(err))
	}
	return Decision{Action: ActionSkipped, Err: err}
}
