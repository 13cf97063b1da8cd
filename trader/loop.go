// Package trader drives one risk classifier and one S1 controller per
// symbol on a fixed cadence.
package trader

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rustyeddy/gridbot/metrics"
	"github.com/rustyeddy/gridbot/pkg/logging"
	"github.com/rustyeddy/gridbot/position"
	"github.com/rustyeddy/gridbot/risk"
)

const DefaultTickInterval = 30 * time.Second

// Loop owns the classifier and controller for one symbol. Neither is
// touched from any other goroutine.
type Loop struct {
	symbol     string
	classifier *risk.Classifier
	controller *position.Controller
	src        risk.SnapshotSource

	interval       time.Duration
	sentimentEvery time.Duration
	lastSentiment  time.Time

	log     *zap.Logger
	metrics *metrics.Recorder
	now     func() time.Time
}

type Option func(*Loop)

func WithLogger(l *zap.Logger) Option {
	return func(lp *Loop) {
		lp.log = logging.OrNop(l).Named("trader").With(zap.String("symbol", lp.symbol))
	}
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(lp *Loop) { lp.metrics = m }
}

// WithInterval sets the tick cadence.
func WithInterval(d time.Duration) Option {
	return func(lp *Loop) {
		if d > 0 {
			lp.interval = d
		}
	}
}

// WithSentimentInterval enables the market sentiment check every d.
func WithSentimentInterval(d time.Duration) Option {
	return func(lp *Loop) { lp.sentimentEvery = d }
}

func WithClock(now func() time.Time) Option {
	return func(lp *Loop) {
		if now != nil {
			lp.now = now
		}
	}
}

func New(symbol string, classifier *risk.Classifier, controller *position.Controller, src risk.SnapshotSource, opts ...Option) *Loop {
	l := &Loop{
		symbol:     symbol,
		classifier: classifier,
		controller: controller,
		src:        src,
		interval:   DefaultTickInterval,
		log:        zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loop) Symbol() string { return l.symbol }

// Tick refreshes the band when stale, classifies risk and lets the
// controller act on it.
func (l *Loop) Tick(ctx context.Context) (d position.Decision) {
	start := l.now()
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("tick panicked", zap.Any("panic", r))
			d = position.Decision{Action: position.ActionSkipped}
		}
		l.metrics.ObserveTick(l.symbol, l.now().Sub(start))
	}()

	l.controller.UpdateDailyLevels(ctx)

	if l.sentimentEvery > 0 && (l.lastSentiment.IsZero() || start.Sub(l.lastSentiment) >= l.sentimentEvery) {
		l.classifier.CheckMarketSentiment(ctx, l.symbol)
		l.lastSentiment = start
	}

	state := l.classifier.Check(ctx, l.src, l.symbol)
	d = l.controller.Evaluate(ctx, state)

	l.log.Debug("tick",
		zap.Stringer("risk_state", state),
		zap.String("action", string(d.Action)))
	return d
}

// Run ticks immediately and then every interval until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	l.log.Info("trading loop started", zap.Duration("interval", l.interval))

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			l.log.Info("trading loop stopped")
			return nil
		case <-ticker.C:
			l.Tick(ctx)
		}
	}
}

// Group runs loops side by side.
type Group struct {
	loops []*Loop
}

func NewGroup(loops ...*Loop) *Group {
	return &Group{loops: loops}
}

func (g *Group) Len() int { return len(g.loops) }

// Run blocks until every loop has returned.
func (g *Group) Run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)
	for _, l := range g.loops {
		l := l
		eg.Go(func() error { return l.Run(ctx) })
	}
	return eg.Wait()
}
