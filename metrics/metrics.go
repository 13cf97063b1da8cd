// Package metrics exposes Prometheus collectors for the trading loops.
// A nil *Recorder is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gridbot"

// Intent outcomes.
const (
	OutcomeExecuted = "executed"
	OutcomeBlocked  = "blocked"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

type Recorder struct {
	riskState     *prometheus.GaugeVec
	positionRatio *prometheus.GaugeVec
	riskFactor    *prometheus.GaugeVec
	bandHigh      *prometheus.GaugeVec
	bandLow       *prometheus.GaugeVec
	intents       *prometheus.CounterVec
	adapterErrors *prometheus.CounterVec
	tickDuration  *prometheus.HistogramVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		riskState: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "risk",
			Name:      "state",
			Help:      "Current risk state: 0 allow_all, 1 allow_sell_only, 2 allow_buy_only",
		}, []string{"symbol"}),
		positionRatio: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "risk",
			Name:      "position_ratio",
			Help:      "Notional exposure divided by equity times leverage",
		}, []string{"symbol"}),
		riskFactor: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "risk",
			Name:      "sentiment_factor",
			Help:      "Risk factor derived from the market sentiment index",
		}, []string{"symbol"}),
		bandHigh: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "s1",
			Name:      "band_high",
			Help:      "Highest high over the S1 lookback window",
		}, []string{"symbol"}),
		bandLow: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "s1",
			Name:      "band_low",
			Help:      "Lowest low over the S1 lookback window",
		}, []string{"symbol"}),
		intents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "s1",
			Name:      "intents_total",
			Help:      "Trade intents produced by the S1 engine, by outcome",
		}, []string{"symbol", "side", "outcome"}),
		adapterErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "adapter",
			Name:      "errors_total",
			Help:      "Failed exchange or ledger calls",
		}, []string{"symbol", "op"}),
		tickDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "trader",
			Name:      "tick_duration_seconds",
			Help:      "Wall time of one evaluation tick",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"symbol"}),
	}
}

func (r *Recorder) RiskState(symbol string, state int) {
	if r == nil {
		return
	}
	r.riskState.WithLabelValues(symbol).Set(float64(state))
}

func (r *Recorder) PositionRatio(symbol string, ratio float64) {
	if r == nil {
		return
	}
	r.positionRatio.WithLabelValues(symbol).Set(ratio)
}

func (r *Recorder) RiskFactor(symbol string, factor float64) {
	if r == nil {
		return
	}
	r.riskFactor.WithLabelValues(symbol).Set(factor)
}

func (r *Recorder) Band(symbol string, high, low float64) {
	if r == nil {
		return
	}
	r.bandHigh.WithLabelValues(symbol).Set(high)
	r.bandLow.WithLabelValues(symbol).Set(low)
}

func (r *Recorder) Intent(symbol, side, outcome string) {
	if r == nil {
		return
	}
	r.intents.WithLabelValues(symbol, side, outcome).Inc()
}

func (r *Recorder) AdapterError(symbol, op string) {
	if r == nil {
		return
	}
	r.adapterErrors.WithLabelValues(symbol, op).Inc()
}

func (r *Recorder) ObserveTick(symbol string, d time.Duration) {
	if r == nil {
		return
	}
	r.tickDuration.WithLabelValues(symbol).Observe(d.Seconds())
}
