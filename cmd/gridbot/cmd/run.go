package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/gridbot/broker"
	"github.com/rustyeddy/gridbot/broker/sim"
	"github.com/rustyeddy/gridbot/config"
	"github.com/rustyeddy/gridbot/journal"
	"github.com/rustyeddy/gridbot/market"
	"github.com/rustyeddy/gridbot/metrics"
	"github.com/rustyeddy/gridbot/pkg/logging"
	"github.com/rustyeddy/gridbot/position"
	"github.com/rustyeddy/gridbot/risk"
	"github.com/rustyeddy/gridbot/sentiment"
	"github.com/rustyeddy/gridbot/trader"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the trading loops against the paper exchange",
	Long: `Start one trading loop per configured symbol. Each tick refreshes the
S1 band when stale, classifies account risk and lets the S1 engine place at
most one market order.

Orders fill on the built-in paper exchange seeded from the paper section of
the config. Stop with Ctrl-C.

Example:
  gridbot run -f gridbot.yaml`,
	RunE: runRun,
}

var runSymbols []string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringSliceVarP(&runSymbols, "symbol", "s", nil, "only run these symbols (default: all configured)")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()

	for _, w := range cfg.Warnings() {
		log.Warn("config warning", zap.String("detail", w))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ledger, err := journal.Open(ctx, cfg.JournalOptions())
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer ledger.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rec := metrics.New(reg)
	if cfg.Metrics.Addr != "" {
		srv := serveMetrics(cfg.Metrics.Addr, reg, log)
		defer func() {
			shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutCtx)
		}()
	}

	engine, err := newPaperEngine(cfg)
	if err != nil {
		return err
	}
	var adapter broker.Adapter = engine
	if cfg.Trader.RateLimit > 0 {
		adapter = broker.NewRateLimited(engine, cfg.Trader.RateLimit, cfg.Trader.RateBurst)
	}

	sent := sentimentSource(cfg)

	symbols := runSymbols
	if len(symbols) == 0 {
		symbols = cfg.SymbolNames()
	}

	var loops []*trader.Loop
	for _, sym := range symbols {
		l, err := buildLoop(cfg, sym, engine, adapter, ledger, rec, sent, log)
		if err != nil {
			log.Error("symbol setup failed, skipping", zap.String("symbol", sym), zap.Error(err))
			continue
		}
		loops = append(loops, l)
	}
	if len(loops) == 0 {
		return errors.New("no symbols started")
	}

	log.Info("gridbot started",
		zap.Int("symbols", len(loops)),
		zap.Duration("tick", cfg.TickInterval()),
		zap.String("journal", cfg.Journal.Type),
	)
	err = trader.NewGroup(loops...).Run(ctx)
	log.Info("gridbot stopped", zap.Error(err))
	return err
}

func buildLoop(cfg *config.Config, sym string, engine *sim.Engine, adapter broker.Adapter,
	ledger journal.Ledger, rec *metrics.Recorder, sent risk.SentimentSource, log *zap.Logger) (*trader.Loop, error) {

	if _, err := engine.MarkPrice(context.Background(), sym); err != nil {
		return nil, fmt.Errorf("paper mark: %w", err)
	}

	th, err := cfg.Thresholds(sym)
	if err != nil {
		return nil, err
	}
	pc, err := cfg.Position(sym)
	if err != nil {
		return nil, err
	}
	if err := pc.Validate(); err != nil {
		return nil, err
	}

	ropts := []risk.Option{risk.WithLogger(log), risk.WithMetrics(rec)}
	if sent != nil {
		ropts = append(ropts, risk.WithSentiment(sent))
	}
	classifier := risk.New(th, ropts...)

	controller := position.New(pc, adapter, engine,
		position.WithLogger(log),
		position.WithLedger(ledger),
		position.WithMetrics(rec),
	)

	return trader.New(sym, classifier, controller, adapter,
		trader.WithLogger(log),
		trader.WithMetrics(rec),
		trader.WithInterval(cfg.TickInterval()),
		trader.WithSentimentInterval(cfg.SentimentInterval()),
	), nil
}

// sentimentSource returns nil when the sentiment check is disabled. A fixed
// index in the config replaces the HTTP feed.
func sentimentSource(cfg *config.Config) risk.SentimentSource {
	switch {
	case !cfg.Sentiment.Enabled:
		return nil
	case cfg.Sentiment.Static != nil:
		return sentiment.Static(*cfg.Sentiment.Static)
	default:
		return sentiment.NewFearGreedClient(cfg.Sentiment.URL, 10*time.Second)
	}
}

// newPaperEngine seeds the paper exchange from cfg.Paper. A symbol without
// an explicit mark uses the close of its last candle.
func newPaperEngine(cfg *config.Config) (*sim.Engine, error) {
	lev := make(map[string]float64, len(cfg.Symbols))
	modes := make(map[string]string, len(cfg.Symbols))
	for s, sc := range cfg.Symbols {
		lev[s] = sc.Leverage
		modes[s] = sc.MarginMode
	}
	engine := sim.NewEngine(sim.Config{
		QuoteAsset: cfg.QuoteAsset,
		Balance:    cfg.Paper.Balance,
		Leverage:   lev,
		MarginMode: modes,
	})

	for sym, path := range cfg.Paper.Candles {
		cs, err := market.LoadCandlesCSV(path)
		if err != nil {
			return nil, fmt.Errorf("paper candles %s: %w", sym, err)
		}
		engine.SetCandles(sym, cs)
		if len(cs) > 0 {
			engine.SetMark(sym, cs[len(cs)-1].Close)
		}
	}
	for sym, px := range cfg.Paper.Marks {
		engine.SetMark(sym, px)
	}
	return engine, nil
}

func serveMetrics(addr string, reg *prometheus.Registry, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("metrics listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server", zap.Error(err))
		}
	}()
	return srv
}
