package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/gridbot/journal"
	"github.com/rustyeddy/gridbot/market"
	"github.com/rustyeddy/gridbot/position"
	"github.com/rustyeddy/gridbot/risk"
)

// Config is the complete bot configuration. It is read once at startup and
// never mutated by the trading loops.
type Config struct {
	QuoteAsset string                  `json:"quote_asset" yaml:"quote_asset"`
	Risk       RiskConfig              `json:"risk" yaml:"risk"`
	S1         S1Config                `json:"s1" yaml:"s1"`
	Orders     OrdersConfig            `json:"orders" yaml:"orders"`
	Symbols    map[string]SymbolConfig `json:"symbols" yaml:"symbols"`
	Trader     TraderConfig            `json:"trader" yaml:"trader"`
	Journal    JournalConfig           `json:"journal" yaml:"journal"`
	Log        LogConfig               `json:"log" yaml:"log"`
	Metrics    MetricsConfig           `json:"metrics" yaml:"metrics"`
	Sentiment  SentimentConfig         `json:"sentiment" yaml:"sentiment"`
	Paper      PaperConfig             `json:"paper" yaml:"paper"`
}

// RiskConfig holds the classifier thresholds shared by every symbol.
type RiskConfig struct {
	MaxPositionRatio float64 `json:"max_position_ratio" yaml:"max_position_ratio"`
	MinPositionRatio float64 `json:"min_position_ratio" yaml:"min_position_ratio"`
	FailurePolicy    string  `json:"failure_policy" yaml:"failure_policy"` // "open" or "reduce_only"
}

// S1Config holds the band and target parameters of the rebalancing engine.
type S1Config struct {
	Lookback        int     `json:"lookback" yaml:"lookback"`
	SellTargetPct   float64 `json:"sell_target_pct" yaml:"sell_target_pct"`
	BuyTargetPct    float64 `json:"buy_target_pct" yaml:"buy_target_pct"`
	RefreshInterval string  `json:"refresh_interval" yaml:"refresh_interval"` // e.g. "23h54m"
	Timeframe       string  `json:"timeframe" yaml:"timeframe"`
}

// OrdersConfig holds exchange minimums used when a symbol has no override.
type OrdersConfig struct {
	MinNotional      float64 `json:"min_notional" yaml:"min_notional"`
	MinAmount        float64 `json:"min_amount" yaml:"min_amount"`
	DefaultPrecision *int    `json:"default_precision,omitempty" yaml:"default_precision,omitempty"` // nil: package default; 0: whole contracts
}

type SymbolConfig struct {
	Leverage   float64 `json:"leverage" yaml:"leverage"`
	MarginMode string  `json:"margin_mode" yaml:"margin_mode"` // "isolated" or "cross"; sets paper margin accounting

	AmountPrecision *int    `json:"amount_precision,omitempty" yaml:"amount_precision,omitempty"` // nil inherits orders.default_precision
	MinAmount       float64 `json:"min_amount,omitempty" yaml:"min_amount,omitempty"`
	MinNotional     float64 `json:"min_notional,omitempty" yaml:"min_notional,omitempty"`
}

type TraderConfig struct {
	TickInterval string  `json:"tick_interval" yaml:"tick_interval"`
	RateLimit    float64 `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty"` // adapter calls per second, 0 = unlimited
	RateBurst    int     `json:"rate_burst,omitempty" yaml:"rate_burst,omitempty"`
}

// JournalConfig selects the trade ledger backend.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "sqlite", "postgres", "csv" or "none"
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	DSN        string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
}

type LogConfig struct {
	Level       string `json:"level" yaml:"level"`
	Development bool   `json:"development" yaml:"development"`
}

type MetricsConfig struct {
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"` // empty disables the endpoint
}

type SentimentConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	URL      string `json:"url,omitempty" yaml:"url,omitempty"`
	Interval string `json:"interval,omitempty" yaml:"interval,omitempty"`
	Static   *int   `json:"static,omitempty" yaml:"static,omitempty"` // fixed index for paper runs instead of the HTTP feed
}

// PaperConfig seeds the in-process paper exchange used by `gridbot run`.
type PaperConfig struct {
	Balance float64            `json:"balance" yaml:"balance"`
	Candles map[string]string  `json:"candles,omitempty" yaml:"candles,omitempty"` // symbol -> daily candle CSV
	Marks   map[string]float64 `json:"marks,omitempty" yaml:"marks,omitempty"`
}

// LoadFromFile loads configuration from a file (JSON or YAML)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (YAML for .yaml/.yml, JSON otherwise)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.QuoteAsset == "" {
		return fmt.Errorf("quote_asset is required")
	}
	if c.Risk.MinPositionRatio < 0 || c.Risk.MaxPositionRatio <= 0 {
		return fmt.Errorf("risk ratios must be positive")
	}
	if c.Risk.MinPositionRatio >= c.Risk.MaxPositionRatio {
		return fmt.Errorf("risk.min_position_ratio must be below risk.max_position_ratio")
	}
	if _, err := risk.ParseFailurePolicy(c.Risk.FailurePolicy); err != nil {
		return fmt.Errorf("risk.failure_policy: %w", err)
	}
	if c.S1.Lookback < 1 {
		return fmt.Errorf("s1.lookback must be at least 1")
	}
	if c.S1.SellTargetPct <= 0 || c.S1.SellTargetPct > 1 {
		return fmt.Errorf("s1.sell_target_pct must be between 0 and 1")
	}
	if c.S1.BuyTargetPct <= 0 || c.S1.BuyTargetPct > 1 {
		return fmt.Errorf("s1.buy_target_pct must be between 0 and 1")
	}
	if d, err := parseDuration(c.S1.RefreshInterval); err != nil || d <= 0 {
		return fmt.Errorf("s1.refresh_interval must be a positive duration")
	}
	if c.S1.Timeframe == "" {
		return fmt.Errorf("s1.timeframe is required")
	}
	if len(c.Symbols) == 0 {
		return fmt.Errorf("at least one symbol is required")
	}
	for name, s := range c.Symbols {
		if s.Leverage < 1 {
			return fmt.Errorf("symbols.%s.leverage must be at least 1", name)
		}
		if s.MarginMode != "" && s.MarginMode != "isolated" && s.MarginMode != "cross" {
			return fmt.Errorf("symbols.%s.margin_mode must be 'isolated' or 'cross'", name)
		}
		if (s.AmountPrecision != nil && *s.AmountPrecision < 0) || s.MinAmount < 0 || s.MinNotional < 0 {
			return fmt.Errorf("symbols.%s order limits must not be negative", name)
		}
	}
	if d, err := parseDuration(c.Trader.TickInterval); err != nil || d <= 0 {
		return fmt.Errorf("trader.tick_interval must be a positive duration")
	}
	if c.Trader.RateLimit < 0 || c.Trader.RateBurst < 0 {
		return fmt.Errorf("trader rate limits must not be negative")
	}
	switch c.Journal.Type {
	case journal.TypeSQLite:
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case journal.TypePostgres:
		if c.Journal.DSN == "" {
			return fmt.Errorf("journal dsn required for Postgres type")
		}
	case journal.TypeCSV:
		if c.Journal.TradesFile == "" {
			return fmt.Errorf("journal trades_file required for CSV type")
		}
	case journal.TypeNone:
	default:
		return fmt.Errorf("journal.type must be 'sqlite', 'postgres', 'csv' or 'none'")
	}
	if c.Sentiment.Enabled {
		if d, err := parseDuration(c.Sentiment.Interval); err != nil || d <= 0 {
			return fmt.Errorf("sentiment.interval must be a positive duration")
		}
		if v := c.Sentiment.Static; v != nil && (*v < 0 || *v > 100) {
			return fmt.Errorf("sentiment.static must be between 0 and 100")
		}
	}
	return nil
}

// Warnings reports settings that are valid but work against each other:
// S1 targets the classifier would itself treat as a breach.
func (c *Config) Warnings() []string {
	var out []string
	if c.S1.BuyTargetPct > c.Risk.MaxPositionRatio {
		out = append(out, fmt.Sprintf("s1.buy_target_pct %.2f is above risk.max_position_ratio %.2f; buys will push the position into sell-only",
			c.S1.BuyTargetPct, c.Risk.MaxPositionRatio))
	}
	if c.S1.SellTargetPct < c.Risk.MinPositionRatio {
		out = append(out, fmt.Sprintf("s1.sell_target_pct %.2f is below risk.min_position_ratio %.2f; sells will push the position into buy-only",
			c.S1.SellTargetPct, c.Risk.MinPositionRatio))
	}
	return out
}

// SymbolNames returns the configured symbols in sorted order.
func (c *Config) SymbolNames() []string {
	out := make([]string, 0, len(c.Symbols))
	for s := range c.Symbols {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Instrument returns the order limits for symbol, with per-symbol overrides
// applied over the orders section.
func (c *Config) Instrument(symbol string) market.Instrument {
	in := market.NewInstrument(symbol)
	in.QuoteAsset = c.QuoteAsset
	if base, _, ok := strings.Cut(symbol, "/"); ok {
		in.BaseAsset = base
	}
	if c.Orders.DefaultPrecision != nil {
		in.AmountPrecision = *c.Orders.DefaultPrecision
	}
	if c.Orders.MinAmount > 0 {
		in.MinAmount = c.Orders.MinAmount
	}
	if c.Orders.MinNotional > 0 {
		in.MinNotional = c.Orders.MinNotional
	}

	s := c.Symbols[symbol]
	if s.AmountPrecision != nil {
		in.AmountPrecision = *s.AmountPrecision
	}
	if s.MinAmount > 0 {
		in.MinAmount = s.MinAmount
	}
	if s.MinNotional > 0 {
		in.MinNotional = s.MinNotional
	}
	return in
}

// Thresholds returns the classifier settings for symbol.
func (c *Config) Thresholds(symbol string) (risk.Thresholds, error) {
	s, ok := c.Symbols[symbol]
	if !ok {
		return risk.Thresholds{}, fmt.Errorf("unknown symbol %q", symbol)
	}
	policy, err := risk.ParseFailurePolicy(c.Risk.FailurePolicy)
	if err != nil {
		return risk.Thresholds{}, err
	}
	return risk.Thresholds{
		MaxPositionRatio: c.Risk.MaxPositionRatio,
		MinPositionRatio: c.Risk.MinPositionRatio,
		Leverage:         s.Leverage,
		QuoteAsset:       c.QuoteAsset,
		FailurePolicy:    policy,
	}, nil
}

// Position returns the S1 engine settings for symbol.
func (c *Config) Position(symbol string) (position.Config, error) {
	s, ok := c.Symbols[symbol]
	if !ok {
		return position.Config{}, fmt.Errorf("unknown symbol %q", symbol)
	}
	refresh, err := parseDuration(c.S1.RefreshInterval)
	if err != nil {
		return position.Config{}, fmt.Errorf("s1.refresh_interval: %w", err)
	}
	return position.Config{
		Symbol:          symbol,
		QuoteAsset:      c.QuoteAsset,
		Timeframe:       c.S1.Timeframe,
		Lookback:        c.S1.Lookback,
		RefreshInterval: refresh,
		SellTargetPct:   c.S1.SellTargetPct,
		BuyTargetPct:    c.S1.BuyTargetPct,
		Leverage:        s.Leverage,
		Instrument:      c.Instrument(symbol),
	}, nil
}

func (c *Config) TickInterval() time.Duration {
	d, _ := parseDuration(c.Trader.TickInterval)
	return d
}

func (c *Config) SentimentInterval() time.Duration {
	if !c.Sentiment.Enabled {
		return 0
	}
	d, _ := parseDuration(c.Sentiment.Interval)
	return d
}

func (c *Config) JournalOptions() journal.Options {
	return journal.Options{
		Type:       c.Journal.Type,
		DBPath:     c.Journal.DBPath,
		DSN:        c.Journal.DSN,
		TradesFile: c.Journal.TradesFile,
	}
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	return time.ParseDuration(s)
}

// Default returns the futures configuration the bot ships with.
func intPtr(v int) *int { return &v }

func Default() *Config {
	return &Config{
		QuoteAsset: "USDT",
		Risk: RiskConfig{
			MaxPositionRatio: 0.8,
			MinPositionRatio: 0.1,
			FailurePolicy:    string(risk.FailOpen),
		},
		S1: S1Config{
			Lookback:        52,
			SellTargetPct:   0.5,
			BuyTargetPct:    0.7,
			RefreshInterval: "23h54m",
			Timeframe:       market.Timeframe1d,
		},
		Orders: OrdersConfig{
			MinNotional:      market.DefaultMinNotional,
			MinAmount:        market.DefaultMinAmount,
			DefaultPrecision: intPtr(market.DefaultAmountPrecision),
		},
		Symbols: map[string]SymbolConfig{
			"BTC/USDT": {Leverage: 10, MarginMode: "isolated"},
			"ETH/USDT": {Leverage: 15, MarginMode: "isolated"},
			"BNB/USDT": {Leverage: 10, MarginMode: "isolated"},
		},
		Trader: TraderConfig{
			TickInterval: "30s",
			RateLimit:    10,
			RateBurst:    5,
		},
		Journal: JournalConfig{
			Type:   journal.TypeSQLite,
			DBPath: "./gridbot.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Sentiment: SentimentConfig{
			Enabled:  false,
			Interval: "1h",
		},
		Paper: PaperConfig{
			Balance: 1000,
		},
	}
}
