// Package sim is an in-process paper futures exchange. It keeps one-way,
// linear (quote-margined) positions and fills market orders at the current
// mark price, which is enough to drive the trading loops without network
// connectivity.
package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/gridbot/broker"
	"github.com/rustyeddy/gridbot/market"
	"github.com/rustyeddy/gridbot/pkg/id"
)

var (
	ErrUnknownSymbol      = errors.New("unknown symbol")
	ErrNoPrice            = errors.New("no mark price")
	ErrInsufficientMargin = errors.New("insufficient margin")
	ErrUnsupportedOrder   = errors.New("unsupported order type")
	ErrInvalidAmount      = errors.New("invalid order amount")
)

// Config seeds a paper account.
type Config struct {
	QuoteAsset string
	Balance    float64
	Leverage   map[string]float64 // per symbol; missing symbols use 1x
	MarginMode map[string]string  // per symbol, MarginIsolated or MarginCross; missing symbols use cross
}

const (
	MarginCross    = "cross"
	MarginIsolated = "isolated"
)

type position struct {
	contracts float64 // signed: >0 long, <0 short
	entry     float64
}

// Engine implements broker.Adapter and broker.PriceSource.
type Engine struct {
	mu       sync.Mutex
	quote    string
	wallet   float64
	leverage map[string]float64
	isolated map[string]bool
	pos      map[string]*position
	marks    map[string]float64
	candles  map[string][]market.Candle
	ids      *id.Generator
	now      func() time.Time
}

func NewEngine(cfg Config) *Engine {
	quote := cfg.QuoteAsset
	if quote == "" {
		quote = "USDT"
	}
	lev := make(map[string]float64, len(cfg.Leverage))
	for k, v := range cfg.Leverage {
		lev[k] = v
	}
	iso := make(map[string]bool)
	for k, v := range cfg.MarginMode {
		if v == MarginIsolated {
			iso[k] = true
		}
	}
	return &Engine{
		quote:    quote,
		wallet:   cfg.Balance,
		leverage: lev,
		isolated: iso,
		pos:      make(map[string]*position),
		marks:    make(map[string]float64),
		candles:  make(map[string][]market.Candle),
		ids:      id.NewGenerator(0, nil),
		now:      time.Now,
	}
}

// SetMark updates the mark price used for fills and valuation.
func (e *Engine) SetMark(symbol string, price float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.marks[symbol] = price
}

// SetCandles replaces the OHLCV history for symbol. When no mark has been
// set yet, the last close becomes the mark.
func (e *Engine) SetCandles(symbol string, cs []market.Candle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.candles[symbol] = append([]market.Candle(nil), cs...)
	if _, ok := e.marks[symbol]; !ok && len(cs) > 0 {
		e.marks[symbol] = cs[len(cs)-1].Close
	}
}

// SetPosition opens or replaces a position directly, e.g. to resume from a
// known exchange state. Negative contracts mean short.
func (e *Engine) SetPosition(symbol string, contracts, entry float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if contracts == 0 {
		delete(e.pos, symbol)
		return
	}
	e.pos[symbol] = &position{contracts: contracts, entry: entry}
}

func (e *Engine) MarkPrice(ctx context.Context, symbol string) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.marks[symbol]
	if !ok {
		return 0, fmt.Errorf("mark price %s: %w", symbol, ErrNoPrice)
	}
	return p, nil
}

func (e *Engine) FetchBalance(ctx context.Context) (market.AccountSnapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	used, upnl, _ := e.marginLocked()
	free := e.wallet - used
	return market.AccountSnapshot{
		Free:  map[string]float64{e.quote: free},
		Used:  map[string]float64{e.quote: used},
		Total: map[string]float64{e.quote: e.wallet + upnl},
	}, nil
}

func (e *Engine) FetchPositions(ctx context.Context, symbols []string) ([]market.PositionSnapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []market.PositionSnapshot
	for _, s := range symbols {
		p, ok := e.pos[s]
		if !ok || p.contracts == 0 {
			continue
		}
		mark := e.marks[s]
		side := market.PositionLong
		if p.contracts < 0 {
			side = market.PositionShort
		}
		upnl := p.contracts * (mark - p.entry)
		margin := math.Abs(p.contracts) * mark / e.leverageOf(s)
		pct := 0.0
		if margin > 0 {
			pct = upnl / margin * 100
		}
		out = append(out, market.PositionSnapshot{
			Symbol:        s,
			Side:          side,
			Contracts:     math.Abs(p.contracts),
			Notional:      math.Abs(p.contracts) * mark,
			EntryPrice:    p.entry,
			UnrealizedPnL: upnl,
			Percentage:    pct,
		})
	}
	return out, nil
}

func (e *Engine) FetchOHLCV(ctx context.Context, symbol, timeframe string, limit int) ([]market.Candle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cs, ok := e.candles[symbol]
	if !ok {
		return nil, fmt.Errorf("ohlcv %s %s: %w", symbol, timeframe, ErrUnknownSymbol)
	}
	if limit > 0 && len(cs) > limit {
		cs = cs[len(cs)-limit:]
	}
	return append([]market.Candle(nil), cs...), nil
}

func (e *Engine) CreateFuturesOrder(ctx context.Context, symbol string, side market.Side, amount float64, orderType string) (market.Order, error) {
	if orderType != market.OrderTypeMarket {
		return market.Order{}, fmt.Errorf("%q: %w", orderType, ErrUnsupportedOrder)
	}
	if amount <= 0 || math.IsNaN(amount) {
		return market.Order{}, fmt.Errorf("%v: %w", amount, ErrInvalidAmount)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	mark, ok := e.marks[symbol]
	if !ok || mark <= 0 {
		return market.Order{}, fmt.Errorf("order %s: %w", symbol, ErrNoPrice)
	}

	delta := amount
	if side == market.SideSell {
		delta = -amount
	}

	p := e.pos[symbol]
	if p == nil {
		p = &position{}
	}
	before, walletBefore := *p, e.wallet
	e.applyFillLocked(p, delta, mark)
	e.pos[symbol] = p

	// Only exposure-increasing orders can be refused for margin.
	if math.Abs(p.contracts) > math.Abs(before.contracts) {
		used, _, usable := e.marginLocked()
		if used > e.wallet+usable {
			*p = before
			e.wallet = walletBefore
			if p.contracts == 0 {
				delete(e.pos, symbol)
			}
			return market.Order{}, fmt.Errorf("order %s %s %.8f: %w", symbol, side, amount, ErrInsufficientMargin)
		}
	}
	if p.contracts == 0 {
		delete(e.pos, symbol)
	}

	return market.Order{
		ID:           e.ids.New(),
		Symbol:       symbol,
		Side:         side,
		Type:         orderType,
		Amount:       amount,
		AveragePrice: mark,
		Filled:       amount,
		Status:       "closed",
		Timestamp:    e.now().UTC(),
	}, nil
}

// applyFillLocked nets delta contracts into p at price, realizing PnL on
// any reduced or flipped portion. Contract counts are summed in decimal so
// closing in steps lands exactly on flat.
func (e *Engine) applyFillLocked(p *position, delta, price float64) {
	cur := decimal.NewFromFloat(p.contracts)
	d := decimal.NewFromFloat(delta)
	total, _ := cur.Add(d).Float64()

	switch {
	case cur.IsZero() || sameSign(p.contracts, delta):
		p.entry = (p.contracts*p.entry + delta*price) / total
	case d.Abs().LessThanOrEqual(cur.Abs()):
		e.wallet += -delta * (price - p.entry)
		if total == 0 {
			p.entry = 0
		}
	default:
		e.wallet += p.contracts * (price - p.entry)
		p.entry = price
	}
	p.contracts = total
}

// marginLocked returns the initial margin in use, the unrealized PnL across
// all positions, and the part of that PnL that backs new orders. Isolated
// positions contribute their losses but not their profits.
func (e *Engine) marginLocked() (used, upnl, usable float64) {
	for s, p := range e.pos {
		mark := e.marks[s]
		pnl := p.contracts * (mark - p.entry)
		used += math.Abs(p.contracts) * mark / e.leverageOf(s)
		upnl += pnl
		if e.isolated[s] {
			usable += math.Min(pnl, 0)
		} else {
			usable += pnl
		}
	}
	return used, upnl, usable
}

func (e *Engine) leverageOf(symbol string) float64 {
	if l := e.leverage[symbol]; l >= 1 {
		return l
	}
	return 1
}

func sameSign(a, b float64) bool {
	return (a > 0) == (b > 0)
}

var (
	_ broker.Adapter     = (*Engine)(nil)
	_ broker.PriceSource = (*Engine)(nil)
)
