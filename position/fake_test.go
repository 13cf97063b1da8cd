package position

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rustyeddy/gridbot/journal"
	"github.com/rustyeddy/gridbot/market"
)

const sym = "BTC/USDT"

type orderCall struct {
	side   market.Side
	amount float64
	typ    string
}

// fakeExchange is a scripted Adapter and PriceSource.
type fakeExchange struct {
	price     float64
	candles   []market.Candle
	positions []market.PositionSnapshot
	total     float64
	fill      market.Order

	priceErr, posErr, balErr, ohlcvErr, orderErr error
	panicOn                                      string

	ohlcvLimit int
	ohlcvCalls int
	orders     []orderCall
}

func (f *fakeExchange) MarkPrice(context.Context, string) (float64, error) {
	if f.panicOn == "price" {
		panic("price feed exploded")
	}
	return f.price, f.priceErr
}

func (f *fakeExchange) FetchPositions(context.Context, []string) ([]market.PositionSnapshot, error) {
	return f.positions, f.posErr
}

func (f *fakeExchange) FetchBalance(context.Context) (market.AccountSnapshot, error) {
	return market.AccountSnapshot{
		Free:  map[string]float64{"USDT": f.total},
		Total: map[string]float64{"USDT": f.total},
	}, f.balErr
}

func (f *fakeExchange) FetchOHLCV(_ context.Context, _, _ string, limit int) ([]market.Candle, error) {
	f.ohlcvCalls++
	f.ohlcvLimit = limit
	if f.panicOn == "ohlcv" {
		panic("bad payload")
	}
	return f.candles, f.ohlcvErr
}

func (f *fakeExchange) CreateFuturesOrder(_ context.Context, _ string, side market.Side, amount float64, typ string) (market.Order, error) {
	if f.orderErr != nil {
		return market.Order{}, f.orderErr
	}
	f.orders = append(f.orders, orderCall{side: side, amount: amount, typ: typ})
	o := f.fill
	if o.ID == "" {
		o.ID = fmt.Sprintf("ord-%d", len(f.orders))
	}
	return o, nil
}

func (f *fakeExchange) long(contracts float64) {
	f.positions = []market.PositionSnapshot{{Symbol: sym, Side: market.PositionLong, Contracts: contracts}}
}

func (f *fakeExchange) short(contracts float64) {
	f.positions = []market.PositionSnapshot{{Symbol: sym, Side: market.PositionShort, Contracts: contracts}}
}

type memLedger struct {
	mu   sync.Mutex
	recs []journal.Record
	err  error
}

func (l *memLedger) AddTrade(_ context.Context, r journal.Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.recs = append(l.recs, r)
	return nil
}

func (l *memLedger) Close() error { return nil }

var errBoom = errors.New("boom")

// dailyCandles returns n candles, one per day, where candle i has
// High = 100+i and Low = 50-i/2.
func dailyCandles(n int) []market.Candle {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]market.Candle, n)
	for i := range out {
		out[i] = market.Candle{
			Time:  start.AddDate(0, 0, i),
			Open:  75,
			High:  100 + float64(i),
			Low:   50 - 0.5*float64(i),
			Close: 75,
		}
	}
	return out
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }
