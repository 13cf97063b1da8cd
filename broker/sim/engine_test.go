package sim

import (
	"context"
	"testing"
	"time"

	"github.com/rustyeddy/gridbot/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sym = "BTC/USDT"

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine(Config{
		QuoteAsset: "USDT",
		Balance:    1000,
		Leverage:   map[string]float64{sym: 10},
	})
	e.SetMark(sym, 50000)
	return e
}

func TestOpenLongAndBalance(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newTestEngine(t)

	o, err := e.CreateFuturesOrder(ctx, sym, market.SideBuy, 0.1, market.OrderTypeMarket)
	require.NoError(t, err)
	assert.NotEmpty(t, o.ID)
	assert.Equal(t, 50000.0, o.AveragePrice)
	assert.Equal(t, 0.1, o.Filled)

	ps, err := e.FetchPositions(ctx, []string{sym})
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, market.PositionLong, ps[0].Side)
	assert.InDelta(t, 0.1, ps[0].Contracts, 1e-12)
	assert.InDelta(t, 5000, ps[0].Notional, 1e-9)

	// margin = 5000 / 10
	bal, err := e.FetchBalance(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 500, bal.UsedOf("USDT"), 1e-9)
	assert.InDelta(t, 500, bal.FreeOf("USDT"), 1e-9)
	assert.InDelta(t, 1000, bal.TotalOf("USDT"), 1e-9)

	// price up 10% -> +500 unrealized
	e.SetMark(sym, 55000)
	bal, err = e.FetchBalance(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 1500, bal.TotalOf("USDT"), 1e-9)
	assert.InDelta(t, bal.TotalOf("USDT"), bal.FreeOf("USDT")+bal.UsedOf("USDT")+500, 1e-9)
}

func TestReduceRealizesPnL(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newTestEngine(t)

	_, err := e.CreateFuturesOrder(ctx, sym, market.SideBuy, 0.1, market.OrderTypeMarket)
	require.NoError(t, err)

	e.SetMark(sym, 51000)
	_, err = e.CreateFuturesOrder(ctx, sym, market.SideSell, 0.05, market.OrderTypeMarket)
	require.NoError(t, err)

	ps, err := e.FetchPositions(ctx, []string{sym})
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.InDelta(t, 0.05, ps[0].Contracts, 1e-12)
	assert.InDelta(t, 50000, ps[0].EntryPrice, 1e-9)

	// realized 0.05 * 1000 = 50, unrealized another 50
	bal, err := e.FetchBalance(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 1100, bal.TotalOf("USDT"), 1e-9)

	_, err = e.CreateFuturesOrder(ctx, sym, market.SideSell, 0.05, market.OrderTypeMarket)
	require.NoError(t, err)
	ps, err = e.FetchPositions(ctx, []string{sym})
	require.NoError(t, err)
	assert.Empty(t, ps)
}

func TestInsufficientMarginLeavesStateUntouched(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newTestEngine(t)

	// 0.3 BTC @ 50000 / 10x = 1500 margin > 1000 equity
	_, err := e.CreateFuturesOrder(ctx, sym, market.SideBuy, 0.3, market.OrderTypeMarket)
	require.ErrorIs(t, err, ErrInsufficientMargin)

	ps, err := e.FetchPositions(ctx, []string{sym})
	require.NoError(t, err)
	assert.Empty(t, ps)

	bal, err := e.FetchBalance(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 1000, bal.TotalOf("USDT"), 1e-9)
}

func TestOrderValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newTestEngine(t)

	_, err := e.CreateFuturesOrder(ctx, sym, market.SideBuy, 0.1, market.OrderTypeLimit)
	assert.ErrorIs(t, err, ErrUnsupportedOrder)

	_, err = e.CreateFuturesOrder(ctx, sym, market.SideBuy, 0, market.OrderTypeMarket)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = e.CreateFuturesOrder(ctx, "ETH/USDT", market.SideBuy, 1, market.OrderTypeMarket)
	assert.ErrorIs(t, err, ErrNoPrice)
}

func TestFetchOHLCVLimit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := NewEngine(Config{Balance: 1000})

	_, err := e.FetchOHLCV(ctx, sym, market.Timeframe1d, 10)
	assert.ErrorIs(t, err, ErrUnknownSymbol)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cs := make([]market.Candle, 60)
	for i := range cs {
		cs[i] = market.Candle{Time: start.AddDate(0, 0, i), Close: float64(100 + i)}
	}
	e.SetCandles(sym, cs)

	got, err := e.FetchOHLCV(ctx, sym, market.Timeframe1d, 54)
	require.NoError(t, err)
	require.Len(t, got, 54)
	assert.Equal(t, 106.0, got[0].Close)
	assert.Equal(t, 159.0, got[53].Close)

	// the last close seeds the mark
	p, err := e.MarkPrice(ctx, sym)
	require.NoError(t, err)
	assert.Equal(t, 159.0, p)
}

func TestFlipPosition(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newTestEngine(t)

	e.SetPosition(sym, 0.02, 50000)
	_, err := e.CreateFuturesOrder(ctx, sym, market.SideSell, 0.05, market.OrderTypeMarket)
	require.NoError(t, err)

	ps, err := e.FetchPositions(ctx, []string{sym})
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, market.PositionShort, ps[0].Side)
	assert.InDelta(t, 0.03, ps[0].Contracts, 1e-12)
	assert.InDelta(t, 50000, ps[0].EntryPrice, 1e-9)
}

func TestCloseInStepsEndsFlat(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newTestEngine(t)

	e.SetMark(sym, 1000)
	_, err := e.CreateFuturesOrder(ctx, sym, market.SideBuy, 0.3, market.OrderTypeMarket)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = e.CreateFuturesOrder(ctx, sym, market.SideSell, 0.1, market.OrderTypeMarket)
		require.NoError(t, err)
	}

	ps, err := e.FetchPositions(ctx, []string{sym})
	require.NoError(t, err)
	assert.Empty(t, ps, "no residual short after closing 0.3 in three 0.1 steps")

	bal, err := e.FetchBalance(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 0, bal.UsedOf("USDT"), 1e-12)
	assert.InDelta(t, 1000, bal.TotalOf("USDT"), 1e-9)
}

func TestIsolatedMarginIgnoresOpenProfit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name    string
		mode    string
		wantErr bool
	}{
		{"cross counts open profit", MarginCross, false},
		{"isolated does not", MarginIsolated, true},
		{"unset behaves as cross", "", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := NewEngine(Config{
				QuoteAsset: "USDT",
				Balance:    100,
				Leverage:   map[string]float64{sym: 2},
				MarginMode: map[string]string{sym: tt.mode},
			})
			e.SetMark(sym, 100)
			_, err := e.CreateFuturesOrder(ctx, sym, market.SideBuy, 1, market.OrderTypeMarket)
			require.NoError(t, err)

			// +100 unrealized; adding 0.4 needs 1.4*200/2 = 140 margin
			e.SetMark(sym, 200)
			_, err = e.CreateFuturesOrder(ctx, sym, market.SideBuy, 0.4, market.OrderTypeMarket)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInsufficientMargin)
				return
			}
			require.NoError(t, err)
		})
	}
}
