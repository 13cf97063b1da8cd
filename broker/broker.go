// Package broker defines what the trading core needs from an exchange.
// Connectivity lives behind these interfaces; broker/sim provides an
// in-process paper exchange.
package broker

import (
	"context"

	"github.com/rustyeddy/gridbot/market"
)

// Adapter is the execution contract consumed by the risk classifier and the
// S1 engine. Every call may block on the network and may fail; callers treat
// each result as a best-effort observation.
type Adapter interface {
	FetchPositions(ctx context.Context, symbols []string) ([]market.PositionSnapshot, error)
	FetchBalance(ctx context.Context) (market.AccountSnapshot, error)
	// FetchOHLCV returns up to limit candles, oldest first. The newest
	// candle may still be forming.
	FetchOHLCV(ctx context.Context, symbol, timeframe string, limit int) ([]market.Candle, error)
	CreateFuturesOrder(ctx context.Context, symbol string, side market.Side, amount float64, orderType string) (market.Order, error)
}

// PriceSource supplies the current mark price for a symbol.
type PriceSource interface {
	MarkPrice(ctx context.Context, symbol string) (float64, error)
}

// PriceFunc adapts a function to PriceSource.
type PriceFunc func(ctx context.Context, symbol string) (float64, error)

func (f PriceFunc) MarkPrice(ctx context.Context, symbol string) (float64, error) {
	return f(ctx, symbol)
}
