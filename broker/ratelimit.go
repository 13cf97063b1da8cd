package broker

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/rustyeddy/gridbot/market"
)

// RateLimited wraps an Adapter so that all symbols' loops together stay
// under the exchange's request budget. Waiting honours ctx cancellation.
type RateLimited struct {
	next    Adapter
	limiter *rate.Limiter
}

// NewRateLimited allows perSecond calls with the given burst. A perSecond of
// zero or less disables limiting.
func NewRateLimited(next Adapter, perSecond float64, burst int) *RateLimited {
	lim := rate.NewLimiter(rate.Inf, 0)
	if perSecond > 0 {
		if burst < 1 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
	return &RateLimited{next: next, limiter: lim}
}

func (r *RateLimited) wait(ctx context.Context, op string) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: rate limit wait: %w", op, err)
	}
	return nil
}

func (r *RateLimited) FetchPositions(ctx context.Context, symbols []string) ([]market.PositionSnapshot, error) {
	if err := r.wait(ctx, "fetch positions"); err != nil {
		return nil, err
	}
	return r.next.FetchPositions(ctx, symbols)
}

func (r *RateLimited) FetchBalance(ctx context.Context) (market.AccountSnapshot, error) {
	if err := r.wait(ctx, "fetch balance"); err != nil {
		return market.AccountSnapshot{}, err
	}
	return r.next.FetchBalance(ctx)
}

func (r *RateLimited) FetchOHLCV(ctx context.Context, symbol, timeframe string, limit int) ([]market.Candle, error) {
	if err := r.wait(ctx, "fetch ohlcv"); err != nil {
		return nil, err
	}
	return r.next.FetchOHLCV(ctx, symbol, timeframe, limit)
}

func (r *RateLimited) CreateFuturesOrder(ctx context.Context, symbol string, side market.Side, amount float64, orderType string) (market.Order, error) {
	if err := r.wait(ctx, "create order"); err != nil {
		return market.Order{}, err
	}
	return r.next.CreateFuturesOrder(ctx, symbol, side, amount, orderType)
}

var _ Adapter = (*RateLimited)(nil)
