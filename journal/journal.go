// Package journal is the trade ledger. The S1 engine appends one Record per
// executed adjustment; the CLI reads them back.
package journal

import (
	"context"
	"errors"
	"time"

	"github.com/rustyeddy/gridbot/market"
	"github.com/rustyeddy/gridbot/pkg/id"
)

var (
	ErrNotFound  = errors.New("trade not found")
	ErrDuplicate = errors.New("duplicate trade id")
)

// Record is one executed adjustment.
type Record struct {
	ID        string
	Timestamp time.Time
	Symbol    string
	Strategy  string
	Side      market.Side
	Price     float64 // average fill, or the mark when the exchange omits it
	Amount    float64 // filled contracts, or the requested amount
	OrderID   string
}

// Ledger appends trade records.
type Ledger interface {
	AddTrade(ctx context.Context, rec Record) error
	Close() error
}

// Reader is implemented by ledgers that can be queried.
type Reader interface {
	GetTrade(ctx context.Context, tradeID string) (Record, error)
	ListTradesBetween(ctx context.Context, start, end time.Time) ([]Record, error)
}

// Nop discards every record.
type Nop struct{}

func (Nop) AddTrade(context.Context, Record) error { return nil }
func (Nop) Close() error                           { return nil }

// normalize fills the ID and timestamp and stores time in UTC.
func normalize(rec Record) Record {
	if rec.ID == "" {
		rec.ID = id.New()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	rec.Timestamp = rec.Timestamp.UTC()
	return rec
}
