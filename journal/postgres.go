package journal

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

// Postgres stores trades in a shared database so several bot processes can
// write one ledger.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	j, err := NewPostgresDB(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

// NewPostgresDB wraps an open handle and ensures the schema exists.
func NewPostgresDB(ctx context.Context, db *sql.DB) (*Postgres, error) {
	if _, err := db.ExecContext(ctx, PostgresSchema); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

func (j *Postgres) AddTrade(ctx context.Context, rec Record) error {
	rec = normalize(rec)
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO trades
		(`+tradeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.Timestamp, rec.Symbol, rec.Strategy,
		string(rec.Side), rec.Price, rec.Amount, rec.OrderID,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return ErrDuplicate
	}
	return err
}

func (j *Postgres) GetTrade(ctx context.Context, tradeID string) (Record, error) {
	return getTrade(ctx, j.db, `
		SELECT `+tradeColumns+`
		FROM trades
		WHERE trade_id = $1`, tradeID)
}

func (j *Postgres) ListTradesBetween(ctx context.Context, start, end time.Time) ([]Record, error) {
	return listTrades(ctx, j.db, `
		SELECT `+tradeColumns+`
		FROM trades
		WHERE time >= $1 AND time < $2
		ORDER BY time ASC`, start.UTC(), end.UTC())
}

func (j *Postgres) Close() error {
	return j.db.Close()
}
