package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/gridbot/market"
)

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (Record, error) {
	var (
		rec  Record
		side string
	)
	err := s.Scan(
		&rec.ID,
		&rec.Timestamp,
		&rec.Symbol,
		&rec.Strategy,
		&side,
		&rec.Price,
		&rec.Amount,
		&rec.OrderID,
	)
	rec.Side = market.Side(side)
	rec.Timestamp = rec.Timestamp.UTC()
	return rec, err
}

func getTrade(ctx context.Context, db *sql.DB, query, tradeID string) (Record, error) {
	rec, err := scanRecord(db.QueryRowContext(ctx, query, tradeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, fmt.Errorf("%w: %q", ErrNotFound, tradeID)
		}
		return Record{}, err
	}
	return rec, nil
}

func listTrades(ctx context.Context, db *sql.DB, query string, args ...any) ([]Record, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTrade returns a single trade record by ID.
func (j *SQLite) GetTrade(ctx context.Context, tradeID string) (Record, error) {
	return getTrade(ctx, j.db, `
		SELECT `+tradeColumns+`
		FROM trades
		WHERE trade_id = ?`, tradeID)
}

// ListTradesBetween returns trades whose time is within [start, end).
func (j *SQLite) ListTradesBetween(ctx context.Context, start, end time.Time) ([]Record, error) {
	return listTrades(ctx, j.db, `
		SELECT `+tradeColumns+`
		FROM trades
		WHERE time >= ? AND time < ?
		ORDER BY time ASC`, start.UTC(), end.UTC())
}

// DayBounds returns [00:00, next 00:00) of day in loc.
func DayBounds(day time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	d := day.In(loc)
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}
