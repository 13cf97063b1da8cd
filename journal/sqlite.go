package journal

import (
	"context"
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// one writer; trading loops share the handle
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) AddTrade(ctx context.Context, rec Record) error {
	rec = normalize(rec)
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO trades
		(`+tradeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Timestamp, rec.Symbol, rec.Strategy,
		string(rec.Side), rec.Price, rec.Amount, rec.OrderID,
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrDuplicate
	}
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
