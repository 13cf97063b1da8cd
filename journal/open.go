package journal

import (
	"context"
	"fmt"
)

// Ledger backends.
const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
	TypeCSV      = "csv"
	TypeNone     = "none"
)

type Options struct {
	Type       string
	DBPath     string
	DSN        string
	TradesFile string
}

// Open returns the ledger selected by opts.Type.
func Open(ctx context.Context, opts Options) (Ledger, error) {
	switch opts.Type {
	case TypeSQLite:
		if opts.DBPath == "" {
			return nil, fmt.Errorf("journal: sqlite requires db_path")
		}
		return NewSQLite(opts.DBPath)
	case TypePostgres:
		if opts.DSN == "" {
			return nil, fmt.Errorf("journal: postgres requires dsn")
		}
		return NewPostgres(ctx, opts.DSN)
	case TypeCSV:
		if opts.TradesFile == "" {
			return nil, fmt.Errorf("journal: csv requires trades_file")
		}
		return NewCSV(opts.TradesFile)
	case TypeNone, "":
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("journal: unknown type %q", opts.Type)
	}
}

// OpenReader opens a queryable ledger for the CLI.
func OpenReader(ctx context.Context, opts Options) (Reader, func() error, error) {
	switch opts.Type {
	case TypeSQLite, TypePostgres:
		l, err := Open(ctx, opts)
		if err != nil {
			return nil, nil, err
		}
		return l.(Reader), l.Close, nil
	default:
		return nil, nil, fmt.Errorf("journal: %q ledger cannot be queried", opts.Type)
	}
}
