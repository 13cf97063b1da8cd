package journal

import (
	"context"
	"encoding/csv"
	"os"
	"strconv"
	"sync"
	"time"
)

var csvHeader = []string{"trade_id", "time", "symbol", "strategy", "side", "price", "amount", "order_id"}

// CSV appends trades to a file, writing the header when the file is new.
type CSV struct {
	mu sync.Mutex
	w  *csv.Writer
	f  *os.File
}

func NewCSV(path string) (*CSV, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	w := csv.NewWriter(f)
	if st.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			_ = f.Close()
			return nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return &CSV{w: w, f: f}, nil
}

func (j *CSV) AddTrade(_ context.Context, rec Record) error {
	rec = normalize(rec)

	j.mu.Lock()
	defer j.mu.Unlock()

	err := j.w.Write([]string{
		rec.ID,
		rec.Timestamp.Format(time.RFC3339Nano),
		rec.Symbol,
		rec.Strategy,
		string(rec.Side),
		f(rec.Price),
		f(rec.Amount),
		rec.OrderID,
	})
	if err != nil {
		return err
	}
	j.w.Flush()
	return j.w.Error()
}

func (j *CSV) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.w.Flush()
	if err := j.w.Error(); err != nil {
		_ = j.f.Close()
		return err
	}
	return j.f.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
