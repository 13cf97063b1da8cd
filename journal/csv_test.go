package journal

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/gridbot/market"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVAddTrade(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trades.csv")
	j, err := NewCSV(path)
	require.NoError(t, err)

	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, j.AddTrade(context.Background(), Record{
		ID:        "T1",
		Timestamp: ts,
		Symbol:    "BNB/USDT",
		Strategy:  "S1",
		Side:      market.SideBuy,
		Price:     612.25,
		Amount:    0.5,
		OrderID:   "o1",
	}))
	require.NoError(t, j.Close())

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{"T1", "2024-01-02T03:04:05Z", "BNB/USDT", "S1", "buy", "612.25", "0.5", "o1"}, rows[1])
}

func TestCSVAppendsWithoutSecondHeader(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trades.csv")
	for i := 0; i < 2; i++ {
		j, err := NewCSV(path)
		require.NoError(t, err)
		require.NoError(t, j.AddTrade(context.Background(), Record{Symbol: "BTC/USDT", Strategy: "S1"}))
		require.NoError(t, j.Close())
	}

	rows := readCSV(t, path)
	assert.Len(t, rows, 3)
}
