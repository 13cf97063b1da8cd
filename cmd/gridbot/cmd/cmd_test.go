package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/gridbot/config"
	"github.com/rustyeddy/gridbot/sentiment"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "gridbot version "+version)
}

func TestBandCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "btc_1d.csv")
	data := "time,open,high,low,close,volume\n" +
		"2024-01-01,8,10,5,9,1\n" +
		"2024-01-02,9,11,4,10,1\n" +
		"2024-01-03,10,12,3,11,1\n" +
		"2024-01-04,11,13,2,12,1\n" +
		"2024-01-05,12,100,1,50,1\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	out, err := execute(t, "band", "--candles", path, "--lookback", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-01-02 .. 2024-01-04")
	assert.Contains(t, out, "High: 13.0000")
	assert.Contains(t, out, "Low:  2.0000")
	assert.Contains(t, out, "Last close: 50.0000")
}

func TestBandCommandTooFewCandles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.csv")
	require.NoError(t, os.WriteFile(path, []byte("2024-01-01,1,2,0.5,1,1\n"), 0o644))

	_, err := execute(t, "band", "--candles", path, "--lookback", "52")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compute band")
}

func TestConfigInitThenValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gridbot.yaml")

	out, err := execute(t, "config", "init", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Created default configuration")
	require.FileExists(t, path)

	out, err = execute(t, "config", "validate", "-f", path, "--env-file", filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration valid")
	assert.Contains(t, out, "BTC/USDT")

	cfgPath = ""
}

func TestNewPaperEngineMarks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eth_1d.csv")
	require.NoError(t, os.WriteFile(path, []byte("2024-01-01,1,2,0.5,1.5,1\n2024-01-02,1.5,3,1,2.5,1\n"), 0o644))

	cfg := config.Default()
	cfg.Paper.Candles = map[string]string{"ETH/USDT": path}
	cfg.Paper.Marks = map[string]float64{"BTC/USDT": 42000}

	engine, err := newPaperEngine(cfg)
	require.NoError(t, err)

	px, err := engine.MarkPrice(context.Background(), "ETH/USDT")
	require.NoError(t, err)
	assert.Equal(t, 2.5, px)

	px, err = engine.MarkPrice(context.Background(), "BTC/USDT")
	require.NoError(t, err)
	assert.Equal(t, 42000.0, px)

	_, err = engine.MarkPrice(context.Background(), "BNB/USDT")
	assert.Error(t, err)
}

func TestSentimentSource(t *testing.T) {
	cfg := config.Default()
	assert.Nil(t, sentimentSource(cfg))

	cfg.Sentiment.Enabled = true
	_, ok := sentimentSource(cfg).(*sentiment.FearGreedClient)
	assert.True(t, ok)

	fear := 15
	cfg.Sentiment.Static = &fear
	src := sentimentSource(cfg)
	require.IsType(t, sentiment.Static(0), src)
	v, err := src.FearGreed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 15, v)
}
