package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment overrides.
const (
	EnvJournalDSN  = "GRIDBOT_JOURNAL_DSN"
	EnvLogLevel    = "GRIDBOT_LOG_LEVEL"
	EnvMetricsAddr = "GRIDBOT_METRICS_ADDR"
)

// LoadDotEnv reads .env style files into the process environment. Missing
// files are ignored; variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// ApplyEnv copies set GRIDBOT_* variables over the file configuration.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup(EnvJournalDSN); ok && v != "" {
		c.Journal.DSN = v
		if c.Journal.Type == "" || c.Journal.Type == "none" {
			c.Journal.Type = "postgres"
		}
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvMetricsAddr); ok {
		c.Metrics.Addr = v
	}
}
