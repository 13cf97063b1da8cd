package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/gridbot/config"
)

var rootCmd = &cobra.Command{
	Use:   "gridbot",
	Short: "Leveraged futures grid bot: risk gating and S1 band rebalancing",
	Long: `Gridbot runs one trading loop per futures symbol. Each loop classifies
account exposure into a risk state and lets the S1 engine trim or add to the
position when price leaves its 52-day band.

It provides tools for:
  - Running the loops against the built-in paper exchange
  - Inspecting the S1 band for a candle file
  - Generating and validating configuration
  - Querying the trade ledger`,
	SilenceUsage: true,
}

var (
	cfgPath string
	envFile string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "f", "", "path to config file (YAML or JSON); defaults are used when empty")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with GRIDBOT_* overrides")
}

// loadConfig reads the config file (or defaults), then applies environment
// overrides and validates the result.
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := config.Default()
	if cfgPath != "" {
		var err error
		if cfg, err = config.LoadFromFile(cfgPath); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	cfg.ApplyEnv(nil)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
