package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/gridbot/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate configuration files",
	Long: `Manage gridbot configuration files.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  gridbot config init -o gridbot.yaml
  gridbot config validate -f gridbot.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	RunE:  runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Check that a configuration file loads, validates and has no
conflicting S1 targets and risk thresholds.

Example:
  gridbot config validate -f gridbot.yaml`,
	RunE: runConfigValidate,
}

var configInitOutput string

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "gridbot.yaml", "output config file path")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if err := cfg.SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Created default configuration: %s\n", configInitOutput)
	fmt.Fprintln(out, "\nEdit the file and run with:")
	fmt.Fprintf(out, "  gridbot run -f %s\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	if cfgPath == "" {
		return fmt.Errorf("--config is required")
	}
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Configuration valid: %s\n", cfgPath)
	fmt.Fprintf(out, "  Risk: max %.0f%% / min %.0f%% (on failure: %s)\n",
		cfg.Risk.MaxPositionRatio*100, cfg.Risk.MinPositionRatio*100, cfg.Risk.FailurePolicy)
	fmt.Fprintf(out, "  S1: lookback %d, sell target %.0f%%, buy target %.0f%%\n",
		cfg.S1.Lookback, cfg.S1.SellTargetPct*100, cfg.S1.BuyTargetPct*100)
	for _, s := range cfg.SymbolNames() {
		sc := cfg.Symbols[s]
		fmt.Fprintf(out, "  %s: %.0fx %s\n", s, sc.Leverage, sc.MarginMode)
	}
	fmt.Fprintf(out, "  Journal: %s\n", cfg.Journal.Type)

	if w := cfg.Warnings(); len(w) > 0 {
		fmt.Fprintf(out, "\nWarnings:\n  - %s\n", strings.Join(w, "\n  - "))
	}
	return nil
}
