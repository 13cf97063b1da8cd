package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/gridbot/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the trade ledger",
	Long: `Query and display S1 adjustments recorded in the trade ledger.

Subcommands:
  trade  - Get details of a specific trade by ID
  today  - List trades recorded today
  day    - List trades recorded on a specific day

Examples:
  gridbot journal trade <trade-id>
  gridbot journal today
  gridbot journal day 2024-01-15 --dsn postgres://...`,
}

var journalTradeCmd = &cobra.Command{
	Use:   "trade <trade-id>",
	Short: "Get details of a specific trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrade,
}

var journalTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "List trades recorded today",
	Args:  cobra.NoArgs,
	RunE:  runJournalToday,
}

var journalDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List trades recorded on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalDay,
}

var (
	journalDBPath string
	journalDSN    string
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalTradeCmd)
	journalCmd.AddCommand(journalTodayCmd)
	journalCmd.AddCommand(journalDayCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "", "path to SQLite ledger (overrides config)")
	journalCmd.PersistentFlags().StringVar(&journalDSN, "dsn", "", "Postgres DSN (overrides config)")
}

func openReader(ctx context.Context) (journal.Reader, func() error, error) {
	var opts journal.Options
	switch {
	case journalDSN != "":
		opts = journal.Options{Type: journal.TypePostgres, DSN: journalDSN}
	case journalDBPath != "":
		opts = journal.Options{Type: journal.TypeSQLite, DBPath: journalDBPath}
	default:
		cfg, err := loadConfig()
		if err != nil {
			return nil, nil, err
		}
		opts = cfg.JournalOptions()
	}

	r, closeFn, err := journal.OpenReader(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("open ledger: %w", err)
	}
	return r, closeFn, nil
}

func runJournalTrade(cmd *cobra.Command, args []string) error {
	r, closeFn, err := openReader(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	rec, err := r.GetTrade(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get trade: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradeOrg(rec))
	return nil
}

func runJournalToday(cmd *cobra.Command, args []string) error {
	return listDay(cmd, time.Now().In(time.Local).Format("2006-01-02"))
}

func runJournalDay(cmd *cobra.Command, args []string) error {
	return listDay(cmd, args[0])
}

func listDay(cmd *cobra.Command, day string) error {
	t, err := time.ParseInLocation("2006-01-02", day, time.Local)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}
	start, end := journal.DayBounds(t, time.Local)

	r, closeFn, err := openReader(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	recs, err := r.ListTradesBetween(cmd.Context(), start, end)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}
	if len(recs) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "no trades on %s\n", day)
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradesOrg(recs))
	return nil
}
