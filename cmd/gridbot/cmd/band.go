package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/gridbot/market"
	"github.com/rustyeddy/gridbot/position"
)

var bandCmd = &cobra.Command{
	Use:   "band",
	Short: "Print the S1 band for a daily candle file",
	Long: `Compute the S1 band (highest high and lowest low over the most recent
completed candles) from a CSV of daily candles. The last row is treated as
the still-forming candle and excluded.

CSV columns: time,open,high,low,close[,volume]

Example:
  gridbot band --candles data/btcusdt_1d.csv --lookback 52`,
	RunE: runBand,
}

var (
	bandCandlesPath string
	bandLookback    int
)

func init() {
	rootCmd.AddCommand(bandCmd)

	bandCmd.Flags().StringVarP(&bandCandlesPath, "candles", "c", "", "path to daily candle CSV (required)")
	bandCmd.Flags().IntVarP(&bandLookback, "lookback", "l", 52, "completed candles in the band")
	bandCmd.MarkFlagRequired("candles")
}

func runBand(cmd *cobra.Command, args []string) error {
	candles, err := market.LoadCandlesCSV(bandCandlesPath)
	if err != nil {
		return fmt.Errorf("load candles: %w", err)
	}

	band, err := position.ComputeBand(candles, bandLookback)
	if err != nil {
		return fmt.Errorf("compute band: %w", err)
	}

	window := candles[len(candles)-bandLookback-1 : len(candles)-1]
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "S1 band over %d candles (%s .. %s)\n", bandLookback,
		window[0].Time.Format("2006-01-02"), window[len(window)-1].Time.Format("2006-01-02"))
	fmt.Fprintf(out, "  High: %.4f\n", band.High)
	fmt.Fprintf(out, "  Low:  %.4f\n", band.Low)
	fmt.Fprintf(out, "  Last close: %.4f\n", candles[len(candles)-1].Close)
	return nil
}
