package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// fmtDuration is the rounding applied to displayed durations.
const fmtDuration = time.Millisecond

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past searches",
	RunE:  runHistoryList,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List past searches, newest first",
	RunE:  runHistoryList,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all search history",
	RunE:  runHistoryClear,
}

func init() {
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20,
		"maximum number of records (0 = all)")
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	records, err := historyService.List(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if len(records) == 0 {
		cmd.Println("No search history.")
		return nil
	}

	cmd.Println("History:")
	cmd.Println()
	for _, rec := range records {
		cmd.Printf("  %s  %q\n", rec.ExecutedAt.Format("2006-01-02 15:04:05"), rec.Query)
		cmd.Printf("      %d providers, %d results, %d errors, %s (sort=%s)\n",
			rec.ProviderCount, rec.ResultCount, rec.ErrorCount,
			rec.Duration.Round(fmtDuration), rec.Sort)
	}
	return nil
}

func runHistoryClear(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	removed, err := historyService.Clear(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	cmd.Printf("Removed %d history records.\n", removed)
	return nil
}
