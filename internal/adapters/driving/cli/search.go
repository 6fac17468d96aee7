package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/metcha-cli/internal/core/domain"
)

var (
	searchLimit     int
	searchSort      string
	searchProviders []string
	searchRefresh   bool
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Run an aggregated search",
	Long: `Fans the query out to every enabled provider concurrently, merges
results sharing a URL, and prints the combined list.

On a terminal, intermediate snapshots show progress as providers finish;
piped or with --json, only the final authoritative snapshot is printed.
Provider failures are reported as warnings and never abort the search.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0,
		"per-provider result count hint (0 lets each provider choose)")
	searchCmd.Flags().StringVarP(&searchSort, "sort", "s", "",
		"result ordering: relevance, recency or source")
	searchCmd.Flags().StringArrayVarP(&searchProviders, "provider", "p", nil,
		"restrict the search to this provider id (repeatable)")
	searchCmd.Flags().BoolVar(&searchRefresh, "refresh", false,
		"bypass cached provider results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false,
		"output the final snapshot as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchService == nil {
		return errors.New("search service not configured")
	}

	opts, err := searchOptions(cmd)
	if err != nil {
		return err
	}

	total := fanOutCount(searchService.EnabledIDs(), opts.Providers)
	if total == 0 {
		return errors.New("no providers enabled")
	}

	ctx := cmd.Context()
	started := time.Now()

	var snapshot domain.SearchSnapshot
	if progressiveOutput() {
		done := 0
		for snap := range searchService.SearchStream(ctx, query, opts) {
			snapshot = snap
			done++
			fmt.Fprintf(cmd.OutOrStdout(), "\r[%d/%d providers] %d results",
				done, total, len(snap.Results))
		}
		fmt.Fprint(cmd.OutOrStdout(), "\r\033[K")
	} else {
		snapshot = searchService.Search(ctx, query, opts)
	}

	recordSearch(cmd, query, opts, total, snapshot, started)

	if searchJSON {
		return outputSnapshotJSON(cmd, snapshot)
	}
	return outputSnapshotTable(cmd, snapshot)
}

// searchOptions resolves flags over the configured defaults.
func searchOptions(cmd *cobra.Command) (domain.SearchOptions, error) {
	sort := defaultSort
	if searchSort != "" {
		parsed, err := domain.ParseSortPolicy(searchSort)
		if err != nil {
			return domain.SearchOptions{}, err
		}
		sort = parsed
	}

	limit := searchLimit
	if !cmd.Flags().Changed("limit") {
		limit = defaultLimit
	}

	return domain.SearchOptions{
		Limit:     limit,
		Sort:      sort,
		Providers: searchProviders,
		Refresh:   searchRefresh,
	}, nil
}

// recordSearch saves the completed search to history, best-effort.
func recordSearch(
	cmd *cobra.Command,
	query string,
	opts domain.SearchOptions,
	providerCount int,
	snapshot domain.SearchSnapshot,
	started time.Time,
) {
	if historyService == nil {
		return
	}
	historyService.Record(cmd.Context(), domain.SearchRecord{
		Query:         query,
		Sort:          opts.Sort,
		Limit:         opts.Limit,
		ProviderCount: providerCount,
		ResultCount:   len(snapshot.Results),
		ErrorCount:    len(snapshot.Errors),
		Duration:      time.Since(started),
		ExecutedAt:    started,
	})
}

// snapshotJSON is the --json output shape. Provider errors flatten to
// strings; error values do not marshal.
type snapshotJSON struct {
	Results []domain.AggregatedResult `json:"results"`
	Errors  []providerErrorJSON       `json:"errors"`
}

type providerErrorJSON struct {
	ProviderID   string `json:"providerId"`
	ProviderName string `json:"providerName"`
	Error        string `json:"error"`
}

func outputSnapshotJSON(cmd *cobra.Command, snapshot domain.SearchSnapshot) error {
	out := snapshotJSON{
		Results: snapshot.Results,
		Errors:  make([]providerErrorJSON, len(snapshot.Errors)),
	}
	if out.Results == nil {
		out.Results = []domain.AggregatedResult{}
	}
	for i, e := range snapshot.Errors {
		out.Errors[i] = providerErrorJSON{
			ProviderID:   e.ProviderID,
			ProviderName: e.ProviderName,
			Error:        e.Err.Error(),
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSnapshotTable(cmd *cobra.Command, snapshot domain.SearchSnapshot) error {
	for _, e := range snapshot.Errors {
		cmd.PrintErrf("Warning: %s failed: %v\n", e.ProviderName, e.Err)
	}

	if len(snapshot.Results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, r := range snapshot.Results {
		title := r.Title
		if title == "" {
			title = r.URL
		}

		cmd.Printf("  [%d] %s (%.2f)\n", i+1, title, r.Score)
		cmd.Printf("      %s\n", r.URL)
		if len(r.ProviderNames) > 0 {
			cmd.Printf("      Sources: %s\n", strings.Join(r.ProviderNames, ", "))
		}
		if r.Description != "" {
			cmd.Printf("      %s\n", r.Description)
		}
		cmd.Println()
	}

	return nil
}

// progressiveOutput reports whether intermediate snapshots should be
// rendered: only on a real terminal, and never for JSON output.
func progressiveOutput() bool {
	return !searchJSON && term.IsTerminal(int(os.Stdout.Fd()))
}

// fanOutCount counts the providers a search with this restriction
// reaches: the enabled set, narrowed to the requested ids when given.
func fanOutCount(enabled, requested []string) int {
	if len(requested) == 0 {
		return len(enabled)
	}
	allowed := make(map[string]bool, len(requested))
	for _, id := range requested {
		allowed[id] = true
	}
	n := 0
	for _, id := range enabled {
		if allowed[id] {
			n++
		}
	}
	return n
}
