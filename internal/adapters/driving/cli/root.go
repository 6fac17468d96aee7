// Package cli provides the cobra command-line interface for Metcha.
// Commands drive the core through the driving ports; construction and
// wiring happen in cmd/metcha and arrive through SetServices.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/metcha-cli/internal/core/domain"
	"github.com/custodia-labs/metcha-cli/internal/core/ports/driven"
	"github.com/custodia-labs/metcha-cli/internal/core/ports/driving"
	"github.com/custodia-labs/metcha-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Injected services. Set once by SetServices before Execute; tests swap
// individual vars with mocks.
var (
	searchService    driving.SearchService
	providerRegistry driving.ProviderRegistry
	cacheService     driving.CacheService
	historyService   driving.HistoryService
	configStore      driven.ConfigStore
)

// Startup defaults resolved from configuration, applied when the
// corresponding flag is not given.
var (
	defaultSort  = domain.SortRelevance
	defaultLimit int
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "metcha",
	Short: "Meta-search across pluggable providers",
	Long: `Metcha fans a query out to every enabled search provider concurrently,
merges overlapping results by URL, and streams progressively more
complete result sets. Provider results are cached on disk so repeated
queries skip the network.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false,
		"enable verbose logging")
}

// Services bundles everything the CLI drives. Search is required; the
// rest are optional and the affected commands degrade or report
// "not configured".
type Services struct {
	Search   driving.SearchService
	Registry driving.ProviderRegistry
	Cache    driving.CacheService
	History  driving.HistoryService
	Config   driven.ConfigStore
}

// SetServices injects the constructed services into the command tree.
func SetServices(s Services) {
	searchService = s.Search
	providerRegistry = s.Registry
	cacheService = s.Cache
	historyService = s.History
	configStore = s.Config
}

// SetDefaults applies configuration-sourced defaults for the search
// command's sort and limit flags.
func SetDefaults(sort domain.SortPolicy, limit int) {
	if sort != "" {
		defaultSort = sort
	}
	if limit > 0 {
		defaultLimit = limit
	}
}

// SetVersion overrides the version string printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
