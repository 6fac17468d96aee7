// Command metcha is a meta-search CLI: one query fans out to every
// enabled provider, results merge by URL, and repeated queries come from
// an on-disk cache.
package main

import (
	"fmt"
	"os"

	cachefile "github.com/custodia-labs/metcha-cli/internal/adapters/driven/cache/file"
	configfile "github.com/custodia-labs/metcha-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/metcha-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/metcha-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/metcha-cli/internal/core/domain"
	"github.com/custodia-labs/metcha-cli/internal/core/services"
	"github.com/custodia-labs/metcha-cli/internal/logger"
	"github.com/custodia-labs/metcha-cli/internal/providers"
)

// version is set at build time via
// -ldflags "-X main.version=v1.2.3".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	cache := cachefile.New(cachefile.ResolveOptions(cfg))

	registry := services.NewRegistry()
	for _, p := range providers.FromEnv() {
		if err := registry.Register(p); err != nil {
			return fmt.Errorf("registering provider %s: %w", p.ID(), err)
		}
	}
	for _, id := range cfg.GetStringSlice(configfile.KeyProvidersDisabled) {
		// Token-gated providers may be configured but absent; that is
		// not a startup failure.
		if err := registry.SetEnabled(id, false); err != nil {
			logger.Warn("Cannot disable provider %s: %v", id, err)
		}
	}

	aggregator := services.NewAggregator(registry, cache)

	history := services.NewHistoryService(nil)
	if historyEnabled(cfg) {
		store, err := sqlite.NewStore("")
		if err != nil {
			logger.Warn("Search history unavailable: %v", err)
		} else {
			defer store.Close()
			history = services.NewHistoryService(store.HistoryStore())
		}
	}

	cli.SetServices(cli.Services{
		Search:   aggregator,
		Registry: registry,
		Cache:    cache,
		History:  history,
		Config:   cfg,
	})
	cli.SetDefaults(configuredSort(cfg), cfg.GetInt(configfile.KeySearchDefaultLimit))
	cli.SetVersion(version)

	return cli.Execute()
}

// historyEnabled defaults to true; only an explicit false in the config
// turns recording off.
func historyEnabled(cfg *configfile.ConfigStore) bool {
	if raw, ok := cfg.Get(configfile.KeyHistoryEnabled); ok {
		if b, isBool := raw.(bool); isBool {
			return b
		}
	}
	return true
}

// configuredSort returns the configured default sort policy, or empty
// when unset or invalid so the built-in default applies.
func configuredSort(cfg *configfile.ConfigStore) domain.SortPolicy {
	raw := cfg.GetString(configfile.KeySearchDefaultSort)
	if raw == "" {
		return ""
	}
	policy, err := domain.ParseSortPolicy(raw)
	if err != nil {
		logger.Warn("Ignoring invalid %s value %q", configfile.KeySearchDefaultSort, raw)
		return ""
	}
	return policy
}
