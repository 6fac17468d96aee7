package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/metcha-cli/internal/core/domain"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the provider result cache",
	Long: `Inspect and maintain the on-disk cache of provider results. Cached
entries let repeated searches skip the provider call until they expire.`,
	RunE: runCacheStats,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cached entry",
	RunE:  runCacheClear,
}

var cacheWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the cache file for changes",
	Long: `Blocks and reports fresh statistics whenever the cache file is
rewritten, by this process or another. Interrupt to stop.`,
	RunE: runCacheWatch,
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheWatchCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheStats(cmd *cobra.Command, _ []string) error {
	if cacheService == nil {
		return errors.New("cache service not configured")
	}

	stats, err := cacheService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read cache stats: %w", err)
	}

	printCacheStats(cmd, stats)
	return nil
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	if cacheService == nil {
		return errors.New("cache service not configured")
	}

	removed, err := cacheService.Clear(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	cmd.Printf("Removed %d cached entries.\n", removed)
	return nil
}

func runCacheWatch(cmd *cobra.Command, _ []string) error {
	if cacheService == nil {
		return errors.New("cache service not configured")
	}

	cmd.Printf("Watching %s (interrupt to stop)\n", cacheService.Location())

	err := cacheService.Watch(cmd.Context(), func(stats domain.CacheStats) {
		cmd.Println()
		printCacheStats(cmd, stats)
	})
	if err != nil {
		return fmt.Errorf("cache watch failed: %w", err)
	}
	return nil
}

func printCacheStats(cmd *cobra.Command, stats domain.CacheStats) {
	cmd.Println("Cache:")
	cmd.Printf("  Path:    %s\n", stats.Path)
	cmd.Printf("  Entries: %d (%d expired)\n", stats.Entries, stats.Expired)
	cmd.Printf("  Size:    %d bytes\n", stats.SizeBytes)
}
