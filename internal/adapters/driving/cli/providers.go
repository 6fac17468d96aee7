package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/metcha-cli/internal/core/domain"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Manage search providers",
	Long: `List the registered search providers and control which of them an
aggregated search fans out to.`,
	RunE: runProvidersList,
}

var providersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered providers",
	RunE:  runProvidersList,
}

var providersEnableCmd = &cobra.Command{
	Use:   "enable [id]",
	Short: "Enable a provider",
	Args:  cobra.ExactArgs(1),
	RunE:  runProvidersEnable,
}

var providersDisableCmd = &cobra.Command{
	Use:   "disable [id]",
	Short: "Disable a provider",
	Args:  cobra.ExactArgs(1),
	RunE:  runProvidersDisable,
}

var providersToggleCmd = &cobra.Command{
	Use:   "toggle [id]",
	Short: "Flip a provider's enabled flag",
	Args:  cobra.ExactArgs(1),
	RunE:  runProvidersToggle,
}

var providersOnlyCmd = &cobra.Command{
	Use:   "only [id]...",
	Short: "Enable exactly the given providers",
	Long: `Overwrites the whole enabled set: the named providers become enabled
and every other registered provider is disabled.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProvidersOnly,
}

var providersCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Probe every registered provider",
	Long: `Runs a small live query against every registered provider concurrently
and reports which of them are reachable. Cached results are bypassed so
the probe exercises the real upstream.`,
	RunE: runProvidersCheck,
}

// checkTimeout bounds the whole reachability probe.
const checkTimeout = 15 * time.Second

func init() {
	providersCmd.AddCommand(providersListCmd)
	providersCmd.AddCommand(providersEnableCmd)
	providersCmd.AddCommand(providersDisableCmd)
	providersCmd.AddCommand(providersToggleCmd)
	providersCmd.AddCommand(providersOnlyCmd)
	providersCmd.AddCommand(providersCheckCmd)
	rootCmd.AddCommand(providersCmd)
}

func runProvidersList(cmd *cobra.Command, _ []string) error {
	if providerRegistry == nil {
		return errors.New("provider registry not configured")
	}

	infos := providerRegistry.List()
	if len(infos) == 0 {
		cmd.Println("No providers registered.")
		return nil
	}

	cmd.Println("Providers:")
	cmd.Println()
	for _, info := range infos {
		state := " "
		if info.Enabled {
			state = "x"
		}
		cmd.Printf("  [%s] %-12s %s\n", state, info.ID, info.Name)
		if info.Description != "" {
			cmd.Printf("      %s\n", info.Description)
		}
	}
	return nil
}

func runProvidersEnable(cmd *cobra.Command, args []string) error {
	if providerRegistry == nil {
		return errors.New("provider registry not configured")
	}

	id := args[0]
	if err := providerRegistry.SetEnabled(id, true); err != nil {
		return fmt.Errorf("failed to enable provider: %w", err)
	}
	cmd.Printf("Provider %s enabled.\n", id)
	return nil
}

func runProvidersDisable(cmd *cobra.Command, args []string) error {
	if providerRegistry == nil {
		return errors.New("provider registry not configured")
	}

	id := args[0]
	if err := providerRegistry.SetEnabled(id, false); err != nil {
		return fmt.Errorf("failed to disable provider: %w", err)
	}
	cmd.Printf("Provider %s disabled.\n", id)
	return nil
}

func runProvidersToggle(cmd *cobra.Command, args []string) error {
	if providerRegistry == nil {
		return errors.New("provider registry not configured")
	}

	id := args[0]
	enabled, err := providerRegistry.Toggle(id)
	if err != nil {
		return fmt.Errorf("failed to toggle provider: %w", err)
	}
	if enabled {
		cmd.Printf("Provider %s enabled.\n", id)
	} else {
		cmd.Printf("Provider %s disabled.\n", id)
	}
	return nil
}

func runProvidersOnly(cmd *cobra.Command, args []string) error {
	if providerRegistry == nil {
		return errors.New("provider registry not configured")
	}

	providerRegistry.SetEnabledIDs(args)
	cmd.Printf("Enabled providers: %v\n", providerRegistry.EnabledIDs())
	return nil
}

func runProvidersCheck(cmd *cobra.Command, _ []string) error {
	if providerRegistry == nil || searchService == nil {
		return errors.New("provider registry not configured")
	}

	infos := providerRegistry.List()
	if len(infos) == 0 {
		cmd.Println("No providers registered.")
		return nil
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
	defer cancel()

	cmd.Printf("Probing %d providers...\n\n", len(infos))

	// One probe per enabled provider; failures are captured per branch,
	// never returned to the group, so one dead provider cannot cut the
	// others short.
	results := make([]error, len(infos))
	g, gctx := errgroup.WithContext(ctx)
	for i, info := range infos {
		if !info.Enabled {
			continue
		}
		g.Go(func() error {
			snap := searchService.Search(gctx, "metcha", domain.SearchOptions{
				Limit:     1,
				Refresh:   true,
				Providers: []string{info.ID},
			})
			for _, e := range snap.Errors {
				if e.ProviderID == info.ID {
					results[i] = e.Err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("provider check failed: %w", err)
	}

	failures := 0
	for i, info := range infos {
		if !info.Enabled {
			cmd.Printf("  --   %-12s disabled, skipped\n", info.ID)
			continue
		}
		if results[i] != nil {
			failures++
			cmd.Printf("  FAIL %-12s %v\n", info.ID, results[i])
			continue
		}
		cmd.Printf("  ok   %-12s\n", info.ID)
	}
	cmd.Println()
	if failures > 0 {
		cmd.Printf("%d of %d providers unreachable.\n", failures, len(infos))
	} else {
		cmd.Println("All enabled providers reachable.")
	}
	return nil
}
