package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and edit the configuration file. Keys use dot notation, e.g.
cache.ttl_ms or search.default_sort. Environment variables override
file values at startup.`,
	RunE: runConfigList,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show all configured values",
	RunE:  runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Show one configured value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Sets and persists a configuration value. Values parse as booleans or
integers when they look like one, otherwise they are stored as strings.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset [key]",
	Short: "Remove a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUnset,
}

func init() {
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	keys := configStore.Keys()
	if len(keys) == 0 {
		cmd.Printf("No configuration set (%s).\n", configStore.Path())
		return nil
	}

	cmd.Printf("Configuration (%s):\n", configStore.Path())
	cmd.Println()
	for _, key := range keys {
		value, _ := configStore.Get(key)
		cmd.Printf("  %s = %v\n", key, value)
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key := args[0]
	value, ok := configStore.Get(key)
	if !ok {
		return fmt.Errorf("key %q is not set", key)
	}

	cmd.Printf("%v\n", value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key, raw := args[0], args[1]
	if err := configStore.Set(key, parseConfigValue(raw)); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	cmd.Printf("%s = %s\n", key, raw)
	return nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key := args[0]
	if err := configStore.Unset(key); err != nil {
		return fmt.Errorf("failed to unset %s: %w", key, err)
	}

	cmd.Printf("Removed %s.\n", key)
	return nil
}

// parseConfigValue coerces a literal to the narrowest matching type so
// the TOML file keeps booleans and integers typed.
func parseConfigValue(raw string) any {
	// Integers first: ParseBool would claim "1" and "0".
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}
