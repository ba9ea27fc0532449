package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"stratus/internal/config"
)

// settableKeys are the keys `config set` may touch. The session block is
// managed by login/logout and stays off limits here.
var settableKeys = map[string]string{
	config.KeyAPIURL: "Base URL of the remote API",
	config.KeyLang:   "Language for server messages (zh or en)",
}

func newConfigCmd(app *appContainer) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage local configuration settings",
		Long:  `Manage the console's local settings: the API base URL and the language preference. You can set, get, list, and delete configuration values.`,
	}

	configSetCmd := &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Set a configuration key-value pair",
		Long:  `Sets a configuration value. For example: 'stratus config set api_url https://notes.example.com'`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.ToLower(args[0])
			value := args[1]

			if _, ok := settableKeys[key]; !ok {
				return fmt.Errorf("unknown config key: %s. Settable keys are: %s", key, settableKeyList())
			}

			if err := app.Config.Set(key, value); err != nil {
				return fmt.Errorf("error setting configuration: %v", err)
			}
			fmt.Printf("Configuration set: %s = %s\n", key, value)
			return nil
		},
	}

	configGetCmd := &cobra.Command{
		Use:   "get [key]",
		Short: "Get a configuration value by key",
		Long:  `Retrieves a configuration value for a given key. For example: 'stratus config get api_url'`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.ToLower(args[0])
			value, exists := app.Config.Get(key)

			if !exists {
				return fmt.Errorf("configuration key '%s' not found or not set", key)
			}
			fmt.Printf("%s = %v\n", key, value)
			return nil
		},
	}

	configDeleteCmd := &cobra.Command{
		Use:   "delete [key]",
		Short: "Delete a configuration value by key",
		Long:  `Deletes a configuration value for a given key. For example: 'stratus config delete api_url'`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.ToLower(args[0])

			if _, ok := settableKeys[key]; !ok {
				return fmt.Errorf("unknown config key: %s. Settable keys are: %s", key, settableKeyList())
			}

			deleted, err := app.Config.Delete(key)
			if err != nil {
				return fmt.Errorf("error deleting configuration: %v", err)
			}
			if !deleted {
				return fmt.Errorf("configuration key '%s' not found", key)
			}
			fmt.Printf("Configuration key '%s' deleted\n", key)
			return nil
		},
	}

	configListCmd := &cobra.Command{
		Use:   "list",
		Short: "List all current configuration values",
		Long:  `Displays all the key-value pairs currently stored in the configuration. Session secrets are masked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := app.Config.Settings()
			if len(settings) == 0 {
				fmt.Println("No configuration values set. Use 'stratus config set <key> <value>'.")
				return nil
			}

			fmt.Println("Current configuration:")
			for _, s := range settings {
				fmt.Printf("  %s = %v\n", s.Key, s.Value)
			}
			return nil
		},
	}

	configCmd.AddCommand(configSetCmd, configGetCmd, configDeleteCmd, configListCmd)
	return configCmd
}

func settableKeyList() string {
	keys := make([]string, 0, len(settableKeys))
	for k := range settableKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}
