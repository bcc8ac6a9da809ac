// internal/cli/show_config.go
package cli

import (
	"fmt"

	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// showCmd groups the inspection subcommands.
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show settings",
}

// showConfigCmd implements 'show config', printing the merged configuration
// so flag/config/default precedence can be verified.
var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show config settings",
	Long:  `Show config settings ensuring that the JSON configs are loaded properly and overriden by flags accordingly.`,
	Run: func(cmd *cobra.Command, args []string) {
		file := viper.ConfigFileUsed()
		if file == "" {
			fmt.Println("No config file loaded (using defaults).")
		} else {
			fmt.Printf("Config file: %s\n\n", file)
		}

		cfg := GetConfig()
		fmt.Println("Current configuration:")
		fmt.Printf("  Base URL:        %s\n", cfg.APIBaseURL())
		fmt.Printf("  Debug:           %v\n", cfg.Debug)
		fmt.Printf("  Text timeout:    %s\n", cfg.RequestTimeout())
		fmt.Printf("  Media timeout:   %s\n", cfg.MediaTimeout())
		fmt.Printf("  Catalog TTL:     %s\n", cfg.CacheTTL())
		fmt.Printf("  Log file:        %s\n", cfg.LogFilePath())
		if _, err := cfg.ResolveAPIKey(); err != nil {
			fmt.Printf("  API key:         (not set: %v)\n", err)
		} else {
			fmt.Printf("  API key:         (set)\n")
		}

		if cfg.Debug {
			fmt.Println()
			pp.Println(*cfg)
		}
	},
}

func init() {
	showCmd.AddCommand(showConfigCmd)
	rootCmd.AddCommand(showCmd)
}
