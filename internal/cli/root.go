// internal/cli/root.go
// Package cli defines the cobra command tree for the poegate binary.
package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/poegate/poegate/internal/appconfig"
	"github.com/poegate/poegate/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile       string
	currentConfig *appconfig.Config
	appVersion    = "dev"
	appCommit     = "none"
	appDate       = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "poegate",
	Short: "poegate drives Poe-hosted text, image, video, and audio models from the terminal",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureConfigLoaded(); err != nil {
			return err
		}

		// If the user did not set a flag, copy the config value into the flag
		// so pflags and viper reflect the same, final value.
		if !cmd.Flags().Changed("debug") {
			_ = cmd.Flags().Set("debug", strconv.FormatBool(viper.GetBool("debug")))
		}
		for _, name := range []string{"baseURL", "logFile"} {
			if !cmd.Flags().Changed(name) {
				_ = cmd.Flags().Set(name, viper.GetString(name))
			}
		}

		// Materialize the merged configuration (flags > config > defaults)
		// into a stable snapshot for the other packages.
		cfg := appconfig.Config{
			BaseURL:             viper.GetString("baseURL"),
			APIKey:              viper.GetString("apiKey"),
			Debug:               viper.GetBool("debug"),
			TimeoutSeconds:      viper.GetInt("timeout"),
			MediaTimeoutSeconds: viper.GetInt("mediaTimeout"),
			CacheTTLSeconds:     viper.GetInt("cacheTTL"),
			LogFile:             viper.GetString("logFile"),
			ConfigPath:          viper.ConfigFileUsed(),
		}
		currentConfig = &cfg

		if err := logging.Init(currentConfig.LogFilePath()); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", appVersion, appCommit, appDate)

	defer logging.Close()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", appconfig.DefaultConfigPath, "config file (e.g., config/config.json)")

	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("baseURL", "", "Poe API base URL (defaults to the public endpoint)")
	rootCmd.PersistentFlags().Int("timeout", 0, "text request timeout in seconds (0 = default)")
	rootCmd.PersistentFlags().Int("mediaTimeout", 0, "image/video/audio request timeout in seconds (0 = default)")
	rootCmd.PersistentFlags().Int("cacheTTL", 0, "model catalog freshness window in seconds (0 = default)")
	rootCmd.PersistentFlags().String("logFile", "", "path to the log file")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("baseURL", rootCmd.PersistentFlags().Lookup("baseURL"))
	_ = viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	_ = viper.BindPFlag("mediaTimeout", rootCmd.PersistentFlags().Lookup("mediaTimeout"))
	_ = viper.BindPFlag("cacheTTL", rootCmd.PersistentFlags().Lookup("cacheTTL"))
	_ = viper.BindPFlag("logFile", rootCmd.PersistentFlags().Lookup("logFile"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// ensureConfigLoaded reads the config and tolerates a missing file at the
// default path; defaults plus the POE_API_KEY environment variable suffice.
func ensureConfigLoaded() error {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		if os.IsNotExist(err) && cfgFile == appconfig.DefaultConfigPath {
			return nil
		}
		return fmt.Errorf("failed to load config: %w", err)
	}
	return nil
}

// GetConfig returns the loaded application configuration for other packages.
func GetConfig() *appconfig.Config {
	return currentConfig
}

// DebugEnabled returns true if debug mode is enabled.
func DebugEnabled() bool { return viper.GetBool("debug") }

// SetVersionInfo allows the main package to inject build-time variables.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}
