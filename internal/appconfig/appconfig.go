// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// DefaultBaseURL is the root of the Poe OpenAI-compatible API.
	DefaultBaseURL = "https://api.poe.com/v1"
	// EnvAPIKey is the environment variable consulted when the config omits a key.
	EnvAPIKey = "POE_API_KEY"
	// defaultRequestTimeout is the timeout applied to text completion requests.
	defaultRequestTimeout = 30 * time.Second
	// defaultMediaTimeout is the extended timeout applied to image, video, and
	// audio generation requests.
	defaultMediaTimeout = 120 * time.Second
	// defaultCacheTTL is how long a fetched model list stays fresh.
	defaultCacheTTL = time.Hour
)

// ErrMissingAPIKey indicates no API key was found in the config or environment.
var ErrMissingAPIKey = fmt.Errorf("no Poe API key configured (set %s or the apiKey config field)", EnvAPIKey)

// Config represents the top-level application configuration.
type Config struct {
	BaseURL             string `json:"baseURL,omitempty"`
	APIKey              string `json:"apiKey,omitempty"`
	Debug               bool   `json:"debug"`
	TimeoutSeconds      int    `json:"timeout,omitempty"`
	MediaTimeoutSeconds int    `json:"mediaTimeout,omitempty"`
	CacheTTLSeconds     int    `json:"cacheTTL,omitempty"`
	LogFile             string `json:"logFile,omitempty"`
	ConfigPath          string `json:"-"`
}

// APIBaseURL returns the configured API root with any trailing slash removed,
// falling back to the public Poe endpoint.
func (c Config) APIBaseURL() string {
	if u := strings.TrimSpace(c.BaseURL); u != "" {
		return strings.TrimRight(u, "/")
	}
	return DefaultBaseURL
}

// RequestTimeout returns the timeout duration for text requests, falling back to the default if not specified.
func (c Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MediaTimeout returns the timeout duration for image, video, and audio requests.
func (c Config) MediaTimeout() time.Duration {
	if c.MediaTimeoutSeconds <= 0 {
		return defaultMediaTimeout
	}
	return time.Duration(c.MediaTimeoutSeconds) * time.Second
}

// CacheTTL returns how long a fetched model list is considered fresh.
func (c Config) CacheTTL() time.Duration {
	if c.CacheTTLSeconds <= 0 {
		return defaultCacheTTL
	}
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := strings.TrimSpace(c.LogFile); path != "" {
		return path
	}
	return "poegate.log"
}

// ResolveAPIKey returns the API key from the config file, then the environment.
// A missing key is a configuration error and must be surfaced before any
// network call is attempted.
func (c Config) ResolveAPIKey() (string, error) {
	if key := strings.TrimSpace(c.APIKey); key != "" {
		return key, nil
	}
	if key := strings.TrimSpace(os.Getenv(EnvAPIKey)); key != "" {
		return key, nil
	}
	return "", ErrMissingAPIKey
}

// Load reads the application configuration from the specified path. A missing
// file at the default path is not an error; the built-in defaults apply and the
// API key is expected from the environment.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	config, err := loadFromPath(path)
	if err == nil {
		config.ConfigPath = path
		return config, nil
	}

	if errors.Is(err, os.ErrNotExist) {
		if path == DefaultConfigPath {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("no configuration file found at %q", path)
	}

	return Config{}, fmt.Errorf("could not read config file %q: %w", path, err)
}

// loadFromPath is a helper function that loads the configuration from a specific file path.
func loadFromPath(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	if err := json.NewDecoder(file).Decode(&config); err != nil {
		return Config{}, err
	}

	return config, nil
}
