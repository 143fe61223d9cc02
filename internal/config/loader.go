package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "CHATLENS_"

// ConfigPaths defines the config file search paths in priority order
var ConfigPaths = []string{
	"./.chatlens.yaml",               // Project-specific config (highest priority)
	"~/.config/chatlens/config.yaml", // User config
	"/etc/chatlens/config.yaml",      // System config (lowest priority)
}

// Loader handles configuration loading with priority merging
type Loader struct {
	configPaths []string
	warn        func(format string, args ...any)
}

// NewLoader creates a new config loader
func NewLoader() *Loader {
	return NewLoaderWithPaths(ConfigPaths...)
}

// NewLoaderWithPaths creates a loader searching the given paths, highest priority first
func NewLoaderWithPaths(paths ...string) *Loader {
	return &Loader{
		configPaths: paths,
		warn: func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
		},
	}
}

// SetWarningHandler replaces the function reporting skipped config files
func (l *Loader) SetWarningHandler(warn func(format string, args ...any)) {
	if warn != nil {
		l.warn = warn
	}
}

// LoadConfig loads configuration from multiple sources with priority order:
// 1. Command line flags (handled by caller)
// 2. CHATLENS_* environment variables
// 3. dotenv file (service.env_file, never overriding the real environment)
// 4. ./.chatlens.yaml
// 5. ~/.config/chatlens/config.yaml
// 6. /etc/chatlens/config.yaml
// 7. Built-in defaults
//
// A custom path replaces the search paths 4-6.
func (l *Loader) LoadConfig(customPath string) (*Config, error) {
	config := DefaultConfig()

	if customPath != "" {
		if err := validateConfigPath(customPath); err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		if err := loadFromFile(config, customPath); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", customPath, err)
		}
	} else {
		// Lowest priority first so later files win
		for i := len(l.configPaths) - 1; i >= 0; i-- {
			expandedPath := expandPath(l.configPaths[i])
			if !fileExists(expandedPath) {
				continue
			}
			if err := loadFromFile(config, expandedPath); err != nil {
				l.warn("failed to load config from %s: %v", expandedPath, err)
			}
		}
	}

	dotenv, err := readEnvFile(config.Service.EnvFile)
	if err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(config, envLookup(dotenv)); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// loadFromFile decodes a YAML file over config. Keys absent from the
// file keep their current value.
func loadFromFile(config *Config, path string) error {
	// #nosec G304 - path is validated or comes from the fixed search list
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	return nil
}

// readEnvFile parses a dotenv file without touching the process environment.
// A missing file is not an error.
func readEnvFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	expanded := expandPath(path)
	if !fileExists(expanded) {
		return nil, nil
	}

	values, err := godotenv.Read(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", expanded, err)
	}
	return values, nil
}

// envLookup resolves a variable from the real environment first, then the dotenv values
func envLookup(dotenv map[string]string) func(string) string {
	return func(key string) string {
		if value := os.Getenv(key); value != "" {
			return value
		}
		return dotenv[key]
	}
}

// applyEnvOverrides applies environment variable overrides to the config
func applyEnvOverrides(config *Config, lookup func(string) string) error {
	envMappings := map[string]func(string) error{
		// Service
		"SERVICE_URL":            func(v string) error { config.Service.URL = strings.TrimSpace(v); return nil },
		"SERVICE_HEALTH_TIMEOUT": func(v string) error { return parseDuration(v, &config.Service.HealthTimeout) },

		// Upload
		"UPLOAD_DROP_DIR":     func(v string) error { config.Upload.DropDir = v; return nil },
		"UPLOAD_SETTLE_DELAY": func(v string) error { return parseDuration(v, &config.Upload.SettleDelay) },

		// Output
		"OUTPUT_DEFAULT_FORMAT": func(v string) error { config.Output.DefaultFormat = v; return nil },
		"OUTPUT_COLOR_MODE":     func(v string) error { config.Output.ColorMode = v; return nil },
		"OUTPUT_VERBOSE":        func(v string) error { return parseBool(v, &config.Output.Verbose) },
		"OUTPUT_LOG_FILE":       func(v string) error { config.Output.LogFile = v; return nil },

		// UI
		"UI_THEME":       func(v string) error { config.UI.Theme = v; return nil },
		"UI_EMOJI":       func(v string) error { return parseBool(v, &config.UI.Emoji) },
		"UI_CHART_WIDTH": func(v string) error { return parseInt(v, &config.UI.ChartWidth) },
	}

	for suffix, setter := range envMappings {
		envVar := EnvPrefix + suffix
		if value := lookup(envVar); value != "" {
			if err := setter(value); err != nil {
				return fmt.Errorf("invalid value for %s: %w", envVar, err)
			}
		}
	}

	return nil
}

// EnvVars lists every supported environment variable
func EnvVars() []string {
	return []string{
		EnvPrefix + "SERVICE_URL",
		EnvPrefix + "SERVICE_HEALTH_TIMEOUT",
		EnvPrefix + "UPLOAD_DROP_DIR",
		EnvPrefix + "UPLOAD_SETTLE_DELAY",
		EnvPrefix + "OUTPUT_DEFAULT_FORMAT",
		EnvPrefix + "OUTPUT_COLOR_MODE",
		EnvPrefix + "OUTPUT_VERBOSE",
		EnvPrefix + "OUTPUT_LOG_FILE",
		EnvPrefix + "UI_THEME",
		EnvPrefix + "UI_EMOJI",
		EnvPrefix + "UI_CHART_WIDTH",
	}
}

// GetConfigPaths returns the list of configuration file paths that will be searched
func GetConfigPaths() []string {
	paths := make([]string, 0, len(ConfigPaths))
	for _, path := range ConfigPaths {
		paths = append(paths, expandPath(path))
	}
	return paths
}

// FindConfigFile finds the highest priority existing config file
func FindConfigFile() (string, bool) {
	for _, path := range GetConfigPaths() {
		if fileExists(path) {
			return path, true
		}
	}
	return "", false
}

// validateConfigPath validates that a config path is safe to read
func validateConfigPath(path string) error {
	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("config file must have .yaml or .yml extension")
	}

	return nil
}

// ExpandPath expands a leading ~ to the home directory
func ExpandPath(path string) string {
	return expandPath(path)
}

func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return path
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Type conversion helpers

func parseInt(s string, dst *int) error {
	val, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseBool(s string, dst *bool) error {
	val, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseDuration(s string, dst *time.Duration) error {
	val, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}
