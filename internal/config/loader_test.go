package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

// isolatedLoader searches only files inside a temp dir and uses no dotenv file
func isolatedLoader(t *testing.T) (*Loader, string) {
	t.Helper()
	dir := t.TempDir()
	for _, key := range EnvVars() {
		t.Setenv(key, "")
	}
	loader := NewLoaderWithPaths(
		filepath.Join(dir, "project.yaml"),
		filepath.Join(dir, "user.yaml"),
		filepath.Join(dir, "system.yaml"),
	)
	loader.SetWarningHandler(func(format string, args ...any) {})
	return loader, dir
}

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	if loader == nil {
		t.Fatal("NewLoader returned nil")
	}
	if len(loader.configPaths) != 3 {
		t.Errorf("Expected 3 config paths, got %d", len(loader.configPaths))
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	loader, _ := isolatedLoader(t)

	cfg, err := loader.LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load default config: %v", err)
	}
	if cfg.Service.URL != DefaultServiceURL {
		t.Errorf("Expected default service URL, got %s", cfg.Service.URL)
	}
	if cfg.Output.DefaultFormat != "text" {
		t.Errorf("Expected default output format text, got %s", cfg.Output.DefaultFormat)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	loader, dir := isolatedLoader(t)
	configPath := filepath.Join(dir, "custom.yaml")

	writeFile(t, configPath, `version: "1.0"
service:
  url: "http://analyzer.internal:9000"
upload:
  settle_delay: 1s
output:
  default_format: "json"
  verbose: true
`)

	cfg, err := loader.LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config from file: %v", err)
	}

	if cfg.Service.URL != "http://analyzer.internal:9000" {
		t.Errorf("Expected service URL from file, got %s", cfg.Service.URL)
	}
	if cfg.Upload.SettleDelay != time.Second {
		t.Errorf("Expected settle delay 1s, got %v", cfg.Upload.SettleDelay)
	}
	if cfg.Output.DefaultFormat != "json" {
		t.Errorf("Expected output format json, got %s", cfg.Output.DefaultFormat)
	}
	if !cfg.Output.Verbose {
		t.Error("Expected verbose to be true")
	}
	// Keys absent from the file keep their defaults
	if cfg.Output.ColorMode != "auto" {
		t.Errorf("Expected default color mode, got %s", cfg.Output.ColorMode)
	}
	if !cfg.UI.Emoji {
		t.Error("Expected emoji default to survive a file without a ui section")
	}
}

func TestLoadConfigPriority(t *testing.T) {
	loader, dir := isolatedLoader(t)

	writeFile(t, filepath.Join(dir, "system.yaml"), `service:
  url: "http://system:8000"
ui:
  theme: "minimal"
  chart_width: 20
`)
	writeFile(t, filepath.Join(dir, "user.yaml"), `service:
  url: "http://user:8000"
ui:
  chart_width: 30
`)
	writeFile(t, filepath.Join(dir, "project.yaml"), `service:
  url: "http://project:8000"
`)

	cfg, err := loader.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Service.URL != "http://project:8000" {
		t.Errorf("Expected project config to win, got %s", cfg.Service.URL)
	}
	if cfg.UI.ChartWidth != 30 {
		t.Errorf("Expected user chart width 30, got %d", cfg.UI.ChartWidth)
	}
	if cfg.UI.Theme != "minimal" {
		t.Errorf("Expected system theme minimal, got %s", cfg.UI.Theme)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	loader, dir := isolatedLoader(t)
	writeFile(t, filepath.Join(dir, "project.yaml"), `service:
  url: "http://project:8000"
`)

	t.Setenv("CHATLENS_SERVICE_URL", "http://env:8000")
	t.Setenv("CHATLENS_OUTPUT_VERBOSE", "true")
	t.Setenv("CHATLENS_UPLOAD_SETTLE_DELAY", "750ms")
	t.Setenv("CHATLENS_UI_EMOJI", "false")

	cfg, err := loader.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Service.URL != "http://env:8000" {
		t.Errorf("Expected env service URL, got %s", cfg.Service.URL)
	}
	if !cfg.Output.Verbose {
		t.Error("Expected verbose from env")
	}
	if cfg.Upload.SettleDelay != 750*time.Millisecond {
		t.Errorf("Expected settle delay 750ms, got %v", cfg.Upload.SettleDelay)
	}
	if cfg.UI.Emoji {
		t.Error("Expected emoji disabled from env")
	}
}

func TestLoadConfigInvalidEnv(t *testing.T) {
	loader, _ := isolatedLoader(t)
	t.Setenv("CHATLENS_UI_CHART_WIDTH", "wide")

	_, err := loader.LoadConfig("")
	if err == nil || !strings.Contains(err.Error(), "CHATLENS_UI_CHART_WIDTH") {
		t.Errorf("Expected error naming the variable, got %v", err)
	}
}

func TestLoadConfigEnvFile(t *testing.T) {
	loader, dir := isolatedLoader(t)
	envPath := filepath.Join(dir, "chatlens.env")

	writeFile(t, envPath, `CHATLENS_SERVICE_URL=http://dotenv:8000
CHATLENS_UI_THEME=high-contrast
`)
	writeFile(t, filepath.Join(dir, "project.yaml"), "service:\n  env_file: \""+envPath+"\"\n")

	// The real environment wins over the dotenv file
	t.Setenv("CHATLENS_UI_THEME", "minimal")

	cfg, err := loader.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Service.URL != "http://dotenv:8000" {
		t.Errorf("Expected dotenv service URL, got %s", cfg.Service.URL)
	}
	if cfg.UI.Theme != "minimal" {
		t.Errorf("Expected real env theme, got %s", cfg.UI.Theme)
	}
	if _, set := os.LookupEnv("CHATLENS_SERVICE_URL"); set && os.Getenv("CHATLENS_SERVICE_URL") != "" {
		t.Error("dotenv values must not leak into the process environment")
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	loader, dir := isolatedLoader(t)

	badFormat := filepath.Join(dir, "bad.yaml")
	writeFile(t, badFormat, `output:
  default_format: "xml"
`)
	if _, err := loader.LoadConfig(badFormat); err == nil {
		t.Error("Expected validation error for invalid format")
	}

	brokenYAML := filepath.Join(dir, "broken.yaml")
	writeFile(t, brokenYAML, "service: [unclosed\n")
	if _, err := loader.LoadConfig(brokenYAML); err == nil {
		t.Error("Expected parse error for broken YAML")
	}
}

func TestLoadConfigSkipsBrokenSearchFile(t *testing.T) {
	loader, dir := isolatedLoader(t)
	var warnings []string
	loader.SetWarningHandler(func(format string, args ...any) {
		warnings = append(warnings, format)
	})

	writeFile(t, filepath.Join(dir, "user.yaml"), "service: [unclosed\n")

	cfg, err := loader.LoadConfig("")
	if err != nil {
		t.Fatalf("A broken search-path file should be skipped: %v", err)
	}
	if cfg.Service.URL != DefaultServiceURL {
		t.Errorf("Expected defaults, got %s", cfg.Service.URL)
	}
	if len(warnings) != 1 {
		t.Errorf("Expected one warning, got %d", len(warnings))
	}
}

func TestValidateConfigPath(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"config.yaml", false},
		{"/home/ana/.chatlens.yml", false},
		{"config.json", true},
		{"../../etc/config.yaml", true},
	}

	for _, tt := range tests {
		err := validateConfigPath(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateConfigPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
		}
	}
}

func TestSampleConfigsAreValid(t *testing.T) {
	for name, sample := range map[string]string{
		"full":    SampleConfig(),
		"minimal": MinimalSampleConfig(),
	} {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			if err := yaml.Unmarshal([]byte(sample), cfg); err != nil {
				t.Fatalf("Sample config does not parse: %v", err)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("Sample config is invalid: %v", err)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	if got := ExpandPath("~/drop"); got != filepath.Join(home, "drop") {
		t.Errorf("ExpandPath(~/drop) = %s", got)
	}
	if got := ExpandPath("/tmp/drop"); got != "/tmp/drop" {
		t.Errorf("ExpandPath(/tmp/drop) = %s", got)
	}
}
