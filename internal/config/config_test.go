package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != "1.0" {
		t.Errorf("Expected version 1.0, got %s", cfg.Version)
	}
	if cfg.Service.URL != DefaultServiceURL {
		t.Errorf("Expected service URL %s, got %s", DefaultServiceURL, cfg.Service.URL)
	}
	if cfg.Upload.SettleDelay != 300*time.Millisecond {
		t.Errorf("Expected settle delay 300ms, got %v", cfg.Upload.SettleDelay)
	}
	if cfg.Output.DefaultFormat != "text" {
		t.Errorf("Expected output format text, got %s", cfg.Output.DefaultFormat)
	}
	if !cfg.UI.Emoji {
		t.Error("Expected emoji enabled by default")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid default",
			modify: func(c *Config) {},
		},
		{
			name:   "https service",
			modify: func(c *Config) { c.Service.URL = "https://chat-analyzer.example.com" },
		},
		{
			name:    "missing version",
			modify:  func(c *Config) { c.Version = "" },
			wantErr: true,
			errMsg:  "version is required",
		},
		{
			name:    "empty service URL",
			modify:  func(c *Config) { c.Service.URL = "" },
			wantErr: true,
			errMsg:  "service.url is required",
		},
		{
			name:    "not a URL",
			modify:  func(c *Config) { c.Service.URL = "localhost" },
			wantErr: true,
			errMsg:  "service.url",
		},
		{
			name:    "unsupported scheme",
			modify:  func(c *Config) { c.Service.URL = "ftp://localhost:8000" },
			wantErr: true,
			errMsg:  "http or https",
		},
		{
			name:    "invalid output format",
			modify:  func(c *Config) { c.Output.DefaultFormat = "xml" },
			wantErr: true,
			errMsg:  "output.default_format must be one of: text, json, markdown, csv",
		},
		{
			name:    "invalid color mode",
			modify:  func(c *Config) { c.Output.ColorMode = "rainbow" },
			wantErr: true,
			errMsg:  "output.color_mode",
		},
		{
			name:    "invalid theme",
			modify:  func(c *Config) { c.UI.Theme = "neon" },
			wantErr: true,
			errMsg:  "ui.theme",
		},
		{
			name:    "chart too narrow",
			modify:  func(c *Config) { c.UI.ChartWidth = 2 },
			wantErr: true,
			errMsg:  "ui.chart_width must be greater than or equal to 10",
		},
		{
			name:    "negative settle delay",
			modify:  func(c *Config) { c.Upload.SettleDelay = -time.Second },
			wantErr: true,
			errMsg:  "upload.settle_delay",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error but got none")
				}
				if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Expected error containing %q, got %q", tt.errMsg, err.Error())
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}
