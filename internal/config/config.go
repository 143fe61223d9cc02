package config

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultServiceURL is the analysis service address used when nothing else is configured
const DefaultServiceURL = "http://localhost:8000"

// Config holds the complete application configuration
type Config struct {
	Version string        `yaml:"version" json:"version" validate:"required"`
	Service ServiceConfig `yaml:"service" json:"service"`
	Upload  UploadConfig  `yaml:"upload" json:"upload"`
	Output  OutputConfig  `yaml:"output" json:"output"`
	UI      UIConfig      `yaml:"ui" json:"ui"`
}

// ServiceConfig configures the remote analysis service
type ServiceConfig struct {
	// URL is the base address, no trailing path
	URL string `yaml:"url" json:"url" validate:"required,url"`

	// HealthTimeout bounds ping only; uploads never time out
	HealthTimeout time.Duration `yaml:"health_timeout" json:"health_timeout" validate:"gte=0"`

	// EnvFile is a dotenv file read before environment overrides
	EnvFile string `yaml:"env_file" json:"env_file"`
}

// UploadConfig configures the drop folder
type UploadConfig struct {
	DropDir     string        `yaml:"drop_dir" json:"drop_dir"`                          // default directory for watch
	SettleDelay time.Duration `yaml:"settle_delay" json:"settle_delay" validate:"gte=0"` // quiet period before a drop is delivered
}

// OutputConfig configures output formatting and display
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format" validate:"oneof=text json markdown csv"`
	ColorMode     string `yaml:"color_mode" json:"color_mode" validate:"oneof=auto always never"`
	Verbose       bool   `yaml:"verbose" json:"verbose"`
	LogFile       string `yaml:"log_file" json:"log_file"` // where logs go while the TUI owns the terminal
}

// UIConfig configures the interactive screen
type UIConfig struct {
	Theme      string `yaml:"theme" json:"theme" validate:"oneof=default high-contrast minimal"`
	Emoji      bool   `yaml:"emoji" json:"emoji"`
	ChartWidth int    `yaml:"chart_width" json:"chart_width" validate:"gte=10,lte=200"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Service: ServiceConfig{
			URL:           DefaultServiceURL,
			HealthTimeout: 5 * time.Second,
			EnvFile:       ".env",
		},
		Upload: UploadConfig{
			DropDir:     "",
			SettleDelay: 300 * time.Millisecond,
		},
		Output: OutputConfig{
			DefaultFormat: "text",
			ColorMode:     "auto",
			Verbose:       false,
		},
		UI: UIConfig{
			Theme:      "default",
			Emoji:      true,
			ChartWidth: 40,
		},
	}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// getValidator returns the shared validator. Field names in errors are the YAML keys.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := getValidator().Struct(c); err != nil {
		return translateValidationError(err)
	}
	return c.validateServiceURL()
}

// validateServiceURL enforces what the url tag cannot: an http(s) scheme with a host
func (c *Config) validateServiceURL() error {
	u, err := url.Parse(c.Service.URL)
	if err != nil {
		return fmt.Errorf("service.url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("service.url must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("service.url must include a host")
	}
	return nil
}

var messageTemplates = map[string]string{
	"required": "%s is required",
	"url":      "%s must be a valid URL",
	"oneof":    "%s must be one of: %s",
	"gte":      "%s must be greater than or equal to %s",
	"lte":      "%s must be less than or equal to %s",
}

// translateValidationError flattens validator errors into one readable error
func translateValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fieldPath(fe.Namespace())
		template, ok := messageTemplates[fe.Tag()]
		switch {
		case !ok:
			messages = append(messages, fmt.Sprintf("%s failed %s validation", field, fe.Tag()))
		case strings.Count(template, "%s") == 2:
			messages = append(messages, fmt.Sprintf(template, field, strings.ReplaceAll(fe.Param(), " ", ", ")))
		default:
			messages = append(messages, fmt.Sprintf(template, field))
		}
	}

	return fmt.Errorf("invalid configuration: %s", strings.Join(messages, "; "))
}

// fieldPath drops the root struct name: "Config.output.color_mode" becomes "output.color_mode"
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
