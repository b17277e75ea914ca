// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config represents the configuration that can be loaded from a JSON file.
// All fields are optional; missing values use Defaults.
type Config struct {
	// Entity backends
	NEREndpoint       string `json:"ner_endpoint,omitempty" validate:"omitempty,url"`       // Token-classification endpoint
	NERAPIKey         string `json:"ner_api_key,omitempty"`                                 // Bearer token for the endpoint
	NERTimeoutSeconds int    `json:"ner_timeout_seconds,omitempty" validate:"gte=0,lte=300"` // Per-backend timeout
	LLMTagger         bool   `json:"llm_tagger,omitempty"`                                  // Also tag entities with Gemini
	GeminiAPIKey      string `json:"gemini_api_key,omitempty"`

	// Storage
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL

	// Server
	Port           int     `json:"port,omitempty" validate:"gte=0,lte=65535"`
	RateLimitRPS   float64 `json:"rate_limit_rps,omitempty" validate:"gte=0"`
	RateLimitBurst int     `json:"rate_limit_burst,omitempty" validate:"gte=0"`

	// Extraction
	MaxPages       int   `json:"max_pages,omitempty" validate:"gte=0,lte=100"` // PDF pages read per document
	StrictTags     *bool `json:"strict_tags,omitempty"`                        // Fail analyses whose tags cannot be built
	EducationYears bool  `json:"education_years,omitempty"`                    // Read the year of each education entry

	// Logging
	LogLevel  string `json:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	LogFormat string `json:"log_format,omitempty" validate:"omitempty,oneof=json pretty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	strict := true
	return Config{
		NERTimeoutSeconds: 10,
		Port:              8080,
		RateLimitRPS:      5,
		RateLimitBurst:    10,
		MaxPages:          3,
		StrictTags:        &strict,
		LogLevel:          "info",
		LogFormat:         "json",
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("config error: '%s' fails '%s' (got %v)", fe.Field(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("config error: %w", err)
	}

	if c.LLMTagger && c.GeminiAPIKey == "" {
		return fmt.Errorf("config error: 'llm_tagger' requires 'gemini_api_key'")
	}
	if c.NERAPIKey != "" && c.NEREndpoint == "" {
		return fmt.Errorf("config error: 'ner_api_key' is set but 'ner_endpoint' is not")
	}

	return nil
}

// MergeWithDefaults returns a new Config with zero fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.NEREndpoint == "" {
		result.NEREndpoint = defaults.NEREndpoint
	}
	if result.NERAPIKey == "" {
		result.NERAPIKey = defaults.NERAPIKey
	}
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}

	// Numeric fields: use default if zero
	if result.NERTimeoutSeconds == 0 {
		result.NERTimeoutSeconds = defaults.NERTimeoutSeconds
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.RateLimitRPS == 0 {
		result.RateLimitRPS = defaults.RateLimitRPS
	}
	if result.RateLimitBurst == 0 {
		result.RateLimitBurst = defaults.RateLimitBurst
	}
	if result.MaxPages == 0 {
		result.MaxPages = defaults.MaxPages
	}

	// Bool fields: true wins, nil pointer means unset
	result.LLMTagger = result.LLMTagger || defaults.LLMTagger
	result.EducationYears = result.EducationYears || defaults.EducationYears
	if result.StrictTags == nil && defaults.StrictTags != nil {
		strict := *defaults.StrictTags
		result.StrictTags = &strict
	}

	return result
}

// ApplyEnv overrides fields from environment variables. getenv is usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	strs := map[string]*string{
		"NER_ENDPOINT":   &c.NEREndpoint,
		"NER_API_KEY":    &c.NERAPIKey,
		"GEMINI_API_KEY": &c.GeminiAPIKey,
		"DATABASE_URL":   &c.DatabaseURL,
		"LOG_LEVEL":      &c.LogLevel,
	}
	for key, field := range strs {
		if v := getenv(key); v != "" {
			*field = v
		}
	}

	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config error: PORT=%q is not a number", v)
		}
		c.Port = port
	}
	return nil
}

// StrictTagsEnabled reports whether tag failures abort an analysis. Unset means true.
func (c *Config) StrictTagsEnabled() bool {
	return c.StrictTags == nil || *c.StrictTags
}

// NERTimeout returns the per-backend entity tagging timeout.
func (c *Config) NERTimeout() time.Duration {
	return time.Duration(c.NERTimeoutSeconds) * time.Second
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}
