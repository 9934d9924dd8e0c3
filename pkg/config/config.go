// Package config loads the planner's YAML configuration, layering file
// values over defaults and environment overrides over both.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration.
type Config struct {
	Model         ModelConfig         `yaml:"model"`
	Search        SearchConfig        `yaml:"search"`
	Memory        MemoryConfig        `yaml:"memory"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ModelConfig configures the chat-completions endpoint behind every
// stage's model calls.
type ModelConfig struct {
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key,omitempty"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	Timeout     string  `yaml:"timeout"`
}

// SearchConfig configures the literature search collaborator.
type SearchConfig struct {
	MaxResults int    `yaml:"max_results"`
	Timeout    string `yaml:"timeout"`
}

// MemoryConfig configures the persisted memory log.
type MemoryConfig struct {
	Path string `yaml:"path"`
}

// ObservabilityConfig contains observability configuration.
type ObservabilityConfig struct {
	Tracing TracingConfig `yaml:"tracing"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

// TracingConfig contains tracing configuration.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"sampling_rate"`
	Insecure     bool    `yaml:"insecure"`
}

// MetricsConfig contains metrics configuration.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json", "text"
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyDefaults()
	config.overrideFromEnv()

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// LoadOrDefault loads configuration from a file or returns the default
// config with environment overrides applied.
func LoadOrDefault(path string) *Config {
	config, err := Load(path)
	if err != nil {
		config = Default()
		config.overrideFromEnv()
	}
	return config
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			BaseURL:     "http://localhost:4000",
			Model:       "gpt-4o-mini",
			Temperature: 0.7,
			MaxTokens:   2000,
			Timeout:     "2m",
		},
		Search: SearchConfig{
			MaxResults: 10,
			Timeout:    "15s",
		},
		Memory: MemoryConfig{
			Path: "memory.json",
		},
		Observability: ObservabilityConfig{
			Tracing: TracingConfig{
				Enabled:      true,
				Endpoint:     "localhost:4317",
				SamplingRate: 1.0,
				Insecure:     true,
			},
			Metrics: MetricsConfig{
				Enabled: true,
				Port:    2223,
			},
			Logging: LoggingConfig{
				Level:  "info",
				Format: "json",
			},
		},
	}
}

// applyDefaults applies default values to missing fields.
func (c *Config) applyDefaults() {
	defaults := Default()

	if c.Model.BaseURL == "" {
		c.Model.BaseURL = defaults.Model.BaseURL
	}
	if c.Model.Model == "" {
		c.Model.Model = defaults.Model.Model
	}
	if c.Model.Temperature == 0 {
		c.Model.Temperature = defaults.Model.Temperature
	}
	if c.Model.MaxTokens == 0 {
		c.Model.MaxTokens = defaults.Model.MaxTokens
	}
	if c.Model.Timeout == "" {
		c.Model.Timeout = defaults.Model.Timeout
	}

	if c.Search.MaxResults == 0 {
		c.Search.MaxResults = defaults.Search.MaxResults
	}
	if c.Search.Timeout == "" {
		c.Search.Timeout = defaults.Search.Timeout
	}

	if c.Memory.Path == "" {
		c.Memory.Path = defaults.Memory.Path
	}

	if c.Observability.Tracing.Endpoint == "" {
		c.Observability.Tracing.Endpoint = defaults.Observability.Tracing.Endpoint
	}
	if c.Observability.Tracing.SamplingRate == 0 {
		c.Observability.Tracing.SamplingRate = defaults.Observability.Tracing.SamplingRate
	}
	if c.Observability.Metrics.Port == 0 {
		c.Observability.Metrics.Port = defaults.Observability.Metrics.Port
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = defaults.Observability.Logging.Level
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = defaults.Observability.Logging.Format
	}
}

// overrideFromEnv overrides configuration from environment variables.
func (c *Config) overrideFromEnv() {
	if url := os.Getenv("MODEL_BASE_URL"); url != "" {
		c.Model.BaseURL = url
	}
	if key := os.Getenv("MODEL_API_KEY"); key != "" {
		c.Model.APIKey = key
	}
	if model := os.Getenv("MODEL_NAME"); model != "" {
		c.Model.Model = model
	}
	if path := os.Getenv("MEMORY_PATH"); path != "" {
		c.Memory.Path = path
	}
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		c.Observability.Tracing.Endpoint = endpoint
	}
}

// validate validates the configuration.
func (c *Config) validate() error {
	if c.Model.BaseURL == "" {
		return fmt.Errorf("model base_url is required")
	}
	if c.Model.Model == "" {
		return fmt.Errorf("model name is required")
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 2 {
		return fmt.Errorf("model temperature must be between 0 and 2")
	}
	if c.Search.MaxResults < 1 {
		return fmt.Errorf("search max_results must be at least 1")
	}
	if _, err := time.ParseDuration(c.Model.Timeout); err != nil {
		return fmt.Errorf("invalid model timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.Search.Timeout); err != nil {
		return fmt.Errorf("invalid search timeout: %w", err)
	}
	if c.Observability.Metrics.Enabled && (c.Observability.Metrics.Port < 1 || c.Observability.Metrics.Port > 65535) {
		return fmt.Errorf("metrics port must be between 1 and 65535")
	}
	return nil
}

// Save saves the configuration to a file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ModelTimeout returns the parsed model call timeout.
func (c *Config) ModelTimeout() time.Duration {
	d, err := time.ParseDuration(c.Model.Timeout)
	if err != nil {
		return 2 * time.Minute
	}
	return d
}

// IsProduction returns true if running in a production environment.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))
	return env == "production" || env == "prod"
}
