package radar

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all radar configuration.
type Config struct {
	// Additional header names treated as deprecation signals, on top of
	// the built-in Sunset and Deprecation headers
	CustomHeaders []string `json:"custom_headers" yaml:"custom_headers"`

	// Degrade a structure mismatch (document found but not describing the
	// evaluated call) to "not deprecated" instead of failing the evaluation
	LenientStructure bool `json:"lenient_structure" yaml:"lenient_structure"`

	// Annotate intercepted responses with X-Depradar-* headers
	Annotate bool `json:"annotate" yaml:"annotate"`

	// Discovery fetch timeout
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// Maximum document body size in bytes
	MaxBodySize int64 `json:"max_body_size" yaml:"max_body_size"`

	// Discovery probe rate limiting (0 disables)
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
	Burst             int     `json:"burst" yaml:"burst"`

	// User agent for discovery fetches
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// Skip TLS certificate verification on discovery fetches
	SkipTLSVerify bool `json:"skip_tls_verify" yaml:"skip_tls_verify"`

	// Verdict history database path (empty disables history)
	HistoryFile string `json:"history_file" yaml:"history_file"`

	// Verbose logging
	Verbose bool `json:"verbose" yaml:"verbose"`

	// Debug mode
	Debug bool `json:"debug" yaml:"debug"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Annotate:          true,
		Timeout:           10 * time.Second,
		MaxBodySize:       5 * 1024 * 1024,
		RequestsPerSecond: 0,
		Burst:             1,
		UserAgent:         "depradar/" + Version,
	}
}

// LoadFromFile loads configuration from a file (YAML or JSON).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()

	// Try YAML first, then JSON
	if err := yaml.Unmarshal(data, config); err != nil {
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	return config, nil
}

// SaveToFile saves configuration to a file.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if len(path) > 5 && path[len(path)-5:] == ".json" {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}

	if c.MaxBodySize < 0 {
		return fmt.Errorf("max body size must not be negative")
	}

	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests per second must not be negative")
	}

	return nil
}
