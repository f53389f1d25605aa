package geocode

import (
	"fmt"
	"slices"
	"time"

	"github.com/kbukum/guidegen/resilience"
)

// Provider names accepted in configuration.
const (
	ProviderTable  = "table"
	ProviderMapbox = "mapbox"
)

// Config configures geocoding.
type Config struct {
	Provider string `yaml:"provider" mapstructure:"provider"`
	// Workers bounds concurrent lookups within one batch.
	Workers   int                    `yaml:"workers" mapstructure:"workers"`
	RateLimit resilience.LimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	Mapbox    MapboxConfig           `yaml:"mapbox" mapstructure:"mapbox"`
}

// MapboxConfig configures the Mapbox forward geocoding provider.
type MapboxConfig struct {
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Token   string        `yaml:"token" mapstructure:"token"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// Candidates is the number of features requested per query.
	Candidates int `yaml:"candidates" mapstructure:"candidates"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderTable
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	c.RateLimit.ApplyDefaults()
	if c.Mapbox.BaseURL == "" {
		c.Mapbox.BaseURL = "https://api.mapbox.com"
	}
	if c.Mapbox.Timeout <= 0 {
		c.Mapbox.Timeout = 10 * time.Second
	}
	if c.Mapbox.Candidates <= 0 {
		c.Mapbox.Candidates = 3
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if !slices.Contains([]string{ProviderTable, ProviderMapbox}, c.Provider) {
		return fmt.Errorf("geocoding.provider must be %q or %q (got: %s)", ProviderTable, ProviderMapbox, c.Provider)
	}
	if c.Provider == ProviderMapbox && c.Mapbox.Token == "" {
		return fmt.Errorf("geocoding.mapbox.token is required for the mapbox provider")
	}
	if err := c.RateLimit.Validate(); err != nil {
		return fmt.Errorf("geocoding: %w", err)
	}
	return nil
}

// NewProvider builds the configured provider.
func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case ProviderMapbox:
		return NewMapboxProvider(cfg.Mapbox)
	case ProviderTable, "":
		return DefaultTable(), nil
	default:
		return nil, fmt.Errorf("unknown geocoding provider %q", cfg.Provider)
	}
}
