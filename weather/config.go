package weather

import (
	"fmt"
	"slices"
	"time"

	"github.com/kbukum/guidegen/resilience"
)

// Provider names accepted in configuration.
const (
	ProviderStatic      = "static"
	ProviderOpenWeather = "openweather"
)

// Config configures the weather advisor.
type Config struct {
	Provider string `yaml:"provider" mapstructure:"provider"`
	// Horizon is the forecast horizon of the static provider, in days.
	Horizon     int                    `yaml:"horizon" mapstructure:"horizon"`
	RateLimit   resilience.LimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	OpenWeather OpenWeatherConfig      `yaml:"openweather" mapstructure:"openweather"`
}

// OpenWeatherConfig configures the OpenWeather provider.
type OpenWeatherConfig struct {
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	APIKey  string        `yaml:"api_key" mapstructure:"api_key"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderStatic
	}
	if c.Horizon <= 0 {
		c.Horizon = 7
	}
	c.RateLimit.ApplyDefaults()
	if c.OpenWeather.BaseURL == "" {
		c.OpenWeather.BaseURL = "https://api.openweathermap.org"
	}
	if c.OpenWeather.Timeout <= 0 {
		c.OpenWeather.Timeout = 10 * time.Second
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if !slices.Contains([]string{ProviderStatic, ProviderOpenWeather}, c.Provider) {
		return fmt.Errorf("weather.provider must be %q or %q (got: %s)", ProviderStatic, ProviderOpenWeather, c.Provider)
	}
	if c.Provider == ProviderOpenWeather && c.OpenWeather.APIKey == "" {
		return fmt.Errorf("weather.openweather.api_key is required for the openweather provider")
	}
	if err := c.RateLimit.Validate(); err != nil {
		return fmt.Errorf("weather: %w", err)
	}
	return nil
}

// NewProvider builds the configured provider.
func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case ProviderOpenWeather:
		return NewOpenWeatherProvider(cfg.OpenWeather)
	case ProviderStatic, "":
		return NewStaticProvider(cfg.Horizon, nil, DefaultClimates()), nil
	default:
		return nil, fmt.Errorf("unknown weather provider %q", cfg.Provider)
	}
}
