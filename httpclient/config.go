package httpclient

import (
	"fmt"
	"time"

	"github.com/kbukum/guidegen/resilience"
)

const defaultTimeout = 15 * time.Second

// Config configures a client for one upstream provider.
type Config struct {
	// Name identifies the upstream in errors and logs.
	Name string `yaml:"name" mapstructure:"name"`
	// BaseURL is prepended to relative request paths.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// Timeout bounds each attempt. Defaults to 15s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// Headers are sent with every request.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// Auth is applied to every request unless the request overrides it.
	Auth *AuthConfig `yaml:"-" mapstructure:"-"`
	// Retry enables retries of transient failures. Nil disables retry.
	Retry *resilience.RetryConfig `yaml:"-" mapstructure:"-"`
	// Breaker enables a circuit breaker. Nil disables it.
	Breaker *resilience.BreakerConfig `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Name == "" {
		c.Name = "http"
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("httpclient %s: timeout must be positive", c.Name)
	}
	return nil
}

// DefaultRetryConfig returns a retry policy limited to retryable HTTP errors.
func DefaultRetryConfig() *resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	cfg.RetryIf = IsRetryable
	return &cfg
}

// DefaultBreakerConfig returns a breaker config named after the upstream.
func DefaultBreakerConfig(name string) *resilience.BreakerConfig {
	return &resilience.BreakerConfig{Name: name, MaxFailures: 5, OpenTimeout: 30 * time.Second}
}
