package resilience

import (
	"fmt"
	"time"
)

// LimitConfig is the configuration file form of a provider budget.
type LimitConfig struct {
	Capacity int           `yaml:"capacity" mapstructure:"capacity"`
	Window   time.Duration `yaml:"window" mapstructure:"window"`
	Policy   string        `yaml:"policy" mapstructure:"policy"`
}

// ApplyDefaults fills a budget of 60 calls per minute with the wait policy.
func (c *LimitConfig) ApplyDefaults() {
	if c.Capacity == 0 {
		c.Capacity = 60
	}
	if c.Window == 0 {
		c.Window = time.Minute
	}
	if c.Policy == "" {
		c.Policy = string(PolicyWait)
	}
}

// Validate checks the budget values.
func (c *LimitConfig) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("rate_limit.capacity must be positive (got %d)", c.Capacity)
	}
	if c.Window <= 0 {
		return fmt.Errorf("rate_limit.window must be positive (got %s)", c.Window)
	}
	if _, err := ParsePolicy(c.Policy); err != nil {
		return fmt.Errorf("rate_limit.policy: %w", err)
	}
	return nil
}

// WindowConfig converts the budget into a limiter config named name.
func (c LimitConfig) WindowConfig(name string) WindowConfig {
	return WindowConfig{Name: name, Capacity: c.Capacity, Window: c.Window}
}
