package guide

import (
	"fmt"
	"time"
)

// Config configures generation runs.
type Config struct {
	// StepTimeout bounds each step body.
	StepTimeout time.Duration `yaml:"step_timeout" mapstructure:"step_timeout"`
	// DefaultDays is the stay length planned when the request gives none.
	DefaultDays int `yaml:"default_days" mapstructure:"default_days"`
	// MaxConcurrentRuns limits runs in flight.
	MaxConcurrentRuns int `yaml:"max_concurrent_runs" mapstructure:"max_concurrent_runs"`
	// MemoryCapacity is the number of guides kept when the database is disabled.
	MemoryCapacity int `yaml:"memory_capacity" mapstructure:"memory_capacity"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.StepTimeout == 0 {
		c.StepTimeout = 2 * time.Minute
	}
	if c.DefaultDays <= 0 {
		c.DefaultDays = 3
	}
	if c.MaxConcurrentRuns == 0 {
		c.MaxConcurrentRuns = 32
	}
	if c.MemoryCapacity <= 0 {
		c.MemoryCapacity = 500
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.StepTimeout < 0 {
		return fmt.Errorf("pipeline.step_timeout must not be negative")
	}
	if c.DefaultDays > maxDays {
		return fmt.Errorf("pipeline.default_days must be at most %d (got: %d)", maxDays, c.DefaultDays)
	}
	if c.MaxConcurrentRuns < 0 {
		return fmt.Errorf("pipeline.max_concurrent_runs must not be negative")
	}
	return nil
}
