package sse

import (
	"fmt"
	"time"
)

// Config controls run streams.
type Config struct {
	// BufferSize is the number of progress frames held for a slow consumer.
	BufferSize int `yaml:"buffer_size" mapstructure:"buffer_size"`
	// KeepAlive is the interval of comment lines on an idle stream.
	KeepAlive time.Duration `yaml:"keep_alive" mapstructure:"keep_alive"`
	// Retention is how long a finished run stays queryable in the hub.
	Retention time.Duration `yaml:"retention" mapstructure:"retention"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.BufferSize <= 0 {
		c.BufferSize = 256
	}
	if c.KeepAlive <= 0 {
		c.KeepAlive = 15 * time.Second
	}
	if c.Retention <= 0 {
		c.Retention = 10 * time.Minute
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.BufferSize < 1 {
		return fmt.Errorf("stream.buffer_size must be positive (got: %d)", c.BufferSize)
	}
	if c.KeepAlive < time.Second {
		return fmt.Errorf("stream.keep_alive must be at least 1s (got: %s)", c.KeepAlive)
	}
	return nil
}
