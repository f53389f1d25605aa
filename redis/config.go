package redis

import (
	"fmt"
	"time"

	"github.com/kbukum/guidegen/security"
)

// Config holds Redis connection configuration for the lookup cache.
type Config struct {
	// Enabled controls whether geocoding lookups are cached in Redis.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// Addr is the Redis server address (host:port).
	Addr     string `yaml:"addr" mapstructure:"addr"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`

	PoolSize     int `yaml:"pool_size" mapstructure:"pool_size"`
	MinIdleConns int `yaml:"min_idle_conns" mapstructure:"min_idle_conns"`
	MaxRetries   int `yaml:"max_retries" mapstructure:"max_retries"`

	DialTimeout  time.Duration `yaml:"dial_timeout" mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`

	// TLS is used for managed Redis endpoints. Zero means plaintext.
	TLS security.TLSConfig `yaml:"tls" mapstructure:"tls"`

	// KeyPrefix namespaces every cache key.
	KeyPrefix string `yaml:"key_prefix" mapstructure:"key_prefix"`
	// TTL is how long a cached lookup stays valid. Zero keeps entries forever.
	TTL time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = "localhost:6379"
	}
	if c.PoolSize <= 0 {
		c.PoolSize = 10
	}
	if c.MinIdleConns <= 0 {
		c.MinIdleConns = 2
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 3 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 3 * time.Second
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "guidegen"
	}
	if c.TTL == 0 {
		c.TTL = 24 * time.Hour
	}
}

// Validate checks the configuration of an enabled cache.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Addr == "" {
		return fmt.Errorf("redis.addr is required")
	}
	if c.PoolSize <= 0 {
		return fmt.Errorf("redis.pool_size must be > 0")
	}
	if c.MinIdleConns > c.PoolSize {
		return fmt.Errorf("redis.min_idle_conns (%d) must be <= pool_size (%d)", c.MinIdleConns, c.PoolSize)
	}
	if c.TTL < 0 {
		return fmt.Errorf("redis.ttl must not be negative")
	}
	return c.TLS.Validate("redis")
}
