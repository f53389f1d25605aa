package llm

import (
	"fmt"
	"time"
)

// Config configures an LLM adapter. Dialect selects the provider mapping.
type Config struct {
	// Enabled turns on AI generation. When false guides are rendered from
	// templates.
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Name    string `yaml:"name" mapstructure:"name"`
	Dialect string `yaml:"dialect" mapstructure:"dialect"`
	// BaseURL is the provider's API base URL, e.g. "http://localhost:11434".
	BaseURL     string        `yaml:"base_url" mapstructure:"base_url"`
	Model       string        `yaml:"model" mapstructure:"model"`
	Temperature float64       `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens   int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// APIKey is sent as a bearer token when set.
	APIKey  string            `yaml:"api_key" mapstructure:"api_key"`
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Dialect == "" {
		c.Dialect = "ollama"
	}
	if c.Name == "" {
		c.Name = c.Dialect + "-llm"
	}
	if c.BaseURL == "" && c.Dialect == "ollama" {
		c.BaseURL = "http://localhost:11434"
	}
	if c.Timeout == 0 {
		c.Timeout = 120 * time.Second
	}
	if c.Temperature == 0 {
		c.Temperature = 0.7
	}
}

// Validate checks the configuration of an enabled adapter.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.BaseURL == "" {
		return fmt.Errorf("llm.base_url is required")
	}
	if c.Model == "" {
		return fmt.Errorf("llm.model is required")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2 (got: %.2f)", c.Temperature)
	}
	return nil
}
