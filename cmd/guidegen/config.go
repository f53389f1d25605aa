package main

import (
	"github.com/kbukum/guidegen/config"
	"github.com/kbukum/guidegen/database"
	"github.com/kbukum/guidegen/geocode"
	"github.com/kbukum/guidegen/guide"
	"github.com/kbukum/guidegen/llm"
	"github.com/kbukum/guidegen/observability"
	"github.com/kbukum/guidegen/redis"
	"github.com/kbukum/guidegen/server"
	"github.com/kbukum/guidegen/sse"
	"github.com/kbukum/guidegen/storage"
	"github.com/kbukum/guidegen/weather"
)

const serviceName = "guidegen"

// Config is the guidegen process configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server    server.Config        `yaml:"server" mapstructure:"server"`
	Geocoding geocode.Config       `yaml:"geocoding" mapstructure:"geocoding"`
	Cache     redis.Config         `yaml:"cache" mapstructure:"cache"`
	Weather   weather.Config       `yaml:"weather" mapstructure:"weather"`
	LLM       llm.Config           `yaml:"llm" mapstructure:"llm"`
	Database  database.Config      `yaml:"database" mapstructure:"database"`
	Archive   storage.Config       `yaml:"archive" mapstructure:"archive"`
	Tracing   observability.Config `yaml:"tracing" mapstructure:"tracing"`
	Stream    sse.Config           `yaml:"stream" mapstructure:"stream"`
	Pipeline  guide.Config         `yaml:"pipeline" mapstructure:"pipeline"`
}

// ApplyDefaults fills every section.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Geocoding.ApplyDefaults()
	c.Cache.ApplyDefaults()
	c.Weather.ApplyDefaults()
	c.LLM.ApplyDefaults()
	c.Database.ApplyDefaults()
	c.Archive.ApplyDefaults()
	c.Tracing.ApplyDefaults()
	c.Stream.ApplyDefaults()
	c.Pipeline.ApplyDefaults()
}

// Validate checks every section and returns the first failure.
func (c *Config) Validate() error {
	for _, v := range []interface{ Validate() error }{
		&c.ServiceConfig,
		&c.Server,
		&c.Geocoding,
		&c.Cache,
		&c.Weather,
		&c.LLM,
		&c.Database,
		&c.Archive,
		&c.Tracing,
		&c.Stream,
		&c.Pipeline,
	} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}
