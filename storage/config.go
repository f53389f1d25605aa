package storage

import (
	"errors"
	"fmt"
)

// Provider constants for supported storage backends.
const (
	ProviderLocal = "local"
	ProviderS3    = "s3"
)

// Default configuration values.
const (
	DefaultProvider = ProviderLocal
	DefaultBasePath = "./data/archive"
	DefaultRegion   = "us-east-1"
)

// Config selects and configures the archive backend.
type Config struct {
	// Enabled controls whether stored guides are exported to the archive.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// Provider selects the storage backend: "local" or "s3".
	Provider string `yaml:"provider" mapstructure:"provider"`

	// Prefix is prepended to every object path.
	Prefix string `yaml:"prefix" mapstructure:"prefix"`

	Local LocalConfig `yaml:"local" mapstructure:"local"`
	S3    S3Config    `yaml:"s3" mapstructure:"s3"`
}

// LocalConfig configures the filesystem backend.
type LocalConfig struct {
	// BasePath is the root directory of the archive.
	BasePath string `yaml:"base_path" mapstructure:"base_path"`
}

// S3Config configures the S3 backend. Endpoint selects an S3-compatible
// service such as MinIO.
type S3Config struct {
	Bucket         string `yaml:"bucket" mapstructure:"bucket"`
	Region         string `yaml:"region" mapstructure:"region"`
	Endpoint       string `yaml:"endpoint" mapstructure:"endpoint"`
	AccessKey      string `yaml:"access_key" mapstructure:"access_key"`
	SecretKey      string `yaml:"secret_key" mapstructure:"secret_key"`
	ForcePathStyle bool   `yaml:"force_path_style" mapstructure:"force_path_style"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	if c.Prefix == "" {
		c.Prefix = "guides"
	}
	if c.Local.BasePath == "" {
		c.Local.BasePath = DefaultBasePath
	}
	if c.S3.Region == "" {
		c.S3.Region = DefaultRegion
	}
}

// Validate checks the configuration of the selected provider.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	switch c.Provider {
	case ProviderLocal:
		if c.Local.BasePath == "" {
			return errors.New("archive.local.base_path is required for the local provider")
		}
	case ProviderS3:
		var errs []error
		if c.S3.Bucket == "" {
			errs = append(errs, errors.New("archive.s3.bucket is required"))
		}
		if c.S3.Region == "" {
			errs = append(errs, errors.New("archive.s3.region is required"))
		}
		if (c.S3.AccessKey == "") != (c.S3.SecretKey == "") {
			errs = append(errs, errors.New("archive.s3.access_key and secret_key must be set together"))
		}
		if len(errs) > 0 {
			return fmt.Errorf("invalid s3 archive config: %w", errors.Join(errs...))
		}
	default:
		return fmt.Errorf("archive.provider %q is not supported", c.Provider)
	}
	return nil
}
