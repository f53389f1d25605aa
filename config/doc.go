// Package config loads guidegen configuration with viper.
//
// A YAML file supplies the base values, an optional .env file is loaded
// through godotenv, and environment variables override individual keys:
//
//	var cfg AppConfig
//	err := config.LoadConfig("guidegen", &cfg)
//
// With the default prefix, geocoding.rate_limit.capacity is read from
// GUIDEGEN_GEOCODING_RATE_LIMIT_CAPACITY.
package config
