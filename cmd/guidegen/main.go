// Command guidegen serves the travel guide generation API.
//
// Configuration is read from cmd/guidegen/config.yml (or ./config.yml),
// an optional .env file, and GUIDEGEN_* environment variables. The
// GUIDEGEN_CONFIG variable points at an explicit config file.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kbukum/guidegen/bootstrap"
	"github.com/kbukum/guidegen/config"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "guidegen: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		return err
	}
	app.OnConfigure(configure)
	return app.Run(ctx)
}

func loadConfig(opts ...config.LoaderOption) (*Config, error) {
	if path := os.Getenv("GUIDEGEN_CONFIG"); path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}
	cfg := &Config{}
	if err := config.LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
