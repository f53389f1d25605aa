package main

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/guidegen/api"
	"github.com/kbukum/guidegen/bootstrap"
	"github.com/kbukum/guidegen/component"
	"github.com/kbukum/guidegen/database"
	"github.com/kbukum/guidegen/geocode"
	"github.com/kbukum/guidegen/guide"
	"github.com/kbukum/guidegen/llm"
	_ "github.com/kbukum/guidegen/llm/ollama"
	_ "github.com/kbukum/guidegen/llm/openai"
	"github.com/kbukum/guidegen/logger"
	"github.com/kbukum/guidegen/observability"
	"github.com/kbukum/guidegen/redis"
	"github.com/kbukum/guidegen/resilience"
	"github.com/kbukum/guidegen/server"
	"github.com/kbukum/guidegen/server/middleware"
	"github.com/kbukum/guidegen/sse"
	"github.com/kbukum/guidegen/storage"
	_ "github.com/kbukum/guidegen/storage/local"
	_ "github.com/kbukum/guidegen/storage/s3"
	"github.com/kbukum/guidegen/version"
	"github.com/kbukum/guidegen/weather"
)

// Limiter names, shared by status output and metrics.
const (
	limiterGeocoding = "geocoding"
	limiterWeather   = "weather"
	limiterGenerate  = "generate"
)

const streamPath = "/api/guides/stream"

// configure builds the service graph and registers its components in
// start order: telemetry, lookup cache, database, archive, llm, stream hub,
// guide service, HTTP.
func configure(_ context.Context, app *bootstrap.App[*Config]) error {
	cfg := app.Cfg
	log := app.Logger
	metrics := observability.Default()

	ver := cfg.Version
	if ver == "" {
		ver = version.Short()
	}
	telemetry := observability.NewComponent(cfg.Tracing, observability.ServiceInfo{
		Name:        cfg.Name,
		Version:     ver,
		Environment: cfg.Environment,
	})
	if err := app.RegisterComponent(telemetry); err != nil {
		return err
	}

	limits := resilience.NewRegistry()
	geoLimiter, err := registerLimiter(limits, limiterGeocoding, cfg.Geocoding.RateLimit, metrics)
	if err != nil {
		return err
	}
	weatherLimiter, err := registerLimiter(limits, limiterWeather, cfg.Weather.RateLimit, metrics)
	if err != nil {
		return err
	}

	geoProvider, err := geocode.NewProvider(cfg.Geocoding)
	if err != nil {
		return fmt.Errorf("geocoding provider: %w", err)
	}
	geoPolicy, _ := resilience.ParsePolicy(cfg.Geocoding.RateLimit.Policy)
	geoOpts := []geocode.Option{
		geocode.WithPolicy(geoPolicy),
		geocode.WithWorkers(cfg.Geocoding.Workers),
		geocode.WithMetrics(metrics),
	}
	if cfg.Cache.Enabled {
		cache := redis.NewComponent(cfg.Cache, log)
		if err := app.RegisterComponent(cache); err != nil {
			return err
		}
		store := redis.NewTypedStore[geocode.Lookup](cache, cfg.Cache.KeyPrefix+":geocode")
		geoOpts = append(geoOpts, geocode.WithCache(store, cfg.Cache.TTL))
	}
	resolver := geocode.NewResolver(geoProvider, geoLimiter, geoOpts...)

	weatherProvider, err := weather.NewProvider(cfg.Weather)
	if err != nil {
		return fmt.Errorf("weather provider: %w", err)
	}
	weatherPolicy, _ := resilience.ParsePolicy(cfg.Weather.RateLimit.Policy)
	advisor := weather.NewAdvisor(weatherProvider, weatherLimiter, weather.WithPolicy(weatherPolicy))

	repo, err := newRepository(app)
	if err != nil {
		return err
	}
	generator, err := newGenerator(app)
	if err != nil {
		return err
	}

	streams := sse.NewComponent(cfg.Stream, streamPath)
	if err := app.RegisterComponent(streams); err != nil {
		return err
	}

	guides, err := guide.NewService(cfg.Pipeline, guide.Dependencies{
		Resolver:  resolver,
		Advisor:   advisor,
		Generator: generator,
		Repo:      repo,
		Hub:       streams.Hub(),
		Metrics:   metrics,
		Log:       log,
	})
	if err != nil {
		return err
	}
	if err := app.RegisterComponent(guides); err != nil {
		return err
	}

	handler, err := api.New(api.Dependencies{
		Guides:   guides,
		Hub:      streams.Hub(),
		Resolver: resolver,
		Advisor:  advisor,
		Limits:   limits,
		Log:      log,
	})
	if err != nil {
		return err
	}

	srv := server.New(cfg.Server, log)
	srv.ApplyDefaults(cfg.Name, app.Components.HealthAll, metrics)

	var generate []gin.HandlerFunc
	if cfg.Server.GenerateLimit.Enabled {
		generate = append(generate, middleware.RateLimit(middleware.RateLimitConfig{
			Capacity: cfg.Server.GenerateLimit.Capacity,
			Window:   cfg.Server.GenerateLimit.Window,
			OnDeny: func(string) {
				metrics.RecordDenied(context.Background(), limiterGenerate)
			},
		}))
	}
	handler.Register(srv.GinEngine(), generate...)

	return app.RegisterComponent(server.NewComponent(srv))
}

func registerLimiter(limits *resilience.Registry, name string, cfg resilience.LimitConfig, metrics *observability.Metrics) (*resilience.WindowLimiter, error) {
	wc := cfg.WindowConfig(name)
	wc.OnDeny = func(limiter string) {
		metrics.RecordDenied(context.Background(), limiter)
	}
	l, err := limits.Register(wc)
	if err != nil {
		return nil, fmt.Errorf("%s rate limiter: %w", name, err)
	}
	return l, nil
}

// newRepository persists guides in sqlite when the database is enabled
// and in a bounded in-memory store otherwise. With the archive enabled
// every saved guide is also exported to object storage.
func newRepository(app *bootstrap.App[*Config]) (guide.Repository, error) {
	cfg := app.Cfg

	var repo guide.Repository
	if cfg.Database.Enabled {
		db := database.NewComponent(cfg.Database, app.Logger).WithAutoMigrate(database.Models()...)
		if err := app.RegisterComponent(db); err != nil {
			return nil, err
		}
		repo = guide.NewDBRepository(db)
	} else {
		app.Logger.Info("Guides are kept in memory", logger.Fields("capacity", cfg.Pipeline.MemoryCapacity))
		repo = guide.NewMemoryRepository(cfg.Pipeline.MemoryCapacity)
	}

	if !cfg.Archive.Enabled {
		return repo, nil
	}
	archive := storage.NewComponent(cfg.Archive, app.Logger)
	if err := app.RegisterComponent(archive); err != nil {
		return nil, err
	}
	return guide.NewArchivingRepository(repo, archive, cfg.Archive.Prefix), nil
}

// newGenerator returns the LLM generator when llm.enabled is set and the
// template generator otherwise. The LLM component reports the model
// endpoint's availability as its health.
func newGenerator(app *bootstrap.App[*Config]) (guide.Generator, error) {
	cfg := app.Cfg
	if !cfg.LLM.Enabled {
		return guide.NewTemplateGenerator(cfg.Pipeline.DefaultDays), nil
	}

	adapter, err := llm.New(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("llm: %w", err)
	}
	err = app.RegisterComponent(&component.Func{
		ComponentName: "llm",
		HealthFn: func(ctx context.Context) component.Health {
			if adapter.IsAvailable(ctx) {
				return component.Health{Name: "llm", Status: component.StatusHealthy}
			}
			return component.Health{Name: "llm", Status: component.StatusDegraded, Message: "model endpoint unreachable"}
		},
		Desc: component.Description{
			Name:    "LLM",
			Type:    cfg.LLM.Dialect,
			Details: fmt.Sprintf("%s model %s", cfg.LLM.BaseURL, cfg.LLM.Model),
		},
	})
	if err != nil {
		return nil, err
	}
	return guide.NewLLMGenerator(adapter, adapter.Name(), cfg.Pipeline.DefaultDays), nil
}
