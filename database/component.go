package database

import (
	"context"
	"fmt"

	"github.com/kbukum/guidegen/component"
	"github.com/kbukum/guidegen/logger"
)

// Component wraps DB and implements component.Component.
type Component struct {
	db     *DB
	store  *GuideStore
	cfg    Config
	log    *logger.Logger
	models []any
}

var _ component.Component = (*Component)(nil)

// NewComponent creates the database component. Models registered with
// WithAutoMigrate are migrated on Start when auto_migrate is set.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{
		cfg: cfg,
		log: log.WithComponent("database"),
	}
}

// WithAutoMigrate registers models for auto-migration on Start.
func (c *Component) WithAutoMigrate(models ...any) *Component {
	c.models = append(c.models, models...)
	return c
}

// DB returns the underlying *DB, or nil if not started or disabled.
func (c *Component) DB() *DB { return c.db }

// Store returns the guide store, or nil if not started or disabled.
func (c *Component) Store() *GuideStore { return c.store }

func (c *Component) Name() string { return "database" }

// Start connects and runs auto-migration. A disabled component does nothing.
func (c *Component) Start(ctx context.Context) error {
	if !c.cfg.Enabled {
		c.log.Info("Database disabled, guides are kept in memory")
		return nil
	}

	db, err := Open(ctx, c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("database start: %w", err)
	}
	c.db = db

	if c.cfg.AutoMigrate && len(c.models) > 0 {
		if err := c.db.AutoMigrate(c.models...); err != nil {
			_ = c.db.Close()
			c.db = nil
			return fmt.Errorf("database auto-migrate: %w", err)
		}
	}
	c.store = NewGuideStore(c.db)
	return nil
}

// Stop closes the connection pool.
func (c *Component) Stop(_ context.Context) error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *Component) Health(ctx context.Context) component.Health {
	if !c.cfg.Enabled {
		return component.Health{Name: c.Name(), Status: component.StatusHealthy, Message: "disabled"}
	}
	if c.db == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "database not initialized"}
	}

	h := c.db.CheckHealth(ctx)
	if !h.Connected {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: fmt.Sprintf("ping failed: %s", h.Error)}
	}
	return component.Health{
		Name:    c.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("open=%d in_use=%d latency=%s", h.OpenConns, h.InUseConns, h.Latency),
	}
}

// Describe returns the startup summary line.
func (c *Component) Describe() component.Description {
	if !c.cfg.Enabled {
		return component.Description{Name: "Database", Type: "database", Details: "disabled"}
	}
	details := fmt.Sprintf("%s %s pool=%d/%d", c.cfg.Driver, c.cfg.DSN, c.cfg.MaxOpenConns, c.cfg.MaxIdleConns)
	if c.cfg.AutoMigrate {
		details += " auto-migrate=on"
	}
	return component.Description{Name: "Database", Type: "database", Details: details}
}
