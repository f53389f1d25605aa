package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/guidegen/component"
	"github.com/kbukum/guidegen/logger"
)

// Component owns the archive backend and implements component.Component.
type Component struct {
	cfg Config
	log *logger.Logger

	mu      sync.RWMutex
	storage Storage
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates a storage component for the registry.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, log: log.WithComponent("storage")}
}

// Storage returns the backend, or nil if not started or disabled.
func (c *Component) Storage() Storage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.storage
}

func (c *Component) Name() string { return "storage" }

// Start initializes the backend. A disabled component does nothing.
func (c *Component) Start(ctx context.Context) error {
	if !c.cfg.Enabled {
		c.log.Info("Guide archive disabled")
		return nil
	}

	s, err := New(ctx, c.cfg)
	if err != nil {
		return fmt.Errorf("storage start: %w", err)
	}
	c.mu.Lock()
	c.storage = s
	c.mu.Unlock()
	c.log.Info("Guide archive ready", logger.Fields(logger.FieldProvider, c.cfg.Provider))
	return nil
}

func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	c.storage = nil
	c.mu.Unlock()
	return nil
}

func (c *Component) Health(ctx context.Context) component.Health {
	if !c.cfg.Enabled {
		return component.Health{Name: c.Name(), Status: component.StatusHealthy, Message: "disabled"}
	}
	s := c.Storage()
	if s == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "storage not initialized"}
	}
	if _, err := s.Exists(ctx, c.cfg.Prefix); err != nil {
		// Archiving is best effort; runs still succeed.
		return component.Health{Name: c.Name(), Status: component.StatusDegraded, Message: fmt.Sprintf("health probe failed: %v", err)}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

func (c *Component) Describe() component.Description {
	details := "provider=" + c.cfg.Provider
	switch c.cfg.Provider {
	case ProviderLocal:
		details += " path=" + c.cfg.Local.BasePath
	case ProviderS3:
		details += " bucket=" + c.cfg.S3.Bucket
	}
	return component.Description{Name: "Archive", Type: "storage", Details: details}
}
