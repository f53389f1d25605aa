package sse

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/guidegen/component"
	"github.com/kbukum/guidegen/logger"
)

// Component runs the hub's retention sweep as a lifecycle-managed component.
type Component struct {
	hub  *Hub
	path string

	mu   sync.Mutex
	wg   sync.WaitGroup
	done chan struct{}
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates a component around a fresh hub.
func NewComponent(cfg Config, path string) *Component {
	return &Component{hub: NewHub(cfg), path: path}
}

// Hub returns the underlying hub.
func (c *Component) Hub() *Hub { return c.hub }

func (c *Component) Name() string { return "sse" }

// Start launches the sweep loop.
func (c *Component) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done != nil {
		return nil
	}
	c.done = make(chan struct{})

	interval := max(c.hub.cfg.Retention/4, time.Second)
	c.wg.Add(1)
	go func(done <-chan struct{}) {
		defer c.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case now := <-ticker.C:
				if n := c.hub.sweep(now); n > 0 {
					logger.Debug("[SSE_HUB] Finished runs swept", logger.Fields("removed", n))
				}
			}
		}
	}(c.done)
	return nil
}

// Stop ends the sweep loop and detaches every stream.
func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done != nil {
		close(c.done)
		c.wg.Wait()
		c.done = nil
	}
	c.hub.Close()
	return nil
}

func (c *Component) Health(_ context.Context) component.Health {
	return component.Health{
		Name:    c.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d runs tracked", c.hub.Count()),
	}
}

func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Run Streams",
		Type:    "sse",
		Details: fmt.Sprintf("Path: %s, buffer: %d", c.path, c.hub.cfg.BufferSize),
	}
}
