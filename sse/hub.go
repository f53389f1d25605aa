package sse

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kbukum/guidegen/logger"
	"github.com/kbukum/guidegen/pipeline"
)

// Hub tracks the streams of active runs by run ID. Finished runs stay
// queryable for the configured retention.
type Hub struct {
	cfg     Config
	mu      sync.RWMutex
	streams map[string]*Stream
}

// NewHub creates an empty hub.
func NewHub(cfg Config) *Hub {
	cfg.ApplyDefaults()
	return &Hub{cfg: cfg, streams: make(map[string]*Stream)}
}

// Open creates and registers the stream of a new run.
func (h *Hub) Open(runID string) (*Stream, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.streams[runID]; exists {
		return nil, fmt.Errorf("sse: run %s already has a stream", runID)
	}
	s := NewStream(runID, h.cfg)
	h.streams[runID] = s
	logger.Debug("[SSE_HUB] Stream opened", logger.Fields(logger.FieldRunID, runID, "active", len(h.streams)))
	return s, nil
}

// Get returns the stream of a run.
func (h *Hub) Get(runID string) (*Stream, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.streams[runID]
	return s, ok
}

// Snapshot returns the latest state of a run.
func (h *Hub) Snapshot(runID string) (pipeline.State, bool) {
	s, ok := h.Get(runID)
	if !ok {
		return pipeline.State{}, false
	}
	return s.Latest()
}

// Remove detaches and forgets a run stream.
func (h *Hub) Remove(runID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.streams[runID]; ok {
		s.Detach()
		delete(h.streams, runID)
	}
}

// Count returns the number of tracked runs.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.streams)
}

// IDs returns the tracked run IDs in sorted order.
func (h *Hub) IDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]string, 0, len(h.streams))
	for id := range h.streams {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close detaches every stream.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, s := range h.streams {
		s.Detach()
		delete(h.streams, id)
	}
	logger.Debug("[SSE_HUB] All streams closed")
}

// sweep forgets runs that finished before now minus the retention.
func (h *Hub) sweep(now time.Time) int {
	cutoff := now.Add(-h.cfg.Retention)
	h.mu.Lock()
	defer h.mu.Unlock()
	removed := 0
	for id, s := range h.streams {
		if s.finishedBefore(cutoff) {
			s.Detach()
			delete(h.streams, id)
			removed++
		}
	}
	return removed
}
