package resilience

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Policy selects how a caller reacts when a limiter denies admission.
type Policy string

const (
	// PolicyFailFast returns ErrRateLimited immediately.
	PolicyFailFast Policy = "fail-fast"
	// PolicyWait blocks until the next window admits the call.
	PolicyWait Policy = "wait"
)

// ParsePolicy parses a policy name. An empty string yields PolicyWait.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(s)) {
	case "", PolicyWait:
		return PolicyWait, nil
	case PolicyFailFast:
		return PolicyFailFast, nil
	}
	return "", fmt.Errorf("unknown rate limit policy %q (want %q or %q)", s, PolicyFailFast, PolicyWait)
}

// Registry holds the process-wide limiters, one per external budget.
type Registry struct {
	mu       sync.RWMutex
	limiters map[string]*WindowLimiter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{limiters: make(map[string]*WindowLimiter)}
}

// Register creates a limiter from cfg and stores it under cfg.Name.
func (r *Registry) Register(cfg WindowConfig) (*WindowLimiter, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("rate limiter name is required")
	}
	l, err := NewWindowLimiter(cfg)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.limiters[cfg.Name]; exists {
		return nil, fmt.Errorf("rate limiter %q already registered", cfg.Name)
	}
	r.limiters[cfg.Name] = l
	return l, nil
}

// Get returns the limiter registered under name.
func (r *Registry) Get(name string) (*WindowLimiter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.limiters[name]
	return l, ok
}

// Statuses returns the status of every limiter, sorted by name.
func (r *Registry) Statuses() []WindowStatus {
	r.mu.RLock()
	out := make([]WindowStatus, 0, len(r.limiters))
	for _, l := range r.limiters {
		out = append(out, l.Status())
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b WindowStatus) int { return strings.Compare(a.Name, b.Name) })
	return out
}
