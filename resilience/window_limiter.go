package resilience

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrRateLimited is returned by fail-fast admission when the current window
// is exhausted.
var ErrRateLimited = errors.New("rate limit exceeded")

// WindowConfig configures a fixed-window limiter.
type WindowConfig struct {
	// Name identifies the limiter in status output and metrics.
	Name string
	// Capacity is the maximum number of admitted calls per window.
	Capacity int
	// Window is the length of one window.
	Window time.Duration
	// Clock overrides time.Now. Tests use it to step through windows.
	Clock func() time.Time
	// OnDeny is called after a denied admission, outside the lock.
	OnDeny func(name string)
}

// WindowStatus is a read-only view of a limiter's current window.
type WindowStatus struct {
	Name        string        `json:"name"`
	Capacity    int           `json:"capacity"`
	Count       int           `json:"count"`
	Remaining   int           `json:"remaining"`
	Window      time.Duration `json:"-"`
	WindowStart time.Time     `json:"windowStart"`
	ResetAt     time.Time     `json:"resetAt"`
}

// WindowLimiter admits at most Capacity calls per fixed window.
//
// Windows are aligned to the first window start: when one or more whole
// windows have elapsed, the count resets and windowStart advances by that
// many windows. All admission decisions are serialized, so count never
// exceeds capacity regardless of the number of concurrent callers.
type WindowLimiter struct {
	name     string
	capacity int
	window   time.Duration
	now      func() time.Time
	onDeny   func(string)

	mu          sync.Mutex
	windowStart time.Time
	count       int
}

// NewWindowLimiter creates a limiter whose first window starts now.
func NewWindowLimiter(cfg WindowConfig) (*WindowLimiter, error) {
	if cfg.Capacity <= 0 {
		return nil, fmt.Errorf("rate limiter %q: capacity must be positive (got %d)", cfg.Name, cfg.Capacity)
	}
	if cfg.Window <= 0 {
		return nil, fmt.Errorf("rate limiter %q: window must be positive (got %s)", cfg.Name, cfg.Window)
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	return &WindowLimiter{
		name:        cfg.Name,
		capacity:    cfg.Capacity,
		window:      cfg.Window,
		now:         now,
		onDeny:      cfg.OnDeny,
		windowStart: now(),
	}, nil
}

// Name returns the limiter name.
func (l *WindowLimiter) Name() string { return l.name }

// TryAdmit records one call if the current window has room and reports
// whether it was admitted.
func (l *WindowLimiter) TryAdmit() bool {
	l.mu.Lock()
	l.advance(l.now())
	admitted := l.count < l.capacity
	if admitted {
		l.count++
	}
	l.mu.Unlock()

	if !admitted && l.onDeny != nil {
		l.onDeny(l.name)
	}
	return admitted
}

// Status returns the effective state of the current window. Reading never
// resets the window; an elapsed window is reported as empty without being
// stored.
func (l *WindowLimiter) Status() WindowStatus {
	l.mu.Lock()
	start, count := l.effective(l.now())
	l.mu.Unlock()

	return WindowStatus{
		Name:        l.name,
		Capacity:    l.capacity,
		Count:       count,
		Remaining:   l.capacity - count,
		Window:      l.window,
		WindowStart: start,
		ResetAt:     start.Add(l.window),
	}
}

// Wait blocks until a call is admitted or ctx is done. Each denial sleeps
// until the end of the current window before trying again.
func (l *WindowLimiter) Wait(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if l.TryAdmit() {
			return nil
		}

		l.mu.Lock()
		start, _ := l.effective(l.now())
		delay := start.Add(l.window).Sub(l.now())
		l.mu.Unlock()
		if delay <= 0 {
			continue
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// advance moves the stored window forward to contain now. Caller holds mu.
func (l *WindowLimiter) advance(now time.Time) {
	start, count := l.effective(now)
	l.windowStart, l.count = start, count
}

// effective computes the window containing now without storing it. Caller holds mu.
func (l *WindowLimiter) effective(now time.Time) (time.Time, int) {
	elapsed := now.Sub(l.windowStart)
	if elapsed < l.window {
		return l.windowStart, l.count
	}
	windows := elapsed / l.window
	return l.windowStart.Add(windows * l.window), 0
}

// Acquire admits one call according to policy.
func (l *WindowLimiter) Acquire(ctx context.Context, policy Policy) error {
	if policy == PolicyFailFast {
		if !l.TryAdmit() {
			return fmt.Errorf("%s: %w", l.name, ErrRateLimited)
		}
		return nil
	}
	return l.Wait(ctx)
}
