package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/guidegen/errors"
	"github.com/kbukum/guidegen/resilience"
)

// RateLimitConfig configures per-client admission.
type RateLimitConfig struct {
	// Capacity is the number of requests a client may make per window.
	Capacity int
	Window   time.Duration
	// KeyFunc extracts the client key. Defaults to the client IP.
	KeyFunc func(*gin.Context) string
	Clock   func() time.Time
	// OnDeny is called with the client key of every rejected request.
	OnDeny func(key string)
}

// RateLimit returns a Gin middleware that gives every client its own
// fixed-window budget. Rejected requests get 429 with Retry-After.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 10
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = IPBasedKey
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	clients := &clientLimiters{cfg: cfg, limiters: make(map[string]*resilience.WindowLimiter)}

	return func(c *gin.Context) {
		key := cfg.KeyFunc(c)
		limiter, err := clients.get(key)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, errors.Internal(err).ToResponse())
			return
		}
		if !limiter.TryAdmit() {
			if cfg.OnDeny != nil {
				cfg.OnDeny(key)
			}
			status := limiter.Status()
			retryAfter := max(int(status.ResetAt.Sub(cfg.Clock()).Seconds()+0.5), 1)
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			appErr := errors.RateLimited("").WithDetail("retryAfterSeconds", retryAfter)
			c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
			return
		}
		c.Next()
	}
}

// IPBasedKey extracts the client IP for use as a rate limit key.
func IPBasedKey(c *gin.Context) string {
	return c.ClientIP()
}

// clientLimiters holds one limiter per key. Limiters with nothing admitted
// in the current window are dropped at most once per window, on lookup.
type clientLimiters struct {
	cfg RateLimitConfig

	mu        sync.Mutex
	limiters  map[string]*resilience.WindowLimiter
	lastSweep time.Time
}

func (cl *clientLimiters) get(key string) (*resilience.WindowLimiter, error) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	now := cl.cfg.Clock()
	if now.Sub(cl.lastSweep) >= cl.cfg.Window {
		for k, l := range cl.limiters {
			if l.Status().Count == 0 {
				delete(cl.limiters, k)
			}
		}
		cl.lastSweep = now
	}

	if l, ok := cl.limiters[key]; ok {
		return l, nil
	}
	l, err := resilience.NewWindowLimiter(resilience.WindowConfig{
		Name:     "client:" + key,
		Capacity: cl.cfg.Capacity,
		Window:   cl.cfg.Window,
		Clock:    cl.cfg.Clock,
	})
	if err != nil {
		return nil, err
	}
	cl.limiters[key] = l
	return l, nil
}
