package geocode

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/kbukum/guidegen/logger"
	"github.com/kbukum/guidegen/observability"
	"github.com/kbukum/guidegen/resilience"
)

// maxAddressLen bounds accepted addresses; longer input is malformed.
const maxAddressLen = 256

// Resolver turns free-text addresses into coordinates. Every provider call
// passes the shared limiter first, including calls from batch workers.
type Resolver struct {
	provider   Provider
	limiter    *resilience.WindowLimiter
	policy     resilience.Policy
	strategies []Strategy
	workers    int
	metrics    *observability.Metrics
	log        *logger.Logger
	cache      Cache
	cacheTTL   time.Duration
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPolicy sets the reaction to a denied admission. Defaults to wait.
func WithPolicy(p resilience.Policy) Option {
	return func(r *Resolver) { r.policy = p }
}

// WithWorkers bounds concurrent lookups in ResolveBatch.
func WithWorkers(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithStrategies replaces the query strategies.
func WithStrategies(s ...Strategy) Option {
	return func(r *Resolver) { r.strategies = s }
}

// WithMetrics overrides the metrics instruments.
func WithMetrics(m *observability.Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

// WithCache answers repeated queries from c. Cached answers skip the
// limiter and the provider.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(r *Resolver) {
		r.cache = c
		r.cacheTTL = ttl
	}
}

// NewResolver creates a resolver over provider. A nil limiter admits
// every call.
func NewResolver(provider Provider, limiter *resilience.WindowLimiter, opts ...Option) *Resolver {
	r := &Resolver{
		provider:   provider,
		limiter:    limiter,
		policy:     resilience.PolicyWait,
		strategies: DefaultStrategies(),
		workers:    4,
		log:        logger.WithComponent("geocode"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.metrics == nil {
		r.metrics = observability.Default()
	}
	return r
}

// Resolve tries each strategy in order and returns the first match. A nil
// result with a nil error means no strategy matched. Errors are limited to
// admission denial under the fail-fast policy and context cancellation;
// provider failures count as a miss of that strategy.
func (r *Resolver) Resolve(ctx context.Context, address, hint string) (*Result, error) {
	address = normalizeInput(address)
	if address == "" {
		return nil, nil
	}
	hint = strings.TrimSpace(hint)

	ctx, span := observability.StartSpan(ctx, "geocode.resolve",
		attribute.String(observability.AttrProvider, r.provider.Name()))
	res, err := r.resolve(ctx, address, hint)
	if res != nil {
		span.SetAttributes(attribute.String("query", res.QueryUsed))
	}
	observability.EndSpan(span, err)
	return res, err
}

func (r *Resolver) resolve(ctx context.Context, address, hint string) (*Result, error) {
	tried := make(map[string]bool, len(r.strategies))
	for _, s := range r.strategies {
		query, ok := s.Query(address, hint)
		if !ok || tried[strings.ToLower(query)] {
			continue
		}
		tried[strings.ToLower(query)] = true

		lookup, err := r.lookup(ctx, query)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if errors.Is(err, resilience.ErrRateLimited) ||
				errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			r.log.Warn("Geocoding lookup failed", logger.Fields(
				logger.FieldProvider, r.provider.Name(),
				"strategy", s.Name(),
				logger.FieldError, err.Error(),
			))
			continue
		}
		if lookup.Outcome != OutcomeMatch {
			r.log.Debug("Geocoding miss", logger.Fields("strategy", s.Name(), "outcome", lookup.Outcome.String()))
			continue
		}

		r.metrics.RecordResolve(ctx, s.Name())
		return &Result{
			Address:          address,
			Coordinates:      lookup.Coordinates,
			FormattedAddress: lookup.FormattedAddress,
			ConfidenceLevel:  lookup.Confidence,
			QueryUsed:        query,
		}, nil
	}

	r.metrics.RecordResolve(ctx, "")
	return nil, nil
}

// lookup answers query from the cache when possible, otherwise from the
// provider after admission. Provider answers are cached, misses included.
func (r *Resolver) lookup(ctx context.Context, query string) (Lookup, error) {
	key := r.provider.Name() + ":" + strings.ToLower(query)
	if r.cache != nil {
		cached, err := r.cache.Load(ctx, key)
		if err != nil {
			r.log.Warn("Geocode cache read failed", logger.Fields(logger.FieldError, err.Error()))
		} else if cached != nil {
			return *cached, nil
		}
	}

	if r.limiter != nil {
		if err := r.limiter.Acquire(ctx, r.policy); err != nil {
			return Lookup{}, err
		}
	}
	lookup, err := r.provider.Lookup(ctx, query)
	if err != nil {
		return Lookup{}, err
	}

	if r.cache != nil {
		if err := r.cache.Save(ctx, key, &lookup, r.cacheTTL); err != nil {
			r.log.Warn("Geocode cache write failed", logger.Fields(logger.FieldError, err.Error()))
		}
	}
	return lookup, nil
}

// ResolveBatch resolves every address independently. Results keep the
// input order; empty or malformed addresses and failed resolutions yield
// nil at their position.
func (r *Resolver) ResolveBatch(ctx context.Context, addresses []string, hint string) BatchResult {
	return r.ResolveBatchProgress(ctx, addresses, hint, nil)
}

// ResolveBatchProgress is ResolveBatch with a callback after each finished
// address. The callback may run on several goroutines at once.
func (r *Resolver) ResolveBatchProgress(ctx context.Context, addresses []string, hint string, onDone func(done, total int)) BatchResult {
	results := make([]*Result, len(addresses))
	var finished atomic.Int64

	var g errgroup.Group
	g.SetLimit(r.workers)
	// Denials tend to come in runs; log the first one only.
	var errOnce sync.Once
	for i, addr := range addresses {
		g.Go(func() error {
			defer func() {
				if onDone != nil {
					onDone(int(finished.Add(1)), len(addresses))
				}
			}()
			if ctx.Err() != nil {
				return nil
			}
			res, err := r.Resolve(ctx, addr, hint)
			if err != nil {
				errOnce.Do(func() {
					r.log.Warn("Batch item not resolved", logger.Fields("index", i, logger.FieldError, err.Error()))
				})
				return nil
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	successful := 0
	for _, res := range results {
		if res != nil {
			successful++
		}
	}
	r.log.Info("Batch resolved", logger.Fields("total", len(addresses), "successful", successful))
	return BatchResult{Results: results, Total: len(addresses), Successful: successful}
}

func normalizeInput(address string) string {
	address = strings.Join(strings.Fields(address), " ")
	if len(address) > maxAddressLen {
		return ""
	}
	return address
}
