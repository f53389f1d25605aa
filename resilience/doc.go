// Package resilience guards calls to external providers.
//
//   - WindowLimiter admits at most N calls per fixed window and is shared
//     process-wide through a Registry, one limiter per provider budget.
//   - Retry repeats a failed upstream call with exponential backoff.
//   - CircuitBreaker fails fast while a provider keeps failing.
//
// A provider call typically composes all three:
//
//	if err := limiter.Acquire(ctx, resilience.PolicyWait); err != nil {
//	    return err
//	}
//	resp, err := resilience.Retry(ctx, retryCfg, func() (*Response, error) {
//	    var r *Response
//	    err := breaker.Execute(func() (err error) { r, err = do(ctx); return err })
//	    return r, err
//	})
package resilience
