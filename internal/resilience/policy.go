package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/time/rate"

	"docsum/internal/domain"
	"docsum/internal/logger"
)

const (
	DefaultTimeout    = 30 * time.Second
	DefaultRetries    = 1
	DefaultBackoff    = 500 * time.Millisecond
	DefaultMaxBackoff = 5 * time.Second
)

// Policy bounds a single call to an external collaborator.
type Policy struct {
	// Timeout applies to each attempt separately. Zero disables it.
	Timeout time.Duration
	// Retries is the number of extra attempts after a transient failure.
	Retries    uint64
	Backoff    time.Duration
	MaxBackoff time.Duration
	// Limiter, when set, is waited on before every attempt.
	Limiter *rate.Limiter
}

// DefaultPolicy returns a 30s timeout with one retry.
func DefaultPolicy() Policy {
	return Policy{
		Timeout:    DefaultTimeout,
		Retries:    DefaultRetries,
		Backoff:    DefaultBackoff,
		MaxBackoff: DefaultMaxBackoff,
	}
}

// NewLimiter returns a limiter for rps requests per second, or nil when rps <= 0.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

func (p Policy) backoff() retry.Backoff {
	base := p.Backoff
	if base <= 0 {
		base = DefaultBackoff
	}
	b := retry.NewExponential(base)
	if p.MaxBackoff > 0 {
		b = retry.WithCappedDuration(p.MaxBackoff, b)
	}
	b = retry.WithJitterPercent(20, b)
	return retry.WithMaxRetries(p.Retries, b)
}

// Do runs fn under the policy. Only failures reported as retryable by
// domain.IsRetryable, or attempts that hit the per-attempt timeout, are retried.
// Caller cancellation stops immediately and is returned as is.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	attempt := 0
	return retry.Do(ctx, p.backoff(), func(ctx context.Context) error {
		attempt++
		if p.Limiter != nil {
			if err := p.Limiter.Wait(ctx); err != nil {
				return err
			}
		}
		attemptCtx := ctx
		cancel := context.CancelFunc(func() {})
		if p.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, p.Timeout)
		}
		err := fn(attemptCtx)
		timedOut := err != nil && ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded)
		cancel()
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
		if timedOut || domain.IsRetryable(err) {
			logger.FromContext(ctx).Debug("transient collaborator failure", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
}
