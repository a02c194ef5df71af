package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryConfig controls the bounded-retry policy spec.md §5 assigns to
// the LLM transport: default 3 attempts, exponential backoff starting
// at 1s, capped at 30s, recoverable errors only.
type RetryConfig struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryConfig matches spec.md §5's stated defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:     3,
		InitialInterval: time.Second,
		MaxInterval:     30 * time.Second,
	}
}

// Recoverable marks an error returned from a Client method as eligible
// for retry. Errors not wrapped in Recoverable are treated as permanent
// (spec.md §7's "Fatal transport" class — authentication/quota
// rejections must not be retried).
type Recoverable struct{ Err error }

func (r Recoverable) Error() string { return r.Err.Error() }
func (r Recoverable) Unwrap() error { return r.Err }

// AsRecoverable wraps err as a Recoverable error.
func AsRecoverable(err error) error {
	if err == nil {
		return nil
	}
	return Recoverable{Err: err}
}

// retrying decorates a Client with the bounded-retry policy.
type retrying struct {
	inner Client
	cfg   RetryConfig
}

// WithRetry wraps inner so that every call retries on Recoverable errors
// per cfg, and returns immediately on any other error.
func WithRetry(inner Client, cfg RetryConfig) Client {
	return &retrying{inner: inner, cfg: cfg}
}

func (r *retrying) backoffPolicy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.cfg.InitialInterval
	b.MaxInterval = r.cfg.MaxInterval
	b.MaxElapsedTime = 0 // bounded by attempt count, not elapsed time
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(maxInt(r.cfg.MaxAttempts-1, 0))), ctx)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (r *retrying) Complete(ctx context.Context, req Request) (Response, error) {
	var resp Response
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		var err error
		resp, err = r.inner.Complete(ctx, req)
		if err == nil {
			return nil
		}
		var rec Recoverable
		if !errors.As(err, &rec) {
			return backoff.Permanent(err)
		}
		slog.Warn("llm: retrying completion after recoverable error", "attempt", attempt, "error", err)
		return err
	}, r.backoffPolicy(ctx))
	return resp, err
}

func (r *retrying) CompleteStructured(ctx context.Context, req Request, schema map[string]any, out any) error {
	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := r.inner.CompleteStructured(ctx, req, schema, out)
		if err == nil {
			return nil
		}
		var rec Recoverable
		if !errors.As(err, &rec) {
			return backoff.Permanent(err)
		}
		slog.Warn("llm: retrying structured completion after recoverable error", "attempt", attempt, "error", err)
		return err
	}, r.backoffPolicy(ctx))
}

// Stream is not retried: once a stream has started emitting events to
// the caller, restarting it from scratch would duplicate output. The
// core does not require streaming for correctness (spec.md §9).
func (r *retrying) Stream(ctx context.Context, req Request) (<-chan StreamEvent, <-chan error) {
	return r.inner.Stream(ctx, req)
}
