// Package ratelimit provides a generic fixed-window request throttle keyed
// by caller-constructed bucket strings. Quota rejections are first-class
// outcome values carrying the retry-after hint, never errors; only a bucket
// store failure surfaces as an error.
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/palmora/reading-gate/internal/logger"
)

// Result is the outcome of a limiter check.
type Result struct {
	// Allowed reports whether the request fits the bucket's budget.
	Allowed bool

	// Remaining is the number of requests left in the current window.
	// Zero when the request was denied.
	Remaining int64

	// RetryAfter is the time until the window resets. Populated only on
	// denial so callers can surface a Retry-After hint.
	RetryAfter time.Duration
}

// Limiter enforces fixed-window limits against a [BucketStore].
type Limiter struct {
	store  BucketStore
	logger *logger.Logger
}

// NewLimiter constructs a Limiter on top of the given bucket store.
func NewLimiter(store BucketStore, log *logger.Logger) *Limiter {
	return &Limiter{store: store, logger: log}
}

// Check records one attempt against bucketKey and reports whether it is
// within limit for the window.
//
// Algorithm: fixed window, not sliding. The store increments the bucket
// atomically, (re)starting the window when absent or expired; a count beyond
// limit is denied with the seconds remaining until reset. Denials emit a
// structured warning with the bucket identity for observability and are
// returned as values; the only error condition is the store being
// unreachable.
func (l *Limiter) Check(ctx context.Context, bucketKey string, limit int, window time.Duration) (Result, error) {
	count, reset, err := l.store.Incr(ctx, bucketKey, window)
	if err != nil {
		return Result{}, fmt.Errorf("rate limit check for bucket %q: %w", bucketKey, err)
	}

	if count > int64(limit) {
		retryAfter := ceilSeconds(reset)
		logger.FromContext(ctx).Warn().
			Str("bucket", bucketKey).
			Int("limit", limit).
			Dur("window", window).
			Int64("count", count).
			Dur("retry_after", retryAfter).
			Msg("rate limit exceeded")

		return Result{Allowed: false, RetryAfter: retryAfter}, nil
	}

	return Result{Allowed: true, Remaining: int64(limit) - count}, nil
}

// ceilSeconds rounds d up to a whole second so a Retry-After of 300ms does
// not truncate to zero.
func ceilSeconds(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return time.Duration(math.Ceil(d.Seconds())) * time.Second
}
