package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a [BucketStore] backed by Redis fixed-window counters:
// INCR plus a conditional EXPIRE on the first hit of the window. Window
// expiry rides on the key TTL, so no sweeping is needed for this backend.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore constructs a bucket store on top of the given Redis client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// Incr implements [BucketStore]. INCR is atomic server-side, so concurrent
// increments on the same bucket each observe a distinct counter value.
func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	if count == 1 {
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, 0, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		return count, window, nil
	}

	ttl, err := s.client.PTTL(ctx, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if ttl <= 0 {
		// EXPIRE on the first hit was lost; re-arm the window rather than
		// leaving an immortal counter behind.
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, 0, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		ttl = window
	}

	return count, ttl, nil
}
