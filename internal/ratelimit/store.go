package ratelimit

import (
	"context"
	"sync"
	"time"
)

// BucketStore is the storage contract behind the limiter: one fixed-window
// counter per bucket key.
//
// Incr must be atomic: two concurrent calls on the same key must never both
// observe the same pre-increment count. Both implementations honor this (the
// in-memory store through a mutex, the Redis store through INCR).
type BucketStore interface {
	// Incr increments the bucket's counter, (re)initializing it to 1 with a
	// fresh window when the bucket is absent or its window has expired.
	// Returns the counter value after the increment and the time remaining
	// until the window resets.
	Incr(ctx context.Context, key string, window time.Duration) (count int64, reset time.Duration, err error)
}

type bucket struct {
	count     int64
	windowEnd time.Time
}

// MemoryStore is an in-process [BucketStore] guarded by a single mutex, used
// when no Redis instance is configured. Expired buckets are removed by the
// janitor worker through [MemoryStore.Sweep]; correctness does not depend on
// the sweep, Incr resets expired windows on its own.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

// NewMemoryStore constructs an empty in-memory bucket store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Incr implements [BucketStore]. The read-modify-write runs under the store
// mutex, so concurrent increments on the same bucket serialize and exactly
// one caller observes each counter value.
func (s *MemoryStore) Incr(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	b, ok := s.buckets[key]
	if !ok || !now.Before(b.windowEnd) {
		b = &bucket{count: 1, windowEnd: now.Add(window)}
		s.buckets[key] = b
		return 1, window, nil
	}

	b.count++
	return b.count, b.windowEnd.Sub(now), nil
}

// Sweep removes every bucket whose window has expired at now and returns the
// number of buckets removed. Pure housekeeping, independent of the request
// path.
func (s *MemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, b := range s.buckets {
		if !now.Before(b.windowEnd) {
			delete(s.buckets, key)
			removed++
		}
	}
	return removed
}
