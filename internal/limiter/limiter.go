// Package limiter counts recent failed payment attempts per shopper, so a
// run of declines cannot be used to probe card numbers against the
// processor.
package limiter

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter tracks failed attempts per key within a rolling window.
type RateLimiter interface {
	// Bump registers one failed attempt for the key.
	Bump(ctx context.Context, key string) error

	// IsLimited reports whether the key has reached the failure threshold.
	IsLimited(ctx context.Context, key string) (bool, error)
}

// RedisRateLimiter implements RateLimiter with an INCR counter expiring
// after the window, shared across replicas.
type RedisRateLimiter struct {
	rdb       *redis.Client
	threshold int64
	window    time.Duration
}

// NewRedisRateLimiter creates a redis-backed limiter.
func NewRedisRateLimiter(rdb *redis.Client, threshold int64, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{rdb: rdb, threshold: threshold, window: window}
}

func counterKey(key string) string {
	return "payments:failed-attempts:" + key
}

// Bump increments the counter, starting the window on the first failure.
func (l *RedisRateLimiter) Bump(ctx context.Context, key string) error {
	k := counterKey(key)
	count, err := l.rdb.Incr(ctx, k).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		return l.rdb.Expire(ctx, k, l.window).Err()
	}
	return nil
}

// IsLimited reports whether the counter reached the threshold.
func (l *RedisRateLimiter) IsLimited(ctx context.Context, key string) (bool, error) {
	count, err := l.rdb.Get(ctx, counterKey(key)).Int64()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return count >= l.threshold, nil
}

// MemoryRateLimiter is an in-process RateLimiter for tests and single-node
// demos. It keeps per-key attempt timestamps and prunes ones outside the
// window.
type MemoryRateLimiter struct {
	mu        sync.Mutex
	threshold int
	window    time.Duration
	attempts  map[string][]time.Time

	now func() time.Time
}

// NewMemoryRateLimiter creates an empty in-process limiter.
func NewMemoryRateLimiter(threshold int, window time.Duration) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		threshold: threshold,
		window:    window,
		attempts:  make(map[string][]time.Time),
		now:       time.Now,
	}
}

// Bump records a failed attempt for the key.
func (l *MemoryRateLimiter) Bump(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attempts[key] = append(l.prune(key), l.now())
	return nil
}

// IsLimited reports whether the key failed threshold times within the
// window.
func (l *MemoryRateLimiter) IsLimited(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	recent := l.prune(key)
	l.attempts[key] = recent
	return len(recent) >= l.threshold, nil
}

// prune drops attempts older than the window. Callers hold the mutex.
func (l *MemoryRateLimiter) prune(key string) []time.Time {
	cutoff := l.now().Add(-l.window)
	recent := l.attempts[key][:0]
	for _, at := range l.attempts[key] {
		if at.After(cutoff) {
			recent = append(recent, at)
		}
	}
	return recent
}
