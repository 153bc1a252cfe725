// Package lock provides the per-order advisory lock held for the duration
// of a pipeline run, so two simultaneous requests for the same order (e.g.
// a duplicate browser submit) cannot both reach the remote API.
package lock

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker acquires an exclusive, short-lived lock per order id.
type Locker interface {
	// Acquire attempts to take the lock. When acquired it returns a release
	// function and true; when contended it returns false without error.
	Acquire(ctx context.Context, orderID string) (release func(), acquired bool, err error)
}

// RedisLocker implements Locker with a redis SET NX and a TTL, so a crashed
// request cannot hold an order hostage.
type RedisLocker struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisLocker creates a redis-backed locker.
func NewRedisLocker(rdb *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{rdb: rdb, ttl: ttl}
}

func lockKey(orderID string) string {
	return "payments:order-lock:" + orderID
}

// Acquire takes the lock via SET NX with the configured TTL.
func (l *RedisLocker) Acquire(ctx context.Context, orderID string) (func(), bool, error) {
	key := lockKey(orderID)
	ok, err := l.rdb.SetNX(ctx, key, "1", l.ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		l.rdb.Del(context.Background(), key)
	}
	return release, true, nil
}

// MemoryLocker is an in-process Locker for tests and single-node demos.
type MemoryLocker struct {
	mu    sync.Mutex
	taken map[string]struct{}
}

// NewMemoryLocker creates an empty in-process locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{taken: make(map[string]struct{})}
}

// Acquire takes the lock when free.
func (l *MemoryLocker) Acquire(ctx context.Context, orderID string) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, held := l.taken[orderID]; held {
		return nil, false, nil
	}
	l.taken[orderID] = struct{}{}
	release := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.taken, orderID)
	}
	return release, true, nil
}
