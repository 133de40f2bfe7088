// Package redislock implements the queen/drone leader-election mutex over
// Redis, grounded on original_source's executor/mp_executor/queen.go and
// drone.rs GETSET/SET-NX-PX role-acquisition logic, reworked against
// github.com/redis/go-redis/v9 instead of the original's redis-rs client.
package redislock

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Mutex is a single named leader-election lock backed by a Redis key whose
// value is the holder's identity token and whose TTL is the lease expiry.
type Mutex struct {
	rdb    *redis.Client
	key    string
	expiry time.Duration
}

// New returns a Mutex over key with the given lease expiry (SPEC_FULL.md's
// SIM_MUTEX_EXPIRY_MS, typically 2000ms).
func New(rdb *redis.Client, key string, expiry time.Duration) *Mutex {
	return &Mutex{rdb: rdb, key: key, expiry: expiry}
}

// TryAcquire attempts to become the leader under token, using SET NX PX so
// the lock is created atomically with its expiry. It reports whether token
// now holds the lock.
func (m *Mutex) TryAcquire(ctx context.Context, token string) (bool, error) {
	ok, err := m.rdb.SetNX(ctx, m.key, token, m.expiry).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// Renew extends the lease if token still holds it, matching the queen's
// bias toward re-acquiring its own role before a drone can steal it.
// Grounded on queen.rs's update_role: the current holder re-sets its own
// key with a fresh TTL rather than contending via SETNX.
func (m *Mutex) Renew(ctx context.Context, token string) (bool, error) {
	held, err := m.Holder(ctx)
	if err != nil {
		return false, err
	}
	if held != token {
		return false, nil
	}
	if err := m.rdb.Expire(ctx, m.key, m.expiry).Err(); err != nil {
		return false, err
	}
	return true, nil
}

// Holder returns the current lock holder's token, or "" if unheld.
func (m *Mutex) Holder(ctx context.Context) (string, error) {
	v, err := m.rdb.Get(ctx, m.key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return v, err
}

// Release clears the lock if token still holds it.
func (m *Mutex) Release(ctx context.Context, token string) error {
	held, err := m.Holder(ctx)
	if err != nil {
		return err
	}
	if held != token {
		return nil
	}
	return m.rdb.Del(ctx, m.key).Err()
}

// ForceTakeover unconditionally replaces the lock holder, the Go analogue
// of the original's biased GETSET used by a drone promoting itself after
// the queen's lease has visibly expired (Holder returning "").
func (m *Mutex) ForceTakeover(ctx context.Context, token string) error {
	return m.rdb.Set(ctx, m.key, token, m.expiry).Err()
}
