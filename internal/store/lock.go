// internal/store/lock.go
//
// Cross-process session locks. The HTTP server always serializes a session
// inside one process; when sessions live in Redis it also takes a Locker
// lock so two processes never load-mutate-save the same session at once.
//
// The Redis lock is SET NX PX with a random token. Unlock deletes the key only
// while it still holds our token, so a lock that expired and was taken by
// another process is left alone.

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrLockTimeout is returned when a lock could not be taken before ctx ended.
var ErrLockTimeout = errors.New("session busy")

// Locker takes an exclusive lock per key across processes. The returned
// unlock must be called exactly once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

const (
	defaultLockTTL  = 30 * time.Second
	lockRetryPeriod = 20 * time.Millisecond
)

var unlockScript = backend.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

// RedisLocker implements Locker with one key per session.
type RedisLocker struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Locker returns a lock manager sharing r's client. The lock keys live next
// to the session keys; ttl bounds how long a crashed holder blocks others.
func (r *Redis) Locker(ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLocker{client: r.client, prefix: r.prefix + "lock:", ttl: ttl}
}

// Lock polls SET NX until it wins or ctx is done.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	lockKey := l.prefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(lockRetryPeriod)
	defer ticker.Stop()
	for {
		ok, err := l.client.SetNX(ctx, lockKey, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
			}
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			return func() {
				// Release even when the request context is already gone.
				uctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
				defer cancel()
				if err := unlockScript.Run(uctx, l.client, []string{lockKey}, token).Err(); err != nil {
					log.Warn().Err(err).Str("session", key).Msg("release session lock (will expire)")
				}
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
		case <-ticker.C:
		}
	}
}
