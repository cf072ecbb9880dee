// internal/store/redis.go
//
// Redis implementation of the Store interface, used when REDIS_ADDR is set so
// several server processes can share sessions. Pair it with Redis.Locker
// (lock.go) so those processes also take turns on each session.
//
// Sessions are stored as JSON under "<prefix><id>" and expire after the TTL
// of inactivity (every Save refreshes it).

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/ashkam58/pythongrade3/internal/session"
)

const defaultPrefix = "funfair:session:"

// Redis implements Store on a go-redis client.
type Redis struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Redis)

// WithTTL sets the expiration for sessions. Zero means no expiration.
func WithTTL(ttl time.Duration) Option {
	return func(r *Redis) { r.ttl = ttl }
}

// WithPrefix sets the key prefix for sessions.
func WithPrefix(prefix string) Option {
	return func(r *Redis) { r.prefix = prefix }
}

// NewRedis connects to addr and checks the server answers.
func NewRedis(ctx context.Context, addr, password string, db int, opts ...Option) (*Redis, error) {
	client := backend.NewClient(&backend.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return NewRedisFromClient(client, opts...), nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *backend.Client, opts ...Option) *Redis {
	r := &Redis{client: client, prefix: defaultPrefix}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redis) key(id string) string { return r.prefix + id }

func (r *Redis) Save(ctx context.Context, s *session.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := r.client.Set(ctx, r.key(s.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, id string) (*session.Session, error) {
	val, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	var s session.Session
	if err := json.Unmarshal(val, &s); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &s, nil
}

func (r *Redis) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.key(id)).Err()
}

// Close releases the client.
func (r *Redis) Close() error { return r.client.Close() }
