package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	authclient "github.com/goliatone/go-auth-client"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultRedisPrefix = "authclient:session:"
	DefaultSessionKey  = "default"
)

var _ authclient.Persister = &RedisPersister{}

// RedisPersister keeps the session as JSON under prefix+key. The entry
// expires with the refresh token.
type RedisPersister struct {
	client redis.Cmdable
	prefix string
	key    string
	now    func() time.Time
}

func NewRedisPersister(client redis.Cmdable, prefix, key string) *RedisPersister {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	if key == "" {
		key = DefaultSessionKey
	}
	return &RedisPersister{
		client: client,
		prefix: prefix,
		key:    key,
		now:    time.Now,
	}
}

// NewRedisPersisterFromURL parses a redis:// URL
func NewRedisPersisterFromURL(url, prefix, key string) (*RedisPersister, *redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	return NewRedisPersister(client, prefix, key), client, nil
}

func (r *RedisPersister) fullKey() string {
	return r.prefix + r.key
}

func (r *RedisPersister) Load(ctx context.Context) (*authclient.Session, error) {
	val, err := r.client.Get(ctx, r.fullKey()).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session authclient.Session
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

func (r *RedisPersister) Save(ctx context.Context, session authclient.Session) error {
	b, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := r.client.Set(ctx, r.fullKey(), b, r.ttl(session)).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (r *RedisPersister) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.fullKey()).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ttl is zero, no expiry, when the session has no refresh expiry
func (r *RedisPersister) ttl(session authclient.Session) time.Duration {
	if session.RefreshExpiresAt.IsZero() {
		return 0
	}
	ttl := session.RefreshExpiresAt.Sub(r.now())
	if ttl < time.Second {
		return time.Second
	}
	return ttl
}
