package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the server-side registry of live sessions keyed by token id.
// It lets logout, rename and account deletion revoke a cookie before it
// expires.
type Store interface {
	Register(ctx context.Context, id, username string, ttl time.Duration) error
	// Lookup returns the username bound to id, or ok=false once the session
	// is revoked or expired.
	Lookup(ctx context.Context, id string) (username string, ok bool, err error)
	Revoke(ctx context.Context, id string) error
}

// RedisStore keeps sessions as "<prefix>:<jti>" keys that expire with the
// token.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "session"
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) key(id string) string { return s.prefix + ":" + id }

func (s *RedisStore) Register(ctx context.Context, id, username string, ttl time.Duration) error {
	return s.rdb.Set(ctx, s.key(id), username, ttl).Err()
}

func (s *RedisStore) Lookup(ctx context.Context, id string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, s.key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *RedisStore) Revoke(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, s.key(id)).Err()
}
