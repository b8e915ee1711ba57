package slot

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	appErr "github.com/sponsorship-studio/engine/pkg/errors"
)

// RedisStore keeps each slot key as a redis string. Session namespaces expire
// after sessionTTL of inactivity; a zero TTL keeps them forever.
type RedisStore struct {
	rdb        redis.UniversalClient
	sessionTTL time.Duration
}

func NewRedisStore(rdb redis.UniversalClient, sessionTTL time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, sessionTTL: sessionTTL}
}

var _ Store = (*RedisStore)(nil)

func redisKey(namespace, key string) string {
	return "slot:" + namespace + ":" + key
}

func (s *RedisStore) ttlFor(namespace string) time.Duration {
	if IsSessionNamespace(namespace) {
		return s.sessionTTL
	}
	return 0
}

func (s *RedisStore) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	v, err := s.rdb.Get(ctx, redisKey(namespace, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, appErr.Wrap(err, appErr.CodeUnavailable, "get slot key failed")
	}
	if ttl := s.ttlFor(namespace); ttl > 0 {
		s.rdb.Expire(ctx, redisKey(namespace, key), ttl)
	}
	return v, nil
}

func (s *RedisStore) Put(ctx context.Context, namespace, key string, value []byte) error {
	if err := s.rdb.Set(ctx, redisKey(namespace, key), value, s.ttlFor(namespace)).Err(); err != nil {
		return appErr.Wrap(err, appErr.CodeUnavailable, "put slot key failed")
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, namespace, key string) error {
	if err := s.rdb.Del(ctx, redisKey(namespace, key)).Err(); err != nil {
		return appErr.Wrap(err, appErr.CodeUnavailable, "delete slot key failed")
	}
	return nil
}
