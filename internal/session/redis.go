package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tariffnom/tariffnom/internal/core/errx"
	logx "github.com/tariffnom/tariffnom/pkg/logger"
)

// RedisStore persists client-side state in Redis. Durable keys have no
// expiry; tab-scoped keys are namespaced by the tab identifier and carry
// a TTL so an abandoned tab's state disappears on its own.
type RedisStore struct {
	rdb    redis.Cmdable
	tabID  string
	tabTTL time.Duration
}

func NewRedisStore(rdb redis.Cmdable, tabID string, tabTTL time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, tabID: tabID, tabTTL: tabTTL}
}

func (s *RedisStore) key(scope Scope, key string) string {
	if scope == Tab {
		return fmt.Sprintf("tariffnom:tab:%s:%s", s.tabID, key)
	}
	return "tariffnom:durable:" + key
}

func (s *RedisStore) Get(ctx context.Context, scope Scope, key string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, s.key(scope, key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to read state from redis")
		return "", false, errx.WrapStore(err)
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, scope Scope, key string, value string) error {
	ttl := time.Duration(0)
	if scope == Tab {
		ttl = s.tabTTL
	}
	if err := s.rdb.Set(ctx, s.key(scope, key), value, ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to write state to redis")
		return errx.WrapStore(err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, scope Scope, key string) error {
	if err := s.rdb.Del(ctx, s.key(scope, key)).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to delete state from redis")
		return errx.WrapStore(err)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
