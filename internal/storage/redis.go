package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/mockprep-backend/internal/config"
)

// RedisStore keeps values as plain Redis strings without expiry.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := s.rdb.Get(ctx, config.CacheKey.KVValueKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fault("get", key, err)
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.rdb.Set(ctx, config.CacheKey.KVValueKey(key), value, 0).Err(); err != nil {
		return fault("set", key, err)
	}
	return nil
}
