package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/stemsi/mockprep-backend/internal/config"
)

// Open returns the Store selected by cfg.KVStore. pool and rdb may be nil
// when the selected backend does not need them. The returned close func is
// never nil.
func Open(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, rdb *redis.Client) (Store, func(), error) {
	noop := func() {}
	switch cfg.KVStore {
	case config.StoreRedis:
		if rdb == nil {
			return nil, noop, fmt.Errorf("KV_STORE=%s needs a redis client", cfg.KVStore)
		}
		return NewRedisStore(rdb), noop, nil
	case config.StorePostgres:
		if pool == nil {
			return nil, noop, fmt.Errorf("KV_STORE=%s needs a database pool", cfg.KVStore)
		}
		return NewPostgresStore(pool), noop, nil
	case config.StoreSQLite:
		s, err := OpenSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return s, func() { _ = s.Close() }, nil
	case config.StoreMemory:
		return NewMemoryStore(), noop, nil
	}
	return nil, noop, fmt.Errorf("unknown KV_STORE %q", cfg.KVStore)
}
