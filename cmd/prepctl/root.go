package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/stemsi/mockprep-backend/internal/config"
	"github.com/stemsi/mockprep-backend/internal/database"
	"github.com/stemsi/mockprep-backend/internal/logger"
	"github.com/stemsi/mockprep-backend/internal/storage"
)

var rootCmd = &cobra.Command{
	Use:          "prepctl",
	Short:        "Operate the MockPrep question bank and progress store",
	SilenceUsage: true,
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("kv-store", "", "Progress store backend: redis, postgres, sqlite or memory (overrides KV_STORE)")
	rootCmd.PersistentFlags().String("sqlite", "", "Path to the SQLite progress file (overrides SQLITE_PATH)")

	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(bankCmd)
	rootCmd.AddCommand(mocksCmd)
	rootCmd.AddCommand(progressCmd)
}

// loadConfig reads the environment and applies persistent flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, zerolog.Logger) {
	cfg := config.Load()
	if v, _ := cmd.Flags().GetString("kv-store"); v != "" {
		cfg.KVStore = strings.ToLower(v)
	}
	if v, _ := cmd.Flags().GetString("sqlite"); v != "" {
		cfg.SQLitePath = v
	}
	return cfg, logger.SetupWithWriter(cfg.LogLevel, "pretty", cmd.ErrOrStderr())
}

// openStore connects only the backend cfg.KVStore selects.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storage.Store, func(), error) {
	var (
		pool *pgxpool.Pool
		rdb  *redis.Client
		err  error
	)
	switch cfg.KVStore {
	case config.StorePostgres:
		if pool, err = database.NewPostgresPool(ctx, cfg, log); err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
	case config.StoreRedis:
		if rdb, err = database.NewRedisClient(ctx, cfg, log); err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
	}

	store, closeStore, err := storage.Open(ctx, cfg, pool, rdb)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		closeStore()
		if pool != nil {
			pool.Close()
		}
		if rdb != nil {
			_ = rdb.Close()
		}
	}, nil
}
