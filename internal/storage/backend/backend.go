package backend

import (
	"context"
	"fmt"

	"github.com/thehopecrystal/verify-properties/internal/config"
	"github.com/thehopecrystal/verify-properties/internal/storage"
	"github.com/thehopecrystal/verify-properties/internal/storage/memory"
	"github.com/thehopecrystal/verify-properties/internal/storage/postgres"
	"github.com/thehopecrystal/verify-properties/internal/storage/redis"
	"github.com/thehopecrystal/verify-properties/internal/storage/sqlite"
)

// Open connects the storage backend named by cfg.StorageDriver. The returned
// close function releases its connections.
func Open(ctx context.Context, cfg *config.Config) (storage.Storage, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StorageDriver {
	case config.DriverMemory:
		return memory.New(), noop, nil
	case config.DriverSQLite:
		s, err := sqlite.New(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	case config.DriverPostgres:
		s, err := postgres.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	case config.DriverRedis:
		s, err := redis.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	}

	return nil, noop, fmt.Errorf(`unknown storage driver %q`, cfg.StorageDriver)
}
