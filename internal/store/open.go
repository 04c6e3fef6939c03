package store

import (
	"context"
	"fmt"

	"github.com/i474232898/environmental-risk-aggregation/internal/config"
)

// Open creates the Backend selected by cfg.StoreBackend.
func Open(ctx context.Context, cfg *config.AppConfig) (Backend, error) {
	switch cfg.StoreBackend {
	case config.StoreMemory:
		return NewMemoryStore(), nil
	case config.StoreFile:
		return NewFileStore(cfg.StorePath)
	case config.StoreRedis:
		pool, err := NewRedisPool(cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(pool, cfg.RedisPrefix), nil
	case config.StoreSQLite:
		return NewSQLiteStore(ctx, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
