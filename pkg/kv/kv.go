package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/hmartinez-dev/tiendita-backend/pkg/config"
	"github.com/hmartinez-dev/tiendita-backend/pkg/logger"
)

// ErrNotFound is returned by Get when the key has never been written or
// was deleted.
var ErrNotFound = errors.New("kv: key not found")

// Store is the durable key-value contract the entity stores persist
// through. One JSON-serialized array lives under each fixed key.
// Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open builds the Store selected by the storage configuration.
func Open(ctx context.Context, cfg config.StorageConfig, redisCfg config.RedisConfig, logg *logger.Logger) (Store, error) {
	switch cfg.Driver {
	case config.StorageDriverFile:
		return NewFileStore(cfg.DataDir, cfg.Namespace)
	case config.StorageDriverSQLite:
		return NewSQLiteStore(cfg.SQLitePath, cfg.Namespace)
	case config.StorageDriverRedis:
		return NewRedisStore(ctx, redisCfg, cfg.Namespace)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
