package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is passed to envconfig so every knob lives under one namespace.
const EnvPrefix = "tiendita"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Storage driver names accepted by TIENDITA_STORAGE_DRIVER.
const (
	StorageDriverFile   = "file"
	StorageDriverSQLite = "sqlite"
	StorageDriverRedis  = "redis"
)

type Config struct {
	App           AppConfig
	Storage       StorageConfig
	Redis         RedisConfig
	Inventory     InventoryConfig
	Notifications NotificationsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TIENDITA_APP_ENV" default:"development"`
	Port         string `envconfig:"TIENDITA_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"TIENDITA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TIENDITA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type StorageConfig struct {
	Driver string `envconfig:"TIENDITA_STORAGE_DRIVER" default:"file"`

	// DataDir holds the per-key JSON documents of the file driver.
	DataDir string `envconfig:"TIENDITA_STORAGE_DATA_DIR" default:"./data"`

	// SQLitePath is the database file of the sqlite driver.
	SQLitePath string `envconfig:"TIENDITA_STORAGE_SQLITE_PATH" default:"./data/tiendita.db"`

	// Namespace prefixes every durable key.
	Namespace string `envconfig:"TIENDITA_STORAGE_NAMESPACE" default:"tiendita"`
}

func (s StorageConfig) validate() error {
	switch s.Driver {
	case StorageDriverFile, StorageDriverSQLite, StorageDriverRedis:
		return nil
	default:
		return fmt.Errorf("unknown storage driver %q", s.Driver)
	}
}

type RedisConfig struct {
	URL          string        `envconfig:"TIENDITA_REDIS_URL"`
	Address      string        `envconfig:"TIENDITA_REDIS_ADDR"`
	Password     string        `envconfig:"TIENDITA_REDIS_PASSWORD"`
	DB           int           `envconfig:"TIENDITA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TIENDITA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TIENDITA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TIENDITA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TIENDITA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TIENDITA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type InventoryConfig struct {
	// LowStockThreshold triggers a low-stock notification when a product's
	// quantity lands at or below it.
	LowStockThreshold string `envconfig:"TIENDITA_LOW_STOCK_THRESHOLD" default:"5"`
}

type NotificationsConfig struct {
	MaxRetained   int           `envconfig:"TIENDITA_NOTIFICATIONS_MAX_RETAINED" default:"50"`
	ReadRetention time.Duration `envconfig:"TIENDITA_NOTIFICATIONS_READ_RETENTION" default:"168h"`
}
