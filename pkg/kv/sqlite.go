package kv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// record is the single table of the sqlite driver: one row per durable key.
type record struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     []byte    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (record) TableName() string {
	return "kv_records"
}

// SQLiteStore persists keys in an embedded sqlite database via GORM.
type SQLiteStore struct {
	conn      *gorm.DB
	namespace string
}

// NewSQLiteStore opens (and migrates) the database file at path.
func NewSQLiteStore(path, namespace string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating sqlite directory: %w", err)
		}
	}

	gormLogger := gormlogger.New(
		log.New(io.Discard, "", log.LstdFlags),
		gormlogger.Config{LogLevel: gormlogger.Silent},
	)

	conn, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	if err := conn.AutoMigrate(&record{}); err != nil {
		return nil, fmt.Errorf("migrating kv table: %w", err)
	}

	return &SQLiteStore{conn: conn, namespace: namespace}, nil
}

func (s *SQLiteStore) qualify(key string) string {
	if s.namespace == "" {
		return key
	}
	return s.namespace + ":" + key
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	var row record
	err := s.conn.WithContext(ctx).First(&row, "key = ?", s.qualify(key)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return row.Value, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	row := record{Key: s.qualify(key), Value: value}
	err := s.conn.WithContext(ctx).Save(&row).Error
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	err := s.conn.WithContext(ctx).Delete(&record{}, "key = ?", s.qualify(key)).Error
	if err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
