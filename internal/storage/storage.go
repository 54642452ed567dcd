// Package storage holds the key/value backends the history is persisted to.
package storage

import (
	"context"
	"fmt"

	"github.com/Alias1177/HeartRisk/internal/config"
	"github.com/Alias1177/HeartRisk/internal/database"
)

// Storage driver names accepted by Open
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// BlobStore stores opaque values under string keys.
// Get returns nil, nil when the key has never been written.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Open creates the backend selected by cfg.StorageDriver
func Open(cfg *config.Config) (BlobStore, error) {
	switch cfg.StorageDriver {
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverFile, "":
		return NewFileStore(cfg.StoragePath)
	case DriverSQLite:
		return NewSQLiteStore(cfg.StoragePath)
	case DriverPostgres:
		db, err := database.New(database.ConnectionParams{
			Host:     cfg.DB.Host,
			Port:     cfg.DB.Port,
			User:     cfg.DB.User,
			Password: cfg.DB.Password,
			DBName:   cfg.DB.DBName,
			SSLMode:  cfg.DB.SSLMode,
		})
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
