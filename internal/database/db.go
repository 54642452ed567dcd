package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// DB represents a database connection
type DB struct {
	*sql.DB
}

// ConnectionParams holds PostgreSQL connection parameters
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN builds the lib/pq connection string
func (p ConnectionParams) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode,
	)
}

// New creates a new database connection
func New(params ConnectionParams) (*DB, error) {
	db, err := sql.Open("postgres", params.DSN())
	if err != nil {
		return nil, err
	}

	// Check connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	// Create tables if they don't exist
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{db}, nil
}

// createTables creates the necessary tables if they don't exist
func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS prediction_history (
			storage_key TEXT PRIMARY KEY,
			payload JSONB NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)

	return err
}

// Get returns the stored payload for a key, or nil if there is none
func (db *DB) Get(ctx context.Context, key string) ([]byte, error) {
	var payload []byte

	err := db.QueryRowContext(ctx, `
		SELECT payload
		FROM prediction_history
		WHERE storage_key = $1
	`, key).Scan(&payload)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Nothing stored yet
		}
		return nil, err
	}

	return payload, nil
}

// Put upserts the payload for a key
func (db *DB) Put(ctx context.Context, key string, value []byte) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO prediction_history (storage_key, payload, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (storage_key)
		DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at
	`, key, string(value), time.Now())

	return err
}
