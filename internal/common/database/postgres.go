// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rynko-workers/internal/common/config"
	"rynko-workers/internal/common/logger"

	_ "github.com/lib/pq"
)

// StaticDataSchema creates the table used by the Postgres static data store.
const StaticDataSchema = `CREATE TABLE IF NOT EXISTS node_static_data (
	node_id    TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (node_id, key)
)`

// PostgresClient wraps the SQL database connection
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres opens a PostgreSQL pool. sql.Open does not dial.
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

// ConnectPostgres opens the pool, pings with exponential backoff and
// ensures the static data table exists.
func ConnectPostgres(ctx context.Context, cfg config.PostgresConfig, log logger.Logger, maxRetries uint64) (*PostgresClient, error) {
	c, err := NewPostgres(cfg)
	if err != nil {
		return nil, err
	}
	if err := pingWithBackoff(ctx, "postgres", c.Ping, log, maxRetries); err != nil {
		_ = c.Close()
		return nil, err
	}
	if err := c.EnsureSchema(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	log.Info("Connected to PostgreSQL", map[string]interface{}{
		"host":     cfg.Host,
		"database": cfg.Database,
	})
	return c, nil
}

// Ping tests the database connection
func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// EnsureSchema creates the static data table when missing.
func (c *PostgresClient) EnsureSchema(ctx context.Context) error {
	if _, err := c.DB.ExecContext(ctx, StaticDataSchema); err != nil {
		return fmt.Errorf("failed to create node_static_data: %w", err)
	}
	return nil
}

// Close closes the database connection
func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// GetDB returns the underlying *sql.DB
func (c *PostgresClient) GetDB() *sql.DB {
	return c.DB
}
