package staticdata

import (
	"context"
	"database/sql"

	"rynko-workers/internal/common/errors"
)

const (
	selectValueQuery = `SELECT value FROM node_static_data WHERE node_id = $1 AND key = $2`
	upsertValueQuery = `INSERT INTO node_static_data (node_id, key, value, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (node_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	deleteValueQuery = `DELETE FROM node_static_data WHERE node_id = $1 AND key = $2`
)

// PostgresStore keeps static data in the node_static_data table
// (see database.StaticDataSchema).
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, nodeID, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, selectValueQuery, nodeID, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.NewStaticDataFailedError("get", err)
	}
	return value, true, nil
}

func (s *PostgresStore) Set(ctx context.Context, nodeID, key, value string) error {
	if _, err := s.db.ExecContext(ctx, upsertValueQuery, nodeID, key, value); err != nil {
		return errors.NewStaticDataFailedError("set", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, nodeID, key string) error {
	if _, err := s.db.ExecContext(ctx, deleteValueQuery, nodeID, key); err != nil {
		return errors.NewStaticDataFailedError("delete", err)
	}
	return nil
}
