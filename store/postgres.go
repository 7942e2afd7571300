package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv_records (
	namespace  TEXT        NOT NULL,
	key        TEXT        NOT NULL,
	value      TEXT        NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (namespace, key)
)`

type PostgresStore struct {
	DB        *sql.DB
	namespace string
	now       clock
}

var _ Connector = (*PostgresStore)(nil)

func NewPostgresStore(db *sql.DB, namespace string) *PostgresStore {
	return &PostgresStore{DB: db, namespace: namespace, now: utcNow}
}

// EnsureSchema creates the records table if it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating kv_records: %w", err)
	}
	return nil
}

func (s *PostgresStore) Fetch(ctx context.Context, key string) (*Record, error) {
	rec := Record{Key: key}
	err := s.DB.QueryRowContext(ctx,
		"SELECT value, created_at, updated_at FROM kv_records WHERE namespace = $1 AND key = $2",
		s.namespace, key,
	).Scan(&rec.Value, &rec.Created, &rec.LastModified)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching %s/%s: %w", s.namespace, key, err)
	}
	rec.Created = rec.Created.UTC()
	rec.LastModified = rec.LastModified.UTC()
	return &rec, nil
}

func (s *PostgresStore) Save(ctx context.Context, key, value string) error {
	now := s.now()
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO kv_records (namespace, key, value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		s.namespace, key, value, now,
	)
	if err != nil {
		return fmt.Errorf("saving %s/%s: %w", s.namespace, key, err)
	}
	return nil
}
