package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/mcdev12/cubedraft/go/internal/store"
	"github.com/sqlc-dev/pqtype"
)

const schema = `
CREATE TABLE IF NOT EXISTS draft_kv (
    namespace  TEXT        NOT NULL,
    key        TEXT        NOT NULL,
    value      JSONB,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (namespace, key)
)`

// Store persists values as JSONB rows of the draft_kv table.
type Store struct {
	db        *sql.DB
	namespace string
}

// Open connects with the postgres driver and makes sure the table exists.
func Open(ctx context.Context, dsn, namespace string) (*Store, error) {
	database, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}
	if err := database.PingContext(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := New(database, namespace)
	if err := s.Migrate(ctx); err != nil {
		database.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing connection.
func New(database *sql.DB, namespace string) *Store {
	return &Store{db: database, namespace: namespace}
}

// Migrate creates the draft_kv table when missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create draft_kv table: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value pqtype.NullRawMessage
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM draft_kv WHERE namespace = $1 AND key = $2`,
		s.namespace, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	if !value.Valid {
		return nil, store.ErrNotFound
	}
	return value.RawMessage, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO draft_kv (namespace, key, value, updated_at)
        VALUES ($1, $2, $3, now())
        ON CONFLICT (namespace, key) DO UPDATE
        SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
    `,
		s.namespace, key,
		pqtype.NullRawMessage{RawMessage: value, Valid: len(value) > 0},
	)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM draft_kv WHERE namespace = $1 AND key = $2`,
		s.namespace, key,
	); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}
