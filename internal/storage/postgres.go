package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const kvSchema = `
	CREATE TABLE IF NOT EXISTS kv_store (
		key   TEXT PRIMARY KEY,
		value JSONB NOT NULL
	)
`

// PostgresStore implements Store over a single kv table. It exists for
// deployments that want the ledger on a shared database instead of a
// profile-local file; the contract is identical.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore bootstraps the kv table and returns the store.
func NewPostgresStore(ctx context.Context, db *pgxpool.Pool) (*PostgresStore, error) {
	if _, err := db.Exec(ctx, kvSchema); err != nil {
		return nil, fmt.Errorf("postgres store: create schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRow(context.Background(),
		`SELECT value FROM kv_store WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("postgres store: get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *PostgresStore) Set(key string, value []byte) error {
	_, err := s.db.Exec(context.Background(), `
		INSERT INTO kv_store (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("postgres store: set %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Delete(key string) error {
	_, err := s.db.Exec(context.Background(),
		`DELETE FROM kv_store WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("postgres store: delete %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Keys() ([]string, error) {
	rows, err := s.db.Query(context.Background(), `SELECT key FROM kv_store`)
	if err != nil {
		return nil, fmt.Errorf("postgres store: list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("postgres store: scan key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres store: iterate keys: %w", err)
	}
	return keys, nil
}

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
