package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// SQLKV implements KeyValueStore over the kv table. The SQLite and PostgreSQL
// providers embed it; placeholders are rebound for the driver in use.
type SQLKV struct {
	DB *sqlx.DB
}

func (s *SQLKV) ensureOpen() error {
	if s.DB == nil {
		return fmt.Errorf("storage not loaded")
	}
	return nil
}

func (s *SQLKV) Get(ctx context.Context, key string) ([]byte, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}
	var value []byte
	err := s.DB.GetContext(ctx, &value, s.DB.Rebind("SELECT value FROM kv WHERE key = ?"), key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLKV) Set(ctx context.Context, key string, value []byte) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	query := s.DB.Rebind(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`)
	if _, err := s.DB.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func (s *SQLKV) Delete(ctx context.Context, key string) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	if _, err := s.DB.ExecContext(ctx, s.DB.Rebind("DELETE FROM kv WHERE key = ?"), key); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

func (s *SQLKV) Keys(ctx context.Context, prefix string) ([]string, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}
	var keys []string
	err := s.DB.SelectContext(ctx, &keys, s.DB.Rebind("SELECT key FROM kv WHERE key LIKE ? ORDER BY key"), prefix+"%")
	if err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	return keys, nil
}
