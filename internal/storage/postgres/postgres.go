package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/letsssgooo/quizquirk/internal/storage"
)

const schema = `
	CREATE TABLE IF NOT EXISTS kv_store (
		key        TEXT PRIMARY KEY,
		value      BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

// Storage реализует storage.Storage поверх таблицы kv_store.
type Storage struct {
	pool   *pgxpool.Pool
	prefix string
}

// NewStorage подключается к Postgres и создаёт таблицу, если её нет.
// prefix добавляется ко всем ключам.
func NewStorage(ctx context.Context, dsn, prefix string) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if _, err = pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("can not create kv_store: %w", err)
	}

	return &Storage{pool: pool, prefix: prefix}, nil
}

func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	query := `
		SELECT value FROM kv_store WHERE key = $1
	`

	var value []byte
	err := s.pool.QueryRow(ctx, query, s.prefix+key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return value, nil
}

func (s *Storage) Set(ctx context.Context, key string, value []byte) error {
	query := `
	INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2, now())
	ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	_, err := s.pool.Exec(ctx, query, s.prefix+key, value)
	return err
}

func (s *Storage) Remove(ctx context.Context, key string) error {
	query := `
	DELETE FROM kv_store WHERE key = $1
	`

	_, err := s.pool.Exec(ctx, query, s.prefix+key)
	return err
}

func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}
