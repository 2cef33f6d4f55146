package redis

import (
	"context"
	"errors"

	goredis "github.com/go-redis/redis/v8"
	"github.com/letsssgooo/quizquirk/internal/storage"
)

// Config содержит параметры подключения к Redis.
type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Storage реализует storage.Storage поверх Redis.
type Storage struct {
	rdb    *goredis.Client
	prefix string
}

// NewStorage подключается к Redis и проверяет соединение.
func NewStorage(ctx context.Context, cfg Config) (*Storage, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     4,
		MinIdleConns: 1,
	})

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return &Storage{rdb: rdb, prefix: cfg.Prefix}, nil
}

func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return value, nil
}

func (s *Storage) Set(ctx context.Context, key string, value []byte) error {
	return s.rdb.Set(ctx, s.prefix+key, value, 0).Err()
}

func (s *Storage) Remove(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.prefix+key).Err()
}

func (s *Storage) Close() error {
	return s.rdb.Close()
}
