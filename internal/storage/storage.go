package storage

import (
	"context"
	"errors"
)

// ErrNotFound возвращается, если по ключу ничего не сохранено.
var ErrNotFound = errors.New("key not found")

// Storage определяет интерфейс key/value хранилища сохранённых данных.
type Storage interface {
	// Get возвращает значение по ключу или ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение по ключу, перезаписывая старое.
	Set(ctx context.Context, key string, value []byte) error

	// Remove удаляет ключ. Удаление отсутствующего ключа не ошибка.
	Remove(ctx context.Context, key string) error

	// Close освобождает ресурсы хранилища.
	Close() error
}
