package file

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/letsssgooo/quizquirk/internal/storage"
	"github.com/spf13/afero"
)

// Storage реализует storage.Storage в каталоге: один JSON-файл на ключ.
type Storage struct {
	fs  afero.Fs
	dir string
	mu  sync.Mutex
}

// NewStorage создаёт каталог, если его нет.
func NewStorage(fs afero.Fs, dir string) (*Storage, error) {
	if dir == "" {
		return nil, errors.New("data directory is empty")
	}

	if err := fs.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("can not create %s: %w", dir, err)
	}

	return &Storage{fs: fs, dir: dir}, nil
}

func (s *Storage) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+".json")
}

func (s *Storage) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := afero.ReadFile(s.fs, s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return data, nil
}

// Set записывает значение во временный файл и переименовывает его,
// поэтому прерванная запись не портит старое значение.
func (s *Storage) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := afero.TempFile(s.fs, s.dir, url.PathEscape(key)+".*.tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()

	_, err = tmp.Write(value)
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = s.fs.Rename(name, s.path(key))
	}

	if err != nil {
		_ = s.fs.Remove(name)
		return fmt.Errorf("can not write %s: %w", key, err)
	}

	return nil
}

func (s *Storage) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.fs.Remove(s.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	return nil
}

func (s *Storage) Close() error {
	return nil
}
