package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileBackend keeps the document in one JSON file. Writes go to a temp file
// that is renamed over the target so readers never see a partial document.
type FileBackend struct {
	path string
	mu   sync.RWMutex
}

func NewFileBackend(path string) (*FileBackend, error) {
	if path == "" {
		return nil, errors.New("file backend: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileBackend{path: path}, nil
}

func (f *FileBackend) Path() string { return f.path }

func (f *FileBackend) Read(_ context.Context) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) || (err == nil && len(data) == 0) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	return data, nil
}

func (f *FileBackend) Write(_ context.Context, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Quarantine copies unreadable bytes next to the data file.
func (f *FileBackend) Quarantine(_ context.Context, data []byte) (string, error) {
	dst := f.path + ".corrupt." + time.Now().Format("20060102_150405")
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("write quarantine file: %w", err)
	}
	return dst, nil
}

func (f *FileBackend) Close() error { return nil }
