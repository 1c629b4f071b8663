package store

import (
	"context"
	"slices"
	"sync"
)

type MemoryBackend struct {
	mu   sync.RWMutex
	data []byte
	fail error
}

func NewMemoryBackend() *MemoryBackend { return &MemoryBackend{} }

func (m *MemoryBackend) Read(_ context.Context) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.fail != nil {
		return nil, m.fail
	}
	if m.data == nil {
		return nil, ErrNotFound
	}
	return slices.Clone(m.data), nil
}

func (m *MemoryBackend) Write(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.data = slices.Clone(data)
	return nil
}

// Set replaces the stored bytes directly, bypassing the adapter.
func (m *MemoryBackend) Set(data []byte) {
	m.mu.Lock()
	m.data = slices.Clone(data)
	m.mu.Unlock()
}

// Bytes returns what is currently stored, nil if nothing is.
func (m *MemoryBackend) Bytes() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.data)
}

// FailWith makes every subsequent Read and Write return err. nil clears it.
func (m *MemoryBackend) FailWith(err error) {
	m.mu.Lock()
	m.fail = err
	m.mu.Unlock()
}

func (m *MemoryBackend) Close() error { return nil }
