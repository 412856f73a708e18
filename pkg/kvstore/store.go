// Package kvstore provides the key-value persistence collaborator behind the
// identity manager. The manager owns exactly one reserved key; other keys in
// the store belong to other components and are never touched.
package kvstore

import (
	"context"
	"sync"
)

// Store is a minimal synchronous key-value slot store.
type Store interface {
	// Get returns the value for key and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set writes key to value, overwriting any prior entry.
	Set(ctx context.Context, key, value string) error
	// Remove deletes the key entirely. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}

// Memory is an in-memory Store, used in tests and storage-less dev setups.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Len reports the number of stored keys.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}
