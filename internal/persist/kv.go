package persist

import (
	"sync"
)

// KV is a string key-value store. Get reports false for absent keys.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// MemKV is an in-memory KV with an optional byte quota.
type MemKV struct {
	mu    sync.RWMutex
	data  map[string]string
	quota int
}

// NewMemKV creates an empty in-memory store. A quota of 0 disables the
// size check.
func NewMemKV(quota int) *MemKV {
	return &MemKV{data: make(map[string]string), quota: quota}
}

// Get returns the value for key.
func (m *MemKV) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set stores value under key.
func (m *MemKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.quota > 0 {
		size := len(key) + len(value)
		for k, v := range m.data {
			if k != key {
				size += len(k) + len(v)
			}
		}
		if size > m.quota {
			return &OperationError{Op: "set", Key: key, Err: ErrQuotaExceeded}
		}
	}
	m.data[key] = value
	return nil
}

// Delete removes key.
func (m *MemKV) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Len returns the number of stored keys.
func (m *MemKV) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
