package readstate

import "sync"

// KV is the injected key-value store backing client-local persisted state
// (read watermarks, widget state). Kept as a narrow string interface so an
// in-memory, file, or server-backed implementation can be swapped in tests.
type KV interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Remove(key string)
}

type memoryKV struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryKV returns an in-memory KV, the default for a single device.
func NewMemoryKV() KV {
	return &memoryKV{values: make(map[string]string)}
}

func (m *memoryKV) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.values[key]
	return val, ok
}

func (m *memoryKV) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

func (m *memoryKV) Remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
}
