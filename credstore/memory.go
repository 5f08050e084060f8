package credstore

import "sync"

// Memory is an in-process [Store]. It is the default backing and the test
// substitute for the persistent implementations.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		values: make(map[string]string),
	}
}

// Get describes the get operation and its observable behavior.
func (m *Memory) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	return v, ok
}

// Set describes the set operation and its observable behavior.
func (m *Memory) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
}

// Clear describes the clear operation and its observable behavior.
func (m *Memory) Clear(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
}

// ClearAll describes the clearall operation and its observable behavior.
func (m *Memory) ClearAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values = make(map[string]string)
}

// Len reports the number of stored keys. Test helper.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.values)
}
