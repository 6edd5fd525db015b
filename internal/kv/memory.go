package kv

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// Memory is an in-process Store. It backs tests and stands in when the
// SQLite file cannot be opened.
type Memory struct {
	mu   sync.RWMutex
	data map[Key][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[Key][]byte)}
}

func (m *Memory) Get(_ context.Context, k Key) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[k]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(v), true, nil
}

func (m *Memory) Put(_ context.Context, k Key, v []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[k] = slices.Clone(v)
	return nil
}

func (m *Memory) Delete(_ context.Context, k Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, k)
	return nil
}

func (m *Memory) Keys(_ context.Context, prefix string) ([]Key, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Key
	for k := range m.data {
		if strings.HasPrefix(string(k), prefix) {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (m *Memory) Close() error { return nil }
