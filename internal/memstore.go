package internal

import (
	"sort"
	"sync"
)

// MemoryStorage keeps items in process memory. Nothing survives the process.
type MemoryStorage struct {
	mu    sync.Mutex
	items map[string]string
}

// NewMemoryStorage creates an empty MemoryStorage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string]string)}
}

func (m *MemoryStorage) GetItem(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *MemoryStorage) SetItem(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *MemoryStorage) RemoveItem(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *MemoryStorage) UpdateItem(key string, fn UpdateFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.items[key]
	newValue, keep, err := fn(v, ok)
	if err != nil {
		return err
	}
	if keep {
		m.items[key] = newValue
	} else {
		delete(m.items, key)
	}
	return nil
}

func (m *MemoryStorage) Items() ([]KeyValuePair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pairs := make([]KeyValuePair, 0, len(m.items))
	for k, v := range m.items {
		pairs = append(pairs, KeyValuePair{Key: k, Value: v})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Key < pairs[j].Key })
	return pairs, nil
}

func (m *MemoryStorage) Close() error {
	return nil
}
