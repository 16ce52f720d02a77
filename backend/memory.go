package backend

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Collection with no persistence. Useful for
// tests and for running the app without any database at all.
type MemoryStore struct {
	hub *hub

	mu   sync.Mutex
	data map[string]map[string]interface{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{hub: newHub(), data: make(map[string]map[string]interface{})}
}

func (m *MemoryStore) Append(ctx context.Context, path string, record map[string]interface{}) (string, error) {
	id := uuid.NewString()

	copied := make(map[string]interface{}, len(record))
	for k, v := range record {
		copied[k] = v
	}

	m.mu.Lock()
	if m.data[path] == nil {
		m.data[path] = make(map[string]interface{})
	}
	m.data[path][id] = copied
	m.mu.Unlock()

	m.hub.publish(path, m.snapshot(path))
	return id, nil
}

func (m *MemoryStore) Remove(ctx context.Context, path string) error {
	parent := parentPath(path)
	id := path[len(parent)+1:]

	m.mu.Lock()
	delete(m.data[parent], id)
	m.mu.Unlock()

	m.hub.publish(parent, m.snapshot(parent))
	return nil
}

func (m *MemoryStore) Subscribe(path string) (*Subscription, error) {
	sub := m.hub.subscribe(path)
	sub.deliver(m.snapshot(path))
	return sub, nil
}

func (m *MemoryStore) snapshot(path string) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := Snapshot{}
	for id, record := range m.data[path] {
		snap[id] = record
	}
	return snap
}
