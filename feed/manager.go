package feed

import (
	"log"
	"sync"

	"pennywise/backend/backend"
)

// Manager owns one live feed per signed-in user. It is the single place that
// starts and tears down subscriptions; handlers only ever read through it.
type Manager struct {
	coll backend.Collection

	mu    sync.Mutex
	feeds map[string]*Feed
}

func NewManager(coll backend.Collection) *Manager {
	return &Manager{coll: coll, feeds: make(map[string]*Feed)}
}

// Feed returns the live feed for userID, subscribing on first use.
func (m *Manager) Feed(userID string) *Feed {
	m.mu.Lock()
	defer m.mu.Unlock()

	if f, ok := m.feeds[userID]; ok {
		return f
	}
	f := New(m.coll, userID)
	if err := f.Start(); err != nil {
		log.Printf("Failed to start expense feed for %s: %v", userID, err)
	}
	m.feeds[userID] = f
	return f
}

// Drop tears down userID's feed, e.g. on sign-out.
func (m *Manager) Drop(userID string) {
	m.mu.Lock()
	f, ok := m.feeds[userID]
	delete(m.feeds, userID)
	m.mu.Unlock()

	if ok {
		f.Stop()
	}
}

// Close tears down every feed.
func (m *Manager) Close() {
	m.mu.Lock()
	feeds := make([]*Feed, 0, len(m.feeds))
	for _, f := range m.feeds {
		feeds = append(feeds, f)
	}
	m.feeds = make(map[string]*Feed)
	m.mu.Unlock()

	for _, f := range feeds {
		f.Stop()
	}
}
