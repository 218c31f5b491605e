package session

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/thermogrid/pkg/observability"
)

// MemoryStore keeps sessions in process memory. Sessions hold live feature
// pointers, so they cannot outlive the process anyway.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if s.IsExpired() {
		m.drop(ctx, s, "expired")
		return nil, ErrExpired
	}
	return s, nil
}

func (m *MemoryStore) Set(ctx context.Context, s *Session) error {
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	observability.Session().OnSessionCreate(ctx, s.ID)
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	m.drop(ctx, s, "deleted")
	return nil
}

func (m *MemoryStore) Cleanup(ctx context.Context) error {
	m.mu.RLock()
	var expired []*Session
	for _, s := range m.sessions {
		if s.IsExpired() {
			expired = append(expired, s)
		}
	}
	m.mu.RUnlock()

	for _, s := range expired {
		m.drop(ctx, s, "expired")
	}
	return nil
}

// drop removes s if it is still stored and resets it. Concurrent drops of the
// same session reset it once.
func (m *MemoryStore) drop(ctx context.Context, s *Session, reason string) {
	m.mu.Lock()
	cur, ok := m.sessions[s.ID]
	if ok && cur == s {
		delete(m.sessions, s.ID)
	}
	m.mu.Unlock()
	if !ok || cur != s {
		return
	}
	s.Close(ctx)
	observability.Session().OnSessionClose(ctx, s.ID, reason, time.Since(s.CreatedAt))
}

// Len returns the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Run calls Cleanup every interval until ctx is done.
func (m *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Cleanup(ctx)
		}
	}
}

var _ Store = (*MemoryStore)(nil)
