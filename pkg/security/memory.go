package security

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process AttemptStore and TokenStore for a single
// instance or tests.
type MemoryStore struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	tokens   map[string]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		attempts: make(map[string][]time.Time),
		tokens:   make(map[string]time.Time),
	}
}

func (m *MemoryStore) Hit(_ context.Context, key string, now time.Time, window time.Duration, max int) (Window, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := now.Add(-window)
	kept := m.attempts[key][:0]
	for _, at := range m.attempts[key] {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}

	w := Window{Allowed: len(kept) < max}
	if w.Allowed {
		kept = append(kept, now)
	}
	m.attempts[key] = kept
	w.Count = len(kept)
	if len(kept) > 0 {
		w.Oldest = kept[0]
	}
	return w, nil
}

func (m *MemoryStore) Reset(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.attempts, key)
	return nil
}

func (m *MemoryStore) Save(_ context.Context, token string, expiresAt time.Time, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token] = expiresAt
	return nil
}

func (m *MemoryStore) Take(_ context.Context, token string) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiresAt, ok := m.tokens[token]
	delete(m.tokens, token)
	return expiresAt, ok, nil
}
