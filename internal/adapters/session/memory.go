// Package session provides SessionStore implementations for admin bearer tokens.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/poyrazK/keyportal/internal/core/domain"
	"github.com/poyrazK/keyportal/internal/infrastructure/metrics"
)

type memoryEntry struct {
	session   domain.Session
	expiresAt time.Time // zero means no expiry
}

// MemoryStore keeps sessions in a process-local map. Entries are written once
// and only read afterwards, so a single RWMutex is enough.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memoryEntry
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]memoryEntry),
		now:   time.Now,
	}
}

func (m *MemoryStore) Put(_ context.Context, s domain.Session, ttl time.Duration) error {
	e := memoryEntry{session: s}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.items[s.Token] = e
	n := len(m.items)
	m.mu.Unlock()

	metrics.SessionsActive.Set(float64(n))
	return nil
}

func (m *MemoryStore) Get(_ context.Context, token string) (*domain.Session, error) {
	m.mu.RLock()
	e, ok := m.items[token]
	m.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		return nil, nil
	}
	s := e.session
	return &s, nil
}

func (m *MemoryStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	delete(m.items, token)
	n := len(m.items)
	m.mu.Unlock()

	metrics.SessionsActive.Set(float64(n))
	return nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

// Len returns the number of stored sessions, expired ones included until swept.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Sweep removes expired sessions and returns how many were evicted.
func (m *MemoryStore) Sweep() int {
	now := m.now()

	m.mu.Lock()
	evicted := 0
	for token, e := range m.items {
		if !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
			delete(m.items, token)
			evicted++
		}
	}
	n := len(m.items)
	m.mu.Unlock()

	metrics.SessionsActive.Set(float64(n))
	return evicted
}

// Run sweeps on every tick until ctx is cancelled.
func (m *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}
