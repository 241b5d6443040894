package store

import (
	"context"
	"sync"
	"time"
)

// memoryEntry holds a stored value and its expiry. A zero expiresAt means
// the entry never expires.
type memoryEntry struct {
	val       []byte
	expiresAt time.Time
}

// Memory is an in-memory Store for single-process deployments and tests.
// Updates are serialized by a mutex, which is sufficient here because the
// state is not shared across processes.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Update implements Store.
func (m *Memory) Update(ctx context.Context, key string, ttl time.Duration, fn UpdateFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	prev, found := m.get(key)
	next, write, err := fn(prev, found)
	if err != nil {
		return err
	}
	if !write {
		return nil
	}

	e := memoryEntry{val: next}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.entries[key] = e
	return nil
}

// Fetch implements Store.
func (m *Memory) Fetch(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	val, found := m.get(key)
	return val, found, nil
}

// Len returns the number of live entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for key := range m.entries {
		if _, ok := m.get(key); ok {
			n++
		}
	}
	return n
}

// get returns the live value for key, expiring it lazily if its TTL passed.
// Callers must hold mu.
func (m *Memory) get(key string) ([]byte, bool) {
	e, found := m.entries[key]
	if !found {
		return nil, false
	}
	if !e.expiresAt.IsZero() && m.now().After(e.expiresAt) {
		delete(m.entries, key)
		return nil, false
	}
	return e.val, true
}
