// Package store provides the session persistence backends of the
// identity provider client.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/JoshDFN/cleardeck/core"
	"github.com/JoshDFN/cleardeck/ports"
)

type memoryEntry struct {
	blob      []byte
	expiresAt time.Time
}

// MemoryStore is an in-memory implementation of the SessionStore
// interface. Sessions do not survive a process restart; use the redis
// store for that.
type MemoryStore struct {
	entries map[string]memoryEntry
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() ports.SessionStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
	}
}

// Save stores the blob under key for at most ttl. A non-positive ttl
// stores without expiry.
func (s *MemoryStore) Save(ctx context.Context, key string, blob []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := memoryEntry{blob: append([]byte(nil), blob...)}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	s.entries[key] = entry
	return nil
}

// Load retrieves a blob by key.
func (s *MemoryStore) Load(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.entries[key]
	if !exists {
		return nil, core.ErrSessionNotFound
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		return nil, core.ErrSessionNotFound
	}
	return append([]byte(nil), entry.blob...), nil
}

// Delete discards the blob stored under key.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}
