// internal/rating/memory.go
//
// In-memory implementation of the rating Repository interface.
// Used for tests and when durability is not required.
//
// Characteristics:
//   - Stores copies keyed by player ID (callers never share record pointers).
//   - Concurrency-safe via RWMutex.
//   - State is lost when the process restarts.

package rating

import (
	"context"
	"sync"
)

// memory is an in-memory map-based Repository implementation.
type memory struct {
	mu      sync.RWMutex
	records map[string]PlayerRating
}

// NewMemoryRepository constructs a new in-memory Repository.
func NewMemoryRepository() Repository {
	return &memory{records: make(map[string]PlayerRating)}
}

// Get looks up a record by player ID.
func (m *memory) Get(ctx context.Context, playerID string) (*PlayerRating, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.records[playerID]; ok {
		cp := r
		return &cp, nil
	}
	return nil, ErrUnknownPlayer
}

// Put adds or updates the record in the map.
func (m *memory) Put(ctx context.Context, r *PlayerRating) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[r.PlayerID] = *r
	return nil
}
