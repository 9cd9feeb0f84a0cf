// internal/store/memory.go
//
// In-memory implementations of the puzzle and session stores.
// Active puzzles and sessions are ephemeral play state; durable records
// (ratings, results) live in SQLite.
//
// Characteristics:
//   - Keyed by ID in maps, concurrency-safe via RWMutex.
//   - State is lost when the process restarts.
//   - Errors are returned for missing IDs on Get().

package store

import (
	"context"
	"errors"
	"sync"

	"github.com/robalobadob/rhymegrid/internal/challenge"
	"github.com/robalobadob/rhymegrid/internal/session"
)

// ErrNotFound is returned when an ID is unknown.
var ErrNotFound = errors.New("store: not found")

// PuzzleStore persists generated puzzles for the duration of play.
type PuzzleStore interface {
	Save(ctx context.Context, p *challenge.Puzzle) error
	Get(ctx context.Context, id string) (*challenge.Puzzle, error)
}

// SessionStore persists in-progress sessions.
type SessionStore interface {
	Save(ctx context.Context, s *session.Session) error
	Get(ctx context.Context, id string) (*session.Session, error)
	// Delete discards a terminal or abandoned session.
	Delete(ctx context.Context, id string) error
}

type puzzleMemory struct {
	mu      sync.RWMutex
	puzzles map[string]*challenge.Puzzle
}

// NewPuzzleStore constructs an in-memory PuzzleStore.
func NewPuzzleStore() PuzzleStore {
	return &puzzleMemory{puzzles: make(map[string]*challenge.Puzzle)}
}

func (m *puzzleMemory) Save(ctx context.Context, p *challenge.Puzzle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puzzles[p.ID] = p
	return nil
}

func (m *puzzleMemory) Get(ctx context.Context, id string) (*challenge.Puzzle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.puzzles[id]; ok {
		return p, nil
	}
	return nil, ErrNotFound
}

type sessionMemory struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
}

// NewSessionStore constructs an in-memory SessionStore.
func NewSessionStore() SessionStore {
	return &sessionMemory{sessions: make(map[string]*session.Session)}
}

func (m *sessionMemory) Save(ctx context.Context, s *session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *sessionMemory) Get(ctx context.Context, id string) (*session.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

func (m *sessionMemory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
