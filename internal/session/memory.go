package session

import (
	"context"
	"sync"

	"github.com/gridironhq/league-analyst/internal/model"
)

// MemoryStore keeps sessions in process memory. A short global lock guards
// the key map; each session carries its own mutex, so turns on different
// sessions proceed independently.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*memorySession
}

type memorySession struct {
	mu    sync.Mutex
	turns []model.Turn
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*memorySession)}
}

func (s *MemoryStore) session(id string) *memorySession {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok = s.sessions[id]; ok {
		return sess
	}
	sess = &memorySession{}
	s.sessions[id] = sess
	return sess
}

// Get returns a copy of the session's turns.
func (s *MemoryStore) Get(_ context.Context, id string) ([]model.Turn, error) {
	sess := s.session(id)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	out := make([]model.Turn, len(sess.turns))
	copy(out, sess.turns)
	return out, nil
}

// Append adds one turn to the session.
func (s *MemoryStore) Append(_ context.Context, id string, turn model.Turn) error {
	sess := s.session(id)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.turns = append(sess.turns, turn)
	return nil
}

// Reset clears the session's history. The identifier stays valid.
func (s *MemoryStore) Reset(_ context.Context, id string) error {
	sess := s.session(id)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.turns = nil
	return nil
}
