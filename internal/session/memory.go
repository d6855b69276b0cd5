package session

import (
	"context"
	"sync"
	"time"

	"talkbot/internal/dialogue"
)

// MemoryStore keeps states in process memory; they are lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[int64]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[int64]Entry)}
}

func (s *MemoryStore) Get(ctx context.Context, userID int64) (dialogue.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.entries[userID].State, nil
}

func (s *MemoryStore) Set(ctx context.Context, userID int64, state dialogue.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state == dialogue.StateNone {
		delete(s.entries, userID)
		return nil
	}
	s.entries[userID] = Entry{State: state, UpdatedAt: time.Now()}
	return nil
}

// Len reports how many users have a stored state.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[int64]Entry)
	return nil
}
