package sessionstore

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/Chiroru76/hokkaido-place-quiz/internal/placequiz"
)

// MemoryStore is a process-local store with lazy expiry.
type MemoryStore struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	rec       placequiz.Record
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
	}
}

var _ placequiz.SessionStore = (*MemoryStore)(nil)

func (s *MemoryStore) Put(_ context.Context, id string, rec placequiz.Record) error {
	rec.QuestionIDs = slices.Clone(rec.QuestionIDs)

	s.mu.Lock()
	s.entries[key(id)] = memoryEntry{rec: rec, expiresAt: now().Add(s.ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (placequiz.Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key(id)]
	if !ok {
		return placequiz.Record{}, false, nil
	}
	if !now().Before(e.expiresAt) {
		delete(s.entries, key(id))
		return placequiz.Record{}, false, nil
	}

	rec := e.rec
	rec.QuestionIDs = slices.Clone(rec.QuestionIDs)
	return rec, true, nil
}
