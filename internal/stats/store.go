package stats

import (
	"sync"

	"github.com/google/uuid"
)

// RunResult ties one finished run's recorder to its identity.
type RunResult struct {
	ID   uuid.UUID `json:"id"`
	Seed int64     `json:"seed"`

	Recorder *Recorder `json:"-"`
}

// Store holds the results of a seed sweep for later retrieval. Safe for
// concurrent readers once the runs are in.
type Store struct {
	mu   sync.RWMutex
	runs []*RunResult
	byID map[uuid.UUID]*RunResult
}

// NewStore creates an empty result store.
func NewStore() *Store {
	return &Store{byID: make(map[uuid.UUID]*RunResult)}
}

// Add registers a finished run under a fresh id and returns it.
func (s *Store) Add(seed int64, rec *Recorder) *RunResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := &RunResult{ID: uuid.New(), Seed: seed, Recorder: rec}
	s.runs = append(s.runs, res)
	s.byID[res.ID] = res
	return res
}

// List returns all runs in insertion order.
func (s *Store) List() []*RunResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*RunResult, len(s.runs))
	copy(out, s.runs)
	return out
}

// Get looks a run up by id.
func (s *Store) Get(id uuid.UUID) (*RunResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res, ok := s.byID[id]
	return res, ok
}
