package anonymize

import (
	"context"
	"sync"

	"veil/pkg/sentinel"
)

// BudgetStore tracks cumulative differential-privacy epsilon spend per
// session. Each anonymization level carries its own cap, so spend is
// accounted per (session, scope): releases at one level never consume the
// budget of another. Spend is monotonically non-decreasing within a scope
// and never silently exceeds the cap: an over-cap release is refused whole.
type BudgetStore interface {
	// Spend atomically adds epsilon to the session's spend within scope if
	// the result stays within cap, returning the new cumulative spend for
	// that scope. Returns sentinel.ErrBudgetExhausted without recording
	// anything otherwise.
	Spend(ctx context.Context, sessionID, scope string, epsilon, cap float64) (float64, error)

	// Spent returns the session's cumulative spend across all scopes.
	Spent(ctx context.Context, sessionID string) (float64, error)

	// Reset clears the session's spend in every scope, starting a fresh
	// budget window.
	Reset(ctx context.Context, sessionID string) error
}

type InMemoryBudgetStore struct {
	mu    sync.RWMutex
	spent map[string]map[string]float64
}

func NewInMemoryBudgetStore() *InMemoryBudgetStore {
	return &InMemoryBudgetStore{spent: make(map[string]map[string]float64)}
}

func (s *InMemoryBudgetStore) Spend(_ context.Context, sessionID, scope string, epsilon, cap float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	scopes := s.spent[sessionID]
	current := scopes[scope]
	next := current + epsilon
	if next > cap {
		return current, sentinel.ErrBudgetExhausted
	}
	if scopes == nil {
		scopes = make(map[string]float64)
		s.spent[sessionID] = scopes
	}
	scopes[scope] = next
	return next, nil
}

func (s *InMemoryBudgetStore) Spent(_ context.Context, sessionID string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total float64
	for _, spent := range s.spent[sessionID] {
		total += spent
	}
	return total, nil
}

func (s *InMemoryBudgetStore) Reset(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.spent, sessionID)
	return nil
}
