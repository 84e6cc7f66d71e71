package consent

import (
	"context"
	"sync"

	"veil/pkg/sentinel"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]*ConsentRecord
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]*ConsentRecord)}
}

func (s *InMemoryStore) Create(_ context.Context, record *ConsentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[record.SubjectID]; exists {
		return sentinel.ErrConflict
	}
	s.records[record.SubjectID] = cloneRecord(record)
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, subjectID string) (*ConsentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[subjectID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneRecord(record), nil
}

func (s *InMemoryStore) Save(_ context.Context, record *ConsentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[record.SubjectID]; !ok {
		return sentinel.ErrNotFound
	}
	s.records[record.SubjectID] = cloneRecord(record)
	return nil
}

// cloneRecord copies the record and its history so callers cannot mutate
// stored state through returned pointers.
func cloneRecord(r *ConsentRecord) *ConsentRecord {
	clone := *r
	clone.History = append([]HistoryEntry{}, r.History...)
	if r.WithdrawalRequestedAt != nil {
		t := *r.WithdrawalRequestedAt
		clone.WithdrawalRequestedAt = &t
	}
	if r.PurgeScheduledFor != nil {
		t := *r.PurgeScheduledFor
		clone.PurgeScheduledFor = &t
	}
	return &clone
}
