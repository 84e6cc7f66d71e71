package approval

import (
	"context"
	"sync"

	"veil/internal/domain"
	"veil/pkg/sentinel"
)

type InMemoryStore struct {
	mu          sync.RWMutex
	descriptors map[string]*domain.ResearchQueryDescriptor
	requests    map[string]*Request
	decisions   map[string][]Decision
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		descriptors: make(map[string]*domain.ResearchQueryDescriptor),
		requests:    make(map[string]*Request),
		decisions:   make(map[string][]Decision),
	}
}

func (s *InMemoryStore) SaveDescriptor(_ context.Context, descriptor *domain.ResearchQueryDescriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *descriptor
	s.descriptors[descriptor.ID] = &clone
	return nil
}

func (s *InMemoryStore) GetDescriptor(_ context.Context, queryID string) (*domain.ResearchQueryDescriptor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	descriptor, ok := s.descriptors[queryID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *descriptor
	return &clone, nil
}

func (s *InMemoryStore) UpsertRequest(_ context.Context, request *Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *request
	s.requests[request.QueryID] = &clone
	return nil
}

func (s *InMemoryStore) GetRequest(_ context.Context, queryID string) (*Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	request, ok := s.requests[queryID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *request
	return &clone, nil
}

func (s *InMemoryStore) AppendDecision(_ context.Context, decision *Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decisions[decision.QueryID] = append(s.decisions[decision.QueryID], *decision)
	return nil
}

func (s *InMemoryStore) ListDecisions(_ context.Context, queryID string) ([]Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Decision{}, s.decisions[queryID]...), nil
}
