package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "veil/pkg/domain"
)

type CacheSuite struct {
	suite.Suite
	ctx   context.Context
	cache *InMemoryCache
	clock time.Time
}

func (s *CacheSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	s.cache = NewInMemoryCache(time.Hour)
	s.cache.now = func() time.Time { return s.clock }
}

func (s *CacheSuite) TestHitWithinTTL() {
	s.cache.Set(s.ctx, "q-1", id.AnonymizationBasic, &QueryResult{QueryID: "q-1"})

	s.clock = s.clock.Add(59 * time.Minute)
	result, ok := s.cache.Get(s.ctx, "q-1", id.AnonymizationBasic)
	s.Require().True(ok)
	s.Equal("q-1", result.QueryID)
}

func (s *CacheSuite) TestExpiredEntryEvictedLazily() {
	s.cache.Set(s.ctx, "q-1", id.AnonymizationBasic, &QueryResult{QueryID: "q-1"})

	s.clock = s.clock.Add(61 * time.Minute)
	_, ok := s.cache.Get(s.ctx, "q-1", id.AnonymizationBasic)
	s.False(ok)

	s.cache.mu.RLock()
	defer s.cache.mu.RUnlock()
	s.Empty(s.cache.entries)
}

func (s *CacheSuite) TestLevelsDoNotCollide() {
	s.cache.Set(s.ctx, "q-1", id.AnonymizationBasic, &QueryResult{QueryID: "q-1"})

	_, ok := s.cache.Get(s.ctx, "q-1", id.AnonymizationMaximum)
	s.False(ok)
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheSuite))
}
