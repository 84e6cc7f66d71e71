package perf

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type TrackerSuite struct {
	suite.Suite
	tracker *Tracker
}

func (s *TrackerSuite) SetupTest() {
	s.tracker = NewTracker()
}

func (s *TrackerSuite) TestRollingAverageAndHitRate() {
	s.tracker.RecordExecution("researcher-1", []string{"session_metadata"}, 100*time.Millisecond, false)
	s.tracker.RecordExecution("researcher-1", []string{"session_metadata"}, 300*time.Millisecond, true)

	a := s.tracker.Analytics("researcher-1")
	s.Equal(2, a.TotalQueries)
	s.Equal(200*time.Millisecond, a.AverageExecutionTime)
	s.InDelta(0.5, a.CacheHitRate, 1e-9)
}

func (s *TrackerSuite) TestMostUsedDataTypesRanked() {
	for i := 0; i < 3; i++ {
		s.tracker.RecordExecution("researcher-1", []string{"emotional_metrics"}, time.Millisecond, false)
	}
	s.tracker.RecordExecution("researcher-1", []string{"session_metadata"}, time.Millisecond, false)

	a := s.tracker.Analytics("researcher-1")
	s.Equal([]string{"emotional_metrics", "session_metadata"}, a.MostUsedDataTypes)
}

func (s *TrackerSuite) TestLowHitRateSuggestion() {
	for i := 0; i < 10; i++ {
		s.tracker.RecordExecution("researcher-1", nil, time.Millisecond, false)
	}

	a := s.tracker.Analytics("researcher-1")
	s.Require().NotEmpty(a.Suggestions)
	s.Contains(a.Suggestions[0], "cache hit rate")
}

func (s *TrackerSuite) TestSlowExecutionSuggestion() {
	s.tracker.RecordExecution("researcher-1", nil, 5*time.Second, false)

	a := s.tracker.Analytics("researcher-1")
	s.Require().NotEmpty(a.Suggestions)
	s.Contains(a.Suggestions[0], "slow average execution")
}

func (s *TrackerSuite) TestUnknownCallerZeroSnapshot() {
	a := s.tracker.Analytics("nobody")
	s.Equal(0, a.TotalQueries)
	s.Zero(a.CacheHitRate)
	s.Empty(a.MostUsedDataTypes)
}

func (s *TrackerSuite) TestConcurrentRecording() {
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.tracker.RecordExecution("researcher-1", []string{"usage_metrics"}, time.Millisecond, false)
		}()
	}
	wg.Wait()

	a := s.tracker.Analytics("researcher-1")
	s.Equal(32, a.TotalQueries)
}

func TestTrackerSuite(t *testing.T) {
	suite.Run(t, new(TrackerSuite))
}
