// Package perf tracks research query performance per caller and derives
// optimization suggestions from usage patterns.
package perf

import (
	"sort"
	"sync"
	"time"

	"veil/internal/platform/metrics"
)

const topDataTypes = 5

// Analytics is a point-in-time snapshot of one caller's usage.
type Analytics struct {
	CallerID             string        `json:"caller_id"`
	TotalQueries         int           `json:"total_queries"`
	AverageExecutionTime time.Duration `json:"average_execution_time"`
	CacheHitRate         float64       `json:"cache_hit_rate"`
	MostUsedDataTypes    []string      `json:"most_used_data_types"`
	Suggestions          []string      `json:"suggestions,omitempty"`
}

type callerStats struct {
	total     int
	cacheHits int
	totalTime time.Duration
	dataTypes map[string]int
}

// Tracker accumulates execution outcomes in memory and mirrors them to
// Prometheus. Safe for concurrent use.
type Tracker struct {
	mu      sync.RWMutex
	callers map[string]*callerStats
	metrics *metrics.Metrics
}

type Option func(*Tracker)

func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Tracker) {
		t.metrics = m
	}
}

func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		callers: make(map[string]*callerStats),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RecordExecution folds one query execution into the caller's stats.
func (t *Tracker) RecordExecution(callerID string, dataTypes []string, duration time.Duration, cacheHit bool) {
	t.mu.Lock()
	stats, ok := t.callers[callerID]
	if !ok {
		stats = &callerStats{dataTypes: make(map[string]int)}
		t.callers[callerID] = stats
	}
	stats.total++
	stats.totalTime += duration
	if cacheHit {
		stats.cacheHits++
	}
	for _, dt := range dataTypes {
		stats.dataTypes[dt]++
	}
	t.mu.Unlock()

	if t.metrics != nil {
		t.metrics.ObserveExecution(duration.Seconds(), cacheHit)
	}
}

// Analytics snapshots a caller's usage. Unknown callers get a zero snapshot.
func (t *Tracker) Analytics(callerID string) Analytics {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := Analytics{CallerID: callerID}
	stats, ok := t.callers[callerID]
	if !ok {
		return out
	}

	out.TotalQueries = stats.total
	out.AverageExecutionTime = stats.totalTime / time.Duration(stats.total)
	out.CacheHitRate = float64(stats.cacheHits) / float64(stats.total)
	out.MostUsedDataTypes = rankDataTypes(stats.dataTypes)
	out.Suggestions = suggest(out)
	return out
}

func rankDataTypes(counts map[string]int) []string {
	type entry struct {
		name  string
		count int
	}
	entries := make([]entry, 0, len(counts))
	for name, count := range counts {
		entries = append(entries, entry{name, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})
	if len(entries) > topDataTypes {
		entries = entries[:topDataTypes]
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names
}

func suggest(a Analytics) []string {
	var suggestions []string
	if a.TotalQueries >= 10 && a.CacheHitRate < 0.2 {
		suggestions = append(suggestions,
			"low cache hit rate: re-run translated queries by id instead of re-translating")
	}
	if a.AverageExecutionTime > 2*time.Second {
		suggestions = append(suggestions,
			"slow average execution: narrow the data types or add study scope filters")
	}
	for _, dt := range a.MostUsedDataTypes {
		if dt == "clinical_notes" {
			suggestions = append(suggestions,
				"clinical_notes dominate usage: prefer aggregate queries where the study allows")
			break
		}
	}
	return suggestions
}
