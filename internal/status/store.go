// Package status exposes the shared optimization progress over HTTP for
// external reporters and dashboards.
package status

import (
	"math"
	"sync"

	"github.com/ecosim/optimization-core/internal/evaluate"
)

const defaultHistoryLimit = 100

// Snapshot is a point-in-time view of one optimization run.
// HasBest is false until a first candidate has been accepted; BestValue is
// zero until then, since an infinite placeholder does not survive JSON.
type Snapshot struct {
	RunID          string  `json:"run_id"`
	EvalCount      int64   `json:"eval_count"`
	BestValue      float64 `json:"best_value"`
	HasBest        bool    `json:"has_best"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// Store keeps the progress handle for snapshots and a bounded history of
// improvement records. Publish doubles as the evaluator's improvement sink.
type Store struct {
	mu       sync.RWMutex
	runID    string
	progress *evaluate.Progress
	history  []evaluate.Record
	limit    int
}

// NewStore creates a store bound to one run's progress state
func NewStore(runID string, progress *evaluate.Progress) *Store {
	return &Store{
		runID:    runID,
		progress: progress,
		limit:    defaultHistoryLimit,
	}
}

// Publish appends an improvement record, evicting the oldest past the limit
func (s *Store) Publish(rec evaluate.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, rec)
	if len(s.history) > s.limit {
		s.history = s.history[len(s.history)-s.limit:]
	}
}

// Snapshot returns the current progress view
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		RunID:          s.runID,
		EvalCount:      s.progress.EvalCount(),
		ElapsedSeconds: s.progress.Elapsed().Seconds(),
	}
	if best := s.progress.Best(); !math.IsInf(best, 1) {
		snap.BestValue = best
		snap.HasBest = true
	}
	return snap
}

// Improvements returns up to limit of the most recent improvement records,
// newest last
func (s *Store) Improvements(limit int) []evaluate.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}
	out := make([]evaluate.Record, limit)
	copy(out, s.history[len(s.history)-limit:])
	return out
}
