package evaluate

import (
	"math"
	"sync/atomic"
	"time"
)

// Record is emitted to the progress sink on every accepted improvement
type Record struct {
	EvalCount      int64     `json:"eval_count"`
	ElapsedSeconds float64   `json:"elapsed_seconds"`
	BestValue      float64   `json:"best_value"`
	EventTimes     []float64 `json:"event_times"`
	DecisionVector []float64 `json:"decision_vector"`
}

// Sink consumes improvement records, e.g. a logger or a status store
type Sink func(Record)

// Progress is the state shared by every concurrent evaluation of one
// optimization run: the best value seen so far, the total evaluation
// count, and the run's start time. All mutation is atomic; a contended
// best update retries its compare-and-swap until it either wins or loses
// to a strictly better value, so no improvement or count is ever dropped.
type Progress struct {
	evals     atomic.Int64
	bestBits  atomic.Uint64
	startTime time.Time
}

// NewProgress creates progress state for a fresh run.
// The best value starts at +Inf and the counter at zero.
func NewProgress() *Progress {
	p := &Progress{startTime: time.Now()}
	p.bestBits.Store(math.Float64bits(math.Inf(1)))
	return p
}

// CountEval atomically increments the evaluation counter and returns the
// new total. Each evaluation, successful or rejected, counts exactly once.
func (p *Progress) CountEval() int64 {
	return p.evals.Add(1)
}

// EvalCount returns the number of completed evaluations
func (p *Progress) EvalCount() int64 {
	return p.evals.Load()
}

// Best returns the current best (minimal) value
func (p *Progress) Best() float64 {
	return math.Float64frombits(p.bestBits.Load())
}

// UpdateBest lowers the best value to v if v is an improvement and below
// the rejection threshold. Reports whether v became the new best.
func (p *Progress) UpdateBest(v, threshold float64) bool {
	if v >= threshold {
		return false
	}
	for {
		cur := p.bestBits.Load()
		if v >= math.Float64frombits(cur) {
			return false
		}
		if p.bestBits.CompareAndSwap(cur, math.Float64bits(v)) {
			return true
		}
	}
}

// StartTime returns the run's start timestamp
func (p *Progress) StartTime() time.Time {
	return p.startTime
}

// Elapsed returns wall time since the run started
func (p *Progress) Elapsed() time.Duration {
	return time.Since(p.startTime)
}
