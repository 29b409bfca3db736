// Package evaluate turns candidate decision vectors into scalar fitness
// values: decode the intervention schedule, run the hybrid simulation,
// score the trajectory, and keep shared progress bookkeeping for every
// worker calling in.
package evaluate

import (
	"log/slog"

	"github.com/ecosim/optimization-core/internal/dynamics"
	"github.com/ecosim/optimization-core/internal/schedule"
	"github.com/ecosim/optimization-core/internal/sim"
	"github.com/ecosim/optimization-core/pkg/config"
	"github.com/ecosim/optimization-core/pkg/logger"
)

// Rejected is the sentinel fitness for failed evaluations. It sits at the
// default rejection threshold, so it is never best-eligible, while staying
// finite so external optimizers can keep ranking trials.
const Rejected = 1e99

// Evaluator computes the objective value of decision vectors. It is
// stateless per call except for its effect on the shared Progress, so one
// Evaluator serves any number of concurrent workers.
type Evaluator struct {
	simulator *sim.Simulator
	scorer    *sim.Scorer
	initial   dynamics.State
	horizon   float64
	threshold float64
	progress  *Progress
	sink      Sink
	logger    *slog.Logger
}

// New creates an evaluator bound to shared progress state
func New(cfg *config.Config, progress *Progress) *Evaluator {
	return &Evaluator{
		simulator: sim.New(cfg),
		scorer:    sim.NewScorer(cfg),
		initial:   dynamics.StateFromConfig(cfg.Dynamics),
		horizon:   float64(cfg.Horizon),
		threshold: cfg.Evaluation.RejectionThreshold,
		progress:  progress,
		sink:      nil,
		logger:    logger.Default,
	}
}

// WithSink sets the improvement sink
func (e *Evaluator) WithSink(sink Sink) *Evaluator {
	e.sink = sink
	return e
}

// WithLogger sets the evaluator's logger
func (e *Evaluator) WithLogger(l *slog.Logger) *Evaluator {
	e.logger = l
	return e
}

// Evaluate computes the fitness of one decision vector. Decode and
// integration failures yield the rejected sentinel instead of an error:
// the calling optimizer must keep searching across many trials, so a bad
// candidate is a bad score, never a crashed worker. Every call, rejected
// or not, increments the shared evaluation counter exactly once.
func (e *Evaluator) Evaluate(x []float64) float64 {
	value, events := e.compute(x)

	count := e.progress.CountEval()
	if e.progress.UpdateBest(value, e.threshold) {
		rec := Record{
			EvalCount:      count,
			ElapsedSeconds: e.progress.Elapsed().Seconds(),
			BestValue:      value,
			EventTimes:     events,
			DecisionVector: append([]float64(nil), x...),
		}
		e.logger.Info("new best",
			"eval_count", rec.EvalCount,
			"elapsed_s", rec.ElapsedSeconds,
			"best_value", rec.BestValue,
			"event_times", rec.EventTimes,
			"vector", rec.DecisionVector)
		if e.sink != nil {
			e.sink(rec)
		}
	}

	return value
}

// compute runs decode -> simulate -> score without touching shared state
func (e *Evaluator) compute(x []float64) (float64, []float64) {
	if float64(len(x)) != e.horizon {
		e.logger.Debug("evaluation rejected", "stage", "decode",
			"error", "decision vector length does not match horizon",
			"len", len(x), "horizon", e.horizon)
		return Rejected, nil
	}

	times, err := schedule.Decode(x)
	if err != nil {
		e.logger.Debug("evaluation rejected", "stage", "decode", "error", err)
		return Rejected, nil
	}

	end, err := e.simulator.Run(times, e.initial)
	if err != nil {
		e.logger.Debug("evaluation rejected", "stage", "simulate", "error", err)
		return Rejected, nil
	}

	value, err := e.scorer.Score(end, e.horizon)
	if err != nil {
		e.logger.Debug("evaluation rejected", "stage", "score", "error", err)
		return Rejected, nil
	}

	return value, schedule.Interventions(times)
}
