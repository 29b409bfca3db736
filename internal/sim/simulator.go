// Package sim drives the hybrid continuous/discrete process: continuous
// predator-prey propagation between schedule times, with a culling
// transition applied at every non-terminal event.
package sim

import (
	"fmt"

	"github.com/ecosim/optimization-core/internal/dynamics"
	"github.com/ecosim/optimization-core/internal/integrate"
	"github.com/ecosim/optimization-core/pkg/config"
)

// IntegrationError wraps a hard solver failure during one evaluation
type IntegrationError struct {
	T   float64
	Err error
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("hybrid simulation failed near t=%g: %v", e.T, e.Err)
}

func (e *IntegrationError) Unwrap() error {
	return e.Err
}

// Simulator propagates an initial population through an event schedule.
// It holds only immutable configuration; every Run constructs a fresh
// integrator, so one Simulator is safe for concurrent Runs.
type Simulator struct {
	params dynamics.Params
	floor  float64
	opts   integrate.Options
}

// New creates a simulator from configuration
func New(cfg *config.Config) *Simulator {
	return &Simulator{
		params: dynamics.ParamsFromConfig(cfg.Dynamics),
		floor:  cfg.Evaluation.PredatorFloor,
		opts: integrate.Options{
			RTol:     cfg.Integrator.RTol,
			ATol:     cfg.Integrator.ATol,
			MaxSteps: cfg.Integrator.MaxSteps,
		},
	}
}

// Run propagates initial from time 0 through the schedule and returns the
// state at the terminal (horizon end) time. At every non-terminal event one
// predator is removed, floored so the population never drops below the
// configured minimum, and the integrator is re-seeded with the
// post-transition state.
func (s *Simulator) Run(times []float64, initial dynamics.State) (dynamics.State, error) {
	if len(times) == 0 {
		return dynamics.State{}, &IntegrationError{Err: fmt.Errorf("empty event schedule")}
	}

	in := integrate.New(s.params.Derivative, dynamics.Dim, s.opts)
	in.SetInitial(0, initial.Vector())

	var y []float64
	var err error
	for i, t := range times {
		y, err = in.Integrate(t)
		if err != nil {
			return dynamics.State{}, &IntegrationError{T: t, Err: err}
		}
		if i < len(times)-1 {
			cullPredator(y, s.floor)
			in.SetInitial(t, y)
		}
	}

	return dynamics.FromVector(y), nil
}

// cullPredator removes one predator, keeping at least floor
func cullPredator(y []float64, floor float64) {
	y[dynamics.PredatorIndex] -= 1
	if y[dynamics.PredatorIndex] < floor {
		y[dynamics.PredatorIndex] = floor
	}
}
