// Package dynamics defines the continuous predator-prey process whose
// trajectory the evaluation core scores: a two-component Lotka-Volterra
// system of a growing prey population suppressed by a predator population.
package dynamics

import "github.com/ecosim/optimization-core/pkg/config"

// Indices of the state components in vector form.
const (
	PreyIndex     = 0
	PredatorIndex = 1
)

// Dim is the number of continuous state components.
const Dim = 2

// Params holds the Lotka-Volterra vector field coefficients:
//
//	prey'     = a*prey - b*prey*predator
//	predator' = -c*predator + d*prey*predator
type Params struct {
	GrowthRate         float64 // a
	PredationRate      float64 // b
	PredatorDeathRate  float64 // c
	PredatorGrowthRate float64 // d
}

// ParamsFromConfig extracts vector field coefficients from a configuration
func ParamsFromConfig(cfg config.Dynamics) Params {
	return Params{
		GrowthRate:         cfg.GrowthRate,
		PredationRate:      cfg.PredationRate,
		PredatorDeathRate:  cfg.PredatorDeathRate,
		PredatorGrowthRate: cfg.PredatorGrowthRate,
	}
}

// Derivative evaluates the vector field at (t, y) into dydt.
// The system is autonomous; t is unused but kept for the integrator contract.
func (p Params) Derivative(_ float64, y, dydt []float64) {
	prey, pred := y[PreyIndex], y[PredatorIndex]
	dydt[PreyIndex] = p.GrowthRate*prey - p.PredationRate*prey*pred
	dydt[PredatorIndex] = -p.PredatorDeathRate*pred + p.PredatorGrowthRate*prey*pred
}

// State is an instantaneous population snapshot
type State struct {
	Prey     float64
	Predator float64
}

// StateFromConfig extracts the initial population from a configuration
func StateFromConfig(cfg config.Dynamics) State {
	return State{Prey: cfg.InitialPrey, Predator: cfg.InitialPredator}
}

// Vector returns the state in the component order the integrator uses
func (s State) Vector() []float64 {
	return []float64{s.Prey, s.Predator}
}

// FromVector builds a State from integrator output
func FromVector(y []float64) State {
	return State{Prey: y[PreyIndex], Predator: y[PredatorIndex]}
}
