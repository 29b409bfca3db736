package sim

import (
	"github.com/ecosim/optimization-core/internal/dynamics"
	"github.com/ecosim/optimization-core/internal/integrate"
	"github.com/ecosim/optimization-core/pkg/config"
	"github.com/ecosim/optimization-core/pkg/utils"
	"gonum.org/v1/gonum/floats"
)

// Scorer reduces a phase-end state to a scalar fitness by propagating it
// across a fixed window with no further transitions and taking the peak
// prey population over an even sample grid. Fitness is the negated peak,
// framing the search as minimization.
type Scorer struct {
	params  dynamics.Params
	window  float64
	samples int
	opts    integrate.Options
}

// NewScorer creates a scorer from configuration
func NewScorer(cfg *config.Config) *Scorer {
	return &Scorer{
		params:  dynamics.ParamsFromConfig(cfg.Dynamics),
		window:  cfg.Scoring.WindowYears,
		samples: cfg.Scoring.Samples,
		opts: integrate.Options{
			RTol:     cfg.Integrator.RTol,
			ATol:     cfg.Integrator.ATol,
			MaxSteps: cfg.Integrator.MaxSteps,
		},
	}
}

// Score propagates state from tStart across the scoring window and returns
// the negated maximum prey population observed across the sample grid.
// The grid includes tStart itself, so the phase-end population counts.
func (sc *Scorer) Score(state dynamics.State, tStart float64) (float64, error) {
	in := integrate.New(sc.params.Derivative, dynamics.Dim, sc.opts)
	in.SetInitial(tStart, state.Vector())

	grid := make([]float64, sc.samples)
	floats.Span(grid, tStart, tStart+sc.window)

	maxPrey := 0.0
	for _, t := range grid {
		y, err := in.Integrate(t)
		if err != nil {
			return 0, &IntegrationError{T: t, Err: err}
		}
		maxPrey = utils.MaxFloat64(maxPrey, y[dynamics.PreyIndex])
	}

	return -maxPrey, nil
}
