package search

import (
	"context"
	"fmt"
	"math"

	"github.com/ecosim/optimization-core/pkg/utils"
	"gonum.org/v1/gonum/floats"
)

// Result is what a driver hands back to its caller
type Result struct {
	BestVector []float64
	BestValue  float64
	EvalCount  int
}

// DifferentialEvolution is a rand/1/bin differential-evolution minimizer.
// One instance drives one search run; restarts construct fresh instances.
type DifferentialEvolution struct {
	bounds   Bounds
	popSize  int
	maxEvals int
	f        float64 // differential weight
	cr       float64 // crossover probability
	rng      *utils.RandSource
}

// DEConfig configures a differential-evolution run
type DEConfig struct {
	Population int
	MaxEvals   int
	F          float64
	CR         float64
	Seed       int64
}

// NewDifferentialEvolution creates a solver over the given bounds
func NewDifferentialEvolution(bounds Bounds, cfg DEConfig) (*DifferentialEvolution, error) {
	if err := bounds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bounds: %w", err)
	}
	if cfg.Population < 4 {
		return nil, fmt.Errorf("population must be at least 4, got %d", cfg.Population)
	}
	if cfg.MaxEvals <= 0 {
		return nil, fmt.Errorf("max evals must be positive, got %d", cfg.MaxEvals)
	}
	if cfg.F <= 0 || cfg.F > 2 {
		return nil, fmt.Errorf("differential weight must be in (0, 2], got %f", cfg.F)
	}
	if cfg.CR <= 0 || cfg.CR > 1 {
		return nil, fmt.Errorf("crossover probability must be in (0, 1], got %f", cfg.CR)
	}
	return &DifferentialEvolution{
		bounds:   bounds,
		popSize:  cfg.Population,
		maxEvals: cfg.MaxEvals,
		f:        cfg.F,
		cr:       cfg.CR,
		rng:      utils.NewRandSource(cfg.Seed),
	}, nil
}

// Minimize runs the solver until the evaluation budget is spent or the
// context is cancelled. Cancellation is observed between generations; any
// in-flight evaluation runs to completion.
func (de *DifferentialEvolution) Minimize(ctx context.Context, objective Objective) Result {
	dim := de.bounds.Dim()

	pop := make([][]float64, de.popSize)
	vals := make([]float64, de.popSize)
	evals := 0
	seeded := 0
	for i := range pop {
		if evals >= de.maxEvals {
			break
		}
		pop[i] = de.bounds.Sample(de.rng)
		vals[i] = objective(pop[i])
		evals++
		seeded++
	}

	bestIdx := argmin(vals[:seeded])
	best := Result{
		BestVector: append([]float64(nil), pop[bestIdx]...),
		BestValue:  vals[bestIdx],
		EvalCount:  evals,
	}

	donor := make([]float64, dim)
	trial := make([]float64, dim)
	for evals < de.maxEvals {
		select {
		case <-ctx.Done():
			best.EvalCount = evals
			return best
		default:
		}

		for i := 0; i < de.popSize && evals < de.maxEvals; i++ {
			a, b, c := de.pickDistinct(i)

			// donor = pop[a] + F * (pop[b] - pop[c])
			floats.SubTo(donor, pop[b], pop[c])
			floats.Scale(de.f, donor)
			floats.Add(donor, pop[a])
			de.bounds.Clip(donor)

			// Binomial crossover with one guaranteed donor component
			jrand := de.rng.Intn(dim)
			copy(trial, pop[i])
			for j := 0; j < dim; j++ {
				if j == jrand || de.rng.Float64() < de.cr {
					trial[j] = donor[j]
				}
			}

			v := objective(trial)
			evals++
			if v <= vals[i] {
				copy(pop[i], trial)
				vals[i] = v
				if v < best.BestValue {
					best.BestValue = v
					copy(best.BestVector, trial)
				}
			}
		}
	}

	best.EvalCount = evals
	return best
}

// pickDistinct draws three distinct population indices, all different
// from the target index
func (de *DifferentialEvolution) pickDistinct(target int) (int, int, int) {
	picked := [3]int{}
	for k := 0; k < 3; k++ {
	draw:
		for {
			idx := de.rng.Intn(de.popSize)
			if idx == target {
				continue
			}
			for j := 0; j < k; j++ {
				if picked[j] == idx {
					continue draw
				}
			}
			picked[k] = idx
			break
		}
	}
	return picked[0], picked[1], picked[2]
}

func argmin(vals []float64) int {
	best := 0
	bestVal := math.Inf(1)
	for i, v := range vals {
		if v < bestVal {
			bestVal = v
			best = i
		}
	}
	return best
}
