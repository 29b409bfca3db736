// Package search provides the black-box minimization drivers that consume
// the fitness evaluator: a differential-evolution solver and a parallel
// independent-restart wrapper around it.
package search

import (
	"fmt"

	"github.com/ecosim/optimization-core/pkg/utils"
)

// Objective evaluates a candidate vector; lower values are better
type Objective func(x []float64) float64

// Bounds is the immutable per-dimension search interval set. Drivers only
// call the objective with vectors inside it.
type Bounds struct {
	Lower []float64
	Upper []float64
}

// NewUniformBounds builds bounds with the same interval in every dimension
func NewUniformBounds(dim int, lower, upper float64) Bounds {
	b := Bounds{
		Lower: make([]float64, dim),
		Upper: make([]float64, dim),
	}
	for i := 0; i < dim; i++ {
		b.Lower[i] = lower
		b.Upper[i] = upper
	}
	return b
}

// Validate reports misconfigured bounds. This is fatal at setup time,
// before any evaluation begins.
func (b Bounds) Validate() error {
	if len(b.Lower) == 0 {
		return fmt.Errorf("bounds are empty")
	}
	if len(b.Lower) != len(b.Upper) {
		return fmt.Errorf("bounds dimension mismatch: %d lower vs %d upper", len(b.Lower), len(b.Upper))
	}
	for i := range b.Lower {
		if b.Lower[i] >= b.Upper[i] {
			return fmt.Errorf("dimension %d: lower %f must be below upper %f", i, b.Lower[i], b.Upper[i])
		}
	}
	return nil
}

// Dim returns the number of dimensions
func (b Bounds) Dim() int {
	return len(b.Lower)
}

// Clip clamps x into the bounds in place
func (b Bounds) Clip(x []float64) {
	for i := range x {
		x[i] = utils.ClampFloat64(x[i], b.Lower[i], b.Upper[i])
	}
}

// Sample draws a uniform random point inside the bounds
func (b Bounds) Sample(rng *utils.RandSource) []float64 {
	x := make([]float64, b.Dim())
	for i := range x {
		x[i] = rng.UniformFloat64(b.Lower[i], b.Upper[i])
	}
	return x
}
