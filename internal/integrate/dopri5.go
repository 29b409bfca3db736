// Package integrate provides an adaptive Dormand-Prince 5(4) initial-value
// problem solver. Each Integrator owns its solver state and is safe for use
// by one caller at a time; concurrent evaluations construct their own
// instances. The initial condition can be re-seeded mid-run, which starts a
// fresh problem rather than continuing the previous one.
package integrate

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Func evaluates a vector field at (t, y) into dydt
type Func func(t float64, y, dydt []float64)

// Options bounds the solver's work per Integrate call
type Options struct {
	RTol     float64 // relative tolerance, default 1e-6
	ATol     float64 // absolute tolerance, default 1e-6
	MaxSteps int     // attempted steps per Integrate call, default 1000
}

func (o Options) withDefaults() Options {
	if o.RTol == 0 {
		o.RTol = 1e-6
	}
	if o.ATol == 0 {
		o.ATol = 1e-6
	}
	if o.MaxSteps == 0 {
		o.MaxSteps = 1000
	}
	return o
}

// Error is a hard solver failure. Step-size advisories are handled
// internally; an Error means the trajectory could not be produced.
type Error struct {
	T      float64
	Steps  int
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("integration failed at t=%g after %d steps: %s", e.T, e.Steps, e.Reason)
}

// Dormand-Prince 5(4) Butcher tableau. The seventh stage equals the next
// step's first stage (first-same-as-last).
var (
	dpC = [7]float64{0, 1.0 / 5, 3.0 / 10, 4.0 / 5, 8.0 / 9, 1, 1}
	dpA = [7][6]float64{
		{},
		{1.0 / 5},
		{3.0 / 40, 9.0 / 40},
		{44.0 / 45, -56.0 / 15, 32.0 / 9},
		{19372.0 / 6561, -25360.0 / 2187, 64448.0 / 6561, -212.0 / 729},
		{9017.0 / 3168, -355.0 / 33, 46732.0 / 5247, 49.0 / 176, -5103.0 / 18656},
		{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84},
	}
	// 5th-order minus embedded 4th-order weights, used for the error estimate
	dpE = [7]float64{
		35.0/384 - 5179.0/57600,
		0,
		500.0/1113 - 7571.0/16695,
		125.0/192 - 393.0/640,
		-2187.0/6784 + 92097.0/339200,
		11.0/84 - 187.0/2100,
		-1.0 / 40,
	}
)

const (
	stepSafety = 0.9
	minShrink  = 0.2
	maxGrow    = 5.0
)

// Integrator propagates a single initial-value problem
type Integrator struct {
	f    Func
	opts Options

	t float64
	y []float64
	h float64 // step size carried between steps; 0 means unset

	k       [7][]float64
	stage   []float64
	ynew    []float64
	fsal    bool
	started bool
}

// New creates an integrator for a vector field of the given dimension
func New(f Func, dim int, opts Options) *Integrator {
	in := &Integrator{
		f:     f,
		opts:  opts.withDefaults(),
		stage: make([]float64, dim),
		ynew:  make([]float64, dim),
	}
	for i := range in.k {
		in.k[i] = make([]float64, dim)
	}
	return in
}

// SetInitial re-seeds the integrator with a fresh initial condition.
// Any carried step size or cached derivative is discarded.
func (in *Integrator) SetInitial(t float64, y []float64) {
	if in.y == nil {
		in.y = make([]float64, len(y))
	}
	copy(in.y, y)
	in.t = t
	in.h = 0
	in.fsal = false
	in.started = true
}

// T returns the current time
func (in *Integrator) T() float64 {
	return in.t
}

// Integrate advances the state to target and returns a copy of it.
// Integrating to the current time is a no-op returning the current state.
func (in *Integrator) Integrate(target float64) ([]float64, error) {
	if !in.started {
		return nil, &Error{Reason: "initial condition not set"}
	}
	if target < in.t {
		return nil, &Error{T: in.t, Reason: fmt.Sprintf("target time %g precedes current time", target)}
	}
	if target == in.t {
		return in.snapshot(), nil
	}

	if in.h <= 0 {
		in.h = initialStep(in.t, target)
	}

	steps := 0
	for in.t < target {
		if steps >= in.opts.MaxSteps {
			return nil, &Error{T: in.t, Steps: steps, Reason: "step limit exceeded before reaching target"}
		}

		h := in.h
		final := false
		if in.t+h >= target {
			h = target - in.t
			final = true
		}
		if h < minStep(in.t) {
			return nil, &Error{T: in.t, Steps: steps, Reason: "step size underflow"}
		}

		errNorm := in.step(h)
		steps++

		if errNorm <= 1 {
			// Accepted: state was advanced by step()
			if final {
				// Land exactly on the target; rounding in t+h must not
				// leave a residual sliver step behind.
				in.t = target
			}
			in.h = h * growFactor(errNorm)
		} else {
			in.h = h * shrinkFactor(errNorm)
		}
	}

	return in.snapshot(), nil
}

// step attempts a single step of size h and returns the scaled error norm.
// On acceptance (norm <= 1) it advances t and y and caches the last stage
// for reuse as the next first stage.
func (in *Integrator) step(h float64) float64 {
	n := len(in.y)

	if !in.fsal {
		in.f(in.t, in.y, in.k[0])
	}

	for s := 1; s < 7; s++ {
		copy(in.stage, in.y)
		for j := 0; j < s; j++ {
			if dpA[s][j] != 0 {
				floats.AddScaled(in.stage, h*dpA[s][j], in.k[j])
			}
		}
		in.f(in.t+dpC[s]*h, in.stage, in.k[s])
	}
	// The sixth stage already combined the fifth-order weights
	copy(in.ynew, in.stage)

	errNorm := 0.0
	for i := 0; i < n; i++ {
		e := 0.0
		for s := 0; s < 7; s++ {
			if dpE[s] != 0 {
				e += dpE[s] * in.k[s][i]
			}
		}
		e *= h
		sc := in.opts.ATol + in.opts.RTol*math.Max(math.Abs(in.y[i]), math.Abs(in.ynew[i]))
		errNorm += (e / sc) * (e / sc)
	}
	errNorm = math.Sqrt(errNorm / float64(n))

	if errNorm <= 1 {
		in.t += h
		copy(in.y, in.ynew)
		copy(in.k[0], in.k[6])
		in.fsal = true
	}
	return errNorm
}

func (in *Integrator) snapshot() []float64 {
	out := make([]float64, len(in.y))
	copy(out, in.y)
	return out
}

func growFactor(errNorm float64) float64 {
	if errNorm == 0 {
		return maxGrow
	}
	return math.Min(maxGrow, stepSafety*math.Pow(errNorm, -0.2))
}

func shrinkFactor(errNorm float64) float64 {
	return math.Max(minShrink, stepSafety*math.Pow(errNorm, -0.2))
}

func initialStep(t, target float64) float64 {
	return (target - t) / 100
}

func minStep(t float64) float64 {
	return 1e-14 * math.Max(1, math.Abs(t))
}
