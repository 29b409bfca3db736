package search

import (
	"context"
	"math"
	"sync/atomic"
	"testing"

	"github.com/ecosim/optimization-core/pkg/utils"
)

func sphere(x []float64) float64 {
	sum := 0.0
	for _, v := range x {
		sum += v * v
	}
	return sum
}

func TestBoundsValidate(t *testing.T) {
	tests := []struct {
		name    string
		bounds  Bounds
		wantErr bool
	}{
		{"valid uniform", NewUniformBounds(5, -1, 1), false},
		{"empty", Bounds{}, true},
		{"dimension mismatch", Bounds{Lower: []float64{0}, Upper: []float64{1, 2}}, true},
		{"inverted interval", Bounds{Lower: []float64{2}, Upper: []float64{1}}, true},
		{"degenerate interval", Bounds{Lower: []float64{1}, Upper: []float64{1}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.bounds.Validate()
			if tt.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestBoundsSampleAndClip(t *testing.T) {
	b := NewUniformBounds(10, -1, 1)
	rng := utils.NewRandSource(3)
	for i := 0; i < 100; i++ {
		x := b.Sample(rng)
		for j, v := range x {
			if v < -1 || v >= 1 {
				t.Fatalf("sample[%d] = %f outside bounds", j, v)
			}
		}
	}

	x := []float64{-5, 0.5, 5, 1, -1, 0, 2, -2, 0.25, -0.25}
	b.Clip(x)
	for j, v := range x {
		if v < -1 || v > 1 {
			t.Fatalf("clipped[%d] = %f outside bounds", j, v)
		}
	}
}

func TestNewDifferentialEvolutionRejectsBadConfig(t *testing.T) {
	bounds := NewUniformBounds(3, -1, 1)
	tests := []struct {
		name string
		cfg  DEConfig
	}{
		{"tiny population", DEConfig{Population: 3, MaxEvals: 100, F: 0.5, CR: 0.9}},
		{"no budget", DEConfig{Population: 10, MaxEvals: 0, F: 0.5, CR: 0.9}},
		{"zero weight", DEConfig{Population: 10, MaxEvals: 100, F: 0, CR: 0.9}},
		{"crossover above one", DEConfig{Population: 10, MaxEvals: 100, F: 0.5, CR: 1.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewDifferentialEvolution(bounds, tt.cfg); err == nil {
				t.Fatalf("expected error for %+v", tt.cfg)
			}
		})
	}

	if _, err := NewDifferentialEvolution(Bounds{}, DEConfig{Population: 10, MaxEvals: 100, F: 0.5, CR: 0.9}); err == nil {
		t.Fatalf("expected error for invalid bounds")
	}
}

func TestDifferentialEvolutionMinimizesSphere(t *testing.T) {
	bounds := NewUniformBounds(5, -5, 5)
	de, err := NewDifferentialEvolution(bounds, DEConfig{
		Population: 30,
		MaxEvals:   20000,
		F:          0.5,
		CR:         0.9,
		Seed:       42,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res := de.Minimize(context.Background(), sphere)
	if res.BestValue > 1e-3 {
		t.Fatalf("sphere minimum not reached: best = %g", res.BestValue)
	}
	if res.EvalCount != 20000 {
		t.Fatalf("eval count = %d, want full budget 20000", res.EvalCount)
	}
	for i, v := range res.BestVector {
		if math.Abs(v) > 0.1 {
			t.Fatalf("best vector component %d = %f, want near 0", i, v)
		}
	}
}

func TestDifferentialEvolutionRespectsBounds(t *testing.T) {
	bounds := NewUniformBounds(4, -1, 1)
	var violations atomic.Int64
	objective := func(x []float64) float64 {
		for _, v := range x {
			if v < -1 || v > 1 {
				violations.Add(1)
			}
		}
		return sphere(x)
	}

	de, err := NewDifferentialEvolution(bounds, DEConfig{Population: 20, MaxEvals: 2000, F: 0.8, CR: 0.9, Seed: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	de.Minimize(context.Background(), objective)

	if violations.Load() != 0 {
		t.Fatalf("objective called with %d out-of-bounds components", violations.Load())
	}
}

func TestDifferentialEvolutionDeterministicForSeed(t *testing.T) {
	bounds := NewUniformBounds(3, -2, 2)
	cfg := DEConfig{Population: 15, MaxEvals: 3000, F: 0.6, CR: 0.8, Seed: 11}

	run := func() Result {
		de, err := NewDifferentialEvolution(bounds, cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return de.Minimize(context.Background(), sphere)
	}

	a := run()
	b := run()
	if a.BestValue != b.BestValue {
		t.Fatalf("seeded runs disagree: %g vs %g", a.BestValue, b.BestValue)
	}
}

func TestDifferentialEvolutionStopsOnCancel(t *testing.T) {
	bounds := NewUniformBounds(3, -1, 1)
	ctx, cancel := context.WithCancel(context.Background())

	var calls atomic.Int64
	objective := func(x []float64) float64 {
		if calls.Add(1) == 50 {
			cancel()
		}
		return sphere(x)
	}

	de, err := NewDifferentialEvolution(bounds, DEConfig{Population: 10, MaxEvals: 1000000, F: 0.5, CR: 0.9, Seed: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res := de.Minimize(ctx, objective)

	// Cancellation lands between generations, so the run stops well short
	// of the budget while completing in-flight work.
	if res.EvalCount >= 1000 {
		t.Fatalf("cancelled run burned %d evaluations", res.EvalCount)
	}
	if len(res.BestVector) != 3 {
		t.Fatalf("cancelled run lost its best vector: %v", res.BestVector)
	}
}

func TestParallelRetryAggregates(t *testing.T) {
	bounds := NewUniformBounds(4, -3, 3)
	cfg := RetryConfig{
		Restarts: 6,
		Workers:  3,
		DE:       DEConfig{Population: 12, MaxEvals: 1500, F: 0.5, CR: 0.9, Seed: 5},
	}

	res, err := ParallelRetry(context.Background(), sphere, bounds, cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.EvalCount != 6*1500 {
		t.Fatalf("total evals = %d, want %d", res.EvalCount, 6*1500)
	}
	if res.BestValue > 1e-1 {
		t.Fatalf("parallel retry best = %g, want near 0", res.BestValue)
	}
}

func TestParallelRetryValidations(t *testing.T) {
	cfg := RetryConfig{Restarts: 0, DE: DEConfig{Population: 10, MaxEvals: 10, F: 0.5, CR: 0.9}}
	if _, err := ParallelRetry(context.Background(), sphere, NewUniformBounds(2, -1, 1), cfg, nil); err == nil {
		t.Fatalf("expected error for zero restarts")
	}
	cfg.Restarts = 2
	if _, err := ParallelRetry(context.Background(), sphere, Bounds{}, cfg, nil); err == nil {
		t.Fatalf("expected error for invalid bounds")
	}
	cfg.DE.Population = 1
	if _, err := ParallelRetry(context.Background(), sphere, NewUniformBounds(2, -1, 1), cfg, nil); err == nil {
		t.Fatalf("expected error for invalid solver config")
	}
}
