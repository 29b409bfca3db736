package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/ecosim/optimization-core/internal/dynamics"
	"github.com/ecosim/optimization-core/internal/integrate"
	"github.com/ecosim/optimization-core/pkg/config"
)

func referenceConfig() *config.Config {
	return config.Default()
}

func TestCullPredatorFloor(t *testing.T) {
	tests := []struct {
		name  string
		pred  float64
		floor float64
		want  float64
	}{
		{"well above floor", 5, 1, 4},
		{"lands on floor", 2, 1, 1},
		{"would cross floor", 1.5, 1, 1},
		{"exactly at floor before cull", 1, 1, 1},
		{"below floor before cull", 0.5, 1, 1},
		{"custom floor", 3, 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			y := []float64{10, tt.pred}
			cullPredator(y, tt.floor)
			if y[dynamics.PredatorIndex] != tt.want {
				t.Fatalf("predator after cull = %f, want %f", y[dynamics.PredatorIndex], tt.want)
			}
			if y[dynamics.PreyIndex] != 10 {
				t.Fatalf("cull modified prey component: %f", y[dynamics.PreyIndex])
			}
		})
	}
}

func TestRunTerminalOnlyScheduleMatchesDirectIntegration(t *testing.T) {
	cfg := referenceConfig()
	s := New(cfg)
	initial := dynamics.StateFromConfig(cfg.Dynamics)

	got, err := s.Run([]float64{20}, initial)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	in := integrate.New(dynamics.ParamsFromConfig(cfg.Dynamics).Derivative, dynamics.Dim, integrate.Options{})
	in.SetInitial(0, initial.Vector())
	want, err := in.Integrate(20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(got.Prey-want[dynamics.PreyIndex]) > 1e-9 || math.Abs(got.Predator-want[dynamics.PredatorIndex]) > 1e-9 {
		t.Fatalf("terminal-only run %+v disagrees with direct integration %v", got, want)
	}
}

func TestRunAppliesTransitionAtEvent(t *testing.T) {
	cfg := referenceConfig()
	s := New(cfg)
	initial := dynamics.StateFromConfig(cfg.Dynamics)

	// Reproduce one event by hand: propagate, cull, reseed, propagate.
	params := dynamics.ParamsFromConfig(cfg.Dynamics)
	in := integrate.New(params.Derivative, dynamics.Dim, integrate.Options{})
	in.SetInitial(0, initial.Vector())
	y, err := in.Integrate(2.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cullPredator(y, cfg.Evaluation.PredatorFloor)
	in.SetInitial(2.5, y)
	want, err := in.Integrate(5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := s.Run([]float64{2.5, 5}, initial)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got.Prey-want[dynamics.PreyIndex]) > 1e-9 || math.Abs(got.Predator-want[dynamics.PredatorIndex]) > 1e-9 {
		t.Fatalf("single-event run %+v disagrees with manual sequence %v", got, want)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	cfg := referenceConfig()
	s := New(cfg)
	initial := dynamics.StateFromConfig(cfg.Dynamics)
	times := []float64{1.5, 3.25, 7.75, 20}

	a, err := s.Run(times, initial)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := s.Run(times, initial)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Fatalf("identical runs disagree: %+v vs %+v", a, b)
	}
}

func TestRunKeepsPopulationsPositive(t *testing.T) {
	cfg := referenceConfig()
	s := New(cfg)
	initial := dynamics.StateFromConfig(cfg.Dynamics)

	// Cull every year: predators are pinned near the floor the whole way.
	times := make([]float64, 0, 21)
	for i := 0; i < 20; i++ {
		times = append(times, float64(i)+0.5)
	}
	times = append(times, 20)

	got, err := s.Run(times, initial)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Prey <= 0 {
		t.Fatalf("prey population not positive: %f", got.Prey)
	}
	if got.Predator <= 0 {
		t.Fatalf("predator population not positive: %f", got.Predator)
	}
}

func TestRunErrors(t *testing.T) {
	cfg := referenceConfig()

	t.Run("empty schedule", func(t *testing.T) {
		s := New(cfg)
		_, err := s.Run(nil, dynamics.StateFromConfig(cfg.Dynamics))
		var ierr *IntegrationError
		if !errors.As(err, &ierr) {
			t.Fatalf("expected *IntegrationError, got %v", err)
		}
	})

	t.Run("step budget exhausted surfaces as IntegrationError", func(t *testing.T) {
		tight := referenceConfig()
		tight.Integrator.MaxSteps = 2
		tight.Integrator.RTol = 1e-12
		tight.Integrator.ATol = 1e-12
		s := New(tight)
		_, err := s.Run([]float64{20}, dynamics.StateFromConfig(tight.Dynamics))
		var ierr *IntegrationError
		if !errors.As(err, &ierr) {
			t.Fatalf("expected *IntegrationError, got %v", err)
		}
		var solverErr *integrate.Error
		if !errors.As(err, &solverErr) {
			t.Fatalf("expected wrapped *integrate.Error, got %v", err)
		}
	})
}

func TestScorerReturnsNegatedPeak(t *testing.T) {
	cfg := referenceConfig()
	s := New(cfg)
	sc := NewScorer(cfg)
	initial := dynamics.StateFromConfig(cfg.Dynamics)

	end, err := s.Run([]float64{20}, initial)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fitness, err := sc.Score(end, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fitness >= 0 {
		t.Fatalf("fitness = %f, want negative (negated positive peak)", fitness)
	}
	// The grid includes the phase-end time, so the peak is at least the
	// phase-end prey population.
	if -fitness < end.Prey-1e-6 {
		t.Fatalf("peak %f below phase-end prey %f", -fitness, end.Prey)
	}
}

func TestScorerDeterministic(t *testing.T) {
	cfg := referenceConfig()
	sc := NewScorer(cfg)
	state := dynamics.State{Prey: 12.5, Predator: 3.25}

	a, err := sc.Score(state, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := sc.Score(state, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Fatalf("identical scoring disagrees: %f vs %f", a, b)
	}
}
