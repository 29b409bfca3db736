package config

import (
	"fmt"
	"os"
)

// LoadConfig loads, defaults, and validates a configuration file.
// Validation failures here are fatal: nothing may evaluate against a
// misconfigured scenario.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := ParseConfigYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// validateConfig performs validation on the configuration
func validateConfig(cfg *Config) error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", cfg.LogLevel)
	}

	if cfg.Horizon <= 0 {
		return fmt.Errorf("horizon_years must be positive, got %d", cfg.Horizon)
	}

	if cfg.Bounds.Lower >= cfg.Bounds.Upper {
		return fmt.Errorf("bounds lower %f must be below upper %f", cfg.Bounds.Lower, cfg.Bounds.Upper)
	}
	if cfg.Bounds.Upper <= 0 {
		return fmt.Errorf("bounds upper must be positive so interventions are encodable, got %f", cfg.Bounds.Upper)
	}

	if cfg.Dynamics.GrowthRate <= 0 {
		return fmt.Errorf("dynamics growth_rate must be positive, got %f", cfg.Dynamics.GrowthRate)
	}
	if cfg.Dynamics.PredationRate <= 0 {
		return fmt.Errorf("dynamics predation_rate must be positive, got %f", cfg.Dynamics.PredationRate)
	}
	if cfg.Dynamics.PredatorDeathRate <= 0 {
		return fmt.Errorf("dynamics predator_death_rate must be positive, got %f", cfg.Dynamics.PredatorDeathRate)
	}
	if cfg.Dynamics.PredatorGrowthRate <= 0 {
		return fmt.Errorf("dynamics predator_growth_rate must be positive, got %f", cfg.Dynamics.PredatorGrowthRate)
	}
	if cfg.Dynamics.InitialPrey <= 0 {
		return fmt.Errorf("dynamics initial_prey must be positive, got %f", cfg.Dynamics.InitialPrey)
	}
	if cfg.Dynamics.InitialPredator <= 0 {
		return fmt.Errorf("dynamics initial_predator must be positive, got %f", cfg.Dynamics.InitialPredator)
	}

	if cfg.Scoring.WindowYears <= 0 {
		return fmt.Errorf("scoring window_years must be positive, got %f", cfg.Scoring.WindowYears)
	}
	if cfg.Scoring.Samples < 2 {
		return fmt.Errorf("scoring samples must be at least 2, got %d", cfg.Scoring.Samples)
	}

	if cfg.Evaluation.RejectionThreshold <= 0 {
		return fmt.Errorf("evaluation rejection_threshold must be positive, got %f", cfg.Evaluation.RejectionThreshold)
	}
	if cfg.Evaluation.PredatorFloor <= 0 {
		return fmt.Errorf("evaluation predator_floor must be positive, got %f", cfg.Evaluation.PredatorFloor)
	}

	if cfg.Integrator.RTol <= 0 {
		return fmt.Errorf("integrator rtol must be positive, got %g", cfg.Integrator.RTol)
	}
	if cfg.Integrator.ATol <= 0 {
		return fmt.Errorf("integrator atol must be positive, got %g", cfg.Integrator.ATol)
	}
	if cfg.Integrator.MaxSteps <= 0 {
		return fmt.Errorf("integrator max_steps must be positive, got %d", cfg.Integrator.MaxSteps)
	}

	if cfg.Search != nil {
		if err := validateSearch(cfg.Search); err != nil {
			return fmt.Errorf("search validation failed: %w", err)
		}
	}

	return nil
}

// validateSearch validates the search driver configuration
func validateSearch(s *Search) error {
	if s.Strategy != "de" {
		return fmt.Errorf("invalid strategy: %s (must be de)", s.Strategy)
	}
	if s.Population < 4 {
		return fmt.Errorf("population must be at least 4, got %d", s.Population)
	}
	if s.MaxEvals <= 0 {
		return fmt.Errorf("max_evals must be positive, got %d", s.MaxEvals)
	}
	if s.Restarts <= 0 {
		return fmt.Errorf("restarts must be positive, got %d", s.Restarts)
	}
	if s.Workers < 0 {
		return fmt.Errorf("workers cannot be negative, got %d", s.Workers)
	}
	if s.F <= 0 || s.F > 2 {
		return fmt.Errorf("f must be in (0, 2], got %f", s.F)
	}
	if s.CR <= 0 || s.CR > 1 {
		return fmt.Errorf("cr must be in (0, 1], got %f", s.CR)
	}
	return nil
}
