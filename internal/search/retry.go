package search

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/ecosim/optimization-core/pkg/config"
	"github.com/ecosim/optimization-core/pkg/logger"
	"github.com/ecosim/optimization-core/pkg/utils"
)

// RetryConfig configures a parallel independent-restart run
type RetryConfig struct {
	Restarts int
	Workers  int // 0 = GOMAXPROCS
	DE       DEConfig
}

// RetryConfigFromSearch maps the YAML search section onto driver settings
func RetryConfigFromSearch(s *config.Search) RetryConfig {
	return RetryConfig{
		Restarts: s.Restarts,
		Workers:  s.Workers,
		DE: DEConfig{
			Population: s.Population,
			MaxEvals:   s.MaxEvals,
			F:          s.F,
			CR:         s.CR,
			Seed:       s.Seed,
		},
	}
}

// ParallelRetry runs independent differential-evolution restarts across a
// bounded worker pool and returns the best result over all of them. Each
// restart gets its own solver and derived seed; the restarts coordinate
// only through whatever shared state the objective itself carries.
func ParallelRetry(ctx context.Context, objective Objective, bounds Bounds, cfg RetryConfig, log *slog.Logger) (Result, error) {
	if err := bounds.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid bounds: %w", err)
	}
	if cfg.Restarts <= 0 {
		return Result{}, fmt.Errorf("restarts must be positive, got %d", cfg.Restarts)
	}
	if log == nil {
		log = logger.Default
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// Derive per-restart seeds so a seeded run stays reproducible while
	// restarts still explore independently.
	seeder := utils.NewRandSource(cfg.DE.Seed)

	semaphore := make(chan struct{}, workers)
	results := make([]Result, cfg.Restarts)
	errs := make([]error, cfg.Restarts)
	var wg sync.WaitGroup

	for i := 0; i < cfg.Restarts; i++ {
		deCfg := cfg.DE
		deCfg.Seed = seeder.Int63()

		wg.Add(1)
		go func(idx int, deCfg DEConfig) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			de, err := NewDifferentialEvolution(bounds, deCfg)
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx] = de.Minimize(ctx, objective)
			log.Debug("restart finished",
				"restart", idx,
				"best_value", results[idx].BestValue,
				"evals", results[idx].EvalCount)
		}(i, deCfg)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return Result{}, fmt.Errorf("restart failed: %w", err)
		}
	}

	best := results[0]
	total := 0
	for _, r := range results {
		total += r.EvalCount
		if r.BestValue < best.BestValue {
			best = r
		}
	}
	best.EvalCount = total

	return best, nil
}
