// Command hybridopt evaluates the reference culling scenarios and then
// searches for the best intervention plan with parallel differential
// evolution restarts, serving progress over HTTP while it runs.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ecosim/optimization-core/internal/evaluate"
	"github.com/ecosim/optimization-core/internal/search"
	"github.com/ecosim/optimization-core/internal/status"
	"github.com/ecosim/optimization-core/pkg/config"
	"github.com/ecosim/optimization-core/pkg/logger"
	"github.com/ecosim/optimization-core/pkg/utils"
)

// referenceSolution is a recorded near-optimal plan for the default
// 20-year scenario, kept as a sanity benchmark next to the two naive ones.
var referenceSolution = []float64{
	0.776493606911633, 5.313367199186114e-11, -0.01911689944376108,
	0.999999999998243, 0.9999999999999777, 0.8778065780316634,
	-0.9677096355465782, 0.9877828448885166, 0.21691071881497626,
	-0.1944392073928476, 1.0, 0.7622846184132999,
	-2.0391328917626546e-06, -0.22780030500674903, -0.6537913248006114,
	0.8517517878859682, 1.774349183498689e-16, 1.0, 1.0,
	0.1509101207001727,
}

func main() {
	var configPath string
	var logLevel string
	var logFormat string
	var httpAddr string
	var workers int
	var seed int64

	flag.StringVar(&configPath, "config", "", "path to YAML config (empty = built-in defaults)")
	flag.StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flag.StringVar(&logFormat, "log-format", "text", "log format (text, json)")
	flag.StringVar(&httpAddr, "http-addr", "", "HTTP status listen address override")
	flag.IntVar(&workers, "workers", 0, "parallel restart workers override (0 = GOMAXPROCS)")
	flag.Int64Var(&seed, "seed", 0, "search seed override (0 = time-based)")
	flag.Parse()

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			logger.Error("failed to load config", "path", configPath, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if cfg.Search == nil {
		cfg.Search = config.Default().Search
	}
	if workers > 0 {
		cfg.Search.Workers = workers
	}
	if seed != 0 {
		cfg.Search.Seed = seed
	}
	if logLevel == "" {
		logLevel = cfg.LogLevel
	}
	if httpAddr == "" {
		httpAddr = cfg.HTTPAddr
	}

	if logFormat == "json" {
		logger.SetDefault(logger.New(logLevel, os.Stdout))
	} else {
		logger.SetDefault(logger.NewText(logLevel, os.Stdout))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := utils.GenerateRunID()
	progress := evaluate.NewProgress()
	store := status.NewStore(runID, progress)
	evaluator := evaluate.New(cfg, progress).WithSink(store.Publish)

	logger.Info("starting optimization run",
		"run_id", runID,
		"horizon_years", cfg.Horizon,
		"bounds", []float64{cfg.Bounds.Lower, cfg.Bounds.Upper})

	// Reference scenarios: never intervening, intervening mid-year every
	// year, and the recorded benchmark plan.
	logger.Info("no culling at all", "fitness", evaluator.Evaluate(uniformVector(cfg.Horizon, -0.5)))
	logger.Info("culling every year", "fitness", evaluator.Evaluate(uniformVector(cfg.Horizon, 0.5)))
	if cfg.Horizon == len(referenceSolution) {
		logger.Info("recorded benchmark plan", "fitness", evaluator.Evaluate(referenceSolution))
	}

	if httpAddr != "" {
		httpSrv := &http.Server{
			Addr:              httpAddr,
			Handler:           status.NewHTTPServer(store).Handler(),
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       120 * time.Second,
		}
		go func() {
			logger.Info("HTTP status server listening", "addr", httpAddr)
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("HTTP server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpSrv.Shutdown(shutdownCtx); err != nil {
				logger.Error("HTTP shutdown error", "error", err)
			}
		}()
	}

	bounds := search.NewUniformBounds(cfg.Horizon, cfg.Bounds.Lower, cfg.Bounds.Upper)
	result, err := search.ParallelRetry(ctx, evaluator.Evaluate, bounds, search.RetryConfigFromSearch(cfg.Search), logger.Default)
	if err != nil {
		logger.Error("search failed", "error", err)
		os.Exit(1)
	}

	logger.Info("search finished",
		"run_id", runID,
		"best_value", result.BestValue,
		"best_vector", result.BestVector,
		"evals", result.EvalCount,
		"elapsed_s", progress.Elapsed().Seconds())
}

func uniformVector(dim int, v float64) []float64 {
	x := make([]float64, dim)
	for i := range x {
		x[i] = v
	}
	return x
}
