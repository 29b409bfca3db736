package config

// Config represents the full evaluation and search configuration
type Config struct {
	LogLevel   string     `yaml:"log_level"`
	HTTPAddr   string     `yaml:"http_addr,omitempty"`
	Dynamics   Dynamics   `yaml:"dynamics"`
	Horizon    int        `yaml:"horizon_years"`
	Bounds     Bounds     `yaml:"bounds"`
	Scoring    Scoring    `yaml:"scoring"`
	Evaluation Evaluation `yaml:"evaluation"`
	Integrator Integrator `yaml:"integrator"`
	Search     *Search    `yaml:"search,omitempty"`
}

// Dynamics holds the predator-prey vector field parameters and the
// initial populations at time zero
type Dynamics struct {
	GrowthRate         float64 `yaml:"growth_rate"`          // prey growth rate a
	PredationRate      float64 `yaml:"predation_rate"`       // predation coefficient b
	PredatorDeathRate  float64 `yaml:"predator_death_rate"`  // predator decay rate c
	PredatorGrowthRate float64 `yaml:"predator_growth_rate"` // conversion coefficient d
	InitialPrey        float64 `yaml:"initial_prey"`
	InitialPredator    float64 `yaml:"initial_predator"`
}

// Bounds is the uniform per-dimension search interval for decision vectors
type Bounds struct {
	Lower float64 `yaml:"lower"`
	Upper float64 `yaml:"upper"`
}

// Scoring configures the post-horizon scoring window
type Scoring struct {
	WindowYears float64 `yaml:"window_years"`
	Samples     int     `yaml:"samples"`
}

// Evaluation configures fitness acceptance and the discrete transition floor
type Evaluation struct {
	RejectionThreshold float64 `yaml:"rejection_threshold"`
	PredatorFloor      float64 `yaml:"predator_floor"`
}

// Integrator configures the IVP solver limits
type Integrator struct {
	RTol     float64 `yaml:"rtol"`
	ATol     float64 `yaml:"atol"`
	MaxSteps int     `yaml:"max_steps"`
}

// Search configures the optimization driver
type Search struct {
	Strategy   string  `yaml:"strategy"` // de
	Population int     `yaml:"population"`
	MaxEvals   int     `yaml:"max_evals"`
	Restarts   int     `yaml:"restarts"`
	Workers    int     `yaml:"workers"` // 0 = GOMAXPROCS
	F          float64 `yaml:"f"`       // differential weight
	CR         float64 `yaml:"cr"`      // crossover probability
	Seed       int64   `yaml:"seed"`    // 0 = time-based
}

// Default returns the reference configuration: 20 culling years over
// classic Lotka-Volterra parameters, scored on a 5-year window, with a
// parallel differential-evolution search attached
func Default() *Config {
	cfg := &Config{Search: &Search{}}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Dynamics.GrowthRate == 0 {
		cfg.Dynamics.GrowthRate = 1.0
	}
	if cfg.Dynamics.PredationRate == 0 {
		cfg.Dynamics.PredationRate = 0.1
	}
	if cfg.Dynamics.PredatorDeathRate == 0 {
		cfg.Dynamics.PredatorDeathRate = 1.5
	}
	if cfg.Dynamics.PredatorGrowthRate == 0 {
		cfg.Dynamics.PredatorGrowthRate = 0.075
	}
	if cfg.Dynamics.InitialPrey == 0 {
		cfg.Dynamics.InitialPrey = 10
	}
	if cfg.Dynamics.InitialPredator == 0 {
		cfg.Dynamics.InitialPredator = 5
	}
	if cfg.Horizon == 0 {
		cfg.Horizon = 20
	}
	if cfg.Bounds.Lower == 0 && cfg.Bounds.Upper == 0 {
		cfg.Bounds = Bounds{Lower: -1, Upper: 1}
	}
	if cfg.Scoring.WindowYears == 0 {
		cfg.Scoring.WindowYears = 5
	}
	if cfg.Scoring.Samples == 0 {
		cfg.Scoring.Samples = 50
	}
	if cfg.Evaluation.RejectionThreshold == 0 {
		cfg.Evaluation.RejectionThreshold = 1e99
	}
	if cfg.Evaluation.PredatorFloor == 0 {
		cfg.Evaluation.PredatorFloor = 1
	}
	if cfg.Integrator.RTol == 0 {
		cfg.Integrator.RTol = 1e-6
	}
	if cfg.Integrator.ATol == 0 {
		cfg.Integrator.ATol = 1e-6
	}
	if cfg.Integrator.MaxSteps == 0 {
		cfg.Integrator.MaxSteps = 1000
	}
	if cfg.Search != nil {
		applySearchDefaults(cfg.Search)
	}
}

func applySearchDefaults(s *Search) {
	if s.Strategy == "" {
		s.Strategy = "de"
	}
	if s.Population == 0 {
		s.Population = 31
	}
	if s.MaxEvals == 0 {
		s.MaxEvals = 50000
	}
	if s.Restarts == 0 {
		s.Restarts = 8
	}
	if s.F == 0 {
		s.F = 0.5
	}
	if s.CR == 0 {
		s.CR = 0.9
	}
}
