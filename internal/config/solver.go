package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"tour-planner-service/internal/tsp"
)

// Solver holds the planning defaults applied when a request leaves them out.
type Solver struct {
	Algorithm       string               `yaml:"algorithm"`
	TimeBudgetMS    int                  `yaml:"time_budget_ms"`
	// MaxTimeBudgetMS caps the budget a single request may ask for.
	MaxTimeBudgetMS int                  `yaml:"max_time_budget_ms"`
	SpeedKMH        float64              `yaml:"speed_kmh"`
	Annealing       tsp.AnnealingOptions `yaml:"annealing"`
}

func DefaultSolver() Solver {
	return Solver{
		Algorithm:    tsp.AlgorithmBranchAndBound,
		TimeBudgetMS:    20000,
		MaxTimeBudgetMS: 60000,
		SpeedKMH:        15,
		Annealing:       tsp.DefaultAnnealingOptions(),
	}
}

func (s Solver) TimeBudget() time.Duration {
	return time.Duration(s.TimeBudgetMS) * time.Millisecond
}

func (s Solver) MaxTimeBudget() time.Duration {
	return time.Duration(s.MaxTimeBudgetMS) * time.Millisecond
}

func (s Solver) SpeedMetersPerSecond() float64 { return s.SpeedKMH / 3.6 }

// LoadSolver starts from DefaultSolver, overlays the YAML file at path (if
// any), then the SOLVER_ALGORITHM, TIME_BUDGET_MS, MAX_TIME_BUDGET_MS and
// SPEED_KMH variables.
func LoadSolver(path string) (Solver, error) {
	s := DefaultSolver()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Solver{}, fmt.Errorf("load solver config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Solver{}, fmt.Errorf("load solver config: parse %q: %w", path, err)
		}
	}

	s.Algorithm = Get("SOLVER_ALGORITHM", s.Algorithm)
	s.TimeBudgetMS = GetInt("TIME_BUDGET_MS", s.TimeBudgetMS)
	s.MaxTimeBudgetMS = GetInt("MAX_TIME_BUDGET_MS", s.MaxTimeBudgetMS)
	s.SpeedKMH = GetFloat("SPEED_KMH", s.SpeedKMH)

	if s.TimeBudgetMS <= 0 {
		return Solver{}, fmt.Errorf("load solver config: time_budget_ms must be positive, got %d", s.TimeBudgetMS)
	}
	if s.TimeBudgetMS > s.MaxTimeBudgetMS {
		return Solver{}, fmt.Errorf("load solver config: time_budget_ms %d exceeds max_time_budget_ms %d", s.TimeBudgetMS, s.MaxTimeBudgetMS)
	}
	if s.SpeedKMH <= 0 {
		return Solver{}, fmt.Errorf("load solver config: speed_kmh must be positive, got %v", s.SpeedKMH)
	}
	if _, err := tsp.New(s.Algorithm, s.Annealing); err != nil {
		return Solver{}, fmt.Errorf("load solver config: %w", err)
	}
	return s, nil
}
