package tsp

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
	"time"

	"tour-planner-service/internal/domain"
	"tour-planner-service/internal/graph"
)

// AnnealingOptions tunes SimulatedAnnealing. Zero fields fall back to
// DefaultAnnealingOptions.
type AnnealingOptions struct {
	InitialTemperature float64 `yaml:"initial_temperature"`
	CoolingFactor      float64 `yaml:"cooling_factor"`
	DwellGrowth        float64 `yaml:"dwell_growth"`
	// DwellRate is the number of moves per level per budget millisecond.
	DwellRate      float64 `yaml:"dwell_rate"`
	MinTemperature float64 `yaml:"min_temperature"`
	InitAttempts   int     `yaml:"init_attempts"`
	MoveAttempts   int     `yaml:"move_attempts"`
	// Seed 0 seeds from the clock.
	Seed int64 `yaml:"seed"`
}

func DefaultAnnealingOptions() AnnealingOptions {
	return AnnealingOptions{
		InitialTemperature: 200000,
		CoolingFactor:      0.96,
		DwellGrowth:        1.001,
		DwellRate:          0.0001,
		MinTemperature:     0.1,
		InitAttempts:       10000,
		MoveAttempts:       1000,
	}
}

func (o AnnealingOptions) withDefaults() AnnealingOptions {
	d := DefaultAnnealingOptions()
	if o.InitialTemperature <= 0 {
		o.InitialTemperature = d.InitialTemperature
	}
	if o.CoolingFactor <= 0 || o.CoolingFactor >= 1 {
		o.CoolingFactor = d.CoolingFactor
	}
	if o.DwellGrowth < 1 {
		o.DwellGrowth = d.DwellGrowth
	}
	if o.DwellRate <= 0 {
		o.DwellRate = d.DwellRate
	}
	if o.MinTemperature <= 0 {
		o.MinTemperature = d.MinTemperature
	}
	if o.InitAttempts <= 0 {
		o.InitAttempts = d.InitAttempts
	}
	if o.MoveAttempts <= 0 {
		o.MoveAttempts = d.MoveAttempts
	}
	return o
}

// SimulatedAnnealing is a randomized anytime search. The working permutation
// may get worse; the reported best never does.
type SimulatedAnnealing struct {
	base
	opts AnnealingOptions
}

func NewSimulatedAnnealing(opts AnnealingOptions) *SimulatedAnnealing {
	return &SimulatedAnnealing{base: newBase(), opts: opts.withDefaults()}
}

func (s *SimulatedAnnealing) Search(timeBudget time.Duration, g *graph.Graph, requests *domain.RequestSet) <-chan Result {
	seed := s.opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	a := &annealer{opts: s.opts, rng: rand.New(rand.NewSource(seed))}
	return s.search(timeBudget, g, requests, a.run)
}

type annealer struct {
	opts AnnealingOptions
	rng  *rand.Rand
}

func (a *annealer) run(st *searchState) error {
	perm, err := a.initial(st)
	if err != nil {
		return err
	}
	cur := OrderCost(st.g, perm)
	st.offer(perm, cur)

	levels := float64(st.budget.Milliseconds())
	dwell := a.opts.DwellRate * levels
	temp := a.opts.InitialTemperature

	for n := 0; float64(n) < levels && temp >= a.opts.MinTemperature; n++ {
		moves := int(dwell) + 1
		for m := 0; m < moves; m++ {
			next, ok := a.move(st, perm)
			if !ok {
				return nil
			}
			cost := OrderCost(st.g, next)
			if math.IsInf(cost, 1) {
				continue
			}

			delta := cost - cur
			if delta < 0 || a.rng.Float64() < math.Exp(-delta/temp) {
				perm, cur = next, cost
				st.offer(perm, cur)
			}
		}
		if st.expired() {
			return nil
		}
		temp *= a.opts.CoolingFactor
		dwell *= a.opts.DwellGrowth
	}
	return nil
}

// initial draws random permutations until one respects precedence. When the
// attempts run out it builds one by only releasing deliveries after their
// pickups.
func (a *annealer) initial(st *searchState) ([]string, error) {
	perm := slices.Clone(st.points)
	rest := perm[1:]
	for i := 0; i < a.opts.InitAttempts; i++ {
		a.rng.Shuffle(len(rest), func(x, y int) { rest[x], rest[y] = rest[y], rest[x] })
		if Feasible(perm, st.precedence) {
			return perm, nil
		}
	}

	out := []string{st.depot}
	placed := map[string]bool{st.depot: true}
	pending := slices.Clone(st.points[1:])
	for len(pending) > 0 {
		var ready []int
		for i, id := range pending {
			if released(st.precedence, id, placed) {
				ready = append(ready, i)
			}
		}
		if len(ready) == 0 {
			return nil, fmt.Errorf("simulated annealing: no precedence-respecting order: %w", ErrInfeasibleRequestSet)
		}
		i := ready[a.rng.Intn(len(ready))]
		placed[pending[i]] = true
		out = append(out, pending[i])
		pending = slices.Delete(pending, i, i+1)
	}
	return out, nil
}

// move relocates one non-depot element to another position. It re-rolls until
// the result is feasible and reports false if no attempt succeeded.
func (a *annealer) move(st *searchState, perm []string) ([]string, bool) {
	n := len(perm) - 1
	if n < 2 {
		return nil, false
	}
	for k := 0; k < a.opts.MoveAttempts; k++ {
		from := 1 + a.rng.Intn(n)
		to := 1 + a.rng.Intn(n)
		if from == to {
			continue
		}

		next := slices.Clone(perm)
		id := next[from]
		next = slices.Delete(next, from, from+1)
		next = slices.Insert(next, to, id)
		if Feasible(next, st.precedence) {
			return next, true
		}
	}
	return nil, false
}
