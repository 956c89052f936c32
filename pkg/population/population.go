package population

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/wildfunctions/function_finder/pkg/dataset"
	"github.com/wildfunctions/function_finder/pkg/expr"
	"github.com/wildfunctions/function_finder/pkg/individual"
	"github.com/wildfunctions/function_finder/pkg/strategy"
)

// Epsilon is the error below which an individual counts as a solution.
const Epsilon = 1e-5

// ErrPopulationSize is returned for a population size that is not a
// positive multiple of 4.
var ErrPopulationSize = errors.New("invalid population size")

// ErrTournamentSize is returned for a tournament size that is odd, smaller
// than 4 or larger than the population.
var ErrTournamentSize = strategy.ErrTournamentSize

// Observer is notified after every scored generation.
type Observer interface {
	ObserveGeneration(g Generation)
}

// Generation summarizes one completed generation.
type Generation struct {
	Index     int // 1-based; 0 is the seeded population
	BestError float64
	Best      string
	Stats     Stats
	Elapsed   time.Duration
}

// Population is a fixed-size set of individuals evolved generation by
// generation. It is not safe for concurrent use.
type Population struct {
	individuals    []*individual.Individual
	size           int
	tournamentSize int
	data           *dataset.Dataset
	grow           expr.GrowConfig
	mutationChance int
	strategy       strategy.Strategy
	rng            *rand.Rand

	history     []float64
	generations int
	evaluations int64

	workers   int
	cache     *cache.Cache
	logger    *slog.Logger
	observers []Observer
}

// Option configures a Population.
type Option func(*Population)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Population) { p.logger = logger }
}

// WithStrategy sets the reproduction strategy. Defaults to tournament.
func WithStrategy(s strategy.Strategy) Option {
	return func(p *Population) { p.strategy = s }
}

// WithMutationChance sets the 1-in-N mutation chance applied to offspring.
func WithMutationChance(n int) Option {
	return func(p *Population) { p.mutationChance = n }
}

// WithWorkers scores individuals on n goroutines. Each worker owns its own
// variable bindings. Values below 2 score serially.
func WithWorkers(n int) Option {
	return func(p *Population) { p.workers = n }
}

// WithErrorCache memoizes errors by rendered expression. Identical
// expressions always score the same against one dataset, so the cache must
// not be shared across datasets.
func WithErrorCache(c *cache.Cache) Option {
	return func(p *Population) { p.cache = c }
}

// WithObserver registers an observer for generation summaries.
func WithObserver(o Observer) Option {
	return func(p *Population) { p.observers = append(p.observers, o) }
}

// New validates the sizes and returns an empty population; call Seed to
// fill it.
func New(size, tournamentSize int, data *dataset.Dataset, grow expr.GrowConfig, rng *rand.Rand, opts ...Option) (*Population, error) {
	if size <= 0 || size%4 != 0 {
		return nil, fmt.Errorf("%w: %d is not a positive multiple of 4", ErrPopulationSize, size)
	}
	if tournamentSize < 4 || tournamentSize%2 != 0 || tournamentSize > size {
		return nil, fmt.Errorf("%w: %d must be even, at least 4 and at most %d", ErrTournamentSize, tournamentSize, size)
	}
	if err := grow.Validate(); err != nil {
		return nil, fmt.Errorf("grow config: %w", err)
	}
	if rng == nil {
		return nil, errors.New("population needs a random source")
	}

	p := &Population{
		size:           size,
		tournamentSize: tournamentSize,
		data:           data,
		grow:           grow,
		mutationChance: individual.DefaultMutationChance,
		rng:            rng,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.strategy == nil {
		s, err := strategy.Get("tournament")
		if err != nil {
			return nil, err
		}
		p.strategy = s
	}
	return p, nil
}

// Seed replaces the population with size independently grown individuals.
func (p *Population) Seed() {
	p.individuals = make([]*individual.Individual, p.size)
	for i := range p.individuals {
		p.individuals[i] = individual.Grow(p.rng, p.grow, p.data)
	}
}

// Individuals returns the current generation. The slice is owned by the
// population and is replaced, not modified, by Reproduce.
func (p *Population) Individuals() []*individual.Individual { return p.individuals }

// Size returns the fixed population size.
func (p *Population) Size() int { return p.size }

// History returns the best error of every generation evolved so far.
func (p *Population) History() []float64 {
	out := make([]float64, len(p.history))
	copy(out, p.history)
	return out
}

// Generations returns the number of reproduction steps performed.
func (p *Population) Generations() int { return p.generations }

// Evaluations returns the number of trees actually evaluated (cache hits
// excluded).
func (p *Population) Evaluations() int64 { return p.evaluations }

// Strategy returns the reproduction strategy in use.
func (p *Population) Strategy() strategy.Strategy { return p.strategy }

// Tournament runs one tournament of k participants over the current
// generation. Errors must be fresh.
func (p *Population) Tournament(k int) ([]*individual.Individual, error) {
	return strategy.Tournament(p.individuals, k, p.rng)
}

// Reproduce rescores every individual and replaces the population with the
// next generation built by the strategy.
func (p *Population) Reproduce() {
	p.Score()
	next := p.strategy.Reproduce(p.individuals, strategy.Params{
		Grow:           p.grow,
		MutationChance: p.mutationChance,
		TournamentSize: p.tournamentSize,
	}, p.rng)
	if len(next) != p.size {
		panic(fmt.Sprintf("population: strategy %s returned %d individuals, want %d", p.strategy.Name(), len(next), p.size))
	}
	p.individuals = next
	p.generations++
}

// Evolve scores the seeded population and runs up to generations
// reproduction steps, recording each generation's best error. It returns
// true as soon as a generation's best error drops below Epsilon. With a
// zero budget no reproduction happens and the seed alone decides.
func (p *Population) Evolve(generations int) bool {
	start := time.Now()
	p.Score()
	best := p.Best()
	p.notify(Generation{Index: 0, BestError: best.Error(), Best: best.String(), Stats: p.Stats(), Elapsed: time.Since(start)})
	if generations <= 0 {
		return best.Error() < Epsilon
	}

	for gen := 1; gen <= generations; gen++ {
		start = time.Now()
		p.Reproduce()
		p.Score()

		best = p.Best()
		p.history = append(p.history, best.Error())
		g := Generation{
			Index:     gen,
			BestError: best.Error(),
			Best:      best.String(),
			Stats:     p.Stats(),
			Elapsed:   time.Since(start),
		}
		p.notify(g)

		if best.Error() < Epsilon {
			p.logger.Info("ideal individual found",
				slog.Int("generation", gen),
				slog.Float64("error", best.Error()),
				slog.String("best", best.String()))
			return true
		}
	}

	p.logger.Info("generation budget exhausted",
		slog.Int("generations", generations),
		slog.Float64("best_error", best.Error()),
		slog.String("best", best.String()))
	return false
}

func (p *Population) notify(g Generation) {
	p.logger.Debug("generation",
		slog.Int("generation", g.Index),
		slog.Float64("best_error", g.BestError),
		slog.Float64("mean_error", g.Stats.Mean),
		slog.Int("finite", g.Stats.Finite),
		slog.String("best", g.Best))
	for _, o := range p.observers {
		o.ObserveGeneration(g)
	}
}

// Best returns the individual with the lowest cached error, earliest first
// on ties.
func (p *Population) Best() *individual.Individual {
	if len(p.individuals) == 0 {
		panic("population: Best of an empty population")
	}
	best := p.individuals[0]
	for _, ind := range p.individuals[1:] {
		if ind.Error() < best.Error() {
			best = ind
		}
	}
	return best
}

// Sort orders the population by ascending cached error, keeping the
// current order among equal errors.
func (p *Population) Sort() {
	sort.SliceStable(p.individuals, func(i, j int) bool {
		return p.individuals[i].Error() < p.individuals[j].Error()
	})
}
