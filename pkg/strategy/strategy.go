package strategy

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/wildfunctions/function_finder/pkg/expr"
	"github.com/wildfunctions/function_finder/pkg/individual"
)

// Params are the per-run settings a strategy reproduces with.
type Params struct {
	Grow           expr.GrowConfig
	MutationChance int // 1-in-N chance of mutating an offspring
	TournamentSize int
}

// Strategy builds the next generation from a scored population. The
// returned slice has the same length as pop and holds only fresh
// individuals: parents carried into the next generation are cloned, so no
// individual ever occupies two slots and pop is never modified.
type Strategy interface {
	Name() string
	Reproduce(pop []*individual.Individual, p Params, rng *rand.Rand) []*individual.Individual
}

var registry = map[string]func() Strategy{}

// Register adds a strategy constructor to the registry.
func Register(name string, constructor func() Strategy) {
	registry[name] = constructor
}

// Get returns a strategy by name.
func Get(name string) (Strategy, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy: %s (available: %v)", name, Names())
	}
	return ctor(), nil
}

// Names returns all registered strategy names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for k := range registry {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// breed clones two parents and applies mutation and crossover to the
// clones. mutateFirst selects the order of the two operators.
func breed(a, b *individual.Individual, p Params, rng *rand.Rand, mutateFirst bool) (*individual.Individual, *individual.Individual) {
	c1 := a.Clone()
	c2 := b.Clone()
	if mutateFirst {
		c1.Mutate(rng, p.Grow, p.MutationChance)
		c2.Mutate(rng, p.Grow, p.MutationChance)
		c1.Crossover(c2, rng)
		return c1, c2
	}
	c1.Crossover(c2, rng)
	c1.Mutate(rng, p.Grow, p.MutationChance)
	c2.Mutate(rng, p.Grow, p.MutationChance)
	return c1, c2
}

// winner returns the individual with the lower error; ties go to b.
func winner(a, b *individual.Individual) *individual.Individual {
	if a.Error() < b.Error() {
		return a
	}
	return b
}
