package strategy

import (
	"math/rand"

	"github.com/wildfunctions/function_finder/pkg/individual"
)

func init() {
	Register("shuffle", func() Strategy { return &ShuffleStrategy{} })
}

// ShuffleStrategy shuffles the population and walks it in disjoint groups
// of four. The better of the first pair and the better of the second pair
// are copied into the next generation and bred: their clones are crossed over, then each mutated.
// Every individual competes exactly once per generation.
type ShuffleStrategy struct{}

func (s *ShuffleStrategy) Name() string { return "shuffle" }

func (s *ShuffleStrategy) Reproduce(
	pop []*individual.Individual,
	p Params,
	rng *rand.Rand,
) []*individual.Individual {
	n := len(pop)
	order := make([]*individual.Individual, n)
	copy(order, pop)
	rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })

	next := make([]*individual.Individual, 0, n)
	for i := 0; i < n/4; i++ {
		p1 := winner(order[4*i], order[4*i+1])
		p2 := winner(order[4*i+2], order[4*i+3])
		c1, c2 := breed(p1, p2, p, rng, false)
		next = append(next, p1.Clone(), p2.Clone(), c1, c2)
	}

	return next
}
