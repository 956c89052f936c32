package strategy

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/wildfunctions/function_finder/pkg/individual"
)

// ErrTournamentSize is returned for a tournament size that is odd, smaller
// than two, or larger than the population.
var ErrTournamentSize = errors.New("invalid tournament size")

func init() {
	Register("tournament", func() Strategy { return &TournamentStrategy{} })
}

// Tournament draws k distinct individuals uniformly without replacement,
// pairs them up in draw order and returns the k/2 pair winners.
func Tournament(pop []*individual.Individual, k int, rng *rand.Rand) ([]*individual.Individual, error) {
	if k < 2 || k%2 != 0 {
		return nil, fmt.Errorf("%w: %d is not a positive multiple of 2", ErrTournamentSize, k)
	}
	if k > len(pop) {
		return nil, fmt.Errorf("%w: %d exceeds population of %d", ErrTournamentSize, k, len(pop))
	}

	// Partial Fisher-Yates over indices: the first k slots are the sample.
	idx := make([]int, len(pop))
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + rng.Intn(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
	}

	winners := make([]*individual.Individual, k/2)
	for i := range winners {
		winners[i] = winner(pop[idx[2*i]], pop[idx[2*i+1]])
	}
	return winners, nil
}

// TournamentStrategy fills each quarter of the next generation with two
// tournament winners carried over as unchanged copies plus two offspring: clones of
// the winners, each mutated, then crossed with each other.
type TournamentStrategy struct{}

func (s *TournamentStrategy) Name() string { return "tournament" }

func (s *TournamentStrategy) Reproduce(
	pop []*individual.Individual,
	p Params,
	rng *rand.Rand,
) []*individual.Individual {
	n := len(pop)
	next := make([]*individual.Individual, 0, n)

	for i := 0; i < n/4; i++ {
		winners, err := Tournament(pop, p.TournamentSize, rng)
		if err != nil || len(winners) < 2 {
			panic(fmt.Sprintf("strategy: tournament of %d over %d individuals: %v", p.TournamentSize, n, err))
		}
		c1, c2 := breed(winners[0], winners[1], p, rng, true)
		next = append(next, winners[0].Clone(), winners[1].Clone(), c1, c2)
	}

	return next
}
