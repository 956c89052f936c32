package strategy

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildfunctions/function_finder/pkg/dataset"
	"github.com/wildfunctions/function_finder/pkg/expr"
	"github.com/wildfunctions/function_finder/pkg/individual"
)

func testData(t *testing.T) *dataset.Dataset {
	t.Helper()
	d, err := dataset.New(
		[]string{"x"},
		[]map[string]float64{{"x": 0}, {"x": 1}, {"x": 2}, {"x": 3}},
		[]float64{0, 2, 4, 6},
	)
	require.NoError(t, err)
	return d
}

func testParams(d *dataset.Dataset) Params {
	return Params{
		Grow: expr.GrowConfig{
			Terminals:    d.Terminals([]float64{-1, 0, 1, 2}),
			Functions:    []expr.Op{expr.OpAdd, expr.OpMul},
			TerminalProb: 1,
			FunctionProb: 1,
			MaxDepth:     4,
		},
		MutationChance: individual.DefaultMutationChance,
		TournamentSize: 4,
	}
}

// scoredPopulation returns n leaves whose errors are 0..n-1 in a shuffled order.
func scoredPopulation(t *testing.T, n int, rng *rand.Rand) []*individual.Individual {
	t.Helper()
	d := testData(t)
	pop := make([]*individual.Individual, n)
	for i, e := range rng.Perm(n) {
		pop[i] = individual.New(expr.NewLeaf(expr.Const(float64(e))), d)
		pop[i].SetError(float64(e))
	}
	return pop
}

func TestTournamentWinners(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	pop := scoredPopulation(t, 40, rng)
	member := map[*individual.Individual]bool{}
	for _, ind := range pop {
		member[ind] = true
	}

	for _, k := range []int{2, 4, 10, 40} {
		for trial := 0; trial < 200; trial++ {
			winners, err := Tournament(pop, k, rng)
			require.NoError(t, err)
			require.Len(t, winners, k/2)

			seen := map[*individual.Individual]bool{}
			for _, w := range winners {
				assert.True(t, member[w])
				assert.False(t, seen[w], "duplicate winner")
				seen[w] = true
			}
		}
	}
}

func TestTournamentLowerErrorWins(t *testing.T) {
	d := testData(t)
	a := individual.New(expr.NewLeaf(expr.Const(0)), d)
	b := individual.New(expr.NewLeaf(expr.Const(1)), d)
	a.SetError(1)
	b.SetError(5)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		winners, err := Tournament([]*individual.Individual{a, b}, 2, rng)
		require.NoError(t, err)
		assert.Same(t, a, winners[0])
	}
}

func TestTournamentFullPopulationPicksPairMinimum(t *testing.T) {
	// With k == n every individual takes part, so the overall best always wins.
	rng := rand.New(rand.NewSource(5))
	pop := scoredPopulation(t, 8, rng)
	for i := 0; i < 100; i++ {
		winners, err := Tournament(pop, 8, rng)
		require.NoError(t, err)
		best := winners[0].Error()
		for _, w := range winners[1:] {
			if w.Error() < best {
				best = w.Error()
			}
		}
		assert.Equal(t, 0.0, best)
	}
}

func TestTournamentSizeErrors(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	pop := scoredPopulation(t, 8, rng)

	for _, k := range []int{0, 3, 10} {
		_, err := Tournament(pop, k, rng)
		assert.True(t, errors.Is(err, ErrTournamentSize), "k=%d", k)
	}
}

func TestReproducePreservesSize(t *testing.T) {
	d := testData(t)
	p := testParams(d)

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			s, err := Get(name)
			require.NoError(t, err)
			rng := rand.New(rand.NewSource(42))

			pop := make([]*individual.Individual, 40)
			for i := range pop {
				pop[i] = individual.Grow(rng, p.Grow, d)
				pop[i].EvaluateError(d.Bindings())
			}
			before := make([]string, len(pop))
			for i, ind := range pop {
				before[i] = ind.String()
			}

			next := s.Reproduce(pop, p, rng)
			require.Len(t, next, len(pop))

			old := map[*individual.Individual]bool{}
			parents := map[string]bool{}
			for _, ind := range pop {
				old[ind] = true
				parents[ind.String()] = true
			}
			slots := map[*individual.Individual]bool{}
			for i, ind := range next {
				require.NoError(t, ind.Root.Check())
				assert.False(t, old[ind], "slot %d shares a parent pointer", i)
				assert.False(t, slots[ind], "slot %d repeats an individual", i)
				slots[ind] = true
				if i%4 < 2 {
					assert.True(t, parents[ind.String()], "slot %d should copy a parent", i)
					assert.True(t, ind.ErrorValid(), "slot %d should keep its parent's error", i)
				}
			}

			// Parents are never modified in place.
			for i, ind := range pop {
				assert.Equal(t, before[i], ind.String())
			}
		})
	}
}

func TestShuffleParentsAreQuadWinners(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	pop := scoredPopulation(t, 16, rng)
	d := testData(t)

	next := (&ShuffleStrategy{}).Reproduce(pop, testParams(d), rng)
	require.Len(t, next, 16)

	// Each quad carries copies of its two pair winners: 8 distinct individuals.
	carried := map[*individual.Individual]bool{}
	for i := 0; i < len(next); i += 4 {
		carried[next[i]] = true
		carried[next[i+1]] = true
	}
	assert.Len(t, carried, 8)
	// The overall best (error 0) always wins its pairing.
	found := false
	for ind := range carried {
		if ind.Error() == 0 {
			found = true
		}
	}
	assert.True(t, found)
}

func TestStrategyRegistry(t *testing.T) {
	names := Names()
	assert.Equal(t, []string{"shuffle", "tournament"}, names)

	for _, name := range names {
		s, err := Get(name)
		require.NoError(t, err)
		assert.Equal(t, name, s.Name())
	}

	_, err := Get("nonexistent")
	assert.Error(t, err)
}

func TestTournamentWinnersDistinctAcrossGenerations(t *testing.T) {
	d := testData(t)
	p := testParams(d)
	rng := rand.New(rand.NewSource(11))

	pop := make([]*individual.Individual, 40)
	for i := range pop {
		pop[i] = individual.Grow(rng, p.Grow, d)
	}
	for gen := 0; gen < 10; gen++ {
		for _, ind := range pop {
			ind.EvaluateError(d.Bindings())
		}
		pop = (&TournamentStrategy{}).Reproduce(pop, p, rng)
	}
	for _, ind := range pop {
		ind.EvaluateError(d.Bindings())
	}

	for trial := 0; trial < 2000; trial++ {
		winners, err := Tournament(pop, 8, rng)
		require.NoError(t, err)
		seen := map[*individual.Individual]bool{}
		for _, w := range winners {
			require.False(t, seen[w], "trial %d returned a winner twice", trial)
			seen[w] = true
		}
	}
}
