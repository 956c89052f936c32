package expr

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGrowConfig(t *testing.T, maxDepth int) GrowConfig {
	t.Helper()
	vars, err := NewVariables([]string{"x"}, [][]float64{{0, 1, 2, 3}})
	require.NoError(t, err)
	return GrowConfig{
		Terminals:    []Terminal{Const(-1), Const(0), Const(1), Const(2), Ref(vars[0])},
		Functions:    []Op{OpAdd, OpSub, OpMul, OpDiv},
		TerminalProb: 1,
		FunctionProb: 2,
		MaxDepth:     maxDepth,
	}
}

func TestGrowRespectsDepthAndSizes(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, maxDepth := range []int{0, 1, 3, 6} {
		cfg := testGrowConfig(t, maxDepth)
		for i := 0; i < 500; i++ {
			tree := Grow(rng, cfg)
			require.NoError(t, tree.Check())
			assert.True(t, tree.IsRoot())
			assert.LessOrEqual(t, tree.MaxNodeDepth(), maxDepth)

			count := 0
			tree.Walk(func(*Node) { count++ })
			assert.Equal(t, count, tree.Size())
		}
	}
}

func TestGrowDepthZeroIsTerminal(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	cfg := testGrowConfig(t, 0)
	for i := 0; i < 100; i++ {
		tree := Grow(rng, cfg)
		assert.True(t, tree.Leaf)
		assert.Equal(t, 1, tree.Size())
	}
}

func TestGrowEmptyFunctionSet(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	cfg := testGrowConfig(t, 5)
	cfg.Functions = nil
	for i := 0; i < 100; i++ {
		assert.Equal(t, 1, Grow(rng, cfg).Size())
	}
}

func TestGrowAllFunctionsFillsToMaxDepth(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	cfg := testGrowConfig(t, 3)
	cfg.TerminalProb = 0
	tree := Grow(rng, cfg)
	require.NoError(t, tree.Check())
	// Full binary tree of height 3.
	assert.Equal(t, 15, tree.Size())
}

func TestGrowAtOffsetsDepth(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	cfg := testGrowConfig(t, 4)
	for i := 0; i < 200; i++ {
		sub := GrowAt(rng, cfg, 3)
		assert.Equal(t, 3, sub.Depth())
		assert.LessOrEqual(t, sub.MaxNodeDepth(), 4)
		assert.LessOrEqual(t, sub.Size(), 3)
	}
}

func TestGrowSameSeedSameTree(t *testing.T) {
	cfg := testGrowConfig(t, 5)
	a := Grow(rand.New(rand.NewSource(77)), cfg)
	b := Grow(rand.New(rand.NewSource(77)), cfg)
	assert.Equal(t, a.String(), b.String())
}

func TestGrowTerminalFrequency(t *testing.T) {
	// Weights 3:1 in favour of terminals at the root.
	rng := rand.New(rand.NewSource(5))
	cfg := testGrowConfig(t, 1)
	cfg.TerminalProb, cfg.FunctionProb = 3, 1

	leaves := 0
	const trials = 20000
	for i := 0; i < trials; i++ {
		if Grow(rng, cfg).Leaf {
			leaves++
		}
	}
	assert.InDelta(t, 0.75, float64(leaves)/trials, 0.02)
}

func TestGrowConfigValidate(t *testing.T) {
	cfg := testGrowConfig(t, 3)
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.Terminals = nil
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.TerminalProb, bad.FunctionProb = 0, 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.MaxDepth = -1
	assert.Error(t, bad.Validate())
}

func TestGrowEmptyTerminalsPanics(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	assert.Panics(t, func() { Grow(rng, GrowConfig{FunctionProb: 1, MaxDepth: 2}) })
}
