package expr

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// lopsided returns a 7-node tree whose left spine is much deeper than the
// right, so biased selection would show up quickly.
func lopsided() *Node {
	return NewOp(OpAdd,
		NewOp(OpMul,
			NewOp(OpSub, NewLeaf(Const(1)), NewLeaf(Const(2))),
			NewLeaf(Const(3)),
		),
		NewLeaf(Const(4)),
	)
}

func TestRandomSelectUniform(t *testing.T) {
	tree := lopsided()
	require.NoError(t, tree.Check())

	var nodes []*Node
	index := map[*Node]int{}
	tree.Walk(func(n *Node) {
		index[n] = len(nodes)
		nodes = append(nodes, n)
	})
	s := tree.Size()
	require.Len(t, nodes, s)

	rng := rand.New(rand.NewSource(2024))
	const trials = 70000
	observed := make([]float64, s)
	for i := 0; i < trials; i++ {
		observed[index[tree.RandomSelect(rng)]]++
	}

	expected := make([]float64, s)
	for i := range expected {
		expected[i] = float64(trials) / float64(s)
	}
	chi := stat.ChiSquare(observed, expected)
	p := 1 - distuv.ChiSquared{K: float64(s - 1)}.CDF(chi)
	assert.Greater(t, p, 0.001, "chi-square %.2f over %d nodes", chi, s)

	for i, o := range observed {
		assert.InDelta(t, 1/float64(s), o/trials, 0.01, "node %s", nodes[i])
	}
}

func TestRandomSelectSubtreeOnly(t *testing.T) {
	tree := lopsided()
	sub := tree.Children[0]
	inSub := map[*Node]bool{}
	sub.Walk(func(n *Node) { inSub[n] = true })

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		assert.True(t, inSub[sub.RandomSelect(rng)])
	}
}

func TestRandomSelectLeaf(t *testing.T) {
	leaf := NewLeaf(Const(1))
	rng := rand.New(rand.NewSource(1))
	assert.Same(t, leaf, leaf.RandomSelect(rng))
}

func TestRandomSelectStaleSizesPanics(t *testing.T) {
	tree := lopsided()
	tree.size = 50
	rng := rand.New(rand.NewSource(1))
	assert.Panics(t, func() {
		for i := 0; i < 100; i++ {
			tree.RandomSelect(rng)
		}
	})
}
