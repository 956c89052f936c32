package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimplify(t *testing.T) {
	x, _ := testVar(t, "x", 0)
	X := func() *Node { return NewLeaf(Ref(x)) }
	C := func(v float64) *Node { return NewLeaf(Const(v)) }

	cases := []struct {
		name string
		in   *Node
		want string
	}{
		{"fold", NewOp(OpAdd, C(1), C(2)), "3"},
		{"add zero", NewOp(OpAdd, X(), C(0)), "x"},
		{"mul one nested", NewOp(OpMul, C(1), NewOp(OpAdd, C(0), X())), "x"},
		{"sub self", NewOp(OpSub, NewOp(OpMul, C(2), X()), NewOp(OpMul, C(2), X())), "0"},
		{"mul zero", NewOp(OpMul, X(), C(0)), "0"},
		{"div one", NewOp(OpDiv, X(), C(1)), "x"},
		{"keeps div by zero", NewOp(OpDiv, C(6), C(0)), "(6 / 0)"},
		{"mul zero with division kept", NewOp(OpMul, NewOp(OpDiv, C(1), X()), C(0)), "((1 / x) * 0)"},
		{"two x", NewOp(OpAdd, NewOp(OpMul, C(1), X()), NewOp(OpSub, X(), C(0))), "(x + x)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := tc.in.String()
			got := Simplify(tc.in)
			require.NoError(t, got.Check())
			assert.True(t, got.IsRoot())
			assert.Equal(t, tc.want, got.String())
			assert.Equal(t, before, tc.in.String(), "input must not change")
		})
	}
}

func TestWeightedComplexity(t *testing.T) {
	tree := NewOp(OpAdd, NewLeaf(Const(1)), NewOp(OpMul, NewLeaf(Const(2)), NewLeaf(Const(3))))
	assert.Equal(t, 1.0+1.0+1.5+1.0+1.0, WeightedComplexity(tree))
	assert.Equal(t, 1.0, WeightedComplexity(NewLeaf(Const(9))))
}
