package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildfunctions/function_finder/pkg/expr"
)

func TestNew(t *testing.T) {
	d, err := New(
		[]string{"x", "y"},
		[]map[string]float64{{"x": 0, "y": 1}, {"x": 2, "y": 3}},
		[]float64{1, 5},
	)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Rows())
	assert.Equal(t, []string{"x", "y"}, d.Symbols())
	assert.Equal(t, []float64{0, 2}, d.Variables[0].Domain)
	assert.Equal(t, []float64{1, 3}, d.Variables[1].Domain)

	b := d.Bindings()
	b.SetRow(1)
	assert.Equal(t, 3.0, b.Value(d.Variables[1]))
}

func TestNewErrors(t *testing.T) {
	_, err := New([]string{"x"}, []map[string]float64{{"x": 1}}, []float64{1, 2})
	assert.Error(t, err, "row count mismatch")

	_, err = New([]string{"x"}, nil, nil)
	assert.Error(t, err, "empty")

	_, err = New([]string{"x"}, []map[string]float64{{"y": 1}}, []float64{1})
	assert.Error(t, err, "missing symbol")

	_, err = New([]string{"x", "x"}, []map[string]float64{{"x": 1}}, []float64{1})
	assert.Error(t, err, "duplicate symbol")
}

func TestTerminals(t *testing.T) {
	d, err := New([]string{"x"}, []map[string]float64{{"x": 1}}, []float64{2})
	require.NoError(t, err)

	terms := d.Terminals([]float64{-1, 2})
	require.Len(t, terms, 3)
	assert.Equal(t, expr.Const(-1), terms[0])
	assert.True(t, terms[1].IsLiteral())
	assert.Same(t, d.Variables[0], terms[2].Var)
}

func TestIndependentBindings(t *testing.T) {
	d, err := New([]string{"x"}, []map[string]float64{{"x": 1}, {"x": 9}}, []float64{0, 0})
	require.NoError(t, err)

	a, b := d.Bindings(), d.Bindings()
	a.SetRow(1)
	assert.Equal(t, 9.0, a.Value(d.Variables[0]))
	assert.Equal(t, 1.0, b.Value(d.Variables[0]))
}
