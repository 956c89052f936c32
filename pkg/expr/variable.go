package expr

import (
	"fmt"
	"strconv"
)

// Variable is an independent variable: its symbol and the value it takes
// on every dataset row. A Variable is immutable once built; the value used
// during an evaluation pass lives in a Bindings.
type Variable struct {
	Symbol string
	Domain []float64
	index  int
}

// NewVariables builds one Variable per symbol. domains[i] holds the per-row
// values of symbols[i].
func NewVariables(symbols []string, domains [][]float64) ([]*Variable, error) {
	if len(symbols) != len(domains) {
		return nil, fmt.Errorf("%d symbols but %d domains", len(symbols), len(domains))
	}
	seen := make(map[string]bool, len(symbols))
	vars := make([]*Variable, len(symbols))
	for i, s := range symbols {
		if s == "" {
			return nil, fmt.Errorf("variable %d has an empty symbol", i)
		}
		if seen[s] {
			return nil, fmt.Errorf("duplicate variable symbol: %s", s)
		}
		if _, err := strconv.ParseFloat(s, 64); err == nil {
			return nil, fmt.Errorf("variable symbol %q reads as a number", s)
		}
		seen[s] = true
		vars[i] = &Variable{Symbol: s, Domain: domains[i], index: i}
	}
	return vars, nil
}

// Bindings holds the current value of every variable for one evaluation
// pass. A tree may be evaluated against any Bindings built from the same
// variable set, so concurrent evaluators each own a Bindings.
type Bindings struct {
	vars    []*Variable
	current []float64
}

// NewBindings returns bindings for vars, positioned on row 0.
func NewBindings(vars []*Variable) *Bindings {
	b := &Bindings{
		vars:    vars,
		current: make([]float64, len(vars)),
	}
	if len(vars) > 0 && len(vars[0].Domain) > 0 {
		b.SetRow(0)
	}
	return b
}

// SetRow overwrites every variable's current value with its value on row i.
func (b *Bindings) SetRow(i int) {
	for j, v := range b.vars {
		b.current[j] = v.Domain[i]
	}
}

// Set overrides the current value of a single variable.
func (b *Bindings) Set(v *Variable, x float64) {
	b.current[v.index] = x
}

// Value returns the current value of v.
func (b *Bindings) Value(v *Variable) float64 {
	return b.current[v.index]
}
