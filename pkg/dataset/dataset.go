package dataset

import (
	"fmt"

	"github.com/wildfunctions/function_finder/pkg/expr"
)

// Dataset is the table a candidate expression is scored against: the
// independent variables with their per-row values and the dependent target
// of each row. It is shared read-only by every individual of a run.
type Dataset struct {
	Variables []*expr.Variable
	Targets   []float64
}

// New builds a dataset from variable symbols, one row mapping per sample
// (symbol -> value) and the dependent value of each row.
func New(symbols []string, rows []map[string]float64, targets []float64) (*Dataset, error) {
	if len(rows) != len(targets) {
		return nil, fmt.Errorf("%d independent rows but %d dependent values", len(rows), len(targets))
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("dataset has no rows")
	}

	domains := make([][]float64, len(symbols))
	for i, s := range symbols {
		domains[i] = make([]float64, len(rows))
		for r, row := range rows {
			v, ok := row[s]
			if !ok {
				return nil, fmt.Errorf("row %d has no value for variable %s", r, s)
			}
			domains[i][r] = v
		}
	}

	vars, err := expr.NewVariables(symbols, domains)
	if err != nil {
		return nil, err
	}
	return &Dataset{Variables: vars, Targets: targets}, nil
}

// Rows returns the number of samples.
func (d *Dataset) Rows() int { return len(d.Targets) }

// Bindings returns a fresh set of variable bindings for one evaluator.
func (d *Dataset) Bindings() *expr.Bindings {
	return expr.NewBindings(d.Variables)
}

// Terminals returns the terminal set for growth: the literal constants
// followed by every variable of the dataset.
func (d *Dataset) Terminals(constants []float64) []expr.Terminal {
	terms := make([]expr.Terminal, 0, len(constants)+len(d.Variables))
	for _, c := range constants {
		terms = append(terms, expr.Const(c))
	}
	for _, v := range d.Variables {
		terms = append(terms, expr.Ref(v))
	}
	return terms
}

// Symbols returns the variable symbols in order.
func (d *Dataset) Symbols() []string {
	s := make([]string, len(d.Variables))
	for i, v := range d.Variables {
		s[i] = v.Symbol
	}
	return s
}
