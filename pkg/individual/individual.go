package individual

import (
	"math"
	"math/rand"

	"github.com/wildfunctions/function_finder/pkg/dataset"
	"github.com/wildfunctions/function_finder/pkg/expr"
)

// DefaultMutationChance is the default 1-in-N chance of a mutation (5%).
const DefaultMutationChance = 20

// Individual is one candidate equation: an expression tree scored against a
// shared dataset. Its cached error is valid only between a call to
// EvaluateError (or SetError) and the next structural change.
type Individual struct {
	Root *expr.Node
	Data *dataset.Dataset

	err   float64
	valid bool
}

// New wraps root, which the individual takes ownership of.
func New(root *expr.Node, data *dataset.Dataset) *Individual {
	return &Individual{Root: root, Data: data}
}

// Grow returns an individual with a freshly grown random tree.
func Grow(rng *rand.Rand, cfg expr.GrowConfig, data *dataset.Dataset) *Individual {
	return New(expr.Grow(rng, cfg), data)
}

// Clone returns a deep copy sharing only the dataset. The copy keeps the
// cached error since its tree is identical.
func (ind *Individual) Clone() *Individual {
	return &Individual{
		Root:  ind.Root.Clone(),
		Data:  ind.Data,
		err:   ind.err,
		valid: ind.valid,
	}
}

// Error returns the cached error. Check ErrorValid before trusting it.
func (ind *Individual) Error() float64 { return ind.err }

// ErrorValid reports whether the cached error matches the current tree.
func (ind *Individual) ErrorValid() bool { return ind.valid }

// SetError records an error computed elsewhere for the current tree.
func (ind *Individual) SetError(e float64) {
	ind.err = e
	ind.valid = true
}

// Invalidate marks the cached error stale.
func (ind *Individual) Invalidate() { ind.valid = false }

// EvaluateError computes the sum of squared errors over every dataset row
// using b for the variable values, caches it and returns it. Any numeric
// failure (division by zero, NaN) yields +Inf so that individuals always
// compare.
func (ind *Individual) EvaluateError(b *expr.Bindings) float64 {
	ind.SetError(SquaredError(ind.Root, ind.Data, b))
	return ind.err
}

// SquaredError scores root against data without touching any individual.
func SquaredError(root *expr.Node, data *dataset.Dataset, b *expr.Bindings) float64 {
	total := 0.0
	for i, target := range data.Targets {
		b.SetRow(i)
		v, err := root.Evaluate(b)
		if err != nil {
			return math.Inf(1)
		}
		d := v - target
		total += d * d
	}
	if math.IsNaN(total) {
		return math.Inf(1)
	}
	return total
}

// Mutate, with a 1-in-chance probability, replaces a uniformly chosen node
// with a freshly grown subtree. Choosing the root regrows the whole tree.
// It reports whether a mutation happened.
func (ind *Individual) Mutate(rng *rand.Rand, cfg expr.GrowConfig, chance int) bool {
	if chance < 1 {
		chance = 1
	}
	if rng.Intn(chance) != 0 {
		return false
	}

	target := ind.Root.RandomSelect(rng)
	if target.IsRoot() {
		ind.Root = expr.Grow(rng, cfg)
	} else {
		expr.Replace(target, expr.GrowAt(rng, cfg, target.Depth()))
	}
	ind.valid = false
	return true
}

// Crossover swaps a uniformly chosen subtree of ind with one of other.
// When a chosen node is a root, the owner's whole tree is exchanged.
func (ind *Individual) Crossover(other *Individual, rng *rand.Rand) {
	a := ind.Root.RandomSelect(rng)
	b := other.Root.RandomSelect(rng)
	aRoot, bRoot := a.IsRoot(), b.IsRoot()

	expr.Swap(a, b)

	if aRoot {
		ind.Root = b
	}
	if bRoot {
		other.Root = a
	}
	ind.valid = false
	other.valid = false
}

// Size returns the number of nodes in the tree.
func (ind *Individual) Size() int { return ind.Root.Size() }

// String returns the infix rendering of the tree.
func (ind *Individual) String() string { return ind.Root.String() }

// LaTeX returns the LaTeX rendering of the tree.
func (ind *Individual) LaTeX() string { return ind.Root.LaTeX() }

// Complexity returns the weighted complexity of the tree.
func (ind *Individual) Complexity() float64 { return expr.WeightedComplexity(ind.Root) }
