package expr

import (
	"errors"
	"math/rand"
)

// GrowConfig holds the parameters for growing random trees. It is passed
// by value to every growth call.
type GrowConfig struct {
	Terminals    []Terminal
	Functions    []Op
	TerminalProb int // relative weight of choosing a terminal
	FunctionProb int // relative weight of choosing a function
	MaxDepth     int // no grown node is deeper than this
}

// Validate checks the configuration can grow a tree.
func (c GrowConfig) Validate() error {
	var errs []error
	if len(c.Terminals) == 0 {
		errs = append(errs, errors.New("terminal set is empty"))
	}
	if c.TerminalProb < 0 || c.FunctionProb < 0 {
		errs = append(errs, errors.New("growth weights must not be negative"))
	}
	if c.TerminalProb+c.FunctionProb <= 0 {
		errs = append(errs, errors.New("growth weights must sum to at least 1"))
	}
	if c.MaxDepth < 0 {
		errs = append(errs, errors.New("max depth must not be negative"))
	}
	return errors.Join(errs...)
}

// Grow returns a new random tree whose root sits at depth 0.
func Grow(rng *rand.Rand, cfg GrowConfig) *Node {
	return GrowAt(rng, cfg, 0)
}

// GrowAt returns a new random detached subtree whose root is given depth,
// so that it can be grafted at that depth without breaking MaxDepth.
func GrowAt(rng *rand.Rand, cfg GrowConfig, depth int) *Node {
	if len(cfg.Terminals) == 0 {
		panic("expr: grow with an empty terminal set")
	}
	n := &Node{slot: -1, depth: depth}
	grow(n, rng, cfg)
	return n
}

func grow(n *Node, rng *rand.Rand, cfg GrowConfig) {
	if !chooseFunction(n.depth, rng, cfg) {
		n.Leaf = true
		n.Term = cfg.Terminals[rng.Intn(len(cfg.Terminals))]
		n.size = 1
		return
	}

	n.Op = cfg.Functions[rng.Intn(len(cfg.Functions))]
	n.Children = make([]*Node, n.Op.Arity())
	for i := range n.Children {
		c := &Node{parent: n, slot: i, depth: n.depth + 1}
		n.Children[i] = c
		grow(c, rng, cfg)
	}
	n.recount()
}

// chooseFunction draws uniformly over [1, terminal+function]; values up to
// FunctionProb pick a function.
func chooseFunction(depth int, rng *rand.Rand, cfg GrowConfig) bool {
	if depth >= cfg.MaxDepth || len(cfg.Functions) == 0 {
		return false
	}
	total := cfg.TerminalProb + cfg.FunctionProb
	if total <= 0 {
		panic("expr: growth weights sum to zero")
	}
	return rng.Intn(total)+1 <= cfg.FunctionProb
}
