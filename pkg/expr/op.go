package expr

import (
	"errors"
	"fmt"
	"sort"
)

// ErrDivisionByZero is returned when a divisor evaluates to exactly zero.
var ErrDivisionByZero = errors.New("division by zero")

// Op identifies a binary arithmetic operation.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
)

var opNames = map[Op]string{
	OpAdd: "Add",
	OpSub: "Subtract",
	OpMul: "Multiply",
	OpDiv: "Divide",
}

var opLabels = map[Op]string{
	OpAdd: "Addition",
	OpSub: "Subtraction",
	OpMul: "Multiplication",
	OpDiv: "Division",
}

var opSymbols = map[Op]string{
	OpAdd: "+",
	OpSub: "-",
	OpMul: "*",
	OpDiv: "/",
}

// Operand is a rendered child handed to an operator's LaTeX rule.
type Operand struct {
	Text    string
	Literal bool // child is a numeric constant
}

// Name returns the configuration name of the operation ("Add", "Divide", ...).
func (o Op) Name() string { return opNames[o] }

// Label returns the human-readable label ("Addition", ...).
func (o Op) Label() string { return opLabels[o] }

// Arity returns the number of children a node with this operation owns.
func (o Op) Arity() int { return 2 }

// Apply evaluates the operation on already-evaluated arguments.
func (o Op) Apply(args []float64) (float64, error) {
	if len(args) != o.Arity() {
		return 0, fmt.Errorf("%s takes %d arguments, got %d", o.Name(), o.Arity(), len(args))
	}
	switch o {
	case OpAdd:
		return args[0] + args[1], nil
	case OpSub:
		return args[0] - args[1], nil
	case OpMul:
		return args[0] * args[1], nil
	case OpDiv:
		if args[1] == 0 {
			return 0, ErrDivisionByZero
		}
		return args[0] / args[1], nil
	default:
		return 0, fmt.Errorf("unknown operation: %d", int(o))
	}
}

// Infix renders the operation in parenthesised infix notation.
func (o Op) Infix(args []string) string {
	return fmt.Sprintf("(%s %s %s)", args[0], opSymbols[o], args[1])
}

// LaTeX renders the operation as LaTeX math.
func (o Op) LaTeX(args []Operand) string {
	a, b := args[0], args[1]
	switch o {
	case OpAdd:
		return fmt.Sprintf(" \\left( %s + %s \\right) ", a.Text, b.Text)
	case OpSub:
		return fmt.Sprintf(" \\left( %s - %s \\right) ", a.Text, b.Text)
	case OpMul:
		// Juxtapose when exactly one side is a number, e.g. "2 x".
		if a.Literal != b.Literal {
			return fmt.Sprintf("%s %s", a.Text, b.Text)
		}
		return fmt.Sprintf(" %s \\times %s ", a.Text, b.Text)
	case OpDiv:
		return fmt.Sprintf(" \\frac{%s}{%s} ", a.Text, b.Text)
	default:
		return ""
	}
}

// ParseOp looks an operation up by its configuration name.
func ParseOp(name string) (Op, error) {
	for op, n := range opNames {
		if n == name {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown function: %s (available: %v)", name, OpNames())
}

// ParseOps resolves a list of configuration names, dropping duplicates.
func ParseOps(names []string) ([]Op, error) {
	seen := make(map[Op]bool, len(names))
	ops := make([]Op, 0, len(names))
	for _, name := range names {
		op, err := ParseOp(name)
		if err != nil {
			return nil, err
		}
		if seen[op] {
			continue
		}
		seen[op] = true
		ops = append(ops, op)
	}
	return ops, nil
}

// OpNames returns the names of every operation in the catalog, sorted.
func OpNames() []string {
	names := make([]string, 0, len(opNames))
	for _, n := range opNames {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
