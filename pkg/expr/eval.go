package expr

import "fmt"

// Evaluate computes the value of the subtree rooted at n with the variable
// values held in b. Numeric failures such as division by zero are returned,
// not absorbed.
func (n *Node) Evaluate(b *Bindings) (float64, error) {
	if n.Leaf {
		if n.Term.Var != nil {
			return b.Value(n.Term.Var), nil
		}
		return n.Term.Value, nil
	}

	var buf [2]float64
	args := buf[:0]
	for _, c := range n.Children {
		v, err := c.Evaluate(b)
		if err != nil {
			return 0, err
		}
		args = append(args, v)
	}
	v, err := n.Op.Apply(args)
	if err != nil {
		return 0, fmt.Errorf("%s at depth %d: %w", n.Op.Label(), n.depth, err)
	}
	return v, nil
}
