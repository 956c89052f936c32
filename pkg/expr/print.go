package expr

// String renders the subtree in parenthesised infix notation, e.g. "(x + 3)".
func (n *Node) String() string {
	if n.Leaf {
		return n.Term.String()
	}
	args := make([]string, len(n.Children))
	for i, c := range n.Children {
		args[i] = c.String()
	}
	return n.Op.Infix(args)
}

// LaTeX renders the subtree as LaTeX math.
func (n *Node) LaTeX() string {
	if n.Leaf {
		return n.Term.String()
	}
	args := make([]Operand, len(n.Children))
	for i, c := range n.Children {
		args[i] = Operand{
			Text:    c.LaTeX(),
			Literal: c.Leaf && c.Term.IsLiteral(),
		}
	}
	return n.Op.LaTeX(args)
}
