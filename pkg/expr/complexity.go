package expr

// WeightedComplexity returns a complexity score with heavier weight for
// multiplicative operations.
func WeightedComplexity(n *Node) float64 {
	if n.Leaf {
		return 1.0
	}
	w := opWeight(n.Op)
	for _, c := range n.Children {
		w += WeightedComplexity(c)
	}
	return w
}

func opWeight(op Op) float64 {
	switch op {
	case OpAdd, OpSub:
		return 1.0
	case OpMul, OpDiv:
		return 1.5
	default:
		return 1.5
	}
}
