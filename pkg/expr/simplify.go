package expr

// Simplify returns a simplified copy of the subtree rooted at n, for
// display. The input is never modified. Rewrites preserve the value of the
// expression wherever the original evaluates without error; rules that
// would hide a division by zero only fire on division-free operands.
func Simplify(n *Node) *Node {
	cur := n.Clone()
	cur.detach()
	for i := 0; i < 20; i++ { // cap iterations
		next := simplifyOnce(cur)
		if next.String() == cur.String() {
			return next
		}
		cur = next
	}
	return cur
}

func simplifyOnce(n *Node) *Node {
	if n.Leaf {
		return NewLeaf(n.Term)
	}

	left := simplifyOnce(n.Children[0])
	right := simplifyOnce(n.Children[1])

	lc, lok := literal(left)
	rc, rok := literal(right)

	// Constant folding
	if lok && rok {
		if v, err := n.Op.Apply([]float64{lc, rc}); err == nil {
			return NewLeaf(Const(v))
		}
	}

	switch n.Op {
	case OpAdd:
		// x + 0 = x
		if rok && rc == 0 {
			return left
		}
		// 0 + x = x
		if lok && lc == 0 {
			return right
		}

	case OpSub:
		// x - 0 = x
		if rok && rc == 0 {
			return left
		}
		// x - x = 0 (structural equality)
		if divisionFree(left) && left.String() == right.String() {
			return NewLeaf(Const(0))
		}

	case OpMul:
		// x * 1 = x
		if rok && rc == 1 {
			return left
		}
		// 1 * x = x
		if lok && lc == 1 {
			return right
		}
		// x * 0 = 0
		if (rok && rc == 0 && divisionFree(left)) || (lok && lc == 0 && divisionFree(right)) {
			return NewLeaf(Const(0))
		}

	case OpDiv:
		// x / 1 = x
		if rok && rc == 1 {
			return left
		}
	}

	return NewOp(n.Op, left, right)
}

func literal(n *Node) (float64, bool) {
	if n.Leaf && n.Term.IsLiteral() {
		return n.Term.Value, true
	}
	return 0, false
}

func divisionFree(n *Node) bool {
	ok := true
	n.Walk(func(c *Node) {
		if !c.Leaf && c.Op == OpDiv {
			ok = false
		}
	})
	return ok
}
