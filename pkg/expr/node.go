package expr

import "strconv"

// Terminal is a leaf value: a literal constant or a reference to a variable.
type Terminal struct {
	Var   *Variable // nil for a literal
	Value float64
}

// Const returns a literal terminal.
func Const(v float64) Terminal { return Terminal{Value: v} }

// Ref returns a terminal bound to v.
func Ref(v *Variable) Terminal { return Terminal{Var: v} }

// IsLiteral reports whether the terminal is a numeric constant.
func (t Terminal) IsLiteral() bool { return t.Var == nil }

func (t Terminal) String() string {
	if t.Var != nil {
		return t.Var.Symbol
	}
	return strconv.FormatFloat(t.Value, 'g', -1, 64)
}

// Node is one node of an expression tree. Children are owned by their
// parent; the parent pointer is only followed when grafting.
type Node struct {
	Leaf     bool
	Term     Terminal // set iff Leaf
	Op       Op       // set iff !Leaf
	Children []*Node  // len == Op.Arity() iff !Leaf

	parent *Node
	slot   int
	depth  int
	size   int
}

// NewLeaf returns a detached terminal node.
func NewLeaf(t Terminal) *Node {
	return &Node{Leaf: true, Term: t, slot: -1, size: 1}
}

// NewOp returns a detached operation node owning children. It panics if the
// child count does not match the operation's arity.
func NewOp(op Op, children ...*Node) *Node {
	if len(children) != op.Arity() {
		panic("expr: " + op.Name() + " needs " + strconv.Itoa(op.Arity()) + " children")
	}
	n := &Node{Op: op, Children: children, slot: -1}
	for i, c := range children {
		c.parent = n
		c.slot = i
	}
	n.setDepth(0)
	n.recount()
	return n
}

// Parent returns the owning node, or nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// Slot returns the index of n in its parent's children, or -1 for a root.
func (n *Node) Slot() int { return n.slot }

// Depth returns the distance from the root.
func (n *Node) Depth() int { return n.depth }

// Size returns the number of nodes in the subtree rooted at n.
func (n *Node) Size() int { return n.size }

// IsRoot reports whether n has no parent.
func (n *Node) IsRoot() bool { return n.parent == nil }

// Height returns the largest depth below n, measured from n.
func (n *Node) Height() int {
	h := 0
	for _, c := range n.Children {
		if ch := c.Height() + 1; ch > h {
			h = ch
		}
	}
	return h
}

// Walk visits n and every descendant in pre-order.
func (n *Node) Walk(fn func(*Node)) {
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(cur)
		for i := len(cur.Children) - 1; i >= 0; i-- {
			stack = append(stack, cur.Children[i])
		}
	}
}

// setDepth assigns depth d to n and the matching depths to its subtree.
func (n *Node) setDepth(d int) {
	type item struct {
		node  *Node
		depth int
	}
	stack := []item{{n, d}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		it.node.depth = it.depth
		for _, c := range it.node.Children {
			stack = append(stack, item{c, it.depth + 1})
		}
	}
}

// recount recomputes n.size from its children's sizes.
func (n *Node) recount() {
	s := 1
	for _, c := range n.Children {
		s += c.size
	}
	n.size = s
}
