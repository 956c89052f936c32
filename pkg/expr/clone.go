package expr

// Clone returns a deep copy of the subtree rooted at n. The copy is
// detached: its root has no parent but keeps n's depth and sizes.
func (n *Node) Clone() *Node {
	c := &Node{
		Leaf:  n.Leaf,
		Term:  n.Term,
		Op:    n.Op,
		slot:  -1,
		depth: n.depth,
		size:  n.size,
	}
	if len(n.Children) > 0 {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			cc := child.Clone()
			cc.parent = c
			cc.slot = i
			c.Children[i] = cc
		}
	}
	return c
}
