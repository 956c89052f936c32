package expr

import "fmt"

// Check verifies the structural invariants of the tree rooted at n: arity,
// parent links and slots, depths and subtree sizes. It returns the first
// violation found.
func (n *Node) Check() error {
	if n.parent != nil && (n.slot < 0 || n.slot >= len(n.parent.Children) || n.parent.Children[n.slot] != n) {
		return fmt.Errorf("root %s: parent link does not point back", n)
	}
	_, err := check(n, n.depth)
	return err
}

func check(n *Node, depth int) (int, error) {
	if n.depth != depth {
		return 0, fmt.Errorf("node %s: depth %d, want %d", n, n.depth, depth)
	}
	if n.Leaf {
		if len(n.Children) != 0 {
			return 0, fmt.Errorf("terminal %s has %d children", n.Term, len(n.Children))
		}
	} else if len(n.Children) != n.Op.Arity() {
		return 0, fmt.Errorf("%s node has %d children, want %d", n.Op.Name(), len(n.Children), n.Op.Arity())
	}

	size := 1
	for i, c := range n.Children {
		if c == nil {
			return 0, fmt.Errorf("node %s: child %d is nil", n.Op.Name(), i)
		}
		if c.parent != n || c.slot != i {
			return 0, fmt.Errorf("node %s: child %d has parent link (%p, %d), want (%p, %d)",
				c, i, c.parent, c.slot, n, i)
		}
		s, err := check(c, depth+1)
		if err != nil {
			return 0, err
		}
		size += s
	}
	if n.size != size {
		return 0, fmt.Errorf("node %s: size %d, want %d", n, n.size, size)
	}
	return size, nil
}

// MaxNodeDepth returns the deepest absolute depth in the subtree.
func (n *Node) MaxNodeDepth() int {
	d := n.depth
	n.Walk(func(c *Node) {
		if c.depth > d {
			d = c.depth
		}
	})
	return d
}
