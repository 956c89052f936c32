package expr

import "math/rand"

// RandomSelect returns n or one of its descendants, each of the n.Size()
// nodes being equally likely. A child's weight is its subtree size.
func (n *Node) RandomSelect(rng *rand.Rand) *Node {
	cur := n
	for {
		total := cur.size - 1
		r := rng.Intn(total + 1)
		if r == 0 {
			return cur
		}
		// r in [1, total]: find the first child whose cumulative weight covers r.
		acc := 0
		next := cur
		for _, c := range cur.Children {
			acc += c.size
			if r <= acc {
				next = c
				break
			}
		}
		if next == cur {
			panic("expr: subtree sizes are stale")
		}
		cur = next
	}
}
