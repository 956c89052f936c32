package expr

// Replace puts sub in old's place under old's parent and refreshes the sizes
// of every ancestor. old is dropped. It panics if old is a root: replacing a
// root means swapping the owner's root reference instead.
func Replace(old, sub *Node) {
	if old.parent == nil {
		panic("expr: replace of a root node")
	}
	attach(old.parent, old.slot, sub)
	old.parent = nil
	old.slot = -1
}

// Swap exchanges the subtrees rooted at a and b, which must belong to
// different trees. A node that was a root ends up as the root of the other
// tree, so the caller must update its root reference: if a was a root, b is
// now the root of a's former tree, and vice versa.
func Swap(a, b *Node) {
	pa, sa := a.parent, a.slot
	pb, sb := b.parent, b.slot

	if pb != nil {
		attach(pb, sb, a)
	}
	if pa != nil {
		attach(pa, sa, b)
	}
	if pb == nil {
		a.detach()
	}
	if pa == nil {
		b.detach()
	}
}

func (n *Node) detach() {
	n.parent = nil
	n.slot = -1
	n.setDepth(0)
}

// attach grafts sub at parent.Children[slot], then walks up to the root
// recomputing sizes.
func attach(parent *Node, slot int, sub *Node) {
	parent.Children[slot] = sub
	sub.parent = parent
	sub.slot = slot
	sub.setDepth(parent.depth + 1)
	for p := parent; p != nil; p = p.parent {
		p.recount()
	}
}
