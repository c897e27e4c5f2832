package digitbinindex

type nodeKind uint8

const (
	internalNode nodeKind = iota
	leafNode
)

// node is one level of the binning tree. The kind tag decides which half of
// the union is live: an internal node owns an ordered child sequence indexed
// by the next weight digit, a leaf owns the ids of one bin. Either way the
// node carries the aggregates selection reads on its way down: the scaled
// weight sum and the individual count of the whole subtree.
//
// Nodes are created lazily as paths are first traversed and only ever grow.
// A terminal node commits to leaf duty on first insertion and never turns
// back; internal nodes with children never become leaves. Since a node's
// depth is fixed by its distance from the root and only terminal nodes are
// ever committed, the internal/leaf mismatch the tree must never exhibit is
// not representable in the first place.
type node struct {
	kind        nodeKind
	children    []*node
	members     idSet
	accumulated uint64
	count       uint32
}

func newInternal() *node {
	return &node{kind: internalNode}
}

// childAt returns the child for a digit, growing the ordered sequence with
// empty placeholder nodes as needed so that the digit always indexes it.
func (n *node) childAt(digit int) *node {
	for len(n.children) <= digit {
		n.children = append(n.children, newInternal())
	}
	return n.children[digit]
}
