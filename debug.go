package grove

import (
	"github.com/npillmayer/grove/fp"
	tp "github.com/xlab/treeprint"
)

// Dump renders a subtree rooted at n as an indented treeprint, for use in
// debugging and test failure messages. Each node's label is produced by
// composing the node's raw Value field with format, so Dump never needs to
// know how V should be printed.
//
// Dump shows the tree's raw, un-pushed-down state: a node with a non-empty
// Pending still displays its stored Value, not the value Access would make
// visible. Call Access along the path first if the effective values matter.
func Dump[V any, S any, A comparable, Alg any](n *Node[V, S, A, Alg], format func(V) string) string {
	label := fp.Compose(func(n *Node[V, S, A, Alg]) V { return n.Value }, format)
	if n == nil {
		return tp.New().String()
	}
	root := tp.NewWithRoot(label(n))
	dumpChildren(root, n, label)
	return root.String()
}

func dumpChildren[V any, S any, A comparable, Alg any](p tp.Tree, n *Node[V, S, A, Alg], label func(*Node[V, S, A, Alg]) string) {
	if n.Left == nil && n.Right == nil {
		return
	}
	for _, ch := range []*Node[V, S, A, Alg]{n.Left, n.Right} {
		if ch == nil {
			p.AddNode("·")
			continue
		}
		branch := p.AddBranch(label(ch))
		dumpChildren(branch, ch, label)
	}
}
