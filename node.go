package grove

/*
Remarks (style follows persistent/btree/internals.go):

- A Tree is Empty (nil *Node) or a Node. There is no separate wrapper type.

- Alg is opaque bookkeeping owned by a balancer package (priority for
  treap, rank for AVL, an empty struct for splay/unbalanced). The substrate
  never interprets it, except to carry it across rotations via a caller
  supplied rebuild hook (see Walker.rebuildAlg).

- Node is exported, with exported fields, because the balancer packages
  (grove/splay, grove/treap, grove/avl, grove/persistent) are tight
  collaborators of this substrate, not arbitrary library clients: they hold
  *Node as their tree's root and need direct field access the way the
  high-level Tree/Slice API (to be built on top, per balancer package) does
  not.
*/

// Node is a non-empty augmented tree node (component C3). A Tree is
// represented simply as *Node; nil denotes the empty tree.
type Node[V any, S any, A comparable, Alg any] struct {
	Value   V
	Summary S // cached summary of the entire subtree, *before* applying Pending
	Pending A // an action yet to be applied to this whole subtree
	Left    *Node[V, S, A, Alg]
	Right   *Node[V, S, A, Alg]
	Alg     Alg // algorithm-specific bookkeeping (priority, rank, refcount, ...)
}

// EffectiveSummary returns a tree's externally-visible summary: the cached
// summary with any pending action applied on top, without pushing the
// action down into children. This is how locators and the segment
// algorithms peek at a subtree without dirtying it.
func EffectiveSummary[V any, S any, A comparable, Alg any](d Data[V, S, A], n *Node[V, S, A, Alg]) S {
	if n == nil {
		return d.EmptySummary()
	}
	return d.Act(n.Pending, n.Summary)
}

// Access pushes a node's pending action down to its immediate children, and
// into its own value and cached summary (spec §4.1). After Access, Pending
// is always the identity. Access is a no-op (and therefore total -- it
// never fails) when Pending is already the identity.
func Access[V any, S any, A comparable, Alg any](d Data[V, S, A], n *Node[V, S, A, Alg]) {
	if n == nil {
		return
	}
	empty := d.EmptyAction()
	if n.Pending == empty {
		return
	}
	a := n.Pending
	if reverses(d, a) {
		n.Left, n.Right = n.Right, n.Left
	}
	if n.Left != nil {
		n.Left.Pending = d.Compose(a, n.Left.Pending)
	}
	if n.Right != nil {
		n.Right.Pending = d.Compose(a, n.Right.Pending)
	}
	n.Summary = d.Act(a, n.Summary)
	n.Value = d.ActValue(a, n.Value)
	n.Pending = empty
}

// Rebuild recomputes a node's cached summary from its children's effective
// summaries and its own value. Precondition: n.Pending == EmptyAction()
// (the caller must have called Access first if that isn't already true).
func Rebuild[V any, S any, A comparable, Alg any](d Data[V, S, A], n *Node[V, S, A, Alg]) {
	if n == nil {
		return
	}
	assertThat(n.Pending == d.EmptyAction(), "Rebuild: node has a pending action; call Access first")
	ls := EffectiveSummary(d, n.Left)
	rs := EffectiveSummary(d, n.Right)
	n.Summary = d.Combine(d.Combine(ls, d.ToSummary(n.Value)), rs)
}

// ActSubtree sets a node's pending action to a∘Pending, logically
// transforming the whole subtree by a without touching any child. Does not
// require Access. Named ActSubtree (rather than just "Act") to avoid clashing
// with Data.Act, and to read naturally at call sites: grove.ActSubtree(d, n, a).
func ActSubtree[V any, S any, A comparable, Alg any](d Data[V, S, A], n *Node[V, S, A, Alg], a A) {
	if n == nil {
		return
	}
	n.Pending = d.Compose(a, n.Pending)
}

// ActNode forces Access, applies a to this node's value only (not its
// subtree), and rebuilds.
func ActNode[V any, S any, A comparable, Alg any](d Data[V, S, A], n *Node[V, S, A, Alg], a A) {
	if n == nil {
		return
	}
	Access(d, n)
	n.Value = d.ActValue(a, n.Value)
	Rebuild(d, n)
}

// CloneShallow returns a shallow copy of n (same children pointers, same
// value/summary/pending/alg). Used by the persistent balancer for
// copy-on-write; harmless (and unused) for in-place balancers.
func (n *Node[V, S, A, Alg]) CloneShallow() *Node[V, S, A, Alg] {
	if n == nil {
		return nil
	}
	cp := *n
	return &cp
}

// Size returns the number of nodes in the subtree rooted at n (iterative,
// O(n): it visits every node; every balancer's Len and IntoSlice call it).
func Size[V any, S any, A comparable, Alg any](n *Node[V, S, A, Alg]) int {
	if n == nil {
		return 0
	}
	stack := []*Node[V, S, A, Alg]{n}
	count := 0
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top == nil {
			continue
		}
		count++
		stack = append(stack, top.Left, top.Right)
	}
	return count
}

// Deallocate walks the subtree rooted at n iteratively, detaching children
// as it goes, so that dropping a large (e.g. degenerate splay) tree cannot
// overflow the call stack via recursive destructors (spec §5).
func Deallocate[V any, S any, A comparable, Alg any](n *Node[V, S, A, Alg]) {
	if n == nil {
		return
	}
	stack := []*Node[V, S, A, Alg]{n}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top == nil {
			continue
		}
		l, r := top.Left, top.Right
		top.Left, top.Right = nil, nil
		stack = append(stack, l, r)
	}
}
