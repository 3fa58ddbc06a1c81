package grove

// FromSlice builds a balanced-by-construction (but not balancer-tagged)
// chain of nodes from vs, left to right, for use as the seed of a fresh
// tree. Alg fields are left at their zero value; a balancer wrapping this
// must run its own alg-recompute pass (or build through its own Walker-based
// inserts instead) if it needs a non-zero Alg assigned from the start.
func FromSlice[V any, S any, A comparable, Alg any](d Data[V, S, A], vs []V) *Node[V, S, A, Alg] {
	return buildBalanced[V, S, A, Alg](d, vs)
}

func buildBalanced[V any, S any, A comparable, Alg any](d Data[V, S, A], vs []V) *Node[V, S, A, Alg] {
	if len(vs) == 0 {
		return nil
	}
	mid := len(vs) / 2
	n := &Node[V, S, A, Alg]{
		Value:   vs[mid],
		Pending: d.EmptyAction(),
		Left:    buildBalanced[V, S, A, Alg](d, vs[:mid]),
		Right:   buildBalanced[V, S, A, Alg](d, vs[mid+1:]),
	}
	Rebuild(d, n)
	return n
}

// IntoSlice drains a tree in order into a freshly allocated slice. Iterative
// (an explicit stack), matching Deallocate's non-recursive discipline (spec
// §9) rather than risking a call-stack blowout on a degenerate tree.
func IntoSlice[V any, S any, A comparable, Alg any](d Data[V, S, A], root *Node[V, S, A, Alg]) []V {
	out := make([]V, 0, Size(root))
	type frame struct {
		n         *Node[V, S, A, Alg]
		visitedLt bool
	}
	stack := make([]frame, 0, 32)
	cur := root
	for cur != nil || len(stack) > 0 {
		for cur != nil {
			Access(d, cur)
			stack = append(stack, frame{n: cur})
			cur = cur.Left
		}
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, top.n.Value)
		cur = top.n.Right
	}
	return out
}

// Walk calls visit for every value in the tree, in order, stopping early if
// visit returns false. Iterative for the same reason as IntoSlice.
func Walk[V any, S any, A comparable, Alg any](d Data[V, S, A], root *Node[V, S, A, Alg], visit func(V) bool) {
	stack := make([]*Node[V, S, A, Alg], 0, 32)
	cur := root
	for cur != nil || len(stack) > 0 {
		for cur != nil {
			Access(d, cur)
			stack = append(stack, cur)
			cur = cur.Left
		}
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !visit(top.Value) {
			return
		}
		cur = top.Right
	}
}
