package grove

/*
Slice is the unbalanced substrate's own end-user handle: a growable,
splittable sequence with no rebalancing of its own (detailed in
original_source/src/trees/slice.rs, which spec.md's distillation folded
into the generic Walker/segment description without naming the handle
type directly -- see SPEC_FULL.md §5.2). The balancer packages each wrap
the same primitives (Walker, SegmentSummary/ActSegment, their own
concatenate) behind a Tree type that additionally keeps itself balanced;
Slice is what you get by skipping that last step, useful on its own for
build-once/read-many sequences (see FromSlice) and as the worked reference
the balancer packages are adapted from.
*/

// Slice is a sequence of V with no balancing invariant of its own.
type Slice[V any, S any, A comparable, Alg any] struct {
	data Data[V, S, A]
	root *Node[V, S, A, Alg]
}

// NewSlice returns an empty Slice.
func NewSlice[V any, S any, A comparable, Alg any](d Data[V, S, A]) *Slice[V, S, A, Alg] {
	return &Slice[V, S, A, Alg]{data: d}
}

// SliceFromValues builds a Slice from vs in a single balanced-by-bisection
// pass (see FromSlice); the result is a reasonable starting shape for any
// balancer to adopt wholesale or rebuild from.
func SliceFromValues[V any, S any, A comparable, Alg any](d Data[V, S, A], vs []V) *Slice[V, S, A, Alg] {
	return &Slice[V, S, A, Alg]{data: d, root: FromSlice[V, S, A, Alg](d, vs)}
}

// Len reports the number of elements, by walking the tree (component C3
// offers no O(1) size cache unless the Data's Summary happens to be Sized).
func (s *Slice[V, S, A, Alg]) Len() int { return Size(s.root) }

// Values drains the sequence into a slice, in order.
func (s *Slice[V, S, A, Alg]) Values() []V { return IntoSlice(s.data, s.root) }

// Summary returns the summary of the whole sequence.
func (s *Slice[V, S, A, Alg]) Summary() S { return EffectiveSummary(s.data, s.root) }

// SegmentSummary returns the summary of the maximal run accepted by loc.
func (s *Slice[V, S, A, Alg]) SegmentSummary(loc Locator[V, S]) S {
	return SegmentSummary(s.data, s.root, loc)
}

// Act applies a to the maximal run accepted by loc.
func (s *Slice[V, S, A, Alg]) Act(loc Locator[V, S], a A) {
	ActSegment(s.data, &s.root, s.data.EmptySummary(), s.data.EmptySummary(), loc, a)
}

// Search returns the value at the node loc Accepts, if any.
func (s *Slice[V, S, A, Alg]) Search(loc Locator[V, S]) (V, bool) {
	n := s.root
	leftCtx, rightCtx := s.data.EmptySummary(), s.data.EmptySummary()
	for n != nil {
		Access(s.data, n)
		L := s.data.Combine(leftCtx, EffectiveSummary(s.data, n.Left))
		R := s.data.Combine(EffectiveSummary(s.data, n.Right), rightCtx)
		switch loc(L, n.Value, R) {
		case GoLeft:
			rightCtx = s.data.Combine(s.data.Combine(s.data.ToSummary(n.Value), EffectiveSummary(s.data, n.Right)), rightCtx)
			n = n.Left
		case GoRight:
			leftCtx = s.data.Combine(leftCtx, s.data.Combine(EffectiveSummary(s.data, n.Left), s.data.ToSummary(n.Value)))
			n = n.Right
		default:
			return n.Value, true
		}
	}
	var zero V
	return zero, false
}

// Insert places v at the gap identified by loc (a gap-locator: see AtGap,
// LeftEdgeOf, RightEdgeOf).
func (s *Slice[V, S, A, Alg]) Insert(loc Locator[V, S], v V) error {
	w := NewWalker[V, S, A, Alg](s.data, &s.root, nil)
	w.Navigate(loc)
	return w.Insert(v)
}

// Delete removes the node loc Accepts and returns its value. The generic
// substrate has no rebalancing policy, so a two-children node is reduced by
// repeatedly promoting its right child (RotateLeft) until it has at most one
// child; balancer packages override this with a policy consistent with
// their own invariant (treap: rotate toward the higher-priority child; AVL:
// rotate to preserve rank balance).
func (s *Slice[V, S, A, Alg]) Delete(loc Locator[V, S]) (V, error) {
	w := NewWalker[V, S, A, Alg](s.data, &s.root, nil)
	w.Navigate(loc)
	if !w.AtNode() {
		var zero V
		return zero, ErrPositionEmpty
	}
	for w.cur.Left != nil && w.cur.Right != nil {
		w.RotateLeft()
	}
	v, err := w.Delete()
	w.Collapse()
	return v, err
}

// naiveJoin concatenates left, mid, right into a single subtree with no
// rebalancing (O(height) pointer chasing): adequate for the unbalanced
// Slice; balancer packages supply their own efficient concatenate-with-
// middle instead (concatMiddle in each balancer package).
func naiveJoin[V any, S any, A comparable, Alg any](d Data[V, S, A], left *Node[V, S, A, Alg], mid V, right *Node[V, S, A, Alg]) *Node[V, S, A, Alg] {
	n := &Node[V, S, A, Alg]{Value: mid, Pending: d.EmptyAction(), Left: left, Right: right}
	Rebuild(d, n)
	return n
}

// SplitRight cuts the sequence at the gap identified by loc, keeps the left
// part in place, and returns the right part as a new Slice.
func (s *Slice[V, S, A, Alg]) SplitRight(loc Locator[V, S]) (*Slice[V, S, A, Alg], error) {
	w := NewWalker[V, S, A, Alg](s.data, &s.root, nil)
	w.Navigate(loc)
	if w.AtNode() {
		return nil, ErrPositionOccupied
	}
	steps := w.SplitWalkUp()
	var leftTree, rightTree *Node[V, S, A, Alg]
	for _, step := range steps {
		if step.Side == left {
			rightTree = naiveJoin(s.data, rightTree, step.Ancestor.Value, step.Off)
		} else {
			leftTree = naiveJoin(s.data, step.Off, step.Ancestor.Value, leftTree)
		}
	}
	s.root = leftTree
	return &Slice[V, S, A, Alg]{data: s.data, root: rightTree}, nil
}

// SplitLeft cuts the sequence at the gap identified by loc, keeps the right
// part in place, and returns the left part as a new Slice.
func (s *Slice[V, S, A, Alg]) SplitLeft(loc Locator[V, S]) (*Slice[V, S, A, Alg], error) {
	right, err := s.SplitRight(loc)
	if err != nil {
		return nil, err
	}
	left := &Slice[V, S, A, Alg]{data: s.data, root: s.root}
	s.root = right.root
	return left, nil
}
