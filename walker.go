package grove

/*
Walker is the library's single mutation path (component C4). It holds
exclusive access to a tree for its lifetime: while a Walker exists, the
tree it was built from must not be read or mutated any other way (the
"reborrowing" discipline promised by spec §4.3 -- Go has no borrow checker
to enforce this statically, so it is a documented calling convention, the
same way persistent/btree's Path/foldR machinery documents single-writer
access in internals.go).

A Walker's position is either "at a node" (Cur != nil) or "at an empty
slot" (Cur == nil) -- the latter is where Insert and the generic half of
split operate. The path above the current position is held as a stack of
frames; each frame remembers the ancestor node descended from, which side
was taken, and the in-order context (FarLeftSummary/FarRightSummary) that
ancestor had *before* that descent.

Every operation that changes what occupies the current position (Insert,
Delete, the rotations) writes the new occupant back into the parent's
child slot (or the tree's root slot) immediately -- there is no deferred
"rebuild on drop" pass to undo if the walker is simply discarded mid-path;
GoUp additionally rebuilds the parent's cached summary so a caller who
fully ascends back to the root always leaves every invariant intact
(spec §4.3's guarantee). Callers that need rebuild-on-drop semantics even
when they abandon a walk part-way through should call Collapse, which
ascends to the root unconditionally.
*/

// Side names which child of a node a Walker is, or was, positioned at.
type Side int

const (
	left Side = iota
	right
)

// String matches the style of Answer.String in locator.go.
func (s Side) String() string {
	if s == left {
		return "Left"
	}
	return "Right"
}

type frame[V any, S any, A comparable, Alg any] struct {
	parent   *Node[V, S, A, Alg]
	side     Side
	leftCtx  S // FarLeftSummary of parent, before descending into Cur
	rightCtx S // FarRightSummary of parent, before descending into Cur
}

// Walker is the reborrowing path-holder described above.
type Walker[V any, S any, A comparable, Alg any] struct {
	data  Data[V, S, A]
	root  **Node[V, S, A, Alg] // the tree's root slot; written through on restructuring at the top
	stack []frame[V, S, A, Alg]
	cur   *Node[V, S, A, Alg]
	curL  S // FarLeftSummary at Cur
	curR  S // FarRightSummary at Cur

	// rebuildAlg, if non-nil, is invoked by every operation here that
	// restructures the tree or changes a node's children, immediately after
	// Rebuild, so a balancer can recompute algorithm-specific bookkeeping
	// (AVL's rank, most notably) that depends on children's Alg fields.
	rebuildAlg func(*Node[V, S, A, Alg])
}

// NewWalker starts a Walker at the root of the tree held in *root (which may
// be nil, i.e. an empty tree). rebuildAlg may be nil.
func NewWalker[V any, S any, A comparable, Alg any](
	d Data[V, S, A],
	root **Node[V, S, A, Alg],
	rebuildAlg func(*Node[V, S, A, Alg]),
) *Walker[V, S, A, Alg] {
	return &Walker[V, S, A, Alg]{
		data:       d,
		root:       root,
		cur:        *root,
		curL:       d.EmptySummary(),
		curR:       d.EmptySummary(),
		rebuildAlg: rebuildAlg,
	}
}

// AtNode reports whether the walker is currently positioned at a node (as
// opposed to an empty slot).
func (w *Walker[V, S, A, Alg]) AtNode() bool { return w.cur != nil }

// CurNode returns the raw node the walker is positioned at, or nil at an
// empty position. Exposed (rather than kept behind Value/WithValue) so that
// balancer packages can read or set a node's Alg bookkeeping field directly
// -- treap priorities, AVL ranks -- without this package needing to know
// what that bookkeeping looks like.
func (w *Walker[V, S, A, Alg]) CurNode() *Node[V, S, A, Alg] { return w.cur }

// Depth returns the number of ancestors above the current position (0 at
// the root).
func (w *Walker[V, S, A, Alg]) Depth() int { return len(w.stack) }

// FarLeftSummary returns the combined summary of everything strictly to the
// left of the current position, across the whole tree.
func (w *Walker[V, S, A, Alg]) FarLeftSummary() S { return w.curL }

// FarRightSummary returns the combined summary of everything strictly to
// the right of the current position, across the whole tree.
func (w *Walker[V, S, A, Alg]) FarRightSummary() S { return w.curR }

// Value returns the current node's value, forcing Access first so pending
// actions from ancestors are never observed stale. Returns ErrPositionEmpty
// at an empty slot.
func (w *Walker[V, S, A, Alg]) Value() (V, error) {
	if w.cur == nil {
		var zero V
		return zero, ErrPositionEmpty
	}
	Access(w.data, w.cur)
	return w.cur.Value, nil
}

// WithValue replaces the current node's value via f, applied to its
// current (Access-forced) value, and rebuilds the node's summary.
func (w *Walker[V, S, A, Alg]) WithValue(f func(V) V) error {
	if w.cur == nil {
		return ErrPositionEmpty
	}
	Access(w.data, w.cur)
	w.cur.Value = f(w.cur.Value)
	Rebuild(w.data, w.cur)
	if w.rebuildAlg != nil {
		w.rebuildAlg(w.cur)
	}
	return nil
}

// ActNode applies a to the current node's value alone (not its subtree).
func (w *Walker[V, S, A, Alg]) ActNode(a A) error {
	if w.cur == nil {
		return ErrPositionEmpty
	}
	ActNode(w.data, w.cur, a)
	if w.rebuildAlg != nil {
		w.rebuildAlg(w.cur)
	}
	return nil
}

// ActSubtree lazily applies a to the current node and its whole subtree.
func (w *Walker[V, S, A, Alg]) ActSubtree(a A) error {
	if w.cur == nil {
		return ErrPositionEmpty
	}
	ActSubtree(w.data, w.cur, a)
	return nil
}

// ActLeftSubtree lazily applies a to the current node's left child and its
// subtree, then rebuilds the current node (whose cached summary depends on
// the child's effective summary).
func (w *Walker[V, S, A, Alg]) ActLeftSubtree(a A) error {
	if w.cur == nil {
		return ErrPositionEmpty
	}
	ActSubtree(w.data, w.cur.Left, a)
	Rebuild(w.data, w.cur)
	if w.rebuildAlg != nil {
		w.rebuildAlg(w.cur)
	}
	return nil
}

// ActRightSubtree is the mirror of ActLeftSubtree.
func (w *Walker[V, S, A, Alg]) ActRightSubtree(a A) error {
	if w.cur == nil {
		return ErrPositionEmpty
	}
	ActSubtree(w.data, w.cur.Right, a)
	Rebuild(w.data, w.cur)
	if w.rebuildAlg != nil {
		w.rebuildAlg(w.cur)
	}
	return nil
}

// GoLeft descends into the current node's left child.
func (w *Walker[V, S, A, Alg]) GoLeft() error {
	if w.cur == nil {
		return ErrPositionEmpty
	}
	Access(w.data, w.cur)
	parent := w.cur
	newR := w.data.Combine(
		w.data.Combine(w.data.ToSummary(parent.Value), EffectiveSummary(w.data, parent.Right)),
		w.curR,
	)
	w.stack = append(w.stack, frame[V, S, A, Alg]{parent: parent, side: left, leftCtx: w.curL, rightCtx: w.curR})
	w.cur = parent.Left
	w.curR = newR
	return nil
}

// GoRight descends into the current node's right child.
func (w *Walker[V, S, A, Alg]) GoRight() error {
	if w.cur == nil {
		return ErrPositionEmpty
	}
	Access(w.data, w.cur)
	parent := w.cur
	newL := w.data.Combine(
		w.curL,
		w.data.Combine(EffectiveSummary(w.data, parent.Left), w.data.ToSummary(parent.Value)),
	)
	w.stack = append(w.stack, frame[V, S, A, Alg]{parent: parent, side: right, leftCtx: w.curL, rightCtx: w.curR})
	w.cur = parent.Right
	w.curL = newL
	return nil
}

// GoUp ascends to the parent of the current position, writing the current
// occupant back into the parent's child slot (it may have changed via
// Insert, Delete or a rotation since descent) and rebuilding the parent.
// Returns the side the walker is ascending from. Returns ErrAtRoot if
// already at the root.
//
// In a splay tree, ascending with GoUp does not restructure the path, so a
// deep descent that returns through GoUp instead of splaying is not covered
// by the splay tree's amortised O(log n) bound.
func (w *Walker[V, S, A, Alg]) GoUp() (Side, error) {
	if len(w.stack) == 0 {
		return 0, ErrAtRoot
	}
	top := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	if top.side == left {
		top.parent.Left = w.cur
	} else {
		top.parent.Right = w.cur
	}
	Rebuild(w.data, top.parent)
	if w.rebuildAlg != nil {
		w.rebuildAlg(top.parent)
	}
	w.cur = top.parent
	w.curL = top.leftCtx
	w.curR = top.rightCtx
	if len(w.stack) == 0 {
		*w.root = w.cur
	}
	return top.side, nil
}

// Collapse ascends all the way to the root, rebuilding every ancestor on
// the way, then stops being useful: call it when abandoning a walk whose
// Cur position was left dirty (e.g. after a caller-driven mutation) and
// rebuild-on-drop semantics are wanted unconditionally, mirroring spec
// §4.3's "tree is never observed with a dangling rebuild" guarantee.
func (w *Walker[V, S, A, Alg]) Collapse() {
	for len(w.stack) > 0 {
		if _, err := w.GoUp(); err != nil {
			break
		}
	}
}

// Ask evaluates loc at the current position, supplying it with the node's
// full left/right context (far context combined with the node's own
// children's summaries). At an empty position it always answers Accept, by
// convention, so a caller driving Navigate with a segment Locator stops
// there rather than looping forever.
func (w *Walker[V, S, A, Alg]) Ask(loc Locator[V, S]) Answer {
	if w.cur == nil {
		return Accept
	}
	Access(w.data, w.cur)
	L := w.data.Combine(w.curL, EffectiveSummary(w.data, w.cur.Left))
	R := w.data.Combine(EffectiveSummary(w.data, w.cur.Right), w.curR)
	return loc(L, w.cur.Value, R)
}

// Navigate descends GoLeft/GoRight according to loc until it reaches an
// empty position or a node loc Accepts.
func (w *Walker[V, S, A, Alg]) Navigate(loc Locator[V, S]) {
	for w.cur != nil {
		switch w.Ask(loc) {
		case GoLeft:
			_ = w.GoLeft()
		case GoRight:
			_ = w.GoRight()
		default:
			return
		}
	}
}

// ParentSide reports which child of its parent the current position is, and
// whether a parent exists at all (false at the root).
func (w *Walker[V, S, A, Alg]) ParentSide() (Side, bool) {
	if len(w.stack) == 0 {
		return 0, false
	}
	return w.stack[len(w.stack)-1].side, true
}

// ParentNode returns the current position's parent, or nil at the root.
// Used by balancers (treap's priority comparison, most notably) that need
// to inspect an ancestor's Alg bookkeeping without descending there.
func (w *Walker[V, S, A, Alg]) ParentNode() *Node[V, S, A, Alg] {
	if len(w.stack) == 0 {
		return nil
	}
	return w.stack[len(w.stack)-1].parent
}

// GrandparentSide reports which child of its own parent the current
// position's parent is -- one level further up than ParentSide. Used by
// splaying balancers to distinguish the zig-zig case from zig-zag.
func (w *Walker[V, S, A, Alg]) GrandparentSide() (Side, bool) {
	if len(w.stack) < 2 {
		return 0, false
	}
	return w.stack[len(w.stack)-2].side, true
}

// Insert places a new leaf with value v at the current, empty position.
// Returns ErrPositionOccupied if the current position already holds a
// node.
func (w *Walker[V, S, A, Alg]) Insert(v V) error {
	if w.cur != nil {
		return ErrPositionOccupied
	}
	n := &Node[V, S, A, Alg]{
		Value:   v,
		Summary: w.data.ToSummary(v),
		Pending: w.data.EmptyAction(),
	}
	w.cur = n
	w.writeCurIntoSlot()
	return nil
}

// Delete removes the current node and replaces it with its single child (or
// with the empty tree, if it is a leaf). Panics if the current node has two
// children -- callers with a two-child case (every balancer's public
// Delete) must first rotate the node down to a leaf or single-child
// position using RotateLeft/RotateRight. Returns the removed value.
func (w *Walker[V, S, A, Alg]) Delete() (V, error) {
	if w.cur == nil {
		var zero V
		return zero, ErrPositionEmpty
	}
	Access(w.data, w.cur)
	assertThat(w.cur.Left == nil || w.cur.Right == nil,
		"Delete: current node has two children; rotate to a leaf first")
	removed := w.cur.Value
	if w.cur.Left != nil {
		w.cur = w.cur.Left
	} else {
		w.cur = w.cur.Right
	}
	w.writeCurIntoSlot()
	return removed, nil
}

// writeCurIntoSlot stores w.cur into whatever currently denotes "here": the
// parent's child pointer named by the top frame, or the tree's root slot if
// there is no parent.
func (w *Walker[V, S, A, Alg]) writeCurIntoSlot() {
	if len(w.stack) == 0 {
		*w.root = w.cur
		return
	}
	top := &w.stack[len(w.stack)-1]
	if top.side == left {
		top.parent.Left = w.cur
	} else {
		top.parent.Right = w.cur
	}
}

// writeNodeIntoSlot is writeCurIntoSlot generalised to nodes other than
// w.cur, used by the rotations below (where the node moving into "here" is
// not always the one the walker considers itself positioned at).
func (w *Walker[V, S, A, Alg]) writeNodeIntoSlot(n *Node[V, S, A, Alg]) {
	if len(w.stack) == 0 {
		*w.root = n
		return
	}
	top := &w.stack[len(w.stack)-1]
	if top.side == left {
		top.parent.Left = n
	} else {
		top.parent.Right = n
	}
}

// RotateUp rotates the current node up past its parent (a single zig step).
// The walker stays at the same node (Cur); the path shrinks by one frame,
// since the former parent is no longer an ancestor of Cur, and Cur takes
// over the former parent's far context. Panics if already at the root.
func (w *Walker[V, S, A, Alg]) RotateUp() {
	assertThat(len(w.stack) > 0, "RotateUp: already at the root")
	top := w.stack[len(w.stack)-1]
	parent := top.parent
	child := w.cur
	assertThat(child != nil, "RotateUp: current position is empty")
	Access(w.data, parent)
	Access(w.data, child)
	if top.side == left {
		parent.Left = child.Right
		child.Right = parent
	} else {
		parent.Right = child.Left
		child.Left = parent
	}
	Rebuild(w.data, parent)
	Rebuild(w.data, child)
	if w.rebuildAlg != nil {
		w.rebuildAlg(parent)
		w.rebuildAlg(child)
	}
	w.stack = w.stack[:len(w.stack)-1]
	w.curL, w.curR = top.leftCtx, top.rightCtx
	w.writeNodeIntoSlot(child)
}

// rotateDown is the shared body of RotateLeft and RotateRight: it sinks the
// current node down into the position of one of its own children, which
// rises to take its place. The walker stays positioned at the same node
// (now one level deeper); the risen child takes over the node's old far
// context, and the node's far context on the risen child's side grows by
// the risen child's value and outer subtree.
func (w *Walker[V, S, A, Alg]) rotateDown(toSide Side) {
	cur := w.cur
	assertThat(cur != nil, "rotate: current position is empty")
	Access(w.data, cur)
	var newTop *Node[V, S, A, Alg]
	var curSideUnderNewTop Side
	if toSide == left {
		newTop = cur.Right
		assertThat(newTop != nil, "RotateLeft: no right child to promote")
		Access(w.data, newTop)
		cur.Right = newTop.Left
		newTop.Left = cur
		curSideUnderNewTop = left
	} else {
		newTop = cur.Left
		assertThat(newTop != nil, "RotateRight: no left child to promote")
		Access(w.data, newTop)
		cur.Left = newTop.Right
		newTop.Right = cur
		curSideUnderNewTop = right
	}
	Rebuild(w.data, cur)
	Rebuild(w.data, newTop)
	if w.rebuildAlg != nil {
		w.rebuildAlg(cur)
		w.rebuildAlg(newTop)
	}
	w.writeNodeIntoSlot(newTop)
	w.stack = append(w.stack, frame[V, S, A, Alg]{parent: newTop, side: curSideUnderNewTop, leftCtx: w.curL, rightCtx: w.curR})
	if toSide == left {
		w.curR = w.data.Combine(w.data.Combine(w.data.ToSummary(newTop.Value), EffectiveSummary(w.data, newTop.Right)), w.curR)
	} else {
		w.curL = w.data.Combine(w.curL, w.data.Combine(EffectiveSummary(w.data, newTop.Left), w.data.ToSummary(newTop.Value)))
	}
}

// RotateLeft performs the classic left rotation at the current node: its
// right child rises to take its place, and the current node becomes that
// child's left child.
func (w *Walker[V, S, A, Alg]) RotateLeft() { w.rotateDown(left) }

// RotateRight is the mirror of RotateLeft.
func (w *Walker[V, S, A, Alg]) RotateRight() { w.rotateDown(right) }

// RotateSide dispatches to RotateLeft or RotateRight.
func (w *Walker[V, S, A, Alg]) RotateSide(s Side) {
	if s == left {
		w.RotateLeft()
	} else {
		w.RotateRight()
	}
}

// SplitStep describes one ancestor consumed while walking up from an empty
// position during a split (component C6, generic half): Ancestor is a node
// that must be reinserted as a middle element, Side is which of Ancestor's
// children the walker had descended into, and Off is the subtree hanging
// off Ancestor's other side.
type SplitStep[V any, S any, A comparable, Alg any] struct {
	Ancestor *Node[V, S, A, Alg]
	Side     Side
	Off      *Node[V, S, A, Alg]
}

// SplitWalkUp consumes the walker (which must be positioned at an empty
// slot) and returns its ancestors, deepest first, as SplitSteps. It does
// not itself reassemble the two halves: joining a carried-off subtree back
// onto an accumulator using an ancestor's own value as the middle element
// is a concatenate-with-middle operation (component C6) that only a
// balancer package can perform efficiently (AVL joins by rank, treaps by
// priority, splay trees by splay-then-attach) -- see concatMiddle in each
// balancer package.
// After this call the walker must not be used again.
func (w *Walker[V, S, A, Alg]) SplitWalkUp() []SplitStep[V, S, A, Alg] {
	assertThat(w.cur == nil, "SplitWalkUp: current position must be empty")
	steps := make([]SplitStep[V, S, A, Alg], 0, len(w.stack))
	for i := len(w.stack) - 1; i >= 0; i-- {
		f := w.stack[i]
		Access(w.data, f.parent)
		var off *Node[V, S, A, Alg]
		if f.side == left {
			off = f.parent.Right
		} else {
			off = f.parent.Left
		}
		steps = append(steps, SplitStep[V, S, A, Alg]{Ancestor: f.parent, Side: f.side, Off: off})
	}
	w.stack = nil
	return steps
}
