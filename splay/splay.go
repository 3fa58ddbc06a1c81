// Package splay implements the segment-tree substrate (github.com/
// npillmayer/grove) balanced by splaying: every access, insert or delete
// moves the touched node to the root via a sequence of zig/zig-zig/zig-zag
// rotations, giving the tree an amortised O(log n) bound per operation
// without any per-node balance bookkeeping (component C7).
package splay

import (
	"github.com/npillmayer/grove"
	"github.com/npillmayer/grove/maybe"
	"github.com/npillmayer/grove/result"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace { return tracing.Select("grove.splay") }

// alg is the splay tree's node payload: empty, because splaying needs no
// per-node bookkeeping beyond the tree shape itself (contrast treap's
// priority or AVL's rank).
type alg struct{}

type node[V any, S any, A comparable] = grove.Node[V, S, A, alg]
type walker[V any, S any, A comparable] = grove.Walker[V, S, A, alg]

// Tree is a splay-balanced sequence of V.
type Tree[V any, S any, A comparable] struct {
	data grove.Data[V, S, A]
	root *node[V, S, A]
}

// New returns an empty splay tree over the given Data contract.
func New[V any, S any, A comparable](d grove.Data[V, S, A]) *Tree[V, S, A] {
	return &Tree[V, S, A]{data: d}
}

// FromValues builds a splay tree from vs in a single balanced-bisection
// pass; the first access will splay as usual.
func FromValues[V any, S any, A comparable](d grove.Data[V, S, A], vs []V) *Tree[V, S, A] {
	return &Tree[V, S, A]{data: d, root: grove.FromSlice[V, S, A, alg](d, vs)}
}

func (t *Tree[V, S, A]) newWalker() *walker[V, S, A] {
	return grove.NewWalker[V, S, A, alg](t.data, &t.root, nil)
}

// Len reports the number of elements.
func (t *Tree[V, S, A]) Len() int { return grove.Size[V, S, A, alg](t.root) }

// Values drains the tree in order.
func (t *Tree[V, S, A]) Values() []V { return grove.IntoSlice[V, S, A, alg](t.data, t.root) }

// Summary returns the summary of the whole sequence.
func (t *Tree[V, S, A]) Summary() S { return grove.EffectiveSummary[V, S, A, alg](t.data, t.root) }

// SegmentSummary returns the summary of the maximal run accepted by loc.
func (t *Tree[V, S, A]) SegmentSummary(loc grove.Locator[V, S]) S {
	return grove.SegmentSummary[V, S, A, alg](t.data, t.root, loc)
}

// Act applies a to the maximal run accepted by loc.
func (t *Tree[V, S, A]) Act(loc grove.Locator[V, S], a A) {
	grove.ActSegment[V, S, A, alg](t.data, &t.root, t.data.EmptySummary(), t.data.EmptySummary(), loc, a)
}

// splayStep performs one rotation step bringing the walker's current
// position one level closer to the root, using the proper zig-zig
// double-rotation (rotate the parent past the grandparent first, using the
// same side, then re-descend and rotate the original node past its now-
// promoted parent) whenever parent and grandparent sides agree, and the
// simpler two-step zig-zag otherwise. Composing two plain RotateUp calls
// gives the classic zig-zag shape already, but NOT the classic zig-zig
// shape -- see DESIGN.md for the derivation.
func splayStep[V any, S any, A comparable](w *walker[V, S, A]) {
	pSide, hasParent := w.ParentSide()
	if !hasParent {
		return
	}
	gSide, hasGrandparent := w.GrandparentSide()
	if !hasGrandparent {
		tracer().Debugf("splay: zig at depth=%d", w.Depth())
		w.RotateUp() // zig
		return
	}
	if pSide == gSide {
		tracer().Debugf("splay: zig-zig at depth=%d, side=%v", w.Depth(), pSide)
		w.GoUp()
		w.RotateUp()
		if pSide == grove.Side(0) { // left
			_ = w.GoLeft()
		} else {
			_ = w.GoRight()
		}
		w.RotateUp()
	} else {
		tracer().Debugf("splay: zig-zag at depth=%d, side=%v", w.Depth(), pSide)
		w.RotateUp()
		w.RotateUp()
	}
}

func splayToRoot[V any, S any, A comparable](w *walker[V, S, A]) {
	for w.Depth() > 0 {
		splayStep(w)
	}
}

// Search navigates to the node loc Accepts, splays it to the root if found,
// and returns its value.
func (t *Tree[V, S, A]) Search(loc grove.Locator[V, S]) (V, bool) {
	w := t.newWalker()
	w.Navigate(loc)
	if !w.AtNode() {
		var zero V
		return zero, false
	}
	v, _ := w.Value()
	splayToRoot(w)
	return v, true
}

// SearchMaybe is Search for callers already working in an fp-flavoured
// style elsewhere in a larger program: a miss is Nothing rather than a
// boolean false.
func (t *Tree[V, S, A]) SearchMaybe(loc grove.Locator[V, S]) maybe.Maybe[V] {
	if v, ok := t.Search(loc); ok {
		return maybe.Just(v)
	}
	return maybe.Nothing[V]()
}

// Insert places v at the gap identified by loc and splays the new leaf to
// the root.
func (t *Tree[V, S, A]) Insert(loc grove.Locator[V, S], v V) error {
	w := t.newWalker()
	w.Navigate(loc)
	if err := w.Insert(v); err != nil {
		return err
	}
	splayToRoot(w)
	return nil
}

// Delete removes the node loc Accepts and returns its value, preserving the
// splay invariant by first splaying the target to the root (so the rest of
// the classic splay-tree deletion -- join the two resulting subtrees by
// splaying the left subtree's maximum to its own root -- has O(1) extra
// work once there).
func (t *Tree[V, S, A]) Delete(loc grove.Locator[V, S]) (V, error) {
	w := t.newWalker()
	w.Navigate(loc)
	if !w.AtNode() {
		var zero V
		return zero, grove.ErrPositionEmpty
	}
	splayToRoot(w)
	removed, _ := w.Value()
	left, right := t.root.Left, t.root.Right
	if left == nil {
		t.root = right
		return removed, nil
	}
	if right == nil {
		t.root = left
		return removed, nil
	}
	left = splayMaxToRoot(t.data, left)
	left.Right = right
	grove.Rebuild[V, S, A, alg](t.data, left)
	t.root = left
	return removed, nil
}

// splayMaxToRoot returns root's subtree with its rightmost (maximum) node
// splayed to the top -- used to rejoin the two halves left behind by
// Delete without needing a dedicated concatenate-with-middle.
func splayMaxToRoot[V any, S any, A comparable](d grove.Data[V, S, A], root *node[V, S, A]) *node[V, S, A] {
	w := grove.NewWalker[V, S, A, alg](d, &root, nil)
	for {
		cur := w.CurNode()
		grove.Access(d, cur)
		if cur.Right == nil {
			break
		}
		_ = w.GoRight()
	}
	splayToRoot(w)
	return root
}

// concatMiddle joins left, mid, and right into one tree, by splaying left's
// maximum to its root and then making mid a new root node with left as its
// left child and right as its right child -- component C6's balancer-specific half,
// grounded on the classic splay-tree join-by-max-splay technique (the same
// technique Delete above uses to rejoin its own two halves).
func concatMiddle[V any, S any, A comparable](d grove.Data[V, S, A], left *node[V, S, A], mid V, right *node[V, S, A]) *node[V, S, A] {
	if left == nil {
		n := &node[V, S, A]{Value: mid, Pending: d.EmptyAction(), Right: right}
		grove.Rebuild[V, S, A, alg](d, n)
		return n
	}
	left = splayMaxToRoot(d, left)
	n := &node[V, S, A]{Value: mid, Pending: d.EmptyAction(), Left: left, Right: right}
	grove.Rebuild[V, S, A, alg](d, n)
	return n
}

// Concat appends other's whole sequence after t's, in place, and returns t.
// other must not be used afterwards.
func (t *Tree[V, S, A]) Concat(other *Tree[V, S, A]) *Tree[V, S, A] {
	if t.root == nil {
		t.root = other.root
		return t
	}
	if other.root == nil {
		return t
	}
	left := splayMaxToRoot(t.data, t.root)
	left.Right = other.root
	grove.Rebuild[V, S, A, alg](t.data, left)
	t.root = left
	return t
}

// ConcatResult is Concat for callers already working in an fp-flavoured
// style elsewhere in a larger program; other must not be used afterwards,
// exactly as for Concat. The splice itself cannot fail, so this always
// yields Ok, but it lets Concat compose uniformly with other steps that
// report their outcome as a Result.
func (t *Tree[V, S, A]) ConcatResult(other *Tree[V, S, A]) result.Result[*Tree[V, S, A]] {
	return result.Ok(t.Concat(other))
}

// SplitRight cuts the sequence at the gap identified by loc, keeps the left
// part in t, and returns the right part as a new Tree.
func (t *Tree[V, S, A]) SplitRight(loc grove.Locator[V, S]) (*Tree[V, S, A], error) {
	w := t.newWalker()
	w.Navigate(loc)
	if w.AtNode() {
		return nil, grove.ErrPositionOccupied
	}
	steps := w.SplitWalkUp()
	var leftTree, rightTree *node[V, S, A]
	for _, step := range steps {
		if step.Side == grove.Side(0) {
			rightTree = concatMiddle(t.data, rightTree, step.Ancestor.Value, step.Off)
		} else {
			leftTree = concatMiddle(t.data, step.Off, step.Ancestor.Value, leftTree)
		}
	}
	t.root = leftTree
	return &Tree[V, S, A]{data: t.data, root: rightTree}, nil
}

// SplitLeft cuts the sequence at the gap identified by loc, keeps the right
// part in t, and returns the left part as a new Tree.
func (t *Tree[V, S, A]) SplitLeft(loc grove.Locator[V, S]) (*Tree[V, S, A], error) {
	right, err := t.SplitRight(loc)
	if err != nil {
		return nil, err
	}
	left := &Tree[V, S, A]{data: t.data, root: t.root}
	t.root = right.root
	return left, nil
}
