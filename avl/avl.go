// Package avl implements the segment-tree substrate (github.com/
// npillmayer/grove) balanced as an AVL tree: every node carries the height
// of its taller subtree, and every insert/delete is followed by rotations
// that restore the AVL invariant (the two children's heights never differ
// by more than one), guaranteeing O(log n) worst-case height rather than
// the other balancers' amortised or expected bounds (component C9).
package avl

import (
	"github.com/npillmayer/grove"
	"github.com/npillmayer/grove/maybe"
	"github.com/npillmayer/grove/result"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace { return tracing.Select("grove.avl") }

// alg is the AVL tree's per-node bookkeeping: the height of the subtree
// rooted here (a leaf has height 1; an empty child has height 0).
type alg struct{ height int }

type node[V any, S any, A comparable] = grove.Node[V, S, A, alg]
type walker[V any, S any, A comparable] = grove.Walker[V, S, A, alg]

// Tree is an AVL-balanced sequence of V.
type Tree[V any, S any, A comparable] struct {
	data grove.Data[V, S, A]
	root *node[V, S, A]
}

// New returns an empty AVL tree over the given Data contract.
func New[V any, S any, A comparable](d grove.Data[V, S, A]) *Tree[V, S, A] {
	return &Tree[V, S, A]{data: d}
}

func height[V any, S any, A comparable](n *node[V, S, A]) int {
	if n == nil {
		return 0
	}
	return n.Alg.height
}

// rebuildHeight recomputes n's height from its children -- the rebuildAlg
// hook every Walker restructuring operation invokes automatically.
func rebuildHeight[V any, S any, A comparable](n *node[V, S, A]) {
	l, r := height[V, S, A](n.Left), height[V, S, A](n.Right)
	if l > r {
		n.Alg.height = l + 1
	} else {
		n.Alg.height = r + 1
	}
}

func balanceFactor[V any, S any, A comparable](n *node[V, S, A]) int {
	return height[V, S, A](n.Left) - height[V, S, A](n.Right)
}

// FromValues builds an AVL tree from vs in a single balanced-bisection
// pass (see grove.FromSlice), then runs one bottom-up height-recompute
// pass, since the bisection build is already height-balanced but leaves
// every Alg field at its zero value.
func FromValues[V any, S any, A comparable](d grove.Data[V, S, A], vs []V) *Tree[V, S, A] {
	root := grove.FromSlice[V, S, A, alg](d, vs)
	fixupHeights(root)
	return &Tree[V, S, A]{data: d, root: root}
}

func fixupHeights[V any, S any, A comparable](n *node[V, S, A]) {
	if n == nil {
		return
	}
	fixupHeights(n.Left)
	fixupHeights(n.Right)
	rebuildHeight[V, S, A](n)
}

func (t *Tree[V, S, A]) newWalker() *walker[V, S, A] {
	return grove.NewWalker[V, S, A, alg](t.data, &t.root, rebuildHeight[V, S, A])
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

// Search returns the value loc Accepts, if any. No rebalancing happens on a
// plain search: height balance is maintained only by Insert/Delete.
func (t *Tree[V, S, A]) Search(loc grove.Locator[V, S]) (V, bool) {
	w := t.newWalker()
	w.Navigate(loc)
	if !w.AtNode() {
		var zero V
		return zero, false
	}
	v, _ := w.Value()
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

// rebalanceUpFrom walks the walker up from its current position to the
// root, re-rooting any node whose balance factor has drifted outside
// [-1, 1] with the standard single/double AVL rotation, and lets
// rebuildAlg keep every passed-through ancestor's height current.
func rebalanceUpFrom[V any, S any, A comparable](d grove.Data[V, S, A], w *walker[V, S, A]) {
	for {
		n := w.CurNode()
		grove.Access(d, n) // n.Left/n.Right must reflect the logical children before any balance decision
		bf := balanceFactor[V, S, A](n)
		depth := w.Depth()
		switch {
		case bf > 1:
			grove.Access(d, n.Left)
			if balanceFactor[V, S, A](n.Left) < 0 {
				tracer().Debugf("rebalance: LR case at depth=%d, bf=%d", depth, bf)
				_ = w.GoLeft()
				w.RotateLeft()
				for w.Depth() > depth {
					_, _ = w.GoUp()
				}
			} else {
				tracer().Debugf("rebalance: LL case at depth=%d, bf=%d", depth, bf)
			}
			w.RotateRight()
		case bf < -1:
			grove.Access(d, n.Right)
			if balanceFactor[V, S, A](n.Right) > 0 {
				tracer().Debugf("rebalance: RL case at depth=%d, bf=%d", depth, bf)
				_ = w.GoRight()
				w.RotateRight()
				for w.Depth() > depth {
					_, _ = w.GoUp()
				}
			} else {
				tracer().Debugf("rebalance: RR case at depth=%d, bf=%d", depth, bf)
			}
			w.RotateLeft()
		}
		if _, hasParent := w.ParentSide(); !hasParent {
			return
		}
		_, _ = w.GoUp()
	}
}

// Insert places v at the gap identified by loc and rebalances every
// ancestor on the way back to the root.
func (t *Tree[V, S, A]) Insert(loc grove.Locator[V, S], v V) error {
	w := t.newWalker()
	w.Navigate(loc)
	if err := w.Insert(v); err != nil {
		return err
	}
	rebuildHeight[V, S, A](w.CurNode())
	rebalanceUpFrom[V, S, A](t.data, w)
	return nil
}

// rotateToLeaf reduces a two-child node to at most one child by always
// rotating in the taller child's direction, which is the rotation AVL
// deletion needs to perform anyway on its way to restoring balance.
func rotateToLeaf[V any, S any, A comparable](d grove.Data[V, S, A], w *walker[V, S, A]) {
	for {
		cur := w.CurNode()
		grove.Access(d, cur)
		if cur.Left == nil || cur.Right == nil {
			return
		}
		if height[V, S, A](cur.Left) > height[V, S, A](cur.Right) {
			w.RotateRight()
		} else {
			w.RotateLeft()
		}
	}
}

// Delete removes the node loc Accepts and returns its value, rebalancing
// every ancestor of the vacated position afterwards.
func (t *Tree[V, S, A]) Delete(loc grove.Locator[V, S]) (V, error) {
	w := t.newWalker()
	w.Navigate(loc)
	if !w.AtNode() {
		var zero V
		return zero, grove.ErrPositionEmpty
	}
	rotateToLeaf[V, S, A](t.data, w)
	v, err := w.Delete()
	if err != nil {
		return v, err
	}
	if _, hasParent := w.ParentSide(); hasParent {
		_, _ = w.GoUp()
		rebalanceUpFrom[V, S, A](t.data, w)
	}
	w.Collapse()
	return v, nil
}

// concatMiddle joins left, mid, right into a height-balanced tree by the
// classic rank-targeted AVL join (expressed recursively, in the manner of
// `persistent/btree/internals.go`'s own recursive split/balance helpers,
// rather than through the Walker: a Walker's position would desync the
// moment an ancestor it had already descended through got replaced by a
// rotation on the way back up). Plain pointer surgery: every node built here
// is fresh and gets `grove.Rebuild`+`rebuildHeight` when it is built, and
// again only when a rotation moves it.
func concatMiddle[V any, S any, A comparable](d grove.Data[V, S, A], left *node[V, S, A], mid V, right *node[V, S, A]) *node[V, S, A] {
	lh, rh := height[V, S, A](left), height[V, S, A](right)
	switch {
	case lh > rh+1:
		return joinRight(d, left, mid, right)
	case rh > lh+1:
		return joinLeft(d, left, mid, right)
	default:
		n := &node[V, S, A]{Value: mid, Pending: d.EmptyAction(), Left: left, Right: right}
		grove.Rebuild[V, S, A, alg](d, n)
		rebuildHeight[V, S, A](n)
		return n
	}
}

// joinRight handles the lh > rh+1 case: mid and right attach somewhere down
// tl's right spine, at the first node whose height is within one of rh, and
// every node back up to tl's own root is rebuilt and re-rotated as needed.
func joinRight[V any, S any, A comparable](d grove.Data[V, S, A], tl *node[V, S, A], mid V, tr *node[V, S, A]) *node[V, S, A] {
	if height[V, S, A](tl) <= height[V, S, A](tr)+1 {
		n := &node[V, S, A]{Value: mid, Pending: d.EmptyAction(), Left: tl, Right: tr}
		grove.Rebuild[V, S, A, alg](d, n)
		rebuildHeight[V, S, A](n)
		return n
	}
	grove.Access(d, tl)
	joined := joinRight(d, tl.Right, mid, tr)
	n := &node[V, S, A]{Value: tl.Value, Pending: d.EmptyAction(), Left: tl.Left, Right: joined}
	grove.Rebuild[V, S, A, alg](d, n)
	rebuildHeight[V, S, A](n)
	if balanceFactor[V, S, A](n) < -1 {
		if balanceFactor[V, S, A](n.Right) > 0 {
			grove.Access(d, n.Right.Left)
			n.Right = rotateRightPure(d, n.Right)
		}
		return rotateLeftPure(d, n)
	}
	return n
}

// joinLeft mirrors joinRight for the rh > lh+1 case.
func joinLeft[V any, S any, A comparable](d grove.Data[V, S, A], tl *node[V, S, A], mid V, tr *node[V, S, A]) *node[V, S, A] {
	if height[V, S, A](tr) <= height[V, S, A](tl)+1 {
		n := &node[V, S, A]{Value: mid, Pending: d.EmptyAction(), Left: tl, Right: tr}
		grove.Rebuild[V, S, A, alg](d, n)
		rebuildHeight[V, S, A](n)
		return n
	}
	grove.Access(d, tr)
	joined := joinLeft(d, tl, mid, tr.Left)
	n := &node[V, S, A]{Value: tr.Value, Pending: d.EmptyAction(), Left: joined, Right: tr.Right}
	grove.Rebuild[V, S, A, alg](d, n)
	rebuildHeight[V, S, A](n)
	if balanceFactor[V, S, A](n) > 1 {
		if balanceFactor[V, S, A](n.Left) < 0 {
			grove.Access(d, n.Left.Right)
			n.Left = rotateLeftPure(d, n.Left)
		}
		return rotateRightPure(d, n)
	}
	return n
}

// rotateLeftPure/rotateRightPure are plain pointer-surgery rotations over a
// freshly built subtree (no enclosing Walker path to keep in sync), used
// only by joinRight/joinLeft to fix the single node that may end up
// momentarily unbalanced by the join.
func rotateLeftPure[V any, S any, A comparable](d grove.Data[V, S, A], cur *node[V, S, A]) *node[V, S, A] {
	newTop := cur.Right
	cur.Right = newTop.Left
	newTop.Left = cur
	grove.Rebuild[V, S, A, alg](d, cur)
	rebuildHeight[V, S, A](cur)
	grove.Rebuild[V, S, A, alg](d, newTop)
	rebuildHeight[V, S, A](newTop)
	return newTop
}

func rotateRightPure[V any, S any, A comparable](d grove.Data[V, S, A], cur *node[V, S, A]) *node[V, S, A] {
	newTop := cur.Left
	cur.Left = newTop.Right
	newTop.Right = cur
	grove.Rebuild[V, S, A, alg](d, cur)
	rebuildHeight[V, S, A](cur)
	grove.Rebuild[V, S, A, alg](d, newTop)
	rebuildHeight[V, S, A](newTop)
	return newTop
}

// Concat appends other's whole sequence after t's, in place, and returns t.
func (t *Tree[V, S, A]) Concat(other *Tree[V, S, A]) *Tree[V, S, A] {
	if t.root == nil {
		t.root = other.root
		return t
	}
	if other.root == nil {
		return t
	}
	left := t.root
	w := grove.NewWalker[V, S, A, alg](t.data, &left, rebuildHeight[V, S, A])
	for {
		cur := w.CurNode()
		grove.Access[V, S, A, alg](t.data, cur)
		if cur.Right == nil {
			break
		}
		_ = w.GoRight()
	}
	mid, _ := w.Value()
	_, _ = w.Delete()
	if _, hasParent := w.ParentSide(); hasParent {
		_, _ = w.GoUp()
		rebalanceUpFrom[V, S, A](t.data, w)
	}
	w.Collapse()
	t.root = concatMiddle(t.data, left, mid, other.root)
	return t
}

// ConcatResult is Concat for callers already working in an fp-flavoured
// style elsewhere in a larger program. Concat itself cannot fail, so this
// always yields Ok, but it lets Concat compose uniformly with other steps
// that report their outcome as a Result.
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
