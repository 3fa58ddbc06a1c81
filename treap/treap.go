// Package treap implements the segment-tree substrate (github.com/
// npillmayer/grove) balanced as a treap: every node carries a random
// priority, and the tree is kept heap-ordered on that priority (in addition
// to being search-ordered on position), which makes its shape a
// probabilistic function of the priorities alone rather than of insertion
// order -- the expected height is O(log n) regardless of how values arrive
// (component C8).
package treap

import (
	"math/rand"
	"sync"

	"github.com/npillmayer/grove"
	"github.com/npillmayer/grove/maybe"
	"github.com/npillmayer/grove/result"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace { return tracing.Select("grove.treap") }

// alg is the treap's per-node bookkeeping: a random heap priority. No
// library in the example pack offers a treap-flavoured priority source, and
// there is nothing domain-specific to gain from one here -- a plain,
// explicitly seeded math/rand.Rand per Tree is the ordinary idiom for this,
// so it is used directly rather than threaded through as a dependency.
type alg struct{ priority uint64 }

type node[V any, S any, A comparable] = grove.Node[V, S, A, alg]
type walker[V any, S any, A comparable] = grove.Walker[V, S, A, alg]

// Tree is a treap-balanced sequence of V.
type Tree[V any, S any, A comparable] struct {
	data grove.Data[V, S, A]
	root *node[V, S, A]
	rnd  *rand.Rand
}

// New returns an empty treap over the given Data contract, seeded from seed
// (use a fixed seed for reproducible tests; vary it in production).
func New[V any, S any, A comparable](d grove.Data[V, S, A], seed int64) *Tree[V, S, A] {
	return &Tree[V, S, A]{data: d, rnd: rand.New(rand.NewSource(seed))}
}

// FromValues builds a treap from vs by inserting them one at a time (unlike
// the other balancers' FromValues, a treap cannot simply bisect: the heap
// order over freshly drawn priorities must still be established by
// rotation).
func FromValues[V any, S any, A comparable](d grove.Data[V, S, A], seed int64, vs []V) *Tree[V, S, A] {
	t := New[V, S, A](d, seed)
	for _, v := range vs {
		_ = t.Insert(grove.RightEdgeOf(grove.Full[V, S]()), v)
	}
	return t
}

// sizedAdapter is a Sized whose Size ignores the summary it is given and
// reports the tree's whole Len, so it is the size of a summary only when
// that summary covers the entire tree.
type sizedAdapter[V any, S any] struct {
	t interface{ Len() int }
}

func (a sizedAdapter[V, S]) Size(s S) int { return a.t.Len() }

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

// Search returns the value loc Accepts, if any. A treap needs no rotation
// on a plain search: the heap order is maintained only by Insert/Delete.
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

// Insert places v at the gap identified by loc, draws it a fresh priority,
// and rotates it up while it outranks its parent -- the standard treap
// insertion discipline.
func (t *Tree[V, S, A]) Insert(loc grove.Locator[V, S], v V) error {
	w := t.newWalker()
	w.Navigate(loc)
	if err := w.Insert(v); err != nil {
		return err
	}
	w.CurNode().Alg = alg{priority: t.rnd.Uint64()}
	tracer().Debugf("insert: drew priority=%d at depth=%d", w.CurNode().Alg.priority, w.Depth())
	for {
		parent := w.ParentNode()
		if parent == nil || w.CurNode().Alg.priority <= parent.Alg.priority {
			break
		}
		tracer().Debugf("insert: rotating up past priority=%d", parent.Alg.priority)
		w.RotateUp()
	}
	// RotateUp only rebuilds the two nodes it swaps; every ancestor still
	// above the point where the loop stopped early (not outranking its own
	// parent) is left with a stale cached summary until walked through
	// again, so the walk back to the root must always happen, not just on
	// the lucky path where rotation already reached it.
	w.Collapse()
	return nil
}

// rotateTowardHigherPriorityChild is the two-child deletion policy forward-
// referenced by Slice.Delete's doc comment: repeatedly rotate the current
// node past whichever child currently has the higher priority, until it has
// at most one child, preserving heap order throughout.
func rotateTowardHigherPriorityChild[V any, S any, A comparable](d grove.Data[V, S, A], w *walker[V, S, A]) {
	for {
		cur := w.CurNode()
		grove.Access(d, cur)
		if cur.Left == nil || cur.Right == nil {
			return
		}
		if cur.Left.Alg.priority > cur.Right.Alg.priority {
			tracer().Debugf("delete: rotating right past priority=%d", cur.Left.Alg.priority)
			w.RotateRight()
		} else {
			tracer().Debugf("delete: rotating left past priority=%d", cur.Right.Alg.priority)
			w.RotateLeft()
		}
	}
}

// Delete removes the node loc Accepts and returns its value.
func (t *Tree[V, S, A]) Delete(loc grove.Locator[V, S]) (V, error) {
	w := t.newWalker()
	w.Navigate(loc)
	if !w.AtNode() {
		var zero V
		return zero, grove.ErrPositionEmpty
	}
	rotateTowardHigherPriorityChild[V, S, A](t.data, w)
	v, err := w.Delete()
	w.Collapse()
	return v, err
}

// concatMiddle joins left, mid, right into one treap: mid becomes a single
// node with a fresh priority, and the three parts are merged in order, so
// the result is heap-ordered however deep mid has to sink.
func concatMiddle[V any, S any, A comparable](d grove.Data[V, S, A], rnd *rand.Rand, left *node[V, S, A], mid V, right *node[V, S, A]) *node[V, S, A] {
	n := &node[V, S, A]{Value: mid, Pending: d.EmptyAction(), Alg: alg{priority: rnd.Uint64()}}
	tracer().Debugf("concatMiddle: drew priority=%d for new pivot", n.Alg.priority)
	grove.Rebuild[V, S, A, alg](d, n)
	return merge(d, merge(d, left, n), right)
}

// rotateRightPure/rotateLeftPure are plain pointer-surgery rotations over a
// detached subtree (no Walker involved).
func rotateRightPure[V any, S any, A comparable](d grove.Data[V, S, A], cur *node[V, S, A]) *node[V, S, A] {
	newTop := cur.Left
	grove.Access(d, cur)
	grove.Access(d, newTop)
	cur.Left = newTop.Right
	newTop.Right = cur
	grove.Rebuild[V, S, A, alg](d, cur)
	grove.Rebuild[V, S, A, alg](d, newTop)
	return newTop
}

func rotateLeftPure[V any, S any, A comparable](d grove.Data[V, S, A], cur *node[V, S, A]) *node[V, S, A] {
	newTop := cur.Right
	grove.Access(d, cur)
	grove.Access(d, newTop)
	cur.Right = newTop.Left
	newTop.Left = cur
	grove.Rebuild[V, S, A, alg](d, cur)
	grove.Rebuild[V, S, A, alg](d, newTop)
	return newTop
}

// SplitRight cuts the sequence at the gap identified by loc, keeps the left
// part in t, and returns the right part as a new Tree. Each ancestor
// consumed on the way up is reinserted as a fresh concatMiddle, so the
// result is heap-ordered on brand new priorities rather than inheriting the
// original tree's shape -- acceptable, since a treap's balance guarantee
// never depended on any particular priority assignment surviving a split.
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
			rightTree = concatMiddle(t.data, t.rnd, rightTree, step.Ancestor.Value, step.Off)
		} else {
			leftTree = concatMiddle(t.data, t.rnd, step.Off, step.Ancestor.Value, leftTree)
		}
	}
	t.root = leftTree
	return &Tree[V, S, A]{data: t.data, root: rightTree, rnd: t.rnd}, nil
}

// SplitLeft cuts the sequence at the gap identified by loc, keeps the right
// part in t, and returns the left part as a new Tree.
func (t *Tree[V, S, A]) SplitLeft(loc grove.Locator[V, S]) (*Tree[V, S, A], error) {
	right, err := t.SplitRight(loc)
	if err != nil {
		return nil, err
	}
	left := &Tree[V, S, A]{data: t.data, root: t.root, rnd: t.rnd}
	t.root = right.root
	return left, nil
}

// Concat appends other's whole sequence after t's by the classic treap
// merge: the higher-priority of the two roots stays on top, and the other
// tree is merged recursively into its inner child (the right child of a
// left root, the left child of a right root). other must not be used
// afterwards.
func (t *Tree[V, S, A]) Concat(other *Tree[V, S, A]) *Tree[V, S, A] {
	t.root = merge(t.data, t.root, other.root)
	return t
}

// ConcatResult is Concat for callers already working in an fp-flavoured
// style elsewhere in a larger program; other must not be used afterwards,
// exactly as for Concat. The merge itself cannot fail, so this always
// yields Ok, but it lets Concat compose uniformly with other steps that
// report their outcome as a Result.
func (t *Tree[V, S, A]) ConcatResult(other *Tree[V, S, A]) result.Result[*Tree[V, S, A]] {
	return result.Ok(t.Concat(other))
}

func merge[V any, S any, A comparable](d grove.Data[V, S, A], left, right *node[V, S, A]) *node[V, S, A] {
	if left == nil {
		return right
	}
	if right == nil {
		return left
	}
	grove.Access(d, left)
	grove.Access(d, right)
	if left.Alg.priority > right.Alg.priority {
		tracer().Debugf("merge: left root priority=%d stays on top", left.Alg.priority)
		left.Right = merge(d, left.Right, right)
		grove.Rebuild[V, S, A, alg](d, left)
		return left
	}
	tracer().Debugf("merge: right root priority=%d stays on top", right.Alg.priority)
	right.Left = merge(d, left, right.Left)
	grove.Rebuild[V, S, A, alg](d, right)
	return right
}

// parallelUnionThreshold is the minimum combined size at which
// UnionByKeyParallel bothers spawning goroutines for its two recursive halves; below it the
// sequential path wins on pure scheduling overhead.
const parallelUnionThreshold = 1024

// UnionByKey merges two treaps that are each maintained in key order (built
// and searched via AtKey/KeyRange, not AtIndex/AtGap) into one, using the
// classic treap union: whichever root carries the higher priority stays on
// top, the other tree is split against that root's key, and the two
// resulting halves are merged recursively into the root's own children.
// This is a multiset union: a duplicate key is not deduplicated, and which
// of the two sides an equal-key element ends up nested under is arbitrary
// (mirroring the original implementation's own "placed in an arbitrary
// order" contract for ties). Expected cost is O(n log(1 + m/n)) for trees
// of size n <= m. left and right must not be used afterwards.
func UnionByKey[V any, S any, A comparable, K any](keyed grove.Keyed[V, K], compare func(a, b K) int, left, right *Tree[V, S, A]) *Tree[V, S, A] {
	return unionTrees(keyed, compare, left, right, false)
}

// UnionByKeyParallel is UnionByKey, but once a recursion's combined subtree
// size clears parallelUnionThreshold, its two halves are merged on separate
// goroutines. Safe because after a split the two halves touch disjoint node
// sets (§5): no rotation in either half ever reaches into the other's
// nodes. The Data implementation's Combine/ToSummary/Act must tolerate
// concurrent calls in that mode, since both goroutines invoke them
// independently over disjoint subtrees.
func UnionByKeyParallel[V any, S any, A comparable, K any](keyed grove.Keyed[V, K], compare func(a, b K) int, left, right *Tree[V, S, A]) *Tree[V, S, A] {
	return unionTrees(keyed, compare, left, right, true)
}

func unionTrees[V any, S any, A comparable, K any](keyed grove.Keyed[V, K], compare func(a, b K) int, left, right *Tree[V, S, A], parallel bool) *Tree[V, S, A] {
	d := left.data
	budget := 0
	if parallel {
		// budget, the number of halvings of the combined size before each half drops
		// below parallelUnionThreshold is how many recursion levels still
		// spawn goroutines -- avoids re-measuring subtree size on every
		// call (Size walks the whole subtree, so that would cost O(n) per
		// level instead of O(1)).
		for total := left.Len() + right.Len(); total >= parallelUnionThreshold; total /= 2 {
			budget++
		}
	}
	root := unionByKey(d, keyed, compare, left.root, right.root, budget)
	return &Tree[V, S, A]{data: d, root: root, rnd: left.rnd}
}

func unionByKey[V any, S any, A comparable, K any](d grove.Data[V, S, A], keyed grove.Keyed[V, K], compare func(a, b K) int, left, right *node[V, S, A], budget int) *node[V, S, A] {
	if left == nil {
		return right
	}
	if right == nil {
		return left
	}
	if left.Alg.priority < right.Alg.priority {
		tracer().Debugf("unionByKey: swapping, right root priority=%d outranks left's %d", right.Alg.priority, left.Alg.priority)
		left, right = right, left
	}
	grove.Access(d, left)
	loc := grove.AtKey[V, S, K](keyed, compare, keyed.Key(left.Value))
	lt, gt := splitNodeByKey(d, right, loc)

	if budget <= 0 {
		left.Left = unionByKey(d, keyed, compare, left.Left, lt, budget)
		left.Right = unionByKey(d, keyed, compare, left.Right, gt, budget)
		grove.Rebuild[V, S, A, alg](d, left)
		return left
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		left.Left = unionByKey(d, keyed, compare, left.Left, lt, budget-1)
	}()
	go func() {
		defer wg.Done()
		left.Right = unionByKey(d, keyed, compare, left.Right, gt, budget-1)
	}()
	wg.Wait()
	grove.Rebuild[V, S, A, alg](d, left)
	return left
}

// splitNodeByKey splits the treap rooted at n into the part loc sends left
// (lt) and the part loc sends right (gt), keeping every node: this is a
// multiset split, so a node loc Accepts (a duplicate of the union's pivot
// key) is never dropped, only placed on one side or the other -- here the
// gt side, alongside the GoLeft case it is otherwise indistinguishable
// from -- which is an arbitrary but stable tie-break, not deduplication.
func splitNodeByKey[V any, S any, A comparable](d grove.Data[V, S, A], n *node[V, S, A], loc grove.Locator[V, S]) (lt, gt *node[V, S, A]) {
	if n == nil {
		return nil, nil
	}
	grove.Access(d, n)
	L := grove.EffectiveSummary(d, n.Left)
	R := grove.EffectiveSummary(d, n.Right)
	switch loc(L, n.Value, R) {
	case grove.GoRight:
		l, g := splitNodeByKey(d, n.Right, loc)
		n.Right = l
		grove.Rebuild[V, S, A, alg](d, n)
		return n, g
	default: // GoLeft, or Accept (an equal-key duplicate): n and its right
		// subtree land on the gt side; n.Left is split further.
		l, g := splitNodeByKey(d, n.Left, loc)
		n.Left = g
		grove.Rebuild[V, S, A, alg](d, n)
		return l, n
	}
}
