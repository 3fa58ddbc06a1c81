// The Tree type and its operations; see doc.go for the package overview.
package persistent

import (
	"fmt"
	"math/rand"

	"github.com/npillmayer/grove"
	"github.com/npillmayer/grove/maybe"
	"github.com/npillmayer/grove/result"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace { return tracing.Select("grove.persistent") }

// alg is the persistent balancer's per-node bookkeeping: a treap priority,
// exactly as in grove/treap, plus shared, a conservative, monotonic flag
// recording whether this node might be reachable from more than one Tree.
//
// shared is not an exact refcount: it is only ever set to true (by Clone,
// and by cow when a clone starts sharing its former children), never
// cleared, which is sound because the one thing it guards against --
// mutating a node two lineages can both still see -- only gets *safer* the
// more conservative the flag is. Go's garbage collector, unlike a manual
// allocator, makes an exact decrement-on-drop count unnecessary for
// correctness: over-counting merely costs an occasional unneeded clone.
type alg struct {
	shared   bool
	priority uint64
}

type node[V any, S any, A comparable] = grove.Node[V, S, A, alg]

// Tree is a persistent (copy-on-write, multi-version) treap-balanced
// sequence of V. The zero value is not usable; construct with New or
// FromValues.
type Tree[V any, S any, A comparable] struct {
	data grove.Data[V, S, A]
	root *node[V, S, A]
	rnd  *rand.Rand
}

// New returns an empty persistent tree over the given Data contract, seeded
// from seed.
func New[V any, S any, A comparable](d grove.Data[V, S, A], seed int64) *Tree[V, S, A] {
	return &Tree[V, S, A]{data: d, rnd: rand.New(rand.NewSource(seed))}
}

// FromValues builds a persistent tree from vs by inserting them one at a
// time, exactly as grove/treap.FromValues does and for the same reason: a
// treap's heap order over freshly drawn priorities cannot be established by
// simple bisection.
func FromValues[V any, S any, A comparable](d grove.Data[V, S, A], seed int64, vs []V) *Tree[V, S, A] {
	t := New[V, S, A](d, seed)
	for _, v := range vs {
		_ = t.Insert(grove.RightEdgeOf(grove.Full[V, S]()), v)
	}
	return t
}

// sizedAdapter is a Sized whose Size ignores the summary it is given and
// reports the tree's whole Len, so it is the size of a summary only when
// that summary covers the entire tree (mirrors grove/treap's sizedAdapter).
type sizedAdapter[V any, S any] struct {
	t interface{ Len() int }
}

func (a sizedAdapter[V, S]) Size(s S) int { return a.t.Len() }

// Clone returns a new Tree sharing t's current structure. O(1): it marks
// t's root as shared (if non-nil) so that the next mutation on either t or
// the clone that reaches a shared node copies it first, and gives the
// clone its own random source (derived from t's, so that both trees remain
// deterministic given t's original seed, but no *rand.Rand is ever
// accessed from two goroutines at once).
func (t *Tree[V, S, A]) Clone() *Tree[V, S, A] {
	if t.root != nil {
		t.root.Alg.shared = true
	}
	return &Tree[V, S, A]{data: t.data, root: t.root, rnd: rand.New(rand.NewSource(t.rnd.Int63()))}
}

// cow returns n if it is exclusively owned, or a fresh shallow copy of n
// (marked exclusively owned, with its children marked shared -- they are
// now reachable from both n and the copy) if n might be shared. Mirrors
// persistent/btree/internals.go's clone/cloneWithCapacity discipline,
// generalised from B-tree item slices to a single augmented node.
func cow[V any, S any, A comparable](n *node[V, S, A]) *node[V, S, A] {
	if n == nil || !n.Alg.shared {
		return n
	}
	c := n.CloneShallow()
	c.Alg.shared = false
	if c.Left != nil {
		c.Left.Alg.shared = true
	}
	if c.Right != nil {
		c.Right.Alg.shared = true
	}
	tracer().Debugf("cow: cloned shared node, value=%v", c.Value)
	return c
}

// cowAccess is grove.Access with the copy-on-write discipline folded in:
// it first ensures n itself is exclusively owned, and -- only if n carries
// a pending action, which Access is about to push down -- ensures both
// children are exclusively owned too, since Access writes directly into
// their Pending fields. Cloning children unconditionally (regardless of
// whether they end up touched further down the call) would be sound but
// needlessly destroy sharing on every no-op Access; checking Pending first
// keeps read-only-ish descents (an Access call with nothing pending) free.
func cowAccess[V any, S any, A comparable](d grove.Data[V, S, A], n *node[V, S, A]) *node[V, S, A] {
	n = cow(n)
	if n == nil {
		return nil
	}
	if n.Pending != d.EmptyAction() {
		n.Left = cow(n.Left)
		n.Right = cow(n.Right)
	}
	grove.Access(d, n)
	return n
}

// reversesAction recovers the optional Reversing capability from d, the
// same way grove's own unexported reverses helper does -- that helper
// cannot be reused directly from outside package grove.
func reversesAction[V any, S any, A comparable](d grove.Data[V, S, A], a A) bool {
	if r, ok := any(d).(grove.Reversing[A]); ok {
		return r.Reverses(a)
	}
	return false
}

func badLocator(phase string, got grove.Answer) {
	panic(fmt.Sprintf("grove/persistent: inconsistent locator: %s phase received %v", phase, got))
}

// Len reports the number of elements. Non-mutating.
func (t *Tree[V, S, A]) Len() int { return grove.Size[V, S, A, alg](t.root) }

// Summary returns the summary of the whole sequence. Non-mutating: it reads
// the cached summary and applies any still-pending action on top, without
// pushing that action down into children (see grove.EffectiveSummary).
func (t *Tree[V, S, A]) Summary() S { return grove.EffectiveSummary[V, S, A, alg](t.data, t.root) }

// SegmentSummary returns the summary of the maximal run accepted by loc.
// Non-mutating: built on grove.SegmentSummaryImm, the read-only traversal
// threading inherited pending actions down as a parameter instead of
// pushing them into the tree, exactly so that a shared node is never
// silently written through from a read.
func (t *Tree[V, S, A]) SegmentSummary(loc grove.Locator[V, S]) S {
	return grove.SegmentSummaryImm[V, S, A, alg](t.data, t.root, loc)
}

// effSummaryImm is grove's own unexported effSummaryImm, reimplemented
// locally: EffectiveSummary generalised with an action inherited from
// ancestors that has not been, and for a shared node never will be, pushed
// down.
func effSummaryImm[V any, S any, A comparable](d grove.Data[V, S, A], n *node[V, S, A], inherited A) S {
	if n == nil {
		return d.EmptySummary()
	}
	return d.Act(d.Compose(inherited, n.Pending), n.Summary)
}

// valuesImm drains the subtree rooted at n into out, in order, without
// mutating a single node -- the persistent counterpart to grove.IntoSlice,
// which calls Access and is therefore unsafe to run against a tree that may
// be shared.
func valuesImm[V any, S any, A comparable](d grove.Data[V, S, A], n *node[V, S, A], inherited A, out *[]V) {
	if n == nil {
		return
	}
	eff := d.Compose(inherited, n.Pending)
	lc, rc := n.Left, n.Right
	if reversesAction(d, eff) {
		lc, rc = rc, lc
	}
	valuesImm(d, lc, eff, out)
	*out = append(*out, d.ActValue(eff, n.Value))
	valuesImm(d, rc, eff, out)
}

// Values drains the tree in order. Non-mutating.
func (t *Tree[V, S, A]) Values() []V {
	out := make([]V, 0, t.Len())
	valuesImm(t.data, t.root, t.data.EmptyAction(), &out)
	return out
}

// searchImm is the persistent counterpart of a Walker-driven Navigate: it
// descends by loc's GoLeft/GoRight/Accept answers without ever calling
// Access, carrying the action inherited from ancestors along as a parameter
// instead, and without recursion -- the action is threaded through the loop
// variable rather than a call frame.
func searchImm[V any, S any, A comparable](d grove.Data[V, S, A], n *node[V, S, A], inherited A, leftCtx, rightCtx S, loc grove.Locator[V, S]) (V, bool) {
	for n != nil {
		eff := d.Compose(inherited, n.Pending)
		lc, rc := n.Left, n.Right
		if reversesAction(d, eff) {
			lc, rc = rc, lc
		}
		value := d.ActValue(eff, n.Value)
		L := d.Combine(leftCtx, effSummaryImm(d, lc, eff))
		R := d.Combine(effSummaryImm(d, rc, eff), rightCtx)
		switch loc(L, value, R) {
		case grove.GoLeft:
			rightCtx = d.Combine(d.Combine(d.ToSummary(value), effSummaryImm(d, rc, eff)), rightCtx)
			n, inherited = lc, eff
		case grove.GoRight:
			leftCtx = d.Combine(leftCtx, d.Combine(effSummaryImm(d, lc, eff), d.ToSummary(value)))
			n, inherited = rc, eff
		default:
			return value, true
		}
	}
	var zero V
	return zero, false
}

// Search returns the value loc Accepts, if any. Non-mutating.
func (t *Tree[V, S, A]) Search(loc grove.Locator[V, S]) (V, bool) {
	return searchImm(t.data, t.root, t.data.EmptyAction(), t.data.EmptySummary(), t.data.EmptySummary(), loc)
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

// actFrame is insFrame's counterpart for actSegmentCOW's descent.
type actFrame[V any, S any, A comparable] struct {
	n       *node[V, S, A]
	wasLeft bool
}

// actSegmentCOW is grove.ActSegment transliterated onto the copy-on-write
// discipline: every Access becomes a cowAccess, and a node is written back
// into slot even though -- for a tree currently exclusively owned along
// this whole path -- its identity would not actually have changed; the
// uniformity matters once sharing is involved, since cowAccess may well
// have swapped in a fresh clone. Walked iteratively, the same way insertAt
// and deleteAt are: a first loop descends to the Accept node, then a second
// loop unwinds the recorded path, reattaching and rebuilding each ancestor.
func actSegmentCOW[V any, S any, A comparable](d grove.Data[V, S, A], slot **node[V, S, A], leftCtx, rightCtx S, loc grove.Locator[V, S], a A) {
	n := *slot
	var path []actFrame[V, S, A]
	for n != nil {
		n = cowAccess(d, n)
		L := d.Combine(leftCtx, grove.EffectiveSummary(d, n.Left))
		R := d.Combine(grove.EffectiveSummary(d, n.Right), rightCtx)
		switch loc(L, n.Value, R) {
		case grove.GoLeft:
			path = append(path, actFrame[V, S, A]{n: n, wasLeft: true})
			rightCtx = d.Combine(d.Combine(d.ToSummary(n.Value), grove.EffectiveSummary(d, n.Right)), rightCtx)
			n = n.Left
		case grove.GoRight:
			path = append(path, actFrame[V, S, A]{n: n, wasLeft: false})
			leftCtx = d.Combine(leftCtx, d.Combine(grove.EffectiveSummary(d, n.Left), d.ToSummary(n.Value)))
			n = n.Right
		default: // Accept
			tracer().Debugf("actSegmentCOW: accepted node at depth=%d", len(path))
			actSuffixCOW(d, &n.Left, leftCtx, d.Combine(d.ToSummary(n.Value), d.Combine(grove.EffectiveSummary(d, n.Right), rightCtx)), loc, a)
			actPrefixCOW(d, &n.Right, d.Combine(d.Combine(leftCtx, grove.EffectiveSummary(d, n.Left)), d.ToSummary(n.Value)), rightCtx, loc, a)
			grove.ActNode(d, n, a)
			cur := n
			for i := len(path) - 1; i >= 0; i-- {
				f := path[i]
				if f.wasLeft {
					f.n.Left = cur
				} else {
					f.n.Right = cur
				}
				grove.Rebuild(d, f.n)
				cur = f.n
			}
			*slot = cur
			return
		}
	}
	var cur *node[V, S, A]
	for i := len(path) - 1; i >= 0; i-- {
		f := path[i]
		if f.wasLeft {
			f.n.Left = cur
		} else {
			f.n.Right = cur
		}
		grove.Rebuild(d, f.n)
		cur = f.n
	}
	*slot = cur
}

// suffixFrame remembers, for one node along actSuffixCOW's descent, whether
// it was an Accept node (whose Value itself gets ActNode on the unwind) or a
// GoRight node (which only needs a plain Rebuild).
type suffixFrame[V any, S any, A comparable] struct {
	n        *node[V, S, A]
	accepted bool
}

func actSuffixCOW[V any, S any, A comparable](d grove.Data[V, S, A], slot **node[V, S, A], leftCtx, rightCtx S, loc grove.Locator[V, S], a A) {
	n := *slot
	var path []suffixFrame[V, S, A]
	for n != nil {
		n = cowAccess(d, n)
		L := d.Combine(leftCtx, grove.EffectiveSummary(d, n.Left))
		R := d.Combine(grove.EffectiveSummary(d, n.Right), rightCtx)
		switch loc(L, n.Value, R) {
		case grove.Accept:
			newRightCtx := d.Combine(d.ToSummary(n.Value), d.Combine(grove.EffectiveSummary(d, n.Right), rightCtx))
			n.Right = cow(n.Right) // about to write into Right.Pending directly, below
			grove.ActSubtree(d, n.Right, a)
			path = append(path, suffixFrame[V, S, A]{n: n, accepted: true})
			rightCtx = newRightCtx
			n = n.Left
		case grove.GoRight:
			path = append(path, suffixFrame[V, S, A]{n: n, accepted: false})
			leftCtx = d.Combine(leftCtx, d.Combine(grove.EffectiveSummary(d, n.Left), d.ToSummary(n.Value)))
			n = n.Right
		default:
			badLocator("suffix", loc(L, n.Value, R))
		}
	}
	var cur *node[V, S, A]
	for i := len(path) - 1; i >= 0; i-- {
		f := path[i]
		if f.accepted {
			f.n.Left = cur
			grove.ActNode(d, f.n, a)
		} else {
			f.n.Right = cur
			grove.Rebuild(d, f.n)
		}
		cur = f.n
	}
	*slot = cur
}

// prefixFrame is suffixFrame's mirror for actPrefixCOW's descent.
type prefixFrame[V any, S any, A comparable] struct {
	n        *node[V, S, A]
	accepted bool
}

func actPrefixCOW[V any, S any, A comparable](d grove.Data[V, S, A], slot **node[V, S, A], leftCtx, rightCtx S, loc grove.Locator[V, S], a A) {
	n := *slot
	var path []prefixFrame[V, S, A]
	for n != nil {
		n = cowAccess(d, n)
		L := d.Combine(leftCtx, grove.EffectiveSummary(d, n.Left))
		R := d.Combine(grove.EffectiveSummary(d, n.Right), rightCtx)
		switch loc(L, n.Value, R) {
		case grove.Accept:
			newLeftCtx := d.Combine(d.Combine(leftCtx, grove.EffectiveSummary(d, n.Left)), d.ToSummary(n.Value))
			n.Left = cow(n.Left) // about to write into Left.Pending directly, below
			grove.ActSubtree(d, n.Left, a)
			path = append(path, prefixFrame[V, S, A]{n: n, accepted: true})
			leftCtx = newLeftCtx
			n = n.Right
		case grove.GoLeft:
			path = append(path, prefixFrame[V, S, A]{n: n, accepted: false})
			rightCtx = d.Combine(d.Combine(d.ToSummary(n.Value), grove.EffectiveSummary(d, n.Right)), rightCtx)
			n = n.Left
		default:
			badLocator("prefix", loc(L, n.Value, R))
		}
	}
	var cur *node[V, S, A]
	for i := len(path) - 1; i >= 0; i-- {
		f := path[i]
		if f.accepted {
			f.n.Right = cur
			grove.ActNode(d, f.n, a)
		} else {
			f.n.Left = cur
			grove.Rebuild(d, f.n)
		}
		cur = f.n
	}
	*slot = cur
}

// Act applies a to the maximal run accepted by loc, cloning exactly the
// nodes the run's two boundary spines pass through.
func (t *Tree[V, S, A]) Act(loc grove.Locator[V, S], a A) {
	actSegmentCOW(t.data, &t.root, t.data.EmptySummary(), t.data.EmptySummary(), loc, a)
}

// rotateRightOwned/rotateLeftOwned are plain pointer-surgery rotations for
// insertAt's unwind, assuming both n and the child being promoted are
// already exclusively owned (true of every node insertAt touches, since it
// always descends through cowAccess and only ever assigns already-owned
// children back).
func rotateRightOwned[V any, S any, A comparable](d grove.Data[V, S, A], n *node[V, S, A]) *node[V, S, A] {
	newTop := n.Left
	n.Left = newTop.Right
	newTop.Right = n
	grove.Rebuild(d, n)
	grove.Rebuild(d, newTop)
	return newTop
}

func rotateLeftOwned[V any, S any, A comparable](d grove.Data[V, S, A], n *node[V, S, A]) *node[V, S, A] {
	newTop := n.Right
	n.Right = newTop.Left
	newTop.Left = n
	grove.Rebuild(d, n)
	grove.Rebuild(d, newTop)
	return newTop
}

// insFrame remembers one ancestor consumed while descending in insertAt, so
// the reattach-and-maybe-rotate work insertAt used to do on the way back out
// of the recursion can instead be replayed by a second, explicit loop over
// the path just descended.
type insFrame[V any, S any, A comparable] struct {
	n       *node[V, S, A]
	wasLeft bool
}

// insertAt places v at the gap loc identifies within the subtree rooted at
// n, returning the (possibly newly cloned) subtree root. Unlike
// grove/treap's Walker-driven Insert, which rotates the new leaf up after
// the fact, this threads the new leaf's freshly drawn priority down through
// the descent and rotates it into place on the way back up -- the classic
// insert shape for a treap, here walked iteratively: a first loop descends
// and records each ancestor's side in path, then a second loop unwinds path,
// reattaching and rotating exactly as the recursive form did on its way out
// of the call stack. Composes directly with copy-on-write since every node
// touched along path is, by construction, exclusively owned.
func insertAt[V any, S any, A comparable](d grove.Data[V, S, A], rnd *rand.Rand, n *node[V, S, A], loc grove.Locator[V, S], leftCtx, rightCtx S, v V) (*node[V, S, A], error) {
	var path []insFrame[V, S, A]
	for n != nil {
		n = cowAccess(d, n)
		L := d.Combine(leftCtx, grove.EffectiveSummary(d, n.Left))
		R := d.Combine(grove.EffectiveSummary(d, n.Right), rightCtx)
		switch loc(L, n.Value, R) {
		case grove.GoLeft:
			path = append(path, insFrame[V, S, A]{n: n, wasLeft: true})
			rightCtx = d.Combine(d.Combine(d.ToSummary(n.Value), grove.EffectiveSummary(d, n.Right)), rightCtx)
			n = n.Left
		case grove.GoRight:
			path = append(path, insFrame[V, S, A]{n: n, wasLeft: false})
			leftCtx = d.Combine(leftCtx, d.Combine(grove.EffectiveSummary(d, n.Left), d.ToSummary(n.Value)))
			n = n.Right
		default: // Accept: loc was not a gap-locator
			if len(path) == 0 {
				return n, grove.ErrPositionOccupied
			}
			return path[0].n, grove.ErrPositionOccupied
		}
	}
	cur := &node[V, S, A]{Value: v, Summary: d.ToSummary(v), Pending: d.EmptyAction(), Alg: alg{priority: rnd.Uint64()}}
	tracer().Debugf("insertAt: drew priority=%d at depth=%d", cur.Alg.priority, len(path))
	for i := len(path) - 1; i >= 0; i-- {
		f := path[i]
		p := f.n
		if f.wasLeft {
			p.Left = cur
			grove.Rebuild(d, p)
			if p.Left.Alg.priority > p.Alg.priority {
				tracer().Debugf("insertAt: rotating right past priority=%d", p.Alg.priority)
				p = rotateRightOwned(d, p)
			}
		} else {
			p.Right = cur
			grove.Rebuild(d, p)
			if p.Right.Alg.priority > p.Alg.priority {
				tracer().Debugf("insertAt: rotating left past priority=%d", p.Alg.priority)
				p = rotateLeftOwned(d, p)
			}
		}
		cur = p
	}
	return cur, nil
}

// Insert places v at the gap identified by loc.
func (t *Tree[V, S, A]) Insert(loc grove.Locator[V, S], v V) error {
	newRoot, err := insertAt(t.data, t.rnd, t.root, loc, t.data.EmptySummary(), t.data.EmptySummary(), v)
	if err != nil {
		return err
	}
	t.root = newRoot
	return nil
}

// mergeCOW is grove/treap's merge, translated onto the copy-on-write
// discipline: the classic treap union by priority, cloning whichever nodes
// the merge spine actually passes through and leaving everything else -- on
// both sides -- structurally shared. Walked iteratively: a first loop
// descends the spine comparing roots and recording, in order, which side won
// each comparison, then a second loop rebuilds that same spine back to
// front, mirroring the order the recursive form's Rebuild calls would have
// unwound in. Concat, like grove/treap.Concat, consumes both input trees:
// other must not be used afterwards, so there is no need to protect it from
// in-place mutation beyond what cow already guarantees for nodes some other,
// still-live clone might reach.
func mergeCOW[V any, S any, A comparable](d grove.Data[V, S, A], left, right *node[V, S, A]) *node[V, S, A] {
	if left == nil {
		return right
	}
	if right == nil {
		return left
	}
	var top *node[V, S, A]
	slot := &top
	var spine []*node[V, S, A]
	for left != nil && right != nil {
		left = cowAccess(d, left)
		right = cowAccess(d, right)
		if left.Alg.priority > right.Alg.priority {
			tracer().Debugf("mergeCOW: left root priority=%d stays on top over right priority=%d", left.Alg.priority, right.Alg.priority)
			*slot = left
			spine = append(spine, left)
			slot = &left.Right
			left = left.Right
		} else {
			tracer().Debugf("mergeCOW: right root priority=%d stays on top over left priority=%d", right.Alg.priority, left.Alg.priority)
			*slot = right
			spine = append(spine, right)
			slot = &right.Left
			right = right.Left
		}
	}
	if left != nil {
		*slot = left
	} else {
		*slot = right
	}
	for i := len(spine) - 1; i >= 0; i-- {
		grove.Rebuild(d, spine[i])
	}
	return top
}

// Concat appends other's whole sequence after t's. other must not be used
// afterwards (mirrors grove/treap.Concat's contract).
func (t *Tree[V, S, A]) Concat(other *Tree[V, S, A]) *Tree[V, S, A] {
	t.root = mergeCOW(t.data, t.root, other.root)
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

// delFrame is insFrame's counterpart for deleteAt's descent.
type delFrame[V any, S any, A comparable] struct {
	n       *node[V, S, A]
	wasLeft bool
}

// deleteAt removes the node loc Accepts from the subtree rooted at n,
// returning the (possibly newly cloned) subtree root and the removed value.
// Walked iteratively like insertAt: a first loop descends and records path,
// then, once the accepted node's children have been merged, a second loop
// unwinds path reattaching the merged result and rebuilding each ancestor in
// turn.
func deleteAt[V any, S any, A comparable](d grove.Data[V, S, A], n *node[V, S, A], loc grove.Locator[V, S], leftCtx, rightCtx S) (*node[V, S, A], V, error) {
	var path []delFrame[V, S, A]
	for n != nil {
		n = cowAccess(d, n)
		L := d.Combine(leftCtx, grove.EffectiveSummary(d, n.Left))
		R := d.Combine(grove.EffectiveSummary(d, n.Right), rightCtx)
		switch loc(L, n.Value, R) {
		case grove.GoLeft:
			path = append(path, delFrame[V, S, A]{n: n, wasLeft: true})
			rightCtx = d.Combine(d.Combine(d.ToSummary(n.Value), grove.EffectiveSummary(d, n.Right)), rightCtx)
			n = n.Left
		case grove.GoRight:
			path = append(path, delFrame[V, S, A]{n: n, wasLeft: false})
			leftCtx = d.Combine(leftCtx, d.Combine(grove.EffectiveSummary(d, n.Left), d.ToSummary(n.Value)))
			n = n.Right
		default: // Accept
			v := n.Value
			tracer().Debugf("deleteAt: merging children of accepted node at depth=%d", len(path))
			cur := mergeCOW(d, n.Left, n.Right)
			for i := len(path) - 1; i >= 0; i-- {
				f := path[i]
				if f.wasLeft {
					f.n.Left = cur
				} else {
					f.n.Right = cur
				}
				grove.Rebuild(d, f.n)
				cur = f.n
			}
			return cur, v, nil
		}
	}
	var zero V
	if len(path) == 0 {
		return nil, zero, grove.ErrPositionEmpty
	}
	return path[0].n, zero, grove.ErrPositionEmpty
}

// Delete removes the node loc Accepts and returns its value.
func (t *Tree[V, S, A]) Delete(loc grove.Locator[V, S]) (V, error) {
	newRoot, v, err := deleteAt(t.data, t.root, loc, t.data.EmptySummary(), t.data.EmptySummary())
	if err != nil {
		return v, err
	}
	t.root = newRoot
	return v, nil
}

// splitFrame is insFrame's counterpart for splitAt's descent.
type splitFrame[V any, S any, A comparable] struct {
	n       *node[V, S, A]
	wasLeft bool
}

// splitAt is the classic treap split by position: unlike grove/treap's
// SplitRight (which walks up from an empty slot reached via a Walker and
// reinserts each ancestor under a freshly drawn priority via concatMiddle),
// this descends loc directly and reattaches each node's own original
// priority unchanged -- a Walker's GoUp-and-reconcat shape is fundamentally
// in-place (it mutates parent pointers as it ascends), so a direct split,
// which only ever returns newly-owned nodes, composes far more naturally
// with copy-on-write. Walked iteratively: a first loop descends and records
// path, then a second loop unwinds it, growing the lt/gt accumulators the
// same way the recursive form's (ll, lr)/(rl, rr) pairs did on the way back
// out of the call stack.
func splitAt[V any, S any, A comparable](d grove.Data[V, S, A], n *node[V, S, A], loc grove.Locator[V, S], leftCtx, rightCtx S) (*node[V, S, A], *node[V, S, A]) {
	var path []splitFrame[V, S, A]
	for n != nil {
		n = cowAccess(d, n)
		L := d.Combine(leftCtx, grove.EffectiveSummary(d, n.Left))
		R := d.Combine(grove.EffectiveSummary(d, n.Right), rightCtx)
		switch loc(L, n.Value, R) {
		case grove.GoLeft:
			tracer().Debugf("splitAt: descending left at depth=%d", len(path))
			path = append(path, splitFrame[V, S, A]{n: n, wasLeft: true})
			rightCtx = d.Combine(d.Combine(d.ToSummary(n.Value), grove.EffectiveSummary(d, n.Right)), rightCtx)
			n = n.Left
		case grove.GoRight:
			tracer().Debugf("splitAt: descending right at depth=%d", len(path))
			path = append(path, splitFrame[V, S, A]{n: n, wasLeft: false})
			leftCtx = d.Combine(leftCtx, d.Combine(grove.EffectiveSummary(d, n.Left), d.ToSummary(n.Value)))
			n = n.Right
		default: // Accept: loc was not a gap-locator; callers check for this up front
			badLocator("split", grove.Accept)
			return nil, nil
		}
	}
	var ltAcc, gtAcc *node[V, S, A]
	for i := len(path) - 1; i >= 0; i-- {
		f := path[i]
		if f.wasLeft {
			f.n.Left = gtAcc
			grove.Rebuild(d, f.n)
			gtAcc = f.n
		} else {
			f.n.Right = ltAcc
			grove.Rebuild(d, f.n)
			ltAcc = f.n
		}
	}
	return ltAcc, gtAcc
}

// SplitRight cuts the sequence at the gap identified by loc, keeps the left
// part in t, and returns the right part as a new Tree.
func (t *Tree[V, S, A]) SplitRight(loc grove.Locator[V, S]) (*Tree[V, S, A], error) {
	if _, ok := t.Search(loc); ok {
		return nil, grove.ErrPositionOccupied
	}
	l, r := splitAt(t.data, t.root, loc, t.data.EmptySummary(), t.data.EmptySummary())
	t.root = l
	return &Tree[V, S, A]{data: t.data, root: r, rnd: rand.New(rand.NewSource(t.rnd.Int63()))}, nil
}

// SplitLeft cuts the sequence at the gap identified by loc, keeps the right
// part in t, and returns the left part as a new Tree.
func (t *Tree[V, S, A]) SplitLeft(loc grove.Locator[V, S]) (*Tree[V, S, A], error) {
	right, err := t.SplitRight(loc)
	if err != nil {
		return nil, err
	}
	left := &Tree[V, S, A]{data: t.data, root: t.root, rnd: rand.New(rand.NewSource(t.rnd.Int63()))}
	t.root = right.root
	return left, nil
}
