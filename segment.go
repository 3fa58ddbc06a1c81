package grove

/*
Segment algorithms (component C5) answer "what is the summary of / apply
this action to the maximal contiguous run of elements accepted by this
Locator". A node accepted by the Locator may still have children that are
only partially covered -- the run's boundary can pass straight through a
subtree -- so after finding an Accept node the algorithms fan out into a
pair of tail-recursive helpers: acceptSuffix walks down a node's left
child looking for the point where acceptance begins (the *suffix* of that
subtree that belongs to the run), and acceptPrefix is its mirror image on
the right. Both panic via inconsistentLocator if the Locator's replies
ever imply the accepted run is not contiguous (spec §4.4/§7).

Two traversal styles are provided, matching spec §5's clone-based vs
in-place distinction:

  - SegmentSummary/ActSegment mutate nodes in place as they go (calling
    Access to push pending actions down), which is the cheap path for the
    in-place balancers (splay, treap, AVL) that own their nodes
    exclusively during the call.
  - SegmentSummaryImm is a purely-reading variant that never calls Access,
    threading an inherited pending action down as an extra parameter
    instead. The persistent balancer uses this for reads, since pushing an
    action down into a shared node would silently mutate other lineages
    that still reference it.

ActSegment has no "Imm" counterpart here: grove/persistent's copy-on-write
write path (grounded on persistent/btree's slot/path idiom) has its own
segment action helpers, which clone each shared node as they descend
instead of calling this in-place ActSegment.
*/

// SegmentSummary returns the combined summary of the maximal contiguous run
// of values accepted by loc, within the tree rooted at root.
func SegmentSummary[V any, S any, A comparable, Alg any](d Data[V, S, A], root *Node[V, S, A, Alg], loc Locator[V, S]) S {
	n := root
	leftCtx, rightCtx := d.EmptySummary(), d.EmptySummary()
	for n != nil {
		Access(d, n)
		L := d.Combine(leftCtx, EffectiveSummary(d, n.Left))
		R := d.Combine(EffectiveSummary(d, n.Right), rightCtx)
		switch loc(L, n.Value, R) {
		case GoLeft:
			rightCtx = d.Combine(d.Combine(d.ToSummary(n.Value), EffectiveSummary(d, n.Right)), rightCtx)
			n = n.Left
		case GoRight:
			leftCtx = d.Combine(leftCtx, d.Combine(EffectiveSummary(d, n.Left), d.ToSummary(n.Value)))
			n = n.Right
		default: // Accept
			lp := acceptSuffix(d, n.Left, leftCtx, d.Combine(d.ToSummary(n.Value), d.Combine(EffectiveSummary(d, n.Right), rightCtx)), loc)
			rp := acceptPrefix(d, n.Right, d.Combine(d.Combine(leftCtx, EffectiveSummary(d, n.Left)), d.ToSummary(n.Value)), rightCtx, loc)
			return d.Combine(d.Combine(lp, d.ToSummary(n.Value)), rp)
		}
	}
	return d.EmptySummary()
}

// acceptSuffix finds the maximal right-suffix of the subtree rooted at n
// that is accepted by loc (n is known, from the caller, to sit immediately
// left of already-accepted content).
func acceptSuffix[V any, S any, A comparable, Alg any](d Data[V, S, A], n *Node[V, S, A, Alg], leftCtx, rightCtx S, loc Locator[V, S]) S {
	var pieces []S // encounter order: pieces[0] is nearest the already-accepted content (rightmost)
	for n != nil {
		Access(d, n)
		L := d.Combine(leftCtx, EffectiveSummary(d, n.Left))
		R := d.Combine(EffectiveSummary(d, n.Right), rightCtx)
		switch loc(L, n.Value, R) {
		case Accept:
			pieces = append(pieces, d.Combine(d.ToSummary(n.Value), EffectiveSummary(d, n.Right)))
			rightCtx = d.Combine(d.ToSummary(n.Value), d.Combine(EffectiveSummary(d, n.Right), rightCtx))
			n = n.Left
		case GoRight:
			leftCtx = d.Combine(leftCtx, d.Combine(EffectiveSummary(d, n.Left), d.ToSummary(n.Value)))
			n = n.Right
		default:
			inconsistentLocator("suffix", loc(L, n.Value, R))
		}
	}
	result := d.EmptySummary()
	for i := len(pieces) - 1; i >= 0; i-- {
		result = d.Combine(result, pieces[i])
	}
	return result
}

// acceptPrefix is the mirror of acceptSuffix: it finds the maximal
// left-prefix of n's subtree accepted by loc, where n sits immediately
// right of already-accepted content.
func acceptPrefix[V any, S any, A comparable, Alg any](d Data[V, S, A], n *Node[V, S, A, Alg], leftCtx, rightCtx S, loc Locator[V, S]) S {
	var pieces []S // encounter order: pieces[0] is nearest the already-accepted content (leftmost)
	for n != nil {
		Access(d, n)
		L := d.Combine(leftCtx, EffectiveSummary(d, n.Left))
		R := d.Combine(EffectiveSummary(d, n.Right), rightCtx)
		switch loc(L, n.Value, R) {
		case Accept:
			pieces = append(pieces, d.Combine(EffectiveSummary(d, n.Left), d.ToSummary(n.Value)))
			leftCtx = d.Combine(leftCtx, d.Combine(EffectiveSummary(d, n.Left), d.ToSummary(n.Value)))
			n = n.Right
		case GoLeft:
			rightCtx = d.Combine(d.Combine(d.ToSummary(n.Value), EffectiveSummary(d, n.Right)), rightCtx)
			n = n.Left
		default:
			inconsistentLocator("prefix", loc(L, n.Value, R))
		}
	}
	result := d.EmptySummary()
	for _, p := range pieces {
		result = d.Combine(result, p)
	}
	return result
}

// ActSegment applies action a to the maximal contiguous run of values
// accepted by loc, within the subtree pointed to by slot, in place. slot is
// written back even though, for the in-place substrate, the node occupying
// it never actually changes identity -- kept for uniformity with any future
// variant where it might.
//
// Preconditions: the caller owns the subtree at *slot exclusively. If a
// reverses (see Reversing), it is applied piece by piece: every child
// subtree found wholly inside the run is reversed in place at its own root
// (via ActSubtree), and every accepted node gets a through ActNode, but the
// pieces keep their order relative to one another, so the run as a whole
// is not reversed.
func ActSegment[V any, S any, A comparable, Alg any](d Data[V, S, A], slot **Node[V, S, A, Alg], leftCtx, rightCtx S, loc Locator[V, S], a A) {
	n := *slot
	if n == nil {
		return
	}
	Access(d, n)
	L := d.Combine(leftCtx, EffectiveSummary(d, n.Left))
	R := d.Combine(EffectiveSummary(d, n.Right), rightCtx)
	switch loc(L, n.Value, R) {
	case GoLeft:
		ActSegment(d, &n.Left, leftCtx, d.Combine(d.Combine(d.ToSummary(n.Value), EffectiveSummary(d, n.Right)), rightCtx), loc, a)
		Rebuild(d, n)
	case GoRight:
		ActSegment(d, &n.Right, d.Combine(leftCtx, d.Combine(EffectiveSummary(d, n.Left), d.ToSummary(n.Value))), rightCtx, loc, a)
		Rebuild(d, n)
	default: // Accept
		actSuffix(d, &n.Left, leftCtx, d.Combine(d.ToSummary(n.Value), d.Combine(EffectiveSummary(d, n.Right), rightCtx)), loc, a)
		actPrefix(d, &n.Right, d.Combine(d.Combine(leftCtx, EffectiveSummary(d, n.Left)), d.ToSummary(n.Value)), rightCtx, loc, a)
		ActNode(d, n, a) // applies a to n.Value and rebuilds against the now-settled children
	}
	*slot = n
}

func actSuffix[V any, S any, A comparable, Alg any](d Data[V, S, A], slot **Node[V, S, A, Alg], leftCtx, rightCtx S, loc Locator[V, S], a A) {
	n := *slot
	if n == nil {
		return
	}
	Access(d, n)
	L := d.Combine(leftCtx, EffectiveSummary(d, n.Left))
	R := d.Combine(EffectiveSummary(d, n.Right), rightCtx)
	switch loc(L, n.Value, R) {
	case Accept:
		newRightCtx := d.Combine(d.ToSummary(n.Value), d.Combine(EffectiveSummary(d, n.Right), rightCtx))
		ActSubtree(d, n.Right, a)
		actSuffix(d, &n.Left, leftCtx, newRightCtx, loc, a)
		ActNode(d, n, a)
	case GoRight:
		actSuffix(d, &n.Right, d.Combine(leftCtx, d.Combine(EffectiveSummary(d, n.Left), d.ToSummary(n.Value))), rightCtx, loc, a)
		Rebuild(d, n)
	default:
		inconsistentLocator("suffix", loc(L, n.Value, R))
	}
	*slot = n
}

func actPrefix[V any, S any, A comparable, Alg any](d Data[V, S, A], slot **Node[V, S, A, Alg], leftCtx, rightCtx S, loc Locator[V, S], a A) {
	n := *slot
	if n == nil {
		return
	}
	Access(d, n)
	L := d.Combine(leftCtx, EffectiveSummary(d, n.Left))
	R := d.Combine(EffectiveSummary(d, n.Right), rightCtx)
	switch loc(L, n.Value, R) {
	case Accept:
		newLeftCtx := d.Combine(d.Combine(leftCtx, EffectiveSummary(d, n.Left)), d.ToSummary(n.Value))
		ActSubtree(d, n.Left, a)
		actPrefix(d, &n.Right, newLeftCtx, rightCtx, loc, a)
		ActNode(d, n, a)
	case GoLeft:
		actPrefix(d, &n.Left, leftCtx, d.Combine(d.Combine(d.ToSummary(n.Value), EffectiveSummary(d, n.Right)), rightCtx), loc, a)
		Rebuild(d, n)
	default:
		inconsistentLocator("prefix", loc(L, n.Value, R))
	}
	*slot = n
}

// effSummaryImm is EffectiveSummary generalised with an action inherited
// from ancestors that has not been pushed down (and, for a shared
// persistent node, never will be).
func effSummaryImm[V any, S any, A comparable, Alg any](d Data[V, S, A], n *Node[V, S, A, Alg], inherited A) S {
	if n == nil {
		return d.EmptySummary()
	}
	return d.Act(d.Compose(inherited, n.Pending), n.Summary)
}

// SegmentSummaryImm is SegmentSummary for a tree that must not be mutated
// (grove/persistent's read path): it never calls Access, instead composing
// each node's Pending with an inherited action from its ancestors and
// consulting Reversing directly to decide which child is logically "left".
func SegmentSummaryImm[V any, S any, A comparable, Alg any](d Data[V, S, A], root *Node[V, S, A, Alg], loc Locator[V, S]) S {
	return segSummaryImm(d, root, d.EmptyAction(), d.EmptySummary(), d.EmptySummary(), loc)
}

func segSummaryImm[V any, S any, A comparable, Alg any](d Data[V, S, A], n *Node[V, S, A, Alg], inherited A, leftCtx, rightCtx S, loc Locator[V, S]) S {
	for n != nil {
		eff := d.Compose(inherited, n.Pending)
		lc, rc := n.Left, n.Right
		if reverses(d, eff) {
			lc, rc = rc, lc
		}
		value := d.ActValue(eff, n.Value)
		L := d.Combine(leftCtx, effSummaryImm(d, lc, eff))
		R := d.Combine(effSummaryImm(d, rc, eff), rightCtx)
		switch loc(L, value, R) {
		case GoLeft:
			rightCtx = d.Combine(d.Combine(d.ToSummary(value), effSummaryImm(d, rc, eff)), rightCtx)
			n, inherited = lc, eff
		case GoRight:
			leftCtx = d.Combine(leftCtx, d.Combine(effSummaryImm(d, lc, eff), d.ToSummary(value)))
			n, inherited = rc, eff
		default: // Accept
			lp := acceptSuffixImm(d, lc, eff, leftCtx, d.Combine(d.ToSummary(value), d.Combine(effSummaryImm(d, rc, eff), rightCtx)), loc)
			rp := acceptPrefixImm(d, rc, eff, d.Combine(d.Combine(leftCtx, effSummaryImm(d, lc, eff)), d.ToSummary(value)), rightCtx, loc)
			return d.Combine(d.Combine(lp, d.ToSummary(value)), rp)
		}
	}
	return d.EmptySummary()
}

func acceptSuffixImm[V any, S any, A comparable, Alg any](d Data[V, S, A], n *Node[V, S, A, Alg], inherited A, leftCtx, rightCtx S, loc Locator[V, S]) S {
	var pieces []S // encounter order: pieces[0] is nearest the already-accepted content (rightmost)
	for n != nil {
		eff := d.Compose(inherited, n.Pending)
		lc, rc := n.Left, n.Right
		if reverses(d, eff) {
			lc, rc = rc, lc
		}
		value := d.ActValue(eff, n.Value)
		L := d.Combine(leftCtx, effSummaryImm(d, lc, eff))
		R := d.Combine(effSummaryImm(d, rc, eff), rightCtx)
		switch loc(L, value, R) {
		case Accept:
			pieces = append(pieces, d.Combine(d.ToSummary(value), effSummaryImm(d, rc, eff)))
			rightCtx = d.Combine(d.ToSummary(value), d.Combine(effSummaryImm(d, rc, eff), rightCtx))
			n, inherited = lc, eff
		case GoRight:
			leftCtx = d.Combine(leftCtx, d.Combine(effSummaryImm(d, lc, eff), d.ToSummary(value)))
			n, inherited = rc, eff
		default:
			inconsistentLocator("suffix", loc(L, value, R))
		}
	}
	result := d.EmptySummary()
	for i := len(pieces) - 1; i >= 0; i-- {
		result = d.Combine(result, pieces[i])
	}
	return result
}

func acceptPrefixImm[V any, S any, A comparable, Alg any](d Data[V, S, A], n *Node[V, S, A, Alg], inherited A, leftCtx, rightCtx S, loc Locator[V, S]) S {
	var pieces []S // encounter order: pieces[0] is nearest the already-accepted content (leftmost)
	for n != nil {
		eff := d.Compose(inherited, n.Pending)
		lc, rc := n.Left, n.Right
		if reverses(d, eff) {
			lc, rc = rc, lc
		}
		value := d.ActValue(eff, n.Value)
		L := d.Combine(leftCtx, effSummaryImm(d, lc, eff))
		R := d.Combine(effSummaryImm(d, rc, eff), rightCtx)
		switch loc(L, value, R) {
		case Accept:
			pieces = append(pieces, d.Combine(effSummaryImm(d, lc, eff), d.ToSummary(value)))
			leftCtx = d.Combine(leftCtx, d.Combine(effSummaryImm(d, lc, eff), d.ToSummary(value)))
			n, inherited = rc, eff
		case GoLeft:
			rightCtx = d.Combine(d.Combine(d.ToSummary(value), effSummaryImm(d, rc, eff)), rightCtx)
			n, inherited = lc, eff
		default:
			inconsistentLocator("prefix", loc(L, value, R))
		}
	}
	result := d.EmptySummary()
	for _, p := range pieces {
		result = d.Combine(result, p)
	}
	return result
}
