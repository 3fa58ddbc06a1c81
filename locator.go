package grove

/*
Locators are pure predicates (component C2). At a node whose accumulated
left-summary and right-summary (with respect to the whole tree, not just the
node's immediate children -- see Walker's path frames in walker.go) are
`left` and `right`, and whose value (with any pending action already applied)
is `v`, a Locator replies whether the segment it represents lies to the left,
to the right, or straddles/contains this node.

The library never verifies the monotonicity contract described in spec
§4.2: a locator must behave so that repeated queries at the same position
yield the same answer, and answers at different positions must be
consistent with some contiguous interval. Violating it surfaces as
"inconsistent locator" panics out of the segment algorithms (errors.go).
*/

// Answer is the tripartite reply of a Locator.
type Answer int

const (
	GoLeft Answer = iota
	GoRight
	Accept
)

func (a Answer) String() string {
	switch a {
	case GoLeft:
		return "GoLeft"
	case GoRight:
		return "GoRight"
	case Accept:
		return "Accept"
	default:
		return "Answer(?)"
	}
}

// Locator is a stateless, cheaply-copyable predicate identifying a
// contiguous segment of the sequence (component C2).
type Locator[V any, S any] func(left S, v V, right S) Answer

// Full is a Locator matching the entire sequence.
func Full[V any, S any]() Locator[V, S] {
	return func(S, V, S) Answer { return Accept }
}

// AtIndex is a Locator matching the single element at the given index.
// Requires the Sized capability on the tree's Summary type.
func AtIndex[V any, S any](sized Sized[S], index int) Locator[V, S] {
	return func(left S, _ V, _ S) Answer {
		pos := sized.Size(left)
		switch {
		case index < pos:
			return GoLeft
		case index == pos:
			return Accept
		default:
			return GoRight
		}
	}
}

// IndexRange is a Locator matching the half-open index range [lo, hi).
// Requires the Sized capability on the tree's Summary type.
func IndexRange[V any, S any](sized Sized[S], lo, hi int) Locator[V, S] {
	assertThat(lo <= hi, "IndexRange: lo (%d) > hi (%d)", lo, hi)
	return func(left S, _ V, _ S) Answer {
		pos := sized.Size(left)
		switch {
		case pos < lo:
			return GoRight
		case pos >= hi:
			return GoLeft
		default:
			return Accept
		}
	}
}

// AtGap is a gap-locator (never Accepts) identifying the empty position
// immediately before index `index` in the current sequence -- i.e. the
// position a newly inserted element at `index` would occupy. It is the
// locator used to position a Walker for Insert, and for SplitLeft/SplitRight
// at an index boundary. Requires the Sized capability.
func AtGap[V any, S any](sized Sized[S], index int) Locator[V, S] {
	return func(left S, _ V, _ S) Answer {
		if sized.Size(left) < index {
			return GoRight
		}
		return GoLeft
	}
}

// LeftEdgeOf returns a gap-locator (never Accepts) at the first index
// accepted by loc -- the cut point that splits the sequence into
// "everything before loc's segment" and "loc's segment followed by the
// rest".
func LeftEdgeOf[V any, S any](loc Locator[V, S]) Locator[V, S] {
	return func(left S, v V, right S) Answer {
		if loc(left, v, right) == GoRight {
			return GoRight
		}
		return GoLeft
	}
}

// RightEdgeOf returns a gap-locator (never Accepts) just past the last
// index accepted by loc.
func RightEdgeOf[V any, S any](loc Locator[V, S]) Locator[V, S] {
	return func(left S, v V, right S) Answer {
		if loc(left, v, right) == GoLeft {
			return GoLeft
		}
		return GoRight
	}
}

// LeftOf returns a Locator matching everything strictly before loc's
// segment.
func LeftOf[V any, S any](loc Locator[V, S]) Locator[V, S] {
	return func(left S, v V, right S) Answer {
		if loc(left, v, right) == GoRight {
			return Accept
		}
		return GoLeft
	}
}

// RightOf returns a Locator matching everything strictly after loc's
// segment.
func RightOf[V any, S any](loc Locator[V, S]) Locator[V, S] {
	return func(left S, v V, right S) Answer {
		if loc(left, v, right) == GoLeft {
			return Accept
		}
		return GoRight
	}
}

// UnionLocator returns a Locator matching the union of a's and b's
// segments. a and b must describe segments whose union is itself
// contiguous (e.g. adjacent or overlapping); the library does not verify
// this.
func UnionLocator[V any, S any](a, b Locator[V, S]) Locator[V, S] {
	return func(left S, v V, right S) Answer {
		ra, rb := a(left, v, right), b(left, v, right)
		if ra == Accept || rb == Accept {
			return Accept
		}
		if ra == GoLeft && rb == GoLeft {
			return GoLeft
		}
		if ra == GoRight && rb == GoRight {
			return GoRight
		}
		// node lies strictly between two disjoint, non-adjacent segments:
		// it must be the union's junction for the union to remain
		// contiguous.
		return Accept
	}
}

// IntersectLocator returns a Locator matching the intersection of a's and
// b's segments. Supplements the combinators named in spec §4.2/§6
// (grounded on original_source/src/locators.rs, which offers a richer
// combinator set than spec.md names explicitly -- see SPEC_FULL.md §5.3).
func IntersectLocator[V any, S any](a, b Locator[V, S]) Locator[V, S] {
	return func(left S, v V, right S) Answer {
		ra, rb := a(left, v, right), b(left, v, right)
		if ra == Accept && rb == Accept {
			return Accept
		}
		if ra == GoLeft || rb == GoLeft {
			return GoLeft
		}
		return GoRight
	}
}

// AtKey is a Locator matching the single element whose key equals target.
// Requires the Keyed capability on the tree's Value type, and a comparator
// consistent with the tree's sort order.
func AtKey[V any, S any, K any](keyed Keyed[V, K], compare func(a, b K) int, target K) Locator[V, S] {
	return func(_ S, v V, _ S) Answer {
		switch c := compare(target, keyed.Key(v)); {
		case c < 0:
			return GoLeft
		case c > 0:
			return GoRight
		default:
			return Accept
		}
	}
}

// KeyRange is a Locator matching every element whose key lies in [lo, hi).
func KeyRange[V any, S any, K any](keyed Keyed[V, K], compare func(a, b K) int, lo, hi K) Locator[V, S] {
	return func(_ S, v V, _ S) Answer {
		k := keyed.Key(v)
		if compare(k, lo) < 0 {
			return GoRight
		}
		if compare(k, hi) >= 0 {
			return GoLeft
		}
		return Accept
	}
}
