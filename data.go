package grove

// Data is the sole user-supplied extension point of the library (component
// C1). It ties together three types:
//
//   - V, the opaque element (Value) type; a sequence of V is what a Tree
//     represents.
//   - S, a Summary: a monoid over values. EmptySummary is the monoid's empty
//     element E, Combine is the associative combiner ⊕ with
//     E ⊕ x = x ⊕ E = x. Summary need not be commutative; every algorithm in
//     this package preserves the left-to-right order of the sequence.
//   - A, an Action: a monoid (EmptyAction is I, Compose is the associative
//     composition ∘) equipped with a right action on summaries (Act) and on
//     values (ActValue).
//
// Implementations must satisfy, for all a, b of type A and x, y of type S:
//
//	Act(EmptyAction(), x) == x
//	Act(Compose(a, b), x) == Act(a, Act(b, x))        // composition is right-to-left: a∘b applies b first
//	Act(a, Combine(x, y)) == Combine(Act(a, x), Act(a, y))
//	ToSummary(ActValue(a, v)) == Act(a, ToSummary(v))
//
// Following the convention established by the "cords" family of generic
// rope libraries, a Data value is passed around explicitly (stored once in
// a Tree, threaded through Walker operations) rather than attached as a
// method set on V, S, or A themselves; this keeps V/S/A free to be plain
// data types with no knowledge of the tree that stores them.
//
// A is constrained comparable so that the substrate can cheaply recognise a
// pending action as the identity (no-op) without requiring every Data
// implementation to supply a separate "is this the identity" predicate.
type Data[V any, S any, A comparable] interface {
	ToSummary(v V) S
	Combine(left, right S) S
	EmptySummary() S
	Compose(outer, inner A) A
	EmptyAction() A
	Act(a A, s S) S
	ActValue(a A, v V) V
}

// Reversing is an optional capability on an Action: whether a given action
// reverses the subtree it is applied to. If present (checked with a type
// assertion against the Data value at the points that need it -- access,
// and the read-only segment traversal), the distributivity law is
// reinterpreted for reversing actions as:
//
//	Act(a, Combine(x, y)) == Combine(Act(a, y), Act(a, x))
type Reversing[A any] interface {
	Reverses(a A) bool
}

// Sized is an optional capability on a Summary, required by index-based
// Locators (AtIndex, IndexRange, AtGap). It is required at the site where an
// index Locator is constructed, not where Data is declared (spec §4.2, §9).
type Sized[S any] interface {
	Size(s S) int
}

// Keyed is an optional capability on a Value, required by key-based
// Locators. K is the ordered key type extracted from V.
type Keyed[V any, K any] interface {
	Key(v V) K
}

// asReversing recovers the optional Reversing capability from a Data value,
// if the concrete type implements it.
func asReversing[V any, S any, A comparable](d Data[V, S, A]) (Reversing[A], bool) {
	r, ok := any(d).(Reversing[A])
	return r, ok
}

// reverses reports whether action a reverses the subtree it acts upon. Data
// implementations that don't support reversal (i.e. don't implement
// Reversing) never reverse.
func reverses[V any, S any, A comparable](d Data[V, S, A], a A) bool {
	if r, ok := asReversing[V, S, A](d); ok {
		return r.Reverses(a)
	}
	return false
}
