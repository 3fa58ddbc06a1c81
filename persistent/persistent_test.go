package persistent

import (
	"testing"

	"github.com/npillmayer/grove"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test fixture mirroring the substrate's own fxData (package grove is not
// importable here since its fixtures are unexported) -- a sequence of ints
// summarised as (sum, min, max, size), acted on by a signed additive shift
// that can also carry a reversal flag.

type fxSummary struct {
	Sum, Min, Max, Size int
}

type fxAction struct {
	Add int
	Rev bool
}

type fxData struct{}

func (fxData) ToSummary(v int) fxSummary { return fxSummary{Sum: v, Min: v, Max: v, Size: 1} }

func (fxData) Combine(l, r fxSummary) fxSummary {
	if l.Size == 0 {
		return r
	}
	if r.Size == 0 {
		return l
	}
	min, max := l.Min, l.Max
	if r.Min < min {
		min = r.Min
	}
	if r.Max > max {
		max = r.Max
	}
	return fxSummary{Sum: l.Sum + r.Sum, Min: min, Max: max, Size: l.Size + r.Size}
}

func (fxData) EmptySummary() fxSummary { return fxSummary{} }

func (fxData) Compose(outer, inner fxAction) fxAction {
	return fxAction{Add: outer.Add + inner.Add, Rev: outer.Rev != inner.Rev}
}

func (fxData) EmptyAction() fxAction { return fxAction{} }

func (fxData) Act(a fxAction, s fxSummary) fxSummary {
	if s.Size == 0 {
		return s
	}
	return fxSummary{Sum: s.Sum + a.Add*s.Size, Min: s.Min + a.Add, Max: s.Max + a.Add, Size: s.Size}
}

func (fxData) ActValue(a fxAction, v int) int { return v + a.Add }

func (fxData) Reverses(a fxAction) bool { return a.Rev }

type fxSized struct{}

func (fxSized) Size(s fxSummary) int { return s.Size }

const fxSeed = 42

// assertHeapOrdered walks n and fails t if any node's priority is lower
// than a child's, the treap invariant persistent.go must keep through
// copy-on-write cloning just as faithfully as grove/treap keeps it in
// place.
func assertHeapOrdered[V any, S any, A comparable](t *testing.T, n *node[V, S, A]) {
	t.Helper()
	if n == nil {
		return
	}
	if n.Left != nil {
		assert.GreaterOrEqual(t, n.Alg.priority, n.Left.Alg.priority)
		assertHeapOrdered[V, S, A](t, n.Left)
	}
	if n.Right != nil {
		assert.GreaterOrEqual(t, n.Alg.priority, n.Right.Alg.priority)
		assertHeapOrdered[V, S, A](t, n.Right)
	}
}

func TestTreeInsertAndDelete(t *testing.T) {
	d := fxData{}
	tr := New[int, fxSummary, fxAction](d, fxSeed)
	sized := fxSized{}
	for i, v := range []int{30, 10, 20} {
		require.NoError(t, tr.Insert(grove.AtGap[int, fxSummary](sized, i), v))
	}
	assert.Equal(t, []int{30, 10, 20}, tr.Values())
	assertHeapOrdered(t, tr.root)

	v, err := tr.Delete(grove.AtIndex[int, fxSummary](sized, 1))
	require.NoError(t, err)
	assert.Equal(t, 10, v)
	assert.Equal(t, []int{30, 20}, tr.Values())
	assertHeapOrdered(t, tr.root)
}

func TestTreeActAndSummary(t *testing.T) {
	d := fxData{}
	tr := FromValues[int, fxSummary, fxAction](d, fxSeed, []int{1, 2, 3, 4})
	tr.Act(grove.Full[int, fxSummary](), fxAction{Add: 1})
	assert.Equal(t, []int{2, 3, 4, 5}, tr.Values())
	assert.Equal(t, 14, tr.Summary().Sum)
}

func TestTreeSearchMissReturnsFalse(t *testing.T) {
	d := fxData{}
	tr := New[int, fxSummary, fxAction](d, fxSeed)
	_, ok := tr.Search(grove.Full[int, fxSummary]())
	assert.False(t, ok)
}

func TestTreeSplitLeftKeepsRightPart(t *testing.T) {
	d := fxData{}
	tr := FromValues[int, fxSummary, fxAction](d, fxSeed, []int{1, 2, 3, 4, 5})
	sized := fxSized{}
	left, err := tr.SplitLeft(grove.AtGap[int, fxSummary](sized, 2))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, left.Values())
	assert.Equal(t, []int{3, 4, 5}, tr.Values())
	assertHeapOrdered(t, tr.root)
	assertHeapOrdered(t, left.root)
}

func TestTreeConcatMerge(t *testing.T) {
	d := fxData{}
	left := FromValues[int, fxSummary, fxAction](d, fxSeed, []int{1, 2, 3})
	right := FromValues[int, fxSummary, fxAction](d, fxSeed+1, []int{4, 5, 6})
	joined := left.Concat(right)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, joined.Values())
	assertHeapOrdered(t, joined.root)
}

// TestCloneIsIndependentSnapshot is the core persistence guarantee: once a
// Tree has been Cloned, mutating either copy must never change what the
// other observes.
func TestCloneIsIndependentSnapshot(t *testing.T) {
	d := fxData{}
	sized := fxSized{}
	original := FromValues[int, fxSummary, fxAction](d, fxSeed, []int{1, 2, 3, 4, 5})
	snapshot := original.Clone()

	require.NoError(t, original.Insert(grove.AtGap[int, fxSummary](sized, 5), 6))
	_, err := original.Delete(grove.AtIndex[int, fxSummary](sized, 0))
	require.NoError(t, err)
	original.Act(grove.Full[int, fxSummary](), fxAction{Add: 100})

	assert.Equal(t, []int{1, 2, 3, 4, 5}, snapshot.Values(),
		"mutating the clone's origin must not alter a snapshot taken before the mutations")
	assert.Equal(t, []int{102, 103, 104, 105, 106}, original.Values())
	assertHeapOrdered(t, original.root)
	assertHeapOrdered(t, snapshot.root)
}

// TestCloneSurvivesSourceMutationViaAct exercises the Access-pushes-into-
// children corruption risk directly: Act on the original forces a pending
// action down through nodes the snapshot still references, which must
// trigger copy-on-write instead of mutating those shared nodes' Pending
// fields in place.
func TestCloneSurvivesSourceMutationViaAct(t *testing.T) {
	d := fxData{}
	sized := fxSized{}
	original := FromValues[int, fxSummary, fxAction](d, fxSeed, []int{1, 2, 3, 4, 5, 6, 7})
	snapshot := original.Clone()

	// Act on a sub-range, then force Access down that range by reading
	// through Search (which itself never mutates, but the *next* mutating
	// op -- Insert below -- forces an Access along that very sub-range).
	original.Act(grove.IndexRange[int, fxSummary](sized, 1, 4), fxAction{Add: 10})
	require.NoError(t, original.Insert(grove.AtGap[int, fxSummary](sized, 2), 999))

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, snapshot.Values())
	assert.Equal(t, []int{1, 12, 999, 13, 14, 5, 6, 7}, original.Values())
}

func TestMultipleClonesAllIndependent(t *testing.T) {
	d := fxData{}
	sized := fxSized{}
	base := FromValues[int, fxSummary, fxAction](d, fxSeed, []int{1, 2, 3})
	a := base.Clone()
	b := base.Clone()

	require.NoError(t, a.Insert(grove.AtGap[int, fxSummary](sized, 3), 4))
	require.NoError(t, b.Insert(grove.AtGap[int, fxSummary](sized, 0), 0))

	assert.Equal(t, []int{1, 2, 3}, base.Values())
	assert.Equal(t, []int{1, 2, 3, 4}, a.Values())
	assert.Equal(t, []int{0, 1, 2, 3}, b.Values())
}
