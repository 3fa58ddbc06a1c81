package treap

import (
	"sort"
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

func TestTreeInsertAndDelete(t *testing.T) {
	d := fxData{}
	tr := New[int, fxSummary, fxAction](d, fxSeed)
	sized := fxSized{}
	for i, v := range []int{30, 10, 20} {
		require.NoError(t, tr.Insert(grove.AtGap[int, fxSummary](sized, i), v))
	}
	assert.Equal(t, []int{30, 10, 20}, tr.Values())

	v, err := tr.Delete(grove.AtIndex[int, fxSummary](sized, 1))
	require.NoError(t, err)
	assert.Equal(t, 10, v)
	assert.Equal(t, []int{30, 20}, tr.Values())
}

func TestTreeHeapOrderHoldsAfterInsertions(t *testing.T) {
	d := fxData{}
	sized := fxSized{}
	tr := New[int, fxSummary, fxAction](d, fxSeed)
	for i, v := range []int{5, 1, 4, 2, 3} {
		require.NoError(t, tr.Insert(grove.AtGap[int, fxSummary](sized, i), v))
	}
	assert.Equal(t, []int{5, 1, 4, 2, 3}, tr.Values())
	assertHeapOrdered(t, tr.root)
}

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

func TestTreeDeleteTwoChildNode(t *testing.T) {
	d := fxData{}
	tr := FromValues[int, fxSummary, fxAction](d, fxSeed, []int{1, 2, 3, 4, 5})
	sized := fxSized{}
	v, err := tr.Delete(grove.AtIndex[int, fxSummary](sized, 2))
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	assert.Equal(t, []int{1, 2, 4, 5}, tr.Values())
	assertHeapOrdered(t, tr.root)
}

func TestTreeActAndSummary(t *testing.T) {
	d := fxData{}
	tr := FromValues[int, fxSummary, fxAction](d, fxSeed, []int{1, 2, 3, 4})
	tr.Act(grove.Full[int, fxSummary](), fxAction{Add: 1})
	assert.Equal(t, []int{2, 3, 4, 5}, tr.Values())
	assert.Equal(t, 14, tr.Summary().Sum)
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

func TestTreeSearchMissReturnsFalse(t *testing.T) {
	d := fxData{}
	tr := New[int, fxSummary, fxAction](d, fxSeed)
	_, ok := tr.Search(grove.Full[int, fxSummary]())
	assert.False(t, ok)
}

// fxKeyed gives the int fixture an identity key, for exercising the
// key-ordered union path (AtKey/KeyRange, not AtIndex/AtGap).
type fxKeyed struct{}

func (fxKeyed) Key(v int) int { return v }

func intCompare(a, b int) int { return a - b }

func TestUnionByKeyMergesDisjointSortedTreaps(t *testing.T) {
	d := fxData{}
	left := FromValues[int, fxSummary, fxAction](d, fxSeed, []int{1, 3, 5})
	right := FromValues[int, fxSummary, fxAction](d, fxSeed+1, []int{2, 4, 6})
	joined := UnionByKey[int, fxSummary, fxAction, int](fxKeyed{}, intCompare, left, right)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, joined.Values())
	assertHeapOrdered(t, joined.root)
}

// TestUnionByKeyPreservesDuplicateKeys is spec.md's own worked example: the
// union of [0..7) and [4..9) by key must be the 12-element multiset
// [0,1,2,3,4,4,5,5,6,6,7,8], not a deduplicated 9-element set -- overlap
// elements (4,5,6) appear once per tree they were found in, not once
// overall. Tie-break order between a key's two copies is arbitrary, so the
// assertion sorts before comparing rather than pinning exact positions.
func TestUnionByKeyPreservesDuplicateKeys(t *testing.T) {
	d := fxData{}
	left := FromValues[int, fxSummary, fxAction](d, fxSeed, []int{0, 1, 2, 3, 4, 5, 6})
	right := FromValues[int, fxSummary, fxAction](d, fxSeed+1, []int{4, 5, 6, 7, 8})
	joined := UnionByKey[int, fxSummary, fxAction, int](fxKeyed{}, intCompare, left, right)
	require.Equal(t, 12, joined.Len())
	got := joined.Values()
	sort.Ints(got)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 4, 5, 5, 6, 6, 7, 8}, got)
	assertHeapOrdered(t, joined.root)
}

func TestUnionByKeyParallelMatchesSequentialShape(t *testing.T) {
	d := fxData{}
	n := parallelUnionThreshold // force the goroutine-fan-out path
	leftVals := make([]int, 0, n/2)
	rightVals := make([]int, 0, n/2)
	for i := 0; i < n; i += 2 {
		leftVals = append(leftVals, i)
		rightVals = append(rightVals, i+1)
	}
	left := FromValues[int, fxSummary, fxAction](d, fxSeed, leftVals)
	right := FromValues[int, fxSummary, fxAction](d, fxSeed+1, rightVals)
	joined := UnionByKeyParallel[int, fxSummary, fxAction, int](fxKeyed{}, intCompare, left, right)
	require.Equal(t, n, joined.Len())
	assertHeapOrdered(t, joined.root)
	vals := joined.Values()
	for i := 1; i < len(vals); i++ {
		assert.Less(t, vals[i-1], vals[i])
	}
	seqLeft := FromValues[int, fxSummary, fxAction](d, fxSeed, leftVals)
	seqRight := FromValues[int, fxSummary, fxAction](d, fxSeed+1, rightVals)
	seq := UnionByKey[int, fxSummary, fxAction, int](fxKeyed{}, intCompare, seqLeft, seqRight)
	assert.Equal(t, seq.Values(), vals)
	assert.Equal(t, seq.root.Value, joined.root.Value)
}
