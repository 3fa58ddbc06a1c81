package avl

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

// assertAVLBalanced walks n and fails t if any node's balance factor falls
// outside [-1, 1], or if its stored height disagrees with the height
// recomputed from its children.
func assertAVLBalanced[V any, S any, A comparable](t *testing.T, n *node[V, S, A]) int {
	t.Helper()
	if n == nil {
		return 0
	}
	lh := assertAVLBalanced[V, S, A](t, n.Left)
	rh := assertAVLBalanced[V, S, A](t, n.Right)
	bf := lh - rh
	assert.LessOrEqual(t, bf, 1, "node %v unbalanced: bf=%d", n.Value, bf)
	assert.GreaterOrEqual(t, bf, -1, "node %v unbalanced: bf=%d", n.Value, bf)
	want := lh + 1
	if rh > lh {
		want = rh + 1
	}
	assert.Equal(t, want, n.Alg.height, "node %v height bookkeeping stale", n.Value)
	return want
}

func TestTreeInsertAndDelete(t *testing.T) {
	d := fxData{}
	tr := New[int, fxSummary, fxAction](d)
	sized := fxSized{}
	for i, v := range []int{30, 10, 20} {
		require.NoError(t, tr.Insert(grove.AtGap[int, fxSummary](sized, i), v))
	}
	assert.Equal(t, []int{30, 10, 20}, tr.Values())

	v, err := tr.Delete(grove.AtIndex[int, fxSummary](sized, 1))
	require.NoError(t, err)
	assert.Equal(t, 10, v)
	assert.Equal(t, []int{30, 20}, tr.Values())
	assertAVLBalanced(t, tr.root)
}

func TestTreeStaysBalancedUnderAscendingInserts(t *testing.T) {
	// ascending-order insertion is the classic case that degenerates an
	// unbalanced BST into a linked list; AVL rotation must prevent it.
	d := fxData{}
	sized := fxSized{}
	tr := New[int, fxSummary, fxAction](d)
	for i := 0; i < 31; i++ {
		require.NoError(t, tr.Insert(grove.AtGap[int, fxSummary](sized, i), i))
	}
	assertAVLBalanced(t, tr.root)
	assert.LessOrEqual(t, height[int, fxSummary, fxAction](tr.root), 6)
}

func TestTreeDeleteTwoChildNode(t *testing.T) {
	d := fxData{}
	tr := FromValues[int, fxSummary, fxAction](d, []int{1, 2, 3, 4, 5})
	sized := fxSized{}
	v, err := tr.Delete(grove.AtIndex[int, fxSummary](sized, 2))
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	assert.Equal(t, []int{1, 2, 4, 5}, tr.Values())
	assertAVLBalanced(t, tr.root)
}

func TestTreeActAndSummary(t *testing.T) {
	d := fxData{}
	tr := FromValues[int, fxSummary, fxAction](d, []int{1, 2, 3, 4})
	tr.Act(grove.Full[int, fxSummary](), fxAction{Add: 1})
	assert.Equal(t, []int{2, 3, 4, 5}, tr.Values())
	assert.Equal(t, 14, tr.Summary().Sum)
}

func TestTreeSplitLeftKeepsRightPart(t *testing.T) {
	d := fxData{}
	tr := FromValues[int, fxSummary, fxAction](d, []int{1, 2, 3, 4, 5, 6, 7})
	sized := fxSized{}
	left, err := tr.SplitLeft(grove.AtGap[int, fxSummary](sized, 3))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, left.Values())
	assert.Equal(t, []int{4, 5, 6, 7}, tr.Values())
	assertAVLBalanced(t, tr.root)
	assertAVLBalanced(t, left.root)
}

func TestTreeConcatOfUnevenHeights(t *testing.T) {
	d := fxData{}
	// left is a single node (height 1), right is bisection-built over 15
	// values (height 4) -- exercises concatMiddle's joinLeft path.
	left := FromValues[int, fxSummary, fxAction](d, []int{0})
	right := FromValues[int, fxSummary, fxAction](d, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15})
	joined := left.Concat(right)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}, joined.Values())
	assertAVLBalanced(t, joined.root)
}

func TestTreeConcatOfEvenHeights(t *testing.T) {
	d := fxData{}
	left := FromValues[int, fxSummary, fxAction](d, []int{1, 2, 3})
	right := FromValues[int, fxSummary, fxAction](d, []int{4, 5, 6})
	joined := left.Concat(right)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, joined.Values())
	assertAVLBalanced(t, joined.root)
}

func TestTreeSearchMissReturnsFalse(t *testing.T) {
	d := fxData{}
	tr := New[int, fxSummary, fxAction](d)
	_, ok := tr.Search(grove.Full[int, fxSummary]())
	assert.False(t, ok)
}
