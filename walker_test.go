package grove

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalkerGoLeftGoRightRoundTrip(t *testing.T) {
	d := fxData{}
	root := fxBuild(t, []int{1, 2, 3, 4, 5, 6, 7})
	w := NewWalker[int, fxSummary, fxAction, fxAlg](d, &root, nil)
	require.NoError(t, w.GoLeft())
	require.NoError(t, w.GoRight())
	_, err := w.Value()
	require.NoError(t, err)
	side, err := w.GoUp()
	require.NoError(t, err)
	assert.Equal(t, right, side)
	side, err = w.GoUp()
	require.NoError(t, err)
	assert.Equal(t, left, side)
	_, err = w.GoUp()
	assert.ErrorIs(t, err, ErrAtRoot)
}

func TestWalkerInsertAtEmptyTree(t *testing.T) {
	d := fxData{}
	var root *fxNode
	w := NewWalker[int, fxSummary, fxAction, fxAlg](d, &root, nil)
	require.NoError(t, w.Insert(42))
	assert.NotNil(t, root)
	assert.Equal(t, 42, root.Value)
	assert.Equal(t, ErrPositionOccupied, w.Insert(7))
}

func TestWalkerInsertAtGapPreservesOrder(t *testing.T) {
	d := fxData{}
	root := fxBuild(t, []int{10, 20, 30})
	sized := fxSized{}
	w := NewWalker[int, fxSummary, fxAction, fxAlg](d, &root, nil)
	w.Navigate(AtGap[int, fxSummary](sized, 2))
	require.NoError(t, w.Insert(25))
	w.Collapse()
	assert.Equal(t, []int{10, 20, 25, 30}, IntoSlice(d, root))
}

func TestWalkerDeleteLeaf(t *testing.T) {
	d := fxData{}
	root := fxBuild(t, []int{10, 20, 30})
	sized := fxSized{}
	w := NewWalker[int, fxSummary, fxAction, fxAlg](d, &root, nil)
	w.Navigate(AtIndex[int, fxSummary](sized, 0))
	require.True(t, w.AtNode())
	v, err := w.Delete()
	require.NoError(t, err)
	assert.Equal(t, 10, v)
	w.Collapse()
	assert.Equal(t, []int{20, 30}, IntoSlice(d, root))
}

func TestWalkerRotateLeftRightPreserveOrder(t *testing.T) {
	d := fxData{}
	root := fxBuild(t, []int{1, 2, 3, 4, 5})
	before := IntoSlice(d, root)

	w := NewWalker[int, fxSummary, fxAction, fxAlg](d, &root, nil)
	if root.Right != nil {
		w.RotateLeft()
	}
	w.Collapse()
	assert.Equal(t, before, IntoSlice(d, root), "RotateLeft must preserve in-order sequence")

	w = NewWalker[int, fxSummary, fxAction, fxAlg](d, &root, nil)
	if root.Left != nil {
		w.RotateRight()
	}
	w.Collapse()
	assert.Equal(t, before, IntoSlice(d, root), "RotateRight must preserve in-order sequence")
}

func TestWalkerRotateUpPreservesOrderAndPromotes(t *testing.T) {
	d := fxData{}
	root := fxBuild(t, []int{1, 2, 3, 4, 5, 6, 7})
	before := IntoSlice(d, root)

	w := NewWalker[int, fxSummary, fxAction, fxAlg](d, &root, nil)
	require.NoError(t, w.GoLeft())
	child, err := w.Value()
	require.NoError(t, err)
	w.RotateUp()
	v, err := w.Value()
	require.NoError(t, err)
	assert.Equal(t, child, v, "RotateUp must keep the walker positioned at the same node")
	assert.Equal(t, 0, w.Depth(), "the rotated node must now be the root")
	w.Collapse()
	assert.Equal(t, before, IntoSlice(d, root))
	assert.Equal(t, child, root.Value)
}

func TestWalkerSummaryContextMatchesWholeTree(t *testing.T) {
	d := fxData{}
	root := fxBuild(t, []int{1, 2, 3, 4, 5})
	w := NewWalker[int, fxSummary, fxAction, fxAlg](d, &root, nil)
	require.NoError(t, w.GoRight())
	require.NoError(t, w.GoLeft())
	whole := EffectiveSummary(d, root)
	v, err := w.Value()
	require.NoError(t, err)
	got := d.Combine(d.Combine(w.FarLeftSummary(), d.ToSummary(v)), w.FarRightSummary())
	assert.Equal(t, whole, got)
}
