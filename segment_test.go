package grove

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentSummaryWholeTreeMatchesRoot(t *testing.T) {
	d := fxData{}
	root := fxBuild(t, []int{4, 8, 15, 16, 23, 42})
	s := SegmentSummary(d, root, Full[int, fxSummary]())
	assert.Equal(t, EffectiveSummary(d, root), s)
}

func TestActSegmentAddOverSubrange(t *testing.T) {
	d := fxData{}
	root := fxBuild(t, []int{1, 2, 3, 4, 5})
	sized := fxSized{}
	loc := IndexRange[int, fxSummary](sized, 1, 4) // 2,3,4
	ActSegment(d, &root, d.EmptySummary(), d.EmptySummary(), loc, fxAction{Add: 100})
	got := IntoSlice(d, root)
	assert.Equal(t, []int{1, 102, 103, 104, 5}, got)
}

func TestActSegmentReverseWholeTree(t *testing.T) {
	d := fxData{}
	root := fxBuild(t, []int{1, 2, 3, 4, 5})
	ActSegment(d, &root, d.EmptySummary(), d.EmptySummary(), Full[int, fxSummary](), fxAction{Rev: true})
	assert.Equal(t, []int{5, 4, 3, 2, 1}, IntoSlice(d, root))
}

func TestActSegmentReverseSubrangeThenAddIsConsistentWithSummary(t *testing.T) {
	d := fxData{}
	root := fxBuild(t, []int{1, 2, 3, 4, 5, 6})
	sized := fxSized{}
	loc := IndexRange[int, fxSummary](sized, 1, 5) // 2,3,4,5
	before := SegmentSummary(d, root, loc)
	ActSegment(d, &root, d.EmptySummary(), d.EmptySummary(), loc, fxAction{Rev: true})
	assert.Equal(t, []int{1, 5, 4, 3, 2, 6}, IntoSlice(d, root))
	after := SegmentSummary(d, root, loc)
	assert.Equal(t, before.Sum, after.Sum, "reversal must not change an order-independent aggregate")
	assert.Equal(t, before.Min, after.Min)
	assert.Equal(t, before.Max, after.Max)
}

func TestInconsistentLocatorPanicsDuringSuffixSearch(t *testing.T) {
	d := fxData{}
	root := fxBuild(t, []int{1, 2, 3, 4, 5})
	// a locator that accepts the single middle value but otherwise answers
	// the opposite of what IndexRange would -- guaranteed to contradict
	// itself once the segment algorithm starts the suffix/prefix search.
	broken := Locator[int, fxSummary](func(left fxSummary, v int, right fxSummary) Answer {
		if v == 3 {
			return Accept
		}
		if v < 3 {
			return GoLeft // backwards: the real boundary is to this node's right
		}
		return GoRight
	})
	assert.Panics(t, func() { SegmentSummary(d, root, broken) })
}

func TestSegmentSummaryImmMatchesMutatingVersion(t *testing.T) {
	d := fxData{}
	root := fxBuild(t, []int{1, 2, 3, 4, 5, 6, 7})
	root.Pending = fxAction{Add: 3} // dirty the root so Imm must compose it without mutating
	sized := fxSized{}
	loc := IndexRange[int, fxSummary](sized, 2, 5)

	leftPending, rightPending := root.Left.Pending, root.Right.Pending
	immResult := SegmentSummaryImm(d, root, loc)
	assert.Equal(t, fxAction{Add: 3}, root.Pending, "SegmentSummaryImm must never push Pending down")
	assert.Equal(t, leftPending, root.Left.Pending, "SegmentSummaryImm must never mutate children")
	assert.Equal(t, rightPending, root.Right.Pending, "SegmentSummaryImm must never mutate children")

	mutResult := SegmentSummary(d, root, loc)
	assert.Equal(t, mutResult, immResult)
}

func TestSliceSplitRightSeparatesHalves(t *testing.T) {
	d := fxData{}
	s := SliceFromValues[int, fxSummary, fxAction, fxAlg](d, []int{1, 2, 3, 4, 5, 6})
	sized := fxSized{}
	right, err := s.SplitRight(AtGap[int, fxSummary](sized, 3))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, s.Values())
	assert.Equal(t, []int{4, 5, 6}, right.Values())
}
