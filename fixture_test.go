package grove

// Test fixture implementing Data for package-internal tests: a sequence of
// ints, summarised as (sum, min, max, size), acted on by a signed additive
// shift that can also carry a reversal flag -- small enough to hand-verify,
// rich enough to exercise every law in data.go's doc comment plus the
// Reversing and Sized capabilities.

import "testing"

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

// fxSized implements the Sized capability for fxSummary, supplied
// separately per spec §4.2/§9 ("required at the site of use").
type fxSized struct{}

func (fxSized) Size(s fxSummary) int { return s.Size }

type fxAlg struct{} // no balancer-specific bookkeeping needed for these tests

type fxNode = Node[int, fxSummary, fxAction, fxAlg]

func fxBuild(t *testing.T, vs []int) *fxNode {
	t.Helper()
	return FromSlice[int, fxSummary, fxAction, fxAlg](fxData{}, vs)
}
