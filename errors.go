package grove

import (
	"errors"
	"fmt"
)

// Error kinds exposed as explicit, non-fatal result values (spec §7).
//
// ErrPositionEmpty is returned whenever an operation that requires a node
// (go_left, go_right, value, delete, ...) is attempted at an empty position.
var ErrPositionEmpty = errors.New("grove: position is empty")

// ErrPositionOccupied is returned by Insert/SplitLeft/SplitRight when the
// walker's current position already holds a node.
var ErrPositionOccupied = errors.New("grove: position is not empty")

// ErrAtRoot is returned by GoUp when the walker is already at the root.
var ErrAtRoot = errors.New("grove: already at the root")

// assertThat panics with a package-prefixed message if cond is false. This is
// the library's only mechanism for fatal, contract-violation failures
// (inconsistent locator, key collision on keyed insert, broken invariants):
// see spec §7. It never guards expected, recoverable outcomes -- those are
// sentinel errors above.
func assertThat(cond bool, msg string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf("grove: "+msg, args...))
	}
}

// inconsistentLocator panics; called whenever a segment algorithm receives a
// reply from a Locator that contradicts the phase it is in (spec §4.4, §7).
func inconsistentLocator(phase string, got Answer) {
	panic(fmt.Sprintf("grove: inconsistent locator: %s phase received %v", phase, got))
}
