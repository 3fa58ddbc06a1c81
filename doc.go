/*
Package grove implements the substrate of a generic segment-tree library
built atop balanced binary search trees.

The package stores a sequence of values and supports, in expected/amortised
logarithmic time per operation: point read/write, point insert/delete,
segment summary queries, segment actions (including reversal), and
concatenation/split of whole sequences. The balanced-tree algorithms
(splay, treap, AVL, persistent, in sibling packages grove/splay, grove/treap,
grove/avl and grove/persistent) are interchangeable implementations of the
same abstract interface, because this package is an unbalanced augmented-tree
substrate that isolates five orthogonal concerns:

  - an abstract Data specification: a value type, a summary monoid, and an
    action monoid acting on the summary (Data, see data.go)
  - lazy push-down of pending actions (node.go: access/rebuild)
  - segment localisation by a Locator predicate (locator.go)
  - a reborrowing Walker that traverses and mutates the tree, guaranteeing
    rebuild on drop (walker.go)
  - algorithm-specific balancing bookkeeping, plugged in as a type parameter
    (Alg) on every node, interpreted only by the balancer packages

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package grove

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'grove'.
func tracer() tracing.Trace {
	return tracing.Select("grove")
}
