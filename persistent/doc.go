/*
Package persistent is the copy-on-write balancer for github.com/npillmayer/
grove (component C10): a treap whose nodes are shared between Trees until a
mutation needs to change one, at which point only the nodes on the path to
that change are cloned -- everything else remains structurally shared.

Immutable data structures in many cases offer benefits over mutable data
structures in terms of concurrent access and functional reasoning.
*Persistent* immutable data structures additionally offer structural
sharing, which means that if two data structures are mostly copies of each
other, most of the memory they take up will be shared between them. This
implies that making a copy -- Clone, here -- is cheap: O(1), since it only
has to mark the shared root, never walk the tree.

No grove/persistent + splay combination exists: splaying restructures the
tree on every read, which would force a clone on every lookup and defeat
the whole point of sharing.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package persistent
