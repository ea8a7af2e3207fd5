/*
Package pmap provides a persistent (multi-version) map: every change
yields a handle to a new version, and every handle obtained earlier
stays valid, readable, and updatable on its own.

Versions are not full copies. All the versions derived from one map form
a graph in which exactly one node per chain holds materialized contents
(the root), and every other node holds a small reverse diff relative to
its successor. Reading or writing through a handle first "reroots" the
graph at that handle's node by inverting the diffs along the way, so the
version being used is always the materialized one.

Rerooting

The technique comes from persistent union-find: "A Persistent Union-Find
Data Structure", by Sylvain Conchon and Jean-Christophe Filliâtre, 2007.
A handle used alternately with a distant version would pay for the whole
path between them on every access, so reroot randomly materializes
intermediate versions as it walks, with a probability proportional to
the work done since the last materialization relative to the cost of a
copy. That bounds the amortized cost per operation; the random source
can be set in Options to make the graph shape reproducible.

Absent

Diffs must be able to say "this key had no entry in this version". The
Absent value does that, and passing it as a value to Update deletes a
key. It is never returned from reads.

Identity

Update compares each new value with the stored one by identity: storing
a distinct pointer to an equal struct is a change and creates a version;
storing the very value already present is not. Maps and slices are
identical only if they share storage.

CloneMap

CloneMap wraps Map with ordinary mutable-map methods. Writes go to a
local buffer, and Snapshot folds the buffer into a new persistent version
shared by the wrapper and the snapshot, so taking a snapshot costs one
Update rather than a copy.

Concurrency

Rerooting mutates nodes shared by every handle derived from the same
map, including handles from Clone and Snapshot. Such handles must not be
used concurrently without external locking.
*/
package pmap
