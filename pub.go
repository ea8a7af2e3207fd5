package pmap

import (
	"errors"
	"fmt"
	"math/rand"
	"reflect"
)

var (
	// ErrKeyNotFound is returned by Fetch for a key with no entry.
	ErrKeyNotFound = errors.New("key not found")
	// ErrKeyNotPresent is returned by Delete for a key with no entry.
	ErrKeyNotPresent = errors.New("key not present")
)

// Options controls the behavior shared by every version of a map.
type Options struct {
	// Rand decides where reroot materializes intermediate versions. It only
	// affects performance. Defaults to a time-seeded source.
	Rand *rand.Rand

	// SplitPadding damps the probability of materializing intermediate
	// versions during reroot. 0 means use DefaultSplitPadding.
	SplitPadding int

	// NoSplit disables materializing intermediate versions, so every
	// reroot inverts the whole path to the target.
	NoSplit bool

	// Debug prints reroot activity to stdout.
	Debug bool
}

// Entry is a key and value. In Update, a Value of Absent deletes the key.
type Entry struct {
	Key   interface{}
	Value interface{}
}

// Map is a handle to one version of a persistent map. Operations that
// change the map return a handle to a new version; the receiver keeps
// denoting its own version.
//
// Every read or write first makes the handle's version the materialized
// one, which mutates state shared with other versions. Handles that share
// history must not be used concurrently.
type Map struct {
	node  *node
	graph *graph
}

// NewMap returns an empty map.
func NewMap(opts *Options) *Map {
	return &Map{newRoot(nil), newGraph(opts)}
}

// FromMap returns a map holding a copy of the given entries.
func FromMap(m map[interface{}]interface{}, opts *Options) *Map {
	data := make(map[interface{}]interface{}, len(m))
	for k, v := range m {
		if !isAbsent(v) {
			data[k] = v
		}
	}
	return &Map{newRoot(data), newGraph(opts)}
}

// FromEntries returns a map holding the given entries; later entries for a
// key replace earlier ones.
func FromEntries(entries []Entry, opts *Options) *Map {
	data := make(map[interface{}]interface{}, len(entries))
	for _, e := range entries {
		if isAbsent(e.Value) {
			delete(data, e.Key)
		} else {
			data[e.Key] = e.Value
		}
	}
	return &Map{newRoot(data), newGraph(opts)}
}

func (m *Map) data() map[interface{}]interface{} {
	m.graph.reroot(m.node)
	return m.node.payload
}

// Get returns the value for the given key, and whether it is present.
func (m *Map) Get(key interface{}) (interface{}, bool) {
	v, ok := m.data()[key]
	if ok && isAbsent(v) {
		panic(fmt.Sprintf("bug! tombstone visible for key %v", key))
	}
	return v, ok
}

// GetDefault returns the value for the given key, or def if it is absent.
func (m *Map) GetDefault(key, def interface{}) interface{} {
	if v, ok := m.Get(key); ok {
		return v
	}
	return def
}

// Fetch returns the value for the given key, or ErrKeyNotFound.
func (m *Map) Fetch(key interface{}) (interface{}, error) {
	v, ok := m.Get(key)
	if !ok {
		return nil, fmt.Errorf("fetch %v: %w", key, ErrKeyNotFound)
	}
	return v, nil
}

// Contains indicates whether the given key is present.
func (m *Map) Contains(key interface{}) bool {
	_, ok := m.data()[key]
	return ok
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return len(m.data())
}

// Keys returns the keys of the map's entries, in no particular order.
func (m *Map) Keys() []interface{} {
	data := m.data()
	keys := make([]interface{}, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	return keys
}

// Items returns the map's entries, in no particular order.
func (m *Map) Items() []Entry {
	data := m.data()
	items := make([]Entry, 0, len(data))
	for k, v := range data {
		items = append(items, Entry{k, v})
	}
	return items
}

// ToMap returns a copy of the map's entries as a Go map.
func (m *Map) ToMap() map[interface{}]interface{} {
	return copyData(m.data())
}

// Iter invokes the given callback for every entry of the version as it was
// when Iter was called. Iteration stops at the first error.
func (m *Map) Iter(f func(key, value interface{}) error) error {
	for _, e := range m.Items() {
		if err := f(e.Key, e.Value); err != nil {
			return fmt.Errorf("callback: %w", err)
		}
	}
	return nil
}

// Update applies the given entries in order and returns the resulting
// version. A key counts as changed only if its new value is not the same
// value (by identity, not equality) as the stored one; if no key changes,
// m itself is returned.
func (m *Map) Update(entries ...Entry) *Map {
	n := m.graph.update(m.node, entries)
	if n == m.node {
		return m
	}
	return &Map{n, m.graph}
}

// UpdateMap is Update with the entries of a Go map.
func (m *Map) UpdateMap(changes map[interface{}]interface{}) *Map {
	entries := make([]Entry, 0, len(changes))
	for k, v := range changes {
		entries = append(entries, Entry{k, v})
	}
	return m.Update(entries...)
}

// Set returns a version with the given key set to value.
func (m *Map) Set(key, value interface{}) *Map {
	return m.Update(Entry{key, value})
}

// Delete returns a version without the given key, which must be present.
func (m *Map) Delete(key interface{}) (*Map, error) {
	if !m.Contains(key) {
		return nil, fmt.Errorf("delete %v: %w", key, ErrKeyNotPresent)
	}
	return m.Set(key, Absent), nil
}

// Clone returns another handle to the same version. Since updates never
// change the version a handle denotes, the clone evolves independently.
func (m *Map) Clone() *Map {
	m2 := *m
	return &m2
}

// Equal indicates whether both maps have the same entries, comparing values
// deeply.
func (m *Map) Equal(other *Map) bool {
	if m == other || m.node == other.node {
		return true
	}
	mine := m.ToMap()
	theirs := other.data()
	return equalData(mine, theirs)
}

// String renders the map's entries.
func (m *Map) String() string {
	return fmt.Sprintf("pmap.Map(%v)", m.ToMap())
}

func equalData(a, b map[interface{}]interface{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		v2, ok := b[k]
		if !ok || !reflect.DeepEqual(v, v2) {
			return false
		}
	}
	return true
}
