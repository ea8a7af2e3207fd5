package pmap

import "fmt"

// CloneMap is a mutable map whose Snapshot is cheap. Writes go to a local
// buffer that overrides a persistent base version; the buffer is folded into
// the base only when a snapshot is taken.
//
// A CloneMap and its snapshots share history and must not be used
// concurrently.
type CloneMap struct {
	base   *Map
	buffer map[interface{}]interface{}
}

// NewCloneMap returns a CloneMap holding a copy of the given entries, which
// may be nil.
func NewCloneMap(initial map[interface{}]interface{}, opts *Options) *CloneMap {
	return &CloneMap{
		base:   FromMap(initial, opts),
		buffer: map[interface{}]interface{}{},
	}
}

// Get returns the value for the given key, and whether it is present.
func (c *CloneMap) Get(key interface{}) (interface{}, bool) {
	if v, ok := c.buffer[key]; ok {
		if isAbsent(v) {
			return nil, false
		}
		return v, true
	}
	return c.base.Get(key)
}

// GetDefault returns the value for the given key, or def if it is absent.
func (c *CloneMap) GetDefault(key, def interface{}) interface{} {
	if v, ok := c.Get(key); ok {
		return v
	}
	return def
}

// Fetch returns the value for the given key, or ErrKeyNotFound.
func (c *CloneMap) Fetch(key interface{}) (interface{}, error) {
	v, ok := c.Get(key)
	if !ok {
		return nil, fmt.Errorf("fetch %v: %w", key, ErrKeyNotFound)
	}
	return v, nil
}

// Contains indicates whether the given key is present.
func (c *CloneMap) Contains(key interface{}) bool {
	_, ok := c.Get(key)
	return ok
}

// Set sets the given key to value.
func (c *CloneMap) Set(key, value interface{}) {
	c.buffer[key] = value
}

// Delete removes the given key, if present.
func (c *CloneMap) Delete(key interface{}) {
	c.buffer[key] = Absent
}

// Update sets every given entry, in order.
func (c *CloneMap) Update(entries ...Entry) {
	for _, e := range entries {
		c.buffer[e.Key] = e.Value
	}
}

// Len returns the number of entries.
func (c *CloneMap) Len() int {
	n := 0
	for _, v := range c.buffer {
		if !isAbsent(v) {
			n++
		}
	}
	for k := range c.base.data() {
		if _, ok := c.buffer[k]; !ok {
			n++
		}
	}
	return n
}

// Keys returns the keys of the map's entries, in no particular order.
func (c *CloneMap) Keys() []interface{} {
	var keys []interface{}
	c.each(func(k, _ interface{}) {
		keys = append(keys, k)
	})
	return keys
}

// Items returns the map's entries, in no particular order.
func (c *CloneMap) Items() []Entry {
	var items []Entry
	c.each(func(k, v interface{}) {
		items = append(items, Entry{k, v})
	})
	return items
}

// ToMap returns a copy of the map's entries as a Go map.
func (c *CloneMap) ToMap() map[interface{}]interface{} {
	m := map[interface{}]interface{}{}
	c.each(func(k, v interface{}) {
		m[k] = v
	})
	return m
}

// Iter invokes the given callback for every entry present when Iter was
// called. Iteration stops at the first error.
func (c *CloneMap) Iter(f func(key, value interface{}) error) error {
	for _, e := range c.Items() {
		if err := f(e.Key, e.Value); err != nil {
			return fmt.Errorf("callback: %w", err)
		}
	}
	return nil
}

func (c *CloneMap) each(f func(k, v interface{})) {
	for k, v := range c.buffer {
		if !isAbsent(v) {
			f(k, v)
		}
	}
	for k, v := range c.base.data() {
		if _, ok := c.buffer[k]; !ok {
			f(k, v)
		}
	}
}

// Commit folds buffered writes into the base version and returns it.
func (c *CloneMap) Commit() *Map {
	if len(c.buffer) > 0 {
		c.base = c.base.UpdateMap(c.buffer)
		c.buffer = map[interface{}]interface{}{}
	}
	return c.base
}

// Snapshot returns an independent CloneMap with the same contents. Both maps
// continue from the same consolidated base version.
func (c *CloneMap) Snapshot() *CloneMap {
	return &CloneMap{
		base:   c.Commit(),
		buffer: map[interface{}]interface{}{},
	}
}

// Equal indicates whether both maps have the same entries, comparing values
// deeply.
func (c *CloneMap) Equal(other *CloneMap) bool {
	if c == other {
		return true
	}
	return equalData(c.ToMap(), other.ToMap())
}

// String renders the map's entries.
func (c *CloneMap) String() string {
	return fmt.Sprintf("pmap.CloneMap(%v)", c.ToMap())
}
