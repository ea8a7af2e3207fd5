package pmap

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
)

// History retains a bounded number of labelled versions. Versions that
// fall out of the history are no longer referenced by it, so their nodes
// can be collected once no other handle shares them.
type History struct {
	cache *lru.ARCCache
}

// NewHistory creates a History that holds at most size versions, evicting
// by adaptive replacement (recency and frequency of lookups).
func NewHistory(size int) (*History, error) {
	cache, err := lru.NewARC(size)
	if err != nil {
		return nil, fmt.Errorf("new ARC: %w", err)
	}
	return &History{cache}, nil
}

// Record remembers m under the given label, replacing any previous version
// with that label.
func (h *History) Record(label string, m *Map) {
	h.cache.Add(label, m)
}

// RecordSnapshot commits the given CloneMap and remembers its base version
// under the given label.
func (h *History) RecordSnapshot(label string, c *CloneMap) *Map {
	m := c.Commit()
	h.Record(label, m)
	return m
}

// Version returns the version recorded under the given label, if it is
// still retained.
func (h *History) Version(label string) (*Map, bool) {
	v, ok := h.cache.Get(label)
	if !ok {
		return nil, false
	}
	return v.(*Map), true
}

// Forget drops the version recorded under the given label.
func (h *History) Forget(label string) {
	h.cache.Remove(label)
}

// Labels returns the labels of the retained versions.
func (h *History) Labels() []string {
	keys := h.cache.Keys()
	labels := make([]string, len(keys))
	for i, k := range keys {
		labels[i] = k.(string)
	}
	return labels
}

// Len returns the number of retained versions.
func (h *History) Len() int {
	return h.cache.Len()
}
