package pmap

import (
	"errors"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sortedKeys(keys []interface{}) []int {
	ints := make([]int, len(keys))
	for i, k := range keys {
		ints[i] = k.(int)
	}
	sort.Ints(ints)
	return ints
}

func TestCloneMapBasics(t *testing.T) {
	t.Parallel()
	c := NewCloneMap(map[interface{}]interface{}{1: 2}, seeded(20))
	require.Equal(t, "pmap.CloneMap(map[1:2])", c.String())
	c.Set(42, 42)
	require.Equal(t, map[interface{}]interface{}{1: 2, 42: 42}, c.ToMap())
	c2 := c.Snapshot()
	c.Delete(1)
	require.Equal(t, map[interface{}]interface{}{42: 42}, c.ToMap())
	require.Equal(t, map[interface{}]interface{}{1: 2, 42: 42}, c2.ToMap())
	require.False(t, c.Equal(c2))
	c.Set(1, 2)
	require.True(t, c.Equal(c2))
}

func TestCloneMapOverlay(t *testing.T) {
	t.Parallel()
	c := NewCloneMap(nil, seeded(21))
	c.Set("a", 1)
	c.Delete("a")
	require.Equal(t, 0, c.Len())
	require.False(t, c.Contains("a"))
	require.Empty(t, c.Keys())
	require.Empty(t, c.Items())

	c = NewCloneMap(map[interface{}]interface{}{1: "one", 2: "two", 3: "three"}, seeded(22))
	c.Set(2, "TWO")
	c.Delete(3)
	c.Set(4, "four")
	c.Delete(5)
	require.Equal(t, 3, c.Len())
	require.Equal(t, []int{1, 2, 4}, sortedKeys(c.Keys()))
	require.Equal(t, "TWO", c.GetDefault(2, nil))
	require.Equal(t, "gone", c.GetDefault(3, "gone"))
	require.Equal(t, "one", c.GetDefault(1, nil))
	require.Len(t, c.Items(), 3)
}

func TestCloneMapFetch(t *testing.T) {
	t.Parallel()
	c := NewCloneMap(map[interface{}]interface{}{"base": 1}, nil)
	v, err := c.Fetch("base")
	require.NoError(t, err)
	require.Equal(t, 1, v)
	c.Delete("base")
	_, err = c.Fetch("base")
	require.True(t, errors.Is(err, ErrKeyNotFound))
	_, err = c.Fetch("never")
	require.True(t, errors.Is(err, ErrKeyNotFound))
}

func TestCloneMapSnapshotIndependence(t *testing.T) {
	t.Parallel()
	w := NewCloneMap(nil, seeded(23))
	w.Set("a", 1)
	s := w.Snapshot()
	require.Same(t, w.base, s.base)
	require.Empty(t, w.buffer)
	require.Empty(t, s.buffer)

	s.Set("a", 2)
	s.Set("b", 3)
	require.Equal(t, 1, w.GetDefault("a", nil))
	require.False(t, w.Contains("b"))

	w.Delete("a")
	require.Equal(t, 2, s.GetDefault("a", nil))

	s2 := s.Snapshot()
	w2 := w.Snapshot()
	require.Equal(t, map[interface{}]interface{}{"a": 2, "b": 3}, s2.ToMap())
	require.Equal(t, map[interface{}]interface{}{}, w2.ToMap())
	require.Equal(t, map[interface{}]interface{}{"a": 2, "b": 3}, s.ToMap())
	require.Equal(t, 0, w.Len())
}

func TestCloneMapCommitWithoutWrites(t *testing.T) {
	t.Parallel()
	c := NewCloneMap(map[interface{}]interface{}{1: 1}, nil)
	base := c.Commit()
	require.Same(t, base, c.Commit())
	c.Set(1, 1)
	require.Same(t, base, c.Commit(), "rewriting the stored value isn't a change")
	c.Set(1, 2)
	require.NotSame(t, base, c.Commit())
	require.Equal(t, map[interface{}]interface{}{1: 1}, base.ToMap())
}

func TestCloneMapUpdate(t *testing.T) {
	t.Parallel()
	c := NewCloneMap(map[interface{}]interface{}{1: 1, 2: 2}, nil)
	c.Update(Entry{1, 10}, Entry{2, Absent}, Entry{3, 30}, Entry{3, 31})
	require.Equal(t, map[interface{}]interface{}{1: 10, 3: 31}, c.ToMap())
	seen := map[interface{}]interface{}{}
	require.NoError(t, c.Iter(func(k, v interface{}) error {
		seen[k] = v
		return nil
	}))
	require.Equal(t, c.ToMap(), seen)
}

// TestCloneMapLikeMap checks that CloneMap behaves like a map copied in
// full at every snapshot.
func TestCloneMapLikeMap(t *testing.T) {
	t.Parallel()
	d := map[interface{}]interface{}{}
	c := NewCloneMap(nil, seeded(24))
	var copies []map[interface{}]interface{}
	var snapshots []*CloneMap
	for i := 0; i < 2000; i++ {
		k := i % 97
		switch {
		case i%7 == 0:
			delete(d, k)
			c.Delete(k)
		default:
			d[k] = i
			c.Set(k, i)
		}
		if i%50 == 0 {
			copies = append(copies, copyData(d))
			snapshots = append(snapshots, c.Snapshot())
		}
	}
	if diff := cmp.Diff(d, c.ToMap()); diff != "" {
		t.Errorf("current contents (-want +got):\n%s", diff)
	}
	for i := range snapshots {
		assert.Equal(t, copies[i], snapshots[i].ToMap(), "snapshot %d", i)
	}
}
