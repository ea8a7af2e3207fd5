package pmap

import (
	"fmt"
)

// DiffIter invokes the given callback for every entry that is different from
// the given older version. The iteration will stop if the callback returns
// keepGoing==false or an error. Callback invocation with
// added==removed==false signifies entries whose values have changed, by
// identity.
//
// When old shares history with m, only the keys recorded in the diffs
// between them are visited.
func (m *Map) DiffIter(
	old *Map,
	f func(added, removed bool,
		key, addedValue, removedValue interface{},
	) (bool, error),
) error {
	// The callback may reroot the graph, so work on a copy.
	cur := copyData(m.data())
	if old == nil {
		return diffData(cur, nil, f)
	}
	if old.node == m.node {
		return nil
	}
	path := []*node{}
	n := old.node
	for ; n.successor != nil; n = n.successor {
		path = append(path, n)
	}
	if n != m.node {
		if m.graph.debug {
			fmt.Printf("diff: versions don't share a root, comparing contents\n")
		}
		return diffData(cur, copyData(old.data()), f)
	}
	// Overlay the diffs from the root end, so the ones nearest old win.
	previous := map[interface{}]interface{}{}
	for i := len(path) - 1; i >= 0; i-- {
		for k, v := range path[i].payload {
			previous[k] = v
		}
	}
	for k, was := range previous {
		now, ok := cur[k]
		if !ok {
			now = Absent
		}
		keepGoing, err := diffEntry(k, now, was, f)
		if err != nil {
			return err
		}
		if !keepGoing {
			return nil
		}
	}
	return nil
}

func diffData(cur, previous map[interface{}]interface{}, f func(bool, bool, interface{}, interface{}, interface{}) (bool, error)) error {
	for k, now := range cur {
		was, ok := previous[k]
		if !ok {
			was = Absent
		}
		keepGoing, err := diffEntry(k, now, was, f)
		if err != nil {
			return err
		}
		if !keepGoing {
			return nil
		}
	}
	for k, was := range previous {
		if _, ok := cur[k]; ok {
			continue
		}
		keepGoing, err := diffEntry(k, Absent, was, f)
		if err != nil {
			return err
		}
		if !keepGoing {
			return nil
		}
	}
	return nil
}

func diffEntry(key, now, was interface{}, f func(bool, bool, interface{}, interface{}, interface{}) (bool, error)) (bool, error) {
	if same(now, was) {
		return true, nil
	}
	var keepGoing bool
	var err error
	switch {
	case isAbsent(was):
		keepGoing, err = f(true, false, key, now, nil)
	case isAbsent(now):
		keepGoing, err = f(false, true, key, nil, was)
	default:
		keepGoing, err = f(false, false, key, now, was)
	}
	if err != nil {
		return false, fmt.Errorf("callback: %w", err)
	}
	return keepGoing, nil
}
