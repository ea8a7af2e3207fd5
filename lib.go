package pmap

import (
	"fmt"
	"math/rand"
	"time"
)

// DefaultSplitPadding is added to the denominator of the split probability
// computed during reroot.
const DefaultSplitPadding = 16

// tombstone marks a key that has no entry in a node's version.
type tombstone struct{}

// Absent marks a deleted key. Passing it as an Entry value to Update
// deletes the key; it is never returned from a read.
var Absent interface{} = tombstone{}

func isAbsent(v interface{}) bool {
	_, ok := v.(tombstone)
	return ok
}

// graph is the state shared by every version derived from one constructor
// call.
type graph struct {
	rand         *rand.Rand
	splitPadding int
	noSplit      bool
	debug        bool

	reroots uint64
	splits  uint64
	folded  uint64
	copied  uint64
}

// node is one version. A root holds the full contents of its version in
// payload; any other node holds, for every key changed between it and its
// successor, the value that key has in this node's version (or Absent).
type node struct {
	successor *node
	payload   map[interface{}]interface{}
}

func newGraph(opts *Options) *graph {
	g := graph{splitPadding: DefaultSplitPadding}
	if opts != nil {
		g.rand = opts.Rand
		g.debug = opts.Debug
		g.noSplit = opts.NoSplit
		if opts.SplitPadding > 0 {
			g.splitPadding = opts.SplitPadding
		}
	}
	if g.rand == nil {
		g.rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &g
}

func newRoot(data map[interface{}]interface{}) *node {
	if data == nil {
		data = map[interface{}]interface{}{}
	}
	return &node{payload: data}
}

// reroot makes t the root of its chain, inverting every diff between t and
// the old root. Along the way it may detach the part of the chain already
// walked by materializing it as a separate root, so that repeatedly moving
// between distant versions doesn't pay for the whole path each time.
func (g *graph) reroot(t *node) {
	if t.successor == nil {
		return
	}
	path := []*node{t}
	for n := t.successor; n != nil; n = n.successor {
		path = append(path, n)
	}
	g.reroots++
	if g.debug {
		fmt.Printf("reroot: path length %d\n", len(path))
	}
	data := path[len(path)-1].payload
	work := 0
	for i := len(path) - 2; i >= 0; i-- {
		s := path[i]
		prev := path[i+1]
		split := g.shouldSplit(work, len(data), len(s.payload))
		var diff map[interface{}]interface{}
		if split {
			if g.debug {
				fmt.Printf("  splitting %d steps from target, %d entries\n", i+1, len(data))
			}
			// prev keeps data as its full contents; the rest of the walk
			// continues on a copy.
			prev.payload = data
			prev.successor = nil
			data = copyData(data)
			work = 0
			g.splits++
			g.copied += uint64(len(data))
		} else {
			diff = make(map[interface{}]interface{}, len(s.payload))
		}
		for k, v := range s.payload {
			if diff != nil {
				old, ok := data[k]
				if !ok {
					old = Absent
				}
				diff[k] = old
			}
			if isAbsent(v) {
				delete(data, k)
			} else {
				data[k] = v
			}
		}
		work += len(s.payload)
		g.folded += uint64(len(s.payload))
		if !split {
			prev.payload = diff
			prev.successor = s
		}
	}
	t.payload = data
	t.successor = nil
	if g.debug {
		validateRoot(t)
	}
}

// shouldSplit decides whether to materialize the data accumulated so far
// before folding in a diff of size diffLen. Each entry about to be folded
// splits with probability about 1/(2*dataLen+padding), so the expected
// run between splits is twice the size of the copy a split makes.
func (g *graph) shouldSplit(work, dataLen, diffLen int) bool {
	if g.noSplit || work == 0 || diffLen == 0 {
		return false
	}
	denominator := 2*dataLen + g.splitPadding
	if diffLen >= denominator {
		return true
	}
	return g.rand.Intn(denominator) < diffLen
}

// update applies entries on top of the version at n and returns the node
// holding the resulting version, or n itself if nothing changed.
func (g *graph) update(n *node, entries []Entry) *node {
	g.reroot(n)
	data := n.payload
	diff := map[interface{}]interface{}{}
	for _, e := range entries {
		old, ok := data[e.Key]
		if !ok {
			old = Absent
		}
		if same(old, e.Value) {
			continue
		}
		if _, seen := diff[e.Key]; !seen {
			diff[e.Key] = old
		}
		if isAbsent(e.Value) {
			delete(data, e.Key)
		} else {
			data[e.Key] = e.Value
		}
	}
	for k, was := range diff {
		now, ok := data[k]
		if !ok {
			now = Absent
		}
		if same(was, now) {
			delete(diff, k)
		}
	}
	if len(diff) == 0 {
		return n
	}
	succ := newRoot(data)
	n.payload = diff
	n.successor = succ
	return succ
}

// depth is the number of successor edges between n and its root.
func depth(n *node) int {
	d := 0
	for ; n.successor != nil; n = n.successor {
		d++
	}
	return d
}

func copyData(data map[interface{}]interface{}) map[interface{}]interface{} {
	c := make(map[interface{}]interface{}, len(data))
	for k, v := range data {
		c[k] = v
	}
	return c
}

func validateRoot(n *node) {
	if n.successor != nil {
		panic("bug! rerooted node still has a successor")
	}
	for k, v := range n.payload {
		if isAbsent(v) {
			panic(fmt.Sprintf("bug! root holds tombstone for key %v", k))
		}
	}
}
