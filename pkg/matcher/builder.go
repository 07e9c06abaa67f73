package matcher

import (
	"fortio.org/safecast"
)

// none marks an absent arena reference (no fail link, no nearest terminal,
// not terminal).
const none int32 = -1

// root is the arena index of the trie root.
const root int32 = 0

// edge is a labelled trie transition to a child node.
type edge struct {
	b  byte
	to int32
}

// node is one trie state. Children are owned through edges; fail and
// nearest are non-owning arena indices computed by Build.
type node struct {
	edges   []edge
	fail    int32 // longest proper suffix that is also a trie prefix
	nearest int32 // closest terminal reachable through fail links
	pattern int32 // index of the pattern ending here, or none
	depth   int32
}

// child returns the arena index reached on b, or none.
func (n *node) child(b byte) int32 {
	for _, e := range n.edges {
		if e.b == b {
			return e.to
		}
	}
	return none
}

func (n *node) terminal() bool {
	return n.pattern != none
}

// Builder accumulates patterns into a trie. It is the mutable half of the
// engine lifecycle: add every pattern, then call Build to obtain an
// immutable Automaton.
type Builder struct {
	nodes      []node
	patterns   [][]byte
	duplicates []int
}

// NewBuilder creates an empty builder holding only the root state.
func NewBuilder() *Builder {
	return &Builder{
		nodes: []node{{fail: none, nearest: none, pattern: none}},
	}
}

// Add inserts pattern into the trie and returns its pattern index.
//
// Indices are assigned in insertion order and never reused. An empty
// pattern marks the root terminal. If the same byte string was added
// before, the node keeps the first index and the new index is recorded as
// a duplicate.
func (b *Builder) Add(pattern []byte) int {
	cur := root
	for _, c := range pattern {
		next := b.nodes[cur].child(c)
		if next == none {
			next = safecast.MustConv[int32](len(b.nodes))
			b.nodes = append(b.nodes, node{
				fail:    none,
				nearest: none,
				pattern: none,
				depth:   b.nodes[cur].depth + 1,
			})
			b.nodes[cur].edges = append(b.nodes[cur].edges, edge{b: c, to: next})
		}
		cur = next
	}

	index := len(b.patterns)
	b.patterns = append(b.patterns, append([]byte(nil), pattern...))

	if b.nodes[cur].terminal() {
		b.duplicates = append(b.duplicates, index)
	} else {
		b.nodes[cur].pattern = safecast.MustConv[int32](index)
	}
	return index
}

// AddString is Add for string patterns.
func (b *Builder) AddString(pattern string) int {
	return b.Add([]byte(pattern))
}

// Len returns the number of patterns added so far.
func (b *Builder) Len() int {
	return len(b.patterns)
}

// Duplicates returns the indices of patterns that repeated an earlier
// pattern and therefore never appear in search results.
func (b *Builder) Duplicates() []int {
	return append([]int(nil), b.duplicates...)
}

// Build computes fail links and nearest-terminal shortcuts and returns an
// immutable Automaton over every pattern added so far.
//
// The builder's arena is copied, so the builder may keep receiving patterns
// and be built again; previously built automata are unaffected.
func (b *Builder) Build() *Automaton {
	nodes := make([]node, len(b.nodes))
	for i := range b.nodes {
		nodes[i] = b.nodes[i]
		nodes[i].edges = append([]edge(nil), b.nodes[i].edges...)
	}

	// Breadth-first, so every fail target is final before its dependents.
	queue := make([]int32, 0, len(nodes))
	nodes[root].fail = none
	nodes[root].nearest = none
	for _, e := range nodes[root].edges {
		nodes[e.to].fail = root
		queue = append(queue, e.to)
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		fail := nodes[cur].fail
		if nodes[fail].terminal() {
			nodes[cur].nearest = fail
		} else {
			nodes[cur].nearest = nodes[fail].nearest
		}

		for _, e := range nodes[cur].edges {
			f := nodes[cur].fail
			target := root
			for f != none {
				if next := nodes[f].child(e.b); next != none {
					target = next
					break
				}
				f = nodes[f].fail
			}
			nodes[e.to].fail = target
			queue = append(queue, e.to)
		}
	}

	patterns := make([][]byte, len(b.patterns))
	copy(patterns, b.patterns)

	return &Automaton{
		nodes:    nodes,
		patterns: patterns,
	}
}

// Compile builds an automaton over patterns in order, so pattern index i
// is patterns[i].
func Compile(patterns [][]byte) *Automaton {
	b := NewBuilder()
	for _, p := range patterns {
		b.Add(p)
	}
	return b.Build()
}

// CompileStrings is Compile for string patterns.
func CompileStrings(patterns []string) *Automaton {
	b := NewBuilder()
	for _, p := range patterns {
		b.AddString(p)
	}
	return b.Build()
}
