package matcher

// Match is one pattern occurrence. Start and End are byte offsets into the
// searched input, End exclusive.
type Match struct {
	Pattern int
	Start   int64
	End     int64
}

// Automaton is a finalized Aho-Corasick automaton. It is read-only and safe
// for concurrent use; all per-search state lives on the caller's stack or in
// a Scanner.
type Automaton struct {
	nodes    []node
	patterns [][]byte
}

// Len returns the number of patterns, duplicates included.
func (a *Automaton) Len() int {
	return len(a.patterns)
}

// Pattern returns the pattern with index i.
func (a *Automaton) Pattern(i int) []byte {
	return a.patterns[i]
}

// NodeCount returns the number of trie states including the root.
func (a *Automaton) NodeCount() int {
	return len(a.nodes)
}

// step advances state on c, following fail links until a transition exists
// and falling back to the root when the chain is exhausted.
func (a *Automaton) step(state int32, c byte) int32 {
	for s := state; s != none; s = a.nodes[s].fail {
		if next := a.nodes[s].child(c); next != none {
			return next
		}
	}
	return root
}

// accept returns the pattern recognized in state: the state's own pattern
// (the longest one ending here) or else its nearest terminal's.
func (a *Automaton) accept(state int32) int32 {
	n := &a.nodes[state]
	if n.terminal() {
		return n.pattern
	}
	if n.nearest != none {
		return a.nodes[n.nearest].pattern
	}
	return none
}

func (a *Automaton) match(pattern int32, end int64) Match {
	return Match{
		Pattern: int(pattern),
		Start:   end - int64(len(a.patterns[pattern])),
		End:     end,
	}
}

// FindFirst returns the first match in text: the one ending earliest, and
// among those the longest pattern. The cursor starts at the root on every
// call. An empty pattern matches at offset 0 of any text.
func (a *Automaton) FindFirst(text []byte) (Match, bool) {
	if p := a.nodes[root].pattern; p != none {
		return a.match(p, 0), true
	}
	state := root
	for i, c := range text {
		state = a.step(state, c)
		if p := a.accept(state); p != none {
			return a.match(p, int64(i)+1), true
		}
	}
	return Match{}, false
}

// Contains reports whether any pattern occurs in text.
func (a *Automaton) Contains(text []byte) bool {
	_, ok := a.FindFirst(text)
	return ok
}

// NewScanner returns a stateful scanner positioned at the root.
func (a *Automaton) NewScanner() *Scanner {
	s := &Scanner{automaton: a}
	s.Reset()
	return s
}
