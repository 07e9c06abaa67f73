package matcher

// Scanner drives an Automaton incrementally across any number of feeds and
// remembers the last match seen. Offsets are global to the stream since the
// last Reset. A Scanner is not safe for concurrent use; create one per
// goroutine from the shared Automaton.
type Scanner struct {
	automaton *Automaton
	state     int32
	offset    int64
	matches   int
	last      Match
	found     bool
}

// Reset rewinds the scanner to the root and forgets previous matches.
func (s *Scanner) Reset() {
	s.state = root
	s.offset = 0
	s.matches = 0
	s.last = Match{}
	s.found = false
	if p := s.automaton.nodes[root].pattern; p != none {
		s.record(p)
	}
}

func (s *Scanner) record(p int32) {
	s.last = s.automaton.match(p, s.offset)
	s.found = true
	s.matches++
}

// Feed consumes p and returns the number of positions in p at which a
// pattern was recognized.
func (s *Scanner) Feed(p []byte) int {
	a := s.automaton
	before := s.matches
	for _, c := range p {
		s.state = a.step(s.state, c)
		s.offset++
		if m := a.accept(s.state); m != none {
			s.record(m)
		}
	}
	return s.matches - before
}

// Write implements io.Writer so a Scanner can sit behind io.Copy.
func (s *Scanner) Write(p []byte) (int, error) {
	s.Feed(p)
	return len(p), nil
}

// Last returns the most recent match, or false if nothing matched yet.
func (s *Scanner) Last() (Match, bool) {
	return s.last, s.found
}

// Matches returns the number of match positions seen since Reset.
func (s *Scanner) Matches() int {
	return s.matches
}

// Offset returns the number of bytes consumed since Reset.
func (s *Scanner) Offset() int64 {
	return s.offset
}

// Depth returns the length of the longest suffix of the consumed input
// that is a prefix of some pattern. It is 0 at the root.
func (s *Scanner) Depth() int {
	return int(s.automaton.nodes[s.state].depth)
}
