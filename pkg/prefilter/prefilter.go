package prefilter

import (
	"github.com/cloudflare/ahocorasick"
	"github.com/praetorian-inc/scanutil/pkg/types"
)

// Prefilter answers "can any signature occur in this content" with a single
// Aho-Corasick pass over the whole catalog, ignoring extension constraints.
// One Prefilter is shared by every scan task of a batch.
type Prefilter struct {
	matcher  *ahocorasick.Matcher
	catalog  []*types.Signature
	patterns []string       // distinct pattern at each dictionary index
	index    map[string]int // pattern -> dictionary index
}

// New creates a prefilter from a signature catalog.
func New(catalog []*types.Signature) *Prefilter {
	pf := &Prefilter{
		catalog: catalog,
		index:   make(map[string]int),
	}

	for _, s := range catalog {
		if s.Pattern == "" {
			continue
		}
		if _, ok := pf.index[s.Pattern]; !ok {
			pf.index[s.Pattern] = len(pf.patterns)
			pf.patterns = append(pf.patterns, s.Pattern)
		}
	}

	if len(pf.patterns) > 0 {
		pf.matcher = ahocorasick.NewStringMatcher(pf.patterns)
	}

	return pf
}

// MayMatch reports whether any catalog pattern occurs in content.
// A false result means no scan strategy can report a detection.
func (pf *Prefilter) MayMatch(content []byte) bool {
	if pf.matcher == nil {
		return false
	}
	return pf.matcher.Contains(content)
}

// Filter returns the signatures whose pattern occurs somewhere in content,
// in catalog order. It is safe for concurrent use.
func (pf *Prefilter) Filter(content []byte) []*types.Signature {
	if pf.matcher == nil {
		return nil
	}

	hits := pf.matcher.MatchThreadSafe(content)
	if len(hits) == 0 {
		return nil
	}

	found := make([]bool, len(pf.patterns))
	for _, hit := range hits {
		found[hit] = true
	}

	result := make([]*types.Signature, 0, len(hits))
	for _, s := range pf.catalog {
		if i, ok := pf.index[s.Pattern]; ok && found[i] {
			result = append(result, s)
		}
	}
	return result
}

// Len returns the number of distinct patterns in the dictionary.
func (pf *Prefilter) Len() int {
	return len(pf.patterns)
}
