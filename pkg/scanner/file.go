package scanner

import (
	"bytes"
	"fmt"
	"os"

	"github.com/praetorian-inc/scanutil/pkg/matcher"
	"github.com/praetorian-inc/scanutil/pkg/prefilter"
	"github.com/praetorian-inc/scanutil/pkg/rule"
	"github.com/praetorian-inc/scanutil/pkg/types"
)

// FileOptions configures a single-file scan.
type FileOptions struct {
	Strategy Strategy

	// Prefilter, when set, short-circuits files in which no catalog pattern
	// occurs. It must be built over a superset of the catalog passed to the
	// scan from validated (non-empty) patterns. Results are identical with
	// and without it.
	Prefilter *prefilter.Prefilter
}

// ScanFile reads path and reports the first signature applicable to its
// extension that occurs in it. Read failures are returned as errors, never
// as a CategoryNone detection.
func ScanFile(path string, catalog []*types.Signature, opts FileOptions) (*types.Detection, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return scanContent(path, content, catalog, opts), nil
}

// ScanBytes is ScanFile over in-memory content. name supplies the extension.
func ScanBytes(name string, content []byte, catalog []*types.Signature, strategy Strategy) *types.Detection {
	return scanContent(name, content, catalog, FileOptions{Strategy: strategy})
}

func scanContent(path string, content []byte, catalog []*types.Signature, opts FileOptions) *types.Detection {
	sigs := rule.ForPath(catalog, path)
	if len(sigs) == 0 {
		return types.NoDetection(path, content)
	}

	var (
		sig   *types.Signature
		start int64
		end   int64
		found bool
	)
	switch opts.Strategy {
	case StrategyNaive:
		if opts.Prefilter != nil {
			sigs = intersect(sigs, opts.Prefilter.Filter(content))
		}
		sig, start, end, found = naiveFirst(content, sigs)
	default:
		if opts.Prefilter != nil && !opts.Prefilter.MayMatch(content) {
			break
		}
		sig, start, end, found = automatonFirst(content, sigs)
	}

	if !found {
		return types.NoDetection(path, content)
	}
	return types.NewDetection(path, content, sig, types.NewLocation(content, start, end))
}

// automatonFirst builds a fresh engine over sigs, in order, and returns the
// first match.
func automatonFirst(content []byte, sigs []*types.Signature) (*types.Signature, int64, int64, bool) {
	b := matcher.NewBuilder()
	for _, s := range sigs {
		b.AddString(s.Pattern)
	}
	m, ok := b.Build().FindFirst(content)
	if !ok {
		return nil, 0, 0, false
	}
	return sigs[m.Pattern], m.Start, m.End, true
}

// naiveFirst searches each line for every signature. The winner is the
// match ending earliest; ties go to the longer pattern, then to the
// signature listed first. Patterns never span lines, so the first line with
// any hit holds the winner.
func naiveFirst(content []byte, sigs []*types.Signature) (*types.Signature, int64, int64, bool) {
	if len(sigs) == 0 {
		return nil, 0, 0, false
	}

	var lineStart int64
	rest := content
	for {
		line := rest
		next := bytes.IndexByte(rest, '\n')
		if next >= 0 {
			line = rest[:next]
		}

		best := -1
		bestEnd := 0
		for i, s := range sigs {
			idx := bytes.Index(line, []byte(s.Pattern))
			if idx < 0 {
				continue
			}
			e := idx + len(s.Pattern)
			if best < 0 || e < bestEnd || (e == bestEnd && len(s.Pattern) > len(sigs[best].Pattern)) {
				best, bestEnd = i, e
			}
		}
		if best >= 0 {
			end := lineStart + int64(bestEnd)
			return sigs[best], end - int64(len(sigs[best].Pattern)), end, true
		}

		if next < 0 {
			return nil, 0, 0, false
		}
		lineStart += int64(next + 1)
		rest = rest[next+1:]
	}
}

// intersect keeps the entries of sigs that also appear in present,
// preserving the order of sigs.
func intersect(sigs, present []*types.Signature) []*types.Signature {
	if len(present) == 0 {
		return nil
	}
	keep := make(map[*types.Signature]bool, len(present))
	for _, s := range present {
		keep[s] = true
	}
	result := make([]*types.Signature, 0, len(sigs))
	for _, s := range sigs {
		if keep[s] {
			result = append(result, s)
		}
	}
	return result
}
