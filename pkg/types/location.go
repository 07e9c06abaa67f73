package types

// OffsetSpan is byte range [Start, End) - half-open interval.
type OffsetSpan struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// SourcePoint is line:column position (1-based).
type SourcePoint struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Location is where a signature matched inside a file.
type Location struct {
	Offset OffsetSpan  `json:"offset"`
	Start  SourcePoint `json:"start"`
	End    SourcePoint `json:"end"`
}

// NewLocation resolves the byte span [start, end) of content to line and
// column positions. End points at the last matched byte, so a one-byte
// match starts and ends on the same column.
func NewLocation(content []byte, start, end int64) *Location {
	loc := &Location{Offset: OffsetSpan{Start: start, End: end}}
	loc.Start = pointAt(content, start)
	last := end - 1
	if last < start {
		last = start
	}
	loc.End = pointAt(content, last)
	return loc
}

// pointAt computes the 1-based line and column of a byte offset.
func pointAt(content []byte, offset int64) SourcePoint {
	p := SourcePoint{Line: 1, Column: 1}
	for i := int64(0); i < offset && i < int64(len(content)); i++ {
		if content[i] == '\n' {
			p.Line++
			p.Column = 1
		} else {
			p.Column++
		}
	}
	return p
}
