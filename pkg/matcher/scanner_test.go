package matcher

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanner_LastMatchAcrossFeeds(t *testing.T) {
	a := CompileStrings([]string{"he", "she", "his", "hers"})
	s := a.NewScanner()

	_, ok := s.Last()
	assert.False(t, ok)

	// "ahishers" split mid-pattern.
	assert.Equal(t, 0, s.Feed([]byte("ahi")))
	assert.Equal(t, 1, s.Feed([]byte("s")))
	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, Match{Pattern: 2, Start: 1, End: 4}, last)

	// "she" (and its suffix "he") end at 6, then "hers" at 8.
	assert.Equal(t, 1, s.Feed([]byte("her")))
	assert.Equal(t, 1, s.Feed([]byte("s")))

	last, ok = s.Last()
	require.True(t, ok)
	assert.Equal(t, Match{Pattern: 3, Start: 4, End: 8}, last)
	assert.Equal(t, int64(8), s.Offset())
	assert.Equal(t, 3, s.Matches())
}

func TestScanner_DepthAfterNonMatch(t *testing.T) {
	a := CompileStrings([]string{"abcd"})
	s := a.NewScanner()

	s.Feed([]byte("ab"))
	assert.Equal(t, 2, s.Depth())

	s.Feed([]byte("x"))
	assert.Equal(t, 0, s.Depth())
	_, ok := s.Last()
	assert.False(t, ok)

	s.Feed([]byte("abc"))
	assert.Equal(t, 3, s.Depth())
}

func TestScanner_Reset(t *testing.T) {
	a := CompileStrings([]string{"ab"})
	s := a.NewScanner()

	s.Feed([]byte("xxab"))
	_, ok := s.Last()
	require.True(t, ok)

	s.Reset()
	_, ok = s.Last()
	assert.False(t, ok)
	assert.Equal(t, int64(0), s.Offset())
	assert.Equal(t, 0, s.Matches())
	assert.Equal(t, 0, s.Depth())
}

func TestScanner_EmptyPattern(t *testing.T) {
	a := CompileStrings([]string{""})
	s := a.NewScanner()

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, Match{Pattern: 0, Start: 0, End: 0}, last)
}

func TestScanner_Writer(t *testing.T) {
	a := CompileStrings([]string{"rm -rf ~/Documents", "evil"})
	s := a.NewScanner()

	n, err := io.Copy(s, strings.NewReader("echo evil; rm -rf ~/Documents\n"))
	require.NoError(t, err)
	assert.Equal(t, int64(30), n)

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, 0, last.Pattern)
	assert.Equal(t, int64(11), last.Start)
}

func TestScanner_ChunkingIsInvisible(t *testing.T) {
	patterns := [][]byte{[]byte("abab"), []byte("bab"), []byte("b")}
	a := Compile(patterns)
	text := bytes.Repeat([]byte("xababab"), 7)

	whole := a.NewScanner()
	whole.Feed(text)

	for chunk := 1; chunk <= len(text); chunk++ {
		s := a.NewScanner()
		for i := 0; i < len(text); i += chunk {
			end := i + chunk
			if end > len(text) {
				end = len(text)
			}
			s.Feed(text[i:end])
		}
		wantLast, _ := whole.Last()
		gotLast, _ := s.Last()
		assert.Equal(t, wantLast, gotLast, "chunk size %d", chunk)
		assert.Equal(t, whole.Matches(), s.Matches(), "chunk size %d", chunk)
	}
}
