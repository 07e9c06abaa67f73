// Package stats aggregates per-file scan outcomes into batch counters.
package stats

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/praetorian-inc/scanutil/pkg/types"
)

// Stats holds the counters of one scan batch. It is not safe for concurrent
// use; the orchestrator folds results on a single goroutine.
type Stats struct {
	Processed int           `json:"processed"`
	JS        int           `json:"js"`
	Unix      int           `json:"unix"`
	MacOS     int           `json:"macos"`
	Errors    int           `json:"errors"`
	Elapsed   time.Duration `json:"elapsed_ns"`
}

// New returns zeroed statistics.
func New() *Stats {
	return &Stats{}
}

// Update counts one successfully scanned file.
func (s *Stats) Update(d *types.Detection) {
	s.Processed++
	switch d.Category {
	case types.CategoryJS:
		s.JS++
	case types.CategoryUnix:
		s.Unix++
	case types.CategoryMacOS:
		s.MacOS++
	}
}

// IncErrors counts one file that could not be scanned.
func (s *Stats) IncErrors() {
	s.Errors++
}

// SetElapsed records the batch wall-clock time.
func (s *Stats) SetElapsed(d time.Duration) {
	s.Elapsed = d
}

// Merge adds other's counters into s. Elapsed times are summed.
func (s *Stats) Merge(other *Stats) {
	s.Processed += other.Processed
	s.JS += other.JS
	s.Unix += other.Unix
	s.MacOS += other.MacOS
	s.Errors += other.Errors
	s.Elapsed += other.Elapsed
}

// Count returns the number of detections in category c.
func (s *Stats) Count(c types.Category) int {
	switch c {
	case types.CategoryJS:
		return s.JS
	case types.CategoryUnix:
		return s.Unix
	case types.CategoryMacOS:
		return s.MacOS
	case types.CategoryNone:
		return s.Processed - s.JS - s.Unix - s.MacOS
	default:
		return 0
	}
}

// Detections returns the number of suspicious files.
func (s *Stats) Detections() int {
	return s.JS + s.Unix + s.MacOS
}

// Render writes the fixed-format summary block.
func (s *Stats) Render(w io.Writer) error {
	_, err := io.WriteString(w, s.String())
	return err
}

func (s *Stats) String() string {
	var b strings.Builder
	b.WriteString("====== Scan result ======\n")
	fmt.Fprintf(&b, "Processed files: %d\n", s.Processed)
	for _, c := range types.Categories {
		fmt.Fprintf(&b, "%s detects: %d\n", c.Label(), s.Count(c))
	}
	fmt.Fprintf(&b, "Errors: %d\n", s.Errors)
	fmt.Fprintf(&b, "Execution time: %s\n", FormatElapsed(s.Elapsed))
	b.WriteString("=========================\n")
	return b.String()
}

// FormatElapsed renders d as zero-padded HH:MM:SS, truncating sub-second
// precision. Hours are not wrapped at 24.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	sec := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, sec)
}
