package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/praetorian-inc/scanutil/pkg/sarif"
	"github.com/praetorian-inc/scanutil/pkg/stats"
	"github.com/praetorian-inc/scanutil/pkg/types"
	"golang.org/x/term"
)

// styles holds color formatters for the human report.
type styles struct {
	heading *color.Color
	js      *color.Color
	unix    *color.Color
	macos   *color.Color
	path    *color.Color
	err     *color.Color
	meta    *color.Color
}

// newStyles creates color formatters for report output.
// enabled=false respects --color never and the NO_COLOR env var.
func newStyles(enabled bool) *styles {
	s := &styles{
		heading: color.New(color.Bold),
		js:      color.New(color.Bold, color.FgYellow),
		unix:    color.New(color.Bold, color.FgRed),
		macos:   color.New(color.Bold, color.FgMagenta),
		path:    color.New(color.FgHiWhite),
		err:     color.New(color.FgRed),
		meta:    color.New(color.FgHiBlue),
	}

	if !enabled {
		for _, c := range []*color.Color{s.heading, s.js, s.unix, s.macos, s.path, s.err, s.meta} {
			c.DisableColor()
		}
	}

	return s
}

func (s *styles) category(c types.Category) *color.Color {
	switch c {
	case types.CategoryJS:
		return s.js
	case types.CategoryUnix:
		return s.unix
	case types.CategoryMacOS:
		return s.macos
	default:
		return s.meta
	}
}

// colorEnabled resolves a --color mode. "auto" enables color only when
// stdout is a terminal and NO_COLOR is unset.
func colorEnabled(mode string) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto", "":
		return term.IsTerminal(int(os.Stdout.Fd())) && os.Getenv("NO_COLOR") == "", nil
	default:
		return false, fmt.Errorf("unknown color mode: %s (want auto, always, never)", mode)
	}
}

// fileOutcome is one row of a report: a detection or an error message.
type fileOutcome struct {
	Path      string           `json:"path"`
	Detection *types.Detection `json:"detection,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// jsonReport is the --format json document.
type jsonReport struct {
	Root  string        `json:"root,omitempty"`
	Stats *stats.Stats  `json:"stats"`
	Files []fileOutcome `json:"files"`
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// writeHuman lists suspicious files and errors, then the summary block.
func writeHuman(w io.Writer, st *styles, files []fileOutcome, summary *stats.Stats) error {
	for _, f := range files {
		switch {
		case f.Error != "":
			fmt.Fprintf(w, "%s %s: %s\n", st.err.Sprint("ERROR"), st.path.Sprint(f.Path), f.Error)
		case f.Detection != nil && f.Detection.Suspicious():
			d := f.Detection
			label := st.category(d.Category).Sprintf("%-5s", d.Category.Label())
			where := ""
			if d.Location != nil {
				where = fmt.Sprintf(":%d:%d", d.Location.Start.Line, d.Location.Start.Column)
			}
			fmt.Fprintf(w, "%s %s%s %s\n", label, st.path.Sprint(d.Path), where, st.meta.Sprintf("(%s)", d.SignatureID()))
		}
	}
	if summary.Detections() > 0 || summary.Errors > 0 {
		fmt.Fprintln(w)
	}
	return summary.Render(w)
}

// writeSARIF emits a SARIF 2.1.0 document for the suspicious detections.
func writeSARIF(w io.Writer, catalog []*types.Signature, files []fileOutcome) error {
	detections := make([]*types.Detection, 0, len(files))
	for _, f := range files {
		if f.Detection != nil {
			detections = append(detections, f.Detection)
		}
	}

	sarif.ToolVersion = currentVersion()
	jsonBytes, err := sarif.Build(catalog, detections).ToJSON()
	if err != nil {
		return fmt.Errorf("serializing SARIF: %w", err)
	}
	if _, err := w.Write(append(jsonBytes, '\n')); err != nil {
		return fmt.Errorf("writing SARIF output: %w", err)
	}
	return nil
}

// writeReport renders files and summary in the requested format.
func writeReport(w io.Writer, format, colorMode, root string, catalog []*types.Signature, files []fileOutcome, summary *stats.Stats) error {
	switch format {
	case "json":
		return writeJSON(w, jsonReport{Root: root, Stats: summary, Files: files})
	case "sarif":
		return writeSARIF(w, catalog, files)
	case "human", "":
		enabled, err := colorEnabled(colorMode)
		if err != nil {
			return err
		}
		return writeHuman(w, newStyles(enabled), files, summary)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}
