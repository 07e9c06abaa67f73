package sarif

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/praetorian-inc/scanutil/pkg/types"
)

// SARIF 2.1.0 constants
const (
	SchemaURI = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"
	Version   = "2.1.0"
	ToolName  = "scanutil"
)

// ToolVersion is reported as the driver version. The CLI overrides it with
// the build version.
var ToolVersion = "dev"

// Report is the top-level SARIF report structure
type Report struct {
	Schema  string `json:"$schema"`
	Version string `json:"version"`
	Runs    []Run  `json:"runs"`
}

// Run represents a single invocation of the tool
type Run struct {
	Tool    Tool     `json:"tool"`
	Results []Result `json:"results"`
}

// Tool describes the analysis tool
type Tool struct {
	Driver Driver `json:"driver"`
}

// Driver contains tool metadata
type Driver struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Rules   []Rule `json:"rules,omitempty"`
}

// Rule represents a catalog signature
type Rule struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	ShortDescription ShortDescription  `json:"shortDescription"`
	HelpURI          string            `json:"helpUri,omitempty"`
	Properties       map[string]string `json:"properties,omitempty"`
}

// ShortDescription contains rule description text
type ShortDescription struct {
	Text string `json:"text"`
}

// Result represents a single suspicious file
type Result struct {
	RuleID              string            `json:"ruleId"`
	RuleIndex           int               `json:"ruleIndex"`
	Level               string            `json:"level"`
	Message             Message           `json:"message"`
	Locations           []Location        `json:"locations"`
	PartialFingerprints map[string]string `json:"partialFingerprints,omitempty"`
}

// Message contains the result message
type Message struct {
	Text string `json:"text"`
}

// Location describes where a result was found
type Location struct {
	PhysicalLocation PhysicalLocation `json:"physicalLocation"`
}

// PhysicalLocation specifies file location
type PhysicalLocation struct {
	ArtifactLocation ArtifactLocation `json:"artifactLocation"`
	Region           Region           `json:"region"`
}

// ArtifactLocation identifies the file
type ArtifactLocation struct {
	URI string `json:"uri"`
}

// Region specifies the line/column range
type Region struct {
	StartLine   int     `json:"startLine"`
	StartColumn int     `json:"startColumn"`
	EndLine     int     `json:"endLine"`
	EndColumn   int     `json:"endColumn"`
	Snippet     Snippet `json:"snippet,omitempty"`
}

// Snippet contains the matched text
type Snippet struct {
	Text string `json:"text"`
}

// NewReport creates a new SARIF report with initialized structure
func NewReport() *Report {
	return &Report{
		Schema:  SchemaURI,
		Version: Version,
		Runs: []Run{
			{
				Tool: Tool{
					Driver: Driver{
						Name:    ToolName,
						Version: ToolVersion,
						Rules:   []Rule{},
					},
				},
				Results: []Result{},
			},
		},
	}
}

// AddRule adds a catalog signature to the report
func (r *Report) AddRule(sig *types.Signature) {
	sarifRule := Rule{
		ID:   sig.ID,
		Name: sig.Name,
		ShortDescription: ShortDescription{
			Text: sig.Description,
		},
		Properties: map[string]string{
			"category": sig.Category.String(),
		},
	}
	if sig.Extension != "" {
		sarifRule.Properties["extension"] = sig.Extension
	}

	// Add first reference as helpUri if available
	if len(sig.References) > 0 {
		sarifRule.HelpURI = sig.References[0]
	}

	r.Runs[0].Tool.Driver.Rules = append(r.Runs[0].Tool.Driver.Rules, sarifRule)
}

// AddResult adds a detection to the report. Files in which nothing matched
// are not results; AddResult reports whether d was added.
func (r *Report) AddResult(d *types.Detection) bool {
	if !d.Suspicious() || d.Signature == nil {
		return false
	}

	region := Region{
		Snippet: Snippet{
			Text: d.Signature.Pattern,
		},
	}
	if d.Location != nil {
		// SARIF end columns are exclusive.
		region.StartLine = d.Location.Start.Line
		region.StartColumn = d.Location.Start.Column
		region.EndLine = d.Location.End.Line
		region.EndColumn = d.Location.End.Column + 1
	}

	result := Result{
		RuleID:    d.Signature.ID,
		RuleIndex: r.ruleIndex(d.Signature.ID),
		Level:     "warning",
		Message: Message{
			Text: d.Category.Label() + "-suspicious content: " + d.Signature.Name,
		},
		Locations: []Location{
			{
				PhysicalLocation: PhysicalLocation{
					ArtifactLocation: ArtifactLocation{
						URI: formatFileURI(d.Path),
					},
					Region: region,
				},
			},
		},
		PartialFingerprints: map[string]string{
			"blobId/v1": d.BlobID.Hex(),
		},
	}

	r.Runs[0].Results = append(r.Runs[0].Results, result)
	return true
}

// Build creates a report with one rule per catalog signature and one result
// per suspicious detection.
func Build(catalog []*types.Signature, detections []*types.Detection) *Report {
	report := NewReport()
	for _, sig := range catalog {
		report.AddRule(sig)
	}
	for _, d := range detections {
		report.AddResult(d)
	}
	return report
}

func (r *Report) ruleIndex(id string) int {
	for i, rule := range r.Runs[0].Tool.Driver.Rules {
		if rule.ID == id {
			return i
		}
	}
	return -1
}

// ToJSON serializes the report to JSON bytes
func (r *Report) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// formatFileURI converts a file path to SARIF URI format
// Absolute paths get file:// prefix, relative paths stay as-is
func formatFileURI(path string) string {
	if filepath.IsAbs(path) {
		// Normalize path separators for URI format
		path = filepath.ToSlash(path)
		// Ensure path starts with /
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		return "file://" + path
	}
	// Relative paths stay as-is
	return filepath.ToSlash(path)
}
