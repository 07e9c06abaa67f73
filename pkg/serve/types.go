package serve

import (
	"encoding/json"

	"github.com/praetorian-inc/scanutil/pkg/stats"
	"github.com/praetorian-inc/scanutil/pkg/types"
)

// Request represents an incoming NDJSON request
type Request struct {
	Type    string          `json:"type"` // "scan" | "scan_file" | "scan_dir" | "close"
	Payload json.RawMessage `json:"payload"`
}

// ScanPayload is the payload for "scan" requests. Name supplies the file
// extension used to select signatures, e.g. "page.js".
type ScanPayload struct {
	Content string `json:"content"`
	Name    string `json:"name"`
}

// ScanFilePayload is the payload for "scan_file" requests.
type ScanFilePayload struct {
	Path string `json:"path"`
}

// ScanDirPayload is the payload for "scan_dir" requests.
type ScanDirPayload struct {
	Path           string `json:"path"`
	Recursive      bool   `json:"recursive,omitempty"`
	MaxConcurrency int    `json:"max_concurrency,omitempty"`
	Prefilter      bool   `json:"prefilter,omitempty"`
}

// FileResult is one file of a "scan_dir" response.
type FileResult struct {
	Path      string           `json:"path"`
	Detection *types.Detection `json:"detection,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// ScanDirData is the data field of "scan_dir" responses.
type ScanDirData struct {
	Stats *stats.Stats `json:"stats"`
	Files []FileResult `json:"files"`
}

// Response represents an outgoing NDJSON response
type Response struct {
	Success bool            `json:"success"`
	Type    string          `json:"type"` // "ready" | request type | "decode" | "unknown"
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ReadyData is the data field for "ready" responses
type ReadyData struct {
	Version    string `json:"version"`
	Strategy   string `json:"strategy"`
	Signatures int    `json:"signatures"`
}
