package types

import (
	"crypto/sha1"
	"encoding/hex"
)

// Signature is one catalog entry: an exact byte string tied to a detection
// category and optionally to a file extension.
type Signature struct {
	ID           string   `json:"id"`                    // e.g., "unix.rm_documents"
	Name         string   `json:"name"`                  // human-readable name
	Pattern      string   `json:"pattern"`               // raw bytes to search for
	Extension    string   `json:"extension,omitempty"`   // e.g. ".js"; empty applies to every file
	Category     Category `json:"category"`              // outcome reported when Pattern matches
	StructuralID string   `json:"structural_id"`         // SHA-1 of pattern (computed)
	Description  string   `json:"description,omitempty"` // optional
	References   []string `json:"references,omitempty"`  // documentation URLs
}

// ComputeStructuralID computes the SHA-1 of the raw pattern bytes.
func (s *Signature) ComputeStructuralID() string {
	h := sha1.Sum([]byte(s.Pattern))
	return hex.EncodeToString(h[:])
}

// AppliesTo reports whether the signature's extension constraint accepts a
// file extension. ext must include the leading dot; comparison is exact and
// case-sensitive.
func (s *Signature) AppliesTo(ext string) bool {
	return s.Extension == "" || s.Extension == ext
}
