package rule

import (
	"fmt"
	"strings"

	"fortio.org/sets"
	"github.com/praetorian-inc/scanutil/pkg/types"
)

// ValidateSignature checks a single catalog entry.
func ValidateSignature(s *types.Signature) error {
	if s == nil {
		return fmt.Errorf("signature is nil")
	}

	if s.ID == "" {
		return fmt.Errorf("signature ID is required")
	}
	if s.Name == "" {
		return fmt.Errorf("signature %s: name is required", s.ID)
	}
	if s.Pattern == "" {
		return fmt.Errorf("signature %s: pattern is required", s.ID)
	}

	// Line-based scanning never sees a newline inside a line.
	if strings.ContainsRune(s.Pattern, '\n') {
		return fmt.Errorf("signature %s: pattern must not contain a newline", s.ID)
	}

	if !s.Category.Suspicious() {
		return fmt.Errorf("signature %s: category must be one of js, unix, macos", s.ID)
	}

	if s.Extension != "" && (!strings.HasPrefix(s.Extension, ".") || len(s.Extension) < 2) {
		return fmt.Errorf("signature %s: extension %q must start with a dot", s.ID, s.Extension)
	}

	if s.StructuralID != "" && s.StructuralID != s.ComputeStructuralID() {
		return fmt.Errorf("signature %s has inconsistent StructuralID", s.ID)
	}

	return nil
}

// ValidateCatalog validates every entry and rejects duplicate IDs and
// duplicate (pattern, extension) pairs.
func ValidateCatalog(catalog []*types.Signature) error {
	ids := sets.New[string]()
	patterns := sets.New[string]()

	for _, s := range catalog {
		if err := ValidateSignature(s); err != nil {
			return err
		}

		if ids.Has(s.ID) {
			return fmt.Errorf("duplicate signature ID: %s", s.ID)
		}
		ids.Add(s.ID)

		key := s.Extension + "\x00" + s.Pattern
		if patterns.Has(key) {
			return fmt.Errorf("signature %s duplicates the pattern of an earlier signature", s.ID)
		}
		patterns.Add(key)
	}

	return nil
}
