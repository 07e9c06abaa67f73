package rule

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/praetorian-inc/scanutil/pkg/types"
)

// FilterConfig specifies include and exclude patterns for signature filtering.
type FilterConfig struct {
	Include []string // Regex patterns - only matching signatures included
	Exclude []string // Regex patterns - matching signatures excluded
}

// ParsePatterns splits a comma-separated string into individual patterns.
// Patterns are trimmed of whitespace.
func ParsePatterns(patterns string) []string {
	if patterns == "" {
		return []string{}
	}

	parts := strings.Split(patterns, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// Filter applies include and exclude patterns to signature IDs.
// Include is applied first, then exclude. Empty include means "include all".
// Catalog order is preserved.
func Filter(catalog []*types.Signature, config FilterConfig) ([]*types.Signature, error) {
	if len(catalog) == 0 {
		return catalog, nil
	}

	include, err := compileAll(config.Include)
	if err != nil {
		return nil, err
	}
	exclude, err := compileAll(config.Exclude)
	if err != nil {
		return nil, err
	}

	result := make([]*types.Signature, 0, len(catalog))
	for _, s := range catalog {
		if len(include) > 0 && !matchesAny(s.ID, include) {
			continue
		}
		if matchesAny(s.ID, exclude) {
			continue
		}
		result = append(result, s)
	}
	return result, nil
}

// ForPath returns the signatures applicable to path, in catalog order.
// The extension (see Extension) is compared exactly.
func ForPath(catalog []*types.Signature, path string) []*types.Signature {
	ext := Extension(path)
	result := make([]*types.Signature, 0, len(catalog))
	for _, s := range catalog {
		if s.AppliesTo(ext) {
			result = append(result, s)
		}
	}
	return result
}

// Extension returns the extension of path's base name: everything from the
// last dot. A leading dot does not start an extension, so ".js" and
// ".bashrc" have none, while "..js" has ".js".
func Extension(path string) string {
	base := filepath.Base(path)
	if base == "." || base == ".." {
		return ""
	}
	i := strings.LastIndexByte(base, '.')
	if i <= 0 {
		return ""
	}
	return base[i:]
}

// =============================================================================
// HELPERS
// =============================================================================

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	regexes := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern %q: %w", pattern, err)
		}
		regexes = append(regexes, re)
	}
	return regexes, nil
}

func matchesAny(id string, regexes []*regexp.Regexp) bool {
	for _, re := range regexes {
		if re.MatchString(id) {
			return true
		}
	}
	return false
}
