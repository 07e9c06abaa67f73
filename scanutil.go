// Package scanutil scans files for known malicious byte signatures.
//
// Every file is classified into one category: JS-suspicious,
// Unix-suspicious, macOS-suspicious or none. The first signature to occur
// in the file decides the category; matching uses an Aho-Corasick automaton
// built over the signatures applicable to the file's extension.
//
// # Basic Usage
//
//	scanner, err := scanutil.NewScanner()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := scanner.ScanDirectory(ctx, "/path/to/samples")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(result.Stats)
//
// # Single files
//
//	d, err := scanner.ScanFile("/path/to/app.js")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if d.Suspicious() {
//	    fmt.Printf("%s: %s\n", d.Path, d.Signature.Name)
//	}
package scanutil

import (
	"context"
	"fmt"

	"github.com/praetorian-inc/scanutil/pkg/enum"
	"github.com/praetorian-inc/scanutil/pkg/prefilter"
	"github.com/praetorian-inc/scanutil/pkg/rule"
	"github.com/praetorian-inc/scanutil/pkg/scanner"
	"github.com/praetorian-inc/scanutil/pkg/store"
	"github.com/praetorian-inc/scanutil/pkg/types"
)

// Re-export commonly used types for convenience.
// Users can import just "github.com/praetorian-inc/scanutil" without subpackages.
type (
	// Signature is one catalog entry.
	Signature = types.Signature

	// Detection is the outcome of scanning one file.
	Detection = types.Detection

	// Category classifies a detection.
	Category = types.Category

	// Strategy selects the search algorithm.
	Strategy = scanner.Strategy

	// Result is the outcome of a directory scan.
	Result = scanner.Result
)

// Re-export category and strategy constants.
const (
	CategoryJS    = types.CategoryJS
	CategoryUnix  = types.CategoryUnix
	CategoryMacOS = types.CategoryMacOS
	CategoryNone  = types.CategoryNone

	StrategyAutomaton = scanner.StrategyAutomaton
	StrategyNaive     = scanner.StrategyNaive
)

// Scanner classifies files against a fixed signature catalog. It is safe for
// concurrent use.
type Scanner struct {
	config    *scannerConfig
	prefilter *prefilter.Prefilter
}

// scannerConfig holds scanner configuration.
type scannerConfig struct {
	signatures     []*types.Signature
	strategy       scanner.Strategy
	maxConcurrency int
	prefilter      bool
	enum           enum.Config
	store          store.Store
}

// Option configures a Scanner.
type Option func(*scannerConfig)

// WithSignatures uses a custom catalog instead of the builtin one. The
// catalog is validated by NewScanner.
func WithSignatures(signatures []*Signature) Option {
	return func(c *scannerConfig) {
		c.signatures = signatures
	}
}

// WithStrategy selects the search algorithm. Default is StrategyAutomaton.
func WithStrategy(s Strategy) Option {
	return func(c *scannerConfig) {
		c.strategy = s
	}
}

// WithMaxConcurrency caps concurrent file scans in ScanDirectory.
// Default is 0, one goroutine per file.
func WithMaxConcurrency(n int) Option {
	return func(c *scannerConfig) {
		c.maxConcurrency = n
	}
}

// WithPrefilter gates every scan behind a single whole-catalog pass.
func WithPrefilter() Option {
	return func(c *scannerConfig) {
		c.prefilter = true
	}
}

// WithEnumeration controls which files ScanDirectory visits. Root is ignored.
func WithEnumeration(cfg enum.Config) Option {
	return func(c *scannerConfig) {
		c.enum = cfg
	}
}

// WithStore persists directory scan results. The caller owns the store.
func WithStore(s store.Store) Option {
	return func(c *scannerConfig) {
		c.store = s
	}
}

// NewScanner creates a new Scanner with the given options.
//
// By default, the scanner:
//   - Uses the builtin signature catalog
//   - Uses the Aho-Corasick strategy
//   - Scans only the regular files directly inside a directory
func NewScanner(opts ...Option) (*Scanner, error) {
	config := &scannerConfig{}
	for _, opt := range opts {
		opt(config)
	}

	if config.signatures == nil {
		sigs, err := rule.Builtin()
		if err != nil {
			return nil, fmt.Errorf("loading builtin signatures: %w", err)
		}
		config.signatures = sigs
	} else if err := rule.ValidateCatalog(config.signatures); err != nil {
		return nil, fmt.Errorf("invalid signatures: %w", err)
	}

	s := &Scanner{config: config}
	if config.prefilter {
		s.prefilter = prefilter.New(config.signatures)
	}
	return s, nil
}

// ScanDirectory scans the files of dir concurrently and returns per-file
// outcomes with aggregated statistics.
func (s *Scanner) ScanDirectory(ctx context.Context, dir string) (*Result, error) {
	return scanner.ScanDirectory(ctx, dir, s.config.signatures, scanner.Options{
		Strategy:       s.config.strategy,
		MaxConcurrency: s.config.maxConcurrency,
		Prefilter:      s.config.prefilter,
		Enum:           s.config.enum,
		Store:          s.config.store,
	})
}

// ScanFile reads and classifies a single file.
func (s *Scanner) ScanFile(path string) (*Detection, error) {
	return scanner.ScanFile(path, s.config.signatures, scanner.FileOptions{
		Strategy:  s.config.strategy,
		Prefilter: s.prefilter,
	})
}

// ScanBytes classifies in-memory content. name supplies the extension.
func (s *Scanner) ScanBytes(name string, content []byte) *Detection {
	return scanner.ScanBytes(name, content, s.config.signatures, s.config.strategy)
}

// ScanString is ScanBytes for string content.
func (s *Scanner) ScanString(name, content string) *Detection {
	return s.ScanBytes(name, []byte(content))
}

// SignatureCount returns the number of signatures loaded.
func (s *Scanner) SignatureCount() int {
	return len(s.config.signatures)
}

// Signatures returns a copy of the loaded catalog.
func (s *Scanner) Signatures() []*Signature {
	sigs := make([]*Signature, len(s.config.signatures))
	copy(sigs, s.config.signatures)
	return sigs
}

// LoadBuiltinSignatures returns the builtin catalog in order.
// This can be used to inspect available signatures or create a subset.
//
// Example:
//
//	sigs, err := scanutil.LoadBuiltinSignatures()
//	if err != nil {
//	    return err
//	}
//	unixOnly, err := rule.Filter(sigs, rule.FilterConfig{Include: []string{`^unix\.`}})
//	if err != nil {
//	    return err
//	}
//	scanner, err := scanutil.NewScanner(scanutil.WithSignatures(unixOnly))
func LoadBuiltinSignatures() ([]*Signature, error) {
	sigs, err := rule.Builtin()
	if err != nil {
		return nil, err
	}
	out := make([]*Signature, len(sigs))
	copy(out, sigs)
	return out, nil
}
