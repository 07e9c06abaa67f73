package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"fortio.org/duration"
	"fortio.org/log"
	"fortio.org/progressbar"
	"github.com/praetorian-inc/scanutil/pkg/enum"
	"github.com/praetorian-inc/scanutil/pkg/rule"
	"github.com/praetorian-inc/scanutil/pkg/scanner"
	"github.com/praetorian-inc/scanutil/pkg/store"
	"github.com/praetorian-inc/scanutil/pkg/types"
	"github.com/spf13/cobra"
)

var (
	scanStrategy         scanner.Strategy
	scanMaxConcurrency   int
	scanPrefilter        bool
	scanRecursive        bool
	scanIncludeHidden    bool
	scanFollowSymlinks   bool
	scanRespectGitignore bool
	scanMaxFileSize      int64
	scanRulesPath        string
	scanRulesInclude     string
	scanRulesExclude     string
	scanOutputFormat     string
	scanOutputPath       string
	scanProgress         bool
	scanColor            string
	scanTimeout          string
)

var scanCmd = &cobra.Command{
	Use:   "scan <directory>",
	Short: "Scan a directory for malicious signatures",
	Long: `Scan every regular file of a directory against the signature catalog and
print a summary of processed, JS-suspicious, Unix-suspicious, macOS-suspicious
and clean files with the elapsed time.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanStrategy = defaultStrategy()
	scanCmd.Flags().Var(&scanStrategy, "strategy", "Matching strategy: automaton, naive")
	scanCmd.Flags().IntVar(&scanMaxConcurrency, "max-concurrency", envConfig.MaxConcurrency, "Maximum files scanned at once (0 for one goroutine per file)")
	scanCmd.Flags().BoolVar(&scanPrefilter, "prefilter", false, "Skip files that contain no catalog pattern before the full scan")
	scanCmd.Flags().BoolVarP(&scanRecursive, "recursive", "r", false, "Descend into subdirectories")
	scanCmd.Flags().BoolVar(&scanIncludeHidden, "include-hidden", false, "Include hidden files and directories")
	scanCmd.Flags().BoolVar(&scanFollowSymlinks, "follow-symlinks", false, "Scan symlinks that point to regular files")
	scanCmd.Flags().BoolVar(&scanRespectGitignore, "respect-gitignore", false, "Skip paths ignored by the root .gitignore")
	scanCmd.Flags().Int64Var(&scanMaxFileSize, "max-file-size", 0, "Maximum file size to scan in bytes (0 for no limit)")
	scanCmd.Flags().StringVar(&scanRulesPath, "rules", "", "Path to a custom signature catalog (YAML) replacing the builtin one")
	scanCmd.Flags().StringVar(&scanRulesInclude, "rules-include", "", "Include signatures whose ID matches a regex (comma-separated)")
	scanCmd.Flags().StringVar(&scanRulesExclude, "rules-exclude", "", "Exclude signatures whose ID matches a regex (comma-separated)")
	scanCmd.Flags().StringVar(&scanOutputFormat, "format", "human", "Output format: human, json, sarif")
	scanCmd.Flags().StringVar(&scanOutputPath, "output", envConfig.Output, "Results database path (:memory: to keep results in memory)")
	scanCmd.Flags().BoolVar(&scanProgress, "progress", false, "Show a progress bar on stderr")
	scanCmd.Flags().StringVar(&scanColor, "color", envConfig.Color, "Color output: auto, always, never")
	scanCmd.Flags().StringVar(&scanTimeout, "timeout", envConfig.Timeout, "Abort the scan after this long, e.g. 30s or 1h (empty for no limit)")
}

// defaultStrategy resolves SCANUTIL_STRATEGY, falling back to the automaton.
func defaultStrategy() scanner.Strategy {
	s, err := scanner.ParseStrategy(envConfig.Strategy)
	if err != nil {
		log.Warnf("Ignoring %sSTRATEGY: %v", envPrefix, err)
		return scanner.StrategyAutomaton
	}
	return s
}

func runScan(cmd *cobra.Command, args []string) error {
	dir := args[0]

	catalog, err := loadCatalog(scanRulesPath, scanRulesInclude, scanRulesExclude)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if scanTimeout != "" {
		timeout, err := duration.Parse(scanTimeout)
		if err != nil {
			return fmt.Errorf("invalid --timeout %q: %w", scanTimeout, err)
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	s, err := store.New(store.Config{Path: scanOutputPath})
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}
	defer s.Close()

	opts := scanner.Options{
		Strategy:       scanStrategy,
		MaxConcurrency: scanMaxConcurrency,
		Prefilter:      scanPrefilter,
		Enum: enum.Config{
			Recursive:        scanRecursive,
			IncludeHidden:    scanIncludeHidden,
			MaxFileSize:      scanMaxFileSize,
			FollowSymlinks:   scanFollowSymlinks,
			RespectGitignore: scanRespectGitignore,
		},
		Store: s,
	}
	if scanProgress {
		bar := progressbar.NewBar()
		defer bar.End()
		opts.OnResult = func(_ scanner.FileResult, done, total int) {
			bar.Progress(100. * float64(done) / float64(total))
		}
	}

	start := time.Now()
	result, scanErr := scanner.ScanDirectory(ctx, dir, catalog, opts)
	if result == nil {
		return fmt.Errorf("scanning %s: %w", dir, scanErr)
	}
	log.LogVf("Scan %d finished in %v", result.ScanID, time.Since(start))

	files := make([]fileOutcome, 0, len(result.Files))
	for _, f := range result.Files {
		files = append(files, outcomeOf(f))
	}
	if err := writeReport(cmd.OutOrStdout(), scanOutputFormat, scanColor, dir, catalog, files, result.Stats); err != nil {
		return err
	}

	if scanErr != nil {
		if errors.Is(scanErr, context.DeadlineExceeded) {
			return fmt.Errorf("scan timed out after %s: partial results shown", scanTimeout)
		}
		return fmt.Errorf("scan incomplete: %w", scanErr)
	}
	return nil
}

// loadCatalog returns the builtin catalog, or the one at path when set,
// narrowed by --rules-include and --rules-exclude.
func loadCatalog(path, include, exclude string) ([]*types.Signature, error) {
	catalog, err := readCatalog(path)
	if err != nil {
		return nil, err
	}

	catalog, err = rule.Filter(catalog, rule.FilterConfig{
		Include: rule.ParsePatterns(include),
		Exclude: rule.ParsePatterns(exclude),
	})
	if err != nil {
		return nil, fmt.Errorf("filtering signatures: %w", err)
	}
	log.LogVf("Loaded %d signatures", len(catalog))
	return catalog, nil
}

// readCatalog loads and validates a catalog file, or the builtin catalog
// when path is empty.
func readCatalog(path string) ([]*types.Signature, error) {
	if path == "" {
		catalog, err := rule.Builtin()
		if err != nil {
			return nil, fmt.Errorf("loading builtin signatures: %w", err)
		}
		return catalog, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading signatures: %w", err)
	}
	catalog, err := rule.NewLoader().Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading signatures from %s: %w", path, err)
	}
	if err := rule.ValidateCatalog(catalog); err != nil {
		return nil, fmt.Errorf("loading signatures from %s: %w", path, err)
	}
	return catalog, nil
}

func outcomeOf(r scanner.FileResult) fileOutcome {
	if r.Err != nil {
		return fileOutcome{Path: r.Path, Error: r.Err.Error()}
	}
	return fileOutcome{Path: r.Path, Detection: r.Detection}
}
