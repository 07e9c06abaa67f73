package scanner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"fortio.org/log"
	"github.com/praetorian-inc/scanutil/pkg/enum"
	"github.com/praetorian-inc/scanutil/pkg/prefilter"
	"github.com/praetorian-inc/scanutil/pkg/stats"
	"github.com/praetorian-inc/scanutil/pkg/store"
	"github.com/praetorian-inc/scanutil/pkg/types"
	"golang.org/x/sync/errgroup"
)

// ErrNotDirectory is returned when the scan target is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// Options configures a directory scan.
type Options struct {
	Strategy Strategy

	// MaxConcurrency caps the number of files scanned at once.
	// 0 launches one goroutine per file.
	MaxConcurrency int

	// Prefilter enables the whole-catalog Aho-Corasick gate.
	Prefilter bool

	// Enum controls which files are scanned. Root is ignored; the scanned
	// directory is always the one passed to ScanDirectory.
	Enum enum.Config

	// Store, when set, receives the scan record and every per-file outcome.
	Store store.Store

	// OnResult is called on the collector goroutine after each file.
	OnResult func(r FileResult, done, total int)
}

// FileResult is the outcome of one file: a detection or an error.
type FileResult struct {
	Path      string
	Detection *types.Detection
	Err       error
}

// Result is the outcome of a directory scan.
type Result struct {
	ScanID int64 // 0 when no store is configured
	Stats  *stats.Stats
	Files  []FileResult // sorted by path
}

// ScanDirectory scans every eligible file of dir concurrently and folds the
// outcomes into statistics. Per-file failures are counted, logged and
// reported in Result.Files; they never stop the batch. An error is returned
// only when the batch could not run, the context was cancelled, or results
// could not be persisted; in the last two cases the partial Result is
// returned too.
func ScanDirectory(ctx context.Context, dir string, catalog []*types.Signature, opts Options) (*Result, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", dir, ErrNotDirectory)
	}

	start := time.Now()

	cfg := opts.Enum
	cfg.Root = dir
	paths, err := enum.NewFilesystemEnumerator(cfg).Enumerate(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerating %s: %w", dir, err)
	}
	log.LogVf("Scanning %d files in %s with %s strategy", len(paths), dir, opts.Strategy)

	fileOpts := FileOptions{Strategy: opts.Strategy}
	if opts.Prefilter {
		fileOpts.Prefilter = prefilter.New(catalog)
	}

	c := newCollector(opts, len(paths))
	if opts.Store != nil {
		c.scanID, err = opts.Store.AddScan(&store.Scan{
			Root:      dir,
			Strategy:  opts.Strategy.String(),
			StartedAt: start,
		})
		if err != nil {
			return nil, fmt.Errorf("recording scan: %w", err)
		}
	}

	results := make(chan FileResult, len(paths))
	done := make(chan struct{})
	go func() {
		defer close(done)
		for r := range results {
			c.add(r)
		}
	}()

	var g errgroup.Group
	if opts.MaxConcurrency > 0 {
		g.SetLimit(opts.MaxConcurrency)
	}
	for _, path := range paths {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results <- scanTask(path, catalog, fileOpts)
			return nil
		})
	}
	_ = g.Wait() // tasks never return errors
	close(results)
	<-done

	elapsed := time.Since(start)
	c.stats.SetElapsed(elapsed)
	if opts.Store != nil && c.storeErr == nil {
		c.storeErr = opts.Store.FinishScan(c.scanID, elapsed)
	}

	sort.Slice(c.files, func(i, j int) bool { return c.files[i].Path < c.files[j].Path })
	result := &Result{ScanID: c.scanID, Stats: c.stats, Files: c.files}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	if c.storeErr != nil {
		return result, fmt.Errorf("persisting results: %w", c.storeErr)
	}
	return result, nil
}

// scanTask scans one file, converting a panic into a per-file error.
func scanTask(path string, catalog []*types.Signature, opts FileOptions) (r FileResult) {
	r.Path = path
	defer func() {
		if p := recover(); p != nil {
			r.Detection = nil
			r.Err = fmt.Errorf("scanning %s: panic: %v", path, p)
		}
	}()
	r.Detection, r.Err = ScanFile(path, catalog, opts)
	return r
}

// collector is owned by a single goroutine; nothing in it is shared.
type collector struct {
	opts     Options
	total    int
	stats    *stats.Stats
	files    []FileResult
	scanID   int64
	storeErr error
}

func newCollector(opts Options, total int) *collector {
	return &collector{
		opts:  opts,
		total: total,
		stats: stats.New(),
		files: make([]FileResult, 0, total),
	}
}

func (c *collector) add(r FileResult) {
	c.files = append(c.files, r)

	if r.Err != nil {
		c.stats.IncErrors()
		log.Warnf("Failed to scan %s: %v", r.Path, r.Err)
		c.persist(func(s store.Store) error {
			return s.AddError(c.scanID, &store.FileError{Path: r.Path, Message: r.Err.Error()})
		})
	} else {
		c.stats.Update(r.Detection)
		if r.Detection.Suspicious() {
			log.LogVf("%s: %s (%s)", r.Path, r.Detection.Category.Label(), r.Detection.SignatureID())
		}
		c.persist(func(s store.Store) error {
			return s.AddDetection(c.scanID, r.Detection)
		})
	}

	if c.opts.OnResult != nil {
		c.opts.OnResult(r, len(c.files), c.total)
	}
}

// persist applies write to the store, keeping the first failure and
// skipping further writes once one has failed.
func (c *collector) persist(write func(store.Store) error) {
	if c.opts.Store == nil || c.storeErr != nil {
		return
	}
	if err := write(c.opts.Store); err != nil {
		c.storeErr = err
		log.Errf("Failed to persist results: %v", err)
	}
}
