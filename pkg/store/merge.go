package store

import (
	"fmt"
	"os"
)

// MergeConfig configures the merge operation.
type MergeConfig struct {
	// SourcePaths are the database files to merge from.
	SourcePaths []string
	// DestPath is the destination database file.
	DestPath string
}

// MergeStats tracks merge operation statistics.
type MergeStats struct {
	ScansMerged      int
	DetectionsMerged int
	ErrorsMerged     int
	SourcesProcessed int
}

// MergeFiles combines multiple scanutil databases into one.
// Scans are appended to the destination under new IDs.
func MergeFiles(cfg MergeConfig) (*MergeStats, error) {
	if len(cfg.SourcePaths) == 0 {
		return nil, fmt.Errorf("no source databases specified")
	}
	if cfg.DestPath == "" {
		return nil, fmt.Errorf("destination path is required")
	}

	for _, sourcePath := range cfg.SourcePaths {
		if _, err := os.Stat(sourcePath); err != nil {
			return nil, fmt.Errorf("source database does not exist: %s", sourcePath)
		}
	}

	dst, err := New(Config{Path: cfg.DestPath})
	if err != nil {
		return nil, fmt.Errorf("opening destination database: %w", err)
	}
	defer dst.Close()

	stats := &MergeStats{}
	for _, sourcePath := range cfg.SourcePaths {
		src, err := NewSQLite(sourcePath)
		if err != nil {
			return stats, fmt.Errorf("opening source database %s: %w", sourcePath, err)
		}
		err = mergeFrom(dst, src, stats)
		src.Close()
		if err != nil {
			return stats, fmt.Errorf("merging from %s: %w", sourcePath, err)
		}
	}

	return stats, nil
}

// Merge copies every scan of sources into dst.
func Merge(dst Store, sources ...Store) (*MergeStats, error) {
	stats := &MergeStats{}
	for i, src := range sources {
		if err := mergeFrom(dst, src, stats); err != nil {
			return stats, fmt.Errorf("merging source %d: %w", i, err)
		}
	}
	return stats, nil
}

// mergeFrom copies data from a source store to the destination.
func mergeFrom(dst, src Store, stats *MergeStats) error {
	scans, err := src.GetScans()
	if err != nil {
		return err
	}

	for _, scan := range scans {
		id, err := dst.AddScan(scan)
		if err != nil {
			return err
		}
		if err := dst.FinishScan(id, scan.Elapsed); err != nil {
			return err
		}
		stats.ScansMerged++

		detections, err := src.GetDetections(scan.ID)
		if err != nil {
			return err
		}
		for _, d := range detections {
			if err := dst.AddDetection(id, d); err != nil {
				return err
			}
			stats.DetectionsMerged++
		}

		errs, err := src.GetErrors(scan.ID)
		if err != nil {
			return err
		}
		for _, e := range errs {
			if err := dst.AddError(id, e); err != nil {
				return err
			}
			stats.ErrorsMerged++
		}
	}

	stats.SourcesProcessed++
	return nil
}
