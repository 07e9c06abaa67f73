package store

import (
	"fmt"
	"time"

	"github.com/praetorian-inc/scanutil/pkg/types"
)

// Store provides persistence for scan results.
// This interface abstracts the underlying storage implementation,
// allowing for different backends (memory, SQLite).
type Store interface {
	// AddScan records the start of a scan batch and returns its ID.
	AddScan(scan *Scan) (int64, error)

	// FinishScan records the wall-clock time of a completed batch.
	FinishScan(scanID int64, elapsed time.Duration) error

	// AddDetection stores the outcome of one scanned file.
	AddDetection(scanID int64, d *types.Detection) error

	// AddError stores a file that could not be scanned.
	AddError(scanID int64, e *FileError) error

	// GetScans retrieves all scans, oldest first.
	GetScans() ([]*Scan, error)

	// GetDetections retrieves the detections of a scan, ordered by path.
	GetDetections(scanID int64) ([]*types.Detection, error)

	// GetErrors retrieves the per-file errors of a scan, ordered by path.
	GetErrors(scanID int64) ([]*FileError, error)

	// Close closes the underlying storage.
	Close() error
}

// Scan describes one stored scan batch.
type Scan struct {
	ID        int64         `json:"id"`
	Root      string        `json:"root"`
	Strategy  string        `json:"strategy"`
	StartedAt time.Time     `json:"started_at"`
	Elapsed   time.Duration `json:"elapsed_ns"`
}

// FileError is a file that could not be scanned.
type FileError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Config for store initialization.
type Config struct {
	// Path is the database file path.
	// Use ":memory:" for a process-local store.
	Path string
}

// New creates a Store. ":memory:" returns a MemoryStore; any other path
// opens (or creates) a SQLite database.
func New(cfg Config) (Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	if cfg.Path == ":memory:" {
		return NewMemory(), nil
	}

	return NewSQLite(cfg.Path)
}

// Latest returns the most recent scan in s.
func Latest(s Store) (*Scan, error) {
	scans, err := s.GetScans()
	if err != nil {
		return nil, err
	}
	if len(scans) == 0 {
		return nil, fmt.Errorf("no scans recorded")
	}
	return scans[len(scans)-1], nil
}
