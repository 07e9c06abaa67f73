package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/praetorian-inc/scanutil/pkg/types"
)

// MemoryStore implements Store using in-memory data structures.
type MemoryStore struct {
	mu         sync.RWMutex
	scans      []*Scan
	detections map[int64][]*types.Detection // keyed by scan ID
	errors     map[int64][]*FileError       // keyed by scan ID
}

// NewMemory creates a new in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		detections: make(map[int64][]*types.Detection),
		errors:     make(map[int64][]*FileError),
	}
}

// AddScan records a scan and assigns it the next ID, starting at 1.
func (m *MemoryStore) AddScan(scan *Scan) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *scan
	stored.ID = int64(len(m.scans) + 1)
	m.scans = append(m.scans, &stored)
	return stored.ID, nil
}

// FinishScan records the elapsed time of a scan.
func (m *MemoryStore) FinishScan(scanID int64, elapsed time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	scan, err := m.scan(scanID)
	if err != nil {
		return err
	}
	scan.Elapsed = elapsed
	return nil
}

// AddDetection stores a detection.
func (m *MemoryStore) AddDetection(scanID int64, d *types.Detection) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.scan(scanID); err != nil {
		return err
	}
	m.detections[scanID] = append(m.detections[scanID], d)
	return nil
}

// AddError stores a per-file error.
func (m *MemoryStore) AddError(scanID int64, e *FileError) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.scan(scanID); err != nil {
		return err
	}
	m.errors[scanID] = append(m.errors[scanID], e)
	return nil
}

// GetScans returns copies of all scans, oldest first.
func (m *MemoryStore) GetScans() ([]*Scan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Scan, 0, len(m.scans))
	for _, s := range m.scans {
		c := *s
		result = append(result, &c)
	}
	return result, nil
}

// GetDetections returns the detections of a scan, ordered by path.
func (m *MemoryStore) GetDetections(scanID int64) ([]*types.Detection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*types.Detection, len(m.detections[scanID]))
	copy(result, m.detections[scanID])
	sort.SliceStable(result, func(i, j int) bool { return result[i].Path < result[j].Path })
	return result, nil
}

// GetErrors returns the per-file errors of a scan, ordered by path.
func (m *MemoryStore) GetErrors(scanID int64) ([]*FileError, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*FileError, len(m.errors[scanID]))
	copy(result, m.errors[scanID])
	sort.SliceStable(result, func(i, j int) bool { return result[i].Path < result[j].Path })
	return result, nil
}

// Close is a no-op for in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}

// scan must be called with mu held.
func (m *MemoryStore) scan(id int64) (*Scan, error) {
	if id < 1 || id > int64(len(m.scans)) {
		return nil, fmt.Errorf("unknown scan %d", id)
	}
	return m.scans[id-1], nil
}
