package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/praetorian-inc/scanutil/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	s, err := New(Config{Path: ":memory:"})
	require.NoError(t, err)
	defer s.Close()
	assert.IsType(t, &MemoryStore{}, s)

	s2, err := New(Config{Path: filepath.Join(t.TempDir(), "scan.db")})
	require.NoError(t, err)
	defer s2.Close()
	assert.IsType(t, &SQLiteStore{}, s2)

	_, err = New(Config{})
	assert.Error(t, err)
}

func TestStore_Interface(t *testing.T) {
	var _ Store = (*MemoryStore)(nil)
	var _ Store = (*SQLiteStore)(nil)
}

func TestStore_RoundTrip(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			defer s.Close()

			started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
			id, err := s.AddScan(&Scan{Root: "/tmp/samples", Strategy: "automaton", StartedAt: started})
			require.NoError(t, err)
			assert.Equal(t, int64(1), id)

			sig := &types.Signature{ID: "unix.rm_documents", Name: "Recursive Documents wipe", Pattern: "rm -rf ~/Documents", Category: types.CategoryUnix}
			content := []byte("#!/bin/sh\nrm -rf ~/Documents\n")
			hit := types.NewDetection("/tmp/samples/b.sh", content, sig, types.NewLocation(content, 10, 28))
			clean := types.NoDetection("/tmp/samples/a.txt", []byte("hello"))

			require.NoError(t, s.AddDetection(id, hit))
			require.NoError(t, s.AddDetection(id, clean))
			require.NoError(t, s.AddError(id, &FileError{Path: "/tmp/samples/c.bin", Message: "permission denied"}))
			require.NoError(t, s.FinishScan(id, 3*time.Second))

			scans, err := s.GetScans()
			require.NoError(t, err)
			require.Len(t, scans, 1)
			assert.Equal(t, "/tmp/samples", scans[0].Root)
			assert.Equal(t, "automaton", scans[0].Strategy)
			assert.True(t, started.Equal(scans[0].StartedAt))
			assert.Equal(t, 3*time.Second, scans[0].Elapsed)

			detections, err := s.GetDetections(id)
			require.NoError(t, err)
			require.Len(t, detections, 2)

			assert.Equal(t, "/tmp/samples/a.txt", detections[0].Path)
			assert.Equal(t, types.CategoryNone, detections[0].Category)
			assert.Nil(t, detections[0].Signature)
			assert.Nil(t, detections[0].Location)
			assert.Equal(t, clean.BlobID, detections[0].BlobID)

			got := detections[1]
			assert.Equal(t, hit.Path, got.Path)
			assert.Equal(t, hit.BlobID, got.BlobID)
			assert.Equal(t, hit.Size, got.Size)
			assert.Equal(t, types.CategoryUnix, got.Category)
			require.NotNil(t, got.Signature)
			assert.Equal(t, sig.ID, got.Signature.ID)
			assert.Equal(t, sig.Pattern, got.Signature.Pattern)
			require.NotNil(t, got.Location)
			assert.Equal(t, *hit.Location, *got.Location)

			errs, err := s.GetErrors(id)
			require.NoError(t, err)
			require.Len(t, errs, 1)
			assert.Equal(t, "permission denied", errs[0].Message)

			latest, err := Latest(s)
			require.NoError(t, err)
			assert.Equal(t, id, latest.ID)
		})
	}
}

func TestStore_UnknownScan(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			defer s.Close()

			assert.Error(t, s.FinishScan(42, time.Second))

			detections, err := s.GetDetections(42)
			require.NoError(t, err)
			assert.Empty(t, detections)

			_, err = Latest(s)
			assert.Error(t, err)
		})
	}
}

func TestSQLiteStore_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.db")

	s, err := NewSQLite(path)
	require.NoError(t, err)
	id, err := s.AddScan(&Scan{Root: "dir", Strategy: "naive", StartedAt: time.Now()})
	require.NoError(t, err)
	require.NoError(t, s.AddDetection(id, types.NoDetection("dir/a", []byte("a"))))
	require.NoError(t, s.Close())

	s, err = NewSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	detections, err := s.GetDetections(id)
	require.NoError(t, err)
	assert.Len(t, detections, 1)
}

// ===== HELPERS

func backends() map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemory()
		},
		"sqlite": func(t *testing.T) Store {
			s, err := NewSQLite(filepath.Join(t.TempDir(), "scan.db"))
			require.NoError(t, err)
			return s
		},
	}
}
