package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/praetorian-inc/scanutil/pkg/types"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a SQLite-based store.
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Writes come from a single collector; one connection also keeps
	// ":memory:" databases from splitting across pooled connections.
	db.SetMaxOpenConns(1)

	if err := CreateSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// AddScan stores a scan record.
func (s *SQLiteStore) AddScan(scan *Scan) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO scans (root, strategy, started_at, elapsed_ns)
		VALUES (?, ?, ?, ?)
	`,
		scan.Root,
		scan.Strategy,
		scan.StartedAt.UTC().Format(time.RFC3339Nano),
		int64(scan.Elapsed),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting scan: %w", err)
	}
	return res.LastInsertId()
}

// FinishScan records the elapsed time of a scan.
func (s *SQLiteStore) FinishScan(scanID int64, elapsed time.Duration) error {
	res, err := s.db.Exec("UPDATE scans SET elapsed_ns = ? WHERE id = ?", int64(elapsed), scanID)
	if err != nil {
		return fmt.Errorf("updating scan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating scan: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("unknown scan %d", scanID)
	}
	return nil
}

// AddDetection stores a detection record.
func (s *SQLiteStore) AddDetection(scanID int64, d *types.Detection) error {
	var sigID, sigName *string
	var pattern []byte
	if d.Signature != nil {
		sigID = &d.Signature.ID
		sigName = &d.Signature.Name
		pattern = []byte(d.Signature.Pattern)
	}

	var offStart, offEnd, startLine, startCol, endLine, endCol *int64
	if d.Location != nil {
		loc := d.Location
		offStart, offEnd = &loc.Offset.Start, &loc.Offset.End
		startLine, startCol = int64Ptr(loc.Start.Line), int64Ptr(loc.Start.Column)
		endLine, endCol = int64Ptr(loc.End.Line), int64Ptr(loc.End.Column)
	}

	_, err := s.db.Exec(`
		INSERT INTO detections (scan_id, path, blob_id, size, category, signature_id, signature_name, pattern,
			offset_start, offset_end, start_line, start_column, end_line, end_column)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		scanID,
		d.Path,
		d.BlobID.Hex(),
		d.Size,
		d.Category.String(),
		sigID,
		sigName,
		pattern,
		offStart,
		offEnd,
		startLine,
		startCol,
		endLine,
		endCol,
	)
	if err != nil {
		return fmt.Errorf("inserting detection: %w", err)
	}
	return nil
}

// AddError stores a per-file error.
func (s *SQLiteStore) AddError(scanID int64, e *FileError) error {
	_, err := s.db.Exec("INSERT INTO errors (scan_id, path, message) VALUES (?, ?, ?)", scanID, e.Path, e.Message)
	if err != nil {
		return fmt.Errorf("inserting error: %w", err)
	}
	return nil
}

// GetScans retrieves all scans, oldest first.
func (s *SQLiteStore) GetScans() ([]*Scan, error) {
	rows, err := s.db.Query("SELECT id, root, strategy, started_at, elapsed_ns FROM scans ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying scans: %w", err)
	}
	defer rows.Close()

	var scans []*Scan
	for rows.Next() {
		var sc Scan
		var startedAt string
		var elapsed int64
		if err := rows.Scan(&sc.ID, &sc.Root, &sc.Strategy, &startedAt, &elapsed); err != nil {
			return nil, fmt.Errorf("scanning scan: %w", err)
		}
		sc.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing scan start time: %w", err)
		}
		sc.Elapsed = time.Duration(elapsed)
		scans = append(scans, &sc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scans: %w", err)
	}
	return scans, nil
}

// GetDetections retrieves the detections of a scan, ordered by path.
func (s *SQLiteStore) GetDetections(scanID int64) ([]*types.Detection, error) {
	rows, err := s.db.Query(`
		SELECT path, blob_id, size, category, signature_id, signature_name, pattern,
			offset_start, offset_end, start_line, start_column, end_line, end_column
		FROM detections
		WHERE scan_id = ?
		ORDER BY path, id
	`, scanID)
	if err != nil {
		return nil, fmt.Errorf("querying detections: %w", err)
	}
	defer rows.Close()

	var detections []*types.Detection
	for rows.Next() {
		var d types.Detection
		var blobIDHex, category string
		var sigID, sigName sql.NullString
		var pattern []byte
		var offStart, offEnd, startLine, startCol, endLine, endCol sql.NullInt64

		err := rows.Scan(
			&d.Path,
			&blobIDHex,
			&d.Size,
			&category,
			&sigID,
			&sigName,
			&pattern,
			&offStart,
			&offEnd,
			&startLine,
			&startCol,
			&endLine,
			&endCol,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning detection: %w", err)
		}

		d.BlobID, err = types.ParseBlobID(blobIDHex)
		if err != nil {
			return nil, fmt.Errorf("parsing blob ID: %w", err)
		}

		d.Category, err = types.ParseCategory(category)
		if err != nil {
			return nil, fmt.Errorf("parsing category: %w", err)
		}

		if sigID.Valid {
			d.Signature = &types.Signature{
				ID:       sigID.String,
				Name:     sigName.String,
				Pattern:  string(pattern),
				Category: d.Category,
			}
			d.Signature.StructuralID = d.Signature.ComputeStructuralID()
		}

		if offStart.Valid {
			d.Location = &types.Location{
				Offset: types.OffsetSpan{Start: offStart.Int64, End: offEnd.Int64},
				Start:  types.SourcePoint{Line: int(startLine.Int64), Column: int(startCol.Int64)},
				End:    types.SourcePoint{Line: int(endLine.Int64), Column: int(endCol.Int64)},
			}
		}

		detections = append(detections, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating detections: %w", err)
	}
	return detections, nil
}

// GetErrors retrieves the per-file errors of a scan, ordered by path.
func (s *SQLiteStore) GetErrors(scanID int64) ([]*FileError, error) {
	rows, err := s.db.Query("SELECT path, message FROM errors WHERE scan_id = ? ORDER BY path, id", scanID)
	if err != nil {
		return nil, fmt.Errorf("querying errors: %w", err)
	}
	defer rows.Close()

	var errs []*FileError
	for rows.Next() {
		var e FileError
		if err := rows.Scan(&e.Path, &e.Message); err != nil {
			return nil, fmt.Errorf("scanning error: %w", err)
		}
		errs = append(errs, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating errors: %w", err)
	}
	return errs, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func int64Ptr(v int) *int64 {
	i := int64(v)
	return &i
}
