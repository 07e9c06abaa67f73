package store

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// CreateSchema creates the database schema if it doesn't exist.
func CreateSchema(db *sql.DB) error {
	if err := createSchemaVersionTable(db); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	if err := createScansTable(db); err != nil {
		return fmt.Errorf("creating scans table: %w", err)
	}

	if err := createDetectionsTable(db); err != nil {
		return fmt.Errorf("creating detections table: %w", err)
	}

	if err := createErrorsTable(db); err != nil {
		return fmt.Errorf("creating errors table: %w", err)
	}

	return nil
}

func createSchemaVersionTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count)
	if err != nil {
		return err
	}

	if count == 0 {
		_, err = db.Exec("INSERT INTO schema_version (version) VALUES (?)", SchemaVersion)
		return err
	}

	var version int
	if err := db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return err
	}
	if version != SchemaVersion {
		return fmt.Errorf("unsupported schema version %d (want %d)", version, SchemaVersion)
	}
	return nil
}

func createScansTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS scans (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			root TEXT NOT NULL,
			strategy TEXT NOT NULL,
			started_at TEXT NOT NULL,
			elapsed_ns INTEGER NOT NULL DEFAULT 0
		)
	`)
	return err
}

func createDetectionsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS detections (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			scan_id INTEGER NOT NULL REFERENCES scans(id),
			path TEXT NOT NULL,
			blob_id TEXT NOT NULL,
			size INTEGER NOT NULL,
			category TEXT NOT NULL,
			signature_id TEXT,
			signature_name TEXT,
			pattern BLOB,
			offset_start INTEGER,
			offset_end INTEGER,
			start_line INTEGER,
			start_column INTEGER,
			end_line INTEGER,
			end_column INTEGER
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_detections_scan_id ON detections(scan_id)
	`)
	return err
}

func createErrorsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS errors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			scan_id INTEGER NOT NULL REFERENCES scans(id),
			path TEXT NOT NULL,
			message TEXT NOT NULL
		)
	`)
	return err
}
