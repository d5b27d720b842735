package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sarthakgaur/del-files/internal/cleanup"
)

// Actions stored in the deletions table
const (
	ActionDelete = "DELETE"
	ActionSkip   = "SKIP"
	ActionError  = "ERROR"
	ActionDryRun = "DRY_RUN"
)

// DeletionDB manages the SQLite database for deletion history
type DeletionDB struct {
	db *sql.DB
}

// DeletionRecord represents a single processed match
type DeletionRecord struct {
	ID           int64     `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	RunID        string    `json:"run_id"`
	Action       string    `json:"action"`
	Path         string    `json:"path"`
	FileName     string    `json:"file_name"`
	ObjectType   string    `json:"object_type"`
	Size         int64     `json:"size"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewDeletionDB creates a new database connection and initializes schema
func NewDeletionDB(dbPath string) (*DeletionDB, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	// file: prefix with _loc=auto enables automatic DATETIME parsing
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_loc=auto")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	// Ping does not create the file, a query does
	if _, err = db.Exec("SELECT 1"); err != nil {
		return nil, fmt.Errorf("failed to initialize database (check permissions on %s): %w", dbPath, err)
	}

	if _, err = db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if _, err = db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	ddb := &DeletionDB{db: db}
	if err = ddb.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return ddb, nil
}

// initSchema creates tables and indexes if they don't exist
func (d *DeletionDB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS deletions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		run_id TEXT NOT NULL,
		action TEXT NOT NULL,
		path TEXT NOT NULL,
		file_name TEXT,
		object_type TEXT NOT NULL,
		size INTEGER NOT NULL,
		error_message TEXT,

		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_timestamp ON deletions(timestamp);
	CREATE INDEX IF NOT EXISTS idx_run_id ON deletions(run_id);
	CREATE INDEX IF NOT EXISTS idx_action ON deletions(action);
	CREATE INDEX IF NOT EXISTS idx_path ON deletions(path);
	CREATE INDEX IF NOT EXISTS idx_size ON deletions(size);

	-- Metadata table for schema versioning
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	_, err := d.db.Exec(schema)
	return err
}

// RecordDeletion inserts a single record. Timestamp defaults to now.
func (d *DeletionDB) RecordDeletion(r DeletionRecord) error {
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}
	if r.FileName == "" {
		r.FileName = filepath.Base(r.Path)
	}

	query := `
	INSERT INTO deletions (
		timestamp, run_id, action, path, file_name, object_type, size, error_message
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := d.db.Exec(
		query,
		r.Timestamp,
		r.RunID,
		r.Action,
		r.Path,
		r.FileName,
		r.ObjectType,
		r.Size,
		nullString(r.ErrorMessage),
	)
	return err
}

// RecordOutcome stores one removal outcome of run runID
func (d *DeletionDB) RecordOutcome(runID string, o cleanup.Outcome, isDir bool) error {
	r := DeletionRecord{
		RunID:      runID,
		Action:     o.Action(),
		Path:       o.Path,
		ObjectType: objectType(isDir),
		Size:       o.Bytes,
	}
	if o.Err != nil {
		r.ErrorMessage = o.Err.Error()
	}
	return d.RecordDeletion(r)
}

func objectType(isDir bool) string {
	if isDir {
		return "directory"
	}
	return "file"
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Close closes the database connection
func (d *DeletionDB) Close() error {
	return d.db.Close()
}

// Vacuum optimizes the database (run after pruning)
func (d *DeletionDB) Vacuum() error {
	_, err := d.db.Exec("VACUUM")
	return err
}

// DatabaseStats describes the history file itself
type DatabaseStats struct {
	TotalRecords int64     `json:"total_records"`
	SizeBytes    int64     `json:"database_size_bytes"`
	OldestRecord time.Time `json:"oldest_record,omitempty"`
	NewestRecord time.Time `json:"newest_record,omitempty"`
}

// GetDatabaseStats returns database statistics
func (d *DeletionDB) GetDatabaseStats() (*DatabaseStats, error) {
	stats := &DatabaseStats{}

	if err := d.db.QueryRow("SELECT COUNT(*) FROM deletions").Scan(&stats.TotalRecords); err != nil {
		return nil, err
	}

	var pageCount, pageSize int64
	if err := d.db.QueryRow("PRAGMA page_count").Scan(&pageCount); err != nil {
		return nil, err
	}
	if err := d.db.QueryRow("PRAGMA page_size").Scan(&pageSize); err != nil {
		return nil, err
	}
	stats.SizeBytes = pageCount * pageSize

	// Aggregates lose the DATETIME column type, so they come back as text
	var oldest, newest sql.NullString
	err := d.db.QueryRow("SELECT MIN(timestamp), MAX(timestamp) FROM deletions").Scan(&oldest, &newest)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	if t, ok := parseTimestamp(oldest); ok {
		stats.OldestRecord = t
	}
	if t, ok := parseTimestamp(newest); ok {
		stats.NewestRecord = t
	}

	return stats, nil
}

// timestampLayouts are the forms go-sqlite3 writes time.Time values in
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

func parseTimestamp(s sql.NullString) (time.Time, bool) {
	if !s.Valid || s.String == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s.String); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
