package database

import (
	"database/sql"
	"time"
)

const selectColumns = `
	SELECT id, timestamp, run_id, action, path, file_name, object_type, size,
	       error_message, created_at
	FROM deletions
`

// GetRecentDeletions returns the N most recent records
func (d *DeletionDB) GetRecentDeletions(limit int) ([]DeletionRecord, error) {
	return d.queryDeletions(selectColumns+`
	ORDER BY timestamp DESC, id DESC
	LIMIT ?
	`, limit)
}

// GetDeletionsByRun returns the records of one run in processing order
func (d *DeletionDB) GetDeletionsByRun(runID string) ([]DeletionRecord, error) {
	return d.queryDeletions(selectColumns+`
	WHERE run_id = ?
	ORDER BY id ASC
	`, runID)
}

// GetDeletionsByAction returns records filtered by action type
func (d *DeletionDB) GetDeletionsByAction(action string) ([]DeletionRecord, error) {
	return d.queryDeletions(selectColumns+`
	WHERE action = ?
	ORDER BY timestamp DESC, id DESC
	`, action)
}

// GetLargestDeletions returns the N largest deletions by size
func (d *DeletionDB) GetLargestDeletions(limit int) ([]DeletionRecord, error) {
	return d.queryDeletions(selectColumns+`
	WHERE action = 'DELETE'
	ORDER BY size DESC
	LIMIT ?
	`, limit)
}

// GetTotalSpaceFreed returns total bytes freed in a time range
func (d *DeletionDB) GetTotalSpaceFreed(start, end time.Time) (int64, error) {
	query := `
	SELECT COALESCE(SUM(size), 0)
	FROM deletions
	WHERE action = 'DELETE' AND timestamp BETWEEN ? AND ?
	`

	var total int64
	err := d.db.QueryRow(query, start, end).Scan(&total)
	return total, err
}

// GetDeletionCountByAction returns count of records since a time, grouped by action
func (d *DeletionDB) GetDeletionCountByAction(since time.Time) (map[string]int, error) {
	query := `
	SELECT action, COUNT(*)
	FROM deletions
	WHERE timestamp >= ?
	GROUP BY action
	`

	rows, err := d.db.Query(query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var action string
		var count int
		if err := rows.Scan(&action, &count); err != nil {
			return nil, err
		}
		counts[action] = count
	}

	return counts, rows.Err()
}

// DeletionStats holds aggregated statistics
type DeletionStats struct {
	TotalDeletions  int            `json:"total_deletions"`
	TotalSkipped    int            `json:"total_skipped"`
	TotalErrors     int            `json:"total_errors"`
	TotalDryRun     int            `json:"total_dry_run"`
	TotalRuns       int            `json:"total_runs"`
	TotalSpaceFreed int64          `json:"total_space_freed"`
	ByAction        map[string]int `json:"by_action"`
	StartDate       time.Time      `json:"start_date"`
	EndDate         time.Time      `json:"end_date"`
}

// GetDeletionStats returns statistics for the last days days
func (d *DeletionDB) GetDeletionStats(days int) (*DeletionStats, error) {
	now := time.Now()
	since := now.AddDate(0, 0, -days)

	stats := &DeletionStats{
		StartDate: since,
		EndDate:   now,
	}

	err := d.db.QueryRow(`
		SELECT
			COUNT(CASE WHEN action = 'DELETE' THEN 1 END),
			COUNT(CASE WHEN action = 'SKIP' THEN 1 END),
			COUNT(CASE WHEN action = 'ERROR' THEN 1 END),
			COUNT(CASE WHEN action = 'DRY_RUN' THEN 1 END),
			COUNT(DISTINCT run_id)
		FROM deletions
		WHERE timestamp >= ?
	`, since).Scan(&stats.TotalDeletions, &stats.TotalSkipped, &stats.TotalErrors, &stats.TotalDryRun, &stats.TotalRuns)
	if err != nil {
		return nil, err
	}

	stats.TotalSpaceFreed, err = d.GetTotalSpaceFreed(since, now)
	if err != nil {
		return nil, err
	}

	stats.ByAction, err = d.GetDeletionCountByAction(since)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// DeleteOldRecords removes records older than specified days
func (d *DeletionDB) DeleteOldRecords(olderThanDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -olderThanDays)

	result, err := d.db.Exec(`
		DELETE FROM deletions WHERE timestamp < ?
	`, cutoff)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// queryDeletions is a helper function to execute queries and scan results
func (d *DeletionDB) queryDeletions(query string, args ...interface{}) ([]DeletionRecord, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []DeletionRecord
	for rows.Next() {
		var r DeletionRecord
		var fileName, errMsg sql.NullString

		err := rows.Scan(
			&r.ID, &r.Timestamp, &r.RunID, &r.Action, &r.Path, &fileName,
			&r.ObjectType, &r.Size, &errMsg, &r.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		r.FileName = fileName.String
		r.ErrorMessage = errMsg.String

		records = append(records, r)
	}

	return records, rows.Err()
}
