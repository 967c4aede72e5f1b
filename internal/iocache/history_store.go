package iocache

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/csmstyle/internal/contract"
	"github.com/huangsam/csmstyle/schema"
)

// checkRunsTable is the name of the table for check history.
const checkRunsTable = "csmstyle_check_runs"

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db         *sql.DB
	backend    schema.DatabaseBackend
	driverName string
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore creates a new HistoryStore with the specified backend.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &HistoryStoreImpl{backend: backend}, nil
	}

	db, driverName, err := openDatabase(backend, connStr, GetHistoryDBFilePath())
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(getCreateCheckRunsQuery(backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", checkRunsTable, err)
	}

	return &HistoryStoreImpl{
		db:         db,
		backend:    backend,
		driverName: driverName,
	}, nil
}

// getCreateCheckRunsQuery returns the CREATE TABLE query for csmstyle_check_runs.
// It matches the first migration for each backend.
func getCreateCheckRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(checkRunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				file_path VARCHAR(1024) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				tools TEXT NOT NULL,
				failed_tools TEXT,
				findings INT NOT NULL,
				suppressed INT NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				file_path TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				tools TEXT NOT NULL,
				failed_tools TEXT,
				findings INT NOT NULL,
				suppressed INT NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				file_path TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				tools TEXT NOT NULL,
				failed_tools TEXT,
				findings INTEGER NOT NULL,
				suppressed INTEGER NOT NULL
			);
		`, quotedTableName)
	}
}

// RecordCheck inserts a completed check and returns its run ID.
func (hs *HistoryStoreImpl) RecordCheck(run schema.CheckRun) (int64, error) {
	if hs.db == nil {
		return 0, nil
	}

	var failedTools *string
	if len(run.FailedTools) > 0 {
		joined := strings.Join(run.FailedTools, ",")
		failedTools = &joined
	}
	durationMs := run.EndTime.Sub(run.StartTime).Milliseconds()
	args := []any{
		run.Path,
		formatTime(run.StartTime, hs.backend),
		formatTime(run.EndTime, hs.backend),
		durationMs,
		strings.Join(run.Tools, ","),
		failedTools,
		run.Findings,
		run.Suppressed,
	}

	quotedTableName := quoteTableName(checkRunsTable, hs.backend)
	columns := "file_path, start_time, end_time, run_duration_ms, tools, failed_tools, findings, suppressed"

	var runID int64
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING run_id`, quotedTableName, columns)
		if err := hs.db.QueryRow(query, args...).Scan(&runID); err != nil {
			return 0, fmt.Errorf("failed to insert check run: %w", err)
		}
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, quotedTableName, columns)
		result, err := hs.db.Exec(query, args...)
		if err != nil {
			return 0, fmt.Errorf("failed to insert check run: %w", err)
		}
		if runID, err = result.LastInsertId(); err != nil {
			return 0, fmt.Errorf("failed to read check run id: %w", err)
		}
	}
	return runID, nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if hs.db == nil {
		return status, nil
	}

	quotedTableName := quoteTableName(checkRunsTable, hs.backend)
	if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTableName)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}
	status.TableSizes[checkRunsTable] = int64(status.TotalRuns)
	if status.TotalRuns == 0 {
		return status, nil
	}

	lastRunQuery := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", quotedTableName)
	lastRunID, lastRunTime, err := hs.scanIDAndTime(hs.db.QueryRow(lastRunQuery))
	if err != nil {
		return status, fmt.Errorf("failed to get last run info: %w", err)
	}
	status.LastRunID = lastRunID
	status.LastRunTime = lastRunTime

	oldestRunQuery := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id ASC LIMIT 1", quotedTableName)
	_, oldestRunTime, err := hs.scanIDAndTime(hs.db.QueryRow(oldestRunQuery))
	if err != nil {
		return status, fmt.Errorf("failed to get oldest run time: %w", err)
	}
	status.OldestRunTime = oldestRunTime

	findingsQuery := fmt.Sprintf("SELECT COALESCE(SUM(findings), 0) FROM %s", quotedTableName)
	if err := hs.db.QueryRow(findingsQuery).Scan(&status.TotalFindings); err != nil {
		return status, fmt.Errorf("failed to get total findings: %w", err)
	}
	return status, nil
}

// scanIDAndTime reads a (run_id, start_time) row, handling SQLite's text timestamps.
func (hs *HistoryStoreImpl) scanIDAndTime(row *sql.Row) (int64, time.Time, error) {
	var id int64
	if hs.backend != schema.SQLiteBackend {
		var ts time.Time
		err := row.Scan(&id, &ts)
		return id, ts, err
	}
	var raw string
	if err := row.Scan(&id, &raw); err != nil {
		return 0, time.Time{}, err
	}
	ts, err := parseTime(raw)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to parse start_time: %w", err)
	}
	return id, ts, nil
}

// GetAllCheckRuns retrieves every recorded check in run order.
func (hs *HistoryStoreImpl) GetAllCheckRuns() ([]schema.CheckRunRecord, error) {
	if hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, file_path, start_time, end_time, run_duration_ms, tools, failed_tools, findings, suppressed
		FROM %s ORDER BY run_id`, quoteTableName(checkRunsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query check runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.CheckRunRecord
	for rows.Next() {
		var record schema.CheckRunRecord

		switch hs.backend {
		case schema.SQLiteBackend:
			var startTimeStr string
			var endTimeStr *string
			if err := rows.Scan(&record.RunID, &record.FilePath, &startTimeStr, &endTimeStr, &record.DurationMs,
				&record.Tools, &record.FailedTools, &record.Findings, &record.Suppressed); err != nil {
				return nil, fmt.Errorf("failed to scan check run: %w", err)
			}
			startTime, err := parseTime(startTimeStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			record.StartTime = startTime
			if endTimeStr != nil {
				endTime, err := parseTime(*endTimeStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &record.FilePath, &record.StartTime, &record.EndTime, &record.DurationMs,
				&record.Tools, &record.FailedTools, &record.Findings, &record.Suppressed); err != nil {
				return nil, fmt.Errorf("failed to scan check run: %w", err)
			}
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating check runs: %w", err)
	}
	return results, nil
}
