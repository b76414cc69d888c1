package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"visualgate/types"

	_ "github.com/mattn/go-sqlite3"
)

// Run is one recorded comparison run.
type Run struct {
	ID             int64   `json:"id"`
	RefPath        string  `json:"ref_path"`
	ScreenshotPath string  `json:"screenshot_path"`
	BestMethod     string  `json:"best_method"`
	BestScore      float64 `json:"best_score"`
	Passed         bool    `json:"passed"`
	SummaryJSON    string  `json:"summary_json"`
	CreatedAt      string  `json:"created_at"`
}

// InitDatabase initializes and returns a database connection
func InitDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Create table if it doesn't exist
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ref_path TEXT NOT NULL,
		screenshot_path TEXT NOT NULL,
		best_method TEXT NOT NULL,
		best_score REAL NOT NULL,
		passed INTEGER NOT NULL,
		summary_json TEXT,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_ref_path ON runs(ref_path);
	CREATE INDEX IF NOT EXISTS idx_created_at ON runs(created_at);`

	_, err = db.Exec(createTableSQL)
	if err != nil {
		return nil, err
	}

	return db, nil
}

// OpenDatabase opens an existing database connection
func OpenDatabase(dbPath string) (*sql.DB, error) {
	return sql.Open("sqlite3", dbPath)
}

// RecordRun stores the outcome of one comparison run
func RecordRun(db *sql.DB, refPath, screenshotPath string, summary types.Summary) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("cannot marshal summary for %s: %v", refPath, err)
	}

	// Prepare statement to avoid SQL injection
	stmt, err := db.Prepare(`
		INSERT INTO runs (
			ref_path, screenshot_path, best_method, best_score, passed, summary_json, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("cannot prepare statement for %s: %v", refPath, err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(
		refPath,
		screenshotPath,
		summary.Best.Method.String(),
		summary.Best.Score,
		summary.Best.Passed,
		string(summaryJSON),
		time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("cannot insert run for %s: %v", refPath, err)
	}

	return nil
}

// RecentRuns returns the most recent comparison runs, newest first
func RecentRuns(db *sql.DB, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := db.Query(`
		SELECT id, ref_path, screenshot_path, best_method, best_score, passed, created_at
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("database query error: %v", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.RefPath, &r.ScreenshotPath, &r.BestMethod,
			&r.BestScore, &r.Passed, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning row: %v", err)
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// GateStats contains pass/fail statistics for a reference image
type GateStats struct {
	TotalRuns  int
	PassedRuns int
	LastRun    string
}

// GetGateStats retrieves statistics about past runs for a reference image
func GetGateStats(db *sql.DB, refPath string) (*GateStats, error) {
	var stats GateStats

	err := db.QueryRow("SELECT COUNT(*) FROM runs WHERE ref_path = ?", refPath).Scan(&stats.TotalRuns)
	if err != nil {
		return nil, fmt.Errorf("failed to count runs: %v", err)
	}

	err = db.QueryRow("SELECT COUNT(*) FROM runs WHERE ref_path = ? AND passed = 1", refPath).Scan(&stats.PassedRuns)
	if err != nil {
		return nil, fmt.Errorf("failed to count passed runs: %v", err)
	}

	if stats.TotalRuns > 0 {
		err = db.QueryRow("SELECT created_at FROM runs WHERE ref_path = ? ORDER BY id DESC LIMIT 1", refPath).Scan(&stats.LastRun)
		if err != nil {
			return nil, fmt.Errorf("failed to get last run: %v", err)
		}
	}

	return &stats, nil
}
