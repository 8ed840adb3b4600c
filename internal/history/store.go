// Package history persists duplicate-scan runs to SQLite so repeated scans
// of the same dataset can be compared over time.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Run is one recorded dedupe scan.
type Run struct {
	ID             string
	Dataset        string
	Threshold      float64
	RecordCount    int
	PairCount      int
	DuplicateCount int
	StartedAt      time.Time
	FinishedAt     time.Time
}

// DuplicatePair is one above-threshold pair found during a run.
type DuplicatePair struct {
	Index1      int
	Index2      int
	Similarity  float64
	Verdict     string
	MatchedTags []string
	ReportJSON  string
}

// Store manages the scan history database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if needed) the history database at dbPath.
// Pass ":memory:" for an ephemeral store.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	// busy_timeout first so the remaining pragmas wait on locks instead of
	// failing when another scan holds the database.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordRun stores a run and its duplicate pairs in one transaction and
// returns the generated run ID.
func (s *Store) RecordRun(ctx context.Context, run Run, pairs []DuplicatePair) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin history transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO scan_runs
		 (id, dataset, threshold, record_count, pair_count, duplicate_count, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Dataset, run.Threshold, run.RecordCount, run.PairCount,
		run.DuplicateCount, run.StartedAt, run.FinishedAt)
	if err != nil {
		return "", fmt.Errorf("insert scan run: %w", err)
	}

	for _, pair := range pairs {
		tags, err := json.Marshal(pair.MatchedTags)
		if err != nil {
			return "", fmt.Errorf("marshal matched tags: %w", err)
		}
		report := pair.ReportJSON
		if report == "" {
			report = "{}"
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO duplicate_pairs
			 (run_id, index1, index2, similarity, verdict, matched_tags, report)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID, pair.Index1, pair.Index2, pair.Similarity, pair.Verdict, string(tags), report)
		if err != nil {
			return "", fmt.Errorf("insert duplicate pair: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit history transaction: %w", err)
	}
	return run.ID, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, dataset, threshold, record_count, pair_count, duplicate_count, started_at, finished_at
		 FROM scan_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list scan runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Dataset, &run.Threshold, &run.RecordCount,
			&run.PairCount, &run.DuplicateCount, &run.StartedAt, &run.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetPairs returns the duplicate pairs recorded for a run, ordered by
// similarity descending.
func (s *Store) GetPairs(ctx context.Context, runID string) ([]DuplicatePair, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT index1, index2, similarity, verdict, matched_tags, report
		 FROM duplicate_pairs WHERE run_id = ? ORDER BY similarity DESC, index1, index2`, runID)
	if err != nil {
		return nil, fmt.Errorf("get duplicate pairs: %w", err)
	}
	defer rows.Close()

	var pairs []DuplicatePair
	for rows.Next() {
		var pair DuplicatePair
		var tags string
		if err := rows.Scan(&pair.Index1, &pair.Index2, &pair.Similarity,
			&pair.Verdict, &tags, &pair.ReportJSON); err != nil {
			return nil, fmt.Errorf("scan pair row: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &pair.MatchedTags); err != nil {
			return nil, fmt.Errorf("unmarshal matched tags: %w", err)
		}
		pairs = append(pairs, pair)
	}
	return pairs, rows.Err()
}
