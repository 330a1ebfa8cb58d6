// Package store persists scan reports into a SQLite history database.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vigilsec/promptwall/pkg/types"
	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed scan log.
type Store struct {
	db *sql.DB
}

// Entry is one recorded scan.
type Entry struct {
	ID            string
	CreatedAt     time.Time
	Source        string
	RiskScore     float64
	RiskBand      types.RiskBand
	NormalizedLen int
	Report        *types.ScanReport
}

// Open creates or opens the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Store{db: db}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS scans (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			source TEXT NOT NULL,
			risk_score REAL NOT NULL,
			risk_band TEXT NOT NULL,
			normalized_len INTEGER NOT NULL,
			report_json TEXT NOT NULL
		)
	`)
	return err
}

// AddReport appends a scan outcome and returns its id. Source describes the
// scanned input origin (file path, "stdin", or a caller-supplied label).
func (s *Store) AddReport(source string, r *types.ScanReport) (string, error) {
	reportJSON, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("serializing report: %w", err)
	}
	id := uuid.NewString()
	_, err = s.db.Exec(
		`INSERT INTO scans (id, created_at, source, risk_score, risk_band, normalized_len, report_json) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, time.Now().UTC().Format(time.RFC3339), source, r.RiskScore, string(r.RiskBand), r.NormalizedLen, string(reportJSON),
	)
	if err != nil {
		return "", fmt.Errorf("storing scan: %w", err)
	}
	return id, nil
}

// Recent returns the newest entries, most recent first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, created_at, source, risk_score, risk_band, normalized_len, report_json FROM scans ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying scans: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var createdAt, band, reportJSON string
		if err := rows.Scan(&e.ID, &createdAt, &e.Source, &e.RiskScore, &band, &e.NormalizedLen, &reportJSON); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		e.RiskBand = types.RiskBand(band)
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			e.CreatedAt = t
		}
		var report types.ScanReport
		if err := json.Unmarshal([]byte(reportJSON), &report); err == nil {
			e.Report = &report
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
