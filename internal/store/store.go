// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store keeps the history of classification runs in SQLite so
// results can be queried and exported after the fact.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/clause-classifier/pkg/types"
)

const dbFile = "runs.db"

// ErrRunNotFound is returned when a run ID is not in the database.
var ErrRunNotFound = errors.New("run not found")

// Store manages the run history database.
type Store struct {
	db         *sql.DB
	dataDir    string
	maxResults int
}

// NewStore opens or creates dataDir/runs.db and its schema.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 100
	}

	s := &Store{db: db, dataDir: cfg.DataDir, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			total_contracts INTEGER NOT NULL,
			total_clauses INTEGER NOT NULL,
			standard_count INTEGER NOT NULL,
			nonstandard_count INTEGER NOT NULL,
			omitted_count INTEGER NOT NULL,
			summary TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			contract_id TEXT NOT NULL,
			market TEXT,
			attribute_key TEXT NOT NULL,
			label TEXT NOT NULL,
			score REAL NOT NULL,
			reason TEXT,
			evidence TEXT,
			error TEXT,
			UNIQUE(run_id, contract_id, attribute_key)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_contract ON results(contract_id)`,
		`CREATE INDEX IF NOT EXISTS idx_results_label ON results(label)`,
		`CREATE TABLE IF NOT EXISTS pair_errors (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			contract_id TEXT NOT NULL,
			market TEXT,
			attribute_key TEXT NOT NULL,
			error TEXT NOT NULL,
			message TEXT
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveRun records a finished run with its results and pair errors in one
// transaction.
func (s *Store) SaveRun(ctx context.Context, r *types.RunReport) error {
	summary, err := json.Marshal(r.Summary)
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, total_contracts, total_clauses,
			standard_count, nonstandard_count, omitted_count, summary)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, formatTime(r.StartedAt), formatTime(r.FinishedAt),
		r.Summary.TotalContracts, r.Summary.TotalClauses,
		r.Summary.StandardCount, r.Summary.NonStandardCount, r.Summary.OmittedCount,
		string(summary),
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", r.RunID, err)
	}

	resStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO results (run_id, contract_id, market, attribute_key, label, score, reason, evidence, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing result insert: %w", err)
	}
	defer resStmt.Close()

	for _, res := range r.Results {
		evidence, _ := json.Marshal(res.Evidence)
		_, err := resStmt.ExecContext(ctx,
			r.RunID, res.ContractID, string(res.Market), string(res.AttributeKey),
			string(res.Label), res.Score, res.Reason, string(evidence), res.Error,
		)
		if err != nil {
			return fmt.Errorf("inserting result %s/%s: %w", res.ContractID, res.AttributeKey, err)
		}
	}

	errStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO pair_errors (run_id, contract_id, market, attribute_key, error, message)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing pair error insert: %w", err)
	}
	defer errStmt.Close()

	for _, pe := range r.Errors {
		_, err := errStmt.ExecContext(ctx,
			r.RunID, pe.ContractID, string(pe.Market), string(pe.AttributeKey), pe.Error, pe.Message,
		)
		if err != nil {
			return fmt.Errorf("inserting pair error %s/%s: %w", pe.ContractID, pe.AttributeKey, err)
		}
	}

	return tx.Commit()
}

// RunInfo is the headline of one stored run.
type RunInfo struct {
	RunID            string    `json:"run_id" yaml:"run_id"`
	StartedAt        time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt       time.Time `json:"finished_at" yaml:"finished_at"`
	TotalContracts   int       `json:"total_contracts" yaml:"total_contracts"`
	TotalClauses     int       `json:"total_clauses" yaml:"total_clauses"`
	StandardCount    int       `json:"standard_count" yaml:"standard_count"`
	NonStandardCount int       `json:"nonstandard_count" yaml:"nonstandard_count"`
	OmittedCount     int       `json:"omitted_count" yaml:"omitted_count"`
}

// ListRuns returns up to limit runs, newest first. A non-positive limit
// uses the configured maximum.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunInfo, error) {
	if limit <= 0 {
		limit = s.maxResults
	}
	query, args, err := sq.Select("id", "started_at", "finished_at", "total_contracts", "total_clauses",
		"standard_count", "nonstandard_count", "omitted_count").
		From("runs").
		OrderBy("started_at DESC", "id").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var (
			ri                RunInfo
			started, finished string
		)
		if err := rows.Scan(&ri.RunID, &started, &finished, &ri.TotalContracts, &ri.TotalClauses,
			&ri.StandardCount, &ri.NonStandardCount, &ri.OmittedCount); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		ri.StartedAt = parseTime(started)
		ri.FinishedAt = parseTime(finished)
		runs = append(runs, ri)
	}
	return runs, rows.Err()
}

// LatestRunID returns the ID of the most recently started run.
func (s *Store) LatestRunID(ctx context.Context) (string, error) {
	runs, err := s.ListRuns(ctx, 1)
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", ErrRunNotFound
	}
	return runs[0].RunID, nil
}

// ResultFilter narrows Results. Empty fields match everything.
type ResultFilter struct {
	RunID        string
	ContractID   string
	AttributeKey types.AttributeKey
	Label        types.Label
	MaxResults   int
}

// StoredResult is a ClassificationResult tagged with its run.
type StoredResult struct {
	RunID                      string `json:"run_id" yaml:"run_id"`
	types.ClassificationResult `yaml:",inline"`
}

// Results returns stored results matching f, ordered by run and insertion.
func (s *Store) Results(ctx context.Context, f ResultFilter) ([]StoredResult, error) {
	limit := f.MaxResults
	if limit <= 0 {
		limit = s.maxResults
	}

	q := sq.Select("run_id", "contract_id", "market", "attribute_key", "label", "score", "reason", "evidence", "error").
		From("results").
		OrderBy("run_id", "rowid").
		Limit(uint64(limit))
	if f.RunID != "" {
		q = q.Where(sq.Eq{"run_id": f.RunID})
	}
	if f.ContractID != "" {
		q = q.Where(sq.Eq{"contract_id": f.ContractID})
	}
	if f.AttributeKey != "" {
		q = q.Where(sq.Eq{"attribute_key": string(f.AttributeKey)})
	}
	if f.Label != "" {
		q = q.Where(sq.Eq{"label": string(f.Label)})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	var out []StoredResult
	for rows.Next() {
		var (
			sr                  StoredResult
			market, attr, label string
			reason, evidence, e sql.NullString
		)
		if err := rows.Scan(&sr.RunID, &sr.ContractID, &market, &attr, &label, &sr.Score, &reason, &evidence, &e); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		sr.Market = types.Market(market)
		sr.AttributeKey = types.AttributeKey(attr)
		sr.Label = types.Label(label)
		sr.Reason = reason.String
		sr.Error = e.String
		if evidence.Valid && evidence.String != "" {
			_ = json.Unmarshal([]byte(evidence.String), &sr.Evidence)
		}
		out = append(out, sr)
	}
	return out, rows.Err()
}

// LoadRun rebuilds the full report of a stored run.
func (s *Store) LoadRun(ctx context.Context, runID string) (*types.RunReport, error) {
	var started, finished, summary string
	err := s.db.QueryRowContext(ctx,
		`SELECT started_at, finished_at, summary FROM runs WHERE id = ?`, runID,
	).Scan(&started, &finished, &summary)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying run %s: %w", runID, err)
	}

	r := &types.RunReport{
		RunID:      runID,
		StartedAt:  parseTime(started),
		FinishedAt: parseTime(finished),
		Results:    []types.ClassificationResult{},
		Errors:     []types.PairError{},
	}
	if err := json.Unmarshal([]byte(summary), &r.Summary); err != nil {
		return nil, fmt.Errorf("parsing summary of run %s: %w", runID, err)
	}

	results, err := s.Results(ctx, ResultFilter{RunID: runID, MaxResults: exportLimit})
	if err != nil {
		return nil, err
	}
	for _, sr := range results {
		r.Results = append(r.Results, sr.ClassificationResult)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT contract_id, market, attribute_key, error, message FROM pair_errors WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying pair errors: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			pe           types.PairError
			market, attr string
			msg          sql.NullString
		)
		if err := rows.Scan(&pe.ContractID, &market, &attr, &pe.Error, &msg); err != nil {
			return nil, fmt.Errorf("scanning pair error: %w", err)
		}
		pe.Market = types.Market(market)
		pe.AttributeKey = types.AttributeKey(attr)
		pe.Message = msg.String
		r.Errors = append(r.Errors, pe)
	}
	return r, rows.Err()
}

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
