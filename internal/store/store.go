// Package store persists evaluation results in an append-only SQLite table.
// Records are written once at evaluation time and never updated; aggregates
// are recomputed from the full history on read.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verdant-ai/verdant/internal/models"

	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrNotFound is returned when a lookup matches no stored record.
var ErrNotFound = errors.New("record not found")

const schemaSQL = `
CREATE TABLE IF NOT EXISTS results (
	id TEXT PRIMARY KEY,
	provider TEXT NOT NULL,
	prompt TEXT NOT NULL,
	response_text TEXT NOT NULL,
	tokens_input INTEGER NOT NULL,
	tokens_output INTEGER NOT NULL,
	total_tokens INTEGER NOT NULL,
	inference_ms INTEGER NOT NULL,
	energy_kwh REAL NOT NULL,
	carbon_kg REAL NOT NULL,
	accuracy REAL,
	method TEXT NOT NULL,
	warnings TEXT,
	grid_intensity REAL NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_results_provider ON results(provider);
CREATE INDEX IF NOT EXISTS idx_results_created_at ON results(created_at);
`

// Store is a SQLite-backed append-only result log.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)")
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append writes one result. Results are immutable once written; a duplicate
// ID is an error, never an overwrite.
func (s *Store) Append(r *models.CandidateResult) error {
	var warnings any
	if len(r.Warnings) > 0 {
		b, err := json.Marshal(r.Warnings)
		if err != nil {
			return fmt.Errorf("encoding warnings: %w", err)
		}
		warnings = string(b)
	}

	_, err := s.db.Exec(`INSERT INTO results
		(id, provider, prompt, response_text, tokens_input, tokens_output,
		 total_tokens, inference_ms, energy_kwh, carbon_kg, accuracy, method,
		 warnings, grid_intensity, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Provider, r.Prompt, r.ResponseText, r.TokensInput, r.TokensOutput,
		r.TotalTokens, r.InferenceMs, r.EnergyKWh, r.CarbonKg, r.Accuracy,
		string(r.Method), warnings, r.GridIntensity,
		r.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting result: %w", err)
	}
	return nil
}

// AppendAll writes every result in one transaction.
func (s *Store) AppendAll(results []models.CandidateResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for i := range results {
		r := &results[i]
		var warnings any
		if len(r.Warnings) > 0 {
			b, err := json.Marshal(r.Warnings)
			if err != nil {
				return fmt.Errorf("encoding warnings: %w", err)
			}
			warnings = string(b)
		}
		_, err := tx.Exec(`INSERT INTO results
			(id, provider, prompt, response_text, tokens_input, tokens_output,
			 total_tokens, inference_ms, energy_kwh, carbon_kg, accuracy, method,
			 warnings, grid_intensity, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.Provider, r.Prompt, r.ResponseText, r.TokensInput, r.TokensOutput,
			r.TotalTokens, r.InferenceMs, r.EnergyKWh, r.CarbonKg, r.Accuracy,
			string(r.Method), warnings, r.GridIntensity,
			r.CreatedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("inserting result %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

// ReadAll returns every stored result in insertion order.
func (s *Store) ReadAll() ([]models.CandidateResult, error) {
	rows, err := s.db.Query(`SELECT
		id, provider, prompt, response_text, tokens_input, tokens_output,
		total_tokens, inference_ms, energy_kwh, carbon_kg, accuracy, method,
		warnings, grid_intensity, created_at
		FROM results ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []models.CandidateResult
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *r)
	}
	return results, rows.Err()
}

// Get returns the result with the given ID, or ErrNotFound.
func (s *Store) Get(id string) (*models.CandidateResult, error) {
	row := s.db.QueryRow(`SELECT
		id, provider, prompt, response_text, tokens_input, tokens_output,
		total_tokens, inference_ms, energy_kwh, carbon_kg, accuracy, method,
		warnings, grid_intensity, created_at
		FROM results WHERE id = ?`, id)
	r, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("result %s: %w", id, ErrNotFound)
	}
	return r, err
}

// Count returns the number of stored results.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM results").Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(row scanner) (*models.CandidateResult, error) {
	var (
		r         models.CandidateResult
		accuracy  sql.NullFloat64
		warnings  sql.NullString
		method    string
		createdAt string
	)
	err := row.Scan(
		&r.ID, &r.Provider, &r.Prompt, &r.ResponseText, &r.TokensInput,
		&r.TokensOutput, &r.TotalTokens, &r.InferenceMs, &r.EnergyKWh,
		&r.CarbonKg, &accuracy, &method, &warnings, &r.GridIntensity,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if accuracy.Valid {
		v := accuracy.Float64
		r.Accuracy = &v
	}
	if warnings.Valid && warnings.String != "" {
		if err := json.Unmarshal([]byte(warnings.String), &r.Warnings); err != nil {
			return nil, fmt.Errorf("decoding warnings for %s: %w", r.ID, err)
		}
	}
	r.Method = models.EstimationMethod(method)
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		r.CreatedAt = t
	}
	return &r, nil
}
