// Package sqlite stores run records in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/utm/pkg/domain"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Store implements ports.RunStore on SQLite.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path and applies the schema.
// Use ":memory:" for a throwaway database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite has a single writer; one connection also keeps ":memory:" databases alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save upserts a run record.
func (s *Store) Save(ctx context.Context, rec *domain.RunRecord) error {
	variant, _ := rec.Variant.MarshalText()
	outcome := ""
	if rec.Halted() {
		outcome = rec.Outcome.String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, machine, variant, input, outcome, steps, tape, head, state, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			machine = excluded.machine,
			variant = excluded.variant,
			input = excluded.input,
			outcome = excluded.outcome,
			steps = excluded.steps,
			tape = excluded.tape,
			head = excluded.head,
			state = excluded.state,
			error = excluded.error,
			started_at = excluded.started_at,
			finished_at = excluded.finished_at
	`,
		rec.ID,
		rec.Machine,
		string(variant),
		rec.Input,
		outcome,
		rec.Steps,
		rec.Tape,
		rec.Head,
		string(rec.State),
		rec.Error,
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
		rec.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

// Load reads a run record.
func (s *Store) Load(ctx context.Context, runID string) (*domain.RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, machine, variant, input, outcome, steps, tape, head, state, error, started_at, finished_at
		FROM runs WHERE id = ?
	`, runID)

	var (
		rec                 domain.RunRecord
		variant, outcome    string
		state               string
		startedAt, finished string
	)
	err := row.Scan(&rec.ID, &rec.Machine, &variant, &rec.Input, &outcome, &rec.Steps,
		&rec.Tape, &rec.Head, &state, &rec.Error, &startedAt, &finished)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRunNotFound
		}
		return nil, fmt.Errorf("load run: %w", err)
	}

	if err := rec.Variant.UnmarshalText([]byte(variant)); err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}
	if err := rec.Outcome.UnmarshalText([]byte(outcome)); err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}
	rec.State = domain.State(state)
	if rec.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return nil, fmt.Errorf("load run %s: started_at: %w", runID, err)
	}
	if rec.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
		return nil, fmt.Errorf("load run %s: finished_at: %w", runID, err)
	}
	return &rec, nil
}

// Delete removes a run record. Missing runs are not an error.
func (s *Store) Delete(ctx context.Context, runID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, runID); err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return nil
}

// List returns all run IDs ordered by ID.
func (s *Store) List(ctx context.Context) ([]string, error) {
	return s.queryIDs(ctx, `SELECT id FROM runs ORDER BY id ASC`)
}

// ListByMachine returns the run IDs of one machine, oldest first.
func (s *Store) ListByMachine(ctx context.Context, machine string) ([]string, error) {
	return s.queryIDs(ctx, `SELECT id FROM runs WHERE machine = ? ORDER BY started_at ASC, id ASC`, machine)
}

func (s *Store) queryIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return ids, nil
}
