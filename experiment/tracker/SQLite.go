package tracker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	ts "github.com/golearn/duelingdqn/timestep"
)

// SQLite records every episode of a run in an SQLite database. Each
// call to NewSQLite starts a new run, identified by a random UUID, so
// a single database can hold the history of many runs.
type SQLite struct {
	ctx context.Context
	db  *sql.DB
	run uuid.UUID
}

// NewSQLite opens (creating if needed) the database at path and
// registers a new run with the given label
func NewSQLite(ctx context.Context, path, label string) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("newSQLite: sqlite path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("newSQLite: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("newSQLite: %w", err)
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("newSQLite: %w", err)
	}

	run := uuid.New()
	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, label, started_at) VALUES (?, ?, ?)
	`, run.String(), label, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("newSQLite: could not register run: %w", err)
	}

	return &SQLite{ctx: ctx, db: db, run: run}, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL,
			started_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS episodes (
			run_id TEXT NOT NULL REFERENCES runs(id),
			phase TEXT NOT NULL,
			number INTEGER NOT NULL,
			steps INTEGER NOT NULL,
			episode_return REAL NOT NULL,
			epsilon REAL NOT NULL,
			loss REAL,
			moving_average REAL NOT NULL,
			end_type TEXT NOT NULL,
			PRIMARY KEY (run_id, phase, number)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Run returns the identifier of the run being recorded
func (s *SQLite) Run() uuid.UUID {
	return s.run
}

// Track inserts the episode into the database
func (s *SQLite) Track(e Episode) error {
	var loss sql.NullFloat64
	if !math.IsNaN(e.Loss) {
		loss = sql.NullFloat64{Float64: e.Loss, Valid: true}
	}

	_, err := s.db.ExecContext(s.ctx, `
		INSERT INTO episodes (run_id, phase, number, steps, episode_return,
			epsilon, loss, moving_average, end_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.run.String(), e.Phase.String(), e.Number, e.Steps, e.Return,
		e.Epsilon, loss, e.MovingAverage, e.End.String())
	if err != nil {
		return fmt.Errorf("track: could not insert episode %d: %w",
			e.Number, err)
	}
	return nil
}

// Episodes returns the episodes recorded for the current run in the
// given phase, ordered by episode number
func (s *SQLite) Episodes(p Phase) ([]Episode, error) {
	rows, err := s.db.QueryContext(s.ctx, `
		SELECT number, steps, episode_return, epsilon, loss, moving_average,
			end_type
		FROM episodes
		WHERE run_id = ? AND phase = ?
		ORDER BY number
	`, s.run.String(), p.String())
	if err != nil {
		return nil, fmt.Errorf("episodes: %w", err)
	}
	defer rows.Close()

	var out []Episode
	for rows.Next() {
		e := Episode{Phase: p, Loss: math.NaN()}
		var loss sql.NullFloat64
		var end string
		err := rows.Scan(&e.Number, &e.Steps, &e.Return, &e.Epsilon, &loss,
			&e.MovingAverage, &end)
		if err != nil {
			return nil, fmt.Errorf("episodes: %w", err)
		}
		if loss.Valid {
			e.Loss = loss.Float64
		}
		e.End = parseEndType(end)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Save closes the database
func (s *SQLite) Save() error {
	return s.db.Close()
}

func parseEndType(s string) ts.EndType {
	switch s {
	case ts.TerminalStateReached.String():
		return ts.TerminalStateReached
	case ts.Timeout.String():
		return ts.Timeout
	default:
		return ts.Nil
	}
}
