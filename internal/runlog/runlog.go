// Package runlog records convert runs in a local SQLite database.
package runlog

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// Run statuses.
const (
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

// timeLayout is fixed-width so TEXT timestamps sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Entry is one row of the runs table.
type Entry struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Contracts   []string   `json:"contracts,omitempty"`
	Records     int        `json:"records"`
	Error       string     `json:"error,omitempty"`
}

// Log provides read/write access to the runs table.
type Log struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens the database at path and configures WAL mode.
func Open(path string) (*Log, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "runlog: exec %s", pragma)
		}
	}
	return &Log{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	status       TEXT NOT NULL DEFAULT 'running',
	started_at   TEXT NOT NULL,
	completed_at TEXT,
	contracts    TEXT NOT NULL DEFAULT '',
	records      INTEGER NOT NULL DEFAULT 0,
	error        TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

// Migrate creates the runs table if needed.
func (l *Log) Migrate(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "runlog: migrate")
}

// Close releases the database handle.
func (l *Log) Close() error {
	return l.db.Close()
}

// Start records the beginning of a run and returns its ID.
func (l *Log) Start(ctx context.Context) (string, error) {
	id := uuid.New().String()
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO runs (id, status, started_at) VALUES (?, ?, ?)`,
		id, StatusRunning, l.now().Format(timeLayout),
	)
	if err != nil {
		return "", eris.Wrap(err, "runlog: start run")
	}
	return id, nil
}

// Complete marks a run as successful.
func (l *Log) Complete(ctx context.Context, id string, contracts []string, records int) error {
	res, err := l.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, completed_at = ?, contracts = ?, records = ? WHERE id = ?`,
		StatusComplete, l.now().Format(timeLayout), strings.Join(contracts, ","), records, id,
	)
	if err != nil {
		return eris.Wrapf(err, "runlog: complete run %s", id)
	}
	return checkRowsAffected(res, id)
}

// Fail marks a run as failed with the error message.
func (l *Log) Fail(ctx context.Context, id string, runErr error) error {
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}
	res, err := l.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, completed_at = ?, error = ? WHERE id = ?`,
		StatusFailed, l.now().Format(timeLayout), msg, id,
	)
	if err != nil {
		return eris.Wrapf(err, "runlog: fail run %s", id)
	}
	return checkRowsAffected(res, id)
}

// Recent returns up to limit runs, newest first. A limit <= 0 returns all.
func (l *Log) Recent(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT id, status, started_at, completed_at, contracts, records, error
		FROM runs ORDER BY started_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var entries []Entry
	for rows.Next() {
		var (
			e           Entry
			started     string
			completed   sql.NullString
			contractCSV string
		)
		if err := rows.Scan(&e.ID, &e.Status, &started, &completed, &contractCSV, &e.Records, &e.Error); err != nil {
			return nil, eris.Wrap(err, "runlog: scan run")
		}
		if e.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, eris.Wrapf(err, "runlog: parse started_at of %s", e.ID)
		}
		if completed.Valid {
			t, err := time.Parse(timeLayout, completed.String)
			if err != nil {
				return nil, eris.Wrapf(err, "runlog: parse completed_at of %s", e.ID)
			}
			e.CompletedAt = &t
		}
		if contractCSV != "" {
			e.Contracts = strings.Split(contractCSV, ",")
		}
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "runlog: iterate runs")
}

func checkRowsAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "runlog: rows affected")
	}
	if n == 0 {
		return eris.Errorf("runlog: run %s not found", id)
	}
	return nil
}
