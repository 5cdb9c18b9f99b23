// Package journal persists uninstall run history in a SQLite database so
// operators can audit what was removed and when.
package journal

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	apperrors "napclean/internal/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	profile     TEXT NOT NULL,
	started_at  TEXT NOT NULL,
	finished_at TEXT,
	failed      INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS actions (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id  INTEGER NOT NULL REFERENCES runs(id),
	package TEXT NOT NULL,
	action  TEXT NOT NULL,
	detail  TEXT
);
`

// Run summarises one uninstall invocation.
type Run struct {
	ID         int64
	Profile    string
	StartedAt  time.Time
	FinishedAt time.Time
	Failed     bool
	Actions    int
}

// Journal records uninstall runs and their per-package actions.
type Journal struct {
	db *sql.DB
}

// Open opens (or creates) the journal database and prepares its schema.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, dbError("journal.open", "failed to open journal database", err, path)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, dbError("journal.open", "failed to prepare journal schema", err, path)
	}

	return &Journal{db: db}, nil
}

// Close releases the underlying database handle.
func (j *Journal) Close() error {
	return j.db.Close()
}

// BeginRun inserts a run row and returns its id.
func (j *Journal) BeginRun(ctx context.Context, profile string) (int64, error) {
	res, err := j.db.ExecContext(ctx,
		`INSERT INTO runs (profile, started_at) VALUES (?, ?)`,
		profile, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, dbError("journal.beginRun", "failed to record run start", err, profile)
	}
	return res.LastInsertId()
}

// RecordAction stores one per-package action for the run.
func (j *Journal) RecordAction(ctx context.Context, runID int64, pkg, action, detail string) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO actions (run_id, package, action, detail) VALUES (?, ?, ?, ?)`,
		runID, pkg, action, detail)
	if err != nil {
		return dbError("journal.recordAction", "failed to record action", err, pkg)
	}
	return nil
}

// FinishRun marks the run complete and stores the aggregate outcome.
func (j *Journal) FinishRun(ctx context.Context, runID int64, failed bool) error {
	failedInt := 0
	if failed {
		failedInt = 1
	}
	_, err := j.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, failed = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), failedInt, runID)
	if err != nil {
		return dbError("journal.finishRun", "failed to record run completion", err, "")
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first, with action counts.
func (j *Journal) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT r.id, r.profile, r.started_at, COALESCE(r.finished_at, ''), r.failed,
		       (SELECT COUNT(*) FROM actions a WHERE a.run_id = r.id)
		FROM runs r
		ORDER BY r.id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, dbError("journal.recentRuns", "failed to query runs", err, "")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run        Run
			startedAt  string
			finishedAt string
			failed     int
		)
		if err := rows.Scan(&run.ID, &run.Profile, &startedAt, &finishedAt, &failed, &run.Actions); err != nil {
			return nil, dbError("journal.recentRuns", "failed to scan run row", err, "")
		}
		run.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		if finishedAt != "" {
			run.FinishedAt, _ = time.Parse(time.RFC3339, finishedAt)
		}
		run.Failed = failed != 0
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("journal.recentRuns", "failed to iterate run rows", err, "")
	}

	return runs, nil
}

func dbError(operation, message string, err error, subject string) *apperrors.AppError {
	appErr := apperrors.DatabaseError(apperrors.CodeDatabaseGeneric, message, err).
		WithModule("journal").
		WithOperation(operation)
	if subject != "" {
		appErr = appErr.WithField("subject", subject)
	}
	return appErr
}
