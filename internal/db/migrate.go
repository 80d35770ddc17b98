package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations in order.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id            TEXT PRIMARY KEY,
		user_id       TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title         TEXT NOT NULL,
		start_time    TEXT NOT NULL,
		end_time      TEXT NOT NULL,
		project       TEXT NOT NULL DEFAULT '',
		progress_note TEXT NOT NULL DEFAULT '',
		is_completed  INTEGER NOT NULL DEFAULT 0,
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_start ON tasks(start_time)`,

	`CREATE TABLE IF NOT EXISTS sub_tasks (
		id           TEXT PRIMARY KEY,
		task_id      TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		title        TEXT NOT NULL,
		is_completed INTEGER NOT NULL DEFAULT 0,
		position     INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE INDEX IF NOT EXISTS idx_sub_tasks_task ON sub_tasks(task_id)`,

	`CREATE TABLE IF NOT EXISTS deep_work_sessions (
		id                 TEXT PRIMARY KEY,
		user_id            TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		task_id            TEXT REFERENCES tasks(id) ON DELETE SET NULL,
		goal               TEXT NOT NULL,
		duration_set       INTEGER NOT NULL DEFAULT 50,
		duration_completed INTEGER NOT NULL DEFAULT 0,
		focus_rating       INTEGER,
		quick_notes        TEXT NOT NULL DEFAULT '',
		start_time         TEXT NOT NULL,
		end_time           TEXT,
		status             TEXT NOT NULL DEFAULT 'in_progress'
		                   CHECK(status IN ('in_progress','completed','cancelled')),
		points_earned      INTEGER NOT NULL DEFAULT 0,
		created_at         TEXT NOT NULL,
		updated_at         TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_sessions_user ON deep_work_sessions(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_status ON deep_work_sessions(status)`,

	// One in_progress session per user. The service re-checks inside a
	// transaction, but the partial index makes the invariant hold even
	// against concurrent starts.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_one_active
		ON deep_work_sessions(user_id) WHERE status = 'in_progress'`,

	`CREATE TABLE IF NOT EXISTS pause_events (
		id               TEXT PRIMARY KEY,
		session_id       TEXT NOT NULL REFERENCES deep_work_sessions(id) ON DELETE CASCADE,
		started_at       TEXT NOT NULL,
		ended_at         TEXT NOT NULL,
		duration_seconds INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE INDEX IF NOT EXISTS idx_pause_events_session ON pause_events(session_id)`,

	`CREATE TABLE IF NOT EXISTS distractions (
		id          TEXT PRIMARY KEY,
		session_id  TEXT NOT NULL REFERENCES deep_work_sessions(id) ON DELETE CASCADE,
		occurred_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_distractions_session ON distractions(session_id)`,
}
