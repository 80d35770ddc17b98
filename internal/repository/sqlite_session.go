package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/deepfocushub/deepfocus/internal/db"
	"github.com/deepfocushub/deepfocus/internal/domain"
	"github.com/google/uuid"
)

// SQLiteSessionRepo implements SessionRepo using a SQLite database.
type SQLiteSessionRepo struct {
	conn db.DBTX
}

// NewSQLiteSessionRepo creates a new SQLiteSessionRepo.
func NewSQLiteSessionRepo(conn db.DBTX) *SQLiteSessionRepo {
	return &SQLiteSessionRepo{conn: conn}
}

const sessionColumns = `id, user_id, task_id, goal, duration_set, duration_completed,
	focus_rating, quick_notes, start_time, end_time, status, points_earned, created_at, updated_at`

func (r *SQLiteSessionRepo) Create(ctx context.Context, s *domain.DeepWorkSession) error {
	query := `INSERT INTO deep_work_sessions (` + sessionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.conn.ExecContext(ctx, query,
		s.ID,
		s.UserID,
		nullableStringToValue(s.TaskID),
		s.Goal,
		s.DurationSet,
		s.DurationCompleted,
		nullableIntToValue(s.FocusRating),
		s.QuickNotes,
		s.StartTime.Format(time.RFC3339),
		nullableTimeToString(s.EndTime),
		string(s.Status),
		s.PointsEarned,
		s.CreatedAt.Format(time.RFC3339),
		s.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return r.replaceChildren(ctx, s)
}

func (r *SQLiteSessionRepo) GetByID(ctx context.Context, userID, id string) (*domain.DeepWorkSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM deep_work_sessions WHERE id = ? AND user_id = ?`
	s, err := r.scanSession(r.conn.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SQLiteSessionRepo) GetActive(ctx context.Context, userID string) (*domain.DeepWorkSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM deep_work_sessions
		WHERE user_id = ? AND status = 'in_progress'`
	s, err := r.scanSession(r.conn.QueryRowContext(ctx, query, userID))
	if err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SQLiteSessionRepo) ListCompleted(ctx context.Context, userID string, limit int) ([]*domain.DeepWorkSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM deep_work_sessions
		WHERE user_id = ? AND status = 'completed'
		ORDER BY end_time DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing completed sessions: %w", err)
	}
	defer rows.Close()
	return r.scanSessions(ctx, rows)
}

func (r *SQLiteSessionRepo) Update(ctx context.Context, s *domain.DeepWorkSession) error {
	query := `UPDATE deep_work_sessions SET goal = ?, duration_set = ?, duration_completed = ?,
		focus_rating = ?, quick_notes = ?, start_time = ?, end_time = ?, status = ?,
		points_earned = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`
	res, err := r.conn.ExecContext(ctx, query,
		s.Goal,
		s.DurationSet,
		s.DurationCompleted,
		nullableIntToValue(s.FocusRating),
		s.QuickNotes,
		s.StartTime.Format(time.RFC3339),
		nullableTimeToString(s.EndTime),
		string(s.Status),
		s.PointsEarned,
		s.UpdatedAt.Format(time.RFC3339),
		s.ID,
		s.UserID,
	)
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("session: %w", ErrNotFound)
	}
	return r.replaceChildren(ctx, s)
}

// replaceChildren rewrites pause events and distraction timestamps. Both
// lists are small (2 pauses max, distractions per session) so a wholesale
// delete+insert keeps the write path simple.
func (r *SQLiteSessionRepo) replaceChildren(ctx context.Context, s *domain.DeepWorkSession) error {
	if _, err := r.conn.ExecContext(ctx, `DELETE FROM pause_events WHERE session_id = ?`, s.ID); err != nil {
		return fmt.Errorf("clearing pause events: %w", err)
	}
	for i := range s.PauseEvents {
		pe := &s.PauseEvents[i]
		if pe.ID == "" {
			pe.ID = uuid.New().String()
		}
		_, err := r.conn.ExecContext(ctx,
			`INSERT INTO pause_events (id, session_id, started_at, ended_at, duration_seconds)
			VALUES (?, ?, ?, ?, ?)`,
			pe.ID, s.ID,
			pe.StartedAt.Format(time.RFC3339),
			pe.EndedAt.Format(time.RFC3339),
			pe.DurationSeconds)
		if err != nil {
			return fmt.Errorf("inserting pause event: %w", err)
		}
	}

	if _, err := r.conn.ExecContext(ctx, `DELETE FROM distractions WHERE session_id = ?`, s.ID); err != nil {
		return fmt.Errorf("clearing distractions: %w", err)
	}
	for _, ts := range s.DistractionTimestamps {
		_, err := r.conn.ExecContext(ctx,
			`INSERT INTO distractions (id, session_id, occurred_at) VALUES (?, ?, ?)`,
			uuid.New().String(), s.ID, ts.Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("inserting distraction: %w", err)
		}
	}
	return nil
}

func (r *SQLiteSessionRepo) loadChildren(ctx context.Context, s *domain.DeepWorkSession) error {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT id, started_at, ended_at, duration_seconds FROM pause_events
		WHERE session_id = ? ORDER BY started_at`, s.ID)
	if err != nil {
		return fmt.Errorf("loading pause events: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var pe domain.PauseEvent
		var startStr, endStr string
		if err := rows.Scan(&pe.ID, &startStr, &endStr, &pe.DurationSeconds); err != nil {
			return fmt.Errorf("scanning pause event: %w", err)
		}
		if pe.StartedAt, err = time.Parse(time.RFC3339, startStr); err != nil {
			return fmt.Errorf("parsing pause started_at: %w", err)
		}
		if pe.EndedAt, err = time.Parse(time.RFC3339, endStr); err != nil {
			return fmt.Errorf("parsing pause ended_at: %w", err)
		}
		s.PauseEvents = append(s.PauseEvents, pe)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating pause events: %w", err)
	}

	dRows, err := r.conn.QueryContext(ctx,
		`SELECT occurred_at FROM distractions WHERE session_id = ? ORDER BY occurred_at`, s.ID)
	if err != nil {
		return fmt.Errorf("loading distractions: %w", err)
	}
	defer dRows.Close()
	for dRows.Next() {
		var tsStr string
		if err := dRows.Scan(&tsStr); err != nil {
			return fmt.Errorf("scanning distraction: %w", err)
		}
		ts, err := time.Parse(time.RFC3339, tsStr)
		if err != nil {
			return fmt.Errorf("parsing distraction timestamp: %w", err)
		}
		s.DistractionTimestamps = append(s.DistractionTimestamps, ts)
	}
	return dRows.Err()
}

// scanSession scans a single session from a *sql.Row.
func (r *SQLiteSessionRepo) scanSession(row *sql.Row) (*domain.DeepWorkSession, error) {
	var s domain.DeepWorkSession
	var taskID sql.NullString
	var rating sql.NullInt64
	var endTime sql.NullString
	var statusStr, startStr, createdAtStr, updatedAtStr string

	err := row.Scan(
		&s.ID, &s.UserID, &taskID, &s.Goal, &s.DurationSet, &s.DurationCompleted,
		&rating, &s.QuickNotes, &startStr, &endTime, &statusStr, &s.PointsEarned,
		&createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("session: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	return r.populateSession(&s, taskID, rating, endTime, statusStr, startStr, createdAtStr, updatedAtStr)
}

// scanSessions scans multiple sessions from *sql.Rows and loads children.
func (r *SQLiteSessionRepo) scanSessions(ctx context.Context, rows *sql.Rows) ([]*domain.DeepWorkSession, error) {
	var sessions []*domain.DeepWorkSession
	for rows.Next() {
		var s domain.DeepWorkSession
		var taskID sql.NullString
		var rating sql.NullInt64
		var endTime sql.NullString
		var statusStr, startStr, createdAtStr, updatedAtStr string

		err := rows.Scan(
			&s.ID, &s.UserID, &taskID, &s.Goal, &s.DurationSet, &s.DurationCompleted,
			&rating, &s.QuickNotes, &startStr, &endTime, &statusStr, &s.PointsEarned,
			&createdAtStr, &updatedAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}

		session, parseErr := r.populateSession(&s, taskID, rating, endTime, statusStr, startStr, createdAtStr, updatedAtStr)
		if parseErr != nil {
			return nil, parseErr
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}

	for _, s := range sessions {
		if err := r.loadChildren(ctx, s); err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

// populateSession fills in parsed fields after scanning raw values.
func (r *SQLiteSessionRepo) populateSession(s *domain.DeepWorkSession, taskID sql.NullString, rating sql.NullInt64, endTime sql.NullString, statusStr, startStr, createdAtStr, updatedAtStr string) (*domain.DeepWorkSession, error) {
	if taskID.Valid && taskID.String != "" {
		v := taskID.String
		s.TaskID = &v
	}
	if rating.Valid {
		v := int(rating.Int64)
		s.FocusRating = &v
	}
	s.EndTime = parseNullableTime(endTime)
	s.Status = domain.SessionStatus(statusStr)

	var parseErr error
	s.StartTime, parseErr = time.Parse(time.RFC3339, startStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing start_time: %w", parseErr)
	}
	s.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	s.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	return s, nil
}
