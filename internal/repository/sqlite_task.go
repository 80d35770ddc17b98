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

// SQLiteTaskRepo implements TaskRepo using a SQLite database.
type SQLiteTaskRepo struct {
	conn db.DBTX
}

// NewSQLiteTaskRepo creates a new SQLiteTaskRepo.
func NewSQLiteTaskRepo(conn db.DBTX) *SQLiteTaskRepo {
	return &SQLiteTaskRepo{conn: conn}
}

const taskColumns = `id, user_id, title, start_time, end_time, project, progress_note, is_completed, created_at, updated_at`

func (r *SQLiteTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	query := `INSERT INTO tasks (` + taskColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.conn.ExecContext(ctx, query,
		t.ID,
		t.UserID,
		t.Title,
		t.StartTime.Format(time.RFC3339),
		t.EndTime.Format(time.RFC3339),
		t.Project,
		t.ProgressNote,
		boolToInt(t.IsCompleted),
		t.CreatedAt.Format(time.RFC3339),
		t.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	return r.replaceSubTasks(ctx, t)
}

func (r *SQLiteTaskRepo) GetByID(ctx context.Context, userID, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ? AND user_id = ?`
	t, err := r.scanTask(r.conn.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		return nil, err
	}
	if err := r.loadSubTasks(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *SQLiteTaskRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ? ORDER BY start_time`
	rows, err := r.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()
	return r.scanTasks(ctx, rows)
}

func (r *SQLiteTaskRepo) ListOverlapping(ctx context.Context, userID string, start, end time.Time) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE user_id = ? AND start_time <= ? AND end_time >= ?
		ORDER BY start_time`
	rows, err := r.conn.QueryContext(ctx, query, userID,
		end.Format(time.RFC3339), start.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("listing tasks in range: %w", err)
	}
	defer rows.Close()
	return r.scanTasks(ctx, rows)
}

func (r *SQLiteTaskRepo) Update(ctx context.Context, t *domain.Task) error {
	query := `UPDATE tasks SET title = ?, start_time = ?, end_time = ?, project = ?,
		progress_note = ?, is_completed = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`
	res, err := r.conn.ExecContext(ctx, query,
		t.Title,
		t.StartTime.Format(time.RFC3339),
		t.EndTime.Format(time.RFC3339),
		t.Project,
		t.ProgressNote,
		boolToInt(t.IsCompleted),
		t.UpdatedAt.Format(time.RFC3339),
		t.ID,
		t.UserID,
	)
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("task: %w", ErrNotFound)
	}
	return r.replaceSubTasks(ctx, t)
}

func (r *SQLiteTaskRepo) Delete(ctx context.Context, userID, id string) error {
	res, err := r.conn.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("task: %w", ErrNotFound)
	}
	return nil
}

// replaceSubTasks deletes and re-inserts the checklist; the list is always
// replaced wholesale, never merged.
func (r *SQLiteTaskRepo) replaceSubTasks(ctx context.Context, t *domain.Task) error {
	if _, err := r.conn.ExecContext(ctx, `DELETE FROM sub_tasks WHERE task_id = ?`, t.ID); err != nil {
		return fmt.Errorf("clearing sub-tasks: %w", err)
	}
	for i := range t.SubTasks {
		st := &t.SubTasks[i]
		if st.ID == "" {
			st.ID = uuid.New().String()
		}
		_, err := r.conn.ExecContext(ctx,
			`INSERT INTO sub_tasks (id, task_id, title, is_completed, position) VALUES (?, ?, ?, ?, ?)`,
			st.ID, t.ID, st.Title, boolToInt(st.IsCompleted), i)
		if err != nil {
			return fmt.Errorf("inserting sub-task: %w", err)
		}
	}
	return nil
}

func (r *SQLiteTaskRepo) loadSubTasks(ctx context.Context, t *domain.Task) error {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT id, title, is_completed FROM sub_tasks WHERE task_id = ? ORDER BY position`, t.ID)
	if err != nil {
		return fmt.Errorf("loading sub-tasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var st domain.SubTask
		var completed int
		if err := rows.Scan(&st.ID, &st.Title, &completed); err != nil {
			return fmt.Errorf("scanning sub-task: %w", err)
		}
		st.IsCompleted = intToBool(completed)
		t.SubTasks = append(t.SubTasks, st)
	}
	return rows.Err()
}

func (r *SQLiteTaskRepo) scanTask(row *sql.Row) (*domain.Task, error) {
	var t domain.Task
	var startStr, endStr, createdAtStr, updatedAtStr string
	var completed int

	err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &startStr, &endStr,
		&t.Project, &t.ProgressNote, &completed, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("task: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning task: %w", err)
	}
	t.IsCompleted = intToBool(completed)
	return r.populateTask(&t, startStr, endStr, createdAtStr, updatedAtStr)
}

func (r *SQLiteTaskRepo) scanTasks(ctx context.Context, rows *sql.Rows) ([]*domain.Task, error) {
	var tasks []*domain.Task
	for rows.Next() {
		var t domain.Task
		var startStr, endStr, createdAtStr, updatedAtStr string
		var completed int

		err := rows.Scan(
			&t.ID, &t.UserID, &t.Title, &startStr, &endStr,
			&t.Project, &t.ProgressNote, &completed, &createdAtStr, &updatedAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning task row: %w", err)
		}
		t.IsCompleted = intToBool(completed)

		task, parseErr := r.populateTask(&t, startStr, endStr, createdAtStr, updatedAtStr)
		if parseErr != nil {
			return nil, parseErr
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}

	for _, t := range tasks {
		if err := r.loadSubTasks(ctx, t); err != nil {
			return nil, err
		}
	}
	return tasks, nil
}

// populateTask fills in parsed time fields after scanning raw strings.
func (r *SQLiteTaskRepo) populateTask(t *domain.Task, startStr, endStr, createdAtStr, updatedAtStr string) (*domain.Task, error) {
	var parseErr error
	t.StartTime, parseErr = time.Parse(time.RFC3339, startStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing start_time: %w", parseErr)
	}
	t.EndTime, parseErr = time.Parse(time.RFC3339, endStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing end_time: %w", parseErr)
	}
	t.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	t.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	return t, nil
}
