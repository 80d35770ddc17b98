package service

import (
	"context"
	"strings"
	"time"

	"github.com/deepfocushub/deepfocus/internal/domain"
	"github.com/deepfocushub/deepfocus/internal/repository"
	"github.com/google/uuid"
)

type taskService struct {
	tasks repository.TaskRepo
}

func NewTaskService(tasks repository.TaskRepo) TaskService {
	return &taskService{tasks: tasks}
}

func (s *taskService) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return nil, domain.Invalidf("task title is required")
	}
	if t.StartTime.IsZero() || t.EndTime.IsZero() {
		return nil, domain.Invalidf("task start and end times are required")
	}
	if t.EndTime.Before(t.StartTime) {
		return nil, domain.Invalidf("task end time must be after its start time")
	}

	now := time.Now().UTC()
	t.ID = uuid.New().String()
	t.Project = strings.TrimSpace(t.Project)
	t.ProgressNote = domain.SanitizeProgressNote(t.ProgressNote)
	t.SubTasks = domain.SanitizeSubTasks(t.SubTasks)
	t.IsCompleted = domain.DeriveCompletion(t.SubTasks)
	t.CreatedAt = now
	t.UpdatedAt = now

	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *taskService) Get(ctx context.Context, userID, id string) (*domain.Task, error) {
	return s.tasks.GetByID(ctx, userID, id)
}

func (s *taskService) ListRange(ctx context.Context, userID string, start, end time.Time) ([]*domain.Task, error) {
	if end.Before(start) {
		return nil, domain.Invalidf("invalid date range")
	}
	return s.tasks.ListOverlapping(ctx, userID, start, end)
}

func (s *taskService) Update(ctx context.Context, userID, id string, upd TaskUpdate) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return nil, domain.Invalidf("task title must not be empty")
		}
		task.Title = title
	}
	if upd.StartTime != nil {
		if upd.StartTime.IsZero() {
			return nil, domain.Invalidf("invalid start time")
		}
		task.StartTime = *upd.StartTime
	}
	if upd.EndTime != nil {
		if upd.EndTime.IsZero() {
			return nil, domain.Invalidf("invalid end time")
		}
		task.EndTime = *upd.EndTime
	}
	// The window ordering is only re-checked when both ends were supplied,
	// matching how a single-end move is accepted.
	if upd.StartTime != nil && upd.EndTime != nil && task.EndTime.Before(task.StartTime) {
		return nil, domain.Invalidf("task end time must be after its start time")
	}
	if upd.Project != nil {
		task.Project = strings.TrimSpace(*upd.Project)
	}
	if upd.ProgressNote != nil {
		task.ProgressNote = domain.SanitizeProgressNote(*upd.ProgressNote)
	}

	now := time.Now().UTC()
	if upd.SubTasks != nil {
		task.ReplaceSubTasks(*upd.SubTasks, now)
	}
	task.UpdatedAt = now

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) SetCompleted(ctx context.Context, userID, id string, completed bool) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	task.SetCompleted(completed, time.Now().UTC())
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) Delete(ctx context.Context, userID, id string) error {
	return s.tasks.Delete(ctx, userID, id)
}
