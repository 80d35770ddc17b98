package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/deepfocushub/deepfocus/internal/domain"
	"github.com/google/uuid"
)

var testUserCounter atomic.Int64

// NewTestUser builds a user with a unique username. The password hash is a
// placeholder; auth tests hash for real.
func NewTestUser() *domain.User {
	n := testUserCounter.Add(1)
	return &domain.User{
		ID:           uuid.New().String(),
		Username:     fmt.Sprintf("user%03d", n),
		PasswordHash: "test-hash",
		CreatedAt:    time.Now().UTC(),
	}
}

// Task options
type TaskOption func(*domain.Task)

func WithTaskWindow(start, end time.Time) TaskOption {
	return func(t *domain.Task) {
		t.StartTime = start
		t.EndTime = end
	}
}

func WithProject(p string) TaskOption {
	return func(t *domain.Task) {
		t.Project = p
	}
}

func WithProgressNote(n string) TaskOption {
	return func(t *domain.Task) {
		t.ProgressNote = n
	}
}

func WithSubTasks(subTasks ...domain.SubTask) TaskOption {
	return func(t *domain.Task) {
		t.SubTasks = subTasks
	}
}

func WithCompleted(c bool) TaskOption {
	return func(t *domain.Task) {
		t.IsCompleted = c
	}
}

func NewTestTask(userID, title string, opts ...TaskOption) *domain.Task {
	now := time.Now().UTC()
	task := &domain.Task{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		StartTime: now,
		EndTime:   now.Add(time.Hour),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(task)
	}
	return task
}

// Session options
type SessionOption func(*domain.DeepWorkSession)

func WithTaskID(id string) SessionOption {
	return func(s *domain.DeepWorkSession) {
		s.TaskID = &id
	}
}

func WithDuration(minutes int) SessionOption {
	return func(s *domain.DeepWorkSession) {
		s.DurationSet = minutes
	}
}

func WithStartTime(t time.Time) SessionOption {
	return func(s *domain.DeepWorkSession) {
		s.StartTime = t
	}
}

// WithCompletedAt marks the session completed with the given end time and
// completed minutes.
func WithCompletedAt(end time.Time, minutes int) SessionOption {
	return func(s *domain.DeepWorkSession) {
		s.Status = domain.SessionCompleted
		s.EndTime = &end
		s.DurationCompleted = minutes
	}
}

func WithRating(rating, points int) SessionOption {
	return func(s *domain.DeepWorkSession) {
		s.FocusRating = &rating
		s.PointsEarned = points
	}
}

func WithDistractions(timestamps ...time.Time) SessionOption {
	return func(s *domain.DeepWorkSession) {
		s.DistractionTimestamps = timestamps
	}
}

func NewTestSession(userID, goal string, opts ...SessionOption) *domain.DeepWorkSession {
	now := time.Now().UTC()
	s := &domain.DeepWorkSession{
		ID:          uuid.New().String(),
		UserID:      userID,
		Goal:        goal,
		DurationSet: 50,
		StartTime:   now,
		Status:      domain.SessionInProgress,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
