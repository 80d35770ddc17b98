package service

import (
	"context"
	"time"

	"github.com/deepfocushub/deepfocus/internal/domain"
	"github.com/deepfocushub/deepfocus/internal/insight"
	"github.com/deepfocushub/deepfocus/internal/stats"
)

// AuthResult pairs an authenticated user with a fresh bearer token.
type AuthResult struct {
	User  *domain.User
	Token string
}

type AuthService interface {
	Register(ctx context.Context, username, password, confirmPassword string) (*AuthResult, error)
	Login(ctx context.Context, username, password string) (*AuthResult, error)
}

// TaskUpdate carries a partial task update; nil fields stay untouched.
type TaskUpdate struct {
	Title        *string
	StartTime    *time.Time
	EndTime      *time.Time
	Project      *string
	ProgressNote *string
	SubTasks     *[]domain.SubTask
}

type TaskService interface {
	Create(ctx context.Context, t *domain.Task) (*domain.Task, error)
	Get(ctx context.Context, userID, id string) (*domain.Task, error)
	// ListRange returns the user's tasks overlapping [start, end], sorted
	// by start time.
	ListRange(ctx context.Context, userID string, start, end time.Time) ([]*domain.Task, error)
	Update(ctx context.Context, userID, id string, upd TaskUpdate) (*domain.Task, error)
	// SetCompleted sets the completion flag and cascades it to every
	// sub-task.
	SetCompleted(ctx context.Context, userID, id string, completed bool) (*domain.Task, error)
	Delete(ctx context.Context, userID, id string) error
}

// StartSession holds the parameters for starting a deep work session.
type StartSession struct {
	TaskID          *string
	Goal            string
	DurationMinutes int
	StartTime       time.Time // zero value means "now"
}

// CompleteSession holds the optional fields of a completion request.
type CompleteSession struct {
	EndTime           *time.Time
	DurationCompleted *int
	QuickNotes        *string
}

type SessionService interface {
	Start(ctx context.Context, userID string, in StartSession) (*domain.DeepWorkSession, error)
	// Active returns the user's in-progress session, or nil when there is
	// none.
	Active(ctx context.Context, userID string) (*domain.DeepWorkSession, error)
	Get(ctx context.Context, userID, id string) (*domain.DeepWorkSession, error)
	// History returns completed sessions newest-first; limit <= 0 uses the
	// default of 20.
	History(ctx context.Context, userID string, limit int) ([]*domain.DeepWorkSession, error)
	Pause(ctx context.Context, userID, id string, startedAt, endedAt time.Time) (*domain.DeepWorkSession, error)
	LogDistraction(ctx context.Context, userID, id string, at *time.Time) (*domain.DeepWorkSession, error)
	SetNotes(ctx context.Context, userID, id, notes string) (*domain.DeepWorkSession, error)
	Complete(ctx context.Context, userID, id string, in CompleteSession) (*domain.DeepWorkSession, error)
	Rate(ctx context.Context, userID, id string, rating int) (*domain.DeepWorkSession, error)
}

// Overview bundles the derived statistics with the five most recent
// completed sessions.
type Overview struct {
	stats.Overview
	RecentSessions []*domain.DeepWorkSession
}

type StatsService interface {
	Overview(ctx context.Context, userID string) (*Overview, error)
}

type InsightService interface {
	Analyze(ctx context.Context, userID string) (*insight.Insight, error)
}
