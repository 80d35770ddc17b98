package repository

import (
	"context"
	"time"

	"github.com/deepfocushub/deepfocus/internal/domain"
)

type UserRepo interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

type TaskRepo interface {
	Create(ctx context.Context, t *domain.Task) error
	// GetByID resolves a task scoped to its owner.
	GetByID(ctx context.Context, userID, id string) (*domain.Task, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Task, error)
	// ListOverlapping returns the owner's tasks whose [start,end] window
	// intersects the supplied range, sorted by start time ascending.
	ListOverlapping(ctx context.Context, userID string, start, end time.Time) ([]*domain.Task, error)
	// Update persists the task and replaces its checklist wholesale.
	Update(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, userID, id string) error
}

type SessionRepo interface {
	Create(ctx context.Context, s *domain.DeepWorkSession) error
	GetByID(ctx context.Context, userID, id string) (*domain.DeepWorkSession, error)
	// GetActive returns the owner's single in_progress session, or
	// ErrNotFound when there is none.
	GetActive(ctx context.Context, userID string) (*domain.DeepWorkSession, error)
	// ListCompleted returns completed sessions newest-first by end time.
	// limit <= 0 returns all of them.
	ListCompleted(ctx context.Context, userID string, limit int) ([]*domain.DeepWorkSession, error)
	// Update persists the session and replaces its pause events and
	// distraction timestamps wholesale.
	Update(ctx context.Context, s *domain.DeepWorkSession) error
}
