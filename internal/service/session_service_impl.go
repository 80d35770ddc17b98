package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/deepfocushub/deepfocus/internal/db"
	"github.com/deepfocushub/deepfocus/internal/domain"
	"github.com/deepfocushub/deepfocus/internal/repository"
	"github.com/google/uuid"
)

const defaultHistoryLimit = 20

type sessionService struct {
	sessions repository.SessionRepo
	uow      db.UnitOfWork
}

func NewSessionService(sessions repository.SessionRepo, uow db.UnitOfWork) SessionService {
	return &sessionService{sessions: sessions, uow: uow}
}

// Start creates an in-progress session. The single-active-session rule is
// enforced twice: a read inside the transaction, and the partial unique
// index on in_progress sessions for writers that race past the read.
func (s *sessionService) Start(ctx context.Context, userID string, in StartSession) (*domain.DeepWorkSession, error) {
	now := time.Now().UTC()
	session, err := domain.NewSession(uuid.New().String(), userID, in.TaskID, in.Goal, in.DurationMinutes, in.StartTime, now)
	if err != nil {
		return nil, err
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txSessions := repository.NewSQLiteSessionRepo(tx)

		if _, err := txSessions.GetActive(ctx, userID); err == nil {
			return domain.Invalidf("you already have an active deep work session")
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		if in.TaskID != nil {
			txTasks := repository.NewSQLiteTaskRepo(tx)
			if _, err := txTasks.GetByID(ctx, userID, *in.TaskID); err != nil {
				return fmt.Errorf("linked task: %w", err)
			}
		}

		return txSessions.Create(ctx, session)
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (s *sessionService) Active(ctx context.Context, userID string) (*domain.DeepWorkSession, error) {
	session, err := s.sessions.GetActive(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (s *sessionService) Get(ctx context.Context, userID, id string) (*domain.DeepWorkSession, error) {
	return s.sessions.GetByID(ctx, userID, id)
}

func (s *sessionService) History(ctx context.Context, userID string, limit int) ([]*domain.DeepWorkSession, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.sessions.ListCompleted(ctx, userID, limit)
}

func (s *sessionService) Pause(ctx context.Context, userID, id string, startedAt, endedAt time.Time) (*domain.DeepWorkSession, error) {
	return s.mutate(ctx, userID, id, []domain.SessionStatus{domain.SessionInProgress},
		func(sess *domain.DeepWorkSession, now time.Time) error {
			return sess.LogPause(uuid.New().String(), startedAt, endedAt, now)
		})
}

func (s *sessionService) LogDistraction(ctx context.Context, userID, id string, at *time.Time) (*domain.DeepWorkSession, error) {
	return s.mutate(ctx, userID, id, []domain.SessionStatus{domain.SessionInProgress},
		func(sess *domain.DeepWorkSession, now time.Time) error {
			when := now
			if at != nil {
				when = *at
			}
			return sess.LogDistraction(when, now)
		})
}

func (s *sessionService) SetNotes(ctx context.Context, userID, id, notes string) (*domain.DeepWorkSession, error) {
	return s.mutate(ctx, userID, id, []domain.SessionStatus{domain.SessionInProgress, domain.SessionCompleted},
		func(sess *domain.DeepWorkSession, now time.Time) error {
			return sess.SetQuickNotes(notes, now)
		})
}

func (s *sessionService) Complete(ctx context.Context, userID, id string, in CompleteSession) (*domain.DeepWorkSession, error) {
	return s.mutate(ctx, userID, id, []domain.SessionStatus{domain.SessionInProgress},
		func(sess *domain.DeepWorkSession, now time.Time) error {
			return sess.Complete(in.EndTime, in.DurationCompleted, in.QuickNotes, now)
		})
}

func (s *sessionService) Rate(ctx context.Context, userID, id string, rating int) (*domain.DeepWorkSession, error) {
	if rating < 1 || rating > 5 {
		return nil, domain.Invalidf("focus rating must be between 1 and 5")
	}
	return s.mutate(ctx, userID, id, []domain.SessionStatus{domain.SessionCompleted},
		func(sess *domain.DeepWorkSession, now time.Time) error {
			return sess.SubmitRating(rating, now)
		})
}

// mutate loads an owned session, requires it to be in one of the accepted
// statuses, applies fn, and persists the result. A status mismatch reads as
// not-found: the caller asked for "the in-progress session {id}" and no such
// row exists.
func (s *sessionService) mutate(ctx context.Context, userID, id string, statuses []domain.SessionStatus, fn func(*domain.DeepWorkSession, time.Time) error) (*domain.DeepWorkSession, error) {
	session, err := s.sessions.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(statuses, session.Status) {
		return nil, fmt.Errorf("session %s not in a usable state: %w", id, repository.ErrNotFound)
	}
	if err := fn(session, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}
