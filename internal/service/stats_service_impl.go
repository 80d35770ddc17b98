package service

import (
	"context"
	"time"

	"github.com/deepfocushub/deepfocus/internal/repository"
	"github.com/deepfocushub/deepfocus/internal/stats"
)

const recentSessionCount = 5

type statsService struct {
	sessions repository.SessionRepo
	tasks    repository.TaskRepo
}

func NewStatsService(sessions repository.SessionRepo, tasks repository.TaskRepo) StatsService {
	return &statsService{sessions: sessions, tasks: tasks}
}

// Overview recomputes every aggregate from the full completed history on
// each call; nothing is cached.
func (s *statsService) Overview(ctx context.Context, userID string) (*Overview, error) {
	sessions, err := s.sessions.ListCompleted(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	recent := sessions
	if len(recent) > recentSessionCount {
		recent = recent[:recentSessionCount]
	}

	return &Overview{
		Overview:       stats.BuildOverview(sessions, tasks, time.Now()),
		RecentSessions: recent,
	}, nil
}
