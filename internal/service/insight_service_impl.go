package service

import (
	"context"

	"github.com/deepfocushub/deepfocus/internal/insight"
	"github.com/deepfocushub/deepfocus/internal/repository"
)

// insightHistoryLimit fetches a little more than the prompt cap so the
// generator can discard sessions under the duration floor and still fill
// its window.
const insightHistoryLimit = 60

type insightService struct {
	sessions  repository.SessionRepo
	tasks     repository.TaskRepo
	generator *insight.Generator
}

func NewInsightService(sessions repository.SessionRepo, tasks repository.TaskRepo, generator *insight.Generator) InsightService {
	return &insightService{sessions: sessions, tasks: tasks, generator: generator}
}

func (s *insightService) Analyze(ctx context.Context, userID string) (*insight.Insight, error) {
	sessions, err := s.sessions.ListCompleted(ctx, userID, insightHistoryLimit)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.generator.Generate(ctx, sessions, tasks)
}
