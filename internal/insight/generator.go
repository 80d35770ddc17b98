package insight

import (
	"context"
	"sort"
	"time"

	"github.com/deepfocushub/deepfocus/internal/domain"
	"github.com/deepfocushub/deepfocus/internal/llm"
)

// Insight is a generated coaching suggestion.
type Insight struct {
	Suggestion  string
	GeneratedAt time.Time
}

// NoEligibleSessionsMessage is returned without calling the model when the
// user has no completed session of at least MinEffectiveMinutes.
const NoEligibleSessionsMessage = "No deep work session of at least 10 minutes has been completed recently. Finish at least one qualifying session to receive a detailed analysis."

const fallbackMessage = "No response was received from the AI service. Please try again."

// Generator produces insights from a user's recent sessions and tasks.
type Generator struct {
	client  llm.Client
	enabled bool
	now     func() time.Time
}

// NewGenerator builds a Generator. When enabled is false or client is nil,
// Generate reports the model as unavailable.
func NewGenerator(client llm.Client, enabled bool) *Generator {
	return &Generator{client: client, enabled: enabled, now: time.Now}
}

// Generate filters the history down to eligible sessions, builds the prompt,
// and asks the model for a suggestion. Sessions shorter than
// MinEffectiveMinutes are ignored; only the MaxSessionsInPrompt most recent
// eligible sessions feed the prompt.
func (g *Generator) Generate(ctx context.Context, sessions []*domain.DeepWorkSession, tasks []*domain.Task) (*Insight, error) {
	if !g.enabled || g.client == nil {
		return nil, llm.ErrUnavailable
	}

	now := g.now()
	eligible := eligibleSessions(sessions)
	if len(eligible) == 0 {
		return &Insight{Suggestion: NoEligibleSessionsMessage, GeneratedAt: now}, nil
	}

	temp := 0.7
	resp, err := g.client.Generate(ctx, llm.GenerateRequest{
		UserPrompt:  buildPrompt(eligible, tasks, now),
		Temperature: &temp,
	})
	if err != nil {
		return nil, err
	}

	suggestion := resp.Text
	if suggestion == "" {
		suggestion = fallbackMessage
	}
	return &Insight{Suggestion: suggestion, GeneratedAt: now}, nil
}

// eligibleSessions keeps completed sessions of at least MinEffectiveMinutes,
// newest first, capped at MaxSessionsInPrompt.
func eligibleSessions(sessions []*domain.DeepWorkSession) []*domain.DeepWorkSession {
	var eligible []*domain.DeepWorkSession
	for _, s := range sessions {
		if s.Status == domain.SessionCompleted && s.EffectiveMinutes() >= MinEffectiveMinutes {
			eligible = append(eligible, s)
		}
	}
	sort.Slice(eligible, func(i, j int) bool {
		return eligible[i].ReferenceTime().After(eligible[j].ReferenceTime())
	})
	if len(eligible) > MaxSessionsInPrompt {
		eligible = eligible[:MaxSessionsInPrompt]
	}
	return eligible
}
