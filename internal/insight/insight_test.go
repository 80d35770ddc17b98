package insight

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/deepfocushub/deepfocus/internal/domain"
	"github.com/deepfocushub/deepfocus/internal/llm"
	"github.com/deepfocushub/deepfocus/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var insightNow = time.Date(2025, 6, 18, 15, 0, 0, 0, time.UTC)

type stubClient struct {
	lastReq llm.GenerateRequest
	text    string
	err     error
}

func (c *stubClient) Generate(_ context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	c.lastReq = req
	if c.err != nil {
		return nil, c.err
	}
	return &llm.GenerateResponse{Text: c.text, Model: "stub"}, nil
}

func completedSession(end time.Time, minutes int, opts ...testutil.SessionOption) *domain.DeepWorkSession {
	all := append([]testutil.SessionOption{
		testutil.WithStartTime(end.Add(-time.Duration(minutes) * time.Minute)),
		testutil.WithCompletedAt(end, minutes),
	}, opts...)
	return testutil.NewTestSession("u1", "write report", all...)
}

func TestGenerator_Disabled(t *testing.T) {
	gen := NewGenerator(&stubClient{}, false)
	_, err := gen.Generate(context.Background(), nil, nil)
	assert.ErrorIs(t, err, llm.ErrUnavailable)
}

func TestGenerator_NoEligibleSessions(t *testing.T) {
	// A 5-minute session falls under the floor; no model call happens.
	client := &stubClient{text: "should not be used"}
	gen := NewGenerator(client, true)
	gen.now = func() time.Time { return insightNow }

	short := completedSession(insightNow, 5)
	out, err := gen.Generate(context.Background(), []*domain.DeepWorkSession{short}, nil)

	require.NoError(t, err)
	assert.Equal(t, NoEligibleSessionsMessage, out.Suggestion)
	assert.Equal(t, insightNow, out.GeneratedAt)
	assert.Empty(t, client.lastReq.UserPrompt)
}

func TestGenerator_IgnoresInProgressSessions(t *testing.T) {
	client := &stubClient{text: "ok"}
	gen := NewGenerator(client, true)
	gen.now = func() time.Time { return insightNow }

	active := testutil.NewTestSession("u1", "active", testutil.WithDuration(50))
	out, err := gen.Generate(context.Background(), []*domain.DeepWorkSession{active}, nil)

	require.NoError(t, err)
	assert.Equal(t, NoEligibleSessionsMessage, out.Suggestion)
}

func TestGenerator_BuildsPromptFromHistory(t *testing.T) {
	client := &stubClient{text: "focus earlier in the day"}
	gen := NewGenerator(client, true)
	gen.now = func() time.Time { return insightNow }

	task := testutil.NewTestTask("u1", "Quarterly report",
		testutil.WithProject("Reporting"),
		testutil.WithProgressNote("Drafted two sections"),
		testutil.WithSubTasks(
			domain.SubTask{ID: "st1", Title: "Outline", IsCompleted: true},
			domain.SubTask{ID: "st2", Title: "Charts"},
		))
	session := completedSession(insightNow.Add(-2*time.Hour), 50, testutil.WithTaskID(task.ID))

	out, err := gen.Generate(context.Background(),
		[]*domain.DeepWorkSession{session}, []*domain.Task{task})

	require.NoError(t, err)
	assert.Equal(t, "focus earlier in the day", out.Suggestion)

	prompt := client.lastReq.UserPrompt
	assert.Contains(t, prompt, "PERFORMANCE OVERVIEW")
	assert.Contains(t, prompt, "TIME-OF-DAY BREAKDOWN")
	assert.Contains(t, prompt, "Quarterly report")
	assert.Contains(t, prompt, "Reporting")
	assert.Contains(t, prompt, "checklist 1/2")
	assert.Contains(t, prompt, "Current streak")
	require.NotNil(t, client.lastReq.Temperature)
	assert.Equal(t, 0.7, *client.lastReq.Temperature)
}

func TestGenerator_PropagatesClientErrors(t *testing.T) {
	client := &stubClient{err: llm.ErrTimeout}
	gen := NewGenerator(client, true)
	gen.now = func() time.Time { return insightNow }

	session := completedSession(insightNow, 50)
	_, err := gen.Generate(context.Background(), []*domain.DeepWorkSession{session}, nil)
	assert.ErrorIs(t, err, llm.ErrTimeout)
}

func TestGenerator_EmptyModelResponseFallsBack(t *testing.T) {
	client := &stubClient{text: ""}
	gen := NewGenerator(client, true)
	gen.now = func() time.Time { return insightNow }

	session := completedSession(insightNow, 50)
	out, err := gen.Generate(context.Background(), []*domain.DeepWorkSession{session}, nil)

	require.NoError(t, err)
	assert.Equal(t, fallbackMessage, out.Suggestion)
}

func TestEligibleSessions_NewestFirstCapped(t *testing.T) {
	var sessions []*domain.DeepWorkSession
	for i := 0; i < 25; i++ {
		sessions = append(sessions, completedSession(insightNow.Add(-time.Duration(i)*time.Hour), 30))
	}

	eligible := eligibleSessions(sessions)
	require.Len(t, eligible, MaxSessionsInPrompt)
	for i := 1; i < len(eligible); i++ {
		assert.True(t, eligible[i-1].ReferenceTime().After(eligible[i].ReferenceTime()))
	}
}

func TestBuildTaskHighlights_FiltersAndCaps(t *testing.T) {
	var tasks []*domain.Task
	// Plain tasks with neither note nor checklist are skipped.
	tasks = append(tasks, testutil.NewTestTask("u1", "plain"))
	for i := 0; i < 10; i++ {
		tasks = append(tasks, testutil.NewTestTask("u1", "noted", testutil.WithProgressNote("progress")))
	}

	lines := buildTaskHighlights(tasks)
	require.Len(t, lines, maxTaskContext)
	for _, line := range lines {
		assert.True(t, strings.Contains(line, "noted"))
	}
}

func TestSegmentLabel_NightWrapsMidnight(t *testing.T) {
	assert.Equal(t, "Night (22:00-05:00)", segmentLabel(time.Date(2025, 6, 18, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Night (22:00-05:00)", segmentLabel(time.Date(2025, 6, 18, 2, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Morning (05:00-11:00)", segmentLabel(time.Date(2025, 6, 18, 9, 0, 0, 0, time.UTC)))
}
