package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/deepfocushub/deepfocus/internal/auth"
	"github.com/deepfocushub/deepfocus/internal/insight"
	"github.com/deepfocushub/deepfocus/internal/llm"
	"github.com/deepfocushub/deepfocus/internal/repository"
	"github.com/deepfocushub/deepfocus/internal/service"
	"github.com/deepfocushub/deepfocus/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLLM struct {
	text string
	err  error
}

func (c *stubLLM) Generate(context.Context, llm.GenerateRequest) (*llm.GenerateResponse, error) {
	if c.err != nil {
		return nil, c.err
	}
	return &llm.GenerateResponse{Text: c.text, Model: "stub"}, nil
}

type testAPI struct {
	t      *testing.T
	server *httptest.Server
	token  string
}

func newTestAPI(t *testing.T, model llm.Client, llmEnabled bool) *testAPI {
	t.Helper()
	database := testutil.NewTestDB(t)

	users := repository.NewSQLiteUserRepo(database)
	taskRepo := repository.NewSQLiteTaskRepo(database)
	sessionRepo := repository.NewSQLiteSessionRepo(database)
	tokens := auth.NewTokenIssuer("test-secret")

	srv := NewServer(
		service.NewAuthService(users, tokens),
		service.NewTaskService(taskRepo),
		service.NewSessionService(sessionRepo, testutil.NewTestUoW(database)),
		service.NewStatsService(sessionRepo, taskRepo),
		service.NewInsightService(sessionRepo, taskRepo, insight.NewGenerator(model, llmEnabled)),
		tokens,
		log.New(io.Discard, "", 0),
	)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &testAPI{t: t, server: ts}
}

func (a *testAPI) do(method, path string, body any) (*http.Response, []byte) {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(a.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(a.t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	resp.Body.Close()
	return resp, data
}

func (a *testAPI) signUp(username string) {
	a.t.Helper()
	resp, body := a.do(http.MethodPost, "/api/users/register", map[string]string{
		"username":        username,
		"password":        "secret-pass",
		"confirmPassword": "secret-pass",
	})
	require.Equal(a.t, http.StatusCreated, resp.StatusCode, string(body))

	var out authResponse
	require.NoError(a.t, json.Unmarshal(body, &out))
	a.token = out.Token
}

func TestAPI_RegisterAndLogin(t *testing.T) {
	api := newTestAPI(t, nil, false)

	resp, body := api.do(http.MethodPost, "/api/users/register", map[string]string{
		"username":        "alice",
		"password":        "secret-pass",
		"confirmPassword": "secret-pass",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var reg authResponse
	require.NoError(t, json.Unmarshal(body, &reg))
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "alice", reg.User.Username)

	// Duplicate username conflicts.
	resp, _ = api.do(http.MethodPost, "/api/users/register", map[string]string{
		"username":        "alice",
		"password":        "other-pass",
		"confirmPassword": "other-pass",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = api.do(http.MethodPost, "/api/users/login", map[string]string{
		"username": "alice",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = api.do(http.MethodPost, "/api/users/login", map[string]string{
		"username": "alice",
		"password": "secret-pass",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var login authResponse
	require.NoError(t, json.Unmarshal(body, &login))
	assert.NotEmpty(t, login.Token)
}

func TestAPI_RequiresAuth(t *testing.T) {
	api := newTestAPI(t, nil, false)

	resp, _ := api.do(http.MethodGet, "/api/tasks", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	api.token = "garbage"
	resp, body := api.do(http.MethodGet, "/api/tasks", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var env errorEnvelope
	require.NoError(t, json.Unmarshal(body, &env))
	assert.Equal(t, "invalid or expired token", env.Message)
}

func TestAPI_TaskRoundTrip(t *testing.T) {
	api := newTestAPI(t, nil, false)
	api.signUp("tasker")

	day := time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC)
	resp, body := api.do(http.MethodPost, "/api/tasks", map[string]any{
		"title":     "  Write slides  ",
		"startTime": day.Add(9 * time.Hour).Format(time.RFC3339),
		"endTime":   day.Add(11 * time.Hour).Format(time.RFC3339),
		"project":   "Conference",
		"subTasks":  []map[string]any{{"title": "Outline"}, {"title": "   "}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var created taskDTO
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "Write slides", created.Title)
	assert.Len(t, created.SubTasks, 1, "blank sub-task dropped")
	assert.False(t, created.IsCompleted)

	// Listing by that day finds it; another day does not.
	resp, body = api.do(http.MethodGet, "/api/tasks?date=2025-06-18", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed []taskDTO
	require.NoError(t, json.Unmarshal(body, &listed))
	require.Len(t, listed, 1)

	resp, body = api.do(http.MethodGet, "/api/tasks?date=2025-06-20", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	listed = nil
	require.NoError(t, json.Unmarshal(body, &listed))
	assert.Empty(t, listed)

	resp, _ = api.do(http.MethodGet, "/api/tasks?date=notadate", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Completing the checklist through PUT completes the task.
	resp, body = api.do(http.MethodPut, "/api/tasks/"+created.ID, map[string]any{
		"subTasks": []map[string]any{{"title": "Outline", "isCompleted": true}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var updated taskDTO
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.True(t, updated.IsCompleted)

	// Reopen via the toggle; sub-tasks follow.
	resp, body = api.do(http.MethodPatch, "/api/tasks/"+created.ID+"/complete", map[string]any{
		"isCompleted": false,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.False(t, updated.IsCompleted)
	assert.False(t, updated.SubTasks[0].IsCompleted)

	resp, _ = api.do(http.MethodDelete, "/api/tasks/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = api.do(http.MethodDelete, "/api/tasks/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_SessionLifecycle(t *testing.T) {
	api := newTestAPI(t, nil, false)
	api.signUp("focuser")

	// No active session yet: literal null body.
	resp, body := api.do(http.MethodGet, "/api/sessions/active", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "null", string(bytes.TrimSpace(body)))

	// Empty goal is rejected.
	resp, _ = api.do(http.MethodPost, "/api/sessions", map[string]any{
		"goal":            "   ",
		"durationMinutes": 50,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = api.do(http.MethodPost, "/api/sessions", map[string]any{
		"goal":            "Deep focus block",
		"durationMinutes": 50,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var started sessionDTO
	require.NoError(t, json.Unmarshal(body, &started))
	assert.Equal(t, "in_progress", string(started.Status))

	// Starting again while one runs is rejected.
	resp, _ = api.do(http.MethodPost, "/api/sessions", map[string]any{
		"goal":            "Second",
		"durationMinutes": 50,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Pause within bounds.
	pauseStart := started.StartTime.Add(10 * time.Minute)
	resp, body = api.do(http.MethodPatch, fmt.Sprintf("/api/sessions/%s/pause", started.ID), map[string]any{
		"startedAt": pauseStart.Format(time.RFC3339),
		"endedAt":   pauseStart.Add(90 * time.Second).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var paused sessionDTO
	require.NoError(t, json.Unmarshal(body, &paused))
	require.Len(t, paused.PauseEvents, 1)
	assert.Equal(t, 90, paused.PauseEvents[0].DurationSeconds)

	// A pause over three minutes is rejected.
	resp, _ = api.do(http.MethodPatch, fmt.Sprintf("/api/sessions/%s/pause", started.ID), map[string]any{
		"startedAt": pauseStart.Format(time.RFC3339),
		"endedAt":   pauseStart.Add(200 * time.Second).Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = api.do(http.MethodPatch, fmt.Sprintf("/api/sessions/%s/distraction", started.ID), map[string]any{})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, _ = api.do(http.MethodPatch, fmt.Sprintf("/api/sessions/%s/notes", started.ID), map[string]any{
		"quickNotes": "kept checking email",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = api.do(http.MethodPatch, fmt.Sprintf("/api/sessions/%s/complete", started.ID), map[string]any{
		"durationCompleted": 45,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var completed sessionDTO
	require.NoError(t, json.Unmarshal(body, &completed))
	assert.Equal(t, "completed", string(completed.Status))
	assert.Equal(t, 45, completed.DurationCompleted)

	// Completing twice reads as not found.
	resp, _ = api.do(http.MethodPatch, fmt.Sprintf("/api/sessions/%s/complete", started.ID), map[string]any{})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = api.do(http.MethodPost, fmt.Sprintf("/api/sessions/%s/rating", started.ID), map[string]any{
		"focusRating": 4,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var rated sessionDTO
	require.NoError(t, json.Unmarshal(body, &rated))
	assert.Equal(t, 65, rated.PointsEarned) // 45 + 4*5

	resp, body = api.do(http.MethodGet, "/api/sessions/history", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var history []sessionDTO
	require.NoError(t, json.Unmarshal(body, &history))
	require.Len(t, history, 1)
	assert.Equal(t, started.ID, history[0].ID)
}

func TestAPI_StatsOverview(t *testing.T) {
	api := newTestAPI(t, nil, false)
	api.signUp("counter")

	resp, body := api.do(http.MethodPost, "/api/sessions", map[string]any{
		"goal":            "Stat fodder",
		"durationMinutes": 60,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var started sessionDTO
	require.NoError(t, json.Unmarshal(body, &started))

	resp, _ = api.do(http.MethodPatch, fmt.Sprintf("/api/sessions/%s/complete", started.ID), map[string]any{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = api.do(http.MethodPost, fmt.Sprintf("/api/sessions/%s/rating", started.ID), map[string]any{
		"focusRating": 5,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = api.do(http.MethodGet, "/api/stats/overview", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var overview statsResponse
	require.NoError(t, json.Unmarshal(body, &overview))
	assert.Equal(t, 1, overview.Metrics.CompletedSessions)
	assert.Equal(t, 60, overview.Metrics.TotalMinutes)
	assert.Equal(t, 1, overview.Metrics.CurrentStreak)
	assert.Len(t, overview.FocusWindows, 24)
	assert.Equal(t, 1, overview.RatingDistribution[5])
	require.Len(t, overview.RecentSessions, 1)

	// A 5-star rating earns the corresponding badge.
	var ids []string
	for _, b := range overview.Badges {
		ids = append(ids, b.ID)
	}
	assert.Contains(t, ids, "first-5-star")
}

func TestAPI_InsightsUnavailableWhenDisabled(t *testing.T) {
	api := newTestAPI(t, nil, false)
	api.signUp("thinker")

	resp, body := api.do(http.MethodPost, "/api/insights/analyze", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var env errorEnvelope
	require.NoError(t, json.Unmarshal(body, &env))
	assert.Equal(t, "the insight service is currently unavailable", env.Message)
}

func TestAPI_InsightsCannedWhenNoEligibleSessions(t *testing.T) {
	api := newTestAPI(t, &stubLLM{text: "unused"}, true)
	api.signUp("newbie")

	resp, body := api.do(http.MethodPost, "/api/insights/analyze", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var out insightResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, insight.NoEligibleSessionsMessage, out.Suggestion)
}

func TestAPI_InsightsGenerated(t *testing.T) {
	api := newTestAPI(t, &stubLLM{text: "protect your mornings"}, true)
	api.signUp("veteran")

	resp, body := api.do(http.MethodPost, "/api/sessions", map[string]any{
		"goal":            "History fodder",
		"durationMinutes": 50,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var started sessionDTO
	require.NoError(t, json.Unmarshal(body, &started))
	resp, _ = api.do(http.MethodPatch, fmt.Sprintf("/api/sessions/%s/complete", started.ID), map[string]any{})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = api.do(http.MethodPost, "/api/insights/analyze", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var out insightResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "protect your mornings", out.Suggestion)
	assert.False(t, out.GeneratedAt.IsZero())
}

func TestAPI_InsightsUpstreamFailure(t *testing.T) {
	api := newTestAPI(t, &stubLLM{err: llm.ErrTimeout}, true)
	api.signUp("unlucky")

	resp, body := api.do(http.MethodPost, "/api/sessions", map[string]any{
		"goal":            "Doomed",
		"durationMinutes": 50,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var started sessionDTO
	require.NoError(t, json.Unmarshal(body, &started))
	resp, _ = api.do(http.MethodPatch, fmt.Sprintf("/api/sessions/%s/complete", started.ID), map[string]any{})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = api.do(http.MethodPost, "/api/insights/analyze", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestAPI_UserIsolation(t *testing.T) {
	api := newTestAPI(t, nil, false)
	api.signUp("owner")

	resp, body := api.do(http.MethodPost, "/api/tasks", map[string]any{
		"title":     "Private task",
		"startTime": time.Now().UTC().Format(time.RFC3339),
		"endTime":   time.Now().UTC().Add(time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var task taskDTO
	require.NoError(t, json.Unmarshal(body, &task))

	// A second account cannot see or delete the first account's task.
	api.signUp("intruder")
	resp, _ = api.do(http.MethodDelete, "/api/tasks/"+task.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
