// Package httpapi exposes the REST surface: routing, auth middleware, JSON
// encoding, and the mapping from service errors to HTTP statuses.
package httpapi

import (
	"log"
	"net/http"

	"github.com/deepfocushub/deepfocus/internal/auth"
	"github.com/deepfocushub/deepfocus/internal/service"
)

type Server struct {
	authSvc  service.AuthService
	tasks    service.TaskService
	sessions service.SessionService
	stats    service.StatsService
	insights service.InsightService
	tokens   *auth.TokenIssuer
	logger   *log.Logger
}

func NewServer(
	authSvc service.AuthService,
	tasks service.TaskService,
	sessions service.SessionService,
	stats service.StatsService,
	insights service.InsightService,
	tokens *auth.TokenIssuer,
	logger *log.Logger,
) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		authSvc:  authSvc,
		tasks:    tasks,
		sessions: sessions,
		stats:    stats,
		insights: insights,
		tokens:   tokens,
		logger:   logger,
	}
}

// Handler builds the full route table. Method-qualified patterns let the
// mux reject wrong verbs with 405 on its own.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/users/register", s.handleRegister)
	mux.HandleFunc("POST /api/users/login", s.handleLogin)

	mux.Handle("GET /api/tasks", s.requireAuth(s.handleListTasks))
	mux.Handle("POST /api/tasks", s.requireAuth(s.handleCreateTask))
	mux.Handle("PUT /api/tasks/{id}", s.requireAuth(s.handleUpdateTask))
	mux.Handle("PATCH /api/tasks/{id}/complete", s.requireAuth(s.handleToggleTask))
	mux.Handle("DELETE /api/tasks/{id}", s.requireAuth(s.handleDeleteTask))

	mux.Handle("GET /api/sessions/active", s.requireAuth(s.handleActiveSession))
	mux.Handle("GET /api/sessions/history", s.requireAuth(s.handleSessionHistory))
	mux.Handle("GET /api/sessions/{id}", s.requireAuth(s.handleGetSession))
	mux.Handle("POST /api/sessions", s.requireAuth(s.handleStartSession))
	mux.Handle("PATCH /api/sessions/{id}/pause", s.requireAuth(s.handlePauseSession))
	mux.Handle("PATCH /api/sessions/{id}/distraction", s.requireAuth(s.handleLogDistraction))
	mux.Handle("PATCH /api/sessions/{id}/notes", s.requireAuth(s.handleSessionNotes))
	mux.Handle("PATCH /api/sessions/{id}/complete", s.requireAuth(s.handleCompleteSession))
	mux.Handle("POST /api/sessions/{id}/rating", s.requireAuth(s.handleRateSession))

	mux.Handle("GET /api/stats/overview", s.requireAuth(s.handleStatsOverview))
	mux.Handle("POST /api/insights/analyze", s.requireAuth(s.handleAnalyzeInsights))

	return s.logRequests(cors(mux))
}
