package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/deepfocushub/deepfocus/internal/service"
)

type startSessionRequest struct {
	TaskID          *string    `json:"taskId"`
	Goal            string     `json:"goal"`
	DurationMinutes *int       `json:"durationMinutes"`
	StartTime       *time.Time `json:"startTime"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	in := service.StartSession{
		TaskID:          req.TaskID,
		Goal:            req.Goal,
		DurationMinutes: 50,
	}
	if req.DurationMinutes != nil {
		in.DurationMinutes = *req.DurationMinutes
	}
	if req.StartTime != nil {
		in.StartTime = *req.StartTime
	}

	session, err := s.sessions.Start(r.Context(), userID(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionDTO(session))
}

func (s *Server) handleActiveSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessions.Active(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if session == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, toSessionDTO(session))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessions.Get(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionDTO(session))
}

func (s *Server) handleSessionHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeBadRequest(w, "invalid limit")
			return
		}
		limit = n
	}

	sessions, err := s.sessions.History(r.Context(), userID(r), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionDTOs(sessions))
}

type pauseRequest struct {
	StartedAt time.Time `json:"startedAt"`
	EndedAt   time.Time `json:"endedAt"`
}

func (s *Server) handlePauseSession(w http.ResponseWriter, r *http.Request) {
	var req pauseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	session, err := s.sessions.Pause(r.Context(), userID(r), r.PathValue("id"), req.StartedAt, req.EndedAt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionDTO(session))
}

type distractionRequest struct {
	Timestamp *time.Time `json:"timestamp"`
}

func (s *Server) handleLogDistraction(w http.ResponseWriter, r *http.Request) {
	var req distractionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeBadRequest(w, "invalid request body")
			return
		}
	}

	session, err := s.sessions.LogDistraction(r.Context(), userID(r), r.PathValue("id"), req.Timestamp)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionDTO(session))
}

type notesRequest struct {
	QuickNotes string `json:"quickNotes"`
}

func (s *Server) handleSessionNotes(w http.ResponseWriter, r *http.Request) {
	var req notesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	session, err := s.sessions.SetNotes(r.Context(), userID(r), r.PathValue("id"), req.QuickNotes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionDTO(session))
}

type completeSessionRequest struct {
	EndTime           *time.Time `json:"endTime"`
	DurationCompleted *int       `json:"durationCompleted"`
	QuickNotes        *string    `json:"quickNotes"`
}

func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	var req completeSessionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeBadRequest(w, "invalid request body")
			return
		}
	}

	session, err := s.sessions.Complete(r.Context(), userID(r), r.PathValue("id"), service.CompleteSession{
		EndTime:           req.EndTime,
		DurationCompleted: req.DurationCompleted,
		QuickNotes:        req.QuickNotes,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionDTO(session))
}

type ratingRequest struct {
	FocusRating int `json:"focusRating"`
}

func (s *Server) handleRateSession(w http.ResponseWriter, r *http.Request) {
	var req ratingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	session, err := s.sessions.Rate(r.Context(), userID(r), r.PathValue("id"), req.FocusRating)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionDTO(session))
}
