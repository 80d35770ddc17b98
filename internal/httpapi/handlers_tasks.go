package httpapi

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/deepfocushub/deepfocus/internal/domain"
	"github.com/deepfocushub/deepfocus/internal/service"
)

const dateOnlyLayout = "2006-01-02"

// parseTimeParam accepts RFC3339 or a bare date and reports which form was
// used so a bare date can expand to a whole day.
func parseTimeParam(v string) (t time.Time, dateOnly bool, err error) {
	if t, err = time.Parse(time.RFC3339, v); err == nil {
		return t, false, nil
	}
	if t, err = time.Parse(dateOnlyLayout, v); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, err
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// parseDateRange resolves the tasks listing window: ?date= expands to that
// whole day, ?from=/?to= bound the range (a missing end falls back to the
// other bound's day), nothing at all means today.
func parseDateRange(q url.Values) (time.Time, time.Time, bool) {
	if v := q.Get("date"); v != "" {
		day, _, err := parseTimeParam(v)
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		return startOfDay(day), endOfDay(day), true
	}

	fromRaw, toRaw := q.Get("from"), q.Get("to")
	var from, to time.Time
	if fromRaw != "" {
		t, _, err := parseTimeParam(fromRaw)
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		from = t
	}
	if toRaw != "" {
		t, dateOnly, err := parseTimeParam(toRaw)
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		if dateOnly {
			t = endOfDay(t)
		}
		to = t
	}

	switch {
	case fromRaw != "" && toRaw != "":
		return from, to, true
	case fromRaw != "":
		return from, endOfDay(from), true
	case toRaw != "":
		return startOfDay(to), to, true
	default:
		now := time.Now()
		return startOfDay(now), endOfDay(now), true
	}
}

type subTaskInput struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	IsCompleted bool   `json:"isCompleted"`
}

func toDomainSubTasks(in []subTaskInput) []domain.SubTask {
	out := make([]domain.SubTask, 0, len(in))
	for _, st := range in {
		out = append(out, domain.SubTask{ID: st.ID, Title: st.Title, IsCompleted: st.IsCompleted})
	}
	return out
}

type createTaskRequest struct {
	Title        string         `json:"title"`
	StartTime    time.Time      `json:"startTime"`
	EndTime      time.Time      `json:"endTime"`
	Project      string         `json:"project"`
	ProgressNote string         `json:"progressNote"`
	SubTasks     []subTaskInput `json:"subTasks"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	task := &domain.Task{
		UserID:       userID(r),
		Title:        req.Title,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Project:      req.Project,
		ProgressNote: req.ProgressNote,
		SubTasks:     toDomainSubTasks(req.SubTasks),
	}
	created, err := s.tasks.Create(r.Context(), task)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTaskDTO(created))
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	start, end, ok := parseDateRange(r.URL.Query())
	if !ok {
		writeBadRequest(w, "invalid date range")
		return
	}

	tasks, err := s.tasks.ListRange(r.Context(), userID(r), start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskDTOs(tasks))
}

type updateTaskRequest struct {
	Title        *string         `json:"title"`
	StartTime    *time.Time      `json:"startTime"`
	EndTime      *time.Time      `json:"endTime"`
	Project      *string         `json:"project"`
	ProgressNote *string         `json:"progressNote"`
	SubTasks     *[]subTaskInput `json:"subTasks"`
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	upd := service.TaskUpdate{
		Title:        req.Title,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Project:      req.Project,
		ProgressNote: req.ProgressNote,
	}
	if req.SubTasks != nil {
		subTasks := toDomainSubTasks(*req.SubTasks)
		upd.SubTasks = &subTasks
	}

	task, err := s.tasks.Update(r.Context(), userID(r), r.PathValue("id"), upd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskDTO(task))
}

type toggleTaskRequest struct {
	IsCompleted bool `json:"isCompleted"`
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	var req toggleTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	task, err := s.tasks.SetCompleted(r.Context(), userID(r), r.PathValue("id"), req.IsCompleted)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskDTO(task))
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.tasks.Delete(r.Context(), userID(r), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
