package httpapi

import (
	"time"

	"github.com/deepfocushub/deepfocus/internal/domain"
	"github.com/deepfocushub/deepfocus/internal/service"
	"github.com/deepfocushub/deepfocus/internal/stats"
)

type userDTO struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

type authResponse struct {
	Message string  `json:"message"`
	Token   string  `json:"token"`
	User    userDTO `json:"user"`
}

func toAuthResponse(message string, res *service.AuthResult) authResponse {
	return authResponse{
		Message: message,
		Token:   res.Token,
		User: userDTO{
			ID:        res.User.ID,
			Username:  res.User.Username,
			CreatedAt: res.User.CreatedAt,
		},
	}
}

type subTaskDTO struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	IsCompleted bool   `json:"isCompleted"`
}

type taskDTO struct {
	ID           string       `json:"id"`
	UserID       string       `json:"userId"`
	Title        string       `json:"title"`
	StartTime    time.Time    `json:"startTime"`
	EndTime      time.Time    `json:"endTime"`
	Project      string       `json:"project"`
	ProgressNote string       `json:"progressNote"`
	IsCompleted  bool         `json:"isCompleted"`
	SubTasks     []subTaskDTO `json:"subTasks"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

func toTaskDTO(t *domain.Task) taskDTO {
	subTasks := make([]subTaskDTO, 0, len(t.SubTasks))
	for _, st := range t.SubTasks {
		subTasks = append(subTasks, subTaskDTO{ID: st.ID, Title: st.Title, IsCompleted: st.IsCompleted})
	}
	return taskDTO{
		ID:           t.ID,
		UserID:       t.UserID,
		Title:        t.Title,
		StartTime:    t.StartTime,
		EndTime:      t.EndTime,
		Project:      t.Project,
		ProgressNote: t.ProgressNote,
		IsCompleted:  t.IsCompleted,
		SubTasks:     subTasks,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func toTaskDTOs(tasks []*domain.Task) []taskDTO {
	out := make([]taskDTO, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskDTO(t))
	}
	return out
}

type pauseEventDTO struct {
	ID              string    `json:"id"`
	StartedAt       time.Time `json:"startedAt"`
	EndedAt         time.Time `json:"endedAt"`
	DurationSeconds int       `json:"durationSeconds"`
}

type sessionDTO struct {
	ID                    string               `json:"id"`
	UserID                string               `json:"userId"`
	TaskID                *string              `json:"taskId"`
	Goal                  string               `json:"goal"`
	DurationSet           int                  `json:"durationSet"`
	DurationCompleted     int                  `json:"durationCompleted"`
	FocusRating           *int                 `json:"focusRating"`
	DistractionTimestamps []time.Time          `json:"distractionTimestamps"`
	PauseEvents           []pauseEventDTO      `json:"pauseEvents"`
	QuickNotes            string               `json:"quickNotes"`
	StartTime             time.Time            `json:"startTime"`
	EndTime               *time.Time           `json:"endTime"`
	Status                domain.SessionStatus `json:"status"`
	PointsEarned          int                  `json:"pointsEarned"`
	CreatedAt             time.Time            `json:"createdAt"`
	UpdatedAt             time.Time            `json:"updatedAt"`
}

func toSessionDTO(s *domain.DeepWorkSession) sessionDTO {
	pauses := make([]pauseEventDTO, 0, len(s.PauseEvents))
	for _, p := range s.PauseEvents {
		pauses = append(pauses, pauseEventDTO{
			ID:              p.ID,
			StartedAt:       p.StartedAt,
			EndedAt:         p.EndedAt,
			DurationSeconds: p.DurationSeconds,
		})
	}
	distractions := s.DistractionTimestamps
	if distractions == nil {
		distractions = []time.Time{}
	}
	return sessionDTO{
		ID:                    s.ID,
		UserID:                s.UserID,
		TaskID:                s.TaskID,
		Goal:                  s.Goal,
		DurationSet:           s.DurationSet,
		DurationCompleted:     s.DurationCompleted,
		FocusRating:           s.FocusRating,
		DistractionTimestamps: distractions,
		PauseEvents:           pauses,
		QuickNotes:            s.QuickNotes,
		StartTime:             s.StartTime,
		EndTime:               s.EndTime,
		Status:                s.Status,
		PointsEarned:          s.PointsEarned,
		CreatedAt:             s.CreatedAt,
		UpdatedAt:             s.UpdatedAt,
	}
}

func toSessionDTOs(sessions []*domain.DeepWorkSession) []sessionDTO {
	out := make([]sessionDTO, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, toSessionDTO(s))
	}
	return out
}

type statsResponse struct {
	Metrics            stats.Metrics         `json:"metrics"`
	Heatmap            []stats.HeatmapBucket `json:"heatmap"`
	WeeklyBreakdown    []stats.WeeklyBucket  `json:"weeklyBreakdown"`
	RatingDistribution map[int]int           `json:"ratingDistribution"`
	FocusWindows       []stats.FocusWindow   `json:"focusWindows"`
	Badges             []stats.Badge         `json:"badges"`
	TaskSummary        stats.TaskSummary     `json:"taskSummary"`
	RecentSessions     []sessionDTO          `json:"recentSessions"`
}

func toStatsResponse(o *service.Overview) statsResponse {
	heatmap := o.Heatmap
	if heatmap == nil {
		heatmap = []stats.HeatmapBucket{}
	}
	weekly := o.WeeklyBreakdown
	if weekly == nil {
		weekly = []stats.WeeklyBucket{}
	}
	badges := o.Badges
	if badges == nil {
		badges = []stats.Badge{}
	}
	return statsResponse{
		Metrics:            o.Metrics,
		Heatmap:            heatmap,
		WeeklyBreakdown:    weekly,
		RatingDistribution: o.RatingDistribution,
		FocusWindows:       o.FocusWindows,
		Badges:             badges,
		TaskSummary:        o.TaskSummary,
		RecentSessions:     toSessionDTOs(o.RecentSessions),
	}
}

type insightResponse struct {
	Suggestion  string    `json:"suggestion"`
	GeneratedAt time.Time `json:"generatedAt"`
}
