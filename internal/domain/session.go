package domain

import (
	"math"
	"strings"
	"time"
)

// PauseEvent is one bounded pause inside a session.
type PauseEvent struct {
	ID              string
	StartedAt       time.Time
	EndedAt         time.Time
	DurationSeconds int
}

// DeepWorkSession is one timed focus attempt, optionally linked to a task.
type DeepWorkSession struct {
	ID                    string
	UserID                string
	TaskID                *string
	Goal                  string
	DurationSet           int // planned minutes
	DurationCompleted     int
	FocusRating           *int
	DistractionTimestamps []time.Time
	PauseEvents           []PauseEvent
	QuickNotes            string
	StartTime             time.Time
	EndTime               *time.Time
	Status                SessionStatus
	PointsEarned          int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSession validates start preconditions and builds an in_progress
// session. The caller supplies identity fields and the start instant.
func NewSession(id, userID string, taskID *string, goal string, durationMinutes int, startTime time.Time, now time.Time) (*DeepWorkSession, error) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return nil, Invalidf("a focus session needs a goal")
	}
	if durationMinutes < MinSessionMinutes || durationMinutes > MaxSessionMinutes {
		return nil, Invalidf("session duration must be between %d and %d minutes", MinSessionMinutes, MaxSessionMinutes)
	}
	if startTime.IsZero() {
		startTime = now
	}
	return &DeepWorkSession{
		ID:          id,
		UserID:      userID,
		TaskID:      taskID,
		Goal:        goal,
		DurationSet: durationMinutes,
		StartTime:   startTime,
		Status:      SessionInProgress,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// LogPause appends a pause event. At most MaxPauseEvents pauses are allowed
// per session and each is capped at MaxPauseSeconds. The server re-validates
// the interval regardless of what the client's own countdown did.
func (s *DeepWorkSession) LogPause(id string, startedAt, endedAt time.Time, now time.Time) error {
	if s.Status != SessionInProgress {
		return Invalidf("session is not in progress")
	}
	if len(s.PauseEvents) >= MaxPauseEvents {
		return Invalidf("a session allows at most %d pauses", MaxPauseEvents)
	}
	if startedAt.IsZero() || endedAt.IsZero() {
		return Invalidf("pause start and end times are required")
	}
	if endedAt.Before(startedAt) {
		return Invalidf("pause end time must not be before its start time")
	}
	seconds := int(math.Round(endedAt.Sub(startedAt).Seconds()))
	if seconds > MaxPauseSeconds {
		return Invalidf("a pause is capped at %d seconds", MaxPauseSeconds)
	}
	s.PauseEvents = append(s.PauseEvents, PauseEvent{
		ID:              id,
		StartedAt:       startedAt,
		EndedAt:         endedAt,
		DurationSeconds: seconds,
	})
	s.UpdatedAt = now
	return nil
}

// LogDistraction appends a distraction timestamp. The list is unbounded.
func (s *DeepWorkSession) LogDistraction(at time.Time, now time.Time) error {
	if s.Status != SessionInProgress {
		return Invalidf("session is not in progress")
	}
	if at.IsZero() {
		at = now
	}
	s.DistractionTimestamps = append(s.DistractionTimestamps, at)
	s.UpdatedAt = now
	return nil
}

// SetQuickNotes replaces the notes, truncated to MaxQuickNotesLen. Notes
// stay editable after completion.
func (s *DeepWorkSession) SetQuickNotes(notes string, now time.Time) error {
	if s.Status != SessionInProgress && s.Status != SessionCompleted {
		return Invalidf("session notes can no longer be edited")
	}
	if len(notes) > MaxQuickNotesLen {
		notes = notes[:MaxQuickNotesLen]
	}
	s.QuickNotes = notes
	s.UpdatedAt = now
	return nil
}

// Complete is the terminal transition of the happy path. The completed
// duration is clamped to the planned duration and defaults to it when the
// client sends nothing usable.
func (s *DeepWorkSession) Complete(endTime *time.Time, durationCompleted *int, quickNotes *string, now time.Time) error {
	if s.Status != SessionInProgress {
		return Invalidf("session is not in progress")
	}

	end := now
	if endTime != nil && !endTime.IsZero() {
		end = *endTime
	}
	s.EndTime = &end

	if durationCompleted != nil && *durationCompleted >= 0 {
		s.DurationCompleted = min(*durationCompleted, s.DurationSet)
	} else {
		s.DurationCompleted = s.DurationSet
	}

	if quickNotes != nil {
		notes := *quickNotes
		if len(notes) > MaxQuickNotesLen {
			notes = notes[:MaxQuickNotesLen]
		}
		s.QuickNotes = notes
	}

	s.Status = SessionCompleted
	s.UpdatedAt = now
	return nil
}

// SubmitRating records a 1-5 focus rating on a completed session and
// derives the points score. Re-rating overwrites both fields.
func (s *DeepWorkSession) SubmitRating(rating int, now time.Time) error {
	if s.Status != SessionCompleted {
		return Invalidf("only completed sessions can be rated")
	}
	if rating < 1 || rating > 5 {
		return Invalidf("focus rating must be between 1 and 5")
	}
	s.FocusRating = &rating

	base := s.DurationCompleted
	if base == 0 {
		base = s.DurationSet
	}
	s.PointsEarned = int(math.Round(float64(base) + float64(rating)*5))
	s.UpdatedAt = now
	return nil
}

// EffectiveMinutes is the minutes a session counts for in statistics:
// completed duration, falling back to the planned duration.
func (s *DeepWorkSession) EffectiveMinutes() int {
	if s.DurationCompleted > 0 {
		return s.DurationCompleted
	}
	return s.DurationSet
}

// ReferenceTime is the instant a session is bucketed by for calendar
// grouping: end time, falling back to start time.
func (s *DeepWorkSession) ReferenceTime() time.Time {
	if s.EndTime != nil && !s.EndTime.IsZero() {
		return *s.EndTime
	}
	return s.StartTime
}
