package domain

// SessionStatus is the lifecycle state of a deep work session.
type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionCancelled  SessionStatus = "cancelled"
)

// Limits enforced by the session state machine and task sanitizers.
const (
	MinSessionMinutes = 10
	MaxSessionMinutes = 240

	MaxPauseEvents  = 2
	MaxPauseSeconds = 180

	MaxQuickNotesLen   = 2000
	MaxProgressNoteLen = 500
	MaxSubTaskTitleLen = 120
)
