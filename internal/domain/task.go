package domain

import (
	"strings"
	"time"
)

// SubTask is one checklist item under a task.
type SubTask struct {
	ID          string
	Title       string
	IsCompleted bool
}

type Task struct {
	ID           string
	UserID       string
	Title        string
	StartTime    time.Time
	EndTime      time.Time
	Project      string
	ProgressNote string
	IsCompleted  bool
	SubTasks     []SubTask

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SanitizeProgressNote trims a progress note and bounds its length.
func SanitizeProgressNote(note string) string {
	note = strings.TrimSpace(note)
	if len(note) > MaxProgressNoteLen {
		note = note[:MaxProgressNoteLen]
	}
	return note
}

// SanitizeSubTasks drops entries with empty titles, trims and bounds the
// rest. Existing IDs are preserved so a replacement can keep stable IDs.
func SanitizeSubTasks(subTasks []SubTask) []SubTask {
	var out []SubTask
	for _, st := range subTasks {
		title := strings.TrimSpace(st.Title)
		if title == "" {
			continue
		}
		if len(title) > MaxSubTaskTitleLen {
			title = title[:MaxSubTaskTitleLen]
		}
		out = append(out, SubTask{ID: st.ID, Title: title, IsCompleted: st.IsCompleted})
	}
	return out
}

// DeriveCompletion reports whether a checklist implies the parent task is
// complete: every sub-task done, and at least one sub-task present.
func DeriveCompletion(subTasks []SubTask) bool {
	if len(subTasks) == 0 {
		return false
	}
	for _, st := range subTasks {
		if !st.IsCompleted {
			return false
		}
	}
	return true
}

// ReplaceSubTasks swaps the checklist wholesale (no merge) and re-derives
// the parent completion flag when the new checklist is non-empty.
func (t *Task) ReplaceSubTasks(subTasks []SubTask, now time.Time) {
	t.SubTasks = SanitizeSubTasks(subTasks)
	if len(t.SubTasks) > 0 {
		t.IsCompleted = DeriveCompletion(t.SubTasks)
	}
	t.UpdatedAt = now
}

// SetCompleted toggles the task's completion flag and cascades the same
// flag to every sub-task.
func (t *Task) SetCompleted(completed bool, now time.Time) {
	t.IsCompleted = completed
	for i := range t.SubTasks {
		t.SubTasks[i].IsCompleted = completed
	}
	t.UpdatedAt = now
}
