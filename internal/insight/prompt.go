// Package insight turns a user's recent focus history into an LLM prompt and
// a generated coaching suggestion.
package insight

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/deepfocushub/deepfocus/internal/domain"
	"github.com/deepfocushub/deepfocus/internal/stats"
)

const (
	// MinEffectiveMinutes is the floor below which a completed session does
	// not contribute to insight generation.
	MinEffectiveMinutes = 10

	// MaxSessionsInPrompt caps how many recent sessions feed the prompt.
	MaxSessionsInPrompt = 20

	maxTaskContext    = 8
	maxProjectContext = 5
	noProjectLabel    = "No project"
)

type timeSegment struct {
	label     string
	startHour int
	endHour   int
}

var timeSegments = []timeSegment{
	{"Morning (05:00-11:00)", 5, 11},
	{"Midday (11:00-14:00)", 11, 14},
	{"Afternoon (14:00-18:00)", 14, 18},
	{"Evening (18:00-22:00)", 18, 22},
	{"Night (22:00-05:00)", 22, 24},
}

func segmentLabel(t time.Time) string {
	hour := t.Hour()
	for _, seg := range timeSegments {
		if seg.startHour == 22 {
			if hour >= 22 || hour < 5 {
				return seg.label
			}
			continue
		}
		if hour >= seg.startHour && hour < seg.endHour {
			return seg.label
		}
	}
	return timeSegments[0].label
}

func truncate(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxLen {
		return s
	}
	return strings.TrimSpace(s[:maxLen]) + "…"
}

func fmtMinutes(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	return strings.TrimSuffix(s, ".0")
}

type segmentSummary struct {
	label           string
	sessions        int
	minutes         int
	goalsMet        int
	distractions    int
	goalRate        int
	avgDistractions float64
}

type sessionSummary struct {
	count           int
	minutes         int
	distractions    int
	goalsMet        int
	averageDuration float64
	avgDistractions float64
	completionRate  float64
	longest         *longestSession
	segments        []segmentSummary
}

type longestSession struct {
	duration  int
	goal      string
	startTime time.Time
	project   string
}

// summarizeSessions computes the headline figures and per-time-segment
// breakdown used by the prompt. A session counts as "goal met" when it ran
// at least 95% of its planned duration.
func summarizeSessions(sessions []*domain.DeepWorkSession, taskByID map[string]*domain.Task) sessionSummary {
	sum := sessionSummary{count: len(sessions)}
	byLabel := make(map[string]*segmentSummary)

	for _, s := range sessions {
		actual := s.EffectiveMinutes()
		target := s.DurationSet
		distractions := len(s.DistractionTimestamps)

		sum.minutes += actual
		sum.distractions += distractions

		goalMet := actual >= MinEffectiveMinutes
		if target > 0 {
			goalMet = float64(actual) >= float64(target)*0.95
		}
		if goalMet {
			sum.goalsMet++
		}

		label := segmentLabel(s.StartTime)
		seg, ok := byLabel[label]
		if !ok {
			seg = &segmentSummary{label: label}
			byLabel[label] = seg
		}
		seg.sessions++
		seg.minutes += actual
		seg.distractions += distractions
		if goalMet {
			seg.goalsMet++
		}

		project := noProjectLabel
		if s.TaskID != nil {
			if task, ok := taskByID[*s.TaskID]; ok && strings.TrimSpace(task.Project) != "" {
				project = task.Project
			}
		}
		if sum.longest == nil || actual > sum.longest.duration {
			sum.longest = &longestSession{
				duration:  actual,
				goal:      s.Goal,
				startTime: s.StartTime,
				project:   project,
			}
		}
	}

	if sum.count > 0 {
		sum.averageDuration = float64(sum.minutes) / float64(sum.count)
		sum.avgDistractions = float64(sum.distractions) / float64(sum.count)
		sum.completionRate = float64(sum.goalsMet) / float64(sum.count) * 100
	}

	for _, seg := range byLabel {
		seg.goalRate = int(float64(seg.goalsMet)/float64(seg.sessions)*100 + 0.5)
		seg.avgDistractions = float64(seg.distractions) / float64(seg.sessions)
		sum.segments = append(sum.segments, *seg)
	}
	sort.Slice(sum.segments, func(i, j int) bool {
		return sum.segments[i].minutes > sum.segments[j].minutes
	})

	return sum
}

// buildTaskHighlights lists the most recently updated tasks that carry a
// progress note or an unfinished checklist item, capped at maxTaskContext.
func buildTaskHighlights(tasks []*domain.Task) []string {
	var relevant []*domain.Task
	for _, t := range tasks {
		hasNote := strings.TrimSpace(t.ProgressNote) != ""
		unfinished := false
		for _, st := range t.SubTasks {
			if !st.IsCompleted {
				unfinished = true
				break
			}
		}
		if hasNote || unfinished {
			relevant = append(relevant, t)
		}
	}
	sort.Slice(relevant, func(i, j int) bool {
		return relevant[i].UpdatedAt.After(relevant[j].UpdatedAt)
	})
	if len(relevant) > maxTaskContext {
		relevant = relevant[:maxTaskContext]
	}

	lines := make([]string, 0, len(relevant))
	for _, t := range relevant {
		done := 0
		for _, st := range t.SubTasks {
			if st.IsCompleted {
				done++
			}
		}
		checklist := "no checklist"
		if len(t.SubTasks) > 0 {
			checklist = fmt.Sprintf("checklist %d/%d", done, len(t.SubTasks))
		}
		note := truncate(t.ProgressNote, 200)
		if note == "" {
			note = "no note"
		}
		project := strings.TrimSpace(t.Project)
		if project == "" {
			project = "general"
		}
		lines = append(lines, fmt.Sprintf("- %s | %s (project: %s) | %s | note: %s",
			t.StartTime.Format("Jan 2 15:04"), t.Title, project, checklist, note))
	}
	return lines
}

// buildProjectSummary aggregates focused minutes, upcoming tasks, and open
// checklist items per project, keeping the top maxProjectContext projects by
// focus time.
func buildProjectSummary(sessions []*domain.DeepWorkSession, tasks []*domain.Task, now time.Time) []string {
	type projectBucket struct {
		name             string
		focusedMinutes   int
		sessions         int
		upcomingTasks    int
		pendingChecklist int
	}

	buckets := make(map[string]*projectBucket)
	ensure := func(name string) *projectBucket {
		if strings.TrimSpace(name) == "" {
			name = noProjectLabel
		}
		b, ok := buckets[name]
		if !ok {
			b = &projectBucket{name: name}
			buckets[name] = b
		}
		return b
	}

	taskByID := make(map[string]*domain.Task, len(tasks))
	for _, t := range tasks {
		taskByID[t.ID] = t
	}

	for _, s := range sessions {
		name := ""
		if s.TaskID != nil {
			if task, ok := taskByID[*s.TaskID]; ok {
				name = task.Project
			}
		}
		b := ensure(name)
		b.focusedMinutes += s.EffectiveMinutes()
		b.sessions++
	}

	for _, t := range tasks {
		b := ensure(t.Project)
		if !t.IsCompleted && t.EndTime.After(now) {
			b.upcomingTasks++
		}
		for _, st := range t.SubTasks {
			if !st.IsCompleted {
				b.pendingChecklist++
			}
		}
	}

	sorted := make([]*projectBucket, 0, len(buckets))
	for _, b := range buckets {
		sorted = append(sorted, b)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].focusedMinutes > sorted[j].focusedMinutes
	})
	if len(sorted) > maxProjectContext {
		sorted = sorted[:maxProjectContext]
	}

	lines := make([]string, 0, len(sorted))
	for _, b := range sorted {
		lines = append(lines, fmt.Sprintf("- %s: %d focused minutes across %d sessions. Upcoming tasks: %d; open checklist items: %d.",
			b.name, b.focusedMinutes, b.sessions, b.upcomingTasks, b.pendingChecklist))
	}
	return lines
}

type streakInfo struct {
	current       int
	longest       int
	daysSinceLast int
	minutesLast7d int
	nextMilestone string
}

// buildStreakInfo derives the motivation section inputs. Sessions must be
// ordered newest first.
func buildStreakInfo(sessions []*domain.DeepWorkSession, now time.Time) streakInfo {
	streaks := stats.CalculateStreaks(sessions, now)
	info := streakInfo{current: streaks.Current, longest: streaks.Longest}

	if len(sessions) > 0 {
		last := sessions[0].ReferenceTime()
		lastDay := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, now.Location())
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		info.daysSinceLast = int(today.Sub(lastDay).Hours() / 24)
	}

	cutoff := now.AddDate(0, 0, -7)
	for _, s := range sessions {
		if s.ReferenceTime().After(cutoff) {
			info.minutesLast7d += s.EffectiveMinutes()
		}
	}

	switch {
	case info.current >= 5:
		info.nextMilestone = "Keep the 5+ day run alive to hit a full 7-day streak."
	case info.current >= 3:
		info.nextMilestone = "Push the streak from 3 to 5 days to lock in the habit."
	default:
		info.nextMilestone = "Build a 3-day streak to get steady momentum going."
	}
	return info
}

// buildPrompt assembles the full user prompt. The caller guarantees sessions
// is non-empty; the no-data case short-circuits before prompting.
func buildPrompt(sessions []*domain.DeepWorkSession, tasks []*domain.Task, now time.Time) string {
	taskByID := make(map[string]*domain.Task, len(tasks))
	for _, t := range tasks {
		taskByID[t.ID] = t
	}

	summary := summarizeSessions(sessions, taskByID)
	highlights := buildTaskHighlights(tasks)
	projects := buildProjectSummary(sessions, tasks, now)
	streak := buildStreakInfo(sessions, now)

	longest := "No single longest session identified."
	if summary.longest != nil {
		goal := summary.longest.goal
		if goal == "" {
			goal = "no stated goal"
		}
		longest = fmt.Sprintf("Longest session: %d minutes on %q at %s (project %s).",
			summary.longest.duration, goal,
			summary.longest.startTime.Format("Jan 2 15:04"), summary.longest.project)
	}

	overview := strings.Join([]string{
		fmt.Sprintf("- %d sessions, %d total minutes.", summary.count, summary.minutes),
		fmt.Sprintf("- Average duration: %s minutes per session.", fmtMinutes(summary.averageDuration)),
		fmt.Sprintf("- Duration goal hit rate: %s%%.", fmtMinutes(summary.completionRate)),
		fmt.Sprintf("- Average %s distractions per session.", fmtMinutes(summary.avgDistractions)),
		"- " + longest,
	}, "\n")

	segmentLines := "Not enough data to break sessions down by time of day."
	if len(summary.segments) > 0 {
		var lines []string
		for _, seg := range summary.segments {
			lines = append(lines, fmt.Sprintf("- %s: %d sessions, %d minutes, goals met %d%%, avg distractions %s",
				seg.label, seg.sessions, seg.minutes, seg.goalRate, fmtMinutes(seg.avgDistractions)))
		}
		segmentLines = strings.Join(lines, "\n")
	}

	taskLines := "No recent progress notes or open checklists stand out."
	if len(highlights) > 0 {
		taskLines = strings.Join(highlights, "\n")
	}

	projectLines := "No project-level data recorded yet."
	if len(projects) > 0 {
		projectLines = strings.Join(projects, "\n")
	}

	lastSession := "The most recent session finished today."
	if streak.daysSinceLast > 0 {
		lastSession = fmt.Sprintf("It has been %d days since the last completed session.", streak.daysSinceLast)
	}
	streakLines := strings.Join([]string{
		fmt.Sprintf("- Current streak: %d days; longest: %d days.", streak.current, streak.longest),
		"- " + lastSession,
		fmt.Sprintf("- Total focused minutes over the last 7 days: %d.", streak.minutesLast7d),
		"- Next milestone: " + streak.nextMilestone,
	}, "\n")

	return fmt.Sprintf(`Here is the user's recent deep work data (sessions under %d minutes excluded) along with task context:

=== PERFORMANCE OVERVIEW ===
%s

=== TIME-OF-DAY BREAKDOWN ===
%s

=== NOTABLE TASKS & CHECKLISTS ===
%s

=== PROJECT OVERVIEW ===
%s

=== MOMENTUM & STREAK ===
%s

Analyze this in a friendly, concrete tone:
1. **Strengths** (at least 3 bullets) about current focus habits, naming the time windows, projects, or conditions where the user works best.
2. **Bottlenecks** (at least 3 bullets) based on open checklists, weak time windows, distractions, or stalled projects.
3. **Suggested plan for next week** (exactly 3 action items): each with a concrete target, a duration or session count, and a way to measure progress.
4. Close with one encouragement or mini-challenge tied to the current streak.

Keep the answer concise, using bullets or numbering that is easy to follow.`,
		MinEffectiveMinutes, overview, segmentLines, taskLines, projectLines, streakLines)
}
