package stats

import (
	"math"
	"time"

	"github.com/deepfocushub/deepfocus/internal/domain"
)

// Metrics are the headline figures of the overview. Totals are scoped to
// the current calendar month; the streak counters are all-time.
type Metrics struct {
	TotalMinutes        int      `json:"totalMinutes"`
	TotalHours          float64  `json:"totalHours"`
	CompletedSessions   int      `json:"completedSessions"`
	AverageRating       *float64 `json:"averageRating"`
	TotalPoints         int      `json:"totalPoints"`
	DistractionCount    int      `json:"distractionCount"`
	MaxRating           int      `json:"maxRating"`
	LongSessionCount    int      `json:"longSessionCount"`
	CurrentStreak       int      `json:"currentStreak"`
	LongestStreak       int      `json:"longestStreak"`
	AverageDistractions float64  `json:"averageDistractions"`
	PeriodStart         string   `json:"periodStart"`
	PeriodEnd           string   `json:"periodEnd"`
}

// TaskSummary counts the month's tasks by state.
type TaskSummary struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Upcoming  int `json:"upcoming"`
	Overdue   int `json:"overdue"`
}

// Overview is the full derived-statistics object served per request.
type Overview struct {
	Metrics            Metrics
	Heatmap            []HeatmapBucket
	WeeklyBreakdown    []WeeklyBucket
	RatingDistribution map[int]int
	FocusWindows       []FocusWindow
	Badges             []Badge
	TaskSummary        TaskSummary
}

// BuildOverview derives all statistics from a user's completed sessions and
// tasks. The month-scoped figures use the calendar month containing now;
// streaks and badges evaluate the full history. Both scopes coexist on
// purpose: the dashboard shows "this month" while streak-driven achievements
// must not reset at a month boundary.
func BuildOverview(sessions []*domain.DeepWorkSession, tasks []*domain.Task, now time.Time) Overview {
	loc := now.Location()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	monthEnd := monthStart.AddDate(0, 1, 0).Add(-time.Second)

	var monthlySessions []*domain.DeepWorkSession
	for _, s := range sessions {
		ref := s.ReferenceTime().In(loc)
		if ref.Year() == now.Year() && ref.Month() == now.Month() {
			monthlySessions = append(monthlySessions, s)
		}
	}

	var monthlyTasks []*domain.Task
	for _, t := range tasks {
		st := t.StartTime.In(loc)
		if st.Year() == now.Year() && st.Month() == now.Month() {
			monthlyTasks = append(monthlyTasks, t)
		}
	}

	var totalMinutes, totalPoints, distractionCount, longSessionCount, maxRating int
	var ratingSum, ratingCount int
	for _, s := range monthlySessions {
		totalMinutes += s.EffectiveMinutes()
		totalPoints += s.PointsEarned
		distractionCount += len(s.DistractionTimestamps)
		if s.DurationSet >= 60 {
			longSessionCount++
		}
		if s.FocusRating != nil {
			ratingSum += *s.FocusRating
			ratingCount++
			if *s.FocusRating > maxRating {
				maxRating = *s.FocusRating
			}
		}
	}

	var avgRating *float64
	if ratingCount > 0 {
		v := round2(float64(ratingSum) / float64(ratingCount))
		avgRating = &v
	}

	var avgDistractions float64
	if len(monthlySessions) > 0 {
		avgDistractions = round2(float64(distractionCount) / float64(len(monthlySessions)))
	}

	streaks := CalculateStreaks(sessions, now)

	metrics := Metrics{
		TotalMinutes:        totalMinutes,
		TotalHours:          round1(float64(totalMinutes) / 60),
		CompletedSessions:   len(monthlySessions),
		AverageRating:       avgRating,
		TotalPoints:         totalPoints,
		DistractionCount:    distractionCount,
		MaxRating:           maxRating,
		LongSessionCount:    longSessionCount,
		CurrentStreak:       streaks.Current,
		LongestStreak:       streaks.Longest,
		AverageDistractions: avgDistractions,
		PeriodStart:         monthStart.Format(time.RFC3339),
		PeriodEnd:           monthEnd.Format(time.RFC3339),
	}

	summary := TaskSummary{Total: len(monthlyTasks)}
	for _, t := range monthlyTasks {
		if t.IsCompleted {
			summary.Completed++
		}
		if t.StartTime.After(now) {
			summary.Upcoming++
		}
		if !t.IsCompleted && t.EndTime.Before(now) {
			summary.Overdue++
		}
	}

	// Badge inputs are all-time, matching the streak scope.
	var allPoints, allLongSessions, allMaxRating int
	for _, s := range sessions {
		allPoints += s.PointsEarned
		if s.DurationSet >= 60 {
			allLongSessions++
		}
		if s.FocusRating != nil && *s.FocusRating > allMaxRating {
			allMaxRating = *s.FocusRating
		}
	}
	badges := CalculateBadges(BadgeInputs{
		CurrentStreak:    streaks.Current,
		LongestStreak:    streaks.Longest,
		TotalPoints:      allPoints,
		MaxRating:        allMaxRating,
		LongSessionCount: allLongSessions,
	}, now)

	return Overview{
		Metrics:            metrics,
		Heatmap:            BuildHeatmap(monthlySessions, loc),
		WeeklyBreakdown:    BuildWeeklyBreakdown(monthlySessions, loc),
		RatingDistribution: BuildRatingDistribution(monthlySessions),
		FocusWindows:       BuildFocusWindows(monthlySessions, loc),
		Badges:             badges,
		TaskSummary:        summary,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
