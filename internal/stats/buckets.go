// Package stats derives presentation-ready aggregates from completed deep
// work sessions and tasks. Everything here is a pure function recomputed per
// request; nothing is cached or persisted.
package stats

import (
	"sort"
	"time"

	"github.com/deepfocushub/deepfocus/internal/domain"
)

const dateLayout = "2006-01-02"

// HeatmapBucket is one calendar day's focus total.
type HeatmapBucket struct {
	Date     string `json:"date"`
	Minutes  int    `json:"minutes"`
	Sessions int    `json:"sessions"`
}

// WeeklyBucket is one ISO week's focus total, keyed by the Monday date.
type WeeklyBucket struct {
	WeekStart string `json:"weekStart"`
	Minutes   int    `json:"minutes"`
	Sessions  int    `json:"sessions"`
}

// FocusWindow is one hour-of-day bucket of accumulated minutes, indexed by
// the local hour a session started in.
type FocusWindow struct {
	Hour    int `json:"hour"`
	Minutes int `json:"minutes"`
}

// localDate formats t as a calendar date in loc.
func localDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dateLayout)
}

// BuildHeatmap groups sessions by the calendar date of their reference time
// (end time, falling back to start time), sorted ascending by date.
func BuildHeatmap(sessions []*domain.DeepWorkSession, loc *time.Location) []HeatmapBucket {
	byDate := make(map[string]*HeatmapBucket)
	for _, s := range sessions {
		key := localDate(s.ReferenceTime(), loc)
		b, ok := byDate[key]
		if !ok {
			b = &HeatmapBucket{Date: key}
			byDate[key] = b
		}
		b.Minutes += s.EffectiveMinutes()
		b.Sessions++
	}

	out := make([]HeatmapBucket, 0, len(byDate))
	for _, b := range byDate {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// isoWeekStart returns the Monday of t's ISO week, in loc.
func isoWeekStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	offset := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return day.AddDate(0, 0, -offset)
}

// BuildWeeklyBreakdown groups sessions by ISO-week start date, like the
// heatmap keyed on end time with a start-time fallback.
func BuildWeeklyBreakdown(sessions []*domain.DeepWorkSession, loc *time.Location) []WeeklyBucket {
	byWeek := make(map[string]*WeeklyBucket)
	for _, s := range sessions {
		key := isoWeekStart(s.ReferenceTime(), loc).Format(dateLayout)
		b, ok := byWeek[key]
		if !ok {
			b = &WeeklyBucket{WeekStart: key}
			byWeek[key] = b
		}
		b.Minutes += s.EffectiveMinutes()
		b.Sessions++
	}

	out := make([]WeeklyBucket, 0, len(byWeek))
	for _, b := range byWeek {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekStart < out[j].WeekStart })
	return out
}

// BuildRatingDistribution counts sessions per exact star value 1-5.
// Unrated sessions are excluded.
func BuildRatingDistribution(sessions []*domain.DeepWorkSession) map[int]int {
	dist := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, s := range sessions {
		if s.FocusRating != nil {
			dist[*s.FocusRating]++
		}
	}
	return dist
}

// BuildFocusWindows accumulates minutes into 24 hour-of-day buckets keyed by
// each session's local start hour. Note the deliberate asymmetry with the
// heatmap, which buckets by end time.
func BuildFocusWindows(sessions []*domain.DeepWorkSession, loc *time.Location) []FocusWindow {
	windows := make([]FocusWindow, 24)
	for h := range windows {
		windows[h].Hour = h
	}
	for _, s := range sessions {
		hour := s.StartTime.In(loc).Hour()
		windows[hour].Minutes += s.EffectiveMinutes()
	}
	return windows
}
