package stats

import (
	"sort"
	"time"

	"github.com/deepfocushub/deepfocus/internal/domain"
)

// Streaks holds the consecutive-day counters derived from completed sessions.
type Streaks struct {
	Current int
	Longest int
}

// CalculateStreaks walks the distinct calendar dates with at least one
// completed session in ascending order, counting consecutive-day runs. The
// current streak is forced to 0 when neither today nor yesterday (relative
// to now) has a completed session, so a stale streak never survives a
// missed day.
func CalculateStreaks(sessions []*domain.DeepWorkSession, now time.Time) Streaks {
	loc := now.Location()

	seen := make(map[string]bool)
	var dates []string
	for _, s := range sessions {
		key := localDate(s.ReferenceTime(), loc)
		if !seen[key] {
			seen[key] = true
			dates = append(dates, key)
		}
	}
	sort.Strings(dates)

	var current, longest int
	var prev time.Time
	for i, dateStr := range dates {
		day, err := time.ParseInLocation(dateLayout, dateStr, loc)
		if err != nil {
			continue
		}
		if i == 0 {
			current = 1
		} else {
			switch daysBetween(prev, day) {
			case 1:
				current++
			default:
				current = 1
			}
		}
		if current > longest {
			longest = current
		}
		prev = day
	}

	if len(dates) > 0 {
		today := localDate(now, loc)
		if !seen[today] {
			yesterday := localDate(now.AddDate(0, 0, -1), loc)
			if dates[len(dates)-1] != yesterday {
				current = 0
			}
		}
	}

	return Streaks{Current: current, Longest: longest}
}

// daysBetween counts whole calendar days from a to b (both at midnight).
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
