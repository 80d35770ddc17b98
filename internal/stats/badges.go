package stats

import "time"

// Badge is a rule-derived achievement. Badges are recomputed on every read
// and never persisted, so EarnedAt is always the evaluation instant rather
// than the moment the criterion was first met.
type Badge struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	EarnedAt    time.Time `json:"earnedAt"`
}

// BadgeInputs are the all-time figures the badge rules evaluate against.
type BadgeInputs struct {
	CurrentStreak    int
	LongestStreak    int
	TotalPoints      int
	MaxRating        int
	LongSessionCount int // sessions planned at 60 minutes or more
}

// CalculateBadges evaluates the fixed rule table against the inputs.
func CalculateBadges(in BadgeInputs, now time.Time) []Badge {
	var badges []Badge

	if in.CurrentStreak >= 3 {
		badges = append(badges, Badge{
			ID:          "streak-3",
			Name:        "3-Day Streak",
			Description: "Completed a deep work session on 3 consecutive days.",
			EarnedAt:    now,
		})
	}

	if in.CurrentStreak >= 7 {
		badges = append(badges, Badge{
			ID:          "streak-7",
			Name:        "7-Day Streak",
			Description: "An unbroken focus streak of 7 days.",
			EarnedAt:    now,
		})
	}

	if in.TotalPoints >= 200 {
		badges = append(badges, Badge{
			ID:          "points-200",
			Name:        "200 Focus Points",
			Description: "Reached 200 accumulated focus points.",
			EarnedAt:    now,
		})
	}

	if in.MaxRating == 5 {
		badges = append(badges, Badge{
			ID:          "first-5-star",
			Name:        "5-Star Session",
			Description: "At least one session rated 5 stars.",
			EarnedAt:    now,
		})
	}

	if in.LongSessionCount >= 5 {
		badges = append(badges, Badge{
			ID:          "marathoner",
			Name:        "Marathoner",
			Description: "Completed 5 sessions of 60 minutes or longer.",
			EarnedAt:    now,
		})
	}

	return badges
}
