package models

import "time"

// ReadingPlan is a seeded devotional plan with a fixed number of days.
type ReadingPlan struct {
	ID          int    `json:"id"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
	TotalDays   int    `json:"total_days"`
}

// DailyReading is one day of a plan.
type DailyReading struct {
	PlanID  int    `json:"plan_id"`
	Day     int    `json:"day"`
	Passage string `json:"passage"`
}

// DailyReadingStatus is a day of a plan joined with the user's completion.
type DailyReadingStatus struct {
	Day         int        `json:"day"`
	Passage     string     `json:"passage"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// PlanProgress is the authoritative completion summary for one user and plan.
// CompletedDays never exceeds TotalDays.
type PlanProgress struct {
	Slug          string  `json:"slug"`
	CompletedDays int     `json:"completed_days"`
	TotalDays     int     `json:"total_days"`
	Percent       float64 `json:"percent"`
}

// StreakSummary is the cross-plan completion streak and activity heatmap.
type StreakSummary struct {
	CurrentStreak int            `json:"current_streak"`
	LongestStreak int            `json:"longest_streak"`
	Heatmap       map[string]int `json:"heatmap"` // day (2006-01-02) -> completions
}
