// Package streak computes consecutive-day completion streaks and daily
// activity counts from a list of completion timestamps.
package streak

import (
	"sort"
	"time"
)

// DayFormat is the key format used for heatmap buckets.
const DayFormat = "2006-01-02"

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Current returns the length of the run of consecutive days with at least one
// completion, ending today or yesterday. A run that ended before yesterday
// counts as zero: the streak is broken.
func Current(completions []time.Time, today time.Time) int {
	days := uniqueDays(completions)
	if len(days) == 0 {
		return 0
	}

	day := truncateDay(today)
	if _, ok := days[day]; !ok {
		// Yesterday keeps the streak alive until today's reading is done.
		day = day.AddDate(0, 0, -1)
		if _, ok := days[day]; !ok {
			return 0
		}
	}

	count := 0
	for {
		if _, ok := days[day]; !ok {
			return count
		}
		count++
		day = day.AddDate(0, 0, -1)
	}
}

// Longest returns the longest run of consecutive days with at least one
// completion anywhere in the history.
func Longest(completions []time.Time) int {
	days := uniqueDays(completions)
	if len(days) == 0 {
		return 0
	}

	sorted := make([]time.Time, 0, len(days))
	for d := range days {
		sorted = append(sorted, d)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	longest, run := 1, 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Sub(sorted[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// Heatmap buckets completions per day for the window [since, today].
// Completions outside the window are dropped.
func Heatmap(completions []time.Time, since, today time.Time) map[string]int {
	start := truncateDay(since)
	end := truncateDay(today)

	result := make(map[string]int)
	for _, c := range completions {
		day := truncateDay(c)
		if day.Before(start) || day.After(end) {
			continue
		}
		result[day.Format(DayFormat)]++
	}
	return result
}

func uniqueDays(completions []time.Time) map[time.Time]struct{} {
	days := make(map[time.Time]struct{}, len(completions))
	for _, c := range completions {
		days[truncateDay(c)] = struct{}{}
	}
	return days
}
