package streak

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 30, 0, 0, time.UTC)
}

func TestCurrent_TableTests(t *testing.T) {
	today := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		completions []time.Time
		want        int
	}{
		{
			name:        "no completions",
			completions: nil,
			want:        0,
		},
		{
			name:        "single completion today",
			completions: []time.Time{day(2025, 6, 20)},
			want:        1,
		},
		{
			name: "three day run ending today",
			completions: []time.Time{
				day(2025, 6, 18), day(2025, 6, 19), day(2025, 6, 20),
			},
			want: 3,
		},
		{
			name: "run ending yesterday still counts",
			completions: []time.Time{
				day(2025, 6, 17), day(2025, 6, 18), day(2025, 6, 19),
			},
			want: 3,
		},
		{
			name: "run ended two days ago is broken",
			completions: []time.Time{
				day(2025, 6, 16), day(2025, 6, 17), day(2025, 6, 18),
			},
			want: 0,
		},
		{
			name: "gap resets the count",
			completions: []time.Time{
				day(2025, 6, 15), day(2025, 6, 16),
				day(2025, 6, 19), day(2025, 6, 20),
			},
			want: 2,
		},
		{
			name: "multiple completions same day count once",
			completions: []time.Time{
				day(2025, 6, 19), day(2025, 6, 19),
				day(2025, 6, 20), day(2025, 6, 20),
			},
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Current(tt.completions, today)
			if got != tt.want {
				t.Errorf("Current() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLongest_TableTests(t *testing.T) {
	tests := []struct {
		name        string
		completions []time.Time
		want        int
	}{
		{
			name:        "no completions",
			completions: nil,
			want:        0,
		},
		{
			name:        "single day",
			completions: []time.Time{day(2025, 1, 1)},
			want:        1,
		},
		{
			name: "longest run in the middle of history",
			completions: []time.Time{
				day(2025, 1, 1),
				day(2025, 2, 1), day(2025, 2, 2), day(2025, 2, 3), day(2025, 2, 4),
				day(2025, 3, 1), day(2025, 3, 2),
			},
			want: 4,
		},
		{
			name: "month boundary",
			completions: []time.Time{
				day(2025, 1, 30), day(2025, 1, 31), day(2025, 2, 1),
			},
			want: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Longest(tt.completions)
			if got != tt.want {
				t.Errorf("Longest() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHeatmap_Window(t *testing.T) {
	today := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	since := today.AddDate(0, 0, -7)

	completions := []time.Time{
		day(2025, 6, 20), day(2025, 6, 20),
		day(2025, 6, 15),
		day(2025, 6, 1), // outside the window
	}

	got := Heatmap(completions, since, today)

	if got["2025-06-20"] != 2 {
		t.Errorf("Heatmap()[2025-06-20] = %d, want 2", got["2025-06-20"])
	}
	if got["2025-06-15"] != 1 {
		t.Errorf("Heatmap()[2025-06-15] = %d, want 1", got["2025-06-15"])
	}
	if _, ok := got["2025-06-01"]; ok {
		t.Error("Heatmap() must drop completions before the window")
	}
}
