package csync_test

import (
	"testing"
	"time"

	"csync-go/internal/csync"
)

func tp(t time.Time) *time.Time { return &t }

func TestWindow_Includes(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		window csync.Window
		due    *time.Time
		want   bool
	}{
		{
			name:   "inside both bounds",
			window: csync.Window{Start: &start, End: &end},
			due:    tp(time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)),
			want:   true,
		},
		{
			name:   "exactly on start is included",
			window: csync.Window{Start: &start, End: &end},
			due:    &start,
			want:   true,
		},
		{
			name:   "exactly on end is included",
			window: csync.Window{Start: &start, End: &end},
			due:    &end,
			want:   true,
		},
		{
			name:   "before start",
			window: csync.Window{Start: &start, End: &end},
			due:    tp(time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC)),
			want:   false,
		},
		{
			name:   "after end",
			window: csync.Window{Start: &start, End: &end},
			due:    tp(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)),
			want:   false,
		},
		{
			name:   "open start accepts anything before end",
			window: csync.Window{End: &end},
			due:    tp(time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)),
			want:   true,
		},
		{
			name:   "open start still rejects after end",
			window: csync.Window{End: &end},
			due:    tp(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)),
			want:   false,
		},
		{
			name:   "open end accepts anything after start",
			window: csync.Window{Start: &start},
			due:    tp(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)),
			want:   true,
		},
		{
			name:   "open end still rejects before start",
			window: csync.Window{Start: &start},
			due:    tp(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)),
			want:   false,
		},
		{
			name:   "no bounds accepts everything",
			window: csync.Window{},
			due:    tp(time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)),
			want:   true,
		},
		{
			name:   "undated excluded by default",
			window: csync.Window{Start: &start, End: &end},
			due:    nil,
			want:   false,
		},
		{
			name:   "undated included when configured",
			window: csync.Window{Start: &start, End: &end, IncludeUndated: true},
			due:    nil,
			want:   true,
		},
		{
			name:   "undated ignores bounds entirely",
			window: csync.Window{IncludeUndated: false},
			due:    nil,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.window.Includes(tt.due); got != tt.want {
				t.Errorf("Includes(%v) = %v, want %v", tt.due, got, tt.want)
			}
		})
	}
}
