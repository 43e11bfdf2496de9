package discord

import (
	"testing"
	"time"
)

func TestFormatRemaining(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{30 * time.Minute, "0:30:00"},
		{1800*time.Second - time.Millisecond, "0:29:59"},
		{26*time.Hour + 5*time.Second, "26:00:05"},
		{-time.Second, "0:00:00"},
	}
	for _, tc := range cases {
		if got := FormatRemaining(tc.in); got != tc.want {
			t.Errorf("FormatRemaining(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatClock(t *testing.T) {
	now := time.Date(2025, 3, 1, 19, 0, 0, 0, time.UTC)
	if got := FormatClock(now.Add(30*time.Minute), now, time.UTC); got != "19:30" {
		t.Errorf("same day = %q", got)
	}
	if got := FormatClock(now.Add(6*time.Hour), now, time.UTC); got != "02/03/2025 à 01:00" {
		t.Errorf("next day = %q", got)
	}
	if got := FormatClock(time.Time{}, now, time.UTC); got != "" {
		t.Errorf("zero = %q", got)
	}
}
