package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func freezeClock(t *testing.T) {
	t.Helper()
	original := now
	now = func() time.Time { return fixedNow }
	t.Cleanup(func() { now = original })
}

func ago(d time.Duration) string {
	return fixedNow.Add(-d).Format(time.RFC3339Nano)
}

func TestFormatRelative(t *testing.T) {
	freezeClock(t)

	tests := []struct {
		name      string
		timestamp string
		viewer    string
		expected  string
	}{
		{name: "absent timestamp", timestamp: "", expected: UnknownDate},
		{name: "unparseable timestamp", timestamp: "not a date", expected: InvalidDate},
		{name: "same instant", timestamp: ago(0), expected: "Just now"},
		{name: "future timestamp", timestamp: ago(-5 * time.Minute), expected: "Just now"},
		{name: "45 seconds rounds up to a minute", timestamp: ago(45 * time.Second), expected: "1 minute ago"},
		{name: "one second past a minute", timestamp: ago(61 * time.Second), expected: "2 minutes ago"},
		{name: "59 minutes", timestamp: ago(59 * time.Minute), expected: "59 minutes ago"},
		{name: "past 59 minutes becomes an hour", timestamp: ago(59*time.Minute + 30*time.Second), expected: "1 hour ago"},
		{name: "exactly two hours", timestamp: ago(2 * time.Hour), expected: "2 hours ago"},
		{name: "one second past two hours", timestamp: ago(2*time.Hour + time.Second), expected: "3 hours ago"},
		{name: "23 hours", timestamp: ago(23 * time.Hour), expected: "23 hours ago"},
		{name: "late in the first day", timestamp: ago(23*time.Hour + 30*time.Minute), expected: "1 day ago"},
		{name: "just over a day", timestamp: ago(24*time.Hour + time.Second), expected: "2 days ago"},
		{name: "six days", timestamp: ago(6 * 24 * time.Hour), expected: "6 days ago"},
		{name: "just over six days", timestamp: ago(6*24*time.Hour + time.Second), expected: "1 week ago"},
		{name: "two weeks", timestamp: ago(14 * 24 * time.Hour), expected: "2 weeks ago"},
		{name: "29 days floors to four weeks", timestamp: ago(29 * 24 * time.Hour), expected: "4 weeks ago"},
		{name: "30 days falls back to a date", timestamp: ago(29*24*time.Hour + time.Second), viewer: "UTC", expected: "May 17, 2024"},
		{name: "fallback uses viewer zone", timestamp: "2024-01-01T03:00:00Z", viewer: "America/New_York", expected: "Dec 31, 2023"},
		{name: "postgres timestamp", timestamp: "2024-06-15 11:58:00+00", expected: "2 minutes ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatRelative(tt.timestamp, "", tt.viewer))
		})
	}
}

func TestFormatRelativeFallbackIsMonotonic(t *testing.T) {
	freezeClock(t)

	older := FormatRelative(ago(90*24*time.Hour), "", "America/Chicago")
	newer := FormatRelative(ago(35*24*time.Hour), "", "America/Chicago")

	olderDate, err := time.Parse(ShortLayout, older)
	require.NoError(t, err)
	newerDate, err := time.Parse(ShortLayout, newer)
	require.NoError(t, err)

	assert.True(t, olderDate.Before(newerDate), "%s should sort before %s", older, newer)
}

func TestFormatInTimezone(t *testing.T) {
	tests := []struct {
		name      string
		timestamp string
		zone      string
		layout    string
		expected  string
	}{
		{name: "absent timestamp", timestamp: "  ", zone: "UTC", expected: UnknownDate},
		{name: "unparseable timestamp", timestamp: "2024-13-45", zone: "UTC", expected: InvalidDate},
		{name: "default layout in target zone", timestamp: "2024-03-01T15:30:00Z", zone: "America/Chicago", expected: "3/1/2024, 9:30:00 AM"},
		{name: "unknown zone falls back to UTC", timestamp: "2024-03-01T15:30:00Z", zone: "Mars/Olympus_Mons", expected: "3/1/2024, 3:30:00 PM"},
		{name: "custom layout", timestamp: "2024-03-01T15:30:00.123456+00:00", zone: "Europe/London", layout: ShortLayout, expected: "Mar 1, 2024"},
		{name: "date only", timestamp: "2024-03-01", zone: "UTC", layout: ShortLayout, expected: "Mar 1, 2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatInTimezone(tt.timestamp, tt.zone, tt.layout))
		})
	}
}

func TestFormatFull(t *testing.T) {
	assert.Equal(t, UnknownDate, FormatFull("", "UTC", "UTC"))
	assert.Equal(t, InvalidDate, FormatFull("yesterday", "UTC", "UTC"))

	assert.Equal(t,
		"Jul 4, 2024 at 9:00 AM PDT (created in America/New_York)",
		FormatFull("2024-07-04T16:00:00Z", "America/New_York", "America/Los_Angeles"),
	)
	assert.Equal(t,
		"Jul 4, 2024 at 12:00 PM EDT",
		FormatFull("2024-07-04T16:00:00Z", "America/New_York", "America/New_York"),
	)
	assert.Equal(t,
		"Jul 4, 2024 at 4:00 PM UTC",
		FormatFull("2024-07-04T16:00:00Z", "", "UTC"),
	)
}

func TestResolveLocalTimezone(t *testing.T) {
	t.Setenv("TZ", "America/Denver")
	assert.Equal(t, "America/Denver", ResolveLocalTimezone())

	t.Setenv("TZ", "Nowhere/Atlantis")
	assert.NotEmpty(t, ResolveLocalTimezone())
}
