package utils

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	UnknownDate = "Unknown"
	InvalidDate = "Invalid date"

	// DefaultLayout matches the en-US locale string the site has always shown.
	DefaultLayout = "1/2/2006, 3:04:05 PM"
	ShortLayout   = "Jan 2, 2006"
	FullLayout    = "Jan 2, 2006 at 3:04 PM MST"
)

var now = time.Now

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ResolveLocalTimezone returns the IANA name of the zone this process runs in.
func ResolveLocalTimezone() string {
	if tz := os.Getenv("TZ"); tz != "" {
		if _, err := time.LoadLocation(tz); err == nil {
			return tz
		}
	}

	if name := time.Local.String(); name != "" && name != "Local" {
		return name
	}

	if target, err := os.Readlink("/etc/localtime"); err == nil {
		if i := strings.Index(target, "zoneinfo/"); i >= 0 {
			return target[i+len("zoneinfo/"):]
		}
	}

	return "UTC"
}

// ParseTimestamp accepts the shapes the hosted backend and the browser send.
// Timestamps without an offset are taken as UTC.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
}

func loadLocation(name string) *time.Location {
	if name == "" {
		name = ResolveLocalTimezone()
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// FormatInTimezone renders timestamp in targetTimezone (local when empty)
// using layout (DefaultLayout when empty).
func FormatInTimezone(timestamp, targetTimezone, layout string) string {
	if strings.TrimSpace(timestamp) == "" {
		return UnknownDate
	}

	t, err := ParseTimestamp(timestamp)
	if err != nil {
		return InvalidDate
	}

	if layout == "" {
		layout = DefaultLayout
	}

	return t.In(loadLocation(targetTimezone)).Format(layout)
}

// FormatRelative renders how long ago timestamp was. Every unit is the
// ceiling of the elapsed milliseconds, so 61 seconds reads "2 minutes ago".
// originalTimezone does not move an instant; only the absolute fallback
// depends on viewerTimezone.
func FormatRelative(timestamp, originalTimezone, viewerTimezone string) string {
	if strings.TrimSpace(timestamp) == "" {
		return UnknownDate
	}

	t, err := ParseTimestamp(timestamp)
	if err != nil {
		return InvalidDate
	}

	elapsed := now().Sub(t).Milliseconds()
	minutes := ceilDiv(elapsed, int64(time.Minute/time.Millisecond))
	hours := ceilDiv(elapsed, int64(time.Hour/time.Millisecond))
	days := ceilDiv(elapsed, int64(24*time.Hour/time.Millisecond))

	switch {
	case minutes < 1:
		return "Just now"
	case minutes < 60:
		return plural(minutes, "minute") + " ago"
	case hours < 24:
		return plural(hours, "hour") + " ago"
	case days == 0:
		return "Today"
	case days == 1:
		return "1 day ago"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days < 30:
		return plural(days/7, "week") + " ago"
	default:
		return t.In(loadLocation(viewerTimezone)).Format(ShortLayout)
	}
}

// FormatFull renders date, time and zone abbreviation in the viewer's zone,
// naming the zone the entry was created in when that differs.
func FormatFull(timestamp, originalTimezone, viewerTimezone string) string {
	if strings.TrimSpace(timestamp) == "" {
		return UnknownDate
	}

	t, err := ParseTimestamp(timestamp)
	if err != nil {
		return InvalidDate
	}

	if viewerTimezone == "" {
		viewerTimezone = ResolveLocalTimezone()
	}

	formatted := t.In(loadLocation(viewerTimezone)).Format(FullLayout)
	if originalTimezone != "" && originalTimezone != viewerTimezone {
		formatted += fmt.Sprintf(" (created in %s)", originalTimezone)
	}
	return formatted
}

func ceilDiv(a, b int64) int64 {
	q := a / b
	if a > 0 && a%b != 0 {
		q++
	}
	return q
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
