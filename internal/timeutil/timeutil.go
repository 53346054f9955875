// Package timeutil provides the date-range helpers behind the quick
// views (today, next, week) and small duration formatting utilities.
package timeutil

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const isoFormat = "2006-01-02T15:04:05Z07:00"

// TodayRange returns (start, end) ISO strings covering today in UTC.
func TodayRange(now time.Time) (string, string) {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1).Add(-time.Second)
	return start.Format(isoFormat), end.Format(isoFormat)
}

// ThisWeekRange returns (start, end) ISO strings for the current week,
// Monday through Sunday 23:59:59, in UTC.
func ThisWeekRange(now time.Time) (string, string) {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	// time.Weekday counts Sunday as 0; shift so Monday opens the week.
	offset := (int(start.Weekday()) + 6) % 7
	start = start.AddDate(0, 0, -offset)
	end := start.AddDate(0, 0, 7).Add(-time.Second)
	return start.Format(isoFormat), end.Format(isoFormat)
}

// ThisMonthRange returns (start, end) ISO strings for the current
// calendar month in UTC.
func ThisMonthRange(now time.Time) (string, string) {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	return start.Format(isoFormat), end.Format(isoFormat)
}

// EndOfNextDay returns the ISO string for tomorrow 23:59:59 UTC relative
// to ref.
func EndOfNextDay(ref time.Time) string {
	ref = ref.UTC()
	dayStart := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
	return dayStart.AddDate(0, 0, 2).Add(-time.Second).Format(isoFormat)
}

// FormatDurationMinutes renders minutes as a compact human string:
// 45 -> "45m", 90 -> "1h30m", 120 -> "2h".
func FormatDurationMinutes(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	hours := minutes / 60
	rest := minutes % 60
	if rest == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh%dm", hours, rest)
}

// LocalZone returns the local IANA timezone name. It prefers the Go
// runtime's resolved zone, then the /etc/localtime symlink, then TZ,
// and falls back to UTC.
func LocalZone() string {
	if name := time.Now().Location().String(); name != "" && name != "Local" {
		return name
	}
	if link, err := os.Readlink("/etc/localtime"); err == nil {
		if idx := strings.Index(link, "zoneinfo/"); idx >= 0 {
			return link[idx+len("zoneinfo/"):]
		}
	}
	if tz := os.Getenv("TZ"); tz != "" {
		return tz
	}
	return "UTC"
}
