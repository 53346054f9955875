// Package avail computes free time slots for a single day by merging
// busy intervals from calendar events against a working-hours window.
// The computation is pure: same events in, same slots out.
package avail

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/gutenmorgen/gm/models"
)

// isoDurationRe accepts the subset of ISO-8601 durations the Morgen API
// emits: PnD, PTnH, PTnM, PTnHnM and combinations with seconds.
var isoDurationRe = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// ParseISODuration converts an ISO-8601 duration string to whole
// minutes. Malformed input parses to 0 so one bad event cannot poison a
// whole slot computation.
func ParseISODuration(s string) int {
	m := isoDurationRe.FindStringSubmatch(s)
	if m == nil || s == "P" || s == "PT" {
		return 0
	}
	days, _ := strconv.Atoi(zeroIfEmpty(m[1]))
	hours, _ := strconv.Atoi(zeroIfEmpty(m[2]))
	minutes, _ := strconv.Atoi(zeroIfEmpty(m[3]))
	seconds, _ := strconv.Atoi(zeroIfEmpty(m[4]))
	return days*24*60 + hours*60 + minutes + seconds/60
}

func zeroIfEmpty(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

// startLayouts are the timestamp shapes seen in event start fields.
// Starts are local-naive; any zone suffix is parsed and then ignored.
var startLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseStart(s string) (time.Time, bool) {
	for _, layout := range startLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

type interval struct {
	start time.Time
	end   time.Time
}

// ComputeFreeSlots returns the free slots on day (YYYY-MM-DD) within the
// working-hours window [windowStart, windowEnd) given the day's events.
// Emitted slots are disjoint, ordered by start, fully inside the window,
// and at least minDurationMinutes long.
func ComputeFreeSlots(events []models.Event, day, windowStart, windowEnd string, minDurationMinutes int) ([]models.FreeSlot, error) {
	winStart, err := parseDayTime(day, windowStart)
	if err != nil {
		return nil, err
	}
	winEnd, err := parseDayTime(day, windowEnd)
	if err != nil {
		return nil, err
	}
	if !winEnd.After(winStart) {
		return []models.FreeSlot{}, nil
	}

	var busy []interval
	for _, e := range events {
		// All-day entries block no specific hours.
		if e.ShowWithoutTime {
			continue
		}
		start, ok := parseStart(e.Start)
		if !ok {
			continue
		}
		minutes := ParseISODuration(e.Duration)
		if minutes <= 0 {
			continue
		}
		iv := interval{start: start, end: start.Add(time.Duration(minutes) * time.Minute)}

		// Clip to the window; drop intervals that empty out.
		if iv.start.Before(winStart) {
			iv.start = winStart
		}
		if iv.end.After(winEnd) {
			iv.end = winEnd
		}
		if !iv.end.After(iv.start) {
			continue
		}
		busy = append(busy, iv)
	}

	sort.Slice(busy, func(i, j int) bool { return busy[i].start.Before(busy[j].start) })

	// Classic interval merge: extend the open interval while the next
	// one starts at or before its end.
	var merged []interval
	for _, iv := range busy {
		if len(merged) > 0 && !iv.start.After(merged[len(merged)-1].end) {
			if iv.end.After(merged[len(merged)-1].end) {
				merged[len(merged)-1].end = iv.end
			}
			continue
		}
		merged = append(merged, iv)
	}

	slots := []models.FreeSlot{}
	cursor := winStart
	emit := func(from, to time.Time) {
		minutes := int(to.Sub(from) / time.Minute)
		if minutes >= minDurationMinutes {
			slots = append(slots, models.FreeSlot{
				Start:           from.Format("15:04"),
				End:             to.Format("15:04"),
				DurationMinutes: minutes,
			})
		}
	}
	for _, iv := range merged {
		if iv.start.After(cursor) {
			emit(cursor, iv.start)
		}
		if iv.end.After(cursor) {
			cursor = iv.end
		}
	}
	if winEnd.After(cursor) {
		emit(cursor, winEnd)
	}
	return slots, nil
}

func parseDayTime(day, clock string) (time.Time, error) {
	t, err := time.Parse("2006-01-02 15:04", day+" "+clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %q %q: %w", day, clock, err)
	}
	return t.UTC(), nil
}
