package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// allDayMarker is the literal midnight-UTC encoding feeds use for all-day
// events. Detection keys on the raw string, not the parsed value.
const allDayMarker = "T00:00:00.000Z"

// DateRangeLabel is a presentation-only projection of a DateRange. It is
// derived on demand and never stored back.
type DateRangeLabel struct {
	DisplayText   string
	FullDateTitle string
	DayOfWeek     string
}

// IsAllDay reports whether a raw timestamp encodes an all-day event.
func IsAllDay(iso string) bool {
	return strings.Contains(iso, allDayMarker)
}

// ComputeDateRangeLabel derives the human-readable label for an event span.
//
// All-day events format in UTC so the intended calendar day is shown rather
// than the previous local day; timed events format in loc (nil means the
// system local zone). The span classes keyed on whole-day difference are
// documented in the package comment. FullDateTitle is always the full
// formatted start date, used for tooltips regardless of span.
func ComputeDateRangeLabel(startISO, endISO string, loc *time.Location) (DateRangeLabel, error) {
	start, err := time.Parse(time.RFC3339, startISO)
	if err != nil {
		return DateRangeLabel{}, fmt.Errorf("parse start %q: %w", startISO, err)
	}

	// A malformed end degrades to start-only rendering, not a failure.
	end := start
	if endISO != "" {
		if e, perr := time.Parse(time.RFC3339, endISO); perr == nil {
			end = e
		}
	}

	if loc == nil {
		loc = time.Local
	}
	allDay := IsAllDay(startISO)
	s := displayTime(start, allDay, loc)
	e := displayTime(end, allDay, loc)

	days := int(math.Round(math.Abs(end.Sub(start).Hours() / 24)))

	label := DateRangeLabel{
		FullDateTitle: s.Format("January 2, 2006"),
		DayOfWeek:     s.Format("Monday"),
	}

	switch days {
	case 0:
		label.DisplayText = s.Format("Monday")
	case 1:
		label.DisplayText = s.Format("Monday") + " & " + e.Format("Monday")
	case 2:
		label.DisplayText = s.Format("Monday") + " to " + e.Format("Monday")
	default:
		label.DisplayText = s.Format("January 2") + " to " + e.Format("January 2")
	}

	return label, nil
}

func displayTime(t time.Time, allDay bool, loc *time.Location) time.Time {
	if allDay {
		return t.UTC()
	}
	return t.In(loc)
}
