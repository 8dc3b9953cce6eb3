package parse

import (
	"fmt"
	"strings"
	"time"
)

// Layouts the backend has been seen to use for *Local timestamps.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// LocalTime parses a truck-local wall-clock timestamp in loc.
//
// Local timestamps are not instants: if the backend attaches an offset anyway,
// the wall-clock fields are kept and re-anchored to loc so every comparison
// happens in the same frame.
func LocalTime(raw string, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if loc == nil {
		loc = time.Local
	}

	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc), nil
	}

	return time.Time{}, fmt.Errorf("unable to parse local timestamp: %q", raw)
}

// FormatLocal renders t in the layout LocalTime accepts first.
func FormatLocal(t time.Time) string {
	return t.Format("2006-01-02T15:04:05")
}
