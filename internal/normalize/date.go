// Package normalize parses the two incompatible date encodings and extracts
// identifiers from free-form URLs and message text.
package normalize

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Both date encodings are pinned to 12:00 UTC so that day-granular
// comparisons never shift across a timezone boundary.
const noonHour = 12

// ParseClientDate parses the external DD/MM/YYYY signup date. Empty input is
// a soft null: the zero time with no error. Malformed input returns an error
// which callers must treat as "no usable date" before any comparison.
func ParseClientDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}

	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return time.Time{}, eris.Errorf("normalize: invalid client date %q", s)
	}

	day, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	year, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, eris.Errorf("normalize: invalid client date %q", s)
	}
	if month < 1 || month > 12 || day < 1 || day > 31 || year < 1000 {
		return time.Time{}, eris.Errorf("normalize: client date out of range %q", s)
	}

	t := time.Date(year, time.Month(month), day, noonHour, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (31/02 becomes 2-3 March); reject it.
	if t.Day() != day || t.Month() != time.Month(month) {
		return time.Time{}, eris.Errorf("normalize: impossible client date %q", s)
	}
	return t, nil
}

// channelDateLayouts are tried in order for the ISO-ish channel encodings.
var channelDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseChannelDate parses an ISO-8601-ish touchpoint date and pins it to
// 12:00 UTC on its calendar day. Empty input is a soft null.
func ParseChannelDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}

	for _, layout := range channelDateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		t = t.UTC()
		return time.Date(t.Year(), t.Month(), t.Day(), noonHour, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, eris.Errorf("normalize: invalid channel date %q", s)
}

// DaysBetween returns the ceiling of (b-a) in days: "b is n days after a".
// Ceiling is deliberate — a touchpoint and signup on the same calendar day
// differing by any sub-day amount still counts as at least one day once
// b is after a.
func DaysBetween(a, b time.Time) int {
	return int(math.Ceil(b.Sub(a).Hours() / 24))
}
