package util

import (
	"strings"
	"time"
)

var dateLayouts = []string{
	"20060102",
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
}

// ParseDate accepts compact (20240331), ISO (2024-03-31) and RFC3339 dates.
// Returns (t, true) if any layout matched; the result is in UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// FormatCompactDate renders t as YYYYMMDD.
func FormatCompactDate(t time.Time) string {
	return t.UTC().Format("20060102")
}
