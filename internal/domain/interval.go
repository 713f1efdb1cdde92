package domain

import (
	"fmt"
	"time"
)

// Storage formats for calendar dates and times of day. Times of day are kept
// as HH:MM:SS strings end to end (lexicographic order == temporal order), so
// the same half-open comparison works in SQL and in Go.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// Overlaps reports whether [s1,e1) and [s2,e2) intersect under the strict
// half-open rule: back-to-back ranges (e1 == s2) do not overlap.
func Overlaps(s1, e1, s2, e2 string) bool {
	return s1 < e2 && e1 > s2
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t.UTC(), nil
}

// ParseTimeOfDay validates an HH:MM:SS string and returns minutes since midnight.
func ParseTimeOfDay(s string) (int, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return 0, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatTimeOfDay renders minutes since midnight as HH:MM:SS.
func FormatTimeOfDay(minutes int) string {
	return fmt.Sprintf("%02d:%02d:00", minutes/60, minutes%60)
}

// ISOWeekday maps time.Weekday to ISO numbering: Monday=1 .. Sunday=7.
func ISOWeekday(w time.Weekday) int {
	if w == time.Sunday {
		return 7
	}
	return int(w)
}

// CombineDateTime builds the UTC instant at the given date and time of day.
func CombineDateTime(date, timeOfDay string) (time.Time, error) {
	t, err := time.Parse(DateLayout+" "+TimeLayout, date+" "+timeOfDay)
	if err != nil {
		return time.Time{}, fmt.Errorf("combine %q %q: %w", date, timeOfDay, err)
	}
	return t.UTC(), nil
}
