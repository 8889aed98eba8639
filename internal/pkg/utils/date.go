package utils

import "time"

const (
	DateLayout        = "2006-01-02"
	ReportDateLayout  = "2 Jan 2006"
	ReportClockLayout = "03:04:05 PM"
)

// StartOfDay returns 00:00:00.000 of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// EndOfDay returns 23:59:59.999 of t's calendar day in loc.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).AddDate(0, 0, 1).Add(-time.Millisecond)
}

// CalendarDay returns the calendar day of t in loc, expressed as midnight UTC.
// Attendance records are keyed by this value regardless of the server zone,
// which keeps DATE columns and string keys stable across stores.
func CalendarDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateKey formats a calendar day as YYYY-MM-DD.
func DateKey(day time.Time) string {
	return day.Format(DateLayout)
}

// ParseDateKey parses YYYY-MM-DD into a calendar day (midnight UTC).
func ParseDateKey(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// InZone re-anchors a calendar day into loc, keeping year, month and day.
func InZone(day time.Time, loc *time.Location) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
}

// MonthRange returns the first and last calendar day of the given month.
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}

// FormatClock renders a timestamp as a 12-hour wall clock in loc.
func FormatClock(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	return t.In(loc).Format(ReportClockLayout)
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
