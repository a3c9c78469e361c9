// Package dateutil holds the pure calendar helpers the booking engine is
// built on: calendar dates are passed around as "YYYY-MM-DD" strings and
// times of day as "HH:MM", matching the store's date/time columns.
package dateutil

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// Weekday names indexed 0=Sunday..6=Saturday.
var DayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// ParseDate parses a YYYY-MM-DD calendar date. The returned time is
// midnight UTC of that day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DayOfWeek returns the weekday index of a YYYY-MM-DD date, 0=Sunday.
func DayOfWeek(date string) (int, error) {
	t, err := ParseDate(date)
	if err != nil {
		return 0, err
	}
	return int(t.Weekday()), nil
}

// WeekdayMatches reports whether the given date falls on the weekday index
// dow (0=Sunday..6=Saturday).
func WeekdayMatches(date string, dow int) (bool, error) {
	d, err := DayOfWeek(date)
	if err != nil {
		return false, err
	}
	return d == dow, nil
}

// FormatTimeOfDay normalizes a time-of-day string to "HH:MM". The store
// returns "HH:MM:SS" for time columns; anything shorter than five
// characters is invalid.
func FormatTimeOfDay(s string) (string, error) {
	if len(s) < 5 {
		return "", fmt.Errorf("invalid time of day %q", s)
	}
	hm := s[:5]
	if _, err := time.Parse("15:04", hm); err != nil {
		return "", fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return hm, nil
}

// AddMinutes adds whole minutes to a "HH:MM" time of day, wrapping at
// midnight. Used to derive a slot's end time from start time + duration.
func AddMinutes(timeOfDay string, minutes int) (string, error) {
	t, err := time.Parse("15:04", timeOfDay)
	if err != nil {
		return "", fmt.Errorf("invalid time of day %q: %w", timeOfDay, err)
	}
	return t.Add(time.Duration(minutes) * time.Minute).Format("15:04"), nil
}

// DateRange returns the dates of the window [from, from+days), formatted
// YYYY-MM-DD. Used for calendar lookahead views (e.g. next 30 days).
func DateRange(from time.Time, days int) []string {
	if days <= 0 {
		return nil
	}
	dates := make([]string, 0, days)
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	for i := 0; i < days; i++ {
		dates = append(dates, day.AddDate(0, 0, i).Format(DateLayout))
	}
	return dates
}
