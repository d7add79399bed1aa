// utils/dates.go
package utils

import "time"

// DayLayout is the format of business-day keys.
const DayLayout = "2006-01-02"

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func DaysBetween(start, end time.Time) int {
	start = BeginningOfDay(start)
	end = BeginningOfDay(end)
	return int(end.Sub(start).Hours() / 24)
}

// DayKey formats t as a business-day key.
func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

// DaysUntilAnniversary counts the days from now until the next yearly
// recurrence of date, ignoring the year. Feb 29 falls on Feb 28 in common years.
func DaysUntilAnniversary(date, now time.Time) int {
	today := BeginningOfDay(now)
	next := recurrence(date, today.Year(), now.Location())
	if next.Before(today) {
		next = recurrence(date, today.Year()+1, now.Location())
	}
	return DaysBetween(today, next)
}

func recurrence(date time.Time, year int, loc *time.Location) time.Time {
	month, day := date.Month(), date.Day()
	if month == time.February && day == 29 && !isLeap(year) {
		day = 28
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// ParseDayRange reads optional YYYY-MM-DD bounds, defaulting to the current month.
func ParseDayRange(from, to string, now time.Time) (time.Time, time.Time, error) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, -1)
	var err error
	if from != "" {
		if start, err = time.ParseInLocation(DayLayout, from, now.Location()); err != nil {
			return start, end, err
		}
	}
	if to != "" {
		if end, err = time.ParseInLocation(DayLayout, to, now.Location()); err != nil {
			return start, end, err
		}
	}
	return start, end, nil
}

// EndOfDay is the last instant of t's day.
func EndOfDay(t time.Time) time.Time {
	return BeginningOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
