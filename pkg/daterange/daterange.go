// Package daterange contains calendar-day helpers shared by pricing and
// capacity checks. All functions work on UTC calendar days and ignore the
// time-of-day component of their arguments.
package daterange

import (
	"iter"
	"time"
)

// DateFormat is the wire format of booking dates.
const DateFormat = "2006-01-02"

// Truncate returns midnight UTC of the calendar day t falls on in UTC.
func Truncate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from from to to.
// The end date is not counted: 2023-12-01..2023-12-04 yields 3.
// The result is negative when to is before from.
func DaysBetween(from, to time.Time) int {
	return int(Truncate(to).Sub(Truncate(from)).Hours() / 24)
}

// Dates yields every calendar day from from to to, both ends included.
// The sequence is lazy and can be ranged over any number of times.
func Dates(from, to time.Time) iter.Seq[time.Time] {
	start, end := Truncate(from), Truncate(to)
	return func(yield func(time.Time) bool) {
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			if !yield(d) {
				return
			}
		}
	}
}

// WeekdaysTouched returns the distinct weekdays of the days in [from, to),
// in order of first appearance. The end date is excluded since it is not billed.
func WeekdaysTouched(from, to time.Time) []time.Weekday {
	start, end := Truncate(from), Truncate(to)

	seen := make(map[time.Weekday]struct{}, 7)
	days := make([]time.Weekday, 0, 7)
	for d := start; d.Before(end) && len(days) < 7; d = d.AddDate(0, 0, 1) {
		wd := d.Weekday()
		if _, ok := seen[wd]; ok {
			continue
		}
		seen[wd] = struct{}{}
		days = append(days, wd)
	}
	return days
}

// Contains reports whether day lies in [from, to], both ends included.
func Contains(from, to, day time.Time) bool {
	d := Truncate(day)
	return !d.Before(Truncate(from)) && !d.After(Truncate(to))
}

// Overlaps reports whether [aFrom, aTo] and [bFrom, bTo] share at least one day.
func Overlaps(aFrom, aTo, bFrom, bTo time.Time) bool {
	return !Truncate(aFrom).After(Truncate(bTo)) && !Truncate(bFrom).After(Truncate(aTo))
}

// Parse parses a YYYY-MM-DD date as midnight UTC.
func Parse(s string) (time.Time, error) {
	return time.ParseInLocation(DateFormat, s, time.UTC)
}

// Format renders t as YYYY-MM-DD in UTC.
func Format(t time.Time) string {
	return t.UTC().Format(DateFormat)
}
