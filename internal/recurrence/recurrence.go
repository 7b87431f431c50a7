// Package recurrence expands an appointment's start date, session count and
// cadence into the concrete session dates.
package recurrence

import (
	"fmt"
	"time"
)

// Frequency is the cadence between consecutive sessions. It is stored as a
// string column, so the type is string-backed.
type Frequency string

const (
	Weekly   Frequency = "weekly"
	Biweekly Frequency = "biweekly"
	Monthly  Frequency = "monthly"
)

// Parse validates a frequency string.
func Parse(s string) (Frequency, error) {
	switch f := Frequency(s); f {
	case Weekly, Biweekly, Monthly:
		return f, nil
	}
	return "", fmt.Errorf("unknown frequency: %q", s)
}

func (f Frequency) Valid() bool {
	_, err := Parse(string(f))
	return err == nil
}

// Expand generates quantity session timestamps starting at start. Weekly and
// biweekly step 7 and 14 days. Monthly keeps the same ordinal weekday
// occurrence: a session on the 2nd Tuesday of a month repeats on the 2nd
// Tuesday of the next, computed month-over-month from the previous element.
// When the target month has no nth occurrence of the weekday, the date falls
// back one occurrence so it stays inside the target month.
//
// The sequence is strictly increasing, its first element is start, and the
// time of day and location are preserved throughout.
func Expand(start time.Time, quantity int, freq Frequency) ([]time.Time, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1, got %d", quantity)
	}
	if !freq.Valid() {
		return nil, fmt.Errorf("unknown frequency: %q", freq)
	}

	out := make([]time.Time, 0, quantity)
	cur := start
	for i := 0; i < quantity; i++ {
		out = append(out, cur)
		switch freq {
		case Weekly:
			cur = cur.AddDate(0, 0, 7)
		case Biweekly:
			cur = cur.AddDate(0, 0, 14)
		case Monthly:
			cur = nextMonthlyOccurrence(cur)
		}
	}
	return out, nil
}

// nextMonthlyOccurrence returns the same ordinal weekday occurrence in the
// month after t. Example: 1st Monday of February -> 1st Monday of March.
// A 5th occurrence that does not exist in the target month falls back to the
// 4th, which keeps the result inside the target month but can land it less
// than a full month after t.
func nextMonthlyOccurrence(t time.Time) time.Time {
	nth := (t.Day()-1)/7 + 1

	year, month := t.Year(), t.Month()+1 // time.Date normalizes December+1

	first := firstWeekdayOfMonth(year, month, t.Weekday(), t)
	candidate := first.AddDate(0, 0, 7*(nth-1))
	if candidate.Month() != first.Month() {
		candidate = first.AddDate(0, 0, 7*(nth-2))
	}
	return candidate
}

// firstWeekdayOfMonth returns the first occurrence of wd in (year, month),
// carrying the time of day and location from ref.
func firstWeekdayOfMonth(year int, month time.Month, wd time.Weekday, ref time.Time) time.Time {
	first := time.Date(year, month, 1,
		ref.Hour(), ref.Minute(), ref.Second(), ref.Nanosecond(), ref.Location())
	offset := (int(wd) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, offset)
}
