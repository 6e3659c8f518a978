package domain

import "time"

// NextOccurrence computes the fire time following t for the given rule.
// All math is performed on the absolute instant; callers store and compare
// reminders in UTC.
//
//   - RecurrenceNone returns t unchanged; callers must treat that as
//     "no successor" and not create one.
//   - Daily and weekly add 1 and 7 calendar days.
//   - Monthly adds one calendar month with Go's AddDate normalization: when
//     the target month is shorter, the date rolls forward into the following
//     month (Jan 31 -> Mar 2 or Mar 3 depending on February's length). The
//     result is always strictly later than t, never clamped backwards.
func NextOccurrence(t time.Time, rule RecurrenceType) time.Time {
	switch rule {
	case RecurrenceDaily:
		return t.AddDate(0, 0, 1)
	case RecurrenceWeekly:
		return t.AddDate(0, 0, 7)
	case RecurrenceMonthly:
		return t.AddDate(0, 1, 0)
	default:
		return t
	}
}
