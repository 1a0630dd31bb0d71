// Package dateutil holds the day-boundary arithmetic used by the borrow
// lifecycle and the notification sweep. Everything compares at day
// granularity: a request due "today" is not overdue until tomorrow.
package dateutil

import (
	"math"
	"time"
)

const day = 24 * time.Hour

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

func AddDays(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}

// DaysBetween returns the absolute day difference between a and b,
// rounded up (a partial day counts as a full one).
func DaysBetween(a, b time.Time) int {
	diff := b.Sub(a)
	if diff < 0 {
		diff = -diff
	}
	return int(math.Ceil(float64(diff) / float64(day)))
}

// DaysUntilDue is positive when due lies ahead of now, negative when it
// has passed, and zero when both fall on the same day.
func DaysUntilDue(due, now time.Time) int {
	diff := StartOfDay(due).Sub(StartOfDay(now))
	return int(math.Ceil(float64(diff) / float64(day)))
}

// IsOverdue reports whether due's calendar day is strictly before now's.
func IsOverdue(due, now time.Time) bool {
	return StartOfDay(due).Before(StartOfDay(now))
}

// IsDueSoon reports whether due falls within threshold days of now,
// today included. Overdue dates are not "due soon".
func IsDueSoon(due, now time.Time, threshold int) bool {
	if IsOverdue(due, now) {
		return false
	}
	return DaysUntilDue(due, now) <= threshold
}

// FormatDate renders a date the way the email templates show it.
func FormatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}
