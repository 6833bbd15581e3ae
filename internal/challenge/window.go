package challenge

import "time"

// DurationDays is the fixed length of the challenge.
const DurationDays = 75

// NormalizeDay truncates a timestamp to UTC midnight. Every date
// comparison and storage key in the system goes through this one
// function; local-time truncation anywhere else reintroduces the
// off-by-one-day bugs around DST this rule exists to prevent.
func NormalizeDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Window is the fixed date range within which day records may be
// created or mutated.
type Window struct {
	Start time.Time
	Days  int
}

// NewWindow builds a window anchored at the UTC day of start.
func NewWindow(start time.Time, days int) Window {
	return Window{Start: NormalizeDay(start), Days: days}
}

// End returns the last day of the window, inclusive.
func (w Window) End() time.Time {
	return w.Start.AddDate(0, 0, w.Days-1)
}

// Contains reports whether the UTC day of t falls within the window,
// start and end inclusive.
func (w Window) Contains(t time.Time) bool {
	d := NormalizeDay(t)
	return !d.Before(w.Start) && !d.After(w.End())
}

// DayNumber returns the 1-based challenge day for t. The start date
// itself is day 1. ok is false for dates outside the window.
func (w Window) DayNumber(t time.Time) (int, bool) {
	if !w.Contains(t) {
		return 0, false
	}
	// Both values are UTC midnights, so the division is exact.
	diff := NormalizeDay(t).Sub(w.Start)
	return int(diff/(24*time.Hour)) + 1, true
}

// DateForDay is the inverse of DayNumber. ok is false when n is
// outside [1, Days].
func (w Window) DateForDay(n int) (time.Time, bool) {
	if n < 1 || n > w.Days {
		return time.Time{}, false
	}
	return w.Start.AddDate(0, 0, n-1), true
}
