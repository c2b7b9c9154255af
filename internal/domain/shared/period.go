package shared

import "time"

// DayRange returns the half-open interval [start of day, start of next day)
// containing t, in t's location.
func DayRange(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
