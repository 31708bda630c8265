package domain

import (
	"fmt"
	"time"
)

// MinutesPerDay is the size of the ELD log grid in minutes.
const MinutesPerDay = 24 * 60

// GridIncrement is the rendering resolution of the log grid.
const GridIncrement = 15

// OutOfRangeError reports a timestamp that does not fall within the
// reference day. Periods spanning midnight must be split by the caller
// before grid placement; this utility never wraps.
type OutOfRangeError struct {
	Timestamp time.Time
	Reference time.Time
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf(
		"timestamp %s outside reference day %s",
		e.Timestamp.Format(time.RFC3339), e.Reference.Format("2006-01-02"),
	)
}

// MinuteOfDay returns the minutes elapsed since local midnight of
// referenceDate for the given timestamp, in [0, 1439].
func MinuteOfDay(ts time.Time, referenceDate time.Time) (int, error) {
	midnight := Midnight(referenceDate)
	next := midnight.AddDate(0, 0, 1)

	if ts.Before(midnight) || !ts.Before(next) {
		return 0, &OutOfRangeError{Timestamp: ts, Reference: referenceDate}
	}

	return int(ts.Sub(midnight) / time.Minute), nil
}

// SnapToGrid rounds a minute offset to the nearest 15-minute boundary,
// clamped to [0, 1439]. Grid snapping is cosmetic: totals are always
// computed from exact timestamps, never from snapped minutes.
func SnapToGrid(minute int) int {
	snapped := ((minute + GridIncrement/2) / GridIncrement) * GridIncrement
	if snapped < 0 {
		return 0
	}
	if snapped > MinutesPerDay-1 {
		return MinutesPerDay - 1
	}
	return snapped
}

// Midnight truncates a timestamp to local midnight in its own location.
func Midnight(ts time.Time) time.Time {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, ts.Location())
}

// SameDay reports whether two timestamps fall on the same calendar day
// in a's location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}
