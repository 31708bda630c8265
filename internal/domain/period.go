package domain

import (
	"fmt"
	"time"
)

// DutyPeriod is one contiguous stretch of a single duty status within a
// driver-day. Raw timestamps keep full precision for hour totals; the
// grid minutes are 15-minute snapped for log-sheet rendering only.
type DutyPeriod struct {
	Status              DutyStatus
	Start               time.Time
	End                 time.Time
	Location            string
	ActivityDescription string
	VehicleMoved        bool
}

// Hours returns the exact period duration in hours.
func (p DutyPeriod) Hours() float64 {
	return p.End.Sub(p.Start).Hours()
}

// GridMinutes returns the snapped start and end grid positions for the
// given log date. The end of a period finishing exactly at the next
// midnight renders as minute 1439.
func (p DutyPeriod) GridMinutes(logDate time.Time) (start, end int, err error) {
	start, err = MinuteOfDay(p.Start, logDate)
	if err != nil {
		return 0, 0, fmt.Errorf("grid start: %w", err)
	}

	midnight := Midnight(logDate)
	next := midnight.AddDate(0, 0, 1)
	if p.End.Equal(next) {
		return SnapToGrid(start), MinutesPerDay - 1, nil
	}

	end, err = MinuteOfDay(p.End, logDate)
	if err != nil {
		return 0, 0, fmt.Errorf("grid end: %w", err)
	}

	return SnapToGrid(start), SnapToGrid(end), nil
}

func (p DutyPeriod) validate() error {
	if !p.Status.Valid() {
		return fmt.Errorf("invalid duty status %d", int(p.Status))
	}
	if !p.End.After(p.Start) {
		return fmt.Errorf(
			"period end %s must be after start %s",
			p.End.Format(time.RFC3339), p.Start.Format(time.RFC3339),
		)
	}
	return nil
}
