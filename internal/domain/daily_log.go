package domain

import (
	"fmt"
	"time"
)

// TotalsTolerance is the accepted rounding slack when checking that a
// day's four totals sum to 24 hours.
const TotalsTolerance = 0.01

// DailyLog is one driver-day log sheet: a closed timeline plus derived
// totals and the rule engine's verdict. HOSViolation and ViolationNotes
// are set only by the rule engine, never by direct input.
type DailyLog struct {
	Date     time.Time
	DriverID string
	TripID   string
	Periods  []DutyPeriod

	TotalOffDuty      float64
	TotalSleeperBerth float64
	TotalDriving      float64
	TotalOnDuty       float64
	TotalDutyTime     float64

	MilesDriven float64

	HOSViolation   bool
	ViolationNotes string
}

// NewDailyLog seals the timeline and derives the log's totals.
func NewDailyLog(driverID, tripID string, t *Timeline) (*DailyLog, error) {
	if err := t.Close(); err != nil {
		return nil, fmt.Errorf("new daily log: %w", err)
	}

	totals := t.Totals()
	return &DailyLog{
		Date:              t.Date(),
		DriverID:          driverID,
		TripID:            tripID,
		Periods:           t.Periods(),
		TotalOffDuty:      totals.OffDuty,
		TotalSleeperBerth: totals.SleeperBerth,
		TotalDriving:      totals.Driving,
		TotalOnDuty:       totals.OnDuty,
		TotalDutyTime:     totals.Duty(),
	}, nil
}

// Totals reassembles the four per-status sums.
func (l *DailyLog) Totals() DutyTotals {
	return DutyTotals{
		OffDuty:      l.TotalOffDuty,
		SleeperBerth: l.TotalSleeperBerth,
		Driving:      l.TotalDriving,
		OnDuty:       l.TotalOnDuty,
	}
}

// CheckCoverage verifies the 24-hour totals invariant. A failure here
// means the log itself cannot be trusted, not merely that it is
// non-compliant.
func (l *DailyLog) CheckCoverage() error {
	sum := l.Totals().Sum()
	if sum < 24-TotalsTolerance || sum > 24+TotalsTolerance {
		return &IncompleteCoverageError{
			Date:   l.Date,
			Detail: fmt.Sprintf("status totals sum to %.2f hours", sum),
		}
	}
	return nil
}
