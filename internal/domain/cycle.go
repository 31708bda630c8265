package domain

import "time"

// CycleLimitHours is the 70-hour/8-day on-duty limit.
const CycleLimitHours = 70.0

// CycleDays is the length of the rolling accumulation window.
const CycleDays = 8

// RestartHours is the consecutive off-duty/sleeper time that resets the
// rolling cycle total.
const RestartHours = 34.0

// CycleWindow is a driver's rolling 8-day duty-hour picture as of a
// given day. It is recomputed from the recorded days, never mutated in
// place; TotalCycleHours and RemainingHours are derived independently
// and may diverge only across a restart event.
type CycleWindow struct {
	DriverID         string
	CycleStart       time.Time
	CycleEnd         time.Time
	TotalCycleHours  float64
	RemainingHours   float64
	IsViolation      bool
	ViolationType    string
	RestartAvailable bool
	RestartStart     *time.Time
	RestartEnd       *time.Time
}
