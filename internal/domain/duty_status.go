package domain

import "fmt"

// DutyStatus is one of the four ELD duty statuses. The order matches the
// grid lines on a paper log sheet (Line 1 through Line 4).
type DutyStatus int

const (
	OffDuty DutyStatus = iota
	SleeperBerth
	Driving
	OnDuty
)

var dutyStatusNames = map[DutyStatus]string{
	OffDuty:      "off_duty",
	SleeperBerth: "sleeper_berth",
	Driving:      "driving",
	OnDuty:       "on_duty",
}

func (s DutyStatus) String() string {
	if name, ok := dutyStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("duty_status(%d)", int(s))
}

// GridLine returns the log-sheet line number (1-4) for the status.
func (s DutyStatus) GridLine() int { return int(s) + 1 }

// Valid reports whether s is one of the four defined statuses.
func (s DutyStatus) Valid() bool {
	_, ok := dutyStatusNames[s]
	return ok
}

// ParseDutyStatus converts the wire representation back to a DutyStatus.
func ParseDutyStatus(raw string) (DutyStatus, error) {
	for s, name := range dutyStatusNames {
		if name == raw {
			return s, nil
		}
	}
	return 0, fmt.Errorf("parse duty status: unknown status %q", raw)
}

// IsRest reports whether time in this status counts toward rest
// (qualifying breaks, 10-hour resets, 34-hour restarts).
func (s DutyStatus) IsRest() bool {
	return s == OffDuty || s == SleeperBerth
}

// IsDuty reports whether time in this status counts toward the
// duty+driving cycle accumulation.
func (s DutyStatus) IsDuty() bool {
	return s == Driving || s == OnDuty
}
