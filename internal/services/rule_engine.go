package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/xcixor/eld-route-planner/internal/domain"
)

// Federal HOS limits (property-carrying drivers, 70-hour/8-day rule).
const (
	DrivingLimitHours      = 11.0
	DutyWindowHours        = 14.0
	BreakAfterDrivingHours = 8.0
	MinBreakMinutes        = 30
	WindowResetOffHours    = 10.0
)

// Violation codes, in evaluation order.
const (
	CodeDrivingLimit = "DRIVING_LIMIT_EXCEEDED"
	CodeDutyWindow   = "DUTY_WINDOW_EXCEEDED"
	CodeBreakRequired = "BREAK_REQUIRED"
	CodeCycleLimit   = "CYCLE_LIMIT_EXCEEDED"
)

// Violation is one regulatory finding. Violations are data, not errors:
// a non-compliant plan is still returned to the caller.
type Violation struct {
	Code    string
	Message string
}

// Verdict is the rule engine's output for one daily log.
type Verdict struct {
	Compliant  bool
	Violations []Violation
}

// EvaluateDailyLog checks one daily log (plus the driver's current
// cycle window) against the HOS rules in fixed order. All independent
// rules are checked; evaluation never short-circuits. The only side
// effect is setting HOSViolation/ViolationNotes on the log.
//
// A 24-hour coverage failure is returned as an error distinct from the
// verdict: it means the log itself cannot be trusted.
func EvaluateDailyLog(logSheet *domain.DailyLog, cycle domain.CycleWindow) (Verdict, error) {
	var violations []Violation

	// Rule 1: 11-hour driving limit.
	if logSheet.TotalDriving > DrivingLimitHours+domain.TotalsTolerance {
		violations = append(violations, Violation{
			Code: CodeDrivingLimit,
			Message: fmt.Sprintf(
				"drove %.2f hours; the limit is %.2f",
				logSheet.TotalDriving, DrivingLimitHours,
			),
		})
	}

	// Rule 2: 14-hour duty window.
	if v, ok := checkDutyWindow(logSheet.Periods); ok {
		violations = append(violations, v)
	}

	// Rule 3: 30-minute break after 8 cumulative driving hours.
	if v, ok := checkBreakRule(logSheet.Periods); ok {
		violations = append(violations, v)
	}

	// Rule 4: 70-hour/8-day cycle, delegated to the cycle tracker's
	// recomputed window.
	if cycle.TotalCycleHours > domain.CycleLimitHours+domain.TotalsTolerance {
		violations = append(violations, Violation{
			Code: CodeCycleLimit,
			Message: fmt.Sprintf(
				"cycle total %.2f hours exceeds %.0f-hour/8-day limit",
				cycle.TotalCycleHours, domain.CycleLimitHours,
			),
		})
	}

	verdict := Verdict{Compliant: len(violations) == 0, Violations: violations}

	logSheet.HOSViolation = !verdict.Compliant
	logSheet.ViolationNotes = formatNotes(violations)

	// Rule 5: 24-hour totals integrity, reported separately from the
	// regulatory verdict.
	if err := logSheet.CheckCoverage(); err != nil {
		return verdict, fmt.Errorf("evaluate daily log: %w", err)
	}

	return verdict, nil
}

// checkDutyWindow walks the day's periods tracking the continuous duty
// window. The window opens at the first on-duty/driving period and
// resets only after 10 or more consecutive rest hours.
func checkDutyWindow(periods []domain.DutyPeriod) (Violation, bool) {
	var windowStart *time.Time
	var restRun time.Duration
	worst := 0.0

	for _, p := range periods {
		if p.Status.IsRest() {
			restRun += p.End.Sub(p.Start)
			if windowStart != nil && restRun.Hours() >= WindowResetOffHours {
				windowStart = nil
			}
			continue
		}

		restRun = 0
		if windowStart == nil {
			s := p.Start
			windowStart = &s
		}

		if p.Status == domain.Driving {
			elapsed := p.End.Sub(*windowStart).Hours()
			if elapsed > worst {
				worst = elapsed
			}
		}
	}

	if worst > DutyWindowHours+domain.TotalsTolerance {
		return Violation{
			Code: CodeDutyWindow,
			Message: fmt.Sprintf(
				"driving ended %.2f hours into the duty window; the limit is %.2f",
				worst, DutyWindowHours,
			),
		}, true
	}
	return Violation{}, false
}

// checkBreakRule accumulates driving time since the last qualifying
// break (>=30 consecutive rest minutes) and flags driving past the
// 8-hour mark without one.
func checkBreakRule(periods []domain.DutyPeriod) (Violation, bool) {
	drivingSince := 0.0
	worst := 0.0

	for _, p := range periods {
		if p.Status.IsRest() && p.End.Sub(p.Start) >= MinBreakMinutes*time.Minute {
			drivingSince = 0
			continue
		}
		if p.Status == domain.Driving {
			drivingSince += p.Hours()
			if drivingSince > worst {
				worst = drivingSince
			}
		}
	}

	if worst > BreakAfterDrivingHours+domain.TotalsTolerance {
		return Violation{
			Code: CodeBreakRequired,
			Message: fmt.Sprintf(
				"drove %.2f hours without a %d-minute break; a break is required at %.2f",
				worst, MinBreakMinutes, BreakAfterDrivingHours,
			),
		}, true
	}
	return Violation{}, false
}

func formatNotes(violations []Violation) string {
	if len(violations) == 0 {
		return ""
	}
	lines := make([]string, 0, len(violations))
	for _, v := range violations {
		lines = append(lines, v.Code+": "+v.Message)
	}
	return strings.Join(lines, "\n")
}
