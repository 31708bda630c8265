package services

import (
	"errors"
	"testing"
	"time"

	"github.com/xcixor/eld-route-planner/internal/domain"
)

func buildLog(t *testing.T, day time.Time, periods []domain.DutyPeriod) *domain.DailyLog {
	t.Helper()
	tl := domain.NewTimeline(day)
	for _, p := range periods {
		if err := tl.Append(p); err != nil {
			t.Fatalf("append %v at %s: %v", p.Status, p.Start, err)
		}
	}
	logSheet, err := domain.NewDailyLog("drv-1", "trip-1", tl)
	if err != nil {
		t.Fatalf("new daily log: %v", err)
	}
	return logSheet
}

func hasViolation(v Verdict, code string) bool {
	for _, violation := range v.Violations {
		if violation.Code == code {
			return true
		}
	}
	return false
}

func TestElevenHourDrivingLimit(t *testing.T) {
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// 11.5 driving hours with a mid-day break.
	logSheet := buildLog(t, d, []domain.DutyPeriod{
		{Status: domain.OffDuty, Start: d, End: d.Add(5 * time.Hour)},
		{Status: domain.Driving, Start: d.Add(5 * time.Hour), End: d.Add(13 * time.Hour)},
		{Status: domain.OffDuty, Start: d.Add(13 * time.Hour), End: d.Add(13*time.Hour + 30*time.Minute)},
		{Status: domain.Driving, Start: d.Add(13*time.Hour + 30*time.Minute), End: d.Add(17 * time.Hour)},
		{Status: domain.OffDuty, Start: d.Add(17 * time.Hour), End: d.Add(24 * time.Hour)},
	})
	if logSheet.TotalDriving != 11.5 {
		t.Fatalf("fixture driving = %.2f, want 11.50", logSheet.TotalDriving)
	}

	verdict, err := EvaluateDailyLog(logSheet, domain.CycleWindow{})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	if !hasViolation(verdict, CodeDrivingLimit) {
		t.Errorf("expected %s, got %+v", CodeDrivingLimit, verdict.Violations)
	}
	if !logSheet.HOSViolation {
		t.Error("HOSViolation flag not set")
	}
	if logSheet.ViolationNotes == "" {
		t.Error("ViolationNotes not populated")
	}
}

func TestFourteenHourDutyWindow(t *testing.T) {
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// Duty starts at 04:00; driving ends at 19:00, 15 hours into the
	// window. The 2-hour off-duty stretch does not reset the window.
	logSheet := buildLog(t, d, []domain.DutyPeriod{
		{Status: domain.OffDuty, Start: d, End: d.Add(4 * time.Hour)},
		{Status: domain.OnDuty, Start: d.Add(4 * time.Hour), End: d.Add(5 * time.Hour)},
		{Status: domain.Driving, Start: d.Add(5 * time.Hour), End: d.Add(11 * time.Hour)},
		{Status: domain.OffDuty, Start: d.Add(11 * time.Hour), End: d.Add(13 * time.Hour)},
		{Status: domain.Driving, Start: d.Add(13 * time.Hour), End: d.Add(19 * time.Hour)},
		{Status: domain.OffDuty, Start: d.Add(19 * time.Hour), End: d.Add(24 * time.Hour)},
	})

	verdict, err := EvaluateDailyLog(logSheet, domain.CycleWindow{})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !hasViolation(verdict, CodeDutyWindow) {
		t.Errorf("expected %s, got %+v", CodeDutyWindow, verdict.Violations)
	}
}

func TestTenHourOffResetsDutyWindow(t *testing.T) {
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// 10 consecutive off hours between duty stretches: the evening
	// driving belongs to a fresh window and stays legal.
	logSheet := buildLog(t, d, []domain.DutyPeriod{
		{Status: domain.Driving, Start: d, End: d.Add(4 * time.Hour)},
		{Status: domain.SleeperBerth, Start: d.Add(4 * time.Hour), End: d.Add(14 * time.Hour)},
		{Status: domain.Driving, Start: d.Add(14 * time.Hour), End: d.Add(18 * time.Hour)},
		{Status: domain.OffDuty, Start: d.Add(18 * time.Hour), End: d.Add(24 * time.Hour)},
	})

	verdict, err := EvaluateDailyLog(logSheet, domain.CycleWindow{})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if hasViolation(verdict, CodeDutyWindow) {
		t.Errorf("window should reset after 10 off hours, got %+v", verdict.Violations)
	}
}

func TestThirtyMinuteBreakRule(t *testing.T) {
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// Nine driving hours with only a 15-minute pause: not a qualifying
	// break.
	logSheet := buildLog(t, d, []domain.DutyPeriod{
		{Status: domain.Driving, Start: d, End: d.Add(5 * time.Hour)},
		{Status: domain.OffDuty, Start: d.Add(5 * time.Hour), End: d.Add(5*time.Hour + 15*time.Minute)},
		{Status: domain.Driving, Start: d.Add(5*time.Hour + 15*time.Minute), End: d.Add(9*time.Hour + 15*time.Minute)},
		{Status: domain.OffDuty, Start: d.Add(9*time.Hour + 15*time.Minute), End: d.Add(24 * time.Hour)},
	})

	verdict, err := EvaluateDailyLog(logSheet, domain.CycleWindow{})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !hasViolation(verdict, CodeBreakRequired) {
		t.Errorf("expected %s, got %+v", CodeBreakRequired, verdict.Violations)
	}

	// The same driving split by a 30-minute break is compliant.
	compliant := buildLog(t, d, []domain.DutyPeriod{
		{Status: domain.Driving, Start: d, End: d.Add(5 * time.Hour)},
		{Status: domain.OffDuty, Start: d.Add(5 * time.Hour), End: d.Add(5*time.Hour + 30*time.Minute)},
		{Status: domain.Driving, Start: d.Add(5*time.Hour + 30*time.Minute), End: d.Add(9*time.Hour + 30*time.Minute)},
		{Status: domain.OffDuty, Start: d.Add(9*time.Hour + 30*time.Minute), End: d.Add(24 * time.Hour)},
	})
	verdict, err = EvaluateDailyLog(compliant, domain.CycleWindow{})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if hasViolation(verdict, CodeBreakRequired) {
		t.Errorf("unexpected %s after qualifying break", CodeBreakRequired)
	}
}

func TestCycleLimitDelegatedToWindow(t *testing.T) {
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	logSheet := buildLog(t, d, []domain.DutyPeriod{
		{Status: domain.Driving, Start: d, End: d.Add(8 * time.Hour)},
		{Status: domain.OffDuty, Start: d.Add(8 * time.Hour), End: d.Add(24 * time.Hour)},
	})

	verdict, err := EvaluateDailyLog(logSheet, domain.CycleWindow{TotalCycleHours: 71.25})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !hasViolation(verdict, CodeCycleLimit) {
		t.Errorf("expected %s, got %+v", CodeCycleLimit, verdict.Violations)
	}
}

func TestIntegrityFailureIsNotAViolation(t *testing.T) {
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// Hand-built log whose totals do not sum to 24: a data defect, not
	// a regulatory finding.
	logSheet := &domain.DailyLog{
		Date:         d,
		DriverID:     "drv-1",
		TotalDriving: 8,
		TotalOffDuty: 10,
	}

	verdict, err := EvaluateDailyLog(logSheet, domain.CycleWindow{})
	var incomplete *domain.IncompleteCoverageError
	if !errors.As(err, &incomplete) {
		t.Fatalf("expected IncompleteCoverageError, got %v", err)
	}
	if hasViolation(verdict, CodeDrivingLimit) {
		t.Errorf("8 driving hours should not be a driving violation")
	}
}
