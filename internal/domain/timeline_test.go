package domain

import (
	"errors"
	"testing"
	"time"
)

func day(t *testing.T) time.Time {
	t.Helper()
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
}

func at(base time.Time, h, m int) time.Time {
	return base.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func TestTimelineAppendRejectsOverlap(t *testing.T) {
	d := day(t)
	tl := NewTimeline(d)

	if err := tl.Append(DutyPeriod{Status: OffDuty, Start: d, End: at(d, 6, 0)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := tl.Append(DutyPeriod{Status: Driving, Start: at(d, 5, 30), End: at(d, 8, 0)})
	var overlap *OverlapError
	if !errors.As(err, &overlap) {
		t.Fatalf("expected OverlapError, got %v", err)
	}
}

func TestTimelineAppendRejectsGap(t *testing.T) {
	d := day(t)
	tl := NewTimeline(d)

	if err := tl.Append(DutyPeriod{Status: OffDuty, Start: d, End: at(d, 6, 0)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := tl.Append(DutyPeriod{Status: Driving, Start: at(d, 7, 0), End: at(d, 8, 0)})
	var gap *GapError
	if !errors.As(err, &gap) {
		t.Fatalf("expected GapError, got %v", err)
	}
}

func TestTimelineCloseRequiresFullCoverage(t *testing.T) {
	d := day(t)
	tl := NewTimeline(d)

	if err := tl.Append(DutyPeriod{Status: OffDuty, Start: d, End: at(d, 22, 0)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := tl.Close()
	var incomplete *IncompleteCoverageError
	if !errors.As(err, &incomplete) {
		t.Fatalf("expected IncompleteCoverageError, got %v", err)
	}
}

func TestTimelineTotalsPartitionFullDay(t *testing.T) {
	d := day(t)
	tl := NewTimeline(d)

	periods := []DutyPeriod{
		{Status: OffDuty, Start: d, End: at(d, 6, 0)},
		{Status: OnDuty, Start: at(d, 6, 0), End: at(d, 7, 0)},
		{Status: Driving, Start: at(d, 7, 0), End: at(d, 12, 30)},
		{Status: OffDuty, Start: at(d, 12, 30), End: at(d, 13, 0)},
		{Status: Driving, Start: at(d, 13, 0), End: at(d, 17, 0)},
		{Status: SleeperBerth, Start: at(d, 17, 0), End: at(d, 24, 0)},
	}
	for _, p := range periods {
		if err := tl.Append(p); err != nil {
			t.Fatalf("append %v: %v", p.Status, err)
		}
	}
	if err := tl.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	totals := tl.Totals()
	if totals.Driving != 9.5 {
		t.Errorf("driving = %.2f, want 9.50", totals.Driving)
	}
	if totals.OnDuty != 1.0 {
		t.Errorf("on duty = %.2f, want 1.00", totals.OnDuty)
	}
	if totals.OffDuty != 6.5 {
		t.Errorf("off duty = %.2f, want 6.50", totals.OffDuty)
	}
	if totals.SleeperBerth != 7.0 {
		t.Errorf("sleeper = %.2f, want 7.00", totals.SleeperBerth)
	}
	if sum := totals.Sum(); sum != 24.0 {
		t.Errorf("sum = %.2f, want 24.00", sum)
	}

	// Totals must be idempotent over an unmodified timeline.
	again := tl.Totals()
	if again != totals {
		t.Errorf("second Totals call differs: %+v vs %+v", again, totals)
	}
}

func TestNewDailyLogDerivesTotals(t *testing.T) {
	d := day(t)
	tl := NewTimeline(d)
	for _, p := range []DutyPeriod{
		{Status: OffDuty, Start: d, End: at(d, 8, 0)},
		{Status: Driving, Start: at(d, 8, 0), End: at(d, 16, 0)},
		{Status: OffDuty, Start: at(d, 16, 0), End: at(d, 24, 0)},
	} {
		if err := tl.Append(p); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	logSheet, err := NewDailyLog("drv-1", "trip-1", tl)
	if err != nil {
		t.Fatalf("new daily log: %v", err)
	}

	if logSheet.TotalDriving != 8.0 {
		t.Errorf("total driving = %.2f, want 8.00", logSheet.TotalDriving)
	}
	if logSheet.TotalDutyTime != 8.0 {
		t.Errorf("total duty = %.2f, want 8.00", logSheet.TotalDutyTime)
	}
	if err := logSheet.CheckCoverage(); err != nil {
		t.Errorf("coverage check failed: %v", err)
	}
}
