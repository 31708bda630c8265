package services

import (
	"errors"
	"testing"
	"time"

	"github.com/xcixor/eld-route-planner/internal/domain"
)

func TestRecordDayRequiresOpenCycle(t *testing.T) {
	tracker := NewCycleTracker()

	_, err := tracker.RecordDay("drv-1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 8)
	if !errors.Is(err, domain.ErrUnknownDriver) {
		t.Fatalf("expected ErrUnknownDriver, got %v", err)
	}
}

func TestRollingEightDayWindow(t *testing.T) {
	tracker := NewCycleTracker()
	day1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tracker.StartCycle("drv-1", day1)

	hours := []float64{10, 9, 8, 10, 9, 8, 7, 6}
	var w domain.CycleWindow
	var err error
	for i, h := range hours {
		w, err = tracker.RecordDay("drv-1", day1.AddDate(0, 0, i), h)
		if err != nil {
			t.Fatalf("record day %d: %v", i+1, err)
		}
	}

	// Trailing 8-day sum over days 1-8.
	if w.TotalCycleHours != 67 {
		t.Errorf("total after day 8 = %.2f, want 67.00", w.TotalCycleHours)
	}
	if w.RemainingHours != 3 {
		t.Errorf("remaining = %.2f, want 3.00", w.RemainingHours)
	}
	if w.IsViolation {
		t.Error("67 hours should not be a violation")
	}

	// A 9th day drops day 1's contribution from the window.
	w, err = tracker.RecordDay("drv-1", day1.AddDate(0, 0, 8), 5)
	if err != nil {
		t.Fatalf("record day 9: %v", err)
	}
	want := 67.0 - 10 + 5
	if w.TotalCycleHours != want {
		t.Errorf("total after day 9 = %.2f, want %.2f", w.TotalCycleHours, want)
	}
}

func TestCycleViolationOverSeventy(t *testing.T) {
	tracker := NewCycleTracker()
	day1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tracker.StartCycle("drv-1", day1)

	var w domain.CycleWindow
	var err error
	for i := 0; i < 6; i++ {
		w, err = tracker.RecordDay("drv-1", day1.AddDate(0, 0, i), 12)
		if err != nil {
			t.Fatalf("record day: %v", err)
		}
	}

	if w.TotalCycleHours != 72 {
		t.Fatalf("total = %.2f, want 72.00", w.TotalCycleHours)
	}
	if !w.IsViolation || w.ViolationType != "70_hour_8_day" {
		t.Errorf("expected 70_hour_8_day violation, got %+v", w)
	}
	if w.RemainingHours != 0 {
		t.Errorf("remaining = %.2f, want 0", w.RemainingHours)
	}
}

func TestThirtyFourHourRestartDiscardsPriorHours(t *testing.T) {
	tracker := NewCycleTracker()
	day1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tracker.StartCycle("drv-1", day1)

	for i := 0; i < 5; i++ {
		if _, err := tracker.RecordDay("drv-1", day1.AddDate(0, 0, i), 13); err != nil {
			t.Fatalf("record day: %v", err)
		}
	}

	// 34 consecutive off-duty hours spanning days 6-7.
	restStart := day1.AddDate(0, 0, 5).Add(4 * time.Hour)
	restEnd := restStart.Add(34 * time.Hour)
	if err := tracker.RecordRest("drv-1", restStart, restEnd); err != nil {
		t.Fatalf("record rest: %v", err)
	}

	w, err := tracker.RecordDay("drv-1", day1.AddDate(0, 0, 7), 9)
	if err != nil {
		t.Fatalf("record day after restart: %v", err)
	}

	if !w.RestartAvailable {
		t.Error("restart should be available after 34 consecutive off hours")
	}
	// Pre-restart hours are discarded, not merely capped.
	if w.TotalCycleHours != 9 {
		t.Errorf("total after restart = %.2f, want 9.00", w.TotalCycleHours)
	}
	if w.RestartStart == nil || !w.RestartStart.Equal(restStart) {
		t.Errorf("restart start = %v, want %v", w.RestartStart, restStart)
	}
}

func TestRestartCutoffIsDayGranular(t *testing.T) {
	tracker := NewCycleTracker()
	day1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tracker.StartCycle("drv-1", day1)

	// Rest spans day 6 04:00 through day 7 14:00.
	restStart := day1.AddDate(0, 0, 5).Add(4 * time.Hour)
	if err := tracker.RecordRest("drv-1", restStart, restStart.Add(34*time.Hour)); err != nil {
		t.Fatalf("record rest: %v", err)
	}

	if _, err := tracker.RecordDay("drv-1", day1.AddDate(0, 0, 5), 13); err != nil {
		t.Fatalf("record pre-restart day: %v", err)
	}
	w, err := tracker.RecordDay("drv-1", day1.AddDate(0, 0, 6), 5)
	if err != nil {
		t.Fatalf("record restart-end day: %v", err)
	}

	// Days before the restart-end day are discarded; hours recorded for
	// the day the rest ends count in full.
	if w.TotalCycleHours != 5 {
		t.Errorf("total = %.2f, want 5.00", w.TotalCycleHours)
	}
}

func TestForkIsolatesUntilCommit(t *testing.T) {
	tracker := NewCycleTracker()
	day1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	forked := tracker.Fork("drv-1")
	forked.StartCycle("drv-1", day1)
	if _, err := forked.RecordDay("drv-1", day1, 10); err != nil {
		t.Fatalf("record day on fork: %v", err)
	}

	if _, err := tracker.Window("drv-1", day1); !errors.Is(err, domain.ErrUnknownDriver) {
		t.Fatalf("parent saw forked state before commit: err = %v", err)
	}

	tracker.Commit("drv-1", forked)

	w, err := tracker.Window("drv-1", day1)
	if err != nil {
		t.Fatalf("window after commit: %v", err)
	}
	if w.TotalCycleHours != 10 {
		t.Errorf("total = %.2f, want 10.00", w.TotalCycleHours)
	}

	// Later fork mutations stay invisible until the next commit.
	if _, err := forked.RecordDay("drv-1", day1.AddDate(0, 0, 1), 8); err != nil {
		t.Fatalf("record second day on fork: %v", err)
	}
	w, err = tracker.Window("drv-1", day1.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("window: %v", err)
	}
	if w.TotalCycleHours != 10 {
		t.Errorf("total after uncommitted fork write = %.2f, want 10.00", w.TotalCycleHours)
	}
}

func TestRecordRestMergesContiguousSpans(t *testing.T) {
	tracker := NewCycleTracker()
	day1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tracker.StartCycle("drv-1", day1)

	if _, err := tracker.RecordDay("drv-1", day1, 11); err != nil {
		t.Fatalf("record day: %v", err)
	}

	// Two abutting spans that only qualify for a restart when merged.
	mid := day1.AddDate(0, 0, 1).Add(10 * time.Hour)
	if err := tracker.RecordRest("drv-1", mid.Add(-20*time.Hour), mid); err != nil {
		t.Fatalf("record rest: %v", err)
	}
	if err := tracker.RecordRest("drv-1", mid, mid.Add(15*time.Hour)); err != nil {
		t.Fatalf("record rest: %v", err)
	}

	w, err := tracker.Window("drv-1", day1.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("window: %v", err)
	}
	if !w.RestartAvailable {
		t.Error("merged 35-hour rest should make restart available")
	}
}

func TestSeedUsedHoursCountsTowardWindow(t *testing.T) {
	tracker := NewCycleTracker()
	day1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tracker.StartCycle("drv-1", day1)

	if err := tracker.SeedUsedHours("drv-1", day1, 45.5); err != nil {
		t.Fatalf("seed: %v", err)
	}

	w, err := tracker.RecordDay("drv-1", day1, 10)
	if err != nil {
		t.Fatalf("record day: %v", err)
	}
	if w.TotalCycleHours != 55.5 {
		t.Errorf("total = %.2f, want 55.50", w.TotalCycleHours)
	}
}
