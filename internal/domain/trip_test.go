package domain

import (
	"errors"
	"testing"
	"time"
)

func TestTripStateMachine(t *testing.T) {
	now := time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC)
	trip := &Trip{ID: "trip-1", Status: TripPlanned}

	if err := trip.Complete(now); err == nil {
		t.Fatal("expected complete from planned to fail")
	}

	if err := trip.Start(now); err != nil {
		t.Fatalf("start: %v", err)
	}
	if trip.Status != TripInProgress {
		t.Fatalf("status = %q, want in_progress", trip.Status)
	}

	if err := trip.Start(now); err == nil {
		t.Fatal("expected second start to fail")
	}

	end := now.Add(30 * time.Hour)
	if err := trip.Complete(end); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if trip.ActualEndTime == nil || !trip.ActualEndTime.Equal(end) {
		t.Errorf("actual end = %v, want %v", trip.ActualEndTime, end)
	}

	// Completed is terminal.
	err := trip.Cancel(end)
	var invalid *InvalidStateError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidStateError, got %v", err)
	}
}

func TestTripCancelFromPlannedAndInProgress(t *testing.T) {
	now := time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC)

	planned := &Trip{ID: "trip-1", Status: TripPlanned}
	if err := planned.Cancel(now); err != nil {
		t.Fatalf("cancel planned: %v", err)
	}

	active := &Trip{ID: "trip-2", Status: TripInProgress}
	if err := active.Cancel(now); err != nil {
		t.Fatalf("cancel in progress: %v", err)
	}

	if err := active.Start(now); err == nil {
		t.Fatal("expected start after cancel to fail")
	}
}
