package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrUnknownDriver is returned when a cycle operation references a
// driver whose cycle has not been opened with an explicit start date.
var ErrUnknownDriver = errors.New("unknown driver: no open cycle")

// ValidationError carries a field-level breakdown of every violated
// input constraint, not just the first.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

func (e *ValidationError) Add(field, msg string) { e.Fields[field] = msg }

func (e *ValidationError) Empty() bool { return len(e.Fields) == 0 }

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, f := range names {
		parts = append(parts, f+": "+e.Fields[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ConflictError reports that an existing record blocks the requested
// operation, with enough context to identify the conflicting record.
type ConflictError struct {
	DriverID string
	Date     time.Time
	TripID   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf(
		"driver %s already has trip %s on %s",
		e.DriverID, e.TripID, e.Date.Format("2006-01-02"),
	)
}

// InvalidStateError reports an illegal trip state transition.
type InvalidStateError struct {
	TripID string
	From   TripStatus
	Action string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("trip %s: cannot %s from state %q", e.TripID, e.Action, e.From)
}

// Timeline construction errors. These are data-integrity defects in the
// submitted or generated timeline, distinct from regulatory violations.

// OverlapError reports a period starting before the previous one ends.
type OverlapError struct {
	PrevEnd time.Time
	Start   time.Time
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf(
		"period start %s overlaps previous period ending %s",
		e.Start.Format(time.RFC3339), e.PrevEnd.Format(time.RFC3339),
	)
}

// GapError reports a period starting after the previous one ends.
// Gaps are never auto-filled; the caller must insert an explicit
// filler period so data-entry errors stay visible.
type GapError struct {
	PrevEnd time.Time
	Start   time.Time
}

func (e *GapError) Error() string {
	return fmt.Sprintf(
		"gap between previous period end %s and next start %s",
		e.PrevEnd.Format(time.RFC3339), e.Start.Format(time.RFC3339),
	)
}

// IncompleteCoverageError reports a timeline that does not partition
// the full 24-hour day.
type IncompleteCoverageError struct {
	Date   time.Time
	Detail string
}

func (e *IncompleteCoverageError) Error() string {
	return fmt.Sprintf(
		"log for %s does not cover the full day: %s",
		e.Date.Format("2006-01-02"), e.Detail,
	)
}
