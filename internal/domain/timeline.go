package domain

import (
	"fmt"
	"time"
)

// Timeline builds and validates one day's ordered duty-period sequence.
// Periods must be appended in order with no gaps and no overlaps; a
// closed timeline is guaranteed to partition [midnight, next midnight).
type Timeline struct {
	date    time.Time
	periods []DutyPeriod
	closed  bool
}

// NewTimeline creates an empty timeline for the calendar day of date.
func NewTimeline(date time.Time) *Timeline {
	return &Timeline{date: Midnight(date)}
}

// Date returns the midnight anchor of the timeline's day.
func (t *Timeline) Date() time.Time { return t.date }

// Append adds the next duty period. It fails with an OverlapError when
// the period starts before the previous one ends and with a GapError
// when it starts after; the first period must start exactly at
// midnight's day boundary or later within the day.
func (t *Timeline) Append(p DutyPeriod) error {
	if t.closed {
		return fmt.Errorf("append period: timeline for %s is closed", t.date.Format("2006-01-02"))
	}
	if err := p.validate(); err != nil {
		return fmt.Errorf("append period: %w", err)
	}

	next := t.date.AddDate(0, 0, 1)
	if p.Start.Before(t.date) || p.End.After(next) {
		return fmt.Errorf(
			"append period: %s-%s outside day %s",
			p.Start.Format(time.RFC3339), p.End.Format(time.RFC3339),
			t.date.Format("2006-01-02"),
		)
	}

	if len(t.periods) > 0 {
		prevEnd := t.periods[len(t.periods)-1].End
		if p.Start.Before(prevEnd) {
			return &OverlapError{PrevEnd: prevEnd, Start: p.Start}
		}
		if p.Start.After(prevEnd) {
			return &GapError{PrevEnd: prevEnd, Start: p.Start}
		}
	}

	t.periods = append(t.periods, p)
	return nil
}

// Close verifies full-day coverage and seals the timeline. Every minute
// of the day must belong to exactly one period.
func (t *Timeline) Close() error {
	if t.closed {
		return nil
	}

	if len(t.periods) == 0 {
		return &IncompleteCoverageError{Date: t.date, Detail: "no periods"}
	}

	first := t.periods[0]
	if !first.Start.Equal(t.date) {
		return &IncompleteCoverageError{
			Date:   t.date,
			Detail: fmt.Sprintf("first period starts at %s, not midnight", first.Start.Format(time.RFC3339)),
		}
	}

	next := t.date.AddDate(0, 0, 1)
	last := t.periods[len(t.periods)-1]
	if !last.End.Equal(next) {
		return &IncompleteCoverageError{
			Date:   t.date,
			Detail: fmt.Sprintf("last period ends at %s, not next midnight", last.End.Format(time.RFC3339)),
		}
	}

	t.closed = true
	return nil
}

// Closed reports whether the timeline has been sealed.
func (t *Timeline) Closed() bool { return t.closed }

// Periods returns a copy of the appended periods in order.
func (t *Timeline) Periods() []DutyPeriod {
	out := make([]DutyPeriod, len(t.periods))
	copy(out, t.periods)
	return out
}

// DutyTotals holds per-status hour sums for one day.
type DutyTotals struct {
	OffDuty      float64
	SleeperBerth float64
	Driving      float64
	OnDuty       float64
}

// Duty returns driving plus on-duty hours.
func (d DutyTotals) Duty() float64 { return d.Driving + d.OnDuty }

// Sum returns the total of all four statuses; 24.00 for a complete day.
func (d DutyTotals) Sum() float64 {
	return d.OffDuty + d.SleeperBerth + d.Driving + d.OnDuty
}

// Totals computes the four per-status hour sums from exact timestamps.
// It has no hidden state: repeated calls over an unmodified timeline
// yield identical results.
func (t *Timeline) Totals() DutyTotals {
	var out DutyTotals
	for _, p := range t.periods {
		h := p.Hours()
		switch p.Status {
		case OffDuty:
			out.OffDuty += h
		case SleeperBerth:
			out.SleeperBerth += h
		case Driving:
			out.Driving += h
		case OnDuty:
			out.OnDuty += h
		}
	}
	return out
}
