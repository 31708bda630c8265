package services

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/xcixor/eld-route-planner/internal/domain"
)

type restSpan struct {
	start time.Time
	end   time.Time
}

// driverCycle holds one driver's recorded history. All access goes
// through the per-driver mutex; concurrent RecordDay calls for the same
// driver are serialized to avoid lost updates to the rolling total.
type driverCycle struct {
	mu         sync.Mutex
	cycleStart time.Time
	days       map[string]float64
	rests      []restSpan
	restartEnd *time.Time
}

// CycleTracker maintains rolling 8-day duty+driving totals per driver.
// Windows are recomputed from recorded days on every query, never
// accumulated by mutation.
type CycleTracker struct {
	mu      sync.Mutex
	drivers map[string]*driverCycle
}

func NewCycleTracker() *CycleTracker {
	return &CycleTracker{drivers: make(map[string]*driverCycle)}
}

func dayKey(date time.Time) string { return date.Format("2006-01-02") }

func (t *CycleTracker) driver(id string) (*driverCycle, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	d, ok := t.drivers[id]
	return d, ok
}

// StartCycle opens a cycle for a driver with an explicit baseline date.
// Recording hours for a driver without an open cycle is ambiguous and
// rejected, so the baseline is always deliberate.
func (t *CycleTracker) StartCycle(driverID string, start time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.drivers[driverID]; ok {
		return
	}
	t.drivers[driverID] = &driverCycle{
		cycleStart: domain.Midnight(start),
		days:       make(map[string]float64),
	}
}

// SeedUsedHours records carried-over cycle hours as a contribution on
// the day before asOf, so a fresh trip starts from the driver's
// declared cycle usage.
func (t *CycleTracker) SeedUsedHours(driverID string, asOf time.Time, hours float64) error {
	d, ok := t.driver(driverID)
	if !ok {
		return fmt.Errorf("seed cycle hours for %s: %w", driverID, domain.ErrUnknownDriver)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	prior := domain.Midnight(asOf).AddDate(0, 0, -1)
	d.days[dayKey(prior)] += hours
	return nil
}

// RecordDay inserts or overwrites the day's duty+driving contribution
// and returns the recomputed window ending at date.
func (t *CycleTracker) RecordDay(driverID string, date time.Time, dutyPlusDriving float64) (domain.CycleWindow, error) {
	d, ok := t.driver(driverID)
	if !ok {
		return domain.CycleWindow{}, fmt.Errorf("record day for %s: %w", driverID, domain.ErrUnknownDriver)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.days[dayKey(domain.Midnight(date))] = dutyPlusDriving
	return d.window(driverID, date), nil
}

// RecordRest registers an off-duty/sleeper span. Contiguous and
// overlapping spans are merged; a merged span of 34 hours or more
// becomes the driver's restart window, discarding all hours recorded
// for days before the window ends.
func (t *CycleTracker) RecordRest(driverID string, start, end time.Time) error {
	d, ok := t.driver(driverID)
	if !ok {
		return fmt.Errorf("record rest for %s: %w", driverID, domain.ErrUnknownDriver)
	}
	if !end.After(start) {
		return fmt.Errorf("record rest for %s: end %s not after start %s",
			driverID, end.Format(time.RFC3339), start.Format(time.RFC3339))
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.rests = append(d.rests, restSpan{start: start, end: end})
	sort.Slice(d.rests, func(i, j int) bool { return d.rests[i].start.Before(d.rests[j].start) })

	merged := d.rests[:1]
	for _, s := range d.rests[1:] {
		last := &merged[len(merged)-1]
		if !s.start.After(last.end) {
			if s.end.After(last.end) {
				last.end = s.end
			}
			continue
		}
		merged = append(merged, s)
	}
	d.rests = merged

	for _, s := range d.rests {
		if s.end.Sub(s.start).Hours() >= domain.RestartHours {
			if d.restartEnd == nil || s.end.After(*d.restartEnd) {
				e := s.end
				d.restartEnd = &e
			}
		}
	}
	return nil
}

// copy deep-copies the driver history. Callers must hold d.mu.
func (d *driverCycle) copy() *driverCycle {
	c := &driverCycle{
		cycleStart: d.cycleStart,
		days:       make(map[string]float64, len(d.days)),
		rests:      append([]restSpan(nil), d.rests...),
	}
	for k, v := range d.days {
		c.days[k] = v
	}
	if d.restartEnd != nil {
		e := *d.restartEnd
		c.restartEnd = &e
	}
	return c
}

// Fork returns a tracker holding an independent copy of one driver's
// history. Speculative bookkeeping goes to the fork; nothing is visible
// to other readers until Commit.
func (t *CycleTracker) Fork(driverID string) *CycleTracker {
	forked := NewCycleTracker()

	d, ok := t.driver(driverID)
	if !ok {
		return forked
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	forked.drivers[driverID] = d.copy()
	return forked
}

// Commit replaces the driver's history with the forked tracker's copy.
func (t *CycleTracker) Commit(driverID string, forked *CycleTracker) {
	d, ok := forked.driver(driverID)
	if !ok {
		return
	}

	d.mu.Lock()
	state := d.copy()
	d.mu.Unlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.drivers[driverID] = state
}

// Window returns the rolling window ending at date without recording
// anything.
func (t *CycleTracker) Window(driverID string, date time.Time) (domain.CycleWindow, error) {
	d, ok := t.driver(driverID)
	if !ok {
		return domain.CycleWindow{}, fmt.Errorf("cycle window for %s: %w", driverID, domain.ErrUnknownDriver)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.window(driverID, date), nil
}

// window recomputes the trailing 8-day sum ending at date. Days before
// an applicable restart window end are excluded entirely: the
// pre-restart window is discarded from the rolling sum, not capped.
// The cutoff is day-granular because contributions are keyed by day;
// hours recorded for the day the restart ends count in full. Duty on
// that day can only postdate the rest span (the driver was resting
// until restartEnd), so the full-day count matches the strictly-after
// rule for any history fed from daily logs.
// Callers must hold d.mu.
func (d *driverCycle) window(driverID string, date time.Time) domain.CycleWindow {
	end := domain.Midnight(date)
	start := end.AddDate(0, 0, -(domain.CycleDays - 1))
	if start.Before(d.cycleStart.AddDate(0, 0, -1)) {
		// Seeded baseline hours live on the day before cycleStart.
		start = d.cycleStart.AddDate(0, 0, -1)
	}

	var restartCutoff *time.Time
	if d.restartEnd != nil && !d.restartEnd.After(end.AddDate(0, 0, 1)) {
		cutoff := domain.Midnight(*d.restartEnd)
		restartCutoff = &cutoff
	}

	total := 0.0
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if restartCutoff != nil && day.Before(*restartCutoff) {
			continue
		}
		total += d.days[dayKey(day)]
	}

	w := domain.CycleWindow{
		DriverID:        driverID,
		CycleStart:      start,
		CycleEnd:        end,
		TotalCycleHours: total,
		RemainingHours:  domain.CycleLimitHours - total,
	}
	if w.RemainingHours < 0 {
		w.RemainingHours = 0
	}
	if total > domain.CycleLimitHours {
		w.IsViolation = true
		w.ViolationType = "70_hour_8_day"
	}

	if d.restartEnd != nil && !d.restartEnd.After(end.AddDate(0, 0, 1)) {
		w.RestartAvailable = true
		for _, s := range d.rests {
			if s.end.Equal(*d.restartEnd) {
				rs, re := s.start, s.end
				w.RestartStart, w.RestartEnd = &rs, &re
				break
			}
		}
	}
	return w
}
