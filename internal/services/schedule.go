package services

import (
	"fmt"
	"time"

	"github.com/xcixor/eld-route-planner/internal/domain"
)

// dutySegment is one planned stretch of a single duty status, before
// day-splitting. Segments may span midnight; buildDailyLogs splits them.
type dutySegment struct {
	status   domain.DutyStatus
	start    time.Time
	end      time.Time
	activity string
	moved    bool
}

// builtSchedule is the result of walking the planned driving against
// the HOS limits.
type builtSchedule struct {
	segments   []dutySegment
	restBreaks []domain.RestBreak
	endTime    time.Time
}

// buildSchedule walks the required driving hours from startTime,
// inserting a 30-minute break the first time cumulative driving since
// the last break reaches 8 hours, a 10-hour rest when the 14-hour duty
// window would otherwise be exceeded, and a 34-hour restart when the
// remaining cycle hours run out. The walk is deterministic: identical
// inputs produce identical schedules.
func buildSchedule(
	tripID string,
	startTime time.Time,
	driveHours float64,
	cycleUsedHours float64,
	dropoffLocation string,
) builtSchedule {
	const eps = 1e-9

	out := builtSchedule{}
	now := startTime
	remaining := driveHours
	drivingSinceBreak := 0.0
	cycleUsed := cycleUsedHours
	var windowStart *time.Time

	appendSegment := func(s dutySegment) {
		out.segments = append(out.segments, s)
		now = s.end
	}

	rest := func(bt domain.BreakType, status domain.DutyStatus, activity string) {
		start := now
		end := now.Add(bt.Duration())
		appendSegment(dutySegment{status: status, start: start, end: end, activity: activity})
		out.restBreaks = append(out.restBreaks, domain.RestBreak{
			TripID:         tripID,
			Type:           bt,
			Location:       "en route",
			ScheduledStart: start,
			ScheduledEnd:   end,
		})
	}

	for remaining > eps {
		if windowStart == nil {
			s := now
			windowStart = &s
		}

		// Hours of driving available before each constraint binds.
		toBreak := BreakAfterDrivingHours - drivingSinceBreak
		toWindow := windowStart.Add(time.Duration(DutyWindowHours * float64(time.Hour))).Sub(now).Hours()
		toCycle := domain.CycleLimitHours - cycleUsed

		if toCycle <= eps {
			// Rolling cycle exhausted: a 34-hour restart discards the
			// accumulated window.
			rest(domain.Break34Hour, domain.SleeperBerth, "34-hour restart")
			cycleUsed = 0
			drivingSinceBreak = 0
			windowStart = nil
			continue
		}

		if toWindow <= eps {
			rest(domain.Break10Hour, domain.SleeperBerth, "10-hour rest")
			drivingSinceBreak = 0
			windowStart = nil
			continue
		}

		chunk := remaining
		if toBreak < chunk {
			chunk = toBreak
		}
		if toWindow < chunk {
			chunk = toWindow
		}
		if toCycle < chunk {
			chunk = toCycle
		}

		appendSegment(dutySegment{
			status:   domain.Driving,
			start:    now,
			end:      now.Add(time.Duration(chunk * float64(time.Hour))),
			activity: fmt.Sprintf("driving toward %s", dropoffLocation),
			moved:    true,
		})
		remaining -= chunk
		drivingSinceBreak += chunk
		cycleUsed += chunk

		if remaining > eps && drivingSinceBreak >= BreakAfterDrivingHours-eps {
			rest(domain.Break30Min, domain.OffDuty, "30-min break")
			drivingSinceBreak = 0
		}
	}

	out.endTime = now
	return out
}

// buildDailyLogs splits the schedule's segments at midnight boundaries
// and produces one full-coverage daily log per calendar day of the trip
// span, bracketed with explicit off-duty periods before the first and
// after the last activity of each day. Gaps are never silently filled
// inside the active span; the timeline rejects them.
func buildDailyLogs(
	driverID, tripID string,
	location string,
	sched builtSchedule,
	avgSpeedMPH float64,
) ([]*domain.DailyLog, error) {
	if len(sched.segments) == 0 {
		return nil, fmt.Errorf("build daily logs: empty schedule")
	}

	first := sched.segments[0].start
	last := sched.segments[len(sched.segments)-1].end

	var logs []*domain.DailyLog
	for day := domain.Midnight(first); day.Before(last); day = day.AddDate(0, 0, 1) {
		next := day.AddDate(0, 0, 1)
		tl := domain.NewTimeline(day)
		cursor := day
		milesDriven := 0.0

		for _, seg := range sched.segments {
			// Clamp the segment to this day.
			segStart, segEnd := seg.start, seg.end
			if !segEnd.After(day) || !segStart.Before(next) {
				continue
			}
			if segStart.Before(day) {
				segStart = day
			}
			if segEnd.After(next) {
				segEnd = next
			}

			if segStart.After(cursor) {
				// Bracket idle time before the day's first activity.
				if err := tl.Append(domain.DutyPeriod{
					Status:              domain.OffDuty,
					Start:               cursor,
					End:                 segStart,
					Location:            location,
					ActivityDescription: "off duty",
				}); err != nil {
					return nil, fmt.Errorf("build daily logs: %w", err)
				}
			}

			if err := tl.Append(domain.DutyPeriod{
				Status:              seg.status,
				Start:               segStart,
				End:                 segEnd,
				Location:            location,
				ActivityDescription: seg.activity,
				VehicleMoved:        seg.moved,
			}); err != nil {
				return nil, fmt.Errorf("build daily logs: %w", err)
			}
			cursor = segEnd

			if seg.status == domain.Driving {
				milesDriven += segEnd.Sub(segStart).Hours() * avgSpeedMPH
			}
		}

		if cursor.Before(next) {
			// Bracket the remainder of the day.
			if err := tl.Append(domain.DutyPeriod{
				Status:              domain.OffDuty,
				Start:               cursor,
				End:                 next,
				Location:            location,
				ActivityDescription: "off duty",
			}); err != nil {
				return nil, fmt.Errorf("build daily logs: %w", err)
			}
		}

		logSheet, err := domain.NewDailyLog(driverID, tripID, tl)
		if err != nil {
			return nil, fmt.Errorf("build daily logs: day %s: %w", day.Format("2006-01-02"), err)
		}
		logSheet.MilesDriven = milesDriven
		logs = append(logs, logSheet)
	}

	return logs, nil
}
