package domain

// TripPlan is the full output bundle of a planning request: the trip
// aggregate with all owned child records, the updated cycle window, and
// any compliance warnings. Regulatory violations are data in Warnings,
// not errors; planning still succeeds when a trip cannot be run without
// a human override.
type TripPlan struct {
	Trip       *Trip
	Waypoints  []Waypoint
	FuelStops  []FuelStop
	RestBreaks []RestBreak
	DailyLogs  []*DailyLog
	Cycle      CycleWindow
	Warnings   []string
}
