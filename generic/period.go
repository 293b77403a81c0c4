package generic

// =============================================================================
// PERIOD - Inclusive date range
// =============================================================================

// Period is the closed range [Start, End]. Both boundaries are inclusive.
//
// Examples:
//   - A 60-day horizon from today: {today, today+59}
//   - A source's active window: {anchor, endDate}
type Period struct {
	Start Date
	End   Date
}

// Horizon returns the period of n consecutive days starting at start (day 0 = start).
func Horizon(start Date, n int) Period {
	if n < 1 {
		return Period{Start: start, End: start.AddDays(-1)}
	}
	return Period{Start: start, End: start.AddDays(n - 1)}
}

// Contains returns true if d is within [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// IsEmpty is true when End precedes Start.
func (p Period) IsEmpty() bool {
	return p.End.Before(p.Start)
}

// Len returns the number of days in the period (0 if empty).
func (p Period) Len() int {
	if p.IsEmpty() {
		return 0
	}
	return DaysBetween(p.Start, p.End) + 1
}

// Days returns every day in the period, in order.
func (p Period) Days() []Date {
	days := make([]Date, 0, p.Len())
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

// Intersect returns the overlap of two periods (possibly empty).
func (p Period) Intersect(o Period) Period {
	return Period{Start: MaxDate(p.Start, o.Start), End: MinDate(p.End, o.End)}
}

// Clamp moves d into the period. The period must not be empty.
func (p Period) Clamp(d Date) Date {
	return MinDate(MaxDate(d, p.Start), p.End)
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
