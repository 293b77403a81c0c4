package generic

import (
	"strings"
	"time"
)

// =============================================================================
// FREQUENCY - Closed set of recurrence kinds
// =============================================================================

// Frequency is how often a financial event repeats.
//
// FreqUnknown is an explicit variant for values that could not be parsed.
// It expands to nothing, and callers are expected to surface it as a
// data-quality warning rather than let it disappear.
type Frequency string

const (
	FreqOneTime     Frequency = "one_time"
	FreqWeekly      Frequency = "weekly"
	FreqBiweekly    Frequency = "biweekly"
	FreqSemiMonthly Frequency = "semi_monthly"
	FreqMonthly     Frequency = "monthly"
	FreqQuarterly   Frequency = "quarterly"
	FreqAnnually    Frequency = "annually"
	FreqIrregular   Frequency = "irregular" // unpredictable by construction, never expands
	FreqUnknown     Frequency = "unknown"
)

var frequencyAliases = map[string]Frequency{
	"one_time":      FreqOneTime,
	"onetime":       FreqOneTime,
	"once":          FreqOneTime,
	"weekly":        FreqWeekly,
	"biweekly":      FreqBiweekly,
	"fortnightly":   FreqBiweekly,
	"semi_monthly":  FreqSemiMonthly,
	"semimonthly":   FreqSemiMonthly,
	"twice_monthly": FreqSemiMonthly,
	"monthly":       FreqMonthly,
	"quarterly":     FreqQuarterly,
	"annually":      FreqAnnually,
	"annual":        FreqAnnually,
	"yearly":        FreqAnnually,
	"irregular":     FreqIrregular,
}

// ParseFrequency maps a stored or user-supplied label to a Frequency.
// Matching ignores case and treats '-' and ' ' like '_'. Unrecognized labels
// return FreqUnknown.
func ParseFrequency(s string) Frequency {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	if f, ok := frequencyAliases[key]; ok {
		return f
	}
	if f, ok := frequencyAliases[strings.ReplaceAll(key, "_", "")]; ok {
		return f
	}
	return FreqUnknown
}

// IsKnown is false only for FreqUnknown and values outside the enum.
func (f Frequency) IsKnown() bool {
	switch f {
	case FreqOneTime, FreqWeekly, FreqBiweekly, FreqSemiMonthly,
		FreqMonthly, FreqQuarterly, FreqAnnually, FreqIrregular:
		return true
	default:
		return false
	}
}

// Predictable reports whether the frequency produces dated occurrences.
func (f Frequency) Predictable() bool {
	return f.IsKnown() && f != FreqIrregular
}

// =============================================================================
// SCHEDULE - Recurrence rule expansion
// =============================================================================

// Schedule is a recurrence rule: a frequency, the anchor (first/reference
// occurrence) and an optional inclusive end date.
type Schedule struct {
	Frequency Frequency
	Anchor    Date
	End       *Date
}

// Expand returns every occurrence date inside r, in chronological order.
// All returned dates satisfy r.Contains(d), and no date precedes the anchor
// or follows the end date.
func (s Schedule) Expand(r Period) []Date {
	if s.Anchor.IsZero() || r.IsEmpty() || s.Anchor.After(r.End) {
		return nil
	}

	eff := r
	if s.End != nil && !s.End.IsZero() {
		eff = r.Intersect(Period{Start: r.Start, End: *s.End})
	}
	if eff.IsEmpty() {
		return nil
	}

	switch s.Frequency {
	case FreqOneTime:
		if eff.Contains(s.Anchor) {
			return []Date{s.Anchor}
		}
		return nil
	case FreqWeekly:
		return s.everyNDays(eff, 7)
	case FreqBiweekly:
		return s.everyNDays(eff, 14)
	case FreqSemiMonthly:
		return s.semiMonthly(eff)
	case FreqMonthly:
		return s.everyNMonths(eff, 1)
	case FreqQuarterly:
		return s.everyNMonths(eff, 3)
	case FreqAnnually:
		return s.everyNMonths(eff, 12)
	case FreqIrregular, FreqUnknown:
		return nil
	default:
		return nil
	}
}

// everyNDays fast-forwards to the first in-range occurrence arithmetically,
// then steps by the fixed period.
func (s Schedule) everyNDays(eff Period, period int) []Date {
	first := s.Anchor
	if first.Before(eff.Start) {
		diff := DaysBetween(s.Anchor, eff.Start)
		steps := (diff + period - 1) / period
		first = s.Anchor.AddDays(steps * period)
	}

	var dates []Date
	for d := first; d.BeforeOrEqual(eff.End); d = d.AddDays(period) {
		dates = append(dates, d)
	}
	return dates
}

// everyNMonths keeps the anchor's day-of-month as the target and clamps it to
// each month's last day. Every candidate is computed from the anchor, never
// from the previous (possibly clamped) candidate, so Jan 31 -> Feb 28 -> Mar 31.
func (s Schedule) everyNMonths(eff Period, step int) []Date {
	at := func(k int) Date {
		return ClampedDateIn(s.Anchor.Year(), s.Anchor.Month()+time.Month(k*step), s.Anchor.Day(), s.Anchor.Location())
	}

	// Clamping makes the sequence non-linear, so find the first in-range
	// occurrence by stepping rather than by division.
	k := 0
	for at(k).Before(eff.Start) {
		k++
	}

	var dates []Date
	for d := at(k); d.BeforeOrEqual(eff.End); d = at(k) {
		dates = append(dates, d)
		k++
	}
	return dates
}

// semiMonthly emits a primary day (the anchor's day-of-month) and a secondary
// day 15 days away from it in every month, each clamped independently.
func (s Schedule) semiMonthly(eff Period) []Date {
	primary := s.Anchor.Day()
	secondary := primary + 15
	if primary > 15 {
		secondary = primary - 15
	}

	monthIndex := func(d Date) int { return d.Year()*12 + int(d.Month()) - 1 }
	from := monthIndex(s.Anchor)
	if m := monthIndex(eff.Start); m > from {
		from = m
	}
	to := monthIndex(eff.End)
	loc := s.Anchor.Location()

	var dates []Date
	for ym := from; ym <= to; ym++ {
		year, month := ym/12, time.Month(ym%12+1)
		a := ClampedDateIn(year, month, primary, loc)
		b := ClampedDateIn(year, month, secondary, loc)
		if b.Before(a) {
			a, b = b, a
		}
		for i, d := range []Date{a, b} {
			if i == 1 && d.Equal(a) {
				continue
			}
			if d.Before(s.Anchor) || !eff.Contains(d) {
				continue
			}
			dates = append(dates, d)
		}
	}
	return dates
}
