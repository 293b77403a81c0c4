package generic_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/cashflow-engine/generic"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func d(y int, m time.Month, day int) generic.Date {
	return generic.NewDate(y, m, day)
}

func period(from, to generic.Date) generic.Period {
	return generic.Period{Start: from, End: to}
}

func iso(dates []generic.Date) []string {
	out := make([]string, len(dates))
	for i, x := range dates {
		out[i] = x.String()
	}
	return out
}

// =============================================================================
// MONTHLY FAMILY - Month-end clamping
// =============================================================================

func TestSchedule_Monthly_Day31_ClampsWithoutDrift(t *testing.T) {
	// GIVEN: A monthly bill anchored on January 31
	// WHEN: Expanding over January through April 2025
	// THEN: Each month clamps independently: Jan 31, Feb 28, Mar 31, Apr 30

	s := generic.Schedule{Frequency: generic.FreqMonthly, Anchor: d(2025, time.January, 31)}
	got := s.Expand(period(d(2025, time.January, 1), d(2025, time.April, 30)))

	assert.Equal(t, []string{"2025-01-31", "2025-02-28", "2025-03-31", "2025-04-30"}, iso(got))
}

func TestSchedule_Monthly_LeapYear_Feb29(t *testing.T) {
	s := generic.Schedule{Frequency: generic.FreqMonthly, Anchor: d(2024, time.January, 31)}
	got := s.Expand(period(d(2024, time.February, 1), d(2024, time.March, 31)))

	assert.Equal(t, []string{"2024-02-29", "2024-03-31"}, iso(got))
}

func TestSchedule_Monthly_AnchorBeforeRange_StartsInRange(t *testing.T) {
	s := generic.Schedule{Frequency: generic.FreqMonthly, Anchor: d(2024, time.June, 15)}
	got := s.Expand(period(d(2025, time.January, 20), d(2025, time.March, 20)))

	assert.Equal(t, []string{"2025-02-15", "2025-03-15"}, iso(got))
}

func TestSchedule_Quarterly_ClampsFromAnchor(t *testing.T) {
	// GIVEN: Quarterly anchored on Nov 30, 2024
	// WHEN: Expanding over 2025
	// THEN: Feb clamps to the 28th, later quarters return to the 30th

	s := generic.Schedule{Frequency: generic.FreqQuarterly, Anchor: d(2024, time.November, 30)}
	got := s.Expand(period(d(2025, time.January, 1), d(2025, time.December, 31)))

	assert.Equal(t, []string{"2025-02-28", "2025-05-30", "2025-08-30", "2025-11-30"}, iso(got))
}

func TestSchedule_Annually_Feb29Anchor(t *testing.T) {
	s := generic.Schedule{Frequency: generic.FreqAnnually, Anchor: d(2024, time.February, 29)}
	got := s.Expand(period(d(2025, time.January, 1), d(2028, time.December, 31)))

	assert.Equal(t, []string{"2025-02-28", "2026-02-28", "2027-02-28", "2028-02-29"}, iso(got))
}

// =============================================================================
// FIXED-PERIOD FAMILY
// =============================================================================

func TestSchedule_Weekly_AnchorBeforeRange_FastForwards(t *testing.T) {
	// GIVEN: Weekly on Wednesdays since Jan 1, 2025
	// WHEN: Expanding Jan 10 - Jan 31
	// THEN: The first occurrence is the first Wednesday on or after Jan 10

	s := generic.Schedule{Frequency: generic.FreqWeekly, Anchor: d(2025, time.January, 1)}
	got := s.Expand(period(d(2025, time.January, 10), d(2025, time.January, 31)))

	assert.Equal(t, []string{"2025-01-15", "2025-01-22", "2025-01-29"}, iso(got))
}

func TestSchedule_Weekly_AnchorOnRangeStart_Included(t *testing.T) {
	s := generic.Schedule{Frequency: generic.FreqWeekly, Anchor: d(2025, time.January, 3)}
	got := s.Expand(period(d(2025, time.January, 10), d(2025, time.January, 17)))

	assert.Equal(t, []string{"2025-01-10", "2025-01-17"}, iso(got))
}

func TestSchedule_Weekly_EndDateTruncates(t *testing.T) {
	// GIVEN: Weekly from Mar 3 with an end date of Mar 17
	// WHEN: Expanding all of March
	// THEN: Only Mar 3, 10 and 17 are produced

	end := d(2025, time.March, 17)
	s := generic.Schedule{Frequency: generic.FreqWeekly, Anchor: d(2025, time.March, 3), End: &end}
	got := s.Expand(period(d(2025, time.March, 1), d(2025, time.March, 31)))

	assert.Equal(t, []string{"2025-03-03", "2025-03-10", "2025-03-17"}, iso(got))
}

func TestSchedule_Biweekly(t *testing.T) {
	s := generic.Schedule{Frequency: generic.FreqBiweekly, Anchor: d(2025, time.January, 3)}
	got := s.Expand(period(d(2025, time.January, 1), d(2025, time.February, 28)))

	assert.Equal(t, []string{"2025-01-03", "2025-01-17", "2025-01-31", "2025-02-14", "2025-02-28"}, iso(got))
}

func TestSchedule_EndDateBeforeRange_Empty(t *testing.T) {
	end := d(2024, time.December, 31)
	s := generic.Schedule{Frequency: generic.FreqWeekly, Anchor: d(2024, time.January, 1), End: &end}

	assert.Empty(t, s.Expand(period(d(2025, time.January, 1), d(2025, time.January, 31))))
}

// =============================================================================
// ONE-TIME
// =============================================================================

func TestSchedule_OneTime_Boundaries(t *testing.T) {
	r := period(d(2025, time.March, 1), d(2025, time.March, 31))

	tests := []struct {
		name   string
		anchor generic.Date
		want   int
	}{
		{"on range start", d(2025, time.March, 1), 1},
		{"on range end", d(2025, time.March, 31), 1},
		{"inside", d(2025, time.March, 15), 1},
		{"day before start", d(2025, time.February, 28), 0},
		{"day after end", d(2025, time.April, 1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := generic.Schedule{Frequency: generic.FreqOneTime, Anchor: tt.anchor}
			assert.Len(t, s.Expand(r), tt.want)
		})
	}
}

// =============================================================================
// SEMI-MONTHLY
// =============================================================================

func TestSchedule_SemiMonthly_PrimaryAndSecondary(t *testing.T) {
	s := generic.Schedule{Frequency: generic.FreqSemiMonthly, Anchor: d(2025, time.January, 10)}
	got := s.Expand(period(d(2025, time.January, 1), d(2025, time.February, 28)))

	assert.Equal(t, []string{"2025-01-10", "2025-01-25", "2025-02-10", "2025-02-25"}, iso(got))
}

func TestSchedule_SemiMonthly_LateAnchor_ClampsIndependently(t *testing.T) {
	// GIVEN: Semi-monthly anchored on Jan 31 (secondary day 16)
	// WHEN: Expanding January and February
	// THEN: Jan 16 precedes the anchor and is skipped, Feb 31 clamps to Feb 28

	s := generic.Schedule{Frequency: generic.FreqSemiMonthly, Anchor: d(2025, time.January, 31)}
	got := s.Expand(period(d(2025, time.January, 1), d(2025, time.February, 28)))

	assert.Equal(t, []string{"2025-01-31", "2025-02-16", "2025-02-28"}, iso(got))
}

// =============================================================================
// NON-EXPANDING RULES
// =============================================================================

func TestSchedule_NonExpanding(t *testing.T) {
	r := period(d(2025, time.January, 1), d(2025, time.December, 31))

	tests := []struct {
		name string
		s    generic.Schedule
	}{
		{"irregular", generic.Schedule{Frequency: generic.FreqIrregular, Anchor: d(2025, time.January, 5)}},
		{"unknown", generic.Schedule{Frequency: generic.FreqUnknown, Anchor: d(2025, time.January, 5)}},
		{"garbage frequency", generic.Schedule{Frequency: "every_full_moon", Anchor: d(2025, time.January, 5)}},
		{"zero anchor", generic.Schedule{Frequency: generic.FreqMonthly}},
		{"anchor after range", generic.Schedule{Frequency: generic.FreqWeekly, Anchor: d(2026, time.January, 1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, tt.s.Expand(r))
		})
	}
}

func TestSchedule_AllDatesInsideRange(t *testing.T) {
	r := period(d(2025, time.February, 3), d(2025, time.August, 17))
	anchor := d(2024, time.October, 31)

	for _, f := range []generic.Frequency{
		generic.FreqOneTime, generic.FreqWeekly, generic.FreqBiweekly, generic.FreqSemiMonthly,
		generic.FreqMonthly, generic.FreqQuarterly, generic.FreqAnnually,
	} {
		t.Run(string(f), func(t *testing.T) {
			dates := generic.Schedule{Frequency: f, Anchor: anchor}.Expand(r)
			for i, x := range dates {
				assert.True(t, r.Contains(x), "%s outside %s", x, r)
				assert.True(t, x.AfterOrEqual(anchor))
				if i > 0 {
					assert.True(t, dates[i-1].Before(x), "dates must be strictly increasing")
				}
			}
		})
	}
}

// =============================================================================
// FREQUENCY PARSING
// =============================================================================

func TestParseFrequency_Aliases(t *testing.T) {
	tests := map[string]generic.Frequency{
		"monthly":       generic.FreqMonthly,
		"Monthly":       generic.FreqMonthly,
		"one-time":      generic.FreqOneTime,
		"once":          generic.FreqOneTime,
		"bi-weekly":     generic.FreqBiweekly,
		"semimonthly":   generic.FreqSemiMonthly,
		"twice monthly": generic.FreqSemiMonthly,
		"yearly":        generic.FreqAnnually,
		"annual":        generic.FreqAnnually,
		"irregular":     generic.FreqIrregular,
		"hourly":        generic.FreqUnknown,
		"":              generic.FreqUnknown,
	}
	for in, want := range tests {
		assert.Equal(t, want, generic.ParseFrequency(in), "input %q", in)
	}

	assert.True(t, generic.FreqIrregular.IsKnown())
	assert.False(t, generic.FreqIrregular.Predictable())
	assert.False(t, generic.FreqUnknown.IsKnown())
}

// =============================================================================
// DATES
// =============================================================================

func TestDate_DaysBetween_AcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}

	// 2025-03-09 is a 23-hour day in New York.
	before := generic.DateIn(2025, time.March, 8, loc)
	after := generic.DateIn(2025, time.March, 10, loc)

	assert.Equal(t, 2, generic.DaysBetween(before, after))
	assert.Equal(t, 12, before.AddDays(1).Time().Hour())
	assert.Equal(t, "2025-03-09", before.AddDays(1).String())
}

func TestParseDate(t *testing.T) {
	got, err := generic.ParseDate("2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", got.String())
	assert.Equal(t, 12, got.Time().Hour())

	got, err = generic.ParseDate("2025-03-10T00:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", got.String(), "the written calendar day is kept")

	_, err = generic.ParseDate("03/10/2025")
	assert.ErrorIs(t, err, generic.ErrInvalidDate)

	_, err = generic.ParseDate("")
	assert.ErrorIs(t, err, generic.ErrInvalidDate)
}

func TestPeriod_Clamp(t *testing.T) {
	r := period(d(2025, time.March, 1), d(2025, time.March, 31))

	assert.Equal(t, "2025-03-01", r.Clamp(d(2025, time.January, 1)).String())
	assert.Equal(t, "2025-03-31", r.Clamp(d(2025, time.May, 1)).String())
	assert.Equal(t, "2025-03-15", r.Clamp(d(2025, time.March, 15)).String())
	assert.Equal(t, 31, r.Len())
	assert.Len(t, r.Days(), 31)
}

func TestPeriod_Intersect(t *testing.T) {
	march := period(d(2025, time.March, 1), d(2025, time.March, 31))

	got := march.Intersect(period(d(2025, time.February, 20), d(2025, time.March, 10)))
	assert.Equal(t, "[2025-03-01, 2025-03-10]", got.String())

	assert.True(t, march.Intersect(period(d(2025, time.April, 1), d(2025, time.April, 5))).IsEmpty())
	assert.Equal(t, 1, march.Intersect(period(d(2025, time.March, 31), d(2025, time.June, 1))).Len())
}

func TestSchedule_EndDateOnRangeStart_OneOccurrence(t *testing.T) {
	end := d(2025, time.March, 1)
	s := generic.Schedule{Frequency: generic.FreqWeekly, Anchor: d(2025, time.February, 22), End: &end}

	got := s.Expand(period(d(2025, time.March, 1), d(2025, time.March, 31)))

	require.Len(t, got, 1)
	assert.Equal(t, "2025-03-01", got[0].String())
}
