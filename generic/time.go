package generic

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// DATE - Calendar day pinned to local noon
// =============================================================================

// Date is a calendar day. The underlying time is always 12:00 in its location
// so that DST transitions can never move it across a day boundary.
//
// Dates are values: every arithmetic method returns a new Date.
type Date struct {
	t time.Time
}

const isoLayout = "2006-01-02"

// NewDate returns the given calendar day at local noon.
func NewDate(year int, month time.Month, day int) Date {
	return DateIn(year, month, day, time.Local)
}

// DateIn returns the given calendar day at noon in loc.
// Out-of-range days normalize the way time.Date does (Feb 30 -> Mar 2).
func DateIn(year int, month time.Month, day int, loc *time.Location) Date {
	if loc == nil {
		loc = time.Local
	}
	return Date{t: time.Date(year, month, day, 12, 0, 0, 0, loc)}
}

// DateOf takes the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	return DateIn(t.Year(), t.Month(), t.Day(), t.Location())
}

// ParseDate accepts "2006-01-02" and RFC3339 timestamps. The calendar day
// written in the string is kept and re-anchored at local noon; the offset of
// an RFC3339 value is ignored so "2025-03-10T00:00:00Z" is March 10 everywhere.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}
	if len(s) >= len(isoLayout) {
		if t, err := time.Parse(isoLayout, s[:len(isoLayout)]); err == nil {
			if len(s) == len(isoLayout) || s[len(isoLayout)] == 'T' || s[len(isoLayout)] == ' ' {
				return NewDate(t.Year(), t.Month(), t.Day()), nil
			}
		}
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// Comparison
func (d Date) Before(o Date) bool        { return d.ordinal() < o.ordinal() }
func (d Date) After(o Date) bool         { return d.ordinal() > o.ordinal() }
func (d Date) Equal(o Date) bool         { return d.ordinal() == o.ordinal() }
func (d Date) BeforeOrEqual(o Date) bool { return d.ordinal() <= o.ordinal() }
func (d Date) AfterOrEqual(o Date) bool  { return d.ordinal() >= o.ordinal() }

// Arithmetic
func (d Date) AddDays(n int) Date { return DateIn(d.t.Year(), d.t.Month(), d.t.Day()+n, d.t.Location()) }

// AddMonthsClamped moves n months forward keeping the day-of-month, clamped
// to the last day of the target month (Jan 31 + 1 -> Feb 28/29).
func (d Date) AddMonthsClamped(n int) Date {
	return ClampedDateIn(d.t.Year(), d.t.Month()+time.Month(n), d.t.Day(), d.t.Location())
}

// Properties
func (d Date) Year() int                { return d.t.Year() }
func (d Date) Month() time.Month        { return d.t.Month() }
func (d Date) Day() int                 { return d.t.Day() }
func (d Date) Weekday() time.Weekday    { return d.t.Weekday() }
func (d Date) Location() *time.Location { return d.t.Location() }
func (d Date) IsZero() bool             { return d.t.IsZero() }
func (d Date) Time() time.Time          { return d.t }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(isoLayout)
}

// MarshalJSON encodes the date as "YYYY-MM-DD" (null for the zero date).
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes a date string and normalizes it to local noon.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ordinal is the civil day number (days since 1970-01-01) of the calendar
// day, independent of location and wall-clock offset.
func (d Date) ordinal() int64 {
	return civilDays(d.t.Year(), int(d.t.Month()), d.t.Day())
}

// civilDays converts a proleptic Gregorian date to a day count.
func civilDays(y, m, d int) int64 {
	if m <= 2 {
		y--
	}
	era := y / 400
	if y < 0 && y%400 != 0 {
		era = (y - 399) / 400
	}
	yoe := y - era*400
	mp := (m + 9) % 12
	doy := (153*mp+2)/5 + d - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return int64(era)*146097 + int64(doe) - 719468
}

// =============================================================================
// DATE UTILITIES
// =============================================================================

// DaysBetween returns the number of calendar days from -> to (negative if to is earlier).
func DaysBetween(from, to Date) int { return int(to.ordinal() - from.ordinal()) }

// DaysInMonth returns the number of days of the month, handling leap years.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 12, 0, 0, 0, time.UTC).Day()
}

// ClampedDate returns year/month/day with day clamped to the month's last day.
// Month overflow carries into the year (month 13 is January of year+1).
func ClampedDate(year int, month time.Month, day int) Date {
	return ClampedDateIn(year, month, day, time.Local)
}

func ClampedDateIn(year int, month time.Month, day int, loc *time.Location) Date {
	first := time.Date(year, month, 1, 12, 0, 0, 0, time.UTC)
	y, m := first.Year(), first.Month()
	if last := DaysInMonth(y, m); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return DateIn(y, m, day, loc)
}

// MinDate returns the earlier of two dates.
func MinDate(a, b Date) Date {
	if b.Before(a) {
		return b
	}
	return a
}

// MaxDate returns the later of two dates.
func MaxDate(a, b Date) Date {
	if b.After(a) {
		return b
	}
	return a
}
