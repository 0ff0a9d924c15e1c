package schedule

import (
	"fmt"
	"strings"
	"time"
)

// ADate is a calendar date with an optional time of day. Dates without a
// time convert to an instant via EndOfDayIn.
type ADate struct {
	t       time.Time
	hasTime bool
}

func NewADate(year int, month time.Month, day int) ADate {
	return ADate{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func NewADateTime(t time.Time) ADate {
	return ADate{t: t.UTC(), hasTime: true}
}

// ADateFromTime keeps only the calendar date of the instant.
func ADateFromTime(t time.Time) ADate {
	y, m, d := t.UTC().Date()
	return NewADate(y, m, d)
}

// ParseADate accepts YYYY-MM-DD, or an RFC 3339 instant for dates with a
// time of day.
func ParseADate(raw string) (ADate, error) {
	s := strings.TrimSpace(raw)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return ADate{t: t}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return ADate{t: t.UTC(), hasTime: true}, nil
	}
	return ADate{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", raw)
}

func (d ADate) IsZero() bool   { return d.t.IsZero() }
func (d ADate) HasTime() bool  { return d.hasTime }
func (d ADate) Year() int      { return d.t.Year() }
func (d ADate) Month() time.Month { return d.t.Month() }
func (d ADate) Day() int       { return d.t.Day() }
func (d ADate) Weekday() time.Weekday { return d.t.Weekday() }

func (d ADate) String() string {
	if d.hasTime {
		return d.t.Format(time.RFC3339)
	}
	return d.t.Format("2006-01-02")
}

func (d ADate) AddDays(n int) ADate {
	d.t = d.t.AddDate(0, 0, n)
	return d
}

func (d ADate) AddMonths(n int) ADate {
	d.t = d.t.AddDate(0, n, 0)
	return d
}

func (d ADate) Before(other ADate) bool { return d.t.Before(other.t) }
func (d ADate) After(other ADate) bool  { return d.t.After(other.t) }
func (d ADate) Equal(other ADate) bool  { return d.t.Equal(other.t) && d.hasTime == other.hasTime }

// Clamp bounds the date to [lo, hi].
func (d ADate) Clamp(lo, hi ADate) ADate {
	if d.Before(lo) {
		return lo
	}
	if d.After(hi) {
		return hi
	}
	return d
}

// EndOfDayIn is the instant at the end of the calendar day in tz. Dates
// that already carry a time of day convert directly.
func (d ADate) EndOfDayIn(loc *time.Location) time.Time {
	if d.hasTime {
		return d.t
	}
	y, m, day := d.t.Date()
	return time.Date(y, m, day, 23, 59, 59, 0, loc).UTC()
}

// DaysUntil counts the calendar days from d to other (negative if other
// is earlier).
func (d ADate) DaysUntil(other ADate) int {
	return int(other.t.Sub(d.t).Hours() / 24)
}
