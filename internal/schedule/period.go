package schedule

import (
	"strings"
	"time"
)

// Period is a recurrence bucket size. PeriodNone means "lifetime" and is
// only used for score-log totals.
type Period string

const (
	PeriodNone      Period = "none"
	PeriodDaily     Period = "daily"
	PeriodWeekly    Period = "weekly"
	PeriodMonthly   Period = "monthly"
	PeriodQuarterly Period = "quarterly"
	PeriodYearly    Period = "yearly"
)

// AllPeriods, smallest to largest, excluding PeriodNone.
var AllPeriods = []Period{PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodQuarterly, PeriodYearly}

func (p Period) IsValid() bool {
	switch p {
	case PeriodNone, PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodQuarterly, PeriodYearly:
		return true
	default:
		return false
	}
}

func ParsePeriod(input string) (Period, error) {
	p := Period(strings.TrimSpace(strings.ToLower(input)))
	if !p.IsValid() {
		return "", &BadPeriodError{Input: input}
	}
	return p, nil
}

type BadPeriodError struct{ Input string }

func (e *BadPeriodError) Error() string { return "invalid period: " + e.Input }

// BucketStart returns the first day of the period bucket containing d.
// Weekly buckets are ISO weeks (Monday start).
func BucketStart(p Period, d ADate) ADate {
	switch p {
	case PeriodDaily:
		return NewADate(d.Year(), d.Month(), d.Day())
	case PeriodWeekly:
		offset := (int(d.Weekday()) + 6) % 7 // Monday = 0
		return NewADate(d.Year(), d.Month(), d.Day()).AddDays(-offset)
	case PeriodMonthly:
		return NewADate(d.Year(), d.Month(), 1)
	case PeriodQuarterly:
		qm := time.Month((int(d.Month())-1)/3*3 + 1)
		return NewADate(d.Year(), qm, 1)
	case PeriodYearly:
		return NewADate(d.Year(), time.January, 1)
	default:
		return NewADate(d.Year(), d.Month(), d.Day())
	}
}

// BucketEnd returns the last day of the period bucket containing d.
func BucketEnd(p Period, d ADate) ADate {
	start := BucketStart(p, d)
	switch p {
	case PeriodDaily:
		return start
	case PeriodWeekly:
		return start.AddDays(6)
	case PeriodMonthly:
		return start.AddMonths(1).AddDays(-1)
	case PeriodQuarterly:
		return start.AddMonths(3).AddDays(-1)
	case PeriodYearly:
		return start.AddMonths(12).AddDays(-1)
	default:
		return start
	}
}

// NextBucketStart steps to the following bucket.
func NextBucketStart(p Period, d ADate) ADate {
	return BucketEnd(p, d).AddDays(1)
}

// SameBucket reports whether a and b fall in the same period bucket.
func SameBucket(p Period, a, b ADate) bool {
	return BucketStart(p, a).Equal(BucketStart(p, b))
}

// BucketsBetween lists the bucket start dates from the bucket containing
// `from` through the bucket containing `to`, chronological.
func BucketsBetween(p Period, from, to ADate) []ADate {
	if to.Before(from) {
		return nil
	}
	var out []ADate
	cur := BucketStart(p, from)
	last := BucketStart(p, to)
	for !cur.After(last) {
		out = append(out, cur)
		cur = NextBucketStart(p, cur)
	}
	return out
}

// quarterOf maps a month to its quarter, 1-4.
func quarterOf(m time.Month) int {
	return (int(m)-1)/3 + 1
}
