package schedule

import (
	"fmt"
	"time"
)

// TimelineLifetime is the canonical key for PeriodNone.
const TimelineLifetime = "Lifetime"

// InferTimeline maps (period, instant) to the canonical bucket key. The
// function is pure: every instant in a bucket yields the same key and
// different buckets never collide within a period.
//
//	none      -> "Lifetime"
//	daily     -> "YYYY,Qn,Mon,Wnn,Dn"
//	weekly    -> "YYYY,Qn,Mon,Wnn"   (YYYY is the ISO-week year)
//	monthly   -> "YYYY,Qn,Mon"
//	quarterly -> "YYYY,Qn"
//	yearly    -> "YYYY"
//
// The weekly key reads year, quarter and month from the week's Monday, so
// instants on either side of a month or year boundary inside one ISO week
// share a key.
func InferTimeline(p Period, t time.Time) string {
	t = t.UTC()
	year := t.Year()
	quarter := quarterOf(t.Month())
	month := t.Month().String()[:3]
	isoYear, isoWeek := t.ISOWeek()
	weekday := (int(t.Weekday())+6)%7 + 1 // ISO: Monday = 1

	switch p {
	case PeriodNone:
		return TimelineLifetime
	case PeriodDaily:
		return fmt.Sprintf("%d,Q%d,%s,W%02d,D%d", year, quarter, month, isoWeek, weekday)
	case PeriodWeekly:
		monday := t.AddDate(0, 0, -(weekday - 1))
		return fmt.Sprintf("%d,Q%d,%s,W%02d", isoYear, quarterOf(monday.Month()), monday.Month().String()[:3], isoWeek)
	case PeriodMonthly:
		return fmt.Sprintf("%d,Q%d,%s", year, quarter, month)
	case PeriodQuarterly:
		return fmt.Sprintf("%d,Q%d", year, quarter)
	case PeriodYearly:
		return fmt.Sprintf("%d", year)
	default:
		return TimelineLifetime
	}
}

// InferTimelineForDate keys the bucket containing a calendar date.
func InferTimelineForDate(p Period, d ADate) string {
	return InferTimeline(p, d.EndOfDayIn(time.UTC))
}
