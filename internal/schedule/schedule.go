package schedule

import (
	"fmt"
	"time"
)

// ComputeInput describes one candidate bucket for one recurring source.
type ComputeInput struct {
	Name   string
	Period Period
	Today  ADate

	ActionableFromDay   *int // 1..31
	ActionableFromMonth *int // 1..12
	DueAtDay            *int // 1..31
	DueAtMonth          *int // 1..12
	SkipRule            *string

	// RepeatIndex/RepeatTotal are set for habits with more than one
	// repeat per bucket; index is 1-based.
	RepeatIndex *int
	RepeatTotal *int
}

// Schedule is the materialized plan for one bucket.
type Schedule struct {
	FullName       string
	Timeline       string
	ActionableDate ADate
	DueDate        ADate
	BucketStart    ADate
	BucketEnd      ADate
	Skip           bool
}

// Compute derives the schedule for the bucket containing Today. All
// derived dates are clamped to the bucket.
func Compute(in ComputeInput) Schedule {
	start := BucketStart(in.Period, in.Today)
	end := BucketEnd(in.Period, in.Today)
	timeline := InferTimelineForDate(in.Period, in.Today)

	actionable := start
	if in.Period == PeriodQuarterly || in.Period == PeriodYearly {
		if in.ActionableFromMonth != nil {
			actionable = monthWithin(start, *in.ActionableFromMonth)
		}
		if in.ActionableFromDay != nil {
			actionable = dayWithinMonth(actionable, *in.ActionableFromDay)
		}
	} else if in.ActionableFromDay != nil {
		actionable = start.AddDays(*in.ActionableFromDay - 1)
	}
	actionable = actionable.Clamp(start, end)

	due := end
	if in.Period == PeriodQuarterly || in.Period == PeriodYearly {
		if in.DueAtMonth != nil {
			due = BucketEnd(PeriodMonthly, monthWithin(start, *in.DueAtMonth))
		}
		if in.DueAtDay != nil {
			due = dayWithinMonth(BucketStart(PeriodMonthly, due), *in.DueAtDay)
		}
	} else if in.DueAtDay != nil {
		switch in.Period {
		case PeriodMonthly:
			due = dayWithinMonth(start, *in.DueAtDay)
		default:
			due = start.AddDays(*in.DueAtDay - 1)
		}
	}
	due = due.Clamp(start, end)

	skip := false
	if in.SkipRule != nil {
		skip = EvaluateSkipRule(*in.SkipRule, in.Period, start)
	}

	fullName := fmt.Sprintf("%s %s", in.Name, timeline)
	if in.RepeatIndex != nil && in.RepeatTotal != nil {
		fullName = fmt.Sprintf("%s [%d/%d]", fullName, *in.RepeatIndex, *in.RepeatTotal)
	}

	return Schedule{
		FullName:       fullName,
		Timeline:       timeline,
		ActionableDate: actionable,
		DueDate:        due,
		BucketStart:    start,
		BucketEnd:      end,
		Skip:           skip,
	}
}

// monthWithin picks the nth month of the bucket starting at start.
func monthWithin(start ADate, month int) ADate {
	if month < 1 {
		month = 1
	}
	return start.AddMonths(month - 1)
}

// dayWithinMonth picks a day within the month of d, clamped to the
// month's length.
func dayWithinMonth(d ADate, day int) ADate {
	first := NewADate(d.Year(), d.Month(), 1)
	last := first.AddMonths(1).AddDays(-1)
	if day < 1 {
		day = 1
	}
	if day > last.Day() {
		day = last.Day()
	}
	return NewADate(d.Year(), d.Month(), day)
}

// Overlaps reports whether [aStart, aEnd] and [bStart, bEnd] intersect.
func Overlaps(aStart, aEnd, bStart, bEnd ADate) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}

// TodayIn is the current calendar date in the user's timezone.
func TodayIn(loc *time.Location) ADate {
	y, m, d := time.Now().In(loc).Date()
	return NewADate(y, m, d)
}
