package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDaily(t *testing.T) {
	sched := Compute(ComputeInput{
		Name:   "Meditate",
		Period: PeriodDaily,
		Today:  NewADate(2024, time.March, 15),
	})

	assert.Equal(t, "Meditate 2024,Q1,Mar,W11,D5", sched.FullName)
	assert.Equal(t, "2024,Q1,Mar,W11,D5", sched.Timeline)
	assert.Equal(t, NewADate(2024, time.March, 15), sched.ActionableDate)
	assert.Equal(t, NewADate(2024, time.March, 15), sched.DueDate)
	assert.False(t, sched.Skip)
}

func TestComputeWeeklyWithinBucketDays(t *testing.T) {
	actionable := 2
	due := 3
	sched := Compute(ComputeInput{
		Name:              "Review inbox",
		Period:            PeriodWeekly,
		Today:             NewADate(2024, time.March, 15),
		ActionableFromDay: &actionable,
		DueAtDay:          &due,
	})

	// Day offsets are relative to the Monday bucket start.
	assert.Equal(t, NewADate(2024, time.March, 11), sched.BucketStart)
	assert.Equal(t, NewADate(2024, time.March, 12), sched.ActionableDate)
	assert.Equal(t, NewADate(2024, time.March, 13), sched.DueDate)
}

func TestComputeMonthlyDueDayClampsToMonth(t *testing.T) {
	due := 31
	sched := Compute(ComputeInput{
		Name:     "Pay rent",
		Period:   PeriodMonthly,
		Today:    NewADate(2024, time.February, 10),
		DueAtDay: &due,
	})
	assert.Equal(t, NewADate(2024, time.February, 29), sched.DueDate)
}

func TestComputeQuarterlyMonthAnchors(t *testing.T) {
	actMonth := 2
	dueMonth := 3
	dueDay := 15
	sched := Compute(ComputeInput{
		Name:                "Plan the quarter",
		Period:              PeriodQuarterly,
		Today:               NewADate(2024, time.May, 10),
		ActionableFromMonth: &actMonth,
		DueAtMonth:          &dueMonth,
		DueAtDay:            &dueDay,
	})

	assert.Equal(t, NewADate(2024, time.April, 1), sched.BucketStart)
	assert.Equal(t, NewADate(2024, time.May, 1), sched.ActionableDate)
	assert.Equal(t, NewADate(2024, time.June, 15), sched.DueDate)
}

func TestComputeDatesClampToBucket(t *testing.T) {
	due := 10
	sched := Compute(ComputeInput{
		Name:     "Stretch",
		Period:   PeriodDaily,
		Today:    NewADate(2024, time.March, 15),
		DueAtDay: &due,
	})
	// A daily bucket is one day wide; any offset collapses onto it.
	assert.Equal(t, sched.BucketStart, sched.DueDate)
	assert.Equal(t, sched.BucketEnd, sched.DueDate)
}

func TestComputeRepeatNaming(t *testing.T) {
	idx := 2
	total := 3
	sched := Compute(ComputeInput{
		Name:        "Gym session",
		Period:      PeriodWeekly,
		Today:       NewADate(2024, time.March, 15),
		RepeatIndex: &idx,
		RepeatTotal: &total,
	})
	assert.Equal(t, "Gym session 2024,Q1,Mar,W11 [2/3]", sched.FullName)
}

func TestComputeHonorsSkipRule(t *testing.T) {
	rule := "even"
	skipped := Compute(ComputeInput{
		Name:     "Water plants",
		Period:   PeriodDaily,
		Today:    NewADate(2024, time.March, 14),
		SkipRule: &rule,
	})
	kept := Compute(ComputeInput{
		Name:     "Water plants",
		Period:   PeriodDaily,
		Today:    NewADate(2024, time.March, 15),
		SkipRule: &rule,
	})
	assert.True(t, skipped.Skip)
	assert.False(t, kept.Skip)
}

func TestEvaluateSkipRule(t *testing.T) {
	mon := NewADate(2024, time.March, 11)
	tue := NewADate(2024, time.March, 12)

	assert.True(t, EvaluateSkipRule("mon,wed", PeriodDaily, mon))
	assert.False(t, EvaluateSkipRule("mon,wed", PeriodDaily, tue))
	// Weekday names only apply to daily buckets.
	assert.False(t, EvaluateSkipRule("mon", PeriodWeekly, mon))

	// Weekly ordinal is the ISO week number; W11 is odd.
	assert.True(t, EvaluateSkipRule("odd", PeriodWeekly, mon))
	assert.False(t, EvaluateSkipRule("even", PeriodWeekly, mon))

	// "every 2" keeps even ordinals and skips the rest.
	assert.True(t, EvaluateSkipRule("every 2", PeriodWeekly, mon))
	assert.False(t, EvaluateSkipRule("every 2 1", PeriodWeekly, mon))

	assert.True(t, EvaluateSkipRule("custom 3,11", PeriodDaily, mon))
	assert.False(t, EvaluateSkipRule("custom 3,11", PeriodDaily, tue))

	assert.False(t, EvaluateSkipRule("", PeriodDaily, mon))
}

func TestCheckSkipRule(t *testing.T) {
	assert.NoError(t, CheckSkipRule("even", PeriodWeekly))
	assert.NoError(t, CheckSkipRule("every 2 1", PeriodMonthly))
	assert.NoError(t, CheckSkipRule("custom 1,15", PeriodDaily))
	assert.NoError(t, CheckSkipRule("sat,sun", PeriodDaily))

	assert.Error(t, CheckSkipRule("every", PeriodDaily))
	assert.Error(t, CheckSkipRule("every zero", PeriodDaily))
	assert.Error(t, CheckSkipRule("sat,sun", PeriodWeekly))
	assert.Error(t, CheckSkipRule("whenever", PeriodDaily))
}

func TestParseADate(t *testing.T) {
	d, err := ParseADate(" 2024-03-15 ")
	require.NoError(t, err)
	assert.False(t, d.HasTime())
	assert.Equal(t, "2024-03-15", d.String())

	withTime, err := ParseADate("2024-03-15T09:30:00Z")
	require.NoError(t, err)
	assert.True(t, withTime.HasTime())

	_, err = ParseADate("March 15th")
	assert.Error(t, err)
}

func TestADateArithmetic(t *testing.T) {
	d := NewADate(2024, time.March, 15)

	assert.Equal(t, NewADate(2024, time.March, 18), d.AddDays(3))
	assert.Equal(t, NewADate(2024, time.April, 15), d.AddMonths(1))
	assert.Equal(t, 3, d.DaysUntil(NewADate(2024, time.March, 18)))
	assert.Equal(t, -3, NewADate(2024, time.March, 18).DaysUntil(d))

	lo := NewADate(2024, time.March, 10)
	hi := NewADate(2024, time.March, 12)
	assert.Equal(t, hi, d.Clamp(lo, hi))
	assert.Equal(t, lo, NewADate(2024, time.March, 1).Clamp(lo, hi))
	assert.Equal(t, NewADate(2024, time.March, 11), NewADate(2024, time.March, 11).Clamp(lo, hi))
}

func TestOverlaps(t *testing.T) {
	a := NewADate(2024, time.March, 1)
	b := NewADate(2024, time.March, 5)
	c := NewADate(2024, time.March, 5)
	d := NewADate(2024, time.March, 9)

	assert.True(t, Overlaps(a, b, c, d))
	assert.True(t, Overlaps(c, d, a, b))
	assert.False(t, Overlaps(a, NewADate(2024, time.March, 4), c, d))
}
