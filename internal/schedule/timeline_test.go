package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferTimelinePerPeriod(t *testing.T) {
	d := NewADate(2024, time.March, 15) // Friday, ISO week 11

	assert.Equal(t, "2024,Q1,Mar,W11,D5", InferTimelineForDate(PeriodDaily, d))
	assert.Equal(t, "2024,Q1,Mar,W11", InferTimelineForDate(PeriodWeekly, d))
	assert.Equal(t, "2024,Q1,Mar", InferTimelineForDate(PeriodMonthly, d))
	assert.Equal(t, "2024,Q1", InferTimelineForDate(PeriodQuarterly, d))
	assert.Equal(t, "2024", InferTimelineForDate(PeriodYearly, d))
	assert.Equal(t, TimelineLifetime, InferTimelineForDate(PeriodNone, d))
}

func TestInferTimelineISOWeekYearBoundary(t *testing.T) {
	// 2027-01-01 is a Friday and belongs to ISO week 53 of 2026, whose
	// Monday is 2026-12-28. The weekly key reads year, quarter and month
	// from that Monday, not from the instant.
	d := NewADate(2027, time.January, 1)
	assert.Equal(t, "2026,Q4,Dec,W53", InferTimelineForDate(PeriodWeekly, d))
	assert.Equal(t, "2027,Q1,Jan", InferTimelineForDate(PeriodMonthly, d))
}

func TestInferTimelineWeeklyMonthBoundary(t *testing.T) {
	// 2024-04-30 and 2024-05-01 sit in the same ISO week 18, whose Monday
	// is 2024-04-29. Both days must key to that week's single bucket.
	april := NewADate(2024, time.April, 30)
	may := NewADate(2024, time.May, 1)
	assert.Equal(t, "2024,Q2,Apr,W18", InferTimelineForDate(PeriodWeekly, april))
	assert.Equal(t, "2024,Q2,Apr,W18", InferTimelineForDate(PeriodWeekly, may))
}

func TestInferTimelineWeeklyKeyCountOverYear(t *testing.T) {
	// A 365-day sweep touches at most 53 distinct ISO weeks, so the
	// weekly keys must collapse to at most 53 distinct strings.
	seen := map[string]bool{}
	d := NewADate(2024, time.January, 1)
	for i := 0; i < 365; i++ {
		seen[InferTimelineForDate(PeriodWeekly, d.AddDays(i))] = true
	}
	assert.GreaterOrEqual(t, len(seen), 52)
	assert.LessOrEqual(t, len(seen), 53)
}

func TestInferTimelineIsPureOverBucket(t *testing.T) {
	// Every day of a week maps to the same weekly key.
	monday := NewADate(2024, time.March, 11)
	for i := 0; i < 7; i++ {
		d := monday.AddDays(i)
		assert.Equal(t, "2024,Q1,Mar,W11", InferTimelineForDate(PeriodWeekly, d), "day %s", d)
	}
}

func TestBucketStartEnd(t *testing.T) {
	d := NewADate(2024, time.March, 15)

	assert.Equal(t, NewADate(2024, time.March, 15), BucketStart(PeriodDaily, d))
	assert.Equal(t, NewADate(2024, time.March, 15), BucketEnd(PeriodDaily, d))

	assert.Equal(t, NewADate(2024, time.March, 11), BucketStart(PeriodWeekly, d))
	assert.Equal(t, NewADate(2024, time.March, 17), BucketEnd(PeriodWeekly, d))

	assert.Equal(t, NewADate(2024, time.March, 1), BucketStart(PeriodMonthly, d))
	assert.Equal(t, NewADate(2024, time.March, 31), BucketEnd(PeriodMonthly, d))

	q := NewADate(2024, time.May, 10)
	assert.Equal(t, NewADate(2024, time.April, 1), BucketStart(PeriodQuarterly, q))
	assert.Equal(t, NewADate(2024, time.June, 30), BucketEnd(PeriodQuarterly, q))

	assert.Equal(t, NewADate(2024, time.January, 1), BucketStart(PeriodYearly, d))
	assert.Equal(t, NewADate(2024, time.December, 31), BucketEnd(PeriodYearly, d))
}

func TestBucketStartWeeklyIsMonday(t *testing.T) {
	// A Monday is its own bucket start; a Sunday belongs to the week
	// that began six days earlier.
	monday := NewADate(2024, time.March, 11)
	sunday := NewADate(2024, time.March, 17)
	assert.Equal(t, monday, BucketStart(PeriodWeekly, monday))
	assert.Equal(t, monday, BucketStart(PeriodWeekly, sunday))
}

func TestBucketEndLeapFebruary(t *testing.T) {
	d := NewADate(2024, time.February, 10)
	assert.Equal(t, NewADate(2024, time.February, 29), BucketEnd(PeriodMonthly, d))
	d = NewADate(2023, time.February, 10)
	assert.Equal(t, NewADate(2023, time.February, 28), BucketEnd(PeriodMonthly, d))
}

func TestSameBucket(t *testing.T) {
	assert.True(t, SameBucket(PeriodWeekly, NewADate(2024, time.March, 11), NewADate(2024, time.March, 17)))
	assert.False(t, SameBucket(PeriodWeekly, NewADate(2024, time.March, 17), NewADate(2024, time.March, 18)))
	assert.True(t, SameBucket(PeriodMonthly, NewADate(2024, time.March, 1), NewADate(2024, time.March, 31)))
}

func TestBucketsBetween(t *testing.T) {
	from := NewADate(2024, time.March, 1)
	to := NewADate(2024, time.March, 5)

	days := BucketsBetween(PeriodDaily, from, to)
	require.Len(t, days, 5)
	assert.Equal(t, from, days[0])
	assert.Equal(t, to, days[4])

	weeks := BucketsBetween(PeriodWeekly, from, NewADate(2024, time.March, 15))
	require.Len(t, weeks, 3)
	assert.Equal(t, NewADate(2024, time.February, 26), weeks[0])
	assert.Equal(t, NewADate(2024, time.March, 11), weeks[2])

	assert.Nil(t, BucketsBetween(PeriodDaily, to, from))
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("  Weekly ")
	require.NoError(t, err)
	assert.Equal(t, PeriodWeekly, p)

	_, err = ParsePeriod("fortnightly")
	var bad *BadPeriodError
	require.ErrorAs(t, err, &bad)
	assert.Equal(t, "fortnightly", bad.Input)
}
