package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horia141/jupiter-sub011/internal/schedule"
)

func TestNewEntityName(t *testing.T) {
	name, err := NewEntityName("  Plan the week  ")
	require.NoError(t, err)
	assert.Equal(t, "Plan the week", name.String())

	_, err = NewEntityName("   ")
	var invalid InputValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "name", invalid.Field)
}

func TestNewEmailAddress(t *testing.T) {
	email, err := NewEmailAddress("  Alice@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", email.String())

	for _, bad := range []string{"no-at-sign", "@example.com", "alice@"} {
		_, err := NewEmailAddress(bad)
		assert.Error(t, err, bad)
	}
}

func TestNewTimezone(t *testing.T) {
	tz, err := NewTimezone("Europe/Bucharest")
	require.NoError(t, err)
	assert.Equal(t, "Europe/Bucharest", tz.String())

	_, err = NewTimezone("Mars/Olympus")
	assert.Error(t, err)
}

func TestDefaultFeatureFlags(t *testing.T) {
	flags := DefaultFeatureFlags()

	assert.True(t, flags.IsEnabled(FeatureHabits))
	assert.True(t, flags.IsEnabled(FeatureGamification))
	assert.False(t, flags.IsEnabled(FeatureSlackTasks))
	assert.False(t, flags.IsEnabled(FeatureEmailTasks))
	assert.False(t, flags.IsEnabled(FeatureSchedules))
}

func TestFeatureFlagsWithIsCopyOnWrite(t *testing.T) {
	flags := DefaultFeatureFlags()
	modified := flags.With(FeatureHabits, false)

	assert.True(t, flags.IsEnabled(FeatureHabits))
	assert.False(t, modified.IsEnabled(FeatureHabits))
	assert.False(t, flags.Equal(modified))
	assert.True(t, flags.Equal(DefaultFeatureFlags()))
}

func TestParseBirthday(t *testing.T) {
	bday, err := ParseBirthday("15 Mar")
	require.NoError(t, err)
	assert.Equal(t, time.March, bday.Month)
	assert.Equal(t, 15, bday.Day)
	assert.Equal(t, "15 Mar", bday.String())

	for _, bad := range []string{"Mar 15", "32 Jan", "15", "15 Mars"} {
		_, err := ParseBirthday(bad)
		assert.Error(t, err, bad)
	}
}

func TestBirthdayInYearClampsLeapDay(t *testing.T) {
	bday := PersonBirthday{Month: time.February, Day: 29}
	assert.Equal(t, schedule.NewADate(2024, time.February, 29), bday.InYear(2024))
	assert.Equal(t, schedule.NewADate(2023, time.February, 28), bday.InYear(2023))
}

func TestVacationValidation(t *testing.T) {
	name, err := NewEntityName("Seaside")
	require.NoError(t, err)

	start := schedule.NewADate(2024, time.July, 1)
	end := schedule.NewADate(2024, time.July, 14)
	vac, err := NewVacation(testStamp(), 1, name, start, end)
	require.NoError(t, err)

	assert.True(t, vac.Covers(schedule.NewADate(2024, time.July, 14), schedule.NewADate(2024, time.July, 20)))
	assert.False(t, vac.Covers(schedule.NewADate(2024, time.July, 15), schedule.NewADate(2024, time.July, 20)))

	_, err = NewVacation(testStamp(), 1, name, end, start)
	assert.Error(t, err)

	badEnd := schedule.NewADate(2024, time.June, 30)
	_, err = vac.Update(testStamp(), VacationUpdate{EndDate: &badEnd})
	assert.Error(t, err)
}

func TestGenParamsValidate(t *testing.T) {
	day := 3
	rule := "even"
	good := RecurringTaskGenParams{
		Period:     schedule.PeriodWeekly,
		Eisen:      EisenRegular,
		Difficulty: DifficultyEasy,
		DueAtDay:   &day,
		SkipRule:   &rule,
	}
	assert.NoError(t, good.Validate())

	bad := good
	bad.Period = schedule.PeriodNone
	assert.Error(t, bad.Validate())

	bad = good
	outOfRange := 32
	bad.DueAtDay = &outOfRange
	assert.Error(t, bad.Validate())

	bad = good
	weekdayRule := "sat,sun"
	bad.SkipRule = &weekdayRule
	assert.Error(t, bad.Validate(), "weekday names are daily-only")
}

func TestGenParamsEqual(t *testing.T) {
	day := 3
	a := RecurringTaskGenParams{Period: schedule.PeriodWeekly, Eisen: EisenRegular, Difficulty: DifficultyEasy, DueAtDay: &day}
	otherDay := 3
	b := RecurringTaskGenParams{Period: schedule.PeriodWeekly, Eisen: EisenRegular, Difficulty: DifficultyEasy, DueAtDay: &otherDay}
	assert.True(t, a.Equal(b))

	b.Eisen = EisenImportant
	assert.False(t, a.Equal(b))
}

func TestScoreStatsApplyClampsAtZero(t *testing.T) {
	stats := ScoreStats{UserRef: 1, Period: schedule.PeriodDaily, Timeline: "2024,Q1,Mar,W11,D5"}

	stats = stats.Apply(2, ScoreSourceInboxTask, 1)
	assert.Equal(t, 2, stats.TotalScore)
	assert.Equal(t, 1, stats.InboxTaskCnt)

	stats = stats.Apply(-10, ScoreSourceInboxTask, -2)
	assert.Equal(t, 0, stats.TotalScore)
	assert.Equal(t, 0, stats.InboxTaskCnt)

	stats = stats.Apply(10, ScoreSourceBigPlan, 1)
	assert.Equal(t, 10, stats.TotalScore)
	assert.Equal(t, 1, stats.BigPlanCnt)
}

func TestParseDefaults(t *testing.T) {
	eisen, err := ParseEisen("")
	require.NoError(t, err)
	assert.Equal(t, EisenRegular, eisen)

	difficulty, err := ParseDifficulty("  Hard ")
	require.NoError(t, err)
	assert.Equal(t, DifficultyHard, difficulty)

	_, err = ParseEisen("critical")
	assert.Error(t, err)
}
