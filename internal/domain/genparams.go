package domain

import (
	"github.com/horia141/jupiter-sub011/internal/schedule"
)

// RecurringTaskGenParams is everything the generation engine needs to
// materialize tasks from a recurring source. Persisted bit-exact.
type RecurringTaskGenParams struct {
	Period              schedule.Period
	Eisen               Eisen
	Difficulty          Difficulty
	ActionableFromDay   *int
	ActionableFromMonth *int
	DueAtDay            *int
	DueAtMonth          *int
	SkipRule            *string
}

func (p RecurringTaskGenParams) Validate() error {
	if !p.Period.IsValid() || p.Period == schedule.PeriodNone {
		return InputValidationError{Field: "period", Msg: string(p.Period)}
	}
	if !p.Eisen.IsValid() {
		return InputValidationError{Field: "eisen", Msg: string(p.Eisen)}
	}
	if !p.Difficulty.IsValid() {
		return InputValidationError{Field: "difficulty", Msg: string(p.Difficulty)}
	}
	if p.ActionableFromDay != nil && (*p.ActionableFromDay < 1 || *p.ActionableFromDay > 31) {
		return InputValidationError{Field: "actionable_from_day", Msg: "must be 1..31"}
	}
	if p.ActionableFromMonth != nil && (*p.ActionableFromMonth < 1 || *p.ActionableFromMonth > 12) {
		return InputValidationError{Field: "actionable_from_month", Msg: "must be 1..12"}
	}
	if p.DueAtDay != nil && (*p.DueAtDay < 1 || *p.DueAtDay > 31) {
		return InputValidationError{Field: "due_at_day", Msg: "must be 1..31"}
	}
	if p.DueAtMonth != nil && (*p.DueAtMonth < 1 || *p.DueAtMonth > 12) {
		return InputValidationError{Field: "due_at_month", Msg: "must be 1..12"}
	}
	if p.SkipRule != nil {
		if err := schedule.CheckSkipRule(*p.SkipRule, p.Period); err != nil {
			return InputValidationError{Field: "skip_rule", Msg: err.Error()}
		}
	}
	return nil
}

func (p RecurringTaskGenParams) Equal(other RecurringTaskGenParams) bool {
	return p.Period == other.Period &&
		p.Eisen == other.Eisen &&
		p.Difficulty == other.Difficulty &&
		intPtrEq(p.ActionableFromDay, other.ActionableFromDay) &&
		intPtrEq(p.ActionableFromMonth, other.ActionableFromMonth) &&
		intPtrEq(p.DueAtDay, other.DueAtDay) &&
		intPtrEq(p.DueAtMonth, other.DueAtMonth) &&
		strPtrEq(p.SkipRule, other.SkipRule)
}

func intPtrEq(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func strPtrEq(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func adatePtrEq(a, b *schedule.ADate) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
