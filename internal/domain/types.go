package domain

import "strings"

// Eisen is the Eisenhower classification of a task.
type Eisen string

const (
	EisenRegular            Eisen = "regular"
	EisenImportant          Eisen = "important"
	EisenUrgent             Eisen = "urgent"
	EisenImportantAndUrgent Eisen = "important-and-urgent"
)

func (e Eisen) IsValid() bool {
	switch e {
	case EisenRegular, EisenImportant, EisenUrgent, EisenImportantAndUrgent:
		return true
	default:
		return false
	}
}

// DefaultEisen is used when user input is missing.
const DefaultEisen = EisenRegular

func ParseEisen(input string) (Eisen, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	if s == "" {
		return DefaultEisen, nil
	}
	e := Eisen(s)
	if !e.IsValid() {
		return "", InputValidationError{Field: "eisen", Msg: input}
	}
	return e, nil
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

const DefaultDifficulty = DifficultyEasy

func ParseDifficulty(input string) (Difficulty, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	if s == "" {
		return DefaultDifficulty, nil
	}
	d := Difficulty(s)
	if !d.IsValid() {
		return "", InputValidationError{Field: "difficulty", Msg: input}
	}
	return d, nil
}

// InboxTaskStatus is the working state of an inbox task. Done and NotDone
// are the terminal, score-contributing states.
type InboxTaskStatus string

const (
	InboxTaskStatusNotStarted InboxTaskStatus = "not-started"
	InboxTaskStatusInProgress InboxTaskStatus = "in-progress"
	InboxTaskStatusBlocked    InboxTaskStatus = "blocked"
	InboxTaskStatusDone       InboxTaskStatus = "done"
	InboxTaskStatusNotDone    InboxTaskStatus = "not-done"
)

func (s InboxTaskStatus) IsValid() bool {
	switch s {
	case InboxTaskStatusNotStarted, InboxTaskStatusInProgress,
		InboxTaskStatusBlocked, InboxTaskStatusDone, InboxTaskStatusNotDone:
		return true
	default:
		return false
	}
}

func (s InboxTaskStatus) IsCompleted() bool {
	return s == InboxTaskStatusDone || s == InboxTaskStatusNotDone
}

func ParseInboxTaskStatus(input string) (InboxTaskStatus, error) {
	s := InboxTaskStatus(strings.TrimSpace(strings.ToLower(input)))
	if !s.IsValid() {
		return "", InputValidationError{Field: "status", Msg: input}
	}
	return s, nil
}

// BigPlanStatus mirrors the inbox task lifecycle for big plans.
type BigPlanStatus string

const (
	BigPlanStatusNotStarted BigPlanStatus = "not-started"
	BigPlanStatusInProgress BigPlanStatus = "in-progress"
	BigPlanStatusBlocked    BigPlanStatus = "blocked"
	BigPlanStatusDone       BigPlanStatus = "done"
	BigPlanStatusNotDone    BigPlanStatus = "not-done"
)

func (s BigPlanStatus) IsValid() bool {
	switch s {
	case BigPlanStatusNotStarted, BigPlanStatusInProgress,
		BigPlanStatusBlocked, BigPlanStatusDone, BigPlanStatusNotDone:
		return true
	default:
		return false
	}
}

func (s BigPlanStatus) IsCompleted() bool {
	return s == BigPlanStatusDone || s == BigPlanStatusNotDone
}

func ParseBigPlanStatus(input string) (BigPlanStatus, error) {
	s := BigPlanStatus(strings.TrimSpace(strings.ToLower(input)))
	if !s.IsValid() {
		return "", InputValidationError{Field: "status", Msg: input}
	}
	return s, nil
}

// InboxTaskSource says where an inbox task came from. Only user and
// big-plan tasks accept direct edits of schedule fields; the rest are
// owned by the generation engine.
type InboxTaskSource string

const (
	InboxTaskSourceUser            InboxTaskSource = "user"
	InboxTaskSourceHabit           InboxTaskSource = "habit"
	InboxTaskSourceChore           InboxTaskSource = "chore"
	InboxTaskSourceMetric          InboxTaskSource = "metric"
	InboxTaskSourcePersonCatchUp   InboxTaskSource = "person-catch-up"
	InboxTaskSourcePersonBirthday  InboxTaskSource = "person-birthday"
	InboxTaskSourceBigPlan         InboxTaskSource = "big-plan"
	InboxTaskSourceSlackTask       InboxTaskSource = "slack-task"
	InboxTaskSourceEmailTask       InboxTaskSource = "email-task"
	InboxTaskSourceJournal         InboxTaskSource = "journal"
	InboxTaskSourceWorkingMemClean InboxTaskSource = "working-mem-cleanup"
	InboxTaskSourceTimePlan        InboxTaskSource = "time-plan"
)

// AllowsUserChanges reports whether schedule-derived fields may be edited
// directly.
func (s InboxTaskSource) AllowsUserChanges() bool {
	return s == InboxTaskSourceUser || s == InboxTaskSourceBigPlan
}

// HasSourceEntity reports whether tasks of this source carry a
// source_entity_ref back-reference.
func (s InboxTaskSource) HasSourceEntity() bool {
	return s != InboxTaskSourceUser
}

// TimePlanActivityKind is what an activity asks of its target.
type TimePlanActivityKind string

const (
	TimePlanActivityKindFinish       TimePlanActivityKind = "finish"
	TimePlanActivityKindMakeProgress TimePlanActivityKind = "make-progress"
)

func (k TimePlanActivityKind) IsValid() bool {
	return k == TimePlanActivityKindFinish || k == TimePlanActivityKindMakeProgress
}

type TimePlanActivityFeasibility string

const (
	FeasibilityMustDo     TimePlanActivityFeasibility = "must-do"
	FeasibilityNiceToHave TimePlanActivityFeasibility = "nice-to-have"
	FeasibilityNotNow     TimePlanActivityFeasibility = "not-now"
)

func (f TimePlanActivityFeasibility) IsValid() bool {
	switch f {
	case FeasibilityMustDo, FeasibilityNiceToHave, FeasibilityNotNow:
		return true
	default:
		return false
	}
}
