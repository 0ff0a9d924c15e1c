package storage

import (
	"context"
	"database/sql"
)

// Store bundles every repository over a shared querier. Built over the
// raw DB for reads, or over a transaction inside a unit of work.
type Store struct {
	Workspaces     *WorkspaceRepo
	Users          *UserRepo
	Projects       *ProjectRepo
	InboxTasks     *InboxTaskRepo
	Habits         *HabitRepo
	Chores         *ChoreRepo
	Metrics        *MetricRepo
	MetricEntries  *MetricEntryRepo
	Persons        *PersonRepo
	Vacations      *VacationRepo
	BigPlans       *BigPlanRepo
	Journals       *JournalRepo
	WorkingMem     *WorkingMemRepo
	Notes          *NoteRepo
	TimePlans      *TimePlanRepo
	Activities     *TimePlanActivityRepo
	Streams        *ScheduleStreamRepo
	ScheduleEvents *ScheduleEventRepo
	PushTasks      *PushTaskRepo
	ScoreLog       *ScoreLogRepo
	ScoreStats     *ScoreStatsRepo
	GenLog         *GenLogRepo
}

func NewStore(q Querier) *Store {
	return &Store{
		Workspaces:     NewWorkspaceRepo(q),
		Users:          NewUserRepo(q),
		Projects:       NewProjectRepo(q),
		InboxTasks:     NewInboxTaskRepo(q),
		Habits:         NewHabitRepo(q),
		Chores:         NewChoreRepo(q),
		Metrics:        NewMetricRepo(q),
		MetricEntries:  NewMetricEntryRepo(q),
		Persons:        NewPersonRepo(q),
		Vacations:      NewVacationRepo(q),
		BigPlans:       NewBigPlanRepo(q),
		Journals:       NewJournalRepo(q),
		WorkingMem:     NewWorkingMemRepo(q),
		Notes:          NewNoteRepo(q),
		TimePlans:      NewTimePlanRepo(q),
		Activities:     NewTimePlanActivityRepo(q),
		Streams:        NewScheduleStreamRepo(q),
		ScheduleEvents: NewScheduleEventRepo(q),
		PushTasks:      NewPushTaskRepo(q),
		ScoreLog:       NewScoreLogRepo(q),
		ScoreStats:     NewScoreStatsRepo(q),
		GenLog:         NewGenLogRepo(q),
	}
}

// UnitOfWork runs fn with a Store bound to one transaction. All
// mutations of a use case commit or roll back together.
func UnitOfWork(ctx context.Context, db *sql.DB, fn func(store *Store) error) error {
	return WithTx(ctx, db, func(tx *sql.Tx) error {
		return fn(NewStore(tx))
	})
}
