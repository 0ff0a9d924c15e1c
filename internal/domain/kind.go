package domain

// EntityKind names an entity type for notes, event tables, progress
// summaries and the search index.
type EntityKind string

const (
	EntityKindWorkspace        EntityKind = "workspace"
	EntityKindUser             EntityKind = "user"
	EntityKindProject          EntityKind = "project"
	EntityKindInboxTask        EntityKind = "inbox-task"
	EntityKindHabit            EntityKind = "habit"
	EntityKindChore            EntityKind = "chore"
	EntityKindBigPlan          EntityKind = "big-plan"
	EntityKindMetric           EntityKind = "metric"
	EntityKindMetricEntry      EntityKind = "metric-entry"
	EntityKindPerson           EntityKind = "person"
	EntityKindVacation         EntityKind = "vacation"
	EntityKindJournal          EntityKind = "journal"
	EntityKindTimePlan         EntityKind = "time-plan"
	EntityKindTimePlanActivity EntityKind = "time-plan-activity"
	EntityKindWorkingMemEntry  EntityKind = "working-mem-entry"
	EntityKindNote             EntityKind = "note"
	EntityKindScheduleStream   EntityKind = "schedule-stream"
	EntityKindScheduleEvent    EntityKind = "schedule-event"
	EntityKindPushTask         EntityKind = "push-task"
	EntityKindScoreLogEntry    EntityKind = "score-log-entry"
)
