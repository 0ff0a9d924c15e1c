package domain

import "github.com/horia141/jupiter-sub011/internal/schedule"

// InboxTask is a concrete, dated, completable item. Generated tasks keep
// a back-reference to the recurring source that produced them and are
// keyed by (source_entity_ref, timeline, repeat_index).
type InboxTask struct {
	Entity
	WorkspaceRef Ref
	ProjectRef   Ref
	Name         EntityName
	Status       InboxTaskStatus
	Eisen        Eisen
	Difficulty   Difficulty

	Source          InboxTaskSource
	SourceEntityRef *Ref
	BigPlanRef      *Ref

	ActionableDate *schedule.ADate
	DueDate        *schedule.ADate

	// Generation bookkeeping; nil for user tasks.
	RecurringGenRightNow *schedule.ADate
	RecurringTimeline    *string
	RecurringRepeatIndex *int
}

type NewInboxTaskInput struct {
	WorkspaceRef   Ref
	ProjectRef     Ref
	Name           EntityName
	Eisen          Eisen
	Difficulty     Difficulty
	BigPlanRef     *Ref
	ActionableDate *schedule.ADate
	DueDate        *schedule.ADate
}

// NewInboxTask creates a user task (or a big-plan task when BigPlanRef is
// set).
func NewInboxTask(stamp Stamp, in NewInboxTaskInput) InboxTask {
	source := InboxTaskSourceUser
	var sourceRef *Ref
	if in.BigPlanRef != nil {
		source = InboxTaskSourceBigPlan
		sourceRef = in.BigPlanRef
	}
	return InboxTask{
		Entity:          newEntity(stamp, "Created", Frame{"name": in.Name.String()}),
		WorkspaceRef:    in.WorkspaceRef,
		ProjectRef:      in.ProjectRef,
		Name:            in.Name,
		Status:          InboxTaskStatusNotStarted,
		Eisen:           in.Eisen,
		Difficulty:      in.Difficulty,
		Source:          source,
		SourceEntityRef: sourceRef,
		BigPlanRef:      in.BigPlanRef,
		ActionableDate:  in.ActionableDate,
		DueDate:         in.DueDate,
	}
}

type NewGeneratedInboxTaskInput struct {
	WorkspaceRef   Ref
	ProjectRef     Ref
	Name           EntityName
	Eisen          Eisen
	Difficulty     Difficulty
	Source         InboxTaskSource
	SourceRef      Ref
	ActionableDate *schedule.ADate
	DueDate        *schedule.ADate
	GenRightNow    schedule.ADate
	Timeline       string
	RepeatIndex    *int
}

// NewGeneratedInboxTask creates a task on behalf of the generation
// engine.
func NewGeneratedInboxTask(stamp Stamp, in NewGeneratedInboxTaskInput) InboxTask {
	return InboxTask{
		Entity:               newEntity(stamp, "Generated", Frame{"name": in.Name.String(), "timeline": in.Timeline}),
		WorkspaceRef:         in.WorkspaceRef,
		ProjectRef:           in.ProjectRef,
		Name:                 in.Name,
		Status:               InboxTaskStatusNotStarted,
		Eisen:                in.Eisen,
		Difficulty:           in.Difficulty,
		Source:               in.Source,
		SourceEntityRef:      &in.SourceRef,
		ActionableDate:       in.ActionableDate,
		DueDate:              in.DueDate,
		RecurringGenRightNow: &in.GenRightNow,
		RecurringTimeline:    &in.Timeline,
		RecurringRepeatIndex: in.RepeatIndex,
	}
}

type InboxTaskUpdate struct {
	Name           *EntityName
	Eisen          *Eisen
	Difficulty     *Difficulty
	ActionableDate *schedule.ADate
	DueDate        *schedule.ADate
	ClearDates     bool
}

// Update edits user-ownable fields. Schedule-derived fields on generated
// tasks refuse direct edits.
func (t InboxTask) Update(stamp Stamp, upd InboxTaskUpdate) (InboxTask, error) {
	if err := t.checkMutable("inbox task"); err != nil {
		return t, err
	}
	touchesSchedule := upd.Name != nil || upd.Eisen != nil || upd.Difficulty != nil ||
		upd.ActionableDate != nil || upd.DueDate != nil || upd.ClearDates
	if touchesSchedule && !t.Source.AllowsUserChanges() {
		return t, CannotModifyError{Kind: "inbox task", Ref: t.Ref, What: "fields of a generated task are derived from its schedule"}
	}
	changed := false
	if upd.Name != nil && *upd.Name != t.Name {
		t.Name = *upd.Name
		changed = true
	}
	if upd.Eisen != nil && *upd.Eisen != t.Eisen {
		t.Eisen = *upd.Eisen
		changed = true
	}
	if upd.Difficulty != nil && *upd.Difficulty != t.Difficulty {
		t.Difficulty = *upd.Difficulty
		changed = true
	}
	if upd.ClearDates {
		if t.ActionableDate != nil || t.DueDate != nil {
			t.ActionableDate = nil
			t.DueDate = nil
			changed = true
		}
	} else {
		if upd.ActionableDate != nil && !adatePtrEq(upd.ActionableDate, t.ActionableDate) {
			t.ActionableDate = upd.ActionableDate
			changed = true
		}
		if upd.DueDate != nil && !adatePtrEq(upd.DueDate, t.DueDate) {
			t.DueDate = upd.DueDate
			changed = true
		}
	}
	if !changed {
		return t, nil
	}
	t.Entity = t.bump(stamp, "Updated", Frame{})
	return t, nil
}

// ChangeStatus moves the task through its lifecycle. Allowed for
// generated tasks too: completion is always user-owned.
func (t InboxTask) ChangeStatus(stamp Stamp, status InboxTaskStatus) (InboxTask, error) {
	if err := t.checkMutable("inbox task"); err != nil {
		return t, err
	}
	if !status.IsValid() {
		return t, InputValidationError{Field: "status", Msg: string(status)}
	}
	if status == t.Status {
		return t, nil
	}
	old := t.Status
	t.Status = status
	t.Entity = t.bump(stamp, "ChangedStatus", Frame{"from": string(old), "to": string(status)})
	return t, nil
}

// ChangeProject moves the task between projects.
func (t InboxTask) ChangeProject(stamp Stamp, projectRef Ref) (InboxTask, error) {
	if err := t.checkMutable("inbox task"); err != nil {
		return t, err
	}
	if !t.Source.AllowsUserChanges() {
		return t, CannotModifyError{Kind: "inbox task", Ref: t.Ref, What: "a generated task follows its source's project"}
	}
	if projectRef == t.ProjectRef {
		return t, nil
	}
	t.ProjectRef = projectRef
	t.Entity = t.bump(stamp, "ChangedProject", Frame{"project": int64(projectRef)})
	return t, nil
}

type GeneratedRefreshInput struct {
	Name           EntityName
	ProjectRef     Ref
	Eisen          Eisen
	Difficulty     Difficulty
	ActionableDate *schedule.ADate
	DueDate        *schedule.ADate
	GenRightNow    schedule.ADate
}

// GeneratedRefresh re-derives a generated task from a fresh schedule. A
// refresh that changes nothing is a no-op and bumps nothing.
func (t InboxTask) GeneratedRefresh(stamp Stamp, in GeneratedRefreshInput) InboxTask {
	changed := false
	if in.Name != t.Name {
		t.Name = in.Name
		changed = true
	}
	if in.ProjectRef != t.ProjectRef {
		t.ProjectRef = in.ProjectRef
		changed = true
	}
	if in.Eisen != t.Eisen {
		t.Eisen = in.Eisen
		changed = true
	}
	if in.Difficulty != t.Difficulty {
		t.Difficulty = in.Difficulty
		changed = true
	}
	if !adatePtrEq(in.ActionableDate, t.ActionableDate) {
		t.ActionableDate = in.ActionableDate
		changed = true
	}
	if !adatePtrEq(in.DueDate, t.DueDate) {
		t.DueDate = in.DueDate
		changed = true
	}
	if !changed {
		return t
	}
	now := in.GenRightNow
	t.RecurringGenRightNow = &now
	t.Entity = t.bump(stamp, "GeneratedRefresh", Frame{"name": in.Name.String()})
	return t
}

func (t InboxTask) Archive(stamp Stamp, reason ArchiveReason) InboxTask {
	t.Entity = t.Entity.archive(stamp, reason)
	return t
}

func (t InboxTask) Restore(stamp Stamp) InboxTask {
	t.Entity = t.Entity.restore(stamp)
	return t
}
