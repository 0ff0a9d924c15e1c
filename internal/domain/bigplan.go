package domain

import "github.com/horia141/jupiter-sub011/internal/schedule"

// BigPlan is a larger goal composed of multiple inbox tasks.
type BigPlan struct {
	Entity
	WorkspaceRef   Ref
	ProjectRef     Ref
	Name           EntityName
	Status         BigPlanStatus
	ActionableDate *schedule.ADate
	DueDate        *schedule.ADate
}

func NewBigPlan(stamp Stamp, workspaceRef, projectRef Ref, name EntityName, actionable, due *schedule.ADate) BigPlan {
	return BigPlan{
		Entity:         newEntity(stamp, "Created", Frame{"name": name.String()}),
		WorkspaceRef:   workspaceRef,
		ProjectRef:     projectRef,
		Name:           name,
		Status:         BigPlanStatusNotStarted,
		ActionableDate: actionable,
		DueDate:        due,
	}
}

type BigPlanUpdate struct {
	Name           *EntityName
	ProjectRef     *Ref
	ActionableDate *schedule.ADate
	DueDate        *schedule.ADate
}

func (b BigPlan) Update(stamp Stamp, upd BigPlanUpdate) (BigPlan, error) {
	if err := b.checkMutable("big plan"); err != nil {
		return b, err
	}
	changed := false
	if upd.Name != nil && *upd.Name != b.Name {
		b.Name = *upd.Name
		changed = true
	}
	if upd.ProjectRef != nil && *upd.ProjectRef != b.ProjectRef {
		b.ProjectRef = *upd.ProjectRef
		changed = true
	}
	if upd.ActionableDate != nil && !adatePtrEq(upd.ActionableDate, b.ActionableDate) {
		b.ActionableDate = upd.ActionableDate
		changed = true
	}
	if upd.DueDate != nil && !adatePtrEq(upd.DueDate, b.DueDate) {
		b.DueDate = upd.DueDate
		changed = true
	}
	if !changed {
		return b, nil
	}
	b.Entity = b.bump(stamp, "Updated", Frame{})
	return b, nil
}

func (b BigPlan) ChangeStatus(stamp Stamp, status BigPlanStatus) (BigPlan, error) {
	if err := b.checkMutable("big plan"); err != nil {
		return b, err
	}
	if !status.IsValid() {
		return b, InputValidationError{Field: "status", Msg: string(status)}
	}
	if status == b.Status {
		return b, nil
	}
	old := b.Status
	b.Status = status
	b.Entity = b.bump(stamp, "ChangedStatus", Frame{"from": string(old), "to": string(status)})
	return b, nil
}

func (b BigPlan) Archive(stamp Stamp, reason ArchiveReason) BigPlan {
	b.Entity = b.Entity.archive(stamp, reason)
	return b
}
