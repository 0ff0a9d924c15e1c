package domain

import "github.com/horia141/jupiter-sub011/internal/schedule"

// Chore is like a habit but has no repeats and may be marked must-do,
// which bypasses vacation blackouts.
type Chore struct {
	Entity
	WorkspaceRef Ref
	ProjectRef   Ref
	Name         EntityName
	GenParams    RecurringTaskGenParams
	Suspended    bool
	MustDo       bool
	StartDate    *schedule.ADate
	EndDate      *schedule.ADate
}

type NewChoreInput struct {
	WorkspaceRef Ref
	ProjectRef   Ref
	Name         EntityName
	GenParams    RecurringTaskGenParams
	MustDo       bool
	StartDate    *schedule.ADate
	EndDate      *schedule.ADate
}

func NewChore(stamp Stamp, in NewChoreInput) (Chore, error) {
	if err := in.GenParams.Validate(); err != nil {
		return Chore{}, err
	}
	if err := checkStartEnd(in.StartDate, in.EndDate); err != nil {
		return Chore{}, err
	}
	return Chore{
		Entity:       newEntity(stamp, "Created", Frame{"name": in.Name.String()}),
		WorkspaceRef: in.WorkspaceRef,
		ProjectRef:   in.ProjectRef,
		Name:         in.Name,
		GenParams:    in.GenParams,
		MustDo:       in.MustDo,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
	}, nil
}

type ChoreUpdate struct {
	Name       *EntityName
	ProjectRef *Ref
	GenParams  *RecurringTaskGenParams
	MustDo     *bool
	StartDate  *schedule.ADate
	EndDate    *schedule.ADate
}

func (c Chore) Update(stamp Stamp, upd ChoreUpdate) (Chore, error) {
	if err := c.checkMutable("chore"); err != nil {
		return c, err
	}
	changed := false
	if upd.Name != nil && *upd.Name != c.Name {
		c.Name = *upd.Name
		changed = true
	}
	if upd.ProjectRef != nil && *upd.ProjectRef != c.ProjectRef {
		c.ProjectRef = *upd.ProjectRef
		changed = true
	}
	if upd.GenParams != nil && !upd.GenParams.Equal(c.GenParams) {
		if err := upd.GenParams.Validate(); err != nil {
			return c, err
		}
		c.GenParams = *upd.GenParams
		changed = true
	}
	if upd.MustDo != nil && *upd.MustDo != c.MustDo {
		c.MustDo = *upd.MustDo
		changed = true
	}
	if upd.StartDate != nil && !adatePtrEq(upd.StartDate, c.StartDate) {
		c.StartDate = upd.StartDate
		changed = true
	}
	if upd.EndDate != nil && !adatePtrEq(upd.EndDate, c.EndDate) {
		c.EndDate = upd.EndDate
		changed = true
	}
	if changed {
		if err := checkStartEnd(c.StartDate, c.EndDate); err != nil {
			return c, err
		}
	}
	if !changed {
		return c, nil
	}
	c.Entity = c.bump(stamp, "Updated", Frame{})
	return c, nil
}

func (c Chore) Suspend(stamp Stamp) (Chore, error) {
	if err := c.checkMutable("chore"); err != nil {
		return c, err
	}
	if c.Suspended {
		return c, nil
	}
	c.Suspended = true
	c.Entity = c.bump(stamp, "Suspended", Frame{})
	return c, nil
}

func (c Chore) Unsuspend(stamp Stamp) (Chore, error) {
	if err := c.checkMutable("chore"); err != nil {
		return c, err
	}
	if !c.Suspended {
		return c, nil
	}
	c.Suspended = false
	c.Entity = c.bump(stamp, "Unsuspended", Frame{})
	return c, nil
}

func (c Chore) Archive(stamp Stamp, reason ArchiveReason) Chore {
	c.Entity = c.Entity.archive(stamp, reason)
	return c
}
