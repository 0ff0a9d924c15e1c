package domain

import "github.com/horia141/jupiter-sub011/internal/schedule"

// Habit is a recurring specification that spawns inbox tasks. Habits are
// always blacked out by vacations.
type Habit struct {
	Entity
	WorkspaceRef Ref
	ProjectRef   Ref
	Name         EntityName
	GenParams    RecurringTaskGenParams
	Suspended    bool
	StartDate    *schedule.ADate
	EndDate      *schedule.ADate
	// RepeatsInPeriodCount > 1 makes the scheduler emit that many
	// sub-tasks per bucket.
	RepeatsInPeriodCount *int
}

type NewHabitInput struct {
	WorkspaceRef         Ref
	ProjectRef           Ref
	Name                 EntityName
	GenParams            RecurringTaskGenParams
	StartDate            *schedule.ADate
	EndDate              *schedule.ADate
	RepeatsInPeriodCount *int
}

func NewHabit(stamp Stamp, in NewHabitInput) (Habit, error) {
	if err := in.GenParams.Validate(); err != nil {
		return Habit{}, err
	}
	if err := checkStartEnd(in.StartDate, in.EndDate); err != nil {
		return Habit{}, err
	}
	if in.RepeatsInPeriodCount != nil && *in.RepeatsInPeriodCount < 1 {
		return Habit{}, InputValidationError{Field: "repeats_in_period_count", Msg: "must be at least 1"}
	}
	return Habit{
		Entity:               newEntity(stamp, "Created", Frame{"name": in.Name.String()}),
		WorkspaceRef:         in.WorkspaceRef,
		ProjectRef:           in.ProjectRef,
		Name:                 in.Name,
		GenParams:            in.GenParams,
		StartDate:            in.StartDate,
		EndDate:              in.EndDate,
		RepeatsInPeriodCount: in.RepeatsInPeriodCount,
	}, nil
}

type HabitUpdate struct {
	Name                 *EntityName
	ProjectRef           *Ref
	GenParams            *RecurringTaskGenParams
	StartDate            *schedule.ADate
	EndDate              *schedule.ADate
	RepeatsInPeriodCount *int
}

func (h Habit) Update(stamp Stamp, upd HabitUpdate) (Habit, error) {
	if err := h.checkMutable("habit"); err != nil {
		return h, err
	}
	changed := false
	if upd.Name != nil && *upd.Name != h.Name {
		h.Name = *upd.Name
		changed = true
	}
	if upd.ProjectRef != nil && *upd.ProjectRef != h.ProjectRef {
		h.ProjectRef = *upd.ProjectRef
		changed = true
	}
	if upd.GenParams != nil && !upd.GenParams.Equal(h.GenParams) {
		if err := upd.GenParams.Validate(); err != nil {
			return h, err
		}
		h.GenParams = *upd.GenParams
		changed = true
	}
	if upd.StartDate != nil && !adatePtrEq(upd.StartDate, h.StartDate) {
		h.StartDate = upd.StartDate
		changed = true
	}
	if upd.EndDate != nil && !adatePtrEq(upd.EndDate, h.EndDate) {
		h.EndDate = upd.EndDate
		changed = true
	}
	if changed {
		if err := checkStartEnd(h.StartDate, h.EndDate); err != nil {
			return h, err
		}
	}
	if upd.RepeatsInPeriodCount != nil && !intPtrEq(upd.RepeatsInPeriodCount, h.RepeatsInPeriodCount) {
		if *upd.RepeatsInPeriodCount < 1 {
			return h, InputValidationError{Field: "repeats_in_period_count", Msg: "must be at least 1"}
		}
		h.RepeatsInPeriodCount = upd.RepeatsInPeriodCount
		changed = true
	}
	if !changed {
		return h, nil
	}
	h.Entity = h.bump(stamp, "Updated", Frame{})
	return h, nil
}

func (h Habit) Suspend(stamp Stamp) (Habit, error) {
	if err := h.checkMutable("habit"); err != nil {
		return h, err
	}
	if h.Suspended {
		return h, nil
	}
	h.Suspended = true
	h.Entity = h.bump(stamp, "Suspended", Frame{})
	return h, nil
}

func (h Habit) Unsuspend(stamp Stamp) (Habit, error) {
	if err := h.checkMutable("habit"); err != nil {
		return h, err
	}
	if !h.Suspended {
		return h, nil
	}
	h.Suspended = false
	h.Entity = h.bump(stamp, "Unsuspended", Frame{})
	return h, nil
}

func (h Habit) Archive(stamp Stamp, reason ArchiveReason) Habit {
	h.Entity = h.Entity.archive(stamp, reason)
	return h
}

// Repeats is the per-bucket repeat count, at least 1.
func (h Habit) Repeats() int {
	if h.RepeatsInPeriodCount == nil || *h.RepeatsInPeriodCount < 1 {
		return 1
	}
	return *h.RepeatsInPeriodCount
}

func checkStartEnd(start, end *schedule.ADate) error {
	if start != nil && end != nil && end.Before(*start) {
		return InputValidationError{Field: "end_date", Msg: "must not be before start date"}
	}
	return nil
}
