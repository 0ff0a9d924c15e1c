package domain

import "github.com/horia141/jupiter-sub011/internal/schedule"

// TimePlan is a timeline-keyed planning window that existing tasks and
// big plans are attached to via activities.
type TimePlan struct {
	Entity
	WorkspaceRef Ref
	RightNow     schedule.ADate
	Period       schedule.Period
	Timeline     string
}

func NewTimePlan(stamp Stamp, workspaceRef Ref, rightNow schedule.ADate, period schedule.Period) (TimePlan, error) {
	if !period.IsValid() || period == schedule.PeriodNone {
		return TimePlan{}, InputValidationError{Field: "period", Msg: string(period)}
	}
	return TimePlan{
		Entity:       newEntity(stamp, "Created", Frame{"right_now": rightNow.String(), "period": string(period)}),
		WorkspaceRef: workspaceRef,
		RightNow:     rightNow,
		Period:       period,
		Timeline:     schedule.InferTimelineForDate(period, rightNow),
	}, nil
}

func (p TimePlan) Archive(stamp Stamp, reason ArchiveReason) TimePlan {
	p.Entity = p.Entity.archive(stamp, reason)
	return p
}

func (p TimePlan) Name() EntityName {
	return EntityName("Time plan " + p.Timeline)
}

// TimePlanActivityTarget says what kind of entity an activity points at.
type TimePlanActivityTarget string

const (
	ActivityTargetInboxTask TimePlanActivityTarget = "inbox-task"
	ActivityTargetBigPlan   TimePlanActivityTarget = "big-plan"
)

func (t TimePlanActivityTarget) IsValid() bool {
	return t == ActivityTargetInboxTask || t == ActivityTargetBigPlan
}

// TimePlanActivity attaches one target to a plan. A plan holds at most
// one activity per target; the engine enforces the uniqueness.
type TimePlanActivity struct {
	Entity
	TimePlanRef Ref
	Target      TimePlanActivityTarget
	TargetRef   Ref
	Kind        TimePlanActivityKind
	Feasibility TimePlanActivityFeasibility
}

func NewTimePlanActivity(stamp Stamp, planRef Ref, target TimePlanActivityTarget, targetRef Ref, kind TimePlanActivityKind, feasibility TimePlanActivityFeasibility) (TimePlanActivity, error) {
	if !target.IsValid() {
		return TimePlanActivity{}, InputValidationError{Field: "target", Msg: string(target)}
	}
	if !kind.IsValid() {
		return TimePlanActivity{}, InputValidationError{Field: "kind", Msg: string(kind)}
	}
	if !feasibility.IsValid() {
		return TimePlanActivity{}, InputValidationError{Field: "feasibility", Msg: string(feasibility)}
	}
	return TimePlanActivity{
		Entity:      newEntity(stamp, "Created", Frame{"target": string(target), "target_ref": int64(targetRef)}),
		TimePlanRef: planRef,
		Target:      target,
		TargetRef:   targetRef,
		Kind:        kind,
		Feasibility: feasibility,
	}, nil
}

type TimePlanActivityUpdate struct {
	Kind        *TimePlanActivityKind
	Feasibility *TimePlanActivityFeasibility
}

func (a TimePlanActivity) Update(stamp Stamp, upd TimePlanActivityUpdate) (TimePlanActivity, error) {
	if err := a.checkMutable("time plan activity"); err != nil {
		return a, err
	}
	changed := false
	if upd.Kind != nil && *upd.Kind != a.Kind {
		if !upd.Kind.IsValid() {
			return a, InputValidationError{Field: "kind", Msg: string(*upd.Kind)}
		}
		a.Kind = *upd.Kind
		changed = true
	}
	if upd.Feasibility != nil && *upd.Feasibility != a.Feasibility {
		if !upd.Feasibility.IsValid() {
			return a, InputValidationError{Field: "feasibility", Msg: string(*upd.Feasibility)}
		}
		a.Feasibility = *upd.Feasibility
		changed = true
	}
	if !changed {
		return a, nil
	}
	a.Entity = a.bump(stamp, "Updated", Frame{})
	return a, nil
}

func (a TimePlanActivity) Archive(stamp Stamp, reason ArchiveReason) TimePlanActivity {
	a.Entity = a.Entity.archive(stamp, reason)
	return a
}
