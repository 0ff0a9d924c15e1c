package domain

import "github.com/horia141/jupiter-sub011/internal/schedule"

// Workspace is the root that groups every other entity. The default
// project receives tasks that name no project of their own.
type Workspace struct {
	Entity
	Name              EntityName
	DefaultProjectRef Ref
	FeatureFlags      FeatureFlags

	// WorkingMemPeriod drives working-memory entry generation and the
	// matching cleanup tasks.
	WorkingMemPeriod schedule.Period
	// JournalPeriod drives journal-writing-task generation.
	JournalPeriod schedule.Period
}

func NewWorkspace(stamp Stamp, name EntityName) Workspace {
	return Workspace{
		Entity:           newEntity(stamp, "Created", Frame{"name": name.String()}),
		Name:             name,
		FeatureFlags:     DefaultFeatureFlags(),
		WorkingMemPeriod: schedule.PeriodWeekly,
		JournalPeriod:    schedule.PeriodWeekly,
	}
}

type WorkspaceUpdate struct {
	Name              *EntityName
	DefaultProjectRef *Ref
	WorkingMemPeriod  *schedule.Period
	JournalPeriod     *schedule.Period
}

func (w Workspace) Update(stamp Stamp, upd WorkspaceUpdate) (Workspace, error) {
	if err := w.checkMutable("workspace"); err != nil {
		return w, err
	}
	changed := false
	if upd.Name != nil && *upd.Name != w.Name {
		w.Name = *upd.Name
		changed = true
	}
	if upd.DefaultProjectRef != nil && *upd.DefaultProjectRef != w.DefaultProjectRef {
		w.DefaultProjectRef = *upd.DefaultProjectRef
		changed = true
	}
	if upd.WorkingMemPeriod != nil && *upd.WorkingMemPeriod != w.WorkingMemPeriod {
		if !upd.WorkingMemPeriod.IsValid() || *upd.WorkingMemPeriod == schedule.PeriodNone {
			return w, InputValidationError{Field: "working_mem_period", Msg: string(*upd.WorkingMemPeriod)}
		}
		w.WorkingMemPeriod = *upd.WorkingMemPeriod
		changed = true
	}
	if upd.JournalPeriod != nil && *upd.JournalPeriod != w.JournalPeriod {
		if !upd.JournalPeriod.IsValid() || *upd.JournalPeriod == schedule.PeriodNone {
			return w, InputValidationError{Field: "journal_period", Msg: string(*upd.JournalPeriod)}
		}
		w.JournalPeriod = *upd.JournalPeriod
		changed = true
	}
	if !changed {
		return w, nil
	}
	w.Entity = w.bump(stamp, "Updated", Frame{})
	return w, nil
}

func (w Workspace) ChangeFeature(stamp Stamp, feature Feature, enabled bool) (Workspace, error) {
	if err := w.checkMutable("workspace"); err != nil {
		return w, err
	}
	if !feature.IsValid() {
		return w, InputValidationError{Field: "feature", Msg: string(feature)}
	}
	if w.FeatureFlags.IsEnabled(feature) == enabled {
		return w, nil
	}
	w.FeatureFlags = w.FeatureFlags.With(feature, enabled)
	w.Entity = w.bump(stamp, "ChangedFeature", Frame{"feature": string(feature), "enabled": enabled})
	return w, nil
}

// User is the root account owning a workspace. Email is unique globally.
type User struct {
	Entity
	Email        EmailAddress
	Name         EntityName
	Timezone     Timezone
	FeatureFlags FeatureFlags
}

func NewUser(stamp Stamp, email EmailAddress, name EntityName, tz Timezone) User {
	return User{
		Entity:       newEntity(stamp, "Created", Frame{"email": email.String(), "name": name.String()}),
		Email:        email,
		Name:         name,
		Timezone:     tz,
		FeatureFlags: DefaultFeatureFlags(),
	}
}

type UserUpdate struct {
	Name     *EntityName
	Timezone *Timezone
}

func (u User) Update(stamp Stamp, upd UserUpdate) (User, error) {
	if err := u.checkMutable("user"); err != nil {
		return u, err
	}
	changed := false
	if upd.Name != nil && *upd.Name != u.Name {
		u.Name = *upd.Name
		changed = true
	}
	if upd.Timezone != nil && *upd.Timezone != u.Timezone {
		u.Timezone = *upd.Timezone
		changed = true
	}
	if !changed {
		return u, nil
	}
	u.Entity = u.bump(stamp, "Updated", Frame{})
	return u, nil
}
