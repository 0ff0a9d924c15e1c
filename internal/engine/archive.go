package engine

import (
	"context"

	"github.com/horia141/jupiter-sub011/internal/domain"
	"github.com/horia141/jupiter-sub011/internal/schedule"
	"github.com/horia141/jupiter-sub011/internal/storage"
)

// cascade walks ownership edges, archiving children before the entity
// itself so a crash leaves no orphaned live children. Every archived
// entity emits exactly one Archive event; already-archived entities are
// skipped.
type cascade struct {
	store *storage.Store
	stamp domain.Stamp
	user  domain.User
	today schedule.ADate

	archived []EntitySummary
}

func newCascade(store *storage.Store, stamp domain.Stamp, user domain.User, today schedule.ADate) *cascade {
	return &cascade{store: store, stamp: stamp, user: user, today: today}
}

func (c *cascade) scoreCtx() scoreCtx {
	return scoreCtx{store: c.store, stamp: c.stamp, user: c.user, today: c.today}
}

func (c *cascade) mark(kind domain.EntityKind, ref domain.Ref, name string) {
	c.archived = append(c.archived, EntitySummary{Kind: kind, Ref: ref, Name: name})
}

// note archives the attached note of an entity, if any.
func (c *cascade) note(ctx context.Context, sourceKind domain.EntityKind, sourceRef domain.Ref) error {
	note, err := c.store.Notes.FindBySource(ctx, sourceKind, sourceRef)
	if err != nil {
		return err
	}
	if note == nil || note.Archived {
		return nil
	}
	archived := note.Archive(c.stamp, domain.ArchiveReasonSourceArchived)
	if _, err := c.store.Notes.Save(ctx, archived); err != nil {
		return err
	}
	c.mark(domain.EntityKindNote, note.Ref, "")
	return nil
}

// generatedTasks archives every generated inbox task produced by a
// source entity. Refs are only unique per entity table, so callers name
// the sources explicitly.
func (c *cascade) generatedTasks(ctx context.Context, sourceRef domain.Ref, sources ...domain.InboxTaskSource) error {
	for _, source := range sources {
		tasks, err := c.store.InboxTasks.ListBySource(ctx, source, sourceRef)
		if err != nil {
			return err
		}
		for _, t := range tasks {
			if err := c.inboxTask(ctx, t, domain.ArchiveReasonSourceArchived); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *cascade) inboxTask(ctx context.Context, t domain.InboxTask, reason domain.ArchiveReason) error {
	if t.Archived {
		return nil
	}
	archived := t.Archive(c.stamp, reason)
	if _, err := c.store.InboxTasks.Save(ctx, archived); err != nil {
		return err
	}
	c.mark(domain.EntityKindInboxTask, t.Ref, t.Name.String())
	if err := c.note(ctx, domain.EntityKindInboxTask, t.Ref); err != nil {
		return err
	}
	if t.Status.IsCompleted() {
		return reverseScore(ctx, c.scoreCtx(), domain.ScoreSourceInboxTask, t.Ref)
	}
	return nil
}

func (c *cascade) habit(ctx context.Context, h domain.Habit, reason domain.ArchiveReason) error {
	if h.Archived {
		return nil
	}
	if err := c.generatedTasks(ctx, h.Ref, domain.InboxTaskSourceHabit); err != nil {
		return err
	}
	if err := c.note(ctx, domain.EntityKindHabit, h.Ref); err != nil {
		return err
	}
	if _, err := c.store.Habits.Save(ctx, h.Archive(c.stamp, reason)); err != nil {
		return err
	}
	c.mark(domain.EntityKindHabit, h.Ref, h.Name.String())
	return nil
}

func (c *cascade) chore(ctx context.Context, ch domain.Chore, reason domain.ArchiveReason) error {
	if ch.Archived {
		return nil
	}
	if err := c.generatedTasks(ctx, ch.Ref, domain.InboxTaskSourceChore); err != nil {
		return err
	}
	if err := c.note(ctx, domain.EntityKindChore, ch.Ref); err != nil {
		return err
	}
	if _, err := c.store.Chores.Save(ctx, ch.Archive(c.stamp, reason)); err != nil {
		return err
	}
	c.mark(domain.EntityKindChore, ch.Ref, ch.Name.String())
	return nil
}

func (c *cascade) metric(ctx context.Context, m domain.Metric, reason domain.ArchiveReason) error {
	if m.Archived {
		return nil
	}
	entries, err := c.store.MetricEntries.ListByMetric(ctx, m.Ref)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.Archived {
			continue
		}
		if _, err := c.store.MetricEntries.Save(ctx, e.Archive(c.stamp, domain.ArchiveReasonParentArchived)); err != nil {
			return err
		}
		c.mark(domain.EntityKindMetricEntry, e.Ref, "")
	}
	if err := c.generatedTasks(ctx, m.Ref, domain.InboxTaskSourceMetric); err != nil {
		return err
	}
	if err := c.note(ctx, domain.EntityKindMetric, m.Ref); err != nil {
		return err
	}
	if _, err := c.store.Metrics.Save(ctx, m.Archive(c.stamp, reason)); err != nil {
		return err
	}
	c.mark(domain.EntityKindMetric, m.Ref, m.Name.String())
	return nil
}

func (c *cascade) person(ctx context.Context, p domain.Person, reason domain.ArchiveReason) error {
	if p.Archived {
		return nil
	}
	if err := c.generatedTasks(ctx, p.Ref, domain.InboxTaskSourcePersonCatchUp, domain.InboxTaskSourcePersonBirthday); err != nil {
		return err
	}
	if err := c.note(ctx, domain.EntityKindPerson, p.Ref); err != nil {
		return err
	}
	if _, err := c.store.Persons.Save(ctx, p.Archive(c.stamp, reason)); err != nil {
		return err
	}
	c.mark(domain.EntityKindPerson, p.Ref, p.Name.String())
	return nil
}

func (c *cascade) bigPlan(ctx context.Context, b domain.BigPlan, reason domain.ArchiveReason) error {
	if b.Archived {
		return nil
	}
	tasks, err := c.store.InboxTasks.ListByBigPlan(ctx, b.Ref)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		if err := c.inboxTask(ctx, t, domain.ArchiveReasonSourceArchived); err != nil {
			return err
		}
	}
	if err := c.note(ctx, domain.EntityKindBigPlan, b.Ref); err != nil {
		return err
	}
	if _, err := c.store.BigPlans.Save(ctx, b.Archive(c.stamp, reason)); err != nil {
		return err
	}
	c.mark(domain.EntityKindBigPlan, b.Ref, b.Name.String())
	if b.Status.IsCompleted() {
		return reverseScore(ctx, c.scoreCtx(), domain.ScoreSourceBigPlan, b.Ref)
	}
	return nil
}

// project archives the subtree rooted at p: child projects, then habits,
// chores, big plans and tasks homed in each project.
func (c *cascade) project(ctx context.Context, p domain.Project, reason domain.ArchiveReason) error {
	if p.Archived {
		return nil
	}
	children, err := c.store.Projects.ListChildren(ctx, p.Ref)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := c.project(ctx, child, domain.ArchiveReasonParentArchived); err != nil {
			return err
		}
	}

	habits, err := c.store.Habits.ListByProject(ctx, p.Ref)
	if err != nil {
		return err
	}
	for _, h := range habits {
		if err := c.habit(ctx, h, domain.ArchiveReasonParentArchived); err != nil {
			return err
		}
	}
	chores, err := c.store.Chores.ListByProject(ctx, p.Ref)
	if err != nil {
		return err
	}
	for _, ch := range chores {
		if err := c.chore(ctx, ch, domain.ArchiveReasonParentArchived); err != nil {
			return err
		}
	}
	bigPlans, err := c.store.BigPlans.ListByProject(ctx, p.Ref)
	if err != nil {
		return err
	}
	for _, b := range bigPlans {
		if err := c.bigPlan(ctx, b, domain.ArchiveReasonParentArchived); err != nil {
			return err
		}
	}
	tasks, err := c.store.InboxTasks.ListByProject(ctx, p.Ref)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		if err := c.inboxTask(ctx, t, domain.ArchiveReasonParentArchived); err != nil {
			return err
		}
	}

	if err := c.note(ctx, domain.EntityKindProject, p.Ref); err != nil {
		return err
	}
	if _, err := c.store.Projects.Save(ctx, p.Archive(c.stamp, reason)); err != nil {
		return err
	}
	c.mark(domain.EntityKindProject, p.Ref, p.Name.String())
	return nil
}

func (c *cascade) journal(ctx context.Context, j domain.Journal, reason domain.ArchiveReason) error {
	if j.Archived {
		return nil
	}
	if err := c.generatedTasks(ctx, j.Ref, domain.InboxTaskSourceJournal); err != nil {
		return err
	}
	if err := c.note(ctx, domain.EntityKindJournal, j.Ref); err != nil {
		return err
	}
	if _, err := c.store.Journals.Save(ctx, j.Archive(c.stamp, reason)); err != nil {
		return err
	}
	c.mark(domain.EntityKindJournal, j.Ref, j.Name().String())
	return nil
}

func (c *cascade) workingMem(ctx context.Context, w domain.WorkingMemEntry, reason domain.ArchiveReason) error {
	if w.Archived {
		return nil
	}
	if err := c.generatedTasks(ctx, w.Ref, domain.InboxTaskSourceWorkingMemClean); err != nil {
		return err
	}
	if _, err := c.store.WorkingMem.Save(ctx, w.Archive(c.stamp, reason)); err != nil {
		return err
	}
	c.mark(domain.EntityKindWorkingMemEntry, w.Ref, w.Name().String())
	return nil
}

func (c *cascade) timePlan(ctx context.Context, p domain.TimePlan, reason domain.ArchiveReason) error {
	if p.Archived {
		return nil
	}
	activities, err := c.store.Activities.ListByPlan(ctx, p.Ref)
	if err != nil {
		return err
	}
	for _, a := range activities {
		if a.Archived {
			continue
		}
		if _, err := c.store.Activities.Save(ctx, a.Archive(c.stamp, domain.ArchiveReasonParentArchived)); err != nil {
			return err
		}
		c.mark(domain.EntityKindTimePlanActivity, a.Ref, "")
	}
	if err := c.note(ctx, domain.EntityKindTimePlan, p.Ref); err != nil {
		return err
	}
	if _, err := c.store.TimePlans.Save(ctx, p.Archive(c.stamp, reason)); err != nil {
		return err
	}
	c.mark(domain.EntityKindTimePlan, p.Ref, p.Name().String())
	return nil
}

func (c *cascade) stream(ctx context.Context, st domain.ScheduleStream, reason domain.ArchiveReason) error {
	if st.Archived {
		return nil
	}
	events, err := c.store.ScheduleEvents.ListByStream(ctx, st.Ref)
	if err != nil {
		return err
	}
	for _, e := range events {
		if e.Archived {
			continue
		}
		if _, err := c.store.ScheduleEvents.Save(ctx, e.Archive(c.stamp, domain.ArchiveReasonParentArchived)); err != nil {
			return err
		}
		c.mark(domain.EntityKindScheduleEvent, e.Ref, e.Name.String())
	}
	if _, err := c.store.Streams.Save(ctx, st.Archive(c.stamp, reason)); err != nil {
		return err
	}
	c.mark(domain.EntityKindScheduleStream, st.Ref, st.Name.String())
	return nil
}

func (c *cascade) pushTask(ctx context.Context, p domain.PushTask, reason domain.ArchiveReason) error {
	if p.Archived {
		return nil
	}
	if err := c.generatedTasks(ctx, p.Ref, p.InboxTaskSource()); err != nil {
		return err
	}
	if _, err := c.store.PushTasks.Save(ctx, p.Archive(c.stamp, reason)); err != nil {
		return err
	}
	c.mark(domain.EntityKindPushTask, p.Ref, p.TaskName().String())
	return nil
}
