package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/horia141/jupiter-sub011/internal/domain"
	"github.com/horia141/jupiter-sub011/internal/schedule"
	"github.com/horia141/jupiter-sub011/internal/storage"
)

// GenTargets names the generation sources, in run order.
var GenTargets = []string{
	"habits", "chores", "persons", "metrics", "push-tasks", "journals", "working-mem",
}

type GenArgs struct {
	// Today overrides the generation date, mostly for catch-up runs and
	// tests. Defaults to the current date in the user's timezone.
	Today *schedule.ADate
	// Targets narrows the run to the named sources. Empty means every
	// source whose feature is enabled.
	Targets []string
	// Periods narrows recurring sources to those generating on one of
	// these periods.
	Periods []schedule.Period
	// SourceRefs narrows recurring sources to these specific entities.
	SourceRefs []domain.Ref
	// EvenIfNotModified revisits past buckets of sources that have not
	// changed since the last run, instead of leaving their tasks as-is.
	EvenIfNotModified bool
}

// GenResult is everything one generation run did.
type GenResult struct {
	Targets  []string
	Created  []EntitySummary
	Updated  []EntitySummary
	Archived []EntitySummary
	Errors   []string
}

// genRun is the per-run state of the generation engine. A failing source
// records an error and the run moves on; one bad habit never starves the
// rest of the workspace.
type genRun struct {
	store *storage.Store
	stamp domain.Stamp
	ws    domain.Workspace
	user  domain.User
	today schedule.ADate
	// from is the date of the previous run, so missed buckets are
	// backfilled.
	from      schedule.ADate
	vacations []domain.Vacation
	result    *GenResult

	// nil filter maps mean "everything".
	targets map[string]bool
	periods map[schedule.Period]bool
	refs    map[domain.Ref]bool
	// lastGenAt is when the previous run committed; sources untouched
	// since then keep their past-bucket tasks unless forced.
	lastGenAt         *time.Time
	evenIfNotModified bool
}

// Generate materializes inbox tasks from every recurring source up to
// today. Runs are serialized per workspace and execute in a single
// transaction; the outcome lands in the generation log either way.
func (s *Service) Generate(ctx context.Context, args GenArgs) (GenResult, error) {
	stamp := s.stamp()

	targets, err := genTargetFilter(args.Targets)
	if err != nil {
		return GenResult{}, err
	}

	ws, err := loadWorkspace(ctx, s.Store())
	if err != nil {
		return GenResult{}, err
	}
	unlock := s.genLock(ws.Ref)
	defer unlock()

	var result GenResult
	var genDay schedule.ADate
	err = s.uow(ctx, func(store *storage.Store) error {
		ws, err := loadWorkspace(ctx, store)
		if err != nil {
			return err
		}
		user, err := loadUser(ctx, store)
		if err != nil {
			return err
		}
		today := todayFor(user)
		if args.Today != nil {
			today = *args.Today
		}
		genDay = today
		from := today
		last, err := store.GenLog.Latest(ctx, ws.Ref)
		if err != nil {
			return err
		}
		var lastGenAt *time.Time
		if last != nil {
			at := last.CreatedAt
			lastGenAt = &at
			if last.Today.Before(today) {
				from = last.Today
			}
		}
		vacations, err := store.Vacations.ListActive(ctx, ws.Ref)
		if err != nil {
			return err
		}

		g := &genRun{
			store:             store,
			stamp:             stamp,
			ws:                ws,
			user:              user,
			today:             today,
			from:              from,
			vacations:         vacations,
			result:            &result,
			targets:           targets,
			periods:           periodFilter(args.Periods),
			refs:              refFilter(args.SourceRefs),
			lastGenAt:         lastGenAt,
			evenIfNotModified: args.EvenIfNotModified,
		}
		if ws.FeatureFlags.IsEnabled(domain.FeatureHabits) {
			g.runTarget(ctx, "habits", g.habits)
		}
		if ws.FeatureFlags.IsEnabled(domain.FeatureChores) {
			g.runTarget(ctx, "chores", g.chores)
		}
		if ws.FeatureFlags.IsEnabled(domain.FeaturePersons) {
			g.runTarget(ctx, "persons", g.persons)
		}
		if ws.FeatureFlags.IsEnabled(domain.FeatureMetrics) {
			g.runTarget(ctx, "metrics", g.metrics)
		}
		if ws.FeatureFlags.IsEnabled(domain.FeatureSlackTasks) ||
			ws.FeatureFlags.IsEnabled(domain.FeatureEmailTasks) {
			g.runTarget(ctx, "push-tasks", g.pushTasks)
		}
		if ws.FeatureFlags.IsEnabled(domain.FeatureJournals) {
			g.runTarget(ctx, "journals", g.journals)
		}
		if ws.FeatureFlags.IsEnabled(domain.FeatureWorkingMem) {
			g.runTarget(ctx, "working-mem", g.workingMem)
		}

		_, err = store.GenLog.Append(ctx, domain.GenLogEntry{
			WorkspaceRef: ws.Ref,
			Source:       stamp.Source,
			Today:        today,
			GenTargets:   result.Targets,
			CreatedCnt:   len(result.Created),
			UpdatedCnt:   len(result.Updated),
			ArchivedCnt:  len(result.Archived),
			Errors:       result.Errors,
			CreatedAt:    stamp.Now,
		})
		return err
	})
	if err != nil {
		return GenResult{}, err
	}

	for _, summary := range result.Created {
		s.reportCreated(ctx, summary.Kind, summary.Ref, summary.Name)
	}
	for _, summary := range result.Updated {
		s.reportUpdated(ctx, summary.Kind, summary.Ref, summary.Name)
	}
	for _, summary := range result.Archived {
		s.reportArchived(ctx, summary.Kind, summary.Ref, summary.Name)
	}
	s.log.Info().
		Str("today", genDay.String()).
		Strs("targets", result.Targets).
		Int("created", len(result.Created)).
		Int("updated", len(result.Updated)).
		Int("archived", len(result.Archived)).
		Int("errors", len(result.Errors)).
		Msg("generation run finished")
	return result, nil
}

// GenHistory lists recent generation runs, newest first.
func (s *Service) GenHistory(ctx context.Context, limit int) ([]domain.GenLogEntry, error) {
	store := s.Store()
	ws, err := loadWorkspace(ctx, store)
	if err != nil {
		return nil, err
	}
	return store.GenLog.ListRecent(ctx, ws.Ref, limit)
}

func genTargetFilter(names []string) (map[string]bool, error) {
	if len(names) == 0 {
		return nil, nil
	}
	known := map[string]bool{}
	for _, name := range GenTargets {
		known[name] = true
	}
	out := map[string]bool{}
	for _, name := range names {
		if !known[name] {
			return nil, domain.InputValidationError{
				Field: "target", Msg: fmt.Sprintf("unknown generation target %q", name),
			}
		}
		out[name] = true
	}
	return out, nil
}

func periodFilter(periods []schedule.Period) map[schedule.Period]bool {
	if len(periods) == 0 {
		return nil
	}
	out := map[schedule.Period]bool{}
	for _, p := range periods {
		out[p] = true
	}
	return out
}

func refFilter(refs []domain.Ref) map[domain.Ref]bool {
	if len(refs) == 0 {
		return nil
	}
	out := map[domain.Ref]bool{}
	for _, r := range refs {
		out[r] = true
	}
	return out
}

func (g *genRun) runTarget(ctx context.Context, name string, fn func(ctx context.Context) error) {
	if g.targets != nil && !g.targets[name] {
		return
	}
	g.result.Targets = append(g.result.Targets, name)
	if err := fn(ctx); err != nil {
		g.fail(name, err)
	}
}

func (g *genRun) wantPeriod(p schedule.Period) bool {
	return g.periods == nil || g.periods[p]
}

func (g *genRun) wantRef(r domain.Ref) bool {
	return g.refs == nil || g.refs[r]
}

// unmodifiedSince reports whether a source predates the last run, so
// its past buckets can keep their tasks as-is.
func (g *genRun) unmodifiedSince(modifiedAt time.Time) bool {
	if g.evenIfNotModified || g.lastGenAt == nil {
		return false
	}
	return !modifiedAt.After(*g.lastGenAt)
}

func (g *genRun) fail(what string, err error) {
	g.result.Errors = append(g.result.Errors, fmt.Sprintf("%s: %v", what, err))
}

// buckets lists the bucket start dates to (re)generate for a source,
// clamped to its start/end window and to the backfill range.
func (g *genRun) buckets(p schedule.Period, start, end *schedule.ADate) []schedule.ADate {
	from := g.from
	if start != nil && start.After(from) {
		from = *start
	}
	to := g.today
	if end != nil && end.Before(to) {
		to = *end
	}
	return schedule.BucketsBetween(p, from, to)
}

// onVacation reports whether any vacation touches the bucket.
func (g *genRun) onVacation(start, end schedule.ADate) bool {
	for _, v := range g.vacations {
		if v.Covers(start, end) {
			return true
		}
	}
	return false
}

// genTaskSpec is one (source, bucket) slot the engine wants materialized
// or, when skip is set, vacated.
type genTaskSpec struct {
	source      domain.InboxTaskSource
	sourceRef   domain.Ref
	projectRef  domain.Ref
	name        domain.EntityName
	eisen       domain.Eisen
	difficulty  domain.Difficulty
	actionable  *schedule.ADate
	due         *schedule.ADate
	genRightNow schedule.ADate
	timeline    string
	repeatIndex *int
	skip        bool
	// stale marks a past bucket of a source unchanged since the last
	// run; an existing task in that slot is left untouched.
	stale bool
}

// upsert reconciles one slot against the task table. Completed and
// user-archived tasks are left alone; live ones are refreshed in place;
// skipped slots archive their live, uncompleted task.
func (g *genRun) upsert(ctx context.Context, spec genTaskSpec) error {
	existing, err := g.store.InboxTasks.FindGenerated(ctx, spec.source, spec.sourceRef, spec.timeline, spec.repeatIndex)
	if err != nil {
		return err
	}
	if spec.stale && existing != nil {
		return nil
	}

	if spec.skip {
		if existing == nil || existing.Archived || existing.Status.IsCompleted() {
			return nil
		}
		archived := existing.Archive(g.stamp, domain.ArchiveReasonReplacedBySkip)
		if _, err := g.store.InboxTasks.Save(ctx, archived); err != nil {
			return err
		}
		g.result.Archived = append(g.result.Archived, EntitySummary{
			Kind: domain.EntityKindInboxTask, Ref: existing.Ref, Name: existing.Name.String(),
		})
		return nil
	}

	if existing == nil {
		task := domain.NewGeneratedInboxTask(g.stamp, domain.NewGeneratedInboxTaskInput{
			WorkspaceRef:   g.ws.Ref,
			ProjectRef:     spec.projectRef,
			Name:           spec.name,
			Eisen:          spec.eisen,
			Difficulty:     spec.difficulty,
			Source:         spec.source,
			SourceRef:      spec.sourceRef,
			ActionableDate: spec.actionable,
			DueDate:        spec.due,
			GenRightNow:    spec.genRightNow,
			Timeline:       spec.timeline,
			RepeatIndex:    spec.repeatIndex,
		})
		created, err := g.store.InboxTasks.Create(ctx, task)
		if err != nil {
			return err
		}
		g.result.Created = append(g.result.Created, EntitySummary{
			Kind: domain.EntityKindInboxTask, Ref: created.Ref, Name: created.Name.String(),
		})
		return nil
	}
	if existing.Archived || existing.Status.IsCompleted() {
		return nil
	}
	refreshed := existing.GeneratedRefresh(g.stamp, domain.GeneratedRefreshInput{
		Name:           spec.name,
		ProjectRef:     spec.projectRef,
		Eisen:          spec.eisen,
		Difficulty:     spec.difficulty,
		ActionableDate: spec.actionable,
		DueDate:        spec.due,
		GenRightNow:    spec.genRightNow,
	})
	if len(refreshed.Events) == 0 {
		return nil
	}
	if _, err := g.store.InboxTasks.Save(ctx, refreshed); err != nil {
		return err
	}
	g.result.Updated = append(g.result.Updated, EntitySummary{
		Kind: domain.EntityKindInboxTask, Ref: refreshed.Ref, Name: refreshed.Name.String(),
	})
	return nil
}

func (g *genRun) habits(ctx context.Context) error {
	habits, err := g.store.Habits.ListActive(ctx, g.ws.Ref)
	if err != nil {
		return err
	}
	for _, h := range habits {
		if !g.wantRef(h.Ref) || !g.wantPeriod(h.GenParams.Period) {
			continue
		}
		if err := g.habit(ctx, h); err != nil {
			g.fail(fmt.Sprintf("habit %d", h.Ref), err)
		}
	}
	return nil
}

func (g *genRun) habit(ctx context.Context, h domain.Habit) error {
	total := h.Repeats()
	unmodified := g.unmodifiedSince(h.LastModifiedAt)
	for _, bucket := range g.buckets(h.GenParams.Period, h.StartDate, h.EndDate) {
		stale := unmodified && !schedule.SameBucket(h.GenParams.Period, bucket, g.today)
		for i := 1; i <= total; i++ {
			in := schedule.ComputeInput{
				Name:                h.Name.String(),
				Period:              h.GenParams.Period,
				Today:               bucket,
				ActionableFromDay:   h.GenParams.ActionableFromDay,
				ActionableFromMonth: h.GenParams.ActionableFromMonth,
				DueAtDay:            h.GenParams.DueAtDay,
				DueAtMonth:          h.GenParams.DueAtMonth,
				SkipRule:            h.GenParams.SkipRule,
			}
			var repeatIndex *int
			if total > 1 {
				idx := i
				repeatIndex = &idx
				in.RepeatIndex = &idx
				in.RepeatTotal = &total
			}
			sched := schedule.Compute(in)
			name, err := domain.NewEntityName(sched.FullName)
			if err != nil {
				return err
			}
			err = g.upsert(ctx, genTaskSpec{
				source:      domain.InboxTaskSourceHabit,
				sourceRef:   h.Ref,
				projectRef:  h.ProjectRef,
				name:        name,
				eisen:       h.GenParams.Eisen,
				difficulty:  h.GenParams.Difficulty,
				actionable:  &sched.ActionableDate,
				due:         &sched.DueDate,
				genRightNow: bucket,
				timeline:    sched.Timeline,
				repeatIndex: repeatIndex,
				skip:        sched.Skip || h.Suspended || g.onVacation(sched.BucketStart, sched.BucketEnd),
				stale:       stale,
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *genRun) chores(ctx context.Context) error {
	chores, err := g.store.Chores.ListActive(ctx, g.ws.Ref)
	if err != nil {
		return err
	}
	for _, ch := range chores {
		if !g.wantRef(ch.Ref) || !g.wantPeriod(ch.GenParams.Period) {
			continue
		}
		if err := g.chore(ctx, ch); err != nil {
			g.fail(fmt.Sprintf("chore %d", ch.Ref), err)
		}
	}
	return nil
}

func (g *genRun) chore(ctx context.Context, ch domain.Chore) error {
	unmodified := g.unmodifiedSince(ch.LastModifiedAt)
	for _, bucket := range g.buckets(ch.GenParams.Period, ch.StartDate, ch.EndDate) {
		sched := schedule.Compute(schedule.ComputeInput{
			Name:                ch.Name.String(),
			Period:              ch.GenParams.Period,
			Today:               bucket,
			ActionableFromDay:   ch.GenParams.ActionableFromDay,
			ActionableFromMonth: ch.GenParams.ActionableFromMonth,
			DueAtDay:            ch.GenParams.DueAtDay,
			DueAtMonth:          ch.GenParams.DueAtMonth,
			SkipRule:            ch.GenParams.SkipRule,
		})
		name, err := domain.NewEntityName(sched.FullName)
		if err != nil {
			return err
		}
		blackedOut := !ch.MustDo && g.onVacation(sched.BucketStart, sched.BucketEnd)
		err = g.upsert(ctx, genTaskSpec{
			source:      domain.InboxTaskSourceChore,
			sourceRef:   ch.Ref,
			projectRef:  ch.ProjectRef,
			name:        name,
			eisen:       ch.GenParams.Eisen,
			difficulty:  ch.GenParams.Difficulty,
			actionable:  &sched.ActionableDate,
			due:         &sched.DueDate,
			genRightNow: bucket,
			timeline:    sched.Timeline,
			skip:        sched.Skip || ch.Suspended || blackedOut,
			stale:       unmodified && !schedule.SameBucket(ch.GenParams.Period, bucket, g.today),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (g *genRun) metrics(ctx context.Context) error {
	metrics, err := g.store.Metrics.ListActive(ctx, g.ws.Ref)
	if err != nil {
		return err
	}
	for _, m := range metrics {
		if m.CollectionParams == nil {
			continue
		}
		if !g.wantRef(m.Ref) || !g.wantPeriod(m.CollectionParams.Period) {
			continue
		}
		if err := g.metric(ctx, m); err != nil {
			g.fail(fmt.Sprintf("metric %d", m.Ref), err)
		}
	}
	return nil
}

// metric collection tasks land in the default project; metrics have no
// project of their own.
func (g *genRun) metric(ctx context.Context, m domain.Metric) error {
	params := *m.CollectionParams
	unmodified := g.unmodifiedSince(m.LastModifiedAt)
	for _, bucket := range g.buckets(params.Period, nil, nil) {
		sched := schedule.Compute(schedule.ComputeInput{
			Name:                "Collect " + m.Name.String(),
			Period:              params.Period,
			Today:               bucket,
			ActionableFromDay:   params.ActionableFromDay,
			ActionableFromMonth: params.ActionableFromMonth,
			DueAtDay:            params.DueAtDay,
			DueAtMonth:          params.DueAtMonth,
			SkipRule:            params.SkipRule,
		})
		name, err := domain.NewEntityName(sched.FullName)
		if err != nil {
			return err
		}
		err = g.upsert(ctx, genTaskSpec{
			source:      domain.InboxTaskSourceMetric,
			sourceRef:   m.Ref,
			projectRef:  g.ws.DefaultProjectRef,
			name:        name,
			eisen:       params.Eisen,
			difficulty:  params.Difficulty,
			actionable:  &sched.ActionableDate,
			due:         &sched.DueDate,
			genRightNow: bucket,
			timeline:    sched.Timeline,
			skip:        sched.Skip,
			stale:       unmodified && !schedule.SameBucket(params.Period, bucket, g.today),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (g *genRun) persons(ctx context.Context) error {
	persons, err := g.store.Persons.ListActive(ctx, g.ws.Ref)
	if err != nil {
		return err
	}
	for _, p := range persons {
		if !g.wantRef(p.Ref) {
			continue
		}
		if p.CatchUpParams != nil && g.wantPeriod(p.CatchUpParams.Period) {
			if err := g.personCatchUp(ctx, p); err != nil {
				g.fail(fmt.Sprintf("person %d catch-up", p.Ref), err)
			}
		}
		if p.Birthday != nil && g.wantPeriod(schedule.PeriodYearly) {
			if err := g.personBirthday(ctx, p); err != nil {
				g.fail(fmt.Sprintf("person %d birthday", p.Ref), err)
			}
		}
	}
	return nil
}

func (g *genRun) personCatchUp(ctx context.Context, p domain.Person) error {
	params := *p.CatchUpParams
	unmodified := g.unmodifiedSince(p.LastModifiedAt)
	for _, bucket := range g.buckets(params.Period, nil, nil) {
		sched := schedule.Compute(schedule.ComputeInput{
			Name:                "Catch up with " + p.Name.String(),
			Period:              params.Period,
			Today:               bucket,
			ActionableFromDay:   params.ActionableFromDay,
			ActionableFromMonth: params.ActionableFromMonth,
			DueAtDay:            params.DueAtDay,
			DueAtMonth:          params.DueAtMonth,
			SkipRule:            params.SkipRule,
		})
		name, err := domain.NewEntityName(sched.FullName)
		if err != nil {
			return err
		}
		err = g.upsert(ctx, genTaskSpec{
			source:      domain.InboxTaskSourcePersonCatchUp,
			sourceRef:   p.Ref,
			projectRef:  g.ws.DefaultProjectRef,
			name:        name,
			eisen:       params.Eisen,
			difficulty:  params.Difficulty,
			actionable:  &sched.ActionableDate,
			due:         &sched.DueDate,
			genRightNow: bucket,
			timeline:    sched.Timeline,
			skip:        sched.Skip,
			stale:       unmodified && !schedule.SameBucket(params.Period, bucket, g.today),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// personBirthday emits one yearly task due on the birthday, actionable
// four weeks ahead. Birthdays ignore vacations.
func (g *genRun) personBirthday(ctx context.Context, p domain.Person) error {
	unmodified := g.unmodifiedSince(p.LastModifiedAt)
	for _, bucket := range g.buckets(schedule.PeriodYearly, nil, nil) {
		due := p.Birthday.InYear(bucket.Year())
		actionable := due.AddDays(-28).Clamp(bucket, due)
		timeline := schedule.InferTimelineForDate(schedule.PeriodYearly, due)
		name, err := domain.NewEntityName(fmt.Sprintf("Wish happy birthday to %s %s", p.Name, timeline))
		if err != nil {
			return err
		}
		err = g.upsert(ctx, genTaskSpec{
			source:      domain.InboxTaskSourcePersonBirthday,
			sourceRef:   p.Ref,
			projectRef:  g.ws.DefaultProjectRef,
			name:        name,
			eisen:       domain.EisenImportant,
			difficulty:  domain.DifficultyEasy,
			actionable:  &actionable,
			due:         &due,
			genRightNow: bucket,
			timeline:    timeline,
			stale:       unmodified && !schedule.SameBucket(schedule.PeriodYearly, bucket, g.today),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// pushTasks turns each ingested message into exactly one inbox task,
// keyed on the lifetime timeline.
func (g *genRun) pushTasks(ctx context.Context) error {
	tasks, err := g.store.PushTasks.ListActive(ctx, g.ws.Ref)
	if err != nil {
		return err
	}
	for _, p := range tasks {
		if !g.wantRef(p.Ref) {
			continue
		}
		feature := domain.FeatureSlackTasks
		if p.Kind == domain.PushTaskKindEmail {
			feature = domain.FeatureEmailTasks
		}
		if !g.ws.FeatureFlags.IsEnabled(feature) {
			continue
		}
		eisen := domain.DefaultEisen
		difficulty := domain.DefaultDifficulty
		if p.GenParams != nil {
			eisen = p.GenParams.Eisen
			difficulty = p.GenParams.Difficulty
		}
		today := g.today
		err := g.upsert(ctx, genTaskSpec{
			source:      p.InboxTaskSource(),
			sourceRef:   p.Ref,
			projectRef:  g.ws.DefaultProjectRef,
			name:        p.TaskName(),
			eisen:       eisen,
			difficulty:  difficulty,
			actionable:  &today,
			genRightNow: g.today,
			timeline:    schedule.TimelineLifetime,
		})
		if err != nil {
			g.fail(fmt.Sprintf("push task %d", p.Ref), err)
		}
	}
	return nil
}

// journals makes sure the current bucket has its journal entity and a
// task to write it.
func (g *genRun) journals(ctx context.Context) error {
	period := g.ws.JournalPeriod
	if !g.wantPeriod(period) {
		return nil
	}
	timeline := schedule.InferTimelineForDate(period, g.today)
	journal, err := g.store.Journals.FindByTimeline(ctx, g.ws.Ref, period, timeline)
	if err != nil {
		return err
	}
	if journal == nil {
		fresh, err := domain.NewJournal(g.stamp, g.ws.Ref, g.today, period)
		if err != nil {
			return err
		}
		created, err := g.store.Journals.Create(ctx, fresh)
		if err != nil {
			return err
		}
		journal = &created
		g.result.Created = append(g.result.Created, EntitySummary{
			Kind: domain.EntityKindJournal, Ref: created.Ref, Name: created.Name().String(),
		})
	}

	sched := schedule.Compute(schedule.ComputeInput{
		Name:   "Write journal entry",
		Period: period,
		Today:  g.today,
	})
	name, err := domain.NewEntityName(sched.FullName)
	if err != nil {
		return err
	}
	return g.upsert(ctx, genTaskSpec{
		source:      domain.InboxTaskSourceJournal,
		sourceRef:   journal.Ref,
		projectRef:  g.ws.DefaultProjectRef,
		name:        name,
		eisen:       domain.EisenImportant,
		difficulty:  domain.DifficultyMedium,
		actionable:  &sched.ActionableDate,
		due:         &sched.DueDate,
		genRightNow: g.today,
		timeline:    journal.Timeline,
	})
}

// workingMem opens the current bucket's scratchpad, emits its cleanup
// task and expires entries from past buckets. Cleanup tasks outlive
// their expired entry: the content still wants triaging.
func (g *genRun) workingMem(ctx context.Context) error {
	period := g.ws.WorkingMemPeriod
	if !g.wantPeriod(period) {
		return nil
	}
	timeline := schedule.InferTimelineForDate(period, g.today)
	entry, err := g.store.WorkingMem.FindByTimeline(ctx, g.ws.Ref, period, timeline)
	if err != nil {
		return err
	}
	if entry == nil {
		fresh, err := domain.NewWorkingMemEntry(g.stamp, g.ws.Ref, g.today, period)
		if err != nil {
			return err
		}
		created, err := g.store.WorkingMem.Create(ctx, fresh)
		if err != nil {
			return err
		}
		entry = &created
		g.result.Created = append(g.result.Created, EntitySummary{
			Kind: domain.EntityKindWorkingMemEntry, Ref: created.Ref, Name: created.Name().String(),
		})
	}

	sched := schedule.Compute(schedule.ComputeInput{
		Name:   "Clean up working memory",
		Period: period,
		Today:  g.today,
	})
	name, err := domain.NewEntityName(sched.FullName)
	if err != nil {
		return err
	}
	err = g.upsert(ctx, genTaskSpec{
		source:      domain.InboxTaskSourceWorkingMemClean,
		sourceRef:   entry.Ref,
		projectRef:  g.ws.DefaultProjectRef,
		name:        name,
		eisen:       domain.EisenImportant,
		difficulty:  domain.DifficultyEasy,
		actionable:  &sched.ActionableDate,
		due:         &sched.DueDate,
		genRightNow: g.today,
		timeline:    entry.Timeline,
	})
	if err != nil {
		return err
	}

	entries, err := g.store.WorkingMem.ListActive(ctx, g.ws.Ref)
	if err != nil {
		return err
	}
	for _, old := range entries {
		if old.Timeline == timeline && old.Period == period {
			continue
		}
		archived := old.Archive(g.stamp, domain.ArchiveReasonExpired)
		if _, err := g.store.WorkingMem.Save(ctx, archived); err != nil {
			return err
		}
		g.result.Archived = append(g.result.Archived, EntitySummary{
			Kind: domain.EntityKindWorkingMemEntry, Ref: old.Ref, Name: old.Name().String(),
		})
	}
	return nil
}
