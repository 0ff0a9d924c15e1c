package engine

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horia141/jupiter-sub011/internal/domain"
	"github.com/horia141/jupiter-sub011/internal/logging"
	"github.com/horia141/jupiter-sub011/internal/schedule"
	"github.com/horia141/jupiter-sub011/internal/storage"
)

func newTestService(t *testing.T) (*Service, InitResult) {
	t.Helper()
	ctx := context.Background()

	db, err := storage.Open(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svc := New(db, logging.Nop())
	boot, err := svc.Init(ctx, InitArgs{
		UserEmail:     testEmail(t, "ana@example.com"),
		UserName:      testName(t, "Ana"),
		Timezone:      domain.TimezoneUTC,
		WorkspaceName: testName(t, "Personal"),
	})
	require.NoError(t, err)
	return svc, boot
}

func testName(t *testing.T, raw string) domain.EntityName {
	t.Helper()
	name, err := domain.NewEntityName(raw)
	require.NoError(t, err)
	return name
}

func testEmail(t *testing.T, raw string) domain.EmailAddress {
	t.Helper()
	email, err := domain.NewEmailAddress(raw)
	require.NoError(t, err)
	return email
}

// disableAmbientGen turns off the targets that fire on every run so
// generation tests can assert exact result sets.
func disableAmbientGen(t *testing.T, svc *Service) {
	t.Helper()
	ctx := context.Background()
	_, err := svc.SetFeature(ctx, domain.FeatureJournals, false)
	require.NoError(t, err)
	_, err = svc.SetFeature(ctx, domain.FeatureWorkingMem, false)
	require.NoError(t, err)
}

func TestInitBootstrapsWorkspace(t *testing.T) {
	svc, boot := newTestService(t)
	ctx := context.Background()

	assert.Equal(t, "Work", boot.Root.Name.String())
	assert.True(t, boot.Root.IsRoot())
	assert.Equal(t, "Inbox", boot.Default.Name.String())
	require.NotNil(t, boot.Default.ParentProjectRef)
	assert.Equal(t, boot.Root.Ref, *boot.Default.ParentProjectRef)
	assert.Equal(t, boot.Default.Ref, boot.Workspace.DefaultProjectRef)
	assert.Equal(t, schedule.PeriodWeekly, boot.Workspace.JournalPeriod)

	_, err := svc.Init(ctx, InitArgs{
		UserEmail:     testEmail(t, "other@example.com"),
		UserName:      testName(t, "Other"),
		Timezone:      domain.TimezoneUTC,
		WorkspaceName: testName(t, "Second"),
	})
	var exists domain.AlreadyExistsError
	require.ErrorAs(t, err, &exists)
	assert.Equal(t, "workspace", exists.Kind)
}

func TestFeatureGate(t *testing.T) {
	svc, boot := newTestService(t)
	ctx := context.Background()

	_, err := svc.SetFeature(ctx, domain.FeatureHabits, false)
	require.NoError(t, err)

	_, err = svc.CreateHabit(ctx, CreateHabitArgs{
		Name:       testName(t, "Meditate"),
		ProjectRef: boot.Root.Ref,
		GenParams:  domain.RecurringTaskGenParams{Period: schedule.PeriodDaily},
	})
	var unavailable domain.FeatureUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, domain.FeatureHabits, unavailable.Feature)

	_, err = svc.IngestPushTask(ctx, IngestPushTaskArgs{
		Kind:   domain.PushTaskKindSlack,
		Sender: "maria",
		Body:   "ping",
	})
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, domain.FeatureSlackTasks, unavailable.Feature)
}

func TestGenerateDailyHabit(t *testing.T) {
	svc, boot := newTestService(t)
	ctx := context.Background()
	disableAmbientGen(t, svc)

	habit, err := svc.CreateHabit(ctx, CreateHabitArgs{
		Name:       testName(t, "Meditate"),
		ProjectRef: boot.Root.Ref,
		GenParams:  domain.RecurringTaskGenParams{Period: schedule.PeriodDaily},
	})
	require.NoError(t, err)

	today := schedule.NewADate(2024, time.March, 15)
	res, err := svc.Generate(ctx, GenArgs{Today: &today})
	require.NoError(t, err)
	require.Len(t, res.Created, 1)
	assert.Equal(t, "Meditate 2024,Q1,Mar,W11,D5", res.Created[0].Name)
	assert.Empty(t, res.Errors)

	tasks, err := svc.Store().InboxTasks.ListBySource(ctx, domain.InboxTaskSourceHabit, habit.Ref)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, boot.Root.Ref, tasks[0].ProjectRef)
	assert.Equal(t, domain.InboxTaskStatusNotStarted, tasks[0].Status)
	require.NotNil(t, tasks[0].ActionableDate)
	assert.True(t, tasks[0].ActionableDate.Equal(today))
	require.NotNil(t, tasks[0].DueDate)
	assert.True(t, tasks[0].DueDate.Equal(today))

	// Same day again: the slot already has its task.
	res, err = svc.Generate(ctx, GenArgs{Today: &today})
	require.NoError(t, err)
	assert.Empty(t, res.Created)
	assert.Empty(t, res.Updated)
	assert.Empty(t, res.Archived)
}

func TestGenerateHabitRepeats(t *testing.T) {
	svc, boot := newTestService(t)
	ctx := context.Background()
	disableAmbientGen(t, svc)

	repeats := 3
	habit, err := svc.CreateHabit(ctx, CreateHabitArgs{
		Name:                 testName(t, "Gym session"),
		ProjectRef:           boot.Root.Ref,
		GenParams:            domain.RecurringTaskGenParams{Period: schedule.PeriodWeekly},
		RepeatsInPeriodCount: &repeats,
	})
	require.NoError(t, err)

	today := schedule.NewADate(2024, time.March, 15)
	_, err = svc.Generate(ctx, GenArgs{Today: &today})
	require.NoError(t, err)

	tasks, err := svc.Store().InboxTasks.ListBySource(ctx, domain.InboxTaskSourceHabit, habit.Ref)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	names := []string{tasks[0].Name.String(), tasks[1].Name.String(), tasks[2].Name.String()}
	assert.ElementsMatch(t, []string{
		"Gym session 2024,Q1,Mar,W11 [1/3]",
		"Gym session 2024,Q1,Mar,W11 [2/3]",
		"Gym session 2024,Q1,Mar,W11 [3/3]",
	}, names)
}

func TestGenerateVacationBlackout(t *testing.T) {
	svc, boot := newTestService(t)
	ctx := context.Background()
	disableAmbientGen(t, svc)

	habit, err := svc.CreateHabit(ctx, CreateHabitArgs{
		Name:       testName(t, "Meditate"),
		ProjectRef: boot.Root.Ref,
		GenParams:  domain.RecurringTaskGenParams{Period: schedule.PeriodDaily},
	})
	require.NoError(t, err)
	chore, err := svc.CreateChore(ctx, CreateChoreArgs{
		Name:       testName(t, "Water plants"),
		ProjectRef: boot.Root.Ref,
		GenParams:  domain.RecurringTaskGenParams{Period: schedule.PeriodDaily},
	})
	require.NoError(t, err)
	mustDo, err := svc.CreateChore(ctx, CreateChoreArgs{
		Name:       testName(t, "Take medication"),
		ProjectRef: boot.Root.Ref,
		GenParams:  domain.RecurringTaskGenParams{Period: schedule.PeriodDaily},
		MustDo:     true,
	})
	require.NoError(t, err)

	today := schedule.NewADate(2024, time.March, 15)
	res, err := svc.Generate(ctx, GenArgs{Today: &today})
	require.NoError(t, err)
	assert.Len(t, res.Created, 3)

	_, err = svc.CreateVacation(ctx, CreateVacationArgs{
		Name:      testName(t, "Ski trip"),
		StartDate: schedule.NewADate(2024, time.March, 10),
		EndDate:   schedule.NewADate(2024, time.March, 20),
	})
	require.NoError(t, err)

	// Re-running inside the vacation vacates the blacked-out slots.
	res, err = svc.Generate(ctx, GenArgs{Today: &today})
	require.NoError(t, err)
	assert.Empty(t, res.Created)
	assert.Len(t, res.Archived, 2)

	store := svc.Store()
	habitTasks, err := store.InboxTasks.ListBySource(ctx, domain.InboxTaskSourceHabit, habit.Ref)
	require.NoError(t, err)
	assert.Empty(t, habitTasks)
	choreTasks, err := store.InboxTasks.ListBySource(ctx, domain.InboxTaskSourceChore, chore.Ref)
	require.NoError(t, err)
	assert.Empty(t, choreTasks)
	mustDoTasks, err := store.InboxTasks.ListBySource(ctx, domain.InboxTaskSourceChore, mustDo.Ref)
	require.NoError(t, err)
	assert.Len(t, mustDoTasks, 1)

	// A habit created mid-vacation never gets a task for the blacked-out
	// bucket in the first place.
	late, err := svc.CreateHabit(ctx, CreateHabitArgs{
		Name:       testName(t, "Stretch"),
		ProjectRef: boot.Root.Ref,
		GenParams:  domain.RecurringTaskGenParams{Period: schedule.PeriodDaily},
	})
	require.NoError(t, err)
	_, err = svc.Generate(ctx, GenArgs{Today: &today})
	require.NoError(t, err)
	lateTasks, err := store.InboxTasks.ListBySource(ctx, domain.InboxTaskSourceHabit, late.Ref)
	require.NoError(t, err)
	assert.Empty(t, lateTasks)
}

func TestGenerateMetricCollection(t *testing.T) {
	svc, boot := newTestService(t)
	ctx := context.Background()
	disableAmbientGen(t, svc)

	metric, err := svc.CreateMetric(ctx, CreateMetricArgs{
		Name:             testName(t, "Weight"),
		CollectionParams: &domain.RecurringTaskGenParams{Period: schedule.PeriodWeekly},
	})
	require.NoError(t, err)

	today := schedule.NewADate(2024, time.March, 15)
	_, err = svc.Generate(ctx, GenArgs{Today: &today})
	require.NoError(t, err)

	tasks, err := svc.Store().InboxTasks.ListBySource(ctx, domain.InboxTaskSourceMetric, metric.Ref)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Collect Weight 2024,Q1,Mar,W11", tasks[0].Name.String())
	assert.Equal(t, boot.Default.Ref, tasks[0].ProjectRef)
}

func TestGeneratePersonTasks(t *testing.T) {
	svc, boot := newTestService(t)
	ctx := context.Background()
	disableAmbientGen(t, svc)

	birthday, err := domain.ParseBirthday("14 Mar")
	require.NoError(t, err)
	person, err := svc.CreatePerson(ctx, CreatePersonArgs{
		Name:          testName(t, "John Doe"),
		Relationship:  domain.RelationshipFriend,
		CatchUpParams: &domain.RecurringTaskGenParams{Period: schedule.PeriodMonthly},
		Birthday:      &birthday,
	})
	require.NoError(t, err)

	today := schedule.NewADate(2024, time.March, 15)
	_, err = svc.Generate(ctx, GenArgs{Today: &today})
	require.NoError(t, err)

	store := svc.Store()
	catchUps, err := store.InboxTasks.ListBySource(ctx, domain.InboxTaskSourcePersonCatchUp, person.Ref)
	require.NoError(t, err)
	require.Len(t, catchUps, 1)
	assert.Equal(t, "Catch up with John Doe 2024,Q1,Mar", catchUps[0].Name.String())
	assert.Equal(t, boot.Default.Ref, catchUps[0].ProjectRef)

	birthdays, err := store.InboxTasks.ListBySource(ctx, domain.InboxTaskSourcePersonBirthday, person.Ref)
	require.NoError(t, err)
	require.Len(t, birthdays, 1)
	assert.Equal(t, "Wish happy birthday to John Doe 2024", birthdays[0].Name.String())
	require.NotNil(t, birthdays[0].DueDate)
	assert.True(t, birthdays[0].DueDate.Equal(schedule.NewADate(2024, time.March, 14)))
	require.NotNil(t, birthdays[0].ActionableDate)
	assert.True(t, birthdays[0].ActionableDate.Equal(schedule.NewADate(2024, time.February, 15)))
}

func TestGeneratePushTask(t *testing.T) {
	svc, boot := newTestService(t)
	ctx := context.Background()
	disableAmbientGen(t, svc)
	_, err := svc.SetFeature(ctx, domain.FeatureSlackTasks, true)
	require.NoError(t, err)

	channel := "#eng"
	push, err := svc.IngestPushTask(ctx, IngestPushTaskArgs{
		Kind:    domain.PushTaskKindSlack,
		Sender:  "maria",
		Channel: &channel,
		Body:    "can you look at the deploy?",
	})
	require.NoError(t, err)

	today := schedule.NewADate(2024, time.March, 15)
	res, err := svc.Generate(ctx, GenArgs{Today: &today})
	require.NoError(t, err)
	require.Len(t, res.Created, 1)
	assert.Equal(t, "Respond to maria on #eng", res.Created[0].Name)

	tasks, err := svc.Store().InboxTasks.ListBySource(ctx, domain.InboxTaskSourceSlackTask, push.Ref)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, boot.Default.Ref, tasks[0].ProjectRef)
	require.NotNil(t, tasks[0].ActionableDate)
	assert.True(t, tasks[0].ActionableDate.Equal(today))
	assert.Nil(t, tasks[0].DueDate)

	// One message, one task, no matter how often generation runs.
	res, err = svc.Generate(ctx, GenArgs{Today: &today})
	require.NoError(t, err)
	assert.Empty(t, res.Created)
}

func TestGenerateJournalAndWorkingMem(t *testing.T) {
	svc, boot := newTestService(t)
	ctx := context.Background()

	today := schedule.NewADate(2024, time.March, 15)
	res, err := svc.Generate(ctx, GenArgs{Today: &today})
	require.NoError(t, err)

	var names []string
	for _, summary := range res.Created {
		names = append(names, summary.Name)
	}
	assert.ElementsMatch(t, []string{
		"Journal 2024,Q1,Mar,W11",
		"Write journal entry 2024,Q1,Mar,W11",
		"Working memory 2024,Q1,Mar,W11",
		"Clean up working memory 2024,Q1,Mar,W11",
	}, names)

	store := svc.Store()
	entry, err := store.WorkingMem.FindByTimeline(ctx, boot.Workspace.Ref, schedule.PeriodWeekly, "2024,Q1,Mar,W11")
	require.NoError(t, err)
	require.NotNil(t, entry)

	// A later bucket expires the old entry but keeps its cleanup task.
	later := schedule.NewADate(2024, time.March, 25)
	res, err = svc.Generate(ctx, GenArgs{Today: &later})
	require.NoError(t, err)

	expired := false
	for _, summary := range res.Archived {
		if summary.Kind == domain.EntityKindWorkingMemEntry && summary.Ref == entry.Ref {
			expired = true
		}
	}
	assert.True(t, expired, "old working mem entry should expire")

	old, err := store.WorkingMem.Get(ctx, entry.Ref)
	require.NoError(t, err)
	require.NotNil(t, old)
	assert.True(t, old.Archived)
	assert.Equal(t, domain.ArchiveReasonExpired, old.ArchivedReason)

	cleanups, err := store.InboxTasks.ListBySource(ctx, domain.InboxTaskSourceWorkingMemClean, entry.Ref)
	require.NoError(t, err)
	assert.Len(t, cleanups, 1, "cleanup task outlives the expired entry")
}

func TestCreateJournalOncePerBucket(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	friday := schedule.NewADate(2024, time.March, 15)
	journal, err := svc.CreateJournal(ctx, CreateJournalArgs{RightNow: &friday})
	require.NoError(t, err)
	assert.Equal(t, schedule.PeriodWeekly, journal.Period)
	assert.Equal(t, "2024,Q1,Mar,W11", journal.Timeline)

	// Any other day of the same week maps to the same bucket.
	monday := schedule.NewADate(2024, time.March, 11)
	_, err = svc.CreateJournal(ctx, CreateJournalArgs{RightNow: &monday})
	var exists domain.AlreadyExistsError
	require.ErrorAs(t, err, &exists)
	assert.Equal(t, "journal", exists.Kind)

	other := schedule.NewADate(2024, time.March, 18)
	_, err = svc.CreateJournal(ctx, CreateJournalArgs{RightNow: &other})
	require.NoError(t, err)
}

func TestGeneratedTaskRefusesEdits(t *testing.T) {
	svc, boot := newTestService(t)
	ctx := context.Background()
	disableAmbientGen(t, svc)

	habit, err := svc.CreateHabit(ctx, CreateHabitArgs{
		Name:       testName(t, "Meditate"),
		ProjectRef: boot.Root.Ref,
		GenParams:  domain.RecurringTaskGenParams{Period: schedule.PeriodDaily},
	})
	require.NoError(t, err)
	today := schedule.NewADate(2024, time.March, 15)
	_, err = svc.Generate(ctx, GenArgs{Today: &today})
	require.NoError(t, err)

	tasks, err := svc.Store().InboxTasks.ListBySource(ctx, domain.InboxTaskSourceHabit, habit.Ref)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	renamed := testName(t, "Contemplate")
	_, err = svc.UpdateInboxTask(ctx, UpdateInboxTaskArgs{Ref: tasks[0].Ref, Name: &renamed})
	var cannot domain.CannotModifyError
	require.ErrorAs(t, err, &cannot)

	// Status stays in the user's hands.
	done, err := svc.ChangeInboxTaskStatus(ctx, tasks[0].Ref, domain.InboxTaskStatusDone)
	require.NoError(t, err)
	assert.Equal(t, domain.InboxTaskStatusDone, done.Status)
}

func TestArchiveProjectCascade(t *testing.T) {
	svc, boot := newTestService(t)
	ctx := context.Background()
	disableAmbientGen(t, svc)

	side, err := svc.CreateProject(ctx, CreateProjectArgs{Name: testName(t, "Side"), ParentRef: boot.Root.Ref})
	require.NoError(t, err)
	deep, err := svc.CreateProject(ctx, CreateProjectArgs{Name: testName(t, "Deep"), ParentRef: side.Ref})
	require.NoError(t, err)

	habit, err := svc.CreateHabit(ctx, CreateHabitArgs{
		Name:       testName(t, "Practice scales"),
		ProjectRef: side.Ref,
		GenParams:  domain.RecurringTaskGenParams{Period: schedule.PeriodDaily},
	})
	require.NoError(t, err)
	today := schedule.NewADate(2024, time.March, 15)
	_, err = svc.Generate(ctx, GenArgs{Today: &today})
	require.NoError(t, err)

	plan, err := svc.CreateBigPlan(ctx, CreateBigPlanArgs{Name: testName(t, "Ship v1"), ProjectRef: side.Ref})
	require.NoError(t, err)
	task, err := svc.CreateInboxTask(ctx, CreateInboxTaskArgs{
		Name:       testName(t, "Polish readme"),
		ProjectRef: side.Ref,
		BigPlanRef: &plan.Ref,
	})
	require.NoError(t, err)
	_, err = svc.AttachNote(ctx, AttachNoteArgs{
		SourceKind: domain.EntityKindProject,
		SourceRef:  side.Ref,
		Content:    "why this exists",
	})
	require.NoError(t, err)

	archived, err := svc.ArchiveProject(ctx, side.Ref)
	require.NoError(t, err)

	counts := map[domain.EntityKind]int{}
	for _, summary := range archived {
		counts[summary.Kind]++
	}
	assert.Equal(t, 2, counts[domain.EntityKindProject], "side and deep")
	assert.Equal(t, 2, counts[domain.EntityKindInboxTask], "generated task and user task")
	assert.Equal(t, 1, counts[domain.EntityKindHabit])
	assert.Equal(t, 1, counts[domain.EntityKindBigPlan])
	assert.Equal(t, 1, counts[domain.EntityKindNote])

	store := svc.Store()
	for _, ref := range []domain.Ref{side.Ref, deep.Ref} {
		p, err := store.Projects.Get(ctx, ref)
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.True(t, p.Archived)
	}
	h, err := store.Habits.Get(ctx, habit.Ref)
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.True(t, h.Archived)
	loaded, err := store.InboxTasks.Get(ctx, task.Ref)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.True(t, loaded.Archived)

	// An archived project no longer accepts tasks.
	_, err = svc.CreateInboxTask(ctx, CreateInboxTaskArgs{Name: testName(t, "Too late"), ProjectRef: side.Ref})
	var notFound domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "project", notFound.Kind)
}

func TestArchiveProjectRefusesRootAndDefault(t *testing.T) {
	svc, boot := newTestService(t)
	ctx := context.Background()

	var cannot domain.CannotModifyError
	_, err := svc.ArchiveProject(ctx, boot.Root.Ref)
	require.ErrorAs(t, err, &cannot)
	_, err = svc.ArchiveProject(ctx, boot.Default.Ref)
	require.ErrorAs(t, err, &cannot)
}

func TestMoveProjectRefusesCycles(t *testing.T) {
	svc, boot := newTestService(t)
	ctx := context.Background()

	a, err := svc.CreateProject(ctx, CreateProjectArgs{Name: testName(t, "A"), ParentRef: boot.Root.Ref})
	require.NoError(t, err)
	b, err := svc.CreateProject(ctx, CreateProjectArgs{Name: testName(t, "B"), ParentRef: a.Ref})
	require.NoError(t, err)

	_, err = svc.MoveProject(ctx, a.Ref, b.Ref)
	var invalid domain.InputValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "parent", invalid.Field)

	// Reparenting to a sibling-free ancestor still works.
	_, err = svc.MoveProject(ctx, b.Ref, boot.Root.Ref)
	require.NoError(t, err)
}

func TestScoreFlow(t *testing.T) {
	svc, boot := newTestService(t)
	ctx := context.Background()

	task, err := svc.CreateInboxTask(ctx, CreateInboxTaskArgs{
		Name:       testName(t, "Write report"),
		ProjectRef: boot.Default.Ref,
		Difficulty: domain.DifficultyMedium,
	})
	require.NoError(t, err)
	plan, err := svc.CreateBigPlan(ctx, CreateBigPlanArgs{Name: testName(t, "Ship v1"), ProjectRef: boot.Default.Ref})
	require.NoError(t, err)

	_, err = svc.ChangeInboxTaskStatus(ctx, task.Ref, domain.InboxTaskStatusDone)
	require.NoError(t, err)
	overview, err := svc.GetScoreOverview(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, overview.Daily.TotalScore)
	assert.Equal(t, 1, overview.Daily.InboxTaskCnt)
	assert.Equal(t, 2, overview.Lifetime.TotalScore)

	_, err = svc.ChangeBigPlanStatus(ctx, plan.Ref, domain.BigPlanStatusDone)
	require.NoError(t, err)
	overview, err = svc.GetScoreOverview(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 12, overview.Daily.TotalScore)
	assert.Equal(t, 1, overview.Daily.BigPlanCnt)

	// Reopening the task takes its points back.
	_, err = svc.ChangeInboxTaskStatus(ctx, task.Ref, domain.InboxTaskStatusInProgress)
	require.NoError(t, err)
	overview, err = svc.GetScoreOverview(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, overview.Daily.TotalScore)
	assert.Equal(t, 0, overview.Daily.InboxTaskCnt)
	assert.Equal(t, 10, overview.Lifetime.TotalScore)
	assert.Len(t, overview.Recent, 2)

	// Archiving a completed plan reverses its contribution.
	_, err = svc.ArchiveBigPlan(ctx, plan.Ref)
	require.NoError(t, err)
	overview, err = svc.GetScoreOverview(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, overview.Daily.TotalScore)
	assert.Equal(t, 0, overview.Daily.BigPlanCnt)
}

func TestScoreFailurePenalty(t *testing.T) {
	svc, boot := newTestService(t)
	ctx := context.Background()

	win, err := svc.CreateInboxTask(ctx, CreateInboxTaskArgs{
		Name:       testName(t, "Easy win"),
		ProjectRef: boot.Default.Ref,
		Difficulty: domain.DifficultyHard,
	})
	require.NoError(t, err)
	loss, err := svc.CreateInboxTask(ctx, CreateInboxTaskArgs{
		Name:       testName(t, "Skipped chore"),
		ProjectRef: boot.Default.Ref,
		Difficulty: domain.DifficultyEasy,
	})
	require.NoError(t, err)

	_, err = svc.ChangeInboxTaskStatus(ctx, win.Ref, domain.InboxTaskStatusDone)
	require.NoError(t, err)
	_, err = svc.ChangeInboxTaskStatus(ctx, loss.Ref, domain.InboxTaskStatusNotDone)
	require.NoError(t, err)

	overview, err := svc.GetScoreOverview(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 4, overview.Daily.TotalScore)
	assert.Equal(t, 2, overview.Daily.InboxTaskCnt)
}

func TestScoringRespectsGamificationFlag(t *testing.T) {
	svc, boot := newTestService(t)
	ctx := context.Background()

	task, err := svc.CreateInboxTask(ctx, CreateInboxTaskArgs{
		Name:       testName(t, "Quiet work"),
		ProjectRef: boot.Default.Ref,
		Difficulty: domain.DifficultyMedium,
	})
	require.NoError(t, err)

	_, err = svc.SetFeature(ctx, domain.FeatureGamification, false)
	require.NoError(t, err)
	_, err = svc.ChangeInboxTaskStatus(ctx, task.Ref, domain.InboxTaskStatusDone)
	require.NoError(t, err)

	_, err = svc.GetScoreOverview(ctx, 10)
	var unavailable domain.FeatureUnavailableError
	require.ErrorAs(t, err, &unavailable)

	_, err = svc.SetFeature(ctx, domain.FeatureGamification, true)
	require.NoError(t, err)
	overview, err := svc.GetScoreOverview(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, overview.Lifetime.TotalScore)
	assert.Empty(t, overview.Recent)
}

func TestWorkingMemScratchpad(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	current, err := svc.CurrentWorkingMem(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)

	entry, err := svc.UpdateWorkingMemContent(ctx, "call the bank")
	require.NoError(t, err)
	assert.Equal(t, "call the bank", entry.Content)

	current, err = svc.CurrentWorkingMem(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, entry.Ref, current.Ref)

	updated, err := svc.UpdateWorkingMemContent(ctx, "call the bank\nbook dentist")
	require.NoError(t, err)
	assert.Equal(t, entry.Ref, updated.Ref)
	assert.Equal(t, "call the bank\nbook dentist", updated.Content)
}

func TestAttachNoteOncePerEntity(t *testing.T) {
	svc, boot := newTestService(t)
	ctx := context.Background()

	task, err := svc.CreateInboxTask(ctx, CreateInboxTaskArgs{
		Name:       testName(t, "Write report"),
		ProjectRef: boot.Default.Ref,
	})
	require.NoError(t, err)

	_, err = svc.AttachNote(ctx, AttachNoteArgs{
		SourceKind: domain.EntityKindInboxTask,
		SourceRef:  task.Ref,
		Content:    "outline first",
	})
	require.NoError(t, err)

	_, err = svc.AttachNote(ctx, AttachNoteArgs{
		SourceKind: domain.EntityKindInboxTask,
		SourceRef:  task.Ref,
		Content:    "second thoughts",
	})
	var exists domain.AlreadyExistsError
	require.ErrorAs(t, err, &exists)
	assert.Equal(t, "note", exists.Kind)
}

func TestSyncExternalStream(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.SetFeature(ctx, domain.FeatureSchedules, true)
	require.NoError(t, err)

	url := "https://calendar.example.com/team.ics"
	external, err := svc.CreateScheduleStream(ctx, CreateScheduleStreamArgs{
		Name:    testName(t, "Team calendar"),
		ICalURL: &url,
	})
	require.NoError(t, err)

	feed := []FeedEvent{
		{UID: "uid-1", Name: testName(t, "Planning"), StartDate: schedule.NewADate(2024, time.March, 18), EndDate: schedule.NewADate(2024, time.March, 18)},
		{UID: "uid-2", Name: testName(t, "Retro"), StartDate: schedule.NewADate(2024, time.March, 22), EndDate: schedule.NewADate(2024, time.March, 22)},
	}
	result, err := svc.SyncExternalStream(ctx, external.Ref, feed)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Created: 2}, result)

	// uid-1 moved, uid-2 left the feed, uid-3 is new.
	feed = []FeedEvent{
		{UID: "uid-1", Name: testName(t, "Planning"), StartDate: schedule.NewADate(2024, time.March, 19), EndDate: schedule.NewADate(2024, time.March, 19)},
		{UID: "uid-3", Name: testName(t, "Demo"), StartDate: schedule.NewADate(2024, time.March, 29), EndDate: schedule.NewADate(2024, time.March, 29)},
	}
	result, err = svc.SyncExternalStream(ctx, external.Ref, feed)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Created: 1, Updated: 1, Archived: 1}, result)

	// Identical feed: nothing to reconcile.
	result, err = svc.SyncExternalStream(ctx, external.Ref, feed)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{}, result)

	_, err = svc.CreateScheduleEvent(ctx, CreateScheduleEventArgs{
		StreamRef: external.Ref,
		Name:      testName(t, "Manual"),
		StartDate: schedule.NewADate(2024, time.April, 1),
		EndDate:   schedule.NewADate(2024, time.April, 1),
	})
	var cannot domain.CannotModifyError
	require.ErrorAs(t, err, &cannot)

	user, err := svc.CreateScheduleStream(ctx, CreateScheduleStreamArgs{Name: testName(t, "My calendar")})
	require.NoError(t, err)
	_, err = svc.SyncExternalStream(ctx, user.Ref, feed)
	require.ErrorAs(t, err, &cannot)
	_, err = svc.CreateScheduleEvent(ctx, CreateScheduleEventArgs{
		StreamRef: user.Ref,
		Name:      testName(t, "Dentist"),
		StartDate: schedule.NewADate(2024, time.April, 2),
		EndDate:   schedule.NewADate(2024, time.April, 2),
	})
	require.NoError(t, err)
}

func TestSearchFindsCreatedEntities(t *testing.T) {
	svc, boot := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateHabit(ctx, CreateHabitArgs{
		Name:       testName(t, "Meditate"),
		ProjectRef: boot.Root.Ref,
		GenParams:  domain.RecurringTaskGenParams{Period: schedule.PeriodDaily},
	})
	require.NoError(t, err)
	task, err := svc.CreateInboxTask(ctx, CreateInboxTaskArgs{
		Name:       testName(t, "Write meditation notes"),
		ProjectRef: boot.Default.Ref,
	})
	require.NoError(t, err)

	found, err := svc.Search(ctx, "medit", 10)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	// Archived entities fall out of the index.
	_, err = svc.ArchiveInboxTask(ctx, task.Ref)
	require.NoError(t, err)
	found, err = svc.Search(ctx, "medit", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, domain.EntityKindHabit, found[0].Kind)
}

func TestGenerateBackfillsMissedBuckets(t *testing.T) {
	svc, boot := newTestService(t)
	ctx := context.Background()
	disableAmbientGen(t, svc)

	habit, err := svc.CreateHabit(ctx, CreateHabitArgs{
		Name:       testName(t, "Meditate"),
		ProjectRef: boot.Root.Ref,
		GenParams:  domain.RecurringTaskGenParams{Period: schedule.PeriodDaily},
	})
	require.NoError(t, err)

	first := schedule.NewADate(2024, time.March, 15)
	_, err = svc.Generate(ctx, GenArgs{Today: &first})
	require.NoError(t, err)

	// Three days later the run covers every day since the last one.
	later := schedule.NewADate(2024, time.March, 18)
	res, err := svc.Generate(ctx, GenArgs{Today: &later})
	require.NoError(t, err)
	assert.Len(t, res.Created, 3)

	tasks, err := svc.Store().InboxTasks.ListBySource(ctx, domain.InboxTaskSourceHabit, habit.Ref)
	require.NoError(t, err)
	assert.Len(t, tasks, 4)

	history, err := svc.GenHistory(ctx, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].Today.Equal(later))
}

func TestGenerateTargetOrder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	today := schedule.NewADate(2024, time.March, 15)
	res, err := svc.Generate(ctx, GenArgs{Today: &today})
	require.NoError(t, err)

	// Slack and email tasks are off by default, so push-tasks sits out.
	assert.Equal(t, []string{"habits", "chores", "persons", "metrics", "journals", "working-mem"}, res.Targets)
}

func TestGenerateJournalSingleBucketAcrossMonthBoundary(t *testing.T) {
	svc, boot := newTestService(t)
	ctx := context.Background()

	// 2024-04-30 and 2024-05-01 share ISO week 18; back-to-back runs must
	// land on the same weekly journal.
	april := schedule.NewADate(2024, time.April, 30)
	_, err := svc.Generate(ctx, GenArgs{Today: &april})
	require.NoError(t, err)

	may := schedule.NewADate(2024, time.May, 1)
	res, err := svc.Generate(ctx, GenArgs{Today: &may})
	require.NoError(t, err)
	for _, summary := range res.Created {
		assert.NotEqual(t, domain.EntityKindJournal, summary.Kind)
	}

	journals, err := svc.Store().Journals.ListActive(ctx, boot.Workspace.Ref)
	require.NoError(t, err)
	require.Len(t, journals, 1)
	assert.Equal(t, "2024,Q2,Apr,W18", journals[0].Timeline)
}

func TestGenerateTargetFilter(t *testing.T) {
	svc, boot := newTestService(t)
	ctx := context.Background()
	disableAmbientGen(t, svc)

	habit, err := svc.CreateHabit(ctx, CreateHabitArgs{
		Name:       testName(t, "Meditate"),
		ProjectRef: boot.Root.Ref,
		GenParams:  domain.RecurringTaskGenParams{Period: schedule.PeriodDaily},
	})
	require.NoError(t, err)
	metric, err := svc.CreateMetric(ctx, CreateMetricArgs{
		Name:             testName(t, "Weight"),
		CollectionParams: &domain.RecurringTaskGenParams{Period: schedule.PeriodDaily},
	})
	require.NoError(t, err)

	today := schedule.NewADate(2024, time.March, 15)
	res, err := svc.Generate(ctx, GenArgs{Today: &today, Targets: []string{"habits"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"habits"}, res.Targets)

	habitTasks, err := svc.Store().InboxTasks.ListBySource(ctx, domain.InboxTaskSourceHabit, habit.Ref)
	require.NoError(t, err)
	assert.Len(t, habitTasks, 1)
	metricTasks, err := svc.Store().InboxTasks.ListBySource(ctx, domain.InboxTaskSourceMetric, metric.Ref)
	require.NoError(t, err)
	assert.Empty(t, metricTasks)

	_, err = svc.Generate(ctx, GenArgs{Today: &today, Targets: []string{"laundry"}})
	var invalid domain.InputValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "target", invalid.Field)
}

func TestGeneratePeriodAndRefFilters(t *testing.T) {
	svc, boot := newTestService(t)
	ctx := context.Background()
	disableAmbientGen(t, svc)

	daily, err := svc.CreateHabit(ctx, CreateHabitArgs{
		Name:       testName(t, "Meditate"),
		ProjectRef: boot.Root.Ref,
		GenParams:  domain.RecurringTaskGenParams{Period: schedule.PeriodDaily},
	})
	require.NoError(t, err)
	weekly, err := svc.CreateHabit(ctx, CreateHabitArgs{
		Name:       testName(t, "Review the week"),
		ProjectRef: boot.Root.Ref,
		GenParams:  domain.RecurringTaskGenParams{Period: schedule.PeriodWeekly},
	})
	require.NoError(t, err)

	today := schedule.NewADate(2024, time.March, 15)
	_, err = svc.Generate(ctx, GenArgs{Today: &today, Periods: []schedule.Period{schedule.PeriodDaily}})
	require.NoError(t, err)

	dailyTasks, err := svc.Store().InboxTasks.ListBySource(ctx, domain.InboxTaskSourceHabit, daily.Ref)
	require.NoError(t, err)
	assert.Len(t, dailyTasks, 1)
	weeklyTasks, err := svc.Store().InboxTasks.ListBySource(ctx, domain.InboxTaskSourceHabit, weekly.Ref)
	require.NoError(t, err)
	assert.Empty(t, weeklyTasks)

	_, err = svc.Generate(ctx, GenArgs{Today: &today, SourceRefs: []domain.Ref{weekly.Ref}})
	require.NoError(t, err)

	dailyTasks, err = svc.Store().InboxTasks.ListBySource(ctx, domain.InboxTaskSourceHabit, daily.Ref)
	require.NoError(t, err)
	assert.Len(t, dailyTasks, 1)
	weeklyTasks, err = svc.Store().InboxTasks.ListBySource(ctx, domain.InboxTaskSourceHabit, weekly.Ref)
	require.NoError(t, err)
	assert.Len(t, weeklyTasks, 1)
}

func TestGenerateUnmodifiedSourceKeepsPastBuckets(t *testing.T) {
	svc, boot := newTestService(t)
	ctx := context.Background()
	disableAmbientGen(t, svc)

	habit, err := svc.CreateHabit(ctx, CreateHabitArgs{
		Name:       testName(t, "Ride bike"),
		ProjectRef: boot.Root.Ref,
		GenParams:  domain.RecurringTaskGenParams{Period: schedule.PeriodWeekly},
	})
	require.NoError(t, err)

	first := schedule.NewADate(2024, time.March, 15)
	res, err := svc.Generate(ctx, GenArgs{Today: &first})
	require.NoError(t, err)
	require.Len(t, res.Created, 1)

	// The vacation now blacks out week 11, but the habit itself has not
	// changed since the last run, so the week 11 task is left alone.
	_, err = svc.CreateVacation(ctx, CreateVacationArgs{
		Name:      testName(t, "Ski trip"),
		StartDate: schedule.NewADate(2024, time.March, 9),
		EndDate:   schedule.NewADate(2024, time.March, 17),
	})
	require.NoError(t, err)

	later := schedule.NewADate(2024, time.March, 22)
	res, err = svc.Generate(ctx, GenArgs{Today: &later})
	require.NoError(t, err)
	assert.Len(t, res.Created, 1)
	assert.Empty(t, res.Archived)

	tasks, err := svc.Store().InboxTasks.ListBySource(ctx, domain.InboxTaskSourceHabit, habit.Ref)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestGenerateEvenIfNotModifiedRevisitsPastBuckets(t *testing.T) {
	svc, boot := newTestService(t)
	ctx := context.Background()
	disableAmbientGen(t, svc)

	habit, err := svc.CreateHabit(ctx, CreateHabitArgs{
		Name:       testName(t, "Ride bike"),
		ProjectRef: boot.Root.Ref,
		GenParams:  domain.RecurringTaskGenParams{Period: schedule.PeriodWeekly},
	})
	require.NoError(t, err)

	first := schedule.NewADate(2024, time.March, 15)
	_, err = svc.Generate(ctx, GenArgs{Today: &first})
	require.NoError(t, err)

	_, err = svc.CreateVacation(ctx, CreateVacationArgs{
		Name:      testName(t, "Ski trip"),
		StartDate: schedule.NewADate(2024, time.March, 9),
		EndDate:   schedule.NewADate(2024, time.March, 17),
	})
	require.NoError(t, err)

	// Forcing the run re-opens week 11 and vacates its blacked-out task.
	later := schedule.NewADate(2024, time.March, 22)
	res, err := svc.Generate(ctx, GenArgs{Today: &later, EvenIfNotModified: true})
	require.NoError(t, err)
	assert.Len(t, res.Created, 1)
	require.Len(t, res.Archived, 1)

	tasks, err := svc.Store().InboxTasks.ListBySource(ctx, domain.InboxTaskSourceHabit, habit.Ref)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Ride bike 2024,Q1,Mar,W12", tasks[0].Name.String())
}
