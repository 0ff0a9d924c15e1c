package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horia141/jupiter-sub011/internal/domain"
	"github.com/horia141/jupiter-sub011/internal/schedule"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "jupiter.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func storeStamp() domain.Stamp {
	return domain.Stamp{Now: time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC), Source: domain.EventSourceCLI}
}

func mustName(t *testing.T, raw string) domain.EntityName {
	t.Helper()
	name, err := domain.NewEntityName(raw)
	require.NoError(t, err)
	return name
}

// bootstrap creates a workspace with a root project and returns both.
func bootstrap(t *testing.T, store *Store) (domain.Workspace, domain.Project) {
	t.Helper()
	ctx := context.Background()

	ws, err := store.Workspaces.Create(ctx, domain.NewWorkspace(storeStamp(), mustName(t, "Test")))
	require.NoError(t, err)
	root, err := store.Projects.Create(ctx, domain.NewProject(storeStamp(), ws.Ref, nil, mustName(t, "Work")))
	require.NoError(t, err)
	return ws, root
}

func TestCreateAndReloadInboxTask(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db)
	ctx := context.Background()
	ws, root := bootstrap(t, store)

	due := schedule.NewADate(2024, time.March, 20)
	created, err := store.InboxTasks.Create(ctx, domain.NewInboxTask(storeStamp(), domain.NewInboxTaskInput{
		WorkspaceRef: ws.Ref,
		ProjectRef:   root.Ref,
		Name:         mustName(t, "Write report"),
		Eisen:        domain.EisenImportant,
		Difficulty:   domain.DifficultyMedium,
		DueDate:      &due,
	}))
	require.NoError(t, err)
	require.NotZero(t, created.Ref)
	assert.Empty(t, created.Events, "create flushes pending events")

	loaded, err := store.InboxTasks.Get(ctx, created.Ref)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, created.Ref, loaded.Ref)
	assert.Equal(t, 0, loaded.Version)
	assert.Equal(t, "Write report", loaded.Name.String())
	assert.Equal(t, domain.EisenImportant, loaded.Eisen)
	assert.Equal(t, domain.InboxTaskStatusNotStarted, loaded.Status)
	require.NotNil(t, loaded.DueDate)
	assert.True(t, loaded.DueDate.Equal(due))
	assert.Nil(t, loaded.ActionableDate)

	missing, err := store.InboxTasks.Get(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSaveStaleSnapshotConflicts(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db)
	ctx := context.Background()
	ws, root := bootstrap(t, store)

	task, err := store.InboxTasks.Create(ctx, domain.NewInboxTask(storeStamp(), domain.NewInboxTaskInput{
		WorkspaceRef: ws.Ref,
		ProjectRef:   root.Ref,
		Name:         mustName(t, "Write report"),
		Eisen:        domain.EisenRegular,
		Difficulty:   domain.DifficultyEasy,
	}))
	require.NoError(t, err)

	// Two writers mutate the same loaded snapshot; the second save loses.
	first, err := task.ChangeStatus(storeStamp(), domain.InboxTaskStatusInProgress)
	require.NoError(t, err)
	second, err := task.ChangeStatus(storeStamp(), domain.InboxTaskStatusBlocked)
	require.NoError(t, err)

	_, err = store.InboxTasks.Save(ctx, first)
	require.NoError(t, err)
	_, err = store.InboxTasks.Save(ctx, second)
	var conflict domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, task.Ref, conflict.Ref)

	loaded, err := store.InboxTasks.Get(ctx, task.Ref)
	require.NoError(t, err)
	assert.Equal(t, domain.InboxTaskStatusInProgress, loaded.Status)
}

func TestSaveWithoutPendingEventsIsNoOp(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db)
	ctx := context.Background()
	ws, root := bootstrap(t, store)

	task, err := store.InboxTasks.Create(ctx, domain.NewInboxTask(storeStamp(), domain.NewInboxTaskInput{
		WorkspaceRef: ws.Ref,
		ProjectRef:   root.Ref,
		Name:         mustName(t, "Untouched"),
		Eisen:        domain.EisenRegular,
		Difficulty:   domain.DifficultyEasy,
	}))
	require.NoError(t, err)

	loaded, err := store.InboxTasks.Get(ctx, task.Ref)
	require.NoError(t, err)
	_, err = store.InboxTasks.Save(ctx, *loaded)
	require.NoError(t, err)

	n, err := countEvents(ctx, db, "inbox_tasks", task.Ref)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDuplicateUserEmail(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	email, err := domain.NewEmailAddress("alice@example.com")
	require.NoError(t, err)
	_, err = store.Users.Create(ctx, domain.NewUser(storeStamp(), email, mustName(t, "Alice"), domain.TimezoneUTC))
	require.NoError(t, err)

	_, err = store.Users.Create(ctx, domain.NewUser(storeStamp(), email, mustName(t, "Alice Again"), domain.TimezoneUTC))
	var exists domain.AlreadyExistsError
	require.ErrorAs(t, err, &exists)
	assert.Equal(t, "user", exists.Kind)
}

func TestDuplicateJournalTimeline(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db)
	ctx := context.Background()
	ws, _ := bootstrap(t, store)

	journal, err := domain.NewJournal(storeStamp(), ws.Ref, schedule.NewADate(2024, time.March, 15), schedule.PeriodWeekly)
	require.NoError(t, err)
	_, err = store.Journals.Create(ctx, journal)
	require.NoError(t, err)

	// Same week, different day: same timeline key.
	dup, err := domain.NewJournal(storeStamp(), ws.Ref, schedule.NewADate(2024, time.March, 11), schedule.PeriodWeekly)
	require.NoError(t, err)
	_, err = store.Journals.Create(ctx, dup)
	var exists domain.AlreadyExistsError
	require.ErrorAs(t, err, &exists)
	assert.Equal(t, "journal", exists.Kind)

	found, err := store.Journals.FindByTimeline(ctx, ws.Ref, schedule.PeriodWeekly, "2024,Q1,Mar,W11")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, journal.Ref, found.Ref)
}

func TestFindGeneratedKeyedByRepeatIndex(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db)
	ctx := context.Background()
	ws, root := bootstrap(t, store)

	today := schedule.NewADate(2024, time.March, 15)
	makeGenerated := func(name string, repeatIndex *int) domain.InboxTask {
		task, err := store.InboxTasks.Create(ctx, domain.NewGeneratedInboxTask(storeStamp(), domain.NewGeneratedInboxTaskInput{
			WorkspaceRef: ws.Ref,
			ProjectRef:   root.Ref,
			Name:         mustName(t, name),
			Eisen:        domain.EisenRegular,
			Difficulty:   domain.DifficultyEasy,
			Source:       domain.InboxTaskSourceHabit,
			SourceRef:    42,
			GenRightNow:  today,
			Timeline:     "2024,Q1,Mar,W11",
			RepeatIndex:  repeatIndex,
		}))
		require.NoError(t, err)
		return task
	}

	one := 1
	two := 2
	plain := makeGenerated("Gym 2024,Q1,Mar,W11", nil)
	repOne := makeGenerated("Gym 2024,Q1,Mar,W11 [1/2]", &one)
	makeGenerated("Gym 2024,Q1,Mar,W11 [2/2]", &two)

	found, err := store.InboxTasks.FindGenerated(ctx, domain.InboxTaskSourceHabit, 42, "2024,Q1,Mar,W11", nil)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, plain.Ref, found.Ref)

	found, err = store.InboxTasks.FindGenerated(ctx, domain.InboxTaskSourceHabit, 42, "2024,Q1,Mar,W11", &one)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, repOne.Ref, found.Ref)

	found, err = store.InboxTasks.FindGenerated(ctx, domain.InboxTaskSourceChore, 42, "2024,Q1,Mar,W11", nil)
	require.NoError(t, err)
	assert.Nil(t, found, "source kind is part of the key")

	// Archived tasks fall out of the generation key lookup.
	_, err = store.InboxTasks.Save(ctx, plain.Archive(storeStamp(), domain.ArchiveReasonReplacedBySkip))
	require.NoError(t, err)
	found, err = store.InboxTasks.FindGenerated(ctx, domain.InboxTaskSourceHabit, 42, "2024,Q1,Mar,W11", nil)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestEventTrailGrowsPerMutation(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db)
	ctx := context.Background()
	ws, root := bootstrap(t, store)

	task, err := store.InboxTasks.Create(ctx, domain.NewInboxTask(storeStamp(), domain.NewInboxTaskInput{
		WorkspaceRef: ws.Ref,
		ProjectRef:   root.Ref,
		Name:         mustName(t, "Audit me"),
		Eisen:        domain.EisenRegular,
		Difficulty:   domain.DifficultyEasy,
	}))
	require.NoError(t, err)

	n, err := countEvents(ctx, db, "inbox_tasks", task.Ref)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	task, err = task.ChangeStatus(storeStamp(), domain.InboxTaskStatusDone)
	require.NoError(t, err)
	task, err = store.InboxTasks.Save(ctx, task)
	require.NoError(t, err)

	n, err = countEvents(ctx, db, "inbox_tasks", task.Ref)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	loaded, err := store.InboxTasks.Get(ctx, task.Ref)
	require.NoError(t, err)
	archived, err := store.InboxTasks.Save(ctx, loaded.Archive(storeStamp(), domain.ArchiveReasonUser))
	require.NoError(t, err)
	assert.True(t, archived.Archived)

	n, err = countEvents(ctx, db, "inbox_tasks", task.Ref)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestUnitOfWorkRollsBackOnError(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	ws, root := bootstrap(t, NewStore(db))

	boom := assert.AnError
	err := UnitOfWork(ctx, db, func(store *Store) error {
		_, err := store.InboxTasks.Create(ctx, domain.NewInboxTask(storeStamp(), domain.NewInboxTaskInput{
			WorkspaceRef: ws.Ref,
			ProjectRef:   root.Ref,
			Name:         mustName(t, "Doomed"),
			Eisen:        domain.EisenRegular,
			Difficulty:   domain.DifficultyEasy,
		}))
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	tasks, err := NewStore(db).InboxTasks.ListActive(ctx, ws.Ref)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestScoreStatsUpsert(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	stats, err := store.ScoreStats.Get(ctx, 1, schedule.PeriodDaily, "2024,Q1,Mar,W11,D5")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalScore, "missing row reads as zero")

	stats = stats.Apply(2, domain.ScoreSourceInboxTask, 1)
	stats.UserRef = 1
	stats.Period = schedule.PeriodDaily
	stats.Timeline = "2024,Q1,Mar,W11,D5"
	require.NoError(t, store.ScoreStats.Upsert(ctx, stats))

	reloaded, err := store.ScoreStats.Get(ctx, 1, schedule.PeriodDaily, "2024,Q1,Mar,W11,D5")
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.TotalScore)
	assert.Equal(t, 1, reloaded.InboxTaskCnt)

	reloaded = reloaded.Apply(10, domain.ScoreSourceBigPlan, 1)
	require.NoError(t, store.ScoreStats.Upsert(ctx, reloaded))
	again, err := store.ScoreStats.Get(ctx, 1, schedule.PeriodDaily, "2024,Q1,Mar,W11,D5")
	require.NoError(t, err)
	assert.Equal(t, 12, again.TotalScore)
	assert.Equal(t, 1, again.BigPlanCnt)
}

func TestGenLogAppendAndLatest(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db)
	ctx := context.Background()
	ws, _ := bootstrap(t, store)

	latest, err := store.GenLog.Latest(ctx, ws.Ref)
	require.NoError(t, err)
	assert.Nil(t, latest)

	first, err := store.GenLog.Append(ctx, domain.GenLogEntry{
		WorkspaceRef: ws.Ref,
		Source:       domain.EventSourceCLI,
		Today:        schedule.NewADate(2024, time.March, 14),
		GenTargets:   []string{"habits", "chores"},
		CreatedCnt:   3,
		CreatedAt:    storeStamp().Now,
	})
	require.NoError(t, err)
	require.NotZero(t, first.Ref)

	second, err := store.GenLog.Append(ctx, domain.GenLogEntry{
		WorkspaceRef: ws.Ref,
		Source:       domain.EventSourceCLI,
		Today:        schedule.NewADate(2024, time.March, 15),
		GenTargets:   []string{"habits"},
		CreatedAt:    storeStamp().Now.Add(time.Hour),
	})
	require.NoError(t, err)

	latest, err = store.GenLog.Latest(ctx, ws.Ref)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.Ref, latest.Ref)
	assert.True(t, latest.Today.Equal(schedule.NewADate(2024, time.March, 15)))

	recent, err := store.GenLog.ListRecent(ctx, ws.Ref, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, []string{"habits", "chores"}, recent[1].GenTargets)
}
