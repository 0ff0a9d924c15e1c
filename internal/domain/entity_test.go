package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horia141/jupiter-sub011/internal/schedule"
)

func testStamp() Stamp {
	return Stamp{Now: time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC), Source: EventSourceCLI}
}

func testTask(t *testing.T) InboxTask {
	t.Helper()
	name, err := NewEntityName("Write report")
	require.NoError(t, err)
	return NewInboxTask(testStamp(), NewInboxTaskInput{
		WorkspaceRef: 1,
		ProjectRef:   2,
		Name:         name,
		Eisen:        EisenRegular,
		Difficulty:   DifficultyMedium,
	})
}

func TestNewInboxTaskStartsAtVersionZero(t *testing.T) {
	task := testTask(t)

	assert.Equal(t, 0, task.Version)
	assert.Equal(t, InboxTaskStatusNotStarted, task.Status)
	assert.Equal(t, InboxTaskSourceUser, task.Source)
	require.Len(t, task.Events, 1)
	assert.Equal(t, EventKindCreate, task.Events[0].Kind)
	assert.Equal(t, 0, task.Events[0].Version)
}

func TestUpdateBumpsVersionAndAppendsEvent(t *testing.T) {
	task := testTask(t)
	newName, err := NewEntityName("Write the quarterly report")
	require.NoError(t, err)

	updated, err := task.Update(testStamp(), InboxTaskUpdate{Name: &newName})
	require.NoError(t, err)

	assert.Equal(t, 1, updated.Version)
	require.Len(t, updated.Events, 2)
	assert.Equal(t, EventKindUpdate, updated.Events[1].Kind)
	assert.Equal(t, 1, updated.Events[1].Version)

	// The original snapshot is untouched.
	assert.Equal(t, 0, task.Version)
	assert.Len(t, task.Events, 1)
}

func TestNoOpUpdateEmitsNothing(t *testing.T) {
	task := testTask(t)
	sameName := task.Name
	sameEisen := task.Eisen

	updated, err := task.Update(testStamp(), InboxTaskUpdate{Name: &sameName, Eisen: &sameEisen})
	require.NoError(t, err)

	assert.Equal(t, task.Version, updated.Version)
	assert.Len(t, updated.Events, 1)
}

func TestArchiveIsIdempotent(t *testing.T) {
	task := testTask(t)

	archived := task.Archive(testStamp(), ArchiveReasonUser)
	assert.True(t, archived.Archived)
	assert.Equal(t, ArchiveReasonUser, archived.ArchivedReason)
	assert.Equal(t, 1, archived.Version)
	require.NotNil(t, archived.ArchivedAt)

	again := archived.Archive(testStamp(), ArchiveReasonParentArchived)
	assert.Equal(t, 1, again.Version)
	assert.Equal(t, ArchiveReasonUser, again.ArchivedReason)
	assert.Len(t, again.Events, len(archived.Events))
}

func TestRestoreClearsArchiveState(t *testing.T) {
	task := testTask(t).Archive(testStamp(), ArchiveReasonUser)

	restored := task.Restore(testStamp())
	assert.False(t, restored.Archived)
	assert.Nil(t, restored.ArchivedAt)
	assert.Equal(t, 2, restored.Version)

	// Restoring a live entity is a no-op.
	again := restored.Restore(testStamp())
	assert.Equal(t, 2, again.Version)
}

func TestArchivedEntityRefusesMutation(t *testing.T) {
	task := testTask(t).Archive(testStamp(), ArchiveReasonUser)

	_, err := task.ChangeStatus(testStamp(), InboxTaskStatusDone)
	var cannotModify CannotModifyError
	require.ErrorAs(t, err, &cannotModify)
	assert.Equal(t, "inbox task", cannotModify.Kind)
}

func TestGeneratedTaskRefusesScheduleEdits(t *testing.T) {
	name, err := NewEntityName("Meditate 2024,Q1,Mar,W11,D5")
	require.NoError(t, err)
	due := schedule.NewADate(2024, time.March, 15)
	task := NewGeneratedInboxTask(testStamp(), NewGeneratedInboxTaskInput{
		WorkspaceRef: 1,
		ProjectRef:   2,
		Name:         name,
		Eisen:        EisenRegular,
		Difficulty:   DifficultyEasy,
		Source:       InboxTaskSourceHabit,
		SourceRef:    7,
		DueDate:      &due,
		GenRightNow:  due,
		Timeline:     "2024,Q1,Mar,W11,D5",
	})

	other, err := NewEntityName("Something else")
	require.NoError(t, err)
	_, err = task.Update(testStamp(), InboxTaskUpdate{Name: &other})
	var cannotModify CannotModifyError
	require.ErrorAs(t, err, &cannotModify)

	_, err = task.ChangeProject(testStamp(), 3)
	require.ErrorAs(t, err, &cannotModify)

	// Completion stays user-owned even on generated tasks.
	done, err := task.ChangeStatus(testStamp(), InboxTaskStatusDone)
	require.NoError(t, err)
	assert.Equal(t, InboxTaskStatusDone, done.Status)
}

func TestGeneratedRefreshNoOpBumpsNothing(t *testing.T) {
	name, err := NewEntityName("Meditate 2024,Q1,Mar,W11,D5")
	require.NoError(t, err)
	due := schedule.NewADate(2024, time.March, 15)
	task := NewGeneratedInboxTask(testStamp(), NewGeneratedInboxTaskInput{
		WorkspaceRef: 1,
		ProjectRef:   2,
		Name:         name,
		Eisen:        EisenRegular,
		Difficulty:   DifficultyEasy,
		Source:       InboxTaskSourceHabit,
		SourceRef:    7,
		ActionableDate: &due,
		DueDate:        &due,
		GenRightNow:    due,
		Timeline:       "2024,Q1,Mar,W11,D5",
	})

	same := task.GeneratedRefresh(testStamp(), GeneratedRefreshInput{
		Name:           name,
		ProjectRef:     2,
		Eisen:          EisenRegular,
		Difficulty:     DifficultyEasy,
		ActionableDate: &due,
		DueDate:        &due,
		GenRightNow:    due,
	})
	assert.Equal(t, task.Version, same.Version)

	harder := task.GeneratedRefresh(testStamp(), GeneratedRefreshInput{
		Name:           name,
		ProjectRef:     2,
		Eisen:          EisenImportant,
		Difficulty:     DifficultyEasy,
		ActionableDate: &due,
		DueDate:        &due,
		GenRightNow:    due,
	})
	assert.Equal(t, task.Version+1, harder.Version)
	assert.Equal(t, EisenImportant, harder.Eisen)
}

func TestChangeStatusRejectsUnknownStatus(t *testing.T) {
	task := testTask(t)
	_, err := task.ChangeStatus(testStamp(), InboxTaskStatus("paused"))
	var invalid InputValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "status", invalid.Field)
}

func TestClearEvents(t *testing.T) {
	task := testTask(t)
	cleared := task.ClearEvents()
	assert.Nil(t, cleared.Events)
	assert.Equal(t, task.Version, cleared.Version)
}
