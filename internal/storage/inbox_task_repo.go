package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/horia141/jupiter-sub011/internal/domain"
)

type InboxTaskRepo struct {
	q Querier
}

func NewInboxTaskRepo(q Querier) *InboxTaskRepo {
	return &InboxTaskRepo{q: q}
}

const inboxTaskCols = entityHeadColumns + `, workspace_ref, project_ref, name, status, eisen, difficulty,
	source, source_entity_ref, big_plan_ref, actionable_date, due_date,
	recurring_gen_right_now, recurring_timeline, recurring_repeat_index`

var inboxTaskExtraCols = []string{
	"workspace_ref", "project_ref", "name", "status", "eisen", "difficulty",
	"source", "source_entity_ref", "big_plan_ref", "actionable_date", "due_date",
	"recurring_gen_right_now", "recurring_timeline", "recurring_repeat_index",
}

func inboxTaskVals(t domain.InboxTask) []any {
	return []any{
		int64(t.WorkspaceRef), int64(t.ProjectRef), t.Name.String(), string(t.Status),
		string(t.Eisen), string(t.Difficulty), string(t.Source),
		nullRef(t.SourceEntityRef), nullRef(t.BigPlanRef),
		nullDate(t.ActionableDate), nullDate(t.DueDate),
		nullDate(t.RecurringGenRightNow), nullStr(t.RecurringTimeline), nullInt(t.RecurringRepeatIndex),
	}
}

func (r *InboxTaskRepo) Create(ctx context.Context, t domain.InboxTask) (domain.InboxTask, error) {
	ref, err := insertEntity(ctx, r.q, "inbox_tasks", t.Entity, inboxTaskExtraCols, inboxTaskVals(t))
	if err != nil {
		return t, err
	}
	t.Entity.Ref = ref
	t.Entity = t.Entity.ClearEvents()
	return t, nil
}

func (r *InboxTaskRepo) Save(ctx context.Context, t domain.InboxTask) (domain.InboxTask, error) {
	if err := updateEntity(ctx, r.q, "inbox_tasks", "inbox task", t.Entity, inboxTaskExtraCols, inboxTaskVals(t)); err != nil {
		return t, err
	}
	t.Entity = t.Entity.ClearEvents()
	return t, nil
}

func (r *InboxTaskRepo) Get(ctx context.Context, ref domain.Ref) (*domain.InboxTask, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+inboxTaskCols+` FROM inbox_tasks WHERE id = ?`, int64(ref))
	return scanInboxTask(row)
}

// FindGenerated looks up the task produced for one candidate bucket of a
// recurring source.
func (r *InboxTaskRepo) FindGenerated(ctx context.Context, source domain.InboxTaskSource, sourceRef domain.Ref, timeline string, repeatIndex *int) (*domain.InboxTask, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+inboxTaskCols+` FROM inbox_tasks
		WHERE source = ? AND source_entity_ref = ? AND recurring_timeline = ?
			AND ifnull(recurring_repeat_index, -1) = ? AND archived = 0
	`, string(source), int64(sourceRef), timeline, repeatIndexKey(repeatIndex))
	return scanInboxTask(row)
}

func repeatIndexKey(repeatIndex *int) int {
	if repeatIndex == nil {
		return -1
	}
	return *repeatIndex
}

// ListBySource lists non-archived tasks generated from one entity.
func (r *InboxTaskRepo) ListBySource(ctx context.Context, source domain.InboxTaskSource, sourceRef domain.Ref) ([]domain.InboxTask, error) {
	return r.list(ctx, `
		SELECT `+inboxTaskCols+` FROM inbox_tasks
		WHERE source = ? AND source_entity_ref = ? AND archived = 0
		ORDER BY id ASC
	`, string(source), int64(sourceRef))
}

func (r *InboxTaskRepo) ListByProject(ctx context.Context, projectRef domain.Ref) ([]domain.InboxTask, error) {
	return r.list(ctx, `
		SELECT `+inboxTaskCols+` FROM inbox_tasks
		WHERE project_ref = ? AND archived = 0
		ORDER BY id ASC
	`, int64(projectRef))
}

func (r *InboxTaskRepo) ListByBigPlan(ctx context.Context, bigPlanRef domain.Ref) ([]domain.InboxTask, error) {
	return r.list(ctx, `
		SELECT `+inboxTaskCols+` FROM inbox_tasks
		WHERE big_plan_ref = ? AND archived = 0
		ORDER BY id ASC
	`, int64(bigPlanRef))
}

func (r *InboxTaskRepo) ListActive(ctx context.Context, workspaceRef domain.Ref) ([]domain.InboxTask, error) {
	return r.list(ctx, `
		SELECT `+inboxTaskCols+` FROM inbox_tasks
		WHERE workspace_ref = ? AND archived = 0
		ORDER BY id ASC
	`, int64(workspaceRef))
}

func (r *InboxTaskRepo) list(ctx context.Context, query string, args ...any) ([]domain.InboxTask, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("inbox task list: %w", err)
	}
	defer rows.Close()

	var out []domain.InboxTask
	for rows.Next() {
		t, err := scanInboxTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("inbox task rows: %w", err)
	}
	return out, nil
}

func scanInboxTask(row scanner) (*domain.InboxTask, error) {
	var (
		head        entityRow
		workspace   int64
		project     int64
		name        string
		status      string
		eisen       string
		difficulty  string
		source      string
		sourceRef   sql.NullInt64
		bigPlanRef  sql.NullInt64
		actionable  sql.NullString
		due         sql.NullString
		genRightNow sql.NullString
		timeline    sql.NullString
		repeatIdx   sql.NullInt64
	)
	dests := append(head.dests(),
		&workspace, &project, &name, &status, &eisen, &difficulty,
		&source, &sourceRef, &bigPlanRef, &actionable, &due,
		&genRightNow, &timeline, &repeatIdx)
	if err := row.Scan(dests...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("inbox task scan: %w", err)
	}

	actionableDate, err := datePtr(actionable)
	if err != nil {
		return nil, fmt.Errorf("inbox task actionable date: %w", err)
	}
	dueDate, err := datePtr(due)
	if err != nil {
		return nil, fmt.Errorf("inbox task due date: %w", err)
	}
	genDate, err := datePtr(genRightNow)
	if err != nil {
		return nil, fmt.Errorf("inbox task gen date: %w", err)
	}

	return &domain.InboxTask{
		Entity:               head.toEntity(),
		WorkspaceRef:         domain.Ref(workspace),
		ProjectRef:           domain.Ref(project),
		Name:                 domain.EntityName(name),
		Status:               domain.InboxTaskStatus(status),
		Eisen:                domain.Eisen(eisen),
		Difficulty:           domain.Difficulty(difficulty),
		Source:               domain.InboxTaskSource(source),
		SourceEntityRef:      refPtr(sourceRef),
		BigPlanRef:           refPtr(bigPlanRef),
		ActionableDate:       actionableDate,
		DueDate:              dueDate,
		RecurringGenRightNow: genDate,
		RecurringTimeline:    strPtr(timeline),
		RecurringRepeatIndex: intPtr(repeatIdx),
	}, nil
}
