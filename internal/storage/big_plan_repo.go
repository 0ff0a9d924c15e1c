package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/horia141/jupiter-sub011/internal/domain"
)

type BigPlanRepo struct {
	q Querier
}

func NewBigPlanRepo(q Querier) *BigPlanRepo {
	return &BigPlanRepo{q: q}
}

const bigPlanCols = entityHeadColumns + `, workspace_ref, project_ref, name, status, actionable_date, due_date`

var bigPlanExtraCols = []string{"workspace_ref", "project_ref", "name", "status", "actionable_date", "due_date"}

func bigPlanVals(b domain.BigPlan) []any {
	return []any{
		int64(b.WorkspaceRef), int64(b.ProjectRef), b.Name.String(), string(b.Status),
		nullDate(b.ActionableDate), nullDate(b.DueDate),
	}
}

func (r *BigPlanRepo) Create(ctx context.Context, b domain.BigPlan) (domain.BigPlan, error) {
	ref, err := insertEntity(ctx, r.q, "big_plans", b.Entity, bigPlanExtraCols, bigPlanVals(b))
	if err != nil {
		return b, err
	}
	b.Entity.Ref = ref
	b.Entity = b.Entity.ClearEvents()
	return b, nil
}

func (r *BigPlanRepo) Save(ctx context.Context, b domain.BigPlan) (domain.BigPlan, error) {
	if err := updateEntity(ctx, r.q, "big_plans", "big plan", b.Entity, bigPlanExtraCols, bigPlanVals(b)); err != nil {
		return b, err
	}
	b.Entity = b.Entity.ClearEvents()
	return b, nil
}

func (r *BigPlanRepo) Get(ctx context.Context, ref domain.Ref) (*domain.BigPlan, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+bigPlanCols+` FROM big_plans WHERE id = ?`, int64(ref))
	return scanBigPlan(row)
}

func (r *BigPlanRepo) ListActive(ctx context.Context, workspaceRef domain.Ref) ([]domain.BigPlan, error) {
	return r.list(ctx, `
		SELECT `+bigPlanCols+` FROM big_plans
		WHERE workspace_ref = ? AND archived = 0
		ORDER BY id ASC
	`, int64(workspaceRef))
}

func (r *BigPlanRepo) ListByProject(ctx context.Context, projectRef domain.Ref) ([]domain.BigPlan, error) {
	return r.list(ctx, `
		SELECT `+bigPlanCols+` FROM big_plans
		WHERE project_ref = ? AND archived = 0
		ORDER BY id ASC
	`, int64(projectRef))
}

func (r *BigPlanRepo) list(ctx context.Context, query string, args ...any) ([]domain.BigPlan, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("big plan list: %w", err)
	}
	defer rows.Close()

	var out []domain.BigPlan
	for rows.Next() {
		b, err := scanBigPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("big plan rows: %w", err)
	}
	return out, nil
}

func scanBigPlan(row scanner) (*domain.BigPlan, error) {
	var (
		head       entityRow
		workspace  int64
		project    int64
		name       string
		status     string
		actionable sql.NullString
		due        sql.NullString
	)
	dests := append(head.dests(), &workspace, &project, &name, &status, &actionable, &due)
	if err := row.Scan(dests...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("big plan scan: %w", err)
	}

	actionableDate, err := datePtr(actionable)
	if err != nil {
		return nil, fmt.Errorf("big plan actionable date: %w", err)
	}
	dueDate, err := datePtr(due)
	if err != nil {
		return nil, fmt.Errorf("big plan due date: %w", err)
	}

	return &domain.BigPlan{
		Entity:         head.toEntity(),
		WorkspaceRef:   domain.Ref(workspace),
		ProjectRef:     domain.Ref(project),
		Name:           domain.EntityName(name),
		Status:         domain.BigPlanStatus(status),
		ActionableDate: actionableDate,
		DueDate:        dueDate,
	}, nil
}
