package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/horia141/jupiter-sub011/internal/domain"
	"github.com/horia141/jupiter-sub011/internal/schedule"
)

type TimePlanRepo struct {
	q Querier
}

func NewTimePlanRepo(q Querier) *TimePlanRepo {
	return &TimePlanRepo{q: q}
}

const timePlanCols = entityHeadColumns + `, workspace_ref, right_now, period, timeline`

var timePlanExtraCols = []string{"workspace_ref", "right_now", "period", "timeline"}

func timePlanVals(p domain.TimePlan) []any {
	return []any{int64(p.WorkspaceRef), p.RightNow.String(), string(p.Period), p.Timeline}
}

func (r *TimePlanRepo) Create(ctx context.Context, p domain.TimePlan) (domain.TimePlan, error) {
	ref, err := insertEntity(ctx, r.q, "time_plans", p.Entity, timePlanExtraCols, timePlanVals(p))
	if err != nil {
		return p, err
	}
	p.Entity.Ref = ref
	p.Entity = p.Entity.ClearEvents()
	return p, nil
}

func (r *TimePlanRepo) Save(ctx context.Context, p domain.TimePlan) (domain.TimePlan, error) {
	if err := updateEntity(ctx, r.q, "time_plans", "time plan", p.Entity, timePlanExtraCols, timePlanVals(p)); err != nil {
		return p, err
	}
	p.Entity = p.Entity.ClearEvents()
	return p, nil
}

func (r *TimePlanRepo) Get(ctx context.Context, ref domain.Ref) (*domain.TimePlan, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+timePlanCols+` FROM time_plans WHERE id = ?`, int64(ref))
	return scanTimePlan(row)
}

func (r *TimePlanRepo) FindByTimeline(ctx context.Context, workspaceRef domain.Ref, period schedule.Period, timeline string) (*domain.TimePlan, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+timePlanCols+` FROM time_plans
		WHERE workspace_ref = ? AND period = ? AND timeline = ? AND archived = 0
	`, int64(workspaceRef), string(period), timeline)
	return scanTimePlan(row)
}

func (r *TimePlanRepo) ListActive(ctx context.Context, workspaceRef domain.Ref) ([]domain.TimePlan, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+timePlanCols+` FROM time_plans
		WHERE workspace_ref = ? AND archived = 0
		ORDER BY right_now DESC, id DESC
	`, int64(workspaceRef))
	if err != nil {
		return nil, fmt.Errorf("time plan list: %w", err)
	}
	defer rows.Close()

	var out []domain.TimePlan
	for rows.Next() {
		p, err := scanTimePlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("time plan rows: %w", err)
	}
	return out, nil
}

func scanTimePlan(row scanner) (*domain.TimePlan, error) {
	var (
		head      entityRow
		workspace int64
		rightNow  string
		period    string
		timeline  string
	)
	dests := append(head.dests(), &workspace, &rightNow, &period, &timeline)
	if err := row.Scan(dests...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("time plan scan: %w", err)
	}

	when, err := schedule.ParseADate(rightNow)
	if err != nil {
		return nil, fmt.Errorf("time plan right now: %w", err)
	}

	return &domain.TimePlan{
		Entity:       head.toEntity(),
		WorkspaceRef: domain.Ref(workspace),
		RightNow:     when,
		Period:       schedule.Period(period),
		Timeline:     timeline,
	}, nil
}

type TimePlanActivityRepo struct {
	q Querier
}

func NewTimePlanActivityRepo(q Querier) *TimePlanActivityRepo {
	return &TimePlanActivityRepo{q: q}
}

const activityCols = entityHeadColumns + `, time_plan_ref, target, target_ref, kind, feasibility`

var activityExtraCols = []string{"time_plan_ref", "target", "target_ref", "kind", "feasibility"}

func activityVals(a domain.TimePlanActivity) []any {
	return []any{int64(a.TimePlanRef), string(a.Target), int64(a.TargetRef), string(a.Kind), string(a.Feasibility)}
}

func (r *TimePlanActivityRepo) Create(ctx context.Context, a domain.TimePlanActivity) (domain.TimePlanActivity, error) {
	ref, err := insertEntity(ctx, r.q, "time_plan_activities", a.Entity, activityExtraCols, activityVals(a))
	if err != nil {
		return a, err
	}
	a.Entity.Ref = ref
	a.Entity = a.Entity.ClearEvents()
	return a, nil
}

func (r *TimePlanActivityRepo) Save(ctx context.Context, a domain.TimePlanActivity) (domain.TimePlanActivity, error) {
	if err := updateEntity(ctx, r.q, "time_plan_activities", "time plan activity", a.Entity, activityExtraCols, activityVals(a)); err != nil {
		return a, err
	}
	a.Entity = a.Entity.ClearEvents()
	return a, nil
}

func (r *TimePlanActivityRepo) Get(ctx context.Context, ref domain.Ref) (*domain.TimePlanActivity, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+activityCols+` FROM time_plan_activities WHERE id = ?`, int64(ref))
	return scanActivity(row)
}

// FindByTarget locates the live activity for a target within one plan.
func (r *TimePlanActivityRepo) FindByTarget(ctx context.Context, planRef domain.Ref, target domain.TimePlanActivityTarget, targetRef domain.Ref) (*domain.TimePlanActivity, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+activityCols+` FROM time_plan_activities
		WHERE time_plan_ref = ? AND target = ? AND target_ref = ? AND archived = 0
	`, int64(planRef), string(target), int64(targetRef))
	return scanActivity(row)
}

func (r *TimePlanActivityRepo) ListByPlan(ctx context.Context, planRef domain.Ref) ([]domain.TimePlanActivity, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+activityCols+` FROM time_plan_activities
		WHERE time_plan_ref = ? AND archived = 0
		ORDER BY id ASC
	`, int64(planRef))
	if err != nil {
		return nil, fmt.Errorf("time plan activity list: %w", err)
	}
	defer rows.Close()

	var out []domain.TimePlanActivity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("time plan activity rows: %w", err)
	}
	return out, nil
}

func scanActivity(row scanner) (*domain.TimePlanActivity, error) {
	var (
		head        entityRow
		planRef     int64
		target      string
		targetRef   int64
		kind        string
		feasibility string
	)
	dests := append(head.dests(), &planRef, &target, &targetRef, &kind, &feasibility)
	if err := row.Scan(dests...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("time plan activity scan: %w", err)
	}

	return &domain.TimePlanActivity{
		Entity:      head.toEntity(),
		TimePlanRef: domain.Ref(planRef),
		Target:      domain.TimePlanActivityTarget(target),
		TargetRef:   domain.Ref(targetRef),
		Kind:        domain.TimePlanActivityKind(kind),
		Feasibility: domain.TimePlanActivityFeasibility(feasibility),
	}, nil
}
