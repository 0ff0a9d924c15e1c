package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/horia141/jupiter-sub011/internal/domain"
)

type HabitRepo struct {
	q Querier
}

func NewHabitRepo(q Querier) *HabitRepo {
	return &HabitRepo{q: q}
}

const habitCols = entityHeadColumns + `, workspace_ref, project_ref, name,
	gen_period, gen_eisen, gen_difficulty, gen_actionable_from_day, gen_actionable_from_month,
	gen_due_at_day, gen_due_at_month, gen_skip_rule,
	suspended, start_date, end_date, repeats_in_period`

var habitExtraCols = append(append([]string{"workspace_ref", "project_ref", "name"}, genParamsCols...),
	"suspended", "start_date", "end_date", "repeats_in_period")

func habitVals(h domain.Habit) []any {
	vals := []any{int64(h.WorkspaceRef), int64(h.ProjectRef), h.Name.String()}
	vals = append(vals, genParamsVals(&h.GenParams)...)
	return append(vals, boolToInt(h.Suspended), nullDate(h.StartDate), nullDate(h.EndDate), nullInt(h.RepeatsInPeriodCount))
}

func (r *HabitRepo) Create(ctx context.Context, h domain.Habit) (domain.Habit, error) {
	ref, err := insertEntity(ctx, r.q, "habits", h.Entity, habitExtraCols, habitVals(h))
	if err != nil {
		return h, err
	}
	h.Entity.Ref = ref
	h.Entity = h.Entity.ClearEvents()
	return h, nil
}

func (r *HabitRepo) Save(ctx context.Context, h domain.Habit) (domain.Habit, error) {
	if err := updateEntity(ctx, r.q, "habits", "habit", h.Entity, habitExtraCols, habitVals(h)); err != nil {
		return h, err
	}
	h.Entity = h.Entity.ClearEvents()
	return h, nil
}

func (r *HabitRepo) Get(ctx context.Context, ref domain.Ref) (*domain.Habit, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+habitCols+` FROM habits WHERE id = ?`, int64(ref))
	return scanHabit(row)
}

func (r *HabitRepo) ListActive(ctx context.Context, workspaceRef domain.Ref) ([]domain.Habit, error) {
	return r.list(ctx, `
		SELECT `+habitCols+` FROM habits
		WHERE workspace_ref = ? AND archived = 0
		ORDER BY id ASC
	`, int64(workspaceRef))
}

func (r *HabitRepo) ListByProject(ctx context.Context, projectRef domain.Ref) ([]domain.Habit, error) {
	return r.list(ctx, `
		SELECT `+habitCols+` FROM habits
		WHERE project_ref = ? AND archived = 0
		ORDER BY id ASC
	`, int64(projectRef))
}

func (r *HabitRepo) list(ctx context.Context, query string, args ...any) ([]domain.Habit, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("habit list: %w", err)
	}
	defer rows.Close()

	var out []domain.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("habit rows: %w", err)
	}
	return out, nil
}

func scanHabit(row scanner) (*domain.Habit, error) {
	var (
		head      entityRow
		workspace int64
		project   int64
		name      string
		params    genParamsRow
		suspended int
		startDate sql.NullString
		endDate   sql.NullString
		repeats   sql.NullInt64
	)
	dests := append(head.dests(), &workspace, &project, &name)
	dests = append(dests, params.dests()...)
	dests = append(dests, &suspended, &startDate, &endDate, &repeats)
	if err := row.Scan(dests...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("habit scan: %w", err)
	}

	genParams := params.toParams()
	if genParams == nil {
		return nil, fmt.Errorf("habit %d has no gen params", head.id)
	}
	start, err := datePtr(startDate)
	if err != nil {
		return nil, fmt.Errorf("habit start date: %w", err)
	}
	end, err := datePtr(endDate)
	if err != nil {
		return nil, fmt.Errorf("habit end date: %w", err)
	}

	return &domain.Habit{
		Entity:               head.toEntity(),
		WorkspaceRef:         domain.Ref(workspace),
		ProjectRef:           domain.Ref(project),
		Name:                 domain.EntityName(name),
		GenParams:            *genParams,
		Suspended:            suspended != 0,
		StartDate:            start,
		EndDate:              end,
		RepeatsInPeriodCount: intPtr(repeats),
	}, nil
}

type ChoreRepo struct {
	q Querier
}

func NewChoreRepo(q Querier) *ChoreRepo {
	return &ChoreRepo{q: q}
}

const choreCols = entityHeadColumns + `, workspace_ref, project_ref, name,
	gen_period, gen_eisen, gen_difficulty, gen_actionable_from_day, gen_actionable_from_month,
	gen_due_at_day, gen_due_at_month, gen_skip_rule,
	suspended, must_do, start_date, end_date`

var choreExtraCols = append(append([]string{"workspace_ref", "project_ref", "name"}, genParamsCols...),
	"suspended", "must_do", "start_date", "end_date")

func choreVals(c domain.Chore) []any {
	vals := []any{int64(c.WorkspaceRef), int64(c.ProjectRef), c.Name.String()}
	vals = append(vals, genParamsVals(&c.GenParams)...)
	return append(vals, boolToInt(c.Suspended), boolToInt(c.MustDo), nullDate(c.StartDate), nullDate(c.EndDate))
}

func (r *ChoreRepo) Create(ctx context.Context, c domain.Chore) (domain.Chore, error) {
	ref, err := insertEntity(ctx, r.q, "chores", c.Entity, choreExtraCols, choreVals(c))
	if err != nil {
		return c, err
	}
	c.Entity.Ref = ref
	c.Entity = c.Entity.ClearEvents()
	return c, nil
}

func (r *ChoreRepo) Save(ctx context.Context, c domain.Chore) (domain.Chore, error) {
	if err := updateEntity(ctx, r.q, "chores", "chore", c.Entity, choreExtraCols, choreVals(c)); err != nil {
		return c, err
	}
	c.Entity = c.Entity.ClearEvents()
	return c, nil
}

func (r *ChoreRepo) Get(ctx context.Context, ref domain.Ref) (*domain.Chore, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+choreCols+` FROM chores WHERE id = ?`, int64(ref))
	return scanChore(row)
}

func (r *ChoreRepo) ListActive(ctx context.Context, workspaceRef domain.Ref) ([]domain.Chore, error) {
	return r.list(ctx, `
		SELECT `+choreCols+` FROM chores
		WHERE workspace_ref = ? AND archived = 0
		ORDER BY id ASC
	`, int64(workspaceRef))
}

func (r *ChoreRepo) ListByProject(ctx context.Context, projectRef domain.Ref) ([]domain.Chore, error) {
	return r.list(ctx, `
		SELECT `+choreCols+` FROM chores
		WHERE project_ref = ? AND archived = 0
		ORDER BY id ASC
	`, int64(projectRef))
}

func (r *ChoreRepo) list(ctx context.Context, query string, args ...any) ([]domain.Chore, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("chore list: %w", err)
	}
	defer rows.Close()

	var out []domain.Chore
	for rows.Next() {
		c, err := scanChore(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("chore rows: %w", err)
	}
	return out, nil
}

func scanChore(row scanner) (*domain.Chore, error) {
	var (
		head      entityRow
		workspace int64
		project   int64
		name      string
		params    genParamsRow
		suspended int
		mustDo    int
		startDate sql.NullString
		endDate   sql.NullString
	)
	dests := append(head.dests(), &workspace, &project, &name)
	dests = append(dests, params.dests()...)
	dests = append(dests, &suspended, &mustDo, &startDate, &endDate)
	if err := row.Scan(dests...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("chore scan: %w", err)
	}

	genParams := params.toParams()
	if genParams == nil {
		return nil, fmt.Errorf("chore %d has no gen params", head.id)
	}
	start, err := datePtr(startDate)
	if err != nil {
		return nil, fmt.Errorf("chore start date: %w", err)
	}
	end, err := datePtr(endDate)
	if err != nil {
		return nil, fmt.Errorf("chore end date: %w", err)
	}

	return &domain.Chore{
		Entity:       head.toEntity(),
		WorkspaceRef: domain.Ref(workspace),
		ProjectRef:   domain.Ref(project),
		Name:         domain.EntityName(name),
		GenParams:    *genParams,
		Suspended:    suspended != 0,
		MustDo:       mustDo != 0,
		StartDate:    start,
		EndDate:      end,
	}, nil
}
