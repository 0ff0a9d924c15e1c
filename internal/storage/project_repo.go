package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/horia141/jupiter-sub011/internal/domain"
)

type ProjectRepo struct {
	q Querier
}

func NewProjectRepo(q Querier) *ProjectRepo {
	return &ProjectRepo{q: q}
}

const projectCols = entityHeadColumns + ", workspace_ref, parent_project_ref, name"

func projectVals(p domain.Project) []any {
	return []any{int64(p.WorkspaceRef), nullRef(p.ParentProjectRef), p.Name.String()}
}

var projectExtraCols = []string{"workspace_ref", "parent_project_ref", "name"}

func (r *ProjectRepo) Create(ctx context.Context, p domain.Project) (domain.Project, error) {
	ref, err := insertEntity(ctx, r.q, "projects", p.Entity, projectExtraCols, projectVals(p))
	if err != nil {
		return p, err
	}
	p.Entity.Ref = ref
	p.Entity = p.Entity.ClearEvents()
	return p, nil
}

func (r *ProjectRepo) Save(ctx context.Context, p domain.Project) (domain.Project, error) {
	if err := updateEntity(ctx, r.q, "projects", "project", p.Entity, projectExtraCols, projectVals(p)); err != nil {
		return p, err
	}
	p.Entity = p.Entity.ClearEvents()
	return p, nil
}

func (r *ProjectRepo) Get(ctx context.Context, ref domain.Ref) (*domain.Project, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+projectCols+` FROM projects WHERE id = ?`, int64(ref))
	return scanProject(row)
}

// GetRoot finds the single parentless project of the workspace.
func (r *ProjectRepo) GetRoot(ctx context.Context, workspaceRef domain.Ref) (*domain.Project, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+projectCols+` FROM projects
		WHERE workspace_ref = ? AND parent_project_ref IS NULL AND archived = 0
	`, int64(workspaceRef))
	return scanProject(row)
}

func (r *ProjectRepo) ListActive(ctx context.Context, workspaceRef domain.Ref) ([]domain.Project, error) {
	return r.list(ctx, `
		SELECT `+projectCols+` FROM projects
		WHERE workspace_ref = ? AND archived = 0
		ORDER BY id ASC
	`, int64(workspaceRef))
}

func (r *ProjectRepo) ListChildren(ctx context.Context, parentRef domain.Ref) ([]domain.Project, error) {
	return r.list(ctx, `
		SELECT `+projectCols+` FROM projects
		WHERE parent_project_ref = ? AND archived = 0
		ORDER BY id ASC
	`, int64(parentRef))
}

func (r *ProjectRepo) list(ctx context.Context, query string, args ...any) ([]domain.Project, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("project list: %w", err)
	}
	defer rows.Close()

	var out []domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("project rows: %w", err)
	}
	return out, nil
}

func scanProject(row scanner) (*domain.Project, error) {
	var (
		head      entityRow
		workspace int64
		parent    sql.NullInt64
		name      string
	)
	dests := append(head.dests(), &workspace, &parent, &name)
	if err := row.Scan(dests...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("project scan: %w", err)
	}
	return &domain.Project{
		Entity:           head.toEntity(),
		WorkspaceRef:     domain.Ref(workspace),
		ParentProjectRef: refPtr(parent),
		Name:             domain.EntityName(name),
	}, nil
}
