package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/horia141/jupiter-sub011/internal/domain"
	"github.com/horia141/jupiter-sub011/internal/schedule"
)

type WorkspaceRepo struct {
	q Querier
}

func NewWorkspaceRepo(q Querier) *WorkspaceRepo {
	return &WorkspaceRepo{q: q}
}

const workspaceCols = entityHeadColumns + ", name, default_project_ref, feature_flags, working_mem_period, journal_period"

func (r *WorkspaceRepo) Create(ctx context.Context, w domain.Workspace) (domain.Workspace, error) {
	flags, err := marshalFlags(w.FeatureFlags)
	if err != nil {
		return w, err
	}
	ref, err := insertEntity(ctx, r.q, "workspaces", w.Entity,
		[]string{"name", "default_project_ref", "feature_flags", "working_mem_period", "journal_period"},
		[]any{w.Name.String(), nullableRefVal(w.DefaultProjectRef), flags, string(w.WorkingMemPeriod), string(w.JournalPeriod)})
	if err != nil {
		return w, err
	}
	w.Entity.Ref = ref
	w.Entity = w.Entity.ClearEvents()
	return w, nil
}

func (r *WorkspaceRepo) Save(ctx context.Context, w domain.Workspace) (domain.Workspace, error) {
	flags, err := marshalFlags(w.FeatureFlags)
	if err != nil {
		return w, err
	}
	err = updateEntity(ctx, r.q, "workspaces", "workspace", w.Entity,
		[]string{"name", "default_project_ref", "feature_flags", "working_mem_period", "journal_period"},
		[]any{w.Name.String(), nullableRefVal(w.DefaultProjectRef), flags, string(w.WorkingMemPeriod), string(w.JournalPeriod)})
	if err != nil {
		return w, err
	}
	w.Entity = w.Entity.ClearEvents()
	return w, nil
}

// GetSingle loads the workspace; local-first installs hold exactly one.
func (r *WorkspaceRepo) GetSingle(ctx context.Context) (*domain.Workspace, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+workspaceCols+` FROM workspaces ORDER BY id ASC LIMIT 1`)
	return scanWorkspace(row)
}

func (r *WorkspaceRepo) Get(ctx context.Context, ref domain.Ref) (*domain.Workspace, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+workspaceCols+` FROM workspaces WHERE id = ?`, int64(ref))
	return scanWorkspace(row)
}

func scanWorkspace(row scanner) (*domain.Workspace, error) {
	var (
		head           entityRow
		name           string
		defaultProject sql.NullInt64
		flagsRaw       string
		wmPeriod       string
		jPeriod        string
	)
	dests := append(head.dests(), &name, &defaultProject, &flagsRaw, &wmPeriod, &jPeriod)
	if err := row.Scan(dests...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("workspace scan: %w", err)
	}
	flags, err := unmarshalFlags(flagsRaw)
	if err != nil {
		return nil, err
	}
	w := domain.Workspace{
		Entity:           head.toEntity(),
		Name:             domain.EntityName(name),
		FeatureFlags:     flags,
		WorkingMemPeriod: schedule.Period(wmPeriod),
		JournalPeriod:    schedule.Period(jPeriod),
	}
	if defaultProject.Valid {
		w.DefaultProjectRef = domain.Ref(defaultProject.Int64)
	}
	return &w, nil
}

// nullableRefVal maps the zero ref to NULL; the workspace bootstraps
// before its default project exists.
func nullableRefVal(ref domain.Ref) any {
	if ref == 0 {
		return nil
	}
	return int64(ref)
}

type UserRepo struct {
	q Querier
}

func NewUserRepo(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

const userCols = entityHeadColumns + ", email, name, timezone, feature_flags"

func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	flags, err := marshalFlags(u.FeatureFlags)
	if err != nil {
		return u, err
	}
	ref, err := insertEntity(ctx, r.q, "users", u.Entity,
		[]string{"email", "name", "timezone", "feature_flags"},
		[]any{u.Email.String(), u.Name.String(), u.Timezone.String(), flags})
	if err != nil {
		return u, err
	}
	u.Entity.Ref = ref
	u.Entity = u.Entity.ClearEvents()
	return u, nil
}

func (r *UserRepo) Save(ctx context.Context, u domain.User) (domain.User, error) {
	flags, err := marshalFlags(u.FeatureFlags)
	if err != nil {
		return u, err
	}
	err = updateEntity(ctx, r.q, "users", "user", u.Entity,
		[]string{"email", "name", "timezone", "feature_flags"},
		[]any{u.Email.String(), u.Name.String(), u.Timezone.String(), flags})
	if err != nil {
		return u, err
	}
	u.Entity = u.Entity.ClearEvents()
	return u, nil
}

func (r *UserRepo) GetSingle(ctx context.Context) (*domain.User, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+userCols+` FROM users ORDER BY id ASC LIMIT 1`)
	return scanUser(row)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email domain.EmailAddress) (*domain.User, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE email = ?`, email.String())
	return scanUser(row)
}

func scanUser(row scanner) (*domain.User, error) {
	var (
		head     entityRow
		email    string
		name     string
		timezone string
		flagsRaw string
	)
	dests := append(head.dests(), &email, &name, &timezone, &flagsRaw)
	if err := row.Scan(dests...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("user scan: %w", err)
	}
	flags, err := unmarshalFlags(flagsRaw)
	if err != nil {
		return nil, err
	}
	return &domain.User{
		Entity:       head.toEntity(),
		Email:        domain.EmailAddress(email),
		Name:         domain.EntityName(name),
		Timezone:     domain.Timezone(timezone),
		FeatureFlags: flags,
	}, nil
}
