package engine

import (
	"context"

	"github.com/horia141/jupiter-sub011/internal/domain"
	"github.com/horia141/jupiter-sub011/internal/schedule"
	"github.com/horia141/jupiter-sub011/internal/storage"
)

type InitArgs struct {
	UserEmail     domain.EmailAddress
	UserName      domain.EntityName
	Timezone      domain.Timezone
	WorkspaceName domain.EntityName
}

type InitResult struct {
	User      domain.User
	Workspace domain.Workspace
	Root      domain.Project
	Default   domain.Project
}

// Init bootstraps the single user, workspace, root project and default
// project. Running it twice fails on the unique user email.
func (s *Service) Init(ctx context.Context, args InitArgs) (InitResult, error) {
	stamp := s.stamp()
	var out InitResult
	err := s.uow(ctx, func(store *storage.Store) error {
		existing, err := store.Workspaces.GetSingle(ctx)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.AlreadyExistsError{Kind: "workspace", Key: existing.Name.String()}
		}

		user, err := store.Users.Create(ctx, domain.NewUser(stamp, args.UserEmail, args.UserName, args.Timezone))
		if err != nil {
			return err
		}

		ws, err := store.Workspaces.Create(ctx, domain.NewWorkspace(stamp, args.WorkspaceName))
		if err != nil {
			return err
		}

		root, err := store.Projects.Create(ctx, domain.NewProject(stamp, ws.Ref, nil, "Work"))
		if err != nil {
			return err
		}
		def, err := store.Projects.Create(ctx, domain.NewProject(stamp, ws.Ref, &root.Ref, "Inbox"))
		if err != nil {
			return err
		}

		ws, err = ws.Update(stamp, domain.WorkspaceUpdate{DefaultProjectRef: &def.Ref})
		if err != nil {
			return err
		}
		ws, err = store.Workspaces.Save(ctx, ws)
		if err != nil {
			return err
		}

		out = InitResult{User: user, Workspace: ws, Root: root, Default: def}
		return nil
	})
	if err != nil {
		return InitResult{}, err
	}

	s.reportCreated(ctx, domain.EntityKindUser, out.User.Ref, out.User.Name.String())
	s.reportCreated(ctx, domain.EntityKindWorkspace, out.Workspace.Ref, out.Workspace.Name.String())
	s.reportCreated(ctx, domain.EntityKindProject, out.Root.Ref, out.Root.Name.String())
	s.reportCreated(ctx, domain.EntityKindProject, out.Default.Ref, out.Default.Name.String())
	s.log.Info().
		Str("workspace", out.Workspace.Name.String()).
		Str("user", out.User.Email.String()).
		Msg("workspace initialized")
	return out, nil
}

type UpdateWorkspaceArgs struct {
	Name              *domain.EntityName
	DefaultProjectRef *domain.Ref
	WorkingMemPeriod  *schedule.Period
	JournalPeriod     *schedule.Period
}

func (s *Service) UpdateWorkspace(ctx context.Context, args UpdateWorkspaceArgs) (domain.Workspace, error) {
	stamp := s.stamp()
	var out domain.Workspace
	err := s.uow(ctx, func(store *storage.Store) error {
		ws, err := loadWorkspace(ctx, store)
		if err != nil {
			return err
		}
		if args.DefaultProjectRef != nil {
			if _, err := getProject(ctx, store, *args.DefaultProjectRef); err != nil {
				return err
			}
		}
		ws, err = ws.Update(stamp, domain.WorkspaceUpdate{
			Name:              args.Name,
			DefaultProjectRef: args.DefaultProjectRef,
			WorkingMemPeriod:  args.WorkingMemPeriod,
			JournalPeriod:     args.JournalPeriod,
		})
		if err != nil {
			return err
		}
		out, err = store.Workspaces.Save(ctx, ws)
		return err
	})
	if err != nil {
		return domain.Workspace{}, err
	}
	s.reportUpdated(ctx, domain.EntityKindWorkspace, out.Ref, out.Name.String())
	return out, nil
}

// SetFeature flips a workspace feature flag.
func (s *Service) SetFeature(ctx context.Context, feature domain.Feature, enabled bool) (domain.Workspace, error) {
	stamp := s.stamp()
	var out domain.Workspace
	err := s.uow(ctx, func(store *storage.Store) error {
		ws, err := loadWorkspace(ctx, store)
		if err != nil {
			return err
		}
		ws, err = ws.ChangeFeature(stamp, feature, enabled)
		if err != nil {
			return err
		}
		out, err = store.Workspaces.Save(ctx, ws)
		return err
	})
	if err != nil {
		return domain.Workspace{}, err
	}
	s.log.Info().Str("feature", string(feature)).Bool("enabled", enabled).Msg("feature changed")
	return out, nil
}

type UpdateUserArgs struct {
	Name     *domain.EntityName
	Timezone *domain.Timezone
}

func (s *Service) UpdateUser(ctx context.Context, args UpdateUserArgs) (domain.User, error) {
	stamp := s.stamp()
	var out domain.User
	err := s.uow(ctx, func(store *storage.Store) error {
		user, err := loadUser(ctx, store)
		if err != nil {
			return err
		}
		user, err = user.Update(stamp, domain.UserUpdate{Name: args.Name, Timezone: args.Timezone})
		if err != nil {
			return err
		}
		out, err = store.Users.Save(ctx, user)
		return err
	})
	if err != nil {
		return domain.User{}, err
	}
	s.reportUpdated(ctx, domain.EntityKindUser, out.Ref, out.Name.String())
	return out, nil
}

// GetWorkspace is a read-only accessor for the CLI.
func (s *Service) GetWorkspace(ctx context.Context) (domain.Workspace, error) {
	return loadWorkspace(ctx, s.Store())
}

func (s *Service) GetUser(ctx context.Context) (domain.User, error) {
	return loadUser(ctx, s.Store())
}
