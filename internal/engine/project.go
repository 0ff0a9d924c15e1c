package engine

import (
	"context"

	"github.com/horia141/jupiter-sub011/internal/domain"
	"github.com/horia141/jupiter-sub011/internal/storage"
)

// getProject fetches a live project or fails with NotFound.
func getProject(ctx context.Context, store *storage.Store, ref domain.Ref) (domain.Project, error) {
	p, err := store.Projects.Get(ctx, ref)
	if err != nil {
		return domain.Project{}, err
	}
	if p == nil || p.Archived {
		return domain.Project{}, domain.NotFoundError{Kind: "project", Ref: ref}
	}
	return *p, nil
}

// resolveProject maps a zero ref to the workspace default project.
func resolveProject(ctx context.Context, store *storage.Store, ws domain.Workspace, ref domain.Ref) (domain.Project, error) {
	if ref == 0 {
		ref = ws.DefaultProjectRef
	}
	return getProject(ctx, store, ref)
}

type CreateProjectArgs struct {
	Name      domain.EntityName
	ParentRef domain.Ref
}

func (s *Service) CreateProject(ctx context.Context, args CreateProjectArgs) (domain.Project, error) {
	stamp := s.stamp()
	var out domain.Project
	err := s.uow(ctx, func(store *storage.Store) error {
		ws, err := loadWorkspace(ctx, store)
		if err != nil {
			return err
		}
		parentRef := args.ParentRef
		if parentRef == 0 {
			root, err := store.Projects.GetRoot(ctx, ws.Ref)
			if err != nil {
				return err
			}
			if root == nil {
				return domain.NotFoundError{Kind: "project"}
			}
			parentRef = root.Ref
		} else if _, err := getProject(ctx, store, parentRef); err != nil {
			return err
		}
		out, err = store.Projects.Create(ctx, domain.NewProject(stamp, ws.Ref, &parentRef, args.Name))
		return err
	})
	if err != nil {
		return domain.Project{}, err
	}
	s.reportCreated(ctx, domain.EntityKindProject, out.Ref, out.Name.String())
	return out, nil
}

func (s *Service) UpdateProject(ctx context.Context, ref domain.Ref, name domain.EntityName) (domain.Project, error) {
	stamp := s.stamp()
	var out domain.Project
	err := s.uow(ctx, func(store *storage.Store) error {
		p, err := getProject(ctx, store, ref)
		if err != nil {
			return err
		}
		p, err = p.Update(stamp, domain.ProjectUpdate{Name: &name})
		if err != nil {
			return err
		}
		out, err = store.Projects.Save(ctx, p)
		return err
	})
	if err != nil {
		return domain.Project{}, err
	}
	s.reportUpdated(ctx, domain.EntityKindProject, out.Ref, out.Name.String())
	return out, nil
}

// MoveProject reparents a project, refusing the root and cycles.
func (s *Service) MoveProject(ctx context.Context, ref, newParentRef domain.Ref) (domain.Project, error) {
	stamp := s.stamp()
	var out domain.Project
	err := s.uow(ctx, func(store *storage.Store) error {
		p, err := getProject(ctx, store, ref)
		if err != nil {
			return err
		}
		parent, err := getProject(ctx, store, newParentRef)
		if err != nil {
			return err
		}

		// Walk up from the new parent; hitting p means a cycle.
		cursor := parent
		for {
			if cursor.Ref == p.Ref {
				return domain.InputValidationError{Field: "parent", Msg: "would create a project cycle"}
			}
			if cursor.ParentProjectRef == nil {
				break
			}
			cursor, err = getProject(ctx, store, *cursor.ParentProjectRef)
			if err != nil {
				return err
			}
		}

		p, err = p.ChangeParent(stamp, newParentRef)
		if err != nil {
			return err
		}
		out, err = store.Projects.Save(ctx, p)
		return err
	})
	if err != nil {
		return domain.Project{}, err
	}
	s.reportUpdated(ctx, domain.EntityKindProject, out.Ref, out.Name.String())
	return out, nil
}

// ArchiveProject archives the project subtree: child projects, habits,
// chores, big plans and inbox tasks homed anywhere under it. The root
// project and the workspace default project refuse archival.
func (s *Service) ArchiveProject(ctx context.Context, ref domain.Ref) ([]EntitySummary, error) {
	stamp := s.stamp()
	var archived []EntitySummary
	err := s.uow(ctx, func(store *storage.Store) error {
		ws, err := loadWorkspace(ctx, store)
		if err != nil {
			return err
		}
		user, err := loadUser(ctx, store)
		if err != nil {
			return err
		}
		p, err := getProject(ctx, store, ref)
		if err != nil {
			return err
		}
		if p.IsRoot() {
			return domain.CannotModifyError{Kind: "project", Ref: ref, What: "the root project cannot be archived"}
		}
		if ws.DefaultProjectRef == ref {
			return domain.CannotModifyError{Kind: "project", Ref: ref, What: "the default project cannot be archived"}
		}

		c := newCascade(store, stamp, user, todayFor(user))
		if err := c.project(ctx, p, domain.ArchiveReasonUser); err != nil {
			return err
		}
		archived = c.archived
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, summary := range archived {
		s.reportArchived(ctx, summary.Kind, summary.Ref, summary.Name)
	}
	s.log.Info().Int("archived", len(archived)).Int64("project", int64(ref)).Msg("project archived")
	return archived, nil
}

func (s *Service) ListProjects(ctx context.Context) ([]domain.Project, error) {
	store := s.Store()
	ws, err := loadWorkspace(ctx, store)
	if err != nil {
		return nil, err
	}
	return store.Projects.ListActive(ctx, ws.Ref)
}
