package engine

import (
	"context"

	"github.com/horia141/jupiter-sub011/internal/domain"
	"github.com/horia141/jupiter-sub011/internal/schedule"
	"github.com/horia141/jupiter-sub011/internal/storage"
)

func getInboxTask(ctx context.Context, store *storage.Store, ref domain.Ref) (domain.InboxTask, error) {
	t, err := store.InboxTasks.Get(ctx, ref)
	if err != nil {
		return domain.InboxTask{}, err
	}
	if t == nil {
		return domain.InboxTask{}, domain.NotFoundError{Kind: "inbox task", Ref: ref}
	}
	return *t, nil
}

type CreateInboxTaskArgs struct {
	Name           domain.EntityName
	ProjectRef     domain.Ref
	Eisen          domain.Eisen
	Difficulty     domain.Difficulty
	BigPlanRef     *domain.Ref
	ActionableDate *schedule.ADate
	DueDate        *schedule.ADate
}

func (s *Service) CreateInboxTask(ctx context.Context, args CreateInboxTaskArgs) (domain.InboxTask, error) {
	stamp := s.stamp()
	var out domain.InboxTask
	err := s.uow(ctx, func(store *storage.Store) error {
		ws, err := loadWorkspace(ctx, store)
		if err != nil {
			return err
		}
		if err := checkFeature(ws, domain.FeatureInboxTasks); err != nil {
			return err
		}
		project, err := resolveProject(ctx, store, ws, args.ProjectRef)
		if err != nil {
			return err
		}
		if args.BigPlanRef != nil {
			if _, err := getBigPlan(ctx, store, *args.BigPlanRef); err != nil {
				return err
			}
		}
		task := domain.NewInboxTask(stamp, domain.NewInboxTaskInput{
			WorkspaceRef:   ws.Ref,
			ProjectRef:     project.Ref,
			Name:           args.Name,
			Eisen:          args.Eisen,
			Difficulty:     args.Difficulty,
			BigPlanRef:     args.BigPlanRef,
			ActionableDate: args.ActionableDate,
			DueDate:        args.DueDate,
		})
		out, err = store.InboxTasks.Create(ctx, task)
		return err
	})
	if err != nil {
		return domain.InboxTask{}, err
	}
	s.reportCreated(ctx, domain.EntityKindInboxTask, out.Ref, out.Name.String())
	return out, nil
}

type UpdateInboxTaskArgs struct {
	Ref            domain.Ref
	Name           *domain.EntityName
	Eisen          *domain.Eisen
	Difficulty     *domain.Difficulty
	ActionableDate *schedule.ADate
	DueDate        *schedule.ADate
	ClearDates     bool
}

func (s *Service) UpdateInboxTask(ctx context.Context, args UpdateInboxTaskArgs) (domain.InboxTask, error) {
	stamp := s.stamp()
	var out domain.InboxTask
	err := s.uow(ctx, func(store *storage.Store) error {
		task, err := getInboxTask(ctx, store, args.Ref)
		if err != nil {
			return err
		}
		task, err = task.Update(stamp, domain.InboxTaskUpdate{
			Name:           args.Name,
			Eisen:          args.Eisen,
			Difficulty:     args.Difficulty,
			ActionableDate: args.ActionableDate,
			DueDate:        args.DueDate,
			ClearDates:     args.ClearDates,
		})
		if err != nil {
			return err
		}
		out, err = store.InboxTasks.Save(ctx, task)
		return err
	})
	if err != nil {
		return domain.InboxTask{}, err
	}
	s.reportUpdated(ctx, domain.EntityKindInboxTask, out.Ref, out.Name.String())
	return out, nil
}

// ChangeInboxTaskStatus moves a task through its lifecycle and folds the
// transition into the score log when gamification is on.
func (s *Service) ChangeInboxTaskStatus(ctx context.Context, ref domain.Ref, status domain.InboxTaskStatus) (domain.InboxTask, error) {
	stamp := s.stamp()
	var out domain.InboxTask
	err := s.uow(ctx, func(store *storage.Store) error {
		ws, err := loadWorkspace(ctx, store)
		if err != nil {
			return err
		}
		task, err := getInboxTask(ctx, store, ref)
		if err != nil {
			return err
		}
		wasCompleted := task.Status.IsCompleted()
		task, err = task.ChangeStatus(stamp, status)
		if err != nil {
			return err
		}
		out, err = store.InboxTasks.Save(ctx, task)
		if err != nil {
			return err
		}

		if wasCompleted == task.Status.IsCompleted() && !task.Status.IsCompleted() {
			return nil
		}
		if !ws.FeatureFlags.IsEnabled(domain.FeatureGamification) {
			return nil
		}
		user, err := loadUser(ctx, store)
		if err != nil {
			return err
		}
		sc := scoreCtx{store: store, stamp: stamp, user: user, today: todayFor(user)}
		return recordScore(ctx, sc, domain.ScoreSourceInboxTask, task.Ref, task.Difficulty,
			task.Status.IsCompleted(), task.Status == domain.InboxTaskStatusDone)
	})
	if err != nil {
		return domain.InboxTask{}, err
	}
	s.reportUpdated(ctx, domain.EntityKindInboxTask, out.Ref, out.Name.String())
	return out, nil
}

// MoveInboxTask relocates a user task to another project.
func (s *Service) MoveInboxTask(ctx context.Context, ref, projectRef domain.Ref) (domain.InboxTask, error) {
	stamp := s.stamp()
	var out domain.InboxTask
	err := s.uow(ctx, func(store *storage.Store) error {
		task, err := getInboxTask(ctx, store, ref)
		if err != nil {
			return err
		}
		if _, err := getProject(ctx, store, projectRef); err != nil {
			return err
		}
		task, err = task.ChangeProject(stamp, projectRef)
		if err != nil {
			return err
		}
		out, err = store.InboxTasks.Save(ctx, task)
		return err
	})
	if err != nil {
		return domain.InboxTask{}, err
	}
	s.reportUpdated(ctx, domain.EntityKindInboxTask, out.Ref, out.Name.String())
	return out, nil
}

func (s *Service) ArchiveInboxTask(ctx context.Context, ref domain.Ref) ([]EntitySummary, error) {
	stamp := s.stamp()
	var archived []EntitySummary
	err := s.uow(ctx, func(store *storage.Store) error {
		user, err := loadUser(ctx, store)
		if err != nil {
			return err
		}
		task, err := getInboxTask(ctx, store, ref)
		if err != nil {
			return err
		}
		c := newCascade(store, stamp, user, todayFor(user))
		if err := c.inboxTask(ctx, task, domain.ArchiveReasonUser); err != nil {
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
	return archived, nil
}

func (s *Service) ListInboxTasks(ctx context.Context) ([]domain.InboxTask, error) {
	store := s.Store()
	ws, err := loadWorkspace(ctx, store)
	if err != nil {
		return nil, err
	}
	return store.InboxTasks.ListActive(ctx, ws.Ref)
}
