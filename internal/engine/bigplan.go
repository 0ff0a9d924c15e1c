package engine

import (
	"context"

	"github.com/horia141/jupiter-sub011/internal/domain"
	"github.com/horia141/jupiter-sub011/internal/schedule"
	"github.com/horia141/jupiter-sub011/internal/storage"
)

func getBigPlan(ctx context.Context, store *storage.Store, ref domain.Ref) (domain.BigPlan, error) {
	b, err := store.BigPlans.Get(ctx, ref)
	if err != nil {
		return domain.BigPlan{}, err
	}
	if b == nil {
		return domain.BigPlan{}, domain.NotFoundError{Kind: "big plan", Ref: ref}
	}
	return *b, nil
}

type CreateBigPlanArgs struct {
	Name           domain.EntityName
	ProjectRef     domain.Ref
	ActionableDate *schedule.ADate
	DueDate        *schedule.ADate
}

func (s *Service) CreateBigPlan(ctx context.Context, args CreateBigPlanArgs) (domain.BigPlan, error) {
	stamp := s.stamp()
	var out domain.BigPlan
	err := s.uow(ctx, func(store *storage.Store) error {
		ws, err := loadWorkspace(ctx, store)
		if err != nil {
			return err
		}
		if err := checkFeature(ws, domain.FeatureBigPlans); err != nil {
			return err
		}
		project, err := resolveProject(ctx, store, ws, args.ProjectRef)
		if err != nil {
			return err
		}
		plan := domain.NewBigPlan(stamp, ws.Ref, project.Ref, args.Name, args.ActionableDate, args.DueDate)
		out, err = store.BigPlans.Create(ctx, plan)
		return err
	})
	if err != nil {
		return domain.BigPlan{}, err
	}
	s.reportCreated(ctx, domain.EntityKindBigPlan, out.Ref, out.Name.String())
	return out, nil
}

type UpdateBigPlanArgs struct {
	Ref            domain.Ref
	Name           *domain.EntityName
	ProjectRef     *domain.Ref
	ActionableDate *schedule.ADate
	DueDate        *schedule.ADate
}

func (s *Service) UpdateBigPlan(ctx context.Context, args UpdateBigPlanArgs) (domain.BigPlan, error) {
	stamp := s.stamp()
	var out domain.BigPlan
	err := s.uow(ctx, func(store *storage.Store) error {
		plan, err := getBigPlan(ctx, store, args.Ref)
		if err != nil {
			return err
		}
		if args.ProjectRef != nil {
			if _, err := getProject(ctx, store, *args.ProjectRef); err != nil {
				return err
			}
		}
		plan, err = plan.Update(stamp, domain.BigPlanUpdate{
			Name:           args.Name,
			ProjectRef:     args.ProjectRef,
			ActionableDate: args.ActionableDate,
			DueDate:        args.DueDate,
		})
		if err != nil {
			return err
		}
		out, err = store.BigPlans.Save(ctx, plan)
		return err
	})
	if err != nil {
		return domain.BigPlan{}, err
	}
	s.reportUpdated(ctx, domain.EntityKindBigPlan, out.Ref, out.Name.String())
	return out, nil
}

// ChangeBigPlanStatus moves a plan through its lifecycle. Completing a
// plan is worth a fixed score regardless of size.
func (s *Service) ChangeBigPlanStatus(ctx context.Context, ref domain.Ref, status domain.BigPlanStatus) (domain.BigPlan, error) {
	stamp := s.stamp()
	var out domain.BigPlan
	err := s.uow(ctx, func(store *storage.Store) error {
		ws, err := loadWorkspace(ctx, store)
		if err != nil {
			return err
		}
		plan, err := getBigPlan(ctx, store, ref)
		if err != nil {
			return err
		}
		wasCompleted := plan.Status.IsCompleted()
		plan, err = plan.ChangeStatus(stamp, status)
		if err != nil {
			return err
		}
		out, err = store.BigPlans.Save(ctx, plan)
		if err != nil {
			return err
		}

		if wasCompleted == plan.Status.IsCompleted() && !plan.Status.IsCompleted() {
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
		return recordScore(ctx, sc, domain.ScoreSourceBigPlan, plan.Ref, domain.DifficultyHard,
			plan.Status.IsCompleted(), plan.Status == domain.BigPlanStatusDone)
	})
	if err != nil {
		return domain.BigPlan{}, err
	}
	s.reportUpdated(ctx, domain.EntityKindBigPlan, out.Ref, out.Name.String())
	return out, nil
}

func (s *Service) ArchiveBigPlan(ctx context.Context, ref domain.Ref) ([]EntitySummary, error) {
	stamp := s.stamp()
	var archived []EntitySummary
	err := s.uow(ctx, func(store *storage.Store) error {
		user, err := loadUser(ctx, store)
		if err != nil {
			return err
		}
		plan, err := getBigPlan(ctx, store, ref)
		if err != nil {
			return err
		}
		c := newCascade(store, stamp, user, todayFor(user))
		if err := c.bigPlan(ctx, plan, domain.ArchiveReasonUser); err != nil {
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

func (s *Service) ListBigPlans(ctx context.Context) ([]domain.BigPlan, error) {
	store := s.Store()
	ws, err := loadWorkspace(ctx, store)
	if err != nil {
		return nil, err
	}
	return store.BigPlans.ListActive(ctx, ws.Ref)
}
