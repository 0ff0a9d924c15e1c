package engine

import (
	"context"
	"fmt"

	"github.com/horia141/jupiter-sub011/internal/domain"
	"github.com/horia141/jupiter-sub011/internal/schedule"
	"github.com/horia141/jupiter-sub011/internal/storage"
)

func getTimePlan(ctx context.Context, store *storage.Store, ref domain.Ref) (domain.TimePlan, error) {
	p, err := store.TimePlans.Get(ctx, ref)
	if err != nil {
		return domain.TimePlan{}, err
	}
	if p == nil {
		return domain.TimePlan{}, domain.NotFoundError{Kind: "time plan", Ref: ref}
	}
	return *p, nil
}

func getActivity(ctx context.Context, store *storage.Store, ref domain.Ref) (domain.TimePlanActivity, error) {
	a, err := store.Activities.Get(ctx, ref)
	if err != nil {
		return domain.TimePlanActivity{}, err
	}
	if a == nil {
		return domain.TimePlanActivity{}, domain.NotFoundError{Kind: "time plan activity", Ref: ref}
	}
	return *a, nil
}

type CreateTimePlanArgs struct {
	RightNow *schedule.ADate
	Period   schedule.Period
}

// CreateTimePlan opens the plan for the bucket containing RightNow
// (today when unset). At most one plan exists per bucket.
func (s *Service) CreateTimePlan(ctx context.Context, args CreateTimePlanArgs) (domain.TimePlan, error) {
	stamp := s.stamp()
	var out domain.TimePlan
	err := s.uow(ctx, func(store *storage.Store) error {
		ws, err := loadWorkspace(ctx, store)
		if err != nil {
			return err
		}
		if err := checkFeature(ws, domain.FeatureTimePlans); err != nil {
			return err
		}
		rightNow := args.RightNow
		if rightNow == nil {
			user, err := loadUser(ctx, store)
			if err != nil {
				return err
			}
			today := todayFor(user)
			rightNow = &today
		}
		plan, err := domain.NewTimePlan(stamp, ws.Ref, *rightNow, args.Period)
		if err != nil {
			return err
		}
		existing, err := store.TimePlans.FindByTimeline(ctx, ws.Ref, plan.Period, plan.Timeline)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.AlreadyExistsError{Kind: "time plan", Key: fmt.Sprintf("%s %s", plan.Period, plan.Timeline)}
		}
		out, err = store.TimePlans.Create(ctx, plan)
		return err
	})
	if err != nil {
		return domain.TimePlan{}, err
	}
	s.reportCreated(ctx, domain.EntityKindTimePlan, out.Ref, out.Name().String())
	return out, nil
}

func (s *Service) ArchiveTimePlan(ctx context.Context, ref domain.Ref) ([]EntitySummary, error) {
	stamp := s.stamp()
	var archived []EntitySummary
	err := s.uow(ctx, func(store *storage.Store) error {
		user, err := loadUser(ctx, store)
		if err != nil {
			return err
		}
		plan, err := getTimePlan(ctx, store, ref)
		if err != nil {
			return err
		}
		c := newCascade(store, stamp, user, todayFor(user))
		if err := c.timePlan(ctx, plan, domain.ArchiveReasonUser); err != nil {
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

func (s *Service) ListTimePlans(ctx context.Context) ([]domain.TimePlan, error) {
	store := s.Store()
	ws, err := loadWorkspace(ctx, store)
	if err != nil {
		return nil, err
	}
	return store.TimePlans.ListActive(ctx, ws.Ref)
}

type AddTimePlanActivityArgs struct {
	TimePlanRef domain.Ref
	Target      domain.TimePlanActivityTarget
	TargetRef   domain.Ref
	Kind        domain.TimePlanActivityKind
	Feasibility domain.TimePlanActivityFeasibility
}

// AddTimePlanActivity attaches a task or big plan to a plan. A plan
// carries at most one activity per target.
func (s *Service) AddTimePlanActivity(ctx context.Context, args AddTimePlanActivityArgs) (domain.TimePlanActivity, error) {
	stamp := s.stamp()
	var out domain.TimePlanActivity
	err := s.uow(ctx, func(store *storage.Store) error {
		plan, err := getTimePlan(ctx, store, args.TimePlanRef)
		if err != nil {
			return err
		}
		if plan.Archived {
			return domain.CannotModifyError{Kind: "time plan", Ref: plan.Ref, What: "entity is archived"}
		}
		switch args.Target {
		case domain.ActivityTargetInboxTask:
			if _, err := getInboxTask(ctx, store, args.TargetRef); err != nil {
				return err
			}
		case domain.ActivityTargetBigPlan:
			if _, err := getBigPlan(ctx, store, args.TargetRef); err != nil {
				return err
			}
		default:
			return domain.InputValidationError{Field: "target", Msg: string(args.Target)}
		}
		existing, err := store.Activities.FindByTarget(ctx, plan.Ref, args.Target, args.TargetRef)
		if err != nil {
			return err
		}
		if existing != nil && !existing.Archived {
			return domain.AlreadyExistsError{Kind: "time plan activity", Key: fmt.Sprintf("%s %d", args.Target, args.TargetRef)}
		}
		activity, err := domain.NewTimePlanActivity(stamp, plan.Ref, args.Target, args.TargetRef, args.Kind, args.Feasibility)
		if err != nil {
			return err
		}
		out, err = store.Activities.Create(ctx, activity)
		return err
	})
	if err != nil {
		return domain.TimePlanActivity{}, err
	}
	s.reportCreated(ctx, domain.EntityKindTimePlanActivity, out.Ref, "")
	return out, nil
}

type UpdateTimePlanActivityArgs struct {
	Ref         domain.Ref
	Kind        *domain.TimePlanActivityKind
	Feasibility *domain.TimePlanActivityFeasibility
}

func (s *Service) UpdateTimePlanActivity(ctx context.Context, args UpdateTimePlanActivityArgs) (domain.TimePlanActivity, error) {
	stamp := s.stamp()
	var out domain.TimePlanActivity
	err := s.uow(ctx, func(store *storage.Store) error {
		activity, err := getActivity(ctx, store, args.Ref)
		if err != nil {
			return err
		}
		activity, err = activity.Update(stamp, domain.TimePlanActivityUpdate{
			Kind:        args.Kind,
			Feasibility: args.Feasibility,
		})
		if err != nil {
			return err
		}
		out, err = store.Activities.Save(ctx, activity)
		return err
	})
	if err != nil {
		return domain.TimePlanActivity{}, err
	}
	s.reportUpdated(ctx, domain.EntityKindTimePlanActivity, out.Ref, "")
	return out, nil
}

func (s *Service) ArchiveTimePlanActivity(ctx context.Context, ref domain.Ref) (domain.TimePlanActivity, error) {
	stamp := s.stamp()
	var out domain.TimePlanActivity
	err := s.uow(ctx, func(store *storage.Store) error {
		activity, err := getActivity(ctx, store, ref)
		if err != nil {
			return err
		}
		activity = activity.Archive(stamp, domain.ArchiveReasonUser)
		out, err = store.Activities.Save(ctx, activity)
		return err
	})
	if err != nil {
		return domain.TimePlanActivity{}, err
	}
	s.reportArchived(ctx, domain.EntityKindTimePlanActivity, out.Ref, "")
	return out, nil
}

func (s *Service) ListTimePlanActivities(ctx context.Context, planRef domain.Ref) ([]domain.TimePlanActivity, error) {
	store := s.Store()
	if _, err := getTimePlan(ctx, store, planRef); err != nil {
		return nil, err
	}
	return store.Activities.ListByPlan(ctx, planRef)
}
