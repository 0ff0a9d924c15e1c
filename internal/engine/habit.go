package engine

import (
	"context"

	"github.com/horia141/jupiter-sub011/internal/domain"
	"github.com/horia141/jupiter-sub011/internal/schedule"
	"github.com/horia141/jupiter-sub011/internal/storage"
)

func getHabit(ctx context.Context, store *storage.Store, ref domain.Ref) (domain.Habit, error) {
	h, err := store.Habits.Get(ctx, ref)
	if err != nil {
		return domain.Habit{}, err
	}
	if h == nil {
		return domain.Habit{}, domain.NotFoundError{Kind: "habit", Ref: ref}
	}
	return *h, nil
}

type CreateHabitArgs struct {
	Name                 domain.EntityName
	ProjectRef           domain.Ref
	GenParams            domain.RecurringTaskGenParams
	StartDate            *schedule.ADate
	EndDate              *schedule.ADate
	RepeatsInPeriodCount *int
}

func (s *Service) CreateHabit(ctx context.Context, args CreateHabitArgs) (domain.Habit, error) {
	stamp := s.stamp()
	var out domain.Habit
	err := s.uow(ctx, func(store *storage.Store) error {
		ws, err := loadWorkspace(ctx, store)
		if err != nil {
			return err
		}
		if err := checkFeature(ws, domain.FeatureHabits); err != nil {
			return err
		}
		project, err := resolveProject(ctx, store, ws, args.ProjectRef)
		if err != nil {
			return err
		}
		habit, err := domain.NewHabit(stamp, domain.NewHabitInput{
			WorkspaceRef:         ws.Ref,
			ProjectRef:           project.Ref,
			Name:                 args.Name,
			GenParams:            args.GenParams,
			StartDate:            args.StartDate,
			EndDate:              args.EndDate,
			RepeatsInPeriodCount: args.RepeatsInPeriodCount,
		})
		if err != nil {
			return err
		}
		out, err = store.Habits.Create(ctx, habit)
		return err
	})
	if err != nil {
		return domain.Habit{}, err
	}
	s.reportCreated(ctx, domain.EntityKindHabit, out.Ref, out.Name.String())
	return out, nil
}

type UpdateHabitArgs struct {
	Ref                  domain.Ref
	Name                 *domain.EntityName
	ProjectRef           *domain.Ref
	GenParams            *domain.RecurringTaskGenParams
	StartDate            *schedule.ADate
	EndDate              *schedule.ADate
	RepeatsInPeriodCount *int
}

func (s *Service) UpdateHabit(ctx context.Context, args UpdateHabitArgs) (domain.Habit, error) {
	stamp := s.stamp()
	var out domain.Habit
	err := s.uow(ctx, func(store *storage.Store) error {
		habit, err := getHabit(ctx, store, args.Ref)
		if err != nil {
			return err
		}
		if args.ProjectRef != nil {
			if _, err := getProject(ctx, store, *args.ProjectRef); err != nil {
				return err
			}
		}
		habit, err = habit.Update(stamp, domain.HabitUpdate{
			Name:                 args.Name,
			ProjectRef:           args.ProjectRef,
			GenParams:            args.GenParams,
			StartDate:            args.StartDate,
			EndDate:              args.EndDate,
			RepeatsInPeriodCount: args.RepeatsInPeriodCount,
		})
		if err != nil {
			return err
		}
		out, err = store.Habits.Save(ctx, habit)
		return err
	})
	if err != nil {
		return domain.Habit{}, err
	}
	s.reportUpdated(ctx, domain.EntityKindHabit, out.Ref, out.Name.String())
	return out, nil
}

// SuspendHabit pauses generation; the next gen run archives the habit's
// open generated tasks.
func (s *Service) SuspendHabit(ctx context.Context, ref domain.Ref, suspended bool) (domain.Habit, error) {
	stamp := s.stamp()
	var out domain.Habit
	err := s.uow(ctx, func(store *storage.Store) error {
		habit, err := getHabit(ctx, store, ref)
		if err != nil {
			return err
		}
		if suspended {
			habit, err = habit.Suspend(stamp)
		} else {
			habit, err = habit.Unsuspend(stamp)
		}
		if err != nil {
			return err
		}
		out, err = store.Habits.Save(ctx, habit)
		return err
	})
	if err != nil {
		return domain.Habit{}, err
	}
	s.reportUpdated(ctx, domain.EntityKindHabit, out.Ref, out.Name.String())
	return out, nil
}

func (s *Service) ArchiveHabit(ctx context.Context, ref domain.Ref) ([]EntitySummary, error) {
	stamp := s.stamp()
	var archived []EntitySummary
	err := s.uow(ctx, func(store *storage.Store) error {
		user, err := loadUser(ctx, store)
		if err != nil {
			return err
		}
		habit, err := getHabit(ctx, store, ref)
		if err != nil {
			return err
		}
		c := newCascade(store, stamp, user, todayFor(user))
		if err := c.habit(ctx, habit, domain.ArchiveReasonUser); err != nil {
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

func (s *Service) ListHabits(ctx context.Context) ([]domain.Habit, error) {
	store := s.Store()
	ws, err := loadWorkspace(ctx, store)
	if err != nil {
		return nil, err
	}
	return store.Habits.ListActive(ctx, ws.Ref)
}

func getChore(ctx context.Context, store *storage.Store, ref domain.Ref) (domain.Chore, error) {
	ch, err := store.Chores.Get(ctx, ref)
	if err != nil {
		return domain.Chore{}, err
	}
	if ch == nil {
		return domain.Chore{}, domain.NotFoundError{Kind: "chore", Ref: ref}
	}
	return *ch, nil
}

type CreateChoreArgs struct {
	Name       domain.EntityName
	ProjectRef domain.Ref
	GenParams  domain.RecurringTaskGenParams
	MustDo     bool
	StartDate  *schedule.ADate
	EndDate    *schedule.ADate
}

func (s *Service) CreateChore(ctx context.Context, args CreateChoreArgs) (domain.Chore, error) {
	stamp := s.stamp()
	var out domain.Chore
	err := s.uow(ctx, func(store *storage.Store) error {
		ws, err := loadWorkspace(ctx, store)
		if err != nil {
			return err
		}
		if err := checkFeature(ws, domain.FeatureChores); err != nil {
			return err
		}
		project, err := resolveProject(ctx, store, ws, args.ProjectRef)
		if err != nil {
			return err
		}
		chore, err := domain.NewChore(stamp, domain.NewChoreInput{
			WorkspaceRef: ws.Ref,
			ProjectRef:   project.Ref,
			Name:         args.Name,
			GenParams:    args.GenParams,
			MustDo:       args.MustDo,
			StartDate:    args.StartDate,
			EndDate:      args.EndDate,
		})
		if err != nil {
			return err
		}
		out, err = store.Chores.Create(ctx, chore)
		return err
	})
	if err != nil {
		return domain.Chore{}, err
	}
	s.reportCreated(ctx, domain.EntityKindChore, out.Ref, out.Name.String())
	return out, nil
}

type UpdateChoreArgs struct {
	Ref        domain.Ref
	Name       *domain.EntityName
	ProjectRef *domain.Ref
	GenParams  *domain.RecurringTaskGenParams
	MustDo     *bool
	StartDate  *schedule.ADate
	EndDate    *schedule.ADate
}

func (s *Service) UpdateChore(ctx context.Context, args UpdateChoreArgs) (domain.Chore, error) {
	stamp := s.stamp()
	var out domain.Chore
	err := s.uow(ctx, func(store *storage.Store) error {
		chore, err := getChore(ctx, store, args.Ref)
		if err != nil {
			return err
		}
		if args.ProjectRef != nil {
			if _, err := getProject(ctx, store, *args.ProjectRef); err != nil {
				return err
			}
		}
		chore, err = chore.Update(stamp, domain.ChoreUpdate{
			Name:       args.Name,
			ProjectRef: args.ProjectRef,
			GenParams:  args.GenParams,
			MustDo:     args.MustDo,
			StartDate:  args.StartDate,
			EndDate:    args.EndDate,
		})
		if err != nil {
			return err
		}
		out, err = store.Chores.Save(ctx, chore)
		return err
	})
	if err != nil {
		return domain.Chore{}, err
	}
	s.reportUpdated(ctx, domain.EntityKindChore, out.Ref, out.Name.String())
	return out, nil
}

func (s *Service) SuspendChore(ctx context.Context, ref domain.Ref, suspended bool) (domain.Chore, error) {
	stamp := s.stamp()
	var out domain.Chore
	err := s.uow(ctx, func(store *storage.Store) error {
		chore, err := getChore(ctx, store, ref)
		if err != nil {
			return err
		}
		if suspended {
			chore, err = chore.Suspend(stamp)
		} else {
			chore, err = chore.Unsuspend(stamp)
		}
		if err != nil {
			return err
		}
		out, err = store.Chores.Save(ctx, chore)
		return err
	})
	if err != nil {
		return domain.Chore{}, err
	}
	s.reportUpdated(ctx, domain.EntityKindChore, out.Ref, out.Name.String())
	return out, nil
}

func (s *Service) ArchiveChore(ctx context.Context, ref domain.Ref) ([]EntitySummary, error) {
	stamp := s.stamp()
	var archived []EntitySummary
	err := s.uow(ctx, func(store *storage.Store) error {
		user, err := loadUser(ctx, store)
		if err != nil {
			return err
		}
		chore, err := getChore(ctx, store, ref)
		if err != nil {
			return err
		}
		c := newCascade(store, stamp, user, todayFor(user))
		if err := c.chore(ctx, chore, domain.ArchiveReasonUser); err != nil {
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

func (s *Service) ListChores(ctx context.Context) ([]domain.Chore, error) {
	store := s.Store()
	ws, err := loadWorkspace(ctx, store)
	if err != nil {
		return nil, err
	}
	return store.Chores.ListActive(ctx, ws.Ref)
}
