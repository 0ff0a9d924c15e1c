package engine

import (
	"context"

	"github.com/horia141/jupiter-sub011/internal/domain"
	"github.com/horia141/jupiter-sub011/internal/schedule"
	"github.com/horia141/jupiter-sub011/internal/storage"
)

func getPerson(ctx context.Context, store *storage.Store, ref domain.Ref) (domain.Person, error) {
	p, err := store.Persons.Get(ctx, ref)
	if err != nil {
		return domain.Person{}, err
	}
	if p == nil {
		return domain.Person{}, domain.NotFoundError{Kind: "person", Ref: ref}
	}
	return *p, nil
}

func getVacation(ctx context.Context, store *storage.Store, ref domain.Ref) (domain.Vacation, error) {
	v, err := store.Vacations.Get(ctx, ref)
	if err != nil {
		return domain.Vacation{}, err
	}
	if v == nil {
		return domain.Vacation{}, domain.NotFoundError{Kind: "vacation", Ref: ref}
	}
	return *v, nil
}

type CreatePersonArgs struct {
	Name          domain.EntityName
	Relationship  domain.PersonRelationship
	CatchUpParams *domain.RecurringTaskGenParams
	Birthday      *domain.PersonBirthday
}

func (s *Service) CreatePerson(ctx context.Context, args CreatePersonArgs) (domain.Person, error) {
	stamp := s.stamp()
	var out domain.Person
	err := s.uow(ctx, func(store *storage.Store) error {
		ws, err := loadWorkspace(ctx, store)
		if err != nil {
			return err
		}
		if err := checkFeature(ws, domain.FeaturePersons); err != nil {
			return err
		}
		person, err := domain.NewPerson(stamp, ws.Ref, args.Name, args.Relationship, args.CatchUpParams, args.Birthday)
		if err != nil {
			return err
		}
		out, err = store.Persons.Create(ctx, person)
		return err
	})
	if err != nil {
		return domain.Person{}, err
	}
	s.reportCreated(ctx, domain.EntityKindPerson, out.Ref, out.Name.String())
	return out, nil
}

type UpdatePersonArgs struct {
	Ref           domain.Ref
	Name          *domain.EntityName
	Relationship  *domain.PersonRelationship
	CatchUpParams *domain.RecurringTaskGenParams
	ClearCatchUp  bool
	Birthday      *domain.PersonBirthday
	ClearBirthday bool
}

func (s *Service) UpdatePerson(ctx context.Context, args UpdatePersonArgs) (domain.Person, error) {
	stamp := s.stamp()
	var out domain.Person
	err := s.uow(ctx, func(store *storage.Store) error {
		person, err := getPerson(ctx, store, args.Ref)
		if err != nil {
			return err
		}
		person, err = person.Update(stamp, domain.PersonUpdate{
			Name:          args.Name,
			Relationship:  args.Relationship,
			CatchUpParams: args.CatchUpParams,
			ClearCatchUp:  args.ClearCatchUp,
			Birthday:      args.Birthday,
			ClearBirthday: args.ClearBirthday,
		})
		if err != nil {
			return err
		}
		out, err = store.Persons.Save(ctx, person)
		return err
	})
	if err != nil {
		return domain.Person{}, err
	}
	s.reportUpdated(ctx, domain.EntityKindPerson, out.Ref, out.Name.String())
	return out, nil
}

func (s *Service) ArchivePerson(ctx context.Context, ref domain.Ref) ([]EntitySummary, error) {
	stamp := s.stamp()
	var archived []EntitySummary
	err := s.uow(ctx, func(store *storage.Store) error {
		user, err := loadUser(ctx, store)
		if err != nil {
			return err
		}
		person, err := getPerson(ctx, store, ref)
		if err != nil {
			return err
		}
		c := newCascade(store, stamp, user, todayFor(user))
		if err := c.person(ctx, person, domain.ArchiveReasonUser); err != nil {
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

func (s *Service) ListPersons(ctx context.Context) ([]domain.Person, error) {
	store := s.Store()
	ws, err := loadWorkspace(ctx, store)
	if err != nil {
		return nil, err
	}
	return store.Persons.ListActive(ctx, ws.Ref)
}

type CreateVacationArgs struct {
	Name      domain.EntityName
	StartDate schedule.ADate
	EndDate   schedule.ADate
}

func (s *Service) CreateVacation(ctx context.Context, args CreateVacationArgs) (domain.Vacation, error) {
	stamp := s.stamp()
	var out domain.Vacation
	err := s.uow(ctx, func(store *storage.Store) error {
		ws, err := loadWorkspace(ctx, store)
		if err != nil {
			return err
		}
		if err := checkFeature(ws, domain.FeatureVacations); err != nil {
			return err
		}
		vacation, err := domain.NewVacation(stamp, ws.Ref, args.Name, args.StartDate, args.EndDate)
		if err != nil {
			return err
		}
		out, err = store.Vacations.Create(ctx, vacation)
		return err
	})
	if err != nil {
		return domain.Vacation{}, err
	}
	s.reportCreated(ctx, domain.EntityKindVacation, out.Ref, out.Name.String())
	return out, nil
}

type UpdateVacationArgs struct {
	Ref       domain.Ref
	Name      *domain.EntityName
	StartDate *schedule.ADate
	EndDate   *schedule.ADate
}

func (s *Service) UpdateVacation(ctx context.Context, args UpdateVacationArgs) (domain.Vacation, error) {
	stamp := s.stamp()
	var out domain.Vacation
	err := s.uow(ctx, func(store *storage.Store) error {
		vacation, err := getVacation(ctx, store, args.Ref)
		if err != nil {
			return err
		}
		vacation, err = vacation.Update(stamp, domain.VacationUpdate{
			Name:      args.Name,
			StartDate: args.StartDate,
			EndDate:   args.EndDate,
		})
		if err != nil {
			return err
		}
		out, err = store.Vacations.Save(ctx, vacation)
		return err
	})
	if err != nil {
		return domain.Vacation{}, err
	}
	s.reportUpdated(ctx, domain.EntityKindVacation, out.Ref, out.Name.String())
	return out, nil
}

func (s *Service) ArchiveVacation(ctx context.Context, ref domain.Ref) (domain.Vacation, error) {
	stamp := s.stamp()
	var out domain.Vacation
	err := s.uow(ctx, func(store *storage.Store) error {
		vacation, err := getVacation(ctx, store, ref)
		if err != nil {
			return err
		}
		vacation = vacation.Archive(stamp, domain.ArchiveReasonUser)
		out, err = store.Vacations.Save(ctx, vacation)
		return err
	})
	if err != nil {
		return domain.Vacation{}, err
	}
	s.reportArchived(ctx, domain.EntityKindVacation, out.Ref, out.Name.String())
	return out, nil
}

func (s *Service) ListVacations(ctx context.Context) ([]domain.Vacation, error) {
	store := s.Store()
	ws, err := loadWorkspace(ctx, store)
	if err != nil {
		return nil, err
	}
	return store.Vacations.ListActive(ctx, ws.Ref)
}
