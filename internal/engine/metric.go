package engine

import (
	"context"

	"github.com/horia141/jupiter-sub011/internal/domain"
	"github.com/horia141/jupiter-sub011/internal/schedule"
	"github.com/horia141/jupiter-sub011/internal/storage"
)

func getMetric(ctx context.Context, store *storage.Store, ref domain.Ref) (domain.Metric, error) {
	m, err := store.Metrics.Get(ctx, ref)
	if err != nil {
		return domain.Metric{}, err
	}
	if m == nil {
		return domain.Metric{}, domain.NotFoundError{Kind: "metric", Ref: ref}
	}
	return *m, nil
}

func getMetricEntry(ctx context.Context, store *storage.Store, ref domain.Ref) (domain.MetricEntry, error) {
	e, err := store.MetricEntries.Get(ctx, ref)
	if err != nil {
		return domain.MetricEntry{}, err
	}
	if e == nil {
		return domain.MetricEntry{}, domain.NotFoundError{Kind: "metric entry", Ref: ref}
	}
	return *e, nil
}

type CreateMetricArgs struct {
	Name             domain.EntityName
	Unit             *string
	CollectionParams *domain.RecurringTaskGenParams
}

func (s *Service) CreateMetric(ctx context.Context, args CreateMetricArgs) (domain.Metric, error) {
	stamp := s.stamp()
	var out domain.Metric
	err := s.uow(ctx, func(store *storage.Store) error {
		ws, err := loadWorkspace(ctx, store)
		if err != nil {
			return err
		}
		if err := checkFeature(ws, domain.FeatureMetrics); err != nil {
			return err
		}
		metric, err := domain.NewMetric(stamp, ws.Ref, args.Name, args.Unit, args.CollectionParams)
		if err != nil {
			return err
		}
		out, err = store.Metrics.Create(ctx, metric)
		return err
	})
	if err != nil {
		return domain.Metric{}, err
	}
	s.reportCreated(ctx, domain.EntityKindMetric, out.Ref, out.Name.String())
	return out, nil
}

type UpdateMetricArgs struct {
	Ref              domain.Ref
	Name             *domain.EntityName
	Unit             *string
	CollectionParams *domain.RecurringTaskGenParams
	ClearCollection  bool
}

func (s *Service) UpdateMetric(ctx context.Context, args UpdateMetricArgs) (domain.Metric, error) {
	stamp := s.stamp()
	var out domain.Metric
	err := s.uow(ctx, func(store *storage.Store) error {
		metric, err := getMetric(ctx, store, args.Ref)
		if err != nil {
			return err
		}
		metric, err = metric.Update(stamp, domain.MetricUpdate{
			Name:             args.Name,
			Unit:             args.Unit,
			CollectionParams: args.CollectionParams,
			ClearCollection:  args.ClearCollection,
		})
		if err != nil {
			return err
		}
		out, err = store.Metrics.Save(ctx, metric)
		return err
	})
	if err != nil {
		return domain.Metric{}, err
	}
	s.reportUpdated(ctx, domain.EntityKindMetric, out.Ref, out.Name.String())
	return out, nil
}

func (s *Service) ArchiveMetric(ctx context.Context, ref domain.Ref) ([]EntitySummary, error) {
	stamp := s.stamp()
	var archived []EntitySummary
	err := s.uow(ctx, func(store *storage.Store) error {
		user, err := loadUser(ctx, store)
		if err != nil {
			return err
		}
		metric, err := getMetric(ctx, store, ref)
		if err != nil {
			return err
		}
		c := newCascade(store, stamp, user, todayFor(user))
		if err := c.metric(ctx, metric, domain.ArchiveReasonUser); err != nil {
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

func (s *Service) ListMetrics(ctx context.Context) ([]domain.Metric, error) {
	store := s.Store()
	ws, err := loadWorkspace(ctx, store)
	if err != nil {
		return nil, err
	}
	return store.Metrics.ListActive(ctx, ws.Ref)
}

type CreateMetricEntryArgs struct {
	MetricRef      domain.Ref
	CollectionTime schedule.ADate
	Value          float64
	Notes          *string
}

func (s *Service) CreateMetricEntry(ctx context.Context, args CreateMetricEntryArgs) (domain.MetricEntry, error) {
	stamp := s.stamp()
	var out domain.MetricEntry
	err := s.uow(ctx, func(store *storage.Store) error {
		metric, err := getMetric(ctx, store, args.MetricRef)
		if err != nil {
			return err
		}
		if metric.Archived {
			return domain.CannotModifyError{Kind: "metric", Ref: metric.Ref, What: "entity is archived"}
		}
		entry := domain.NewMetricEntry(stamp, metric.Ref, args.CollectionTime, args.Value, args.Notes)
		out, err = store.MetricEntries.Create(ctx, entry)
		return err
	})
	if err != nil {
		return domain.MetricEntry{}, err
	}
	s.reportCreated(ctx, domain.EntityKindMetricEntry, out.Ref, out.CollectionTime.String())
	return out, nil
}

type UpdateMetricEntryArgs struct {
	Ref            domain.Ref
	CollectionTime *schedule.ADate
	Value          *float64
	Notes          *string
}

func (s *Service) UpdateMetricEntry(ctx context.Context, args UpdateMetricEntryArgs) (domain.MetricEntry, error) {
	stamp := s.stamp()
	var out domain.MetricEntry
	err := s.uow(ctx, func(store *storage.Store) error {
		entry, err := getMetricEntry(ctx, store, args.Ref)
		if err != nil {
			return err
		}
		entry, err = entry.Update(stamp, domain.MetricEntryUpdate{
			CollectionTime: args.CollectionTime,
			Value:          args.Value,
			Notes:          args.Notes,
		})
		if err != nil {
			return err
		}
		out, err = store.MetricEntries.Save(ctx, entry)
		return err
	})
	if err != nil {
		return domain.MetricEntry{}, err
	}
	s.reportUpdated(ctx, domain.EntityKindMetricEntry, out.Ref, out.CollectionTime.String())
	return out, nil
}

func (s *Service) ArchiveMetricEntry(ctx context.Context, ref domain.Ref) (domain.MetricEntry, error) {
	stamp := s.stamp()
	var out domain.MetricEntry
	err := s.uow(ctx, func(store *storage.Store) error {
		entry, err := getMetricEntry(ctx, store, ref)
		if err != nil {
			return err
		}
		entry = entry.Archive(stamp, domain.ArchiveReasonUser)
		out, err = store.MetricEntries.Save(ctx, entry)
		return err
	})
	if err != nil {
		return domain.MetricEntry{}, err
	}
	s.reportArchived(ctx, domain.EntityKindMetricEntry, out.Ref, out.CollectionTime.String())
	return out, nil
}

func (s *Service) ListMetricEntries(ctx context.Context, metricRef domain.Ref) ([]domain.MetricEntry, error) {
	store := s.Store()
	if _, err := getMetric(ctx, store, metricRef); err != nil {
		return nil, err
	}
	return store.MetricEntries.ListByMetric(ctx, metricRef)
}
