package engine

import (
	"context"

	"github.com/horia141/jupiter-sub011/internal/domain"
	"github.com/horia141/jupiter-sub011/internal/schedule"
	"github.com/horia141/jupiter-sub011/internal/storage"
)

func getStream(ctx context.Context, store *storage.Store, ref domain.Ref) (domain.ScheduleStream, error) {
	st, err := store.Streams.Get(ctx, ref)
	if err != nil {
		return domain.ScheduleStream{}, err
	}
	if st == nil {
		return domain.ScheduleStream{}, domain.NotFoundError{Kind: "schedule stream", Ref: ref}
	}
	return *st, nil
}

func getScheduleEvent(ctx context.Context, store *storage.Store, ref domain.Ref) (domain.ScheduleEvent, error) {
	e, err := store.ScheduleEvents.Get(ctx, ref)
	if err != nil {
		return domain.ScheduleEvent{}, err
	}
	if e == nil {
		return domain.ScheduleEvent{}, domain.NotFoundError{Kind: "schedule event", Ref: ref}
	}
	return *e, nil
}

type CreateScheduleStreamArgs struct {
	Name domain.EntityName
	// ICalURL makes the stream external; its events then mirror the
	// feed and refuse edits.
	ICalURL *string
}

func (s *Service) CreateScheduleStream(ctx context.Context, args CreateScheduleStreamArgs) (domain.ScheduleStream, error) {
	stamp := s.stamp()
	var out domain.ScheduleStream
	err := s.uow(ctx, func(store *storage.Store) error {
		ws, err := loadWorkspace(ctx, store)
		if err != nil {
			return err
		}
		if err := checkFeature(ws, domain.FeatureSchedules); err != nil {
			return err
		}
		var stream domain.ScheduleStream
		if args.ICalURL != nil {
			stream = domain.NewExternalScheduleStream(stamp, ws.Ref, args.Name, *args.ICalURL)
		} else {
			stream = domain.NewUserScheduleStream(stamp, ws.Ref, args.Name)
		}
		out, err = store.Streams.Create(ctx, stream)
		return err
	})
	if err != nil {
		return domain.ScheduleStream{}, err
	}
	s.reportCreated(ctx, domain.EntityKindScheduleStream, out.Ref, out.Name.String())
	return out, nil
}

func (s *Service) RenameScheduleStream(ctx context.Context, ref domain.Ref, name domain.EntityName) (domain.ScheduleStream, error) {
	stamp := s.stamp()
	var out domain.ScheduleStream
	err := s.uow(ctx, func(store *storage.Store) error {
		stream, err := getStream(ctx, store, ref)
		if err != nil {
			return err
		}
		stream, err = stream.Rename(stamp, name)
		if err != nil {
			return err
		}
		out, err = store.Streams.Save(ctx, stream)
		return err
	})
	if err != nil {
		return domain.ScheduleStream{}, err
	}
	s.reportUpdated(ctx, domain.EntityKindScheduleStream, out.Ref, out.Name.String())
	return out, nil
}

func (s *Service) ArchiveScheduleStream(ctx context.Context, ref domain.Ref) ([]EntitySummary, error) {
	stamp := s.stamp()
	var archived []EntitySummary
	err := s.uow(ctx, func(store *storage.Store) error {
		user, err := loadUser(ctx, store)
		if err != nil {
			return err
		}
		stream, err := getStream(ctx, store, ref)
		if err != nil {
			return err
		}
		c := newCascade(store, stamp, user, todayFor(user))
		if err := c.stream(ctx, stream, domain.ArchiveReasonUser); err != nil {
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

func (s *Service) ListScheduleStreams(ctx context.Context) ([]domain.ScheduleStream, error) {
	store := s.Store()
	ws, err := loadWorkspace(ctx, store)
	if err != nil {
		return nil, err
	}
	return store.Streams.ListActive(ctx, ws.Ref)
}

type CreateScheduleEventArgs struct {
	StreamRef domain.Ref
	Name      domain.EntityName
	StartDate schedule.ADate
	EndDate   schedule.ADate
}

// CreateScheduleEvent adds an event to a user stream. External streams
// only accept events through SyncExternalStream.
func (s *Service) CreateScheduleEvent(ctx context.Context, args CreateScheduleEventArgs) (domain.ScheduleEvent, error) {
	stamp := s.stamp()
	var out domain.ScheduleEvent
	err := s.uow(ctx, func(store *storage.Store) error {
		stream, err := getStream(ctx, store, args.StreamRef)
		if err != nil {
			return err
		}
		if stream.Archived {
			return domain.CannotModifyError{Kind: "schedule stream", Ref: stream.Ref, What: "entity is archived"}
		}
		if stream.Source == domain.StreamSourceExternal {
			return domain.CannotModifyError{Kind: "schedule stream", Ref: stream.Ref, What: "an externally-sourced stream follows its feed"}
		}
		event, err := domain.NewScheduleEvent(stamp, stream.Ref, args.Name, args.StartDate, args.EndDate)
		if err != nil {
			return err
		}
		out, err = store.ScheduleEvents.Create(ctx, event)
		return err
	})
	if err != nil {
		return domain.ScheduleEvent{}, err
	}
	s.reportCreated(ctx, domain.EntityKindScheduleEvent, out.Ref, out.Name.String())
	return out, nil
}

type UpdateScheduleEventArgs struct {
	Ref       domain.Ref
	Name      *domain.EntityName
	StartDate *schedule.ADate
	EndDate   *schedule.ADate
}

func (s *Service) UpdateScheduleEvent(ctx context.Context, args UpdateScheduleEventArgs) (domain.ScheduleEvent, error) {
	stamp := s.stamp()
	var out domain.ScheduleEvent
	err := s.uow(ctx, func(store *storage.Store) error {
		event, err := getScheduleEvent(ctx, store, args.Ref)
		if err != nil {
			return err
		}
		event, err = event.Update(stamp, domain.ScheduleEventUpdate{
			Name:      args.Name,
			StartDate: args.StartDate,
			EndDate:   args.EndDate,
		})
		if err != nil {
			return err
		}
		out, err = store.ScheduleEvents.Save(ctx, event)
		return err
	})
	if err != nil {
		return domain.ScheduleEvent{}, err
	}
	s.reportUpdated(ctx, domain.EntityKindScheduleEvent, out.Ref, out.Name.String())
	return out, nil
}

func (s *Service) ArchiveScheduleEvent(ctx context.Context, ref domain.Ref) (domain.ScheduleEvent, error) {
	stamp := s.stamp()
	var out domain.ScheduleEvent
	err := s.uow(ctx, func(store *storage.Store) error {
		event, err := getScheduleEvent(ctx, store, ref)
		if err != nil {
			return err
		}
		event = event.Archive(stamp, domain.ArchiveReasonUser)
		out, err = store.ScheduleEvents.Save(ctx, event)
		return err
	})
	if err != nil {
		return domain.ScheduleEvent{}, err
	}
	s.reportArchived(ctx, domain.EntityKindScheduleEvent, out.Ref, out.Name.String())
	return out, nil
}

func (s *Service) ListScheduleEvents(ctx context.Context, streamRef domain.Ref) ([]domain.ScheduleEvent, error) {
	store := s.Store()
	if _, err := getStream(ctx, store, streamRef); err != nil {
		return nil, err
	}
	return store.ScheduleEvents.ListByStream(ctx, streamRef)
}

// FeedEvent is one entry of a fetched iCalendar feed snapshot.
type FeedEvent struct {
	UID       string
	Name      domain.EntityName
	StartDate schedule.ADate
	EndDate   schedule.ADate
	RawICal   string
}

// SyncResult summarizes one reconciliation pass.
type SyncResult struct {
	Created  int
	Updated  int
	Archived int
}

// SyncExternalStream reconciles an external stream against a feed
// snapshot: new uids are ingested, known uids updated in place, and
// events whose uid left the feed are archived.
func (s *Service) SyncExternalStream(ctx context.Context, streamRef domain.Ref, feed []FeedEvent) (SyncResult, error) {
	stamp := s.stamp()
	var result SyncResult
	err := s.uow(ctx, func(store *storage.Store) error {
		stream, err := getStream(ctx, store, streamRef)
		if err != nil {
			return err
		}
		if stream.Archived {
			return domain.CannotModifyError{Kind: "schedule stream", Ref: stream.Ref, What: "entity is archived"}
		}
		if stream.Source != domain.StreamSourceExternal {
			return domain.CannotModifyError{Kind: "schedule stream", Ref: stream.Ref, What: "a user stream has no feed to sync from"}
		}

		seen := map[string]bool{}
		for _, fe := range feed {
			seen[fe.UID] = true
			existing, err := store.ScheduleEvents.FindByUID(ctx, stream.Ref, fe.UID)
			if err != nil {
				return err
			}
			if existing == nil || existing.Archived {
				event := domain.NewExternalScheduleEvent(stamp, stream.Ref, fe.Name, fe.StartDate, fe.EndDate, fe.UID, fe.RawICal)
				if _, err := store.ScheduleEvents.Create(ctx, event); err != nil {
					return err
				}
				result.Created++
				continue
			}
			updated, err := existing.SyncFromFeed(stamp, fe.Name, fe.StartDate, fe.EndDate, fe.RawICal)
			if err != nil {
				return err
			}
			if len(updated.Events) == 0 {
				continue
			}
			if _, err := store.ScheduleEvents.Save(ctx, updated); err != nil {
				return err
			}
			result.Updated++
		}

		events, err := store.ScheduleEvents.ListByStream(ctx, stream.Ref)
		if err != nil {
			return err
		}
		for _, e := range events {
			if e.Archived || e.ExternalUID == nil || seen[*e.ExternalUID] {
				continue
			}
			if _, err := store.ScheduleEvents.Save(ctx, e.Archive(stamp, domain.ArchiveReasonSourceArchived)); err != nil {
				return err
			}
			result.Archived++
		}
		return nil
	})
	if err != nil {
		return SyncResult{}, err
	}
	s.log.Info().
		Int64("stream", int64(streamRef)).
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("archived", result.Archived).
		Msg("synced external stream")
	return result, nil
}

func getPushTask(ctx context.Context, store *storage.Store, ref domain.Ref) (domain.PushTask, error) {
	p, err := store.PushTasks.Get(ctx, ref)
	if err != nil {
		return domain.PushTask{}, err
	}
	if p == nil {
		return domain.PushTask{}, domain.NotFoundError{Kind: "push task", Ref: ref}
	}
	return *p, nil
}

type IngestPushTaskArgs struct {
	Kind      domain.PushTaskKind
	Sender    string
	Channel   *string
	Subject   *string
	Body      string
	GenParams *domain.RecurringTaskGenParams
}

// IngestPushTask records an incoming message; the next generation run
// turns it into an inbox task.
func (s *Service) IngestPushTask(ctx context.Context, args IngestPushTaskArgs) (domain.PushTask, error) {
	stamp := s.stamp()
	var out domain.PushTask
	err := s.uow(ctx, func(store *storage.Store) error {
		ws, err := loadWorkspace(ctx, store)
		if err != nil {
			return err
		}
		feature := domain.FeatureSlackTasks
		if args.Kind == domain.PushTaskKindEmail {
			feature = domain.FeatureEmailTasks
		}
		if err := checkFeature(ws, feature); err != nil {
			return err
		}
		task, err := domain.NewPushTask(stamp, domain.NewPushTaskInput{
			WorkspaceRef: ws.Ref,
			Kind:         args.Kind,
			Sender:       args.Sender,
			Channel:      args.Channel,
			Subject:      args.Subject,
			Body:         args.Body,
			GenParams:    args.GenParams,
		})
		if err != nil {
			return err
		}
		out, err = store.PushTasks.Create(ctx, task)
		return err
	})
	if err != nil {
		return domain.PushTask{}, err
	}
	s.reportCreated(ctx, domain.EntityKindPushTask, out.Ref, out.TaskName().String())
	return out, nil
}

func (s *Service) ArchivePushTask(ctx context.Context, ref domain.Ref) ([]EntitySummary, error) {
	stamp := s.stamp()
	var archived []EntitySummary
	err := s.uow(ctx, func(store *storage.Store) error {
		user, err := loadUser(ctx, store)
		if err != nil {
			return err
		}
		task, err := getPushTask(ctx, store, ref)
		if err != nil {
			return err
		}
		c := newCascade(store, stamp, user, todayFor(user))
		if err := c.pushTask(ctx, task, domain.ArchiveReasonUser); err != nil {
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

func (s *Service) ListPushTasks(ctx context.Context) ([]domain.PushTask, error) {
	store := s.Store()
	ws, err := loadWorkspace(ctx, store)
	if err != nil {
		return nil, err
	}
	return store.PushTasks.ListActive(ctx, ws.Ref)
}
