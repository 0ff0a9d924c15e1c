package engine

import (
	"context"
	"fmt"

	"github.com/horia141/jupiter-sub011/internal/domain"
	"github.com/horia141/jupiter-sub011/internal/schedule"
	"github.com/horia141/jupiter-sub011/internal/storage"
)

func getJournal(ctx context.Context, store *storage.Store, ref domain.Ref) (domain.Journal, error) {
	j, err := store.Journals.Get(ctx, ref)
	if err != nil {
		return domain.Journal{}, err
	}
	if j == nil {
		return domain.Journal{}, domain.NotFoundError{Kind: "journal", Ref: ref}
	}
	return *j, nil
}

type CreateJournalArgs struct {
	RightNow *schedule.ADate
	Period   schedule.Period
}

// CreateJournal opens the journal for the bucket containing RightNow
// (today when unset). At most one journal exists per bucket.
func (s *Service) CreateJournal(ctx context.Context, args CreateJournalArgs) (domain.Journal, error) {
	stamp := s.stamp()
	var out domain.Journal
	err := s.uow(ctx, func(store *storage.Store) error {
		ws, err := loadWorkspace(ctx, store)
		if err != nil {
			return err
		}
		if err := checkFeature(ws, domain.FeatureJournals); err != nil {
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
		period := args.Period
		if period == "" {
			period = ws.JournalPeriod
		}
		journal, err := domain.NewJournal(stamp, ws.Ref, *rightNow, period)
		if err != nil {
			return err
		}
		existing, err := store.Journals.FindByTimeline(ctx, ws.Ref, journal.Period, journal.Timeline)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.AlreadyExistsError{Kind: "journal", Key: fmt.Sprintf("%s %s", journal.Period, journal.Timeline)}
		}
		out, err = store.Journals.Create(ctx, journal)
		return err
	})
	if err != nil {
		return domain.Journal{}, err
	}
	s.reportCreated(ctx, domain.EntityKindJournal, out.Ref, out.Name().String())
	return out, nil
}

func (s *Service) UpdateJournalReport(ctx context.Context, ref domain.Ref, report string) (domain.Journal, error) {
	stamp := s.stamp()
	var out domain.Journal
	err := s.uow(ctx, func(store *storage.Store) error {
		journal, err := getJournal(ctx, store, ref)
		if err != nil {
			return err
		}
		journal, err = journal.UpdateReport(stamp, report)
		if err != nil {
			return err
		}
		out, err = store.Journals.Save(ctx, journal)
		return err
	})
	if err != nil {
		return domain.Journal{}, err
	}
	s.reportUpdated(ctx, domain.EntityKindJournal, out.Ref, out.Name().String())
	return out, nil
}

func (s *Service) ArchiveJournal(ctx context.Context, ref domain.Ref) ([]EntitySummary, error) {
	stamp := s.stamp()
	var archived []EntitySummary
	err := s.uow(ctx, func(store *storage.Store) error {
		user, err := loadUser(ctx, store)
		if err != nil {
			return err
		}
		journal, err := getJournal(ctx, store, ref)
		if err != nil {
			return err
		}
		c := newCascade(store, stamp, user, todayFor(user))
		if err := c.journal(ctx, journal, domain.ArchiveReasonUser); err != nil {
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

func (s *Service) ListJournals(ctx context.Context) ([]domain.Journal, error) {
	store := s.Store()
	ws, err := loadWorkspace(ctx, store)
	if err != nil {
		return nil, err
	}
	return store.Journals.ListActive(ctx, ws.Ref)
}

// CurrentWorkingMem returns the entry for the bucket containing today, or
// nil when generation has not produced one yet.
func (s *Service) CurrentWorkingMem(ctx context.Context) (*domain.WorkingMemEntry, error) {
	store := s.Store()
	ws, err := loadWorkspace(ctx, store)
	if err != nil {
		return nil, err
	}
	user, err := loadUser(ctx, store)
	if err != nil {
		return nil, err
	}
	timeline := schedule.InferTimelineForDate(ws.WorkingMemPeriod, todayFor(user))
	return store.WorkingMem.FindByTimeline(ctx, ws.Ref, ws.WorkingMemPeriod, timeline)
}

// UpdateWorkingMemContent writes to the current bucket's entry, creating
// it on first use so the scratchpad works before any generation run.
func (s *Service) UpdateWorkingMemContent(ctx context.Context, content string) (domain.WorkingMemEntry, error) {
	stamp := s.stamp()
	var out domain.WorkingMemEntry
	err := s.uow(ctx, func(store *storage.Store) error {
		ws, err := loadWorkspace(ctx, store)
		if err != nil {
			return err
		}
		if err := checkFeature(ws, domain.FeatureWorkingMem); err != nil {
			return err
		}
		user, err := loadUser(ctx, store)
		if err != nil {
			return err
		}
		today := todayFor(user)
		timeline := schedule.InferTimelineForDate(ws.WorkingMemPeriod, today)
		entry, err := store.WorkingMem.FindByTimeline(ctx, ws.Ref, ws.WorkingMemPeriod, timeline)
		if err != nil {
			return err
		}
		var current domain.WorkingMemEntry
		if entry == nil {
			current, err = domain.NewWorkingMemEntry(stamp, ws.Ref, today, ws.WorkingMemPeriod)
			if err != nil {
				return err
			}
			current, err = store.WorkingMem.Create(ctx, current)
			if err != nil {
				return err
			}
		} else {
			current = *entry
		}
		current, err = current.UpdateContent(stamp, content)
		if err != nil {
			return err
		}
		out, err = store.WorkingMem.Save(ctx, current)
		return err
	})
	if err != nil {
		return domain.WorkingMemEntry{}, err
	}
	s.reportUpdated(ctx, domain.EntityKindWorkingMemEntry, out.Ref, out.Name().String())
	return out, nil
}

func getNote(ctx context.Context, store *storage.Store, ref domain.Ref) (domain.Note, error) {
	n, err := store.Notes.Get(ctx, ref)
	if err != nil {
		return domain.Note{}, err
	}
	if n == nil {
		return domain.Note{}, domain.NotFoundError{Kind: "note", Ref: ref}
	}
	return *n, nil
}

// checkNoteSource verifies the entity the note attaches to exists and is
// live.
func checkNoteSource(ctx context.Context, store *storage.Store, kind domain.EntityKind, ref domain.Ref) error {
	var err error
	switch kind {
	case domain.EntityKindProject:
		_, err = getProject(ctx, store, ref)
	case domain.EntityKindInboxTask:
		_, err = getInboxTask(ctx, store, ref)
	case domain.EntityKindHabit:
		_, err = getHabit(ctx, store, ref)
	case domain.EntityKindChore:
		_, err = getChore(ctx, store, ref)
	case domain.EntityKindBigPlan:
		_, err = getBigPlan(ctx, store, ref)
	case domain.EntityKindMetric:
		_, err = getMetric(ctx, store, ref)
	case domain.EntityKindPerson:
		_, err = getPerson(ctx, store, ref)
	case domain.EntityKindJournal:
		_, err = getJournal(ctx, store, ref)
	case domain.EntityKindTimePlan:
		_, err = getTimePlan(ctx, store, ref)
	default:
		return domain.InputValidationError{Field: "source_kind", Msg: string(kind)}
	}
	return err
}

type AttachNoteArgs struct {
	SourceKind domain.EntityKind
	SourceRef  domain.Ref
	Content    string
}

// AttachNote creates the note for an entity. Each entity carries at most
// one note.
func (s *Service) AttachNote(ctx context.Context, args AttachNoteArgs) (domain.Note, error) {
	stamp := s.stamp()
	var out domain.Note
	err := s.uow(ctx, func(store *storage.Store) error {
		ws, err := loadWorkspace(ctx, store)
		if err != nil {
			return err
		}
		if err := checkNoteSource(ctx, store, args.SourceKind, args.SourceRef); err != nil {
			return err
		}
		existing, err := store.Notes.FindBySource(ctx, args.SourceKind, args.SourceRef)
		if err != nil {
			return err
		}
		if existing != nil && !existing.Archived {
			return domain.AlreadyExistsError{Kind: "note", Key: fmt.Sprintf("%s %d", args.SourceKind, args.SourceRef)}
		}
		note := domain.NewNote(stamp, ws.Ref, args.SourceKind, args.SourceRef, args.Content)
		out, err = store.Notes.Create(ctx, note)
		return err
	})
	if err != nil {
		return domain.Note{}, err
	}
	s.reportCreated(ctx, domain.EntityKindNote, out.Ref, "")
	return out, nil
}

func (s *Service) UpdateNoteContent(ctx context.Context, ref domain.Ref, content string) (domain.Note, error) {
	stamp := s.stamp()
	var out domain.Note
	err := s.uow(ctx, func(store *storage.Store) error {
		note, err := getNote(ctx, store, ref)
		if err != nil {
			return err
		}
		note, err = note.UpdateContent(stamp, content)
		if err != nil {
			return err
		}
		out, err = store.Notes.Save(ctx, note)
		return err
	})
	if err != nil {
		return domain.Note{}, err
	}
	s.reportUpdated(ctx, domain.EntityKindNote, out.Ref, "")
	return out, nil
}

func (s *Service) ArchiveNote(ctx context.Context, ref domain.Ref) (domain.Note, error) {
	stamp := s.stamp()
	var out domain.Note
	err := s.uow(ctx, func(store *storage.Store) error {
		note, err := getNote(ctx, store, ref)
		if err != nil {
			return err
		}
		note = note.Archive(stamp, domain.ArchiveReasonUser)
		out, err = store.Notes.Save(ctx, note)
		return err
	})
	if err != nil {
		return domain.Note{}, err
	}
	s.reportArchived(ctx, domain.EntityKindNote, out.Ref, "")
	return out, nil
}
