package engine

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/horia141/jupiter-sub011/internal/domain"
	"github.com/horia141/jupiter-sub011/internal/schedule"
	"github.com/horia141/jupiter-sub011/internal/storage"
)

// Service is the use-case layer. Every public method resolves a stamp
// once, runs inside a unit of work, and reports progress on success.
type Service struct {
	db       *sql.DB
	log      zerolog.Logger
	source   domain.EventSource
	reporter ProgressReporter
	searcher Searcher

	// One advisory lock per workspace serializes generation runs.
	genLocks sync.Map
}

type Option func(*Service)

func WithSource(source domain.EventSource) Option {
	return func(s *Service) { s.source = source }
}

func WithReporter(reporter ProgressReporter) Option {
	return func(s *Service) { s.reporter = reporter }
}

func WithSearcher(searcher Searcher) Option {
	return func(s *Service) { s.searcher = searcher }
}

func New(db *sql.DB, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		db:       db,
		log:      log,
		source:   domain.EventSourceCLI,
		reporter: NoOpReporter{},
		searcher: NewInMemorySearcher(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) stamp() domain.Stamp {
	return domain.NewStamp(s.source)
}

// genLock serializes generation per workspace; returns the unlock func.
func (s *Service) genLock(workspaceRef domain.Ref) func() {
	v, _ := s.genLocks.LoadOrStore(workspaceRef, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *Service) uow(ctx context.Context, fn func(store *storage.Store) error) error {
	return storage.UnitOfWork(ctx, s.db, fn)
}

// Store returns a read-only store over the raw DB, for queries that need
// no transaction.
func (s *Service) Store() *storage.Store {
	return storage.NewStore(s.db)
}

func (s *Service) reportCreated(ctx context.Context, kind domain.EntityKind, ref domain.Ref, name string) {
	summary := EntitySummary{Kind: kind, Ref: ref, Name: name}
	s.reporter.MarkCreated(ctx, summary)
	if err := s.searcher.Index(ctx, summary); err != nil {
		s.log.Warn().Err(err).Str("kind", string(kind)).Msg("search index failed")
	}
}

func (s *Service) reportUpdated(ctx context.Context, kind domain.EntityKind, ref domain.Ref, name string) {
	summary := EntitySummary{Kind: kind, Ref: ref, Name: name}
	s.reporter.MarkUpdated(ctx, summary)
	if err := s.searcher.Index(ctx, summary); err != nil {
		s.log.Warn().Err(err).Str("kind", string(kind)).Msg("search index failed")
	}
}

func (s *Service) reportArchived(ctx context.Context, kind domain.EntityKind, ref domain.Ref, name string) {
	s.reporter.MarkArchived(ctx, EntitySummary{Kind: kind, Ref: ref, Name: name})
	if err := s.searcher.Remove(ctx, kind, ref); err != nil {
		s.log.Warn().Err(err).Str("kind", string(kind)).Msg("search remove failed")
	}
}

// Search queries the index.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]EntitySummary, error) {
	return s.searcher.Search(ctx, query, limit)
}

// loadWorkspace fetches the singleton workspace or fails with NotFound.
func loadWorkspace(ctx context.Context, store *storage.Store) (domain.Workspace, error) {
	ws, err := store.Workspaces.GetSingle(ctx)
	if err != nil {
		return domain.Workspace{}, err
	}
	if ws == nil {
		return domain.Workspace{}, domain.NotFoundError{Kind: "workspace"}
	}
	return *ws, nil
}

func loadUser(ctx context.Context, store *storage.Store) (domain.User, error) {
	u, err := store.Users.GetSingle(ctx)
	if err != nil {
		return domain.User{}, err
	}
	if u == nil {
		return domain.User{}, domain.NotFoundError{Kind: "user"}
	}
	return *u, nil
}

// todayFor is the current calendar date in the user's timezone, falling
// back to UTC for unloadable zones.
func todayFor(user domain.User) schedule.ADate {
	loc, err := time.LoadLocation(user.Timezone.String())
	if err != nil {
		loc = time.UTC
	}
	return schedule.TodayIn(loc)
}

// checkFeature guards a use case behind its workspace feature flag.
func checkFeature(ws domain.Workspace, feature domain.Feature) error {
	if !ws.FeatureFlags.IsEnabled(feature) {
		return domain.FeatureUnavailableError{Feature: feature}
	}
	return nil
}
