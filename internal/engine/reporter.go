package engine

import (
	"context"
	"sync"

	"github.com/horia141/jupiter-sub011/internal/domain"
)

// EntitySummary is the lightweight description of an entity handed to
// progress reporters and the search index.
type EntitySummary struct {
	Kind domain.EntityKind
	Ref  domain.Ref
	Name string
}

// ProgressReporter observes entity lifecycle transitions as use cases
// run. Implementations must tolerate concurrent calls.
type ProgressReporter interface {
	MarkCreated(ctx context.Context, summary EntitySummary)
	MarkUpdated(ctx context.Context, summary EntitySummary)
	MarkArchived(ctx context.Context, summary EntitySummary)
}

// NoOpReporter swallows everything.
type NoOpReporter struct{}

func (NoOpReporter) MarkCreated(context.Context, EntitySummary)  {}
func (NoOpReporter) MarkUpdated(context.Context, EntitySummary)  {}
func (NoOpReporter) MarkArchived(context.Context, EntitySummary) {}

// FanOutReporter forwards each mark to every wrapped reporter in order.
type FanOutReporter struct {
	Reporters []ProgressReporter
}

func (r *FanOutReporter) MarkCreated(ctx context.Context, summary EntitySummary) {
	for _, rep := range r.Reporters {
		rep.MarkCreated(ctx, summary)
	}
}

func (r *FanOutReporter) MarkUpdated(ctx context.Context, summary EntitySummary) {
	for _, rep := range r.Reporters {
		rep.MarkUpdated(ctx, summary)
	}
}

func (r *FanOutReporter) MarkArchived(ctx context.Context, summary EntitySummary) {
	for _, rep := range r.Reporters {
		rep.MarkArchived(ctx, summary)
	}
}

// CollectingReporter accumulates marks for later inspection; the CLI
// prints them after a run and tests assert on them.
type CollectingReporter struct {
	mu       sync.Mutex
	created  []EntitySummary
	updated  []EntitySummary
	archived []EntitySummary
}

func (r *CollectingReporter) MarkCreated(_ context.Context, summary EntitySummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, summary)
}

func (r *CollectingReporter) MarkUpdated(_ context.Context, summary EntitySummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updated = append(r.updated, summary)
}

func (r *CollectingReporter) MarkArchived(_ context.Context, summary EntitySummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.archived = append(r.archived, summary)
}

func (r *CollectingReporter) Created() []EntitySummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]EntitySummary(nil), r.created...)
}

func (r *CollectingReporter) Updated() []EntitySummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]EntitySummary(nil), r.updated...)
}

func (r *CollectingReporter) Archived() []EntitySummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]EntitySummary(nil), r.archived...)
}
