package domain

import (
	"time"

	"github.com/horia141/jupiter-sub011/internal/schedule"
)

// Journal is a timeline-keyed singleton: at most one per (workspace,
// period, timeline). The timeline is always inferred from right_now and
// period, never supplied.
type Journal struct {
	Entity
	WorkspaceRef Ref
	RightNow     schedule.ADate
	Period       schedule.Period
	Timeline     string
	Report       *string
}

func NewJournal(stamp Stamp, workspaceRef Ref, rightNow schedule.ADate, period schedule.Period) (Journal, error) {
	if !period.IsValid() || period == schedule.PeriodNone {
		return Journal{}, InputValidationError{Field: "period", Msg: string(period)}
	}
	return Journal{
		Entity:       newEntity(stamp, "Created", Frame{"right_now": rightNow.String(), "period": string(period)}),
		WorkspaceRef: workspaceRef,
		RightNow:     rightNow,
		Period:       period,
		Timeline:     schedule.InferTimelineForDate(period, rightNow),
	}, nil
}

// UpdateReport replaces the report snapshot.
func (j Journal) UpdateReport(stamp Stamp, report string) (Journal, error) {
	if err := j.checkMutable("journal"); err != nil {
		return j, err
	}
	if j.Report != nil && *j.Report == report {
		return j, nil
	}
	j.Report = &report
	j.Entity = j.bump(stamp, "UpdatedReport", Frame{})
	return j, nil
}

func (j Journal) Archive(stamp Stamp, reason ArchiveReason) Journal {
	j.Entity = j.Entity.archive(stamp, reason)
	return j
}

func (j Journal) Name() EntityName {
	return EntityName("Journal " + j.Timeline)
}

// WorkingMemEntry is the timeline-keyed scratchpad for a period bucket.
// Entries expire when their bucket passes; the generation engine archives
// old ones and emits a cleanup task.
type WorkingMemEntry struct {
	Entity
	WorkspaceRef Ref
	RightNow     schedule.ADate
	Period       schedule.Period
	Timeline     string
	Content      string
}

func NewWorkingMemEntry(stamp Stamp, workspaceRef Ref, rightNow schedule.ADate, period schedule.Period) (WorkingMemEntry, error) {
	if !period.IsValid() || period == schedule.PeriodNone {
		return WorkingMemEntry{}, InputValidationError{Field: "period", Msg: string(period)}
	}
	return WorkingMemEntry{
		Entity:       newEntity(stamp, "Created", Frame{"right_now": rightNow.String()}),
		WorkspaceRef: workspaceRef,
		RightNow:     rightNow,
		Period:       period,
		Timeline:     schedule.InferTimelineForDate(period, rightNow),
	}, nil
}

func (w WorkingMemEntry) UpdateContent(stamp Stamp, content string) (WorkingMemEntry, error) {
	if err := w.checkMutable("working-mem entry"); err != nil {
		return w, err
	}
	if w.Content == content {
		return w, nil
	}
	w.Content = content
	w.Entity = w.bump(stamp, "UpdatedContent", Frame{})
	return w, nil
}

func (w WorkingMemEntry) Archive(stamp Stamp, reason ArchiveReason) WorkingMemEntry {
	w.Entity = w.Entity.archive(stamp, reason)
	return w
}

func (w WorkingMemEntry) Name() EntityName {
	return EntityName("Working memory " + w.Timeline)
}

// Note is free-form rich text attached to another entity; it lives and
// dies with its source.
type Note struct {
	Entity
	WorkspaceRef Ref
	SourceKind   EntityKind
	SourceRef    Ref
	Content      string
}

func NewNote(stamp Stamp, workspaceRef Ref, sourceKind EntityKind, sourceRef Ref, content string) Note {
	return Note{
		Entity:       newEntity(stamp, "Created", Frame{"source": string(sourceKind)}),
		WorkspaceRef: workspaceRef,
		SourceKind:   sourceKind,
		SourceRef:    sourceRef,
		Content:      content,
	}
}

func (n Note) UpdateContent(stamp Stamp, content string) (Note, error) {
	if err := n.checkMutable("note"); err != nil {
		return n, err
	}
	if n.Content == content {
		return n, nil
	}
	n.Content = content
	n.Entity = n.bump(stamp, "UpdatedContent", Frame{})
	return n, nil
}

func (n Note) Archive(stamp Stamp, reason ArchiveReason) Note {
	n.Entity = n.Entity.archive(stamp, reason)
	return n
}

// GenLogEntry is one record in the append-only generation audit trail.
// Not an event-sourced entity: rows are immutable once written.
type GenLogEntry struct {
	Ref          Ref
	WorkspaceRef Ref
	Source       EventSource
	Today        schedule.ADate
	GenTargets   []string
	CreatedCnt   int
	UpdatedCnt   int
	ArchivedCnt  int
	Errors       []string
	CreatedAt    time.Time
}
