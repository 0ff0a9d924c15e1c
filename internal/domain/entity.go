package domain

import "time"

// Ref identifies a stored entity. Zero is never a valid ref.
type Ref int64

type EventKind string

const (
	EventKindCreate  EventKind = "create"
	EventKindUpdate  EventKind = "update"
	EventKindArchive EventKind = "archive"
	EventKindRestore EventKind = "restore"
)

// EventSource tags which surface triggered a mutation.
type EventSource string

const (
	EventSourceCLI     EventSource = "cli"
	EventSourceWeb     EventSource = "web"
	EventSourceCron    EventSource = "cron"
	EventSourceGenCron EventSource = "gen-cron"
	EventSourcePush    EventSource = "push"
)

// ArchiveReason records why an entity was archived.
type ArchiveReason string

const (
	ArchiveReasonUser           ArchiveReason = "user"
	ArchiveReasonParentArchived ArchiveReason = "parent-archived"
	ArchiveReasonParentRemoved  ArchiveReason = "parent-removed"
	ArchiveReasonReplacedBySkip ArchiveReason = "replaced-by-skip"
	ArchiveReasonSourceArchived ArchiveReason = "source-archived"
	ArchiveReasonExpired        ArchiveReason = "expired"
)

// Frame carries the call-site arguments captured with an event, for audit.
type Frame map[string]any

// Event is an immutable record of one entity mutation.
type Event struct {
	Timestamp time.Time
	Version   int
	Kind      EventKind
	Name      string
	Source    EventSource
	Frame     Frame
}

// Stamp is resolved once at use-case start so that every mutation in a
// single use case shares the same timestamp and source tag.
type Stamp struct {
	Now    time.Time
	Source EventSource
}

func NewStamp(source EventSource) Stamp {
	return Stamp{Now: time.Now().UTC(), Source: source}
}

// Entity is the shared head of every domain record. Mutations are value
// semantics: they return a new snapshot and never alias the previous one.
type Entity struct {
	Ref            Ref
	Version        int
	Archived       bool
	ArchivedReason ArchiveReason
	CreatedAt      time.Time
	LastModifiedAt time.Time
	ArchivedAt     *time.Time

	// Events accumulated since the last flush; the unit of work persists
	// and clears them on save.
	Events []Event
}

func newEntity(stamp Stamp, name string, frame Frame) Entity {
	return Entity{
		Version:        0,
		CreatedAt:      stamp.Now,
		LastModifiedAt: stamp.Now,
		Events: []Event{{
			Timestamp: stamp.Now,
			Version:   0,
			Kind:      EventKindCreate,
			Name:      name,
			Source:    stamp.Source,
			Frame:     frame,
		}},
	}
}

// bump produces the next snapshot of the entity head: version+1, a fresh
// update event, and last_modified_time set. Callers are responsible for
// detecting no-op mutations before calling it.
func (e Entity) bump(stamp Stamp, name string, frame Frame) Entity {
	e.Version++
	e.LastModifiedAt = stamp.Now
	e.Events = appendEvent(e.Events, Event{
		Timestamp: stamp.Now,
		Version:   e.Version,
		Kind:      EventKindUpdate,
		Name:      name,
		Source:    stamp.Source,
		Frame:     frame,
	})
	return e
}

// archive marks the head archived. Archiving an already archived entity is
// a no-op and emits nothing.
func (e Entity) archive(stamp Stamp, reason ArchiveReason) Entity {
	if e.Archived {
		return e
	}
	e.Version++
	e.Archived = true
	e.ArchivedReason = reason
	at := stamp.Now
	e.ArchivedAt = &at
	e.LastModifiedAt = stamp.Now
	e.Events = appendEvent(e.Events, Event{
		Timestamp: stamp.Now,
		Version:   e.Version,
		Kind:      EventKindArchive,
		Name:      "Archived",
		Source:    stamp.Source,
		Frame:     Frame{"reason": string(reason)},
	})
	return e
}

func (e Entity) restore(stamp Stamp) Entity {
	if !e.Archived {
		return e
	}
	e.Version++
	e.Archived = false
	e.ArchivedReason = ""
	e.ArchivedAt = nil
	e.LastModifiedAt = stamp.Now
	e.Events = appendEvent(e.Events, Event{
		Timestamp: stamp.Now,
		Version:   e.Version,
		Kind:      EventKindRestore,
		Name:      "Restored",
		Source:    stamp.Source,
	})
	return e
}

// appendEvent copies the slice so sibling snapshots never share backing
// arrays.
func appendEvent(events []Event, ev Event) []Event {
	out := make([]Event, 0, len(events)+1)
	out = append(out, events...)
	out = append(out, ev)
	return out
}

// ClearEvents returns the head with pending events dropped. The unit of
// work calls this after flushing them to the store.
func (e Entity) ClearEvents() Entity {
	e.Events = nil
	return e
}

// checkMutable guards mutators other than restore.
func (e Entity) checkMutable(kind string) error {
	if e.Archived {
		return CannotModifyError{Kind: kind, Ref: e.Ref, What: "entity is archived"}
	}
	return nil
}
