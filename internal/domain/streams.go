package domain

import "github.com/horia141/jupiter-sub011/internal/schedule"

// ScheduleStreamSource says who owns a stream's events.
type ScheduleStreamSource string

const (
	// StreamSourceUser streams are edited directly.
	StreamSourceUser ScheduleStreamSource = "user"
	// StreamSourceExternal streams mirror an iCalendar feed; their
	// events are opaque and refuse edits.
	StreamSourceExternal ScheduleStreamSource = "external"
)

// ScheduleStream is a named calendar of schedule events.
type ScheduleStream struct {
	Entity
	WorkspaceRef Ref
	Name         EntityName
	Source       ScheduleStreamSource
	ICalURL      *string
}

func NewUserScheduleStream(stamp Stamp, workspaceRef Ref, name EntityName) ScheduleStream {
	return ScheduleStream{
		Entity:       newEntity(stamp, "Created", Frame{"name": name.String()}),
		WorkspaceRef: workspaceRef,
		Name:         name,
		Source:       StreamSourceUser,
	}
}

func NewExternalScheduleStream(stamp Stamp, workspaceRef Ref, name EntityName, icalURL string) ScheduleStream {
	return ScheduleStream{
		Entity:       newEntity(stamp, "Created", Frame{"name": name.String(), "ical_url": icalURL}),
		WorkspaceRef: workspaceRef,
		Name:         name,
		Source:       StreamSourceExternal,
		ICalURL:      &icalURL,
	}
}

func (s ScheduleStream) Rename(stamp Stamp, name EntityName) (ScheduleStream, error) {
	if err := s.checkMutable("schedule stream"); err != nil {
		return s, err
	}
	if s.Source == StreamSourceExternal {
		return s, CannotModifyError{Kind: "schedule stream", Ref: s.Ref, What: "an externally-sourced stream follows its feed"}
	}
	if name == s.Name {
		return s, nil
	}
	s.Name = name
	s.Entity = s.bump(stamp, "Renamed", Frame{"name": name.String()})
	return s, nil
}

func (s ScheduleStream) Archive(stamp Stamp, reason ArchiveReason) ScheduleStream {
	s.Entity = s.Entity.archive(stamp, reason)
	return s
}

// ScheduleEvent is one dated entry of a stream. External events carry
// the feed's uid and raw payload and are treated as opaque.
type ScheduleEvent struct {
	Entity
	StreamRef   Ref
	Name        EntityName
	StartDate   schedule.ADate
	EndDate     schedule.ADate
	ExternalUID *string
	RawICal     *string
}

func NewScheduleEvent(stamp Stamp, streamRef Ref, name EntityName, start, end schedule.ADate) (ScheduleEvent, error) {
	if end.Before(start) {
		return ScheduleEvent{}, InputValidationError{Field: "end_date", Msg: "must not be before start date"}
	}
	return ScheduleEvent{
		Entity:    newEntity(stamp, "Created", Frame{"name": name.String()}),
		StreamRef: streamRef,
		Name:      name,
		StartDate: start,
		EndDate:   end,
	}, nil
}

func NewExternalScheduleEvent(stamp Stamp, streamRef Ref, name EntityName, start, end schedule.ADate, uid, rawICal string) ScheduleEvent {
	return ScheduleEvent{
		Entity:      newEntity(stamp, "Ingested", Frame{"uid": uid}),
		StreamRef:   streamRef,
		Name:        name,
		StartDate:   start,
		EndDate:     end,
		ExternalUID: &uid,
		RawICal:     &rawICal,
	}
}

type ScheduleEventUpdate struct {
	Name      *EntityName
	StartDate *schedule.ADate
	EndDate   *schedule.ADate
}

// Update edits a user event. External events refuse edits; the feed is
// authoritative.
func (e ScheduleEvent) Update(stamp Stamp, upd ScheduleEventUpdate) (ScheduleEvent, error) {
	if err := e.checkMutable("schedule event"); err != nil {
		return e, err
	}
	if e.ExternalUID != nil {
		return e, CannotModifyError{Kind: "schedule event", Ref: e.Ref, What: "an externally-sourced event follows its feed"}
	}
	changed := false
	if upd.Name != nil && *upd.Name != e.Name {
		e.Name = *upd.Name
		changed = true
	}
	if upd.StartDate != nil && !upd.StartDate.Equal(e.StartDate) {
		e.StartDate = *upd.StartDate
		changed = true
	}
	if upd.EndDate != nil && !upd.EndDate.Equal(e.EndDate) {
		e.EndDate = *upd.EndDate
		changed = true
	}
	if changed && e.EndDate.Before(e.StartDate) {
		return e, InputValidationError{Field: "end_date", Msg: "must not be before start date"}
	}
	if !changed {
		return e, nil
	}
	e.Entity = e.bump(stamp, "Updated", Frame{})
	return e, nil
}

func (e ScheduleEvent) Archive(stamp Stamp, reason ArchiveReason) ScheduleEvent {
	e.Entity = e.Entity.archive(stamp, reason)
	return e
}

// SyncFromFeed folds a fresh feed snapshot into an external event. Only
// the sync path may touch externally-sourced fields.
func (e ScheduleEvent) SyncFromFeed(stamp Stamp, name EntityName, start, end schedule.ADate, rawICal string) (ScheduleEvent, error) {
	if err := e.checkMutable("schedule event"); err != nil {
		return e, err
	}
	if e.ExternalUID == nil {
		return e, CannotModifyError{Kind: "schedule event", Ref: e.Ref, What: "a user event has no feed to sync from"}
	}
	changed := false
	if name != e.Name {
		e.Name = name
		changed = true
	}
	if !start.Equal(e.StartDate) {
		e.StartDate = start
		changed = true
	}
	if !end.Equal(e.EndDate) {
		e.EndDate = end
		changed = true
	}
	if e.RawICal == nil || *e.RawICal != rawICal {
		e.RawICal = &rawICal
		changed = true
	}
	if !changed {
		return e, nil
	}
	e.Entity = e.bump(stamp, "Synced", Frame{"uid": *e.ExternalUID})
	return e, nil
}

// PushTaskKind is the integration a push task arrived through.
type PushTaskKind string

const (
	PushTaskKindSlack PushTaskKind = "slack"
	PushTaskKindEmail PushTaskKind = "email"
)

// PushTask is an ingested message waiting for the generation engine to
// turn it into an inbox task.
type PushTask struct {
	Entity
	WorkspaceRef Ref
	Kind         PushTaskKind
	Sender       string
	Channel      *string
	Subject      *string
	Body         string
	GenParams    *RecurringTaskGenParams
}

type NewPushTaskInput struct {
	WorkspaceRef Ref
	Kind         PushTaskKind
	Sender       string
	Channel      *string
	Subject      *string
	Body         string
	// GenParams overrides the urgency/difficulty of the generated task.
	GenParams *RecurringTaskGenParams
}

func NewPushTask(stamp Stamp, in NewPushTaskInput) (PushTask, error) {
	if in.GenParams != nil {
		if err := in.GenParams.Validate(); err != nil {
			return PushTask{}, err
		}
	}
	return PushTask{
		Entity:       newEntity(stamp, "Ingested", Frame{"kind": string(in.Kind), "sender": in.Sender}),
		WorkspaceRef: in.WorkspaceRef,
		Kind:         in.Kind,
		Sender:       in.Sender,
		Channel:      in.Channel,
		Subject:      in.Subject,
		Body:         in.Body,
		GenParams:    in.GenParams,
	}, nil
}

// TaskName derives the inbox task display name for the push message.
func (p PushTask) TaskName() EntityName {
	switch {
	case p.Kind == PushTaskKindEmail && p.Subject != nil:
		return EntityName("Respond to " + p.Sender + " about " + *p.Subject)
	case p.Kind == PushTaskKindSlack && p.Channel != nil:
		return EntityName("Respond to " + p.Sender + " on " + *p.Channel)
	default:
		return EntityName("Respond to " + p.Sender)
	}
}

func (p PushTask) InboxTaskSource() InboxTaskSource {
	if p.Kind == PushTaskKindEmail {
		return InboxTaskSourceEmailTask
	}
	return InboxTaskSourceSlackTask
}

func (p PushTask) Archive(stamp Stamp, reason ArchiveReason) PushTask {
	p.Entity = p.Entity.archive(stamp, reason)
	return p
}
