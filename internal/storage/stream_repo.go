package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/horia141/jupiter-sub011/internal/domain"
	"github.com/horia141/jupiter-sub011/internal/schedule"
)

type ScheduleStreamRepo struct {
	q Querier
}

func NewScheduleStreamRepo(q Querier) *ScheduleStreamRepo {
	return &ScheduleStreamRepo{q: q}
}

const streamCols = entityHeadColumns + `, workspace_ref, name, source, ical_url`

var streamExtraCols = []string{"workspace_ref", "name", "source", "ical_url"}

func streamVals(s domain.ScheduleStream) []any {
	return []any{int64(s.WorkspaceRef), s.Name.String(), string(s.Source), nullStr(s.ICalURL)}
}

func (r *ScheduleStreamRepo) Create(ctx context.Context, s domain.ScheduleStream) (domain.ScheduleStream, error) {
	ref, err := insertEntity(ctx, r.q, "schedule_streams", s.Entity, streamExtraCols, streamVals(s))
	if err != nil {
		return s, err
	}
	s.Entity.Ref = ref
	s.Entity = s.Entity.ClearEvents()
	return s, nil
}

func (r *ScheduleStreamRepo) Save(ctx context.Context, s domain.ScheduleStream) (domain.ScheduleStream, error) {
	if err := updateEntity(ctx, r.q, "schedule_streams", "schedule stream", s.Entity, streamExtraCols, streamVals(s)); err != nil {
		return s, err
	}
	s.Entity = s.Entity.ClearEvents()
	return s, nil
}

func (r *ScheduleStreamRepo) Get(ctx context.Context, ref domain.Ref) (*domain.ScheduleStream, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+streamCols+` FROM schedule_streams WHERE id = ?`, int64(ref))
	return scanStream(row)
}

func (r *ScheduleStreamRepo) ListActive(ctx context.Context, workspaceRef domain.Ref) ([]domain.ScheduleStream, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+streamCols+` FROM schedule_streams
		WHERE workspace_ref = ? AND archived = 0
		ORDER BY id ASC
	`, int64(workspaceRef))
	if err != nil {
		return nil, fmt.Errorf("schedule stream list: %w", err)
	}
	defer rows.Close()

	var out []domain.ScheduleStream
	for rows.Next() {
		s, err := scanStream(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("schedule stream rows: %w", err)
	}
	return out, nil
}

func scanStream(row scanner) (*domain.ScheduleStream, error) {
	var (
		head      entityRow
		workspace int64
		name      string
		source    string
		icalURL   sql.NullString
	)
	dests := append(head.dests(), &workspace, &name, &source, &icalURL)
	if err := row.Scan(dests...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("schedule stream scan: %w", err)
	}

	return &domain.ScheduleStream{
		Entity:       head.toEntity(),
		WorkspaceRef: domain.Ref(workspace),
		Name:         domain.EntityName(name),
		Source:       domain.ScheduleStreamSource(source),
		ICalURL:      strPtr(icalURL),
	}, nil
}

type ScheduleEventRepo struct {
	q Querier
}

func NewScheduleEventRepo(q Querier) *ScheduleEventRepo {
	return &ScheduleEventRepo{q: q}
}

const scheduleEventCols = entityHeadColumns + `, stream_ref, name, start_date, end_date, external_uid, raw_ical`

var scheduleEventExtraCols = []string{"stream_ref", "name", "start_date", "end_date", "external_uid", "raw_ical"}

func scheduleEventVals(e domain.ScheduleEvent) []any {
	return []any{
		int64(e.StreamRef), e.Name.String(), e.StartDate.String(), e.EndDate.String(),
		nullStr(e.ExternalUID), nullStr(e.RawICal),
	}
}

func (r *ScheduleEventRepo) Create(ctx context.Context, e domain.ScheduleEvent) (domain.ScheduleEvent, error) {
	ref, err := insertEntity(ctx, r.q, "schedule_events", e.Entity, scheduleEventExtraCols, scheduleEventVals(e))
	if err != nil {
		return e, err
	}
	e.Entity.Ref = ref
	e.Entity = e.Entity.ClearEvents()
	return e, nil
}

func (r *ScheduleEventRepo) Save(ctx context.Context, e domain.ScheduleEvent) (domain.ScheduleEvent, error) {
	if err := updateEntity(ctx, r.q, "schedule_events", "schedule event", e.Entity, scheduleEventExtraCols, scheduleEventVals(e)); err != nil {
		return e, err
	}
	e.Entity = e.Entity.ClearEvents()
	return e, nil
}

func (r *ScheduleEventRepo) Get(ctx context.Context, ref domain.Ref) (*domain.ScheduleEvent, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+scheduleEventCols+` FROM schedule_events WHERE id = ?`, int64(ref))
	return scanScheduleEvent(row)
}

// FindByUID locates a feed-sourced event within a stream for sync
// reconciliation.
func (r *ScheduleEventRepo) FindByUID(ctx context.Context, streamRef domain.Ref, uid string) (*domain.ScheduleEvent, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+scheduleEventCols+` FROM schedule_events
		WHERE stream_ref = ? AND external_uid = ? AND archived = 0
	`, int64(streamRef), uid)
	return scanScheduleEvent(row)
}

func (r *ScheduleEventRepo) ListByStream(ctx context.Context, streamRef domain.Ref) ([]domain.ScheduleEvent, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+scheduleEventCols+` FROM schedule_events
		WHERE stream_ref = ? AND archived = 0
		ORDER BY start_date ASC, id ASC
	`, int64(streamRef))
	if err != nil {
		return nil, fmt.Errorf("schedule event list: %w", err)
	}
	defer rows.Close()

	var out []domain.ScheduleEvent
	for rows.Next() {
		e, err := scanScheduleEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("schedule event rows: %w", err)
	}
	return out, nil
}

func scanScheduleEvent(row scanner) (*domain.ScheduleEvent, error) {
	var (
		head        entityRow
		streamRef   int64
		name        string
		startDate   string
		endDate     string
		externalUID sql.NullString
		rawICal     sql.NullString
	)
	dests := append(head.dests(), &streamRef, &name, &startDate, &endDate, &externalUID, &rawICal)
	if err := row.Scan(dests...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("schedule event scan: %w", err)
	}

	start, err := schedule.ParseADate(startDate)
	if err != nil {
		return nil, fmt.Errorf("schedule event start date: %w", err)
	}
	end, err := schedule.ParseADate(endDate)
	if err != nil {
		return nil, fmt.Errorf("schedule event end date: %w", err)
	}

	return &domain.ScheduleEvent{
		Entity:      head.toEntity(),
		StreamRef:   domain.Ref(streamRef),
		Name:        domain.EntityName(name),
		StartDate:   start,
		EndDate:     end,
		ExternalUID: strPtr(externalUID),
		RawICal:     strPtr(rawICal),
	}, nil
}

type PushTaskRepo struct {
	q Querier
}

func NewPushTaskRepo(q Querier) *PushTaskRepo {
	return &PushTaskRepo{q: q}
}

const pushTaskCols = entityHeadColumns + `, workspace_ref, kind, sender, channel, subject, body,
	gen_period, gen_eisen, gen_difficulty, gen_actionable_from_day, gen_actionable_from_month,
	gen_due_at_day, gen_due_at_month, gen_skip_rule`

var pushTaskExtraCols = append([]string{"workspace_ref", "kind", "sender", "channel", "subject", "body"}, genParamsCols...)

func pushTaskVals(p domain.PushTask) []any {
	vals := []any{int64(p.WorkspaceRef), string(p.Kind), p.Sender, nullStr(p.Channel), nullStr(p.Subject), p.Body}
	return append(vals, genParamsVals(p.GenParams)...)
}

func (r *PushTaskRepo) Create(ctx context.Context, p domain.PushTask) (domain.PushTask, error) {
	ref, err := insertEntity(ctx, r.q, "push_tasks", p.Entity, pushTaskExtraCols, pushTaskVals(p))
	if err != nil {
		return p, err
	}
	p.Entity.Ref = ref
	p.Entity = p.Entity.ClearEvents()
	return p, nil
}

func (r *PushTaskRepo) Save(ctx context.Context, p domain.PushTask) (domain.PushTask, error) {
	if err := updateEntity(ctx, r.q, "push_tasks", "push task", p.Entity, pushTaskExtraCols, pushTaskVals(p)); err != nil {
		return p, err
	}
	p.Entity = p.Entity.ClearEvents()
	return p, nil
}

func (r *PushTaskRepo) Get(ctx context.Context, ref domain.Ref) (*domain.PushTask, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+pushTaskCols+` FROM push_tasks WHERE id = ?`, int64(ref))
	return scanPushTask(row)
}

func (r *PushTaskRepo) ListActive(ctx context.Context, workspaceRef domain.Ref) ([]domain.PushTask, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+pushTaskCols+` FROM push_tasks
		WHERE workspace_ref = ? AND archived = 0
		ORDER BY id ASC
	`, int64(workspaceRef))
	if err != nil {
		return nil, fmt.Errorf("push task list: %w", err)
	}
	defer rows.Close()

	var out []domain.PushTask
	for rows.Next() {
		p, err := scanPushTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("push task rows: %w", err)
	}
	return out, nil
}

func scanPushTask(row scanner) (*domain.PushTask, error) {
	var (
		head      entityRow
		workspace int64
		kind      string
		sender    string
		channel   sql.NullString
		subject   sql.NullString
		body      string
		params    genParamsRow
	)
	dests := append(head.dests(), &workspace, &kind, &sender, &channel, &subject, &body)
	dests = append(dests, params.dests()...)
	if err := row.Scan(dests...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("push task scan: %w", err)
	}

	return &domain.PushTask{
		Entity:       head.toEntity(),
		WorkspaceRef: domain.Ref(workspace),
		Kind:         domain.PushTaskKind(kind),
		Sender:       sender,
		Channel:      strPtr(channel),
		Subject:      strPtr(subject),
		Body:         body,
		GenParams:    params.toParams(),
	}, nil
}
