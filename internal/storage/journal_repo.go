package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/horia141/jupiter-sub011/internal/domain"
	"github.com/horia141/jupiter-sub011/internal/schedule"
)

type JournalRepo struct {
	q Querier
}

func NewJournalRepo(q Querier) *JournalRepo {
	return &JournalRepo{q: q}
}

const journalCols = entityHeadColumns + `, workspace_ref, right_now, period, timeline, report`

var journalExtraCols = []string{"workspace_ref", "right_now", "period", "timeline", "report"}

func journalVals(j domain.Journal) []any {
	return []any{int64(j.WorkspaceRef), j.RightNow.String(), string(j.Period), j.Timeline, nullStr(j.Report)}
}

func (r *JournalRepo) Create(ctx context.Context, j domain.Journal) (domain.Journal, error) {
	ref, err := insertEntity(ctx, r.q, "journals", j.Entity, journalExtraCols, journalVals(j))
	if err != nil {
		return j, err
	}
	j.Entity.Ref = ref
	j.Entity = j.Entity.ClearEvents()
	return j, nil
}

func (r *JournalRepo) Save(ctx context.Context, j domain.Journal) (domain.Journal, error) {
	if err := updateEntity(ctx, r.q, "journals", "journal", j.Entity, journalExtraCols, journalVals(j)); err != nil {
		return j, err
	}
	j.Entity = j.Entity.ClearEvents()
	return j, nil
}

func (r *JournalRepo) Get(ctx context.Context, ref domain.Ref) (*domain.Journal, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+journalCols+` FROM journals WHERE id = ?`, int64(ref))
	return scanJournal(row)
}

// FindByTimeline locates the singleton for a bucket, nil when absent.
func (r *JournalRepo) FindByTimeline(ctx context.Context, workspaceRef domain.Ref, period schedule.Period, timeline string) (*domain.Journal, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+journalCols+` FROM journals
		WHERE workspace_ref = ? AND period = ? AND timeline = ? AND archived = 0
	`, int64(workspaceRef), string(period), timeline)
	return scanJournal(row)
}

func (r *JournalRepo) ListActive(ctx context.Context, workspaceRef domain.Ref) ([]domain.Journal, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+journalCols+` FROM journals
		WHERE workspace_ref = ? AND archived = 0
		ORDER BY right_now DESC, id DESC
	`, int64(workspaceRef))
	if err != nil {
		return nil, fmt.Errorf("journal list: %w", err)
	}
	defer rows.Close()

	var out []domain.Journal
	for rows.Next() {
		j, err := scanJournal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal rows: %w", err)
	}
	return out, nil
}

func scanJournal(row scanner) (*domain.Journal, error) {
	var (
		head      entityRow
		workspace int64
		rightNow  string
		period    string
		timeline  string
		report    sql.NullString
	)
	dests := append(head.dests(), &workspace, &rightNow, &period, &timeline, &report)
	if err := row.Scan(dests...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("journal scan: %w", err)
	}

	when, err := schedule.ParseADate(rightNow)
	if err != nil {
		return nil, fmt.Errorf("journal right now: %w", err)
	}

	return &domain.Journal{
		Entity:       head.toEntity(),
		WorkspaceRef: domain.Ref(workspace),
		RightNow:     when,
		Period:       schedule.Period(period),
		Timeline:     timeline,
		Report:       strPtr(report),
	}, nil
}

type WorkingMemRepo struct {
	q Querier
}

func NewWorkingMemRepo(q Querier) *WorkingMemRepo {
	return &WorkingMemRepo{q: q}
}

const workingMemCols = entityHeadColumns + `, workspace_ref, right_now, period, timeline, content`

var workingMemExtraCols = []string{"workspace_ref", "right_now", "period", "timeline", "content"}

func workingMemVals(w domain.WorkingMemEntry) []any {
	return []any{int64(w.WorkspaceRef), w.RightNow.String(), string(w.Period), w.Timeline, w.Content}
}

func (r *WorkingMemRepo) Create(ctx context.Context, w domain.WorkingMemEntry) (domain.WorkingMemEntry, error) {
	ref, err := insertEntity(ctx, r.q, "working_mem_entries", w.Entity, workingMemExtraCols, workingMemVals(w))
	if err != nil {
		return w, err
	}
	w.Entity.Ref = ref
	w.Entity = w.Entity.ClearEvents()
	return w, nil
}

func (r *WorkingMemRepo) Save(ctx context.Context, w domain.WorkingMemEntry) (domain.WorkingMemEntry, error) {
	if err := updateEntity(ctx, r.q, "working_mem_entries", "working-mem entry", w.Entity, workingMemExtraCols, workingMemVals(w)); err != nil {
		return w, err
	}
	w.Entity = w.Entity.ClearEvents()
	return w, nil
}

func (r *WorkingMemRepo) Get(ctx context.Context, ref domain.Ref) (*domain.WorkingMemEntry, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+workingMemCols+` FROM working_mem_entries WHERE id = ?`, int64(ref))
	return scanWorkingMem(row)
}

func (r *WorkingMemRepo) FindByTimeline(ctx context.Context, workspaceRef domain.Ref, period schedule.Period, timeline string) (*domain.WorkingMemEntry, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+workingMemCols+` FROM working_mem_entries
		WHERE workspace_ref = ? AND period = ? AND timeline = ? AND archived = 0
	`, int64(workspaceRef), string(period), timeline)
	return scanWorkingMem(row)
}

// ListActive returns live entries newest bucket first. The generation
// engine uses it to expire entries whose bucket has passed.
func (r *WorkingMemRepo) ListActive(ctx context.Context, workspaceRef domain.Ref) ([]domain.WorkingMemEntry, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+workingMemCols+` FROM working_mem_entries
		WHERE workspace_ref = ? AND archived = 0
		ORDER BY right_now DESC, id DESC
	`, int64(workspaceRef))
	if err != nil {
		return nil, fmt.Errorf("working-mem list: %w", err)
	}
	defer rows.Close()

	var out []domain.WorkingMemEntry
	for rows.Next() {
		w, err := scanWorkingMem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("working-mem rows: %w", err)
	}
	return out, nil
}

func scanWorkingMem(row scanner) (*domain.WorkingMemEntry, error) {
	var (
		head      entityRow
		workspace int64
		rightNow  string
		period    string
		timeline  string
		content   string
	)
	dests := append(head.dests(), &workspace, &rightNow, &period, &timeline, &content)
	if err := row.Scan(dests...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("working-mem scan: %w", err)
	}

	when, err := schedule.ParseADate(rightNow)
	if err != nil {
		return nil, fmt.Errorf("working-mem right now: %w", err)
	}

	return &domain.WorkingMemEntry{
		Entity:       head.toEntity(),
		WorkspaceRef: domain.Ref(workspace),
		RightNow:     when,
		Period:       schedule.Period(period),
		Timeline:     timeline,
		Content:      content,
	}, nil
}

type NoteRepo struct {
	q Querier
}

func NewNoteRepo(q Querier) *NoteRepo {
	return &NoteRepo{q: q}
}

const noteCols = entityHeadColumns + `, workspace_ref, source_kind, source_ref, content`

var noteExtraCols = []string{"workspace_ref", "source_kind", "source_ref", "content"}

func noteVals(n domain.Note) []any {
	return []any{int64(n.WorkspaceRef), string(n.SourceKind), int64(n.SourceRef), n.Content}
}

func (r *NoteRepo) Create(ctx context.Context, n domain.Note) (domain.Note, error) {
	ref, err := insertEntity(ctx, r.q, "notes", n.Entity, noteExtraCols, noteVals(n))
	if err != nil {
		return n, err
	}
	n.Entity.Ref = ref
	n.Entity = n.Entity.ClearEvents()
	return n, nil
}

func (r *NoteRepo) Save(ctx context.Context, n domain.Note) (domain.Note, error) {
	if err := updateEntity(ctx, r.q, "notes", "note", n.Entity, noteExtraCols, noteVals(n)); err != nil {
		return n, err
	}
	n.Entity = n.Entity.ClearEvents()
	return n, nil
}

func (r *NoteRepo) Get(ctx context.Context, ref domain.Ref) (*domain.Note, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+noteCols+` FROM notes WHERE id = ?`, int64(ref))
	return scanNote(row)
}

// FindBySource locates the live note attached to an entity, nil when the
// entity carries none.
func (r *NoteRepo) FindBySource(ctx context.Context, sourceKind domain.EntityKind, sourceRef domain.Ref) (*domain.Note, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+noteCols+` FROM notes
		WHERE source_kind = ? AND source_ref = ? AND archived = 0
	`, string(sourceKind), int64(sourceRef))
	return scanNote(row)
}

func scanNote(row scanner) (*domain.Note, error) {
	var (
		head       entityRow
		workspace  int64
		sourceKind string
		sourceRef  int64
		content    string
	)
	dests := append(head.dests(), &workspace, &sourceKind, &sourceRef, &content)
	if err := row.Scan(dests...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("note scan: %w", err)
	}

	return &domain.Note{
		Entity:       head.toEntity(),
		WorkspaceRef: domain.Ref(workspace),
		SourceKind:   domain.EntityKind(sourceKind),
		SourceRef:    domain.Ref(sourceRef),
		Content:      content,
	}, nil
}
