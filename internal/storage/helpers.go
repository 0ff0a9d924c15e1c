package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/horia141/jupiter-sub011/internal/domain"
	"github.com/horia141/jupiter-sub011/internal/schedule"
)

// Querier is satisfied by both *sql.DB and *sql.Tx so repos work inside
// and outside a unit of work.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

// entityHeadColumns is the column list shared by all entity tables, in
// scan order.
const entityHeadColumns = "id, version, archived, archived_reason, created_at, last_modified_at, archived_at"

type entityRow struct {
	id             int64
	version        int
	archived       int
	archivedReason sql.NullString
	createdAt      time.Time
	lastModifiedAt time.Time
	archivedAt     sql.NullTime
}

func (r *entityRow) dests() []any {
	return []any{&r.id, &r.version, &r.archived, &r.archivedReason, &r.createdAt, &r.lastModifiedAt, &r.archivedAt}
}

func (r *entityRow) toEntity() domain.Entity {
	e := domain.Entity{
		Ref:            domain.Ref(r.id),
		Version:        r.version,
		Archived:       r.archived != 0,
		CreatedAt:      r.createdAt.UTC(),
		LastModifiedAt: r.lastModifiedAt.UTC(),
	}
	if r.archivedReason.Valid {
		e.ArchivedReason = domain.ArchiveReason(r.archivedReason.String)
	}
	if r.archivedAt.Valid {
		at := r.archivedAt.Time.UTC()
		e.ArchivedAt = &at
	}
	return e
}

// entityHeadValues orders the head fields for inserts and updates,
// matching entityHeadColumns minus id.
func entityHeadValues(e domain.Entity) []any {
	var reason any
	if e.ArchivedReason != "" {
		reason = string(e.ArchivedReason)
	}
	var archivedAt any
	if e.ArchivedAt != nil {
		archivedAt = *e.ArchivedAt
	}
	return []any{e.Version, boolToInt(e.Archived), reason, e.CreatedAt, e.LastModifiedAt, archivedAt}
}

// insertEntity writes a fresh entity row plus its pending events and
// returns the assigned ref.
func insertEntity(ctx context.Context, q Querier, table string, e domain.Entity, extraCols []string, extraVals []any) (domain.Ref, error) {
	cols := append([]string{"version", "archived", "archived_reason", "created_at", "last_modified_at", "archived_at"}, extraCols...)
	vals := append(entityHeadValues(e), extraVals...)
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), placeholders)

	res, err := q.ExecContext(ctx, stmt, vals...)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, uniqueViolation(table)
		}
		return 0, fmt.Errorf("%s insert: %w", table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s last insert id: %w", table, err)
	}
	ref := domain.Ref(id)
	if err := appendEvents(ctx, q, table, ref, e.Events); err != nil {
		return 0, err
	}
	return ref, nil
}

// updateEntity persists a mutated snapshot with an optimistic version
// check and flushes its pending events. A snapshot with no pending
// events is a no-op.
func updateEntity(ctx context.Context, q Querier, table, kind string, e domain.Entity, extraCols []string, extraVals []any) error {
	if len(e.Events) == 0 {
		return nil
	}
	loadedVersion := e.Events[0].Version - 1

	cols := append([]string{"version", "archived", "archived_reason", "created_at", "last_modified_at", "archived_at"}, extraCols...)
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = c + " = ?"
	}
	vals := append(entityHeadValues(e), extraVals...)
	vals = append(vals, int64(e.Ref), loadedVersion)
	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE id = ? AND version = ?", table, strings.Join(sets, ", "))

	res, err := q.ExecContext(ctx, stmt, vals...)
	if err != nil {
		if isUniqueViolation(err) {
			return uniqueViolation(table)
		}
		return fmt.Errorf("%s update: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", table, err)
	}
	if n == 0 {
		return domain.ConflictError{Kind: kind, Ref: e.Ref, Version: loadedVersion}
	}
	return appendEvents(ctx, q, table, e.Ref, e.Events)
}

// appendEvents flushes pending events into the table's insert-only
// events sibling.
func appendEvents(ctx context.Context, q Querier, table string, ref domain.Ref, events []domain.Event) error {
	for i, ev := range events {
		var data any
		if len(ev.Frame) > 0 {
			blob, err := json.Marshal(ev.Frame)
			if err != nil {
				return fmt.Errorf("%s event frame: %w", table, err)
			}
			data = string(blob)
		}
		_, err := q.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO %s_events (owner_ref, timestamp, session_index, name, source, owner_version, kind, data)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, table), int64(ref), ev.Timestamp, i, ev.Name, string(ev.Source), ev.Version, string(ev.Kind), data)
		if err != nil {
			return fmt.Errorf("%s event insert: %w", table, err)
		}
	}
	return nil
}

// countEvents is used by tests to audit the event trail.
func countEvents(ctx context.Context, q Querier, table string, ref domain.Ref) (int, error) {
	row := q.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s_events WHERE owner_ref = ?`, table), int64(ref))
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("%s event count: %w", table, err)
	}
	return n, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func uniqueViolation(table string) error {
	switch table {
	case "journals":
		return domain.AlreadyExistsError{Kind: "journal", Key: "this date/period combination"}
	case "time_plans":
		return domain.AlreadyExistsError{Kind: "time plan", Key: "this date/period combination"}
	case "working_mem_entries":
		return domain.AlreadyExistsError{Kind: "working-mem entry", Key: "this date/period combination"}
	case "time_plan_activities":
		return domain.AlreadyExistsError{Kind: "time plan activity", Key: "this target"}
	case "users":
		return domain.AlreadyExistsError{Kind: "user", Key: "this email"}
	default:
		return domain.AlreadyExistsError{Kind: table, Key: "this key"}
	}
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func nullStr(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullInt(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}

func nullRef(r *domain.Ref) any {
	if r == nil {
		return nil
	}
	return int64(*r)
}

func nullDate(d *schedule.ADate) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func intPtr(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	v := int(ni.Int64)
	return &v
}

func refPtr(ni sql.NullInt64) *domain.Ref {
	if !ni.Valid {
		return nil
	}
	v := domain.Ref(ni.Int64)
	return &v
}

func datePtr(ns sql.NullString) (*schedule.ADate, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	d, err := schedule.ParseADate(ns.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func marshalFlags(flags domain.FeatureFlags) (string, error) {
	m := map[string]bool{}
	for f, on := range flags {
		m[string(f)] = on
	}
	blob, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshal feature flags: %w", err)
	}
	return string(blob), nil
}

func unmarshalFlags(raw string) (domain.FeatureFlags, error) {
	var m map[string]bool
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("unmarshal feature flags: %w", err)
	}
	flags := domain.FeatureFlags{}
	for f, on := range m {
		flags[domain.Feature(f)] = on
	}
	return flags, nil
}

// genParamsCols is the shared column list for embedded gen params.
var genParamsCols = []string{
	"gen_period", "gen_eisen", "gen_difficulty",
	"gen_actionable_from_day", "gen_actionable_from_month",
	"gen_due_at_day", "gen_due_at_month", "gen_skip_rule",
}

func genParamsVals(p *domain.RecurringTaskGenParams) []any {
	if p == nil {
		return []any{nil, nil, nil, nil, nil, nil, nil, nil}
	}
	return []any{
		string(p.Period), string(p.Eisen), string(p.Difficulty),
		nullInt(p.ActionableFromDay), nullInt(p.ActionableFromMonth),
		nullInt(p.DueAtDay), nullInt(p.DueAtMonth), nullStr(p.SkipRule),
	}
}

type genParamsRow struct {
	period, eisen, difficulty      sql.NullString
	actFromDay, actFromMonth       sql.NullInt64
	dueAtDay, dueAtMonth           sql.NullInt64
	skipRule                       sql.NullString
}

func (r *genParamsRow) dests() []any {
	return []any{&r.period, &r.eisen, &r.difficulty, &r.actFromDay, &r.actFromMonth, &r.dueAtDay, &r.dueAtMonth, &r.skipRule}
}

func (r *genParamsRow) toParams() *domain.RecurringTaskGenParams {
	if !r.period.Valid {
		return nil
	}
	return &domain.RecurringTaskGenParams{
		Period:              schedule.Period(r.period.String),
		Eisen:               domain.Eisen(r.eisen.String),
		Difficulty:          domain.Difficulty(r.difficulty.String),
		ActionableFromDay:   intPtr(r.actFromDay),
		ActionableFromMonth: intPtr(r.actFromMonth),
		DueAtDay:            intPtr(r.dueAtDay),
		DueAtMonth:          intPtr(r.dueAtMonth),
		SkipRule:            strPtr(r.skipRule),
	}
}
