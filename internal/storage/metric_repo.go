package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/horia141/jupiter-sub011/internal/domain"
	"github.com/horia141/jupiter-sub011/internal/schedule"
)

type MetricRepo struct {
	q Querier
}

func NewMetricRepo(q Querier) *MetricRepo {
	return &MetricRepo{q: q}
}

const metricCols = entityHeadColumns + `, workspace_ref, name, unit,
	gen_period, gen_eisen, gen_difficulty, gen_actionable_from_day, gen_actionable_from_month,
	gen_due_at_day, gen_due_at_month, gen_skip_rule`

var metricExtraCols = append([]string{"workspace_ref", "name", "unit"}, genParamsCols...)

func metricVals(m domain.Metric) []any {
	vals := []any{int64(m.WorkspaceRef), m.Name.String(), nullStr(m.Unit)}
	return append(vals, genParamsVals(m.CollectionParams)...)
}

func (r *MetricRepo) Create(ctx context.Context, m domain.Metric) (domain.Metric, error) {
	ref, err := insertEntity(ctx, r.q, "metrics", m.Entity, metricExtraCols, metricVals(m))
	if err != nil {
		return m, err
	}
	m.Entity.Ref = ref
	m.Entity = m.Entity.ClearEvents()
	return m, nil
}

func (r *MetricRepo) Save(ctx context.Context, m domain.Metric) (domain.Metric, error) {
	if err := updateEntity(ctx, r.q, "metrics", "metric", m.Entity, metricExtraCols, metricVals(m)); err != nil {
		return m, err
	}
	m.Entity = m.Entity.ClearEvents()
	return m, nil
}

func (r *MetricRepo) Get(ctx context.Context, ref domain.Ref) (*domain.Metric, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+metricCols+` FROM metrics WHERE id = ?`, int64(ref))
	return scanMetric(row)
}

func (r *MetricRepo) ListActive(ctx context.Context, workspaceRef domain.Ref) ([]domain.Metric, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+metricCols+` FROM metrics
		WHERE workspace_ref = ? AND archived = 0
		ORDER BY id ASC
	`, int64(workspaceRef))
	if err != nil {
		return nil, fmt.Errorf("metric list: %w", err)
	}
	defer rows.Close()

	var out []domain.Metric
	for rows.Next() {
		m, err := scanMetric(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("metric rows: %w", err)
	}
	return out, nil
}

func scanMetric(row scanner) (*domain.Metric, error) {
	var (
		head      entityRow
		workspace int64
		name      string
		unit      sql.NullString
		params    genParamsRow
	)
	dests := append(head.dests(), &workspace, &name, &unit)
	dests = append(dests, params.dests()...)
	if err := row.Scan(dests...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("metric scan: %w", err)
	}

	return &domain.Metric{
		Entity:           head.toEntity(),
		WorkspaceRef:     domain.Ref(workspace),
		Name:             domain.EntityName(name),
		Unit:             strPtr(unit),
		CollectionParams: params.toParams(),
	}, nil
}

type MetricEntryRepo struct {
	q Querier
}

func NewMetricEntryRepo(q Querier) *MetricEntryRepo {
	return &MetricEntryRepo{q: q}
}

const metricEntryCols = entityHeadColumns + `, metric_ref, collection_time, value, notes`

var metricEntryExtraCols = []string{"metric_ref", "collection_time", "value", "notes"}

func metricEntryVals(e domain.MetricEntry) []any {
	return []any{int64(e.MetricRef), e.CollectionTime.String(), e.Value, nullStr(e.Notes)}
}

func (r *MetricEntryRepo) Create(ctx context.Context, e domain.MetricEntry) (domain.MetricEntry, error) {
	ref, err := insertEntity(ctx, r.q, "metric_entries", e.Entity, metricEntryExtraCols, metricEntryVals(e))
	if err != nil {
		return e, err
	}
	e.Entity.Ref = ref
	e.Entity = e.Entity.ClearEvents()
	return e, nil
}

func (r *MetricEntryRepo) Save(ctx context.Context, e domain.MetricEntry) (domain.MetricEntry, error) {
	if err := updateEntity(ctx, r.q, "metric_entries", "metric entry", e.Entity, metricEntryExtraCols, metricEntryVals(e)); err != nil {
		return e, err
	}
	e.Entity = e.Entity.ClearEvents()
	return e, nil
}

func (r *MetricEntryRepo) Get(ctx context.Context, ref domain.Ref) (*domain.MetricEntry, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+metricEntryCols+` FROM metric_entries WHERE id = ?`, int64(ref))
	return scanMetricEntry(row)
}

func (r *MetricEntryRepo) ListByMetric(ctx context.Context, metricRef domain.Ref) ([]domain.MetricEntry, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+metricEntryCols+` FROM metric_entries
		WHERE metric_ref = ? AND archived = 0
		ORDER BY collection_time ASC, id ASC
	`, int64(metricRef))
	if err != nil {
		return nil, fmt.Errorf("metric entry list: %w", err)
	}
	defer rows.Close()

	var out []domain.MetricEntry
	for rows.Next() {
		e, err := scanMetricEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("metric entry rows: %w", err)
	}
	return out, nil
}

func scanMetricEntry(row scanner) (*domain.MetricEntry, error) {
	var (
		head           entityRow
		metricRef      int64
		collectionTime string
		value          float64
		notes          sql.NullString
	)
	dests := append(head.dests(), &metricRef, &collectionTime, &value, &notes)
	if err := row.Scan(dests...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("metric entry scan: %w", err)
	}

	when, err := schedule.ParseADate(collectionTime)
	if err != nil {
		return nil, fmt.Errorf("metric entry collection time: %w", err)
	}

	return &domain.MetricEntry{
		Entity:         head.toEntity(),
		MetricRef:      domain.Ref(metricRef),
		CollectionTime: when,
		Value:          value,
		Notes:          strPtr(notes),
	}, nil
}
