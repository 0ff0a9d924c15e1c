package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/horia141/jupiter-sub011/internal/domain"
	"github.com/horia141/jupiter-sub011/internal/schedule"
)

// GenLogRepo is the append-only audit trail of generation runs.
type GenLogRepo struct {
	q Querier
}

func NewGenLogRepo(q Querier) *GenLogRepo {
	return &GenLogRepo{q: q}
}

func (r *GenLogRepo) Append(ctx context.Context, entry domain.GenLogEntry) (domain.GenLogEntry, error) {
	targets, err := json.Marshal(entry.GenTargets)
	if err != nil {
		return entry, fmt.Errorf("gen log targets: %w", err)
	}
	errs, err := json.Marshal(entry.Errors)
	if err != nil {
		return entry, fmt.Errorf("gen log errors: %w", err)
	}
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO gen_log_entries (workspace_ref, source, today, gen_targets, created_cnt, updated_cnt, archived_cnt, errors, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, int64(entry.WorkspaceRef), string(entry.Source), entry.Today.String(), string(targets),
		entry.CreatedCnt, entry.UpdatedCnt, entry.ArchivedCnt, string(errs), entry.CreatedAt)
	if err != nil {
		return entry, fmt.Errorf("gen log insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return entry, fmt.Errorf("gen log last insert id: %w", err)
	}
	entry.Ref = domain.Ref(id)
	return entry, nil
}

// Latest returns the most recent run for a workspace, nil when the
// engine has never run. The engine backfills missed buckets from the
// returned entry's today.
func (r *GenLogRepo) Latest(ctx context.Context, workspaceRef domain.Ref) (*domain.GenLogEntry, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, workspace_ref, source, today, gen_targets, created_cnt, updated_cnt, archived_cnt, errors, created_at
		FROM gen_log_entries
		WHERE workspace_ref = ?
		ORDER BY id DESC
		LIMIT 1
	`, int64(workspaceRef))
	entry, err := scanGenLogEntry(row)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *GenLogRepo) ListRecent(ctx context.Context, workspaceRef domain.Ref, limit int) ([]domain.GenLogEntry, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, workspace_ref, source, today, gen_targets, created_cnt, updated_cnt, archived_cnt, errors, created_at
		FROM gen_log_entries
		WHERE workspace_ref = ?
		ORDER BY id DESC
		LIMIT ?
	`, int64(workspaceRef), limit)
	if err != nil {
		return nil, fmt.Errorf("gen log list: %w", err)
	}
	defer rows.Close()

	var out []domain.GenLogEntry
	for rows.Next() {
		entry, err := scanGenLogEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("gen log rows: %w", err)
	}
	return out, nil
}

func scanGenLogEntry(row scanner) (*domain.GenLogEntry, error) {
	var (
		entry      domain.GenLogEntry
		id         int64
		workspace  int64
		source     string
		today      string
		targetsRaw string
		errorsRaw  string
	)
	err := row.Scan(&id, &workspace, &source, &today, &targetsRaw,
		&entry.CreatedCnt, &entry.UpdatedCnt, &entry.ArchivedCnt, &errorsRaw, &entry.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("gen log scan: %w", err)
	}

	entry.Ref = domain.Ref(id)
	entry.WorkspaceRef = domain.Ref(workspace)
	entry.Source = domain.EventSource(source)
	entry.Today, err = schedule.ParseADate(today)
	if err != nil {
		return nil, fmt.Errorf("gen log today: %w", err)
	}
	if err := json.Unmarshal([]byte(targetsRaw), &entry.GenTargets); err != nil {
		return nil, fmt.Errorf("gen log targets: %w", err)
	}
	if err := json.Unmarshal([]byte(errorsRaw), &entry.Errors); err != nil {
		return nil, fmt.Errorf("gen log errors: %w", err)
	}
	entry.CreatedAt = entry.CreatedAt.UTC()
	return &entry, nil
}
