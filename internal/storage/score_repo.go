package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/horia141/jupiter-sub011/internal/domain"
	"github.com/horia141/jupiter-sub011/internal/schedule"
)

type ScoreLogRepo struct {
	q Querier
}

func NewScoreLogRepo(q Querier) *ScoreLogRepo {
	return &ScoreLogRepo{q: q}
}

const scoreEntryCols = entityHeadColumns + `, user_ref, source, task_ref, difficulty, success, score`

var scoreEntryExtraCols = []string{"user_ref", "source", "task_ref", "difficulty", "success", "score"}

func scoreEntryVals(e domain.ScoreLogEntry) []any {
	return []any{
		int64(e.UserRef), string(e.Source), int64(e.TaskRef),
		string(e.Difficulty), boolToInt(e.Success), e.Score,
	}
}

func (r *ScoreLogRepo) Create(ctx context.Context, e domain.ScoreLogEntry) (domain.ScoreLogEntry, error) {
	ref, err := insertEntity(ctx, r.q, "score_log_entries", e.Entity, scoreEntryExtraCols, scoreEntryVals(e))
	if err != nil {
		return e, err
	}
	e.Entity.Ref = ref
	e.Entity = e.Entity.ClearEvents()
	return e, nil
}

func (r *ScoreLogRepo) Save(ctx context.Context, e domain.ScoreLogEntry) (domain.ScoreLogEntry, error) {
	if err := updateEntity(ctx, r.q, "score_log_entries", "score log entry", e.Entity, scoreEntryExtraCols, scoreEntryVals(e)); err != nil {
		return e, err
	}
	e.Entity = e.Entity.ClearEvents()
	return e, nil
}

// FindBySourceTask locates the at-most-one entry a task contributed.
func (r *ScoreLogRepo) FindBySourceTask(ctx context.Context, userRef domain.Ref, source domain.ScoreSource, taskRef domain.Ref) (*domain.ScoreLogEntry, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+scoreEntryCols+` FROM score_log_entries
		WHERE user_ref = ? AND source = ? AND task_ref = ?
	`, int64(userRef), string(source), int64(taskRef))
	return scanScoreEntry(row)
}

func (r *ScoreLogRepo) ListRecent(ctx context.Context, userRef domain.Ref, limit int) ([]domain.ScoreLogEntry, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+scoreEntryCols+` FROM score_log_entries
		WHERE user_ref = ?
		ORDER BY last_modified_at DESC, id DESC
		LIMIT ?
	`, int64(userRef), limit)
	if err != nil {
		return nil, fmt.Errorf("score entry list: %w", err)
	}
	defer rows.Close()

	var out []domain.ScoreLogEntry
	for rows.Next() {
		e, err := scanScoreEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("score entry rows: %w", err)
	}
	return out, nil
}

func scanScoreEntry(row scanner) (*domain.ScoreLogEntry, error) {
	var (
		head       entityRow
		userRef    int64
		source     string
		taskRef    int64
		difficulty string
		success    int
		score      int
	)
	dests := append(head.dests(), &userRef, &source, &taskRef, &difficulty, &success, &score)
	if err := row.Scan(dests...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("score entry scan: %w", err)
	}

	return &domain.ScoreLogEntry{
		Entity:     head.toEntity(),
		UserRef:    domain.Ref(userRef),
		Source:     domain.ScoreSource(source),
		TaskRef:    domain.Ref(taskRef),
		Difficulty: domain.Difficulty(difficulty),
		Success:    success != 0,
		Score:      score,
	}, nil
}

type ScoreStatsRepo struct {
	q Querier
}

func NewScoreStatsRepo(q Querier) *ScoreStatsRepo {
	return &ScoreStatsRepo{q: q}
}

// Get returns the aggregate row for a bucket, zeroed when absent.
func (r *ScoreStatsRepo) Get(ctx context.Context, userRef domain.Ref, period schedule.Period, timeline string) (domain.ScoreStats, error) {
	stats := domain.ScoreStats{UserRef: userRef, Period: period, Timeline: timeline}
	row := r.q.QueryRowContext(ctx, `
		SELECT total_score, inbox_task_cnt, big_plan_cnt FROM score_stats
		WHERE user_ref = ? AND period = ? AND timeline = ?
	`, int64(userRef), string(period), timeline)
	err := row.Scan(&stats.TotalScore, &stats.InboxTaskCnt, &stats.BigPlanCnt)
	if err == sql.ErrNoRows {
		return stats, nil
	}
	if err != nil {
		return stats, fmt.Errorf("score stats scan: %w", err)
	}
	return stats, nil
}

func (r *ScoreStatsRepo) Upsert(ctx context.Context, stats domain.ScoreStats) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO score_stats (user_ref, period, timeline, total_score, inbox_task_cnt, big_plan_cnt)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_ref, period, timeline) DO UPDATE SET
			total_score = excluded.total_score,
			inbox_task_cnt = excluded.inbox_task_cnt,
			big_plan_cnt = excluded.big_plan_cnt
	`, int64(stats.UserRef), string(stats.Period), stats.Timeline,
		stats.TotalScore, stats.InboxTaskCnt, stats.BigPlanCnt)
	if err != nil {
		return fmt.Errorf("score stats upsert: %w", err)
	}
	return nil
}

func (r *ScoreStatsRepo) ListForUser(ctx context.Context, userRef domain.Ref) ([]domain.ScoreStats, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT user_ref, period, timeline, total_score, inbox_task_cnt, big_plan_cnt FROM score_stats
		WHERE user_ref = ?
		ORDER BY period, timeline
	`, int64(userRef))
	if err != nil {
		return nil, fmt.Errorf("score stats list: %w", err)
	}
	defer rows.Close()

	var out []domain.ScoreStats
	for rows.Next() {
		var s domain.ScoreStats
		var user int64
		var period string
		if err := rows.Scan(&user, &period, &s.Timeline, &s.TotalScore, &s.InboxTaskCnt, &s.BigPlanCnt); err != nil {
			return nil, fmt.Errorf("score stats scan: %w", err)
		}
		s.UserRef = domain.Ref(user)
		s.Period = schedule.Period(period)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("score stats rows: %w", err)
	}
	return out, nil
}
