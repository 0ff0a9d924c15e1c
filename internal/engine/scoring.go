package engine

import (
	"context"

	"github.com/horia141/jupiter-sub011/internal/domain"
	"github.com/horia141/jupiter-sub011/internal/schedule"
	"github.com/horia141/jupiter-sub011/internal/storage"
)

// scoreValue is the fixed delta table. Failures negate the success value
// so that flip-flopping a task nets out to zero.
func scoreValue(source domain.ScoreSource, difficulty domain.Difficulty, success bool) int {
	var v int
	switch source {
	case domain.ScoreSourceBigPlan:
		v = 10
	default:
		switch difficulty {
		case domain.DifficultyMedium:
			v = 2
		case domain.DifficultyHard:
			v = 5
		default:
			v = 1
		}
	}
	if !success {
		return -v
	}
	return v
}

// scoreCtx carries what the scoring engine needs within one unit of work.
type scoreCtx struct {
	store *storage.Store
	stamp domain.Stamp
	user  domain.User
	today schedule.ADate
}

// recordScore folds a status transition into the score log and stats.
// Entering a terminal state records (or re-records) the task's entry;
// leaving a terminal state zeroes it. Non-terminal transitions with no
// prior entry are no-ops.
func recordScore(ctx context.Context, sc scoreCtx, source domain.ScoreSource, taskRef domain.Ref, difficulty domain.Difficulty, terminal, success bool) error {
	entry, err := sc.store.ScoreLog.FindBySourceTask(ctx, sc.user.Ref, source, taskRef)
	if err != nil {
		return err
	}

	oldScore := 0
	oldActive := false
	if entry != nil {
		oldScore = entry.Score
		oldActive = entry.Score != 0
	}

	newScore := 0
	if terminal {
		newScore = scoreValue(source, difficulty, success)
	}
	if newScore == oldScore {
		return nil
	}

	if entry == nil {
		created := domain.NewScoreLogEntry(sc.stamp, sc.user.Ref, source, taskRef, difficulty, success, newScore)
		if _, err := sc.store.ScoreLog.Create(ctx, created); err != nil {
			return err
		}
	} else {
		updated := entry.Rescore(sc.stamp, success, newScore)
		if _, err := sc.store.ScoreLog.Save(ctx, updated); err != nil {
			return err
		}
	}

	countDelta := 0
	if terminal && !oldActive {
		countDelta = 1
	} else if !terminal && oldActive {
		countDelta = -1
	}
	return applyStatsDelta(ctx, sc, source, newScore-oldScore, countDelta)
}

// reverseScore zeroes a task's contribution, typically when the task is
// archived while terminal.
func reverseScore(ctx context.Context, sc scoreCtx, source domain.ScoreSource, taskRef domain.Ref) error {
	entry, err := sc.store.ScoreLog.FindBySourceTask(ctx, sc.user.Ref, source, taskRef)
	if err != nil {
		return err
	}
	if entry == nil || entry.Score == 0 {
		return nil
	}
	old := entry.Score
	updated := entry.Rescore(sc.stamp, false, 0)
	if _, err := sc.store.ScoreLog.Save(ctx, updated); err != nil {
		return err
	}
	return applyStatsDelta(ctx, sc, source, -old, -1)
}

// applyStatsDelta updates all period aggregates for today plus the
// lifetime row.
func applyStatsDelta(ctx context.Context, sc scoreCtx, source domain.ScoreSource, delta, countDelta int) error {
	if delta == 0 && countDelta == 0 {
		return nil
	}
	for _, period := range schedule.AllPeriods {
		timeline := schedule.InferTimelineForDate(period, sc.today)
		if err := bumpStats(ctx, sc, period, timeline, delta, source, countDelta); err != nil {
			return err
		}
	}
	return bumpStats(ctx, sc, schedule.PeriodNone, schedule.TimelineLifetime, delta, source, countDelta)
}

func bumpStats(ctx context.Context, sc scoreCtx, period schedule.Period, timeline string, delta int, source domain.ScoreSource, countDelta int) error {
	stats, err := sc.store.ScoreStats.Get(ctx, sc.user.Ref, period, timeline)
	if err != nil {
		return err
	}
	return sc.store.ScoreStats.Upsert(ctx, stats.Apply(delta, source, countDelta))
}
