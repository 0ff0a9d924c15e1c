package engine

import (
	"context"

	"github.com/horia141/jupiter-sub011/internal/domain"
	"github.com/horia141/jupiter-sub011/internal/schedule"
)

// ScoreOverview is the gamification dashboard: the user's standing in
// every current period bucket plus the most recent score events.
type ScoreOverview struct {
	Daily     domain.ScoreStats
	Weekly    domain.ScoreStats
	Monthly   domain.ScoreStats
	Quarterly domain.ScoreStats
	Yearly    domain.ScoreStats
	Lifetime  domain.ScoreStats
	Recent    []domain.ScoreLogEntry
}

func (s *Service) GetScoreOverview(ctx context.Context, recentLimit int) (ScoreOverview, error) {
	store := s.Store()
	ws, err := loadWorkspace(ctx, store)
	if err != nil {
		return ScoreOverview{}, err
	}
	if err := checkFeature(ws, domain.FeatureGamification); err != nil {
		return ScoreOverview{}, err
	}
	user, err := loadUser(ctx, store)
	if err != nil {
		return ScoreOverview{}, err
	}
	today := todayFor(user)

	var overview ScoreOverview
	slots := []struct {
		period schedule.Period
		dest   *domain.ScoreStats
	}{
		{schedule.PeriodDaily, &overview.Daily},
		{schedule.PeriodWeekly, &overview.Weekly},
		{schedule.PeriodMonthly, &overview.Monthly},
		{schedule.PeriodQuarterly, &overview.Quarterly},
		{schedule.PeriodYearly, &overview.Yearly},
	}
	for _, slot := range slots {
		timeline := schedule.InferTimelineForDate(slot.period, today)
		stats, err := store.ScoreStats.Get(ctx, user.Ref, slot.period, timeline)
		if err != nil {
			return ScoreOverview{}, err
		}
		*slot.dest = stats
	}
	lifetime, err := store.ScoreStats.Get(ctx, user.Ref, schedule.PeriodNone, schedule.TimelineLifetime)
	if err != nil {
		return ScoreOverview{}, err
	}
	overview.Lifetime = lifetime

	if recentLimit > 0 {
		recent, err := store.ScoreLog.ListRecent(ctx, user.Ref, recentLimit)
		if err != nil {
			return ScoreOverview{}, err
		}
		overview.Recent = recent
	}
	return overview, nil
}
