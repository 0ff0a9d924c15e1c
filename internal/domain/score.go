package domain

import "github.com/horia141/jupiter-sub011/internal/schedule"

// ScoreSource is the kind of entity a score delta came from.
type ScoreSource string

const (
	ScoreSourceInboxTask ScoreSource = "inbox-task"
	ScoreSourceBigPlan   ScoreSource = "big-plan"
)

// ScoreLogEntry records the gamification outcome of one task or big
// plan. A task contributes at most one entry: re-entering a terminal
// state updates the entry in place rather than appending.
type ScoreLogEntry struct {
	Entity
	UserRef    Ref
	Source     ScoreSource
	TaskRef    Ref
	Difficulty Difficulty
	Success    bool
	Score      int
}

func NewScoreLogEntry(stamp Stamp, userRef Ref, source ScoreSource, taskRef Ref, difficulty Difficulty, success bool, score int) ScoreLogEntry {
	return ScoreLogEntry{
		Entity:     newEntity(stamp, "Recorded", Frame{"source": string(source), "task_ref": int64(taskRef), "score": score}),
		UserRef:    userRef,
		Source:     source,
		TaskRef:    taskRef,
		Difficulty: difficulty,
		Success:    success,
		Score:      score,
	}
}

// Rescore updates the entry when its task re-enters or leaves a terminal
// state.
func (e ScoreLogEntry) Rescore(stamp Stamp, success bool, score int) ScoreLogEntry {
	if e.Success == success && e.Score == score {
		return e
	}
	e.Success = success
	e.Score = score
	e.Entity = e.bump(stamp, "Rescored", Frame{"score": score})
	return e
}

// ScoreStats is the per-period rolling aggregate, keyed by
// (user, period, timeline). PeriodNone/"Lifetime" holds the all-time
// total. Plain upsert record, not event-sourced.
type ScoreStats struct {
	UserRef      Ref
	Period       schedule.Period
	Timeline     string
	TotalScore   int
	InboxTaskCnt int
	BigPlanCnt   int
}

// Apply folds a delta into the aggregate, clamping the total at zero.
func (s ScoreStats) Apply(delta int, source ScoreSource, countDelta int) ScoreStats {
	s.TotalScore += delta
	if s.TotalScore < 0 {
		s.TotalScore = 0
	}
	switch source {
	case ScoreSourceInboxTask:
		s.InboxTaskCnt += countDelta
		if s.InboxTaskCnt < 0 {
			s.InboxTaskCnt = 0
		}
	case ScoreSourceBigPlan:
		s.BigPlanCnt += countDelta
		if s.BigPlanCnt < 0 {
			s.BigPlanCnt = 0
		}
	}
	return s
}
