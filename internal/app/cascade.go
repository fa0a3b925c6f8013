package app

import (
	"context"

	"github.com/julianstephens/reto21d/internal/challenges"
	"github.com/julianstephens/reto21d/internal/constants"
	"github.com/julianstephens/reto21d/internal/errors"
	"github.com/julianstephens/reto21d/internal/logger"
	"github.com/julianstephens/reto21d/internal/models"
	"github.com/julianstephens/reto21d/internal/scheduler"
)

// ToggleResult reports a habit toggle and everything it set off
type ToggleResult struct {
	Habit      models.Habit         `json:"habit"`
	Completed  bool                 `json:"completed"`
	Points     int                  `json:"pointsAwarded"`
	PerfectDay bool                 `json:"perfectDay"`
	Unlocked   []models.Achievement `json:"unlocked,omitempty"`
}

// ToggleHabit flips today's completion of a habit. Completing it pays the
// habit points, a streak bonus on 3, 7, 14 and 21 day streaks and, once per
// date, the perfect-day bonus. Un-completing never takes points back.
func (a *App) ToggleHabit(ctx context.Context, id int) (ToggleResult, error) {
	a.cascade.Lock()
	defer a.cascade.Unlock()
	a.rollover(ctx)
	a.drainUnlocked()

	today := a.Today()
	h, completed, err := a.Habits.Toggle(ctx, id, today)
	if err != nil {
		return ToggleResult{}, err
	}
	res := ToggleResult{Habit: h, Completed: completed}

	done, total := a.Habits.CompletedToday()
	if completed {
		res.Points += a.Points.AwardHabitCompletion(ctx, h.Name)
		if scheduler.IsStreakMilestone(h.CurrentStreak) {
			res.Points += a.Points.AwardStreakBonus(ctx, h.CurrentStreak)
		}
		if done == total && a.markPerfect(today) {
			res.Points += a.Points.AwardPerfectDay(ctx, done, total)
			res.PerfectDay = true
		}

		a.notify(func() (bool, error) { return a.Scheduler.NotifyHabitCompleted(ctx, h.Name) })
		a.notify(func() (bool, error) { return a.Scheduler.NotifyStreakMilestone(ctx, h.Name, h.CurrentStreak) })
	}

	if c, err := a.Challenges.GetActive(ctx); err == nil {
		if _, err := a.Progress.Record(ctx, c.CurrentDay, today, done, total); err != nil {
			logger.Warn("Failed to record day progress", "day", c.CurrentDay, "error", err)
		}
	} else if !errors.Is(err, errors.ErrNoActiveChallenge) {
		logger.Warn("Failed to load active challenge", "error", err)
	}

	if _, err := a.Achievements.CheckAllAchievements(ctx, false); err != nil {
		logger.Warn("Achievement check failed", "error", err)
	}
	res.Unlocked = a.drainUnlocked()
	a.Persist(ctx)
	return res, nil
}

func (a *App) markPerfect(day string) bool {
	a.perfectMu.Lock()
	defer a.perfectMu.Unlock()
	if a.perfectDays[day] {
		return false
	}
	a.perfectDays[day] = true
	return true
}

func (a *App) notify(send func() (bool, error)) {
	if _, err := send(); err != nil {
		logger.Warn("Notification failed", "error", err)
	}
}

// DayResult reports a completed challenge day
type DayResult struct {
	Challenge models.Challenge     `json:"challenge"`
	Added     bool                 `json:"added"`
	Points    int                  `json:"pointsAwarded"`
	Finished  bool                 `json:"finished"`
	Unlocked  []models.Achievement `json:"unlocked,omitempty"`
}

// CompleteChallengeDay marks a day of the active challenge done. Day 0 means
// the challenge's current day.
func (a *App) CompleteChallengeDay(ctx context.Context, day int) (DayResult, error) {
	a.cascade.Lock()
	defer a.cascade.Unlock()
	a.rollover(ctx)
	a.drainUnlocked()

	before, err := a.Challenges.GetActive(ctx)
	if err != nil {
		return DayResult{}, err
	}
	if day == 0 {
		day = before.CurrentDay
	}

	c, added, err := a.Challenges.CompleteDay(ctx, day)
	if err != nil {
		return DayResult{}, err
	}
	res := DayResult{Challenge: c, Added: added}
	if added {
		res.Points += a.Points.AwardChallengeProgress(ctx, day)
		if c.IsCompleted && !before.IsCompleted {
			res.Points += a.Points.AwardChallengeCompletion(ctx)
			res.Finished = true
		}
	}
	res.Unlocked = a.drainUnlocked()
	a.Persist(ctx)
	return res, nil
}

// MiniResult reports progress on a mini-challenge
type MiniResult struct {
	challenges.MiniResult
	Points int `json:"pointsAwarded"`
}

// CompleteMiniChallenge records a day on a mini-challenge and pays progress
// or completion points
func (a *App) CompleteMiniChallenge(ctx context.Context, id, day int) (MiniResult, error) {
	a.cascade.Lock()
	defer a.cascade.Unlock()
	a.rollover(ctx)

	if day == 0 {
		c, err := a.Challenges.GetActive(ctx)
		if err != nil {
			return MiniResult{}, err
		}
		day = c.CurrentDay
	}
	r, err := a.Challenges.CompleteMiniChallenge(ctx, id, day)
	if err != nil {
		return MiniResult{}, err
	}
	res := MiniResult{MiniResult: r}
	switch {
	case r.JustCompleted:
		res.Points = a.Points.AwardMiniChallengeCompletion(ctx, r.MiniChallenge.Title)
	case r.Recorded:
		res.Points = a.Points.AwardMiniChallengeProgress(ctx, r.MiniChallenge.Title)
	}
	a.Persist(ctx)
	return res, nil
}

// RecordMoment pays the daily-moment bonus for a moment of the day
func (a *App) RecordMoment(ctx context.Context, m constants.Moment) (int, error) {
	valid := false
	for _, known := range constants.Moments {
		if m == known {
			valid = true
		}
	}
	if !valid {
		return 0, errors.Validationf("unknown moment %q", m)
	}
	return a.Points.AwardDailyMoment(ctx, string(m)), nil
}

// StartChallenge creates a new active challenge from today (or start)
func (a *App) StartChallenge(ctx context.Context, name, description, start string) (models.Challenge, error) {
	a.cascade.Lock()
	defer a.cascade.Unlock()
	c, err := a.Challenges.Create(ctx, models.Challenge{Name: name, Description: description, StartDate: start})
	if err != nil {
		return models.Challenge{}, err
	}
	if synced, err := a.Challenges.SyncCurrentDay(ctx); err == nil {
		c = synced
	}
	a.Persist(ctx)
	return c, nil
}

// CreateHabit adds a habit and re-checks the achievements that count habits
func (a *App) CreateHabit(ctx context.Context, h models.Habit) (models.Habit, []models.Achievement, error) {
	a.cascade.Lock()
	defer a.cascade.Unlock()
	a.rollover(ctx)
	a.drainUnlocked()

	created, err := a.Habits.Create(ctx, h)
	if err != nil {
		return models.Habit{}, nil, err
	}
	if _, err := a.Achievements.CheckAllAchievements(ctx, false); err != nil {
		logger.Warn("Achievement check failed", "error", err)
	}
	unlocked := a.drainUnlocked()
	a.Persist(ctx)
	return created, unlocked, nil
}

// CheckAchievements runs a full achievement check outside of any action
func (a *App) CheckAchievements(ctx context.Context, force bool) ([]models.Achievement, error) {
	a.cascade.Lock()
	defer a.cascade.Unlock()
	a.rollover(ctx)
	a.drainUnlocked()

	fresh, err := a.Achievements.CheckAllAchievements(ctx, force)
	a.drainUnlocked()
	return fresh, err
}
