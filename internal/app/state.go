package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/julianstephens/reto21d/internal/assessment"
	"github.com/julianstephens/reto21d/internal/constants"
	"github.com/julianstephens/reto21d/internal/errors"
	"github.com/julianstephens/reto21d/internal/logger"
	"github.com/julianstephens/reto21d/internal/models"
	"github.com/julianstephens/reto21d/internal/seed"
	"github.com/julianstephens/reto21d/internal/storage"
)

// Snapshot keys, all under constants.KeyStatePrefix
const (
	stateHabits         = constants.KeyStatePrefix + "habits"
	stateChallenges     = constants.KeyStatePrefix + "challenges"
	stateMiniChallenges = constants.KeyStatePrefix + "miniChallenges"
	stateDayProgress    = constants.KeyStatePrefix + "dayProgress"
	stateAssessments    = constants.KeyStatePrefix + "assessments"
	statePerfectDays    = constants.KeyStatePrefix + "perfectDays"
)

type state struct {
	seed.Data
	Assessments map[assessment.Kind]models.Assessment
	PerfectDays []string
}

// initialState starts from the seed data and overlays every collection that
// has a saved snapshot
func (a *App) initialState(ctx context.Context) (state, error) {
	d, err := seed.Load()
	if err != nil {
		return state{}, fmt.Errorf("failed to load seed data: %w", err)
	}
	st := state{Data: d}
	if !a.cfg.PersistState {
		return st, nil
	}

	restored := 0
	for key, dst := range map[string]interface{}{
		stateHabits:         &st.Habits,
		stateChallenges:     &st.Challenges,
		stateMiniChallenges: &st.MiniChallenges,
		stateDayProgress:    &st.DayProgress,
		stateAssessments:    &st.Assessments,
		statePerfectDays:    &st.PerfectDays,
	} {
		found, err := storage.GetJSON(ctx, a.kv, key, dst)
		if err != nil {
			logger.Warn("Ignoring unreadable snapshot", "key", key, "error", err)
			continue
		}
		if found {
			restored++
		}
	}
	if restored > 0 {
		logger.Debug("State restored", "collections", restored)
	}
	return st, nil
}

// Persist saves every collection when state persistence is on. Failures are
// logged and never returned.
func (a *App) Persist(ctx context.Context) {
	if !a.cfg.PersistState {
		return
	}

	hs, _ := a.Habits.GetAll(ctx)
	cs, _ := a.Challenges.GetAll(ctx)
	ms, _ := a.Challenges.GetMiniChallenges(ctx, 0)
	ps, _ := a.Progress.GetAll(ctx)

	a.perfectMu.Lock()
	days := make([]string, 0, len(a.perfectDays))
	for d := range a.perfectDays {
		days = append(days, d)
	}
	a.perfectMu.Unlock()
	sort.Strings(days)

	for key, v := range map[string]interface{}{
		stateHabits:         hs,
		stateChallenges:     cs,
		stateMiniChallenges: ms,
		stateDayProgress:    ps,
		stateAssessments:    a.Assessments.Snapshot(),
		statePerfectDays:    days,
	} {
		if err := storage.SetJSON(ctx, a.kv, key, v); err != nil {
			logger.Warn("Failed to persist state", "key", key, "error", fmt.Errorf("%w: %v", errors.ErrPersistence, err))
		}
	}
}
