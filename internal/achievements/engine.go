package achievements

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/julianstephens/reto21d/internal/constants"
	"github.com/julianstephens/reto21d/internal/errors"
	"github.com/julianstephens/reto21d/internal/logger"
	"github.com/julianstephens/reto21d/internal/models"
	"github.com/julianstephens/reto21d/internal/storage"
	"github.com/julianstephens/reto21d/internal/utils"
)

// HabitSource supplies the habits predicates are evaluated against
type HabitSource interface {
	GetAll(ctx context.Context) ([]models.Habit, error)
}

// ChallengeSource supplies the active challenge
type ChallengeSource interface {
	GetActive(ctx context.Context) (models.Challenge, error)
}

// Observer is told about every new unlock
type Observer interface {
	AchievementUnlocked(a models.Achievement)
}

// Engine evaluates the achievement catalog and records unlocks. An unlock is
// permanent.
type Engine struct {
	mu         sync.Mutex
	kv         storage.KeyValueStore
	habits     HabitSource
	challenges ChallengeSource
	catalog    []models.Achievement
	unlocks    map[string]models.Unlock
	observers  []Observer
	clock      utils.Clock
}

func New(ctx context.Context, kv storage.KeyValueStore, habits HabitSource, challenges ChallengeSource, catalog []models.Achievement, clock utils.Clock) *Engine {
	if clock == nil {
		clock = utils.SystemClock
	}
	e := &Engine{
		kv:         kv,
		habits:     habits,
		challenges: challenges,
		catalog:    append([]models.Achievement(nil), catalog...),
		unlocks:    map[string]models.Unlock{},
		clock:      clock,
	}
	if _, err := storage.GetJSON(ctx, kv, constants.KeyUserAchievements, &e.unlocks); err != nil {
		logger.Warn("Failed to load unlocked achievements", "error", err)
		e.unlocks = map[string]models.Unlock{}
	}
	if e.unlocks == nil {
		e.unlocks = map[string]models.Unlock{}
	}
	return e
}

func (e *Engine) AddObserver(o Observer) {
	e.mu.Lock()
	e.observers = append(e.observers, o)
	e.mu.Unlock()
}

// Catalog returns the static achievement list
func (e *Engine) Catalog() []models.Achievement {
	return append([]models.Achievement(nil), e.catalog...)
}

func (e *Engine) find(key string) (models.Achievement, bool) {
	for _, a := range e.catalog {
		if a.Key == key {
			return a, true
		}
	}
	return models.Achievement{}, false
}

// snapshot is the state a single pass evaluates against
type snapshot struct {
	habits    []models.Habit
	challenge models.Challenge
}

func (e *Engine) load(ctx context.Context) (snapshot, error) {
	var snap snapshot
	habits, err := e.habits.GetAll(ctx)
	if err != nil {
		return snap, fmt.Errorf("failed to load habits: %w", err)
	}
	snap.habits = habits

	c, err := e.challenges.GetActive(ctx)
	switch {
	case err == nil:
		snap.challenge = c
	case errors.Is(err, errors.ErrNoActiveChallenge):
	default:
		return snap, fmt.Errorf("failed to load challenge: %w", err)
	}
	return snap, nil
}

// CheckAllAchievements evaluates every locked achievement, or every
// achievement when force is set, and unlocks those whose requirement holds.
// Only achievements unlocked by this pass are returned.
func (e *Engine) CheckAllAchievements(ctx context.Context, force bool) ([]models.Achievement, error) {
	snap, err := e.load(ctx)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	var fresh []models.Achievement
	for _, a := range e.catalog {
		if _, ok := e.unlocks[a.Key]; ok && !force {
			continue
		}
		if !met(a.Requirement, snap) {
			continue
		}
		if e.unlockLocked(ctx, a.Key) {
			fresh = append(fresh, a)
		}
	}
	observers := append([]Observer(nil), e.observers...)
	e.mu.Unlock()

	for _, a := range fresh {
		logger.Info("Achievement unlocked", "key", a.Key, "points", a.Points)
		for _, o := range observers {
			o.AchievementUnlocked(a)
		}
	}
	return fresh, nil
}

// UnlockAchievement records an unlock for key. It reports false when the key
// was already unlocked.
func (e *Engine) UnlockAchievement(ctx context.Context, key string) (bool, error) {
	a, ok := e.find(key)
	if !ok {
		return false, errors.NotFoundf("achievement %q", key)
	}

	e.mu.Lock()
	added := e.unlockLocked(ctx, key)
	observers := append([]Observer(nil), e.observers...)
	e.mu.Unlock()

	if added {
		for _, o := range observers {
			o.AchievementUnlocked(a)
		}
	}
	return added, nil
}

func (e *Engine) unlockLocked(ctx context.Context, key string) bool {
	if _, ok := e.unlocks[key]; ok {
		return false
	}
	e.unlocks[key] = models.Unlock{UnlockedAt: e.clock(), Progress: 100}
	if err := storage.SetJSON(ctx, e.kv, constants.KeyUserAchievements, e.unlocks); err != nil {
		logger.Warn("Failed to persist achievements", "error", fmt.Errorf("%w: %v", errors.ErrPersistence, err))
	}
	return true
}

func (e *Engine) IsAchievementUnlocked(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.unlocks[key]
	return ok
}

// Unlocks returns a copy of the unlock map
func (e *Engine) Unlocks() map[string]models.Unlock {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]models.Unlock, len(e.unlocks))
	for k, v := range e.unlocks {
		out[k] = v
	}
	return out
}

// GetProgressTowardsAchievement returns 0-100. Unlocked achievements report
// 100, unknown keys and requirement types 0.
func (e *Engine) GetProgressTowardsAchievement(ctx context.Context, key string) (int, error) {
	a, ok := e.find(key)
	if !ok {
		return 0, errors.NotFoundf("achievement %q", key)
	}
	if e.IsAchievementUnlocked(key) {
		return 100, nil
	}
	snap, err := e.load(ctx)
	if err != nil {
		return 0, err
	}
	return progress(a.Requirement, snap), nil
}

// Statuses joins the catalog with unlock state and progress
func (e *Engine) Statuses(ctx context.Context) ([]models.AchievementStatus, error) {
	snap, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	unlocks := e.Unlocks()

	out := make([]models.AchievementStatus, 0, len(e.catalog))
	for _, a := range e.catalog {
		st := models.AchievementStatus{Achievement: a}
		if u, ok := unlocks[a.Key]; ok {
			at := u.UnlockedAt
			st.Unlocked = true
			st.UnlockedAt = &at
			st.Progress = 100
		} else {
			st.Progress = progress(a.Requirement, snap)
		}
		out = append(out, st)
	}
	return out, nil
}

// UnlockedPoints sums the catalog points of every unlocked achievement
func (e *Engine) UnlockedPoints() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	sum := 0
	for _, a := range e.catalog {
		if _, ok := e.unlocks[a.Key]; ok {
			sum += a.Points
		}
	}
	return sum
}

// Reset forgets every unlock in memory, after the persisted key was removed
func (e *Engine) Reset() {
	e.mu.Lock()
	e.unlocks = map[string]models.Unlock{}
	e.mu.Unlock()
}

func met(req models.Requirement, snap snapshot) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("Achievement check failed", "type", req.Type, "panic", r)
			ok = false
		}
	}()

	c := snap.challenge
	switch req.Type {
	case constants.ReqConsecutiveDays:
		return LongestRun(c.CompletedDays) >= req.Value
	case constants.ReqPerfectDay:
		return perfectToday(snap.habits)
	case constants.ReqConsistencyRate:
		return consistencyRate(snap.habits, req.Days) >= float64(req.Value)
	case constants.ReqChallengeComplete:
		return c.IsCompleted || len(c.CompletedDays) >= req.Value
	case constants.ReqPerfectDaysCount:
		return estimatedPerfectDays(c.CompletedDays) >= req.Value
	case constants.ReqCustomHabitsCreated:
		return len(snap.habits) >= req.Value
	}
	return false
}

func progress(req models.Requirement, snap snapshot) (pct int) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("Achievement progress failed", "type", req.Type, "panic", r)
			pct = 0
		}
	}()

	c := snap.challenge
	switch req.Type {
	case constants.ReqConsecutiveDays:
		return ratio(float64(LongestRun(c.CompletedDays)), float64(req.Value))
	case constants.ReqPerfectDay:
		done := 0
		for _, h := range snap.habits {
			if h.IsCompletedToday {
				done++
			}
		}
		return ratio(float64(done), float64(len(snap.habits)))
	case constants.ReqConsistencyRate:
		return ratio(consistencyRate(snap.habits, req.Days), float64(req.Value))
	case constants.ReqChallengeComplete:
		if c.IsCompleted {
			return 100
		}
		return ratio(float64(len(c.CompletedDays)), float64(req.Value))
	case constants.ReqPerfectDaysCount:
		return ratio(float64(estimatedPerfectDays(c.CompletedDays)), float64(req.Value))
	case constants.ReqCustomHabitsCreated:
		return ratio(float64(len(snap.habits)), float64(req.Value))
	}
	return 0
}

func ratio(have, want float64) int {
	if want <= 0 {
		return 0
	}
	pct := int(math.Floor(have / want * 100))
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// LongestRun returns the length of the longest run of consecutive integers
// in days. Duplicates are ignored.
func LongestRun(days []int) int {
	if len(days) == 0 {
		return 0
	}
	sorted := append([]int(nil), days...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	best, run := 1, 1
	for i := 1; i < len(sorted); i++ {
		switch sorted[i-1] - sorted[i] {
		case 0:
		case 1:
			run++
			if run > best {
				best = run
			}
		default:
			run = 1
		}
	}
	return best
}

func perfectToday(habits []models.Habit) bool {
	if len(habits) == 0 {
		return false
	}
	for _, h := range habits {
		if !h.IsCompletedToday {
			return false
		}
	}
	return true
}

// consistencyRate approximates completion over a window of days from the raw
// completion counts. It is not a trailing-window rate.
func consistencyRate(habits []models.Habit, days int) float64 {
	if len(habits) == 0 || days <= 0 {
		return 0
	}
	sum := 0
	for _, h := range habits {
		n := len(h.CompletionDates)
		if n > days {
			n = days
		}
		sum += n
	}
	return float64(sum) / float64(len(habits)*days) * 100
}

// estimatedPerfectDays assumes roughly 30% of completed challenge days were
// perfect; per-day perfection is not tracked.
func estimatedPerfectDays(completed []int) int {
	return int(math.Floor(float64(len(completed)) * 0.3))
}
