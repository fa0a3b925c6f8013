package points

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/reto21d/internal/constants"
	"github.com/julianstephens/reto21d/internal/errors"
	"github.com/julianstephens/reto21d/internal/logger"
	"github.com/julianstephens/reto21d/internal/models"
	"github.com/julianstephens/reto21d/internal/storage"
	"github.com/julianstephens/reto21d/internal/utils"
)

// AchievementChecker re-evaluates achievements after a qualifying award
type AchievementChecker interface {
	CheckAllAchievements(ctx context.Context, force bool) ([]models.Achievement, error)
}

// Observer is told about every non-zero award
type Observer interface {
	PointsAwarded(action models.PointsAction, points, total int)
}

// Ledger accumulates reward points. The total never decreases and the
// history keeps the most recent entries only.
type Ledger struct {
	mu        sync.Mutex
	kv        storage.KeyValueStore
	total     int
	history   []models.PointsEntry
	checker   AchievementChecker
	observers []Observer
	clock     utils.Clock
}

// New loads the persisted total and history. Unreadable values are logged
// and treated as empty.
func New(ctx context.Context, kv storage.KeyValueStore, checker AchievementChecker, clock utils.Clock) *Ledger {
	if clock == nil {
		clock = utils.SystemClock
	}
	l := &Ledger{kv: kv, checker: checker, clock: clock}

	if raw, err := kv.Get(ctx, constants.KeyUserPoints); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(string(raw))); err == nil && n >= 0 {
			l.total = n
		} else {
			logger.Warn("Ignoring unreadable points total", "value", string(raw))
		}
	} else if !errors.Is(err, storage.ErrKeyNotFound) {
		logger.Warn("Failed to load points total", "error", err)
	}

	if _, err := storage.GetJSON(ctx, kv, constants.KeyPointsHistory, &l.history); err != nil {
		logger.Warn("Failed to load points history", "error", err)
		l.history = nil
	}
	return l
}

// AddObserver registers an observer for future awards
func (l *Ledger) AddObserver(o Observer) {
	l.mu.Lock()
	l.observers = append(l.observers, o)
	l.mu.Unlock()
}

func (l *Ledger) Total() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

// History returns the entries newest first
func (l *Ledger) History() []models.PointsEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.PointsEntry, len(l.history))
	for i, e := range l.history {
		out[len(l.history)-1-i] = e
	}
	return out
}

func (l *Ledger) AwardHabitCompletion(ctx context.Context, habitName string) int {
	return l.award(ctx, models.ActionHabitCompletion, constants.PointsHabitCompletion, "Hábito completado: "+habitName)
}

func (l *Ledger) AwardDailyMoment(ctx context.Context, moment string) int {
	return l.award(ctx, models.ActionDailyMoment, constants.PointsDailyMoment, "Momento del día: "+moment)
}

// AwardStreakBonus pays days*5 for streaks of at least 3 days
func (l *Ledger) AwardStreakBonus(ctx context.Context, days int) int {
	if days < constants.PointsStreakThreshold {
		return 0
	}
	return l.award(ctx, models.ActionStreakBonus, days*constants.PointsStreakPerDay, fmt.Sprintf("Racha de %d días", days))
}

// AwardPerfectDay pays a flat bonus only when every habit was completed
func (l *Ledger) AwardPerfectDay(ctx context.Context, completed, total int) int {
	if total <= 0 || completed != total {
		return 0
	}
	return l.award(ctx, models.ActionPerfectDay, constants.PointsPerfectDay, fmt.Sprintf("Día perfecto: %d/%d hábitos", completed, total))
}

// AwardChallengeProgress pays min(day*2, 15)
func (l *Ledger) AwardChallengeProgress(ctx context.Context, day int) int {
	pts := day * constants.PointsChallengeProgressPerDay
	if pts > constants.PointsChallengeProgressCap {
		pts = constants.PointsChallengeProgressCap
	}
	if pts <= 0 {
		return 0
	}
	return l.award(ctx, models.ActionChallengeProgress, pts, fmt.Sprintf("Día %d del reto", day))
}

func (l *Ledger) AwardMiniChallengeCompletion(ctx context.Context, title string) int {
	return l.award(ctx, models.ActionMiniChallengeCompletion, constants.PointsMiniChallengeCompletion, "Mini reto completado: "+title)
}

func (l *Ledger) AwardMiniChallengeProgress(ctx context.Context, title string) int {
	return l.award(ctx, models.ActionMiniChallengeProgress, constants.PointsMiniChallengeProgress, "Progreso en mini reto: "+title)
}

func (l *Ledger) AwardChallengeCompletion(ctx context.Context) int {
	return l.award(ctx, models.ActionChallengeCompletion, constants.PointsChallengeCompletion, "¡Reto de 21 días completado!")
}

func (l *Ledger) award(ctx context.Context, action models.PointsAction, pts int, details string) int {
	if pts <= 0 {
		return 0
	}

	l.mu.Lock()
	l.total += pts
	entry := models.PointsEntry{
		ID:         uuid.NewString(),
		Action:     action,
		Points:     pts,
		Details:    details,
		Timestamp:  l.clock(),
		TotalAfter: l.total,
	}
	l.history = append(l.history, entry)
	if over := len(l.history) - constants.MaxPointsHistory; over > 0 {
		l.history = append([]models.PointsEntry(nil), l.history[over:]...)
	}
	total := l.total
	// persisted under the lock so a stale total can never overwrite a newer one
	l.persist(ctx, total, l.history)
	observers := append([]Observer(nil), l.observers...)
	l.mu.Unlock()

	logger.Debug("Points awarded", "action", action, "points", pts, "total", total)

	for _, o := range observers {
		o.PointsAwarded(action, pts, total)
	}

	if action.TriggersAchievementCheck() && l.checker != nil {
		if _, err := l.checker.CheckAllAchievements(ctx, false); err != nil {
			logger.Warn("Achievement re-check failed", "action", action, "error", err)
		}
	}
	return pts
}

func (l *Ledger) persist(ctx context.Context, total int, history []models.PointsEntry) {
	if err := l.kv.Set(ctx, constants.KeyUserPoints, []byte(strconv.Itoa(total))); err != nil {
		logger.Warn("Failed to persist points total", "error", fmt.Errorf("%w: %v", errors.ErrPersistence, err))
	}
	if err := storage.SetJSON(ctx, l.kv, constants.KeyPointsHistory, history); err != nil {
		logger.Warn("Failed to persist points history", "error", fmt.Errorf("%w: %v", errors.ErrPersistence, err))
	}
}

// Reset clears the in-memory ledger after the persisted keys were removed
func (l *Ledger) Reset() {
	l.mu.Lock()
	l.total = 0
	l.history = nil
	l.mu.Unlock()
}

// Since returns the points earned at or after t
func (l *Ledger) Since(t time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	sum := 0
	for _, e := range l.history {
		if !e.Timestamp.Before(t) {
			sum += e.Points
		}
	}
	return sum
}
