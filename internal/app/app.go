// Package app wires the stores, the points ledger, the achievement engine and
// the reminder scheduler together and runs the side effects between them.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/julianstephens/reto21d/internal/achievements"
	"github.com/julianstephens/reto21d/internal/assessment"
	"github.com/julianstephens/reto21d/internal/challenges"
	"github.com/julianstephens/reto21d/internal/errors"
	"github.com/julianstephens/reto21d/internal/habits"
	"github.com/julianstephens/reto21d/internal/logger"
	"github.com/julianstephens/reto21d/internal/metrics"
	"github.com/julianstephens/reto21d/internal/models"
	"github.com/julianstephens/reto21d/internal/notifier"
	"github.com/julianstephens/reto21d/internal/points"
	"github.com/julianstephens/reto21d/internal/privacy"
	"github.com/julianstephens/reto21d/internal/progress"
	"github.com/julianstephens/reto21d/internal/scheduler"
	"github.com/julianstephens/reto21d/internal/seed"
	"github.com/julianstephens/reto21d/internal/storage"
	"github.com/julianstephens/reto21d/internal/utils"
)

type Config struct {
	KV       storage.KeyValueStore
	Clock    utils.Clock
	Location *time.Location
	Latency  time.Duration
	// PersistState saves the store collections under state:* keys. With it
	// off every process starts from the seed data.
	PersistState bool
	Notifier     notifier.Notifier
	Metrics      *metrics.Metrics
}

type App struct {
	cfg  Config
	kv   storage.KeyValueStore
	opts utils.StoreOptions

	Habits       *habits.Store
	Challenges   *challenges.Store
	Progress     *progress.Store
	Assessments  *assessment.Store
	Points       *points.Ledger
	Achievements *achievements.Engine
	Scheduler    *scheduler.Scheduler
	Privacy      *privacy.Center
	Metrics      *metrics.Metrics

	// cascade serializes user actions so their side effects never interleave
	cascade sync.Mutex

	unlockMu sync.Mutex
	unlocked []models.Achievement

	perfectMu   sync.Mutex
	perfectDays map[string]bool
}

func New(ctx context.Context, cfg Config) (*App, error) {
	if cfg.KV == nil {
		cfg.KV = storage.NewMemoryStore()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Clock == nil {
		loc := cfg.Location
		cfg.Clock = func() time.Time { return time.Now().In(loc) }
	}

	a := &App{
		cfg:         cfg,
		kv:          cfg.KV,
		opts:        utils.StoreOptions{Clock: cfg.Clock, Latency: cfg.Latency},
		Metrics:     cfg.Metrics,
		perfectDays: map[string]bool{},
	}

	st, err := a.initialState(ctx)
	if err != nil {
		return nil, err
	}
	a.Habits = habits.New(st.Habits, a.opts)
	a.Challenges = challenges.New(st.Challenges, st.MiniChallenges, a.opts)
	a.Progress = progress.New(st.DayProgress, a.opts)
	a.Assessments = assessment.New(a.opts)
	a.Assessments.Replace(st.Assessments)
	for _, d := range st.PerfectDays {
		a.perfectDays[d] = true
	}

	catalog, err := seed.Achievements()
	if err != nil {
		return nil, fmt.Errorf("failed to load achievement catalog: %w", err)
	}
	a.Achievements = achievements.New(ctx, a.kv, a.Habits, a.Challenges, catalog, cfg.Clock)
	a.Points = points.New(ctx, a.kv, a.Achievements, cfg.Clock)
	a.Scheduler = scheduler.New(ctx, a.kv, cfg.Notifier, cfg.Location)
	a.Privacy = privacy.New(a.kv, cfg.Clock)

	a.Achievements.AddObserver(a)
	a.Achievements.AddObserver(a.Scheduler)
	if a.Metrics != nil {
		a.Achievements.AddObserver(a.Metrics)
		a.Points.AddObserver(a.Metrics)
		a.Metrics.SetPointsTotal(a.Points.Total())
	}

	if _, err := a.SyncDay(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// AchievementUnlocked queues unlocks for the action that caused them
func (a *App) AchievementUnlocked(ach models.Achievement) {
	a.unlockMu.Lock()
	a.unlocked = append(a.unlocked, ach)
	a.unlockMu.Unlock()
}

func (a *App) drainUnlocked() []models.Achievement {
	a.unlockMu.Lock()
	defer a.unlockMu.Unlock()
	out := a.unlocked
	a.unlocked = nil
	return out
}

// Today is the current date in the configured timezone
func (a *App) Today() string {
	return a.opts.Today()
}

func (a *App) Now() time.Time {
	return a.opts.Now()
}

// SyncDay advances the active challenge to today's day and refreshes the
// habits' completed-today flags
func (a *App) SyncDay(ctx context.Context) (*models.Challenge, error) {
	a.Habits.RefreshToday()
	c, err := a.Challenges.SyncCurrentDay(ctx)
	if errors.Is(err, errors.ErrNoActiveChallenge) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// rollover keeps the derived day state current in long-running sessions
func (a *App) rollover(ctx context.Context) {
	if _, err := a.SyncDay(ctx); err != nil {
		logger.Warn("Failed to sync the challenge day", "error", err)
	}
}

// Close stops the reminder jobs and saves the state
func (a *App) Close(ctx context.Context) {
	a.Scheduler.Stop()
	a.Persist(ctx)
}

// Summary is the dashboard view of the current day
type Summary struct {
	Date           string            `json:"date"`
	Habits         []models.Habit    `json:"habits"`
	Completed      int               `json:"completed"`
	Total          int               `json:"total"`
	Challenge      *models.Challenge `json:"challenge,omitempty"`
	TotalPoints    int               `json:"totalPoints"`
	PointsToday    int               `json:"pointsToday"`
	UnlockedCount  int               `json:"unlockedAchievements"`
	CatalogSize    int               `json:"totalAchievements"`
	BestStreak     int               `json:"bestStreak"`
	CompletionRate float64           `json:"completionRate"`
}

func (a *App) Summary(ctx context.Context) (Summary, error) {
	a.rollover(ctx)
	hs, err := a.Habits.GetAll(ctx)
	if err != nil {
		return Summary{}, err
	}
	s := Summary{Date: a.Today(), Habits: hs, Total: len(hs)}
	for _, h := range hs {
		if h.IsCompletedToday {
			s.Completed++
		}
		if h.BestStreak > s.BestStreak {
			s.BestStreak = h.BestStreak
		}
	}
	if s.Total > 0 {
		s.CompletionRate = float64(s.Completed) / float64(s.Total) * 100
	}
	if c, err := a.Challenges.GetActive(ctx); err == nil {
		s.Challenge = &c
	} else if !errors.Is(err, errors.ErrNoActiveChallenge) {
		return Summary{}, err
	}

	s.TotalPoints = a.Points.Total()
	now := a.Now()
	s.PointsToday = a.Points.Since(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()))
	s.UnlockedCount = len(a.Achievements.Unlocks())
	s.CatalogSize = len(a.Achievements.Catalog())
	return s, nil
}

// ExportBundle gathers everything stored about the user
func (a *App) ExportBundle(ctx context.Context) (models.ExportBundle, error) {
	b := models.ExportBundle{
		ExportedAt:           a.Now(),
		TotalPoints:          a.Points.Total(),
		PointsHistory:        a.Points.History(),
		Achievements:         a.Achievements.Unlocks(),
		NotificationSettings: a.Scheduler.Settings(),
	}
	var err error
	if b.Habits, err = a.Habits.GetAll(ctx); err != nil {
		return b, err
	}
	if b.Challenges, err = a.Challenges.GetAll(ctx); err != nil {
		return b, err
	}
	if b.MiniChallenges, err = a.Challenges.GetMiniChallenges(ctx, 0); err != nil {
		return b, err
	}
	if b.DayProgress, err = a.Progress.GetAll(ctx); err != nil {
		return b, err
	}
	if b.Consents, err = a.Privacy.Consents(ctx); err != nil {
		logger.Warn("Exporting without consents", "error", err)
	}
	records := a.Assessments.Snapshot()
	if r, ok := records[assessment.Initial]; ok {
		b.Assessment = &r
	}
	if r, ok := records[assessment.Final]; ok {
		b.FinalAssessment = &r
	}
	return b, nil
}

// ClearLocalData erases every persisted key and resets the in-memory state
// to the seed data
func (a *App) ClearLocalData(ctx context.Context) (int, error) {
	a.cascade.Lock()
	defer a.cascade.Unlock()

	n, err := a.Privacy.ClearLocalData(ctx)
	if err != nil {
		return 0, err
	}
	d, err := seed.Load()
	if err != nil {
		return n, err
	}
	a.Habits.Replace(d.Habits)
	a.Challenges.Replace(d.Challenges, d.MiniChallenges)
	a.Progress.Replace(d.DayProgress)
	a.Assessments.Replace(nil)
	a.Points.Reset()
	a.Achievements.Reset()
	if err := a.Scheduler.Reset(); err != nil {
		logger.Warn("Failed to reschedule default reminders", "error", err)
	}
	if a.Metrics != nil {
		a.Metrics.SetPointsTotal(0)
	}

	a.perfectMu.Lock()
	a.perfectDays = map[string]bool{}
	a.perfectMu.Unlock()
	return n, nil
}
