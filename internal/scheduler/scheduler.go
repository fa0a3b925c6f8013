package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/julianstephens/reto21d/internal/constants"
	"github.com/julianstephens/reto21d/internal/errors"
	"github.com/julianstephens/reto21d/internal/logger"
	"github.com/julianstephens/reto21d/internal/models"
	"github.com/julianstephens/reto21d/internal/notifier"
	"github.com/julianstephens/reto21d/internal/storage"
)

var reminderText = map[constants.Moment]notifier.Notification{
	constants.MomentMorning: {Title: "¡Buenos días!", Body: "Empieza el día cumpliendo tus hábitos del reto."},
	constants.MomentNoon:    {Title: "Mediodía", Body: "¿Cómo vas con tus hábitos de hoy?"},
	constants.MomentEvening: {Title: "Buenas tardes", Body: "Aún estás a tiempo de completar tus hábitos."},
	constants.MomentNight:   {Title: "Buenas noches", Body: "Revisa tu progreso antes de dormir."},
}

var streakMilestones = map[int]bool{3: true, 7: true, 14: true, 21: true}

// Scheduler owns the notification settings and the daily reminder jobs
type Scheduler struct {
	mu       sync.Mutex
	kv       storage.KeyValueStore
	notifier notifier.Notifier
	cron     *gocron.Scheduler
	settings models.NotificationSettings
	jobs     map[string]*gocron.Job
}

// New loads the persisted settings, merged over the defaults. Jobs are not
// scheduled until ScheduleAllDailyReminders is called.
func New(ctx context.Context, kv storage.KeyValueStore, n notifier.Notifier, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	if n == nil {
		n = notifier.Log{}
	}
	s := &Scheduler{
		kv:       kv,
		notifier: n,
		cron:     gocron.NewScheduler(loc),
		settings: models.DefaultNotificationSettings(),
		jobs:     map[string]*gocron.Job{},
	}

	raw, err := kv.Get(ctx, constants.KeyNotificationConfig)
	switch {
	case err == nil:
		merged := models.DefaultNotificationSettings()
		if err := json.Unmarshal(raw, &merged); err != nil {
			logger.Warn("Ignoring unreadable notification settings", "error", err)
		} else {
			s.settings = merged
		}
	case !errors.Is(err, storage.ErrKeyNotFound):
		logger.Warn("Failed to load notification settings", "error", err)
	}
	return s
}

func (s *Scheduler) Settings() models.NotificationSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// SaveSettings validates, persists and reschedules every reminder
func (s *Scheduler) SaveSettings(ctx context.Context, settings models.NotificationSettings) error {
	if err := settings.Validate(); err != nil {
		return errors.Validationf("%v", err)
	}

	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()

	if err := storage.SetJSON(ctx, s.kv, constants.KeyNotificationConfig, settings); err != nil {
		logger.Warn("Failed to persist notification settings", "error", fmt.Errorf("%w: %v", errors.ErrPersistence, err))
	}
	return s.ScheduleAllDailyReminders()
}

// ScheduleAllDailyReminders drops every pending job and schedules one daily
// job per enabled moment, keyed "{moment}-{time}".
func (s *Scheduler) ScheduleAllDailyReminders() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearLocked()
	for _, m := range constants.Moments {
		r, _ := s.settings.Reminder(m)
		if !r.Enabled {
			continue
		}
		if err := s.scheduleLocked(m, r.Time); err != nil {
			return err
		}
	}
	logger.Debug("Daily reminders scheduled", "count", len(s.jobs))
	return nil
}

func (s *Scheduler) scheduleLocked(m constants.Moment, at string) error {
	key := fmt.Sprintf("%s-%s", m, at)
	if old, ok := s.jobs[key]; ok {
		s.cron.RemoveByReference(old)
		delete(s.jobs, key)
	}

	job, err := s.cron.Every(1).Day().At(at).Tag(key).Do(func() {
		if _, err := s.SendReminder(context.Background(), m); err != nil {
			logger.Warn("Reminder failed", "moment", m, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule %s reminder: %w", key, err)
	}
	s.jobs[key] = job
	return nil
}

func (s *Scheduler) clearLocked() {
	s.cron.Clear()
	s.jobs = map[string]*gocron.Job{}
}

// Reset drops the in-memory settings back to the defaults. Reminders that
// were scheduled are rescheduled for the default times; otherwise none are.
func (s *Scheduler) Reset() error {
	s.mu.Lock()
	s.settings = models.DefaultNotificationSettings()
	scheduled := len(s.jobs) > 0
	s.clearLocked()
	s.mu.Unlock()

	if !scheduled {
		return nil
	}
	return s.ScheduleAllDailyReminders()
}

// ClearScheduledNotifications cancels every pending reminder
func (s *Scheduler) ClearScheduledNotifications() {
	s.mu.Lock()
	s.clearLocked()
	s.mu.Unlock()
}

// PendingKeys returns the keys of the scheduled reminders, sorted
func (s *Scheduler) PendingKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.jobs))
	for k := range s.jobs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NextRuns maps each pending key to its next firing time. It is only
// meaningful once the scheduler is running.
func (s *Scheduler) NextRuns() map[string]time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]time.Time, len(s.jobs))
	for k, j := range s.jobs {
		out[k] = j.NextRun()
	}
	return out
}

// Start runs the reminder jobs in the background
func (s *Scheduler) Start() {
	s.cron.StartAsync()
}

// Stop clears every job and halts the scheduler
func (s *Scheduler) Stop() {
	s.ClearScheduledNotifications()
	if s.cron.IsRunning() {
		s.cron.Stop()
	}
}

// RequestPermission checks the platform can display notifications
func (s *Scheduler) RequestPermission(ctx context.Context) error {
	return s.notifier.Permission(ctx)
}

// SendNotification delivers n when notifications are enabled and the platform
// allows it. It reports whether anything was sent.
func (s *Scheduler) SendNotification(ctx context.Context, n notifier.Notification) (bool, error) {
	if !s.Settings().Enabled {
		return false, nil
	}
	if err := s.notifier.Permission(ctx); err != nil {
		logger.Debug("Notification skipped", "reason", err)
		return false, nil
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		return false, err
	}
	return true, nil
}

// SendReminder sends the reminder for a moment of the day
func (s *Scheduler) SendReminder(ctx context.Context, m constants.Moment) (bool, error) {
	n, ok := reminderText[m]
	if !ok {
		return false, errors.Validationf("unknown moment %q", m)
	}
	return s.SendNotification(ctx, n)
}

func (s *Scheduler) NotifyHabitCompleted(ctx context.Context, habitName string) (bool, error) {
	if !s.Settings().HabitCompletion.Enabled {
		return false, nil
	}
	return s.SendNotification(ctx, notifier.Notification{
		Title: "¡Hábito completado!",
		Body:  fmt.Sprintf("Has completado \"%s\". ¡Sigue así!", habitName),
	})
}

// NotifyStreakMilestone only fires on 3, 7, 14 and 21 day streaks
func (s *Scheduler) NotifyStreakMilestone(ctx context.Context, habitName string, days int) (bool, error) {
	if !streakMilestones[days] || !s.Settings().StreakMilestones.Enabled {
		return false, nil
	}
	return s.SendNotification(ctx, notifier.Notification{
		Title: fmt.Sprintf("🔥 ¡Racha de %d días!", days),
		Body:  fmt.Sprintf("Llevas %d días seguidos con \"%s\".", days, habitName),
	})
}

func (s *Scheduler) NotifyAchievement(ctx context.Context, a models.Achievement) (bool, error) {
	return s.SendNotification(ctx, notifier.Notification{
		Title: "🏆 ¡Logro desbloqueado!",
		Body:  fmt.Sprintf("%s: %s (+%d puntos)", a.Name, a.Description, a.Points),
	})
}

// AchievementUnlocked lets the scheduler observe the achievement engine
func (s *Scheduler) AchievementUnlocked(a models.Achievement) {
	if _, err := s.NotifyAchievement(context.Background(), a); err != nil {
		logger.Warn("Achievement notification failed", "key", a.Key, "error", err)
	}
}

// IsStreakMilestone reports whether days is a notified streak length
func IsStreakMilestone(days int) bool {
	return streakMilestones[days]
}
