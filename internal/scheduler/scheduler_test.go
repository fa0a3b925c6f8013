package scheduler

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/reto21d/internal/constants"
	"github.com/julianstephens/reto21d/internal/errors"
	"github.com/julianstephens/reto21d/internal/models"
	"github.com/julianstephens/reto21d/internal/notifier"
	"github.com/julianstephens/reto21d/internal/storage"
)

type fakeNotifier struct {
	denied error
	sent   []notifier.Notification
}

func (f *fakeNotifier) Permission(ctx context.Context) error { return f.denied }

func (f *fakeNotifier) Notify(ctx context.Context, n notifier.Notification) error {
	f.sent = append(f.sent, n)
	return nil
}

func setupTestScheduler(t *testing.T) (*Scheduler, *storage.MemoryStore, *fakeNotifier) {
	t.Helper()
	kv := storage.NewMemoryStore()
	n := &fakeNotifier{}
	s := New(context.Background(), kv, n, time.UTC)
	t.Cleanup(s.Stop)
	return s, kv, n
}

func TestDefaultsAndMerge(t *testing.T) {
	ctx := context.Background()
	s, _, _ := setupTestScheduler(t)
	if s.Settings() != models.DefaultNotificationSettings() {
		t.Errorf("expected defaults, got %+v", s.Settings())
	}

	kv := storage.NewMemoryStore()
	_ = kv.Set(ctx, constants.KeyNotificationConfig, []byte(`{"enabled":false,"dailyReminders":{"noon":{"enabled":true,"time":"12:30"}}}`))
	merged := New(ctx, kv, nil, time.UTC).Settings()
	if merged.Enabled {
		t.Error("saved enabled=false should win")
	}
	if !merged.DailyReminders.Noon.Enabled || merged.DailyReminders.Noon.Time != "12:30" {
		t.Errorf("saved noon slot lost: %+v", merged.DailyReminders.Noon)
	}
	if merged.DailyReminders.Morning.Time != constants.DefaultMorningTime {
		t.Errorf("missing morning slot should keep default, got %+v", merged.DailyReminders.Morning)
	}
	if !merged.HabitCompletion.Enabled {
		t.Error("missing sections should keep defaults")
	}

	_ = kv.Set(ctx, constants.KeyNotificationConfig, []byte("not json"))
	if New(ctx, kv, nil, time.UTC).Settings() != models.DefaultNotificationSettings() {
		t.Error("unreadable settings should fall back to defaults")
	}
}

func TestScheduleAllDailyReminders(t *testing.T) {
	s, _, _ := setupTestScheduler(t)

	if err := s.ScheduleAllDailyReminders(); err != nil {
		t.Fatalf("ScheduleAllDailyReminders failed: %v", err)
	}
	want := []string{"evening-19:00", "morning-08:00"}
	if got := s.PendingKeys(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("PendingKeys = %v, want %v", got, want)
	}

	// rescheduling never duplicates jobs
	if err := s.ScheduleAllDailyReminders(); err != nil {
		t.Fatal(err)
	}
	if s.cron.Len() != 2 {
		t.Errorf("expected 2 jobs after reschedule, got %d", s.cron.Len())
	}

	s.ClearScheduledNotifications()
	if len(s.PendingKeys()) != 0 || s.cron.Len() != 0 {
		t.Error("expected no pending jobs after clear")
	}
}

func TestSaveSettingsPersistsAndReschedules(t *testing.T) {
	ctx := context.Background()
	s, kv, _ := setupTestScheduler(t)

	settings := models.DefaultNotificationSettings()
	settings.DailyReminders.Morning.Enabled = false
	settings.DailyReminders.Noon = models.Reminder{Enabled: true, Time: "12:30"}
	settings.DailyReminders.Night.Enabled = true

	if err := s.SaveSettings(ctx, settings); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
	want := "evening-19:00,night-22:00,noon-12:30"
	if got := strings.Join(s.PendingKeys(), ","); got != want {
		t.Errorf("PendingKeys = %s, want %s", got, want)
	}

	reloaded := New(ctx, kv, nil, time.UTC)
	if reloaded.Settings() != settings {
		t.Errorf("settings did not round trip through storage: %+v", reloaded.Settings())
	}

	bad := settings
	bad.DailyReminders.Evening.Time = "7pm"
	if err := s.SaveSettings(ctx, bad); !errors.Is(err, errors.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if got := strings.Join(s.PendingKeys(), ","); got != want {
		t.Errorf("a rejected save must leave jobs alone, got %s", got)
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	ctx := context.Background()
	s, _, _ := setupTestScheduler(t)

	custom := models.DefaultNotificationSettings()
	custom.DailyReminders.Night = models.Reminder{Enabled: true, Time: "23:15"}
	if err := s.SaveSettings(ctx, custom); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	if err := s.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if s.Settings() != models.DefaultNotificationSettings() {
		t.Errorf("settings not reset: %+v", s.Settings())
	}
	want := []string{
		"evening-" + constants.DefaultEveningTime,
		"morning-" + constants.DefaultMorningTime,
	}
	if got := s.PendingKeys(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("pending = %v, want %v", got, want)
	}
}

func TestResetWithoutJobsSchedulesNothing(t *testing.T) {
	s, _, _ := setupTestScheduler(t)
	if err := s.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if got := s.PendingKeys(); len(got) != 0 {
		t.Errorf("expected no pending reminders, got %v", got)
	}
}

func TestSendNotificationGating(t *testing.T) {
	ctx := context.Background()
	s, _, n := setupTestScheduler(t)

	sent, err := s.SendNotification(ctx, notifier.Notification{Body: "hola"})
	if err != nil || !sent {
		t.Fatalf("SendNotification = %v, %v", sent, err)
	}

	n.denied = errors.ErrUnsupportedPlatform
	if sent, _ := s.SendNotification(ctx, notifier.Notification{Body: "hola"}); sent {
		t.Error("notification sent without permission")
	}
	if err := s.RequestPermission(ctx); !errors.Is(err, errors.ErrUnsupportedPlatform) {
		t.Errorf("RequestPermission = %v", err)
	}

	n.denied = nil
	off := s.Settings()
	off.Enabled = false
	if err := s.SaveSettings(ctx, off); err != nil {
		t.Fatal(err)
	}
	if sent, _ := s.SendNotification(ctx, notifier.Notification{Body: "hola"}); sent {
		t.Error("notification sent while disabled")
	}
	if len(n.sent) != 1 {
		t.Errorf("expected exactly one delivery, got %d", len(n.sent))
	}
}

func TestEventNotifications(t *testing.T) {
	ctx := context.Background()
	s, _, n := setupTestScheduler(t)

	for _, days := range []int{1, 2, 3, 4, 7, 10, 14, 21} {
		_, _ = s.NotifyStreakMilestone(ctx, "Leer", days)
	}
	if len(n.sent) != 4 {
		t.Errorf("expected 4 milestone notifications, got %d", len(n.sent))
	}

	if sent, _ := s.NotifyHabitCompleted(ctx, "Leer"); !sent {
		t.Error("habit completion notification not sent")
	}

	s.AchievementUnlocked(models.Achievement{Key: "dia_perfecto", Name: "Día perfecto", Points: 20})
	last := n.sent[len(n.sent)-1]
	if !strings.Contains(last.Body, "+20") {
		t.Errorf("unexpected achievement body %q", last.Body)
	}

	for _, m := range constants.Moments {
		if sent, err := s.SendReminder(ctx, m); err != nil || !sent {
			t.Errorf("SendReminder(%s) = %v, %v", m, sent, err)
		}
	}
	if _, err := s.SendReminder(ctx, constants.Moment("dawn")); !errors.Is(err, errors.ErrValidation) {
		t.Errorf("expected validation error for unknown moment, got %v", err)
	}
}

func TestDisabledEventNotifications(t *testing.T) {
	ctx := context.Background()
	s, _, n := setupTestScheduler(t)

	settings := s.Settings()
	settings.HabitCompletion.Enabled = false
	settings.StreakMilestones.Enabled = false
	if err := s.SaveSettings(ctx, settings); err != nil {
		t.Fatal(err)
	}

	_, _ = s.NotifyHabitCompleted(ctx, "Leer")
	_, _ = s.NotifyStreakMilestone(ctx, "Leer", 7)
	if len(n.sent) != 0 {
		t.Errorf("expected nothing sent, got %v", n.sent)
	}
}

func TestIsStreakMilestone(t *testing.T) {
	for days, want := range map[int]bool{3: true, 5: false, 7: true, 14: true, 21: true, 22: false} {
		if IsStreakMilestone(days) != want {
			t.Errorf("IsStreakMilestone(%d) != %v", days, want)
		}
	}
}
