package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/reto21d/internal/constants"
	"github.com/julianstephens/reto21d/internal/errors"
	"github.com/julianstephens/reto21d/internal/metrics"
	"github.com/julianstephens/reto21d/internal/models"
	"github.com/julianstephens/reto21d/internal/notifier"
	"github.com/julianstephens/reto21d/internal/storage"
	"github.com/julianstephens/reto21d/internal/utils"
)

// seed day 3: habits 1, 3 and 5 are already done on 2024-01-03
var testNow = time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)

type inbox struct {
	mu     sync.Mutex
	titles []string
}

func (i *inbox) notifier() notifier.Notifier {
	return notifier.Func(func(ctx context.Context, n notifier.Notification) error {
		i.mu.Lock()
		i.titles = append(i.titles, n.Title)
		i.mu.Unlock()
		return nil
	})
}

func (i *inbox) count() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.titles)
}

func setupTestApp(t *testing.T, kv storage.KeyValueStore) (*App, *inbox) {
	t.Helper()
	box := &inbox{}
	a, err := New(context.Background(), Config{
		KV:           kv,
		Clock:        utils.FixedClock(testNow),
		Location:     time.UTC,
		PersistState: true,
		Notifier:     box.notifier(),
	})
	if err != nil {
		t.Fatalf("failed to build app: %v", err)
	}
	return a, box
}

func hasUnlock(list []models.Achievement, key string) bool {
	for _, a := range list {
		if a.Key == key {
			return true
		}
	}
	return false
}

func TestSummaryFromSeed(t *testing.T) {
	a, _ := setupTestApp(t, storage.NewMemoryStore())

	s, err := a.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if s.Date != "2024-01-03" {
		t.Errorf("date = %s, want 2024-01-03", s.Date)
	}
	if s.Completed != 3 || s.Total != 5 {
		t.Errorf("completed %d/%d, want 3/5", s.Completed, s.Total)
	}
	if s.CompletionRate != 60 {
		t.Errorf("completion rate = %v, want 60", s.CompletionRate)
	}
	if s.Challenge == nil || s.Challenge.CurrentDay != 3 {
		t.Errorf("expected active challenge on day 3, got %+v", s.Challenge)
	}
	if s.TotalPoints != 0 || s.UnlockedCount != 0 {
		t.Errorf("fresh app has %d points and %d unlocks", s.TotalPoints, s.UnlockedCount)
	}
	if s.CatalogSize != 8 {
		t.Errorf("catalog size = %d, want 8", s.CatalogSize)
	}
}

func TestToggleHabitCascade(t *testing.T) {
	ctx := context.Background()
	a, box := setupTestApp(t, storage.NewMemoryStore())

	// Meditar: 01-01 and 01-02 done, today makes a 3 day streak
	res, err := a.ToggleHabit(ctx, 2)
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if !res.Completed || res.Habit.CurrentStreak != 3 {
		t.Fatalf("unexpected toggle result: %+v", res)
	}
	want := constants.PointsHabitCompletion + 3*constants.PointsStreakPerDay
	if res.Points != want {
		t.Errorf("points = %d, want %d", res.Points, want)
	}
	if res.PerfectDay {
		t.Error("4/5 habits is not a perfect day")
	}
	// habit completed and streak milestone
	if box.count() != 2 {
		t.Errorf("expected 2 notifications, got %d", box.count())
	}

	res, err = a.ToggleHabit(ctx, 4)
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if !res.PerfectDay {
		t.Error("expected the last habit to complete a perfect day")
	}
	if res.Points != constants.PointsHabitCompletion+constants.PointsPerfectDay {
		t.Errorf("points = %d, want %d", res.Points, constants.PointsHabitCompletion+constants.PointsPerfectDay)
	}
	if !hasUnlock(res.Unlocked, "dia_perfecto") {
		t.Errorf("expected dia_perfecto among %+v", res.Unlocked)
	}

	p, err := a.Progress.GetByDay(ctx, 3)
	if err != nil {
		t.Fatalf("day 3 progress missing: %v", err)
	}
	if p.HabitsCompleted != 5 || p.TotalHabits != 5 {
		t.Errorf("day 3 progress = %d/%d, want 5/5", p.HabitsCompleted, p.TotalHabits)
	}

	// undo and redo: no points back, no second perfect day
	before := a.Points.Total()
	res, err = a.ToggleHabit(ctx, 4)
	if err != nil || res.Completed || res.Points != 0 {
		t.Fatalf("un-toggle = %+v, %v", res, err)
	}
	if a.Points.Total() != before {
		t.Errorf("un-toggle changed total from %d to %d", before, a.Points.Total())
	}
	res, err = a.ToggleHabit(ctx, 4)
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if res.PerfectDay || res.Points != constants.PointsHabitCompletion {
		t.Errorf("perfect day paid twice: %+v", res)
	}
}

func TestToggleUnknownHabit(t *testing.T) {
	a, _ := setupTestApp(t, storage.NewMemoryStore())
	if _, err := a.ToggleHabit(context.Background(), 99); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if a.Points.Total() != 0 {
		t.Errorf("failed toggle awarded %d points", a.Points.Total())
	}
}

func TestCompleteChallengeDay(t *testing.T) {
	ctx := context.Background()
	a, _ := setupTestApp(t, storage.NewMemoryStore())

	res, err := a.CompleteChallengeDay(ctx, 0)
	if err != nil {
		t.Fatalf("CompleteChallengeDay failed: %v", err)
	}
	if !res.Added || res.Points != 6 {
		t.Errorf("day 3 result = %+v, want added with 6 points", res)
	}
	if !hasUnlock(res.Unlocked, "racha_fuego_3") {
		t.Errorf("days 1..3 should unlock racha_fuego_3, got %+v", res.Unlocked)
	}

	res, err = a.CompleteChallengeDay(ctx, 3)
	if err != nil {
		t.Fatalf("repeat failed: %v", err)
	}
	if res.Added || res.Points != 0 {
		t.Errorf("repeating a day should be a no-op, got %+v", res)
	}

	if _, err := a.CompleteChallengeDay(ctx, 22); !errors.Is(err, errors.ErrValidation) {
		t.Errorf("expected validation error for day 22, got %v", err)
	}
}

func TestFullChallengePaysCompletion(t *testing.T) {
	ctx := context.Background()
	a, _ := setupTestApp(t, storage.NewMemoryStore())

	c, err := a.StartChallenge(ctx, "Reto de prueba", "", "2024-01-03")
	if err != nil {
		t.Fatalf("StartChallenge failed: %v", err)
	}
	if c.CurrentDay != 1 || !c.IsActive {
		t.Fatalf("new challenge = %+v", c)
	}

	total := 0
	var last DayResult
	for day := 1; day <= constants.ChallengeLength; day++ {
		last, err = a.CompleteChallengeDay(ctx, day)
		if err != nil {
			t.Fatalf("day %d: %v", day, err)
		}
		total += last.Points
	}
	if !last.Finished || !last.Challenge.IsCompleted {
		t.Errorf("day 21 should finish the challenge: %+v", last)
	}
	if last.Points != constants.PointsChallengeProgressCap+constants.PointsChallengeCompletion {
		t.Errorf("day 21 points = %d", last.Points)
	}
	// 2+4+...+14 for the first week, then 15 a day, then the bonus
	if total != 56+14*15+100 {
		t.Errorf("total = %d, want %d", total, 56+14*15+100)
	}
	if !a.Achievements.IsAchievementUnlocked("reto_completado") {
		t.Error("expected reto_completado after 21 days")
	}
}

func TestCompleteMiniChallenge(t *testing.T) {
	ctx := context.Background()
	a, _ := setupTestApp(t, storage.NewMemoryStore())

	// Desconexión digital: 0 of 3
	tests := []struct {
		day    int
		points int
		done   bool
	}{
		{1, constants.PointsMiniChallengeProgress, false},
		{1, 0, false},
		{2, constants.PointsMiniChallengeProgress, false},
		{3, constants.PointsMiniChallengeCompletion, true},
	}
	for _, tt := range tests {
		res, err := a.CompleteMiniChallenge(ctx, 3, tt.day)
		if err != nil {
			t.Fatalf("day %d: %v", tt.day, err)
		}
		if res.Points != tt.points || res.JustCompleted != tt.done {
			t.Errorf("day %d: points %d completed %v, want %d %v", tt.day, res.Points, res.JustCompleted, tt.points, tt.done)
		}
	}

	if _, err := a.CompleteMiniChallenge(ctx, 42, 1); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordMoment(t *testing.T) {
	ctx := context.Background()
	a, _ := setupTestApp(t, storage.NewMemoryStore())

	pts, err := a.RecordMoment(ctx, constants.MomentMorning)
	if err != nil || pts != constants.PointsDailyMoment {
		t.Errorf("RecordMoment = %d, %v", pts, err)
	}
	if _, err := a.RecordMoment(ctx, constants.Moment("midnight")); !errors.Is(err, errors.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestStateSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore()

	first, _ := setupTestApp(t, kv)
	if _, err := first.ToggleHabit(ctx, 2); err != nil {
		t.Fatal(err)
	}
	if _, err := first.ToggleHabit(ctx, 4); err != nil {
		t.Fatal(err)
	}
	points := first.Points.Total()

	second, _ := setupTestApp(t, kv)
	h, err := second.Habits.GetByID(ctx, 4)
	if err != nil {
		t.Fatal(err)
	}
	if !h.IsCompletedToday {
		t.Error("restored habit lost today's completion")
	}
	if second.Points.Total() != points {
		t.Errorf("restored total = %d, want %d", second.Points.Total(), points)
	}
	if !second.Achievements.IsAchievementUnlocked("dia_perfecto") {
		t.Error("restored app lost dia_perfecto")
	}

	// the perfect day of 01-03 was already paid before the restart
	if _, err := second.ToggleHabit(ctx, 4); err != nil {
		t.Fatal(err)
	}
	res, err := second.ToggleHabit(ctx, 4)
	if err != nil {
		t.Fatal(err)
	}
	if res.PerfectDay {
		t.Error("perfect day paid again after restart")
	}
}

func TestClearLocalData(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore()
	a, _ := setupTestApp(t, kv)

	if _, err := a.ToggleHabit(ctx, 2); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Privacy.UpdateConsent(ctx, "analytics", true); err != nil {
		t.Fatal(err)
	}

	n, err := a.ClearLocalData(ctx)
	if err != nil {
		t.Fatalf("ClearLocalData failed: %v", err)
	}
	if n == 0 {
		t.Error("expected some keys to be removed")
	}
	keys, err := kv.Keys(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 0 {
		t.Errorf("keys left after clear: %v", keys)
	}
	if a.Points.Total() != 0 || len(a.Achievements.Unlocks()) != 0 {
		t.Errorf("points %d and unlocks %d survived the clear", a.Points.Total(), len(a.Achievements.Unlocks()))
	}
	h, err := a.Habits.GetByID(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if h.IsCompletedToday {
		t.Error("habit 2 should be back to its seed state")
	}
}

func TestClearLocalDataResetsRemindersAndGauge(t *testing.T) {
	ctx := context.Background()
	box := &inbox{}
	m := metrics.New()
	a, err := New(ctx, Config{
		KV:       storage.NewMemoryStore(),
		Clock:    utils.FixedClock(testNow),
		Location: time.UTC,
		Notifier: box.notifier(),
		Metrics:  m,
	})
	if err != nil {
		t.Fatalf("failed to build app: %v", err)
	}
	t.Cleanup(a.Scheduler.Stop)

	settings := a.Scheduler.Settings()
	settings.DailyReminders.Night = models.Reminder{Enabled: true, Time: "23:15"}
	if err := a.Scheduler.SaveSettings(ctx, settings); err != nil {
		t.Fatal(err)
	}
	if _, err := a.ToggleHabit(ctx, 2); err != nil {
		t.Fatal(err)
	}

	if _, err := a.ClearLocalData(ctx); err != nil {
		t.Fatalf("ClearLocalData failed: %v", err)
	}
	if got := a.Scheduler.Settings(); got != models.DefaultNotificationSettings() {
		t.Errorf("reminder settings survived the clear: %+v", got)
	}
	for _, key := range a.Scheduler.PendingKeys() {
		if key == "night-23:15" {
			t.Error("the deleted night reminder is still scheduled")
		}
	}

	families, err := m.Registry.Gather()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, mf := range families {
		if mf.GetName() != "reto21d_points_balance" {
			continue
		}
		found = true
		if v := mf.GetMetric()[0].GetGauge().GetValue(); v != 0 {
			t.Errorf("points gauge = %v after the clear, want 0", v)
		}
	}
	if !found {
		t.Error("points gauge not registered")
	}
}

func TestDayRolloverInLongSession(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 3, 23, 0, 0, 0, time.UTC)
	box := &inbox{}
	a, err := New(ctx, Config{
		KV:       storage.NewMemoryStore(),
		Clock:    func() time.Time { return now },
		Location: time.UTC,
		Notifier: box.notifier(),
	})
	if err != nil {
		t.Fatalf("failed to build app: %v", err)
	}

	// seed: habits 3 and 5 already carry 2024-01-04, habit 1 does not
	now = time.Date(2024, 1, 4, 9, 0, 0, 0, time.UTC)
	if _, err := a.ToggleHabit(ctx, 2); err != nil {
		t.Fatal(err)
	}
	res, err := a.ToggleHabit(ctx, 4)
	if err != nil {
		t.Fatal(err)
	}
	if res.PerfectDay {
		t.Error("perfect day paid with habit 1 still open")
	}
	if hasUnlock(res.Unlocked, "dia_perfecto") || a.Achievements.IsAchievementUnlocked("dia_perfecto") {
		t.Error("dia_perfecto unlocked with 4/5 habits done")
	}

	s, err := a.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if s.Date != "2024-01-04" || s.Completed != 4 || s.Total != 5 {
		t.Errorf("summary = %s %d/%d, want 2024-01-04 4/5", s.Date, s.Completed, s.Total)
	}
	if s.Challenge == nil || s.Challenge.CurrentDay != 4 {
		t.Errorf("challenge day not advanced: %+v", s.Challenge)
	}
	for _, h := range s.Habits {
		if h.ID == 1 && (h.IsCompletedToday || h.CurrentStreak != 0) {
			t.Errorf("habit 1 kept yesterday's state: %+v", h)
		}
	}
}

func TestExportBundle(t *testing.T) {
	ctx := context.Background()
	a, _ := setupTestApp(t, storage.NewMemoryStore())
	if _, err := a.RecordMoment(ctx, constants.MomentNight); err != nil {
		t.Fatal(err)
	}

	b, err := a.ExportBundle(ctx)
	if err != nil {
		t.Fatalf("ExportBundle failed: %v", err)
	}
	if len(b.Habits) != 5 || len(b.Challenges) != 1 || len(b.MiniChallenges) != 3 {
		t.Errorf("bundle sizes: %d habits, %d challenges, %d minis", len(b.Habits), len(b.Challenges), len(b.MiniChallenges))
	}
	if b.TotalPoints != constants.PointsDailyMoment || len(b.PointsHistory) != 1 {
		t.Errorf("bundle points = %d with %d entries", b.TotalPoints, len(b.PointsHistory))
	}
	if b.Assessment != nil {
		t.Error("no assessment was recorded")
	}
}
