package habits

import (
	"context"
	"testing"
	"time"

	"github.com/julianstephens/reto21d/internal/errors"
	"github.com/julianstephens/reto21d/internal/models"
	"github.com/julianstephens/reto21d/internal/utils"
)

func fixedOpts(day string) utils.StoreOptions {
	t, _ := time.Parse("2006-01-02", day)
	return utils.StoreOptions{Clock: utils.FixedClock(t.Add(10 * time.Hour))}
}

func setupTestStore(t *testing.T, today string) *Store {
	t.Helper()
	return New([]models.Habit{
		{ID: 1, Name: "Beber agua", Goal: models.Goal{Target: 8, Unit: "vasos"}, CompletionDates: []string{"2024-01-01", "2024-01-02"}},
		{ID: 4, Name: "Leer", Goal: models.Goal{Target: 20, Unit: "páginas"}},
	}, fixedOpts(today))
}

func TestCalculateStreaks(t *testing.T) {
	tests := []struct {
		name  string
		dates []string
		today string
		want  models.Streaks
	}{
		{"empty", nil, "2024-01-03", models.Streaks{}},
		{"three through today", []string{"2024-01-01", "2024-01-02", "2024-01-03"}, "2024-01-03", models.Streaks{CurrentStreak: 3, BestStreak: 3}},
		{"unordered input", []string{"2024-01-03", "2024-01-01", "2024-01-02"}, "2024-01-03", models.Streaks{CurrentStreak: 3, BestStreak: 3}},
		{"today missing", []string{"2024-01-01", "2024-01-02"}, "2024-01-03", models.Streaks{CurrentStreak: 0, BestStreak: 2}},
		{"best older than current", []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-09", "2024-01-10"}, "2024-01-10", models.Streaks{CurrentStreak: 2, BestStreak: 4}},
		{"duplicates ignored", []string{"2024-01-02", "2024-01-02", "2024-01-03"}, "2024-01-03", models.Streaks{CurrentStreak: 2, BestStreak: 2}},
		{"crosses month boundary", []string{"2024-02-28", "2024-02-29", "2024-03-01"}, "2024-03-01", models.Streaks{CurrentStreak: 3, BestStreak: 3}},
		{"garbage skipped", []string{"nope", "2024-01-03"}, "2024-01-03", models.Streaks{CurrentStreak: 1, BestStreak: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateStreaks(tt.dates, tt.today)
			if got != tt.want {
				t.Errorf("CalculateStreaks(%v, %s) = %+v, want %+v", tt.dates, tt.today, got, tt.want)
			}
			if got.BestStreak < got.CurrentStreak {
				t.Errorf("best streak %d below current %d", got.BestStreak, got.CurrentStreak)
			}
		})
	}
}

func TestGetByIDNotFound(t *testing.T) {
	store := setupTestStore(t, "2024-01-02")

	if _, err := store.GetByID(context.Background(), 99); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Update(context.Background(), 99, models.HabitPatch{}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Update: expected ErrNotFound, got %v", err)
	}
	if err := store.Delete(context.Background(), 99); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Delete: expected ErrNotFound, got %v", err)
	}
}

func TestNewDerivesTodayAndStreaks(t *testing.T) {
	store := setupTestStore(t, "2024-01-02")

	h, err := store.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !h.IsCompletedToday || h.CurrentStreak != 2 || h.BestStreak != 2 {
		t.Errorf("derived fields wrong: %+v", h)
	}
}

func TestCreateAssignsNextIDAndDefaults(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t, "2024-01-02")

	h, err := store.Create(ctx, models.Habit{Name: "  Estirar  "})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if h.ID != 5 {
		t.Errorf("expected id 5 (max+1), got %d", h.ID)
	}
	if h.Name != "Estirar" {
		t.Errorf("expected trimmed name, got %q", h.Name)
	}
	if h.Goal.Target != 1 || h.Goal.Unit != "veces" || h.Goal.Current != 0 {
		t.Errorf("unexpected default goal %+v", h.Goal)
	}
	if h.CompletionDates == nil || h.CurrentStreak != 0 || h.BestStreak != 0 {
		t.Errorf("unexpected default streak state %+v", h)
	}

	if _, err := store.Create(ctx, models.Habit{Name: ""}); !errors.Is(err, errors.ErrValidation) {
		t.Errorf("expected validation error for empty name, got %v", err)
	}
}

func TestCreateOnEmptyStore(t *testing.T) {
	store := New(nil, fixedOpts("2024-01-01"))
	h, err := store.Create(context.Background(), models.Habit{Name: "Primero"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if h.ID != 1 {
		t.Errorf("expected id 1, got %d", h.ID)
	}
}

func TestUpdateShallowMerge(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t, "2024-01-02")

	color := "#000000"
	h, err := store.Update(ctx, 1, models.HabitPatch{Color: &color})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if h.Color != color || h.Name != "Beber agua" || len(h.CompletionDates) != 2 {
		t.Errorf("patch did not merge shallowly: %+v", h)
	}

	empty := " "
	if _, err := store.Update(ctx, 1, models.HabitPatch{Name: &empty}); !errors.Is(err, errors.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestToggle(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t, "2024-01-03")

	h, completed, err := store.Toggle(ctx, 1, "2024-01-03")
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if !completed || !h.IsCompletedToday {
		t.Errorf("expected habit completed today: %+v", h)
	}
	if h.CurrentStreak != 3 || h.BestStreak != 3 {
		t.Errorf("expected streak 3/3, got %d/%d", h.CurrentStreak, h.BestStreak)
	}
	if h.Goal.Current != h.Goal.Target {
		t.Errorf("expected goal filled, got %+v", h.Goal)
	}

	h, completed, err = store.Toggle(ctx, 1, "2024-01-03")
	if err != nil {
		t.Fatalf("second Toggle failed: %v", err)
	}
	if completed || h.IsCompletedToday || h.HasDate("2024-01-03") {
		t.Errorf("expected habit un-completed: %+v", h)
	}
	if h.CurrentStreak != 0 || h.BestStreak != 2 {
		t.Errorf("expected streak 0/2, got %d/%d", h.CurrentStreak, h.BestStreak)
	}

	if _, _, err := store.Toggle(ctx, 1, "03/01/2024"); !errors.Is(err, errors.ErrValidation) {
		t.Errorf("expected validation error for bad date, got %v", err)
	}
}

func TestToggleNeverDuplicatesDates(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t, "2024-01-05")

	for i := 0; i < 4; i++ {
		if _, _, err := store.Toggle(ctx, 4, "2024-01-05"); err != nil {
			t.Fatalf("Toggle failed: %v", err)
		}
	}
	h, _ := store.GetByID(ctx, 4)
	if len(h.CompletionDates) != 0 {
		t.Errorf("expected an even number of toggles to leave no dates, got %v", h.CompletionDates)
	}
}

func TestGetAllReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t, "2024-01-02")

	all, _ := store.GetAll(ctx)
	all[0].Name = "mutated"
	all[0].CompletionDates[0] = "1999-01-01"

	h, _ := store.GetByID(ctx, 1)
	if h.Name == "mutated" || h.CompletionDates[0] == "1999-01-01" {
		t.Error("GetAll leaked internal state")
	}
}

func TestUpdateStreaksAfterDayRollover(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
	store := New([]models.Habit{
		{ID: 1, Name: "Agua", CompletionDates: []string{"2024-01-01", "2024-01-02"}},
	}, utils.StoreOptions{Clock: func() time.Time { return now }})

	now = now.AddDate(0, 0, 1)
	all, err := store.UpdateStreaks(ctx)
	if err != nil {
		t.Fatalf("UpdateStreaks failed: %v", err)
	}
	if all[0].IsCompletedToday || all[0].CurrentStreak != 0 || all[0].BestStreak != 2 {
		t.Errorf("unexpected state after rollover: %+v", all[0])
	}
}

func TestCompletedToday(t *testing.T) {
	store := setupTestStore(t, "2024-01-02")
	done, total := store.CompletedToday()
	if done != 1 || total != 2 {
		t.Errorf("CompletedToday = %d/%d, want 1/2", done, total)
	}
}

func TestLatencyRespectsCancellation(t *testing.T) {
	store := New(nil, utils.StoreOptions{Latency: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.GetAll(ctx); err == nil {
		t.Error("expected cancelled context to abort the call")
	}
}

func TestRefreshToday(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
	store := New([]models.Habit{
		{ID: 1, Name: "Agua", Goal: models.Goal{Target: 8}, CompletionDates: []string{"2024-01-01"}},
	}, utils.StoreOptions{Clock: func() time.Time { return now }})

	if _, _, err := store.Toggle(ctx, 1, "2024-01-02"); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}

	now = now.AddDate(0, 0, 1)
	store.RefreshToday()
	h, _ := store.GetByID(ctx, 1)
	if h.IsCompletedToday || h.Goal.Current != 0 || h.CurrentStreak != 0 || h.BestStreak != 2 {
		t.Errorf("expected a fresh day, got %+v", h)
	}
}

func TestReadsFollowTheClockAcrossMidnight(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 2, 23, 30, 0, 0, time.UTC)
	store := New([]models.Habit{
		{ID: 1, Name: "Agua", Goal: models.Goal{Target: 8}, CompletionDates: []string{"2024-01-01"}},
		{ID: 2, Name: "Leer", Goal: models.Goal{Target: 1}},
	}, utils.StoreOptions{Clock: func() time.Time { return now }})
	if _, _, err := store.Toggle(ctx, 1, "2024-01-02"); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}

	now = time.Date(2024, 1, 3, 8, 0, 0, 0, time.UTC)

	all, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if h := all[0]; h.IsCompletedToday || h.CurrentStreak != 0 || h.BestStreak != 2 || h.Goal.Current != 0 {
		t.Errorf("GetAll returned yesterday's state: %+v", h)
	}

	// toggling another habit must not leave stale flags on the rest
	if _, _, err := store.Toggle(ctx, 2, "2024-01-03"); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	h, err := store.GetByID(ctx, 1)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if h.IsCompletedToday {
		t.Errorf("habit 1 still marked done after midnight: %+v", h)
	}
	if done, total := store.CompletedToday(); done != 1 || total != 2 {
		t.Errorf("CompletedToday = %d/%d, want 1/2", done, total)
	}
}
