package points

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/julianstephens/reto21d/internal/constants"
	"github.com/julianstephens/reto21d/internal/models"
	"github.com/julianstephens/reto21d/internal/storage"
)

type countingChecker struct {
	calls int
	err   error
}

func (c *countingChecker) CheckAllAchievements(ctx context.Context, force bool) ([]models.Achievement, error) {
	c.calls++
	return nil, c.err
}

type recordingObserver struct {
	actions []models.PointsAction
}

func (r *recordingObserver) PointsAwarded(action models.PointsAction, points, total int) {
	r.actions = append(r.actions, action)
}

func setupTestLedger(t *testing.T) (*Ledger, *storage.MemoryStore, *countingChecker) {
	t.Helper()
	kv := storage.NewMemoryStore()
	checker := &countingChecker{}
	clock := func() time.Time { return time.Date(2024, 1, 3, 8, 0, 0, 0, time.UTC) }
	return New(context.Background(), kv, checker, clock), kv, checker
}

func TestAwardValues(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		award func(l *Ledger) int
		want  int
	}{
		{"habit completion", func(l *Ledger) int { return l.AwardHabitCompletion(ctx, "Agua") }, 10},
		{"daily moment", func(l *Ledger) int { return l.AwardDailyMoment(ctx, "morning") }, 5},
		{"streak below threshold", func(l *Ledger) int { return l.AwardStreakBonus(ctx, 2) }, 0},
		{"streak at threshold", func(l *Ledger) int { return l.AwardStreakBonus(ctx, 3) }, 15},
		{"streak of a week", func(l *Ledger) int { return l.AwardStreakBonus(ctx, 7) }, 35},
		{"perfect day", func(l *Ledger) int { return l.AwardPerfectDay(ctx, 3, 3) }, 20},
		{"imperfect day", func(l *Ledger) int { return l.AwardPerfectDay(ctx, 2, 3) }, 0},
		{"no habits is not perfect", func(l *Ledger) int { return l.AwardPerfectDay(ctx, 0, 0) }, 0},
		{"challenge day 1", func(l *Ledger) int { return l.AwardChallengeProgress(ctx, 1) }, 2},
		{"challenge day 7", func(l *Ledger) int { return l.AwardChallengeProgress(ctx, 7) }, 14},
		{"challenge day 8 capped", func(l *Ledger) int { return l.AwardChallengeProgress(ctx, 8) }, 15},
		{"challenge day 21 capped", func(l *Ledger) int { return l.AwardChallengeProgress(ctx, 21) }, 15},
		{"mini completion", func(l *Ledger) int { return l.AwardMiniChallengeCompletion(ctx, "Sin azúcar") }, 30},
		{"mini progress", func(l *Ledger) int { return l.AwardMiniChallengeProgress(ctx, "Sin azúcar") }, 5},
		{"challenge completion", func(l *Ledger) int { return l.AwardChallengeCompletion(ctx) }, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _, _ := setupTestLedger(t)
			before := l.Total()
			got := tt.award(l)
			if got != tt.want {
				t.Errorf("awarded %d, want %d", got, tt.want)
			}
			if l.Total() != before+got {
				t.Errorf("total = %d, want %d", l.Total(), before+got)
			}
		})
	}
}

func TestZeroAwardRecordsNothing(t *testing.T) {
	ctx := context.Background()
	l, kv, checker := setupTestLedger(t)

	l.AwardPerfectDay(ctx, 1, 4)
	l.AwardStreakBonus(ctx, 1)

	if len(l.History()) != 0 {
		t.Errorf("zero awards should not be recorded, got %d entries", len(l.History()))
	}
	if checker.calls != 0 {
		t.Errorf("zero awards should not trigger a re-check, got %d", checker.calls)
	}
	if _, err := kv.Get(ctx, constants.KeyUserPoints); !errors.Is(err, storage.ErrKeyNotFound) {
		t.Errorf("zero awards should not persist, got %v", err)
	}
}

func TestMonotonicTotalAndHistory(t *testing.T) {
	ctx := context.Background()
	l, _, _ := setupTestLedger(t)

	prev := l.Total()
	for day := 1; day <= 10; day++ {
		l.AwardChallengeProgress(ctx, day)
		l.AwardHabitCompletion(ctx, "Agua")
		if l.Total() < prev {
			t.Fatalf("total decreased from %d to %d", prev, l.Total())
		}
		prev = l.Total()
	}

	h := l.History()
	if h[0].TotalAfter != l.Total() {
		t.Errorf("newest entry TotalAfter = %d, want %d", h[0].TotalAfter, l.Total())
	}
	for i := 1; i < len(h); i++ {
		if h[i-1].TotalAfter != h[i].TotalAfter+h[i-1].Points {
			t.Errorf("entry %d does not chain: %+v after %+v", i-1, h[i-1], h[i])
		}
	}
}

func TestHistoryCapped(t *testing.T) {
	ctx := context.Background()
	l, _, _ := setupTestLedger(t)

	for i := 0; i < constants.MaxPointsHistory+15; i++ {
		l.AwardDailyMoment(ctx, fmt.Sprintf("m%d", i))
	}

	h := l.History()
	if len(h) != constants.MaxPointsHistory {
		t.Fatalf("history length = %d, want %d", len(h), constants.MaxPointsHistory)
	}
	if h[len(h)-1].Details != "Momento del día: m15" {
		t.Errorf("oldest kept entry = %q, want the 16th award", h[len(h)-1].Details)
	}
	if l.Total() != (constants.MaxPointsHistory+15)*constants.PointsDailyMoment {
		t.Errorf("cap must not affect the total, got %d", l.Total())
	}
}

func TestAchievementRecheckTriggers(t *testing.T) {
	ctx := context.Background()
	l, _, checker := setupTestLedger(t)

	l.AwardDailyMoment(ctx, "noon")
	l.AwardMiniChallengeProgress(ctx, "x")
	l.AwardMiniChallengeCompletion(ctx, "x")
	if checker.calls != 0 {
		t.Errorf("non-qualifying awards triggered %d checks", checker.calls)
	}

	l.AwardHabitCompletion(ctx, "x")
	l.AwardStreakBonus(ctx, 3)
	l.AwardPerfectDay(ctx, 2, 2)
	l.AwardChallengeProgress(ctx, 1)
	l.AwardChallengeCompletion(ctx)
	if checker.calls != 5 {
		t.Errorf("expected 5 checks, got %d", checker.calls)
	}

	checker.err = errors.New("boom")
	if got := l.AwardHabitCompletion(ctx, "x"); got != 10 {
		t.Errorf("a failing check must not affect the award, got %d", got)
	}
}

func TestPersistAndReload(t *testing.T) {
	ctx := context.Background()
	l, kv, _ := setupTestLedger(t)

	l.AwardHabitCompletion(ctx, "Agua")
	l.AwardPerfectDay(ctx, 5, 5)

	raw, err := kv.Get(ctx, constants.KeyUserPoints)
	if err != nil || string(raw) != "30" {
		t.Fatalf("persisted total = %q, %v; want \"30\"", raw, err)
	}

	reloaded := New(ctx, kv, nil, nil)
	if reloaded.Total() != 30 || len(reloaded.History()) != 2 {
		t.Errorf("reload got total %d, %d entries", reloaded.Total(), len(reloaded.History()))
	}
}

func TestPersistenceFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	l, kv, _ := setupTestLedger(t)
	kv.FailWrites = errors.New("quota exceeded")

	if got := l.AwardHabitCompletion(ctx, "Agua"); got != 10 {
		t.Errorf("award should succeed despite storage failure, got %d", got)
	}
	if l.Total() != 10 {
		t.Errorf("in-memory total should still advance, got %d", l.Total())
	}
}

func TestCorruptPersistedValues(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore()
	_ = kv.Set(ctx, constants.KeyUserPoints, []byte("lots"))
	_ = kv.Set(ctx, constants.KeyPointsHistory, []byte("{"))

	l := New(ctx, kv, nil, nil)
	if l.Total() != 0 || len(l.History()) != 0 {
		t.Errorf("corrupt values should load as empty, got %d / %d", l.Total(), len(l.History()))
	}
}

func TestObserversAndSince(t *testing.T) {
	ctx := context.Background()
	l, _, _ := setupTestLedger(t)
	obs := &recordingObserver{}
	l.AddObserver(obs)

	l.AwardHabitCompletion(ctx, "Agua")
	l.AwardPerfectDay(ctx, 1, 2)

	if len(obs.actions) != 1 || obs.actions[0] != models.ActionHabitCompletion {
		t.Errorf("observer saw %v", obs.actions)
	}
	if got := l.Since(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)); got != 10 {
		t.Errorf("Since = %d, want 10", got)
	}
	if got := l.Since(time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)); got != 0 {
		t.Errorf("Since tomorrow = %d, want 0", got)
	}

	l.Reset()
	if l.Total() != 0 {
		t.Error("Reset should clear the total")
	}
}
