package rewards

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/reto21d/internal/cli"
	"github.com/julianstephens/reto21d/internal/errors"
	"github.com/julianstephens/reto21d/internal/notifier"
	"github.com/julianstephens/reto21d/internal/storage"
	"github.com/julianstephens/reto21d/internal/utils"
)

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	ctx := &cli.Context{
		Store:        storage.NewMemoryStore(),
		Clock:        utils.FixedClock(time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)),
		Location:     time.UTC,
		PersistState: true,
		Notifier:     notifier.Func(func(context.Context, notifier.Notification) error { return nil }),
		Out:          out,
	}
	t.Cleanup(func() {
		if err := ctx.Close(); err != nil {
			t.Errorf("failed to close context: %v", err)
		}
	})
	return ctx, out
}

func TestPointsAfterToggle(t *testing.T) {
	ctx, out := setupTestContext(t)

	if err := (&PointsHistoryCmd{Limit: 20}).Run(ctx); err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(out.String(), "No points earned yet.") {
		t.Errorf("unexpected output: %s", out.String())
	}

	a, err := ctx.App()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.ToggleHabit(ctx.Context(), 2); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}

	out.Reset()
	if err := (&PointsShowCmd{}).Run(ctx); err != nil {
		t.Fatalf("show failed: %v", err)
	}
	got := out.String()
	for _, want := range []string{"Total points: 25", "Earned today: 25", "Achievements: 0/8 (0 pts)"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}

	out.Reset()
	if err := (&PointsHistoryCmd{Limit: 1}).Run(ctx); err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if n := strings.Count(out.String(), "\n"); n != 1 {
		t.Errorf("limit 1 printed %d lines:\n%s", n, out.String())
	}
	if !strings.Contains(out.String(), "(total 25)") {
		t.Errorf("newest entry should carry the running total:\n%s", out.String())
	}
}

func TestPointsMomentCmd(t *testing.T) {
	ctx, out := setupTestContext(t)

	if err := (&PointsMomentCmd{Moment: "morning"}).Run(ctx); err != nil {
		t.Fatalf("moment failed: %v", err)
	}
	if !strings.Contains(out.String(), "Moment morning recorded (+5 points)") {
		t.Errorf("unexpected output: %s", out.String())
	}

	if err := (&PointsMomentCmd{Moment: "midnight"}).Run(ctx); !errors.Is(err, errors.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestAchievementListCmd(t *testing.T) {
	ctx, out := setupTestContext(t)

	if err := (&AchievementListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	got := out.String()
	if n := strings.Count(got, "🔒"); n != 8 {
		t.Errorf("expected 8 locked achievements, got %d:\n%s", n, got)
	}
	if !strings.Contains(got, "[racha_fuego_3]") {
		t.Errorf("missing achievement key in:\n%s", got)
	}

	out.Reset()
	if err := (&AchievementListCmd{Unlocked: true}).Run(ctx); err != nil {
		t.Fatalf("list --unlocked failed: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("nothing is unlocked yet, got:\n%s", out.String())
	}
}

func TestAchievementCheckCmd(t *testing.T) {
	ctx, out := setupTestContext(t)

	if err := (&AchievementCheckCmd{Force: true}).Run(ctx); err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !strings.Contains(out.String(), "No new achievements.") {
		t.Errorf("unexpected output: %s", out.String())
	}

	a, err := ctx.App()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.CompleteChallengeDay(ctx.Context(), 0); err != nil {
		t.Fatalf("complete day failed: %v", err)
	}

	out.Reset()
	if err := (&AchievementListCmd{Unlocked: true}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "[racha_fuego_3]") {
		t.Errorf("three consecutive days should unlock racha_fuego_3:\n%s", out.String())
	}
}

func TestAchievementProgressCmd(t *testing.T) {
	ctx, out := setupTestContext(t)

	if err := (&AchievementProgressCmd{Key: "racha_fuego_3"}).Run(ctx); err != nil {
		t.Fatalf("progress failed: %v", err)
	}
	if !strings.HasPrefix(out.String(), "racha_fuego_3: [") {
		t.Errorf("unexpected output: %s", out.String())
	}

	if err := (&AchievementProgressCmd{Key: "nope"}).Run(ctx); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
