package challenges

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/reto21d/internal/cli"
	"github.com/julianstephens/reto21d/internal/errors"
	"github.com/julianstephens/reto21d/internal/models"
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

func TestDayGrid(t *testing.T) {
	grid := DayGrid(models.Challenge{CurrentDay: 3, CompletedDays: []int{1, 2}})
	lines := strings.Split(grid, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 weeks, got %d lines", len(lines))
	}
	if lines[0] != "Week 1  ● ● ◉ · · · ·" {
		t.Errorf("week 1 = %q", lines[0])
	}
	if strings.Contains(lines[2], "●") {
		t.Errorf("week 3 should be empty: %q", lines[2])
	}
}

func TestChallengeShowCmd(t *testing.T) {
	ctx, out := setupTestContext(t)
	if err := (&ChallengeShowCmd{}).Run(ctx); err != nil {
		t.Fatalf("challenge show failed: %v", err)
	}
	if !strings.Contains(out.String(), "Day 3 of 21, started 2024-01-01") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestChallengeDayCmd(t *testing.T) {
	ctx, out := setupTestContext(t)

	if err := (&ChallengeDayCmd{}).Run(ctx); err != nil {
		t.Fatalf("day failed: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Day completed (+6 points). 3/21 days done.") {
		t.Errorf("unexpected output:\n%s", got)
	}
	if !strings.Contains(got, "Achievement unlocked") {
		t.Errorf("expected an unlock in:\n%s", got)
	}

	out.Reset()
	if err := (&ChallengeDayCmd{Day: 3}).Run(ctx); err != nil {
		t.Fatalf("repeat day failed: %v", err)
	}
	if !strings.Contains(out.String(), "Day already completed.") {
		t.Errorf("unexpected output: %s", out.String())
	}

	if err := (&ChallengeDayCmd{Day: 22}).Run(ctx); !errors.Is(err, errors.ErrValidation) {
		t.Errorf("expected validation error for day 22, got %v", err)
	}
}

func TestChallengeStartAndList(t *testing.T) {
	ctx, out := setupTestContext(t)

	if err := (&ChallengeStartCmd{Name: "Reto de primavera", Start: "2024-01-03"}).Run(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if !strings.Contains(out.String(), "Reto de primavera on 2024-01-03 (day 1)") {
		t.Errorf("unexpected output: %s", out.String())
	}

	out.Reset()
	if err := (&ChallengeListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	got := out.String()
	if strings.Count(got, "[ACTIVE]") != 1 {
		t.Errorf("expected exactly one active challenge:\n%s", got)
	}
	if !strings.Contains(got, "Reto de primavera [ACTIVE]") {
		t.Errorf("new challenge should be active:\n%s", got)
	}
}

func TestMiniCommands(t *testing.T) {
	ctx, out := setupTestContext(t)

	if err := (&MiniListCmd{}).Run(ctx); err != nil {
		t.Fatalf("mini list failed: %v", err)
	}
	if strings.Count(out.String(), "\n") != 3 {
		t.Errorf("expected 3 mini-challenges:\n%s", out.String())
	}

	out.Reset()
	if err := (&MiniCompleteCmd{ID: 3}).Run(ctx); err != nil {
		t.Fatalf("mini complete failed: %v", err)
	}
	if !strings.Contains(out.String(), "Desconexión digital: 1/3 (+5 points)") {
		t.Errorf("unexpected output: %s", out.String())
	}

	out.Reset()
	if err := (&MiniCompleteCmd{ID: 3}).Run(ctx); err != nil {
		t.Fatalf("repeat mini complete failed: %v", err)
	}
	if !strings.Contains(out.String(), "day already recorded") {
		t.Errorf("unexpected output: %s", out.String())
	}

	if err := (&MiniCompleteCmd{ID: 42}).Run(ctx); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestProgressCommands(t *testing.T) {
	ctx, out := setupTestContext(t)

	if err := (&ProgressShowCmd{}).Run(ctx); err != nil {
		t.Fatalf("progress show failed: %v", err)
	}
	if strings.Count(out.String(), "3/5") != 3 {
		t.Errorf("expected three seeded days at 3/5:\n%s", out.String())
	}

	out.Reset()
	if err := (&ProgressTrendCmd{Days: 7}).Run(ctx); err != nil {
		t.Fatalf("progress trend failed: %v", err)
	}
	if !strings.Contains(out.String(), "This week") {
		t.Errorf("missing weekly comparison:\n%s", out.String())
	}
}
