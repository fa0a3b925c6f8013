package habits

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

func TestHabitListCmd(t *testing.T) {
	ctx, out := setupTestContext(t)

	if err := (&HabitListCmd{}).Run(ctx); err != nil {
		t.Fatalf("habit list failed: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Habits for 2024-01-03 (3/5 done)") {
		t.Errorf("missing header in:\n%s", got)
	}
	if !strings.Contains(got, "✓ [1] Beber 2 litros de agua") {
		t.Errorf("missing completed habit in:\n%s", got)
	}
	if !strings.Contains(got, "○ [2] Meditar 10 minutos") {
		t.Errorf("missing pending habit in:\n%s", got)
	}
}

func TestHabitAddEditDelete(t *testing.T) {
	ctx, out := setupTestContext(t)

	if err := (&HabitAddCmd{Name: "Estirar", Category: "salud", Target: 15, Unit: "minutos"}).Run(ctx); err != nil {
		t.Fatalf("habit add failed: %v", err)
	}
	if !strings.Contains(out.String(), "Added habit [6]: Estirar") {
		t.Errorf("unexpected output: %s", out.String())
	}

	name := "Estirar espalda"
	target := 20
	if err := (&HabitEditCmd{ID: 6, Name: &name, Target: &target}).Run(ctx); err != nil {
		t.Fatalf("habit edit failed: %v", err)
	}
	a, err := ctx.App()
	if err != nil {
		t.Fatal(err)
	}
	h, err := a.Habits.GetByID(ctx.Context(), 6)
	if err != nil {
		t.Fatalf("edited habit missing: %v", err)
	}
	if h.Name != name || h.Goal.Target != 20 || h.Goal.Unit != "minutos" {
		t.Errorf("edit not applied: %+v", h)
	}

	if err := (&HabitDeleteCmd{ID: 6}).Run(ctx); err != nil {
		t.Fatalf("habit delete failed: %v", err)
	}
	if _, err := a.Habits.GetByID(ctx.Context(), 6); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestHabitAddRejectsEmptyName(t *testing.T) {
	ctx, _ := setupTestContext(t)
	err := (&HabitAddCmd{Name: "   "}).Run(ctx)
	if !errors.Is(err, errors.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestHabitToggleCmd(t *testing.T) {
	ctx, out := setupTestContext(t)

	if err := (&HabitToggleCmd{ID: 2}).Run(ctx); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if !strings.Contains(out.String(), "(+25 points, streak 3)") {
		t.Errorf("unexpected output: %s", out.String())
	}

	out.Reset()
	if err := (&HabitToggleCmd{ID: 2}).Run(ctx); err != nil {
		t.Fatalf("second toggle failed: %v", err)
	}
	if !strings.Contains(out.String(), "Unmarked Meditar 10 minutos") {
		t.Errorf("unexpected output: %s", out.String())
	}

	if err := (&HabitToggleCmd{ID: 99}).Run(ctx); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestHabitStreaksCmd(t *testing.T) {
	ctx, out := setupTestContext(t)
	if err := (&HabitStreaksCmd{ID: 1}).Run(ctx); err != nil {
		t.Fatalf("streaks failed: %v", err)
	}
	if !strings.Contains(out.String(), "Beber 2 litros de agua: current streak 3") {
		t.Errorf("unexpected output: %s", out.String())
	}
}

func TestFormatHabit(t *testing.T) {
	ctx, _ := setupTestContext(t)
	a, err := ctx.App()
	if err != nil {
		t.Fatal(err)
	}
	h, err := a.Habits.GetByID(ctx.Context(), 4)
	if err != nil {
		t.Fatal(err)
	}
	got := FormatHabit(h)
	if !strings.HasPrefix(got, "○ [4] Leer 20 páginas") {
		t.Errorf("FormatHabit = %q", got)
	}
}
