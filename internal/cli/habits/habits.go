package habits

import (
	"fmt"

	"github.com/julianstephens/reto21d/internal/cli"
	"github.com/julianstephens/reto21d/internal/models"
)

type HabitCmd struct {
	List    HabitListCmd    `cmd:"" help:"List habits with today's status." default:"1"`
	Add     HabitAddCmd     `cmd:"" help:"Add a new habit."`
	Edit    HabitEditCmd    `cmd:"" help:"Edit a habit."`
	Delete  HabitDeleteCmd  `cmd:"" help:"Delete a habit."`
	Toggle  HabitToggleCmd  `cmd:"" help:"Mark or unmark a habit as done today."`
	Streaks HabitStreaksCmd `cmd:"" help:"Show a habit's current and best streak."`
}

type HabitListCmd struct{}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	habits, err := a.Habits.GetAll(ctx.Context())
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	done, total := a.Habits.CompletedToday()
	ctx.Printf("Habits for %s (%d/%d done)\n", a.Today(), done, total)
	for _, h := range habits {
		ctx.Println(FormatHabit(h))
	}
	return nil
}

// FormatHabit renders one habit line
func FormatHabit(h models.Habit) string {
	mark := "○"
	if h.IsCompletedToday {
		mark = "✓"
	}
	line := fmt.Sprintf("%s [%d] %s", mark, h.ID, h.Name)
	if h.Category != "" {
		line += fmt.Sprintf(" (%s)", h.Category)
	}
	if h.CurrentStreak > 0 || h.BestStreak > 0 {
		line += fmt.Sprintf(" streak %d, best %d", h.CurrentStreak, h.BestStreak)
	}
	return line
}

type HabitAddCmd struct {
	Name     string `arg:"" help:"Habit name."`
	Category string `help:"Category (salud, bienestar, desarrollo...)."`
	Color    string `help:"Display color."`
	Icon     string `help:"Display icon."`
	Target   int    `help:"Daily goal target." default:"1"`
	Unit     string `help:"Daily goal unit."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	h, unlocked, err := a.CreateHabit(ctx.Context(), models.Habit{
		Name:     c.Name,
		Category: c.Category,
		Color:    c.Color,
		Icon:     c.Icon,
		Goal:     models.Goal{Target: c.Target, Unit: c.Unit},
	})
	if err != nil {
		return err
	}
	ctx.Printf("Added habit [%d]: %s\n", h.ID, h.Name)
	cli.PrintUnlocked(ctx, unlocked)
	return nil
}

type HabitEditCmd struct {
	ID       int     `arg:"" help:"Habit ID."`
	Name     *string `help:"New name."`
	Category *string `help:"New category."`
	Color    *string `help:"New color."`
	Icon     *string `help:"New icon."`
	Target   *int    `help:"New goal target."`
	Unit     *string `help:"New goal unit."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	patch := models.HabitPatch{Name: c.Name, Category: c.Category, Color: c.Color, Icon: c.Icon}
	if c.Target != nil || c.Unit != nil {
		current, err := a.Habits.GetByID(ctx.Context(), c.ID)
		if err != nil {
			return err
		}
		goal := current.Goal
		if c.Target != nil {
			goal.Target = *c.Target
		}
		if c.Unit != nil {
			goal.Unit = *c.Unit
		}
		patch.Goal = &goal
	}

	h, err := a.Habits.Update(ctx.Context(), c.ID, patch)
	if err != nil {
		return err
	}
	a.Persist(ctx.Context())
	ctx.Printf("Updated habit [%d]: %s\n", h.ID, h.Name)
	return nil
}

type HabitDeleteCmd struct {
	ID int `arg:"" help:"Habit ID."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	if err := a.Habits.Delete(ctx.Context(), c.ID); err != nil {
		return err
	}
	a.Persist(ctx.Context())
	ctx.Printf("Deleted habit %d\n", c.ID)
	return nil
}

type HabitToggleCmd struct {
	ID int `arg:"" help:"Habit ID."`
}

func (c *HabitToggleCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	res, err := a.ToggleHabit(ctx.Context(), c.ID)
	if err != nil {
		return err
	}
	if !res.Completed {
		ctx.Printf("Unmarked %s for today\n", res.Habit.Name)
		return nil
	}
	ctx.Printf("✓ %s done (+%d points, streak %d)\n", res.Habit.Name, res.Points, res.Habit.CurrentStreak)
	if res.PerfectDay {
		ctx.Println("Perfect day: every habit completed!")
	}
	cli.PrintUnlocked(ctx, res.Unlocked)
	return nil
}

type HabitStreaksCmd struct {
	ID int `arg:"" help:"Habit ID."`
}

func (c *HabitStreaksCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	h, err := a.Habits.GetByID(ctx.Context(), c.ID)
	if err != nil {
		return err
	}
	s := a.Habits.CalculateStreaks(h)
	ctx.Printf("%s: current streak %d, best streak %d, %d completions\n", h.Name, s.CurrentStreak, s.BestStreak, len(h.CompletionDates))
	return nil
}
