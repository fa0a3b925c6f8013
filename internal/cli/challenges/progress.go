package challenges

import (
	"github.com/julianstephens/reto21d/internal/cli"
)

type ProgressCmd struct {
	Show  ProgressShowCmd  `cmd:"" help:"Show daily progress of the challenge." default:"1"`
	Trend ProgressTrendCmd `cmd:"" help:"Show the completion trend and week-over-week change."`
}

type ProgressShowCmd struct{}

func (c *ProgressShowCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	entries, err := a.Progress.GetAll(ctx.Context())
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		ctx.Println("No progress recorded yet.")
		return nil
	}
	for _, p := range entries {
		ctx.Printf("Day %2d  %s  %d/%d  %s\n", p.Day, p.Date, p.HabitsCompleted, p.TotalHabits, cli.ProgressBar(int(p.Percentage()), 20))
	}
	return nil
}

type ProgressTrendCmd struct {
	Days int `help:"Number of most recent days." default:"7"`
}

func (c *ProgressTrendCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	trend, err := a.Progress.Trend(ctx.Context(), c.Days)
	if err != nil {
		return err
	}
	for _, t := range trend {
		ctx.Printf("Day %2d  %s  %s\n", t.Day, t.Date, cli.ProgressBar(int(t.Percentage), 20))
	}

	ch, err := a.Challenges.GetActive(ctx.Context())
	if err != nil {
		return nil
	}
	cmp, err := a.Progress.WeeklyComparison(ctx.Context(), ch.CurrentDay)
	if err != nil {
		return err
	}
	ctx.Printf("This week %.1f%%, last week %.1f%% (%+.1f)\n", cmp.CurrentAverage, cmp.PreviousAverage, cmp.Change)
	return nil
}
