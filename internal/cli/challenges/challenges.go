package challenges

import (
	"fmt"

	"github.com/julianstephens/reto21d/internal/cli"
	"github.com/julianstephens/reto21d/internal/constants"
	"github.com/julianstephens/reto21d/internal/errors"
	"github.com/julianstephens/reto21d/internal/models"
)

type ChallengeCmd struct {
	Show  ChallengeShowCmd  `cmd:"" help:"Show the active challenge." default:"1"`
	List  ChallengeListCmd  `cmd:"" help:"List all challenges."`
	Start ChallengeStartCmd `cmd:"" help:"Start a new 21-day challenge."`
	Day   ChallengeDayCmd   `cmd:"" help:"Mark a challenge day as completed."`
	Mini  struct {
		List     MiniListCmd     `cmd:"" help:"List mini-challenges of the active challenge." default:"1"`
		Complete MiniCompleteCmd `cmd:"" help:"Record a day on a mini-challenge."`
	} `cmd:"" help:"Manage mini-challenges."`
}

type ChallengeShowCmd struct{}

func (c *ChallengeShowCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	ch, err := a.SyncDay(ctx.Context())
	if err != nil {
		return err
	}
	if ch == nil {
		ctx.Println("No active challenge. Start one with 'reto21d challenge start'.")
		return nil
	}
	ctx.Println(ch.Name)
	if ch.Description != "" {
		ctx.Println(ch.Description)
	}
	pct := len(ch.CompletedDays) * 100 / constants.ChallengeLength
	ctx.Printf("Day %d of %d, started %s\n", ch.CurrentDay, constants.ChallengeLength, ch.StartDate)
	ctx.Println(cli.ProgressBar(pct, 21))
	ctx.Println(DayGrid(*ch))
	return nil
}

// DayGrid renders the 21 days in three weeks, ● done, ◉ today, · pending
func DayGrid(ch models.Challenge) string {
	out := ""
	for week := 0; week < 3; week++ {
		out += fmt.Sprintf("Week %d ", week+1)
		for d := week*7 + 1; d <= week*7+7; d++ {
			switch {
			case ch.HasDay(d):
				out += " ●"
			case d == ch.CurrentDay:
				out += " ◉"
			default:
				out += " ·"
			}
		}
		if week < 2 {
			out += "\n"
		}
	}
	return out
}

type ChallengeListCmd struct{}

func (c *ChallengeListCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	cs, err := a.Challenges.GetAll(ctx.Context())
	if err != nil {
		return err
	}
	if len(cs) == 0 {
		ctx.Println("No challenges found.")
		return nil
	}
	for _, ch := range cs {
		status := ""
		switch {
		case ch.IsCompleted:
			status = " [COMPLETED]"
		case ch.IsActive:
			status = " [ACTIVE]"
		}
		ctx.Printf("[%d] %s%s: %d/%d days, started %s\n", ch.ID, ch.Name, status, len(ch.CompletedDays), constants.ChallengeLength, ch.StartDate)
	}
	return nil
}

type ChallengeStartCmd struct {
	Name        string `arg:"" help:"Challenge name."`
	Description string `help:"Challenge description."`
	Start       string `help:"Start date (YYYY-MM-DD). Defaults to today."`
}

func (c *ChallengeStartCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	ch, err := a.StartChallenge(ctx.Context(), c.Name, c.Description, c.Start)
	if err != nil {
		return err
	}
	ctx.Printf("Started challenge [%d] %s on %s (day %d)\n", ch.ID, ch.Name, ch.StartDate, ch.CurrentDay)
	return nil
}

type ChallengeDayCmd struct {
	Day int `arg:"" optional:"" help:"Day to complete (1-21). Defaults to the current day."`
}

func (c *ChallengeDayCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	res, err := a.CompleteChallengeDay(ctx.Context(), c.Day)
	if err != nil {
		return err
	}
	if !res.Added {
		ctx.Println("Day already completed.")
		return nil
	}
	ctx.Printf("Day completed (+%d points). %d/%d days done.\n", res.Points, len(res.Challenge.CompletedDays), constants.ChallengeLength)
	if res.Finished {
		ctx.Println("¡Reto de 21 días completado!")
	}
	cli.PrintUnlocked(ctx, res.Unlocked)
	return nil
}

type MiniListCmd struct {
	All bool `help:"List the mini-challenges of every challenge."`
}

func (c *MiniListCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	id := 0
	if !c.All {
		ch, err := a.Challenges.GetActive(ctx.Context())
		if err != nil && !errors.Is(err, errors.ErrNoActiveChallenge) {
			return err
		}
		if err != nil {
			ctx.Println("No active challenge.")
			return nil
		}
		id = ch.ID
	}
	ms, err := a.Challenges.GetMiniChallenges(ctx.Context(), id)
	if err != nil {
		return err
	}
	if len(ms) == 0 {
		ctx.Println("No mini-challenges found.")
		return nil
	}
	for _, m := range ms {
		mark := "○"
		if m.IsCompleted {
			mark = "✓"
		}
		ctx.Printf("%s [%d] %s %d/%d (%d pts)\n", mark, m.ID, m.Title, m.Progress.Current, m.Progress.Total, m.Points)
	}
	return nil
}

type MiniCompleteCmd struct {
	ID  int `arg:"" help:"Mini-challenge ID."`
	Day int `help:"Challenge day to record. Defaults to the current day."`
}

func (c *MiniCompleteCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	res, err := a.CompleteMiniChallenge(ctx.Context(), c.ID, c.Day)
	if err != nil {
		return err
	}
	m := res.MiniChallenge
	switch {
	case res.JustCompleted:
		ctx.Printf("✓ %s completed! (+%d points)\n", m.Title, res.Points)
	case res.Recorded:
		ctx.Printf("%s: %d/%d (+%d points)\n", m.Title, m.Progress.Current, m.Progress.Total, res.Points)
	default:
		ctx.Printf("%s: day already recorded\n", m.Title)
	}
	return nil
}
