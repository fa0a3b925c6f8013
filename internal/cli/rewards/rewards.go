package rewards

import (
	"strings"

	"github.com/julianstephens/reto21d/internal/cli"
	"github.com/julianstephens/reto21d/internal/constants"
)

type PointsCmd struct {
	Show    PointsShowCmd    `cmd:"" help:"Show total points." default:"1"`
	History PointsHistoryCmd `cmd:"" help:"Show the points history, newest first."`
	Moment  PointsMomentCmd  `cmd:"" help:"Claim the bonus for a moment of the day."`
}

type PointsShowCmd struct{}

func (c *PointsShowCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	s, err := a.Summary(ctx.Context())
	if err != nil {
		return err
	}
	ctx.Printf("Total points: %d\n", s.TotalPoints)
	ctx.Printf("Earned today: %d\n", s.PointsToday)
	ctx.Printf("Achievements: %d/%d (%d pts)\n", s.UnlockedCount, s.CatalogSize, a.Achievements.UnlockedPoints())
	return nil
}

type PointsHistoryCmd struct {
	Limit int `help:"Maximum number of entries to show." default:"20"`
}

func (c *PointsHistoryCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	history := a.Points.History()
	if len(history) == 0 {
		ctx.Println("No points earned yet.")
		return nil
	}
	if c.Limit > 0 && len(history) > c.Limit {
		history = history[:c.Limit]
	}
	for _, e := range history {
		ctx.Printf("%s  +%-3d %-26s %s (total %d)\n", e.Timestamp.Format("2006-01-02 15:04"), e.Points, e.Action, e.Details, e.TotalAfter)
	}
	return nil
}

type PointsMomentCmd struct {
	Moment string `arg:"" enum:"morning,noon,evening,night" help:"Moment of the day (morning, noon, evening, night)."`
}

func (c *PointsMomentCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	pts, err := a.RecordMoment(ctx.Context(), constants.Moment(strings.ToLower(c.Moment)))
	if err != nil {
		return err
	}
	a.Persist(ctx.Context())
	ctx.Printf("Moment %s recorded (+%d points)\n", c.Moment, pts)
	return nil
}

type AchievementsCmd struct {
	List     AchievementListCmd     `cmd:"" help:"List achievements with progress." default:"1"`
	Check    AchievementCheckCmd    `cmd:"" help:"Re-evaluate every achievement."`
	Progress AchievementProgressCmd `cmd:"" help:"Show progress towards one achievement."`
}

type AchievementListCmd struct {
	Unlocked bool `help:"Only show unlocked achievements."`
}

func (c *AchievementListCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	statuses, err := a.Achievements.Statuses(ctx.Context())
	if err != nil {
		return err
	}
	for _, st := range statuses {
		if c.Unlocked && !st.Unlocked {
			continue
		}
		mark := "🔒"
		if st.Unlocked {
			mark = st.Icon
		}
		ctx.Printf("%s %-22s %3d pts  %s\n", mark, st.Name, st.Points, cli.ProgressBar(st.Progress, 10))
		ctx.Printf("   %s [%s]\n", st.Description, st.Key)
	}
	return nil
}

type AchievementCheckCmd struct {
	Force bool `help:"Check even when nothing changed since the last check."`
}

func (c *AchievementCheckCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	fresh, err := a.CheckAchievements(ctx.Context(), c.Force)
	if err != nil {
		return err
	}
	if len(fresh) == 0 {
		ctx.Println("No new achievements.")
		return nil
	}
	a.Persist(ctx.Context())
	cli.PrintUnlocked(ctx, fresh)
	return nil
}

type AchievementProgressCmd struct {
	Key string `arg:"" help:"Achievement key (e.g. racha_fuego_3)."`
}

func (c *AchievementProgressCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	pct, err := a.Achievements.GetProgressTowardsAchievement(ctx.Context(), c.Key)
	if err != nil {
		return err
	}
	ctx.Printf("%s: %s\n", c.Key, cli.ProgressBar(pct, 20))
	return nil
}
