package system

import (
	"fmt"
	"time"

	"github.com/julianstephens/reto21d/internal/cli"
	"github.com/julianstephens/reto21d/internal/constants"
	"github.com/julianstephens/reto21d/internal/keyring"
)

type DoctorCmd struct{}

type check struct {
	name string
	// warn marks a check whose failure is reported but not fatal
	warn    bool
	needsDB bool
	// gate skips the remaining database checks when it fails
	gate bool
	run  func(ctx *cli.Context) error
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	reachable := true
	hasError := false
	for _, c := range checks() {
		if !reachable && c.needsDB {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case c.warn:
			ctx.Printf("⚠ %s: WARNING\n   %v\n", c.name, err)
		default:
			ctx.Printf("❌ %s: FAIL\n   Error: %v\n", c.name, err)
			hasError = true
			if c.gate {
				reachable = false
			}
		}
	}

	ctx.Println()
	if hasError {
		return fmt.Errorf("diagnostics found problems")
	}
	ctx.Println("All checks passed.")
	return nil
}

func checks() []check {
	return []check{
		{name: "Database reachable", needsDB: true, gate: true, run: func(ctx *cli.Context) error {
			return ctx.Store.Load()
		}},
		{name: "Application state", needsDB: true, gate: true, run: func(ctx *cli.Context) error {
			_, err := ctx.App()
			return err
		}},
		{name: "Habit integrity", needsDB: true, run: checkHabits},
		{name: "Challenge integrity", needsDB: true, run: checkChallenges},
		{name: "Backups present", warn: true, run: func(ctx *cli.Context) error {
			mgr := ctx.Backups()
			if mgr == nil {
				return nil
			}
			backups, err := mgr.List()
			if err != nil {
				return err
			}
			if len(backups) == 0 {
				return fmt.Errorf("no backups found in %s", mgr.Dir())
			}
			return nil
		}},
		{name: "OS keyring", warn: true, run: func(ctx *cli.Context) error {
			if !keyring.Default().IsAvailable() {
				return keyring.ErrKeyringUnavailable
			}
			return nil
		}},
		{name: "Clock/timezone", run: func(ctx *cli.Context) error {
			now := time.Now()
			if now.Year() < 2020 {
				return fmt.Errorf("system clock looks wrong: %s", now.Format(time.RFC3339))
			}
			if ctx.Location == nil {
				return nil
			}
			if _, err := time.LoadLocation(ctx.Location.String()); err != nil {
				return fmt.Errorf("timezone %q cannot be loaded: %w", ctx.Location, err)
			}
			return nil
		}},
	}
}

func checkHabits(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	habits, err := a.Habits.GetAll(ctx.Context())
	if err != nil {
		return err
	}
	for _, h := range habits {
		seen := map[string]bool{}
		for _, d := range h.CompletionDates {
			if _, err := time.Parse(constants.DateFormat, d); err != nil {
				return fmt.Errorf("habit %d has malformed completion date %q", h.ID, d)
			}
			if seen[d] {
				return fmt.Errorf("habit %d has duplicate completion date %s", h.ID, d)
			}
			seen[d] = true
		}
	}
	return nil
}

func checkChallenges(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	cs, err := a.Challenges.GetAll(ctx.Context())
	if err != nil {
		return err
	}
	active := 0
	for _, c := range cs {
		if c.IsActive {
			active++
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("challenge %d: %w", c.ID, err)
		}
	}
	if active > 1 {
		return fmt.Errorf("%d challenges are flagged active", active)
	}
	return nil
}
