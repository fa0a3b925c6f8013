package system

import (
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/julianstephens/reto21d/internal/cli"
	"github.com/julianstephens/reto21d/internal/constants"
	"github.com/julianstephens/reto21d/internal/errors"
	"github.com/julianstephens/reto21d/internal/logger"
	"github.com/julianstephens/reto21d/internal/models"
	"github.com/julianstephens/reto21d/internal/notifier"
)

type NotifyCmd struct {
	Settings NotifySettingsCmd `cmd:"" help:"Show notification settings." default:"1"`
	Set      NotifySetCmd      `cmd:"" help:"Update notification settings."`
	Test     NotifyTestCmd     `cmd:"" help:"Send a test notification."`
	Run      NotifyRunCmd      `cmd:"" help:"Run the daily reminder scheduler until interrupted."`
}

type NotifySettingsCmd struct{}

func (c *NotifySettingsCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	s := a.Scheduler.Settings()
	ctx.Printf("Notifications: %s\n", onOff(s.Enabled))
	for _, m := range constants.Moments {
		r, _ := s.Reminder(m)
		ctx.Printf("  %-8s %s  %s\n", m, r.Time, onOff(r.Enabled))
	}
	ctx.Printf("Habit completion: %s\n", onOff(s.HabitCompletion.Enabled))
	ctx.Printf("Streak milestones: %s\n", onOff(s.StreakMilestones.Enabled))
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// NotifySetCmd takes HH:MM to enable a reminder at that time, or "off"
type NotifySetCmd struct {
	Enabled          *bool   `help:"Turn all notifications on or off."`
	Morning          *string `help:"Morning reminder time (HH:MM) or off."`
	Noon             *string `help:"Noon reminder time (HH:MM) or off."`
	Evening          *string `help:"Evening reminder time (HH:MM) or off."`
	Night            *string `help:"Night reminder time (HH:MM) or off."`
	HabitCompletion  *bool   `help:"Notify on habit completion."`
	StreakMilestones *bool   `help:"Notify on streak milestones."`
}

// Apply merges the flags into s
func (c *NotifySetCmd) Apply(s *models.NotificationSettings) {
	if c.Enabled != nil {
		s.Enabled = *c.Enabled
	}
	if c.HabitCompletion != nil {
		s.HabitCompletion.Enabled = *c.HabitCompletion
	}
	if c.StreakMilestones != nil {
		s.StreakMilestones.Enabled = *c.StreakMilestones
	}
	for m, v := range map[constants.Moment]*string{
		constants.MomentMorning: c.Morning,
		constants.MomentNoon:    c.Noon,
		constants.MomentEvening: c.Evening,
		constants.MomentNight:   c.Night,
	} {
		if v == nil {
			continue
		}
		r, _ := s.Reminder(m)
		if strings.EqualFold(*v, "off") {
			r.Enabled = false
			continue
		}
		r.Enabled = true
		r.Time = *v
	}
}

func (c *NotifySetCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	s := a.Scheduler.Settings()
	c.Apply(&s)
	if err := a.Scheduler.SaveSettings(ctx.Context(), s); err != nil {
		return err
	}
	ctx.Println("✓ Notification settings saved")

	runs := a.Scheduler.NextRuns()
	keys := make([]string, 0, len(runs))
	for k := range runs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ctx.Printf("  %s next at %s\n", k, runs[k].Format("2006-01-02 15:04"))
	}
	return nil
}

type NotifyTestCmd struct {
	Message string `arg:"" optional:"" help:"Message to send." default:"Notificación de prueba de Reto 21D"`
}

func (c *NotifyTestCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	if err := a.Scheduler.RequestPermission(ctx.Context()); err != nil {
		if errors.Is(err, errors.ErrUnsupportedPlatform) {
			ctx.Println("Notifications are not available: the tray app is not running.")
			return nil
		}
		return err
	}
	sent, err := a.Scheduler.SendNotification(ctx.Context(), notifier.Notification{Title: "Reto 21D", Body: c.Message})
	if err != nil {
		return err
	}
	if !sent {
		ctx.Println("Notifications are disabled; nothing sent.")
		return nil
	}
	ctx.Println("✓ Notification sent")
	return nil
}

type NotifyRunCmd struct{}

func (c *NotifyRunCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	if err := a.Scheduler.ScheduleAllDailyReminders(); err != nil {
		return err
	}
	runCtx, stop := signal.NotifyContext(ctx.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Scheduler.Start()
	logger.Info("Reminder scheduler running", "jobs", len(a.Scheduler.PendingKeys()))
	<-runCtx.Done()
	logger.Info("Reminder scheduler stopping")
	return nil
}
