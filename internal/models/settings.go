package models

import (
	"fmt"
	"time"

	"github.com/julianstephens/reto21d/internal/constants"
)

// Reminder is one daily reminder slot
type Reminder struct {
	Enabled bool   `json:"enabled"`
	Time    string `json:"time"` // HH:MM
}

// DailyReminders groups the four moments of the day
type DailyReminders struct {
	Morning Reminder `json:"morning"`
	Noon    Reminder `json:"noon"`
	Evening Reminder `json:"evening"`
	Night   Reminder `json:"night"`
}

// EventNotification toggles an event-driven notification
type EventNotification struct {
	Enabled bool `json:"enabled"`
	Sound   bool `json:"sound"`
}

// NotificationSettings is persisted as a whole under a single key
type NotificationSettings struct {
	Enabled          bool              `json:"enabled"`
	DailyReminders   DailyReminders    `json:"dailyReminders"`
	HabitCompletion  EventNotification `json:"habitCompletion"`
	StreakMilestones EventNotification `json:"streakMilestones"`
}

// DefaultNotificationSettings returns the settings used before the user saves any
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		Enabled: constants.DefaultNotificationsEnabled,
		DailyReminders: DailyReminders{
			Morning: Reminder{Enabled: true, Time: constants.DefaultMorningTime},
			Noon:    Reminder{Enabled: false, Time: constants.DefaultNoonTime},
			Evening: Reminder{Enabled: true, Time: constants.DefaultEveningTime},
			Night:   Reminder{Enabled: false, Time: constants.DefaultNightTime},
		},
		HabitCompletion:  EventNotification{Enabled: true, Sound: true},
		StreakMilestones: EventNotification{Enabled: true, Sound: true},
	}
}

// Reminder returns the slot for a moment
func (s *NotificationSettings) Reminder(m constants.Moment) (*Reminder, error) {
	switch m {
	case constants.MomentMorning:
		return &s.DailyReminders.Morning, nil
	case constants.MomentNoon:
		return &s.DailyReminders.Noon, nil
	case constants.MomentEvening:
		return &s.DailyReminders.Evening, nil
	case constants.MomentNight:
		return &s.DailyReminders.Night, nil
	}
	return nil, fmt.Errorf("unknown moment %q", m)
}

func (s *NotificationSettings) Validate() error {
	for _, m := range constants.Moments {
		r, _ := s.Reminder(m)
		if _, err := time.Parse(constants.TimeFormat, r.Time); err != nil {
			return fmt.Errorf("invalid %s reminder time %q (expected HH:MM)", m, r.Time)
		}
	}
	return nil
}
