package models

import (
	"fmt"
	"strings"
)

// Goal is the daily target of a habit
type Goal struct {
	Current int    `json:"current"`
	Target  int    `json:"target"`
	Unit    string `json:"unit"`
}

// Habit is a recurring action the user checks off each day
type Habit struct {
	ID               int      `json:"id"`
	Name             string   `json:"name"`
	Category         string   `json:"category"`
	Color            string   `json:"color"`
	Icon             string   `json:"icon"`
	Goal             Goal     `json:"goal"`
	IsCompletedToday bool     `json:"isCompletedToday"`
	CompletionDates  []string `json:"completionDates"` // YYYY-MM-DD, no duplicates
	CurrentStreak    int      `json:"currentStreak"`
	BestStreak       int      `json:"bestStreak"`
}

// HabitPatch carries the fields of an update; nil fields are left untouched
type HabitPatch struct {
	Name     *string `json:"name,omitempty"`
	Category *string `json:"category,omitempty"`
	Color    *string `json:"color,omitempty"`
	Icon     *string `json:"icon,omitempty"`
	Goal     *Goal   `json:"goal,omitempty"`
}

// Streaks is the result of a streak computation
type Streaks struct {
	CurrentStreak int `json:"currentStreak"`
	BestStreak    int `json:"bestStreak"`
}

// HasDate reports whether the habit was completed on the given day
func (h *Habit) HasDate(day string) bool {
	for _, d := range h.CompletionDates {
		if d == day {
			return true
		}
	}
	return false
}

func (h *Habit) Validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return fmt.Errorf("habit name cannot be empty")
	}
	if h.Goal.Target < 0 {
		return fmt.Errorf("goal target cannot be negative")
	}
	return nil
}

// Clone returns a deep copy so callers cannot mutate store state
func (h Habit) Clone() Habit {
	h.CompletionDates = append([]string(nil), h.CompletionDates...)
	return h
}
