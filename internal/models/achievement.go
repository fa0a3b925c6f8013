package models

import (
	"time"

	"github.com/julianstephens/reto21d/internal/constants"
)

// Requirement is the predicate an achievement unlocks on
type Requirement struct {
	Type  constants.RequirementType `json:"type"`
	Value int                       `json:"value"`
	Days  int                       `json:"days,omitempty"` // window for consistency_rate
}

// Achievement is a static catalog entry
type Achievement struct {
	ID          int         `json:"id"`
	Key         string      `json:"key"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Icon        string      `json:"icon"`
	Color       string      `json:"color"`
	Gradient    string      `json:"gradient"`
	Points      int         `json:"points"`
	Category    string      `json:"category"`
	Requirement Requirement `json:"requirement"`
}

// Unlock records when an achievement was earned. Once stored it is never removed.
type Unlock struct {
	UnlockedAt time.Time `json:"unlockedAt"`
	Progress   int       `json:"progress"`
}

// AchievementStatus joins a catalog entry with the user's state for it
type AchievementStatus struct {
	Achievement
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlockedAt,omitempty"`
	Progress   int        `json:"progress"`
}
