package models

import (
	"fmt"
	"strings"
)

// Challenge is a 21-day transformation run
type Challenge struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	StartDate     string `json:"startDate"`  // YYYY-MM-DD
	CurrentDay    int    `json:"currentDay"` // 1..21
	CompletedDays []int  `json:"completedDays"`
	IsActive      bool   `json:"isActive"`
	IsCompleted   bool   `json:"isCompleted"`
}

// ChallengePatch carries the fields of a challenge update
type ChallengePatch struct {
	Name          *string `json:"name,omitempty"`
	Description   *string `json:"description,omitempty"`
	StartDate     *string `json:"startDate,omitempty"`
	CurrentDay    *int    `json:"currentDay,omitempty"`
	CompletedDays []int   `json:"completedDays,omitempty"`
	IsCompleted   *bool   `json:"isCompleted,omitempty"`
}

// MiniProgress tracks the days a mini-challenge was worked on
type MiniProgress struct {
	Current       int   `json:"current"`
	Total         int   `json:"total"`
	CompletedDays []int `json:"completedDays"`
}

// MiniChallenge is a short side quest attached to a challenge
type MiniChallenge struct {
	ID          int          `json:"id"`
	ChallengeID int          `json:"challengeId"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Points      int          `json:"points"`
	Progress    MiniProgress `json:"progress"`
	IsCompleted bool         `json:"isCompleted"`
}

// MiniChallengePatch carries the fields of a mini-challenge update
type MiniChallengePatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Points      *int    `json:"points,omitempty"`
	Total       *int    `json:"total,omitempty"`
}

// HasDay reports whether day is in the completed list
func (c *Challenge) HasDay(day int) bool {
	for _, d := range c.CompletedDays {
		if d == day {
			return true
		}
	}
	return false
}

func (c *Challenge) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("challenge name cannot be empty")
	}
	for _, d := range c.CompletedDays {
		if d < 1 || d > 21 {
			return fmt.Errorf("completed day %d outside 1..21", d)
		}
	}
	return nil
}

func (c Challenge) Clone() Challenge {
	c.CompletedDays = append([]int(nil), c.CompletedDays...)
	return c
}

func (m MiniChallenge) Clone() MiniChallenge {
	m.Progress.CompletedDays = append([]int(nil), m.Progress.CompletedDays...)
	return m
}
