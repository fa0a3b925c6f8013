package models

import "time"

// PointsAction names the event a ledger entry was awarded for
type PointsAction string

const (
	ActionHabitCompletion         PointsAction = "habit_completion"
	ActionDailyMoment             PointsAction = "daily_moment"
	ActionStreakBonus             PointsAction = "streak_bonus"
	ActionPerfectDay              PointsAction = "perfect_day"
	ActionChallengeProgress       PointsAction = "challenge_progress"
	ActionMiniChallengeCompletion PointsAction = "mini_challenge_completion"
	ActionMiniChallengeProgress   PointsAction = "mini_challenge_progress"
	ActionChallengeCompletion     PointsAction = "challenge_completion"
)

// PointsEntry is one line of the points history
type PointsEntry struct {
	ID         string       `json:"id"`
	Action     PointsAction `json:"action"`
	Points     int          `json:"points"`
	Details    string       `json:"details,omitempty"`
	Timestamp  time.Time    `json:"timestamp"`
	TotalAfter int          `json:"totalAfter"`
}

// TriggersAchievementCheck reports whether awarding this action should
// re-evaluate achievements
func (a PointsAction) TriggersAchievementCheck() bool {
	switch a {
	case ActionHabitCompletion, ActionStreakBonus, ActionPerfectDay,
		ActionChallengeProgress, ActionChallengeCompletion:
		return true
	}
	return false
}
