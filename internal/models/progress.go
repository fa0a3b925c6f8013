package models

// DayProgress is the habit tally for one challenge day
type DayProgress struct {
	ID              int    `json:"id"`
	Day             int    `json:"day"`
	Date            string `json:"date"` // YYYY-MM-DD
	HabitsCompleted int    `json:"habitsCompleted"`
	TotalHabits     int    `json:"totalHabits"`
}

// Percentage returns the completion rate of the day, 0 when no habits were tracked
func (p DayProgress) Percentage() float64 {
	if p.TotalHabits <= 0 {
		return 0
	}
	return float64(p.HabitsCompleted) / float64(p.TotalHabits) * 100
}

// TrendPoint is one entry of a completion trend series
type TrendPoint struct {
	Day        int     `json:"day"`
	Date       string  `json:"date"`
	Percentage float64 `json:"percentage"`
}

// WeekComparison compares two 7-day windows of the challenge
type WeekComparison struct {
	PreviousAverage float64 `json:"previousAverage"`
	CurrentAverage  float64 `json:"currentAverage"`
	Change          float64 `json:"change"`
}
