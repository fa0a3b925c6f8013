package models

import "time"

// Consents are the user's privacy choices
type Consents struct {
	Analytics    bool       `json:"analytics"`
	Marketing    bool       `json:"marketing"`
	DataSharing  bool       `json:"dataSharing"`
	PhotoStorage bool       `json:"photoStorage"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

// DeletionRequest is a recorded request to erase the account
type DeletionRequest struct {
	ID          string    `json:"id"`
	RequestedAt time.Time `json:"requestedAt"`
	Status      string    `json:"status"`
}

// ExportBundle is everything the user can download about themselves
type ExportBundle struct {
	ExportedAt           time.Time            `json:"exportedAt"`
	Habits               []Habit              `json:"habits"`
	Challenges           []Challenge          `json:"challenges"`
	MiniChallenges       []MiniChallenge      `json:"miniChallenges"`
	DayProgress          []DayProgress        `json:"dayProgress"`
	TotalPoints          int                  `json:"totalPoints"`
	PointsHistory        []PointsEntry        `json:"pointsHistory"`
	Achievements         map[string]Unlock    `json:"achievements"`
	Assessment           *Assessment          `json:"assessment,omitempty"`
	FinalAssessment      *Assessment          `json:"finalAssessment,omitempty"`
	NotificationSettings NotificationSettings `json:"notificationSettings"`
	Consents             Consents             `json:"consents"`
}
