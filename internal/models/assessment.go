package models

import "time"

// PersonalInfo is the first wizard section
type PersonalInfo struct {
	Name       string `json:"name"`
	Age        int    `json:"age,omitempty"`
	Gender     string `json:"gender,omitempty"`
	Occupation string `json:"occupation,omitempty"`
}

// PhysicalMeasurements holds body metrics in kg and cm
type PhysicalMeasurements struct {
	Weight float64  `json:"weight,omitempty"`
	Height float64  `json:"height,omitempty"`
	BMI    *float64 `json:"bmi,omitempty"`
	Waist  float64  `json:"waist,omitempty"`
	Chest  float64  `json:"chest,omitempty"`
	Hips   float64  `json:"hips,omitempty"`
	Arms   float64  `json:"arms,omitempty"`
	Thighs float64  `json:"thighs,omitempty"`
}

// EnergyLevels are self-reported 1..10 scores; 0 means not rated
type EnergyLevels struct {
	Energy   int `json:"energy"`
	Sleep    int `json:"sleep"`
	Stress   int `json:"stress"`
	Wellness int `json:"wellness"`
}

// Photos holds data URLs of the progress pictures
type Photos struct {
	Front string `json:"front,omitempty"`
	Side  string `json:"side,omitempty"`
	Back  string `json:"back,omitempty"`
}

// Goals captures what the user wants out of the challenge
type Goals struct {
	Primary    string   `json:"primary"`
	Secondary  []string `json:"secondary,omitempty"`
	Motivation string   `json:"motivation,omitempty"`
}

// Assessment is the single before (or after) record of a user
type Assessment struct {
	ID                   string               `json:"id"`
	PersonalInfo         PersonalInfo         `json:"personalInfo"`
	PhysicalMeasurements PhysicalMeasurements `json:"physicalMeasurements"`
	EnergyLevels         EnergyLevels         `json:"energyLevels"`
	Photos               Photos               `json:"photos"`
	Goals                Goals                `json:"goals"`
	Completed            bool                 `json:"completed"`
	CreatedAt            time.Time            `json:"createdAt"`
	UpdatedAt            time.Time            `json:"updatedAt"`
	CompletedAt          *time.Time           `json:"completedAt,omitempty"`
}

// AssessmentInput is a partial save of the wizard; nil sections are kept as they are
type AssessmentInput struct {
	PersonalInfo         *PersonalInfo         `json:"personalInfo,omitempty"`
	PhysicalMeasurements *PhysicalMeasurements `json:"physicalMeasurements,omitempty"`
	EnergyLevels         *EnergyLevels         `json:"energyLevels,omitempty"`
	Photos               *Photos               `json:"photos,omitempty"`
	Goals                *Goals                `json:"goals,omitempty"`
}

// Comparison is the before/after report
type Comparison struct {
	WeightChange       float64            `json:"weightChange"`
	EnergyChange       int                `json:"energyChange"`
	SleepChange        int                `json:"sleepChange"`
	WellnessChange     int                `json:"wellnessChange"`
	MeasurementChanges map[string]float64 `json:"measurementChanges"`
	OverallImprovement float64            `json:"overallImprovement"`
}
