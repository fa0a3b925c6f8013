package constants

import "time"

// SessionState represents the current tab or modal of the TUI application
type SessionState int

// Moment names a daily reminder slot
type Moment string

// RequirementType identifies the predicate an achievement is unlocked by
type RequirementType string

const (
	AppName             = "reto21d"
	DefaultKeyringUser  = "database-connection"
	APITokenKeyringUser = "api-token"
	DefaultConfigPath   = "~/.config/reto21d/reto21d.db"
	Version             = "v0.1.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Challenge constants
	ChallengeLength = 21

	// Notify constants
	NotifyMaxRetries       = 3
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifierLockfileName   = "reto21d-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.reto21d"
	TrayExecutablePrefix   = "reto21d-tray"

	// Moments of the day a reminder can be bound to
	MomentMorning Moment = "morning"
	MomentNoon    Moment = "noon"
	MomentEvening Moment = "evening"
	MomentNight   Moment = "night"

	// Achievement requirement types
	ReqConsecutiveDays     RequirementType = "consecutive_days"
	ReqPerfectDay          RequirementType = "perfect_day"
	ReqConsistencyRate     RequirementType = "consistency_rate"
	ReqChallengeComplete   RequirementType = "challenge_complete"
	ReqPerfectDaysCount    RequirementType = "perfect_days_count"
	ReqCustomHabitsCreated RequirementType = "custom_habits_created"
)

// Session States
const (
	StateToday SessionState = iota
	StateChallenge
	StateAchievements
	StatePoints
	StateAddHabit
)

// Moments lists the daily reminder slots in firing order.
var Moments = []Moment{MomentMorning, MomentNoon, MomentEvening, MomentNight}
