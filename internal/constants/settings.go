package constants

// Persisted key names
const (
	KeyUserAchievements   = "user_achievements"
	KeyUserPoints         = "userPoints"
	KeyPointsHistory      = "pointsHistory"
	KeyNotificationConfig = "notificationSettings"
	KeyPrivacyConsents    = "privacyConsents"
	KeyDeletionRequests   = "privacyDeletionRequests"
	KeyStatePrefix        = "state:"
)

// Point values awarded per action
const (
	PointsHabitCompletion         = 10
	PointsDailyMoment             = 5
	PointsStreakPerDay            = 5
	PointsStreakThreshold         = 3
	PointsPerfectDay              = 20
	PointsChallengeProgressPerDay = 2
	PointsChallengeProgressCap    = 15
	PointsMiniChallengeCompletion = 30
	PointsMiniChallengeProgress   = 5
	PointsChallengeCompletion     = 100

	MaxPointsHistory = 100
)

// Default notification settings
const (
	DefaultNotificationsEnabled = true
	DefaultMorningTime          = "08:00"
	DefaultNoonTime             = "13:00"
	DefaultEveningTime          = "19:00"
	DefaultNightTime            = "22:00"
)

// Default HTTP settings
const (
	DefaultListenAddr   = ":8021"
	DefaultRateLimit    = 5
	DefaultRateBurst    = 30
	DefaultReadTimeout  = 15
	DefaultWriteTimeout = 15
)
