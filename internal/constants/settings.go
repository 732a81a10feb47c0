package constants

const (
	// Client-local settings keys
	SettingTimezone       = "timezone"
	SettingDefaultLogDays = "default_log_days"
	SettingLastVisit      = "last_visit"

	// Default Settings Values
	DefaultTimezone        = "Local" // Use system local timezone by default
	DefaultLogDays         = 14
	DefaultRefreshSchedule = "@every 5m"
)
