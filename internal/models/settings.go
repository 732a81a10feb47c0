package models

// Settings holds client-local preferences
type Settings struct {
	Timezone       string `json:"timezone"`         // IANA timezone name (e.g. "America/New_York", or "Local" for system timezone)
	DefaultLogDays int    `json:"default_log_days"` // number of days shown by the habit log
	LastVisit      string `json:"last_visit"`       // YYYY-MM-DD of the previous run, empty on first run
}
