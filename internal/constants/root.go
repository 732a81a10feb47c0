package constants

import "time"

const (
	AppName            = "habitline"
	DefaultKeyringUser = "database-connection"
	SessionKeyringUser = "session-token"
	DefaultConfigDir   = "~/.config/habitline"
	DefaultConfigPath  = "~/.config/habitline/habitline.db"
	DefaultConfigFile  = "~/.config/habitline/config.yaml"
	Version            = "v0.1.0"

	// MissingIDPrefix marks check-ins synthesized by backfill. Such entries are never persisted.
	MissingIDPrefix = "missing-"

	// SessionTokenDuration is how long a signed session token stays valid
	SessionTokenDuration = 30 * 24 * time.Hour
)
