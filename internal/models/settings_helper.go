package models

import (
	"fmt"

	"github.com/julianstephens/habitline/internal/constants"
)

// MapToSettings converts a map of key-value pairs to a Settings struct.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := Settings{}

	for key, value := range data {
		switch key {
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingDefaultLogDays:
			if _, err := fmt.Sscanf(value, "%d", &settings.DefaultLogDays); err != nil {
				return Settings{}, fmt.Errorf("parsing default_log_days: %w", err)
			}
		case constants.SettingLastVisit:
			settings.LastVisit = value
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingTimezone:       settings.Timezone,
		constants.SettingDefaultLogDays: fmt.Sprintf("%d", settings.DefaultLogDays),
		constants.SettingLastVisit:      settings.LastVisit,
	}
}

// ApplyDefaultSettings applies default values to missing settings.
func ApplyDefaultSettings(settings *Settings) {
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
	if settings.DefaultLogDays <= 0 {
		settings.DefaultLogDays = constants.DefaultLogDays
	}
}
