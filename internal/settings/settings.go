// Package settings loads and saves client-local preferences through a
// key/value store. Every storage backend satisfies Store.
package settings

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/julianstephens/habitline/internal/constants"
	"github.com/julianstephens/habitline/internal/models"
	"github.com/julianstephens/habitline/internal/utils"
)

// Store is the subset of storage.Provider the settings layer needs.
type Store interface {
	SetSetting(ctx context.Context, key, value string) error
	AllSettings(ctx context.Context) (map[string]string, error)
}

// Load reads all stored keys and fills in defaults for missing ones.
func Load(ctx context.Context, store Store) (models.Settings, error) {
	raw, err := store.AllSettings(ctx)
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}
	s, err := models.MapToSettings(raw)
	if err != nil {
		return models.Settings{}, err
	}
	models.ApplyDefaultSettings(&s)
	return s, nil
}

// Save validates s and writes every key.
func Save(ctx context.Context, store Store, s models.Settings) error {
	if err := Validate(s); err != nil {
		return err
	}
	for key, value := range models.SettingsToMap(s) {
		if err := store.SetSetting(ctx, key, value); err != nil {
			return fmt.Errorf("failed to save setting %s: %w", key, err)
		}
	}
	return nil
}

func Validate(s models.Settings) error {
	if !utils.ValidateTimezone(s.Timezone) {
		return fmt.Errorf("invalid timezone %q", s.Timezone)
	}
	if s.DefaultLogDays <= 0 || s.DefaultLogDays > 366 {
		return fmt.Errorf("default log days must be between 1 and 366, got %d", s.DefaultLogDays)
	}
	if s.LastVisit != "" && !utils.ValidateDateFormat(s.LastVisit) {
		return fmt.Errorf("last visit must be YYYY-MM-DD, got %q", s.LastVisit)
	}
	return nil
}

// Location resolves the configured timezone.
func Location(s models.Settings) (*time.Location, error) {
	loc, err := utils.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

// TouchLastVisit records today as the last visit and returns the previous
// value, empty on first run.
func TouchLastVisit(ctx context.Context, store Store, today time.Time) (string, error) {
	s, err := Load(ctx, store)
	if err != nil {
		return "", err
	}
	previous := s.LastVisit
	date := utils.FormatDate(today)
	if previous == date {
		return previous, nil
	}
	if err := store.SetSetting(ctx, constants.SettingLastVisit, date); err != nil {
		return "", fmt.Errorf("failed to save last visit: %w", err)
	}
	return previous, nil
}

// Set updates a single setting by key from its string form.
func Set(ctx context.Context, store Store, key, value string) error {
	s, err := Load(ctx, store)
	if err != nil {
		return err
	}
	switch key {
	case constants.SettingTimezone:
		s.Timezone = value
	case constants.SettingDefaultLogDays:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("default log days must be a number, got %q", value)
		}
		s.DefaultLogDays = n
	case constants.SettingLastVisit:
		s.LastVisit = value
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return Save(ctx, store, s)
}
