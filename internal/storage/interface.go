// Package storage defines the persistence port shared by every backend.
package storage

import (
	"context"
	"errors"

	"github.com/julianstephens/habitline/internal/models"
)

// ErrNotFound is returned when a habit, check-in or setting does not exist.
var ErrNotFound = errors.New("record not found")

type Provider interface {
	// Lifecycle
	Init(ctx context.Context) error
	Load(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error

	// Habits
	// CreateHabit assigns an id when habit.ID is empty and stamps CreatedAt/UpdatedAt.
	CreateHabit(ctx context.Context, habit *models.Habit) error
	GetHabit(ctx context.Context, id string) (models.Habit, error)
	ListHabits(ctx context.Context, ownerID string) ([]models.Habit, error)
	// UpdateHabit overwrites the stored habit and bumps UpdatedAt. Returns
	// ErrNotFound when no habit has habit.ID.
	UpdateHabit(ctx context.Context, habit *models.Habit) error
	// DeleteHabit removes the habit and cascades to its check-ins.
	DeleteHabit(ctx context.Context, id string) error

	// Check-ins
	GetCheckIn(ctx context.Context, habitID, date string) (models.CheckIn, error)
	// ListCheckInsByHabit returns every check-in of the habit, most recent date first.
	ListCheckInsByHabit(ctx context.Context, habitID string) ([]models.CheckIn, error)
	ListCheckInsByDate(ctx context.Context, userID, date string) ([]models.CheckIn, error)
	ListCheckInsForUser(ctx context.Context, userID string) ([]models.CheckIn, error)
	// UpsertCheckIn inserts a check-in for (HabitID, Date) or updates the status
	// of the existing one in place, keeping its id. The stored row is returned.
	UpsertCheckIn(ctx context.Context, checkIn models.CheckIn) (models.CheckIn, error)

	// Settings
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	AllSettings(ctx context.Context) (map[string]string, error)

	// Utils
	GetConfigPath() string
}
