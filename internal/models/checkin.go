package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/habitline/internal/constants"
)

// CheckInStatus is the recorded outcome of a habit on one calendar day
type CheckInStatus string

const (
	StatusCompleted CheckInStatus = "completed"
	StatusMissed    CheckInStatus = "missed"
	StatusSkipped   CheckInStatus = "skipped"
)

// Valid reports whether s is one of the known statuses.
func (s CheckInStatus) Valid() bool {
	switch s {
	case StatusCompleted, StatusMissed, StatusSkipped:
		return true
	default:
		return false
	}
}

// ParseCheckInStatus converts user input into a status.
func ParseCheckInStatus(s string) (CheckInStatus, error) {
	status := CheckInStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("invalid status %q (expected completed, missed or skipped)", s)
	}
	return status, nil
}

// CheckIn is a dated status record for one habit on one calendar day
type CheckIn struct {
	ID        string        `json:"id"`
	HabitID   string        `json:"habit_id"`
	UserID    string        `json:"user_id"`
	Date      string        `json:"date"` // YYYY-MM-DD format
	Status    CheckInStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Key identifies the (habit, date) cell a check-in occupies.
func (c CheckIn) Key() CheckInKey {
	return CheckInKey{HabitID: c.HabitID, Date: c.Date}
}

// Synthetic reports whether the check-in was produced by backfill rather than read from storage.
func (c CheckIn) Synthetic() bool {
	return strings.HasPrefix(c.ID, constants.MissingIDPrefix)
}

// CheckInKey is the natural key of a check-in
type CheckInKey struct {
	HabitID string
	Date    string
}

// MissingCheckInID builds the deterministic placeholder id for a backfilled entry
func MissingCheckInID(habitID, date string) string {
	return constants.MissingIDPrefix + habitID + "-" + date
}
