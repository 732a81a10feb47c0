// Package validation checks habit input and audits stored habit data for inconsistencies.
package validation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/habitline/internal/models"
	"github.com/julianstephens/habitline/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictInvalidHabit         ConflictType = "invalid_habit"
	ConflictDuplicateHabitName   ConflictType = "duplicate_habit_name"
	ConflictOrphanCheckIn        ConflictType = "orphan_check_in"
	ConflictCheckInBeforeStart   ConflictType = "check_in_before_start"
	ConflictFutureCheckIn        ConflictType = "future_check_in"
	ConflictInvalidCheckInStatus ConflictType = "invalid_check_in_status"
	ConflictStreakOutOfRange     ConflictType = "streak_out_of_range"
)

// Conflict represents a detected inconsistency in stored habits or check-ins
type Conflict struct {
	Type        ConflictType
	Description string
	Date        string   // YYYY-MM-DD format (if applicable)
	HabitIDs    []string // IDs of habits involved
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", conflict.Description)
	}
	return b.String()
}

// Validator audits habits and their check-ins
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateData reports every inconsistency between habits and checkIns as of today.
func (v *Validator) ValidateData(habits []models.Habit, checkIns []models.CheckIn, today time.Time) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}
	byID := make(map[string]models.Habit, len(habits))

	nameIDs := make(map[string][]string)
	for _, h := range habits {
		byID[h.ID] = h
		if err := Habit(h); err != nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidHabit,
				Description: fmt.Sprintf("Habit %q is invalid: %v", h.Name, err),
				HabitIDs:    []string{h.ID},
			})
		}
		if h.CurrentStreak < 0 || h.LongestStreak < 0 || h.CurrentStreak > h.LongestStreak {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictStreakOutOfRange,
				Description: fmt.Sprintf("Habit %q has current streak %d and longest streak %d", h.Name, h.CurrentStreak, h.LongestStreak),
				HabitIDs:    []string{h.ID},
			})
		}
		key := strings.ToLower(strings.TrimSpace(h.Name))
		if key != "" {
			nameIDs[key] = append(nameIDs[key], h.ID)
		}
	}

	names := make([]string, 0, len(nameIDs))
	for name := range nameIDs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if ids := nameIDs[name]; len(ids) > 1 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateHabitName,
				Description: fmt.Sprintf("Duplicate habit name: %q (IDs: %v)", name, ids),
				HabitIDs:    ids,
			})
		}
	}

	end := utils.CalendarDate(today)
	for _, c := range checkIns {
		h, ok := byID[c.HabitID]
		if !ok {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictOrphanCheckIn,
				Description: fmt.Sprintf("Check-in %s on %s references unknown habit %s", c.ID, c.Date, c.HabitID),
				Date:        c.Date,
				HabitIDs:    []string{c.HabitID},
			})
			continue
		}
		if err := Status(c.Status); err != nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidCheckInStatus,
				Description: fmt.Sprintf("Habit %q on %s: %v", h.Name, c.Date, err),
				Date:        c.Date,
				HabitIDs:    []string{h.ID},
			})
		}
		d, err := utils.ParseDate(c.Date)
		if err != nil {
			continue
		}
		if d.After(end) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictFutureCheckIn,
				Description: fmt.Sprintf("Habit %q has a check-in dated in the future (%s)", h.Name, c.Date),
				Date:        c.Date,
				HabitIDs:    []string{h.ID},
			})
		}
		if start, err := utils.ParseDate(h.StartDate); err == nil && d.Before(start) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictCheckInBeforeStart,
				Description: fmt.Sprintf("Habit %q has a check-in on %s before its start date %s", h.Name, c.Date, h.StartDate),
				Date:        c.Date,
				HabitIDs:    []string{h.ID},
			})
		}
	}

	return result
}
