package models

import (
	"fmt"
	"strings"
	"time"
)

// ScheduleToken is one entry of a habit's target days
type ScheduleToken string

const (
	ScheduleDaily     ScheduleToken = "daily"
	ScheduleWeekdays  ScheduleToken = "weekdays"
	ScheduleMonday    ScheduleToken = "monday"
	ScheduleTuesday   ScheduleToken = "tuesday"
	ScheduleWednesday ScheduleToken = "wednesday"
	ScheduleThursday  ScheduleToken = "thursday"
	ScheduleFriday    ScheduleToken = "friday"
	ScheduleSaturday  ScheduleToken = "saturday"
	ScheduleSunday    ScheduleToken = "sunday"
)

var weekdayTokens = map[time.Weekday]ScheduleToken{
	time.Sunday:    ScheduleSunday,
	time.Monday:    ScheduleMonday,
	time.Tuesday:   ScheduleTuesday,
	time.Wednesday: ScheduleWednesday,
	time.Thursday:  ScheduleThursday,
	time.Friday:    ScheduleFriday,
	time.Saturday:  ScheduleSaturday,
}

// TokenForWeekday returns the schedule token naming the given weekday
func TokenForWeekday(wd time.Weekday) ScheduleToken {
	return weekdayTokens[wd]
}

// Valid reports whether t is a known schedule token.
func (t ScheduleToken) Valid() bool {
	switch t {
	case ScheduleDaily, ScheduleWeekdays,
		ScheduleMonday, ScheduleTuesday, ScheduleWednesday, ScheduleThursday,
		ScheduleFriday, ScheduleSaturday, ScheduleSunday:
		return true
	default:
		return false
	}
}

// ParseScheduleTokens parses a comma-separated list such as "monday,wed,fri".
// Three-letter day abbreviations are accepted and expanded.
func ParseScheduleTokens(s string) ([]ScheduleToken, error) {
	abbrev := map[string]ScheduleToken{
		"mon": ScheduleMonday,
		"tue": ScheduleTuesday,
		"wed": ScheduleWednesday,
		"thu": ScheduleThursday,
		"fri": ScheduleFriday,
		"sat": ScheduleSaturday,
		"sun": ScheduleSunday,
	}

	var tokens []ScheduleToken
	seen := make(map[ScheduleToken]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}
		tok := ScheduleToken(part)
		if short, ok := abbrev[part]; ok {
			tok = short
		}
		if !tok.Valid() {
			return nil, fmt.Errorf("invalid schedule token: %s", part)
		}
		if !seen[tok] {
			seen[tok] = true
			tokens = append(tokens, tok)
		}
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("at least one schedule token is required")
	}
	return tokens, nil
}

// FormatSchedule renders target days for display, e.g. "daily" or "mon,wed,fri".
func FormatSchedule(tokens []ScheduleToken) string {
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		switch t {
		case ScheduleDaily, ScheduleWeekdays:
			parts = append(parts, string(t))
		default:
			parts = append(parts, string(t)[:3])
		}
	}
	return strings.Join(parts, ",")
}

// Habit is a user-defined recurring action with a schedule and start date
type Habit struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Name          string          `json:"name" validate:"required,max=120"`
	Description   string          `json:"description" validate:"max=1000"`
	StartDate     string          `json:"start_date" validate:"required,iso_date"` // YYYY-MM-DD format
	TargetDays    []ScheduleToken `json:"target_days" validate:"required,min=1,dive,schedule_token"`
	CurrentStreak int             `json:"current_streak"`
	LongestStreak int             `json:"longest_streak"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// HasToken reports whether the habit's target days contain tok.
func (h Habit) HasToken(tok ScheduleToken) bool {
	for _, t := range h.TargetDays {
		if t == tok {
			return true
		}
	}
	return false
}

// HabitPatch holds the user-editable fields of a habit. Nil fields are left unchanged.
type HabitPatch struct {
	Name        *string
	Description *string
	StartDate   *string
	TargetDays  []ScheduleToken
}

// Apply copies the non-nil fields of p onto h.
func (p HabitPatch) Apply(h *Habit) {
	if p.Name != nil {
		h.Name = *p.Name
	}
	if p.Description != nil {
		h.Description = *p.Description
	}
	if p.StartDate != nil {
		h.StartDate = *p.StartDate
	}
	if p.TargetDays != nil {
		h.TargetDays = append([]ScheduleToken(nil), p.TargetDays...)
	}
}

// EncodeTargetDays joins tokens for storage in a single text column
func EncodeTargetDays(tokens []ScheduleToken) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = string(t)
	}
	return strings.Join(parts, ",")
}

// DecodeTargetDays is the inverse of EncodeTargetDays. Unknown tokens are kept so
// the scheduling predicate can apply its own defaults.
func DecodeTargetDays(s string) []ScheduleToken {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tokens := make([]ScheduleToken, 0, len(parts))
	for _, p := range parts {
		tokens = append(tokens, ScheduleToken(strings.TrimSpace(p)))
	}
	return tokens
}
