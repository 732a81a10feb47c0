package scheduler

import (
	"time"

	"github.com/julianstephens/habitline/internal/models"
	"github.com/julianstephens/habitline/internal/utils"
)

// ComputeBackfill synthesizes a "missed" check-in for every past due date of
// every habit that has no existing check-in. Dates run from the habit's start
// date up to but excluding today. The result is derived on read and must never
// be persisted as-is.
func ComputeBackfill(habits []models.Habit, existing []models.CheckIn, today time.Time) []models.CheckIn {
	recorded := make(map[models.CheckInKey]bool, len(existing))
	for _, c := range existing {
		recorded[c.Key()] = true
	}

	end := utils.CalendarDate(today)
	var backfill []models.CheckIn
	for _, h := range habits {
		start, err := utils.ParseDate(h.StartDate)
		if err != nil || len(h.TargetDays) == 0 {
			continue
		}
		for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
			if !IsDueOn(h, d) {
				continue
			}
			date := utils.FormatDate(d)
			if recorded[models.CheckInKey{HabitID: h.ID, Date: date}] {
				continue
			}
			backfill = append(backfill, models.CheckIn{
				ID:      models.MissingCheckInID(h.ID, date),
				HabitID: h.ID,
				UserID:  h.UserID,
				Date:    date,
				Status:  models.StatusMissed,
			})
		}
	}
	return backfill
}

// MergeWithBackfill returns existing plus every backfilled entry whose
// (habit, date) has no real record. Real records always win.
func MergeWithBackfill(existing, backfill []models.CheckIn) []models.CheckIn {
	merged := make([]models.CheckIn, 0, len(existing)+len(backfill))
	seen := make(map[models.CheckInKey]bool, len(existing))
	for _, c := range existing {
		seen[c.Key()] = true
		merged = append(merged, c)
	}
	for _, c := range backfill {
		if seen[c.Key()] {
			continue
		}
		seen[c.Key()] = true
		merged = append(merged, c)
	}
	return merged
}
