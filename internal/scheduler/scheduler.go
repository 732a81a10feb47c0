// Package scheduler decides on which calendar dates a habit is due and derives
// the implicit "missed" records for past due dates nobody checked in.
package scheduler

import (
	"time"

	"github.com/julianstephens/habitline/internal/models"
	"github.com/julianstephens/habitline/internal/utils"
)

// IsDueOn reports whether habit is due on date. Only the calendar date of date
// is considered. Dates before the habit's start date are never due; an empty
// or unparseable schedule is treated as never due.
func IsDueOn(habit models.Habit, date time.Time) bool {
	if len(habit.TargetDays) == 0 {
		return false
	}
	start, err := utils.ParseDate(habit.StartDate)
	if err != nil {
		return false
	}
	day := utils.CalendarDate(date)
	if day.Before(start) {
		return false
	}
	return matchesSchedule(habit, day.Weekday())
}

// matchesSchedule applies token precedence: daily, then weekdays, then explicit day names.
func matchesSchedule(habit models.Habit, wd time.Weekday) bool {
	if habit.HasToken(models.ScheduleDaily) {
		return true
	}
	if habit.HasToken(models.ScheduleWeekdays) {
		return wd >= time.Monday && wd <= time.Friday
	}
	return habit.HasToken(models.TokenForWeekday(wd))
}

// DueToday returns the habits due on today that have not been completed yet,
// in input order. completedIDs holds ids of habits with a completed check-in for today.
func DueToday(habits []models.Habit, completedIDs map[string]bool, today time.Time) []models.Habit {
	due := make([]models.Habit, 0, len(habits))
	for _, h := range habits {
		if !IsDueOn(h, today) {
			continue
		}
		if completedIDs[h.ID] {
			continue
		}
		due = append(due, h)
	}
	return due
}

// CompletedHabitIDs collects the ids of habits with a completed check-in among checkIns.
func CompletedHabitIDs(checkIns []models.CheckIn) map[string]bool {
	ids := make(map[string]bool)
	for _, c := range checkIns {
		switch c.Status {
		case models.StatusCompleted:
			ids[c.HabitID] = true
		case models.StatusMissed, models.StatusSkipped:
			// not completed
		}
	}
	return ids
}

// DueDates lists every date in [from, to] (inclusive) on which habit is due.
func DueDates(habit models.Habit, from, to time.Time) []time.Time {
	var dates []time.Time
	end := utils.CalendarDate(to)
	for d := utils.CalendarDate(from); !d.After(end); d = d.AddDate(0, 0, 1) {
		if IsDueOn(habit, d) {
			dates = append(dates, d)
		}
	}
	return dates
}
