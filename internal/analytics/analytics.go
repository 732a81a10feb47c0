// Package analytics derives read-only statistics from habits and their
// check-ins. Past due dates without a record count as missed, the same way
// the habit log shows them.
package analytics

import (
	"sort"
	"time"

	"github.com/julianstephens/habitline/internal/models"
	"github.com/julianstephens/habitline/internal/scheduler"
	"github.com/julianstephens/habitline/internal/utils"
)

// HabitSummary aggregates one habit's history over its due days.
type HabitSummary struct {
	HabitID        string  `json:"habit_id"`
	Name           string  `json:"name"`
	Schedule       string  `json:"schedule"`
	CurrentStreak  int     `json:"current_streak"`
	LongestStreak  int     `json:"longest_streak"`
	DueDays        int     `json:"due_days"`
	Completed      int     `json:"completed"`
	Missed         int     `json:"missed"`
	Skipped        int     `json:"skipped"`
	MissedBackfill int     `json:"missed_backfill"`
	CompletionRate float64 `json:"completion_rate"`
}

// WeekStats totals check-in outcomes for one ISO week.
type WeekStats struct {
	Year      int       `json:"year"`
	Week      int       `json:"week"`
	Start     time.Time `json:"start"`
	Completed int       `json:"completed"`
	Missed    int       `json:"missed"`
	Skipped   int       `json:"skipped"`
}

// Total is the number of outcomes recorded in the week.
func (w WeekStats) Total() int {
	return w.Completed + w.Missed + w.Skipped
}

// Snapshot is the full analytics view for one user at one point in time.
type Snapshot struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Today       string         `json:"today"`
	Habits      []HabitSummary `json:"habits"`
	Weeks       []WeekStats    `json:"weeks"`
	Backfilled  int            `json:"backfilled"`
}

// history merges stored check-ins with backfill, keeping only entries on or
// before today.
func history(habits []models.Habit, checkIns []models.CheckIn, today time.Time) ([]models.CheckIn, int) {
	backfill := scheduler.ComputeBackfill(habits, checkIns, today)
	merged := scheduler.MergeWithBackfill(checkIns, backfill)

	todayStr := utils.FormatDate(today)
	out := merged[:0]
	for _, c := range merged {
		if c.Date <= todayStr {
			out = append(out, c)
		}
	}
	return out, len(backfill)
}

// Summarize builds one summary per habit, in the order habits are given.
// Only entries on due days count. The completion rate is completed over
// due days that were not skipped; a habit with no such days reports 0.
func Summarize(habits []models.Habit, checkIns []models.CheckIn, today time.Time) []HabitSummary {
	today = utils.CalendarDate(today)
	merged, _ := history(habits, checkIns, today)

	byHabit := make(map[string][]models.CheckIn, len(habits))
	for _, c := range merged {
		byHabit[c.HabitID] = append(byHabit[c.HabitID], c)
	}

	summaries := make([]HabitSummary, 0, len(habits))
	for _, h := range habits {
		s := HabitSummary{
			HabitID:       h.ID,
			Name:          h.Name,
			Schedule:      models.FormatSchedule(h.TargetDays),
			CurrentStreak: h.CurrentStreak,
			LongestStreak: h.LongestStreak,
		}
		for _, c := range byHabit[h.ID] {
			d, err := utils.ParseDate(c.Date)
			if err != nil || !scheduler.IsDueOn(h, d) {
				continue
			}
			s.DueDays++
			switch c.Status {
			case models.StatusCompleted:
				s.Completed++
			case models.StatusMissed:
				s.Missed++
				if c.Synthetic() {
					s.MissedBackfill++
				}
			case models.StatusSkipped:
				s.Skipped++
			}
		}
		if denom := s.DueDays - s.Skipped; denom > 0 {
			s.CompletionRate = float64(s.Completed) / float64(denom)
		}
		summaries = append(summaries, s)
	}
	return summaries
}

// Weekly totals outcomes for the last n ISO weeks, oldest first. The current
// week is always included.
func Weekly(habits []models.Habit, checkIns []models.CheckIn, today time.Time, n int) []WeekStats {
	if n <= 0 {
		return nil
	}
	today = utils.CalendarDate(today)
	merged, _ := history(habits, checkIns, today)

	year, week := today.ISOWeek()
	current := utils.FirstDayOfISOWeek(year, week)

	weeks := make([]WeekStats, n)
	for i := range weeks {
		start := utils.AddDays(current, -7*(n-1-i))
		y, w := start.ISOWeek()
		weeks[i] = WeekStats{Year: y, Week: w, Start: start}
	}
	first := weeks[0].Start

	for _, c := range merged {
		d, err := utils.ParseDate(c.Date)
		if err != nil || d.Before(first) {
			continue
		}
		idx := utils.DaysBetween(first, d) / 7
		if idx >= n {
			continue
		}
		switch c.Status {
		case models.StatusCompleted:
			weeks[idx].Completed++
		case models.StatusMissed:
			weeks[idx].Missed++
		case models.StatusSkipped:
			weeks[idx].Skipped++
		}
	}
	return weeks
}

// Build assembles a snapshot. generatedAt is stamped as given.
func Build(habits []models.Habit, checkIns []models.CheckIn, today time.Time, weeks int, generatedAt time.Time) Snapshot {
	today = utils.CalendarDate(today)
	_, backfilled := history(habits, checkIns, today)

	summaries := Summarize(habits, checkIns, today)
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].CompletionRate > summaries[j].CompletionRate
	})
	return Snapshot{
		GeneratedAt: generatedAt,
		Today:       utils.FormatDate(today),
		Habits:      summaries,
		Weeks:       Weekly(habits, checkIns, today, weeks),
		Backfilled:  backfilled,
	}
}
