// Package streaks derives current and longest streak counts from a habit's
// check-in history.
package streaks

import (
	"sort"

	"github.com/julianstephens/habitline/internal/models"
	"github.com/julianstephens/habitline/internal/utils"
)

// Result holds the derived streak values for one habit.
type Result struct {
	Current int
	Longest int
}

// Calculate walks checkIns from the most recent date backwards. A missed
// record ends the streak, as does any gap between records other than exactly
// one day. Skipped records count toward the streak like completed ones.
//
// ok is false when checkIns is empty; callers must then leave stored streaks
// untouched. Longest never drops below priorLongest.
func Calculate(checkIns []models.CheckIn, priorLongest int) (res Result, ok bool) {
	if len(checkIns) == 0 {
		return Result{Longest: priorLongest}, false
	}

	sorted := make([]models.CheckIn, len(checkIns))
	copy(sorted, checkIns)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date > sorted[j].Date
	})

	current := currentStreak(sorted)
	return Result{Current: current, Longest: max(priorLongest, current)}, true
}

func currentStreak(sorted []models.CheckIn) int {
	if breaksStreak(sorted[0].Status) {
		return 0
	}
	previous, err := utils.ParseDate(sorted[0].Date)
	if err != nil {
		return 0
	}

	current := 1
	for _, c := range sorted[1:] {
		if breaksStreak(c.Status) {
			break
		}
		d, err := utils.ParseDate(c.Date)
		if err != nil {
			break
		}
		if utils.DaysBetween(d, previous) != 1 {
			break
		}
		current++
		previous = d
	}
	return current
}

func breaksStreak(status models.CheckInStatus) bool {
	switch status {
	case models.StatusMissed:
		return true
	case models.StatusCompleted, models.StatusSkipped:
		return false
	default:
		return true
	}
}
