package habits

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/habitline/internal/cli"
	"github.com/julianstephens/habitline/internal/models"
	"github.com/julianstephens/habitline/internal/scheduler"
	"github.com/julianstephens/habitline/internal/settings"
	"github.com/julianstephens/habitline/internal/utils"
)

const logNameWidth = 20

type HabitLogCmd struct {
	Days  int    `help:"Number of days to show (default: the default_log_days setting)."`
	Habit string `help:"Show log for specific habit only."`
}

func (c *HabitLogCmd) Run(ctx *cli.Context) error {
	days := c.Days
	if days <= 0 {
		s, err := settings.Load(ctx.Ctx, ctx.Store)
		if err != nil {
			return err
		}
		days = s.DefaultLogDays
	}

	var selected []models.Habit
	if c.Habit != "" {
		h, err := ctx.Tracker.FindHabit(ctx.Ctx, c.Habit)
		if err != nil {
			return err
		}
		selected = []models.Habit{h}
	} else {
		habits, err := ctx.Tracker.ListHabits(ctx.Ctx)
		if err != nil {
			return err
		}
		selected = habits
	}
	if len(selected) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	history := make(map[string][]models.CheckIn, len(selected))
	for _, h := range selected {
		entries, err := ctx.Tracker.History(ctx.Ctx, h.ID)
		if err != nil {
			return err
		}
		history[h.ID] = entries
	}

	fmt.Printf("Habit log (last %d days):\n\n", days)
	renderLog(os.Stdout, selected, history, ctx.Tracker.Today(), days)
	fmt.Println("\nx completed  - missed  s skipped  o due  . not due")
	return nil
}

// marker picks the grid cell for one habit on one day.
func marker(h models.Habit, c *models.CheckIn, day time.Time) string {
	if c == nil {
		if scheduler.IsDueOn(h, day) {
			return "o"
		}
		return "."
	}
	switch c.Status {
	case models.StatusCompleted:
		return "x"
	case models.StatusMissed:
		return "-"
	case models.StatusSkipped:
		return "s"
	default:
		return "?"
	}
}

// renderLog writes one row per habit covering the days ending at today.
// A due day with no record yet, which can only be today, shows as "o".
func renderLog(w io.Writer, habits []models.Habit, history map[string][]models.CheckIn, today time.Time, days int) {
	start := utils.AddDays(today, -(days - 1))

	fmt.Fprint(w, strings.Repeat(" ", logNameWidth))
	for i := 0; i < days; i++ {
		fmt.Fprintf(w, " %5s", utils.AddDays(start, i).Format("01/02"))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("-", logNameWidth+6*days))

	for _, h := range habits {
		byDate := make(map[string]*models.CheckIn, len(history[h.ID]))
		for i := range history[h.ID] {
			c := &history[h.ID][i]
			byDate[c.Date] = c
		}

		fmt.Fprintf(w, "%-*s", logNameWidth, truncate(h.Name, logNameWidth))
		for i := 0; i < days; i++ {
			day := utils.AddDays(start, i)
			fmt.Fprintf(w, "   %s  ", marker(h, byDate[utils.FormatDate(day)], day))
		}
		fmt.Fprintln(w)
	}
}
