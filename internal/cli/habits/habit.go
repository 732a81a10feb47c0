package habits

import (
	"fmt"
	"strings"

	"github.com/julianstephens/habitline/internal/cli"
	"github.com/julianstephens/habitline/internal/models"
	"github.com/julianstephens/habitline/internal/tracker"
)

type HabitCmd struct {
	Add     HabitAddCmd     `cmd:"" help:"Add a new habit."`
	List    HabitListCmd    `cmd:"" help:"List habits."`
	Edit    HabitEditCmd    `cmd:"" help:"Edit a habit."`
	Delete  HabitDeleteCmd  `cmd:"" help:"Delete a habit and all of its check-ins."`
	Today   HabitTodayCmd   `cmd:"" help:"Show habits still due today."`
	Checkin HabitCheckinCmd `cmd:"" help:"Record a check-in for a day."`
	Log     HabitLogCmd     `cmd:"" help:"Show habit log (ASCII history)."`
	Streak  HabitStreakCmd  `cmd:"" help:"Recalculate and show a habit's streaks."`
}

type HabitAddCmd struct {
	Name        string `arg:"" help:"Habit name."`
	Days        string `help:"Target days: daily, weekdays, or a list like mon,wed,fri." default:"daily"`
	Start       string `help:"Start date in YYYY-MM-DD format (default: today)."`
	Description string `help:"Optional description."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	days, err := models.ParseScheduleTokens(c.Days)
	if err != nil {
		return err
	}
	if _, err := ctx.Tracker.FindHabit(ctx.Ctx, c.Name); err == nil {
		return fmt.Errorf("habit with name %q already exists", c.Name)
	}

	h, err := ctx.Tracker.CreateHabit(ctx.Ctx, tracker.NewHabit{
		Name:        c.Name,
		Description: c.Description,
		StartDate:   c.Start,
		TargetDays:  days,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Added habit: %s (%s, from %s)\n", h.Name, models.FormatSchedule(h.TargetDays), h.StartDate)
	return nil
}

type HabitListCmd struct{}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Tracker.ListHabits(ctx.Ctx)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	fmt.Printf("%-24s %-22s %-10s %7s %7s\n", "Habit", "Schedule", "Since", "Current", "Longest")
	fmt.Println(strings.Repeat("-", 74))
	for _, h := range habits {
		fmt.Printf("%-24s %-22s %-10s %7d %7d\n", truncate(h.Name, 24), models.FormatSchedule(h.TargetDays), h.StartDate, h.CurrentStreak, h.LongestStreak)
	}
	return nil
}

type HabitEditCmd struct {
	Habit       string  `arg:"" help:"Habit name or id."`
	Name        *string `help:"New name."`
	Description *string `help:"New description."`
	Start       *string `help:"New start date (YYYY-MM-DD)."`
	Days        string  `help:"New target days."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Tracker.FindHabit(ctx.Ctx, c.Habit)
	if err != nil {
		return err
	}

	patch := models.HabitPatch{Name: c.Name, Description: c.Description, StartDate: c.Start}
	if c.Days != "" {
		if patch.TargetDays, err = models.ParseScheduleTokens(c.Days); err != nil {
			return err
		}
	}
	if patch.Name == nil && patch.Description == nil && patch.StartDate == nil && patch.TargetDays == nil {
		fmt.Println("No changes specified.")
		return nil
	}

	updated, err := ctx.Tracker.UpdateHabit(ctx.Ctx, h.ID, patch)
	if err != nil {
		return err
	}
	fmt.Printf("Updated habit: %s\n", updated.Name)
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Tracker.FindHabit(ctx.Ctx, c.Habit)
	if err != nil {
		return err
	}
	if err := ctx.Tracker.DeleteHabit(ctx.Ctx, h.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted habit: %s\n", h.Name)
	return nil
}

type HabitTodayCmd struct{}

func (c *HabitTodayCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Tracker.ListHabits(ctx.Ctx)
	if err != nil {
		return err
	}
	due, err := ctx.Tracker.DueToday(ctx.Ctx)
	if err != nil {
		return err
	}

	today := ctx.Tracker.Today().Format("2006-01-02")
	if len(due) == 0 {
		fmt.Printf("Nothing left for %s.\n", today)
		return nil
	}

	fmt.Printf("Due on %s:\n\n", today)
	for _, h := range due {
		fmt.Printf("[ ] %s\n", h.Name)
	}
	fmt.Printf("\nRemaining: %d of %d habits\n", len(due), len(habits))
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
