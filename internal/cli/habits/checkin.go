package habits

import (
	"fmt"

	"github.com/julianstephens/habitline/internal/cli"
	"github.com/julianstephens/habitline/internal/models"
)

type HabitCheckinCmd struct {
	Habit  string `arg:"" help:"Habit name or id."`
	Date   string `help:"Date in YYYY-MM-DD format (default: today)."`
	Status string `help:"completed, missed or skipped." default:"completed" enum:"completed,missed,skipped"`
}

func (c *HabitCheckinCmd) Run(ctx *cli.Context) error {
	status, err := models.ParseCheckInStatus(c.Status)
	if err != nil {
		return err
	}
	h, err := ctx.Tracker.FindHabit(ctx.Ctx, c.Habit)
	if err != nil {
		return err
	}

	checkIn, err := ctx.Tracker.RecordCheckIn(ctx.Ctx, h.ID, c.Date, status)
	if err != nil {
		return err
	}
	updated, err := ctx.Tracker.GetHabit(ctx.Ctx, h.ID)
	if err != nil {
		return err
	}

	fmt.Printf("Recorded %s for %q on %s\n", checkIn.Status, h.Name, checkIn.Date)
	fmt.Printf("Streak: %d (longest %d)\n", updated.CurrentStreak, updated.LongestStreak)
	return nil
}

type HabitStreakCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
}

func (c *HabitStreakCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Tracker.FindHabit(ctx.Ctx, c.Habit)
	if err != nil {
		return err
	}
	res, err := ctx.Tracker.RecalculateStreaks(ctx.Ctx, h.ID)
	if err != nil {
		return err
	}
	fmt.Printf("%s: current %d, longest %d\n", h.Name, res.Current, res.Longest)
	return nil
}
