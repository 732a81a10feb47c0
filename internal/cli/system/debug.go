package system

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/habitline/internal/cli"
	"github.com/julianstephens/habitline/internal/settings"
)

type DebugCmd struct {
	DBPath       *DebugDBPathCmd       `cmd:"" help:"Show database path."`
	DumpHabit    *DebugDumpHabitCmd    `cmd:"" help:"Dump habit data as JSON."`
	DumpCheckins *DebugDumpCheckinsCmd `cmd:"" help:"Dump a habit's check-ins, including backfilled ones, as JSON."`
	DumpSettings *DebugDumpSettingsCmd `cmd:"" help:"Dump settings data as JSON."`
}

func printJSON(v interface{}) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(jsonBytes))
	return nil
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	return printJSON(map[string]string{
		"path":    ctx.Store.GetConfigPath(),
		"backend": string(ctx.Config.Backend()),
	})
}

type DebugDumpHabitCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
}

func (cmd *DebugDumpHabitCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Tracker.FindHabit(ctx.Ctx, cmd.Habit)
	if err != nil {
		return err
	}
	return printJSON(h)
}

type DebugDumpCheckinsCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
}

func (cmd *DebugDumpCheckinsCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Tracker.FindHabit(ctx.Ctx, cmd.Habit)
	if err != nil {
		return err
	}
	history, err := ctx.Tracker.History(ctx.Ctx, h.ID)
	if err != nil {
		return err
	}
	return printJSON(history)
}

type DebugDumpSettingsCmd struct{}

func (cmd *DebugDumpSettingsCmd) Run(ctx *cli.Context) error {
	s, err := settings.Load(ctx.Ctx, ctx.Store)
	if err != nil {
		return err
	}
	return printJSON(s)
}
