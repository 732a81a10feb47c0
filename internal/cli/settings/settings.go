package settings

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/habitline/internal/cli"
	"github.com/julianstephens/habitline/internal/constants"
	"github.com/julianstephens/habitline/internal/settings"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	Timezone       *string `help:"IANA timezone used to decide what \"today\" is (or Local)."`
	DefaultLogDays *int    `help:"Number of days shown by 'habit log'."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	current, err := settings.Load(ctx.Ctx, ctx.Store)
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if c.List {
		lastVisit := current.LastVisit
		if lastVisit == "" {
			lastVisit = "never"
		}
		fmt.Println("Current Settings:")
		fmt.Printf("  Timezone:          %s\n", current.Timezone)
		fmt.Printf("  Default Log Days:  %d\n", current.DefaultLogDays)
		fmt.Printf("  Last Visit:        %s\n", lastVisit)
		return nil
	}

	updated := false
	if c.Timezone != nil {
		if err := settings.Set(ctx.Ctx, ctx.Store, constants.SettingTimezone, *c.Timezone); err != nil {
			return err
		}
		updated = true
	}
	if c.DefaultLogDays != nil {
		if err := settings.Set(ctx.Ctx, ctx.Store, constants.SettingDefaultLogDays, strconv.Itoa(*c.DefaultLogDays)); err != nil {
			return err
		}
		updated = true
	}

	if updated {
		fmt.Println("Settings updated successfully.")
	} else {
		fmt.Println("No changes specified. Use --list to view settings or flags to update them.")
	}
	return nil
}
