package system

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/habitline/internal/cli"
	"github.com/julianstephens/habitline/internal/config"
	"github.com/julianstephens/habitline/internal/settings"
	"github.com/julianstephens/habitline/internal/utils"
	"github.com/julianstephens/habitline/internal/validation"
)

type DoctorCmd struct{}

type check struct {
	name       string
	needsStore bool
	run        func(*cli.Context) error
}

var checks = []check{
	{name: "Schema version", needsStore: true, run: checkSchemaVersion},
	{name: "Migrations complete", needsStore: true, run: checkMigrationsComplete},
	{name: "Identity", run: checkIdentity},
	{name: "Clock/timezone", run: checkClockTimezone},
	{name: "Data validation", needsStore: true, run: checkValidation},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	dbReachable := true
	if err := checkDBReachable(ctx); err != nil {
		fmt.Printf("❌ Database reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
		dbReachable = false
	} else {
		fmt.Printf("✓ Database reachable: OK\n")
	}

	for _, c := range checks {
		if c.needsStore && !dbReachable {
			fmt.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		if err := c.run(ctx); err != nil {
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
			continue
		}
		fmt.Printf("✓ %s: OK\n", c.name)
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	fmt.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx.Ctx, 5*time.Second)
	defer cancel()
	if err := ctx.Store.Load(pingCtx); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	return ctx.Store.Ping(pingCtx)
}

func checkSchemaVersion(ctx *cli.Context) error {
	m, ok := ctx.Store.(cli.Migrator)
	if !ok {
		return nil
	}
	current, latest, err := m.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	m, ok := ctx.Store.(cli.Migrator)
	if !ok {
		return nil
	}
	current, latest, err := m.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d - run 'habitline migrate'", current, latest)
	}
	return nil
}

func checkIdentity(ctx *cli.Context) error {
	id, ok := ctx.Identity().CurrentUserID(ctx.Ctx)
	if !ok {
		return fmt.Errorf("no user resolved - set user_id in the config file, %s, or sign in with 'habitline session login'", config.EnvUser)
	}
	fmt.Printf("   Signed in as %s\n", id)
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if ctx.Config.Timezone != "" && !utils.ValidateTimezone(ctx.Config.Timezone) {
		return fmt.Errorf("configured timezone %q is not a valid IANA zone", ctx.Config.Timezone)
	}
	if ctx.Store != nil {
		if s, err := settings.Load(ctx.Ctx, ctx.Store); err == nil {
			if _, err := settings.Location(s); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkValidation(ctx *cli.Context) error {
	if ctx.Tracker == nil {
		if err := ctx.Setup(); err != nil {
			return err
		}
	}
	habits, err := ctx.Tracker.ListHabits(ctx.Ctx)
	if err != nil {
		return err
	}
	checkIns, err := ctx.Tracker.ListCheckIns(ctx.Ctx)
	if err != nil {
		return err
	}
	result := validation.New().ValidateData(habits, checkIns, ctx.Tracker.Today())
	if result.HasConflicts() {
		return fmt.Errorf("found %d conflict(s) - run 'habitline validate' for details", len(result.Conflicts))
	}
	return nil
}
