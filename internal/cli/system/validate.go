package system

import (
	"fmt"

	"github.com/julianstephens/habitline/internal/cli"
	"github.com/julianstephens/habitline/internal/validation"
)

type ValidateCmd struct{}

func (c *ValidateCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Tracker.ListHabits(ctx.Ctx)
	if err != nil {
		return err
	}
	checkIns, err := ctx.Tracker.ListCheckIns(ctx.Ctx)
	if err != nil {
		return err
	}

	result := validation.New().ValidateData(habits, checkIns, ctx.Tracker.Today())
	fmt.Print(result.FormatReport())
	if result.HasConflicts() {
		fmt.Println()
		return fmt.Errorf("found %d conflict(s)", len(result.Conflicts))
	}
	fmt.Println()
	return nil
}
