package analytics

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/julianstephens/habitline/internal/analytics"
	"github.com/julianstephens/habitline/internal/cli"
	"github.com/julianstephens/habitline/internal/logger"
)

type AnalyticsCmd struct {
	Weeks    int    `help:"Number of ISO weeks to summarize." default:"8"`
	JSON     bool   `help:"Print the snapshot as JSON."`
	Watch    bool   `help:"Keep running and print a fresh snapshot on every refresh."`
	Schedule string `help:"Cron spec for --watch (default: refresh_schedule from the config file)."`
}

func (c *AnalyticsCmd) Run(ctx *cli.Context) error {
	svc := analytics.NewService(ctx.Tracker, ctx.Metrics, c.Weeks)
	snap, err := svc.Refresh(ctx.Ctx)
	if err != nil {
		return err
	}
	if err := c.print(os.Stdout, snap); err != nil {
		return err
	}
	if !c.Watch {
		return nil
	}

	schedule := c.Schedule
	if schedule == "" {
		schedule = ctx.Config.RefreshSchedule
	}
	r, err := analytics.NewRefresher(svc, schedule, func(s analytics.Snapshot) {
		if err := c.print(os.Stdout, s); err != nil {
			logger.Warn("failed to print analytics", "error", err)
		}
	})
	if err != nil {
		return err
	}

	fmt.Printf("\nRefreshing on %q, press Ctrl+C to stop.\n", schedule)
	r.Start()
	defer r.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Ctx.Done():
	}
	return nil
}

func (c *AnalyticsCmd) print(w io.Writer, snap analytics.Snapshot) error {
	if c.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}
	renderSnapshot(w, snap)
	return nil
}

func renderSnapshot(w io.Writer, snap analytics.Snapshot) {
	fmt.Fprintf(w, "Analytics as of %s\n\n", snap.Today)
	if len(snap.Habits) == 0 {
		fmt.Fprintln(w, "No habits found.")
		return
	}

	fmt.Fprintf(w, "%-24s %8s %5s %5s %5s %5s %8s\n", "Habit", "Rate", "Due", "Done", "Miss", "Skip", "Streak")
	fmt.Fprintln(w, strings.Repeat("-", 66))
	for _, h := range snap.Habits {
		name := h.Name
		if len(name) > 24 {
			name = name[:21] + "..."
		}
		fmt.Fprintf(w, "%-24s %7.1f%% %5d %5d %5d %5d %4d/%-3d\n",
			name, h.CompletionRate*100, h.DueDays, h.Completed, h.Missed, h.Skipped, h.CurrentStreak, h.LongestStreak)
	}

	fmt.Fprintln(w, "\nWeekly totals:")
	for _, wk := range snap.Weeks {
		fmt.Fprintf(w, "  %d-W%02d (from %s): %d completed, %d missed, %d skipped\n",
			wk.Year, wk.Week, wk.Start.Format("2006-01-02"), wk.Completed, wk.Missed, wk.Skipped)
	}
	if snap.Backfilled > 0 {
		fmt.Fprintf(w, "\n%d past due day(s) had no check-in and count as missed.\n", snap.Backfilled)
	}
}

// StatsCmd prints the process metrics in the Prometheus text format after
// one analytics pass, so the backfill gauge is populated.
type StatsCmd struct{}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	svc := analytics.NewService(ctx.Tracker, ctx.Metrics, 0)
	if _, err := svc.Refresh(ctx.Ctx); err != nil {
		logger.Warn("analytics refresh failed", "error", err)
	}
	return ctx.Metrics.WriteText(os.Stdout)
}
