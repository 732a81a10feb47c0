package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/julianstephens/habitline/internal/logger"
)

// Refresher recomputes the analytics snapshot on a cron schedule. Failures
// are logged and never propagate.
type Refresher struct {
	svc       *Service
	cron      *cron.Cron
	onRefresh func(Snapshot)
	timeout   time.Duration
}

// NewRefresher schedules svc.Refresh with a standard cron expression or a
// descriptor such as "@every 5m". onRefresh may be nil.
func NewRefresher(svc *Service, schedule string, onRefresh func(Snapshot)) (*Refresher, error) {
	r := &Refresher{
		svc:       svc,
		cron:      cron.New(),
		onRefresh: onRefresh,
		timeout:   30 * time.Second,
	}
	if _, err := r.cron.AddFunc(schedule, r.run); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}
	return r, nil
}

func (r *Refresher) run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	snap, err := r.svc.Refresh(ctx)
	if err != nil {
		logger.Warn("analytics refresh failed", "error", err)
		return
	}
	logger.Debug("analytics refreshed", "habits", len(snap.Habits), "backfilled", snap.Backfilled)
	if r.onRefresh != nil {
		r.onRefresh(snap)
	}
}

func (r *Refresher) Start() {
	r.cron.Start()
}

// Stop halts the schedule and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
}
