package analytics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/julianstephens/habitline/internal/metrics"
	"github.com/julianstephens/habitline/internal/models"
)

// DefaultWeeks is how many ISO weeks a snapshot covers.
const DefaultWeeks = 8

// Source is the read side of the check-in ledger. *tracker.Service satisfies it.
type Source interface {
	ListHabits(ctx context.Context) ([]models.Habit, error)
	ListCheckIns(ctx context.Context) ([]models.CheckIn, error)
	Today() time.Time
}

// Service computes snapshots on demand and caches the latest one.
type Service struct {
	source  Source
	metrics *metrics.Metrics
	weeks   int
	now     func() time.Time

	flight singleflight.Group

	mu   sync.RWMutex
	last *Snapshot
}

func NewService(source Source, m *metrics.Metrics, weeks int) *Service {
	if weeks <= 0 {
		weeks = DefaultWeeks
	}
	return &Service{source: source, metrics: m, weeks: weeks, now: time.Now}
}

// Refresh recomputes the snapshot. Concurrent callers share one computation.
func (s *Service) Refresh(ctx context.Context) (Snapshot, error) {
	v, err, _ := s.flight.Do("snapshot", func() (interface{}, error) {
		snap, err := s.compute(ctx)
		s.metrics.RecordRefresh(err)
		if err != nil {
			return nil, err
		}
		s.metrics.SetBackfilled(snap.Backfilled)

		s.mu.Lock()
		s.last = &snap
		s.mu.Unlock()
		return snap, nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	return v.(Snapshot), nil
}

// Latest returns the most recent successful snapshot, if any.
func (s *Service) Latest() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return Snapshot{}, false
	}
	return *s.last, true
}

func (s *Service) compute(ctx context.Context) (Snapshot, error) {
	habits, err := s.source.ListHabits(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to list habits: %w", err)
	}
	checkIns, err := s.source.ListCheckIns(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to list check-ins: %w", err)
	}
	return Build(habits, checkIns, s.source.Today(), s.weeks, s.now()), nil
}
