// Package tracker is the check-in ledger. It owns every write to habits and
// check-ins and keeps streak counts consistent with the stored history.
package tracker

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/julianstephens/habitline/internal/errors"
	"github.com/julianstephens/habitline/internal/identity"
	"github.com/julianstephens/habitline/internal/logger"
	"github.com/julianstephens/habitline/internal/metrics"
	"github.com/julianstephens/habitline/internal/models"
	"github.com/julianstephens/habitline/internal/storage"
	"github.com/julianstephens/habitline/internal/utils"
)

// Service serializes writes per habit: a check-in and the streak
// recalculation it triggers form one critical section, so a stale
// recalculation can never overwrite a newer one.
type Service struct {
	store    storage.Provider
	identity identity.Provider
	metrics  *metrics.Metrics
	clock    func() time.Time
	location *time.Location
	locks    keyedMutex
}

type Option func(*Service)

// WithMetrics records check-ins, recalculations and storage failures on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// WithLocation sets the timezone whose calendar date counts as "today".
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

func New(store storage.Provider, id identity.Provider, opts ...Option) *Service {
	s := &Service{
		store:    store,
		identity: id,
		clock:    time.Now,
		location: time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the current calendar date in the configured timezone.
func (s *Service) Today() time.Time {
	return utils.CalendarDate(s.clock().In(s.location))
}

// Metrics returns the instruments the service records on, possibly nil.
func (s *Service) Metrics() *metrics.Metrics {
	return s.metrics
}

func (s *Service) currentUser(ctx context.Context) (string, error) {
	if s.identity == nil {
		return "", apperrors.ErrUnauthenticated
	}
	id, ok := s.identity.CurrentUserID(ctx)
	if !ok || id == "" {
		return "", apperrors.ErrUnauthenticated
	}
	return id, nil
}

// storageErr maps a collaborator failure onto the error taxonomy.
func (s *Service) storageErr(op string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.NotFoundf("%s", op)
	}
	s.metrics.RecordStorageError(op)
	logger.Error("storage call failed", "op", op, "error", err)
	return apperrors.Storage(op, err)
}

// ownedHabit loads habitID and hides habits that belong to someone else.
func (s *Service) ownedHabit(ctx context.Context, userID, habitID string) (models.Habit, error) {
	h, err := s.store.GetHabit(ctx, habitID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Habit{}, apperrors.NotFoundf("habit %s", habitID)
		}
		return models.Habit{}, s.storageErr("get_habit", err)
	}
	if h.UserID != userID {
		return models.Habit{}, apperrors.NotFoundf("habit %s", habitID)
	}
	return h, nil
}
