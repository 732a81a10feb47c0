package tracker

import (
	"context"
	"sort"

	apperrors "github.com/julianstephens/habitline/internal/errors"
	"github.com/julianstephens/habitline/internal/logger"
	"github.com/julianstephens/habitline/internal/models"
	"github.com/julianstephens/habitline/internal/scheduler"
	"github.com/julianstephens/habitline/internal/streaks"
	"github.com/julianstephens/habitline/internal/utils"
	"github.com/julianstephens/habitline/internal/validation"
)

// RecordCheckIn upserts the outcome of habitID on date and then recalculates
// the habit's streaks from storage. An empty date means today. Recording the
// same status twice leaves a single row.
//
// No check-in is returned unless both the write and the recalculation succeed.
func (s *Service) RecordCheckIn(ctx context.Context, habitID, date string, status models.CheckInStatus) (models.CheckIn, error) {
	userID, err := s.currentUser(ctx)
	if err != nil {
		return models.CheckIn{}, err
	}
	if err := validation.Status(status); err != nil {
		return models.CheckIn{}, err
	}
	if date == "" {
		date = utils.FormatDate(s.Today())
	}
	day, err := validation.CheckInDate(date, s.Today())
	if err != nil {
		return models.CheckIn{}, err
	}

	unlock := s.locks.Lock(habitID)
	defer unlock()

	h, err := s.ownedHabit(ctx, userID, habitID)
	if err != nil {
		return models.CheckIn{}, err
	}
	if start, err := utils.ParseDate(h.StartDate); err == nil && day.Before(start) {
		return models.CheckIn{}, apperrors.Validationf("cannot check in for %s: habit %q starts on %s", date, h.Name, h.StartDate)
	}

	stored, err := s.store.UpsertCheckIn(ctx, models.CheckIn{
		HabitID: h.ID,
		UserID:  userID,
		Date:    utils.FormatDate(day),
		Status:  status,
	})
	if err != nil {
		return models.CheckIn{}, s.storageErr("upsert_check_in", err)
	}
	s.metrics.RecordCheckIn(status)
	logger.Info("check-in recorded", "habit", h.ID, "date", stored.Date, "status", stored.Status)

	if _, err := s.recalculateLocked(ctx, h); err != nil {
		logger.Warn("check-in committed but streak recalculation failed", "habit", h.ID, "error", err)
		return models.CheckIn{}, err
	}
	return stored, nil
}

// RecalculateStreaks re-reads every check-in of habitID and persists the
// derived streak counts. A habit without check-ins keeps its stored counts.
func (s *Service) RecalculateStreaks(ctx context.Context, habitID string) (streaks.Result, error) {
	userID, err := s.currentUser(ctx)
	if err != nil {
		return streaks.Result{}, err
	}

	unlock := s.locks.Lock(habitID)
	defer unlock()

	h, err := s.ownedHabit(ctx, userID, habitID)
	if err != nil {
		return streaks.Result{}, err
	}
	return s.recalculateLocked(ctx, h)
}

// recalculateLocked expects the habit's lock to be held.
func (s *Service) recalculateLocked(ctx context.Context, h models.Habit) (streaks.Result, error) {
	checkIns, err := s.store.ListCheckInsByHabit(ctx, h.ID)
	if err != nil {
		err = s.storageErr("list_check_ins_by_habit", err)
		s.metrics.RecordRecalculation(false, err)
		return streaks.Result{}, err
	}

	res, ok := streaks.Calculate(checkIns, h.LongestStreak)
	if !ok {
		s.metrics.RecordRecalculation(false, nil)
		return streaks.Result{Current: h.CurrentStreak, Longest: h.LongestStreak}, nil
	}

	if res.Current != h.CurrentStreak || res.Longest != h.LongestStreak {
		h.CurrentStreak, h.LongestStreak = res.Current, res.Longest
		if err := s.store.UpdateHabit(ctx, &h); err != nil {
			err = s.storageErr("update_habit_streaks", err)
			s.metrics.RecordRecalculation(false, err)
			return streaks.Result{}, err
		}
	}
	s.metrics.RecordRecalculation(true, nil)
	logger.Debug("streaks recalculated", "habit", h.ID, "current", res.Current, "longest", res.Longest)
	return res, nil
}

// DueToday lists the current user's habits that are due today and not yet completed.
func (s *Service) DueToday(ctx context.Context) ([]models.Habit, error) {
	userID, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	habits, err := s.store.ListHabits(ctx, userID)
	if err != nil {
		return nil, s.storageErr("list_habits", err)
	}
	today := s.Today()
	todays, err := s.store.ListCheckInsByDate(ctx, userID, utils.FormatDate(today))
	if err != nil {
		return nil, s.storageErr("list_check_ins_by_date", err)
	}
	return scheduler.DueToday(habits, scheduler.CompletedHabitIDs(todays), today), nil
}

// ListCheckIns returns every stored check-in of the current user, most recent first.
func (s *Service) ListCheckIns(ctx context.Context) ([]models.CheckIn, error) {
	userID, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	checkIns, err := s.store.ListCheckInsForUser(ctx, userID)
	if err != nil {
		return nil, s.storageErr("list_check_ins_for_user", err)
	}
	return checkIns, nil
}

// History returns the habit's stored check-ins merged with backfilled missed
// entries for past due dates, most recent first.
func (s *Service) History(ctx context.Context, habitID string) ([]models.CheckIn, error) {
	h, err := s.GetHabit(ctx, habitID)
	if err != nil {
		return nil, err
	}
	stored, err := s.store.ListCheckInsByHabit(ctx, h.ID)
	if err != nil {
		return nil, s.storageErr("list_check_ins_by_habit", err)
	}

	backfill := scheduler.ComputeBackfill([]models.Habit{h}, stored, s.Today())
	merged := scheduler.MergeWithBackfill(stored, backfill)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Date > merged[j].Date
	})
	return merged, nil
}
