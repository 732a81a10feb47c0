package tracker

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/julianstephens/habitline/internal/errors"
	"github.com/julianstephens/habitline/internal/logger"
	"github.com/julianstephens/habitline/internal/models"
	"github.com/julianstephens/habitline/internal/utils"
	"github.com/julianstephens/habitline/internal/validation"
)

// NewHabit is the user input for CreateHabit. An empty StartDate means today.
type NewHabit struct {
	Name        string
	Description string
	StartDate   string
	TargetDays  []models.ScheduleToken
}

func (s *Service) CreateHabit(ctx context.Context, in NewHabit) (models.Habit, error) {
	userID, err := s.currentUser(ctx)
	if err != nil {
		return models.Habit{}, err
	}

	h := models.Habit{
		UserID:      userID,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		StartDate:   in.StartDate,
		TargetDays:  append([]models.ScheduleToken(nil), in.TargetDays...),
	}
	if h.StartDate == "" {
		h.StartDate = utils.FormatDate(s.Today())
	}
	if err := validation.Habit(h); err != nil {
		return models.Habit{}, err
	}

	if err := s.store.CreateHabit(ctx, &h); err != nil {
		return models.Habit{}, s.storageErr("create_habit", err)
	}
	logger.Info("habit created", "habit", h.ID, "name", h.Name, "schedule", models.FormatSchedule(h.TargetDays))
	return h, nil
}

func (s *Service) GetHabit(ctx context.Context, habitID string) (models.Habit, error) {
	userID, err := s.currentUser(ctx)
	if err != nil {
		return models.Habit{}, err
	}
	return s.ownedHabit(ctx, userID, habitID)
}

// FindHabit resolves ref as an id first, then as a case-insensitive name.
func (s *Service) FindHabit(ctx context.Context, ref string) (models.Habit, error) {
	userID, err := s.currentUser(ctx)
	if err != nil {
		return models.Habit{}, err
	}
	if h, err := s.ownedHabit(ctx, userID, ref); err == nil {
		return h, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return models.Habit{}, err
	}

	habits, err := s.store.ListHabits(ctx, userID)
	if err != nil {
		return models.Habit{}, s.storageErr("list_habits", err)
	}
	for _, h := range habits {
		if strings.EqualFold(h.Name, strings.TrimSpace(ref)) {
			return h, nil
		}
	}
	return models.Habit{}, apperrors.NotFoundf("habit %q", ref)
}

func (s *Service) ListHabits(ctx context.Context) ([]models.Habit, error) {
	userID, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	habits, err := s.store.ListHabits(ctx, userID)
	if err != nil {
		return nil, s.storageErr("list_habits", err)
	}
	return habits, nil
}

// UpdateHabit applies the user-editable fields of patch. Streak counts are
// never taken from the caller.
func (s *Service) UpdateHabit(ctx context.Context, habitID string, patch models.HabitPatch) (models.Habit, error) {
	userID, err := s.currentUser(ctx)
	if err != nil {
		return models.Habit{}, err
	}

	unlock := s.locks.Lock(habitID)
	defer unlock()

	h, err := s.ownedHabit(ctx, userID, habitID)
	if err != nil {
		return models.Habit{}, err
	}
	patch.Apply(&h)
	h.Name = strings.TrimSpace(h.Name)
	if err := validation.Habit(h); err != nil {
		return models.Habit{}, err
	}

	if err := s.store.UpdateHabit(ctx, &h); err != nil {
		return models.Habit{}, s.storageErr("update_habit", err)
	}
	logger.Info("habit updated", "habit", h.ID)
	return h, nil
}

// DeleteHabit removes the habit; storage cascades the delete to its check-ins.
func (s *Service) DeleteHabit(ctx context.Context, habitID string) error {
	userID, err := s.currentUser(ctx)
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(habitID)
	defer unlock()

	if _, err := s.ownedHabit(ctx, userID, habitID); err != nil {
		return err
	}
	if err := s.store.DeleteHabit(ctx, habitID); err != nil {
		return s.storageErr("delete_habit", err)
	}
	logger.Info("habit deleted", "habit", habitID)
	return nil
}
