// Package memory is a process-local storage backend used by tests and the
// --memory CLI flag. Nothing survives Close.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/habitline/internal/models"
	"github.com/julianstephens/habitline/internal/storage"
)

var _ storage.Provider = (*Store)(nil)

type Store struct {
	mu       sync.RWMutex
	habits   map[string]models.Habit
	checkIns map[models.CheckInKey]models.CheckIn
	settings map[string]string
	now      func() time.Time
}

func New() *Store {
	return &Store{
		habits:   make(map[string]models.Habit),
		checkIns: make(map[models.CheckInKey]models.CheckIn),
		settings: make(map[string]string),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func cloneHabit(h models.Habit) models.Habit {
	h.TargetDays = append([]models.ScheduleToken(nil), h.TargetDays...)
	return h
}

func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := models.MapToSettings(s.settings)
	if err != nil {
		return err
	}
	models.ApplyDefaultSettings(&settings)
	for key, value := range models.SettingsToMap(settings) {
		if _, ok := s.settings[key]; !ok {
			s.settings[key] = value
		}
	}
	return nil
}

func (s *Store) Load(ctx context.Context) error { return nil }
func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }
func (s *Store) Close() error                   { return nil }
func (s *Store) GetConfigPath() string          { return "memory" }

func (s *Store) CreateHabit(ctx context.Context, habit *models.Habit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if habit.ID == "" {
		habit.ID = uuid.New().String()
	}
	now := s.now()
	if habit.CreatedAt.IsZero() {
		habit.CreatedAt = now
	}
	habit.UpdatedAt = now
	s.habits[habit.ID] = cloneHabit(*habit)
	return nil
}

func (s *Store) GetHabit(ctx context.Context, id string) (models.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.habits[id]
	if !ok {
		return models.Habit{}, storage.ErrNotFound
	}
	return cloneHabit(h), nil
}

func (s *Store) ListHabits(ctx context.Context, ownerID string) ([]models.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	habits := []models.Habit{}
	for _, h := range s.habits {
		if h.UserID == ownerID {
			habits = append(habits, cloneHabit(h))
		}
	}
	sort.Slice(habits, func(i, j int) bool {
		if !habits[i].CreatedAt.Equal(habits[j].CreatedAt) {
			return habits[i].CreatedAt.Before(habits[j].CreatedAt)
		}
		return habits[i].ID < habits[j].ID
	})
	return habits, nil
}

func (s *Store) UpdateHabit(ctx context.Context, habit *models.Habit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.habits[habit.ID]
	if !ok {
		return storage.ErrNotFound
	}
	habit.CreatedAt = existing.CreatedAt
	habit.UpdatedAt = s.now()
	s.habits[habit.ID] = cloneHabit(*habit)
	return nil
}

func (s *Store) DeleteHabit(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.habits[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.habits, id)
	for key := range s.checkIns {
		if key.HabitID == id {
			delete(s.checkIns, key)
		}
	}
	return nil
}

func (s *Store) GetCheckIn(ctx context.Context, habitID, date string) (models.CheckIn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.checkIns[models.CheckInKey{HabitID: habitID, Date: date}]
	if !ok {
		return models.CheckIn{}, storage.ErrNotFound
	}
	return c, nil
}

// collect returns the check-ins matching keep, most recent date first
func (s *Store) collect(keep func(models.CheckIn) bool) []models.CheckIn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.CheckIn{}
	for _, c := range s.checkIns {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].HabitID < out[j].HabitID
	})
	return out
}

func (s *Store) ListCheckInsByHabit(ctx context.Context, habitID string) ([]models.CheckIn, error) {
	return s.collect(func(c models.CheckIn) bool { return c.HabitID == habitID }), nil
}

func (s *Store) ListCheckInsByDate(ctx context.Context, userID, date string) ([]models.CheckIn, error) {
	return s.collect(func(c models.CheckIn) bool { return c.UserID == userID && c.Date == date }), nil
}

func (s *Store) ListCheckInsForUser(ctx context.Context, userID string) ([]models.CheckIn, error) {
	return s.collect(func(c models.CheckIn) bool { return c.UserID == userID }), nil
}

func (s *Store) UpsertCheckIn(ctx context.Context, checkIn models.CheckIn) (models.CheckIn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.habits[checkIn.HabitID]; !ok {
		return models.CheckIn{}, storage.ErrNotFound
	}

	now := s.now()
	key := checkIn.Key()
	if existing, ok := s.checkIns[key]; ok {
		existing.Status = checkIn.Status
		existing.UpdatedAt = now
		s.checkIns[key] = existing
		return existing, nil
	}

	if checkIn.ID == "" || checkIn.Synthetic() {
		checkIn.ID = uuid.New().String()
	}
	checkIn.CreatedAt = now
	checkIn.UpdatedAt = now
	s.checkIns[key] = checkIn
	return checkIn, nil
}

func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.settings[key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return value, nil
}

func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings[key] = value
	return nil
}

func (s *Store) AllSettings(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.settings))
	for k, v := range s.settings {
		out[k] = v
	}
	return out, nil
}
