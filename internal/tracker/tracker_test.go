package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/julianstephens/habitline/internal/errors"
	"github.com/julianstephens/habitline/internal/identity"
	"github.com/julianstephens/habitline/internal/metrics"
	"github.com/julianstephens/habitline/internal/models"
	"github.com/julianstephens/habitline/internal/storage"
	"github.com/julianstephens/habitline/internal/storage/memory"
)

var daily = []models.ScheduleToken{models.ScheduleDaily}

func fixedClock(date string) func() time.Time {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t.Add(12 * time.Hour) }
}

func newService(t *testing.T, today string) (*Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	require.NoError(t, store.Init(context.Background()))
	svc := New(store, identity.Static("user-1"),
		WithClock(fixedClock(today)),
		WithLocation(time.UTC),
		WithMetrics(metrics.New()),
	)
	return svc, store
}

func createHabit(t *testing.T, svc *Service, start string) models.Habit {
	t.Helper()
	h, err := svc.CreateHabit(context.Background(), NewHabit{Name: "Read", StartDate: start, TargetDays: daily})
	require.NoError(t, err)
	return h
}

func TestCreateHabitDefaultsStartToToday(t *testing.T) {
	svc, _ := newService(t, "2024-03-10")

	h, err := svc.CreateHabit(context.Background(), NewHabit{Name: "  Stretch  ", TargetDays: daily})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10", h.StartDate)
	assert.Equal(t, "Stretch", h.Name)
	assert.Equal(t, "user-1", h.UserID)
	assert.NotEmpty(t, h.ID)
}

func TestCreateHabitRejectsEmptySchedule(t *testing.T) {
	svc, _ := newService(t, "2024-03-10")

	_, err := svc.CreateHabit(context.Background(), NewHabit{Name: "Read"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestRecordCheckInScenarios(t *testing.T) {
	tests := []struct {
		name        string
		today       string
		entries     map[string]models.CheckInStatus
		wantCurrent int
		wantLongest int
	}{
		{
			name:  "gap resets current but keeps longest",
			today: "2024-01-05",
			entries: map[string]models.CheckInStatus{
				"2024-01-01": models.StatusCompleted,
				"2024-01-02": models.StatusCompleted,
				"2024-01-03": models.StatusCompleted,
				"2024-01-05": models.StatusCompleted,
			},
			wantCurrent: 1,
			wantLongest: 3,
		},
		{
			name:  "five consecutive days ending today",
			today: "2024-01-05",
			entries: map[string]models.CheckInStatus{
				"2024-01-01": models.StatusCompleted,
				"2024-01-02": models.StatusCompleted,
				"2024-01-03": models.StatusCompleted,
				"2024-01-04": models.StatusCompleted,
				"2024-01-05": models.StatusCompleted,
			},
			wantCurrent: 5,
			wantLongest: 5,
		},
		{
			name:  "skipped day keeps the streak",
			today: "2024-01-03",
			entries: map[string]models.CheckInStatus{
				"2024-01-01": models.StatusCompleted,
				"2024-01-02": models.StatusSkipped,
				"2024-01-03": models.StatusCompleted,
			},
			wantCurrent: 3,
			wantLongest: 3,
		},
		{
			name:  "missed today",
			today: "2024-01-03",
			entries: map[string]models.CheckInStatus{
				"2024-01-01": models.StatusCompleted,
				"2024-01-02": models.StatusCompleted,
				"2024-01-03": models.StatusMissed,
			},
			wantCurrent: 0,
			wantLongest: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newService(t, tt.today)
			ctx := context.Background()
			h := createHabit(t, svc, "2024-01-01")

			// Record in date order so the running longest matches a real user's history.
			for _, date := range []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"} {
				status, ok := tt.entries[date]
				if !ok {
					continue
				}
				_, err := svc.RecordCheckIn(ctx, h.ID, date, status)
				require.NoError(t, err)
			}

			got, err := svc.GetHabit(ctx, h.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCurrent, got.CurrentStreak)
			assert.Equal(t, tt.wantLongest, got.LongestStreak)
		})
	}
}

func TestRecordCheckInIsIdempotent(t *testing.T) {
	svc, store := newService(t, "2024-01-05")
	ctx := context.Background()
	h := createHabit(t, svc, "2024-01-01")

	first, err := svc.RecordCheckIn(ctx, h.ID, "2024-01-05", models.StatusCompleted)
	require.NoError(t, err)
	second, err := svc.RecordCheckIn(ctx, h.ID, "2024-01-05", models.StatusCompleted)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	all, err := store.ListCheckInsByHabit(ctx, h.ID)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	got, err := svc.GetHabit(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CurrentStreak)
	assert.Equal(t, 1, got.LongestStreak)
}

func TestRecordCheckInChangesStatusInPlace(t *testing.T) {
	svc, store := newService(t, "2024-01-02")
	ctx := context.Background()
	h := createHabit(t, svc, "2024-01-01")

	_, err := svc.RecordCheckIn(ctx, h.ID, "2024-01-01", models.StatusCompleted)
	require.NoError(t, err)
	_, err = svc.RecordCheckIn(ctx, h.ID, "2024-01-02", models.StatusCompleted)
	require.NoError(t, err)
	_, err = svc.RecordCheckIn(ctx, h.ID, "2024-01-02", models.StatusMissed)
	require.NoError(t, err)

	got, err := svc.GetHabit(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CurrentStreak)
	assert.Equal(t, 2, got.LongestStreak)

	all, err := store.ListCheckInsByHabit(ctx, h.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRecordCheckInDefaultsToToday(t *testing.T) {
	svc, _ := newService(t, "2024-01-05")
	h := createHabit(t, svc, "2024-01-01")

	c, err := svc.RecordCheckIn(context.Background(), h.ID, "", models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-05", c.Date)
	assert.Equal(t, "user-1", c.UserID)
}

func TestRecordCheckInValidation(t *testing.T) {
	svc, _ := newService(t, "2024-01-05")
	ctx := context.Background()
	h := createHabit(t, svc, "2024-01-02")

	tests := []struct {
		name   string
		date   string
		status models.CheckInStatus
	}{
		{"future date", "2024-01-06", models.StatusCompleted},
		{"before start", "2024-01-01", models.StatusCompleted},
		{"malformed date", "01/05/2024", models.StatusCompleted},
		{"unknown status", "2024-01-05", models.CheckInStatus("done")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordCheckIn(ctx, h.ID, tt.date, tt.status)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestRecordCheckInUnauthenticated(t *testing.T) {
	store := memory.New()
	require.NoError(t, store.Init(context.Background()))
	svc := New(store, identity.Static(""), WithClock(fixedClock("2024-01-05")))

	_, err := svc.RecordCheckIn(context.Background(), "any", "2024-01-05", models.StatusCompleted)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	_, err = svc.ListHabits(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestOtherUsersHabitIsNotFound(t *testing.T) {
	svc, store := newService(t, "2024-01-05")
	ctx := context.Background()
	h := createHabit(t, svc, "2024-01-01")

	other := New(store, identity.Static("user-2"), WithClock(fixedClock("2024-01-05")), WithLocation(time.UTC))

	_, err := other.RecordCheckIn(ctx, h.ID, "2024-01-05", models.StatusCompleted)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = other.GetHabit(ctx, h.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, other.DeleteHabit(ctx, h.ID), apperrors.ErrNotFound)

	habits, err := other.ListHabits(ctx)
	require.NoError(t, err)
	assert.Empty(t, habits)
}

func TestRecordCheckInUnknownHabit(t *testing.T) {
	svc, _ := newService(t, "2024-01-05")

	_, err := svc.RecordCheckIn(context.Background(), "ghost", "2024-01-05", models.StatusCompleted)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// failingStore fails the named operation and delegates everything else.
type failingStore struct {
	storage.Provider
	failUpsert bool
	failUpdate bool
}

var errBackend = errors.New("connection reset")

func (f *failingStore) UpsertCheckIn(ctx context.Context, c models.CheckIn) (models.CheckIn, error) {
	if f.failUpsert {
		return models.CheckIn{}, errBackend
	}
	return f.Provider.UpsertCheckIn(ctx, c)
}

func (f *failingStore) UpdateHabit(ctx context.Context, h *models.Habit) error {
	if f.failUpdate {
		return errBackend
	}
	return f.Provider.UpdateHabit(ctx, h)
}

func TestStorageFailureIsReported(t *testing.T) {
	base := memory.New()
	require.NoError(t, base.Init(context.Background()))
	store := &failingStore{Provider: base}
	m := metrics.New()
	svc := New(store, identity.Static("user-1"), WithClock(fixedClock("2024-01-05")), WithLocation(time.UTC), WithMetrics(m))
	ctx := context.Background()
	h := createHabit(t, svc, "2024-01-01")

	store.failUpsert = true
	_, err := svc.RecordCheckIn(ctx, h.ID, "2024-01-05", models.StatusCompleted)
	assert.ErrorIs(t, err, apperrors.ErrStorageUnavailable)
	assert.ErrorIs(t, err, errBackend)
	assert.True(t, apperrors.Retryable(err))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StorageErrorsTotal.WithLabelValues("upsert_check_in")))

	got, err := svc.GetHabit(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CurrentStreak, "streaks unchanged after a failed write")
}

func TestRecalculationFailureReturnsNoCheckIn(t *testing.T) {
	base := memory.New()
	require.NoError(t, base.Init(context.Background()))
	store := &failingStore{Provider: base}
	svc := New(store, identity.Static("user-1"), WithClock(fixedClock("2024-01-05")), WithLocation(time.UTC))
	ctx := context.Background()
	h := createHabit(t, svc, "2024-01-01")

	store.failUpdate = true
	c, err := svc.RecordCheckIn(ctx, h.ID, "2024-01-05", models.StatusCompleted)
	assert.ErrorIs(t, err, apperrors.ErrStorageUnavailable)
	assert.Empty(t, c.ID)

	// A retry converges once storage recovers.
	store.failUpdate = false
	_, err = svc.RecordCheckIn(ctx, h.ID, "2024-01-05", models.StatusCompleted)
	require.NoError(t, err)
	got, err := svc.GetHabit(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CurrentStreak)
}

func TestConcurrentCheckInsConverge(t *testing.T) {
	svc, store := newService(t, "2024-01-20")
	ctx := context.Background()
	h := createHabit(t, svc, "2024-01-01")

	var wg sync.WaitGroup
	for day := 1; day <= 20; day++ {
		wg.Add(1)
		go func(day int) {
			defer wg.Done()
			date := time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
			_, err := svc.RecordCheckIn(ctx, h.ID, date, models.StatusCompleted)
			assert.NoError(t, err)
		}(day)
	}
	wg.Wait()

	got, err := svc.GetHabit(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, got.CurrentStreak)
	assert.Equal(t, 20, got.LongestStreak)

	all, err := store.ListCheckInsByHabit(ctx, h.ID)
	require.NoError(t, err)
	assert.Len(t, all, 20)
	assert.Equal(t, 0, svc.locks.size())
}

func TestRecalculateStreaksWithoutCheckInsKeepsCounts(t *testing.T) {
	svc, _ := newService(t, "2024-01-05")
	h := createHabit(t, svc, "2024-01-01")

	res, err := svc.RecalculateStreaks(context.Background(), h.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Current)
	assert.Equal(t, 0, res.Longest)
}

func TestDueToday(t *testing.T) {
	// 2024-01-06 is a Saturday.
	svc, _ := newService(t, "2024-01-06")
	ctx := context.Background()

	read := createHabit(t, svc, "2024-01-01")
	_, err := svc.CreateHabit(ctx, NewHabit{Name: "Commute log", StartDate: "2024-01-01", TargetDays: []models.ScheduleToken{models.ScheduleWeekdays}})
	require.NoError(t, err)
	walk, err := svc.CreateHabit(ctx, NewHabit{Name: "Walk", StartDate: "2024-01-01", TargetDays: []models.ScheduleToken{models.ScheduleSaturday}})
	require.NoError(t, err)

	due, err := svc.DueToday(ctx)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.ElementsMatch(t, []string{read.ID, walk.ID}, []string{due[0].ID, due[1].ID})

	_, err = svc.RecordCheckIn(ctx, read.ID, "", models.StatusCompleted)
	require.NoError(t, err)

	due, err = svc.DueToday(ctx)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, walk.ID, due[0].ID)
}

func TestHistoryIncludesBackfill(t *testing.T) {
	svc, store := newService(t, "2024-01-05")
	ctx := context.Background()
	h := createHabit(t, svc, "2024-01-01")

	_, err := svc.RecordCheckIn(ctx, h.ID, "2024-01-02", models.StatusCompleted)
	require.NoError(t, err)

	history, err := svc.History(ctx, h.ID)
	require.NoError(t, err)

	var dates []string
	for _, c := range history {
		dates = append(dates, c.Date)
	}
	assert.Equal(t, []string{"2024-01-04", "2024-01-03", "2024-01-02", "2024-01-01"}, dates)
	assert.True(t, history[0].Synthetic())
	assert.False(t, history[2].Synthetic())

	stored, err := store.ListCheckInsByHabit(ctx, h.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 1, "backfill is never persisted")
}

func TestFindHabitByName(t *testing.T) {
	svc, _ := newService(t, "2024-01-05")
	ctx := context.Background()
	h := createHabit(t, svc, "2024-01-01")

	byID, err := svc.FindHabit(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, h.ID, byID.ID)

	byName, err := svc.FindHabit(ctx, "read")
	require.NoError(t, err)
	assert.Equal(t, h.ID, byName.ID)

	_, err = svc.FindHabit(ctx, "swim")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateHabitKeepsStreaks(t *testing.T) {
	svc, _ := newService(t, "2024-01-05")
	ctx := context.Background()
	h := createHabit(t, svc, "2024-01-01")
	_, err := svc.RecordCheckIn(ctx, h.ID, "2024-01-05", models.StatusCompleted)
	require.NoError(t, err)

	name := "Read fiction"
	updated, err := svc.UpdateHabit(ctx, h.ID, models.HabitPatch{Name: &name, TargetDays: []models.ScheduleToken{models.ScheduleWeekdays}})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, []models.ScheduleToken{models.ScheduleWeekdays}, updated.TargetDays)
	assert.Equal(t, 1, updated.CurrentStreak)

	empty := ""
	_, err = svc.UpdateHabit(ctx, h.ID, models.HabitPatch{Name: &empty})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestDeleteHabit(t *testing.T) {
	svc, store := newService(t, "2024-01-05")
	ctx := context.Background()
	h := createHabit(t, svc, "2024-01-01")
	_, err := svc.RecordCheckIn(ctx, h.ID, "2024-01-05", models.StatusCompleted)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteHabit(ctx, h.ID))
	_, err = svc.GetHabit(ctx, h.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	all, err := store.ListCheckInsForUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, all)
}
