package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/julianstephens/habitline/internal/constants"
	"github.com/julianstephens/habitline/internal/models"
	"github.com/julianstephens/habitline/internal/storage"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func createHabit(t *testing.T, store *Store, userID, name string) models.Habit {
	t.Helper()
	h := models.Habit{
		UserID:     userID,
		Name:       name,
		StartDate:  "2024-01-01",
		TargetDays: []models.ScheduleToken{models.ScheduleDaily},
	}
	if err := store.CreateHabit(context.Background(), &h); err != nil {
		t.Fatalf("CreateHabit failed: %v", err)
	}
	return h
}

func TestInitSeedsDefaultSettings(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	tz, err := store.GetSetting(ctx, constants.SettingTimezone)
	if err != nil {
		t.Fatalf("GetSetting failed: %v", err)
	}
	if tz != constants.DefaultTimezone {
		t.Errorf("expected default timezone %q, got %q", constants.DefaultTimezone, tz)
	}

	// Re-running Init must not clobber user changes
	if err := store.SetSetting(ctx, constants.SettingTimezone, "Europe/Paris"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	if err := store.Init(ctx); err != nil {
		t.Fatalf("second Init failed: %v", err)
	}
	tz, _ = store.GetSetting(ctx, constants.SettingTimezone)
	if tz != "Europe/Paris" {
		t.Errorf("Init overwrote timezone: got %q", tz)
	}
}

func TestLoadRequiresInit(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	if err := store.Load(context.Background()); err == nil {
		t.Fatal("expected Load to fail before Init")
	}
}

func TestLoadAfterInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	first := NewStore(path)
	if err := first.Init(ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	h := createHabit(t, first, "user-1", "Read")
	first.Close()

	second := NewStore(path)
	if err := second.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer second.Close()

	got, err := second.GetHabit(ctx, h.ID)
	if err != nil {
		t.Fatalf("GetHabit after reload failed: %v", err)
	}
	if got.Name != "Read" {
		t.Errorf("expected name Read, got %q", got.Name)
	}

	current, latest, err := second.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if current != latest || current < 1 {
		t.Errorf("expected schema at latest version, got current=%d latest=%d", current, latest)
	}
}

func TestHabitCRUD(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	h := createHabit(t, store, "user-1", "Meditate")
	if h.ID == "" {
		t.Fatal("CreateHabit did not assign an id")
	}
	createHabit(t, store, "user-2", "Someone else's")

	got, err := store.GetHabit(ctx, h.ID)
	if err != nil {
		t.Fatalf("GetHabit failed: %v", err)
	}
	if got.StartDate != "2024-01-01" || len(got.TargetDays) != 1 || got.TargetDays[0] != models.ScheduleDaily {
		t.Errorf("unexpected habit round trip: %+v", got)
	}

	got.Name = "Meditate 10m"
	got.TargetDays = []models.ScheduleToken{models.ScheduleMonday, models.ScheduleFriday}
	got.CurrentStreak, got.LongestStreak = 2, 4
	if err := store.UpdateHabit(ctx, &got); err != nil {
		t.Fatalf("UpdateHabit failed: %v", err)
	}

	list, err := store.ListHabits(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListHabits failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 habit for user-1, got %d", len(list))
	}
	if list[0].Name != "Meditate 10m" || list[0].LongestStreak != 4 || len(list[0].TargetDays) != 2 {
		t.Errorf("update not persisted: %+v", list[0])
	}

	if err := store.DeleteHabit(ctx, h.ID); err != nil {
		t.Fatalf("DeleteHabit failed: %v", err)
	}
	if _, err := store.GetHabit(ctx, h.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestHabitNotFound(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	ghost := models.Habit{ID: "ghost", Name: "x", StartDate: "2024-01-01"}
	if err := store.UpdateHabit(ctx, &ghost); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("UpdateHabit: expected ErrNotFound, got %v", err)
	}
	if err := store.DeleteHabit(ctx, "ghost"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("DeleteHabit: expected ErrNotFound, got %v", err)
	}
	if _, err := store.GetCheckIn(ctx, "ghost", "2024-01-01"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetCheckIn: expected ErrNotFound, got %v", err)
	}
	if _, err := store.GetSetting(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetSetting: expected ErrNotFound, got %v", err)
	}
}

func TestUpsertCheckInIsIdempotent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	h := createHabit(t, store, "user-1", "Run")

	in := models.CheckIn{HabitID: h.ID, UserID: "user-1", Date: "2024-01-02", Status: models.StatusMissed}
	first, err := store.UpsertCheckIn(ctx, in)
	if err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	in.Status = models.StatusCompleted
	second, err := store.UpsertCheckIn(ctx, in)
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("upsert changed id: %s -> %s", first.ID, second.ID)
	}
	if second.Status != models.StatusCompleted {
		t.Errorf("expected status completed, got %s", second.Status)
	}
	if second.UpdatedAt.Before(first.UpdatedAt) {
		t.Error("updated_at moved backwards")
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Error("created_at changed on update")
	}

	all, err := store.ListCheckInsByHabit(ctx, h.ID)
	if err != nil {
		t.Fatalf("ListCheckInsByHabit failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected exactly one row for (habit, date), got %d", len(all))
	}
}

func TestUpsertCheckInReplacesSyntheticID(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	h := createHabit(t, store, "user-1", "Run")

	stored, err := store.UpsertCheckIn(ctx, models.CheckIn{
		ID:      models.MissingCheckInID(h.ID, "2024-01-02"),
		HabitID: h.ID, UserID: "user-1", Date: "2024-01-02", Status: models.StatusSkipped,
	})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if stored.Synthetic() {
		t.Errorf("placeholder id was persisted: %s", stored.ID)
	}
}

func TestCheckInQueries(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	read := createHabit(t, store, "user-1", "Read")
	walk := createHabit(t, store, "user-1", "Walk")
	other := createHabit(t, store, "user-2", "Other")

	for _, c := range []models.CheckIn{
		{HabitID: read.ID, UserID: "user-1", Date: "2024-01-01", Status: models.StatusCompleted},
		{HabitID: read.ID, UserID: "user-1", Date: "2024-01-03", Status: models.StatusCompleted},
		{HabitID: read.ID, UserID: "user-1", Date: "2024-01-02", Status: models.StatusSkipped},
		{HabitID: walk.ID, UserID: "user-1", Date: "2024-01-03", Status: models.StatusMissed},
		{HabitID: other.ID, UserID: "user-2", Date: "2024-01-03", Status: models.StatusCompleted},
	} {
		if _, err := store.UpsertCheckIn(ctx, c); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
	}

	byHabit, err := store.ListCheckInsByHabit(ctx, read.ID)
	if err != nil {
		t.Fatalf("ListCheckInsByHabit failed: %v", err)
	}
	wantDates := []string{"2024-01-03", "2024-01-02", "2024-01-01"}
	for i, c := range byHabit {
		if c.Date != wantDates[i] {
			t.Errorf("byHabit[%d] = %s, want %s", i, c.Date, wantDates[i])
		}
	}

	byDate, err := store.ListCheckInsByDate(ctx, "user-1", "2024-01-03")
	if err != nil {
		t.Fatalf("ListCheckInsByDate failed: %v", err)
	}
	if len(byDate) != 2 {
		t.Errorf("expected 2 check-ins for user-1 on 2024-01-03, got %d", len(byDate))
	}

	forUser, err := store.ListCheckInsForUser(ctx, "user-2")
	if err != nil {
		t.Fatalf("ListCheckInsForUser failed: %v", err)
	}
	if len(forUser) != 1 || forUser[0].HabitID != other.ID {
		t.Errorf("unexpected check-ins for user-2: %+v", forUser)
	}
}

func TestDeleteHabitCascadesToCheckIns(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	h := createHabit(t, store, "user-1", "Stretch")

	if _, err := store.UpsertCheckIn(ctx, models.CheckIn{HabitID: h.ID, UserID: "user-1", Date: "2024-01-01", Status: models.StatusCompleted}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := store.DeleteHabit(ctx, h.ID); err != nil {
		t.Fatalf("DeleteHabit failed: %v", err)
	}

	remaining, err := store.ListCheckInsForUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListCheckInsForUser failed: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("expected check-ins to be deleted with their habit, got %d", len(remaining))
	}
}

func TestUpsertCheckInRequiresHabit(t *testing.T) {
	store := setupTestStore(t)
	_, err := store.UpsertCheckIn(context.Background(), models.CheckIn{HabitID: "ghost", UserID: "user-1", Date: "2024-01-01", Status: models.StatusCompleted})
	if err == nil {
		t.Error("expected foreign key violation for unknown habit")
	}
}
