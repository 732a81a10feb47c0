package settings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/habitline/internal/constants"
	"github.com/julianstephens/habitline/internal/models"
	"github.com/julianstephens/habitline/internal/storage/memory"
)

func TestLoadAppliesDefaults(t *testing.T) {
	store := memory.New()

	s, err := Load(context.Background(), store)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Timezone != constants.DefaultTimezone {
		t.Errorf("expected timezone %q, got %q", constants.DefaultTimezone, s.Timezone)
	}
	if s.DefaultLogDays != constants.DefaultLogDays {
		t.Errorf("expected %d log days, got %d", constants.DefaultLogDays, s.DefaultLogDays)
	}
	if s.LastVisit != "" {
		t.Errorf("expected empty last visit, got %q", s.LastVisit)
	}
}

func TestSaveAndLoad(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	want := models.Settings{Timezone: "America/New_York", DefaultLogDays: 30, LastVisit: "2024-02-01"}
	if err := Save(ctx, store, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := Load(ctx, store)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		s       models.Settings
		wantErr bool
	}{
		{"defaults", models.Settings{Timezone: "Local", DefaultLogDays: 14}, false},
		{"iana zone", models.Settings{Timezone: "Asia/Tokyo", DefaultLogDays: 7}, false},
		{"bad zone", models.Settings{Timezone: "Mars/Olympus", DefaultLogDays: 7}, true},
		{"zero days", models.Settings{Timezone: "Local", DefaultLogDays: 0}, true},
		{"too many days", models.Settings{Timezone: "Local", DefaultLogDays: 400}, true},
		{"bad last visit", models.Settings{Timezone: "Local", DefaultLogDays: 7, LastVisit: "yesterday"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.s)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSet(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	if err := Set(ctx, store, constants.SettingDefaultLogDays, "21"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	s, _ := Load(ctx, store)
	if s.DefaultLogDays != 21 {
		t.Errorf("expected 21, got %d", s.DefaultLogDays)
	}

	if err := Set(ctx, store, constants.SettingDefaultLogDays, "many"); err == nil {
		t.Error("expected error for non-numeric value")
	}
	if err := Set(ctx, store, "theme", "dark"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestTouchLastVisit(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	day1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	prev, err := TouchLastVisit(ctx, store, day1)
	if err != nil {
		t.Fatalf("TouchLastVisit failed: %v", err)
	}
	if prev != "" {
		t.Errorf("expected empty previous visit on first run, got %q", prev)
	}

	prev, err = TouchLastVisit(ctx, store, day1.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("TouchLastVisit failed: %v", err)
	}
	if prev != "2024-03-01" {
		t.Errorf("expected previous visit 2024-03-01, got %q", prev)
	}

	s, _ := Load(ctx, store)
	if s.LastVisit != "2024-03-03" {
		t.Errorf("expected stored last visit 2024-03-03, got %q", s.LastVisit)
	}
}

type brokenStore struct{}

var errBroken = errors.New("disk on fire")

func (brokenStore) SetSetting(context.Context, string, string) error { return errBroken }
func (brokenStore) AllSettings(context.Context) (map[string]string, error) {
	return nil, errBroken
}

func TestLoadPropagatesStoreError(t *testing.T) {
	if _, err := Load(context.Background(), brokenStore{}); !errors.Is(err, errBroken) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
}
