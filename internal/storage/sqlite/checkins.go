package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/habitline/internal/models"
	"github.com/julianstephens/habitline/internal/storage"
)

const checkInColumns = `id, habit_id, user_id, date, status, created_at, updated_at`

func scanCheckIn(row rowScanner) (models.CheckIn, error) {
	var c models.CheckIn
	var status, createdAt, updatedAt string

	if err := row.Scan(&c.ID, &c.HabitID, &c.UserID, &c.Date, &status, &createdAt, &updatedAt); err != nil {
		return models.CheckIn{}, err
	}
	c.Status = models.CheckInStatus(status)

	var err error
	if c.CreatedAt, err = parseTimestamp("created_at", createdAt); err != nil {
		return models.CheckIn{}, err
	}
	if c.UpdatedAt, err = parseTimestamp("updated_at", updatedAt); err != nil {
		return models.CheckIn{}, err
	}
	return c, nil
}

func (s *Store) queryCheckIns(ctx context.Context, query string, args ...any) ([]models.CheckIn, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	checkIns := []models.CheckIn{}
	for rows.Next() {
		c, err := scanCheckIn(rows)
		if err != nil {
			return nil, err
		}
		checkIns = append(checkIns, c)
	}
	return checkIns, rows.Err()
}

func (s *Store) GetCheckIn(ctx context.Context, habitID, date string) (models.CheckIn, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+checkInColumns+` FROM check_ins
		WHERE habit_id = ? AND date = ?`, habitID, date)
	c, err := scanCheckIn(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CheckIn{}, storage.ErrNotFound
	}
	return c, err
}

func (s *Store) ListCheckInsByHabit(ctx context.Context, habitID string) ([]models.CheckIn, error) {
	return s.queryCheckIns(ctx, `
		SELECT `+checkInColumns+` FROM check_ins
		WHERE habit_id = ?
		ORDER BY date DESC`, habitID)
}

func (s *Store) ListCheckInsByDate(ctx context.Context, userID, date string) ([]models.CheckIn, error) {
	return s.queryCheckIns(ctx, `
		SELECT `+checkInColumns+` FROM check_ins
		WHERE user_id = ? AND date = ?
		ORDER BY habit_id`, userID, date)
}

func (s *Store) ListCheckInsForUser(ctx context.Context, userID string) ([]models.CheckIn, error) {
	return s.queryCheckIns(ctx, `
		SELECT `+checkInColumns+` FROM check_ins
		WHERE user_id = ?
		ORDER BY date DESC, habit_id`, userID)
}

func (s *Store) UpsertCheckIn(ctx context.Context, checkIn models.CheckIn) (models.CheckIn, error) {
	if checkIn.ID == "" || checkIn.Synthetic() {
		checkIn.ID = uuid.New().String()
	}
	now := time.Now().UTC().Format(timestampFormat)

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO check_ins (`+checkInColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(habit_id, date) DO UPDATE SET
			status = excluded.status,
			updated_at = excluded.updated_at
		RETURNING `+checkInColumns,
		checkIn.ID, checkIn.HabitID, checkIn.UserID, checkIn.Date, string(checkIn.Status), now, now)

	stored, err := scanCheckIn(row)
	if err != nil {
		return models.CheckIn{}, fmt.Errorf("failed to upsert check-in: %w", err)
	}
	return stored, nil
}
