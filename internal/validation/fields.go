package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/julianstephens/habitline/internal/errors"
	"github.com/julianstephens/habitline/internal/models"
	"github.com/julianstephens/habitline/internal/utils"
)

// habitValidate is shared by every caller; validator.Validate caches struct
// metadata and is safe for concurrent use.
var habitValidate *validator.Validate

func init() {
	habitValidate = validator.New()
	_ = habitValidate.RegisterValidation("schedule_token", validateScheduleToken)
	_ = habitValidate.RegisterValidation("iso_date", validateISODate)
}

func validateScheduleToken(fl validator.FieldLevel) bool {
	return models.ScheduleToken(fl.Field().String()).Valid()
}

func validateISODate(fl validator.FieldLevel) bool {
	return utils.ValidateDateFormat(fl.Field().String())
}

// Habit checks the user-editable fields of h. The returned error wraps
// errors.ErrValidation and names every failing field.
func Habit(h models.Habit) error {
	err := habitValidate.Struct(h)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.Validationf("%v", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return apperrors.Validationf("%s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s needs at least %s entry", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "schedule_token":
		return fmt.Sprintf("%q is not a schedule token (daily, weekdays, monday..sunday)", fe.Value())
	case "iso_date":
		return fmt.Sprintf("%s must be a YYYY-MM-DD date, got %q", field, fe.Value())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

// CheckInDate parses date and rejects malformed or future dates. today is the
// current calendar date in the user's timezone.
func CheckInDate(date string, today time.Time) (time.Time, error) {
	d, err := utils.ParseDate(date)
	if err != nil {
		return time.Time{}, apperrors.Validationf("check-in date must be YYYY-MM-DD, got %q", date)
	}
	if d.After(utils.CalendarDate(today)) {
		return time.Time{}, apperrors.Validationf("cannot check in for %s: date is in the future", date)
	}
	return d, nil
}

// Status rejects anything outside the closed status set.
func Status(status models.CheckInStatus) error {
	if !status.Valid() {
		return apperrors.Validationf("invalid status %q (expected completed, missed or skipped)", status)
	}
	return nil
}
