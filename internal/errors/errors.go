package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/habitline/internal/logger"
)

// Failure taxonomy shared by every write path. Use errors.Is to classify.
var (
	// ErrUnauthenticated is returned when no current user can be resolved
	ErrUnauthenticated = stderrors.New("unauthenticated")
	// ErrNotFound is returned when a habit or check-in does not exist or is not owned by the caller
	ErrNotFound = stderrors.New("not found")
	// ErrValidation is returned for invalid input such as an empty schedule or a future check-in date
	ErrValidation = stderrors.New("validation failed")
	// ErrStorageUnavailable is returned when a storage call fails or times out
	ErrStorageUnavailable = stderrors.New("storage unavailable")
)

// Validationf builds an ErrValidation with a formatted message.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundf builds an ErrNotFound with a formatted message.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Storage annotates a collaborator failure with ErrStorageUnavailable, keeping the cause.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrStorageUnavailable, op, err)
}

// Kind names the taxonomy class of err, or "internal" when it matches none.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case stderrors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case stderrors.Is(err, ErrNotFound):
		return "not_found"
	case stderrors.Is(err, ErrValidation):
		return "validation"
	case stderrors.Is(err, ErrStorageUnavailable):
		return "storage_unavailable"
	default:
		return "internal"
	}
}

// Retryable reports whether retrying the same call may succeed.
func Retryable(err error) bool {
	return stderrors.Is(err, ErrStorageUnavailable)
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err, "kind", Kind(err))
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		if Retryable(err) {
			fmt.Fprintln(os.Stderr, "The storage backend could not be reached; nothing was changed. Try again.")
		}
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
