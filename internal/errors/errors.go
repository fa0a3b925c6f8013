package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/reto21d/internal/logger"
)

var (
	// ErrNotFound is returned when an operation targets a missing record
	ErrNotFound = stderrors.New("not found")
	// ErrNoActiveChallenge is returned when no challenge is flagged active
	ErrNoActiveChallenge = stderrors.New("no active challenge")
	// ErrValidation is returned for input that cannot be applied
	ErrValidation = stderrors.New("validation failed")
	// ErrUnsupportedPlatform is returned when desktop notifications are unavailable
	ErrUnsupportedPlatform = stderrors.New("notifications are not supported on this platform")
	// ErrPersistence marks a failed write to the key-value store. It is logged, never shown.
	ErrPersistence = stderrors.New("persistence failure")
)

// NotFoundf wraps ErrNotFound with a formatted description
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Validationf wraps ErrValidation with a formatted description
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return stderrors.Is(err, target)
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
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
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
