package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a habit or reward name has no backing entry.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyCompleted is returned when completing a habit that is already done today.
	ErrAlreadyCompleted = errors.New("habit already completed")
	// ErrNotCompleted is returned when uncompleting a habit that is not in the completion set.
	ErrNotCompleted = errors.New("habit not completed")
	// ErrInsufficientPoints matches any *InsufficientPointsError via errors.Is.
	ErrInsufficientPoints = errors.New("not enough points")
	// ErrLoginRequired is returned by a Session when its authenticator reports no user.
	ErrLoginRequired = errors.New("login required")
)

// ValidationError reports rejected user input. It should be shown to the user.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InsufficientPointsError is returned when a reward costs more than the current balance.
type InsufficientPointsError struct {
	Reward  string
	Cost    int
	Balance int
}

func (e *InsufficientPointsError) Error() string {
	return fmt.Sprintf("not enough points for %q: costs %d, have %d", e.Reward, e.Cost, e.Balance)
}

func (e *InsufficientPointsError) Is(target error) bool {
	return target == ErrInsufficientPoints
}

// IsAdvisory reports whether err is a recoverable user-facing condition rather than a failure.
func IsAdvisory(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) ||
		errors.Is(err, ErrInsufficientPoints) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrAlreadyCompleted) ||
		errors.Is(err, ErrNotCompleted)
}

func notFound(kind, name string) error {
	return fmt.Errorf("%s %q: %w", kind, name, ErrNotFound)
}

func IsInsufficientPoints(err error) bool {
	return errors.Is(err, ErrInsufficientPoints)
}
