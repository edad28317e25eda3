package strategy

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("invalid input")
	// ErrUnsuitable matches every *UnsuitableError.
	ErrUnsuitable = errors.New("unsuitable for this strategy")

	ErrUnknownStrategy = errors.New("unknown strategy")
	ErrInvalidConfig   = errors.New("invalid strategy config")
)

// ValidationError reports a malformed request. Inputs are never clamped.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// UnsuitableError means the strategy cannot produce the requested pairs for
// this reference even after relaxing its constraints. The survey cannot
// proceed for the respondent under this strategy.
type UnsuitableError struct {
	Strategy  string
	Requested int
	Found     int
	Floor     int
	Attempts  int
}

func (e *UnsuitableError) Error() string {
	return fmt.Sprintf("strategy %q is unsuitable for this reference: found %d of %d pairs (floor %d, %d attempts)",
		e.Strategy, e.Found, e.Requested, e.Floor, e.Attempts)
}

func (e *UnsuitableError) Is(target error) bool { return target == ErrUnsuitable }
