package engine

import (
	"errors"
	"fmt"
)

// The whole engine surfaces three error kinds. Callers distinguish them with
// errors.Is; the API layer maps them to 400, 403 and 401.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrAccessDenied = errors.New("access denied")
	ErrBadToken     = errors.New("invalid token")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidInput)...)
}

func deniedf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrAccessDenied)...)
}
