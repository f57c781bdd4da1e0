package directory

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingUsers is returned when the source has no "users" table.
	ErrMissingUsers = errors.New("missing users table")

	// ErrNilSource is returned by Load and Store.Reload when no source is given.
	ErrNilSource = errors.New("no directory source")
)

// DecodeError reports a directory source that could not be decoded.
// A failed decode never produces a Directory.
type DecodeError struct {
	// Source names where the data came from (usually a file path).
	Source string

	// Err is the underlying parse or type error.
	Err error
}

func (e *DecodeError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("cannot decode users directory: %v", e.Err)
	}
	return fmt.Sprintf("cannot decode users directory %s: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
