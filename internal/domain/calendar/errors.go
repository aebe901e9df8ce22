package calendar

import (
	"errors"
	"fmt"
)

var (
	ErrConfigurationNotFound = errors.New("calendar configuration not found")
	ErrOverlapConflict       = errors.New("calendar configuration overlaps an existing configuration")
	ErrOpenRecordExists      = errors.New("an open-ended calendar configuration already exists")
	ErrInvalidRange          = errors.New("valid_to must not be before valid_from")
)

// ConflictError carries the stored configuration a write collided with.
// It unwraps to ErrOverlapConflict or ErrOpenRecordExists.
type ConflictError struct {
	Err         error
	Conflicting Configuration
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s (conflicting configuration %s, %s to %s)",
		e.Err.Error(), e.Conflicting.ID, boundString(e.Conflicting.ValidFrom, "-inf"), boundString(e.Conflicting.ValidTo, "+inf"))
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}
