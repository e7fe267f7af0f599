package tracker

import "errors"

// TrackerError is a custom error type for tracker errors
type TrackerError string

// Error implements the error interface
func (e TrackerError) Error() string {
	return string(e)
}

// Validation errors
const (
	ErrInvalidWeight      TrackerError = "weight must be a positive finite number"
	ErrUnknownSubstance   TrackerError = "unknown substance kind"
	ErrNegativeDose       TrackerError = "dose must be a non-negative finite number"
	ErrFutureTimestamp    TrackerError = "event timestamp is in the future"
	ErrInvalidDisplayMode TrackerError = "invalid display mode"
	ErrMissingGuildID     TrackerError = "guild ID is required"
	ErrMissingUserID      TrackerError = "user ID is required"
)

// Define errors
const (
	ErrUserNotFound     TrackerError = "user not found"
	ErrNotPrivileged    TrackerError = "resetting another user requires privileges"
	ErrNilConfig        TrackerError = "config cannot be nil"
	ErrNilRepository    TrackerError = "repository cannot be nil"
	ErrNilClock         TrackerError = "clock cannot be nil"
	ErrNilUUIDGenerator TrackerError = "UUID generator cannot be nil"
)

var validationErrors = []error{
	ErrInvalidWeight,
	ErrUnknownSubstance,
	ErrNegativeDose,
	ErrFutureTimestamp,
	ErrInvalidDisplayMode,
	ErrMissingGuildID,
	ErrMissingUserID,
}

// IsValidation reports whether err was caused by bad caller input
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
