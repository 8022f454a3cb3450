package domain

import "errors"

var (
	ErrNotificationNotFound = errors.New("scheduled notification not found")
	ErrInvalidTransition    = errors.New("invalid notification state transition")
	ErrPreferencesNotFound  = errors.New("preferences not found")
	ErrInvalidTimeOfDay     = errors.New("time of day must be HH:MM")
	ErrInvalidDate          = errors.New("date must be YYYY-MM-DD")
	ErrUnknownTiming        = errors.New("unknown reminder timing")
	ErrEventNotFound        = errors.New("departure event not found")
)
