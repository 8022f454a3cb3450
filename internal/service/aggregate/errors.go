package aggregate

import "errors"

var (
	ErrMissingBookingID    = errors.New("booking id is required")
	ErrMissingLocation     = errors.New("location is required")
	ErrMissingActivityTime = errors.New("activity time is required")
)
