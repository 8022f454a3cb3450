package ledger

import "errors"

var (
	ErrInvalidNotificationData = errors.New("invalid scheduled notification data")
	ErrMissingUserID           = errors.New("scheduled notification has no user id")
)
