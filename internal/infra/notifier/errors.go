package notifier

import "errors"

var (
	// ErrPermissionDenied means the facility refuses every schedule for this user until
	// permission is granted again.
	ErrPermissionDenied = errors.New("notification permission denied")
	ErrRejected         = errors.New("notification rejected by facility")
)
