package prefstore

import "errors"

var (
	ErrInvalidPreferencesData = errors.New("invalid preferences data")
	ErrInvalidUserID          = errors.New("invalid user id")
)
