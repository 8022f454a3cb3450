package config

import "errors"

var (
	ErrRedisAddrMissing         = errors.New("REDIS_ADDR is required")
	ErrInvalidRedisDB           = errors.New("REDIS_DB must be a valid integer")
	ErrInvalidRedisURL          = errors.New("REDIS_URL is not a valid redis URL")
	ErrTripSourceURLMissing     = errors.New("TRIP_SOURCE_URL is required")
	ErrInvalidDefaultTimezone   = errors.New("DEPARTURE_DEFAULT_TIMEZONE must be an IANA timezone name")
	ErrUnknownPreferenceBackend = errors.New("PREFERENCE_STORE must be redis or file")
	ErrUnknownLedgerBackend     = errors.New("LEDGER_STORE must be redis or sqlite")
	ErrPreferenceDirMissing     = errors.New("PREFERENCE_DIR is required for the file preference store")
	ErrLedgerSQLitePathMissing  = errors.New("LEDGER_SQLITE_PATH is required for the sqlite ledger")
	ErrNotifierSettingMissing   = errors.New("notifier setting is required")
)
