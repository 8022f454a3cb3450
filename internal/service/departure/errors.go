package departure

import "errors"

var (
	ErrTripSourceUnavailable  = errors.New("trip source unavailable")
	ErrPreferencesUnavailable = errors.New("preference store unavailable")
	ErrLedgerUnavailable      = errors.New("schedule ledger unavailable")
	ErrInvalidPartnerKind     = errors.New("notification kind is not partner-facing")
	ErrInvalidDelay           = errors.New("delay must be a positive number of minutes")
	ErrNoTimings              = errors.New("at least one reminder timing is required")
	ErrInvalidActivity        = errors.New("activity requires a title and a future time")
	ErrInvalidStateUpdate     = errors.New("only fired and delivered can be reported")
)
