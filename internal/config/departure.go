package config

import (
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/KasumiMercury/primind-departure-alerts/internal/domain"
)

const (
	defaultTimezoneEnv       = "DEPARTURE_DEFAULT_TIMEZONE"
	defaultLeadTimeEnv       = "DEPARTURE_DEFAULT_LEAD_MINUTES"
	tripSourceTimeoutEnv     = "TRIP_SOURCE_TIMEOUT_SECONDS"
	defaultTimezone          = "UTC"
	defaultTripSourceTimeout = 10 * time.Second
)

// DepartureConfig holds the service-wide fallbacks applied when a user's preferences
// leave a value unset.
type DepartureConfig struct {
	DefaultTimezone   string
	Location          *time.Location
	LeadTimeMinutes   int
	TripSourceTimeout time.Duration
}

func LoadDepartureConfig() (*DepartureConfig, error) {
	tz := os.Getenv(defaultTimezoneEnv)
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, ErrInvalidDefaultTimezone
	}

	lead := domain.DefaultLeadTimeMinutes
	if v := os.Getenv(defaultLeadTimeEnv); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && slices.Contains(domain.AllowedLeadTimes, parsed) {
			lead = parsed
		}
	}

	timeout := defaultTripSourceTimeout
	if v := os.Getenv(tripSourceTimeoutEnv); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			timeout = time.Duration(parsed) * time.Second
		}
	}

	return &DepartureConfig{
		DefaultTimezone:   tz,
		Location:          loc,
		LeadTimeMinutes:   lead,
		TripSourceTimeout: timeout,
	}, nil
}

// DefaultPreferences returns the documented defaults with the service lead time applied.
func (c *DepartureConfig) DefaultPreferences() domain.NotificationPreferences {
	prefs := domain.DefaultPreferences()
	if c != nil {
		prefs.LeadTimeMinutes = c.LeadTimeMinutes
	}
	return prefs
}
