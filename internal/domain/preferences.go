package domain

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"
)

const (
	DefaultLeadTimeMinutes       = 60
	DefaultTravelBufferMinutes   = 10
	DefaultDelayThresholdMinutes = 15
	DefaultQuietHoursStart       = "22:00"
	DefaultQuietHoursEnd         = "07:00"
	DefaultLocale                = "en"
)

// AllowedLeadTimes are the lead-time choices offered to the user, in minutes.
var AllowedLeadTimes = []int{30, 60, 90, 120}

type ActivityReminderPreferences struct {
	Enabled                  bool             `json:"enabled" mapstructure:"enabled"`
	DefaultTimings           []ReminderTiming `json:"default_timings" mapstructure:"default_timings"`
	IncludeDirectionsDefault bool             `json:"include_directions_default" mapstructure:"include_directions_default"`
}

type TravelAlertPreferences struct {
	Enabled               bool `json:"enabled" mapstructure:"enabled"`
	BufferMinutes         int  `json:"buffer_minutes" mapstructure:"buffer_minutes"`
	AlertWhenDelayExceeds int  `json:"alert_when_delay_exceeds" mapstructure:"alert_when_delay_exceeds"`
	ShowAlternativeRoutes bool `json:"show_alternative_routes" mapstructure:"show_alternative_routes"`
}

type SurpriseModePreferences struct {
	Enabled                bool     `json:"enabled" mapstructure:"enabled"`
	SuppressedItineraryIDs []string `json:"suppressed_itinerary_ids" mapstructure:"suppressed_itinerary_ids"`
}

type PartnerNotificationPreferences struct {
	Enabled         bool                    `json:"enabled" mapstructure:"enabled"`
	NotifyOnShare   bool                    `json:"notify_on_share" mapstructure:"notify_on_share"`
	NotifyOnUpdate  bool                    `json:"notify_on_update" mapstructure:"notify_on_update"`
	NotifyOnBooking bool                    `json:"notify_on_booking" mapstructure:"notify_on_booking"`
	SurpriseMode    SurpriseModePreferences `json:"surprise_mode" mapstructure:"surprise_mode"`
}

type QuietHoursPreferences struct {
	Enabled       bool   `json:"enabled" mapstructure:"enabled"`
	StartTime     string `json:"start_time" mapstructure:"start_time"`
	EndTime       string `json:"end_time" mapstructure:"end_time"`
	AllowCritical bool   `json:"allow_critical" mapstructure:"allow_critical"`
}

// NotificationPreferences is one coherent snapshot of the user's notification settings.
// It is passed by value; updates produce a new snapshot via With.
type NotificationPreferences struct {
	GlobalEnabled        bool                           `json:"global_enabled" mapstructure:"global_enabled"`
	SoundEnabled         bool                           `json:"sound_enabled" mapstructure:"sound_enabled"`
	VibrationEnabled     bool                           `json:"vibration_enabled" mapstructure:"vibration_enabled"`
	LeadTimeMinutes      int                            `json:"lead_time_minutes" mapstructure:"lead_time_minutes"`
	Timezone             string                         `json:"timezone,omitempty" mapstructure:"timezone"`
	Locale               string                         `json:"locale,omitempty" mapstructure:"locale"`
	ActivityReminders    ActivityReminderPreferences    `json:"activity_reminders" mapstructure:"activity_reminders"`
	TravelAlerts         TravelAlertPreferences         `json:"travel_alerts" mapstructure:"travel_alerts"`
	PartnerNotifications PartnerNotificationPreferences `json:"partner_notifications" mapstructure:"partner_notifications"`
	QuietHours           QuietHoursPreferences          `json:"quiet_hours" mapstructure:"quiet_hours"`
}

// DefaultPreferences returns the documented fallback used when no stored preferences
// can be read.
func DefaultPreferences() NotificationPreferences {
	return NotificationPreferences{
		GlobalEnabled:    true,
		SoundEnabled:     true,
		VibrationEnabled: true,
		LeadTimeMinutes:  DefaultLeadTimeMinutes,
		Locale:           DefaultLocale,
		ActivityReminders: ActivityReminderPreferences{
			Enabled:                  true,
			DefaultTimings:           []ReminderTiming{Timing30Min},
			IncludeDirectionsDefault: true,
		},
		TravelAlerts: TravelAlertPreferences{
			Enabled:               true,
			BufferMinutes:         DefaultTravelBufferMinutes,
			AlertWhenDelayExceeds: DefaultDelayThresholdMinutes,
			ShowAlternativeRoutes: true,
		},
		PartnerNotifications: PartnerNotificationPreferences{
			Enabled:         true,
			NotifyOnShare:   true,
			NotifyOnUpdate:  true,
			NotifyOnBooking: true,
			SurpriseMode: SurpriseModePreferences{
				SuppressedItineraryIDs: []string{},
			},
		},
		QuietHours: QuietHoursPreferences{
			Enabled:       false,
			StartTime:     DefaultQuietHoursStart,
			EndTime:       DefaultQuietHoursEnd,
			AllowCritical: true,
		},
	}
}

// Clone returns a deep copy so that the caller can never alias another snapshot's slices.
func (p NotificationPreferences) Clone() NotificationPreferences {
	out := p
	out.ActivityReminders.DefaultTimings = slices.Clone(p.ActivityReminders.DefaultTimings)
	out.PartnerNotifications.SurpriseMode.SuppressedItineraryIDs = slices.Clone(p.PartnerNotifications.SurpriseMode.SuppressedItineraryIDs)
	return out
}

// With returns a new snapshot with mutate applied to a copy of p.
func (p NotificationPreferences) With(mutate func(*NotificationPreferences)) NotificationPreferences {
	out := p.Clone()
	mutate(&out)
	return out.Normalize()
}

// Normalize repairs out-of-range values by falling back to the defaults for the
// offending field only.
func (p NotificationPreferences) Normalize() NotificationPreferences {
	out := p.Clone()
	defaults := DefaultPreferences()

	if !slices.Contains(AllowedLeadTimes, out.LeadTimeMinutes) {
		out.LeadTimeMinutes = defaults.LeadTimeMinutes
	}
	if out.Locale == "" {
		out.Locale = defaults.Locale
	}
	if out.Timezone != "" {
		if _, err := time.LoadLocation(out.Timezone); err != nil {
			out.Timezone = ""
		}
	}

	out.ActivityReminders.DefaultTimings = NormalizeTimings(out.ActivityReminders.DefaultTimings)

	if out.TravelAlerts.BufferMinutes < 0 {
		out.TravelAlerts.BufferMinutes = defaults.TravelAlerts.BufferMinutes
	}
	if out.TravelAlerts.AlertWhenDelayExceeds < 0 {
		out.TravelAlerts.AlertWhenDelayExceeds = defaults.TravelAlerts.AlertWhenDelayExceeds
	}

	if _, err := ParseTimeOfDay(out.QuietHours.StartTime); err != nil {
		out.QuietHours.StartTime = defaults.QuietHours.StartTime
	}
	if _, err := ParseTimeOfDay(out.QuietHours.EndTime); err != nil {
		out.QuietHours.EndTime = defaults.QuietHours.EndTime
	}

	out.PartnerNotifications.SurpriseMode.SuppressedItineraryIDs = normalizeIDs(out.PartnerNotifications.SurpriseMode.SuppressedItineraryIDs)

	return out
}

// Validate reports every field that Normalize would have to repair.
func (p NotificationPreferences) Validate() error {
	var errs []error

	if !slices.Contains(AllowedLeadTimes, p.LeadTimeMinutes) {
		errs = append(errs, fmt.Errorf("lead_time_minutes must be one of %v", AllowedLeadTimes))
	}
	if p.Timezone != "" {
		if _, err := time.LoadLocation(p.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("timezone %q: %w", p.Timezone, err))
		}
	}
	for _, t := range p.ActivityReminders.DefaultTimings {
		if !t.IsReminder() {
			errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownTiming, t))
		}
	}
	if p.TravelAlerts.BufferMinutes < 0 {
		errs = append(errs, errors.New("travel_alerts.buffer_minutes must not be negative"))
	}
	if p.TravelAlerts.AlertWhenDelayExceeds < 0 {
		errs = append(errs, errors.New("travel_alerts.alert_when_delay_exceeds must not be negative"))
	}
	if _, err := ParseTimeOfDay(p.QuietHours.StartTime); err != nil {
		errs = append(errs, fmt.Errorf("quiet_hours.start_time: %w", err))
	}
	if _, err := ParseTimeOfDay(p.QuietHours.EndTime); err != nil {
		errs = append(errs, fmt.Errorf("quiet_hours.end_time: %w", err))
	}

	return errors.Join(errs...)
}

// Location returns the timezone used for wall-clock evaluation, or fallback when the
// snapshot carries none.
func (p NotificationPreferences) Location(fallback *time.Location) *time.Location {
	if p.Timezone != "" {
		if loc, err := time.LoadLocation(p.Timezone); err == nil {
			return loc
		}
	}
	if fallback == nil {
		return time.UTC
	}
	return fallback
}

func (p NotificationPreferences) LeadTime() time.Duration {
	return time.Duration(p.LeadTimeMinutes) * time.Minute
}

// IsItinerarySuppressed reports whether surprise mode hides itineraryID from the partner.
func (p NotificationPreferences) IsItinerarySuppressed(itineraryID string) bool {
	sm := p.PartnerNotifications.SurpriseMode
	if !sm.Enabled || itineraryID == "" {
		return false
	}
	return slices.Contains(sm.SuppressedItineraryIDs, itineraryID)
}

func normalizeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id != "" {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return slices.Compact(out)
}
