package domain

import (
	"slices"
	"testing"
)

func TestDefaultPreferences(t *testing.T) {
	prefs := DefaultPreferences()

	if !prefs.GlobalEnabled {
		t.Error("GlobalEnabled: got false, want true")
	}
	if !slices.Equal(prefs.ActivityReminders.DefaultTimings, []ReminderTiming{Timing30Min}) {
		t.Errorf("DefaultTimings: got %v, want [30min]", prefs.ActivityReminders.DefaultTimings)
	}
	if prefs.QuietHours.Enabled {
		t.Error("QuietHours.Enabled: got true, want false")
	}
	if err := prefs.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestPreferencesWithDoesNotMutateOriginal(t *testing.T) {
	original := DefaultPreferences()

	updated := original.With(func(p *NotificationPreferences) {
		p.ActivityReminders.DefaultTimings = append(p.ActivityReminders.DefaultTimings, Timing1Day)
		p.PartnerNotifications.SurpriseMode.SuppressedItineraryIDs = append(p.PartnerNotifications.SurpriseMode.SuppressedItineraryIDs, "trip-42")
	})

	if len(original.ActivityReminders.DefaultTimings) != 1 {
		t.Errorf("original timings mutated: %v", original.ActivityReminders.DefaultTimings)
	}
	if len(original.PartnerNotifications.SurpriseMode.SuppressedItineraryIDs) != 0 {
		t.Errorf("original suppressed ids mutated: %v", original.PartnerNotifications.SurpriseMode.SuppressedItineraryIDs)
	}
	if !slices.Equal(updated.ActivityReminders.DefaultTimings, []ReminderTiming{Timing1Day, Timing30Min}) {
		t.Errorf("updated timings: got %v", updated.ActivityReminders.DefaultTimings)
	}
}

func TestPreferencesNormalize(t *testing.T) {
	prefs := DefaultPreferences()
	prefs.LeadTimeMinutes = 45
	prefs.Timezone = "Mars/Olympus_Mons"
	prefs.ActivityReminders.DefaultTimings = []ReminderTiming{Timing5Min, "3weeks", Timing5Min, Timing2Hours}
	prefs.QuietHours.StartTime = "late"
	prefs.TravelAlerts.BufferMinutes = -5
	prefs.PartnerNotifications.SurpriseMode.SuppressedItineraryIDs = []string{" trip-2 ", "trip-1", "", "trip-2"}

	if err := prefs.Validate(); err == nil {
		t.Fatal("expected validation error")
	}

	got := prefs.Normalize()

	if got.LeadTimeMinutes != DefaultLeadTimeMinutes {
		t.Errorf("LeadTimeMinutes: got %d, want %d", got.LeadTimeMinutes, DefaultLeadTimeMinutes)
	}
	if got.Timezone != "" {
		t.Errorf("Timezone: got %q, want empty", got.Timezone)
	}
	if !slices.Equal(got.ActivityReminders.DefaultTimings, []ReminderTiming{Timing2Hours, Timing5Min}) {
		t.Errorf("DefaultTimings: got %v", got.ActivityReminders.DefaultTimings)
	}
	if got.QuietHours.StartTime != DefaultQuietHoursStart {
		t.Errorf("QuietHours.StartTime: got %q, want %q", got.QuietHours.StartTime, DefaultQuietHoursStart)
	}
	if got.TravelAlerts.BufferMinutes != DefaultTravelBufferMinutes {
		t.Errorf("BufferMinutes: got %d, want %d", got.TravelAlerts.BufferMinutes, DefaultTravelBufferMinutes)
	}
	if !slices.Equal(got.PartnerNotifications.SurpriseMode.SuppressedItineraryIDs, []string{"trip-1", "trip-2"}) {
		t.Errorf("SuppressedItineraryIDs: got %v", got.PartnerNotifications.SurpriseMode.SuppressedItineraryIDs)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("normalized preferences should validate: %v", err)
	}
}

func TestIsItinerarySuppressed(t *testing.T) {
	prefs := DefaultPreferences().With(func(p *NotificationPreferences) {
		p.PartnerNotifications.SurpriseMode.SuppressedItineraryIDs = []string{"trip-42"}
	})

	if prefs.IsItinerarySuppressed("trip-42") {
		t.Error("surprise mode disabled: trip-42 should not be suppressed")
	}

	prefs = prefs.With(func(p *NotificationPreferences) {
		p.PartnerNotifications.SurpriseMode.Enabled = true
	})

	if !prefs.IsItinerarySuppressed("trip-42") {
		t.Error("surprise mode enabled: trip-42 should be suppressed")
	}
	if prefs.IsItinerarySuppressed("trip-7") {
		t.Error("trip-7 is not in the suppressed set")
	}
	if prefs.IsItinerarySuppressed("") {
		t.Error("empty itinerary id should never be suppressed")
	}
}
